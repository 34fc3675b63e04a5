package tokenizer

import "strings"

const bom = string(rune(0xFEFF)) // U+FEFF, the byte order mark

// Lines splits src into physical lines, keeping the line terminator
// attached to each line (so joining the result reproduces src exactly).
// Only "\n" and "\r\n" terminate a line; form-feed is not a line
// separator, matching spec.md §4.3. A leading UTF-8 BOM is stripped and
// reported via hadBOM so the caller can reattach it as the first token's
// prefix.
func Lines(src string) (lines []string, hadBOM bool) {
	if strings.HasPrefix(src, bom) {
		hadBOM = true
		src = src[len(bom):]
	}
	if src == "" {
		return []string{""}, hadBOM
	}
	var out []string
	start := 0
	for i := 0; i < len(src); i++ {
		switch src[i] {
		case '\n':
			out = append(out, src[start:i+1])
			start = i + 1
		case '\r':
			if i+1 < len(src) && src[i+1] == '\n' {
				out = append(out, src[start:i+2])
				start = i + 2
				i++
			}
			// a lone \r is not a recognized line terminator here; it is
			// folded into the following line's content.
		}
	}
	if start < len(src) {
		out = append(out, src[start:])
	}
	if len(out) == 0 {
		out = append(out, "")
	}
	return out, hadBOM
}
