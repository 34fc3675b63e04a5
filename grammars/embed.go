/*
Package grammars embeds the shipped Python grammar definitions (one
meta-language text file per supported language version) so the module has
no runtime dependency on a filesystem layout.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2026 The pyparso Authors.

*/
package grammars

import (
	"embed"
	"fmt"
)

//go:embed *.gram
var files embed.FS

// Source returns the embedded grammar text for a Python version such as
// "3.8", "3.9" or "3.10".
func Source(version string) (string, error) {
	data, err := files.ReadFile(version + ".gram")
	if err != nil {
		return "", fmt.Errorf("no grammar for Python version %q: %w", version, err)
	}
	return string(data), nil
}

// Versions lists every embedded grammar version.
func Versions() []string {
	entries, err := files.ReadDir(".")
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range entries {
		name := e.Name()
		if len(name) > 5 && name[len(name)-5:] == ".gram" {
			out = append(out, name[:len(name)-5])
		}
	}
	return out
}
