/*
Command pyparso is an interactive shell ("PREPL") around the pyparso
parser: feed it a snippet or a file and it prints the resulting concrete
syntax tree and any error nodes/leaves produced by recovery.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2026 The pyparso Authors.

*/
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/pterm/pterm"

	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"

	"github.com/gopytools/pyparso/cache"
	"github.com/gopytools/pyparso/cst"
	"github.com/gopytools/pyparso/grammar"
	"github.com/gopytools/pyparso/grammars"
	"github.com/gopytools/pyparso/parser"
	"github.com/gopytools/pyparso/tokenizer"
)

func tracer() tracing.Trace {
	return tracing.Select("pyparso.cmd")
}

func main() {
	initDisplay()
	gtrace.SyntaxTracer = gologadapter.New()

	version := flag.String("version", "3.8", "Python grammar version to parse against")
	tlevel := flag.String("trace", "Info", "Trace level [Debug|Info|Error]")
	noRecovery := flag.Bool("no-recovery", false, "disable error recovery (first bad token raises)")
	cacheDir := flag.String("cache-dir", "", "directory for the on-disk parse cache (empty disables it)")
	flag.Parse()

	tracer().SetTraceLevel(tracing.TraceLevelFromString(*tlevel))
	pterm.Info.Println("Welcome to PREPL — quit with <ctrl>D")

	src, err := grammars.Source(*version)
	if err != nil {
		pterm.Error.Println(err.Error())
		os.Exit(2)
	}
	tables, err := grammar.Compile(*version, src)
	if err != nil {
		pterm.Error.Println("compiling grammar: " + err.Error())
		os.Exit(2)
	}
	tracer().Infof("grammar %s compiled, hash %s", *version, tables.Hash())

	var store *cache.Cache
	if *cacheDir != "" {
		store = cache.New(*cacheDir)
	}

	app := &app{
		tables:   tables,
		recovery: !*noRecovery,
		cache:    store,
	}

	if args := flag.Args(); len(args) > 0 {
		for _, path := range args {
			app.parseFile(path)
		}
		return
	}

	repl, err := readline.New("pyparso> ")
	if err != nil {
		pterm.Error.Println(err.Error())
		os.Exit(3)
	}
	defer repl.Close()
	app.REPL(repl)
}

type app struct {
	tables   *grammar.Tables
	recovery bool
	cache    *cache.Cache
}

func (a *app) REPL(repl *readline.Instance) {
	for {
		line, err := repl.Readline()
		if err != nil { // io.EOF on ^D
			break
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		a.parseSnippet(line)
	}
	pterm.Info.Println("Good bye!")
}

func (a *app) parseSnippet(src string) {
	if !strings.HasSuffix(src, "\n") {
		src += "\n"
	}
	opts := a.options()
	root, err := parser.Parse(a.tables, tokenizer.New(src), opts...)
	a.report(root, err)
}

func (a *app) parseFile(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		pterm.Error.Println(err.Error())
		return
	}
	src := string(data)
	lines := splitLines(src)

	if a.cache != nil {
		if tree, cachedLines, ok := a.cache.Load(a.tables.Hash(), path); ok && strings.Join(cachedLines, "") == src {
			tracer().Infof("cache hit for %s", path)
			a.report(tree, nil)
			return
		}
	}

	opts := a.options()
	root, err := parser.Parse(a.tables, tokenizer.New(src), opts...)
	if err == nil && a.cache != nil {
		if nb, ok := root.(interface{ AsNode() *cst.Node }); ok {
			a.cache.Save(a.tables.Hash(), path, nb.AsNode(), lines)
		}
	}
	a.report(root, err)
}

func (a *app) options() []parser.Option {
	return []parser.Option{parser.WithErrorRecovery(a.recovery)}
}

func (a *app) report(root cst.Element, err error) {
	if err != nil {
		pterm.Error.Println(err.Error())
		return
	}
	root2 := pterm.NewTreeFromLeveledList(leveledTree(root, 0))
	pterm.DefaultTree.WithRoot(root2).Render()

	var issueCount int
	cst.Walk(root, func(e cst.Element) {
		if nb, ok := e.(interface{ AsNode() *cst.Node }); ok {
			if n := nb.AsNode(); n.Type == "error_node" || n.Type == "error_leaf" {
				issueCount++
			}
		}
	})
	if issueCount > 0 {
		pterm.Warning.Printf("%d recovered error node(s)\n", issueCount)
	}
}

func leveledTree(e cst.Element, level int) pterm.LeveledList {
	var ll pterm.LeveledList
	nb, ok := e.(interface{ AsNode() *cst.Node })
	if !ok {
		leaf := e.(*cst.Leaf)
		text := fmt.Sprintf("%s %q @%s", leaf.Kind, leaf.Value, leaf.StartPos())
		return append(ll, pterm.LeveledListItem{Level: level, Text: text})
	}
	n := nb.AsNode()
	ll = append(ll, pterm.LeveledListItem{Level: level, Text: n.Type})
	for _, c := range n.Children {
		ll = append(ll, leveledTree(c, level+1)...)
	}
	return ll
}

func splitLines(src string) []string {
	var out []string
	for len(src) > 0 {
		i := strings.IndexByte(src, '\n')
		if i < 0 {
			out = append(out, src)
			break
		}
		out = append(out, src[:i+1])
		src = src[i+1:]
	}
	return out
}

func initDisplay() {
	pterm.Info.Prefix = pterm.Prefix{
		Text:  "  >>",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  "  Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
	pterm.Warning.Prefix = pterm.Prefix{
		Text:  "  Warn",
		Style: pterm.NewStyle(pterm.BgYellow, pterm.FgBlack),
	}
}
