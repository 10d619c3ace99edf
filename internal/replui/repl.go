// Package replui implements Kira's interactive line editor: a thin
// liner-backed loop over the loader/check/interp pipeline, persisting
// declarations across lines the way a language REPL is expected to.
package replui

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/peterh/liner"

	"github.com/kira-lang/kira/internal/ast"
	"github.com/kira-lang/kira/internal/check"
	"github.com/kira-lang/kira/internal/diag"
	"github.com/kira-lang/kira/internal/interp"
	"github.com/kira-lang/kira/internal/loader"
	"github.com/kira-lang/kira/internal/symtab"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
	dim    = color.New(color.Faint).SprintFunc()
)

// REPL holds the state that survives across input lines: one symbol
// table, one checker, one interpreter, so a `let`/`fn` on one line is
// visible to the next. Kira has no bare top-level expression statement
// (every line must be a declaration), so the REPL's unit of input is a
// fragment of declarations, evaluated by running its `main` function if
// it declares one.
type REPL struct {
	Front   loader.Frontend
	Version string

	symtab *symtab.Table
	scope  symtab.ScopeId
	chk    *check.Checker
	it     *interp.Interp
	lines  int
}

// New creates a REPL. front may be nil: without a parser frontend the
// REPL still starts and serves :help/:quit, but evaluating input reports
// a clear "no parser configured" error rather than panicking.
func New(front loader.Frontend, version string) *REPL {
	st := symtab.New()
	scope := st.EnterScope(symtab.ModuleScope)
	return &REPL{
		Front:   front,
		Version: version,
		symtab:  st,
		scope:   scope,
		chk:     check.New(st),
		it:      interp.New(nil),
	}
}

// Start runs the read-eval-print loop until EOF or :quit.
func (r *REPL) Start(out io.Writer) {
	line := liner.NewLiner()
	defer line.Close()
	line.SetMultiLineMode(true)

	historyFile := filepath.Join(os.TempDir(), ".kira_history")
	if f, err := os.Open(historyFile); err == nil {
		_, _ = line.ReadHistory(f)
		f.Close()
	}

	line.SetCompleter(func(pfx string) (c []string) {
		if !strings.HasPrefix(pfx, ":") {
			return nil
		}
		for _, cmd := range []string{":help", ":quit", ":type", ":load", ":clear"} {
			if strings.HasPrefix(cmd, pfx) {
				c = append(c, cmd)
			}
		}
		return c
	})

	versionStr := r.Version
	if versionStr == "" {
		versionStr = "dev"
	}
	fmt.Fprintf(out, "%s %s\n", bold("Kira"), bold(versionStr))
	fmt.Fprintln(out, dim("Type :help for help, :quit to exit"))
	fmt.Fprintln(out)

	for {
		input, err := line.Prompt("kira> ")
		if err == io.EOF {
			fmt.Fprintln(out, green("\nGoodbye!"))
			break
		}
		if err != nil {
			fmt.Fprintf(out, "%s: %v\n", red("Error"), err)
			continue
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		if strings.HasPrefix(input, ":") {
			if r.handleCommand(input, out) {
				break
			}
			continue
		}
		r.lines++
		r.runFragment(fmt.Sprintf("<repl:%d>", r.lines), input, out)
	}

	if f, err := os.Create(historyFile); err == nil {
		_, _ = line.WriteHistory(f)
		f.Close()
	}
}

// handleCommand runs a `:`-command, returning true when the REPL should
// exit.
func (r *REPL) handleCommand(cmd string, out io.Writer) bool {
	parts := strings.Fields(cmd)
	switch parts[0] {
	case ":quit", ":q", ":exit":
		fmt.Fprintln(out, green("Goodbye!"))
		return true
	case ":help", ":h":
		r.printHelp(out)
	case ":clear":
		fmt.Fprint(out, "\033[H\033[2J")
	case ":type", ":t":
		if len(parts) < 2 {
			fmt.Fprintln(out, "Usage: :type <expression>")
			return false
		}
		fmt.Fprintln(out, yellow("(:type needs a declaration-bound expression; wrap it in `let _: T = expr` and :load it)"))
	case ":load":
		if len(parts) < 2 {
			fmt.Fprintln(out, "Usage: :load <file.ki>")
			return false
		}
		r.loadFile(parts[1], out)
	default:
		fmt.Fprintf(out, "%s: unknown command %q (try :help)\n", red("Error"), parts[0])
	}
	return false
}

func (r *REPL) printHelp(out io.Writer) {
	fmt.Fprintln(out, `Commands:
  :help, :h        show this help
  :type, :t EXPR   explain how to inspect an expression's type
  :load FILE       load and evaluate a .ki file
  :clear           clear the screen
  :quit, :q, :exit exit the REPL`)
}

func (r *REPL) loadFile(path string, out io.Writer) {
	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(out, "%s: %v\n", red("Error"), err)
		return
	}
	r.runFragment(path, string(src), out)
}

// runFragment parses, checks, loads, and (if it declares one) runs the
// `main` function of one self-contained chunk of Kira source.
func (r *REPL) runFragment(file, src string, out io.Writer) {
	if r.Front == nil {
		fmt.Fprintf(out, "%s: no parser frontend configured for this build\n", red("Error"))
		return
	}
	prog, err := r.Front.Parse(file, []byte(src))
	if err != nil {
		fmt.Fprintf(out, "%s: %v\n", red("Error"), err)
		return
	}

	r.chk.CheckProgram(prog, r.scope)
	for _, d := range r.chk.Diags.All() {
		fmt.Fprintln(out, renderColored(file, d))
	}
	if r.chk.Diags.HasErrors() {
		return
	}

	if err := r.it.LoadDecls(prog); err != nil {
		fmt.Fprintf(out, "%s: %v\n", red("Error"), err)
		return
	}

	hasMain := false
	for _, d := range prog.Decls {
		if fd, ok := d.(*ast.FuncDecl); ok && fd.Name == "main" {
			hasMain = true
		}
	}
	if !hasMain {
		fmt.Fprintln(out, green(fmt.Sprintf("loaded %s", file)))
		return
	}
	v, err := r.it.RunMain()
	if err != nil {
		fmt.Fprintf(out, "%s: %v\n", red("Error"), err)
		return
	}
	if _, isUnit := v.(interp.UnitValue); !isUnit {
		fmt.Fprintln(out, v.String())
	}
}

func renderColored(file string, d diag.Diagnostic) string {
	msg := diag.Render(file, d)
	if d.Severity == diag.Error {
		return red(msg)
	}
	return yellow(msg)
}
