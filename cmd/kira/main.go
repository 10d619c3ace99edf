// Command kira is the driver for the Kira language core: a REPL, a
// `run` command, and a `check` command layered over
// internal/loader+internal/check+internal/interp. It does not embed a
// `.ki` lexer/parser; Frontend is the pluggable extension point a
// production build supplies.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/kira-lang/kira/internal/ast"
	"github.com/kira-lang/kira/internal/check"
	"github.com/kira-lang/kira/internal/diag"
	"github.com/kira-lang/kira/internal/interp"
	"github.com/kira-lang/kira/internal/loader"
	"github.com/kira-lang/kira/internal/replui"
	"github.com/kira-lang/kira/internal/symtab"
)

var (
	// Version is set by ldflags during release builds.
	Version = "dev"

	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

// frontend is the lexer/parser plug-in point. This binary ships none;
// an embedder links one in before calling run/check.
var frontend loader.Frontend

// SetFrontend installs the AST producer `run`/`check`/the REPL's :load
// use to turn source text into a *ast.Program.
func SetFrontend(f loader.Frontend) { frontend = f }

func main() {
	versionFlag := flag.Bool("version", false, "Print version information")
	helpFlag := flag.Bool("help", false, "Show help")
	flag.Parse()

	if *versionFlag {
		printVersion()
		return
	}
	if *helpFlag || flag.NArg() == 0 {
		printHelp()
		return
	}

	switch flag.Arg(0) {
	case "run":
		if flag.NArg() < 2 {
			fmt.Fprintf(os.Stderr, "%s: missing file argument\n", red("Error"))
			fmt.Println("Usage: kira run <file.ki>")
			os.Exit(1)
		}
		runFile(flag.Arg(1))
	case "check":
		if flag.NArg() < 2 {
			fmt.Fprintf(os.Stderr, "%s: missing file argument\n", red("Error"))
			fmt.Println("Usage: kira check <file.ki>")
			os.Exit(1)
		}
		checkFile(flag.Arg(1))
	case "repl":
		replui.New(frontend, Version).Start(os.Stdout)
	default:
		fmt.Fprintf(os.Stderr, "%s: unknown command %q\n", red("Error"), flag.Arg(0))
		printHelp()
		os.Exit(1)
	}
}

func printVersion() {
	fmt.Printf("%s %s\n", bold("Kira"), bold(Version))
}

func printHelp() {
	fmt.Println(bold("Kira - a statically-typed functional language"))
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  kira <command> [arguments]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Printf("  %s <file>   Type-check and run a Kira program\n", cyan("run"))
	fmt.Printf("  %s <file>   Type-check a file without running it\n", cyan("check"))
	fmt.Printf("  %s          Start the interactive REPL\n", cyan("repl"))
	fmt.Println()
	fmt.Println("Flags:")
	fmt.Println("  --version   Print version information")
	fmt.Println("  --help      Show this help message")
}

func newSession(filename string) (*loader.Session, error) {
	if frontend == nil {
		return nil, fmt.Errorf("no parser frontend configured for this build")
	}
	dir, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	_ = filename
	return loader.NewSession(dir, frontend)
}

// loadImports resolves prog's direct imports through sess, which
// recursively pulls in their own transitive imports the same way, then
// type-checks every loaded module into a fresh scope. LoadModule's own
// scope only carries the shallow, type-free stand-ins populateDecls
// needs for cycle detection and the dependency graph; re-registering a
// freshly checked scope over it is what gives an import's pub
// signatures their real parameter/return/effect types before the
// importing file's own checkImport pass resolves against them. Returns
// the loaded modules in dependency order (each after everything it
// imports), for the caller to feed to the interpreter in the same
// order.
func loadImports(sess *loader.Session, chk *check.Checker, prog *ast.Program) []*loader.LoadedModule {
	for _, imp := range prog.Imports {
		if _, err := sess.LoadModule(imp.Path); err != nil {
			chk.Diags.Errorf(diag.KindModuleNotFound, imp.Span(), "%v", err)
		}
	}
	var mods []*loader.LoadedModule
	for _, key := range sess.TopologicalSort() {
		mod, ok := sess.Module(strings.Split(key, "."))
		if !ok {
			continue
		}
		scope := sess.Symtab.EnterScope(symtab.ModuleScope)
		sess.Symtab.RegisterModule(mod.Path, scope)
		chk.CheckProgram(mod.Program, scope)
		mods = append(mods, mod)
	}
	return mods
}

func checkFile(filename string) {
	sess, err := newSession(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
		os.Exit(1)
	}
	src, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: cannot read file %q: %v\n", red("Error"), filename, err)
		os.Exit(1)
	}
	prog, err := frontend.Parse(filename, src)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("Parse error"), err)
		os.Exit(1)
	}

	chk := check.New(sess.Symtab)
	loadImports(sess, chk, prog)
	scope := sess.Symtab.EnterScope(symtab.ModuleScope)
	chk.CheckProgram(prog, scope)

	exitCode := 0
	for _, d := range chk.Diags.All() {
		fmt.Fprintln(os.Stderr, colorDiag(filename, d))
		if d.Severity == diag.Error {
			exitCode = 1
		}
	}
	if exitCode == 0 {
		fmt.Println(green(fmt.Sprintf("%s: no errors", filename)))
	}
	os.Exit(exitCode)
}

func runFile(filename string) {
	sess, err := newSession(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
		os.Exit(1)
	}
	src, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: cannot read file %q: %v\n", red("Error"), filename, err)
		os.Exit(1)
	}
	prog, err := frontend.Parse(filename, src)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("Parse error"), err)
		os.Exit(1)
	}

	chk := check.New(sess.Symtab)
	mods := loadImports(sess, chk, prog)
	scope := sess.Symtab.EnterScope(symtab.ModuleScope)
	chk.CheckProgram(prog, scope)
	for _, d := range chk.Diags.All() {
		fmt.Fprintln(os.Stderr, colorDiag(filename, d))
	}
	if chk.Diags.HasErrors() {
		os.Exit(1)
	}

	it := interp.New(nil)
	for _, mod := range mods {
		if err := it.LoadDecls(mod.Program); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", red("Runtime error"), err)
			os.Exit(1)
		}
	}
	if err := it.LoadDecls(prog); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("Runtime error"), err)
		os.Exit(1)
	}
	v, err := it.RunMain()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("Runtime error"), err)
		os.Exit(1)
	}
	if _, isUnit := v.(interp.UnitValue); !isUnit {
		fmt.Println(v.String())
	}
}

func colorDiag(file string, d diag.Diagnostic) string {
	msg := diag.Render(file, d)
	switch d.Severity {
	case diag.Error:
		return red(msg)
	case diag.Warning:
		return color.New(color.FgYellow).Sprint(msg)
	case diag.Hint:
		return cyan(msg)
	}
	return msg
}
