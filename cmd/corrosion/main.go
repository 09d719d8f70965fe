package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/peterh/liner"

	corrosion "github.com/lauri-lyytikainen/corrosion-language"
)

const (
	appName     = "corrosion"
	historyFile = ".corrosion_history"
	promptMain  = "==> "
	promptCont  = "... "
)

var (
	banner = "Corrosion REPL\nCtrl+C cancels input, Ctrl+D exits. Type exit or quit to leave."
	helpText = `
REPL commands:
  :help          Show this text
  :clear         Clear the screen
  :load <path>   Load a file's declarations into the session
  exit / quit    Leave the REPL
`
)

func red(s string) string { return "\x1b[31m" + s + "\x1b[0m" }

func main() {
	fs := flag.NewFlagSet(appName, flag.ContinueOnError)
	loadPath := fs.String("load", "", "load a file's declarations before starting the REPL")
	if err := fs.Parse(os.Args[1:]); err != nil {
		os.Exit(2)
	}

	if args := fs.Args(); len(args) >= 1 {
		os.Exit(cmdRun(args[0]))
	}
	os.Exit(cmdRepl(*loadPath))
}

// -----------------------------------------------------------------------------
// batch mode: `corrosion <file.corr>`
// -----------------------------------------------------------------------------

func cmdRun(file string) int {
	src, err := os.ReadFile(file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: cannot read %s: %v\n", appName, file, err)
		return 1
	}

	sess := newSession()
	dir := filepath.Dir(file)
	if perr := sess.runStatements(string(src), dir); perr != nil {
		fmt.Fprintln(os.Stderr, perr.Error())
		return 1
	}
	return 0
}

// -----------------------------------------------------------------------------
// session: the persistent state shared across one REPL run or one batch file
// -----------------------------------------------------------------------------

// session bundles the long-lived pipeline state a REPL needs to carry
// bindings forward between inputs: one TypeEnv/ValueEnv root scope, one
// Checker (so its Unifier keeps earlier inferred types resolvable), one
// Interpreter, and one Loader (so a path imported twice across separate
// REPL lines is still cached and cycle-checked), per spec §7: "The REPL
// catches errors ... and returns to the prompt without losing prior
// bindings."
type session struct {
	checker  *corrosion.Checker
	typeEnv  *corrosion.TypeEnv
	ip       *corrosion.Interpreter
	valueEnv *corrosion.ValueEnv
	loader   *corrosion.Loader
}

func newSession() *session {
	return &session{
		checker:  corrosion.NewChecker(),
		typeEnv:  corrosion.NewTypeEnv(nil),
		ip:       corrosion.NewInterpreter(),
		valueEnv: corrosion.NewValueEnv(nil),
		loader:   corrosion.NewLoader(),
	}
}

// runStatements parses src as a full sequence of statements (batch-file
// shape), type-checks and evaluates them in order against the session's
// persistent scopes.
func (s *session) runStatements(src, dir string) error {
	prog, perr := corrosion.Parse(src)
	if perr != nil {
		return perr
	}
	return s.runProgram(prog, dir)
}

func (s *session) runProgram(prog *corrosion.Program, dir string) error {
	mods, rtErr := corrosion.ResolveImports(prog, dir, s.loader)
	if rtErr != nil {
		return rtErr
	}
	if err := s.checker.CheckProgram(prog, s.typeEnv, mods); err != nil {
		return err
	}
	s.ip.Modules = mergeModules(s.ip.Modules, mods)
	s.ip.Types = s.checker.Unifier()
	if _, err := s.ip.EvalProgram(prog, s.valueEnv); err != nil {
		return err
	}
	return nil
}

func mergeModules(dst, src map[string]*corrosion.Module) map[string]*corrosion.Module {
	if dst == nil {
		dst = make(map[string]*corrosion.Module)
	}
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// evalREPLLine implements the bare-expression-gets-implicit-print rule
// (spec §6).
func (s *session) evalREPLLine(src, dir string) (string, error) {
	stmts, bare, perr := corrosion.ParseREPLInput(src)
	if perr != nil {
		return "", perr
	}
	if bare != nil {
		prog := &corrosion.Program{Statements: []corrosion.Statement{
			&corrosion.ExprStatement{Expr: bare},
		}}
		mods, rtErr := corrosion.ResolveImports(prog, dir, s.loader)
		if rtErr != nil {
			return "", rtErr
		}
		if err := s.checker.CheckProgram(prog, s.typeEnv, mods); err != nil {
			return "", err
		}
		s.ip.Modules = mergeModules(s.ip.Modules, mods)
		s.ip.Types = s.checker.Unifier()
		v, err := s.ip.EvalProgram(prog, s.valueEnv)
		if err != nil {
			return "", err
		}
		return corrosion.FormatValue(v), nil
	}

	prog := &corrosion.Program{Statements: stmts}
	if err := s.runProgram(prog, dir); err != nil {
		return "", err
	}
	return "", nil
}

// -----------------------------------------------------------------------------
// repl
// -----------------------------------------------------------------------------

func cmdRepl(loadPath string) (ret int) {
	fmt.Println(banner)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigc)
	go func() {
		<-sigc
		ln.Close()
		os.Exit(130)
	}()

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}

	sess := newSession()
	cwd, _ := os.Getwd()

	if loadPath != "" {
		src, err := os.ReadFile(loadPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: cannot read %s: %v\n", appName, loadPath, err)
		} else if err := sess.runStatements(string(src), filepath.Dir(loadPath)); err != nil {
			fmt.Fprintln(os.Stderr, red(err.Error()))
		}
	}

	for {
		code, ok := readByParseProbe(ln, promptMain, promptCont)
		if !ok {
			fmt.Println()
			break
		}

		trimmed := strings.TrimSpace(code)
		if trimmed == "" {
			continue
		}

		switch trimmed {
		case "exit", "quit":
			return 0
		case ":help":
			fmt.Print(helpText)
			continue
		case ":clear":
			fmt.Print("\x1b[H\x1b[2J")
			continue
		}
		if strings.HasPrefix(trimmed, ":load ") {
			path := strings.TrimSpace(strings.TrimPrefix(trimmed, ":load "))
			src, err := os.ReadFile(path)
			if err != nil {
				fmt.Fprintf(os.Stderr, "%s: cannot read %s: %v\n", appName, path, err)
				continue
			}
			if err := sess.runStatements(string(src), filepath.Dir(path)); err != nil {
				fmt.Fprintln(os.Stderr, red(err.Error()))
				continue
			}
			ln.AppendHistory(trimmed)
			continue
		}

		rendered, err := sess.evalREPLLine(code, cwd)
		if err != nil {
			fmt.Fprintln(os.Stderr, red(err.Error()))
			continue
		}
		if rendered != "" {
			fmt.Println(rendered)
		}
		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))
	}

	return 0
}

// readByParseProbe reads lines until the accumulated input parses
// cleanly or fails with a non-"incomplete" error, supporting multi-line
// statements (a block opened but not yet closed, etc.). Grounded on the
// teacher's readByParseProbe/IsIncomplete REPL continuation convention.
func readByParseProbe(ln *liner.State, prompt, cont string) (string, bool) {
	var b strings.Builder

	for {
		var line string
		var err error
		if b.Len() == 0 {
			line, err = ln.Prompt(prompt)
		} else {
			line, err = ln.Prompt(cont)
		}
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			return "", true
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		trimmed := strings.TrimSpace(src)
		if strings.HasPrefix(trimmed, ":") || trimmed == "exit" || trimmed == "quit" {
			return src, true
		}

		_, _, perr := corrosion.ParseREPLInput(src)
		if perr == nil {
			return src, true
		}
		if perr.Incomplete {
			continue
		}
		return src, true
	}
}
