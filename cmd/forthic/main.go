// cmd/forthic/main.go
//
// Forthic command line: run scripts, or explore in a REPL with history and
// multi-line input (definitions and strings may span lines).

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/peterh/liner"

	"github.com/forthic-lang/forthic"
)

const (
	appName     = "forthic"
	historyFile = ".forthic_history"
	promptMain  = "> "
	promptCont  = "... "
)

var banner = fmt.Sprintf("Forthic %s REPL\nCtrl+C cancels input, Ctrl+D exits. Type :quit to exit.", forthic.Version)

func red(s string) string  { return "\x1b[31m" + s + "\x1b[0m" }
func blue(s string) string { return "\x1b[94m" + s + "\x1b[0m" }

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cmd := os.Args[1]
	switch cmd {
	case "run":
		os.Exit(cmdRun(os.Args[2:]))
	case "repl":
		os.Exit(cmdRepl(os.Args[2:]))
	case "version":
		fmt.Println(forthic.Version)
		return
	case "-h", "--help", "help":
		usage()
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "%s: unknown command %q\n", appName, cmd)
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Printf(`Forthic %s (built %s)

Usage:
  %s run <file.forthic>    Run a script.
  %s repl                  Start the REPL.
  %s version               Print the compiled version

`, forthic.Version, forthic.BuildDate, appName, appName, appName)
}

// -----------------------------------------------------------------------------
// run
// -----------------------------------------------------------------------------

func cmdRun(args []string) int {
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "usage: %s run <file.forthic>\n", appName)
		return 2
	}

	file := args[0]
	src, err := os.ReadFile(file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: cannot read %s: %v\n", appName, file, err)
		return 1
	}

	ip := forthic.NewStandardInterpreter()
	if err := ip.Run(string(src)); err != nil {
		fmt.Fprintln(os.Stderr, red(forthic.RenderErrorWithName(err, file, string(src))))
		return 1
	}
	return 0
}

// -----------------------------------------------------------------------------
// repl
// -----------------------------------------------------------------------------

func cmdRepl(_ []string) int {
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

	ip := forthic.NewStandardInterpreter()

	for {
		code, ok := readInput(ln, promptMain, promptCont)
		if !ok {
			fmt.Println()
			break
		}

		trimmed := strings.TrimSpace(code)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, ":") && !isDefinition(trimmed) {
			switch strings.ToLower(trimmed) {
			case ":quit":
				return 0
			case ":stack":
				fmt.Println(blue(formatStack(ip.Stack())))
				continue
			case ":clear":
				ip.SetStack(nil)
				continue
			default:
				fmt.Printf("unknown command. Type :quit to exit.\n")
				continue
			}
		}

		if err := ip.Run(code); err != nil {
			fmt.Fprintln(os.Stderr, red(forthic.RenderErrorWithName(err, "<repl>", code)))
			continue
		}
		fmt.Println(blue(formatStack(ip.Stack())))
		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))
	}

	return 0
}

// isDefinition distinguishes ": NAME ... ;" input from REPL commands like
// :quit. A definition has whitespace after the colon.
func isDefinition(code string) bool {
	return strings.HasPrefix(code, ": ") || strings.HasPrefix(code, ":\t")
}

func formatStack(stack []forthic.Value) string {
	if len(stack) == 0 {
		return "-- (empty)"
	}
	parts := make([]string, 0, len(stack))
	for _, v := range stack {
		parts = append(parts, forthic.FormatValue(v))
	}
	return "-- " + strings.Join(parts, " | ")
}

// readInput collects one unit of input, prompting for continuation lines
// while a string or definition is still open.
func readInput(ln *liner.State, prompt, cont string) (string, bool) {
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
		if !inputIncomplete(src) {
			return src, true
		}
	}
}

// inputIncomplete reports whether src is still mid-construct: an open
// string, an unbalanced definition, array, or module block.
func inputIncomplete(src string) bool {
	tz := forthic.NewTokenizer(src, "<repl>")
	depth := 0
	inDef := false
	for {
		tok, err := tz.NextToken()
		if err != nil {
			return strings.Contains(err.Error(), "unterminated")
		}
		switch tok.Kind {
		case forthic.TokEOS:
			return depth > 0 || inDef
		case forthic.TokStartDef, forthic.TokStartMemo:
			inDef = true
		case forthic.TokEndDef:
			inDef = false
		case forthic.TokStartArray, forthic.TokStartModule:
			depth++
		case forthic.TokEndArray, forthic.TokEndModule:
			if depth > 0 {
				depth--
			}
		}
	}
}
