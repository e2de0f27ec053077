// Package repl implements the interactive shell loop: prompt, read,
// parse, dispatch, print. It owns the current working VFS path indirectly
// through internal/env; everything else is wired in as an already-built
// collaborator.
package repl

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"

	"convfs/internal/dispatch"
	"convfs/internal/env"
	"convfs/internal/shellsyntax"
)

// REPL owns the Dispatcher and Environment and drives the read-parse-
// dispatch-print loop against in and out.
type REPL struct {
	Dispatcher *dispatch.Dispatcher
	Env        *env.Environment
	Prompt     string

	in  *bufio.Scanner
	out io.Writer
	err io.Writer
}

// New creates a REPL reading lines from in and writing output to out and
// errors to errOut.
func New(d *dispatch.Dispatcher, e *env.Environment, prompt string, in io.Reader, out, errOut io.Writer) *REPL {
	return &REPL{
		Dispatcher: d,
		Env:        e,
		Prompt:     prompt,
		in:         bufio.NewScanner(in),
		out:        out,
		err:        errOut,
	}
}

var bareInteger = regexp.MustCompile(`^\d+$`)

// Run drives the loop until EOF, an exit/quit command, or the input
// reader is exhausted. It returns the exit code of the last command run
// (0 if none ran).
func (r *REPL) Run(stdinFD uintptr) int {
	interactive := isatty.IsTerminal(stdinFD) || isatty.IsCygwinTerminal(stdinFD)

	exitCode := 0
	for {
		if interactive {
			fmt.Fprint(r.out, r.promptString())
		}
		if !r.in.Scan() {
			break
		}
		line := strings.TrimSpace(r.in.Text())
		if line == "" {
			continue
		}

		line = rewriteNumericShortcut(line)

		name := firstToken(line)
		if name == "exit" || name == "quit" {
			break
		}

		result := r.execute(line)
		r.print(result)
		exitCode = result.ExitCode
	}
	return exitCode
}

func (r *REPL) promptString() string {
	cwd := r.Env.Get(env.VarCWD)
	if cwd == "" {
		cwd = "/"
	}
	return fmt.Sprintf("%s%s ", cwd, strings.TrimSpace(r.Prompt))
}

// execute expands, splits, tokenizes, and dispatches one input line.
func (r *REPL) execute(line string) dispatch.CommandResult {
	commands := shellsyntax.Parse(line, r.Env.Snapshot())
	return r.Dispatcher.ExecutePipeline(commands)
}

func (r *REPL) print(result dispatch.CommandResult) {
	if result.Output != "" {
		fmt.Fprint(r.out, result.Output)
	}
	if !result.Success {
		fmt.Fprintf(r.err, "%s\n", result.Error)
	}
}

func firstToken(line string) string {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToLower(fields[0])
}

// rewriteNumericShortcut lets a bare integer at the prompt behave as
// "cd mN", a convenience for walking directories of numbered message
// nodes. The rewrite happens here, before parsing, so vfspath.Parse
// stays a pure classifier.
func rewriteNumericShortcut(line string) string {
	if !bareInteger.MatchString(line) {
		return line
	}
	n, err := strconv.Atoi(line)
	if err != nil {
		return line
	}
	return fmt.Sprintf("cd m%d", n)
}

// CompletionCandidates lists the possible continuations of partial for
// tab completion: the parent directory's entry names, filtered by the
// final path segment typed so far.
func (r *REPL) CompletionCandidates(partial string, listParent func(parentRaw string) ([]string, error)) ([]string, error) {
	parent := partial
	prefix := ""
	if idx := strings.LastIndex(partial, "/"); idx >= 0 {
		parent = partial[:idx+1]
		prefix = partial[idx+1:]
	} else {
		parent = r.Env.Get(env.VarCWD)
		prefix = partial
	}

	names, err := listParent(parent)
	if err != nil {
		return nil, err
	}

	var out []string
	for _, name := range names {
		if strings.HasPrefix(name, prefix) {
			out = append(out, name)
		}
	}
	return out, nil
}
