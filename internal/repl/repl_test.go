package repl

import (
	"bytes"
	"strings"
	"testing"

	"convfs/internal/dispatch"
	"convfs/internal/env"
)

func testRepl(t *testing.T, input string) (*REPL, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	e := env.New()
	d := dispatch.New(&dispatch.HandlerContext{Env: e})
	d.Register("echo", func(hc *dispatch.HandlerContext, args []string, stdin string) any {
		return strings.Join(args, " ") + "\n"
	})
	d.Register("fail", func(hc *dispatch.HandlerContext, args []string, stdin string) any {
		return dispatch.CommandResult{Success: false, Error: "boom", ExitCode: 1}
	})

	var out, errOut bytes.Buffer
	r := New(d, e, "> ", strings.NewReader(input), &out, &errOut)
	return r, &out, &errOut
}

func TestRunEchoesCommandOutput(t *testing.T) {
	r, out, _ := testRepl(t, "echo hello world\n")
	r.Run(0)
	if out.String() != "hello world\n" {
		t.Fatalf("got %q", out.String())
	}
}

func TestRunStopsOnExit(t *testing.T) {
	r, out, _ := testRepl(t, "echo one\nexit\necho two\n")
	r.Run(0)
	if out.String() != "one\n" {
		t.Fatalf("expected only the command before exit to run, got %q", out.String())
	}
}

func TestRunPrintsErrorsToErrWriter(t *testing.T) {
	r, _, errOut := testRepl(t, "fail\n")
	code := r.Run(0)
	if code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
	if !strings.Contains(errOut.String(), "boom") {
		t.Fatalf("expected error text in stderr, got %q", errOut.String())
	}
}

func TestRunSkipsBlankLines(t *testing.T) {
	r, out, _ := testRepl(t, "\n\necho ok\n\n")
	r.Run(0)
	if out.String() != "ok\n" {
		t.Fatalf("got %q", out.String())
	}
}

func TestRewriteNumericShortcut(t *testing.T) {
	if got := rewriteNumericShortcut("3"); got != "cd m3" {
		t.Fatalf("expected numeric shortcut rewrite, got %q", got)
	}
	if got := rewriteNumericShortcut("cd m3"); got != "cd m3" {
		t.Fatalf("expected non-numeric line to pass through, got %q", got)
	}
}

func TestCompletionCandidatesFiltersByPrefix(t *testing.T) {
	e := env.New()
	d := dispatch.New(&dispatch.HandlerContext{Env: e})
	r := New(d, e, "> ", strings.NewReader(""), &bytes.Buffer{}, &bytes.Buffer{})

	listParent := func(parent string) ([]string, error) {
		return []string{"chats", "chat-archive", "tags"}, nil
	}

	got, err := r.CompletionCandidates("ch", listParent)
	if err != nil {
		t.Fatalf("completion error: %v", err)
	}
	want := map[string]bool{"chats": true, "chat-archive": true}
	if len(got) != 2 {
		t.Fatalf("expected 2 candidates, got %v", got)
	}
	for _, c := range got {
		if !want[c] {
			t.Fatalf("unexpected candidate %q", c)
		}
	}
}
