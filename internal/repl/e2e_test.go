package repl

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"convfs/internal/commands"
	"convfs/internal/dispatch"
	"convfs/internal/env"
	"convfs/internal/model"
	"convfs/internal/navigator"
	"convfs/internal/repo"
)

// fullStack wires the mock repository, navigator, dispatcher, and command
// set together the same way cmd/convfs/commands/shell.go does, so these
// tests exercise the whole parse -> navigate -> dispatch pipeline
// in-process.
func fullStack(t *testing.T) (*dispatch.Dispatcher, *env.Environment, *repo.MockRepository) {
	t.Helper()
	r := repo.NewMockRepository()

	tree := model.NewConversationTree("abc12345", "Greeting", model.ConversationMetadata{
		Source:    "claude-code",
		Model:     "opus",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	})
	tree.AddMessage(&model.Message{ID: "msg-root", Role: model.RoleUser, Content: "Hi", Timestamp: time.Now()})
	tree.AddMessage(&model.Message{ID: "msg-a", Role: model.RoleAssistant, Content: "Hello", ParentID: "msg-root", Timestamp: time.Now()})
	tree.AddMessage(&model.Message{ID: "msg-b", Role: model.RoleAssistant, Content: "Howdy", ParentID: "msg-root", Timestamp: time.Now()})
	r.Seed(tree)

	nav := navigator.New(r, time.Second)
	e := env.New()
	d := dispatch.New(&dispatch.HandlerContext{Ctx: context.Background(), Nav: nav, Repo: r, Env: e})
	commands.Register(d)
	return d, e, r
}

func runScript(t *testing.T, script string) (string, string) {
	t.Helper()
	d, e, _ := fullStack(t)
	var out, errOut bytes.Buffer
	r := New(d, e, "> ", strings.NewReader(script), &out, &errOut)
	r.Run(0)
	return out.String(), errOut.String()
}

func TestScenarioEchoHelloWorld(t *testing.T) {
	out, errOut := runScript(t, "echo Hello World\n")
	if out != "Hello World\n" {
		t.Fatalf("got %q", out)
	}
	if errOut != "" {
		t.Fatalf("unexpected stderr %q", errOut)
	}
}

func TestScenarioEnvExpansion(t *testing.T) {
	d, e, _ := fullStack(t)
	e.Set(env.VarModel, "llama3.2")
	e.SetCWD("/chats")

	var out, errOut bytes.Buffer
	r := New(d, e, "> ", strings.NewReader("echo $CWD is $MODEL\n"), &out, &errOut)
	r.Run(0)
	if out.String() != "/chats is llama3.2\n" {
		t.Fatalf("got %q", out.String())
	}
}

func TestScenarioNavigateConversationTree(t *testing.T) {
	script := strings.Join([]string{
		"cd /chats/abc12345/",
		"pwd",
		"ls",
		"cd m1",
		"ls",
		"cat text",
	}, "\n") + "\n"

	out, errOut := runScript(t, script)
	if errOut != "" {
		t.Fatalf("unexpected stderr %q", errOut)
	}

	want := "/chats/abc12345\n" + // pwd
		"m1/\n" + // ls at ConversationRoot: no metadata files, just the root message
		"m1/  m2/  text  role  timestamp  id\n" + // ls at MessageNode
		"Hi" // cat text, raw message content
	if out != want {
		t.Fatalf("got %q, want %q", out, want)
	}
}

func TestScenarioPipeCatThroughGrep(t *testing.T) {
	script := "cd /chats/abc12345/\ncat m1/m1/text | grep -i hello\n"
	out, errOut := runScript(t, script)
	if errOut != "" {
		t.Fatalf("unexpected stderr %q", errOut)
	}
	if out != "Hello\n" {
		t.Fatalf("got %q", out)
	}
}

func TestScenarioFindByContentAndRole(t *testing.T) {
	out, errOut := runScript(t, "find /chats -content Howdy -role assistant\n")
	if errOut != "" {
		t.Fatalf("unexpected stderr %q", errOut)
	}
	if out != "/chats/abc12345/m1/m2\n" {
		t.Fatalf("got %q", out)
	}
}

func TestScenarioCdUpFromRootStaysAtRoot(t *testing.T) {
	out, _ := runScript(t, "cd ..\npwd\n")
	if out != "Already at root\n/\n" {
		t.Fatalf("got %q", out)
	}
}

func TestScenarioPipelineStopsAtFirstFailure(t *testing.T) {
	// grep with a broken regex fails; the trailing head stage must not run,
	// so the only output is the error on stderr.
	out, errOut := runScript(t, "echo hi | grep ( | head 1\n")
	if out != "" {
		t.Fatalf("expected no stdout, got %q", out)
	}
	if !strings.Contains(errOut, "grep") {
		t.Fatalf("expected grep error on stderr, got %q", errOut)
	}
}
