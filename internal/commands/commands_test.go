package commands

import (
	"context"
	"testing"
	"time"

	"convfs/internal/dispatch"
	"convfs/internal/env"
	"convfs/internal/model"
	"convfs/internal/navigator"
	"convfs/internal/repo"
	"convfs/internal/shellsyntax"
)

func seedTree(r *repo.MockRepository, id string) *model.ConversationTree {
	tree := model.NewConversationTree(id, "Test conversation", model.ConversationMetadata{
		Source:    "claude-code",
		Model:     "opus",
		Tags:      []string{"physics/simulator"},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	})
	tree.AddMessage(&model.Message{ID: "root1", Role: model.RoleUser, Content: "hello", Timestamp: time.Now()})
	tree.AddMessage(&model.Message{ID: "child1", Role: model.RoleAssistant, Content: "hi back", ParentID: "root1", Timestamp: time.Now()})
	r.Seed(tree)
	return tree
}

func testContext() (*dispatch.HandlerContext, *repo.MockRepository) {
	r := repo.NewMockRepository()
	nav := navigator.New(r, time.Second)
	e := env.New()
	hc := &dispatch.HandlerContext{Ctx: context.Background(), Nav: nav, Repo: r, Env: e}
	return hc, r
}

func TestCdIntoConversationAndBack(t *testing.T) {
	hc, r := testContext()
	seedTree(r, "abc12345")

	result := Cd(hc, []string{"/chats/abc12345"}, "")
	if cr, ok := result.(dispatch.CommandResult); !ok || !cr.Success {
		t.Fatalf("cd into conversation failed: %+v", result)
	}
	if hc.Env.Get(env.VarCWD) == "/" {
		t.Fatalf("expected cwd to change, still at /")
	}

	result = Cd(hc, []string{"/"}, "")
	if cr, ok := result.(dispatch.CommandResult); !ok || !cr.Success {
		t.Fatalf("cd to root failed: %+v", result)
	}
	if hc.Env.Get(env.VarCWD) != "/" {
		t.Fatalf("expected cwd /, got %q", hc.Env.Get(env.VarCWD))
	}
}

func TestLsListsRootFixedEntries(t *testing.T) {
	hc, _ := testContext()
	out := Ls(hc, nil, "")
	s, ok := out.(string)
	if !ok {
		t.Fatalf("expected string output, got %+v", out)
	}
	if s == "" {
		t.Fatalf("expected non-empty root listing")
	}
}

func TestCatMissingOperandUsesStdin(t *testing.T) {
	hc, _ := testContext()
	out := Cat(hc, nil, "piped text")
	if s, ok := out.(string); !ok || s != "piped text" {
		t.Fatalf("expected stdin passthrough, got %+v", out)
	}
}

func TestCatMissingOperandNoStdinIsError(t *testing.T) {
	hc, _ := testContext()
	out := Cat(hc, nil, "")
	if _, ok := out.(error); !ok {
		t.Fatalf("expected an error, got %+v", out)
	}
}

func TestCatMessageFileFields(t *testing.T) {
	hc, r := testContext()
	seedTree(r, "abc12345")

	out := Cat(hc, []string{"/chats/abc12345/m1/text"}, "")
	if s, ok := out.(string); !ok || s != "hello" {
		t.Fatalf("expected message text, got %+v", out)
	}

	out = Cat(hc, []string{"/chats/abc12345/m1/role"}, "")
	if s, ok := out.(string); !ok || s != "user" {
		t.Fatalf("expected role user, got %+v", out)
	}
}

func TestHeadTakesFirstLines(t *testing.T) {
	hc, _ := testContext()
	out := Head(hc, []string{"2"}, "line1\nline2\nline3\n")
	if s, ok := out.(string); !ok || s != "line1\nline2\n" {
		t.Fatalf("got %+v", out)
	}
}

func TestHeadZeroEmitsNothing(t *testing.T) {
	hc, _ := testContext()
	out := Head(hc, []string{"0"}, "line1\nline2\n")
	if s, ok := out.(string); !ok || s != "" {
		t.Fatalf("got %+v", out)
	}
}

func TestTailTakesLastLinesIgnoringTrailingNewline(t *testing.T) {
	hc, _ := testContext()
	out := Tail(hc, []string{"2"}, "line1\nline2\nline3\n")
	if s, ok := out.(string); !ok || s != "line2\nline3\n" {
		t.Fatalf("got %+v", out)
	}
}

func TestTailWithoutTrailingNewlineAppendsOne(t *testing.T) {
	hc, _ := testContext()
	out := Tail(hc, []string{"1"}, "line1\nline2")
	if s, ok := out.(string); !ok || s != "line2\n" {
		t.Fatalf("got %+v", out)
	}
}

func TestStarThenUnstar(t *testing.T) {
	hc, r := testContext()
	seedTree(r, "abc12345")

	result := Star(hc, []string{"abc12345"}, "")
	if cr, ok := result.(dispatch.CommandResult); !ok || !cr.Success {
		t.Fatalf("star failed: %+v", result)
	}

	list, err := r.ListConversations(hc.Ctx, repo.Filter{Starred: boolPtr(true)})
	if err != nil || len(list) != 1 {
		t.Fatalf("expected starred conversation, err=%v list=%+v", err, list)
	}

	result = Unstar(hc, []string{"abc12345"}, "")
	if cr, ok := result.(dispatch.CommandResult); !ok || !cr.Success {
		t.Fatalf("unstar failed: %+v", result)
	}
	list, err = r.ListConversations(hc.Ctx, repo.Filter{Starred: boolPtr(true)})
	if err != nil || len(list) != 0 {
		t.Fatalf("expected no starred conversations after unstar, err=%v list=%+v", err, list)
	}
}

func TestStarUnknownTargetIsError(t *testing.T) {
	hc, _ := testContext()
	result := Star(hc, []string{"nosuchid1"}, "")
	if _, ok := result.(error); !ok {
		t.Fatalf("expected error for unknown conversation, got %+v", result)
	}
}

func TestTitleRenamesCurrentConversation(t *testing.T) {
	hc, r := testContext()
	seedTree(r, "abc12345")
	hc.Env.SetConversation("abc12345", 0)

	result := Title(hc, []string{"New", "Title", "Here"}, "")
	if cr, ok := result.(dispatch.CommandResult); !ok || !cr.Success {
		t.Fatalf("title failed: %+v", result)
	}

	tree, _ := r.LoadConversation(hc.Ctx, "abc12345")
	if tree.Title != "New Title Here" {
		t.Fatalf("expected renamed title, got %q", tree.Title)
	}
}

func TestLnTagsConversationIntoTagDir(t *testing.T) {
	hc, r := testContext()
	seedTree(r, "abc12345")

	result := Ln(hc, []string{"abc12345", "/tags/robotics"}, "")
	if cr, ok := result.(dispatch.CommandResult); !ok || !cr.Success {
		t.Fatalf("ln failed: %+v", result)
	}

	list, err := r.ListConversationsByTag(hc.Ctx, "robotics")
	if err != nil || len(list) != 1 {
		t.Fatalf("expected conversation tagged robotics, err=%v list=%+v", err, list)
	}
}

func TestLnBulkFromStdin(t *testing.T) {
	hc, r := testContext()
	seedTree(r, "abc12345")
	seedTree(r, "def67890")

	result := Ln(hc, []string{"/tags/robotics"}, "abc12345\ndef67890\n")
	cr, ok := result.(dispatch.CommandResult)
	if !ok || !cr.Success {
		t.Fatalf("bulk ln failed: %+v", result)
	}
	if cr.Output != "2 linked\n" {
		t.Fatalf("expected 2 linked, got %q", cr.Output)
	}

	list, err := r.ListConversationsByTag(hc.Ctx, "robotics")
	if err != nil || len(list) != 2 {
		t.Fatalf("expected 2 conversations tagged robotics, err=%v list=%+v", err, list)
	}
}

func TestCpDuplicatesConversation(t *testing.T) {
	hc, r := testContext()
	seedTree(r, "abc12345")

	result := Cp(hc, []string{"abc12345", "/tags/archive"}, "")
	cr, ok := result.(dispatch.CommandResult)
	if !ok || !cr.Success || cr.Output == "" {
		t.Fatalf("cp failed: %+v", result)
	}

	list, err := r.ListConversationsByTag(hc.Ctx, "archive")
	if err != nil || len(list) != 1 {
		t.Fatalf("expected duplicate tagged archive, err=%v list=%+v", err, list)
	}
}

func TestMvMovesTagFromOneDirToAnother(t *testing.T) {
	hc, r := testContext()
	seedTree(r, "abc12345")
	if _, err := r.AddTags(hc.Ctx, "abc12345", []string{"robotics"}); err != nil {
		t.Fatalf("seed tag failed: %v", err)
	}

	result := Mv(hc, []string{"/tags/robotics/abc12345", "/tags/archive"}, "")
	if cr, ok := result.(dispatch.CommandResult); !ok || !cr.Success {
		t.Fatalf("mv failed: %+v", result)
	}

	robotics, _ := r.ListConversationsByTag(hc.Ctx, "robotics")
	archive, _ := r.ListConversationsByTag(hc.Ctx, "archive")
	if len(robotics) != 0 || len(archive) != 1 {
		t.Fatalf("expected tag moved, robotics=%+v archive=%+v", robotics, archive)
	}
}

func TestMvRejectsSrcOutsideTags(t *testing.T) {
	hc, r := testContext()
	seedTree(r, "abc12345")

	result := Mv(hc, []string{"/chats/abc12345", "/tags/archive"}, "")
	if _, ok := result.(error); !ok {
		t.Fatalf("expected error for src outside /tags, got %+v", result)
	}
}

func TestRmHardDeletesUnderChatsWithForce(t *testing.T) {
	hc, r := testContext()
	seedTree(r, "abc12345")

	result := Rm(hc, []string{"-f", "/chats/abc12345"}, "")
	if cr, ok := result.(dispatch.CommandResult); !ok || !cr.Success {
		t.Fatalf("rm failed: %+v", result)
	}
	if _, err := r.LoadConversation(hc.Ctx, "abc12345"); err == nil {
		t.Fatalf("expected conversation to be deleted")
	}
}

func TestRmUnderChatsRefusesWithoutForce(t *testing.T) {
	hc, r := testContext()
	seedTree(r, "abc12345")

	result := Rm(hc, []string{"/chats/abc12345"}, "")
	if _, ok := result.(error); !ok {
		t.Fatalf("expected refusal without -f, got %+v", result)
	}
	if _, err := r.LoadConversation(hc.Ctx, "abc12345"); err != nil {
		t.Fatalf("expected conversation to survive: %v", err)
	}
}

func TestRmBulkStopsAtFirstFailure(t *testing.T) {
	hc, r := testContext()
	seedTree(r, "abc12345")

	result := Rm(hc, []string{"-f"}, "/chats/abc12345\n/chats/nosuchid\n")
	if _, ok := result.(error); !ok {
		t.Fatalf("expected error reporting partial success, got %+v", result)
	}
	if _, err := r.LoadConversation(hc.Ctx, "abc12345"); err == nil {
		t.Fatalf("expected first conversation to already be deleted")
	}
}

func TestMkdirOnlyAcceptsTagPaths(t *testing.T) {
	hc, _ := testContext()

	result := Mkdir(hc, []string{"/tags/new-topic"}, "")
	if _, ok := result.(dispatch.CommandResult); !ok {
		t.Fatalf("expected success for /tags path, got %+v", result)
	}

	result = Mkdir(hc, []string{"/chats"}, "")
	if _, ok := result.(error); !ok {
		t.Fatalf("expected error for non-tag path, got %+v", result)
	}
}

func TestHelpListsRegisteredCommands(t *testing.T) {
	hc, _ := testContext()
	out := Help(hc, nil, "")
	s, ok := out.(string)
	if !ok || s == "" {
		t.Fatalf("expected non-empty help text, got %+v", out)
	}
}

func TestRegisterBindsEveryCommandName(t *testing.T) {
	hc, _ := testContext()
	d := dispatch.New(hc)
	Register(d)

	for _, name := range []string{
		"cd", "ls", "pwd", "cat", "head", "tail", "echo", "grep", "find", "tree", "paths",
		"star", "unstar", "pin", "unpin", "archive", "unarchive", "title",
		"ln", "cp", "mv", "rm", "mkdir", "help", "exit", "quit",
	} {
		result := d.ExecutePipeline([]shellsyntax.ParsedCommand{{Name: name}})
		if result.ExitCode == 127 {
			t.Fatalf("command %q is not registered", name)
		}
	}
}

func boolPtr(b bool) *bool { return &b }
