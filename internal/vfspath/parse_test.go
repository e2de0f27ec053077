package vfspath

import "testing"

func TestParseRoot(t *testing.T) {
	p, err := Parse("/", "/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Kind != KindRoot || p.Normalized != "/" {
		t.Fatalf("got kind=%v normalized=%q", p.Kind, p.Normalized)
	}
}

func TestParseChatsConversationDirectoryVsReference(t *testing.T) {
	id := "abc12345"

	p, err := Parse("/chats/"+id, "/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Kind != KindConversation || p.IsDirectory {
		t.Fatalf("expected non-directory Conversation, got kind=%v dir=%v", p.Kind, p.IsDirectory)
	}

	p, err = Parse("/chats/"+id+"/", "/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Kind != KindConversationRoot || !p.IsDirectory {
		t.Fatalf("expected directory ConversationRoot, got kind=%v dir=%v", p.Kind, p.IsDirectory)
	}
}

func TestParseStarredAlwaysDirectory(t *testing.T) {
	id := "abc12345"
	p, err := Parse("/starred/"+id, "/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Kind != KindConversationRoot || !p.IsDirectory {
		t.Fatalf("expected directory ConversationRoot under /starred, got kind=%v dir=%v", p.Kind, p.IsDirectory)
	}
}

func TestParseMessageNodeAndFile(t *testing.T) {
	id := "abc12345"

	p, err := Parse("/chats/"+id+"/m1/m2", "/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Kind != KindMessageNode {
		t.Fatalf("expected MessageNode, got %v", p.Kind)
	}
	if len(p.MessagePath) != 2 || p.MessagePath[0] != 1 || p.MessagePath[1] != 2 {
		t.Fatalf("unexpected message path: %v", p.MessagePath)
	}

	p, err = Parse("/chats/"+id+"/m1/text", "/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Kind != KindMessageFile || p.FileName != MetaText {
		t.Fatalf("expected MessageFile(text), got kind=%v file=%v", p.Kind, p.FileName)
	}
	if len(p.MessagePath) != 1 || p.MessagePath[0] != 1 {
		t.Fatalf("unexpected message path: %v", p.MessagePath)
	}
}

func TestParseInvalidMessageSegment(t *testing.T) {
	id := "abc12345"
	_, err := Parse("/chats/"+id+"/bogus", "/")
	if err == nil {
		t.Fatalf("expected error for invalid message node")
	}
}

func TestParseM0IsSyntacticallyValid(t *testing.T) {
	// m0 is rejected by the Navigator (always out of range), not the Parser.
	id := "abc12345"
	p, err := Parse("/chats/"+id+"/m0", "/")
	if err != nil {
		t.Fatalf("unexpected parse error for m0: %v", err)
	}
	if p.MessagePath[0] != 0 {
		t.Fatalf("expected message path [0], got %v", p.MessagePath)
	}
}

func TestParseUnknownRoot(t *testing.T) {
	_, err := Parse("/bogus", "/")
	if err == nil {
		t.Fatalf("expected error for unknown root")
	}
}

func TestParseTagDirVsConversationInTags(t *testing.T) {
	p, err := Parse("/tags/physics/simulator", "/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Kind != KindTagDir || p.TagPath != "physics/simulator" {
		t.Fatalf("got kind=%v tagPath=%q", p.Kind, p.TagPath)
	}

	id := "abc12345"
	p, err = Parse("/tags/physics/"+id, "/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Kind != KindConversationRoot || p.TagPath != "physics" || p.ConversationID != id {
		t.Fatalf("got kind=%v tagPath=%q convID=%q", p.Kind, p.TagPath, p.ConversationID)
	}
}

func TestParseRecentSourceModel(t *testing.T) {
	p, err := Parse("/recent/today", "/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Kind != KindRecent {
		t.Fatalf("expected Recent, got %v", p.Kind)
	}

	p, err = Parse("/source/claude-code", "/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Kind != KindSource {
		t.Fatalf("expected Source, got %v", p.Kind)
	}
}

func TestParseNormalizationIdempotent(t *testing.T) {
	cases := []string{
		"/chats/../chats/abc12345/",
		"/./tags/./a/b/",
		"/chats//abc12345//m1",
	}
	for _, raw := range cases {
		p1, err := Parse(raw, "/")
		if err != nil {
			t.Fatalf("parse(%q): %v", raw, err)
		}
		p2, err := Parse(p1.Normalized, "/")
		if err != nil {
			t.Fatalf("parse(%q) (reparse): %v", p1.Normalized, err)
		}
		if p1.Normalized != p2.Normalized {
			t.Fatalf("normalization not idempotent: %q != %q", p1.Normalized, p2.Normalized)
		}
	}
}

func TestParseDotDotAtRootStaysAtRoot(t *testing.T) {
	p, err := Parse("/..", "/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Normalized != "/" {
		t.Fatalf("expected /, got %q", p.Normalized)
	}
}

func TestParseRelativeToCwd(t *testing.T) {
	p, err := Parse("m1", "/chats/abc12345")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Normalized != "/chats/abc12345/m1" {
		t.Fatalf("got %q", p.Normalized)
	}
}
