package fusebridge

import (
	"context"
	"testing"

	"convfs/internal/navigator"
	"convfs/internal/repo"
	"convfs/internal/vfspath"
)

func TestReadFileContentRejectsDirectories(t *testing.T) {
	r := repo.NewMockRepository()
	nav := navigator.New(r, 0)
	convFS := New(nav, r, false)

	dir, err := vfspath.Parse("/chats", "/")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	n := &node{fs: convFS, path: dir}
	if _, err := n.readFileContent(context.Background()); err == nil {
		t.Fatalf("expected a directory path to be rejected as a file")
	}
}

func TestRootNodeParsesToVFSRoot(t *testing.T) {
	r := repo.NewMockRepository()
	nav := navigator.New(r, 0)
	convFS := New(nav, r, false)

	root := convFS.rootNode()
	if root.path.Kind != vfspath.KindRoot {
		t.Fatalf("expected root node to carry KindRoot, got %v", root.path.Kind)
	}
	if !root.path.IsDirectory {
		t.Fatalf("expected root node to be a directory")
	}
}
