// Package fusebridge adapts the Navigator into a real, read-only
// kernel-level FUSE filesystem for the optional `convfs mount`
// subcommand. A single node type serves every VFS path kind, since every
// path family already funnels through one Navigator: directories come
// from ListDirectory, file contents from the same message-field rendering
// the shell's cat uses.
package fusebridge

import (
	"context"
	"fmt"
	"log"
	"strings"
	"syscall"

	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"

	"convfs/internal/commands"
	"convfs/internal/navigator"
	"convfs/internal/repo"
	"convfs/internal/vfspath"
)

// ConvFS is the FUSE filesystem root. Every directory the Navigator can
// list becomes a kernel directory; every vfspath.KindMessageFile becomes
// a kernel file exposing that message field's bytes.
type ConvFS struct {
	fs.Inode
	nav   *navigator.Navigator
	repo  repo.Repository
	debug bool
}

// New creates a ConvFS root bridging nav/r. The root's own path is "/".
func New(nav *navigator.Navigator, r repo.Repository, debug bool) *ConvFS {
	return &ConvFS{nav: nav, repo: r, debug: debug}
}

// Mount mounts the filesystem read-only at mountpoint. The VFS has no
// write semantics of its own to offer the kernel; all mutation goes
// through the shell's commands, so the mount is read-only too.
func (c *ConvFS) Mount(mountpoint string) (*fuse.Server, error) {
	opts := &fs.Options{
		MountOptions: fuse.MountOptions{
			Name:    "convfs",
			FsName:  "convfs",
			Debug:   c.debug,
			Options: []string{"ro"},
		},
	}
	server, err := fs.Mount(mountpoint, c.rootNode(), opts)
	if err != nil {
		return nil, fmt.Errorf("mount failed: %w", err)
	}
	return server, nil
}

func (c *ConvFS) rootNode() *node {
	root, err := vfspath.Parse("/", "/")
	if err != nil {
		// "/" always parses; a failure here means vfspath's Root
		// classification is broken, which every other package already
		// depends on.
		panic(err)
	}
	return &node{fs: c, path: root}
}

// node is the single fs.Inode type for every VFS path kind: a directory
// node for anything Navigator can list, a file node for MessageFile
// leaves.
type node struct {
	fs.Inode
	fs   *ConvFS
	path *vfspath.Path
}

var (
	_ fs.NodeReaddirer = (*node)(nil)
	_ fs.NodeLookuper  = (*node)(nil)
	_ fs.NodeOpener    = (*node)(nil)
	_ fs.NodeReader    = (*node)(nil)
	_ fs.NodeGetattrer = (*node)(nil)
)

func (n *node) Readdir(ctx context.Context) (fs.DirStream, syscall.Errno) {
	if !n.path.IsDirectory {
		return nil, syscall.ENOTDIR
	}

	entries, err := n.fs.nav.ListDirectory(ctx, n.path)
	if err != nil {
		if n.fs.debug {
			log.Printf("[fusebridge] Readdir %s: %v", n.path.Normalized, err)
		}
		return nil, syscall.ENOENT
	}

	// The Navigator's MessageNode listing already includes the four
	// synthetic metadata files alongside the child directories, so the
	// entries map one-to-one onto kernel dir entries.
	dirEntries := make([]fuse.DirEntry, 0, len(entries))
	for _, e := range entries {
		mode := uint32(fuse.S_IFREG)
		if e.IsDirectory {
			mode = fuse.S_IFDIR
		}
		dirEntries = append(dirEntries, fuse.DirEntry{Name: e.Name, Mode: mode})
	}

	return fs.NewListDirStream(dirEntries), fs.OK
}

func (n *node) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	childRaw := strings.TrimRight(n.path.Normalized, "/") + "/" + name
	childPath, err := vfspath.Parse(childRaw, "/")
	if err != nil {
		return nil, syscall.ENOENT
	}
	if childPath.Kind == vfspath.KindConversation {
		// Listings show conversations as directories; look them up as the
		// ConversationRoot directory rather than the bare reference.
		childPath, err = vfspath.Parse(childRaw+"/", "/")
		if err != nil {
			return nil, syscall.ENOENT
		}
	}

	child := &node{fs: n.fs, path: childPath}
	mode := uint32(fuse.S_IFREG)
	if childPath.IsDirectory {
		mode = fuse.S_IFDIR
	}
	return n.NewInode(ctx, child, fs.StableAttr{Mode: mode}), fs.OK
}

func (n *node) Getattr(ctx context.Context, f fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	if n.path.IsDirectory {
		out.Mode = fuse.S_IFDIR | 0555
		return fs.OK
	}
	content, err := n.readFileContent(ctx)
	if err != nil {
		return syscall.ENOENT
	}
	out.Mode = fuse.S_IFREG | 0444
	out.Size = uint64(len(content))
	return fs.OK
}

func (n *node) Open(ctx context.Context, flags uint32) (fs.FileHandle, uint32, syscall.Errno) {
	if n.path.IsDirectory {
		return nil, 0, syscall.EISDIR
	}
	return nil, fuse.FOPEN_DIRECT_IO, fs.OK
}

func (n *node) Read(ctx context.Context, f fs.FileHandle, dest []byte, off int64) (fuse.ReadResult, syscall.Errno) {
	content, err := n.readFileContent(ctx)
	if err != nil {
		return nil, syscall.ENOENT
	}
	if off >= int64(len(content)) {
		return fuse.ReadResultData(nil), fs.OK
	}
	end := off + int64(len(dest))
	if end > int64(len(content)) {
		end = int64(len(content))
	}
	return fuse.ReadResultData([]byte(content[off:end])), fs.OK
}

// readFileContent renders a MessageFile leaf's bytes the same way the
// shell's `cat` handler would (internal/commands.RenderMessageFile),
// keeping the kernel view and the in-process shell view of one message
// field consistent.
func (n *node) readFileContent(ctx context.Context) (string, error) {
	if n.path.Kind != vfspath.KindMessageFile {
		return "", fmt.Errorf("not a file: %s", n.path.Normalized)
	}
	return commands.RenderMessageFile(ctx, n.fs.repo, n.path)
}
