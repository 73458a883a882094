// Package mount exposes a hamt.Map as a read-only go-fuse filesystem: every
// key in the map is listed as a file in the mount's root directory, and
// reading that file returns the associated value's bytes. It is a consumer
// of the substrate, not part of it, grounded on the teacher's
// fs/node_dirent.go and fs/node_leaf.go (dirent/leaf Inode split, Lookup /
// Readdir / Getattr / Getxattr / Listxattr plumbing).
package mount

import (
	"context"
	"syscall"
	"time"

	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/dusk-network/kelvin/annotate"
	"github.com/dusk-network/kelvin/hamt"
)

// entryTTL bounds how long the kernel caches a lookup or directory listing
// before asking again, mirroring the teacher's direntTTL.
const entryTTL = time.Minute

// FS is the root of the mounted filesystem. Embed it in an fs.Inode (via
// fs.NewNodeFS / server.Mount from the caller) to serve a snapshot of m.
// Every Lookup and Readdir reads straight from m, so Insert and Remove
// calls on that Map are visible on the next lookup without remounting. A
// Map returned by hamt.LoadMap is a separate value and is not picked up by
// an existing FS.
type FS struct {
	fs.Inode
	m     *hamt.Map[string, []byte, annotate.Cardinality]
	mtime time.Time
}

// New constructs a mountable root over m. mtime is reported as the mtime
// and ctime of every entry, typically the time the underlying Snapshot was
// taken.
func New(m *hamt.Map[string, []byte, annotate.Cardinality], mtime time.Time) *FS {
	return &FS{m: m, mtime: mtime}
}

func (r *FS) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	data, ok, err := r.m.Get(name)
	if err != nil {
		return nil, syscall.EIO
	}
	if !ok {
		return nil, syscall.ENOENT
	}

	out.Mode = fuse.S_IFREG | 0444
	out.Size = uint64(len(data))
	out.SetTimes(nil, &r.mtime, &r.mtime)
	out.SetEntryTimeout(entryTTL)
	out.SetAttrTimeout(entryTTL)

	child := r.NewInode(ctx, &leaf{data: data, mtime: r.mtime}, fs.StableAttr{Mode: fuse.S_IFREG})
	return child, 0
}

func (r *FS) Readdir(ctx context.Context) (fs.DirStream, syscall.Errno) {
	entries, err := r.m.Iter()
	if err != nil {
		return nil, syscall.EIO
	}
	dirEntries := make([]fuse.DirEntry, 0, len(entries))
	for _, e := range entries {
		dirEntries = append(dirEntries, fuse.DirEntry{
			Name: e.Key,
			Mode: fuse.S_IFREG,
		})
	}
	return fs.NewListDirStream(dirEntries), 0
}

func (r *FS) Getattr(ctx context.Context, f fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	out.Mode = fuse.S_IFDIR | 0555
	out.SetTimes(nil, &r.mtime, &r.mtime)
	return 0
}

var (
	_ fs.InodeEmbedder  = (*FS)(nil)
	_ fs.NodeLookuper   = (*FS)(nil)
	_ fs.NodeReaddirer  = (*FS)(nil)
	_ fs.NodeGetattrer  = (*FS)(nil)
)
