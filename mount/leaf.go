package mount

import (
	"context"
	"syscall"
	"time"

	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"
)

// leaf is a regular read-only file backed by a value already materialized
// out of the map; there is no further fetch on Open or Read.
type leaf struct {
	fs.Inode
	data  []byte
	mtime time.Time
}

func (l *leaf) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	return nil, syscall.ENOENT
}

func (l *leaf) Getattr(ctx context.Context, f fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	out.Mode = fuse.S_IFREG | 0444
	out.Size = uint64(len(l.data))
	out.SetTimes(nil, &l.mtime, &l.mtime)
	return 0
}

func (l *leaf) Getxattr(ctx context.Context, attr string, dest []byte) (uint32, syscall.Errno) {
	// No extended attributes are exposed; unlike the teacher's leaf, a
	// Kelvin value has no separate integrity/checksum side-channel to
	// surface here, since the digest is a property of the tree position,
	// not of the value alone.
	return 0, syscall.ENODATA
}

func (l *leaf) Listxattr(ctx context.Context, dest []byte) (uint32, syscall.Errno) {
	return 0, 0
}

func (l *leaf) Open(ctx context.Context, flags uint32) (fh fs.FileHandle, fuseFlags uint32, errno syscall.Errno) {
	if flags&(syscall.O_WRONLY|syscall.O_RDWR) != 0 {
		return nil, 0, syscall.EROFS
	}
	return &leafHandle{data: l.data}, fuse.FOPEN_KEEP_CACHE, 0
}

type leafHandle struct {
	data []byte
}

func (h *leafHandle) Read(ctx context.Context, dest []byte, off int64) (fuse.ReadResult, syscall.Errno) {
	if off < 0 || off >= int64(len(h.data)) {
		return fuse.ReadResultData(nil), 0
	}
	end := off + int64(len(dest))
	if end > int64(len(h.data)) {
		end = int64(len(h.data))
	}
	return fuse.ReadResultData(h.data[off:end]), 0
}

var (
	_ fs.InodeEmbedder   = (*leaf)(nil)
	_ fs.NodeLookuper    = (*leaf)(nil)
	_ fs.NodeGetattrer   = (*leaf)(nil)
	_ fs.NodeGetxattrer  = (*leaf)(nil)
	_ fs.NodeListxattrer = (*leaf)(nil)
	_ fs.NodeOpener      = (*leaf)(nil)
	_ fs.FileReader      = (*leafHandle)(nil)
)
