// Copyright 2019 The gVisor Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package vfsfuse

import (
	"context"
	"syscall"
	"time"

	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/corevfs/corevfs/pkg/vfs"
)

// Node bridges a vfs.Location into go-fuse's tree: one Node per dentry the
// kernel currently holds a reference to. It is a dynamically discovered
// filesystem in go-fuse's terms (every Lookup/Readdir round-trips into the
// backing Location), since corevfs namespaces are normally too large to
// mirror in memory up front.
type Node struct {
	fs.Inode

	loc *vfs.Location
}

var (
	_ fs.InodeEmbedder = (*Node)(nil)
	_ fs.NodeLookuper  = (*Node)(nil)
	_ fs.NodeReaddirer = (*Node)(nil)
	_ fs.NodeGetattrer = (*Node)(nil)
	_ fs.NodeSetattrer = (*Node)(nil)
	_ fs.NodeReader    = (*Node)(nil)
	_ fs.NodeWriter    = (*Node)(nil)
	_ fs.NodeCreater   = (*Node)(nil)
	_ fs.NodeMkdirer   = (*Node)(nil)
	_ fs.NodeUnlinker  = (*Node)(nil)
	_ fs.NodeRmdirer   = (*Node)(nil)
	_ fs.NodeRenamer   = (*Node)(nil)
	_ fs.NodeLinker    = (*Node)(nil)
	_ fs.NodeSymlinker = (*Node)(nil)
	_ fs.NodeReadlinker = (*Node)(nil)
)

// newChild wraps child in a Node and attaches it below n, populating out
// with its current attributes.
func (n *Node) newChild(ctx context.Context, child *vfs.Location, out *fuse.EntryOut) *fs.Inode {
	md, err := child.Metadata()
	if err == nil {
		fillAttr(&out.Attr, md)
	}
	stable := fs.StableAttr{
		Mode: modeBits(child.NodeType()),
		Ino:  md.Inode,
	}
	return n.NewInode(ctx, &Node{loc: child}, stable)
}

// Lookup implements fs.NodeLookuper.
func (n *Node) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	child, err := n.loc.LookupNoFollow(name)
	if err != nil {
		return nil, toErrno(err)
	}
	return n.newChild(ctx, child, out), 0
}

// Readdir implements fs.NodeReaddirer. corevfs directories are small enough
// in practice (backends like memfs hold their whole listing in memory
// already) that gathering the full list up front, rather than streaming it
// page by page across ReadDir offsets, keeps this adaptation simple.
func (n *Node) Readdir(ctx context.Context) (fs.DirStream, syscall.Errno) {
	var entries []fuse.DirEntry
	_, err := n.loc.ReadDir(0, vfs.DirEntrySinkFunc(func(name string, ino uint64, nt vfs.NodeType, _ uint64) bool {
		if name == vfs.DOT || name == vfs.DOTDOT {
			return true
		}
		entries = append(entries, fuse.DirEntry{Name: name, Ino: ino, Mode: modeBits(nt)})
		return true
	}))
	if err != nil {
		return nil, toErrno(err)
	}
	return fs.NewListDirStream(entries), 0
}

// Getattr implements fs.NodeGetattrer.
func (n *Node) Getattr(ctx context.Context, f fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	md, err := n.loc.Metadata()
	if err != nil {
		return toErrno(err)
	}
	fillAttr(&out.Attr, md)
	return 0
}

// Setattr implements fs.NodeSetattrer, applying only the fields the kernel
// marked valid in in.Valid (the raw FATTR_* bitmask from the FUSE wire
// protocol).
func (n *Node) Setattr(ctx context.Context, f fs.FileHandle, in *fuse.SetAttrIn, out *fuse.AttrOut) syscall.Errno {
	md, err := n.loc.Metadata()
	if err != nil {
		return toErrno(err)
	}

	var update vfs.MetadataUpdate
	if in.Valid&fuse.FATTR_MODE != 0 {
		perm := vfs.NodePermission(in.Mode & 0o777)
		update.Mode = &perm
	}
	if in.Valid&(fuse.FATTR_UID|fuse.FATTR_GID) != 0 {
		owner := vfs.Owner{UID: md.UID, GID: md.GID}
		if in.Valid&fuse.FATTR_UID != 0 {
			owner.UID = in.Uid
		}
		if in.Valid&fuse.FATTR_GID != 0 {
			owner.GID = in.Gid
		}
		update.Owner = &owner
	}
	if in.Valid&fuse.FATTR_ATIME != 0 {
		atime := time.Unix(int64(in.Atime), int64(in.Atimensec))
		update.Atime = &atime
	}
	if in.Valid&fuse.FATTR_MTIME != 0 {
		mtime := time.Unix(int64(in.Mtime), int64(in.Mtimensec))
		update.Mtime = &mtime
	}
	if in.Valid&fuse.FATTR_SIZE != 0 {
		file, err := n.loc.Entry().AsFile()
		if err != nil {
			return toErrno(err)
		}
		if err := file.SetLen(in.Size); err != nil {
			return toErrno(err)
		}
	}

	if err := n.loc.UpdateMetadata(update); err != nil {
		return toErrno(err)
	}
	md, err = n.loc.Metadata()
	if err != nil {
		return toErrno(err)
	}
	fillAttr(&out.Attr, md)
	return 0
}

// Open implements fs.NodeOpener. All file I/O is served directly off the
// Node (via Read/Write below), so no distinct FileHandle is needed.
func (n *Node) Open(ctx context.Context, flags uint32) (fs.FileHandle, uint32, syscall.Errno) {
	return nil, 0, 0
}

// Read implements fs.NodeReader.
func (n *Node) Read(ctx context.Context, f fs.FileHandle, dest []byte, off int64) (fuse.ReadResult, syscall.Errno) {
	file, err := n.loc.Entry().AsFile()
	if err != nil {
		return nil, toErrno(err)
	}
	cnt, err := file.ReadAt(dest, uint64(off))
	if err != nil {
		return nil, toErrno(err)
	}
	return fuse.ReadResultData(dest[:cnt]), 0
}

// Write implements fs.NodeWriter.
func (n *Node) Write(ctx context.Context, f fs.FileHandle, data []byte, off int64) (uint32, syscall.Errno) {
	file, err := n.loc.Entry().AsFile()
	if err != nil {
		return 0, toErrno(err)
	}
	written, err := file.WriteAt(data, uint64(off))
	if err != nil {
		return 0, toErrno(err)
	}
	return uint32(written), 0
}

// Create implements fs.NodeCreater.
func (n *Node) Create(ctx context.Context, name string, flags uint32, mode uint32, out *fuse.EntryOut) (*fs.Inode, fs.FileHandle, uint32, syscall.Errno) {
	child, err := n.loc.OpenFile(name, vfs.OpenOptions{
		Create:     true,
		CreateNew:  flags&syscall.O_EXCL != 0,
		Permission: vfs.NodePermission(mode & 0o777),
	})
	if err != nil {
		return nil, nil, 0, toErrno(err)
	}
	return n.newChild(ctx, child, out), nil, 0, 0
}

// Mkdir implements fs.NodeMkdirer.
func (n *Node) Mkdir(ctx context.Context, name string, mode uint32, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	child, err := n.loc.Create(name, vfs.NodeTypeDirectory, vfs.NodePermission(mode&0o777))
	if err != nil {
		return nil, toErrno(err)
	}
	return n.newChild(ctx, child, out), 0
}

// Unlink implements fs.NodeUnlinker.
func (n *Node) Unlink(ctx context.Context, name string) syscall.Errno {
	return toErrno(n.loc.Unlink(name, false))
}

// Rmdir implements fs.NodeRmdirer.
func (n *Node) Rmdir(ctx context.Context, name string) syscall.Errno {
	return toErrno(n.loc.Unlink(name, true))
}

// Rename implements fs.NodeRenamer.
func (n *Node) Rename(ctx context.Context, name string, newParent fs.InodeEmbedder, newName string, flags uint32) syscall.Errno {
	dst, ok := newParent.(*Node)
	if !ok {
		return syscall.EXDEV
	}
	return toErrno(n.loc.Rename(name, dst.loc, newName))
}

// Link implements fs.NodeLinker.
func (n *Node) Link(ctx context.Context, target fs.InodeEmbedder, name string, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	src, ok := target.(*Node)
	if !ok {
		return nil, syscall.EXDEV
	}
	child, err := n.loc.Link(name, src.loc)
	if err != nil {
		return nil, toErrno(err)
	}
	return n.newChild(ctx, child, out), 0
}

// Symlink implements fs.NodeSymlinker.
func (n *Node) Symlink(ctx context.Context, target, name string, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	child, err := n.loc.Create(name, vfs.NodeTypeSymlink, 0o777)
	if err != nil {
		return nil, toErrno(err)
	}
	f, err := child.Entry().AsFile()
	if err != nil {
		return nil, toErrno(err)
	}
	if err := f.SetSymlink(target); err != nil {
		return nil, toErrno(err)
	}
	return n.newChild(ctx, child, out), 0
}

// Readlink implements fs.NodeReadlinker.
func (n *Node) Readlink(ctx context.Context) ([]byte, syscall.Errno) {
	target, err := n.loc.ReadLink()
	if err != nil {
		return nil, toErrno(err)
	}
	return []byte(target), 0
}
