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

// Package procfs is a small non-cacheable pseudo-filesystem: a reference
// backend for the is_cacheable=false half of the backend contract, the role
// the teacher's fsimpl/proc and fsimpl/sys packages play for gVisor's own
// kernfs-based VFS. Every lookup and read regenerates its content, rather
// than serving it from the VFS's dentry cache, since the data (process
// count, uptime) changes on every access.
package procfs

import (
	"fmt"
	"runtime"
	"time"

	"github.com/corevfs/corevfs/pkg/vfs"
)

const (
	rootIno   = 1
	uptimeIno = 2
	procsIno  = 3

	procSuperMagic = 0x9fa0
)

// Filesystem is a vfs.FilesystemOps backend exposing a couple of
// synthetic, always-fresh status files.
type Filesystem struct {
	root  *vfs.DirEntry
	start time.Time
}

// New creates a procfs instance. start marks the point uptime is measured
// from.
func New() *Filesystem {
	fs := &Filesystem{start: time.Now()}
	fs.root = vfs.NewDirDirEntry(func(self *vfs.DirEntry) vfs.DirNodeOps {
		return &rootDir{fs: fs, self: self}
	}, vfs.RootReference())
	return fs
}

// Name implements vfs.FilesystemOps.
func (fs *Filesystem) Name() string { return "procfs" }

// RootDir implements vfs.FilesystemOps.
func (fs *Filesystem) RootDir() *vfs.DirEntry { return fs.root }

// Stat implements vfs.FilesystemOps.
func (fs *Filesystem) Stat() (vfs.StatFs, error) {
	return vfs.StatFs{FsType: procSuperMagic, NameLength: 255}, nil
}

// IsCacheable implements vfs.FilesystemOps. procfs content is regenerated
// on every access, so the VFS must not treat a cached name->dentry binding
// as authoritative between accesses.
func (fs *Filesystem) IsCacheable() bool { return false }

func (fs *Filesystem) uptimeContent() []byte {
	return []byte(fmt.Sprintf("%.2f\n", time.Since(fs.start).Seconds()))
}

func (fs *Filesystem) procsContent() []byte {
	// A kernel-agnostic stand-in for a live process count: this core has no
	// process model of its own, so the running Go program's goroutine count
	// serves as the analogous "how much is happening right now" figure.
	return []byte(fmt.Sprintf("%d\n", runtime.NumGoroutine()))
}

// rootDir is procfs's single directory. It never changes shape, but its
// children's contents are generated fresh on every read.
type rootDir struct {
	fs   *Filesystem
	self *vfs.DirEntry
}

// Inode implements vfs.NodeOps.
func (d *rootDir) Inode() uint64 { return rootIno }

// Metadata implements vfs.NodeOps.
func (d *rootDir) Metadata() (vfs.Metadata, error) {
	return vfs.Metadata{
		Inode:    rootIno,
		Nlink:    2,
		Mode:     0o555,
		NodeType: vfs.NodeTypeDirectory,
		Mtime:    d.fs.start,
		Ctime:    d.fs.start,
	}, nil
}

// UpdateMetadata implements vfs.NodeOps. procfs metadata is not settable.
func (d *rootDir) UpdateMetadata(vfs.MetadataUpdate) error { return vfs.EACCES }

// Filesystem implements vfs.NodeOps.
func (d *rootDir) Filesystem() vfs.FilesystemOps { return d.fs }

// Len implements vfs.NodeOps.
func (d *rootDir) Len() (uint64, error) { return 2, nil }

// Sync implements vfs.NodeOps.
func (d *rootDir) Sync(dataOnly bool) error { return nil }

// ReadDir implements vfs.DirNodeOps.
func (d *rootDir) ReadDir(offset uint64, sink vfs.DirEntrySink) (int, error) {
	all := []struct {
		name string
		ino  uint64
	}{
		{vfs.DOT, rootIno},
		{vfs.DOTDOT, rootIno},
		{"uptime", uptimeIno},
		{"procs", procsIno},
	}
	count := 0
	for i := offset; i < uint64(len(all)); i++ {
		e := all[i]
		if !sink.Accept(e.name, e.ino, vfs.NodeTypeRegularFile, i+1) {
			break
		}
		count++
	}
	return count, nil
}

// Lookup implements vfs.DirNodeOps. Every call builds a fresh DirEntry
// rather than returning one pinned earlier: there is nothing to cache since
// IsCacheable reports false.
func (d *rootDir) Lookup(name string) (*vfs.DirEntry, error) {
	switch name {
	case "uptime":
		return d.newFile(uptimeIno, "uptime", d.fs.uptimeContent), nil
	case "procs":
		return d.newFile(procsIno, "procs", d.fs.procsContent), nil
	default:
		return nil, vfs.ENOENT
	}
}

func (d *rootDir) newFile(ino uint64, name string, content func() []byte) *vfs.DirEntry {
	f := &statusFile{fs: d.fs, ino: ino, content: content}
	return vfs.NewFileDirEntry(vfs.NewFileNode(f), vfs.NodeTypeRegularFile, vfs.NewReference(d.self, name))
}

// IsCacheable implements vfs.DirNodeOps.
func (d *rootDir) IsCacheable() bool { return false }

// Create implements vfs.DirNodeOps. procfs is read-only.
func (d *rootDir) Create(string, vfs.NodeType, vfs.NodePermission) (*vfs.DirEntry, error) {
	return nil, vfs.EACCES
}

// Link implements vfs.DirNodeOps. procfs is read-only.
func (d *rootDir) Link(string, *vfs.DirEntry) (*vfs.DirEntry, error) { return nil, vfs.EACCES }

// Unlink implements vfs.DirNodeOps. procfs is read-only.
func (d *rootDir) Unlink(string) error { return vfs.EACCES }

// Rename implements vfs.DirNodeOps. procfs is read-only.
func (d *rootDir) Rename(string, vfs.DirNodeOps, string) error { return vfs.EACCES }

// statusFile is a read-only file whose content is computed, not stored.
type statusFile struct {
	fs      *Filesystem
	ino     uint64
	content func() []byte
}

// Inode implements vfs.NodeOps.
func (f *statusFile) Inode() uint64 { return f.ino }

// Metadata implements vfs.NodeOps.
func (f *statusFile) Metadata() (vfs.Metadata, error) {
	return vfs.Metadata{
		Inode:    f.ino,
		Nlink:    1,
		Mode:     0o444,
		NodeType: vfs.NodeTypeRegularFile,
		Size:     uint64(len(f.content())),
		Mtime:    f.fs.start,
		Ctime:    f.fs.start,
	}, nil
}

// UpdateMetadata implements vfs.NodeOps. procfs metadata is not settable.
func (f *statusFile) UpdateMetadata(vfs.MetadataUpdate) error { return vfs.EACCES }

// Filesystem implements vfs.NodeOps.
func (f *statusFile) Filesystem() vfs.FilesystemOps { return f.fs }

// Len implements vfs.NodeOps.
func (f *statusFile) Len() (uint64, error) { return uint64(len(f.content())), nil }

// Sync implements vfs.NodeOps.
func (f *statusFile) Sync(dataOnly bool) error { return nil }

// ReadAt implements vfs.FileNodeOps. Content is regenerated on every call.
func (f *statusFile) ReadAt(buf []byte, offset uint64) (int, error) {
	data := f.content()
	if offset >= uint64(len(data)) {
		return 0, nil
	}
	return copy(buf, data[offset:]), nil
}

// WriteAt implements vfs.FileNodeOps. procfs status files are read-only.
func (f *statusFile) WriteAt([]byte, uint64) (int, error) { return 0, vfs.EACCES }

// Append implements vfs.FileNodeOps. procfs status files are read-only.
func (f *statusFile) Append([]byte) (int, uint64, error) { return 0, 0, vfs.EACCES }

// SetLen implements vfs.FileNodeOps. procfs status files are read-only.
func (f *statusFile) SetLen(uint64) error { return vfs.EACCES }

// SetSymlink implements vfs.FileNodeOps. Not a symlink.
func (f *statusFile) SetSymlink(string) error { return vfs.EINVAL }

// ReadLink implements vfs.FileNodeOps. Not a symlink.
func (f *statusFile) ReadLink() (string, error) { return "", vfs.EINVAL }
