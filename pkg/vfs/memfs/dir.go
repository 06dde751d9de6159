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

package memfs

import (
	"sync"
	"time"

	"github.com/corevfs/corevfs/pkg/vfs"
)

// dirBackend is the vfs.DirNodeOps implementation behind a memfs directory.
// Its own mutex is independent of (and narrower in scope than) the VFS's
// per-DirNode cache mutex: the VFS releases its cache lock around backend
// Lookup calls (see DirNode.Lookup's singleflight use), so the backend must
// still guard its own children map against a concurrent Create/Unlink.
type dirBackend struct {
	fs    *Filesystem
	self  *vfs.DirEntry
	ino   uint64
	owner vfs.Owner

	mu       sync.Mutex
	mode     vfs.NodePermission
	names    []string
	children map[string]*vfs.DirEntry
	atime    time.Time
	mtime    time.Time
	ctime    time.Time
}

func newDirBackend(fs *Filesystem, self *vfs.DirEntry, owner vfs.Owner, mode vfs.NodePermission) *dirBackend {
	n := now()
	return &dirBackend{
		fs:       fs,
		self:     self,
		ino:      fs.nextInode(),
		owner:    owner,
		mode:     mode,
		children: make(map[string]*vfs.DirEntry),
		atime:    n,
		mtime:    n,
		ctime:    n,
	}
}

// Inode implements vfs.NodeOps.
func (d *dirBackend) Inode() uint64 { return d.ino }

// Metadata implements vfs.NodeOps.
func (d *dirBackend) Metadata() (vfs.Metadata, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return vfs.Metadata{
		Inode:     d.ino,
		Nlink:     uint64(2 + len(d.names)),
		Mode:      d.mode,
		NodeType:  vfs.NodeTypeDirectory,
		UID:       d.owner.UID,
		GID:       d.owner.GID,
		BlockSize: 4096,
		Atime:     d.atime,
		Mtime:     d.mtime,
		Ctime:     d.ctime,
	}, nil
}

// UpdateMetadata implements vfs.NodeOps.
func (d *dirBackend) UpdateMetadata(update vfs.MetadataUpdate) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if update.Mode != nil {
		d.mode = *update.Mode
	}
	if update.Owner != nil {
		d.owner = *update.Owner
	}
	if update.Atime != nil {
		d.atime = *update.Atime
	}
	if update.Mtime != nil {
		d.mtime = *update.Mtime
	}
	d.ctime = now()
	return nil
}

// Filesystem implements vfs.NodeOps.
func (d *dirBackend) Filesystem() vfs.FilesystemOps { return d.fs }

// Len implements vfs.NodeOps, reporting the number of directory entries.
func (d *dirBackend) Len() (uint64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return uint64(len(d.names)), nil
}

// Sync implements vfs.NodeOps. memfs has no backing store to flush.
func (d *dirBackend) Sync(dataOnly bool) error { return nil }

// ReadDir implements vfs.DirNodeOps. Entries are numbered in a fixed order
// (".", "..", then insertion order), and offset is simply an index into
// that sequence, making it trivially monotone across calls.
func (d *dirBackend) ReadDir(offset uint64, sink vfs.DirEntrySink) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	parentIno := d.ino
	if parent := d.self.Parent(); parent != nil {
		parentIno = parent.Inode()
	}

	type row struct {
		name string
		ino  uint64
		nt   vfs.NodeType
	}
	all := make([]row, 0, len(d.names)+2)
	all = append(all, row{vfs.DOT, d.ino, vfs.NodeTypeDirectory})
	all = append(all, row{vfs.DOTDOT, parentIno, vfs.NodeTypeDirectory})
	for _, name := range d.names {
		entry := d.children[name]
		all = append(all, row{name, entry.Inode(), entry.NodeType()})
	}

	count := 0
	for i := offset; i < uint64(len(all)); i++ {
		r := all[i]
		if !sink.Accept(r.name, r.ino, r.nt, i+1) {
			break
		}
		count++
	}
	return count, nil
}

// Lookup implements vfs.DirNodeOps.
func (d *dirBackend) Lookup(name string) (*vfs.DirEntry, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	entry, ok := d.children[name]
	if !ok {
		return nil, vfs.ENOENT
	}
	return entry, nil
}

// IsCacheable implements vfs.DirNodeOps.
func (d *dirBackend) IsCacheable() bool { return true }

func removeName(names []string, name string) []string {
	for i, n := range names {
		if n == name {
			return append(names[:i], names[i+1:]...)
		}
	}
	return names
}

// Create implements vfs.DirNodeOps.
func (d *dirBackend) Create(name string, nodeType vfs.NodeType, permission vfs.NodePermission) (*vfs.DirEntry, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, exists := d.children[name]; exists {
		return nil, vfs.EEXIST
	}

	owner := d.owner
	var entry *vfs.DirEntry
	if nodeType == vfs.NodeTypeDirectory {
		entry = vfs.NewDirDirEntry(func(self *vfs.DirEntry) vfs.DirNodeOps {
			return newDirBackend(d.fs, self, owner, permission)
		}, vfs.NewReference(d.self, name))
	} else {
		fb := newFileBackend(d.fs, owner, permission)
		entry = vfs.NewFileDirEntry(vfs.NewFileNode(fb), nodeType, vfs.NewReference(d.self, name))
	}

	d.children[name] = entry
	d.names = append(d.names, name)
	d.mtime = now()
	return entry, nil
}

// Link implements vfs.DirNodeOps. Only the file variant (including
// symlinks) can be hard-linked; linking a directory is rejected with
// EISDIR, matching POSIX.
func (d *dirBackend) Link(name string, target *vfs.DirEntry) (*vfs.DirEntry, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, exists := d.children[name]; exists {
		return nil, vfs.EEXIST
	}
	if target.IsDir() {
		return nil, vfs.EISDIR
	}
	f, err := target.AsFile()
	if err != nil {
		return nil, err
	}
	fb, ok := f.Ops().(*fileBackend)
	if !ok {
		return nil, vfs.EXDEV
	}
	fb.nlink.Add(1)

	entry := vfs.NewFileDirEntry(f, target.NodeType(), vfs.NewReference(d.self, name))
	d.children[name] = entry
	d.names = append(d.names, name)
	d.mtime = now()
	return entry, nil
}

// dropLink accounts for entry no longer being reachable under the name it
// is being removed from: a directory must already be empty (Unlink checks
// this itself before calling here; for Rename's overwrite case the VFS
// checks it via DirNode.HasChildren before calling into the backend), and a
// file's shared nlink count is decremented.
func dropLink(entry *vfs.DirEntry) {
	if f, err := entry.AsFile(); err == nil {
		if fb, ok := f.Ops().(*fileBackend); ok {
			fb.nlink.Add(^uint64(0))
		}
	}
}

// Unlink implements vfs.DirNodeOps.
func (d *dirBackend) Unlink(name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	entry, ok := d.children[name]
	if !ok {
		return vfs.ENOENT
	}
	if dir, err := entry.AsDir(); err == nil {
		db := dir.Ops().(*dirBackend)
		db.mu.Lock()
		empty := len(db.names) == 0
		db.mu.Unlock()
		if !empty {
			return vfs.ENOTEMPTY
		}
	}

	dropLink(entry)
	delete(d.children, name)
	d.names = removeName(d.names, name)
	d.mtime = now()
	return nil
}

// Rename implements vfs.DirNodeOps. By the time this is called, the VFS has
// already verified type/emptiness preconditions and holds both directories'
// cache locks for the duration of the call (the same directory's lock only
// once, per DirNode.Rename's same-directory special case), so no additional
// synchronization against a concurrent Rename on this same pair is needed
// here; dirBackend.mu still guards against a concurrent Lookup, which the
// VFS allows to run without holding the cache lock.
//
// The moved entry keeps its identity (Reparent updates its Reference in
// place) rather than being rebuilt under a new DirEntry, so a renamed
// directory keeps its existing VFS-level child cache and any mount stacked
// on it.
func (d *dirBackend) Rename(srcName string, dstDirOps vfs.DirNodeOps, dstName string) error {
	dst, ok := dstDirOps.(*dirBackend)
	if !ok {
		return vfs.EXDEV
	}
	sameDir := d == dst

	d.mu.Lock()
	defer d.mu.Unlock()
	if !sameDir {
		dst.mu.Lock()
		defer dst.mu.Unlock()
	}

	entry, ok := d.children[srcName]
	if !ok {
		return vfs.ENOENT
	}
	if sameDir && srcName == dstName {
		return nil
	}

	delete(d.children, srcName)
	d.names = removeName(d.names, srcName)

	entry.Reparent(dst.self, dstName)
	if overwritten, exists := dst.children[dstName]; exists {
		dropLink(overwritten)
	} else {
		dst.names = append(dst.names, dstName)
	}
	dst.children[dstName] = entry

	n := now()
	d.mtime = n
	dst.mtime = n
	return nil
}
