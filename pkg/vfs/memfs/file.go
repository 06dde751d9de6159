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
	"sync/atomic"
	"time"

	"github.com/corevfs/corevfs/pkg/vfs"
)

// fileBackend is the shared state behind every vfs.FileNode wrapping the
// same underlying node: hard links to the same name create distinct
// DirEntry values (distinct Reference) that share one *fileBackend, the
// same way the teacher's kernfs inodes are shared across dentries.
type fileBackend struct {
	fs   *Filesystem
	ino  uint64
	mode vfs.NodePermission

	mu      sync.Mutex
	data    []byte
	symlink string
	owner   vfs.Owner
	nlink   atomic.Uint64
	atime   time.Time
	mtime   time.Time
	ctime   time.Time
}

func newFileBackend(fs *Filesystem, owner vfs.Owner, mode vfs.NodePermission) *fileBackend {
	n := now()
	b := &fileBackend{
		fs:    fs,
		ino:   fs.nextInode(),
		mode:  mode,
		owner: owner,
		atime: n,
		mtime: n,
		ctime: n,
	}
	b.nlink.Store(1)
	return b
}

// Inode implements vfs.NodeOps.
func (b *fileBackend) Inode() uint64 { return b.ino }

// Metadata implements vfs.NodeOps.
func (b *fileBackend) Metadata() (vfs.Metadata, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return vfs.Metadata{
		Inode:     b.ino,
		Nlink:     b.nlink.Load(),
		Mode:      b.mode,
		UID:       b.owner.UID,
		GID:       b.owner.GID,
		Size:      uint64(len(b.data)),
		BlockSize: 4096,
		Blocks:    (uint64(len(b.data)) + 511) / 512,
		Atime:     b.atime,
		Mtime:     b.mtime,
		Ctime:     b.ctime,
	}, nil
}

// UpdateMetadata implements vfs.NodeOps.
func (b *fileBackend) UpdateMetadata(update vfs.MetadataUpdate) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if update.Mode != nil {
		b.mode = *update.Mode
	}
	if update.Owner != nil {
		b.owner = *update.Owner
	}
	if update.Atime != nil {
		b.atime = *update.Atime
	}
	if update.Mtime != nil {
		b.mtime = *update.Mtime
	}
	b.ctime = now()
	return nil
}

// Filesystem implements vfs.NodeOps.
func (b *fileBackend) Filesystem() vfs.FilesystemOps { return b.fs }

// Len implements vfs.NodeOps.
func (b *fileBackend) Len() (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return uint64(len(b.data)), nil
}

// Sync implements vfs.NodeOps. memfs has no backing store to flush.
func (b *fileBackend) Sync(dataOnly bool) error { return nil }

// ReadAt implements vfs.FileNodeOps.
func (b *fileBackend) ReadAt(buf []byte, offset uint64) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if offset >= uint64(len(b.data)) {
		return 0, nil
	}
	n := copy(buf, b.data[offset:])
	b.atime = now()
	return n, nil
}

// WriteAt implements vfs.FileNodeOps.
func (b *fileBackend) WriteAt(buf []byte, offset uint64) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	end := offset + uint64(len(buf))
	if end > uint64(len(b.data)) {
		grown := make([]byte, end)
		copy(grown, b.data)
		b.data = grown
	}
	n := copy(b.data[offset:end], buf)
	b.mtime = now()
	return n, nil
}

// Append implements vfs.FileNodeOps.
func (b *fileBackend) Append(buf []byte) (int, uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data = append(b.data, buf...)
	b.mtime = now()
	return len(buf), uint64(len(b.data)), nil
}

// SetLen implements vfs.FileNodeOps.
func (b *fileBackend) SetLen(newLen uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch {
	case newLen == uint64(len(b.data)):
	case newLen < uint64(len(b.data)):
		b.data = b.data[:newLen]
	default:
		grown := make([]byte, newLen)
		copy(grown, b.data)
		b.data = grown
	}
	b.mtime = now()
	return nil
}

// SetSymlink implements vfs.FileNodeOps.
func (b *fileBackend) SetSymlink(target string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.symlink = target
	b.mtime = now()
	return nil
}

// ReadLink implements vfs.FileNodeOps.
func (b *fileBackend) ReadLink() (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.symlink, nil
}
