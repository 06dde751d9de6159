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
	"sync/atomic"
	"time"

	"golang.org/x/sys/unix"

	"github.com/corevfs/corevfs/pkg/vfs"
)

// Filesystem is an in-memory vfs.FilesystemOps backend. Every node's data
// and metadata live in heap-allocated Go structures for the process
// lifetime; nothing is persisted.
type Filesystem struct {
	root    *vfs.DirEntry
	inodeCt atomic.Uint64
}

// New creates a memfs instance, with a root directory owned by owner.
func New(owner vfs.Owner, permission vfs.NodePermission) *Filesystem {
	fs := &Filesystem{}
	fs.root = vfs.NewDirDirEntry(func(self *vfs.DirEntry) vfs.DirNodeOps {
		return newDirBackend(fs, self, owner, permission)
	}, vfs.RootReference())
	return fs
}

// NewDefault creates a memfs instance owned by the calling process's
// real uid/gid, mode 0755.
func NewDefault() *Filesystem {
	return New(vfs.Owner{UID: uint32(unix.Getuid()), GID: uint32(unix.Getgid())}, 0o755)
}

func (fs *Filesystem) nextInode() uint64 {
	return fs.inodeCt.Add(1)
}

// Name implements vfs.FilesystemOps.
func (fs *Filesystem) Name() string { return "memfs" }

// RootDir implements vfs.FilesystemOps.
func (fs *Filesystem) RootDir() *vfs.DirEntry { return fs.root }

// Stat implements vfs.FilesystemOps.
func (fs *Filesystem) Stat() (vfs.StatFs, error) {
	return vfs.StatFs{
		FsType:     0x01021994, // TMPFS_MAGIC, matching tmpfs-alike backends in the teacher's pack.
		BlockSize:  4096,
		NameLength: 255,
	}, nil
}

// IsCacheable implements vfs.FilesystemOps. memfs nodes are only ever
// mutated through the VFS, so the dentry cache is always authoritative.
func (fs *Filesystem) IsCacheable() bool { return true }

func now() time.Time { return time.Now() }
