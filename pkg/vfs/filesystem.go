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

package vfs

// Filesystem is a thin reference-shared handle over a FilesystemOps
// instance. It exists so that a mount's root is obtained through a stable
// interface independent of the backend's concrete type.
type Filesystem struct {
	ops FilesystemOps
}

// NewFilesystem wraps ops.
func NewFilesystem(ops FilesystemOps) *Filesystem {
	return &Filesystem{ops: ops}
}

// Name forwards to the backend.
func (fs *Filesystem) Name() string {
	return fs.ops.Name()
}

// RootDir forwards to the backend.
func (fs *Filesystem) RootDir() *DirEntry {
	return fs.ops.RootDir()
}

// Stat forwards to the backend.
func (fs *Filesystem) Stat() (StatFs, error) {
	return fs.ops.Stat()
}

// IsCacheable forwards to the backend.
func (fs *Filesystem) IsCacheable() bool {
	return fs.ops.IsCacheable()
}

// Ops returns the wrapped FilesystemOps, for backends that need to compare
// filesystem identity or downcast.
func (fs *Filesystem) Ops() FilesystemOps {
	return fs.ops
}
