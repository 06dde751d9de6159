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

// FileNode wraps a backend FileNodeOps. Unlike DirNode it holds no cache of
// its own; files have no children.
type FileNode struct {
	ops FileNodeOps
}

// NewFileNode wraps ops.
func NewFileNode(ops FileNodeOps) *FileNode {
	return &FileNode{ops: ops}
}

// Ops returns the wrapped backend FileNodeOps.
func (n *FileNode) Ops() FileNodeOps {
	return n.ops
}

// ReadAt forwards to the backend.
func (n *FileNode) ReadAt(buf []byte, offset uint64) (int, error) {
	return n.ops.ReadAt(buf, offset)
}

// WriteAt forwards to the backend.
func (n *FileNode) WriteAt(buf []byte, offset uint64) (int, error) {
	return n.ops.WriteAt(buf, offset)
}

// Append forwards to the backend.
func (n *FileNode) Append(buf []byte) (int, uint64, error) {
	return n.ops.Append(buf)
}

// SetLen forwards to the backend.
func (n *FileNode) SetLen(newLen uint64) error {
	return n.ops.SetLen(newLen)
}

// SetSymlink forwards to the backend.
func (n *FileNode) SetSymlink(target string) error {
	return n.ops.SetSymlink(target)
}

// ReadLink forwards to the backend.
func (n *FileNode) ReadLink() (string, error) {
	return n.ops.ReadLink()
}
