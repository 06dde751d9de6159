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

import "sync"

// ReferenceKey is the (parent-address, name) identity used to key mount
// child registries. It is stable for a dentry's lifetime.
type ReferenceKey struct {
	parent *DirEntry
	name   string
}

// Reference records the dentry a DirEntry was looked up through and the
// name it was inserted under. Parent is a strong reference: Go's tracing
// garbage collector reclaims the resulting parent<->cache cycles once
// nothing outside the tree holds either end, so (unlike the Rc/Arc-based
// original this package is modeled on) no weak back-reference is needed to
// avoid a leak. A dentry with reference.parent == nil is a mount root.
// DirEntry.Reparent updates a live dentry's Reference in place; see there.
type Reference struct {
	parent *DirEntry
	name   string
}

// NewReference builds a Reference under parent (nil for a mount root).
func NewReference(parent *DirEntry, name string) Reference {
	return Reference{parent: parent, name: name}
}

// RootReference is the Reference used for a filesystem's root dentry.
func RootReference() Reference {
	return Reference{}
}

// DirEntry is the VFS's canonical cached handle: a node identified by
// (parent, name). Dentries are reference-shared (*DirEntry is the handle);
// equality is pointer equality.
type DirEntry struct {
	// node is either a *FileNode or a *DirNode. Exactly one is set,
	// reflecting node_type via its own NodeTypeDirectory/non-directory
	// split rather than an explicit tag field.
	fileNode *FileNode
	dirNode  *DirNode

	// nodeType is the declared type, distinct from the File/Dir variant
	// above because a symlink is stored as a FileNode but reports
	// NodeTypeSymlink.
	nodeType NodeType

	refMu     sync.Mutex
	reference Reference

	userDataMu sync.Mutex
	userData   any
}

// NewFileDirEntry wraps a file-variant backend node (including symlinks) in
// a new dentry.
func NewFileDirEntry(node *FileNode, nodeType NodeType, reference Reference) *DirEntry {
	return &DirEntry{fileNode: node, nodeType: nodeType, reference: reference}
}

// NewDirDirEntry constructs a directory-variant dentry. builder receives
// the (not yet fully initialized, but already addressable) dentry so that a
// directory backend that needs to name its owning dentry can capture it; by
// the time builder returns, the dentry must not yet be published to any
// other goroutine.
func NewDirDirEntry(builder func(self *DirEntry) DirNodeOps, reference Reference) *DirEntry {
	d := &DirEntry{nodeType: NodeTypeDirectory, reference: reference}
	d.dirNode = newDirNode(builder(d))
	return d
}

// NodeType returns the dentry's declared node type.
func (d *DirEntry) NodeType() NodeType {
	return d.nodeType
}

// IsFile reports whether d is the file variant (regardless of NodeType;
// this is true for symlinks too).
func (d *DirEntry) IsFile() bool {
	return d.fileNode != nil
}

// IsDir reports whether d is the directory variant.
func (d *DirEntry) IsDir() bool {
	return d.dirNode != nil
}

// AsFile returns d's FileNode, or EISDIR if d is a directory.
func (d *DirEntry) AsFile() (*FileNode, error) {
	if d.fileNode == nil {
		return nil, EISDIR
	}
	return d.fileNode, nil
}

// AsDir returns d's DirNode, or ENOTDIR if d is not a directory.
func (d *DirEntry) AsDir() (*DirNode, error) {
	if d.dirNode == nil {
		return nil, ENOTDIR
	}
	return d.dirNode, nil
}

// ops returns the shared NodeOps view regardless of variant.
func (d *DirEntry) ops() NodeOps {
	if d.fileNode != nil {
		return d.fileNode.ops
	}
	return d.dirNode.ops
}

// Inode forwards to the backend node.
func (d *DirEntry) Inode() uint64 { return d.ops().Inode() }

// Metadata forwards to the backend node.
func (d *DirEntry) Metadata() (Metadata, error) { return d.ops().Metadata() }

// UpdateMetadata forwards to the backend node.
func (d *DirEntry) UpdateMetadata(update MetadataUpdate) error {
	return d.ops().UpdateMetadata(update)
}

// Filesystem forwards to the backend node.
func (d *DirEntry) Filesystem() FilesystemOps { return d.ops().Filesystem() }

// Len forwards to the backend node.
func (d *DirEntry) Len() (uint64, error) { return d.ops().Len() }

// Sync forwards to the backend node.
func (d *DirEntry) Sync(dataOnly bool) error { return d.ops().Sync(dataOnly) }

// Parent returns d's parent dentry, or nil if d is a mount root
// (IsRootOfMount() is true).
func (d *DirEntry) Parent() *DirEntry {
	d.refMu.Lock()
	defer d.refMu.Unlock()
	return d.reference.parent
}

// Name returns the name d was looked up under. Mount roots report "".
func (d *DirEntry) Name() string {
	d.refMu.Lock()
	defer d.refMu.Unlock()
	return d.reference.name
}

// IsRootOfMount reports whether d has no parent dentry, i.e. is the root of
// some filesystem (mounted or not).
func (d *DirEntry) IsRootOfMount() bool {
	d.refMu.Lock()
	defer d.refMu.Unlock()
	return d.reference.parent == nil
}

// Key returns d's ReferenceKey, used to index mount child registries.
func (d *DirEntry) Key() ReferenceKey {
	d.refMu.Lock()
	defer d.refMu.Unlock()
	return ReferenceKey{parent: d.reference.parent, name: d.reference.name}
}

// Reparent updates d's (parent, name) in place. Unlike the Rc/Arc-based
// original this package is modeled on, a dentry's reference need not be
// fixed at construction: Go's GC makes a mutable strong parent pointer
// just as safe as an immutable one, so a DirNodeOps.Rename implementation
// can reparent the moved dentry directly rather than rebuilding it (and,
// for a directory, losing its existing VFS-level cache and mountpoint
// state in the process).
func (d *DirEntry) Reparent(parent *DirEntry, name string) {
	d.refMu.Lock()
	defer d.refMu.Unlock()
	d.reference = Reference{parent: parent, name: name}
}

// PtrEq reports whether d and other are the same dentry.
func (d *DirEntry) PtrEq(other *DirEntry) bool {
	return d == other
}

// IsAncestorOf reports whether d is an ancestor of (or identical to) other,
// walking up other's strong parent chain.
func (d *DirEntry) IsAncestorOf(other *DirEntry) bool {
	for cur := other; cur != nil; cur = cur.Parent() {
		if cur.PtrEq(d) {
			return true
		}
	}
	return false
}

// AbsolutePath returns the "/"-joined path from the dentry's own mount root
// to d, ignoring any mount composition above it (Location.AbsolutePath
// accounts for that).
func (d *DirEntry) AbsolutePath() string {
	var names []string
	for cur := d; cur != nil; cur = cur.Parent() {
		names = append(names, cur.Name())
	}
	path := "/"
	for i := len(names) - 1; i >= 0; i-- {
		if names[i] == "" {
			continue
		}
		if path != "/" {
			path += "/"
		}
		path += names[i]
	}
	return path
}

// UserData returns the opaque per-dentry payload previously set by
// SetUserData, or nil.
func (d *DirEntry) UserData() any {
	d.userDataMu.Lock()
	defer d.userDataMu.Unlock()
	return d.userData
}

// SetUserData stores an opaque per-dentry payload, guarded by a mutex
// independent of the cache and mountpoint locks.
func (d *DirEntry) SetUserData(v any) {
	d.userDataMu.Lock()
	defer d.userDataMu.Unlock()
	d.userData = v
}
