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

import (
	"sync"
	"sync/atomic"
)

// deviceCounter assigns a fresh, process-wide unique device ID to each
// Mountpoint.
var deviceCounter atomic.Uint64

func nextDevice() uint64 {
	return deviceCounter.Add(1)
}

// Mountpoint is the grafting of one filesystem's root onto another
// filesystem's directory, or (when Location is nil) the namespace root
// mount itself.
type Mountpoint struct {
	// root is this mount's filesystem root dentry.
	root *DirEntry

	// location is this mount's position in the parent mountpoint, or nil
	// iff this is the namespace root mount.
	location *Location

	// device is a globally unique, monotone identifier for this mount,
	// independent of the backend.
	device uint64

	// childrenMu guards children, the registry of mountpoints stacked
	// directly on a dentry of this mount. Unlike the Rc/Arc-based design
	// this package is modeled on, entries here are plain pointers rather
	// than weak references: Go has no refcounting to race against. Entries
	// are keyed by the dentry's ReferenceKey and are not removed by
	// Unmount, so a registered Mountpoint stays reachable here until a
	// later mount on the same dentry replaces its entry.
	childrenMu sync.Mutex
	children   map[ReferenceKey]*Mountpoint
}

// newMountpoint creates a Mountpoint rooted at fs's root directory.
// locationInParent is nil for the namespace root mount.
func newMountpoint(fs *Filesystem, locationInParent *Location) *Mountpoint {
	return &Mountpoint{
		root:     fs.RootDir(),
		location: locationInParent,
		device:   nextDevice(),
		children: make(map[ReferenceKey]*Mountpoint),
	}
}

// NewRootMountpoint creates the namespace root mount for fs.
func NewRootMountpoint(fs *Filesystem) *Mountpoint {
	return newMountpoint(fs, nil)
}

// RootLocation returns the Location naming this mount's own root.
func (m *Mountpoint) RootLocation() *Location {
	return &Location{mountpoint: m, entry: m.root}
}

// Location returns the mount's position in its parent mountpoint, or nil if
// this is the namespace root mount.
func (m *Mountpoint) Location() *Location {
	return m.location
}

// IsRoot reports whether m is the namespace root mount.
func (m *Mountpoint) IsRoot() bool {
	return m.location == nil
}

// Device returns m's unique device ID.
func (m *Mountpoint) Device() uint64 {
	return m.device
}

// StackedMounts returns the Mountpoints registered on dentries of m: the
// latest one mounted on each dentry, including ones that have been
// unmounted or shadowed by a mount stacked on their own root and so are no
// longer reachable by path traversal.
func (m *Mountpoint) StackedMounts() []*Mountpoint {
	m.childrenMu.Lock()
	defer m.childrenMu.Unlock()
	out := make([]*Mountpoint, 0, len(m.children))
	for _, child := range m.children {
		out = append(out, child)
	}
	return out
}

// effectiveMountpoint walks the stack of filesystems mounted on the same
// dentry and returns the topmost one: "first mount fs1 at /mnt, then mount
// fs2 at /mnt" yields fs2 for mnt1.effectiveMountpoint().
func (m *Mountpoint) effectiveMountpoint() *Mountpoint {
	cur := m
	for {
		dir, err := cur.root.AsDir()
		if err != nil {
			return cur
		}
		child := dir.Mountpoint()
		if child == nil {
			return cur
		}
		cur = child
	}
}
