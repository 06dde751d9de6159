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
	"errors"
	"sync"

	"golang.org/x/sync/singleflight"
)

// DirNode wraps a backend DirNodeOps with the VFS child cache and the
// mountpoint slot. Two independent mutexes guard these, per spec.md §5: the
// cache mutex for every cache read/write, and the mountpoint mutex for the
// mounted-child slot.
type DirNode struct {
	ops DirNodeOps

	cacheMu sync.Mutex
	cache   map[string]*DirEntry

	// lookupGroup collapses concurrent backend lookups for the same
	// not-yet-cached name into one backend call, satisfying the "first
	// concurrent caller wins" contract of spec.md §4.2 without holding the
	// cache mutex across the (potentially blocking) backend call.
	lookupGroup singleflight.Group

	mountMu    sync.Mutex
	mountpoint *Mountpoint
}

func newDirNode(ops DirNodeOps) *DirNode {
	return &DirNode{ops: ops, cache: make(map[string]*DirEntry)}
}

// Ops returns the wrapped backend DirNodeOps, for backends that need to
// downcast to backend-specific behavior.
func (n *DirNode) Ops() DirNodeOps {
	return n.ops
}

// lookupCacheLocked returns the cached entry for name, if any. Callers must
// hold cacheMu.
func (n *DirNode) lookupCacheLocked(name string) (*DirEntry, bool) {
	e, ok := n.cache[name]
	return e, ok
}

// Lookup resolves name, consulting the cache first and falling back to a
// single deduplicated backend call on a miss. The result is memoized if the
// backend is cacheable.
func (n *DirNode) Lookup(name string) (*DirEntry, error) {
	switch name {
	case DOT, DOTDOT:
		// Never cached or delegated to the backend; callers resolve these
		// via Location, not DirNode, but guard against direct misuse.
		return nil, EINVAL
	}

	n.cacheMu.Lock()
	if e, ok := n.lookupCacheLocked(name); ok {
		n.cacheMu.Unlock()
		return e, nil
	}
	n.cacheMu.Unlock()

	v, err, _ := n.lookupGroup.Do(name, func() (any, error) {
		// Re-check the cache: a concurrent create/link/lookup may have
		// populated it while we were waiting to enter the singleflight
		// group.
		n.cacheMu.Lock()
		if e, ok := n.lookupCacheLocked(name); ok {
			n.cacheMu.Unlock()
			return e, nil
		}
		n.cacheMu.Unlock()

		entry, err := n.ops.Lookup(name)
		if err != nil {
			return nil, err
		}
		if n.ops.IsCacheable() {
			n.cacheMu.Lock()
			// Another caller may have inserted name in the meantime
			// (e.g. via Create); keep the existing winner.
			if e, ok := n.lookupCacheLocked(name); ok {
				entry = e
			} else {
				n.cache[name] = entry
			}
			n.cacheMu.Unlock()
		}
		return entry, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*DirEntry), nil
}

// LookupCache returns the cached entry for name without consulting the
// backend.
func (n *DirNode) LookupCache(name string) (*DirEntry, bool) {
	n.cacheMu.Lock()
	defer n.cacheMu.Unlock()
	return n.lookupCacheLocked(name)
}

// ReadDir forwards to the backend.
func (n *DirNode) ReadDir(offset uint64, sink DirEntrySink) (int, error) {
	return n.ops.ReadDir(offset, sink)
}

// Create creates name as a new node of the given type and inserts it into
// the cache.
func (n *DirNode) Create(name string, nodeType NodeType, permission NodePermission) (*DirEntry, error) {
	if err := VerifyEntryName(name); err != nil {
		return nil, err
	}
	n.cacheMu.Lock()
	defer n.cacheMu.Unlock()
	entry, err := n.ops.Create(name, nodeType, permission)
	if err != nil {
		return nil, err
	}
	n.cache[name] = entry
	return entry, nil
}

// Link creates name as a hard link to target and inserts it into the cache.
func (n *DirNode) Link(name string, target *DirEntry) (*DirEntry, error) {
	if err := VerifyEntryName(name); err != nil {
		return nil, err
	}
	n.cacheMu.Lock()
	defer n.cacheMu.Unlock()
	entry, err := n.ops.Link(name, target)
	if err != nil {
		return nil, err
	}
	n.cache[name] = entry
	return entry, nil
}

// Unlink removes name, which must refer to a directory iff isDir is true.
// On success the entry (and, if it was a directory, its entire sub-cache)
// is dropped from the cache.
func (n *DirNode) Unlink(name string, isDir bool) error {
	if err := VerifyEntryName(name); err != nil {
		return err
	}
	n.cacheMu.Lock()
	defer n.cacheMu.Unlock()

	entry, err := n.lookupLockedForMutation(name)
	if err != nil {
		return err
	}
	switch {
	case entry.IsDir() && !isDir:
		return EISDIR
	case !entry.IsDir() && isDir:
		return ENOTDIR
	}

	if err := n.ops.Unlink(name); err != nil {
		return err
	}
	delete(n.cache, name)
	if dir, err := entry.AsDir(); err == nil {
		dir.forget()
	}
	return nil
}

// lookupLockedForMutation resolves name for a mutating operation. Callers
// must hold cacheMu. Unlike Lookup, this does not use the singleflight
// group: it is always invoked with cacheMu already held, so there is no
// concurrent-miss race to deduplicate.
func (n *DirNode) lookupLockedForMutation(name string) (*DirEntry, error) {
	if e, ok := n.lookupCacheLocked(name); ok {
		return e, nil
	}
	entry, err := n.ops.Lookup(name)
	if err != nil {
		return nil, err
	}
	if n.ops.IsCacheable() {
		n.cache[name] = entry
	}
	return entry, nil
}

// HasChildren reports whether the directory contains any entry besides "."
// and "..".
func (n *DirNode) HasChildren() (bool, error) {
	has := false
	_, err := n.ops.ReadDir(0, DirEntrySinkFunc(func(name string, _ uint64, _ NodeType, _ uint64) bool {
		if name != DOT && name != DOTDOT {
			has = true
			return false
		}
		return true
	}))
	if err != nil {
		return false, err
	}
	return has, nil
}

// Rename moves srcName (in n) to dstName in dstDir. When n == dstDir, a
// single cache lock is used (the same-directory special case required by
// spec.md §5's lock-ordering rule, to avoid self-deadlock).
func (n *DirNode) Rename(srcName string, dstDir *DirNode, dstName string) error {
	if err := VerifyEntryName(srcName); err != nil {
		return err
	}
	if err := VerifyEntryName(dstName); err != nil {
		return err
	}

	sameDir := n == dstDir
	n.cacheMu.Lock()
	defer n.cacheMu.Unlock()
	if !sameDir {
		dstDir.cacheMu.Lock()
		defer dstDir.cacheMu.Unlock()
	}

	src, err := n.lookupLockedForMutation(srcName)
	if err != nil {
		return err
	}

	if dst, derr := dstDir.lookupLockedForMutation(dstName); derr == nil {
		if src.IsDir() {
			if dstDirNode, err := dst.AsDir(); err == nil {
				if has, err := dstDirNode.HasChildren(); err != nil {
					return err
				} else if has {
					return ENOTEMPTY
				}
			}
		} else if dst.IsDir() {
			return EISDIR
		}
	}

	if err := n.ops.Rename(srcName, dstDir.ops, dstName); err != nil {
		return err
	}
	delete(n.cache, srcName)
	if sameDir {
		delete(n.cache, dstName)
	} else {
		delete(dstDir.cache, dstName)
	}
	return nil
}

// OpenFile looks up name, optionally creating it as a regular file if
// absent. If it exists and options.CreateNew is set, EEXIST is returned.
func (n *DirNode) OpenFile(name string, options OpenOptions) (*DirEntry, error) {
	if err := VerifyEntryName(name); err != nil {
		return nil, err
	}
	n.cacheMu.Lock()
	entry, err := n.lookupLockedForMutation(name)
	if err == nil {
		n.cacheMu.Unlock()
		if options.CreateNew {
			return nil, EEXIST
		}
		return entry, nil
	}
	if !errors.Is(err, ENOENT) || !options.Create {
		n.cacheMu.Unlock()
		return nil, err
	}
	entry, err = n.ops.Create(name, NodeTypeRegularFile, options.Permission)
	if err != nil {
		n.cacheMu.Unlock()
		return nil, err
	}
	n.cache[name] = entry
	n.cacheMu.Unlock()

	if options.User != nil {
		if err := entry.UpdateMetadata(MetadataUpdate{Owner: options.User}); err != nil {
			return nil, err
		}
	}
	return entry, nil
}

// Mountpoint returns the Mountpoint stacked on this directory, or nil.
func (n *DirNode) Mountpoint() *Mountpoint {
	n.mountMu.Lock()
	defer n.mountMu.Unlock()
	return n.mountpoint
}

// IsMountpoint reports whether a filesystem is mounted on this directory.
func (n *DirNode) IsMountpoint() bool {
	return n.Mountpoint() != nil
}

// forget clears the cache, recursively, allowing its entries to be
// released. Called on unmount.
func (n *DirNode) forget() {
	n.cacheMu.Lock()
	children := n.cache
	n.cache = make(map[string]*DirEntry)
	n.cacheMu.Unlock()

	for _, child := range children {
		if dir, err := child.AsDir(); err == nil {
			dir.forget()
		}
	}
}
