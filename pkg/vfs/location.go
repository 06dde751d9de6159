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

import "github.com/sirupsen/logrus"

// Location is a (mount, dentry) pair: the canonical position in the
// composite namespace produced by stacking mounts onto a dentry tree.
// Equality is (mountpoint identity, dentry identity).
type Location struct {
	mountpoint *Mountpoint
	entry      *DirEntry
}

// NewLocation pairs mountpoint with entry.
func NewLocation(mountpoint *Mountpoint, entry *DirEntry) *Location {
	return &Location{mountpoint: mountpoint, entry: entry}
}

func (l *Location) wrap(entry *DirEntry) *Location {
	return &Location{mountpoint: l.mountpoint, entry: entry}
}

// Mountpoint returns l's mount.
func (l *Location) Mountpoint() *Mountpoint { return l.mountpoint }

// Entry returns l's dentry.
func (l *Location) Entry() *DirEntry { return l.entry }

// PtrEq reports whether l and other name the same position.
func (l *Location) PtrEq(other *Location) bool {
	return l.mountpoint == other.mountpoint && l.entry.PtrEq(other.entry)
}

// IsRootOfMount reports whether l's dentry is its mount's root.
func (l *Location) IsRootOfMount() bool {
	return l.entry.PtrEq(l.mountpoint.root)
}

// IsRoot reports whether l is the namespace root: the root mount's root
// dentry.
func (l *Location) IsRoot() bool {
	return l.mountpoint.IsRoot() && l.IsRootOfMount()
}

// Name returns the name l would be looked up under from its parent
// directory. At a mount root this is the mounting location's name (the
// name seen from above), preserving the view from outside the mount rather
// than exposing the backend's own root name.
func (l *Location) Name() string {
	if !l.IsRootOfMount() {
		return l.entry.Name()
	}
	if parentLoc := l.mountpoint.Location(); parentLoc != nil {
		return parentLoc.Name()
	}
	return ""
}

// Parent returns l's parent Location. At a mount root, this crosses back
// into the mounting directory's mount by ascending to the parent mount's
// Location and recursing; at the namespace root, Parent returns nil.
func (l *Location) Parent() *Location {
	if !l.IsRootOfMount() {
		return l.wrap(l.entry.Parent())
	}
	parentLoc := l.mountpoint.Location()
	if parentLoc == nil {
		return nil
	}
	return parentLoc.Parent()
}

// NodeType forwards to the dentry.
func (l *Location) NodeType() NodeType { return l.entry.NodeType() }

// IsFile forwards to the dentry.
func (l *Location) IsFile() bool { return l.entry.IsFile() }

// IsDir forwards to the dentry.
func (l *Location) IsDir() bool { return l.entry.IsDir() }

// CheckIsDir returns ENOTDIR if l is not a directory.
func (l *Location) CheckIsDir() error {
	_, err := l.entry.AsDir()
	return err
}

// CheckIsFile returns EISDIR if l is not the file variant.
func (l *Location) CheckIsFile() error {
	_, err := l.entry.AsFile()
	return err
}

// Metadata returns l's metadata with Device filled in from l's mount.
func (l *Location) Metadata() (Metadata, error) {
	md, err := l.entry.Metadata()
	if err != nil {
		return Metadata{}, err
	}
	md.Device = l.mountpoint.Device()
	return md, nil
}

// UpdateMetadata forwards to the dentry.
func (l *Location) UpdateMetadata(update MetadataUpdate) error {
	return l.entry.UpdateMetadata(update)
}

// Len forwards to the dentry.
func (l *Location) Len() (uint64, error) { return l.entry.Len() }

// Sync forwards to the dentry.
func (l *Location) Sync(dataOnly bool) error { return l.entry.Sync(dataOnly) }

// ReadLink forwards to the dentry's file node.
func (l *Location) ReadLink() (string, error) {
	f, err := l.entry.AsFile()
	if err != nil {
		return "", err
	}
	return f.ReadLink()
}

// IsMountpoint reports whether a filesystem is mounted on l's dentry.
func (l *Location) IsMountpoint() bool {
	dir, err := l.entry.AsDir()
	if err != nil {
		return false
	}
	return dir.IsMountpoint()
}

// IsAncestorOf reports whether l's dentry is an ancestor of other's, within
// the same mount (cross-mount ancestry is not meaningful and is rejected by
// Rename before this is consulted).
func (l *Location) IsAncestorOf(other *Location) bool {
	return l.entry.IsAncestorOf(other.entry)
}

// resolveMountpoint replaces l with the effective child mount's root if
// l's dentry is itself a mountpoint; see Mountpoint.effectiveMountpoint.
func (l *Location) resolveMountpoint() *Location {
	dir, err := l.entry.AsDir()
	if err != nil {
		return l
	}
	mp := dir.Mountpoint()
	if mp == nil {
		return l
	}
	mp = mp.effectiveMountpoint()
	return &Location{mountpoint: mp, entry: mp.root}
}

// LookupNoFollow resolves a single path component without following
// symlinks: "." returns l itself, ".." returns l's parent (crossing back
// into the parent mount at a mount root, or l at the namespace root), and
// any other name is resolved against the backend directory and then checked
// for a mount crossing.
func (l *Location) LookupNoFollow(name string) (*Location, error) {
	switch name {
	case DOT:
		return l, nil
	case DOTDOT:
		if parent := l.Parent(); parent != nil {
			return parent, nil
		}
		return l, nil
	default:
		dir, err := l.entry.AsDir()
		if err != nil {
			return nil, err
		}
		child, err := dir.Lookup(name)
		if err != nil {
			return nil, err
		}
		return l.wrap(child).resolveMountpoint(), nil
	}
}

// Create creates name as a new node under l.
func (l *Location) Create(name string, nodeType NodeType, permission NodePermission) (*Location, error) {
	dir, err := l.entry.AsDir()
	if err != nil {
		return nil, err
	}
	entry, err := dir.Create(name, nodeType, permission)
	if err != nil {
		return nil, err
	}
	return l.wrap(entry), nil
}

// Link creates name in l as a hard link to node. Cross-mount links are
// rejected with EXDEV.
func (l *Location) Link(name string, node *Location) (*Location, error) {
	if l.mountpoint != node.mountpoint {
		return nil, EXDEV
	}
	dir, err := l.entry.AsDir()
	if err != nil {
		return nil, err
	}
	entry, err := dir.Link(name, node.entry)
	if err != nil {
		return nil, err
	}
	return l.wrap(entry), nil
}

// Rename moves srcName (a child of l) to dstName in dstDir. Cross-mount
// renames are rejected with EXDEV; renaming a directory into its own
// descendant is rejected with EINVAL.
func (l *Location) Rename(srcName string, dstDir *Location, dstName string) error {
	if l.mountpoint != dstDir.mountpoint {
		return EXDEV
	}
	srcDirNode, err := l.entry.AsDir()
	if err != nil {
		return err
	}
	dstDirNode, err := dstDir.entry.AsDir()
	if err != nil {
		return err
	}
	if err := VerifyEntryName(srcName); err != nil {
		return err
	}
	src, err := srcDirNode.Lookup(srcName)
	if err != nil {
		return err
	}
	if l.wrap(src).IsAncestorOf(dstDir) {
		return EINVAL
	}
	return srcDirNode.Rename(srcName, dstDirNode, dstName)
}

// Unlink removes name from l, which must refer to a directory iff isDir.
func (l *Location) Unlink(name string, isDir bool) error {
	dir, err := l.entry.AsDir()
	if err != nil {
		return err
	}
	return dir.Unlink(name, isDir)
}

// OpenFile looks up name in l, optionally creating it.
func (l *Location) OpenFile(name string, options OpenOptions) (*Location, error) {
	dir, err := l.entry.AsDir()
	if err != nil {
		return nil, err
	}
	entry, err := dir.OpenFile(name, options)
	if err != nil {
		return nil, err
	}
	return l.wrap(entry).resolveMountpoint(), nil
}

// ReadDir forwards to l's dentry.
func (l *Location) ReadDir(offset uint64, sink DirEntrySink) (int, error) {
	dir, err := l.entry.AsDir()
	if err != nil {
		return 0, err
	}
	return dir.ReadDir(offset, sink)
}

// AbsolutePath gathers names walking from l's dentry up to its mount root,
// then continues from the parent mount's location, repeating until the
// namespace root.
func (l *Location) AbsolutePath() string {
	var names []string
	cur := l
	for {
		for e := cur.entry; e != nil; e = e.Parent() {
			names = append(names, e.Name())
		}
		parentLoc := cur.mountpoint.Location()
		if parentLoc == nil {
			break
		}
		cur = parentLoc
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

// Mount grafts fs onto l. EBUSY is returned if a filesystem is already
// mounted here.
func (l *Location) Mount(fs *Filesystem, log *logrus.Entry) (*Mountpoint, error) {
	dir, err := l.entry.AsDir()
	if err != nil {
		return nil, err
	}
	dir.mountMu.Lock()
	defer dir.mountMu.Unlock()
	if dir.mountpoint != nil {
		return nil, EBUSY
	}
	result := newMountpoint(fs, l)
	dir.mountpoint = result

	l.mountpoint.childrenMu.Lock()
	l.mountpoint.children[l.entry.Key()] = result
	l.mountpoint.childrenMu.Unlock()

	if log != nil {
		log.WithFields(logrus.Fields{
			"path":   l.AbsolutePath(),
			"fs":     fs.Name(),
			"device": result.Device(),
		}).Info("mounted filesystem")
	}
	return result, nil
}

// Unmount removes the mount rooted at l. l must be the root of a
// non-namespace-root mount.
func (l *Location) Unmount(log *logrus.Entry) error {
	if !l.IsRootOfMount() {
		return EINVAL
	}
	parentLoc := l.mountpoint.Location()
	if parentLoc == nil {
		return EINVAL
	}
	dir, err := l.entry.AsDir()
	if err != nil {
		return err
	}
	dir.forget()

	parentDir, err := parentLoc.entry.AsDir()
	if err != nil {
		return err
	}
	parentDir.mountMu.Lock()
	parentDir.mountpoint = nil
	parentDir.mountMu.Unlock()

	if log != nil {
		log.WithFields(logrus.Fields{
			"path":   l.AbsolutePath(),
			"device": l.mountpoint.Device(),
		}).Info("unmounted filesystem")
	}
	return nil
}
