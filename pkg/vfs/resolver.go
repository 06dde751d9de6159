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

// FsResolver resolves paths against a pinned (root, cwd) pair. "/" and
// repeated ".." never escape root, making FsResolver suitable both for a
// process's ordinary root/cwd and for a chroot-style pinned root.
type FsResolver struct {
	rootDir    *Location
	currentDir *Location
}

// NewFsResolver creates a resolver whose root and current directory are
// both rootDir.
func NewFsResolver(rootDir *Location) *FsResolver {
	return &FsResolver{rootDir: rootDir, currentDir: rootDir}
}

// Clone returns an independent resolver at the same positions.
func (r *FsResolver) Clone() *FsResolver {
	return &FsResolver{rootDir: r.rootDir, currentDir: r.currentDir}
}

// RootDir returns the resolver's pinned root.
func (r *FsResolver) RootDir() *Location { return r.rootDir }

// CurrentDir returns the resolver's current directory.
func (r *FsResolver) CurrentDir() *Location { return r.currentDir }

// SetCurrentDir updates the resolver's current directory in place.
// ENOTDIR is returned if currentDir is not a directory.
func (r *FsResolver) SetCurrentDir(currentDir *Location) error {
	if err := currentDir.CheckIsDir(); err != nil {
		return err
	}
	r.currentDir = currentDir
	return nil
}

// WithCurrentDir returns a new resolver sharing root but with the given
// current directory. ENOTDIR is returned if currentDir is not a directory.
func (r *FsResolver) WithCurrentDir(currentDir *Location) (*FsResolver, error) {
	if err := currentDir.CheckIsDir(); err != nil {
		return nil, err
	}
	return &FsResolver{rootDir: r.rootDir, currentDir: currentDir}, nil
}

// resolveInner walks every component of path except a trailing Normal
// component (the "tail"), returning the directory it stopped at and the
// tail name, if any.
func (r *FsResolver) resolveInner(path string) (*Location, string, bool, error) {
	dir := r.currentDir

	tailName, hasTail := FileName(path)
	comps := Components(path)
	if hasTail {
		comps = comps[:len(comps)-1]
	}

	for _, comp := range comps {
		switch comp.Kind {
		case ComponentCurDir:
			// no-op
		case ComponentParentDir:
			if dir.PtrEq(r.rootDir) {
				// pinned root: ".." does not escape it, even when the
				// dentry beneath has a real parent (e.g. a chroot).
			} else if parent := dir.Parent(); parent != nil {
				dir = parent
			} else {
				dir = r.rootDir
			}
		case ComponentRootDir:
			dir = r.rootDir
		case ComponentNormal:
			next, err := dir.LookupNoFollow(comp.Name)
			if err != nil {
				return nil, "", false, err
			}
			dir = next
		}
	}
	if err := dir.CheckIsDir(); err != nil {
		return nil, "", false, err
	}
	return dir, tailName, hasTail, nil
}

// Resolve resolves path to a Location, starting from the current directory.
func (r *FsResolver) Resolve(path string) (*Location, error) {
	dir, tail, hasTail, err := r.resolveInner(path)
	if err != nil {
		return nil, err
	}
	if !hasTail {
		return dir, nil
	}
	return dir.LookupNoFollow(tail)
}

// ResolveParent resolves path to (parent directory, entry name), without
// requiring the entry to exist.
func (r *FsResolver) ResolveParent(path string) (*Location, string, error) {
	dir, tail, hasTail, err := r.resolveInner(path)
	if err != nil {
		return nil, "", err
	}
	if hasTail {
		return dir, tail, nil
	}
	if dir.PtrEq(r.rootDir) {
		return nil, "", EINVAL
	}
	if parent := dir.Parent(); parent != nil {
		return parent, dir.Name(), nil
	}
	return nil, "", EINVAL
}

// ResolveNonexistent resolves path to (parent directory, entry name),
// requiring that path names an entry (i.e. does not resolve to "." or the
// root). It does not itself check that the entry is actually absent; the
// caller is responsible for that.
func (r *FsResolver) ResolveNonexistent(path string) (*Location, string, error) {
	dir, tail, hasTail, err := r.resolveInner(path)
	if err != nil {
		return nil, "", err
	}
	if !hasTail {
		return nil, "", EEXIST
	}
	return dir, tail, nil
}
