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

// End-to-end scenarios exercising the dentry cache, mount composition, and
// resolver together against the memfs backend, mirroring the scenarios a
// real caller (vfsctl, vfsfuse) drives the core through.
package vfs_test

import (
	"testing"

	"gotest.tools/v3/assert"

	"github.com/corevfs/corevfs/pkg/vfs"
	"github.com/corevfs/corevfs/pkg/vfs/memfs"
)

func newRootResolver() *vfs.FsResolver {
	fs := memfs.NewDefault()
	mp := vfs.NewRootMountpoint(vfs.NewFilesystem(fs))
	return vfs.NewFsResolver(mp.RootLocation())
}

func TestBasicWalk(t *testing.T) {
	r := newRootResolver()
	root := r.RootDir()

	aDir, err := root.Create("a", vfs.NodeTypeDirectory, 0o755)
	assert.NilError(t, err)
	_, err = aDir.Create("b", vfs.NodeTypeRegularFile, vfs.DefaultPermission)
	assert.NilError(t, err)

	loc, err := r.Resolve("/a/b")
	assert.NilError(t, err)
	assert.Equal(t, loc.Name(), "b")
	assert.Assert(t, loc.IsFile())
	assert.Equal(t, loc.AbsolutePath(), "/a/b")
}

func TestLookupMemoization(t *testing.T) {
	r := newRootResolver()
	root := r.RootDir()
	_, err := root.Create("a", vfs.NodeTypeDirectory, 0o755)
	assert.NilError(t, err)

	l1, err := r.Resolve("/a")
	assert.NilError(t, err)
	l2, err := r.Resolve("/a")
	assert.NilError(t, err)
	assert.Assert(t, l1.Entry().PtrEq(l2.Entry()))
}

func TestCreateIdempotenceAtError(t *testing.T) {
	r := newRootResolver()
	root := r.RootDir()
	first, err := root.Create("a", vfs.NodeTypeDirectory, 0o755)
	assert.NilError(t, err)

	_, err = root.Create("a", vfs.NodeTypeDirectory, 0o755)
	assert.ErrorIs(t, err, vfs.EEXIST)

	again, err := r.Resolve("/a")
	assert.NilError(t, err)
	assert.Assert(t, first.Entry().PtrEq(again.Entry()))
}

func TestUnlinkNonEmptyDir(t *testing.T) {
	r := newRootResolver()
	root := r.RootDir()
	a, err := root.Create("a", vfs.NodeTypeDirectory, 0o755)
	assert.NilError(t, err)
	_, err = a.Create("child", vfs.NodeTypeRegularFile, vfs.DefaultPermission)
	assert.NilError(t, err)

	err = root.Unlink("a", true)
	assert.ErrorIs(t, err, vfs.ENOTEMPTY)

	var names []string
	_, err = a.ReadDir(0, vfs.DirEntrySinkFunc(func(name string, _ uint64, _ vfs.NodeType, _ uint64) bool {
		if name != vfs.DOT && name != vfs.DOTDOT {
			names = append(names, name)
		}
		return true
	}))
	assert.NilError(t, err)
	assert.DeepEqual(t, names, []string{"child"})
}

func TestRenameSameDirNoOp(t *testing.T) {
	r := newRootResolver()
	root := r.RootDir()
	_, err := root.Create("a", vfs.NodeTypeRegularFile, vfs.DefaultPermission)
	assert.NilError(t, err)

	err = root.Rename("a", root, "a")
	assert.NilError(t, err)

	_, err = r.Resolve("/a")
	assert.NilError(t, err)
}

func TestRenameIntoDescendant(t *testing.T) {
	r := newRootResolver()
	root := r.RootDir()
	a, err := root.Create("a", vfs.NodeTypeDirectory, 0o755)
	assert.NilError(t, err)
	_, err = a.Create("b", vfs.NodeTypeDirectory, 0o755)
	assert.NilError(t, err)

	err = root.Rename("a", a, "b")
	assert.ErrorIs(t, err, vfs.EINVAL)
}

func TestDotDotAtRoot(t *testing.T) {
	fs := memfs.NewDefault()
	mp := vfs.NewRootMountpoint(vfs.NewFilesystem(fs))
	fsRoot := mp.RootLocation()
	sandbox, err := fsRoot.Create("sandbox", vfs.NodeTypeDirectory, 0o755)
	assert.NilError(t, err)

	r := vfs.NewFsResolver(sandbox)
	up, err := r.Resolve("..")
	assert.NilError(t, err)
	self, err := r.Resolve("/")
	assert.NilError(t, err)
	assert.Assert(t, up.Entry().PtrEq(self.Entry()))
}

func TestMountStacking(t *testing.T) {
	r := newRootResolver()
	root := r.RootDir()
	_, err := root.Create("mnt", vfs.NodeTypeDirectory, 0o755)
	assert.NilError(t, err)

	mntLoc, err := r.Resolve("/mnt")
	assert.NilError(t, err)
	fs1 := memfs.NewDefault()
	mp1, err := mntLoc.Mount(vfs.NewFilesystem(fs1), nil)
	assert.NilError(t, err)

	loc, err := r.Resolve("/mnt")
	assert.NilError(t, err)
	assert.Assert(t, loc.IsRootOfMount())
	assert.Equal(t, loc.Name(), "mnt")
	assert.Assert(t, loc.Entry().PtrEq(mp1.RootLocation().Entry()))

	fs2 := memfs.NewDefault()
	mp2, err := loc.Mount(vfs.NewFilesystem(fs2), nil)
	assert.NilError(t, err)

	loc2, err := r.Resolve("/mnt")
	assert.NilError(t, err)
	assert.Assert(t, loc2.IsRootOfMount())
	assert.Equal(t, loc2.Name(), "mnt")
	assert.Assert(t, loc2.Entry().PtrEq(mp2.RootLocation().Entry()))
	assert.Assert(t, !loc2.Entry().PtrEq(mp1.RootLocation().Entry()))

	stacked := mp1.StackedMounts()
	assert.Equal(t, len(stacked), 1)
	assert.Assert(t, stacked[0] == mp2)
}

func TestCrossMountRenameAndLink(t *testing.T) {
	r := newRootResolver()
	root := r.RootDir()
	_, err := root.Create("a", vfs.NodeTypeDirectory, 0o755)
	assert.NilError(t, err)
	_, err = root.Create("b", vfs.NodeTypeDirectory, 0o755)
	assert.NilError(t, err)

	aLoc, err := r.Resolve("/a")
	assert.NilError(t, err)
	_, err = aLoc.Mount(vfs.NewFilesystem(memfs.NewDefault()), nil)
	assert.NilError(t, err)

	bLoc, err := r.Resolve("/b")
	assert.NilError(t, err)
	_, err = bLoc.Mount(vfs.NewFilesystem(memfs.NewDefault()), nil)
	assert.NilError(t, err)

	aDir, err := r.Resolve("/a")
	assert.NilError(t, err)
	_, err = aDir.Create("x", vfs.NodeTypeRegularFile, vfs.DefaultPermission)
	assert.NilError(t, err)

	bDir, err := r.Resolve("/b")
	assert.NilError(t, err)

	err = aDir.Rename("x", bDir, "y")
	assert.ErrorIs(t, err, vfs.EXDEV)

	xLoc, err := r.Resolve("/a/x")
	assert.NilError(t, err)
	_, err = bDir.Link("y", xLoc)
	assert.ErrorIs(t, err, vfs.EXDEV)

	err = aDir.Rename("x", aDir, "y")
	assert.NilError(t, err)
	_, err = r.Resolve("/a/y")
	assert.NilError(t, err)
}

func TestDeviceUniqueness(t *testing.T) {
	r := newRootResolver()
	root := r.RootDir()
	_, err := root.Create("a", vfs.NodeTypeDirectory, 0o755)
	assert.NilError(t, err)
	aLoc, err := r.Resolve("/a")
	assert.NilError(t, err)
	mp, err := aLoc.Mount(vfs.NewFilesystem(memfs.NewDefault()), nil)
	assert.NilError(t, err)

	rootMd, err := root.Metadata()
	assert.NilError(t, err)
	assert.Assert(t, rootMd.Device != mp.Device())
}

func TestUnmount(t *testing.T) {
	r := newRootResolver()
	root := r.RootDir()
	_, err := root.Create("a", vfs.NodeTypeDirectory, 0o755)
	assert.NilError(t, err)
	aLoc, err := r.Resolve("/a")
	assert.NilError(t, err)
	_, err = aLoc.Mount(vfs.NewFilesystem(memfs.NewDefault()), nil)
	assert.NilError(t, err)

	mountedLoc, err := r.Resolve("/a")
	assert.NilError(t, err)
	assert.Assert(t, mountedLoc.IsRootOfMount())

	err = mountedLoc.Unmount(nil)
	assert.NilError(t, err)

	after, err := r.Resolve("/a")
	assert.NilError(t, err)
	assert.Assert(t, !after.IsRootOfMount())
}

func TestOpenFileCreateNew(t *testing.T) {
	r := newRootResolver()
	root := r.RootDir()
	loc, err := root.OpenFile("f", vfs.OpenOptions{Create: true, Permission: vfs.DefaultPermission})
	assert.NilError(t, err)
	assert.Assert(t, loc.IsFile())

	_, err = root.OpenFile("f", vfs.OpenOptions{CreateNew: true})
	assert.ErrorIs(t, err, vfs.EEXIST)

	again, err := root.OpenFile("f", vfs.OpenOptions{})
	assert.NilError(t, err)
	assert.Assert(t, again.Entry().PtrEq(loc.Entry()))
}
