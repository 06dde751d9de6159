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

package memfs_test

import (
	"testing"

	"gotest.tools/v3/assert"

	"github.com/corevfs/corevfs/pkg/vfs"
	"github.com/corevfs/corevfs/pkg/vfs/memfs"
)

func newRoot(t *testing.T) *vfs.Location {
	t.Helper()
	fs := memfs.NewDefault()
	mp := vfs.NewRootMountpoint(vfs.NewFilesystem(fs))
	return mp.RootLocation()
}

func TestFileReadWrite(t *testing.T) {
	root := newRoot(t)
	loc, err := root.Create("f", vfs.NodeTypeRegularFile, vfs.DefaultPermission)
	assert.NilError(t, err)
	file, err := loc.Entry().AsFile()
	assert.NilError(t, err)

	n, err := file.WriteAt([]byte("hello"), 0)
	assert.NilError(t, err)
	assert.Equal(t, n, 5)

	buf := make([]byte, 5)
	n, err = file.ReadAt(buf, 0)
	assert.NilError(t, err)
	assert.Equal(t, n, 5)
	assert.Equal(t, string(buf), "hello")

	written, newSize, err := file.Append([]byte(" world"))
	assert.NilError(t, err)
	assert.Equal(t, written, 6)
	assert.Equal(t, newSize, uint64(11))

	all, err := file.ReadToEnd(0)
	assert.NilError(t, err)
	assert.Equal(t, string(all), "hello world")

	assert.NilError(t, file.SetLen(5))
	all, err = file.ReadToEnd(0)
	assert.NilError(t, err)
	assert.Equal(t, string(all), "hello")

	assert.NilError(t, file.SetLen(7))
	all, err = file.ReadToEnd(0)
	assert.NilError(t, err)
	assert.Equal(t, len(all), 7)
}

func TestSymlink(t *testing.T) {
	root := newRoot(t)
	loc, err := root.Create("link", vfs.NodeTypeSymlink, vfs.DefaultPermission)
	assert.NilError(t, err)

	file, err := loc.Entry().AsFile()
	assert.NilError(t, err)
	assert.NilError(t, file.SetSymlink("/target"))

	target, err := loc.ReadLink()
	assert.NilError(t, err)
	assert.Equal(t, target, "/target")
}

func TestHardLinkSharesData(t *testing.T) {
	root := newRoot(t)
	orig, err := root.Create("orig", vfs.NodeTypeRegularFile, vfs.DefaultPermission)
	assert.NilError(t, err)
	origFile, err := orig.Entry().AsFile()
	assert.NilError(t, err)
	_, err = origFile.WriteAt([]byte("shared"), 0)
	assert.NilError(t, err)

	linked, err := root.Link("alias", orig)
	assert.NilError(t, err)
	linkedFile, err := linked.Entry().AsFile()
	assert.NilError(t, err)
	all, err := linkedFile.ReadToEnd(0)
	assert.NilError(t, err)
	assert.Equal(t, string(all), "shared")

	md, err := linked.Metadata()
	assert.NilError(t, err)
	assert.Equal(t, md.Nlink, uint64(2))

	assert.NilError(t, root.Unlink("orig", false))
	md, err = linked.Metadata()
	assert.NilError(t, err)
	assert.Equal(t, md.Nlink, uint64(1))
}

func TestLinkRejectsDirectory(t *testing.T) {
	root := newRoot(t)
	dir, err := root.Create("d", vfs.NodeTypeDirectory, 0o755)
	assert.NilError(t, err)

	_, err = root.Link("d2", dir)
	assert.ErrorIs(t, err, vfs.EISDIR)
}
