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

package procfs_test

import (
	"strings"
	"testing"

	"gotest.tools/v3/assert"

	"github.com/corevfs/corevfs/pkg/vfs"
	"github.com/corevfs/corevfs/pkg/vfs/procfs"
)

func TestProcfsIsNotCacheable(t *testing.T) {
	fs := procfs.New()
	assert.Assert(t, !fs.IsCacheable())

	mp := vfs.NewRootMountpoint(vfs.NewFilesystem(fs))
	r := vfs.NewFsResolver(mp.RootLocation())

	loc1, err := r.Resolve("/uptime")
	assert.NilError(t, err)
	loc2, err := r.Resolve("/uptime")
	assert.NilError(t, err)
	assert.Assert(t, !loc1.Entry().PtrEq(loc2.Entry()))
}

func TestProcfsReadDirAndContent(t *testing.T) {
	fs := procfs.New()
	mp := vfs.NewRootMountpoint(vfs.NewFilesystem(fs))
	r := vfs.NewFsResolver(mp.RootLocation())

	var names []string
	_, err := r.RootDir().ReadDir(0, vfs.DirEntrySinkFunc(func(name string, _ uint64, _ vfs.NodeType, _ uint64) bool {
		if name != vfs.DOT && name != vfs.DOTDOT {
			names = append(names, name)
		}
		return true
	}))
	assert.NilError(t, err)
	assert.DeepEqual(t, names, []string{"uptime", "procs"})

	loc, err := r.Resolve("/procs")
	assert.NilError(t, err)
	file, err := loc.Entry().AsFile()
	assert.NilError(t, err)
	data, err := file.ReadToEnd(0)
	assert.NilError(t, err)
	assert.Assert(t, strings.TrimSpace(string(data)) != "")
}

func TestProcfsIsReadOnly(t *testing.T) {
	fs := procfs.New()
	mp := vfs.NewRootMountpoint(vfs.NewFilesystem(fs))
	root := mp.RootLocation()

	_, err := root.Create("new", vfs.NodeTypeRegularFile, vfs.DefaultPermission)
	assert.ErrorIs(t, err, vfs.EACCES)
}
