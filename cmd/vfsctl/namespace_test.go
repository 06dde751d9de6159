// Copyright 2018 The gVisor Authors.
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

package main

import (
	"testing"

	"github.com/sirupsen/logrus"
	"gotest.tools/v3/assert"

	"github.com/corevfs/corevfs/internal/config"
	"github.com/corevfs/corevfs/pkg/vfs"
)

func TestBuildNamespace(t *testing.T) {
	log := logrus.NewEntry(logrus.New())
	table := &config.MountTable{
		Mounts: []config.MountEntry{
			{Path: "/tmp", Backend: config.BackendMemFS, Mode: "0755"},
			{Path: "/proc", Backend: config.BackendProcFS},
			{Path: "/a/b", Backend: config.BackendMemFS},
		},
	}
	resolver, err := buildNamespace(table, log)
	assert.NilError(t, err)

	tmp, err := resolver.Resolve("/tmp")
	assert.NilError(t, err)
	assert.Assert(t, tmp.IsRootOfMount())

	proc, err := resolver.Resolve("/proc")
	assert.NilError(t, err)
	_, err = proc.ReadDir(0, vfs.DirEntrySinkFunc(func(string, uint64, vfs.NodeType, uint64) bool { return true }))
	assert.NilError(t, err)

	nested, err := resolver.Resolve("/a/b")
	assert.NilError(t, err)
	assert.Assert(t, nested.IsRootOfMount())
}

func TestBuildNamespaceUnknownBackend(t *testing.T) {
	log := logrus.NewEntry(logrus.New())
	table := &config.MountTable{
		Mounts: []config.MountEntry{{Path: "/x", Backend: "bogus"}},
	}
	_, err := buildNamespace(table, log)
	assert.ErrorContains(t, err, "unknown backend")
}
