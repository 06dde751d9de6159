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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"gotest.tools/v3/assert"
)

func writeTOML(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "mounts.toml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeTOML(t, `
[[mount]]
path = "/tmp"
backend = "memfs"
mode = "0700"
uid = 1000
gid = 1000

[[mount]]
path = "/proc"
backend = "procfs"
`)
	table, err := Load(path)
	assert.NilError(t, err)
	assert.Equal(t, len(table.Mounts), 2)
	assert.Equal(t, table.Mounts[0].Path, "/tmp")
	assert.Equal(t, table.Mounts[0].Backend, BackendMemFS)
	assert.Equal(t, table.Mounts[1].Backend, BackendProcFS)

	mode, err := table.Mounts[0].ParseMode()
	assert.NilError(t, err)
	assert.Equal(t, mode, uint16(0o700))
}

func TestLoadDefaultMode(t *testing.T) {
	e := MountEntry{Path: "/tmp", Backend: BackendMemFS}
	mode, err := e.ParseMode()
	assert.NilError(t, err)
	assert.Equal(t, mode, uint16(0o755))
}

func TestLoadUnknownBackend(t *testing.T) {
	path := writeTOML(t, `
[[mount]]
path = "/x"
backend = "weirdfs"
`)
	_, err := Load(path)
	assert.ErrorContains(t, err, "unknown backend")
}

func TestParseModeInvalid(t *testing.T) {
	e := MountEntry{Path: "/tmp", Backend: BackendMemFS, Mode: "not-octal"}
	_, err := e.ParseMode()
	assert.ErrorContains(t, err, "invalid mode")
}
