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

// Package config loads the TOML mount table cmd/vfsctl assembles a
// namespace from: which backend filesystems to graft onto which paths.
package config

import (
	"fmt"
	"strconv"

	"github.com/BurntSushi/toml"
)

// Backend names a supported FilesystemOps implementation.
type Backend string

// Supported backends.
const (
	BackendMemFS  Backend = "memfs"
	BackendProcFS Backend = "procfs"
)

// MountEntry describes one filesystem to graft onto the namespace being
// assembled.
type MountEntry struct {
	// Path is where the filesystem is mounted, relative to the namespace
	// root. Intermediate directories are created as plain memfs
	// directories if they don't already exist.
	Path string `toml:"path"`
	// Backend selects the FilesystemOps implementation.
	Backend Backend `toml:"backend"`
	// Mode is the octal permission string (e.g. "0755") applied to
	// memfs's root directory. Ignored by backends that don't take one.
	Mode string `toml:"mode"`
	UID  uint32 `toml:"uid"`
	GID  uint32 `toml:"gid"`
}

// ParseMode parses e's Mode field, defaulting to 0o755 if unset.
func (e MountEntry) ParseMode() (uint16, error) {
	if e.Mode == "" {
		return 0o755, nil
	}
	v, err := strconv.ParseUint(e.Mode, 8, 16)
	if err != nil {
		return 0, fmt.Errorf("mount %q: invalid mode %q: %w", e.Path, e.Mode, err)
	}
	return uint16(v), nil
}

// MountTable is the root of the TOML mount-table document:
//
//	[[mount]]
//	path = "/tmp"
//	backend = "memfs"
//
//	[[mount]]
//	path = "/proc"
//	backend = "procfs"
type MountTable struct {
	Mounts []MountEntry `toml:"mount"`
}

// Load reads and parses the mount table at path.
func Load(path string) (*MountTable, error) {
	var t MountTable
	if _, err := toml.DecodeFile(path, &t); err != nil {
		return nil, fmt.Errorf("loading mount table %q: %w", path, err)
	}
	for _, m := range t.Mounts {
		switch m.Backend {
		case BackendMemFS, BackendProcFS:
		default:
			return nil, fmt.Errorf("mount %q: unknown backend %q", m.Path, m.Backend)
		}
	}
	return &t, nil
}
