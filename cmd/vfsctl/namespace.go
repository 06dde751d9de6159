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
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/corevfs/corevfs/internal/config"
	"github.com/corevfs/corevfs/pkg/vfs"
	"github.com/corevfs/corevfs/pkg/vfs/memfs"
	"github.com/corevfs/corevfs/pkg/vfs/procfs"
)

// buildNamespace assembles a resolver-backed namespace from table: a memfs
// root, with each configured backend grafted onto its path. Intermediate
// directories along a mount's path are created as plain memfs directories if
// they don't already exist, the same way a host mkdir -p would be used
// before a real mount(8).
func buildNamespace(table *config.MountTable, log *logrus.Entry) (*vfs.FsResolver, error) {
	root := memfs.NewDefault()
	rootMount := vfs.NewRootMountpoint(vfs.NewFilesystem(root))
	resolver := vfs.NewFsResolver(rootMount.RootLocation())

	for _, entry := range table.Mounts {
		dir, err := ensureDir(resolver, entry.Path)
		if err != nil {
			return nil, fmt.Errorf("mount %q: %w", entry.Path, err)
		}

		fsOps, err := newBackend(entry)
		if err != nil {
			return nil, fmt.Errorf("mount %q: %w", entry.Path, err)
		}
		if _, err := dir.Mount(vfs.NewFilesystem(fsOps), log); err != nil {
			return nil, fmt.Errorf("mount %q: %w", entry.Path, err)
		}
	}
	return resolver, nil
}

// ensureDir walks path from resolver's root, creating memfs directories for
// any component that doesn't already exist, and returns the Location named
// by the final component.
func ensureDir(resolver *vfs.FsResolver, path string) (*vfs.Location, error) {
	dir := resolver.RootDir()
	for _, name := range strings.Split(strings.Trim(path, "/"), "/") {
		if name == "" {
			continue
		}
		child, err := dir.LookupNoFollow(name)
		if err == vfs.ENOENT {
			child, err = dir.Create(name, vfs.NodeTypeDirectory, 0o755)
		}
		if err != nil {
			return nil, err
		}
		dir = child
	}
	return dir, nil
}

// newBackend constructs the FilesystemOps named by entry.Backend.
func newBackend(entry config.MountEntry) (vfs.FilesystemOps, error) {
	switch entry.Backend {
	case config.BackendMemFS:
		mode, err := entry.ParseMode()
		if err != nil {
			return nil, err
		}
		return memfs.New(vfs.Owner{UID: entry.UID, GID: entry.GID}, vfs.NodePermission(mode)), nil
	case config.BackendProcFS:
		return procfs.New(), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", entry.Backend)
	}
}
