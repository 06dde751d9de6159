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

// Package vfs implements a backend-agnostic virtual filesystem layer: a
// cached, reference-shared dentry tree, mount composition across stacked
// backend filesystems, and a root/cwd path resolver.
//
// The package does not implement any concrete filesystem. Backends plug in
// through FilesystemOps, NodeOps, FileNodeOps, and DirNodeOps; see
// pkg/vfs/memfs for a reference implementation used by this package's own
// tests.
package vfs
