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

// Package memfs is a reference vfs.FilesystemOps backend that keeps every
// node's data and metadata in memory. It plays the role the teacher's
// fsimpl/kernfs-based backends play: a concrete filesystem exercising the
// core's cache-coherence contract, used by this repo's tests and by the
// vfsctl CLI demo.
package memfs
