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

// Package vfsfuse exports a mounted vfs.Location as a FUSE filesystem using
// github.com/hanwen/go-fuse/v2. Where the teacher's own fsimpl/fuse package
// is the kernel side of FUSE, consuming requests off /dev/fuse on behalf of
// processes inside the sandbox, this package is the server side: it answers
// those requests on behalf of a vfs namespace, translating go-fuse's
// InodeEmbedder callbacks into Location operations and vfs.Error values back
// into syscall.Errno.
package vfsfuse
