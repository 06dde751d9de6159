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

package vfsfuse

import (
	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/corevfs/corevfs/pkg/vfs"
)

// Mount exports root over FUSE at the host path mountpoint and returns the
// running fuse.Server. Callers own the returned server's lifecycle: Wait
// blocks until the mount is torn down (e.g. by Unmount or a host umount(8)).
func Mount(mountpoint string, root *vfs.Location, opts *fs.Options) (*fuse.Server, error) {
	if opts == nil {
		opts = &fs.Options{}
	}
	return fs.Mount(mountpoint, &Node{loc: root}, opts)
}
