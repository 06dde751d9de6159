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
	"syscall"

	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/corevfs/corevfs/pkg/vfs"
)

// modeBits maps a vfs.NodeType to the S_IFxxx bits fuse.Attr.Mode and
// fs.StableAttr.Mode expect in their high bits.
func modeBits(t vfs.NodeType) uint32 {
	switch t {
	case vfs.NodeTypeDirectory:
		return syscall.S_IFDIR
	case vfs.NodeTypeRegularFile:
		return syscall.S_IFREG
	case vfs.NodeTypeSymlink:
		return syscall.S_IFLNK
	case vfs.NodeTypeFifo:
		return syscall.S_IFIFO
	case vfs.NodeTypeCharacterDevice:
		return syscall.S_IFCHR
	case vfs.NodeTypeBlockDevice:
		return syscall.S_IFBLK
	case vfs.NodeTypeSocket:
		return syscall.S_IFSOCK
	default:
		return syscall.S_IFREG
	}
}

// fillAttr populates out from md. The permission bits come from md.Mode; the
// type bits come from md.NodeType, since a symlink's Mode never carries
// S_IFLNK itself (vfs.NodePermission is a plain 0o777 bitset).
func fillAttr(out *fuse.Attr, md vfs.Metadata) {
	out.Ino = md.Inode
	out.Size = md.Size
	out.Blocks = md.Blocks
	out.Nlink = uint32(md.Nlink)
	out.Mode = modeBits(md.NodeType) | uint32(md.Mode)
	out.Owner = fuse.Owner{Uid: md.UID, Gid: md.GID}
	out.Blksize = uint32(md.BlockSize)
	out.SetTimes(&md.Atime, &md.Mtime, &md.Ctime)
}
