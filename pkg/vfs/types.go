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

package vfs

import "time"

// NodeType is the type of a filesystem node, as would be reported in a
// directory entry. Its numeric encoding matches POSIX's DT_* constants.
type NodeType uint8

// Node type constants. Unknown is a sentinel used only when decoding
// untrusted or absent values; it is never returned by a well-behaved
// backend.
const (
	NodeTypeUnknown         NodeType = 0
	NodeTypeFifo            NodeType = 01
	NodeTypeCharacterDevice NodeType = 02
	NodeTypeDirectory       NodeType = 04
	NodeTypeBlockDevice     NodeType = 06
	NodeTypeRegularFile     NodeType = 010
	NodeTypeSymlink         NodeType = 012
	NodeTypeSocket          NodeType = 014
)

// String returns a short human-readable name for t.
func (t NodeType) String() string {
	switch t {
	case NodeTypeFifo:
		return "fifo"
	case NodeTypeCharacterDevice:
		return "char"
	case NodeTypeDirectory:
		return "dir"
	case NodeTypeBlockDevice:
		return "block"
	case NodeTypeRegularFile:
		return "file"
	case NodeTypeSymlink:
		return "symlink"
	case NodeTypeSocket:
		return "socket"
	default:
		return "unknown"
	}
}

// NodeTypeFromDT decodes a raw DT_*-style octal value into a NodeType,
// mapping anything unrecognized to NodeTypeUnknown.
func NodeTypeFromDT(v uint8) NodeType {
	switch NodeType(v) {
	case NodeTypeFifo, NodeTypeCharacterDevice, NodeTypeDirectory, NodeTypeBlockDevice,
		NodeTypeRegularFile, NodeTypeSymlink, NodeTypeSocket:
		return NodeType(v)
	default:
		return NodeTypeUnknown
	}
}

// NodePermission is a POSIX owner/group/other read/write/execute bitset
// (mode bits 0o777).
type NodePermission uint16

// Permission bits.
const (
	PermOwnerRead  NodePermission = 0o400
	PermOwnerWrite NodePermission = 0o200
	PermOwnerExec  NodePermission = 0o100
	PermGroupRead  NodePermission = 0o040
	PermGroupWrite NodePermission = 0o020
	PermGroupExec  NodePermission = 0o010
	PermOtherRead  NodePermission = 0o004
	PermOtherWrite NodePermission = 0o002
	PermOtherExec  NodePermission = 0o001
)

// DefaultPermission is the conventional permission for new files. It is not
// applied implicitly: callers pass it explicitly, and a zero Permission
// creates a node with no permission bits set.
const DefaultPermission NodePermission = 0o666

// Metadata describes a filesystem node's attributes. Device is injected by
// the VFS from the owning mount; every other field is supplied by the
// backend.
type Metadata struct {
	Device    uint64
	Inode     uint64
	Nlink     uint64
	Mode      NodePermission
	NodeType  NodeType
	UID       uint32
	GID       uint32
	Size      uint64
	BlockSize uint64
	Blocks    uint64
	Atime     time.Time
	Mtime     time.Time
	Ctime     time.Time
}

// Owner is a (uid, gid) pair.
type Owner struct {
	UID uint32
	GID uint32
}

// MetadataUpdate is a partial update to a node's metadata: every field is
// optional, and an absent field leaves the prior state unchanged.
type MetadataUpdate struct {
	Mode  *NodePermission
	Owner *Owner
	Atime *time.Time
	Mtime *time.Time
}

// StatFs reports filesystem-wide statistics, analogous to POSIX statvfs.
type StatFs struct {
	FsType       uint64
	BlockSize    uint64
	Blocks       uint64
	FreeBlocks   uint64
	AvailBlocks  uint64
	Files        uint64
	FreeFiles    uint64
	NameLength   uint64
	FragmentSize uint64
	MountFlags   uint64
}

// OpenOptions configures DirNode.OpenFile.
type OpenOptions struct {
	// Create creates the file if it does not already exist.
	Create bool
	// CreateNew requires that the file does not already exist; EEXIST is
	// returned if it does.
	CreateNew bool
	// Permission is the permission assigned to a newly created file.
	Permission NodePermission
	// User, if non-nil, is applied as the owner of a newly created file.
	User *Owner
}
