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
	"errors"
	"syscall"

	"github.com/corevfs/corevfs/pkg/vfs"
)

// toErrno translates a vfs.Error into the syscall.Errno go-fuse's NodeXxxx
// callbacks expect. Both are backed by the same underlying integer errno
// space, so the translation is a value copy, not a table lookup.
func toErrno(err error) syscall.Errno {
	if err == nil {
		return 0
	}
	var verr *vfs.Error
	if errors.As(err, &verr) {
		return syscall.Errno(verr.Errno())
	}
	return syscall.EIO
}
