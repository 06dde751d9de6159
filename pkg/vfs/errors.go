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

import (
	"golang.org/x/sys/unix"
)

// Error is the core's error taxonomy. It wraps a POSIX errno so that
// backends and callers can compare against the package-level sentinels with
// errors.Is, without the core depending on any particular host OS error
// mapping.
type Error struct {
	errno unix.Errno
}

// Errno returns the underlying POSIX errno value.
func (e *Error) Errno() unix.Errno {
	return e.errno
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.errno.Error()
}

// Is allows errors.Is(err, ENOENT) and similar to work across Error values
// constructed independently but carrying the same errno.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.errno == other.errno
}

func newError(errno unix.Errno) *Error {
	return &Error{errno: errno}
}

// Sentinel errors returned throughout the core. Every fallible operation in
// this package returns one of these (wrapped, where noted, by a calling
// convention) rather than an opaque error.
var (
	ENOENT    = newError(unix.ENOENT)
	EEXIST    = newError(unix.EEXIST)
	EISDIR    = newError(unix.EISDIR)
	ENOTDIR   = newError(unix.ENOTDIR)
	ENOTEMPTY = newError(unix.ENOTEMPTY)
	EINVAL    = newError(unix.EINVAL)
	EBUSY     = newError(unix.EBUSY)
	EXDEV     = newError(unix.EXDEV)
	EIO       = newError(unix.EIO)
	ENOTTY    = newError(unix.ENOTTY)
	EACCES    = newError(unix.EACCES)
)
