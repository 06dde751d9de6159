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

// ioBufSize is the chunk size used by ReadToEnd and WriteAll.
const ioBufSize = 8 * 1024

// ReadToEnd reads the file's contents starting at off in ioBufSize chunks,
// returning the bytes read. It stops early, without an error, if the backend
// returns zero bytes before the file's length is reached. It is a
// convenience wrapper around ReadAt for callers that want the whole file
// rather than a single pread-style call.
func (n *FileNode) ReadToEnd(off uint64) ([]byte, error) {
	size, err := n.ops.Len()
	if err != nil {
		return nil, err
	}
	if off > size {
		off = size
	}
	out := make([]byte, 0, size-off)
	chunk := make([]byte, ioBufSize)
	for off < size {
		want := ioBufSize
		if remaining := size - off; remaining < uint64(want) {
			want = int(remaining)
		}
		read, err := n.ops.ReadAt(chunk[:want], off)
		if err != nil {
			return nil, err
		}
		out = append(out, chunk[:read]...)
		off += uint64(read)
		if read == 0 {
			break
		}
	}
	return out, nil
}

// WriteAll writes the entirety of buf starting at off in ioBufSize chunks,
// returning the number of bytes written. EIO is returned if the backend
// writes short.
func (n *FileNode) WriteAll(buf []byte, off uint64) (int, error) {
	written := 0
	for len(buf) > 0 {
		want := len(buf)
		if want > ioBufSize {
			want = ioBufSize
		}
		w, err := n.ops.WriteAt(buf[:want], off)
		if err != nil {
			return written, err
		}
		written += w
		off += uint64(w)
		buf = buf[want:]
		if w != want {
			return written, EIO
		}
	}
	return written, nil
}
