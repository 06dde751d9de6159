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
	"testing"

	"gotest.tools/v3/assert"
)

func TestNodeTypeFromDT(t *testing.T) {
	for _, tc := range []struct {
		v    uint8
		want NodeType
	}{
		{01, NodeTypeFifo},
		{02, NodeTypeCharacterDevice},
		{04, NodeTypeDirectory},
		{06, NodeTypeBlockDevice},
		{010, NodeTypeRegularFile},
		{012, NodeTypeSymlink},
		{014, NodeTypeSocket},
		{0, NodeTypeUnknown},
		{0o77, NodeTypeUnknown},
	} {
		assert.Equal(t, NodeTypeFromDT(tc.v), tc.want)
	}
}

func TestNodeTypeString(t *testing.T) {
	assert.Equal(t, NodeTypeDirectory.String(), "dir")
	assert.Equal(t, NodeTypeRegularFile.String(), "file")
	assert.Equal(t, NodeTypeUnknown.String(), "unknown")
}
