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

func TestComponents(t *testing.T) {
	for _, tc := range []struct {
		path string
		want []Component
	}{
		{"", nil},
		{"/", []Component{{Kind: ComponentRootDir}}},
		{"a", []Component{{Kind: ComponentNormal, Name: "a"}}},
		{"/a/b", []Component{
			{Kind: ComponentRootDir},
			{Kind: ComponentNormal, Name: "a"},
			{Kind: ComponentNormal, Name: "b"},
		}},
		{"a//b", []Component{
			{Kind: ComponentNormal, Name: "a"},
			{Kind: ComponentNormal, Name: "b"},
		}},
		{"./a/../b", []Component{
			{Kind: ComponentCurDir},
			{Kind: ComponentNormal, Name: "a"},
			{Kind: ComponentParentDir},
			{Kind: ComponentNormal, Name: "b"},
		}},
	} {
		got := Components(tc.path)
		assert.DeepEqual(t, got, tc.want)
	}
}

func TestFileName(t *testing.T) {
	for _, tc := range []struct {
		path     string
		wantName string
		wantOK   bool
	}{
		{"", "", false},
		{"/", "", false},
		{"a", "a", true},
		{"/a/b", "b", true},
		{"/a/.", "", false},
		{"/a/..", "", false},
	} {
		name, ok := FileName(tc.path)
		assert.Equal(t, ok, tc.wantOK)
		assert.Equal(t, name, tc.wantName)
	}
}

func TestVerifyEntryName(t *testing.T) {
	for _, name := range []string{"", ".", "..", "a/b"} {
		assert.ErrorIs(t, VerifyEntryName(name), EINVAL)
	}
	for _, name := range []string{"a", "b.txt", "...", ".hidden"} {
		assert.NilError(t, VerifyEntryName(name))
	}
}
