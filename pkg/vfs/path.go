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

import "strings"

// DOT and DOTDOT are the reserved single- and double-dot path components.
// They are never inserted into a directory cache.
const (
	DOT    = "."
	DOTDOT = ".."
)

// ComponentKind classifies a single path component.
type ComponentKind int

// Component kinds, mirroring the tags a path-parsing library is expected to
// expose per spec.md §1 (path string parsing is an external collaborator;
// this file is the minimal stand-in used by the resolver).
const (
	ComponentCurDir ComponentKind = iota
	ComponentParentDir
	ComponentRootDir
	ComponentNormal
)

// Component is one element of a parsed path.
type Component struct {
	Kind ComponentKind
	Name string // valid only when Kind == ComponentNormal
}

// Components splits p into its path components in order. A leading "/"
// yields a ComponentRootDir. Empty components produced by repeated
// separators are skipped, matching POSIX path-splitting semantics.
func Components(p string) []Component {
	var out []Component
	if strings.HasPrefix(p, "/") {
		out = append(out, Component{Kind: ComponentRootDir})
	}
	for _, part := range strings.Split(p, "/") {
		switch part {
		case "":
			continue
		case DOT:
			out = append(out, Component{Kind: ComponentCurDir})
		case DOTDOT:
			out = append(out, Component{Kind: ComponentParentDir})
		default:
			out = append(out, Component{Kind: ComponentNormal, Name: part})
		}
	}
	return out
}

// FileName returns the final Normal component of p, if any. It returns
// ("", false) for paths that are empty, "/", or end in "." or "..", just as
// a real path library's file_name() would decline to name a tail component
// that isn't a plain name.
func FileName(p string) (string, bool) {
	comps := Components(p)
	if len(comps) == 0 {
		return "", false
	}
	last := comps[len(comps)-1]
	if last.Kind != ComponentNormal {
		return "", false
	}
	return last.Name, true
}

// VerifyEntryName rejects "", ".", "..", and any name containing "/". It
// must be applied before every cache-inserting mutation (create, link,
// rename).
func VerifyEntryName(name string) error {
	if name == "" || name == DOT || name == DOTDOT || strings.Contains(name, "/") {
		return EINVAL
	}
	return nil
}
