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
	"errors"
	"fmt"
	"testing"

	"gotest.tools/v3/assert"
)

func TestErrorIs(t *testing.T) {
	assert.Assert(t, errors.Is(ENOENT, ENOENT))
	assert.Assert(t, !errors.Is(ENOENT, EEXIST))

	wrapped := fmt.Errorf("looking up %q: %w", "foo", ENOENT)
	assert.ErrorIs(t, wrapped, ENOENT)
}

func TestErrorMessage(t *testing.T) {
	assert.Assert(t, ENOENT.Error() != "")
}
