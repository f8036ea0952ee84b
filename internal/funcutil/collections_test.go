// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package funcutil

import (
	"reflect"
	"strings"
	"testing"
)

func TestMap(t *testing.T) {
	got := Map([]string{"a", "bc"}, func(s string) int { return len(s) })
	if !reflect.DeepEqual(got, []int{1, 2}) {
		t.Errorf("expected [1 2], got %v", got)
	}
}

func TestMapInPlace(t *testing.T) {
	a := []string{"a", "b"}
	MapInPlace(a, strings.ToUpper)
	if !reflect.DeepEqual(a, []string{"A", "B"}) {
		t.Errorf("expected [A B], got %v", a)
	}
}

func TestSortedKeys(t *testing.T) {
	got := SortedKeys(map[string]bool{"c": true, "a": false, "b": true})
	if !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Errorf("expected [a b c], got %v", got)
	}
}
