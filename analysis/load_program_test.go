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

package analysis

import (
	"path/filepath"
	"testing"

	"golang.org/x/tools/go/packages"
	"golang.org/x/tools/go/ssa"
)

func TestLoadProgram(t *testing.T) {
	cfg := &packages.Config{Mode: PkgLoadMode, Dir: filepath.Join("testdata", "load")}
	loaded, err := LoadProgram(cfg, "", ssa.BuilderMode(0), []string{"./..."})
	if err != nil {
		t.Fatalf("error loading packages: %s", err)
	}
	if len(loaded.Packages) != 2 {
		t.Errorf("expected 2 packages, got %d", len(loaded.Packages))
	}
	mains := loaded.MainPackages()
	if len(mains) != 1 || mains[0].Pkg.Path() != "example.com/load" {
		t.Fatalf("expected example.com/load as the only main package, got %v", mains)
	}
	if mains[0].Func("main") == nil {
		t.Errorf("expected the main function to be built")
	}
	for _, pkg := range loaded.Packages {
		t.Logf("%s loaded\n", pkg.String())
	}
}

func TestLoadMissingPackage(t *testing.T) {
	cfg := &packages.Config{Mode: PkgLoadMode, Dir: filepath.Join("testdata", "load")}
	if _, err := LoadProgram(cfg, "", ssa.BuilderMode(0), []string{"./nothere"}); err == nil {
		t.Errorf("expected an error loading a package that does not exist")
	}
}
