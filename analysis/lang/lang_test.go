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

package lang_test

import (
	"path/filepath"
	"testing"

	"github.com/awslabs/ar-go-alias/analysis/lang"
	"github.com/awslabs/ar-go-alias/internal/analysistest"
	"golang.org/x/tools/go/ssa"
)

func loadMain(t *testing.T) (*ssa.Package, *ssa.Function) {
	_, pkg, _ := analysistest.LoadTest(t, filepath.Join("testdata", "statements"))
	return pkg, analysistest.Function(t, pkg, "main")
}

func TestSuccsAndPreds(t *testing.T) {
	_, main := loadMain(t)
	call := lang.NewStatement(analysistest.FindInstr(t, main, analysistest.IsCallTo("id")))
	if call.Method != main || !call.IsCall() {
		t.Fatalf("expected a call statement in main, got %s", call)
	}
	ret, ok := lang.ReturnSite(call)
	if !ok {
		t.Fatalf("expected a return site for %s", call)
	}
	preds := lang.Preds(ret)
	if len(preds) != 1 || preds[0] != call {
		t.Errorf("expected %s to be the only predecessor of %s, got %v", call, ret, preds)
	}

	// the if statement ends the entry block
	last := lang.Statement{Instr: lang.LastInstr(main.Blocks[0]), Method: main}
	if _, isIf := last.Instr.(*ssa.If); !isIf {
		t.Fatalf("expected the entry block to end with an if, got %s", last)
	}
	if n := len(lang.Succs(last)); n != 2 {
		t.Errorf("expected 2 successors of %s, got %d", last, n)
	}
}

func TestEntryAndExit(t *testing.T) {
	pkg, main := loadMain(t)
	entry := lang.EntryStatement(main)
	if !entry.IsValid() || entry.Instr != main.Blocks[0].Instrs[0] {
		t.Errorf("unexpected entry statement %s", entry)
	}
	if lang.EntryStatement(nil).IsValid() {
		t.Errorf("a nil function has no entry statement")
	}
	id := analysistest.Function(t, pkg, "id")
	exit := lang.Statement{Instr: lang.LastInstr(id.Blocks[0]), Method: id}
	if !lang.IsExit(exit) {
		t.Errorf("expected %s to be an exit", exit)
	}
	if !exit.UsesValue(id.Params[0]) {
		t.Errorf("expected %s to use the parameter of id", exit)
	}
}

func TestFieldsAndGlobals(t *testing.T) {
	pkg, main := loadMain(t)
	store := analysistest.FindInstr(t, main, analysistest.IsStoreToField("f")).(*ssa.Store)
	field := lang.FieldAddrVar(store.Addr.(*ssa.FieldAddr))
	if field == nil || field.Name() != "f" {
		t.Errorf("expected field f, got %v", field)
	}
	g := pkg.Var("global")
	if !lang.IsGlobal(g) || lang.GlobalVar(g) == nil {
		t.Errorf("expected global to be a global variable")
	}
}

func TestFunctionIdentifier(t *testing.T) {
	pkg, _ := loadMain(t)
	cid := lang.FunctionIdentifier(analysistest.Function(t, pkg, "id"))
	if cid.Package != "main" || cid.Method != "id" || cid.Receiver != "" {
		t.Errorf("unexpected identifier %+v", cid)
	}
	if lang.IsExternal(analysistest.Function(t, pkg, "id")) {
		t.Errorf("id has a body")
	}
}
