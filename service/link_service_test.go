package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/tmpl-lang/tmplc/domain"
	"github.com/tmpl-lang/tmplc/internal/ir"
)

func simpleUnit(fnName string, public bool, mayRaise bool) *ir.Module {
	mod := &ir.Module{
		Functions: []*ir.Function{{
			Name:     fnName,
			Returns:  ir.IntType{},
			MayRaise: mayRaise,
			Body:     []ir.Stmt{&ir.ReturnStmt{Value: &ir.IntLiteral{Value: 0}}},
		}},
	}
	if public {
		mod.Public = []string{fnName}
	}
	return mod
}

func TestLinkService_MergesUnits(t *testing.T) {
	dir := t.TempDir()
	mainPath := filepath.Join(dir, "main.tmplu")
	writeUnitFile(t, mainPath, simpleUnit("entry", true, false))
	libPath := filepath.Join(dir, "lib.tmplu")
	writeUnitFile(t, libPath, simpleUnit("helper", true, true))

	req := domain.DefaultLinkRequest()
	req.Paths = []string{mainPath, libPath}
	req.MainUnit = "main"
	req.OutputDir = filepath.Join(dir, "out")

	resp, err := NewLinkService().Link(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resp.MainUnit != "main" {
		t.Errorf("expected main unit recorded, got %q", resp.MainUnit)
	}
	if resp.Summary.UnitsLinked != 2 || resp.Summary.TotalFunctions != 2 {
		t.Errorf("summary mismatch: %+v", resp.Summary)
	}
	if len(resp.Symbols) != 2 {
		t.Fatalf("expected both public symbols, got %v", resp.Symbols)
	}
	// sorted by name
	if resp.Symbols[0].Name != "entry" || resp.Symbols[1].Name != "helper" {
		t.Errorf("symbols out of order: %v", resp.Symbols)
	}
	if resp.Symbols[1].Unit != "lib" || !resp.Symbols[1].MayRaise {
		t.Errorf("helper should be owned by lib and flagged, got %+v", resp.Symbols[1])
	}

	wantOut := filepath.Join(req.OutputDir, "main.linked.tmplu")
	if resp.OutputPath != wantOut {
		t.Fatalf("expected linked unit at %s, got %s", wantOut, resp.OutputPath)
	}
	data, err := os.ReadFile(wantOut)
	if err != nil {
		t.Fatalf("read linked unit: %v", err)
	}
	linked, err := ir.DecodeModule(data)
	if err != nil {
		t.Fatalf("decode linked unit: %v", err)
	}
	if len(linked.Functions) != 2 {
		t.Errorf("linked unit should hold both functions, got %d", len(linked.Functions))
	}
	if len(linked.Public) != 1 || linked.Public[0] != "entry" {
		t.Errorf("the main unit owns the public surface, got %v", linked.Public)
	}
}

func TestLinkService_DefaultsToFirstUnit(t *testing.T) {
	dir := t.TempDir()
	aPath := filepath.Join(dir, "alpha.tmplu")
	writeUnitFile(t, aPath, simpleUnit("a_fn", true, false))
	bPath := filepath.Join(dir, "beta.tmplu")
	writeUnitFile(t, bPath, simpleUnit("b_fn", true, false))

	req := domain.DefaultLinkRequest()
	req.Paths = []string{aPath, bPath}

	resp, err := NewLinkService().Link(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.MainUnit != "alpha" {
		t.Fatalf("expected the first unit as main, got %q", resp.MainUnit)
	}
}

func TestLinkService_ConflictSurfacesAsLinkError(t *testing.T) {
	dir := t.TempDir()
	aPath := filepath.Join(dir, "a.tmplu")
	writeUnitFile(t, aPath, simpleUnit("dup", true, false))
	bPath := filepath.Join(dir, "b.tmplu")
	writeUnitFile(t, bPath, simpleUnit("dup", true, false))

	req := domain.DefaultLinkRequest()
	req.Paths = []string{aPath, bPath}

	_, err := NewLinkService().Link(context.Background(), req)
	var derr domain.DomainError
	if !errors.As(err, &derr) || derr.Code != domain.ErrCodeLinkConflict {
		t.Fatalf("expected %s, got %v", domain.ErrCodeLinkConflict, err)
	}
}

func TestLinkService_NoInputs(t *testing.T) {
	req := domain.DefaultLinkRequest()
	if _, err := NewLinkService().Link(context.Background(), req); err == nil {
		t.Fatal("expected an error with no units to link")
	}
}
