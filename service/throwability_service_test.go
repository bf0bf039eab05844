package service

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tmpl-lang/tmplc/domain"
	"github.com/tmpl-lang/tmplc/internal/ir"
)

func flagByName(resp *domain.ThrowabilityResponse) map[string]bool {
	out := make(map[string]bool)
	for _, fn := range resp.Functions {
		out[fn.Name] = fn.MayRaise
	}
	return out
}

func TestThrowabilityService_ReportsPerFunctionFlags(t *testing.T) {
	dir := t.TempDir()
	unitPath := filepath.Join(dir, "calc.tmplu")
	writeUnitFile(t, unitPath, testUnit())

	req := domain.DefaultThrowabilityRequest()
	req.Paths = []string{unitPath}

	resp, err := NewThrowabilityService().Analyze(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	flags := flagByName(resp)
	if !flags["boom"] {
		t.Error("boom raises directly")
	}
	if !flags["safe"] {
		t.Error("safe calls boom, the flag propagates regardless of the handler")
	}
	if resp.Summary.TotalFunctions != 2 || resp.Summary.RaisingFunctions != 2 {
		t.Errorf("summary mismatch: %+v", resp.Summary)
	}
	if resp.Functions[0].Unit != "calc" {
		t.Errorf("expected the unit name derived from the file, got %q", resp.Functions[0].Unit)
	}
	if resp.Summary.Cycles != 0 {
		t.Errorf("no recursion in the unit, got %d cycles", resp.Summary.Cycles)
	}
}

func TestThrowabilityService_ReportsCycles(t *testing.T) {
	exc := &ir.RecordType{Name: "Stuck", IsException: true}
	callTo := func(name string) *ir.ReturnStmt {
		return &ir.ReturnStmt{Value: &ir.Call{Fn: &ir.VarRef{
			Name:             name,
			Type:             ir.FunctionType{Returns: ir.IntType{}},
			IsGlobalFunction: true,
		}}}
	}
	mod := &ir.Module{
		Records: []*ir.RecordType{exc},
		Functions: []*ir.Function{
			{
				Name:    "ping",
				Params:  []ir.Param{{Name: "e", Type: exc}},
				Returns: ir.IntType{},
				Body: []ir.Stmt{
					&ir.IfStmt{
						Cond: &ir.BoolLiteral{Value: true},
						Then: []ir.Stmt{&ir.RaiseStmt{Exc: &ir.VarRef{Name: "e", Type: exc}}},
					},
					callTo("pong"),
				},
			},
			{Name: "pong", Returns: ir.IntType{}, Body: []ir.Stmt{callTo("ping")}},
			{Name: "solo", Returns: ir.IntType{}, Body: []ir.Stmt{callTo("pong")}},
		},
	}

	dir := t.TempDir()
	unitPath := filepath.Join(dir, "loop.tmplu")
	writeUnitFile(t, unitPath, mod)

	req := domain.DefaultThrowabilityRequest()
	req.Paths = []string{unitPath}

	resp, err := NewThrowabilityService().Analyze(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(resp.Cycles) != 1 {
		t.Fatalf("expected one cycle, got %#v", resp.Cycles)
	}
	cycle := resp.Cycles[0]
	if len(cycle.Functions) != 2 {
		t.Fatalf("expected the ping/pong cycle, got %v", cycle.Functions)
	}
	if !cycle.MayRaise {
		t.Error("a raise inside the cycle flags the whole cycle")
	}

	flags := flagByName(resp)
	for _, name := range []string{"ping", "pong", "solo"} {
		if !flags[name] {
			t.Errorf("expected %s flagged may-raise", name)
		}
	}
}

func TestThrowabilityService_ExternalSymbolsFromLinkPaths(t *testing.T) {
	dir := t.TempDir()

	// linked units are prior outputs of the analyzer, so they carry
	// their flags already
	lib := testUnit()
	lib.Functions[0].MayRaise = true // boom
	lib.Functions[1].MayRaise = true // safe
	libPath := filepath.Join(dir, "lib.tmplu")
	writeUnitFile(t, libPath, lib)

	main := &ir.Module{
		Functions: []*ir.Function{
			{
				Name:    "run",
				Returns: ir.IntType{},
				Body: []ir.Stmt{
					&ir.ReturnStmt{Value: &ir.Call{Fn: &ir.VarRef{
						Name:             "safe",
						Type:             ir.FunctionType{Returns: ir.IntType{}},
						IsGlobalFunction: true,
					}}},
				},
			},
		},
		Public: []string{"run"},
	}
	mainPath := filepath.Join(dir, "main.tmplu")
	writeUnitFile(t, mainPath, main)

	req := domain.DefaultThrowabilityRequest()
	req.Paths = []string{mainPath}
	req.LinkPaths = []string{libPath}

	resp, err := NewThrowabilityService().Analyze(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	flags := flagByName(resp)
	if !flags["run"] {
		t.Error("run calls the external safe, which may raise")
	}
	if len(resp.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", resp.Warnings)
	}
}

func TestThrowabilityService_WarnsOnShadowedLinkSymbols(t *testing.T) {
	dir := t.TempDir()

	lib := testUnit()
	libPath := filepath.Join(dir, "lib.tmplu")
	writeUnitFile(t, libPath, lib)

	// main defines its own safe, shadowing the linked one
	main := &ir.Module{
		Functions: []*ir.Function{
			{
				Name:    "safe",
				Returns: ir.IntType{},
				Body: []ir.Stmt{
					&ir.ReturnStmt{Value: &ir.IntLiteral{Value: 0}},
				},
			},
		},
		Public: []string{"safe"},
	}
	mainPath := filepath.Join(dir, "main.tmplu")
	writeUnitFile(t, mainPath, main)

	req := domain.DefaultThrowabilityRequest()
	req.Paths = []string{mainPath}
	req.LinkPaths = []string{libPath}

	resp, err := NewThrowabilityService().Analyze(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Warnings) != 1 {
		t.Fatalf("Warnings = %v, want one shadowing warning", resp.Warnings)
	}
	if !strings.Contains(resp.Warnings[0], `"safe"`) || !strings.Contains(resp.Warnings[0], "main") {
		t.Errorf("warning %q should name the unit and the symbol", resp.Warnings[0])
	}
}

func TestThrowabilityService_ConflictingLinkPaths(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a", "b"} {
		mod := &ir.Module{
			Functions: []*ir.Function{{
				Name:    "helper",
				Returns: ir.IntType{},
				Body:    []ir.Stmt{&ir.ReturnStmt{Value: &ir.IntLiteral{Value: 0}}},
			}},
			Public: []string{"helper"},
		}
		writeUnitFile(t, filepath.Join(dir, name+".tmplu"), mod)
	}

	req := domain.DefaultThrowabilityRequest()
	req.Paths = []string{filepath.Join(dir, "a.tmplu")}
	req.LinkPaths = []string{filepath.Join(dir, "a.tmplu"), filepath.Join(dir, "b.tmplu")}

	_, err := NewThrowabilityService().Analyze(context.Background(), req)
	var derr domain.DomainError
	if !errors.As(err, &derr) || derr.Code != domain.ErrCodeLinkConflict {
		t.Fatalf("expected %s, got %v", domain.ErrCodeLinkConflict, err)
	}
}
