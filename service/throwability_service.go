package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tmpl-lang/tmplc/domain"
	"github.com/tmpl-lang/tmplc/internal/analyzer"
	"github.com/tmpl-lang/tmplc/internal/ir"
	"github.com/tmpl-lang/tmplc/internal/linker"
	"github.com/tmpl-lang/tmplc/internal/version"
)

// ThrowabilityServiceImpl implements the ThrowabilityService interface
type ThrowabilityServiceImpl struct{}

// NewThrowabilityService creates a new throwability analysis service
func NewThrowabilityService() *ThrowabilityServiceImpl {
	return &ThrowabilityServiceImpl{}
}

// Analyze recomputes throwability for every input unit and reports the
// per-function flags and call cycles.
func (s *ThrowabilityServiceImpl) Analyze(ctx context.Context, req domain.ThrowabilityRequest) (*domain.ThrowabilityResponse, error) {
	external, err := s.loadExternalSymbols(req.LinkPaths)
	if err != nil {
		return nil, err
	}

	resp := &domain.ThrowabilityResponse{
		GeneratedAt: time.Now().Format(time.RFC3339),
		Version:     version.Short(),
	}

	for _, path := range req.Paths {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, domain.NewFileNotFoundError(path, err)
		}
		mod, err := ir.DecodeModule(data)
		if err != nil {
			return nil, domain.NewDecodeError(path, err)
		}

		mod = analyzer.RecomputeThrowability(mod, external)
		unitName := unitNameFromPath(path)

		for _, fn := range mod.Functions {
			if _, linked := external[fn.Name]; linked {
				resp.Warnings = append(resp.Warnings,
					fmt.Sprintf("%s: local definition of %q shadows a symbol from the linked units", unitName, fn.Name))
			}
			resp.Functions = append(resp.Functions, domain.FunctionThrowability{
				Name:     fn.Name,
				Unit:     unitName,
				MayRaise: fn.MayRaise,
			})
			resp.Summary.TotalFunctions++
			if fn.MayRaise {
				resp.Summary.RaisingFunctions++
			}
		}

		resp.Cycles = append(resp.Cycles, s.cycles(mod)...)
		resp.Summary.FilesAnalyzed++
	}
	resp.Summary.Cycles = len(resp.Cycles)

	return resp, nil
}

// loadExternalSymbols builds the cross-unit may-raise table from the
// link paths.
func (s *ThrowabilityServiceImpl) loadExternalSymbols(paths []string) (analyzer.ExternalMayRaise, error) {
	if len(paths) == 0 {
		return nil, nil
	}

	var units []*linker.Unit
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, domain.NewFileNotFoundError(path, err)
		}
		mod, err := ir.DecodeModule(data)
		if err != nil {
			return nil, domain.NewDecodeError(path, err)
		}
		units = append(units, &linker.Unit{Name: unitNameFromPath(path), Module: mod})
	}

	table, err := linker.SymbolTable(units)
	if err != nil {
		return nil, domain.NewLinkConflictError("conflicting public symbols in linked units", err)
	}
	return table, nil
}

// cycles reports the call graph cycles of one module.
func (s *ThrowabilityServiceImpl) cycles(mod *ir.Module) []domain.CallCycle {
	graph := analyzer.NewCallGraph()
	byName := make(map[string]*ir.Function)
	for _, fn := range mod.Functions {
		graph.AddNode(fn.Name)
		byName[fn.Name] = fn
	}
	for _, fn := range mod.Functions {
		ir.WalkStmts(fn.Body, nil, func(e ir.Expr) bool {
			if v, ok := e.(*ir.VarRef); ok && v.IsGlobalFunction {
				if _, local := byName[v.Name]; local {
					graph.AddEdge(fn.Name, v.Name)
				}
			}
			return true
		})
	}

	var out []domain.CallCycle
	for _, comp := range graph.Cycles() {
		mayRaise := false
		for _, name := range comp.Members {
			if fn := byName[name]; fn != nil && fn.MayRaise {
				mayRaise = true
			}
		}
		out = append(out, domain.CallCycle{Functions: comp.Members, MayRaise: mayRaise})
	}
	return out
}

// unitNameFromPath derives the unit name from a file path
func unitNameFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
