package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/tmpl-lang/tmplc/domain"
	"github.com/tmpl-lang/tmplc/internal/analyzer"
	"github.com/tmpl-lang/tmplc/internal/ir"
	"github.com/tmpl-lang/tmplc/internal/lower"
	"github.com/tmpl-lang/tmplc/internal/version"
)

// LowerServiceImpl implements the LowerService interface
type LowerServiceImpl struct {
	progress domain.ProgressManager
	executor domain.ParallelExecutor
}

// NewLowerService creates a new lowering service
func NewLowerService() *LowerServiceImpl {
	return &LowerServiceImpl{
		progress: NewProgressManager(),
		executor: NewParallelExecutor(),
	}
}

// Lower lowers every input unit and optionally writes the lowered
// units to the output directory.
func (s *LowerServiceImpl) Lower(ctx context.Context, req domain.LowerRequest) (*domain.LowerResponse, error) {
	if _, err := ir.NewNameSequence(req.NamePrefix); err != nil {
		return nil, domain.NewInvalidInputError(fmt.Sprintf("invalid name prefix %q", req.NamePrefix), err)
	}

	if req.OutputDir != "" {
		if err := os.MkdirAll(req.OutputDir, 0o755); err != nil {
			return nil, domain.NewOutputError(fmt.Sprintf("failed to create output directory %s", req.OutputDir), err)
		}
	}

	s.progress.Initialize(len(req.Paths))
	s.progress.Start()
	defer s.progress.Close()

	results := make([]domain.LoweredUnit, len(req.Paths))
	errs := make([]string, len(req.Paths))

	var mu sync.Mutex
	processed := 0

	tasks := make([]domain.ExecutableTask, 0, len(req.Paths))
	for i, path := range req.Paths {
		i, path := i, path
		tasks = append(tasks, NewSimpleTask(path, true, func(ctx context.Context) (interface{}, error) {
			unit, err := s.lowerFile(path, req)
			mu.Lock()
			defer mu.Unlock()
			processed++
			s.progress.Update(processed, len(req.Paths))
			if err != nil {
				errs[i] = err.Error()
				return nil, nil
			}
			results[i] = *unit
			return nil, nil
		}))
	}

	if err := s.executor.Execute(ctx, tasks); err != nil {
		s.progress.Complete(false)
		return nil, domain.NewLoweringError("lowering failed", err)
	}
	s.progress.Complete(true)

	resp := &domain.LowerResponse{
		GeneratedAt: time.Now().Format(time.RFC3339),
		Version:     version.Short(),
	}
	for i := range results {
		if errs[i] != "" {
			resp.Errors = append(resp.Errors, errs[i])
			continue
		}
		resp.Units = append(resp.Units, results[i])
		resp.Summary.FilesProcessed++
		resp.Summary.SourceFunctions += results[i].SourceFunctions
		resp.Summary.Continuations += results[i].Continuations
	}
	return resp, nil
}

// lowerFile lowers one unit file
func (s *LowerServiceImpl) lowerFile(path string, req domain.LowerRequest) (*domain.LoweredUnit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.NewFileNotFoundError(path, err)
	}
	mod, err := ir.DecodeModule(data)
	if err != nil {
		return nil, domain.NewDecodeError(path, err)
	}

	if used := identifierWithPrefix(mod, req.NamePrefix); used != "" {
		return nil, domain.NewLoweringError(
			fmt.Sprintf("%s: identifier %q collides with the fresh name prefix %q", path, used, req.NamePrefix), nil)
	}

	// Call flags must be consistent before lowering decides which call
	// sites get an error channel.
	mod = analyzer.RecomputeThrowability(mod, nil)

	names := ir.MustNameSequence(req.NamePrefix)
	lowered := lower.LowerModule(mod, names)

	raising := 0
	for _, fn := range mod.Functions {
		if fn.MayRaise {
			raising++
		}
	}

	unit := &domain.LoweredUnit{
		Path:            path,
		SourceFunctions: len(mod.Functions),
		Continuations:   len(lowered.Functions) - len(mod.Functions),
		RaisingCount:    raising,
	}

	if req.OutputDir != "" {
		out, err := ir.EncodeModule(lowered)
		if err != nil {
			return nil, domain.NewOutputError(fmt.Sprintf("failed to encode lowered unit for %s", path), err)
		}
		outPath := filepath.Join(req.OutputDir, filepath.Base(path))
		if err := os.WriteFile(outPath, out, 0o644); err != nil {
			return nil, domain.NewOutputError(fmt.Sprintf("failed to write lowered unit %s", outPath), err)
		}
		unit.OutputPath = outPath
	}

	return unit, nil
}

// identifierWithPrefix returns the first identifier in the module that
// starts with the fresh name prefix, or empty if none does. Lowering
// requires the prefix to be reserved for synthesized names.
func identifierWithPrefix(mod *ir.Module, prefix string) string {
	found := ""
	check := func(name string) {
		if found == "" && strings.HasPrefix(name, prefix) {
			found = name
		}
	}
	for _, fn := range mod.Functions {
		check(fn.Name)
		for _, p := range fn.Params {
			check(p.Name)
		}
		ir.WalkStmts(fn.Body, nil, func(e ir.Expr) bool {
			if v, ok := e.(*ir.VarRef); ok {
				check(v.Name)
			}
			return true
		})
	}
	ir.WalkStmts(mod.TopLevel, nil, func(e ir.Expr) bool {
		if v, ok := e.(*ir.VarRef); ok {
			check(v.Name)
		}
		return true
	})
	return found
}
