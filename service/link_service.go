package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/tmpl-lang/tmplc/domain"
	"github.com/tmpl-lang/tmplc/internal/ir"
	"github.com/tmpl-lang/tmplc/internal/linker"
	"github.com/tmpl-lang/tmplc/internal/version"
)

// LinkServiceImpl implements the LinkService interface
type LinkServiceImpl struct{}

// NewLinkService creates a new link service
func NewLinkService() *LinkServiceImpl {
	return &LinkServiceImpl{}
}

// Link merges the input units into one program unit.
func (s *LinkServiceImpl) Link(ctx context.Context, req domain.LinkRequest) (*domain.LinkResponse, error) {
	if len(req.Paths) == 0 {
		return nil, domain.NewInvalidInputError("no unit files to link", nil)
	}

	var units []*linker.Unit
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
		units = append(units, &linker.Unit{Name: unitNameFromPath(path), Module: mod})
	}

	mainUnit := req.MainUnit
	if mainUnit == "" {
		mainUnit = units[0].Name
	}

	linked, err := linker.Link(mainUnit, units)
	if err != nil {
		return nil, domain.NewLinkConflictError("linking failed", err)
	}

	resp := &domain.LinkResponse{
		MainUnit:    mainUnit,
		GeneratedAt: time.Now().Format(time.RFC3339),
		Version:     version.Short(),
	}
	resp.Summary.UnitsLinked = len(units)
	resp.Summary.TotalFunctions = len(linked.Functions)
	resp.Summary.TotalRecords = len(linked.Records)

	owner := make(map[string]string)
	mayRaise := make(map[string]bool)
	for _, u := range units {
		public := make(map[string]bool, len(u.Module.Public))
		for _, name := range u.Module.Public {
			public[name] = true
		}
		for _, fn := range u.Module.Functions {
			if public[fn.Name] {
				owner[fn.Name] = u.Name
				mayRaise[fn.Name] = fn.MayRaise
			}
		}
	}
	names := make([]string, 0, len(owner))
	for name := range owner {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		resp.Symbols = append(resp.Symbols, domain.LinkedSymbol{
			Name:     name,
			Unit:     owner[name],
			MayRaise: mayRaise[name],
		})
	}
	resp.Summary.PublicSymbols = len(resp.Symbols)

	if req.OutputDir != "" {
		if err := os.MkdirAll(req.OutputDir, 0o755); err != nil {
			return nil, domain.NewOutputError(fmt.Sprintf("failed to create output directory %s", req.OutputDir), err)
		}
		data, err := ir.EncodeModule(linked)
		if err != nil {
			return nil, domain.NewOutputError("failed to encode linked unit", err)
		}
		outPath := filepath.Join(req.OutputDir, mainUnit+".linked.tmplu")
		if err := os.WriteFile(outPath, data, 0o644); err != nil {
			return nil, domain.NewOutputError(fmt.Sprintf("failed to write linked unit %s", outPath), err)
		}
		resp.OutputPath = outPath
	}

	return resp, nil
}
