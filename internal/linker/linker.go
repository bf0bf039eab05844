// Package linker merges separately compiled units into one program
// module and derives the cross-unit throwability table consumed by the
// analyzer.
package linker

import (
	"fmt"
	"sort"

	"github.com/tmpl-lang/tmplc/internal/analyzer"
	"github.com/tmpl-lang/tmplc/internal/ir"
)

// Unit is one compiled module plus the name it was compiled under.
type Unit struct {
	Name   string
	Module *ir.Module
}

// ConflictError reports a public symbol defined by more than one unit.
type ConflictError struct {
	Symbol string
	Units  []string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("public symbol %q defined in units %v", e.Symbol, e.Units)
}

// SymbolTable collects the public may-raise flags of all units into a
// lookup table keyed both by qualified and bare name. Duplicate public
// names across units are a hard error rather than first-wins; a silent
// merge would let the analyzer stamp call sites with whichever unit
// happened to sort first.
func SymbolTable(units []*Unit) (analyzer.ExternalMayRaise, error) {
	table := make(analyzer.ExternalMayRaise)
	owner := make(map[string]string)
	for _, u := range units {
		public := make(map[string]bool, len(u.Module.Public))
		for _, name := range u.Module.Public {
			public[name] = true
		}
		for _, fn := range u.Module.Functions {
			if !public[fn.Name] {
				continue
			}
			if prev, ok := owner[fn.Name]; ok {
				return nil, &ConflictError{Symbol: fn.Name, Units: []string{prev, u.Name}}
			}
			owner[fn.Name] = u.Name
			table[fn.Name] = fn.MayRaise
			table[u.Name+"."+fn.Name] = fn.MayRaise
		}
	}
	return table, nil
}

// Link merges the given units into a single module. Function and record
// definitions from every unit are concatenated; the main unit
// contributes the top-level statements and the public surface. Units
// are merged in name order so the output is independent of input
// order.
func Link(mainUnit string, units []*Unit) (*ir.Module, error) {
	var main *Unit
	for _, u := range units {
		if u.Name == mainUnit {
			main = u
			break
		}
	}
	if main == nil {
		return nil, fmt.Errorf("main unit %q not among linked units", mainUnit)
	}
	if _, err := SymbolTable(units); err != nil {
		return nil, err
	}

	ordered := make([]*Unit, len(units))
	copy(ordered, units)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Name < ordered[j].Name })

	out := &ir.Module{
		TopLevel: main.Module.TopLevel,
		Public:   main.Module.Public,
	}
	seenRecord := make(map[string]string)
	seenFunc := make(map[string]string)
	for _, u := range ordered {
		for _, rec := range u.Module.Records {
			if prev, ok := seenRecord[rec.Name]; ok {
				if prev != u.Name {
					return nil, &ConflictError{Symbol: rec.Name, Units: []string{prev, u.Name}}
				}
				continue
			}
			seenRecord[rec.Name] = u.Name
			out.Records = append(out.Records, rec)
		}
		for _, fn := range u.Module.Functions {
			if prev, ok := seenFunc[fn.Name]; ok {
				return nil, &ConflictError{Symbol: fn.Name, Units: []string{prev, u.Name}}
			}
			seenFunc[fn.Name] = u.Name
			out.Functions = append(out.Functions, fn)
		}
	}
	return out, nil
}
