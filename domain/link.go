package domain

import (
	"context"
	"io"
)

// LinkRequest represents input for linking compiled units
type LinkRequest struct {
	// Input unit files or directories to link
	Paths []string

	// MainUnit names the unit contributing the program entry point.
	// Defaults to the first collected unit when empty.
	MainUnit string

	// File collection options
	Recursive       bool
	IncludePatterns []string
	ExcludePatterns []string

	// OutputDir receives the linked unit file
	OutputDir string

	// Output configuration for the report
	OutputFormat OutputFormat
	OutputWriter io.Writer
	OutputPath   string
}

// LinkedSymbol is one public symbol of the linked program
type LinkedSymbol struct {
	Name     string `json:"name" yaml:"name"`
	Unit     string `json:"unit" yaml:"unit"`
	MayRaise bool   `json:"may_raise" yaml:"may_raise"`
}

// LinkSummary contains aggregate stats
type LinkSummary struct {
	UnitsLinked    int `json:"units_linked" yaml:"units_linked"`
	TotalFunctions int `json:"total_functions" yaml:"total_functions"`
	TotalRecords   int `json:"total_records" yaml:"total_records"`
	PublicSymbols  int `json:"public_symbols" yaml:"public_symbols"`
}

// LinkResponse is the result of linking
type LinkResponse struct {
	MainUnit   string         `json:"main_unit" yaml:"main_unit"`
	OutputPath string         `json:"output_path,omitempty" yaml:"output_path,omitempty"`
	Symbols    []LinkedSymbol `json:"symbols" yaml:"symbols"`

	Summary     LinkSummary `json:"summary" yaml:"summary"`
	Warnings    []string    `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Errors      []string    `json:"errors,omitempty" yaml:"errors,omitempty"`
	GeneratedAt string      `json:"generated_at" yaml:"generated_at"`
	Version     string      `json:"version" yaml:"version"`
}

// LinkService defines the core business logic for linking
type LinkService interface {
	Link(ctx context.Context, req LinkRequest) (*LinkResponse, error)
}

// LinkOutputFormatter defines the interface for formatting link results
type LinkOutputFormatter interface {
	Write(response *LinkResponse, format OutputFormat, writer io.Writer) error
}

// DefaultLinkRequest returns a request with default values
func DefaultLinkRequest() LinkRequest {
	return LinkRequest{
		Recursive:       true,
		IncludePatterns: []string{"*.tmplu"},
		OutputFormat:    OutputFormatText,
	}
}
