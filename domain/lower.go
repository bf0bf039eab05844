package domain

import (
	"context"
	"io"
)

// LowerRequest represents input for the lowering stage
type LowerRequest struct {
	// Input unit files or directories to lower
	Paths []string

	// File collection options
	Recursive       bool
	IncludePatterns []string
	ExcludePatterns []string

	// NamePrefix seeds the fresh identifier generator. All synthesized
	// continuation names start with this prefix; source identifiers must
	// not.
	NamePrefix string

	// OutputDir receives the lowered unit files, one per input.
	// Empty means lowered units are not written, only the report.
	OutputDir string

	// Output configuration for the report
	OutputFormat OutputFormat
	OutputWriter io.Writer
	OutputPath   string
}

// LoweredUnit describes the lowering outcome for one input file
type LoweredUnit struct {
	Path            string `json:"path" yaml:"path"`
	OutputPath      string `json:"output_path,omitempty" yaml:"output_path,omitempty"`
	SourceFunctions int    `json:"source_functions" yaml:"source_functions"`
	Continuations   int    `json:"continuations" yaml:"continuations"`
	RaisingCount    int    `json:"raising_functions" yaml:"raising_functions"`
}

// LowerSummary contains aggregate stats
type LowerSummary struct {
	FilesProcessed  int `json:"files_processed" yaml:"files_processed"`
	SourceFunctions int `json:"source_functions" yaml:"source_functions"`
	Continuations   int `json:"continuations" yaml:"continuations"`
}

// LowerResponse is the result of the lowering stage
type LowerResponse struct {
	Units []LoweredUnit `json:"units" yaml:"units"`

	Summary     LowerSummary `json:"summary" yaml:"summary"`
	Warnings    []string     `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Errors      []string     `json:"errors,omitempty" yaml:"errors,omitempty"`
	GeneratedAt string       `json:"generated_at" yaml:"generated_at"`
	Version     string       `json:"version" yaml:"version"`
}

// LowerService defines the core business logic for the lowering stage
type LowerService interface {
	Lower(ctx context.Context, req LowerRequest) (*LowerResponse, error)
}

// LowerOutputFormatter defines the interface for formatting lowering results
type LowerOutputFormatter interface {
	Write(response *LowerResponse, format OutputFormat, writer io.Writer) error
}

// DefaultLowerRequest returns a request with default values
func DefaultLowerRequest() LowerRequest {
	return LowerRequest{
		Recursive:       true,
		IncludePatterns: []string{"*.tmplu"},
		NamePrefix:      "_t",
		OutputFormat:    OutputFormatText,
	}
}
