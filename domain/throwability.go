package domain

import (
	"context"
	"io"
)

// ThrowabilityRequest represents input for throwability analysis
type ThrowabilityRequest struct {
	// Input unit files or directories to analyze
	Paths []string

	// File collection options
	Recursive       bool
	IncludePatterns []string
	ExcludePatterns []string

	// Extra units whose public symbols resolve external references
	LinkPaths []string

	// Output configuration
	OutputFormat OutputFormat
	OutputWriter io.Writer
	OutputPath   string
}

// FunctionThrowability is the computed flag for one function
type FunctionThrowability struct {
	Name     string `json:"name" yaml:"name"`
	Unit     string `json:"unit" yaml:"unit"`
	MayRaise bool   `json:"may_raise" yaml:"may_raise"`
}

// CallCycle represents a strongly connected component with more than
// one member or a self call
type CallCycle struct {
	Functions []string `json:"functions" yaml:"functions"`
	MayRaise  bool     `json:"may_raise" yaml:"may_raise"`
}

// ThrowabilitySummary contains aggregate stats
type ThrowabilitySummary struct {
	FilesAnalyzed    int `json:"files_analyzed" yaml:"files_analyzed"`
	TotalFunctions   int `json:"total_functions" yaml:"total_functions"`
	RaisingFunctions int `json:"raising_functions" yaml:"raising_functions"`
	Cycles           int `json:"cycles" yaml:"cycles"`
}

// ThrowabilityResponse is the result of throwability analysis
type ThrowabilityResponse struct {
	Functions []FunctionThrowability `json:"functions" yaml:"functions"`
	Cycles    []CallCycle            `json:"cycles,omitempty" yaml:"cycles,omitempty"`

	Summary     ThrowabilitySummary `json:"summary" yaml:"summary"`
	Warnings    []string            `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Errors      []string            `json:"errors,omitempty" yaml:"errors,omitempty"`
	GeneratedAt string              `json:"generated_at" yaml:"generated_at"`
	Version     string              `json:"version" yaml:"version"`
}

// ThrowabilityService defines the core business logic for throwability analysis
type ThrowabilityService interface {
	Analyze(ctx context.Context, req ThrowabilityRequest) (*ThrowabilityResponse, error)
}

// ThrowabilityOutputFormatter defines the interface for formatting analysis results
type ThrowabilityOutputFormatter interface {
	Write(response *ThrowabilityResponse, format OutputFormat, writer io.Writer) error
}

// DefaultThrowabilityRequest returns a request with default values
func DefaultThrowabilityRequest() ThrowabilityRequest {
	return ThrowabilityRequest{
		Recursive:       true,
		IncludePatterns: []string{"*.tmplu"},
		OutputFormat:    OutputFormatText,
	}
}
