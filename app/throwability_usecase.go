package app

import (
	"context"
	"fmt"
	"io"

	"github.com/tmpl-lang/tmplc/domain"
	svc "github.com/tmpl-lang/tmplc/service"
)

// ThrowabilityUseCase orchestrates the throwability analysis workflow
type ThrowabilityUseCase struct {
	service    domain.ThrowabilityService
	fileReader domain.FileReader
	formatter  domain.ThrowabilityOutputFormatter
	output     domain.ReportWriter
}

// NewThrowabilityUseCase creates a new throwability analysis use case
func NewThrowabilityUseCase(service domain.ThrowabilityService, fileReader domain.FileReader, formatter domain.ThrowabilityOutputFormatter) *ThrowabilityUseCase {
	return &ThrowabilityUseCase{
		service:    service,
		fileReader: fileReader,
		formatter:  formatter,
		output:     svc.NewFileOutputWriter(nil),
	}
}

// Execute performs throwability analysis and writes formatted output
func (uc *ThrowabilityUseCase) Execute(ctx context.Context, req domain.ThrowabilityRequest) error {
	if err := uc.validateRequest(req); err != nil {
		return domain.NewInvalidInputError("invalid request", err)
	}

	files, err := uc.fileReader.CollectUnitFiles(req.Paths, req.Recursive, req.IncludePatterns, req.ExcludePatterns)
	if err != nil {
		return domain.NewFileNotFoundError("failed to collect files", err)
	}
	if len(files) == 0 {
		return domain.NewInvalidInputError("no unit files found in the specified paths", nil)
	}
	req.Paths = files

	response, err := uc.service.Analyze(ctx, req)
	if err != nil {
		return domain.NewAnalysisError("throwability analysis failed", err)
	}

	var out io.Writer
	if req.OutputPath == "" {
		out = req.OutputWriter
	}
	if err := uc.output.Write(out, req.OutputPath, req.OutputFormat, func(w io.Writer) error {
		return uc.formatter.Write(response, req.OutputFormat, w)
	}); err != nil {
		return domain.NewOutputError("failed to write output", err)
	}
	return nil
}

func (uc *ThrowabilityUseCase) validateRequest(req domain.ThrowabilityRequest) error {
	if len(req.Paths) == 0 {
		return fmt.Errorf("no input paths specified")
	}
	if req.OutputWriter == nil && req.OutputPath == "" {
		return fmt.Errorf("output writer or output path is required")
	}
	return nil
}

// ThrowabilityUseCaseBuilder provides a fluent builder for ThrowabilityUseCase
type ThrowabilityUseCaseBuilder struct {
	service    domain.ThrowabilityService
	fileReader domain.FileReader
	formatter  domain.ThrowabilityOutputFormatter
	output     domain.ReportWriter
}

func NewThrowabilityUseCaseBuilder() *ThrowabilityUseCaseBuilder {
	return &ThrowabilityUseCaseBuilder{}
}

func (b *ThrowabilityUseCaseBuilder) WithService(s domain.ThrowabilityService) *ThrowabilityUseCaseBuilder {
	b.service = s
	return b
}
func (b *ThrowabilityUseCaseBuilder) WithFileReader(fr domain.FileReader) *ThrowabilityUseCaseBuilder {
	b.fileReader = fr
	return b
}
func (b *ThrowabilityUseCaseBuilder) WithFormatter(f domain.ThrowabilityOutputFormatter) *ThrowabilityUseCaseBuilder {
	b.formatter = f
	return b
}
func (b *ThrowabilityUseCaseBuilder) WithOutputWriter(w domain.ReportWriter) *ThrowabilityUseCaseBuilder {
	b.output = w
	return b
}

func (b *ThrowabilityUseCaseBuilder) Build() (*ThrowabilityUseCase, error) {
	if b.service == nil || b.fileReader == nil || b.formatter == nil {
		return nil, fmt.Errorf("missing required dependencies")
	}
	uc := &ThrowabilityUseCase{
		service:    b.service,
		fileReader: b.fileReader,
		formatter:  b.formatter,
		output:     b.output,
	}
	if uc.output == nil {
		uc.output = svc.NewFileOutputWriter(nil)
	}
	return uc, nil
}
