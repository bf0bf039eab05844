package app

import (
	"context"
	"fmt"
	"io"

	"github.com/tmpl-lang/tmplc/domain"
	svc "github.com/tmpl-lang/tmplc/service"
)

// LowerUseCase orchestrates the lowering workflow
type LowerUseCase struct {
	service    domain.LowerService
	fileReader domain.FileReader
	formatter  domain.LowerOutputFormatter
	output     domain.ReportWriter
}

// NewLowerUseCase creates a new lowering use case
func NewLowerUseCase(service domain.LowerService, fileReader domain.FileReader, formatter domain.LowerOutputFormatter) *LowerUseCase {
	return &LowerUseCase{
		service:    service,
		fileReader: fileReader,
		formatter:  formatter,
		output:     svc.NewFileOutputWriter(nil),
	}
}

// Execute lowers the requested units and writes formatted output
func (uc *LowerUseCase) Execute(ctx context.Context, req domain.LowerRequest) error {
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

	response, err := uc.service.Lower(ctx, req)
	if err != nil {
		return domain.NewLoweringError("lowering failed", err)
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

func (uc *LowerUseCase) validateRequest(req domain.LowerRequest) error {
	if len(req.Paths) == 0 {
		return fmt.Errorf("no input paths specified")
	}
	if req.OutputWriter == nil && req.OutputPath == "" {
		return fmt.Errorf("output writer or output path is required")
	}
	if req.NamePrefix == "" {
		return fmt.Errorf("name prefix is required")
	}
	return nil
}

// LowerUseCaseBuilder provides a fluent builder for LowerUseCase
type LowerUseCaseBuilder struct {
	service    domain.LowerService
	fileReader domain.FileReader
	formatter  domain.LowerOutputFormatter
	output     domain.ReportWriter
}

func NewLowerUseCaseBuilder() *LowerUseCaseBuilder { return &LowerUseCaseBuilder{} }

func (b *LowerUseCaseBuilder) WithService(s domain.LowerService) *LowerUseCaseBuilder {
	b.service = s
	return b
}
func (b *LowerUseCaseBuilder) WithFileReader(fr domain.FileReader) *LowerUseCaseBuilder {
	b.fileReader = fr
	return b
}
func (b *LowerUseCaseBuilder) WithFormatter(f domain.LowerOutputFormatter) *LowerUseCaseBuilder {
	b.formatter = f
	return b
}
func (b *LowerUseCaseBuilder) WithOutputWriter(w domain.ReportWriter) *LowerUseCaseBuilder {
	b.output = w
	return b
}

func (b *LowerUseCaseBuilder) Build() (*LowerUseCase, error) {
	if b.service == nil || b.fileReader == nil || b.formatter == nil {
		return nil, fmt.Errorf("missing required dependencies")
	}
	uc := &LowerUseCase{
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
