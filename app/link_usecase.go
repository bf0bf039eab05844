package app

import (
	"context"
	"fmt"
	"io"

	"github.com/tmpl-lang/tmplc/domain"
	svc "github.com/tmpl-lang/tmplc/service"
)

// LinkUseCase orchestrates the linking workflow
type LinkUseCase struct {
	service    domain.LinkService
	fileReader domain.FileReader
	formatter  domain.LinkOutputFormatter
	output     domain.ReportWriter
}

// NewLinkUseCase creates a new link use case
func NewLinkUseCase(service domain.LinkService, fileReader domain.FileReader, formatter domain.LinkOutputFormatter) *LinkUseCase {
	return &LinkUseCase{
		service:    service,
		fileReader: fileReader,
		formatter:  formatter,
		output:     svc.NewFileOutputWriter(nil),
	}
}

// Execute links the requested units and writes formatted output
func (uc *LinkUseCase) Execute(ctx context.Context, req domain.LinkRequest) error {
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

	response, err := uc.service.Link(ctx, req)
	if err != nil {
		return err
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

func (uc *LinkUseCase) validateRequest(req domain.LinkRequest) error {
	if len(req.Paths) == 0 {
		return fmt.Errorf("no input paths specified")
	}
	if req.OutputWriter == nil && req.OutputPath == "" {
		return fmt.Errorf("output writer or output path is required")
	}
	return nil
}

// LinkUseCaseBuilder provides a fluent builder for LinkUseCase
type LinkUseCaseBuilder struct {
	service    domain.LinkService
	fileReader domain.FileReader
	formatter  domain.LinkOutputFormatter
	output     domain.ReportWriter
}

func NewLinkUseCaseBuilder() *LinkUseCaseBuilder { return &LinkUseCaseBuilder{} }

func (b *LinkUseCaseBuilder) WithService(s domain.LinkService) *LinkUseCaseBuilder {
	b.service = s
	return b
}
func (b *LinkUseCaseBuilder) WithFileReader(fr domain.FileReader) *LinkUseCaseBuilder {
	b.fileReader = fr
	return b
}
func (b *LinkUseCaseBuilder) WithFormatter(f domain.LinkOutputFormatter) *LinkUseCaseBuilder {
	b.formatter = f
	return b
}
func (b *LinkUseCaseBuilder) WithOutputWriter(w domain.ReportWriter) *LinkUseCaseBuilder {
	b.output = w
	return b
}

func (b *LinkUseCaseBuilder) Build() (*LinkUseCase, error) {
	if b.service == nil || b.fileReader == nil || b.formatter == nil {
		return nil, fmt.Errorf("missing required dependencies")
	}
	uc := &LinkUseCase{
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
