package service

import (
	"fmt"
	"io"
	"strings"

	"github.com/tmpl-lang/tmplc/domain"
)

// LowerFormatterImpl formats lowering reports
type LowerFormatterImpl struct{}

// NewLowerFormatter creates a new lowering report formatter
func NewLowerFormatter() *LowerFormatterImpl {
	return &LowerFormatterImpl{}
}

// Format formats the response according to the specified format
func (f *LowerFormatterImpl) Format(response *domain.LowerResponse, format domain.OutputFormat) (string, error) {
	switch format {
	case domain.OutputFormatText:
		return f.formatText(response)
	case domain.OutputFormatJSON:
		return EncodeJSON(response)
	case domain.OutputFormatYAML:
		return EncodeYAML(response)
	default:
		return "", domain.NewUnsupportedFormatError(string(format))
	}
}

// Write writes the formatted output to the writer
func (f *LowerFormatterImpl) Write(response *domain.LowerResponse, format domain.OutputFormat, writer io.Writer) error {
	output, err := f.Format(response, format)
	if err != nil {
		return err
	}

	_, err = writer.Write([]byte(output))
	if err != nil {
		return domain.NewOutputError("failed to write output", err)
	}

	return nil
}

// formatText formats the response as human-readable text
func (f *LowerFormatterImpl) formatText(response *domain.LowerResponse) (string, error) {
	var builder strings.Builder
	utils := NewFormatUtils()

	builder.WriteString(utils.FormatMainHeader("Lowering Report"))

	builder.WriteString(utils.FormatSummaryStats([][2]string{
		{"Files Processed", fmt.Sprintf("%d", response.Summary.FilesProcessed)},
		{"Source Functions", fmt.Sprintf("%d", response.Summary.SourceFunctions)},
		{"Continuations", fmt.Sprintf("%d", response.Summary.Continuations)},
	}))

	if len(response.Units) > 0 {
		builder.WriteString(utils.FormatSectionHeader("UNITS"))
		for _, unit := range response.Units {
			builder.WriteString(fmt.Sprintf("%-40s %4d functions  %4d continuations  %4d raising\n",
				unit.Path, unit.SourceFunctions, unit.Continuations, unit.RaisingCount))
			if unit.OutputPath != "" {
				builder.WriteString(utils.FormatLabelWithIndent(SectionPadding, "written to", unit.OutputPath))
			}
		}
		builder.WriteString(utils.FormatSectionSeparator())
	}

	if len(response.Warnings) > 0 {
		builder.WriteString(utils.FormatWarningsSection(response.Warnings))
	}

	if len(response.Errors) > 0 {
		builder.WriteString(utils.FormatSectionHeader("ERRORS"))
		for _, err := range response.Errors {
			builder.WriteString(utils.FormatLabelWithIndent(SectionPadding, "x", err))
		}
		builder.WriteString(utils.FormatSectionSeparator())
	}

	return builder.String(), nil
}
