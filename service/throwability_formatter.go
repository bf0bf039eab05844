package service

import (
	"fmt"
	"io"
	"strings"

	"github.com/tmpl-lang/tmplc/domain"
)

// ThrowabilityFormatterImpl formats throwability analysis reports
type ThrowabilityFormatterImpl struct{}

// NewThrowabilityFormatter creates a new throwability report formatter
func NewThrowabilityFormatter() *ThrowabilityFormatterImpl {
	return &ThrowabilityFormatterImpl{}
}

// Format formats the response according to the specified format
func (f *ThrowabilityFormatterImpl) Format(response *domain.ThrowabilityResponse, format domain.OutputFormat) (string, error) {
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
func (f *ThrowabilityFormatterImpl) Write(response *domain.ThrowabilityResponse, format domain.OutputFormat, writer io.Writer) error {
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
func (f *ThrowabilityFormatterImpl) formatText(response *domain.ThrowabilityResponse) (string, error) {
	var builder strings.Builder
	utils := NewFormatUtils()

	builder.WriteString(utils.FormatMainHeader("Throwability Analysis Report"))

	builder.WriteString(utils.FormatSummaryStats([][2]string{
		{"Files Analyzed", fmt.Sprintf("%d", response.Summary.FilesAnalyzed)},
		{"Total Functions", fmt.Sprintf("%d", response.Summary.TotalFunctions)},
		{"Raising Functions", fmt.Sprintf("%d", response.Summary.RaisingFunctions)},
		{"Call Cycles", fmt.Sprintf("%d", response.Summary.Cycles)},
	}))

	if len(response.Functions) > 0 {
		builder.WriteString(utils.FormatSectionHeader("FUNCTIONS"))
		for _, fn := range response.Functions {
			flag := "pure"
			if fn.MayRaise {
				flag = "may raise"
			}
			builder.WriteString(fmt.Sprintf("%-40s %-12s %s\n", fn.Name, fn.Unit, flag))
		}
		builder.WriteString(utils.FormatSectionSeparator())
	}

	if len(response.Cycles) > 0 {
		builder.WriteString(utils.FormatSectionHeader("CALL CYCLES"))
		for _, cycle := range response.Cycles {
			flag := ""
			if cycle.MayRaise {
				flag = " (may raise)"
			}
			builder.WriteString(fmt.Sprintf("  %s%s\n", strings.Join(cycle.Functions, " -> "), flag))
		}
		builder.WriteString(utils.FormatSectionSeparator())
	}

	if len(response.Warnings) > 0 {
		builder.WriteString(utils.FormatWarningsSection(response.Warnings))
	}

	return builder.String(), nil
}
