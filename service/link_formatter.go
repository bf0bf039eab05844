package service

import (
	"fmt"
	"io"
	"strings"

	"github.com/tmpl-lang/tmplc/domain"
)

// LinkFormatterImpl formats link reports
type LinkFormatterImpl struct{}

// NewLinkFormatter creates a new link report formatter
func NewLinkFormatter() *LinkFormatterImpl {
	return &LinkFormatterImpl{}
}

// Format formats the response according to the specified format
func (f *LinkFormatterImpl) Format(response *domain.LinkResponse, format domain.OutputFormat) (string, error) {
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
func (f *LinkFormatterImpl) Write(response *domain.LinkResponse, format domain.OutputFormat, writer io.Writer) error {
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
func (f *LinkFormatterImpl) formatText(response *domain.LinkResponse) (string, error) {
	var builder strings.Builder
	utils := NewFormatUtils()

	builder.WriteString(utils.FormatMainHeader("Link Report"))

	builder.WriteString(utils.FormatSummaryStats([][2]string{
		{"Main Unit", response.MainUnit},
		{"Units Linked", fmt.Sprintf("%d", response.Summary.UnitsLinked)},
		{"Total Functions", fmt.Sprintf("%d", response.Summary.TotalFunctions)},
		{"Total Records", fmt.Sprintf("%d", response.Summary.TotalRecords)},
		{"Public Symbols", fmt.Sprintf("%d", response.Summary.PublicSymbols)},
	}))

	if len(response.Symbols) > 0 {
		builder.WriteString(utils.FormatSectionHeader("PUBLIC SYMBOLS"))
		for _, sym := range response.Symbols {
			flag := "pure"
			if sym.MayRaise {
				flag = "may raise"
			}
			builder.WriteString(fmt.Sprintf("%-40s %-12s %s\n", sym.Name, sym.Unit, flag))
		}
		builder.WriteString(utils.FormatSectionSeparator())
	}

	if response.OutputPath != "" {
		builder.WriteString(utils.FormatLabelWithIndent(0, "Linked unit written to", response.OutputPath))
	}

	if len(response.Warnings) > 0 {
		builder.WriteString(utils.FormatWarningsSection(response.Warnings))
	}

	return builder.String(), nil
}
