package main

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/tmpl-lang/tmplc/app"
	"github.com/tmpl-lang/tmplc/domain"
	"github.com/tmpl-lang/tmplc/internal/config"
	"github.com/tmpl-lang/tmplc/service"
)

// ThrowCommand represents the throwability analysis command
type ThrowCommand struct {
	json       bool
	yaml       bool
	linkPaths  []string
	configFile string
}

func NewThrowCommand() *ThrowCommand { return &ThrowCommand{} }

func NewThrowCmd() *cobra.Command {
	c := NewThrowCommand()

	cmd := &cobra.Command{
		Use:   "throw [paths...]",
		Short: "Report which functions can raise",
		Long: `Recompute the may-raise flag for every function by propagating
raise sites through the call graph, including recursive cycles, and
report the result.

Examples:
  tmplc throw build/units/
  tmplc throw --json build/units/
  tmplc throw --link build/lib/prelude.tmplu build/units/`,
		Args: cobra.MinimumNArgs(1),
		RunE: c.run,
	}

	cmd.Flags().BoolVar(&c.json, "json", false, "Generate JSON report file")
	cmd.Flags().BoolVar(&c.yaml, "yaml", false, "Generate YAML report file")
	cmd.Flags().StringArrayVar(&c.linkPaths, "link", nil, "Unit files whose public symbols resolve external references")
	cmd.Flags().StringVarP(&c.configFile, "config", "c", "", "Configuration file path (.tmplc.toml)")
	return cmd
}

func (c *ThrowCommand) run(cmd *cobra.Command, args []string) error {
	paths, err := expandAndValidatePaths(args)
	if err != nil {
		return err
	}
	linkPaths, err := expandAndValidatePaths(c.linkPaths)
	if err != nil {
		return err
	}

	cfg, err := config.LoadConfigWithTarget(c.configFile, getTargetPathFromArgs(args))
	if err != nil {
		return err
	}

	req := domain.DefaultThrowabilityRequest()
	req.Paths = paths
	req.LinkPaths = linkPaths
	req.Recursive = cfg.Analysis.Recursive
	req.IncludePatterns = cfg.Analysis.IncludePatterns
	req.ExcludePatterns = cfg.Analysis.ExcludePatterns
	req.OutputWriter = cmd.OutOrStdout()

	format, err := resolveOutputFormat(c.json, c.yaml)
	if err != nil {
		return err
	}
	req.OutputFormat = domain.OutputFormat(format)
	if format != "text" {
		req.OutputPath, err = generateOutputFilePath("throw", format, getTargetPathFromArgs(args))
		if err != nil {
			return err
		}
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	useCase, err := c.createUseCase(cmd)
	if err != nil {
		return err
	}
	if err := useCase.Execute(ctx, req); err != nil {
		return reportCommandError(cmd, err)
	}
	return nil
}

func (c *ThrowCommand) createUseCase(cmd *cobra.Command) (*app.ThrowabilityUseCase, error) {
	return app.NewThrowabilityUseCaseBuilder().
		WithService(service.NewThrowabilityService()).
		WithFileReader(service.NewFileReader()).
		WithFormatter(service.NewThrowabilityFormatter()).
		WithOutputWriter(service.NewFileOutputWriter(cmd.ErrOrStderr())).
		Build()
}
