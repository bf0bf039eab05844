package main

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/tmpl-lang/tmplc/app"
	"github.com/tmpl-lang/tmplc/domain"
	"github.com/tmpl-lang/tmplc/internal/config"
	"github.com/tmpl-lang/tmplc/service"
)

// LinkCommand represents the link command
type LinkCommand struct {
	json       bool
	yaml       bool
	mainUnit   string
	outputDir  string
	configFile string
}

func NewLinkCommand() *LinkCommand { return &LinkCommand{} }

func NewLinkCmd() *cobra.Command {
	c := NewLinkCommand()

	cmd := &cobra.Command{
		Use:   "link [paths...]",
		Short: "Merge compiled units into one program unit",
		Long: `Merge separately compiled units into a single program unit. A
public symbol defined by more than one unit is a hard error.

Examples:
  tmplc link build/lowered/
  tmplc link --main app --out build/ build/lowered/
  tmplc link --json build/lowered/`,
		Args: cobra.MinimumNArgs(1),
		RunE: c.run,
	}

	cmd.Flags().BoolVar(&c.json, "json", false, "Generate JSON report file")
	cmd.Flags().BoolVar(&c.yaml, "yaml", false, "Generate YAML report file")
	cmd.Flags().StringVar(&c.mainUnit, "main", "", "Unit contributing the program entry point")
	cmd.Flags().StringVarP(&c.outputDir, "out", "o", "", "Directory receiving the linked unit file")
	cmd.Flags().StringVarP(&c.configFile, "config", "c", "", "Configuration file path (.tmplc.toml)")
	return cmd
}

func (c *LinkCommand) run(cmd *cobra.Command, args []string) error {
	paths, err := expandAndValidatePaths(args)
	if err != nil {
		return err
	}

	cfg, err := config.LoadConfigWithTarget(c.configFile, getTargetPathFromArgs(args))
	if err != nil {
		return err
	}

	req := domain.DefaultLinkRequest()
	req.Paths = paths
	req.MainUnit = c.mainUnit
	req.OutputDir = c.outputDir
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
		req.OutputPath, err = generateOutputFilePath("link", format, getTargetPathFromArgs(args))
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

func (c *LinkCommand) createUseCase(cmd *cobra.Command) (*app.LinkUseCase, error) {
	return app.NewLinkUseCaseBuilder().
		WithService(service.NewLinkService()).
		WithFileReader(service.NewFileReader()).
		WithFormatter(service.NewLinkFormatter()).
		WithOutputWriter(service.NewFileOutputWriter(cmd.ErrOrStderr())).
		Build()
}
