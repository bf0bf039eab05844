package main

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/tmpl-lang/tmplc/app"
	"github.com/tmpl-lang/tmplc/domain"
	"github.com/tmpl-lang/tmplc/internal/config"
	"github.com/tmpl-lang/tmplc/service"
)

// LowerCommand represents the lower command
type LowerCommand struct {
	json       bool
	yaml       bool
	outputDir  string
	namePrefix string
	configFile string
}

func NewLowerCommand() *LowerCommand { return &LowerCommand{} }

func NewLowerCmd() *cobra.Command {
	c := NewLowerCommand()

	cmd := &cobra.Command{
		Use:   "lower [paths...]",
		Short: "Lower compiled units into continuation-passing form",
		Long: `Rewrite structured control flow in compiled units into flat
continuation functions with explicit error channels.

Examples:
  tmplc lower build/units/
  tmplc lower --out build/lowered build/units/
  tmplc lower --json build/units/`,
		Args: cobra.MinimumNArgs(1),
		RunE: c.run,
	}

	cmd.Flags().BoolVar(&c.json, "json", false, "Generate JSON report file")
	cmd.Flags().BoolVar(&c.yaml, "yaml", false, "Generate YAML report file")
	cmd.Flags().StringVarP(&c.outputDir, "out", "o", "", "Directory receiving lowered unit files")
	cmd.Flags().StringVar(&c.namePrefix, "name-prefix", "", "Prefix for synthesized continuation names")
	cmd.Flags().StringVarP(&c.configFile, "config", "c", "", "Configuration file path (.tmplc.toml)")
	return cmd
}

func (c *LowerCommand) run(cmd *cobra.Command, args []string) error {
	paths, err := expandAndValidatePaths(args)
	if err != nil {
		return err
	}

	cfg, err := config.LoadConfigWithTarget(c.configFile, getTargetPathFromArgs(args))
	if err != nil {
		return err
	}

	req := domain.DefaultLowerRequest()
	req.Paths = paths
	req.Recursive = cfg.Analysis.Recursive
	req.IncludePatterns = cfg.Analysis.IncludePatterns
	req.ExcludePatterns = cfg.Analysis.ExcludePatterns
	req.NamePrefix = cfg.Lowering.NamePrefix
	req.OutputDir = cfg.Lowering.OutputDir
	req.OutputWriter = cmd.OutOrStdout()

	// Flags override config
	if c.namePrefix != "" {
		req.NamePrefix = c.namePrefix
	}
	if c.outputDir != "" {
		req.OutputDir = c.outputDir
	}

	format, err := resolveOutputFormat(c.json, c.yaml)
	if err != nil {
		return err
	}
	req.OutputFormat = domain.OutputFormat(format)
	if format != "text" {
		req.OutputPath, err = generateOutputFilePath("lower", format, getTargetPathFromArgs(args))
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

func (c *LowerCommand) createUseCase(cmd *cobra.Command) (*app.LowerUseCase, error) {
	return app.NewLowerUseCaseBuilder().
		WithService(service.NewLowerService()).
		WithFileReader(service.NewFileReader()).
		WithFormatter(service.NewLowerFormatter()).
		WithOutputWriter(service.NewFileOutputWriter(cmd.ErrOrStderr())).
		Build()
}
