package main

import (
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/Faultbox/rpotool/internal/config"
	"github.com/Faultbox/rpotool/internal/convert"
	"github.com/Faultbox/rpotool/internal/fetch"
	"github.com/Faultbox/rpotool/internal/logger"
)

type commandContext struct {
	configFlag string
	debug      bool
	logFile    string
	layout     string
	workers    int

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, err := config.Load(strings.TrimSpace(c.configFlag), config.Overrides{
			Debug:   c.debug,
			LogFile: c.logFile,
			Layout:  c.layout,
			Workers: c.workers,
		})
		if err != nil {
			c.configErr = err
			return
		}
		if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) converter(cfg *config.Config) (*convert.Converter, error) {
	mode, err := cfg.Convert.LayoutMode()
	if err != nil {
		return nil, err
	}
	return convert.New(convert.Options{
		Layout:       mode,
		InflateLimit: cfg.Convert.InflateLimit(),
		Comments:     cfg.Convert.Comments,
		Notice:       cfg.Convert.Notice,
	}, logger.Named("convert")), nil
}

func (c *commandContext) fetcher(cfg *config.Config) *fetch.Client {
	return fetch.New(fetch.Options{
		CatalogURL: cfg.Fetch.CatalogURL,
		AssetURL:   cfg.Fetch.AssetURL,
		UserAgent:  cfg.Fetch.UserAgent,
		Timeout:    cfg.Fetch.Timeout,
		Retries:    cfg.Fetch.Retries,
	}, nil, logger.Named("fetch"))
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:           "rpotool",
		Short:         "Convert RPO/RPOZ mesh assets to OBJ",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&ctx.configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().BoolVar(&ctx.debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&ctx.logFile, "log-file", "", "Also write logs to this file")

	rootCmd.AddCommand(newConvertCommand(ctx))
	rootCmd.AddCommand(newInspectCommand(ctx))
	rootCmd.AddCommand(newSearchCommand(ctx))
	rootCmd.AddCommand(newFetchCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}

// addConvertFlags registers the flags shared by commands that decode assets.
func addConvertFlags(cmd *cobra.Command, ctx *commandContext, withWorkers bool) {
	cmd.Flags().StringVarP(&ctx.layout, "layout", "l", "", "Layout strategy: auto, scan, compact or legacy")
	if withWorkers {
		cmd.Flags().IntVarP(&ctx.workers, "workers", "j", 0, "Parallel conversions (default from config)")
	}
}
