package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/skadiD/swallow"
	"github.com/skadiD/swallow/config"
	"github.com/spf13/cobra"
)

var (
	// Version 构建时注入
	Version = "dev"

	errColor = color.New(color.FgRed, color.Bold)
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		errColor.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app 命令间共享的配置
type app struct {
	configFile string
	envFiles   []string
	database   string
	cache      string
	cfg        *config.Config
}

func newRootCommand() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "swallow",
		Short:         "Query builder, result cache and entity tooling",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
	}
	flags := root.PersistentFlags()
	flags.StringVarP(&a.configFile, "config", "c", "", "config file (default ./swallow.yaml)")
	flags.StringSliceVar(&a.envFiles, "env-file", nil, "dotenv files to load (default .env)")
	flags.StringVarP(&a.database, "database", "d", "", "connection string, overrides SWALLOW_DATABASE")
	flags.StringVar(&a.cache, "cache", "", "cache address, overrides SWALLOW_CACHE")

	root.AddCommand(newQueryCommand(a), newCacheCommand(a), newGenCommand(a))
	return root
}

func (a *app) load() error {
	cfg, err := config.Load(config.Options{File: a.configFile, EnvFiles: a.envFiles})
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if a.database != "" {
		cfg.Database = a.database
	}
	if a.cache != "" {
		cfg.Cache = a.cache
	}
	a.cfg = cfg
	return nil
}

func (a *app) open(ctx context.Context) (*database.DB, error) {
	return a.cfg.Open(ctx)
}
