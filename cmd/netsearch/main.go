package main

import (
	"fmt"
	"os"

	"github.com/sanonone/netsearch/internal/config"
	"github.com/sanonone/netsearch/internal/logging"
	"github.com/sanonone/netsearch/pkg/client"
	"github.com/sanonone/netsearch/pkg/sharelink"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configPath string
	logLevel   string

	rootCmd = &cobra.Command{
		Use:   "netsearch",
		Short: "Client for the biomedical network-search service",
		Long: `netsearch edits network-search queries, encodes and decodes share links,
runs searches against the service and presents the causal paths found.
It can also serve client sessions over HTTP or expose its tools over MCP.`,
		SilenceUsage: true,
	}
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level override (debug, info, warn, error)")

	rootCmd.AddCommand(serveCmd, mcpCmd, searchCmd, linkCmd, schemaCmd)
}

// deps is what the network-facing commands share.
type deps struct {
	cfg    config.Config
	logger *zap.Logger
	client *client.Client
	codec  sharelink.Codec
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
		if err := config.Validate(cfg); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

func codecFor(cfg config.Config) sharelink.Codec {
	return sharelink.Codec{
		BaseURL:     cfg.Link.BaseURL,
		Path:        cfg.Link.Path,
		HashRouting: cfg.Link.HashRouting,
	}
}

func newDeps() (*deps, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	c, err := client.New(cfg.ServiceURL, client.Options{
		Timeout:         cfg.Client.Timeout,
		BreakerFailures: cfg.Client.BreakerFailures,
		BreakerTimeout:  cfg.Client.BreakerTimeout,
		LookupRate:      cfg.Client.LookupRate,
		LookupBurst:     cfg.Client.LookupBurst,
		Logger:          logger,
	})
	if err != nil {
		return nil, err
	}
	return &deps{cfg: cfg, logger: logger, client: c, codec: codecFor(cfg)}, nil
}
