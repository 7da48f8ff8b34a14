// The agritech binary is a terminal front end for the client data layer:
// it drives the same stores a mobile shell would, against a real or dev
// AgriTech backend.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/agritech/agriclient/internal/config"
	"github.com/agritech/agriclient/internal/gateway"
	"github.com/agritech/agriclient/internal/observability"
	"github.com/agritech/agriclient/internal/session"
)

var rootCmd = &cobra.Command{
	Use:   "agritech",
	Short: "AgriTech - weather and crop suitability for farmers",
	Long: `AgriTech shows daily and weekly weather forecasts for your farm's
location together with crop suitability and growing recommendations.`,
	SilenceUsage: true,
}

// app bundles the shared client stack the subcommands run on.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	tokens session.Store
	gw     gateway.Gateway
}

// newApp wires config, logging, the session file store, and the HTTP
// gateway. Each command invocation builds one.
func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := observability.NewLogger()
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	tokens := session.NewFileStore(cfg.SessionFile)

	gw, err := gateway.NewHTTPGateway(cfg.APIBaseURL, tokens, logger, gateway.Options{
		Timeout:        cfg.RequestTimeout,
		RetryAttempts:  cfg.RetryAttempts,
		RetryBaseDelay: cfg.RetryBaseDelay,
		RetryMaxDelay:  cfg.RetryMaxDelay,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	})
	if err != nil {
		_ = logger.Sync()
		return nil, fmt.Errorf("init gateway: %w", err)
	}

	return &app{cfg: cfg, logger: logger, tokens: tokens, gw: gw}, nil
}

func (a *app) close() {
	_ = a.logger.Sync()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
