package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cosmossdk.io/log"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/paw-chain/pawswap/api"
	"github.com/paw-chain/pawswap/app"
)

const (
	flagListenAddr  = "listen-addr"
	flagMetricsAddr = "metrics-addr"
	flagGenesis     = "genesis"
)

// StartCmd runs the API server until interrupted.
func StartCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Run the swap engine and its REST/WebSocket API",
		Long: `Run the swap engine and its REST/WebSocket API.

State is loaded from <home>/config/genesis.json when it exists. Otherwise the
registry is seeded from the genesis.tokens list in the config file, or from
the built-in token set.

Example:
  pawswapd start --listen-addr 0.0.0.0:5000 --metrics-addr :9090
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := newLogger(v)
			if err != nil {
				return err
			}
			cfg, err := loadConfig(v)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, logger, v, cfg)
		},
	}

	cmd.Flags().String(flagListenAddr, "", "API listen address (overrides api.listen_addr)")
	cmd.Flags().String(flagMetricsAddr, "", "Prometheus listen address (overrides metrics_addr)")
	cmd.Flags().String(flagGenesis, "", "genesis file (default <home>/config/genesis.json)")
	// unset flags fall back to config, env and defaults
	_ = v.BindPFlag("api.listen_addr", cmd.Flags().Lookup(flagListenAddr))
	_ = v.BindPFlag("metrics_addr", cmd.Flags().Lookup(flagMetricsAddr))
	_ = v.BindPFlag("genesis_file", cmd.Flags().Lookup(flagGenesis))
	return cmd
}

func run(ctx context.Context, logger log.Logger, v *viper.Viper, cfg Config) error {
	a, err := app.New(ctx, logger, cfg.App)
	if err != nil {
		return fmt.Errorf("build app: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.Close(closeCtx); err != nil {
			logger.Error("close app", "err", err)
		}
	}()

	gs, err := loadGenesis(v, cfg)
	if err != nil {
		return err
	}
	if err := a.InitGenesis(ctx, gs); err != nil {
		return fmt.Errorf("init genesis: %w", err)
	}
	logger.Info("genesis loaded",
		"tokens", len(gs.Token.Tokens), "pools", len(gs.Dex.Pools), "farms", len(gs.Farm.Farms))

	srv, err := api.NewServer(logger, a, &cfg.API)
	if err != nil {
		return err
	}

	if cfg.MetricsAddr != "" {
		metrics := startMetricsServer(cfg.MetricsAddr, logger)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = metrics.Shutdown(shutdownCtx)
		}()
	}

	return srv.Start(ctx)
}

// loadGenesis reads the genesis file, falling back to configured or default
// tokens with empty pools and farms.
func loadGenesis(v *viper.Viper, cfg Config) (app.GenesisState, error) {
	if _, err := os.Stat(cfg.GenesisFile); err == nil {
		return app.ReadGenesisFile(cfg.GenesisFile)
	} else if !errors.Is(err, os.ErrNotExist) {
		return app.GenesisState{}, fmt.Errorf("stat genesis: %w", err)
	}

	gs := app.NewDefaultGenesisState()
	gs.Token.Tokens = app.DefaultTokens()
	if raw := v.Get("genesis.tokens"); raw != nil {
		entries, err := cast.ToSliceE(raw)
		if err != nil {
			return app.GenesisState{}, fmt.Errorf("genesis.tokens: %w", err)
		}
		tokens, err := app.TokensFromConfig(entries)
		if err != nil {
			return app.GenesisState{}, err
		}
		gs.Token.Tokens = tokens
	}
	return gs, nil
}

// startMetricsServer serves the default Prometheus registry on addr.
func startMetricsServer(addr string, logger log.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("starting metrics server", "addr", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "err", err)
		}
	}()
	return server
}
