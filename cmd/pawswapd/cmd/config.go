package cmd

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/paw-chain/pawswap/api"
	"github.com/paw-chain/pawswap/app"
)

// Config is the full daemon configuration.
type Config struct {
	Home        string `mapstructure:"home" json:"home"`
	LogLevel    string `mapstructure:"log_level" json:"log_level"`
	LogFormat   string `mapstructure:"log_format" json:"log_format"`
	MetricsAddr string `mapstructure:"metrics_addr" json:"metrics_addr"`
	GenesisFile string `mapstructure:"genesis_file" json:"genesis_file"`

	App app.Config `mapstructure:"app" json:"app"`
	API api.Config `mapstructure:"api" json:"api"`
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		Home:        DefaultHome,
		LogLevel:    "info",
		LogFormat:   "plain",
		MetricsAddr: ":9090",
		App:         app.DefaultConfig(),
		API:         *api.DefaultConfig(),
	}
}

// setDefaults registers the keys that may be overridden from the
// environment. AutomaticEnv only resolves keys viper already knows.
func setDefaults(v *viper.Viper) {
	def := DefaultConfig()

	v.SetDefault("metrics_addr", def.MetricsAddr)
	v.SetDefault("genesis_file", "")

	v.SetDefault("app.clock.block_interval", def.App.Clock.BlockInterval)
	_ = v.BindEnv("app.clock.genesis_time")
	v.SetDefault("app.audit.backend", def.App.Audit.Backend)
	v.SetDefault("app.audit.dsn", def.App.Audit.DSN)
	v.SetDefault("app.cache.backend", def.App.Cache.Backend)
	v.SetDefault("app.cache.size", def.App.Cache.Size)
	v.SetDefault("app.cache.ttl", def.App.Cache.TTL)
	v.SetDefault("app.cache.address", def.App.Cache.Address)
	v.SetDefault("app.cache.password", def.App.Cache.Password)
	v.SetDefault("app.cache.db", def.App.Cache.DB)
	v.SetDefault("app.cache.prefix", def.App.Cache.Prefix)
	v.SetDefault("app.telemetry.enabled", def.App.Telemetry.Enabled)
	v.SetDefault("app.telemetry.otlp_endpoint", def.App.Telemetry.OTLPEndpoint)
	v.SetDefault("app.telemetry.sample_rate", def.App.Telemetry.SampleRate)
	v.SetDefault("app.telemetry.environment", def.App.Telemetry.Environment)
	v.SetDefault("app.telemetry.prometheus_enabled", def.App.Telemetry.PrometheusEnabled)
	v.SetDefault("app.health.max_response_time", def.App.Health.MaxResponseTime)
	v.SetDefault("app.health.cache_duration", def.App.Health.CacheDuration)

	v.SetDefault("api.listen_addr", def.API.ListenAddr)
	v.SetDefault("api.cors_origins", def.API.CORSOrigins)
	v.SetDefault("api.read_timeout", def.API.ReadTimeout)
	v.SetDefault("api.write_timeout", def.API.WriteTimeout)
	v.SetDefault("api.shutdown_timeout", def.API.ShutdownTimeout)
	v.SetDefault("api.request_timeout", def.API.RequestTimeout)
	v.SetDefault("api.max_request_bytes", def.API.MaxRequestBytes)
	v.SetDefault("api.ws_buffer_size", def.API.WSBufferSize)
	v.SetDefault("api.rate_limit.enabled", def.API.RateLimit.Enabled)
	v.SetDefault("api.rate_limit.default_rps", def.API.RateLimit.DefaultRPS)
	v.SetDefault("api.rate_limit.default_burst", def.API.RateLimit.DefaultBurst)
	v.SetDefault("api.rate_limit.whitelist_cidrs", def.API.RateLimit.WhitelistCIDRs)
}

// loadConfig decodes the merged settings over DefaultConfig.
func loadConfig(v *viper.Viper) (Config, error) {
	cfg := DefaultConfig()
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToTimeHookFunc(time.RFC3339),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Home == "" {
		cfg.Home = DefaultHome
	}
	if cfg.GenesisFile == "" {
		cfg.GenesisFile = filepath.Join(cfg.Home, "config", genesisFileName)
	}
	if err := cfg.API.Validate(); err != nil {
		return Config{}, fmt.Errorf("api config: %w", err)
	}
	return cfg, nil
}

// ConfigCmd prints the effective configuration.
func ConfigCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(v)
			if err != nil {
				return err
			}
			// never echo credentials
			if cfg.App.Audit.DSN != "" {
				cfg.App.Audit.DSN = "<redacted>"
			}
			if cfg.App.Cache.Password != "" {
				cfg.App.Cache.Password = "<redacted>"
			}
			bz, err := json.MarshalIndent(cfg, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(bz))
			return nil
		},
	}
}
