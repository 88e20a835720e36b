package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cosmossdk.io/log"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/paw-chain/pawswap/app"
)

const (
	// EnvPrefix prefixes every environment override, e.g. PAWSWAP_API_LISTEN_ADDR.
	EnvPrefix = "PAWSWAP"

	flagHome      = "home"
	flagConfig    = "config"
	flagLogLevel  = "log-level"
	flagLogFormat = "log-format"

	configFileName  = "pawswap.toml"
	genesisFileName = "genesis.json"
)

// DefaultHome is the default home directory for config and genesis files.
var DefaultHome = defaultHome()

func defaultHome() string {
	if home := os.Getenv("PAWSWAP_HOME"); home != "" {
		return home
	}
	userHome, err := os.UserHomeDir()
	if err != nil {
		return ".pawswap"
	}
	return filepath.Join(userHome, ".pawswap")
}

// NewRootCmd creates the pawswapd root command. Configuration is read from
// the config file, then PAWSWAP_* environment variables, then flags.
func NewRootCmd() *cobra.Command {
	return newRootCmd(viper.New())
}

func newRootCmd(v *viper.Viper) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "pawswapd",
		Short:         "PAW swap engine: AMM pools, routing and yield farms",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return initViper(v, cmd)
		},
	}

	rootCmd.PersistentFlags().String(flagHome, DefaultHome, "directory for config and genesis files")
	rootCmd.PersistentFlags().String(flagConfig, "", "config file (default <home>/config/"+configFileName+")")
	rootCmd.PersistentFlags().String(flagLogLevel, "info", "log level (trace|debug|info|warn|error)")
	rootCmd.PersistentFlags().String(flagLogFormat, "plain", "log format (plain|json)")
	_ = v.BindPFlag("home", rootCmd.PersistentFlags().Lookup(flagHome))
	_ = v.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup(flagLogLevel))
	_ = v.BindPFlag("log_format", rootCmd.PersistentFlags().Lookup(flagLogFormat))

	rootCmd.AddCommand(
		StartCmd(v),
		InitCmd(v),
		ConfigCmd(v),
		ValidateGenesisCmd(v),
		QueryCmd(),
		TxCmd(),
		VersionCmd(),
	)
	return rootCmd
}

// initViper wires env overrides and reads the config file if one exists.
func initViper(v *viper.Viper, cmd *cobra.Command) error {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	cfgFile, _ := cmd.Flags().GetString(flagConfig)
	if cfgFile == "" {
		cfgFile = filepath.Join(homeDir(v), "config", configFileName)
		if _, err := os.Stat(cfgFile); errors.Is(err, os.ErrNotExist) {
			return nil
		}
	}
	v.SetConfigFile(cfgFile)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config %s: %w", cfgFile, err)
	}
	return nil
}

func homeDir(v *viper.Viper) string {
	if home := v.GetString("home"); home != "" {
		return home
	}
	return DefaultHome
}

// newLogger builds the process logger from the log_level and log_format keys.
func newLogger(v *viper.Viper) (log.Logger, error) {
	level, err := zerolog.ParseLevel(v.GetString("log_level"))
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	opts := []log.Option{log.LevelOption(level), log.ColorOption(false)}
	switch format := v.GetString("log_format"); format {
	case "json":
		opts = append(opts, log.OutputJSONOption())
	case "", "plain":
	default:
		return nil, fmt.Errorf("invalid log format %q", format)
	}
	return log.NewLogger(os.Stderr, opts...).With("module", app.Name), nil
}

// VersionCmd prints the build version.
func VersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the application version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), app.Version)
		},
	}
}
