package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/paw-chain/pawswap/app"
)

const flagOverwrite = "overwrite"

// InitCmd writes a default genesis file and config file under --home.
func InitCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize genesis and configuration files",
		Long: `Initialize genesis and configuration files.

Example:
  pawswapd init --home ~/.pawswap
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			home := homeDir(v)
			configDir := filepath.Join(home, "config")
			if err := os.MkdirAll(configDir, 0o750); err != nil {
				return fmt.Errorf("create config dir: %w", err)
			}

			genFile := filepath.Join(configDir, genesisFileName)
			overwrite, _ := cmd.Flags().GetBool(flagOverwrite)
			if !overwrite && fileExists(genFile) {
				return fmt.Errorf("genesis.json file already exists: %v", genFile)
			}

			gs := app.NewDefaultGenesisState()
			gs.Token.Tokens = app.DefaultTokens()
			if err := gs.Validate(); err != nil {
				return err
			}
			if err := app.WriteGenesisFile(genFile, gs); err != nil {
				return err
			}

			cfgFile := filepath.Join(configDir, configFileName)
			if overwrite || !fileExists(cfgFile) {
				if err := v.WriteConfigAs(cfgFile); err != nil {
					return fmt.Errorf("write config: %w", err)
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "initialized %s\n", home)
			return nil
		},
	}
	cmd.Flags().Bool(flagOverwrite, false, "overwrite existing genesis and config files")
	return cmd
}

// ValidateGenesisCmd checks a genesis file without starting the server.
func ValidateGenesisCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "validate-genesis [file]",
		Short: "Validate a genesis file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			genFile := filepath.Join(homeDir(v), "config", genesisFileName)
			if len(args) == 1 {
				genFile = args[0]
			}
			gs, err := app.ReadGenesisFile(genFile)
			if err != nil {
				return err
			}
			if err := gs.Validate(); err != nil {
				return fmt.Errorf("genesis file %s is invalid: %w", genFile, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "genesis file %s is valid\n", genFile)
			return nil
		},
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, os.ErrNotExist)
}
