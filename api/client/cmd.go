package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const (
	// FlagAPI is the base URL of the pawswapd server.
	FlagAPI = "api"
	// FlagTimeout bounds each request.
	FlagTimeout = "timeout"
	// FlagUser is the acting user for state-changing commands.
	FlagUser = "user"
)

// AddQueryFlagsToCmd adds the connection flags.
func AddQueryFlagsToCmd(cmd *cobra.Command) {
	def := os.Getenv("PAWSWAP_API_URL")
	if def == "" {
		def = DefaultBaseURL
	}
	cmd.Flags().String(FlagAPI, def, "pawswapd API base URL")
	cmd.Flags().Duration(FlagTimeout, 0, "request timeout (default 30s)")
}

// AddTxFlagsToCmd adds the connection flags and the required --user flag.
func AddTxFlagsToCmd(cmd *cobra.Command) {
	AddQueryFlagsToCmd(cmd)
	cmd.Flags().String(FlagUser, "", "user the operation is performed for")
	_ = cmd.MarkFlagRequired(FlagUser)
}

// FromCmd builds a client from the command's connection flags.
func FromCmd(cmd *cobra.Command) *Client {
	base, _ := cmd.Flags().GetString(FlagAPI)
	timeout, _ := cmd.Flags().GetDuration(FlagTimeout)
	return New(Config{BaseURL: base, Timeout: timeout})
}

// UserFromCmd returns the --user flag.
func UserFromCmd(cmd *cobra.Command) (string, error) {
	user, _ := cmd.Flags().GetString(FlagUser)
	if user == "" {
		return "", fmt.Errorf("--%s is required", FlagUser)
	}
	return user, nil
}

// PrintJSON writes v to the command output as indented JSON.
func PrintJSON(cmd *cobra.Command, v interface{}) error {
	if raw, ok := v.(json.RawMessage); ok {
		var buf bytes.Buffer
		if err := json.Indent(&buf, raw, "", "  "); err == nil {
			_, err = fmt.Fprintln(cmd.OutOrStdout(), buf.String())
			return err
		}
	}
	bz, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(bz))
	return err
}
