package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/paw-chain/pawswap/cmd/pawswapd/cmd"
)

func init() {
	// Load .env if present; PAWSWAP_* variables override the config file.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "warning: load .env: %v\n", err)
	}
}

func main() {
	if err := cmd.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
