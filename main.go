package main

import (
	"fmt"
	"os"

	"fjacquet/pod-ledger/cmd/confirm"
	"fjacquet/pod-ledger/cmd/preview"
	"fjacquet/pod-ledger/cmd/rates"
	"fjacquet/pod-ledger/cmd/root"
	"fjacquet/pod-ledger/cmd/seed"
	"fjacquet/pod-ledger/internal/config"
)

func init() {
	// Load .env before cobra reads any flag defaults from the environment
	config.LoadEnv()

	root.Init()

	root.Cmd.AddCommand(preview.Cmd)
	root.Cmd.AddCommand(confirm.Cmd)
	root.Cmd.AddCommand(rates.Cmd)
	root.Cmd.AddCommand(seed.Cmd)
}

func main() {
	if err := root.Cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
