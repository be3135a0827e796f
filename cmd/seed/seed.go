// Package seed loads reference data into the ledger
package seed

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"fjacquet/pod-ledger/cmd/root"
	"fjacquet/pod-ledger/internal/logging"
	"fjacquet/pod-ledger/internal/models"
	"fjacquet/pod-ledger/internal/store"
)

// DefaultSeedFile is looked up when neither --input nor database.seed_file is set.
const DefaultSeedFile = "seed.yaml"

// Cmd represents the seed command
var Cmd = &cobra.Command{
	Use:   "seed",
	Short: "Load providers, accounts and orders from a YAML file",
	Long: `Load providers, accounts and orders from a YAML seed file into the
ledger. Rows are matched by id and overwritten, so the command can be run
repeatedly.`,
	RunE: seedFunc,
}

// Seeder applies seed data and reads the accounts back.
type Seeder interface {
	store.AccountLookup
	ApplySeed(ctx context.Context, seed store.Seed) error
}

func seedFunc(cmd *cobra.Command, args []string) error {
	c, err := root.NewContainer()
	if err != nil {
		return err
	}
	defer c.Close()

	file := root.SharedFlags.Input
	if file == "" {
		file = root.Cfg.Database.SeedFile
	}
	return Apply(cmd.Context(), c.GetStore(), file, cmd.OutOrStdout(), root.Log)
}

// Apply locates, validates and applies a seed file. An empty file selects
// DefaultSeedFile in the standard seed locations.
func Apply(ctx context.Context, seeder Seeder, file string, out io.Writer, log logging.Logger) error {
	path := file
	if path == "" {
		path = DefaultSeedFile
	}

	seed, err := store.LoadSeed(path)
	if err != nil {
		return err
	}
	if err := seeder.ApplySeed(ctx, seed); err != nil {
		return fmt.Errorf("failed to apply seed: %w", err)
	}

	log.Info("Seed applied", logging.F(logging.FieldFile, path))
	fmt.Fprintf(out, "Loaded %d providers, %d accounts, %d orders from %s\n",
		len(seed.Providers), len(seed.Accounts), len(seed.Orders), path)
	return printAccounts(ctx, seeder, seed.Accounts, out)
}

// printAccounts lists the seeded accounts with their ancestors, e.g.
// "  2  Expenses > Advertising".
func printAccounts(ctx context.Context, accounts store.AccountLookup, seeded []models.Account, out io.Writer) error {
	for _, account := range seeded {
		path, err := store.AccountPath(ctx, accounts, account.ID)
		if err != nil {
			return fmt.Errorf("failed to read account %d: %w", account.ID, err)
		}
		names := make([]string, len(path))
		for i, a := range path {
			names[i] = a.Name
		}
		fmt.Fprintf(out, "  %d  %s\n", account.ID, strings.Join(names, " > "))
	}
	return nil
}
