// Package rates exposes the currency normalization service on the command line
package rates

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"fjacquet/pod-ledger/cmd/root"
	"fjacquet/pod-ledger/internal/dateutils"
	"fjacquet/pod-ledger/internal/models"
)

// Cmd groups the rate subcommands
var Cmd = &cobra.Command{
	Use:   "rates",
	Short: "Exchange rate utilities",
}

var convertCmd = &cobra.Command{
	Use:   "convert AMOUNT CURRENCY [DATE]",
	Short: "Convert an amount into the reporting currency",
	Long: `Convert AMOUNT in CURRENCY into the reporting currency as of DATE
(YYYY-MM-DD, default today). The rate is read from the cache or fetched and
cached, exactly as during an import.`,
	Args: cobra.RangeArgs(2, 3),
	RunE: convertFunc,
}

func init() {
	Cmd.AddCommand(convertCmd)
}

// Normalizer converts money into the reporting currency.
type Normalizer interface {
	Normalize(ctx context.Context, amount models.Money, date time.Time) (models.Money, error)
}

func convertFunc(cmd *cobra.Command, args []string) error {
	c, err := root.NewContainer()
	if err != nil {
		return err
	}
	defer c.Close()
	return Convert(cmd.Context(), c.GetRates(), args, time.Now(), cmd.OutOrStdout())
}

// Convert parses the command arguments, converts and prints the result.
func Convert(ctx context.Context, rates Normalizer, args []string, now time.Time, out io.Writer) error {
	if len(args) < 2 {
		return fmt.Errorf("amount and currency are required")
	}
	if !models.ValidCurrency(args[1]) {
		return fmt.Errorf("unknown currency: %s", args[1])
	}
	amount, err := models.NewMoneyFromString(args[0], args[1])
	if err != nil {
		return err
	}

	date := models.Day(now)
	if len(args) > 2 {
		if date, err = dateutils.ParseISODate(args[2]); err != nil {
			return fmt.Errorf("invalid date %q: %w", args[2], err)
		}
	}

	converted, err := rates.Normalize(ctx, amount, date)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s on %s = %s\n", amount.Display(), dateutils.ToISODate(date), converted.Display())
	return nil
}
