// Package common contains shared functionality for command handlers
package common

import (
	"context"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"fjacquet/pod-ledger/internal/fileutils"
	"fjacquet/pod-ledger/internal/importer"
	"fjacquet/pod-ledger/internal/logging"
	"fjacquet/pod-ledger/internal/models"
)

// ImportRunner is the part of the importer the commands drive.
type ImportRunner interface {
	Preview(ctx context.Context, providerID uint, r io.Reader) (*importer.Preview, error)
	Confirm(ctx context.Context, providerID uint, r io.Reader) (*importer.Outcome, error)
}

// RunPreview previews inputFile, prints a summary to out and, when
// outputFile is set, writes the preview rows as CSV.
func RunPreview(ctx context.Context, runner ImportRunner, providerID uint, inputFile, outputFile, delimiter string, out io.Writer, log logging.Logger) error {
	in, err := fileutils.OpenInput(inputFile)
	if err != nil {
		return err
	}
	defer in.Close()

	preview, err := runner.Preview(ctx, providerID, in)
	if err != nil {
		return err
	}
	PrintPreview(out, preview)

	if outputFile != "" {
		f, err := fileutils.CreateFile(outputFile)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := preview.WriteCSV(f, delimiter); err != nil {
			return err
		}
		log.Info("Preview written", logging.F(logging.FieldFile, outputFile))
	}
	return nil
}

// RunConfirm imports inputFile and prints the outcome to out.
func RunConfirm(ctx context.Context, runner ImportRunner, providerID uint, inputFile string, out io.Writer) error {
	in, err := fileutils.OpenInput(inputFile)
	if err != nil {
		return err
	}
	defer in.Close()

	outcome, err := runner.Confirm(ctx, providerID, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Written: %d (created %d, updated %d, skipped %d)\n",
		outcome.Written, outcome.Created, outcome.Updated, outcome.Skipped)
	PrintWarnings(out, outcome.Warnings)
	return nil
}

// PrintPreview writes one line per previewed invoice followed by the counts
// and warnings.
func PrintPreview(out io.Writer, preview *importer.Preview) {
	fmt.Fprintf(out, "Provider: %s (%d)\n", preview.Provider.Name, preview.Provider.ID)
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ACTION\tINVOICE\tDATE\tTOTAL\tLINES\tORDER")
	for _, row := range preview.Rows() {
		order := ""
		if row.OrderExists {
			order = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s %s\t%d\t%s\n",
			row.Action, row.InvoiceNumber, row.Date, row.Total, row.Currency, row.Lines, order)
	}
	_ = tw.Flush()

	counts := preview.Counts()
	fmt.Fprintf(out, "Create: %d  Update: %d  Skip: %d\n",
		counts[models.ActionCreate], counts[models.ActionUpdate], counts[models.ActionSkip])
	PrintWarnings(out, preview.Warnings)
}

// PrintWarnings lists warnings, if any.
func PrintWarnings(out io.Writer, warnings []string) {
	if len(warnings) == 0 {
		return
	}
	sorted := append([]string(nil), warnings...)
	sort.Strings(sorted)
	fmt.Fprintf(out, "Warnings (%d):\n", len(sorted))
	for _, w := range sorted {
		fmt.Fprintf(out, "  - %s\n", w)
	}
}
