// Package confirm handles the import confirm command
package confirm

import (
	"github.com/spf13/cobra"

	"fjacquet/pod-ledger/cmd/common"
	"fjacquet/pod-ledger/cmd/root"
	"fjacquet/pod-ledger/internal/logging"
)

// Cmd represents the confirm command
var Cmd = &cobra.Command{
	Use:   "confirm",
	Short: "Import a supplier export into the ledger",
	Long: `Parse and classify a supplier export like preview, then commit new and
changed invoices in one transaction. Invoices already recorded with the same
total are skipped, so confirming the same file twice writes nothing the
second time.`,
	RunE: confirmFunc,
}

func init() {
	Cmd.Flags().UintVarP(&root.SharedFlags.Provider, "provider", "p", 0, "Provider id the export belongs to")
	_ = Cmd.MarkFlagRequired("provider")
}

func confirmFunc(cmd *cobra.Command, args []string) error {
	c, err := root.NewContainer()
	if err != nil {
		return err
	}
	defer c.Close()

	root.Log.Info("Confirming import",
		logging.F(logging.FieldFile, root.SharedFlags.Input),
		logging.F(logging.FieldProvider, root.SharedFlags.Provider))
	return common.RunConfirm(cmd.Context(), c.GetImporter(), root.SharedFlags.Provider, root.SharedFlags.Input, cmd.OutOrStdout())
}
