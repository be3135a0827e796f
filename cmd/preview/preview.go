// Package preview handles the import preview command
package preview

import (
	"github.com/spf13/cobra"

	"fjacquet/pod-ledger/cmd/common"
	"fjacquet/pod-ledger/cmd/root"
	"fjacquet/pod-ledger/internal/logging"
)

// Cmd represents the preview command
var Cmd = &cobra.Command{
	Use:   "preview",
	Short: "Parse and classify a supplier export without writing",
	Long: `Parse a supplier export for the given provider, resolve accounts and show
whether each invoice would be created, updated or skipped. Nothing is written
to the ledger. Use --output to save the preview as CSV.`,
	RunE: previewFunc,
}

func init() {
	Cmd.Flags().UintVarP(&root.SharedFlags.Provider, "provider", "p", 0, "Provider id the export belongs to")
	_ = Cmd.MarkFlagRequired("provider")
}

func previewFunc(cmd *cobra.Command, args []string) error {
	c, err := root.NewContainer()
	if err != nil {
		return err
	}
	defer c.Close()

	root.Log.Info("Previewing import",
		logging.F(logging.FieldFile, root.SharedFlags.Input),
		logging.F(logging.FieldProvider, root.SharedFlags.Provider))
	return common.RunPreview(cmd.Context(), c.GetImporter(), root.SharedFlags.Provider,
		root.SharedFlags.Input, root.SharedFlags.Output, root.Cfg.CSV.Delimiter,
		cmd.OutOrStdout(), root.Log)
}
