package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"surfaceflow/internal/entity"
)

// LedgerCmd groups audit ledger commands.
var LedgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Inspect the audit ledgers",
}

var ledgerShowCmd = &cobra.Command{
	Use:   "show <kind>",
	Short: "Print every row of a ledger",
	Long: fmt.Sprintf(`Print every row of a ledger from the configured backend.

Kinds: %s

Examples:
  surfaceflow ledger show hotel_searches
  surfaceflow ledger show lead_enrichments --json`, strings.Join(kindNames(), ", ")),
	Args:      cobra.ExactArgs(1),
	ValidArgs: kindNames(),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := entity.ParseLedgerKind(args[0])
		if err != nil {
			return err
		}
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		ledger, closeLedger, err := openLedger(cmd.Context(), cfg, zap.NewNop())
		if err != nil {
			return err
		}
		defer closeLedger()

		rows, err := ledger.ReadAll(cmd.Context(), kind)
		if err != nil {
			return err
		}

		if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
			out, err := json.MarshalIndent(rows, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		}

		if len(rows) == 0 {
			pterm.Info.Printf("Ledger %s is empty\n", kind)
			return nil
		}
		return renderRows(rows)
	},
}

func init() {
	ledgerShowCmd.Flags().BoolP("json", "j", false, "Output rows as JSON")
	LedgerCmd.AddCommand(ledgerShowCmd)
}

func renderRows(rows []entity.LedgerRow) error {
	data := pterm.TableData{rows[0].Names()}
	for _, row := range rows {
		data = append(data, row.Values())
	}
	if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
		return err
	}
	pterm.Success.Printf("%d rows\n", len(rows))
	return nil
}

func kindNames() []string {
	var names []string
	for _, k := range entity.LedgerKinds() {
		names = append(names, string(k))
	}
	return names
}
