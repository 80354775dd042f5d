package commands

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"localch-scraper/internal/models"
	"localch-scraper/internal/output"
)

var inspectLimit int

func init() {
	inspectCmd.Flags().IntVarP(&inspectLimit, "limit", "n", 0, "Show at most this many rows (0 shows all).")
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <results.csv>",
	Short: "Prints a result file as a table.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		records, err := output.Read(args[0])
		if err != nil {
			return err
		}
		renderListings(cmd.OutOrStdout(), records, inspectLimit)
		return nil
	},
}

func renderListings(out io.Writer, records []models.ListingRecord, limit int) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	header := table.Row{}
	for _, c := range models.Columns {
		header = append(header, c)
	}
	t.AppendHeader(header)

	shown := records
	if limit > 0 && limit < len(records) {
		shown = records[:limit]
	}
	for _, r := range shown {
		t.AppendRow(table.Row{r.Name, r.Address, r.Phone, r.Email, r.URL})
	}
	t.AppendFooter(table.Row{"", "", "", "Total", fmt.Sprintf("%d", len(records))})
	t.SetStyle(table.StyleRounded)
	t.Render()
}
