package commands

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"localch-scraper/internal/config"
	"localch-scraper/internal/models"
	"localch-scraper/internal/store"
)

var errNoRedis = errors.New("REDIS_ADDR is not set, run status is not recorded")

func init() {
	rootCmd.AddCommand(statusCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status <run-id>",
	Short: "Shows the recorded progress of a run.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if cfg.RedisAddr == "" {
			return errNoRedis
		}
		statusStore := store.NewRedisStatusStore(cfg.RedisAddr, store.DefaultPrefix, cfg.StatusTTL)
		defer statusStore.Close()
		return printStatus(cmd, statusStore, args[0])
	},
}

func printStatus(cmd *cobra.Command, statusStore store.StatusStore, runID string) error {
	status, ok, err := statusStore.GetStatus(cmd.Context(), runID)
	if err != nil {
		return fmt.Errorf("get status: %w", err)
	}
	if !ok {
		return fmt.Errorf("no status recorded for run %s", runID)
	}
	renderStatus(cmd.OutOrStdout(), status)
	return nil
}

func renderStatus(out io.Writer, s models.RunStatus) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.AppendRows([]table.Row{
		{"Run", s.RunID},
		{"Keyword", s.Keyword},
		{"Stage", s.Stage},
		{"URLs collected", s.URLsCollected},
		{"Records scraped", s.RecordsScraped},
		{"Output", s.OutputPath},
		{"Error", s.Error},
		{"Updated", s.UpdatedAt.Local().Format(time.DateTime)},
	})
	t.SetStyle(table.StyleRounded)
	t.Render()
}
