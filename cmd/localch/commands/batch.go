package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"localch-scraper/internal/pipeline"
)

// batchFile lists the keywords a batch run scrapes, in order.
type batchFile struct {
	Keywords []string `json:"keywords"`
}

var errNoKeywords = errors.New("batch file has no keywords")

var batchConfigPath string

func init() {
	batchCmd.Flags().StringVarP(&batchConfigPath, "config", "c", "keywords.json", "Path to a JSON file with a \"keywords\" array.")
	rootCmd.AddCommand(batchCmd)
}

var batchCmd = &cobra.Command{
	Use:   "batch [--config keywords.json]",
	Short: "Scrapes every keyword in a JSON file, one run after another.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		keywords, err := loadKeywords(batchConfigPath)
		if err != nil {
			return err
		}
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		p := pipeline.New(rt.cfg, rt.deps, rt.log)
		var errs []error
		for _, keyword := range keywords {
			summary, err := p.Run(cmd.Context(), keyword)
			if err != nil {
				if cmd.Context().Err() != nil {
					return err
				}
				rt.log.Error().Err(err).Str("keyword", keyword).Msg("batch run failed")
				errs = append(errs, fmt.Errorf("%s: %w", keyword, err))
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: saved %d listings to %s\n", keyword, summary.Records, summary.OutputPath)
		}
		return errors.Join(errs...)
	},
}

// loadKeywords reads path and returns its non-blank keywords.
func loadKeywords(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f batchFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	keywords := make([]string, 0, len(f.Keywords))
	for _, k := range f.Keywords {
		if k = strings.TrimSpace(k); k != "" {
			keywords = append(keywords, k)
		}
	}
	if len(keywords) == 0 {
		return nil, errNoKeywords
	}
	return keywords, nil
}
