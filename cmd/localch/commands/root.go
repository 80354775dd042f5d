package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"localch-scraper/internal/pipeline"
)

const keywordPrompt = "Enter search keyword (e.g. 'restaurants in Zurich'): "

var (
	keywordFlag     string
	maxListingsFlag int
	threadsFlag     int
	outputDirFlag   string
)

func init() {
	rootCmd.Flags().StringVarP(&keywordFlag, "keyword", "k", "", "Search keyword; prompted for when omitted.")
	rootCmd.PersistentFlags().IntVar(&maxListingsFlag, "max-listings", 0, "Maximum listings to scrape per keyword (overrides MAX_LISTINGS).")
	rootCmd.PersistentFlags().IntVar(&threadsFlag, "threads", 0, "Concurrent detail-page workers (overrides THREADS).")
	rootCmd.PersistentFlags().StringVar(&outputDirFlag, "output-dir", "", "Directory for result files (overrides OUTPUT_DIR).")
}

var rootCmd = &cobra.Command{
	Use:           "localch",
	Short:         "localch scrapes business listings from local.ch into a CSV file.",
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		keyword := keywordFlag
		if keyword == "" {
			var err error
			keyword, err = promptKeyword(cmd.InOrStdin(), cmd.OutOrStdout())
			if err != nil {
				return err
			}
		}
		keyword = strings.TrimSpace(keyword)
		if keyword == "" {
			fmt.Fprintln(cmd.OutOrStdout(), "No keyword entered, nothing to do.")
			return nil
		}

		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		summary, err := pipeline.New(rt.cfg, rt.deps, rt.log).Run(cmd.Context(), keyword)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Collected %d listing URLs.\n", summary.URLs)
		fmt.Fprintf(out, "Scraped details for %d listings.\n", summary.Records)
		fmt.Fprintf(out, "Saved %d listings to %s\n", summary.Records, summary.OutputPath)
		return nil
	},
}

// promptKeyword asks the operator for a keyword on in. EOF counts as an empty answer.
func promptKeyword(in io.Reader, out io.Writer) (string, error) {
	fmt.Fprint(out, keywordPrompt)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read keyword: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
