package cli

import (
	"errors"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download 10-K filings from SEC EDGAR",
	Long: `Downloads the annual report of every tracked company and year into the
data directory. Filings already on disk are skipped.

EDGAR requires a descriptive User-Agent; set it with SEC_USER_AGENT or
'finrag settings set sec.user_agent "Name contact@example.com"'.`,
	Args: cobra.NoArgs,
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, _ []string) error {
	if filingService == nil {
		return errors.New("filing service not configured")
	}

	report, err := filingService.Download(cmd.Context())
	if report != nil {
		for _, name := range report.Downloaded {
			cmd.Printf("%s %s\n", color.GreenString("downloaded"), name)
		}
		for _, name := range report.Missing {
			cmd.Printf("%s %s\n", color.YellowString("no filing"), name)
		}
		cmd.Printf("%d downloaded, %d already present, %d missing\n",
			len(report.Downloaded), len(report.Skipped), len(report.Missing))
	}
	return err
}
