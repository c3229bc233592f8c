package cli

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/finrag/internal/core/domain"
)

var indexRebuild bool

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build or attach to the filing index",
	Long: `Attaches to the persisted index, or builds it from the filings in the data
directory when the store is empty.

Use --rebuild to discard stored entries and embed every filing again.`,
	Args: cobra.NoArgs,
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().BoolVar(&indexRebuild, "rebuild", false, "discard stored entries and rebuild")
	rootCmd.AddCommand(indexCmd)
}

// batchObservable is implemented by index services that report batch progress.
type batchObservable interface {
	SetBatchObserver(fn func(domain.BatchEvent))
}

func runIndex(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	svc, err := services(ctx)
	if err != nil {
		return err
	}
	if svc.Index == nil {
		return errors.New("index service not configured")
	}

	if obs, ok := svc.Index.(batchObservable); ok {
		obs.SetBatchObserver(func(e domain.BatchEvent) {
			printBatch(cmd, e)
		})
		defer obs.SetBatchObserver(nil)
	}

	var report *domain.IndexReport
	if indexRebuild {
		report, err = svc.Index.Rebuild(ctx)
	} else {
		report, err = svc.Index.Ensure(ctx)
	}
	if err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}

	printIndexReport(cmd, report)
	return nil
}

func printBatch(cmd *cobra.Command, e domain.BatchEvent) {
	if e.Err != nil {
		cmd.Printf("  %s batch %d/%d (%d chunks): %v\n", color.RedString("✗"), e.Number, e.Total, e.Size, e.Err)
		return
	}
	cmd.Printf("  %s batch %d/%d (%d chunks)\n", color.GreenString("✓"), e.Number, e.Total, e.Size)
}

func printIndexReport(cmd *cobra.Command, r *domain.IndexReport) {
	if r.Attached {
		cmd.Printf("%s Attached to existing index (%d entries)\n", color.GreenString("✓"), r.Stored)
		return
	}

	cmd.Printf("%s Indexed %d files into %d chunks\n", color.GreenString("✓"), r.Files, r.Chunks)
	cmd.Printf("  Batches: %d\n", r.Batches)
	if r.FailedBatches > 0 {
		cmd.Printf("  %s\n", color.YellowString("Failed batches: %d (re-run with --rebuild to retry)", r.FailedBatches))
	}
	cmd.Printf("  Stored entries: %d\n", r.Stored)
}
