package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/finrag/internal/core/domain"
)

var (
	askPretty   bool
	askTrace    bool
	askDownload bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question from the filings",
	Long: `Answers a financial question using the indexed 10-K filings.

The answer is printed as minified JSON with the keys query, answer,
reasoning, sub_queries and sources. When the model does not return JSON
the text is wrapped as {"raw": "..."}.

Without a question the default is asked:
  ` + domain.DefaultQuestion,
	Args: cobra.MaximumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askPretty, "pretty", false, "render the answer and sources as text")
	askCmd.Flags().BoolVar(&askTrace, "trace", false, "print tool calls to stderr")
	askCmd.Flags().BoolVar(&askDownload, "download", false, "download missing filings first")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	question := domain.DefaultQuestion
	if len(args) == 1 && strings.TrimSpace(args[0]) != "" {
		question = strings.TrimSpace(args[0])
	}

	if askDownload {
		if err := runFetch(cmd, nil); err != nil {
			return err
		}
	}

	svc, err := readyServices(ctx)
	if err != nil {
		return err
	}
	if svc.Agent == nil {
		return fmt.Errorf("agent not configured")
	}

	var out string
	if askTrace {
		result, err := svc.Agent.Run(ctx, question)
		if err != nil {
			return fmt.Errorf("ask failed: %w", err)
		}
		printTranscript(cmd.ErrOrStderr(), result)
		out = result.JSON
	} else {
		out = svc.Agent.Ask(ctx, question)
	}

	if askPretty {
		printAnswer(cmd, out)
		return nil
	}
	cmd.Println(out)
	return nil
}

func printTranscript(w io.Writer, result *domain.RunResult) {
	for i, rec := range result.Transcript {
		fmt.Fprintf(w, "[%d] %s(%s)\n", i+1, rec.ToolName, rec.Input)
		fmt.Fprintf(w, "%s\n\n", indent(rec.Output, "    "))
	}
	fmt.Fprintf(w, "%d tool-calling steps", result.Steps)
	if result.StepLimited {
		fmt.Fprint(w, " (step limit reached)")
	}
	if result.UnverifiedSources > 0 {
		fmt.Fprintf(w, ", %d unverified sources", result.UnverifiedSources)
	}
	fmt.Fprintln(w)
}

func printAnswer(cmd *cobra.Command, out string) {
	env, text := domain.DecodeAnswer(out)
	if env == nil {
		cmd.Println(text)
		return
	}

	heading := color.New(color.Bold)
	muted := color.New(color.Faint)

	cmd.Println(heading.Sprint("Q: ") + env.Query)
	cmd.Println()
	cmd.Println(env.Answer)
	if env.Reasoning != "" {
		cmd.Println()
		cmd.Println(muted.Sprint(env.Reasoning))
	}
	if len(env.SubQueries) > 0 {
		cmd.Println()
		cmd.Println(heading.Sprint("Searched:"))
		for _, q := range env.SubQueries {
			cmd.Printf("  - %s\n", q)
		}
	}
	if len(env.Sources) > 0 {
		cmd.Println()
		cmd.Println(heading.Sprint("Sources:"))
		for i, src := range env.Sources {
			cmd.Printf("  [%d] %s %s, page %d (%s)\n", i+1, src.Ticker, src.Year, src.Page, src.File)
			if src.Excerpt != "" {
				cmd.Printf("      %s\n", muted.Sprint(oneLine(src.Excerpt)))
			}
		}
	}
}

func indent(s, prefix string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
