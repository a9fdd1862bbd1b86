package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/Veraticus/the-receipts-must-flow/internal/batch"
	"github.com/Veraticus/the-receipts-must-flow/internal/cli"
	"github.com/Veraticus/the-receipts-must-flow/internal/model"
)

func issueCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "issue [file]",
		Short: "Issue receipts for a message from the command line",
		Long: `Issue receipts for a message without going through LINE.
Reads stdin when no file is given. Receipts are written to output.dir.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runIssue,
	}

	cmd.Flags().String("date", "", "issue date (YYYY-MM-DD), today when empty")
	cmd.Flags().String("base-url", "", "print links under this URL instead of file paths")
	cmd.Flags().Bool("no-progress", false, "hide the progress bar")

	return cmd
}

func runIssue(cmd *cobra.Command, args []string) error {
	cfg, err := loadAppConfig()
	if err != nil {
		return err
	}

	today := time.Now()
	if date, _ := cmd.Flags().GetString("date"); date != "" {
		today, err = time.ParseInLocation("2006-01-02", date, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --date: %w", err)
		}
	}
	baseURL, _ := cmd.Flags().GetString("base-url")
	noProgress, _ := cmd.Flags().GetBool("no-progress")

	var path string
	if len(args) == 1 {
		path = args[0]
	}
	text, err := readLedger(path, cmd.InOrStdin())
	if err != nil {
		return err
	}

	interruptHandler := cli.NewInterruptHandler(os.Stderr, "Issuing")
	ctx := interruptHandler.HandleInterrupts(cmd.Context())

	renderer, orchestrator, err := newOrchestrator(cfg)
	if err != nil {
		return err
	}

	if !noProgress {
		var bar *progressbar.ProgressBar
		orchestrator.OnStart(func(total int) {
			bar = newProgressBar(os.Stderr, total)
		})
		orchestrator.OnOutcome(func(int) {
			if err := bar.Add(1); err != nil {
				slog.Warn("Failed to update progress bar", "error", err)
			}
		})
	}

	source := &deferredSource{cfg: cfg}
	defer source.Close()

	svc := batch.NewService(cfg.Groups, source, renderer, orchestrator, slog.Default()).
		WithClock(func() time.Time { return today })

	resp, err := svc.Handle(ctx, text, baseURL)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch resp.Kind {
	case batch.ResponseNoInstructions:
		_, err := fmt.Fprintln(out, cli.FormatWarning("No entries found")+"\n"+resp.Headline())
		return err
	case batch.ResponseInterrupted:
		if _, err := fmt.Fprintln(out, cli.FormatWarning(resp.Headline())); err != nil {
			return err
		}
	}

	result := resp.Result
	if _, err := fmt.Fprintln(out, formatResult(result, baseURL, cfg.OutputDir)); err != nil {
		return err
	}

	if len(result.Failures) > 0 {
		return fmt.Errorf("%d of %d receipts were not issued", len(result.Failures), result.Total())
	}
	return nil
}

func newProgressBar(w io.Writer, total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[magenta][bold]Issuing receipts...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[magenta]=[reset]",
			SaucerHead:    "[magenta]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			if _, err := fmt.Fprintln(w); err != nil {
				slog.Warn("Failed to write newline after progress bar", "error", err)
			}
		}),
	)
}

// formatResult summarizes a batch for the terminal.
func formatResult(result model.BatchResult, baseURL, outputDir string) string {
	var b strings.Builder

	for _, s := range result.Successes {
		line := batch.SuccessLine(s, baseURL)
		if baseURL == "" {
			line = fmt.Sprintf("%s %s %s → %s", s.Entry.Group, s.Entry.PayeeLabel, batch.FormatYen(s.Entry.Amount), s.Artifact.Path)
		}
		b.WriteString(cli.FormatSuccess(line) + "\n")
	}
	for _, f := range result.Failures {
		b.WriteString(cli.FormatError(batch.FailureLine(f)) + "\n")
	}

	summary := fmt.Sprintf("%d issued, %d not issued\nOutput: %s",
		len(result.Successes), len(result.Failures), outputDir)
	b.WriteString(cli.RenderBox("Summary", summary))

	return b.String()
}
