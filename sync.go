package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Zhynem/FeedOrganizer/internal/engine"
	"github.com/Zhynem/FeedOrganizer/internal/organizer"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Pull recent videos from all tracked channels and classify new ones",
	Long: `Pull recent videos from every tracked channel, fetch metadata and
transcripts for videos not yet stored, classify them against the configured
categories, and persist the results.

Videos already in the store are skipped; a changed title is updated in place
without reclassification. Interrupting with Ctrl-C stops cleanly between
videos, keeping everything persisted so far.`,
	Run: func(cmd *cobra.Command, args []string) {
		showMetrics, _ := cmd.Flags().GetBool("metrics")

		st := openStore()
		defer st.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		runner := newRunner(st, progressPrinter(color.New(color.FgYellow)))
		if err := runner.Sync(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		green := color.New(color.FgGreen).SprintFunc()
		fmt.Printf("%s Sync complete\n", green("✓"))

		if showMetrics {
			fmt.Println(engine.FormatMetrics())
		}
	},
}

func init() {
	syncCmd.Flags().Bool("metrics", false, "Print request and classification counters after the run")
	rootCmd.AddCommand(syncCmd)
}

// progressPrinter renders job progress on a single rewritten terminal line.
// A negative fraction means the stage length is unknown; the empty label is
// the terminal signal.
func progressPrinter(c *color.Color) organizer.Progress {
	label := c.SprintFunc()
	var lastLen int
	return func(stage string, fraction float64) {
		if stage == "" {
			if lastLen > 0 {
				fmt.Println()
			}
			return
		}
		var line string
		if fraction < 0 {
			line = fmt.Sprintf("%s ...", label(stage))
		} else {
			line = fmt.Sprintf("%s %3.0f%%", label(stage), fraction*100)
		}
		pad := lastLen - len(line)
		if pad < 0 {
			pad = 0
		}
		fmt.Printf("\r%s%s", line, strings.Repeat(" ", pad))
		lastLen = len(line)
	}
}
