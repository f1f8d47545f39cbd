package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var reclassifyCmd = &cobra.Command{
	Use:   "reclassify",
	Short: "Rebuild category labels for stored videos",
	Long: `Throw away existing category assignments and classify videos again
from their stored transcripts, using the current prompts, stop words and
category set.

By default every stored video is reclassified in random order. With --video
only that one video is redone, leaving the rest untouched.

Examples:
  # Reclassify the whole library
  feedorganizer reclassify

  # Reclassify a single video
  feedorganizer reclassify --video dQw4w9WgXcQ`,
	Run: func(cmd *cobra.Command, args []string) {
		videoID, _ := cmd.Flags().GetString("video")

		st := openStore()
		defer st.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		runner := newRunner(st, progressPrinter(color.New(color.FgRed)))

		var err error
		if videoID != "" {
			err = runner.ReclassifyOne(ctx, videoID)
		} else {
			err = runner.Reclassify(ctx)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		green := color.New(color.FgGreen).SprintFunc()
		fmt.Printf("%s Reclassification complete\n", green("✓"))
	},
}

func init() {
	reclassifyCmd.Flags().String("video", "", "Reclassify only this video ID")
	rootCmd.AddCommand(reclassifyCmd)
}
