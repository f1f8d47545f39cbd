package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var videosCmd = &cobra.Command{
	Use:   "videos",
	Short: "List stored videos, optionally filtered by feed and category",
	Long: `List stored videos newest first. Feed filters match videos from any
of the named channels; category filters match only videos carrying every
named category.

Examples:
  # Everything, newest first
  feedorganizer videos

  # One channel
  feedorganizer videos --feed veritasium

  # Videos tagged both Science and Educational
  feedorganizer videos --category Science --category Educational`,
	Run: func(cmd *cobra.Command, args []string) {
		feeds, _ := cmd.Flags().GetStringSlice("feed")
		categories, _ := cmd.Flags().GetStringSlice("category")
		limit, _ := cmd.Flags().GetInt("limit")

		st := openStore()
		defer st.Close()

		ctx := context.Background()
		grid, err := st.VideoGrid(ctx, feeds, categories, limit)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if len(grid) == 0 {
			fmt.Println("No videos match the selected filters")
			return
		}

		cyan := color.New(color.FgCyan).SprintFunc()
		faint := color.New(color.Faint).SprintFunc()

		for _, v := range grid {
			fmt.Printf("%s  %s\n", cyan(v.VideoID), v.Title)
			fmt.Printf("    %s  %s  [%s]\n",
				faint(v.UploadDate), v.DisplayName, strings.Join(v.Categories, ", "))
			fmt.Printf("    %s\n", faint(v.URL))
		}
		fmt.Printf("\n%d video(s)\n", len(grid))
	},
}

func init() {
	videosCmd.Flags().StringSlice("feed", nil, "Only videos from this channel username (repeatable)")
	videosCmd.Flags().StringSlice("category", nil, "Only videos carrying this category; repeat to require several")
	videosCmd.Flags().Int("limit", 100, "Maximum number of videos to list")
	rootCmd.AddCommand(videosCmd)
}
