package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var feedsCmd = &cobra.Command{
	Use:   "feeds",
	Short: "Manage tracked channels",
}

var feedsAddCmd = &cobra.Command{
	Use:   "add <username> [display name]",
	Short: "Track a channel by its handle",
	Args:  cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		username := args[0]
		display := username
		if len(args) == 2 {
			display = args[1]
		}

		st := openStore()
		defer st.Close()

		if err := st.AddFeed(context.Background(), username, display); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		green := color.New(color.FgGreen).SprintFunc()
		fmt.Printf("%s Tracking @%s\n", green("✓"), username)
	},
}

var feedsRmCmd = &cobra.Command{
	Use:   "rm <username>",
	Short: "Stop tracking a channel and delete its stored videos",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		st := openStore()
		defer st.Close()

		if err := st.DeleteFeed(context.Background(), args[0]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		green := color.New(color.FgGreen).SprintFunc()
		fmt.Printf("%s Removed @%s and its videos\n", green("✓"), args[0])
	},
}

var feedsLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List tracked channels",
	Run: func(cmd *cobra.Command, args []string) {
		st := openStore()
		defer st.Close()

		feeds, err := st.Feeds(context.Background())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if len(feeds) == 0 {
			fmt.Println("No channels tracked")
			return
		}
		cyan := color.New(color.FgCyan).SprintFunc()
		for _, f := range feeds {
			fmt.Printf("%s  %s\n", cyan("@"+f.Username), f.DisplayName)
		}
	},
}

func init() {
	feedsCmd.AddCommand(feedsAddCmd, feedsRmCmd, feedsLsCmd)
	rootCmd.AddCommand(feedsCmd)
}
