package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "Manage the category labels offered to the classifier",
}

var categoriesAddCmd = &cobra.Command{
	Use:   "add <label> [display name]",
	Short: "Add a category label",
	Long: `Add a category label. The label is what the model picks from; the
optional display name is what listings show (defaults to the label).`,
	Args: cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		label := args[0]
		display := label
		if len(args) == 2 {
			display = args[1]
		}

		st := openStore()
		defer st.Close()

		if err := st.AddCategory(context.Background(), label, display); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		green := color.New(color.FgGreen).SprintFunc()
		fmt.Printf("%s Added category %q\n", green("✓"), label)
	},
}

var categoriesRmCmd = &cobra.Command{
	Use:   "rm <label>",
	Short: "Remove a category label and its video assignments",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		st := openStore()
		defer st.Close()

		if err := st.DeleteCategory(context.Background(), args[0]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		green := color.New(color.FgGreen).SprintFunc()
		fmt.Printf("%s Removed category %q\n", green("✓"), args[0])
	},
}

var categoriesLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List category labels",
	Run: func(cmd *cobra.Command, args []string) {
		st := openStore()
		defer st.Close()

		cats, err := st.Categories(context.Background())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if len(cats) == 0 {
			fmt.Println("No categories defined")
			return
		}
		cyan := color.New(color.FgCyan).SprintFunc()
		for _, c := range cats {
			if c.LLMCategory == c.DisplayCategory {
				fmt.Println(cyan(c.LLMCategory))
				continue
			}
			fmt.Printf("%s  (%s)\n", cyan(c.LLMCategory), c.DisplayCategory)
		}
	},
}

func init() {
	categoriesCmd.AddCommand(categoriesAddCmd, categoriesRmCmd, categoriesLsCmd)
	rootCmd.AddCommand(categoriesCmd)
}
