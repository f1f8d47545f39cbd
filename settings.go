package main

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Zhynem/FeedOrganizer/internal/engine"
	"github.com/Zhynem/FeedOrganizer/internal/store"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Inspect and change stored settings",
	Long: `Inspect and change settings kept in the database. Settings take
effect on the next sync or reclassify run.

Keys:
  ` + store.SettingModel + `            chat model name
  ` + store.SettingCtxSize + `         transcript budget in words fed to the model
  ` + store.SettingSystemPrompt + `    classification system prompt
  ` + store.SettingUserPrompt + `      classification user prompt
  ` + store.SettingCustomStopWords + ` comma-separated extra stop words
  ` + store.SettingYTAPIKey + `              metadata API key`,
}

var settingsLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List all settings",
	Run: func(cmd *cobra.Command, args []string) {
		st := openStore()
		defer st.Close()

		settings, err := st.Settings(context.Background())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		names := make([]string, 0, len(settings))
		for name := range settings {
			names = append(names, name)
		}
		sort.Strings(names)

		cyan := color.New(color.FgCyan).SprintFunc()
		for _, name := range names {
			fmt.Printf("%s = %s\n", cyan(name), engine.Truncate(settings[name], 80))
		}
	},
}

var settingsGetCmd = &cobra.Command{
	Use:   "get <name>",
	Short: "Print one setting value in full",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		st := openStore()
		defer st.Close()

		settings, err := st.Settings(context.Background())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		value, ok := settings[args[0]]
		if !ok {
			fmt.Fprintf(os.Stderr, "Error: unknown setting %q\n", args[0])
			os.Exit(1)
		}
		fmt.Println(value)
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <name> <value>",
	Short: "Set a setting value",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		st := openStore()
		defer st.Close()

		if err := st.PutSetting(context.Background(), args[0], args[1]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		green := color.New(color.FgGreen).SprintFunc()
		fmt.Printf("%s %s updated\n", green("✓"), args[0])
	},
}

func init() {
	settingsCmd.AddCommand(settingsLsCmd, settingsGetCmd, settingsSetCmd)
	rootCmd.AddCommand(settingsCmd)
}
