package commands

import (
	"encoding/json"
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/devtycoon/forge/compiler"
)

// LanguagesCmd lists compile targets and what each can express
var LanguagesCmd = &cobra.Command{
	Use:   "languages",
	Short: "List compile targets",
	RunE: func(cmd *cobra.Command, args []string) error {
		langs := compiler.Languages()

		if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
			data, err := json.MarshalIndent(langs, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal languages: %w", err)
			}
			fmt.Println(string(data))
			return nil
		}

		rows := pterm.TableData{{"Language", "File", "Handlers", "Timers", "Entry"}}
		for _, l := range langs {
			rows = append(rows, []string{
				l.Name,
				l.Filename,
				yesNo(l.Capabilities.SupportsClosures, "inline", "annotated"),
				yesNo(l.Capabilities.AsyncTimers, "callback", "sleep"),
				yesNo(l.Capabilities.RequiresEntry, "always", "with event-start"),
			})
		}
		return pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
	},
}

func init() {
	LanguagesCmd.Flags().BoolP("json", "j", false, "Output as JSON")
}

func yesNo(b bool, yes, no string) string {
	if b {
		return yes
	}
	return no
}
