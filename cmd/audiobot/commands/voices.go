package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jarod-johnson-23/audiobot/pkg/realtime"
)

var voicesCmd = &cobra.Command{
	Use:   "voices",
	Short: "List available voices",
	Run: func(cmd *cobra.Command, args []string) {
		for _, v := range realtime.Voices {
			fmt.Println(v)
		}
	},
}

func init() {
	rootCmd.AddCommand(voicesCmd)
}
