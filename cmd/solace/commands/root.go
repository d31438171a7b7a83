package commands

import "github.com/spf13/cobra"

var rootCmd = &cobra.Command{
	Use:   "solace",
	Short: "Telegram relay bot for supportive AI conversations",
	Long: `Solace relays Telegram messages to the OpenAI chat-completions API
with a fixed supportive-listener persona and a short rolling history per
conversation, and sends the generated reply back to the user.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newVersionCmd())
	return rootCmd.Execute()
}
