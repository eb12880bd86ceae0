package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/weblave/weblave/internal/chatbot"
	"github.com/weblave/weblave/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize weblave configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to configure the model provider and server, and writes a .weblave.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := config.RunWizard(cfgFile); err != nil {
			return err
		}
		fmt.Printf("Configuration saved to %s\n", cfgFile)
		return nil
	},
}

var chatbotCmd = &cobra.Command{
	Use:   "chatbot",
	Short: "Manage chatbot definitions",
}

var chatbotInitCmd = &cobra.Command{
	Use:   "init [file]",
	Short: "Create a chatbot definition with an interactive wizard",
	Long:  `Asks for a name, a welcome message, command rules and an optional Gemini API key, and writes a chatbot YAML file for "weblave generate".`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "chatbot.yml"
		if len(args) == 1 {
			path = args[0]
		}
		bot, err := chatbot.RunWizard(path)
		if err != nil {
			return err
		}
		fmt.Printf("Chatbot %q saved to %s with %d commands\n", bot.Name, path, len(bot.Commands))
		return nil
	},
}

func init() {
	chatbotCmd.AddCommand(chatbotInitCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(chatbotCmd)
}
