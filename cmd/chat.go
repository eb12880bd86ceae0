package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/weblave/weblave/internal/chat"
	"github.com/weblave/weblave/internal/relay"
)

var chatCmd = &cobra.Command{
	Use:   "chat <message>",
	Short: "Send a single prompt to the model",
	Long:  `Sends one prompt, optionally about a PDF document, and prints the reply.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		rel, err := newRelay(cfg, newLogger(cfg.Log))
		if err != nil {
			return err
		}

		var doc *relay.Document
		if path, _ := cmd.Flags().GetString("pdf"); path != "" {
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("reading %s: %w", path, err)
			}
			doc = &relay.Document{Name: filepath.Base(path), ContentType: chat.PDFContentType, Data: data}
		}

		reply, err := rel.Send(cmd.Context(), args[0], doc)
		if err != nil {
			var rerr *relay.Error
			if errors.As(err, &rerr) {
				return errors.New(rerr.Message)
			}
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), reply)
		return nil
	},
}

func init() {
	chatCmd.Flags().String("pdf", "", "PDF document to ask about")
	rootCmd.AddCommand(chatCmd)
}
