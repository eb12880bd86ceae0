package chatbot

import (
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
)

// RunWizard asks for a bot definition interactively and saves it to path.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Let's build a chatbot. Leave the trigger empty to finish adding commands.")
	fmt.Println()

	draft := NewDraft()

	namePrompt := promptui.Prompt{Label: "Name", Default: "My Chatbot"}
	name, err := namePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("name: %w", err)
	}
	draft.Name = strings.TrimSpace(name)

	welcomePrompt := promptui.Prompt{Label: "Welcome message", Default: DefaultWelcome}
	welcome, err := welcomePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("welcome message: %w", err)
	}
	draft.WelcomeMessage = strings.TrimSpace(welcome)

	for {
		triggerPrompt := promptui.Prompt{Label: fmt.Sprintf("Command %d trigger (e.g. 'pricing')", len(draft.Commands)+1)}
		trigger, err := triggerPrompt.Run()
		if err != nil {
			return nil, fmt.Errorf("trigger: %w", err)
		}
		if strings.TrimSpace(trigger) == "" {
			break
		}
		responsePrompt := promptui.Prompt{
			Label: "Response",
			Validate: func(s string) error {
				if strings.TrimSpace(s) == "" {
					return fmt.Errorf("response is required")
				}
				return nil
			},
		}
		response, err := responsePrompt.Run()
		if err != nil {
			return nil, fmt.Errorf("response: %w", err)
		}
		draft.Commands, err = draft.Commands.Add(strings.TrimSpace(trigger), strings.TrimSpace(response))
		if err != nil {
			return nil, err
		}
	}

	aiPrompt := promptui.Select{
		Label: "Enable AI responses (Gemini API)",
		Items: []string{"No", "Yes"},
	}
	_, choice, err := aiPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("ai toggle: %w", err)
	}
	draft.SetAI(choice == "Yes")

	if draft.UseAI {
		keyPrompt := promptui.Prompt{
			Label: "Gemini API key",
			Mask:  '*',
			Validate: func(s string) error {
				if strings.TrimSpace(s) == "" {
					return fmt.Errorf("an API key is required for AI responses")
				}
				return nil
			},
		}
		key, err := keyPrompt.Run()
		if err != nil {
			return nil, fmt.Errorf("api key: %w", err)
		}
		draft.APIKey = strings.TrimSpace(key)
	}

	cfg := draft.Bot()
	if err := cfg.Save(path); err != nil {
		return nil, err
	}
	fmt.Printf("\nChatbot saved to %s\n", path)
	return &cfg, nil
}
