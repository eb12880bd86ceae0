package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/weblave/weblave/internal/chatbot"
	"github.com/weblave/weblave/internal/progress"
)

var generateCmd = &cobra.Command{
	Use:   "generate [glob...]",
	Short: "Generate embeddable snippets from chatbot definitions",
	Long: `Reads chatbot YAML definitions matching the given globs (default
"**/*.chatbot.yml") and writes one self-contained HTML snippet per bot.`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringP("output", "o", "snippets", "directory to write snippets to")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	start := time.Now()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg.Log)

	patterns := args
	if len(patterns) == 0 {
		patterns = []string{"**/*.chatbot.yml"}
	}
	files, err := matchBotFiles(patterns)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Println("No chatbot definitions found.")
		return nil
	}

	outDir, _ := cmd.Flags().GetString("output")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", outDir, err)
	}

	gen, err := newGenerator(cfg, logger)
	if err != nil {
		return err
	}

	reporter := progress.NewReporter()
	reporter.Start(len(files))
	for _, path := range files {
		err := generateOne(gen, path, outDir)
		if err != nil {
			logger.Debug().Err(err).Str("file", path).Msg("snippet generation failed")
		}
		reporter.Done(path, err)
	}
	sum := reporter.Finish()

	fmt.Printf("Generated %d of %d snippets in %s (%s)\n",
		sum.Generated(), sum.Total, outDir, time.Since(start).Round(time.Millisecond))
	if len(sum.Failed) > 0 {
		return fmt.Errorf("%d chatbot definitions failed: %s", len(sum.Failed), strings.Join(sum.Failed, ", "))
	}
	return nil
}

// matchBotFiles expands patterns into a sorted, de-duplicated file list.
func matchBotFiles(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	for _, p := range patterns {
		matches, err := doublestar.FilepathGlob(p, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", p, err)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
	}
	sort.Strings(files)
	return files, nil
}

// generateOne writes the snippet for the bot at path to outDir/<name>.html.
func generateOne(gen *chatbot.Generator, path, outDir string) error {
	bot, err := chatbot.Load(path)
	if err != nil {
		return err
	}
	snippet, err := gen.Generate(*bot)
	if err != nil {
		return err
	}
	base := filepath.Base(path)
	for _, ext := range []string{".yml", ".yaml", ".chatbot"} {
		base = strings.TrimSuffix(base, ext)
	}
	out := filepath.Join(outDir, base+".html")
	if err := os.WriteFile(out, []byte(snippet), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}
	return nil
}
