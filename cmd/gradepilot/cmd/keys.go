package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gradepilot/gradepilot/internal/adapters/llm"
)

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Generate and refine answer keys",
}

var keysGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate an answer key from a questionnaire",
	Long: `Generate an initial answer key for a questionnaire using Gemini.
The key is printed to stdout; review it before grading against it.

Example:
  gradepilot keys generate --questionnaire exam.txt > answer_key.txt`,
	RunE: runKeysGenerate,
}

var keysRefineCmd = &cobra.Command{
	Use:   "refine",
	Short: "Refine an existing answer key with instructions",
	Long: `Rewrite an answer key following free-form teacher instructions.

Example:
  gradepilot keys refine --key answer_key.txt --instructions "award partial credit for naming the process without the formula"`,
	RunE: runKeysRefine,
}

var (
	keysQuestionnaireFile string
	keysKeyFile           string
	keysInstructions      string
)

func init() {
	rootCmd.AddCommand(keysCmd)
	keysCmd.AddCommand(keysGenerateCmd)
	keysCmd.AddCommand(keysRefineCmd)

	keysGenerateCmd.Flags().StringVar(&keysQuestionnaireFile, "questionnaire", "",
		"file holding the questionnaire (required)")
	_ = keysGenerateCmd.MarkFlagRequired("questionnaire")

	keysRefineCmd.Flags().StringVar(&keysKeyFile, "key", "",
		"file holding the current answer key (required)")
	keysRefineCmd.Flags().StringVar(&keysInstructions, "instructions", "",
		"refinement instructions (required)")
	_ = keysRefineCmd.MarkFlagRequired("key")
	_ = keysRefineCmd.MarkFlagRequired("instructions")
}

func runKeysGenerate(cobraCmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	questionnaire, err := os.ReadFile(keysQuestionnaireFile)
	if err != nil {
		return fmt.Errorf("reading questionnaire: %w", err)
	}

	grader, err := llm.NewClient(cfg.Gemini, newLogger(cfg))
	if err != nil {
		return fmt.Errorf("configuring gemini client: %w", err)
	}

	key, err := grader.GenerateAnswerKey(cobraCmd.Context(), strings.TrimSpace(string(questionnaire)))
	if err != nil {
		return err
	}
	fmt.Println(key)
	return nil
}

func runKeysRefine(cobraCmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	currentKey, err := os.ReadFile(keysKeyFile)
	if err != nil {
		return fmt.Errorf("reading answer key: %w", err)
	}

	grader, err := llm.NewClient(cfg.Gemini, newLogger(cfg))
	if err != nil {
		return fmt.Errorf("configuring gemini client: %w", err)
	}

	key, err := grader.RefineAnswerKey(cobraCmd.Context(), strings.TrimSpace(string(currentKey)), keysInstructions)
	if err != nil {
		return err
	}
	fmt.Println(key)
	return nil
}
