package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gradepilot/gradepilot/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	Long: `Write a commented .gradepilot.yaml into the current directory.

Example:
  gradepilot init
  gradepilot init --force   # overwrite an existing file`,
	RunE: runInit,
}

var initForce bool

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().BoolVar(&initForce, "force", false,
		"overwrite an existing config file")
}

func runInit(_ *cobra.Command, _ []string) error {
	path := ".gradepilot.yaml"

	if _, err := os.Stat(path); err == nil && !initForce {
		return fmt.Errorf("%s already exists, use --force to overwrite", path)
	}

	if err := config.AtomicWrite(path, []byte(config.DefaultConfigYAML)); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Printf("Wrote %s\n", path)
	fmt.Println("Set your Gemini API key via GRADEPILOT_GEMINI_API_KEY or the gemini.api_key field.")
	return nil
}
