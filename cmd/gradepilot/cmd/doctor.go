package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gradepilot/gradepilot/internal/adapters/store"
	"github.com/gradepilot/gradepilot/internal/diagnostics"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the grading environment",
	Long:  "Verify that models, the grade store and the Gemini configuration are usable.",
	RunE:  runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	fmt.Println("Checking grading environment...")
	fmt.Println()

	ok := true

	// Similarity model files. Missing files degrade grading to Gemini-only
	// rather than breaking it, so they are warnings, not failures.
	fileChecks := []struct {
		name string
		path string
	}{
		{"base model", cfg.Similarity.ModelPath},
		{"tokenizer", cfg.Similarity.TokenizerPath},
		{"onnxruntime library", cfg.Similarity.OrtLibrary},
	}
	for _, check := range fileChecks {
		if fileExists(check.path) {
			fmt.Printf("  ✓ %s: %s\n", check.name, check.path)
		} else {
			fmt.Printf("  ○ %s missing: %s (grading degrades to Gemini only)\n", check.name, check.path)
		}
	}
	if fileExists(cfg.Similarity.FineTunedPath) {
		fmt.Printf("  ✓ fine-tuned model: %s\n", cfg.Similarity.FineTunedPath)
	} else {
		fmt.Printf("  ○ no fine-tuned model at %s (base model will be used)\n", cfg.Similarity.FineTunedPath)
	}
	fmt.Println()

	// Gemini configuration. Without a key there is no grading at all.
	if cfg.Gemini.APIKey != "" {
		fmt.Printf("  ✓ gemini api key configured (model %s)\n", cfg.Gemini.Model)
	} else {
		fmt.Println("  ✗ gemini api key not set (GRADEPILOT_GEMINI_API_KEY)")
		ok = false
	}
	fmt.Println()

	// Grade store.
	log := newLogger(cfg)
	if st, storeErr := store.NewStore(cfg.Store, log); storeErr == nil {
		fmt.Printf("  ✓ grade store ready (backend %s)\n", st.Backend())
		_ = st.Close()
	} else {
		fmt.Printf("  ✗ grade store unusable: %v\n", storeErr)
		ok = false
	}
	fmt.Println()

	// Host capacity.
	info := diagnostics.NewCollector().Collect()
	fmt.Printf("  system: %s, %d threads, %.0f MB memory available, %.0f GB disk free\n",
		info.CPUModel, info.CPUThreads, info.MemAvailableMB, info.DiskFreeGB)
	if len(info.GPUs) == 0 {
		fmt.Println("  ○ no GPU detected, the similarity model runs on CPU")
	}
	for _, gpu := range info.GPUs {
		if gpu.Nvidia {
			fmt.Printf("  ✓ NVIDIA GPU available for ONNX Runtime: %s\n", gpu.Name)
		} else {
			fmt.Printf("  ○ GPU detected but not usable by ONNX Runtime: %s\n", gpu.Name)
		}
	}
	if info.MemAvailableMB > 0 && info.MemAvailableMB < 512 {
		fmt.Println("  ⚠ less than 512 MB memory available, the embedding model may fail to load")
	}
	fmt.Println()

	if !ok {
		return fmt.Errorf("environment check failed")
	}
	fmt.Println("Environment ready for grading")
	return nil
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
