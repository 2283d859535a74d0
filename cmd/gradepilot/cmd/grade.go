package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gradepilot/gradepilot/internal/adapters/embed"
	"github.com/gradepilot/gradepilot/internal/adapters/llm"
	"github.com/gradepilot/gradepilot/internal/adapters/store"
	"github.com/gradepilot/gradepilot/internal/core"
	"github.com/gradepilot/gradepilot/internal/service"
)

var gradeCmd = &cobra.Command{
	Use:   "grade",
	Short: "Grade a single submission from the command line",
	Long: `Grade one student answer against an answer key without starting the
server. The result is stored in the configured grade store and printed.

Examples:
  gradepilot grade --student "Ada Lovelace" --key answer_key.txt --answer submission.txt

  # Skip the similarity model for this run
  gradepilot grade --student Bob --key key.txt --answer sub.txt --gemini-only`,
	RunE: runGrade,
}

var (
	gradeStudent    string
	gradeKeyFile    string
	gradeAnswerFile string
	gradeTitle      string
	gradeCourse     string
	gradeAssignment string
	gradeGeminiOnly bool
	gradeJSON       bool
)

func init() {
	rootCmd.AddCommand(gradeCmd)

	gradeCmd.Flags().StringVar(&gradeStudent, "student", "", "student name (required)")
	gradeCmd.Flags().StringVar(&gradeKeyFile, "key", "", "file holding the answer key (required)")
	gradeCmd.Flags().StringVar(&gradeAnswerFile, "answer", "", "file holding the student answer (required)")
	gradeCmd.Flags().StringVar(&gradeTitle, "title", "", "assignment title")
	gradeCmd.Flags().StringVar(&gradeCourse, "course", "", "course id")
	gradeCmd.Flags().StringVar(&gradeAssignment, "assignment", "", "assignment id")
	gradeCmd.Flags().BoolVar(&gradeGeminiOnly, "gemini-only", false, "grade with Gemini alone")
	gradeCmd.Flags().BoolVar(&gradeJSON, "json", false, "print the full result as JSON")

	_ = gradeCmd.MarkFlagRequired("student")
	_ = gradeCmd.MarkFlagRequired("key")
	_ = gradeCmd.MarkFlagRequired("answer")
}

func runGrade(cobraCmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	answerKey, err := os.ReadFile(gradeKeyFile)
	if err != nil {
		return fmt.Errorf("reading answer key: %w", err)
	}
	studentAnswer, err := os.ReadFile(gradeAnswerFile)
	if err != nil {
		return fmt.Errorf("reading student answer: %w", err)
	}

	gradeStore, err := store.NewStore(cfg.Store, log)
	if err != nil {
		return fmt.Errorf("opening grade store: %w", err)
	}
	defer gradeStore.Close()

	var scorer core.SimilarityScorer
	if cfg.Grading.HybridEnabled && !gradeGeminiOnly {
		embedScorer := embed.NewScorer(cfg.Similarity, log)
		defer embedScorer.Close()
		scorer = embedScorer
	}

	grader, err := llm.NewClient(cfg.Gemini, log)
	if err != nil {
		return fmt.Errorf("configuring gemini client: %w", err)
	}

	svc := service.New(cfg.Grading, scorer, grader, gradeStore, log)

	result, err := svc.GradeSubmission(cobraCmd.Context(), service.GradeSubmissionRequest{
		CourseID:        gradeCourse,
		AssignmentID:    gradeAssignment,
		AssignmentTitle: gradeTitle,
		StudentName:     gradeStudent,
		AnswerKey:       strings.TrimSpace(string(answerKey)),
		StudentAnswer:   strings.TrimSpace(string(studentAnswer)),
		GeminiOnly:      gradeGeminiOnly,
	})
	if err != nil {
		return err
	}

	if gradeJSON {
		return json.NewEncoder(os.Stdout).Encode(result)
	}
	printGradeResult(result)
	return nil
}

func printGradeResult(result *service.GradeResult) {
	recon := result.Reconciliation

	fmt.Printf("Grade: %d/100 (%s confidence)\n", recon.FinalGrade, recon.Confidence)
	fmt.Printf("Method: %s\n", recon.Method)
	if recon.MiniLMGrade != nil {
		fmt.Printf("Similarity grade: %d, Gemini grade: %d\n", *recon.MiniLMGrade, recon.GeminiGrade)
	}
	if recon.NeedsReview {
		fmt.Println("Needs review: the grading signals disagree")
	}
	fmt.Println()
	fmt.Println("Justification:", result.Record.Justification)
	fmt.Println("Feedback:", result.Record.Feedback)
	if !result.Stored {
		fmt.Println()
		fmt.Println("Warning: the grade could not be stored")
	}
}
