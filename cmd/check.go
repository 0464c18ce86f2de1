package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/abhisek/vocabdrill/internal/config"
	"github.com/abhisek/vocabdrill/internal/grading"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check [input]",
	Short: "Grade an answer against canonical answers (no database)",
	Long: `Grade free text against one or more canonical answers and print the
verdict and the ranked candidates.

With no input argument, each line read from stdin is graded in turn. Useful
for tuning --threshold and --model against real answers.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().StringArrayP("answer", "a", nil, "Canonical answer (repeatable, required)")
	checkCmd.Flags().Float64("threshold", 0, "Similarity percentage (0-100) needed for a near miss")
	checkCmd.Flags().String("model", "", "Matching model: linear or exponentialDecay")
	checkCmd.Flags().Float64("decay", 0, "Decay factor for the exponentialDecay model")
	_ = checkCmd.MarkFlagRequired("answer")
}

func runCheck(cmd *cobra.Command, args []string) error {
	answers, _ := cmd.Flags().GetStringArray("answer")

	cfg, err := config.ConfigFromEnv()
	if err != nil {
		return err
	}
	if err := applyGradingFlags(cmd, &cfg); err != nil {
		return fmt.Errorf("invalid grading options: %w", err)
	}
	ev := grading.NewEvaluator(cfg.Grading)
	out := cmd.OutOrStdout()

	if len(args) == 1 {
		return printEvaluation(out, ev, args[0], answers)
	}

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if err := printEvaluation(out, ev, line, answers); err != nil {
			return err
		}
		fmt.Fprintln(out)
	}
	return scanner.Err()
}

func printEvaluation(w io.Writer, ev *grading.Evaluator, input string, answers []string) error {
	res, err := ev.Evaluate(input, answers)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Input:   %s\n", input)
	fmt.Fprintf(w, "Verdict: %s (%.1f%%)\n", res.Verdict, res.Probability)
	fmt.Fprintf(w, "Best:    %s\n", res.BestMatch)
	if res.IsExactMatch {
		fmt.Fprintln(w, "Exact match after normalization.")
		return nil
	}
	for i, c := range res.Ranked {
		fmt.Fprintf(w, "  %d) %-40s %6.1f%%\n", i+1, c.Text, c.Probability)
	}
	return nil
}
