package cmd

import (
	"fmt"
	"strings"

	"github.com/abhisek/vocabdrill/internal/grading"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show practice statistics",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().Int("recent", 10, "Number of recent grades to show")
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	recent, _ := cmd.Flags().GetInt("recent")
	out := cmd.OutOrStdout()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	lessons, err := st.Progress().LessonStats(ctx)
	if err != nil {
		return err
	}
	if len(lessons) == 0 {
		fmt.Fprintln(out, "No items yet. Import some with `vocabdrill import <file>`.")
		return nil
	}

	fmt.Fprintf(out, "%5s  %6s  %5s  %7s  %7s  %5s  %s\n",
		"Level", "Lesson", "Items", "Perfect", "Partial", "Wrong", "Done")
	fmt.Fprintln(out, strings.Repeat("─", 56))
	for _, l := range lessons {
		done := 0.0
		if l.Items > 0 {
			done = float64(l.Attempted()) / float64(l.Items) * 100
		}
		fmt.Fprintf(out, "%5d  %6d  %5d  %7d  %7d  %5d  %3.0f%%\n",
			l.Level, l.Lesson, l.Items, l.Perfect, l.Partial, l.Wrong, done)
	}

	counts, err := st.Progress().VerdictCounts(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\nLatest verdicts: ✓ %d  ~ %d  ✗ %d\n",
		counts[grading.Perfect], counts[grading.Partial], counts[grading.Wrong])

	if recent <= 0 {
		return nil
	}
	grades, err := st.Progress().RecentGrades(ctx, recent)
	if err != nil {
		return err
	}
	if len(grades) == 0 {
		return nil
	}
	fmt.Fprintln(out, "\nRecent grades:")
	for _, g := range grades {
		input := g.Input
		if len([]rune(input)) > 30 {
			input = string([]rune(input)[:27]) + "..."
		}
		fmt.Fprintf(out, "  %s  %-12s  %-8s  %5.1f%%  %s\n",
			g.At.Local().Format("2006-01-02 15:04"), g.ItemID, g.Verdict, g.Probability, input)
	}
	return nil
}
