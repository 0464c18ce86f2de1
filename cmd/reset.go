package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset learner data",
	Long: `Delete recorded progress, grade history and bookmarks. Imported items
are kept unless --all is given.`,
	Args: cobra.NoArgs,
	RunE: runReset,
}

func init() {
	resetCmd.Flags().Bool("all", false, "Also delete imported items")
	resetCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
}

func runReset(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	all, _ := cmd.Flags().GetBool("all")
	yes, _ := cmd.Flags().GetBool("yes")
	out := cmd.OutOrStdout()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if !yes {
		what := "progress, grade history and bookmarks"
		if all {
			what += " and all items"
		}
		fmt.Fprintf(out, "This deletes %s. Continue? [y/N] ", what)
		scanner := bufio.NewScanner(cmd.InOrStdin())
		if !scanner.Scan() || !strings.EqualFold(strings.TrimSpace(scanner.Text()), "y") {
			fmt.Fprintln(out, "Aborted.")
			return nil
		}
	}

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.Reset(ctx, all); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	if cfg.Redis.Addr != "" {
		fmt.Fprintln(out, "Note: bookmarks cached in Redis expire on their own.")
	}
	fmt.Fprintln(out, "Done.")
	return nil
}
