package cmd

import (
	"fmt"

	"github.com/abhisek/vocabdrill/internal/itemsource"
	"github.com/abhisek/vocabdrill/internal/quiz"
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import <file>...",
	Short: "Import items from JSON or YAML files",
	Long: `Validate item files and save their items to the database. Items with an
existing ID are replaced, so re-importing an edited file updates it.

Every file is validated before anything is saved.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().Bool("dry-run", false, "Validate files without saving")
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	out := cmd.OutOrStdout()

	loaded := make([][]quiz.Item, len(args))
	for i, path := range args {
		items, err := itemsource.LoadFile(path)
		if err != nil {
			return err
		}
		loaded[i] = items
		fmt.Fprintf(out, "%s: %d items OK\n", path, len(items))
	}
	if dryRun {
		return nil
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log, err := newLogger(cfg, false)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer log.Sync()

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	total := 0
	for i, path := range args {
		n, err := st.Items().UpsertItems(ctx, loaded[i])
		if err != nil {
			return fmt.Errorf("import %s: %w", path, err)
		}
		log.Info("items imported", "file", path, "count", n)
		total += n
	}

	count, err := st.Items().Count(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\nImported %d items, %d in database\n", total, count)
	return nil
}
