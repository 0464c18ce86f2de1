package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/abhisek/vocabdrill/internal/app"
	"github.com/abhisek/vocabdrill/internal/config"
	"github.com/abhisek/vocabdrill/internal/grading"
	"github.com/abhisek/vocabdrill/internal/itemsource"
	"github.com/abhisek/vocabdrill/internal/logger"
	"github.com/abhisek/vocabdrill/internal/progress"
	"github.com/abhisek/vocabdrill/internal/quiz"
	"github.com/abhisek/vocabdrill/internal/screens/drill"
	"github.com/abhisek/vocabdrill/internal/store"
	"github.com/abhisek/vocabdrill/internal/textmatch"
	"github.com/spf13/cobra"
)

// bookmarkTTL bounds how long a Redis bookmark survives without practice.
const bookmarkTTL = 30 * 24 * time.Hour

// drainTimeout bounds how long play waits for queued grades after the TUI exits.
const drainTimeout = 15 * time.Second

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Start a drill session",
	Long: `Start an interactive drill over stored items, or over an item file.

Items loaded with --file are saved to the database first so that stats and
resume work for them too.`,
	Args: cobra.NoArgs,
	RunE: runPlay,
}

func init() {
	addPlayFlags(playCmd)
}

func addPlayFlags(cmd *cobra.Command) {
	cmd.Flags().String("file", "", "Load items from a JSON or YAML file")
	cmd.Flags().Int("level", 0, "Only drill items at this level (0 = all)")
	cmd.Flags().Int("lesson", 0, "Only drill items in this lesson (0 = all)")
	cmd.Flags().Float64("threshold", 0, "Similarity percentage (0-100) needed for a near miss")
	cmd.Flags().String("model", "", "Matching model: linear or exponentialDecay")
	cmd.Flags().Float64("decay", 0, "Decay factor for the exponentialDecay model")
	cmd.Flags().Bool("resume", false, "Continue from the saved bookmark for this selection")
	cmd.Flags().Bool("accept-partial", false, "Record accepted near misses as partial instead of perfect")
}

// applyGradingFlags overrides grading config with flags the user set.
func applyGradingFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("threshold") {
		cfg.Grading.Threshold, _ = flags.GetFloat64("threshold")
	}
	if flags.Changed("decay") {
		cfg.Grading.DecayFactor, _ = flags.GetFloat64("decay")
	}
	if flags.Changed("model") {
		v, _ := flags.GetString("model")
		m, err := textmatch.ParseModel(v)
		if err != nil {
			return err
		}
		cfg.Grading.Model = m
	}
	return cfg.Grading.Validate()
}

func runPlay(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := applyGradingFlags(cmd, &cfg); err != nil {
		return fmt.Errorf("invalid grading options: %w", err)
	}

	log, err := newLogger(cfg, true)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer log.Sync()

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	file, _ := cmd.Flags().GetString("file")
	level, _ := cmd.Flags().GetInt("level")
	lesson, _ := cmd.Flags().GetInt("lesson")
	resume, _ := cmd.Flags().GetBool("resume")
	acceptPartial, _ := cmd.Flags().GetBool("accept-partial")

	items, err := loadItems(ctx, st, file, level, lesson)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return errors.New("no items to drill: import a file with `vocabdrill import` or pass --file")
	}
	log.Info("drill starting", "items", len(items), "level", level, "lesson", lesson, "driver", st.Driver())

	bookmarks, closeBookmarks, err := bookmarkStore(cfg, st, log)
	if err != nil {
		return err
	}
	defer closeBookmarks()

	scope := progress.Scope(level, lesson)
	resumeAt := 0
	if resume {
		b, ok, err := bookmarks.Bookmark(ctx, scope)
		if err != nil {
			return fmt.Errorf("load bookmark: %w", err)
		}
		if ok {
			resumeAt = b.Index
			log.Info("resuming", "scope", scope, "index", b.Index, "saved_at", b.SavedAt)
		}
	}

	recorders := progress.Fanout{
		st.Progress(),
		&progress.BookmarkRecorder{Store: bookmarks, Scope: scope},
	}
	if cfg.AMQP.URL != "" {
		pub, err := progress.NewAMQPRecorder(cfg.AMQP.URL, cfg.AMQP.Queue)
		if err != nil {
			return fmt.Errorf("connect to AMQP broker: %w", err)
		}
		defer pub.Close()
		recorders = append(recorders, pub)
		log.Info("publishing grades", "queue", cfg.AMQP.Queue)
	}

	var prog *app.Program
	disp := progress.NewDispatcher(recorders,
		progress.WithLogger(log),
		progress.WithFailureHandler(func(pe *progress.PersistenceError) {
			prog.Send(drill.PersistFailedMsg{Err: pe})
		}),
	)

	scr, err := drill.New(items,
		quiz.WithEmitter(disp),
		quiz.WithEvaluator(grading.NewEvaluator(cfg.Grading)),
		quiz.WithResumeAt(resumeAt),
		quiz.WithAcceptAsPartial(acceptPartial),
	)
	if err != nil {
		_ = disp.Close(ctx)
		return fmt.Errorf("start drill: %w", err)
	}

	prog = app.NewProgram(scr)
	runErr := prog.Run()

	drainCtx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()
	if err := disp.Close(drainCtx); err != nil {
		log.Warn("grades still pending at exit", "error", err)
	}
	if runErr != nil {
		return runErr
	}

	sum := scr.Session().Summary()
	fmt.Fprintf(cmd.OutOrStdout(), "Perfect %d · Partial %d · Wrong %d · Unanswered %d (of %d)\n",
		sum.Perfect, sum.Partial, sum.Wrong, sum.Unanswered, sum.Total)
	return nil
}

// loadItems reads items from file (saving them to the store) or from the
// store, filtered by level and lesson.
func loadItems(ctx context.Context, st *store.Store, file string, level, lesson int) ([]quiz.Item, error) {
	if file == "" {
		items, err := st.Items().ListItems(ctx, store.ItemFilter{Level: level, Lesson: lesson})
		if err != nil {
			return nil, fmt.Errorf("list items: %w", err)
		}
		return items, nil
	}

	items, err := itemsource.LoadFile(file)
	if err != nil {
		return nil, err
	}
	if _, err := st.Items().UpsertItems(ctx, items); err != nil {
		return nil, fmt.Errorf("save items: %w", err)
	}
	return itemsource.Filter(items, level, lesson), nil
}

// bookmarkStore picks Redis when configured, otherwise the SQL store.
func bookmarkStore(cfg config.Config, st *store.Store, log *logger.Logger) (progress.BookmarkStore, func(), error) {
	if cfg.Redis.Addr == "" {
		return st.Bookmarks(), func() {}, nil
	}
	rb, err := progress.NewRedisBookmarks(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, bookmarkTTL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to redis: %w", err)
	}
	log.Info("using redis bookmarks", "addr", cfg.Redis.Addr)
	return rb, func() { _ = rb.Close() }, nil
}
