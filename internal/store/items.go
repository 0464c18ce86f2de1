package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/abhisek/vocabdrill/internal/quiz"
)

// ItemFilter narrows ListItems. Zero fields match everything.
type ItemFilter struct {
	Level  int
	Lesson int
}

// ItemRepo stores practice items.
type ItemRepo struct {
	s *Store
}

// UpsertItems inserts or replaces items, keeping their slice order as the
// practice order within each lesson.
func (r *ItemRepo) UpsertItems(ctx context.Context, items []quiz.Item) (int, error) {
	tx, err := r.s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin upsert: %w", err)
	}
	defer tx.Rollback()

	q := r.s.rebind(`INSERT INTO items (id, prompt, answers_json, kind, level, lesson, position, hint, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
		  prompt = excluded.prompt,
		  answers_json = excluded.answers_json,
		  kind = excluded.kind,
		  level = excluded.level,
		  lesson = excluded.lesson,
		  position = excluded.position,
		  hint = excluded.hint`)

	now := time.Now().UnixMilli()
	for i, it := range items {
		answers, err := json.Marshal(it.Answers)
		if err != nil {
			return 0, fmt.Errorf("marshal answers for %q: %w", it.ID, err)
		}
		kind := it.Kind
		if kind == "" {
			kind = quiz.KindSentence
		}
		if _, err := tx.ExecContext(ctx, q,
			it.ID, it.Prompt, string(answers), string(kind),
			it.Level, it.Lesson, i, it.Hint, now,
		); err != nil {
			return 0, fmt.Errorf("upsert item %q: %w", it.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit upsert: %w", err)
	}
	return len(items), nil
}

// ListItems returns items matching f in practice order.
func (r *ItemRepo) ListItems(ctx context.Context, f ItemFilter) ([]quiz.Item, error) {
	q := `SELECT id, prompt, answers_json, kind, level, lesson, hint FROM items WHERE 1=1`
	var args []any
	if f.Level != 0 {
		q += ` AND level = ?`
		args = append(args, f.Level)
	}
	if f.Lesson != 0 {
		q += ` AND lesson = ?`
		args = append(args, f.Lesson)
	}
	q += ` ORDER BY level, lesson, position, id`

	rows, err := r.s.db.QueryContext(ctx, r.s.rebind(q), args...)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var items []quiz.Item
	for rows.Next() {
		var (
			it      quiz.Item
			answers string
			kind    string
		)
		if err := rows.Scan(&it.ID, &it.Prompt, &answers, &kind, &it.Level, &it.Lesson, &it.Hint); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		if err := json.Unmarshal([]byte(answers), &it.Answers); err != nil {
			return nil, fmt.Errorf("decode answers for %q: %w", it.ID, err)
		}
		it.Kind = quiz.Kind(kind)
		items = append(items, it)
	}
	return items, rows.Err()
}

// Count returns the number of stored items.
func (r *ItemRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM items`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count items: %w", err)
	}
	return n, nil
}
