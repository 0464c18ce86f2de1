package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/abhisek/vocabdrill/internal/progress"
)

// BookmarkRepo saves resume positions per practice scope.
type BookmarkRepo struct {
	s *Store
}

var _ progress.BookmarkStore = (*BookmarkRepo)(nil)

func (r *BookmarkRepo) SaveBookmark(ctx context.Context, b progress.Bookmark) error {
	saved := b.SavedAt
	if saved.IsZero() {
		saved = time.Now()
	}
	_, err := r.s.db.ExecContext(ctx, r.s.rebind(`INSERT INTO bookmarks (scope, item_index, session_id, saved_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (scope) DO UPDATE SET
		  item_index = excluded.item_index,
		  session_id = excluded.session_id,
		  saved_at = excluded.saved_at`),
		b.Scope, b.Index, b.SessionID, saved.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("save bookmark %q: %w", b.Scope, err)
	}
	return nil
}

func (r *BookmarkRepo) Bookmark(ctx context.Context, scope string) (progress.Bookmark, bool, error) {
	var (
		b     progress.Bookmark
		saved int64
	)
	err := r.s.db.QueryRowContext(ctx, r.s.rebind(`SELECT scope, item_index, session_id, saved_at
		FROM bookmarks WHERE scope = ?`), scope,
	).Scan(&b.Scope, &b.Index, &b.SessionID, &saved)
	if errors.Is(err, sql.ErrNoRows) {
		return progress.Bookmark{}, false, nil
	}
	if err != nil {
		return progress.Bookmark{}, false, fmt.Errorf("load bookmark %q: %w", scope, err)
	}
	b.SavedAt = time.UnixMilli(saved)
	return b, true, nil
}
