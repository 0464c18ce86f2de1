package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/abhisek/vocabdrill/internal/grading"
	"github.com/abhisek/vocabdrill/internal/progress"
	"github.com/abhisek/vocabdrill/internal/quiz"
)

// ProgressRepo records grades: the latest status per item plus an
// append-only grade event log.
type ProgressRepo struct {
	s *Store
}

var _ progress.Recorder = (*ProgressRepo)(nil)

// ItemProgress is the latest recorded state of one item.
type ItemProgress struct {
	ItemID      string
	Level       int
	Lesson      int
	Verdict     grading.Verdict
	Probability float64
	LastInput   string
	Attempts    int
	UpdatedAt   time.Time
}

// GradeRecord is one row of the grade event log.
type GradeRecord struct {
	Sequence int64
	quiz.GradeEvent
}

// LessonStat aggregates latest verdicts for one level/lesson.
type LessonStat struct {
	Level   int
	Lesson  int
	Items   int
	Perfect int
	Partial int
	Wrong   int
}

// Attempted is the number of items with a final verdict.
func (l LessonStat) Attempted() int {
	return l.Perfect + l.Partial + l.Wrong
}

// RecordGrade appends ev to the event log and updates the item's status.
func (r *ProgressRepo) RecordGrade(ctx context.Context, ev quiz.GradeEvent) error {
	seq, err := r.s.seq.Next(ctx)
	if err != nil {
		return err
	}

	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}
	ts := at.UnixMilli()
	status := ev.Verdict.StatusCode()

	tx, err := r.s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin record grade: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, r.s.rebind(`INSERT INTO grade_events
		(sequence, session_id, item_id, item_index, verdict, status, probability, input, level, lesson, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		seq, ev.SessionID, ev.ItemID, ev.Index, ev.Verdict.String(), status,
		ev.Probability, ev.Input, ev.Level, ev.Lesson, ts,
	)
	if err != nil {
		return fmt.Errorf("append grade event: %w", err)
	}

	_, err = tx.ExecContext(ctx, r.s.rebind(`INSERT INTO progress
		(item_id, level, lesson, status, probability, last_input, attempts, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, 1, ?)
		ON CONFLICT (item_id) DO UPDATE SET
		  level = excluded.level,
		  lesson = excluded.lesson,
		  status = excluded.status,
		  probability = excluded.probability,
		  last_input = excluded.last_input,
		  attempts = progress.attempts + 1,
		  updated_at = excluded.updated_at`),
		ev.ItemID, ev.Level, ev.Lesson, status, ev.Probability, ev.Input, ts,
	)
	if err != nil {
		return fmt.Errorf("update progress: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit record grade: %w", err)
	}
	return nil
}

// ItemProgress returns the latest state of itemID; false if never graded.
func (r *ProgressRepo) ItemProgress(ctx context.Context, itemID string) (ItemProgress, bool, error) {
	var (
		p       ItemProgress
		status  int
		updated int64
	)
	err := r.s.db.QueryRowContext(ctx, r.s.rebind(`SELECT item_id, level, lesson, status, probability, last_input, attempts, updated_at
		FROM progress WHERE item_id = ?`), itemID,
	).Scan(&p.ItemID, &p.Level, &p.Lesson, &status, &p.Probability, &p.LastInput, &p.Attempts, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return ItemProgress{}, false, nil
	}
	if err != nil {
		return ItemProgress{}, false, fmt.Errorf("item progress %q: %w", itemID, err)
	}
	p.Verdict = grading.VerdictFromStatus(status)
	p.UpdatedAt = time.UnixMilli(updated)
	return p, true, nil
}

// VerdictCounts tallies the latest verdict of every graded item.
func (r *ProgressRepo) VerdictCounts(ctx context.Context) (map[grading.Verdict]int, error) {
	rows, err := r.s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM progress GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("verdict counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[grading.Verdict]int)
	for rows.Next() {
		var status, n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan verdict count: %w", err)
		}
		counts[grading.VerdictFromStatus(status)] += n
	}
	return counts, rows.Err()
}

// LessonStats aggregates latest verdicts per stored level/lesson.
func (r *ProgressRepo) LessonStats(ctx context.Context) ([]LessonStat, error) {
	rows, err := r.s.db.QueryContext(ctx, `SELECT i.level, i.lesson, COUNT(*),
		  SUM(CASE WHEN p.status = 1 THEN 1 ELSE 0 END),
		  SUM(CASE WHEN p.status = 2 THEN 1 ELSE 0 END),
		  SUM(CASE WHEN p.status = -1 THEN 1 ELSE 0 END)
		FROM items i LEFT JOIN progress p ON p.item_id = i.id
		GROUP BY i.level, i.lesson
		ORDER BY i.level, i.lesson`)
	if err != nil {
		return nil, fmt.Errorf("lesson stats: %w", err)
	}
	defer rows.Close()

	var stats []LessonStat
	for rows.Next() {
		var l LessonStat
		if err := rows.Scan(&l.Level, &l.Lesson, &l.Items, &l.Perfect, &l.Partial, &l.Wrong); err != nil {
			return nil, fmt.Errorf("scan lesson stat: %w", err)
		}
		stats = append(stats, l)
	}
	return stats, rows.Err()
}

// RecentGrades returns up to limit grade events, newest first.
func (r *ProgressRepo) RecentGrades(ctx context.Context, limit int) ([]GradeRecord, error) {
	rows, err := r.s.db.QueryContext(ctx, r.s.rebind(`SELECT sequence, session_id, item_id, item_index, verdict, probability, input, level, lesson, created_at
		FROM grade_events ORDER BY sequence DESC LIMIT ?`), limit)
	if err != nil {
		return nil, fmt.Errorf("recent grades: %w", err)
	}
	defer rows.Close()

	var out []GradeRecord
	for rows.Next() {
		var (
			g       GradeRecord
			verdict string
			created int64
		)
		if err := rows.Scan(&g.Sequence, &g.SessionID, &g.ItemID, &g.Index, &verdict,
			&g.Probability, &g.Input, &g.Level, &g.Lesson, &created); err != nil {
			return nil, fmt.Errorf("scan grade: %w", err)
		}
		v, err := grading.ParseVerdict(verdict)
		if err != nil {
			return nil, err
		}
		g.Verdict = v
		g.At = time.UnixMilli(created)
		out = append(out, g)
	}
	return out, rows.Err()
}
