// Package archive keeps an append-only record of finished play-throughs in
// SQLite and answers aggregate questions about them.
package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/jwebster45206/hotspot-trainer/pkg/grading"
	"github.com/jwebster45206/hotspot-trainer/pkg/state"
)

// ErrDuplicate is returned when a session has already been archived.
var ErrDuplicate = errors.New("session already archived")

// connPragmas run on every connection. Foreign keys are off by default in
// SQLite, and completion_badges relies on them for ON DELETE CASCADE.
const connPragmas = "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"

// timeLayout is fixed-width so text comparison in SQL orders correctly.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Completion is one archived run.
type Completion struct {
	SessionID        uuid.UUID `json:"sessionId"`
	UserID           string    `json:"userId"`
	ScenarioID       string    `json:"scenarioId"`
	Difficulty       string    `json:"difficulty"`
	SafetyPoints     int       `json:"safetyPoints"`
	RiskPoints       int       `json:"riskPoints"`
	DecisionsCount   int       `json:"decisionsCount"`
	CorrectDecisions int       `json:"correctDecisions"`
	Grade            string    `json:"grade"`
	BadgeIDs         []string  `json:"badgeIds"`
	StartedAt        time.Time `json:"startedAt"`
	CompletedAt      time.Time `json:"completedAt"`
}

// CompletionFromSession builds the archive row for a completed session.
func CompletionFromSession(gs state.GameSession) (Completion, error) {
	if gs.CompletedAt == nil {
		return Completion{}, fmt.Errorf("session %s is not completed", gs.ID)
	}
	ids := make([]string, 0, len(gs.Badges))
	for _, b := range gs.Badges {
		ids = append(ids, b.ID)
	}
	return Completion{
		SessionID:        gs.ID,
		UserID:           gs.UserID,
		ScenarioID:       gs.ScenarioID,
		Difficulty:       string(gs.Difficulty),
		SafetyPoints:     gs.Score.SafetyPoints,
		RiskPoints:       gs.Score.RiskPoints,
		DecisionsCount:   gs.Score.DecisionsCount,
		CorrectDecisions: gs.Score.CorrectDecisions,
		Grade:            grading.CalculateGrade(gs.Score).Grade,
		BadgeIDs:         ids,
		StartedAt:        gs.StartedAt,
		CompletedAt:      *gs.CompletedAt,
	}, nil
}

// Stats aggregates completions, optionally for one user.
type Stats struct {
	UserID          string         `json:"userId,omitempty"`
	Completions     int            `json:"completions"`
	AverageSafety   float64        `json:"averageSafety"`
	AverageRisk     float64        `json:"averageRisk"`
	Accuracy        float64        `json:"accuracy"` // correct / decisions over all runs
	GradeCounts     map[string]int `json:"gradeCounts"`
	BadgeCounts     map[string]int `json:"badgeCounts"`
	ScenarioCounts  map[string]int `json:"scenarioCounts"`
	LastCompletedAt *time.Time     `json:"lastCompletedAt,omitempty"`
}

// Store wraps a SQLite connection for the completion archive.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the SQLite database and runs migrations.
func NewStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("archive: mkdir %s: %w", filepath.Dir(path), err)
	}

	db, err := sql.Open("sqlite", path+connPragmas)
	if err != nil {
		return nil, fmt.Errorf("archive: open db: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("archive: migrate: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)`); err != nil {
		return err
	}

	var version int
	if err := s.db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&version); err != nil {
		return err
	}

	if version < 1 {
		if _, err := s.db.Exec(`
			CREATE TABLE IF NOT EXISTS completions (
				session_id        TEXT    PRIMARY KEY,
				user_id           TEXT    NOT NULL DEFAULT '',
				scenario_id       TEXT    NOT NULL,
				difficulty        TEXT    NOT NULL DEFAULT '',
				safety_points     INTEGER NOT NULL DEFAULT 0,
				risk_points       INTEGER NOT NULL DEFAULT 0,
				decisions_count   INTEGER NOT NULL DEFAULT 0,
				correct_decisions INTEGER NOT NULL DEFAULT 0,
				grade             TEXT    NOT NULL,
				started_at        TEXT    NOT NULL,
				completed_at      TEXT    NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_completions_user     ON completions(user_id);
			CREATE INDEX IF NOT EXISTS idx_completions_scenario ON completions(scenario_id);
		`); err != nil {
			return err
		}
		if _, err := s.db.Exec(`INSERT INTO schema_version (version) VALUES (1)`); err != nil {
			return err
		}
	}

	if version < 2 {
		if _, err := s.db.Exec(`
			CREATE TABLE IF NOT EXISTS completion_badges (
				session_id TEXT NOT NULL REFERENCES completions(session_id) ON DELETE CASCADE,
				badge_id   TEXT NOT NULL,
				UNIQUE(session_id, badge_id)
			);
			CREATE INDEX IF NOT EXISTS idx_completion_badges_badge ON completion_badges(badge_id);
		`); err != nil {
			return err
		}
		if _, err := s.db.Exec(`INSERT INTO schema_version (version) VALUES (2)`); err != nil {
			return err
		}
	}

	return nil
}

// Version returns the applied schema version.
func (s *Store) Version(ctx context.Context) (int, error) {
	var v int
	err := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&v)
	return v, err
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}

// RecordCompletion appends c. Archiving the same session twice returns
// ErrDuplicate and leaves the first row in place.
func (s *Store) RecordCompletion(ctx context.Context, c Completion) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("archive: begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO completions (session_id, user_id, scenario_id, difficulty, safety_points, risk_points,
			decisions_count, correct_decisions, grade, started_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id) DO NOTHING`,
		c.SessionID.String(), c.UserID, c.ScenarioID, c.Difficulty, c.SafetyPoints, c.RiskPoints,
		c.DecisionsCount, c.CorrectDecisions, c.Grade,
		c.StartedAt.UTC().Format(timeLayout), c.CompletedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("archive: insert completion: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrDuplicate, c.SessionID)
	}

	for _, id := range c.BadgeIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO completion_badges (session_id, badge_id) VALUES (?, ?)`,
			c.SessionID.String(), id); err != nil {
			return fmt.Errorf("archive: insert badge: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("archive: commit: %w", err)
	}
	return nil
}

// Stats aggregates every archived run for userID, or all runs when userID
// is empty.
func (s *Store) Stats(ctx context.Context, userID string) (Stats, error) {
	st := Stats{
		UserID:         userID,
		GradeCounts:    map[string]int{},
		BadgeCounts:    map[string]int{},
		ScenarioCounts: map[string]int{},
	}

	where, args := "", []any{}
	if userID != "" {
		where, args = "WHERE user_id = ?", []any{userID}
	}

	var (
		avgSafety, avgRisk sql.NullFloat64
		decisions, correct sql.NullInt64
		last               sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), AVG(safety_points), AVG(risk_points),
			SUM(decisions_count), SUM(correct_decisions), MAX(completed_at)
		FROM completions `+where, args...).
		Scan(&st.Completions, &avgSafety, &avgRisk, &decisions, &correct, &last)
	if err != nil {
		return Stats{}, fmt.Errorf("archive: stats: %w", err)
	}
	if st.Completions == 0 {
		return st, nil
	}

	st.AverageSafety = avgSafety.Float64
	st.AverageRisk = avgRisk.Float64
	if decisions.Int64 > 0 {
		st.Accuracy = float64(correct.Int64) / float64(decisions.Int64)
	}
	if last.Valid {
		if t, err := time.Parse(timeLayout, last.String); err == nil {
			st.LastCompletedAt = &t
		}
	}

	if err := s.countInto(ctx, st.GradeCounts,
		`SELECT grade, COUNT(*) FROM completions `+where+` GROUP BY grade`, args...); err != nil {
		return Stats{}, err
	}
	if err := s.countInto(ctx, st.ScenarioCounts,
		`SELECT scenario_id, COUNT(*) FROM completions `+where+` GROUP BY scenario_id`, args...); err != nil {
		return Stats{}, err
	}

	badgeQuery := `SELECT b.badge_id, COUNT(*) FROM completion_badges b
		JOIN completions c ON c.session_id = b.session_id`
	if userID != "" {
		badgeQuery += ` WHERE c.user_id = ?`
	}
	if err := s.countInto(ctx, st.BadgeCounts, badgeQuery+` GROUP BY b.badge_id`, args...); err != nil {
		return Stats{}, err
	}

	return st, nil
}

// Recent returns the newest completions, newest first.
func (s *Store) Recent(ctx context.Context, userID string, limit int) ([]Completion, error) {
	if limit <= 0 {
		limit = 20
	}
	where, args := "", []any{}
	if userID != "" {
		where, args = "WHERE c.user_id = ?", []any{userID}
	}
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, `
		SELECT c.session_id, c.user_id, c.scenario_id, c.difficulty, c.safety_points, c.risk_points,
			c.decisions_count, c.correct_decisions, c.grade, c.started_at, c.completed_at,
			COALESCE((SELECT json_group_array(badge_id) FROM completion_badges b WHERE b.session_id = c.session_id), '[]')
		FROM completions c `+where+`
		ORDER BY c.completed_at DESC
		LIMIT ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("archive: recent: %w", err)
	}
	defer rows.Close()

	var out []Completion
	for rows.Next() {
		var (
			c                  Completion
			id, started, ended string
			badges             string
		)
		if err := rows.Scan(&id, &c.UserID, &c.ScenarioID, &c.Difficulty, &c.SafetyPoints, &c.RiskPoints,
			&c.DecisionsCount, &c.CorrectDecisions, &c.Grade, &started, &ended, &badges); err != nil {
			return nil, fmt.Errorf("archive: scan: %w", err)
		}
		if c.SessionID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("archive: bad session id %q: %w", id, err)
		}
		c.StartedAt, _ = time.Parse(timeLayout, started)
		c.CompletedAt, _ = time.Parse(timeLayout, ended)
		if err := json.Unmarshal([]byte(badges), &c.BadgeIDs); err != nil {
			return nil, fmt.Errorf("archive: decode badges: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) countInto(ctx context.Context, dst map[string]int, query string, args ...any) error {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("archive: count: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			key string
			n   int
		)
		if err := rows.Scan(&key, &n); err != nil {
			return fmt.Errorf("archive: scan count: %w", err)
		}
		dst[key] = n
	}
	return rows.Err()
}
