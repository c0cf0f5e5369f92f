// Package store provides the on-device SQLite store for the study app.
//
// The store is the presentation source of truth: the UI layer reads
// questions and answer history from here, and the sync engine reconciles
// it against the remote store in the background.
//
// The database runs in embedded mode using go-sqlite3 with WAL enabled,
// so background sync writes never block foreground reads.
//
// Collections:
//   - questions: the question bank (admin-curated, mirrored from remote)
//   - history: answer attempts (append-only, user-owned)
//   - meta: small string key-value cache (sync fingerprint, source
//     marker, per-question memos), surviving process restarts
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tossh23/architect-study-app/internal/model"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// Store wraps the SQLite connection with study-app specific operations.
type Store struct {
	conn *sql.DB
	path string
}

// Open creates a new store at the specified path.
//
// The database is opened in embedded mode with WAL for concurrent reads.
// If the database doesn't exist, it is created; call InitSchema before
// first use. The caller MUST call Close() when done.
//
// Example:
//
//	st, err := store.Open(filepath.Join(dataDir, "study.db"))
//	if err != nil {
//	    return err
//	}
//	defer st.Close()
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	conn, err := sql.Open("sqlite3", fmt.Sprintf("file:%s", path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	conn.SetMaxOpenConns(10)
	conn.SetMaxIdleConns(2)
	conn.SetConnMaxLifetime(5 * time.Minute)

	st := &Store{conn: conn, path: path}

	if _, err := st.conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := st.conn.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}
	if _, err := st.conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return st, nil
}

// RawDB returns the underlying sql.DB connection.
func (s *Store) RawDB() *sql.DB {
	return s.conn
}

// Close closes the store, checkpointing the WAL first.
func (s *Store) Close() error {
	if s.conn == nil {
		return nil
	}
	if _, err := s.conn.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to checkpoint WAL: %v\n", err)
	}
	if err := s.conn.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	s.conn = nil
	return nil
}

// InitSchema creates the tables and indexes if they don't exist.
// Idempotent - safe to call on every startup.
func (s *Store) InitSchema() error {
	return s.InitSchemaContext(context.Background())
}

// InitSchemaContext creates the schema with context support.
func (s *Store) InitSchemaContext(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS questions (
		id TEXT PRIMARY KEY,
		year INTEGER NOT NULL,
		subject INTEGER NOT NULL,
		question_number INTEGER NOT NULL,
		question_text TEXT NOT NULL,
		choices TEXT NOT NULL,            -- JSON array of 4
		correct_answer INTEGER NOT NULL,
		explanation TEXT NOT NULL DEFAULT '',
		question_images TEXT,             -- JSON array
		explanation_images TEXT,          -- JSON array
		choice_images TEXT,               -- JSON array of 4
		field TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS history (
		id TEXT PRIMARY KEY,
		question_id TEXT NOT NULL,
		answered_at TEXT NOT NULL,
		selected_answer INTEGER NOT NULL,
		is_correct INTEGER NOT NULL
	);

	-- Persistent string cache for sync markers and memos
	CREATE TABLE IF NOT EXISTS meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_questions_subject ON questions(subject);
	CREATE INDEX IF NOT EXISTS idx_questions_year ON questions(year);
	CREATE INDEX IF NOT EXISTS idx_questions_subject_year
	    ON questions(subject, year);

	CREATE INDEX IF NOT EXISTS idx_history_question ON history(question_id);
	CREATE INDEX IF NOT EXISTS idx_history_answered ON history(answered_at);
	CREATE INDEX IF NOT EXISTS idx_history_correct ON history(is_correct);
	`

	if _, err := s.conn.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

const questionColumns = `id, year, subject, question_number, question_text,
	choices, correct_answer, explanation, question_images,
	explanation_images, choice_images, field, created_at, updated_at`

// PutQuestion inserts or updates a question.
func (s *Store) PutQuestion(q *model.Question) error {
	return s.PutQuestionContext(context.Background(), q)
}

// PutQuestionContext inserts or updates a question with context support.
func (s *Store) PutQuestionContext(ctx context.Context, q *model.Question) error {
	if err := q.Validate(); err != nil {
		return fmt.Errorf("invalid question: %w", err)
	}
	return s.putQuestionTx(ctx, s.conn, q)
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func (s *Store) putQuestionTx(ctx context.Context, ex execer, q *model.Question) error {
	choicesJSON, err := json.Marshal(q.Choices)
	if err != nil {
		return fmt.Errorf("failed to marshal choices: %w", err)
	}
	qImages, err := json.Marshal(q.QuestionImages)
	if err != nil {
		return fmt.Errorf("failed to marshal question images: %w", err)
	}
	eImages, err := json.Marshal(q.ExplanationImages)
	if err != nil {
		return fmt.Errorf("failed to marshal explanation images: %w", err)
	}
	cImages, err := json.Marshal(q.ChoiceImages)
	if err != nil {
		return fmt.Errorf("failed to marshal choice images: %w", err)
	}

	query := `
	INSERT INTO questions (` + questionColumns + `)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		year = excluded.year,
		subject = excluded.subject,
		question_number = excluded.question_number,
		question_text = excluded.question_text,
		choices = excluded.choices,
		correct_answer = excluded.correct_answer,
		explanation = excluded.explanation,
		question_images = excluded.question_images,
		explanation_images = excluded.explanation_images,
		choice_images = excluded.choice_images,
		field = excluded.field,
		updated_at = excluded.updated_at
	`

	_, err = ex.ExecContext(ctx, query,
		q.ID,
		q.Year,
		int(q.Subject),
		q.QuestionNumber,
		q.QuestionText,
		string(choicesJSON),
		q.CorrectAnswer,
		q.Explanation,
		string(qImages),
		string(eImages),
		string(cImages),
		q.Field,
		q.CreatedAt.Format(time.RFC3339Nano),
		q.UpdatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert question %s: %w", q.ID, err)
	}
	return nil
}

// GetQuestion retrieves a single question by id.
// Returns sql.ErrNoRows if the question is not found.
func (s *Store) GetQuestion(id string) (*model.Question, error) {
	return s.GetQuestionContext(context.Background(), id)
}

// GetQuestionContext retrieves a single question with context support.
func (s *Store) GetQuestionContext(ctx context.Context, id string) (*model.Question, error) {
	row := s.conn.QueryRowContext(ctx,
		`SELECT `+questionColumns+` FROM questions WHERE id = ?`, id)
	return scanQuestionRow(row)
}

// DeleteQuestion removes a question from the store.
// Returns nil if the question doesn't exist (idempotent).
func (s *Store) DeleteQuestion(id string) error {
	return s.DeleteQuestionContext(context.Background(), id)
}

// DeleteQuestionContext removes a question with context support.
func (s *Store) DeleteQuestionContext(ctx context.Context, id string) error {
	if _, err := s.conn.ExecContext(ctx, `DELETE FROM questions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete question %s: %w", id, err)
	}
	return nil
}

// GetAllQuestions returns the full question bank.
func (s *Store) GetAllQuestions() ([]*model.Question, error) {
	return s.GetAllQuestionsContext(context.Background())
}

// GetAllQuestionsContext returns the full question bank with context support.
// Results are ordered by year descending, then subject, then number,
// matching the question list presentation order.
func (s *Store) GetAllQuestionsContext(ctx context.Context) ([]*model.Question, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT `+questionColumns+` FROM questions
		 ORDER BY year DESC, subject ASC, question_number ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query questions: %w", err)
	}
	defer rows.Close()
	return scanQuestions(rows)
}

// QuestionsBySubject returns all questions for one subject.
func (s *Store) QuestionsBySubject(ctx context.Context, subject model.Subject) ([]*model.Question, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT `+questionColumns+` FROM questions WHERE subject = ?
		 ORDER BY year DESC, question_number ASC`, int(subject))
	if err != nil {
		return nil, fmt.Errorf("failed to query questions by subject: %w", err)
	}
	defer rows.Close()
	return scanQuestions(rows)
}

// QuestionsByYear returns all questions for one exam year.
func (s *Store) QuestionsByYear(ctx context.Context, year int) ([]*model.Question, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT `+questionColumns+` FROM questions WHERE year = ?
		 ORDER BY subject ASC, question_number ASC`, year)
	if err != nil {
		return nil, fmt.Errorf("failed to query questions by year: %w", err)
	}
	defer rows.Close()
	return scanQuestions(rows)
}

// QuestionsByYearAndSubject returns questions matching both filters,
// using the composite index.
func (s *Store) QuestionsByYearAndSubject(ctx context.Context, year int, subject model.Subject) ([]*model.Question, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT `+questionColumns+` FROM questions
		 WHERE subject = ? AND year = ?
		 ORDER BY question_number ASC`, int(subject), year)
	if err != nil {
		return nil, fmt.Errorf("failed to query questions by year and subject: %w", err)
	}
	defer rows.Close()
	return scanQuestions(rows)
}

// ClearQuestions removes the entire question bank.
func (s *Store) ClearQuestions() error {
	return s.ClearQuestionsContext(context.Background())
}

// ClearQuestionsContext removes the entire question bank with context support.
func (s *Store) ClearQuestionsContext(ctx context.Context) error {
	if _, err := s.conn.ExecContext(ctx, `DELETE FROM questions`); err != nil {
		return fmt.Errorf("failed to clear questions: %w", err)
	}
	return nil
}

// PutQuestionsBatch upserts a set of questions in a single transaction.
func (s *Store) PutQuestionsBatch(questions []*model.Question) error {
	return s.PutQuestionsBatchContext(context.Background(), questions)
}

// PutQuestionsBatchContext upserts questions in one transaction with context support.
func (s *Store) PutQuestionsBatchContext(ctx context.Context, questions []*model.Question) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, q := range questions {
		if err := q.Validate(); err != nil {
			return fmt.Errorf("invalid question %s: %w", q.ID, err)
		}
		if err := s.putQuestionTx(ctx, tx, q); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit question batch: %w", err)
	}
	return nil
}

// ReplaceQuestions atomically clears the question bank and inserts the
// given set in the same transaction. This is the full-replace path of
// question-bank reconciliation: readers see either the old bank or the
// new bank, never a partially written one.
func (s *Store) ReplaceQuestions(ctx context.Context, questions []*model.Question) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM questions`); err != nil {
		return fmt.Errorf("failed to clear questions: %w", err)
	}
	for _, q := range questions {
		if err := q.Validate(); err != nil {
			return fmt.Errorf("invalid question %s: %w", q.ID, err)
		}
		if err := s.putQuestionTx(ctx, tx, q); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit question replacement: %w", err)
	}
	return nil
}

// QuestionCount returns the number of questions in the bank.
func (s *Store) QuestionCount() (int, error) {
	return s.QuestionCountContext(context.Background())
}

// QuestionCountContext returns the question count with context support.
func (s *Store) QuestionCountContext(ctx context.Context) (int, error) {
	var count int
	if err := s.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM questions`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count questions: %w", err)
	}
	return count, nil
}

func scanQuestions(rows *sql.Rows) ([]*model.Question, error) {
	var questions []*model.Question
	for rows.Next() {
		q, err := scanQuestionRow(rows)
		if err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating questions: %w", err)
	}
	return questions, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanQuestionRow(row rowScanner) (*model.Question, error) {
	var q model.Question
	var subject int
	var choicesJSON, qImages, eImages, cImages string
	var createdAt, updatedAt string

	err := row.Scan(
		&q.ID,
		&q.Year,
		&subject,
		&q.QuestionNumber,
		&q.QuestionText,
		&choicesJSON,
		&q.CorrectAnswer,
		&q.Explanation,
		&qImages,
		&eImages,
		&cImages,
		&q.Field,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	q.Subject = model.Subject(subject)

	if err := json.Unmarshal([]byte(choicesJSON), &q.Choices); err != nil {
		return nil, fmt.Errorf("failed to unmarshal choices for %s: %w", q.ID, err)
	}
	if qImages != "" && qImages != "null" {
		if err := json.Unmarshal([]byte(qImages), &q.QuestionImages); err != nil {
			return nil, fmt.Errorf("failed to unmarshal question images for %s: %w", q.ID, err)
		}
	}
	if eImages != "" && eImages != "null" {
		if err := json.Unmarshal([]byte(eImages), &q.ExplanationImages); err != nil {
			return nil, fmt.Errorf("failed to unmarshal explanation images for %s: %w", q.ID, err)
		}
	}
	if cImages != "" && cImages != "null" {
		if err := json.Unmarshal([]byte(cImages), &q.ChoiceImages); err != nil {
			return nil, fmt.Errorf("failed to unmarshal choice images for %s: %w", q.ID, err)
		}
	}

	if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		q.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339Nano, updatedAt); err == nil {
		q.UpdatedAt = t
	}

	return &q, nil
}

// InsertHistory inserts a single answer attempt.
// Entries are immutable; inserting an id that already exists is a no-op.
func (s *Store) InsertHistory(h *model.HistoryEntry) error {
	return s.InsertHistoryContext(context.Background(), h)
}

// InsertHistoryContext inserts an attempt with context support.
func (s *Store) InsertHistoryContext(ctx context.Context, h *model.HistoryEntry) error {
	if err := h.Validate(); err != nil {
		return fmt.Errorf("invalid history entry: %w", err)
	}
	return insertHistoryTx(ctx, s.conn, h)
}

func insertHistoryTx(ctx context.Context, ex execer, h *model.HistoryEntry) error {
	query := `
	INSERT OR IGNORE INTO history
		(id, question_id, answered_at, selected_answer, is_correct)
	VALUES (?, ?, ?, ?, ?)
	`
	isCorrect := 0
	if h.IsCorrect {
		isCorrect = 1
	}
	if _, err := ex.ExecContext(ctx, query,
		h.ID,
		h.QuestionID,
		h.AnsweredAt.Format(time.RFC3339Nano),
		h.SelectedAnswer,
		isCorrect,
	); err != nil {
		return fmt.Errorf("failed to insert history entry %s: %w", h.ID, err)
	}
	return nil
}

// PutHistoryBatch inserts a set of attempts in one transaction.
// Existing ids are left untouched (insert-or-ignore), so download
// batches from sync are idempotent.
func (s *Store) PutHistoryBatch(entries []*model.HistoryEntry) error {
	return s.PutHistoryBatchContext(context.Background(), entries)
}

// PutHistoryBatchContext inserts attempts in one transaction with context support.
func (s *Store) PutHistoryBatchContext(ctx context.Context, entries []*model.HistoryEntry) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, h := range entries {
		if err := h.Validate(); err != nil {
			return fmt.Errorf("invalid history entry %s: %w", h.ID, err)
		}
		if err := insertHistoryTx(ctx, tx, h); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit history batch: %w", err)
	}
	return nil
}

// OverwriteHistory force-puts attempts by id, replacing existing rows.
// Used only by snapshot import, which trusts the file contents.
func (s *Store) OverwriteHistory(ctx context.Context, entries []*model.HistoryEntry) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
	INSERT INTO history
		(id, question_id, answered_at, selected_answer, is_correct)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		question_id = excluded.question_id,
		answered_at = excluded.answered_at,
		selected_answer = excluded.selected_answer,
		is_correct = excluded.is_correct
	`
	for _, h := range entries {
		if err := h.Validate(); err != nil {
			return fmt.Errorf("invalid history entry %s: %w", h.ID, err)
		}
		isCorrect := 0
		if h.IsCorrect {
			isCorrect = 1
		}
		if _, err := tx.ExecContext(ctx, query,
			h.ID,
			h.QuestionID,
			h.AnsweredAt.Format(time.RFC3339Nano),
			h.SelectedAnswer,
			isCorrect,
		); err != nil {
			return fmt.Errorf("failed to overwrite history entry %s: %w", h.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit history overwrite: %w", err)
	}
	return nil
}

// GetAllHistory returns every recorded attempt.
func (s *Store) GetAllHistory() ([]*model.HistoryEntry, error) {
	return s.GetAllHistoryContext(context.Background())
}

// GetAllHistoryContext returns every attempt with context support,
// ordered by answer time ascending.
func (s *Store) GetAllHistoryContext(ctx context.Context) ([]*model.HistoryEntry, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT id, question_id, answered_at, selected_answer, is_correct
		 FROM history ORDER BY answered_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()
	return scanHistory(rows)
}

// HistoryByQuestion returns all attempts for one question.
func (s *Store) HistoryByQuestion(ctx context.Context, questionID string) ([]*model.HistoryEntry, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT id, question_id, answered_at, selected_answer, is_correct
		 FROM history WHERE question_id = ? ORDER BY answered_at ASC`, questionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query history for question %s: %w", questionID, err)
	}
	defer rows.Close()
	return scanHistory(rows)
}

// ClearHistory removes every recorded attempt. Questions are kept.
func (s *Store) ClearHistory() error {
	return s.ClearHistoryContext(context.Background())
}

// ClearHistoryContext removes every attempt with context support.
func (s *Store) ClearHistoryContext(ctx context.Context) error {
	if _, err := s.conn.ExecContext(ctx, `DELETE FROM history`); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

// HistoryCount returns the number of recorded attempts.
func (s *Store) HistoryCount() (int, error) {
	return s.HistoryCountContext(context.Background())
}

// HistoryCountContext returns the attempt count with context support.
func (s *Store) HistoryCountContext(ctx context.Context) (int, error) {
	var count int
	if err := s.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM history`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count history: %w", err)
	}
	return count, nil
}

func scanHistory(rows *sql.Rows) ([]*model.HistoryEntry, error) {
	var entries []*model.HistoryEntry
	for rows.Next() {
		var h model.HistoryEntry
		var answeredAt string
		var isCorrect int

		if err := rows.Scan(&h.ID, &h.QuestionID, &answeredAt, &h.SelectedAnswer, &isCorrect); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		if t, err := time.Parse(time.RFC3339Nano, answeredAt); err == nil {
			h.AnsweredAt = t
		}
		h.IsCorrect = isCorrect != 0

		entries = append(entries, &h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating history: %w", err)
	}
	return entries, nil
}

// GetMeta reads a value from the persistent string cache.
// Returns ("", nil) when the key is absent.
func (s *Store) GetMeta(ctx context.Context, key string) (string, error) {
	var value string
	err := s.conn.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read meta %s: %w", key, err)
	}
	return value, nil
}

// SetMeta writes a value to the persistent string cache.
func (s *Store) SetMeta(ctx context.Context, key, value string) error {
	query := `
	INSERT INTO meta (key, value) VALUES (?, ?)
	ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`
	if _, err := s.conn.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("failed to write meta %s: %w", key, err)
	}
	return nil
}

// DeleteMeta removes a key from the persistent string cache.
// Returns nil if the key doesn't exist (idempotent).
func (s *Store) DeleteMeta(ctx context.Context, key string) error {
	if _, err := s.conn.ExecContext(ctx, `DELETE FROM meta WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete meta %s: %w", key, err)
	}
	return nil
}

const memoKeyPrefix = "memo:"

// GetMemos returns all per-question memos stored locally.
func (s *Store) GetMemos(ctx context.Context) (model.Memos, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT key, value FROM meta WHERE key LIKE ?`, memoKeyPrefix+"%")
	if err != nil {
		return nil, fmt.Errorf("failed to query memos: %w", err)
	}
	defer rows.Close()

	memos := make(model.Memos)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan memo: %w", err)
		}
		memos[strings.TrimPrefix(key, memoKeyPrefix)] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating memos: %w", err)
	}
	return memos, nil
}

// SetMemo stores a memo for a question. Empty text deletes the memo,
// mirroring the remote representation where deletion is absence.
func (s *Store) SetMemo(ctx context.Context, questionID, text string) error {
	if strings.TrimSpace(text) == "" {
		return s.DeleteMeta(ctx, memoKeyPrefix+questionID)
	}
	return s.SetMeta(ctx, memoKeyPrefix+questionID, text)
}

// GetMemo returns the memo for one question, or "" when absent.
func (s *Store) GetMemo(ctx context.Context, questionID string) (string, error) {
	return s.GetMeta(ctx, memoKeyPrefix+questionID)
}
