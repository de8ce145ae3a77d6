package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"vnkey/internal/customdict"
)

// Store represents the SQLite word and macro store.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database at the given path and runs migrations.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := MigrateDB(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// AddWord inserts a custom word. Adding an existing word is a no-op.
func (s *Store) AddWord(ctx context.Context, kind customdict.Kind, word string) error {
	word = customdict.Normalize(word)
	if word == "" {
		return fmt.Errorf("add word: empty word")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO custom_words (word, kind, added_at) VALUES (?, ?, ?)
		ON CONFLICT (word, kind) DO NOTHING`,
		word, string(kind), time.Now().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("add word: %w", err)
	}
	return nil
}

// RemoveWord deletes a custom word.
func (s *Store) RemoveWord(ctx context.Context, kind customdict.Kind, word string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM custom_words WHERE word = ? AND kind = ?`, customdict.Normalize(word), string(kind))
	if err != nil {
		return fmt.Errorf("remove word: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Words lists custom words ordered by kind then word. An empty kind lists both.
func (s *Store) Words(ctx context.Context, kind customdict.Kind) ([]Word, error) {
	query := `SELECT id, word, kind, added_at FROM custom_words`
	var args []any
	if kind != "" {
		query += ` WHERE kind = ?`
		args = append(args, string(kind))
	}
	query += ` ORDER BY kind, word`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query words: %w", err)
	}
	defer rows.Close()

	var words []Word
	for rows.Next() {
		var w Word
		var k string
		if err := rows.Scan(&w.ID, &w.Word, &k, &w.AddedAt); err != nil {
			return nil, fmt.Errorf("scan word: %w", err)
		}
		w.Kind = customdict.Kind(k)
		words = append(words, w)
	}
	return words, rows.Err()
}

// SetMacro creates or replaces a macro.
func (s *Store) SetMacro(ctx context.Context, key, expansion string) error {
	key = customdict.Normalize(key)
	if key == "" || expansion == "" {
		return fmt.Errorf("set macro: key and expansion are required")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO macros (key, expansion, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET expansion = excluded.expansion, updated_at = excluded.updated_at`,
		key, expansion, time.Now().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("set macro: %w", err)
	}
	return nil
}

// GetMacro returns the macro for key.
func (s *Store) GetMacro(ctx context.Context, key string) (*Macro, error) {
	var m Macro
	err := s.db.QueryRowContext(ctx,
		`SELECT key, expansion, updated_at, hits FROM macros WHERE key = ?`, customdict.Normalize(key),
	).Scan(&m.Key, &m.Expansion, &m.UpdatedAt, &m.Hits)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get macro: %w", err)
	}
	return &m, nil
}

// DeleteMacro removes a macro.
func (s *Store) DeleteMacro(ctx context.Context, key string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM macros WHERE key = ?`, customdict.Normalize(key))
	if err != nil {
		return fmt.Errorf("delete macro: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// RecordMacroHits adds usage counts collected by the engine.
func (s *Store) RecordMacroHits(ctx context.Context, hits map[string]int) error {
	if len(hits) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `UPDATE macros SET hits = hits + ? WHERE key = ?`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare statement: %w", err)
	}
	defer stmt.Close()

	for key, n := range hits {
		if _, err := stmt.ExecContext(ctx, n, customdict.Normalize(key)); err != nil {
			tx.Rollback()
			return fmt.Errorf("record hits for %s: %w", key, err)
		}
	}
	return tx.Commit()
}

// Macros lists all macros ordered by key.
func (s *Store) Macros(ctx context.Context) ([]Macro, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key, expansion, updated_at, hits FROM macros ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("query macros: %w", err)
	}
	defer rows.Close()

	var out []Macro
	for rows.Next() {
		var m Macro
		if err := rows.Scan(&m.Key, &m.Expansion, &m.UpdatedAt, &m.Hits); err != nil {
			return nil, fmt.Errorf("scan macro: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// MacroTable snapshots the macros as key -> expansion.
func (s *Store) MacroTable(ctx context.Context) (map[string]string, error) {
	macros, err := s.Macros(ctx)
	if err != nil {
		return nil, err
	}
	table := make(map[string]string, len(macros))
	for _, m := range macros {
		table[m.Key] = m.Expansion
	}
	return table, nil
}

// GetStats returns row counts and the schema version.
func (s *Store) GetStats(ctx context.Context) (*Stats, error) {
	var st Stats
	err := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM custom_words WHERE kind = 'en'),
			(SELECT COUNT(*) FROM custom_words WHERE kind = 'vi'),
			(SELECT COUNT(*) FROM macros)`,
	).Scan(&st.EnglishWords, &st.VietnameseWords, &st.Macros)
	if err != nil {
		return nil, fmt.Errorf("get stats: %w", err)
	}
	if st.SchemaVersion, err = SchemaVersion(s.db); err != nil {
		return nil, err
	}
	return &st, nil
}
