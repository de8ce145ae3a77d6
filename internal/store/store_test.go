package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"vnkey/internal/customdict"
)

func openTest(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenCreatesDirectory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "subdir", "nested", "test.db")
	s, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}

	// reopening applies no migration twice
	s, err = Open(dbPath)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer s.Close()
	v, err := SchemaVersion(s.db)
	if err != nil {
		t.Fatal(err)
	}
	if v != LatestVersion() {
		t.Errorf("expected schema version %d, got %d", LatestVersion(), v)
	}
	if err := s.Ping(context.Background()); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}

func TestCloseNilDB(t *testing.T) {
	s := &Store{db: nil}
	if err := s.Close(); err != nil {
		t.Errorf("Close on nil db should not error: %v", err)
	}
}

func TestWords(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)

	for _, w := range []string{"OK", "ok", " email "} {
		if err := s.AddWord(ctx, customdict.KindEnglish, w); err != nil {
			t.Fatalf("AddWord(%q): %v", w, err)
		}
	}
	if err := s.AddWord(ctx, customdict.KindVietnamese, "Việt"); err != nil {
		t.Fatal(err)
	}
	if err := s.AddWord(ctx, customdict.KindEnglish, "  "); err == nil {
		t.Error("expected error for empty word")
	}

	en, err := s.Words(ctx, customdict.KindEnglish)
	if err != nil {
		t.Fatal(err)
	}
	if len(en) != 2 || en[0].Word != "email" || en[1].Word != "ok" {
		t.Errorf("unexpected english words: %+v", en)
	}

	all, err := s.Words(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 || all[2].Word != "việt" || all[2].Kind != customdict.KindVietnamese {
		t.Errorf("unexpected words: %+v", all)
	}

	if err := s.RemoveWord(ctx, customdict.KindEnglish, "OK"); err != nil {
		t.Fatal(err)
	}
	if err := s.RemoveWord(ctx, customdict.KindEnglish, "ok"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMacros(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)

	if err := s.SetMacro(ctx, "KO", "không"); err != nil {
		t.Fatal(err)
	}
	if err := s.SetMacro(ctx, "vn", "Việt"); err != nil {
		t.Fatal(err)
	}
	if err := s.SetMacro(ctx, "vn", "Việt Nam"); err != nil {
		t.Fatal(err)
	}
	if err := s.SetMacro(ctx, "x", ""); err == nil {
		t.Error("expected error for empty expansion")
	}

	m, err := s.GetMacro(ctx, "ko")
	if err != nil {
		t.Fatal(err)
	}
	if m.Expansion != "không" {
		t.Errorf("expected không, got %q", m.Expansion)
	}

	table, err := s.MacroTable(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(table) != 2 || table["vn"] != "Việt Nam" {
		t.Errorf("unexpected table: %v", table)
	}

	if err := s.RecordMacroHits(ctx, map[string]int{"vn": 3, "missing": 1}); err != nil {
		t.Fatal(err)
	}
	if m, _ = s.GetMacro(ctx, "vn"); m.Hits != 3 {
		t.Errorf("expected 3 hits, got %d", m.Hits)
	}

	if err := s.DeleteMacro(ctx, "ko"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetMacro(ctx, "ko"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := s.DeleteMacro(ctx, "ko"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestExportLoadsIntoOverlay(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)
	_ = s.AddWord(ctx, customdict.KindEnglish, "ok")
	_ = s.AddWord(ctx, customdict.KindVietnamese, "việt")

	doc, err := s.ExportCustomDictionary(ctx)
	if err != nil {
		t.Fatal(err)
	}
	o := customdict.New()
	if err := o.Load(doc); err != nil {
		t.Fatalf("exported document rejected: %v (%s)", err, doc)
	}
	if !o.ContainsEnglish("ok") || !o.ContainsVietnamese("việt") {
		t.Errorf("overlay missing words from %s", doc)
	}

	empty := openTest(t)
	doc, err = empty.ExportCustomDictionary(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if string(doc) != "[]" {
		t.Errorf("expected [], got %s", doc)
	}
}

func TestImportCustomDictionary(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)

	n, err := s.ImportCustomDictionary(ctx, []byte(`[
		{"word": "ok", "type": "english"},
		{"word": "được", "type": "vi"},
		{"word": "x", "type": "klingon"}
	]`))
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("expected 2 imported, got %d", n)
	}

	if _, err := s.ImportCustomDictionary(ctx, []byte(`{"word":`)); !errors.Is(err, customdict.ErrInvalidJSON) {
		t.Errorf("expected ErrInvalidJSON, got %v", err)
	}

	st, err := s.GetStats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if st.EnglishWords != 1 || st.VietnameseWords != 1 || st.Macros != 0 || st.SchemaVersion != LatestVersion() {
		t.Errorf("unexpected stats: %+v", st)
	}
}

func TestRollbackMigration(t *testing.T) {
	s := openTest(t)
	if err := RollbackMigration(s.db); err != nil {
		t.Fatalf("rollback failed: %v", err)
	}
	v, _ := SchemaVersion(s.db)
	if v != LatestVersion()-1 {
		t.Errorf("expected version %d, got %d", LatestVersion()-1, v)
	}
	if err := MigrateDB(s.db); err != nil {
		t.Fatalf("re-migrate failed: %v", err)
	}
	if err := s.RecordMacroHits(context.Background(), map[string]int{"ko": 1}); err != nil {
		t.Errorf("hits column missing after re-migrate: %v", err)
	}
}
