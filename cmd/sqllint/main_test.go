package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLintInlineQueriesAreMarked(t *testing.T) {
	violations, err := lint([]string{filepath.Join("..", "..", "internal", "sqlinline")})
	if err != nil {
		t.Fatalf("lint returned error: %v", err)
	}
	if len(violations) != 0 {
		t.Fatalf("unexpected violations: %+v", violations)
	}
}

func TestLintReportsMissingAndDuplicateMarkers(t *testing.T) {
	dir := t.TempDir()
	src := "package q\n\n" +
		"const QMissing = `select 1;`\n\n" +
		"const QFirst = `--sql 11111111-2222-3333-4444-555555555555\nselect 1;`\n\n" +
		"const QSecond = `--sql 11111111-2222-3333-4444-555555555555\nselect 2;`\n\n" +
		"const Label = \"plain text\"\n"
	if err := os.WriteFile(filepath.Join(dir, "q.go"), []byte(src), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	violations, err := lint([]string{dir})
	if err != nil {
		t.Fatalf("lint returned error: %v", err)
	}
	if len(violations) != 2 {
		t.Fatalf("expected 2 violations, got %+v", violations)
	}
	if violations[0].name != "QMissing" {
		t.Fatalf("first violation = %+v", violations[0])
	}
	if violations[1].name != "QSecond" || !strings.Contains(violations[1].message, "QFirst") {
		t.Fatalf("second violation = %+v", violations[1])
	}
}
