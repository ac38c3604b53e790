package ledger

import (
	"context"
	"fmt"
	"time"

	"lockday/internal/infra"
	"lockday/internal/sqlinline"
)

// Postgres stores activity in the activity_log table through the
// marker-tagged SQL runner.
type Postgres struct {
	sql infra.SQLExecutor
	now func() time.Time
}

func NewPostgres(sql infra.SQLExecutor) *Postgres {
	return &Postgres{sql: sql, now: time.Now}
}

// Migrate creates the tables the ledger and credential store rely on.
func (p *Postgres) Migrate(ctx context.Context) error {
	for _, q := range []string{sqlinline.QEnsureActivityTable, sqlinline.QEnsureIntegrationTokensTable} {
		if _, err := p.sql.Exec(ctx, q); err != nil {
			return fmt.Errorf("ledger: migrate: %w", err)
		}
	}
	return nil
}

func (p *Postgres) Record(ctx context.Context, a Activity) error {
	a = stamp(a)
	_, err := p.sql.Exec(ctx, sqlinline.QInsertActivity, string(a.Kind), a.Tool, a.MIMEType, a.Bytes, a.RemoteURL, a.At)
	if err != nil {
		return fmt.Errorf("ledger: record %s: %w", a.Kind, err)
	}
	return nil
}

func (p *Postgres) Summary(ctx context.Context) (Summary, error) {
	var s Summary
	since := p.now().Add(-24 * time.Hour).UTC()
	if err := p.sql.QueryRow(ctx, sqlinline.QActivitySummary, since).Scan(&s.Uploads, &s.Exports, &s.ExportsLast24h); err != nil {
		return Summary{}, fmt.Errorf("ledger: summary: %w", err)
	}
	return s, nil
}
