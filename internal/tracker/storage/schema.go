package storage

import (
	"context"
	"fmt"
)

// The tracker persists a single applications table. Schema setup is limited
// to creating it (plus indexes) when absent; there is no migration history.

const schemaSQLite = `
CREATE TABLE IF NOT EXISTS applications (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	company          TEXT NOT NULL,
	role             TEXT NOT NULL,
	offer_url        TEXT NOT NULL DEFAULT '',
	application_date DATE NOT NULL,
	status           TEXT NOT NULL DEFAULT 'Applied',
	notes            TEXT NOT NULL DEFAULT '',
	follow_up_date   DATE,
	response_date    DATE,
	tags             TEXT NOT NULL DEFAULT '',
	contact_name     TEXT NOT NULL DEFAULT '',
	contact_email    TEXT NOT NULL DEFAULT '',
	offered_salary   TEXT NOT NULL DEFAULT '',
	location         TEXT NOT NULL DEFAULT '',
	work_mode        TEXT NOT NULL DEFAULT '',
	created_at       TIMESTAMP NOT NULL,
	updated_at       TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_applications_company ON applications (company);
CREATE INDEX IF NOT EXISTS idx_applications_status ON applications (status);
CREATE INDEX IF NOT EXISTS idx_applications_application_date ON applications (application_date);
`

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS applications (
	id               BIGSERIAL PRIMARY KEY,
	company          TEXT NOT NULL,
	role             TEXT NOT NULL,
	offer_url        TEXT NOT NULL DEFAULT '',
	application_date DATE NOT NULL,
	status           TEXT NOT NULL DEFAULT 'Applied',
	notes            TEXT NOT NULL DEFAULT '',
	follow_up_date   DATE,
	response_date    DATE,
	tags             TEXT NOT NULL DEFAULT '',
	contact_name     TEXT NOT NULL DEFAULT '',
	contact_email    TEXT NOT NULL DEFAULT '',
	offered_salary   TEXT NOT NULL DEFAULT '',
	location         TEXT NOT NULL DEFAULT '',
	work_mode        TEXT NOT NULL DEFAULT '',
	created_at       TIMESTAMPTZ NOT NULL,
	updated_at       TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_applications_company ON applications (company);
CREATE INDEX IF NOT EXISTS idx_applications_status ON applications (status);
CREATE INDEX IF NOT EXISTS idx_applications_application_date ON applications (application_date);
`

// EnsureSchema creates the applications table and its indexes if they do not
// exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	schema := schemaSQLite
	if s.postgres() {
		schema = schemaPostgres
	}

	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}

	return nil
}
