package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/jvaldes/apptrack/internal/tracker/domain"
)

// ErrInvalidOrderBy is returned when List receives an unknown ordering field.
var ErrInvalidOrderBy = errors.New("invalid order_by field")

const applicationColumns = `
	id, company, role, offer_url, application_date, status, notes,
	follow_up_date, response_date, tags, contact_name, contact_email,
	offered_salary, location, work_mode, created_at, updated_at
`

// orderColumns whitelists the fields List may order by. Keys are the JSON
// field names the API exposes; values are the backing columns.
var orderColumns = map[string]string{
	"id":              "id",
	"company":         "company",
	"role":            "role",
	"offerUrl":        "offer_url",
	"applicationDate": "application_date",
	"status":          "status",
	"notes":           "notes",
	"followUpDate":    "follow_up_date",
	"responseDate":    "response_date",
	"tags":            "tags",
	"contactName":     "contact_name",
	"contactEmail":    "contact_email",
	"offeredSalary":   "offered_salary",
	"location":        "location",
	"workMode":        "work_mode",
	"createdAt":       "created_at",
	"updatedAt":       "updated_at",
}

// Store handles all database operations for application records.
type Store struct {
	db     *sqlx.DB
	logger *slog.Logger
	now    func() time.Time
}

// New creates a new Store instance over an open connection pool.
func New(db *sqlx.DB, logger *slog.Logger) *Store {
	return &Store{
		db:     db,
		logger: logger,
		now:    time.Now,
	}
}

func (s *Store) postgres() bool {
	return s.db.DriverName() == "postgres"
}

// Create inserts a new application record. Missing status defaults to
// Applied and a zero application date defaults to today. The persisted
// record, including the assigned id and timestamps, is returned.
func (s *Store) Create(ctx context.Context, app *domain.Application) (*domain.Application, error) {
	now := s.now()

	if app.Status == "" {
		app.Status = domain.StatusApplied
	}
	if app.ApplicationDate.IsZero() {
		app.ApplicationDate = domain.DateOnly(now)
	} else {
		app.ApplicationDate = domain.DateOnly(app.ApplicationDate)
	}
	if app.FollowUpDate != nil {
		d := domain.DateOnly(*app.FollowUpDate)
		app.FollowUpDate = &d
	}
	if app.ResponseDate != nil {
		d := domain.DateOnly(*app.ResponseDate)
		app.ResponseDate = &d
	}

	if err := app.Validate(); err != nil {
		return nil, err
	}

	app.CreatedAt = now
	app.UpdatedAt = now

	query := s.db.Rebind(`
		INSERT INTO applications (
			company, role, offer_url, application_date, status, notes,
			follow_up_date, response_date, tags, contact_name, contact_email,
			offered_salary, location, work_mode, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)

	args := []interface{}{
		app.Company,
		app.Role,
		app.OfferURL,
		app.ApplicationDate,
		app.Status,
		app.Notes,
		app.FollowUpDate,
		app.ResponseDate,
		app.Tags,
		app.ContactName,
		app.ContactEmail,
		app.OfferedSalary,
		app.Location,
		app.WorkMode,
		app.CreatedAt,
		app.UpdatedAt,
	}

	if s.postgres() {
		if err := s.db.QueryRowxContext(ctx, query+" RETURNING id", args...).Scan(&app.ID); err != nil {
			return nil, fmt.Errorf("failed to create application: %w", err)
		}
	} else {
		res, err := s.db.ExecContext(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("failed to create application: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("failed to read inserted id: %w", err)
		}
		app.ID = id
	}

	s.logger.Info("Application created",
		slog.Int64("id", app.ID),
		slog.String("company", app.Company),
		slog.String("status", app.Status.String()),
	)

	return app, nil
}

// Get retrieves an application by id. Returns domain.ErrApplicationNotFound
// when the id does not exist.
func (s *Store) Get(ctx context.Context, id int64) (*domain.Application, error) {
	query := s.db.Rebind(`SELECT ` + applicationColumns + ` FROM applications WHERE id = ?`)

	var app domain.Application
	if err := s.db.GetContext(ctx, &app, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrApplicationNotFound
		}
		return nil, fmt.Errorf("failed to get application: %w", err)
	}

	return &app, nil
}

// Filter narrows and orders a List call. The zero value lists everything
// ordered by application date, newest first.
type Filter struct {
	Status  domain.Status // exact match
	Company string        // case-insensitive substring
	Tags    string        // case-insensitive substring
	Search  string        // case-insensitive substring over company, role and notes

	OrderBy   string // JSON field name; empty means applicationDate
	Ascending bool

	Offset int
	Limit  int // 0 means unpaged
}

// List retrieves applications matching the filter.
func (s *Store) List(ctx context.Context, filter Filter) ([]domain.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE 1=1`
	args := []interface{}{}

	if filter.Status != "" {
		query += " AND status = ?"
		args = append(args, filter.Status)
	}

	if filter.Company != "" {
		query += " AND LOWER(company) LIKE ?"
		args = append(args, contains(filter.Company))
	}

	if filter.Tags != "" {
		query += " AND LOWER(tags) LIKE ?"
		args = append(args, contains(filter.Tags))
	}

	if filter.Search != "" {
		query += " AND (LOWER(company) LIKE ? OR LOWER(role) LIKE ? OR LOWER(notes) LIKE ?)"
		needle := contains(filter.Search)
		args = append(args, needle, needle, needle)
	}

	orderBy := filter.OrderBy
	if orderBy == "" {
		orderBy = "applicationDate"
	}
	column, ok := orderColumns[orderBy]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidOrderBy, filter.OrderBy)
	}

	direction := "DESC"
	if filter.Ascending {
		direction = "ASC"
	}

	// Secondary order on id keeps pagination stable across equal keys.
	query += fmt.Sprintf(" ORDER BY %s %s, id %s", column, direction, direction)

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	} else if filter.Offset > 0 {
		// SQLite refuses OFFSET without LIMIT; -1 means no limit there and
		// is never sent to Postgres because the handlers always page.
		query += " LIMIT -1"
	}
	if filter.Offset > 0 {
		query += " OFFSET ?"
		args = append(args, filter.Offset)
	}

	query = s.db.Rebind(query)

	var apps []domain.Application
	if err := s.db.SelectContext(ctx, &apps, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}

	return apps, nil
}

// Update applies a partial patch to an existing application. Only the set
// fields change; updated_at is always refreshed. Returns
// domain.ErrApplicationNotFound when the id does not exist.
func (s *Store) Update(ctx context.Context, id int64, patch domain.Patch) (*domain.Application, error) {
	app, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	patch.Apply(app)

	if err := app.Validate(); err != nil {
		return nil, err
	}

	app.UpdatedAt = s.now()

	query := s.db.Rebind(`
		UPDATE applications SET
			company = ?, role = ?, offer_url = ?, application_date = ?,
			status = ?, notes = ?, follow_up_date = ?, response_date = ?,
			tags = ?, contact_name = ?, contact_email = ?, offered_salary = ?,
			location = ?, work_mode = ?, updated_at = ?
		WHERE id = ?
	`)

	_, err = s.db.ExecContext(ctx, query,
		app.Company,
		app.Role,
		app.OfferURL,
		app.ApplicationDate,
		app.Status,
		app.Notes,
		app.FollowUpDate,
		app.ResponseDate,
		app.Tags,
		app.ContactName,
		app.ContactEmail,
		app.OfferedSalary,
		app.Location,
		app.WorkMode,
		app.UpdatedAt,
		app.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update application: %w", err)
	}

	s.logger.Info("Application updated",
		slog.Int64("id", app.ID),
		slog.String("status", app.Status.String()),
	)

	return app, nil
}

// Delete removes an application. Returns false when the id does not exist.
func (s *Store) Delete(ctx context.Context, id int64) (bool, error) {
	query := s.db.Rebind(`DELETE FROM applications WHERE id = ?`)

	res, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete application: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if affected == 0 {
		return false, nil
	}

	s.logger.Info("Application deleted",
		slog.Int64("id", id),
	)

	return true, nil
}

// BulkImport inserts a batch of raw rows, typically parsed from CSV. Rows
// that fail to parse are logged and skipped without aborting the batch; each
// accepted row is inserted individually so earlier rows survive a later
// failure. Returns the number of rows imported.
func (s *Store) BulkImport(ctx context.Context, rows []map[string]string) (int, error) {
	count := 0

	for i, row := range rows {
		app, err := applicationFromRow(row, s.now())
		if err != nil {
			s.logger.Warn("Skipping malformed import row",
				slog.Int("row", i+1),
				slog.String("error", err.Error()),
			)
			continue
		}

		if _, err := s.Create(ctx, app); err != nil {
			return count, fmt.Errorf("failed to import row %d: %w", i+1, err)
		}
		count++
	}

	s.logger.Info("Bulk import finished",
		slog.Int("imported", count),
		slog.Int("skipped", len(rows)-count),
	)

	return count, nil
}

// applicationFromRow builds an application from a header-keyed CSV row,
// applying the import defaults for absent fields.
func applicationFromRow(row map[string]string, now time.Time) (*domain.Application, error) {
	app := &domain.Application{
		Company:       valueOr(row, "company", "Sin empresa"),
		Role:          valueOr(row, "role", "Sin puesto"),
		OfferURL:      row["offerUrl"],
		Notes:         row["notes"],
		Tags:          row["tags"],
		ContactName:   row["contactName"],
		ContactEmail:  row["contactEmail"],
		OfferedSalary: row["offeredSalary"],
		Location:      row["location"],
		WorkMode:      row["workMode"],
	}

	status := strings.TrimSpace(row["status"])
	if status == "" {
		app.Status = domain.StatusApplied
	} else {
		st, err := domain.ParseStatus(status)
		if err != nil {
			return nil, err
		}
		app.Status = st
	}

	if raw := strings.TrimSpace(row["applicationDate"]); raw != "" {
		d, err := domain.ParseDate(raw)
		if err != nil {
			return nil, err
		}
		app.ApplicationDate = d
	} else {
		app.ApplicationDate = domain.DateOnly(now)
	}

	if raw := strings.TrimSpace(row["followUpDate"]); raw != "" {
		d, err := domain.ParseDate(raw)
		if err != nil {
			return nil, err
		}
		app.FollowUpDate = &d
	}

	if raw := strings.TrimSpace(row["responseDate"]); raw != "" {
		d, err := domain.ParseDate(raw)
		if err != nil {
			return nil, err
		}
		app.ResponseDate = &d
	}

	return app, nil
}

func valueOr(row map[string]string, key, fallback string) string {
	if v := strings.TrimSpace(row[key]); v != "" {
		return v
	}
	return fallback
}

func contains(needle string) string {
	return "%" + strings.ToLower(needle) + "%"
}
