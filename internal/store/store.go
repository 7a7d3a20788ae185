// Package store persists resolve results in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"github.com/jokarl/taxrules/internal/id"
	"github.com/jokarl/taxrules/internal/types"
)

// ErrNotFound is returned for unknown report ids
var ErrNotFound = errors.New("not found")

// Store is a SQLite-backed report store
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the database at path and applies the schema
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database at %s: %w", path, err)
	}
	// a single connection serializes writers and keeps the pragmas applied
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// DB returns the underlying database, shared with the calendar
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// ReportOverview is the stored header of a report
type ReportOverview struct {
	ID        string                `json:"id"`
	Source    string                `json:"source"`
	Policy    types.UnmatchedPolicy `json:"policy"`
	Result    string                `json:"result"`
	Summary   types.Summary         `json:"summary"`
	CreatedAt time.Time             `json:"created_at"`
}

// EventsPage is one page of a report's resolutions
type EventsPage struct {
	Entries []*types.Resolution `json:"entries"`

	// EntriesFound is the number of events in the report
	EntriesFound int `json:"entries_found"`

	// EntriesTotal is the number of events across all reports
	EntriesTotal int `json:"entries_total"`
}

// SaveReport stores a result and returns its new id. result.ID is set.
func (s *Store) SaveReport(ctx context.Context, result *types.ResolveResult) (string, error) {
	created := s.now().UTC()
	reportID := id.NewAt(created)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	sum := result.Summary
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO reports
		(id, source, policy, result, total, matched, unmatched, taxable, swaps, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		reportID, result.Source, result.Policy.String(), result.Result,
		sum.Total, sum.Matched, sum.Unmatched, sum.Taxable, sum.Swaps, created.Unix(),
	); err != nil {
		return "", fmt.Errorf("failed to insert report: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO report_events
		(report_id, position, identifier, timestamp, event_type, event_subtype, counterparty,
		 asset, amount, location_label, notes, matched, reason,
		 taxable, count_entire_amount_spend, count_cost_basis_pnl, method, accounting_treatment)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", err
	}
	defer stmt.Close()

	for i, res := range result.Resolutions {
		ev := res.Event
		var (
			taxable, entire, pnl sql.NullBool
			method, treatment    sql.NullString
		)
		if res.Matched {
			st := res.Settings
			taxable = sql.NullBool{Bool: st.Taxable, Valid: true}
			entire = sql.NullBool{Bool: st.CountEntireAmountSpend, Valid: true}
			pnl = sql.NullBool{Bool: st.CountCostBasisPnL, Valid: true}
			method = sql.NullString{String: st.Method.String(), Valid: true}
			treatment = sql.NullString{String: st.Treatment.String(), Valid: true}
		}
		if _, err := stmt.ExecContext(ctx,
			reportID, i, ev.Identifier, ev.Timestamp, ev.Type.String(), ev.Subtype.String(), ev.Counterparty,
			ev.Asset, ev.Amount.String(), ev.LocationLabel, ev.Notes, res.Matched, string(res.Reason),
			taxable, entire, pnl, method, treatment,
		); err != nil {
			return "", fmt.Errorf("failed to insert event %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	result.ID = reportID
	return reportID, nil
}

const overviewColumns = `id, source, policy, result, total, matched, unmatched, taxable, swaps, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanOverview(row scanner) (*ReportOverview, error) {
	var (
		o       ReportOverview
		policy  string
		created int64
	)
	if err := row.Scan(&o.ID, &o.Source, &policy, &o.Result,
		&o.Summary.Total, &o.Summary.Matched, &o.Summary.Unmatched, &o.Summary.Taxable, &o.Summary.Swaps,
		&created); err != nil {
		return nil, err
	}
	p, err := types.ParseUnmatchedPolicy(policy)
	if err != nil {
		return nil, fmt.Errorf("report %s: %w", o.ID, err)
	}
	o.Policy = p
	o.CreatedAt = time.Unix(created, 0).UTC()
	return &o, nil
}

// ListReports returns all reports, newest first
func (s *Store) ListReports(ctx context.Context) ([]*ReportOverview, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+overviewColumns+` FROM reports ORDER BY id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*ReportOverview
	for rows.Next() {
		o, err := scanOverview(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// GetReport returns the overview of a report
func (s *Store) GetReport(ctx context.Context, reportID string) (*ReportOverview, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+overviewColumns+` FROM reports WHERE id = ?`, reportID)
	o, err := scanOverview(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("report %s: %w", reportID, ErrNotFound)
	}
	return o, err
}

// ReportEvents returns a page of a report's resolutions in input order.
// A negative limit returns every event from offset on.
func (s *Store) ReportEvents(ctx context.Context, reportID string, limit, offset int) (*EventsPage, error) {
	if _, err := s.GetReport(ctx, reportID); err != nil {
		return nil, err
	}

	page := &EventsPage{Entries: []*types.Resolution{}}
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM report_events WHERE report_id = ?`, reportID,
	).Scan(&page.EntriesFound); err != nil {
		return nil, err
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM report_events`).Scan(&page.EntriesTotal); err != nil {
		return nil, err
	}

	if offset < 0 {
		offset = 0
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT identifier, timestamp, event_type, event_subtype, counterparty, asset, amount,
		       location_label, notes, matched, reason,
		       taxable, count_entire_amount_spend, count_cost_basis_pnl, method, accounting_treatment
		FROM report_events WHERE report_id = ?
		ORDER BY position LIMIT ? OFFSET ?`, reportID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		res, err := scanResolution(rows)
		if err != nil {
			return nil, err
		}
		page.Entries = append(page.Entries, res)
	}
	return page, rows.Err()
}

func scanResolution(row scanner) (*types.Resolution, error) {
	var (
		ev                   types.Event
		et, st, amount       string
		matched              bool
		reason               string
		taxable, entire, pnl sql.NullBool
		method, treatment    sql.NullString
	)
	if err := row.Scan(&ev.Identifier, &ev.Timestamp, &et, &st, &ev.Counterparty, &ev.Asset, &amount,
		&ev.LocationLabel, &ev.Notes, &matched, &reason,
		&taxable, &entire, &pnl, &method, &treatment); err != nil {
		return nil, err
	}

	var err error
	if ev.Type, err = types.ParseEventType(et); err != nil {
		return nil, err
	}
	if ev.Subtype, err = types.ParseEventSubtype(st); err != nil {
		return nil, err
	}
	if ev.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("invalid stored amount %q: %w", amount, err)
	}

	if !matched {
		return types.NewUnmatched(ev, types.UnmatchedReason(reason)), nil
	}
	m, err := types.ParseMethod(method.String)
	if err != nil {
		return nil, err
	}
	tr, err := types.ParseTreatment(treatment.String)
	if err != nil {
		return nil, err
	}
	return types.NewMatched(ev, types.Settings{
		Taxable:                taxable.Bool,
		CountEntireAmountSpend: entire.Bool,
		CountCostBasisPnL:      pnl.Bool,
		Method:                 m,
		Treatment:              tr,
	}), nil
}

// LoadReport rebuilds a stored result with every resolution
func (s *Store) LoadReport(ctx context.Context, reportID string) (*types.ResolveResult, error) {
	o, err := s.GetReport(ctx, reportID)
	if err != nil {
		return nil, err
	}
	page, err := s.ReportEvents(ctx, reportID, -1, 0)
	if err != nil {
		return nil, err
	}
	return &types.ResolveResult{
		ID:          o.ID,
		Source:      o.Source,
		Resolutions: page.Entries,
		Summary:     o.Summary,
		Result:      o.Result,
		Policy:      o.Policy,
	}, nil
}

// DeleteReport removes a report and its events
func (s *Store) DeleteReport(ctx context.Context, reportID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM report_events WHERE report_id = ?`, reportID); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM reports WHERE id = ?`, reportID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("report %s: %w", reportID, ErrNotFound)
	}
	return tx.Commit()
}
