package calendar

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jokarl/taxrules/internal/store"
)

// Schema creates the calendar table
const Schema = `
CREATE TABLE IF NOT EXISTS calendar (
	identifier INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	counterparty TEXT,
	address TEXT,
	blockchain TEXT,
	timestamp INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_calendar_timestamp ON calendar(timestamp);
`

// Repository stores calendar entries in the report database
type Repository struct {
	db             *sql.DB
	isCounterparty func(string) bool
}

// NewRepository applies the calendar schema to db. isCounterparty decides
// which counterparty names entries may reference.
func NewRepository(ctx context.Context, db *sql.DB, isCounterparty func(string) bool) (*Repository, error) {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return nil, fmt.Errorf("failed to apply calendar schema: %w", err)
	}
	return &Repository{db: db, isCounterparty: isCounterparty}, nil
}

// Validate checks e and returns it with its address normalized
func (r *Repository) Validate(e Entry) (Entry, error) {
	if strings.TrimSpace(e.Name) == "" {
		return e, &ValidationError{Field: "name", Message: "Name is required"}
	}
	if e.Counterparty != "" && !r.isCounterparty(e.Counterparty) {
		return e, &ValidationError{Field: "counterparty", Message: fmt.Sprintf("Unknown counterparty %s", e.Counterparty)}
	}
	if (e.Address == "") != (e.Blockchain == "") {
		return e, &ValidationError{Message: "If any of address or blockchain is provided both need to be provided"}
	}
	if e.Address != "" {
		b, err := ParseBlockchain(string(e.Blockchain))
		if err != nil {
			return e, &ValidationError{Field: "blockchain", Message: err.Error()}
		}
		addr, err := NormalizeAddress(b, e.Address)
		if err != nil {
			return e, &ValidationError{Field: "address", Message: err.Error()}
		}
		e.Blockchain, e.Address = b, addr
	}
	return e, nil
}

// Add stores a new entry and returns its identifier
func (r *Repository) Add(ctx context.Context, e Entry) (int64, error) {
	e, err := r.Validate(e)
	if err != nil {
		return 0, err
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO calendar (name, description, counterparty, address, blockchain, timestamp)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.Name, e.Description, nullable(e.Counterparty), nullable(e.Address), nullable(string(e.Blockchain)), e.Timestamp,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to add calendar entry: %w", err)
	}
	return res.LastInsertId()
}

// Update replaces the entry with e.Identifier
func (r *Repository) Update(ctx context.Context, e Entry) error {
	e, err := r.Validate(e)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE calendar SET name = ?, description = ?, counterparty = ?, address = ?, blockchain = ?, timestamp = ?
		WHERE identifier = ?`,
		e.Name, e.Description, nullable(e.Counterparty), nullable(e.Address), nullable(string(e.Blockchain)), e.Timestamp,
		e.Identifier,
	)
	if err != nil {
		return fmt.Errorf("failed to update calendar entry: %w", err)
	}
	return expectOne(res, e.Identifier)
}

// Delete removes an entry
func (r *Repository) Delete(ctx context.Context, identifier int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM calendar WHERE identifier = ?`, identifier)
	if err != nil {
		return fmt.Errorf("failed to delete calendar entry: %w", err)
	}
	return expectOne(res, identifier)
}

// Get returns a single entry
func (r *Repository) Get(ctx context.Context, identifier int64) (Entry, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM calendar WHERE identifier = ?`, identifier)
	e, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return Entry{}, fmt.Errorf("calendar entry %d: %w", identifier, store.ErrNotFound)
	}
	return e, err
}

// Query returns the entries matching f ordered by identifier
func (r *Repository) Query(ctx context.Context, f Filter) (*Result, error) {
	where, args, err := r.conditions(f)
	if err != nil {
		return nil, err
	}

	result := &Result{Entries: []Entry{}, EntriesLimit: -1}
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM calendar`).Scan(&result.EntriesTotal); err != nil {
		return nil, err
	}

	query := `SELECT ` + entryColumns + ` FROM calendar`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, ` AND `)
	}
	rows, err := r.db.QueryContext(ctx, query+` ORDER BY identifier`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		result.Entries = append(result.Entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	result.EntriesFound = len(result.Entries)
	return result, nil
}

func (r *Repository) conditions(f Filter) ([]string, []any, error) {
	var (
		where []string
		args  []any
	)
	if f.FromTimestamp != 0 {
		where = append(where, `timestamp >= ?`)
		args = append(args, f.FromTimestamp)
	}
	if f.ToTimestamp != 0 {
		where = append(where, `timestamp <= ?`)
		args = append(args, f.ToTimestamp)
	}
	if f.Counterparty != "" {
		where = append(where, `counterparty = ?`)
		args = append(args, f.Counterparty)
	}
	if f.Name != "" {
		where = append(where, `name LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(f.Name)+"%")
	}

	if len(f.Accounts) > 0 {
		var accounts []string
		for _, a := range f.Accounts {
			addr := strings.TrimSpace(a.Address)
			if a.Blockchain == "" {
				// the chain is unknown, so accept either spelling of an EVM address
				if normalized, err := NormalizeAddress(Ethereum, addr); err == nil {
					addr = normalized
				}
				accounts = append(accounts, `address = ?`)
				args = append(args, addr)
				continue
			}
			b, err := ParseBlockchain(string(a.Blockchain))
			if err != nil {
				return nil, nil, &ValidationError{Field: "accounts", Message: err.Error()}
			}
			if addr, err = NormalizeAddress(b, addr); err != nil {
				return nil, nil, &ValidationError{Field: "accounts", Message: err.Error()}
			}
			accounts = append(accounts, `(address = ? AND blockchain = ?)`)
			args = append(args, addr, string(b))
		}
		where = append(where, `(`+strings.Join(accounts, ` OR `)+`)`)
	}
	return where, args, nil
}

const entryColumns = `identifier, name, description, counterparty, address, blockchain, timestamp`

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (Entry, error) {
	var (
		e                                 Entry
		counterparty, address, blockchain sql.NullString
	)
	if err := row.Scan(&e.Identifier, &e.Name, &e.Description, &counterparty, &address, &blockchain, &e.Timestamp); err != nil {
		return Entry{}, err
	}
	e.Counterparty = counterparty.String
	e.Address = address.String
	e.Blockchain = Blockchain(blockchain.String)
	return e, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func expectOne(res sql.Result, identifier int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("calendar entry %d: %w", identifier, store.ErrNotFound)
	}
	return nil
}
