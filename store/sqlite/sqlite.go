/*
Package sqlite provides the SQLite-backed persistence for the travel desk.

PURPOSE:
  Stores the two durable record kinds the service owns: employee profiles
  and submitted itineraries. The wizard draft itself is transient and never
  touches the database; only a successful submission creates a record.

KEY TABLES:
  employees:    profile data shown on wizard step 1 plus login credentials
  itineraries:  submitted requests with their approval status lifecycle

STATUS LIFECYCLE:
  Pending -> Approved | Rejected
  Approved -> Completed (sweeper, once the end date passes)
  Withdrawn reachable from any non-terminal status (user-initiated)

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. In production with PostgreSQL,
  database-level concurrency control handles this instead.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency.

USAGE:
  store, err := sqlite.New("./data/traveldesk.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - api: handlers reading and writing these records
  - itinerary: the engine whose payload seeds an itinerary row
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// =============================================================================
// RECORD TYPES
// =============================================================================

// Status is the lifecycle state of a submitted itinerary.
type Status string

const (
	StatusPending   Status = "Pending"
	StatusApproved  Status = "Approved"
	StatusRejected  Status = "Rejected"
	StatusCompleted Status = "Completed"
	StatusWithdrawn Status = "Withdrawn"
)

// Terminal reports whether no further transition is possible.
func (s Status) Terminal() bool {
	return s == StatusRejected || s == StatusCompleted || s == StatusWithdrawn
}

// CanWithdraw reports whether the owner may still withdraw the request.
func (s Status) CanWithdraw() bool {
	return !s.Terminal()
}

// Employee is a profile record. PasswordHash is a bcrypt hash; it never
// leaves the store except for login verification.
type Employee struct {
	EmployeeID   string
	FirstName    string
	LastName     string
	Email        string
	Contact      string
	Designation  string
	Band         string
	Department   string
	Location     string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// Itinerary is a submitted travel request, the seed record for the
// approval lifecycle.
type Itinerary struct {
	ID          string
	EmployeeID  string
	FromCity    string
	ToCity      string
	StartDate   string // ISO date
	EndDate     string // ISO date
	Status      Status
	Type        string
	Mode        string
	Purpose     string
	RequestDate string // ISO date
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ListFilter narrows and pages an itinerary listing.
type ListFilter struct {
	EmployeeID string
	Status     string // empty or "All" = no filter
	Type       string // empty or "All" = no filter
	Search     string // matches from_city, to_city, purpose or id
	Limit      int
	Offset     int
}

// =============================================================================
// STORE
// =============================================================================

// Store implements persistence using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a store with the given database path. Use ":memory:" for an
// in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS employees (
		employee_id TEXT PRIMARY KEY,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		email TEXT,
		contact TEXT,
		designation TEXT,
		band TEXT,
		department TEXT,
		location TEXT,
		username TEXT UNIQUE,
		password_hash TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_employees_username
		ON employees(username);

	CREATE TABLE IF NOT EXISTS itineraries (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		from_city TEXT NOT NULL,
		to_city TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'Pending',
		type TEXT NOT NULL,
		mode TEXT NOT NULL,
		purpose TEXT NOT NULL,
		request_date TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_itineraries_employee
		ON itineraries(employee_id);
	CREATE INDEX IF NOT EXISTS idx_itineraries_status
		ON itineraries(status);

	-- For the completion sweeper (hot path: status + end_date scan)
	CREATE INDEX IF NOT EXISTS idx_itineraries_status_end
		ON itineraries(status, end_date);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// EMPLOYEES
// =============================================================================

// SaveEmployee inserts or replaces a profile record.
func (s *Store) SaveEmployee(ctx context.Context, e Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT OR REPLACE INTO employees
		(employee_id, first_name, last_name, email, contact, designation,
		 band, department, location, username, password_hash, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	createdAt := e.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, query,
		e.EmployeeID, e.FirstName, e.LastName, e.Email, e.Contact,
		e.Designation, e.Band, e.Department, e.Location,
		nullString(e.Username), nullString(e.PasswordHash),
		createdAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save employee: %w", err)
	}
	return nil
}

// GetEmployee returns a profile by employee ID, or nil when absent.
func (s *Store) GetEmployee(ctx context.Context, employeeID string) (*Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scanEmployee(s.db.QueryRowContext(ctx,
		employeeSelect+` WHERE employee_id = ?`, employeeID))
}

// GetEmployeeByUsername returns a profile by login name, or nil when absent.
func (s *Store) GetEmployeeByUsername(ctx context.Context, username string) (*Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scanEmployee(s.db.QueryRowContext(ctx,
		employeeSelect+` WHERE username = ?`, username))
}

// ListEmployees returns all profiles ordered by employee ID.
func (s *Store) ListEmployees(ctx context.Context) ([]Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, employeeSelect+` ORDER BY employee_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	var employees []Employee
	for rows.Next() {
		e, err := scanEmployeeRow(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, *e)
	}
	return employees, rows.Err()
}

const employeeSelect = `
	SELECT employee_id, first_name, last_name, email, contact, designation,
	       band, department, location, username, password_hash, created_at
	FROM employees`

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *Store) scanEmployee(row *sql.Row) (*Employee, error) {
	e, err := scanEmployeeRow(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return e, err
}

func scanEmployeeRow(row rowScanner) (*Employee, error) {
	var e Employee
	var username, hash, createdAt sql.NullString
	err := row.Scan(&e.EmployeeID, &e.FirstName, &e.LastName, &e.Email,
		&e.Contact, &e.Designation, &e.Band, &e.Department, &e.Location,
		&username, &hash, &createdAt)
	if err != nil {
		return nil, err
	}
	e.Username = username.String
	e.PasswordHash = hash.String
	if createdAt.Valid {
		e.CreatedAt, _ = time.Parse(time.RFC3339, createdAt.String)
	}
	return &e, nil
}

// =============================================================================
// ITINERARIES
// =============================================================================

// InsertItinerary creates a new itinerary record.
func (s *Store) InsertItinerary(ctx context.Context, it Itinerary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	query := `
		INSERT INTO itineraries
		(id, employee_id, from_city, to_city, start_date, end_date, status,
		 type, mode, purpose, request_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		it.ID, it.EmployeeID, it.FromCity, it.ToCity, it.StartDate, it.EndDate,
		string(it.Status), it.Type, it.Mode, it.Purpose, it.RequestDate,
		now.Format(time.RFC3339), now.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert itinerary: %w", err)
	}
	return nil
}

// GetItinerary returns one record by ID, or nil when absent.
func (s *Store) GetItinerary(ctx context.Context, id string) (*Itinerary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, itinerarySelect+` WHERE id = ?`, id)
	it, err := scanItinerary(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return it, err
}

// ListItineraries returns records matching the filter, newest first, plus
// the total count before paging.
func (s *Store) ListItineraries(ctx context.Context, f ListFilter) ([]Itinerary, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var conds []string
	var args []any
	if f.EmployeeID != "" {
		conds = append(conds, "employee_id = ?")
		args = append(args, f.EmployeeID)
	}
	if f.Status != "" && f.Status != "All" {
		conds = append(conds, "status = ?")
		args = append(args, f.Status)
	}
	if f.Type != "" && f.Type != "All" {
		conds = append(conds, "type = ?")
		args = append(args, f.Type)
	}
	if f.Search != "" {
		conds = append(conds, "(from_city LIKE ? OR to_city LIKE ? OR purpose LIKE ? OR id LIKE ?)")
		pattern := "%" + f.Search + "%"
		args = append(args, pattern, pattern, pattern, pattern)
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM itineraries`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count itineraries: %w", err)
	}

	query := itinerarySelect + where + ` ORDER BY request_date DESC, created_at DESC`
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.Limit, f.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list itineraries: %w", err)
	}
	defer rows.Close()

	var items []Itinerary
	for rows.Next() {
		it, err := scanItinerary(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, *it)
	}
	return items, total, rows.Err()
}

// UpdateItineraryStatus moves a record to a new status. Transition rules
// are enforced by the caller; the store only stamps updated_at.
func (s *Store) UpdateItineraryStatus(ctx context.Context, id string, status Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE itineraries SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), time.Now().UTC().Format(time.RFC3339), id)
	if err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteItinerary removes a record owned by the given employee.
func (s *Store) DeleteItinerary(ctx context.Context, id, employeeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM itineraries WHERE id = ? AND employee_id = ?`, id, employeeID)
	if err != nil {
		return fmt.Errorf("failed to delete itinerary: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CompleteExpired moves approved itineraries whose end date has passed to
// Completed. Returns the number of records moved. Called by the sweeper.
func (s *Store) CompleteExpired(ctx context.Context, asOf string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE itineraries SET status = ?, updated_at = ?
		 WHERE status = ? AND end_date < ?`,
		string(StatusCompleted), time.Now().UTC().Format(time.RFC3339),
		string(StatusApproved), asOf)
	if err != nil {
		return 0, fmt.Errorf("failed to complete expired itineraries: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

const itinerarySelect = `
	SELECT id, employee_id, from_city, to_city, start_date, end_date,
	       status, type, mode, purpose, request_date, created_at, updated_at
	FROM itineraries`

func scanItinerary(row rowScanner) (*Itinerary, error) {
	var it Itinerary
	var status, createdAt, updatedAt string
	err := row.Scan(&it.ID, &it.EmployeeID, &it.FromCity, &it.ToCity,
		&it.StartDate, &it.EndDate, &status, &it.Type, &it.Mode,
		&it.Purpose, &it.RequestDate, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	it.Status = Status(status)
	it.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	it.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &it, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
