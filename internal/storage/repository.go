package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"consultify/internal/core"
	"consultify/internal/ports"
)

type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

func (d Dialect) driverName() string {
	return string(d)
}

const maxPageSize = 100

var _ ports.Store = (*SQLRepository)(nil)

// SQLRepository implements ports.Store on database/sql. Queries are written
// with '?' placeholders and rebound for Postgres.
type SQLRepository struct {
	db      *sql.DB
	dialect Dialect
	now     func() time.Time
}

func NewSQLiteRepository(dbPath string) (*SQLRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}
	dsn := dbPath + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	return open(DialectSQLite, dsn)
}

func NewPostgresRepository(databaseURL string) (*SQLRepository, error) {
	return open(DialectPostgres, databaseURL)
}

func open(dialect Dialect, dsn string) (*SQLRepository, error) {
	db, err := sql.Open(dialect.driverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", dialect, err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dialect, dsn); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLRepository{
		db:      db,
		dialect: dialect,
		now:     func() time.Time { return time.Now().UTC() },
	}, nil
}

func (r *SQLRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// rebind rewrites '?' placeholders to '$n' for Postgres.
func (r *SQLRepository) rebind(query string) string {
	if r.dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Payments

const paymentColumns = `id, type, amount, payment_date, description, frequency, customer_id, project_id,
	plan_id, installment_number, version, sync_status, sheet_ref, created_at, updated_at`

func scanPayment(row interface{ Scan(...any) error }) (core.PaymentRecord, error) {
	var (
		p                 core.PaymentRecord
		typ, date, status string
		created, updated  int64
	)
	err := row.Scan(&p.ID, &typ, &p.Amount, &date, &p.Description, &p.Frequency, &p.CustomerID, &p.ProjectID,
		&p.PlanID, &p.InstallmentNumber, &p.Version, &status, &p.SheetRef, &created, &updated)
	if err != nil {
		return core.PaymentRecord{}, err
	}
	p.Type = core.PaymentType(typ)
	p.SyncStatus = core.SyncStatus(status)
	p.CreatedAt = time.Unix(0, created).UTC()
	p.UpdatedAt = time.Unix(0, updated).UTC()
	// A stored date that no longer parses stays zero and is ignored by period
	// filters; the amount is what gets reported.
	if d, err := core.ParseDate(date); err == nil {
		p.Date = d
	}
	return p, nil
}

func (r *SQLRepository) insertPayment(ctx context.Context, ex execer, p core.PaymentRecord) (core.PaymentRecord, error) {
	now := r.now()
	p.ID = uuid.NewString()
	p.Version = 1
	p.SyncStatus = core.SyncPending
	p.SheetRef = ""
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err := ex.ExecContext(ctx, r.rebind(`INSERT INTO payments (`+paymentColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		p.ID, string(p.Type), p.Amount, p.Date.String(), p.Description, p.Frequency, p.CustomerID, p.ProjectID,
		p.PlanID, p.InstallmentNumber, p.Version, string(p.SyncStatus), p.SheetRef, now.UnixNano(), now.UnixNano())
	if err != nil {
		return core.PaymentRecord{}, fmt.Errorf("insert payment: %w", err)
	}
	return p, nil
}

func (r *SQLRepository) CreatePayment(ctx context.Context, p core.PaymentRecord) (core.PaymentRecord, error) {
	p, err := r.insertPayment(ctx, r.db, p)
	if err != nil {
		return core.PaymentRecord{}, err
	}

	slog.InfoContext(ctx, "Payment saved",
		"id", p.ID,
		"type", p.Type,
		"amount", p.Amount,
		"date", p.Date.String(),
		"dialect", r.dialect)

	return p, nil
}

func (r *SQLRepository) UpdatePayment(ctx context.Context, p core.PaymentRecord) (core.PaymentRecord, error) {
	res, err := r.db.ExecContext(ctx, r.rebind(`UPDATE payments
		SET type = ?, amount = ?, payment_date = ?, description = ?, frequency = ?, customer_id = ?, project_id = ?,
			version = version + 1, sync_status = ?, updated_at = ?
		WHERE id = ?`),
		string(p.Type), p.Amount, p.Date.String(), p.Description, p.Frequency, p.CustomerID, p.ProjectID,
		string(core.SyncPending), r.now().UnixNano(), p.ID)
	if err != nil {
		return core.PaymentRecord{}, fmt.Errorf("update payment: %w", err)
	}
	if err := expectOne(res, "payment", p.ID); err != nil {
		return core.PaymentRecord{}, err
	}
	return r.GetPayment(ctx, p.ID)
}

func (r *SQLRepository) DeletePayment(ctx context.Context, id string) (core.PaymentRecord, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.PaymentRecord{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	p, err := scanPayment(tx.QueryRowContext(ctx, r.rebind(`SELECT `+paymentColumns+` FROM payments WHERE id = ?`), id))
	if err != nil {
		return core.PaymentRecord{}, notFound(err, "payment", id)
	}
	if _, err := tx.ExecContext(ctx, r.rebind(`DELETE FROM payments WHERE id = ?`), id); err != nil {
		return core.PaymentRecord{}, fmt.Errorf("delete payment: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return core.PaymentRecord{}, fmt.Errorf("commit: %w", err)
	}

	slog.InfoContext(ctx, "Payment deleted", "id", id, "sheet_ref", p.SheetRef)
	return p, nil
}

func (r *SQLRepository) GetPayment(ctx context.Context, id string) (core.PaymentRecord, error) {
	p, err := scanPayment(r.db.QueryRowContext(ctx, r.rebind(`SELECT `+paymentColumns+` FROM payments WHERE id = ?`), id))
	if err != nil {
		return core.PaymentRecord{}, notFound(err, "payment", id)
	}
	return p, nil
}

func (r *SQLRepository) ListPayments(ctx context.Context, req core.PageRequest) (core.Page[core.PaymentRecord], error) {
	return listPage(ctx, r, "payments", paymentColumns, req, scanPayment,
		func(p core.PaymentRecord) (time.Time, string) { return p.CreatedAt, p.ID })
}

func (r *SQLRepository) AllPayments(ctx context.Context) ([]core.PaymentRecord, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+paymentColumns+` FROM payments ORDER BY payment_date DESC, created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query payments: %w", err)
	}
	defer rows.Close()
	return collect(rows, scanPayment)
}

// Plans

func (r *SQLRepository) SavePlan(ctx context.Context, plan core.StoredPlan, payments []core.PaymentRecord) (core.StoredPlan, []core.PaymentRecord, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.StoredPlan{}, nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	plan.ID = uuid.NewString()
	plan.CreatedAt = r.now()
	_, err = tx.ExecContext(ctx, r.rebind(`INSERT INTO plans
		(id, type, description, customer_id, project_id, total_cents, installment_interval, start_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		plan.ID, string(plan.Type), plan.Description, plan.CustomerID, plan.ProjectID,
		plan.Plan.Total.Cents, string(plan.Plan.Interval), plan.Plan.StartDate.String(), plan.CreatedAt.UnixNano())
	if err != nil {
		return core.StoredPlan{}, nil, fmt.Errorf("insert plan: %w", err)
	}

	for _, in := range plan.Plan.Installments {
		_, err := tx.ExecContext(ctx, r.rebind(`INSERT INTO installments (plan_id, number, due_date, amount_cents) VALUES (?, ?, ?, ?)`),
			plan.ID, in.Number, in.DueDate.String(), in.Amount.Cents)
		if err != nil {
			return core.StoredPlan{}, nil, fmt.Errorf("insert installment %d: %w", in.Number, err)
		}
	}

	saved := make([]core.PaymentRecord, len(payments))
	for i, p := range payments {
		p.PlanID = plan.ID
		if saved[i], err = r.insertPayment(ctx, tx, p); err != nil {
			return core.StoredPlan{}, nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return core.StoredPlan{}, nil, fmt.Errorf("commit: %w", err)
	}

	slog.InfoContext(ctx, "Installment plan saved",
		"id", plan.ID,
		"total", plan.Plan.Total.String(),
		"installments", len(plan.Plan.Installments),
		"interval", plan.Plan.Interval)

	return plan, saved, nil
}

func (r *SQLRepository) GetPlan(ctx context.Context, id string) (core.StoredPlan, error) {
	var (
		plan           core.StoredPlan
		typ, interval  string
		start          string
		total, created int64
	)
	err := r.db.QueryRowContext(ctx, r.rebind(`SELECT id, type, description, customer_id, project_id, total_cents,
		installment_interval, start_date, created_at FROM plans WHERE id = ?`), id).
		Scan(&plan.ID, &typ, &plan.Description, &plan.CustomerID, &plan.ProjectID, &total, &interval, &start, &created)
	if err != nil {
		return core.StoredPlan{}, notFound(err, "plan", id)
	}
	plan.Type = core.PaymentType(typ)
	plan.CreatedAt = time.Unix(0, created).UTC()
	plan.Plan.Total = core.Money{Cents: total}
	plan.Plan.Interval = core.InstallmentInterval(interval)
	if plan.Plan.StartDate, err = core.ParseDate(start); err != nil {
		return core.StoredPlan{}, fmt.Errorf("plan %s start date: %w", id, err)
	}

	rows, err := r.db.QueryContext(ctx, r.rebind(`SELECT number, due_date, amount_cents FROM installments WHERE plan_id = ? ORDER BY number`), id)
	if err != nil {
		return core.StoredPlan{}, fmt.Errorf("query installments: %w", err)
	}
	defer rows.Close()
	plan.Plan.Installments, err = collect(rows, func(row interface{ Scan(...any) error }) (core.Installment, error) {
		var (
			in    core.Installment
			due   string
			cents int64
		)
		if err := row.Scan(&in.Number, &due, &cents); err != nil {
			return core.Installment{}, err
		}
		d, err := core.ParseDate(due)
		if err != nil {
			return core.Installment{}, err
		}
		in.DueDate = d
		in.Amount = core.Money{Cents: cents}
		return in, nil
	})
	if err != nil {
		return core.StoredPlan{}, err
	}
	return plan, nil
}

// Customers

const customerColumns = `id, trade_name, cnpj, email, contact, address, created_at`

func scanCustomer(row interface{ Scan(...any) error }) (core.Customer, error) {
	var (
		c       core.Customer
		created int64
	)
	if err := row.Scan(&c.ID, &c.TradeName, &c.CNPJ, &c.Email, &c.Contact, &c.Address, &created); err != nil {
		return core.Customer{}, err
	}
	c.CreatedAt = time.Unix(0, created).UTC()
	return c, nil
}

func (r *SQLRepository) CreateCustomer(ctx context.Context, c core.Customer) (core.Customer, error) {
	c.ID = uuid.NewString()
	c.CreatedAt = r.now()
	_, err := r.db.ExecContext(ctx, r.rebind(`INSERT INTO customers (`+customerColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`),
		c.ID, c.TradeName, c.CNPJ, c.Email, c.Contact, c.Address, c.CreatedAt.UnixNano())
	if err != nil {
		return core.Customer{}, fmt.Errorf("insert customer: %w", err)
	}
	slog.InfoContext(ctx, "Customer saved", "id", c.ID, "trade_name", c.TradeName)
	return c, nil
}

func (r *SQLRepository) GetCustomer(ctx context.Context, id string) (core.Customer, error) {
	c, err := scanCustomer(r.db.QueryRowContext(ctx, r.rebind(`SELECT `+customerColumns+` FROM customers WHERE id = ?`), id))
	if err != nil {
		return core.Customer{}, notFound(err, "customer", id)
	}
	return c, nil
}

func (r *SQLRepository) ListCustomers(ctx context.Context, req core.PageRequest) (core.Page[core.Customer], error) {
	return listPage(ctx, r, "customers", customerColumns, req, scanCustomer,
		func(c core.Customer) (time.Time, string) { return c.CreatedAt, c.ID })
}

func (r *SQLRepository) CountCustomers(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM customers`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count customers: %w", err)
	}
	return n, nil
}

// Projects

const projectColumns = `id, customer_id, customer_name, subject, value_cents, status, notes, created_at, updated_at`

func scanProject(row interface{ Scan(...any) error }) (core.Project, error) {
	var (
		p                core.Project
		status           string
		value            int64
		created, updated int64
	)
	if err := row.Scan(&p.ID, &p.CustomerID, &p.CustomerName, &p.Subject, &value, &status, &p.Notes, &created, &updated); err != nil {
		return core.Project{}, err
	}
	p.Value = core.Money{Cents: value}
	p.Status = core.ProjectStatus(status)
	p.CreatedAt = time.Unix(0, created).UTC()
	p.UpdatedAt = time.Unix(0, updated).UTC()
	return p, nil
}

func (r *SQLRepository) CreateProject(ctx context.Context, p core.Project) (core.Project, error) {
	p.ID = uuid.NewString()
	p.CreatedAt = r.now()
	p.UpdatedAt = p.CreatedAt
	_, err := r.db.ExecContext(ctx, r.rebind(`INSERT INTO projects (`+projectColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		p.ID, p.CustomerID, p.CustomerName, p.Subject, p.Value.Cents, string(p.Status), p.Notes,
		p.CreatedAt.UnixNano(), p.UpdatedAt.UnixNano())
	if err != nil {
		return core.Project{}, fmt.Errorf("insert project: %w", err)
	}
	slog.InfoContext(ctx, "Project saved", "id", p.ID, "customer", p.CustomerName, "status", p.Status)
	return p, nil
}

func (r *SQLRepository) UpdateProject(ctx context.Context, p core.Project) (core.Project, error) {
	res, err := r.db.ExecContext(ctx, r.rebind(`UPDATE projects
		SET customer_id = ?, customer_name = ?, subject = ?, value_cents = ?, status = ?, notes = ?, updated_at = ?
		WHERE id = ?`),
		p.CustomerID, p.CustomerName, p.Subject, p.Value.Cents, string(p.Status), p.Notes, r.now().UnixNano(), p.ID)
	if err != nil {
		return core.Project{}, fmt.Errorf("update project: %w", err)
	}
	if err := expectOne(res, "project", p.ID); err != nil {
		return core.Project{}, err
	}
	return r.GetProject(ctx, p.ID)
}

func (r *SQLRepository) GetProject(ctx context.Context, id string) (core.Project, error) {
	p, err := scanProject(r.db.QueryRowContext(ctx, r.rebind(`SELECT `+projectColumns+` FROM projects WHERE id = ?`), id))
	if err != nil {
		return core.Project{}, notFound(err, "project", id)
	}
	return p, nil
}

func (r *SQLRepository) ListProjects(ctx context.Context, req core.PageRequest) (core.Page[core.Project], error) {
	return listPage(ctx, r, "projects", projectColumns, req, scanProject,
		func(p core.Project) (time.Time, string) { return p.CreatedAt, p.ID })
}

// Sync queue

func (r *SQLRepository) PendingSync(ctx context.Context, limit int) ([]core.PaymentRecord, error) {
	rows, err := r.db.QueryContext(ctx, r.rebind(`SELECT `+paymentColumns+` FROM payments
		WHERE sync_status <> ? ORDER BY created_at, id LIMIT ?`), string(core.SyncDone), limit)
	if err != nil {
		return nil, fmt.Errorf("query pending payments: %w", err)
	}
	defer rows.Close()
	return collect(rows, scanPayment)
}

// MarkSynced records the sheet row. The status only flips to synced when
// version is still current, so an edit made during the sync stays pending.
func (r *SQLRepository) MarkSynced(ctx context.Context, id string, version int64, sheetRef string) error {
	res, err := r.db.ExecContext(ctx, r.rebind(`UPDATE payments
		SET sheet_ref = ?, sync_error = '',
			sync_status = CASE WHEN version = ? THEN ? ELSE sync_status END
		WHERE id = ?`), sheetRef, version, string(core.SyncDone), id)
	if err != nil {
		return fmt.Errorf("mark synced: %w", err)
	}
	return expectOne(res, "payment", id)
}

func (r *SQLRepository) MarkSyncError(ctx context.Context, id string, reason string) error {
	res, err := r.db.ExecContext(ctx, r.rebind(`UPDATE payments SET sync_status = ?, sync_error = ? WHERE id = ?`),
		string(core.SyncFailed), reason, id)
	if err != nil {
		return fmt.Errorf("mark sync error: %w", err)
	}
	return expectOne(res, "payment", id)
}

// helpers

func listPage[T any](ctx context.Context, r *SQLRepository, table, columns string, req core.PageRequest,
	scan func(interface{ Scan(...any) error }) (T, error), key func(T) (time.Time, string)) (core.Page[T], error) {

	cursor, hasCursor, err := core.DecodeCursor(req.Cursor)
	if err != nil {
		return core.Page[T]{}, err
	}
	limit := core.ClampLimit(req.Limit, 5, maxPageSize)

	query := `SELECT ` + columns + ` FROM ` + table
	var args []any
	if hasCursor {
		query += ` WHERE created_at < ? OR (created_at = ? AND id < ?)`
		n := cursor.CreatedAt.UnixNano()
		args = append(args, n, n, cursor.ID)
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ?`
	args = append(args, limit+1)

	rows, err := r.db.QueryContext(ctx, r.rebind(query), args...)
	if err != nil {
		return core.Page[T]{}, fmt.Errorf("list %s: %w", table, err)
	}
	defer rows.Close()

	items, err := collect(rows, scan)
	if err != nil {
		return core.Page[T]{}, err
	}

	var page core.Page[T]
	if len(items) > limit {
		items = items[:limit]
		t, id := key(items[limit-1])
		page.NextCursor = core.Cursor{CreatedAt: t, ID: id}.Encode()
	}
	page.Items = items
	return page, nil
}

func collect[T any](rows *sql.Rows, scan func(interface{ Scan(...any) error }) (T, error)) ([]T, error) {
	var out []T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return out, nil
}

func notFound(err error, what, id string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", what, id, core.ErrNotFound)
	}
	return fmt.Errorf("get %s %s: %w", what, id, err)
}

func expectOne(res sql.Result, what, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", what, id, core.ErrNotFound)
	}
	return nil
}
