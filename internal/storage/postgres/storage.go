package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	domainErrors "github.com/polkiloo/rigshop/internal/domain/errors"
	"github.com/polkiloo/rigshop/internal/domain/model"
	"github.com/polkiloo/rigshop/internal/domain/repository"
	"github.com/polkiloo/rigshop/internal/storage/document"
)

const uniqueViolation = "23505"

type pgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

var newPgxPool = func(ctx context.Context, cfg *pgxpool.Config) (pgxPool, error) {
	return pgxpool.NewWithConfig(ctx, cfg)
}

// Storage keeps every aggregate as a snake_case JSONB document with the
// queried fields promoted to columns.
type Storage struct {
	pool   pgxPool
	logger *slog.Logger
}

type userRepository struct {
	storage *Storage
}

type orderRepository struct {
	storage *Storage
}

type buildRepository struct {
	storage *Storage
}

type catalogRepository struct {
	storage *Storage
}

var _ repository.Factory = (*Storage)(nil)

// New creates storage with schema initialization.
func New(ctx context.Context, dsn string, logger *slog.Logger) (*Storage, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	pool, err := newPgxPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	storage := &Storage{pool: pool, logger: logger}
	if err := storage.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return storage, nil
}

// Close releases database resources.
func (s *Storage) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Factory methods for domain repositories.
func (s *Storage) Users() repository.UserRepository {
	return &userRepository{storage: s}
}

func (s *Storage) Orders() repository.OrderRepository {
	return &orderRepository{storage: s}
}

func (s *Storage) Builds() repository.BuildRepository {
	return &buildRepository{storage: s}
}

func (s *Storage) Catalog() repository.CatalogRepository {
	return &catalogRepository{storage: s}
}

func (s *Storage) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
            id TEXT PRIMARY KEY,
            email TEXT UNIQUE NOT NULL,
            doc JSONB NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS components (
            id TEXT PRIMARY KEY,
            type TEXT NOT NULL,
            doc JSONB NOT NULL,
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS builds (
            id TEXT PRIMARY KEY,
            user_id TEXT NOT NULL DEFAULT '',
            published BOOLEAN NOT NULL DEFAULT FALSE,
            doc JSONB NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS orders (
            id TEXT PRIMARY KEY,
            user_id TEXT NOT NULL DEFAULT '',
            build_status TEXT NOT NULL,
            doc JSONB NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE INDEX IF NOT EXISTS idx_components_type ON components(type)`,
		`CREATE INDEX IF NOT EXISTS idx_builds_user ON builds(user_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_builds_published ON builds(published, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_user ON orders(user_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(build_status, created_at DESC)`,
	}

	return s.WithinTransaction(ctx, func(tx pgx.Tx) error {
		for _, stmt := range statements {
			if _, err := tx.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("init schema: %w", err)
			}
		}
		return nil
	})
}

// --- UserRepository implementation ---

func (r *userRepository) Create(ctx context.Context, u *model.User) error {
	doc, err := document.EncodeJSON(u)
	if err != nil {
		return err
	}
	const query = `INSERT INTO users (id, email, doc, created_at) VALUES ($1, $2, $3, $4)`
	if _, err := r.storage.pool.Exec(ctx, query, u.ID, u.Email, doc, u.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return domainErrors.ErrAlreadyExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	const query = `SELECT doc FROM users WHERE email=$1`
	var u model.User
	if err := r.storage.getDocument(ctx, &u, query, email); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	const query = `SELECT doc FROM users WHERE id=$1`
	var u model.User
	if err := r.storage.getDocument(ctx, &u, query, id); err != nil {
		return nil, err
	}
	return &u, nil
}

// --- CatalogRepository implementation ---

func (r *catalogRepository) GetByID(ctx context.Context, id string) (*model.CatalogComponent, error) {
	const query = `SELECT doc FROM components WHERE id=$1`
	var c model.CatalogComponent
	if err := r.storage.getDocument(ctx, &c, query, id); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *catalogRepository) GetByIDs(ctx context.Context, ids []string) (map[string]model.CatalogComponent, error) {
	result := make(map[string]model.CatalogComponent, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	const query = `SELECT doc FROM components WHERE id = ANY($1)`
	items, err := listDocuments[model.CatalogComponent](ctx, r.storage, query, ids)
	if err != nil {
		return nil, err
	}
	for _, c := range items {
		result[c.ID] = c
	}
	return result, nil
}

func (r *catalogRepository) List(ctx context.Context, componentType string) ([]model.CatalogComponent, error) {
	if componentType == "" {
		return listDocuments[model.CatalogComponent](ctx, r.storage, `SELECT doc FROM components ORDER BY type, id`)
	}
	return listDocuments[model.CatalogComponent](ctx, r.storage, `SELECT doc FROM components WHERE type=$1 ORDER BY id`, componentType)
}

func (r *catalogRepository) Upsert(ctx context.Context, c *model.CatalogComponent) error {
	doc, err := document.EncodeJSON(c)
	if err != nil {
		return err
	}
	const query = `INSERT INTO components (id, type, doc) VALUES ($1, $2, $3)
                   ON CONFLICT (id) DO UPDATE SET type = EXCLUDED.type, doc = EXCLUDED.doc, updated_at = NOW()`
	if _, err := r.storage.pool.Exec(ctx, query, c.ID, c.Type, doc); err != nil {
		return fmt.Errorf("upsert component: %w", err)
	}
	return nil
}

// --- BuildRepository implementation ---

func (r *buildRepository) Create(ctx context.Context, b *model.Build) error {
	doc, err := document.EncodeJSON(b)
	if err != nil {
		return err
	}
	const query = `INSERT INTO builds (id, user_id, published, doc, created_at) VALUES ($1, $2, $3, $4, $5)`
	if _, err := r.storage.pool.Exec(ctx, query, b.ID, b.UserID, b.Published, doc, b.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return domainErrors.ErrAlreadyExists
		}
		return fmt.Errorf("insert build: %w", err)
	}
	return nil
}

func (r *buildRepository) GetByID(ctx context.Context, id string) (*model.Build, error) {
	const query = `SELECT doc FROM builds WHERE id=$1`
	var b model.Build
	if err := r.storage.getDocument(ctx, &b, query, id); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *buildRepository) ListByUser(ctx context.Context, userID string) ([]model.Build, error) {
	const query = `SELECT doc FROM builds WHERE user_id=$1 ORDER BY created_at DESC`
	return listDocuments[model.Build](ctx, r.storage, query, userID)
}

func (r *buildRepository) ListPublished(ctx context.Context) ([]model.Build, error) {
	const query = `SELECT doc FROM builds WHERE published ORDER BY created_at DESC`
	return listDocuments[model.Build](ctx, r.storage, query)
}

func (r *buildRepository) Update(ctx context.Context, b *model.Build) error {
	doc, err := document.EncodeJSON(b)
	if err != nil {
		return err
	}
	const query = `UPDATE builds SET published=$2, doc=$3 WHERE id=$1`
	return r.storage.execAffecting(ctx, "update build", query, b.ID, b.Published, doc)
}

func (r *buildRepository) Delete(ctx context.Context, id string) error {
	return r.storage.execAffecting(ctx, "delete build", `DELETE FROM builds WHERE id=$1`, id)
}

// --- OrderRepository implementation ---

func (r *orderRepository) Create(ctx context.Context, o *model.Order) error {
	doc, err := document.EncodeJSON(o)
	if err != nil {
		return err
	}
	const query = `INSERT INTO orders (id, user_id, build_status, doc, created_at) VALUES ($1, $2, $3, $4, $5)`
	if _, err := r.storage.pool.Exec(ctx, query, o.ID, o.UserID, string(o.BuildStatus), doc, o.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return domainErrors.ErrAlreadyExists
		}
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (r *orderRepository) GetByID(ctx context.Context, id string) (*model.Order, error) {
	const query = `SELECT doc FROM orders WHERE id=$1`
	var o model.Order
	if err := r.storage.getDocument(ctx, &o, query, id); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepository) List(ctx context.Context, filter model.OrderFilter) ([]model.Order, error) {
	query, args := buildOrderQuery(filter)
	return listDocuments[model.Order](ctx, r.storage, query, args...)
}

func (r *orderRepository) Update(ctx context.Context, o *model.Order) error {
	doc, err := document.EncodeJSON(o)
	if err != nil {
		return err
	}
	const query = `UPDATE orders SET build_status=$2, doc=$3 WHERE id=$1`
	return r.storage.execAffecting(ctx, "update order", query, o.ID, string(o.BuildStatus), doc)
}

func (r *orderRepository) Delete(ctx context.Context, id string) error {
	return r.storage.execAffecting(ctx, "delete order", `DELETE FROM orders WHERE id=$1`, id)
}

func buildOrderQuery(filter model.OrderFilter) (string, []any) {
	var (
		conditions []string
		args       []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conditions = append(conditions, strings.ReplaceAll(cond, "?", "$"+strconv.Itoa(len(args))))
	}

	if filter.UserID != "" {
		add("user_id=?", filter.UserID)
	}
	if filter.Status != "" {
		add("build_status=?", string(filter.Status))
	}
	if !filter.From.IsZero() {
		add("created_at>=?", filter.From)
	}
	if !filter.To.IsZero() {
		add("created_at<?", filter.To)
	}

	var sb strings.Builder
	sb.WriteString("SELECT doc FROM orders")
	if len(conditions) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(conditions, " AND "))
	}
	sb.WriteString(" ORDER BY created_at DESC")
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		sb.WriteString(" LIMIT $" + strconv.Itoa(len(args)))
	}
	return sb.String(), args
}

// --- helpers ---

func (s *Storage) getDocument(ctx context.Context, dst any, query string, args ...any) error {
	var raw []byte
	if err := s.pool.QueryRow(ctx, query, args...).Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domainErrors.ErrNotFound
		}
		return err
	}
	return document.DecodeJSON(raw, dst)
}

func listDocuments[T any](ctx context.Context, s *Storage, query string, args ...any) ([]T, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]T, 0)
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var item T
		if err := document.DecodeJSON(raw, &item); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Storage) execAffecting(ctx context.Context, op, query string, args ...any) error {
	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// WithinTransaction executes function inside transaction boundary.
func (s *Storage) WithinTransaction(ctx context.Context, fn func(pgx.Tx) error) (err error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	err = fn(tx)
	return err
}

// HealthCheck verifies database connectivity.
func (s *Storage) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.pool.Ping(ctx)
}
