package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"NewsDigest/internal/domain"
	"NewsDigest/internal/ports"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"

	// keeps IN lists under SQLite's bound-variable limit
	batchSize = 500
)

var itemColumns = []string{
	"id", "origin_id", "title", "source_name", "description",
	"published_at", "summary", "category", "fetched_at", "delivered",
}

// SQLStore persists items into SQLite or Postgres.
type SQLStore struct {
	db      *sql.DB
	driver  string
	builder sq.StatementBuilderType
}

var _ ports.ItemStore = (*SQLStore)(nil)

// Open connects to the database and verifies the connection.
func Open(ctx context.Context, driver, dsn string) (*SQLStore, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		// one connection serializes every write through SQLite
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}

	store, err := NewSQLStore(db, driver)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// NewSQLStore wires an existing sql.DB implementation.
func NewSQLStore(db *sql.DB, driver string) (*SQLStore, error) {
	var format sq.PlaceholderFormat
	switch driver {
	case DriverSQLite:
		format = sq.Question
	case DriverPostgres:
		format = sq.Dollar
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}
	return &SQLStore{
		db:      db,
		driver:  driver,
		builder: sq.StatementBuilder.PlaceholderFormat(format),
	}, nil
}

// Migrate creates the items table and its indexes when missing.
func (s *SQLStore) Migrate(ctx context.Context) error {
	schema := sqliteSchema
	if s.driver == DriverPostgres {
		schema = postgresSchema
	}
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// Existing returns a map with origin ids that already exist in storage.
func (s *SQLStore) Existing(ctx context.Context, originIDs []string) (map[string]bool, error) {
	result := make(map[string]bool)
	for _, batch := range batches(originIDs) {
		query, args, err := s.builder.Select("origin_id").From("items").
			Where(sq.Eq{"origin_id": batch}).ToSql()
		if err != nil {
			return nil, fmt.Errorf("build existing query: %w", err)
		}

		rows, err := s.db.QueryContext(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("query existing: %w", err)
		}
		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				_ = rows.Close()
				return nil, fmt.Errorf("scan origin id: %w", err)
			}
			result[id] = true
		}
		if rowsErr := rows.Err(); rowsErr != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("rows iteration: %w", rowsErr)
		}
		if closeErr := rows.Close(); closeErr != nil {
			return nil, fmt.Errorf("close rows: %w", closeErr)
		}
	}
	return result, nil
}

// InsertIfAbsent stores the item unless its origin id is already present.
// A duplicate is not an error; inserted reports whether a row was written.
func (s *SQLStore) InsertIfAbsent(ctx context.Context, item domain.Item) (bool, error) {
	if item.OriginID == "" {
		return false, errors.New("insert item: empty origin id")
	}

	var category any
	if item.Summary != "" {
		category = string(item.Category.Coerce())
	}

	query, args, err := s.builder.Insert("items").
		Columns("origin_id", "title", "source_name", "description",
			"published_at", "summary", "category", "fetched_at", "delivered").
		Values(item.OriginID, item.Title, item.SourceName, nullString(item.Description),
			nullTime(item.PublishedAt), nullString(item.Summary), category,
			item.FetchedAt.UTC(), false).
		Suffix("ON CONFLICT (origin_id) DO NOTHING").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build insert: %w", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("insert item %s: %w", item.OriginID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert item %s: rows affected: %w", item.OriginID, err)
	}
	return n == 1, nil
}

// SaveEnrichment overwrites summary and category of an item.
func (s *SQLStore) SaveEnrichment(ctx context.Context, originID, summary string, category domain.Category) error {
	if summary == "" {
		return fmt.Errorf("save enrichment %s: empty summary", originID)
	}

	query, args, err := s.builder.Update("items").
		Set("summary", summary).
		Set("category", string(category.Coerce())).
		Where(sq.Eq{"origin_id": originID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build enrichment update: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save enrichment %s: %w", originID, err)
	}
	return nil
}

// PendingEnrichment lists items that were created but never enriched.
func (s *SQLStore) PendingEnrichment(ctx context.Context) ([]domain.Item, error) {
	return s.list(ctx, s.selectItems().
		Where(sq.Or{sq.Eq{"summary": nil}, sq.Eq{"summary": ""}}).
		OrderBy("fetched_at ASC", "id ASC"))
}

// Unsent lists enriched items that were never part of a delivered digest.
func (s *SQLStore) Unsent(ctx context.Context) ([]domain.Item, error) {
	return s.list(ctx, s.selectItems().
		Where(sq.Eq{"delivered": false}).
		Where(sq.NotEq{"summary": nil}).
		Where(sq.NotEq{"summary": ""}).
		OrderBy("fetched_at DESC", "id DESC"))
}

// Recent lists the newest items by fetch time regardless of delivery state.
func (s *SQLStore) Recent(ctx context.Context, limit int) ([]domain.Item, error) {
	if limit <= 0 {
		return nil, nil
	}
	return s.list(ctx, s.selectItems().
		OrderBy("fetched_at DESC", "id DESC").
		Limit(uint64(limit)))
}

// MarkDelivered flips delivered to true for the given ids in one transaction.
// Rows already delivered are left untouched.
func (s *SQLStore) MarkDelivered(ctx context.Context, originIDs []string) (int64, error) {
	if len(originIDs) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin mark delivered: %w", err)
	}

	var total int64
	for _, batch := range batches(originIDs) {
		query, args, err := s.builder.Update("items").
			Set("delivered", true).
			Where(sq.Eq{"origin_id": batch, "delivered": false}).
			ToSql()
		if err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("build mark delivered: %w", err)
		}

		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("mark delivered: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("mark delivered: rows affected: %w", err)
		}
		total += n
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit mark delivered: %w", err)
	}
	return total, nil
}

func (s *SQLStore) selectItems() sq.SelectBuilder {
	return s.builder.Select(itemColumns...).From("items")
}

func (s *SQLStore) list(ctx context.Context, b sq.SelectBuilder) ([]domain.Item, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	var items []domain.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return items, nil
}

func scanItem(rows *sql.Rows) (domain.Item, error) {
	var (
		item        domain.Item
		description sql.NullString
		publishedAt sql.NullTime
		summary     sql.NullString
		category    sql.NullString
	)
	err := rows.Scan(&item.ID, &item.OriginID, &item.Title, &item.SourceName, &description,
		&publishedAt, &summary, &category, &item.FetchedAt, &item.Delivered)
	if err != nil {
		return domain.Item{}, fmt.Errorf("scan item: %w", err)
	}

	item.Description = description.String
	item.Summary = summary.String
	if category.Valid {
		item.Category = domain.ParseCategory(category.String)
	}
	if publishedAt.Valid {
		t := publishedAt.Time.UTC()
		item.PublishedAt = &t
	}
	item.FetchedAt = item.FetchedAt.UTC()
	return item, nil
}

func batches(ids []string) [][]string {
	var out [][]string
	for start := 0; start < len(ids); start += batchSize {
		end := start + batchSize
		if end > len(ids) {
			end = len(ids)
		}
		out = append(out, ids[start:end])
	}
	return out
}

func nullString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
