package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/mintvault/catalog-cli/internal/model"
)

// Pool is the minimal pgx pool surface used by PostgresStore. pgxpool.Pool
// and pgxmock both satisfy it.
type Pool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresFromPool creates a PostgresStore from an existing pool.
// Used by tests to inject a mock pool.
func NewPostgresFromPool(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS catalog_entries (
	id                     TEXT PRIMARY KEY,
	name                   TEXT NOT NULL,
	set_code               TEXT NOT NULL DEFAULT '',
	category               TEXT NOT NULL DEFAULT '',
	tcg_product_id         TEXT,
	cardtrader_id          TEXT,
	upc                    TEXT,
	tcg_is_verified        BOOLEAN NOT NULL DEFAULT FALSE,
	cardtrader_is_verified BOOLEAN NOT NULL DEFAULT FALSE,
	upc_is_verified        BOOLEAN NOT NULL DEFAULT FALSE,
	created_at             TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at             TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS staged_candidates (
	id               TEXT PRIMARY KEY,
	catalog_entry_id TEXT NOT NULL REFERENCES catalog_entries(id),
	marketplace      TEXT NOT NULL,
	code             TEXT NOT NULL,
	scraped_name     TEXT NOT NULL,
	provenance       TEXT NOT NULL DEFAULT '',
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (catalog_entry_id, code)
);

CREATE INDEX IF NOT EXISTS idx_catalog_entries_name ON catalog_entries(name);
CREATE INDEX IF NOT EXISTS idx_catalog_entries_upc_verified ON catalog_entries(upc_is_verified);
CREATE INDEX IF NOT EXISTS idx_catalog_entries_tcg_verified ON catalog_entries(tcg_is_verified);
CREATE INDEX IF NOT EXISTS idx_staged_candidates_entry ON staged_candidates(catalog_entry_id);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) CreateEntry(ctx context.Context, entry model.CatalogEntry) (*model.CatalogEntry, error) {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	entry.CreatedAt = now
	entry.UpdatedAt = now

	_, err := s.pool.Exec(ctx,
		`INSERT INTO catalog_entries
		 (id, name, set_code, category, tcg_product_id, cardtrader_id, upc,
		  tcg_is_verified, cardtrader_is_verified, upc_is_verified, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		entry.ID, entry.Name, entry.SetCode, entry.Category,
		nullable(entry.TCGProductID), nullable(entry.CardTraderID), nullable(entry.UPC),
		entry.TCGVerified, entry.CardTraderVerified, entry.UPCVerified, now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert catalog entry")
	}
	return &entry, nil
}

func (s *PostgresStore) GetEntry(ctx context.Context, id string) (*model.CatalogEntry, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, name, set_code, category, tcg_product_id, cardtrader_id, upc,
		        tcg_is_verified, cardtrader_is_verified, upc_is_verified, created_at, updated_at
		 FROM catalog_entries WHERE id = $1`,
		id,
	)
	return scanEntryPg(row)
}

func (s *PostgresStore) ListUnverified(ctx context.Context, marketplace model.Marketplace, limit int) ([]model.CatalogEntry, error) {
	_, flagCol, ok := verifiedColumns(marketplace)
	if !ok {
		return nil, eris.Errorf("postgres: unknown marketplace %q", marketplace)
	}

	query := fmt.Sprintf(
		`SELECT id, name, set_code, category, tcg_product_id, cardtrader_id, upc,
		        tcg_is_verified, cardtrader_is_verified, upc_is_verified, created_at, updated_at
		 FROM catalog_entries WHERE %s = FALSE ORDER BY name`, flagCol)
	var args []any
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list unverified")
	}
	defer rows.Close()

	var entries []model.CatalogEntry
	for rows.Next() {
		e, err := scanEntryPg(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, eris.Wrap(rows.Err(), "postgres: list unverified iterate")
}

func (s *PostgresStore) SetExternalID(ctx context.Context, id string, marketplace model.Marketplace, externalID string, verified bool) error {
	idCol, flagCol, ok := verifiedColumns(marketplace)
	if !ok {
		return eris.Errorf("postgres: unknown marketplace %q", marketplace)
	}

	tag, err := s.pool.Exec(ctx,
		fmt.Sprintf(`UPDATE catalog_entries SET %s = $1, %s = $2, updated_at = $3 WHERE id = $4`, idCol, flagCol),
		externalID, verified, time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: set %s for entry %s", idCol, id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "catalog entry %s", id)
	}
	return nil
}

func (s *PostgresStore) StagedExists(ctx context.Context, entryID, code string) (bool, error) {
	var n int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(1) FROM staged_candidates WHERE catalog_entry_id = $1 AND code = $2`,
		entryID, code,
	).Scan(&n)
	if err != nil {
		return false, eris.Wrap(err, "postgres: staged exists")
	}
	return n > 0, nil
}

func (s *PostgresStore) CreateStaged(ctx context.Context, sc model.StagedCandidate) (*model.StagedCandidate, error) {
	if sc.ID == "" {
		sc.ID = uuid.New().String()
	}
	sc.CreatedAt = time.Now().UTC()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO staged_candidates (id, catalog_entry_id, marketplace, code, scraped_name, provenance, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		sc.ID, sc.EntryID, string(sc.Marketplace), sc.Code, sc.ScrapedName, sc.Provenance, sc.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert staged candidate")
	}
	return &sc, nil
}

func (s *PostgresStore) GetStaged(ctx context.Context, id string) (*model.StagedCandidate, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, catalog_entry_id, marketplace, code, scraped_name, provenance, created_at
		 FROM staged_candidates WHERE id = $1`,
		id,
	)
	return scanStagedPg(row)
}

func (s *PostgresStore) DeleteStaged(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM staged_candidates WHERE id = $1`, id)
	if err != nil {
		return eris.Wrapf(err, "postgres: delete staged candidate %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "staged candidate %s", id)
	}
	return nil
}

func (s *PostgresStore) ListStaged(ctx context.Context, limit int) ([]model.StagedCandidate, error) {
	query := `SELECT id, catalog_entry_id, marketplace, code, scraped_name, provenance, created_at
	          FROM staged_candidates ORDER BY created_at DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list staged")
	}
	defer rows.Close()

	var out []model.StagedCandidate
	for rows.Next() {
		sc, err := scanStagedPg(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *sc)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list staged iterate")
}

func scanEntryPg(row pgx.Row) (*model.CatalogEntry, error) {
	var e model.CatalogEntry
	var tcgID, ctID, upc *string

	err := row.Scan(&e.ID, &e.Name, &e.SetCode, &e.Category, &tcgID, &ctID, &upc,
		&e.TCGVerified, &e.CardTraderVerified, &e.UPCVerified, &e.CreatedAt, &e.UpdatedAt)
	if err == pgx.ErrNoRows {
		return nil, eris.Wrap(ErrNotFound, "catalog entry")
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: scan catalog entry")
	}

	if tcgID != nil {
		e.TCGProductID = *tcgID
	}
	if ctID != nil {
		e.CardTraderID = *ctID
	}
	if upc != nil {
		e.UPC = *upc
	}
	return &e, nil
}

func scanStagedPg(row pgx.Row) (*model.StagedCandidate, error) {
	var sc model.StagedCandidate
	var marketplace string

	err := row.Scan(&sc.ID, &sc.EntryID, &marketplace, &sc.Code, &sc.ScrapedName, &sc.Provenance, &sc.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, eris.Wrap(ErrNotFound, "staged candidate")
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: scan staged candidate")
	}

	sc.Marketplace = model.Marketplace(marketplace)
	return &sc, nil
}
