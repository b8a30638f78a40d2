package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/mintvault/catalog-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS catalog_entries (
	id                     TEXT PRIMARY KEY,
	name                   TEXT NOT NULL,
	set_code               TEXT NOT NULL DEFAULT '',
	category               TEXT NOT NULL DEFAULT '',
	tcg_product_id         TEXT,
	cardtrader_id          TEXT,
	upc                    TEXT,
	tcg_is_verified        INTEGER NOT NULL DEFAULT 0,
	cardtrader_is_verified INTEGER NOT NULL DEFAULT 0,
	upc_is_verified        INTEGER NOT NULL DEFAULT 0,
	created_at             DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at             DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS staged_candidates (
	id               TEXT PRIMARY KEY,
	catalog_entry_id TEXT NOT NULL REFERENCES catalog_entries(id),
	marketplace      TEXT NOT NULL,
	code             TEXT NOT NULL,
	scraped_name     TEXT NOT NULL,
	provenance       TEXT NOT NULL DEFAULT '',
	created_at       DATETIME NOT NULL DEFAULT (datetime('now')),
	UNIQUE (catalog_entry_id, code)
);

CREATE INDEX IF NOT EXISTS idx_catalog_entries_name ON catalog_entries(name);
CREATE INDEX IF NOT EXISTS idx_catalog_entries_upc_verified ON catalog_entries(upc_is_verified);
CREATE INDEX IF NOT EXISTS idx_catalog_entries_tcg_verified ON catalog_entries(tcg_is_verified);
CREATE INDEX IF NOT EXISTS idx_staged_candidates_entry ON staged_candidates(catalog_entry_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateEntry(ctx context.Context, entry model.CatalogEntry) (*model.CatalogEntry, error) {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	entry.CreatedAt = now
	entry.UpdatedAt = now

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO catalog_entries
		 (id, name, set_code, category, tcg_product_id, cardtrader_id, upc,
		  tcg_is_verified, cardtrader_is_verified, upc_is_verified, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.Name, entry.SetCode, entry.Category,
		nullable(entry.TCGProductID), nullable(entry.CardTraderID), nullable(entry.UPC),
		entry.TCGVerified, entry.CardTraderVerified, entry.UPCVerified, now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert catalog entry")
	}
	return &entry, nil
}

func (s *SQLiteStore) GetEntry(ctx context.Context, id string) (*model.CatalogEntry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, set_code, category, tcg_product_id, cardtrader_id, upc,
		        tcg_is_verified, cardtrader_is_verified, upc_is_verified, created_at, updated_at
		 FROM catalog_entries WHERE id = ?`,
		id,
	)
	return scanEntry(row)
}

func (s *SQLiteStore) ListUnverified(ctx context.Context, marketplace model.Marketplace, limit int) ([]model.CatalogEntry, error) {
	_, flagCol, ok := verifiedColumns(marketplace)
	if !ok {
		return nil, eris.Errorf("sqlite: unknown marketplace %q", marketplace)
	}

	query := fmt.Sprintf(
		`SELECT id, name, set_code, category, tcg_product_id, cardtrader_id, upc,
		        tcg_is_verified, cardtrader_is_verified, upc_is_verified, created_at, updated_at
		 FROM catalog_entries WHERE %s = 0 ORDER BY name`, flagCol)
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list unverified")
	}
	defer rows.Close()

	var entries []model.CatalogEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, eris.Wrap(rows.Err(), "sqlite: list unverified iterate")
}

func (s *SQLiteStore) SetExternalID(ctx context.Context, id string, marketplace model.Marketplace, externalID string, verified bool) error {
	idCol, flagCol, ok := verifiedColumns(marketplace)
	if !ok {
		return eris.Errorf("sqlite: unknown marketplace %q", marketplace)
	}

	res, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE catalog_entries SET %s = ?, %s = ?, updated_at = ? WHERE id = ?`, idCol, flagCol),
		externalID, verified, time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: set %s for entry %s", idCol, id)
	}
	return checkRowsAffected(res, "catalog entry", id)
}

func (s *SQLiteStore) StagedExists(ctx context.Context, entryID, code string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM staged_candidates WHERE catalog_entry_id = ? AND code = ?`,
		entryID, code,
	).Scan(&n)
	if err != nil {
		return false, eris.Wrap(err, "sqlite: staged exists")
	}
	return n > 0, nil
}

func (s *SQLiteStore) CreateStaged(ctx context.Context, sc model.StagedCandidate) (*model.StagedCandidate, error) {
	if sc.ID == "" {
		sc.ID = uuid.New().String()
	}
	sc.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO staged_candidates (id, catalog_entry_id, marketplace, code, scraped_name, provenance, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sc.ID, sc.EntryID, string(sc.Marketplace), sc.Code, sc.ScrapedName, sc.Provenance, sc.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert staged candidate")
	}
	return &sc, nil
}

func (s *SQLiteStore) GetStaged(ctx context.Context, id string) (*model.StagedCandidate, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, catalog_entry_id, marketplace, code, scraped_name, provenance, created_at
		 FROM staged_candidates WHERE id = ?`,
		id,
	)
	return scanStaged(row)
}

func (s *SQLiteStore) DeleteStaged(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM staged_candidates WHERE id = ?`, id)
	if err != nil {
		return eris.Wrapf(err, "sqlite: delete staged candidate %s", id)
	}
	return checkRowsAffected(res, "staged candidate", id)
}

func (s *SQLiteStore) ListStaged(ctx context.Context, limit int) ([]model.StagedCandidate, error) {
	query := `SELECT id, catalog_entry_id, marketplace, code, scraped_name, provenance, created_at
	          FROM staged_candidates ORDER BY created_at DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list staged")
	}
	defer rows.Close()

	var out []model.StagedCandidate
	for rows.Next() {
		sc, err := scanStaged(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *sc)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list staged iterate")
}

// helpers

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Wrapf(ErrNotFound, "%s %s", entity, id)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanEntry(row scannable) (*model.CatalogEntry, error) {
	var e model.CatalogEntry
	var tcgID, ctID, upc sql.NullString

	err := row.Scan(&e.ID, &e.Name, &e.SetCode, &e.Category, &tcgID, &ctID, &upc,
		&e.TCGVerified, &e.CardTraderVerified, &e.UPCVerified, &e.CreatedAt, &e.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, eris.Wrap(ErrNotFound, "catalog entry")
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan catalog entry")
	}

	e.TCGProductID = tcgID.String
	e.CardTraderID = ctID.String
	e.UPC = upc.String
	return &e, nil
}

func scanStaged(row scannable) (*model.StagedCandidate, error) {
	var sc model.StagedCandidate
	var marketplace string

	err := row.Scan(&sc.ID, &sc.EntryID, &marketplace, &sc.Code, &sc.ScrapedName, &sc.Provenance, &sc.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, eris.Wrap(ErrNotFound, "staged candidate")
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan staged candidate")
	}

	sc.Marketplace = model.Marketplace(marketplace)
	return &sc, nil
}
