package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/dealdesk/dealdesk/internal/db"
	"github.com/dealdesk/dealdesk/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection for
// faster execution of the most frequently used store operations.
var preparedStatements = map[string]string{
	"get_deal":          `SELECT id, name, address, city, state, property_type, latitude, longitude, square_feet, created_at, updated_at FROM deals WHERE id = $1`,
	"get_document":      `SELECT id, deal_id, document_type, file_path, original_filename, processing_status, processing_steps, error_message, page_count, created_at, updated_at FROM documents WHERE id = $1`,
	"update_doc_status": `UPDATE documents SET processing_status = $1, error_message = $2, updated_at = $3 WHERE id = $4`,
	"update_doc_steps":  `UPDATE documents SET processing_steps = $1, updated_at = $2 WHERE id = $3`,
	"list_assumptions":  `SELECT id, set_id, key, value_number, unit, range_min, range_max, source_type, source_ref, notes, updated_at FROM assumptions WHERE set_id = $1 ORDER BY key`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	// Apply pool sizing from config with sensible defaults.
	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	// Prepare frequently-used statements on each new connection.
	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// Pool returns the underlying database pool for use by subsystems that need
// direct query access.
func (s *PostgresStore) Pool() db.Pool {
	return s.pool
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS deals (
	id            TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	name          TEXT NOT NULL,
	address       TEXT NOT NULL DEFAULT '',
	city          TEXT NOT NULL DEFAULT '',
	state         TEXT NOT NULL DEFAULT '',
	property_type TEXT NOT NULL DEFAULT 'other',
	latitude      DOUBLE PRECISION,
	longitude     DOUBLE PRECISION,
	square_feet   DOUBLE PRECISION,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS documents (
	id                TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	deal_id           TEXT NOT NULL REFERENCES deals(id),
	document_type     TEXT NOT NULL DEFAULT 'offering_memorandum',
	file_path         TEXT NOT NULL,
	original_filename TEXT NOT NULL,
	processing_status TEXT NOT NULL DEFAULT 'pending',
	processing_steps  JSONB NOT NULL DEFAULT '[]',
	error_message     TEXT NOT NULL DEFAULT '',
	page_count        INTEGER,
	created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS extracted_fields (
	id           TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	document_id  TEXT NOT NULL REFERENCES documents(id),
	field_key    TEXT NOT NULL,
	value_text   TEXT,
	value_number DOUBLE PRECISION,
	unit         TEXT,
	confidence   DOUBLE PRECISION NOT NULL DEFAULT 0,
	source_page  INTEGER
);

CREATE TABLE IF NOT EXISTS market_tables (
	id          TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	document_id TEXT NOT NULL REFERENCES documents(id),
	table_type  TEXT NOT NULL DEFAULT 'unknown',
	headers     JSONB NOT NULL DEFAULT '[]',
	rows        JSONB NOT NULL DEFAULT '[]',
	source_page INTEGER,
	confidence  DOUBLE PRECISION NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS assumption_sets (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	deal_id    TEXT NOT NULL REFERENCES deals(id),
	name       TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS assumptions (
	id           TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	set_id       TEXT NOT NULL REFERENCES assumption_sets(id),
	key          TEXT NOT NULL,
	value_number DOUBLE PRECISION,
	unit         TEXT,
	range_min    DOUBLE PRECISION,
	range_max    DOUBLE PRECISION,
	source_type  TEXT NOT NULL DEFAULT 'manual',
	source_ref   TEXT,
	notes        TEXT,
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (set_id, key)
);

CREATE TABLE IF NOT EXISTS field_validations (
	id           TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	deal_id      TEXT NOT NULL REFERENCES deals(id),
	field_key    TEXT NOT NULL,
	om_value     DOUBLE PRECISION,
	market_value DOUBLE PRECISION,
	status       TEXT NOT NULL,
	explanation  TEXT NOT NULL DEFAULT '',
	sources      JSONB NOT NULL DEFAULT '[]',
	confidence   DOUBLE PRECISION NOT NULL DEFAULT 0,
	search_steps JSONB NOT NULL DEFAULT '[]',
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (deal_id, field_key)
);

CREATE TABLE IF NOT EXISTS comps (
	id             TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	deal_id        TEXT NOT NULL REFERENCES deals(id),
	address        TEXT NOT NULL,
	city           TEXT NOT NULL DEFAULT '',
	state          TEXT NOT NULL DEFAULT '',
	property_type  TEXT NOT NULL DEFAULT 'other',
	source         TEXT NOT NULL,
	year_built     INTEGER,
	unit_count     INTEGER,
	square_feet    DOUBLE PRECISION,
	sale_price     DOUBLE PRECISION,
	price_per_unit DOUBLE PRECISION,
	price_per_sqft DOUBLE PRECISION,
	cap_rate       DOUBLE PRECISION,
	rent_per_unit  DOUBLE PRECISION,
	occupancy_rate DOUBLE PRECISION,
	noi            DOUBLE PRECISION,
	expense_ratio  DOUBLE PRECISION,
	opex_per_unit  DOUBLE PRECISION,
	source_url     TEXT,
	fetched_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (deal_id, address)
);

CREATE TABLE IF NOT EXISTS model_results (
	id                TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	set_id            TEXT NOT NULL REFERENCES assumption_sets(id),
	noi_stabilized    DOUBLE PRECISION NOT NULL,
	exit_value        DOUBLE PRECISION NOT NULL,
	total_cost        DOUBLE PRECISION NOT NULL,
	profit            DOUBLE PRECISION NOT NULL,
	profit_margin_pct DOUBLE PRECISION NOT NULL,
	computed_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS exports (
	id          TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	deal_id     TEXT NOT NULL REFERENCES deals(id),
	set_id      TEXT NOT NULL REFERENCES assumption_sets(id),
	file_path   TEXT NOT NULL,
	export_type TEXT NOT NULL DEFAULT 'xlsx',
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_deals_property_type ON deals(property_type);
CREATE INDEX IF NOT EXISTS idx_deals_city ON deals(city);
CREATE INDEX IF NOT EXISTS idx_documents_deal_id ON documents(deal_id);
CREATE INDEX IF NOT EXISTS idx_extracted_fields_document_id ON extracted_fields(document_id);
CREATE INDEX IF NOT EXISTS idx_market_tables_document_id ON market_tables(document_id);
CREATE INDEX IF NOT EXISTS idx_assumption_sets_deal_id ON assumption_sets(deal_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_assumptions_set_id ON assumptions(set_id);
CREATE INDEX IF NOT EXISTS idx_field_validations_deal_id ON field_validations(deal_id);
CREATE INDEX IF NOT EXISTS idx_comps_deal_id ON comps(deal_id);
CREATE INDEX IF NOT EXISTS idx_model_results_set_id ON model_results(set_id, computed_at DESC);
CREATE INDEX IF NOT EXISTS idx_exports_deal_id ON exports(deal_id);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

// Deals

func (s *PostgresStore) CreateDeal(ctx context.Context, deal model.Deal) (*model.Deal, error) {
	deal.ID = uuid.New()
	now := time.Now().UTC()
	deal.CreatedAt = now
	deal.UpdatedAt = now
	if deal.PropertyType == "" {
		deal.PropertyType = model.PropertyOther
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO deals (id, name, address, city, state, property_type, latitude, longitude, square_feet, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		deal.ID, deal.Name, deal.Address, deal.City, deal.State, string(deal.PropertyType),
		deal.Latitude, deal.Longitude, deal.SquareFeet, deal.CreatedAt, deal.UpdatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert deal")
	}
	return &deal, nil
}

func (s *PostgresStore) GetDeal(ctx context.Context, dealID uuid.UUID) (*model.Deal, error) {
	var d model.Deal
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, address, city, state, property_type, latitude, longitude, square_feet, created_at, updated_at FROM deals WHERE id = $1`,
		dealID,
	).Scan(&d.ID, &d.Name, &d.Address, &d.City, &d.State, &d.PropertyType,
		&d.Latitude, &d.Longitude, &d.SquareFeet, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.NotFoundf("deal %s", dealID)
		}
		return nil, eris.Wrapf(err, "postgres: get deal %s", dealID)
	}
	return &d, nil
}

func (s *PostgresStore) UpdateDeal(ctx context.Context, deal model.Deal) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE deals SET name = $1, address = $2, city = $3, state = $4, property_type = $5,
		 latitude = $6, longitude = $7, square_feet = $8, updated_at = $9 WHERE id = $10`,
		deal.Name, deal.Address, deal.City, deal.State, string(deal.PropertyType),
		deal.Latitude, deal.Longitude, deal.SquareFeet, time.Now().UTC(), deal.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update deal %s", deal.ID)
	}
	if tag.RowsAffected() == 0 {
		return model.NotFoundf("deal %s", deal.ID)
	}
	return nil
}

func (s *PostgresStore) ListDeals(ctx context.Context, filter model.DealFilter) ([]model.Deal, error) {
	query := `SELECT id, name, address, city, state, property_type, latitude, longitude, square_feet, created_at, updated_at FROM deals WHERE true`
	args := []any{}
	argIdx := 1

	if filter.PropertyType != "" {
		query += fmt.Sprintf(` AND property_type = $%d`, argIdx)
		args = append(args, string(filter.PropertyType))
		argIdx++
	}
	if filter.City != "" {
		query += fmt.Sprintf(` AND city = $%d`, argIdx)
		args = append(args, filter.City)
		argIdx++
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list deals")
	}
	defer rows.Close()

	var deals []model.Deal
	for rows.Next() {
		var d model.Deal
		if err := rows.Scan(&d.ID, &d.Name, &d.Address, &d.City, &d.State, &d.PropertyType,
			&d.Latitude, &d.Longitude, &d.SquareFeet, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan deal")
		}
		deals = append(deals, d)
	}
	return deals, eris.Wrap(rows.Err(), "postgres: list deals iterate")
}

// Documents

func (s *PostgresStore) CreateDocument(ctx context.Context, doc model.Document) (*model.Document, error) {
	doc.ID = uuid.New()
	now := time.Now().UTC()
	doc.CreatedAt = now
	doc.UpdatedAt = now
	if doc.ProcessingStatus == "" {
		doc.ProcessingStatus = model.ProcessingPending
	}
	if doc.ProcessingSteps == nil {
		doc.ProcessingSteps = []model.ProcessingStep{}
	}

	stepsJSON, err := json.Marshal(doc.ProcessingSteps)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal processing steps")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO documents (id, deal_id, document_type, file_path, original_filename, processing_status, processing_steps, error_message, page_count, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		doc.ID, doc.DealID, string(doc.DocumentType), doc.FilePath, doc.OriginalFilename,
		string(doc.ProcessingStatus), stepsJSON, doc.ErrorMessage, doc.PageCount, doc.CreatedAt, doc.UpdatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert document")
	}
	return &doc, nil
}

func (s *PostgresStore) GetDocument(ctx context.Context, docID uuid.UUID) (*model.Document, error) {
	var d model.Document
	var stepsJSON []byte

	err := s.pool.QueryRow(ctx,
		`SELECT id, deal_id, document_type, file_path, original_filename, processing_status, processing_steps, error_message, page_count, created_at, updated_at FROM documents WHERE id = $1`,
		docID,
	).Scan(&d.ID, &d.DealID, &d.DocumentType, &d.FilePath, &d.OriginalFilename,
		&d.ProcessingStatus, &stepsJSON, &d.ErrorMessage, &d.PageCount, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.NotFoundf("document %s", docID)
		}
		return nil, eris.Wrapf(err, "postgres: get document %s", docID)
	}
	if err := json.Unmarshal(stepsJSON, &d.ProcessingSteps); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal processing steps")
	}
	return &d, nil
}

func (s *PostgresStore) ListDocuments(ctx context.Context, dealID uuid.UUID) ([]model.Document, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, deal_id, document_type, file_path, original_filename, processing_status, processing_steps, error_message, page_count, created_at, updated_at
		 FROM documents WHERE deal_id = $1 ORDER BY created_at DESC`,
		dealID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list documents")
	}
	defer rows.Close()

	var docs []model.Document
	for rows.Next() {
		var d model.Document
		var stepsJSON []byte
		if err := rows.Scan(&d.ID, &d.DealID, &d.DocumentType, &d.FilePath, &d.OriginalFilename,
			&d.ProcessingStatus, &stepsJSON, &d.ErrorMessage, &d.PageCount, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan document")
		}
		if err := json.Unmarshal(stepsJSON, &d.ProcessingSteps); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal processing steps")
		}
		docs = append(docs, d)
	}
	return docs, eris.Wrap(rows.Err(), "postgres: list documents iterate")
}

func (s *PostgresStore) UpdateDocumentStatus(ctx context.Context, docID uuid.UUID, status model.ProcessingStatus, errMsg string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE documents SET processing_status = $1, error_message = $2, updated_at = $3 WHERE id = $4`,
		string(status), errMsg, time.Now().UTC(), docID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update document status %s", docID)
	}
	if tag.RowsAffected() == 0 {
		return model.NotFoundf("document %s", docID)
	}
	return nil
}

func (s *PostgresStore) UpdateDocumentSteps(ctx context.Context, docID uuid.UUID, steps []model.ProcessingStep) error {
	stepsJSON, err := json.Marshal(steps)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal processing steps")
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE documents SET processing_steps = $1, updated_at = $2 WHERE id = $3`,
		stepsJSON, time.Now().UTC(), docID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update document steps %s", docID)
	}
	if tag.RowsAffected() == 0 {
		return model.NotFoundf("document %s", docID)
	}
	return nil
}

func (s *PostgresStore) UpdateDocumentPageCount(ctx context.Context, docID uuid.UUID, pages int) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE documents SET page_count = $1, updated_at = $2 WHERE id = $3`,
		pages, time.Now().UTC(), docID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update document page count %s", docID)
	}
	if tag.RowsAffected() == 0 {
		return model.NotFoundf("document %s", docID)
	}
	return nil
}

// Extracted fields and tables

var extractedFieldColumns = []string{"id", "document_id", "field_key", "value_text", "value_number", "unit", "confidence", "source_page"}

func (s *PostgresStore) CreateExtractedFields(ctx context.Context, fields []model.ExtractedField) (int64, error) {
	rows := make([][]any, 0, len(fields))
	for _, f := range fields {
		if f.ID == uuid.Nil {
			f.ID = uuid.New()
		}
		rows = append(rows, []any{f.ID, f.DocumentID, f.FieldKey, f.ValueText, f.ValueNumber, f.Unit, f.Confidence, f.SourcePage})
	}
	n, err := db.CopyFrom(ctx, s.pool, "extracted_fields", extractedFieldColumns, rows)
	return n, eris.Wrap(err, "postgres: create extracted fields")
}

// ListNumericFields returns the most recent numeric value per field key across
// all of the deal's documents.
func (s *PostgresStore) ListNumericFields(ctx context.Context, dealID uuid.UUID) ([]model.ExtractedField, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT DISTINCT ON (f.field_key) f.id, f.document_id, f.field_key, f.value_text, f.value_number, f.unit, f.confidence, f.source_page
		 FROM extracted_fields f
		 JOIN documents d ON d.id = f.document_id
		 WHERE d.deal_id = $1 AND f.value_number IS NOT NULL
		 ORDER BY f.field_key, d.created_at DESC, f.confidence DESC`,
		dealID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list numeric fields")
	}
	defer rows.Close()

	var fields []model.ExtractedField
	for rows.Next() {
		var f model.ExtractedField
		if err := rows.Scan(&f.ID, &f.DocumentID, &f.FieldKey, &f.ValueText, &f.ValueNumber, &f.Unit, &f.Confidence, &f.SourcePage); err != nil {
			return nil, eris.Wrap(err, "postgres: scan extracted field")
		}
		fields = append(fields, f)
	}
	return fields, eris.Wrap(rows.Err(), "postgres: list numeric fields iterate")
}

var marketTableColumns = []string{"id", "document_id", "table_type", "headers", "rows", "source_page", "confidence"}

func (s *PostgresStore) CreateMarketTables(ctx context.Context, tables []model.MarketTable) (int64, error) {
	rows := make([][]any, 0, len(tables))
	for _, t := range tables {
		if t.ID == uuid.Nil {
			t.ID = uuid.New()
		}
		headersJSON, err := json.Marshal(t.Headers)
		if err != nil {
			return 0, eris.Wrap(err, "postgres: marshal table headers")
		}
		rowsJSON, err := json.Marshal(t.Rows)
		if err != nil {
			return 0, eris.Wrap(err, "postgres: marshal table rows")
		}
		rows = append(rows, []any{t.ID, t.DocumentID, t.TableType, headersJSON, rowsJSON, t.SourcePage, t.Confidence})
	}
	n, err := db.CopyFrom(ctx, s.pool, "market_tables", marketTableColumns, rows)
	return n, eris.Wrap(err, "postgres: create market tables")
}

func (s *PostgresStore) ListMarketTables(ctx context.Context, docID uuid.UUID) ([]model.MarketTable, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, document_id, table_type, headers, rows, source_page, confidence FROM market_tables WHERE document_id = $1 ORDER BY source_page`,
		docID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list market tables")
	}
	defer rows.Close()

	var tables []model.MarketTable
	for rows.Next() {
		var t model.MarketTable
		var headersJSON, rowsJSON []byte
		if err := rows.Scan(&t.ID, &t.DocumentID, &t.TableType, &headersJSON, &rowsJSON, &t.SourcePage, &t.Confidence); err != nil {
			return nil, eris.Wrap(err, "postgres: scan market table")
		}
		if err := json.Unmarshal(headersJSON, &t.Headers); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal table headers")
		}
		if err := json.Unmarshal(rowsJSON, &t.Rows); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal table rows")
		}
		tables = append(tables, t)
	}
	return tables, eris.Wrap(rows.Err(), "postgres: list market tables iterate")
}

// Assumption sets

func (s *PostgresStore) CreateAssumptionSet(ctx context.Context, dealID uuid.UUID, name string) (*model.AssumptionSet, error) {
	set := model.AssumptionSet{
		ID:        uuid.New(),
		DealID:    dealID,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	set.UpdatedAt = set.CreatedAt

	_, err := s.pool.Exec(ctx,
		`INSERT INTO assumption_sets (id, deal_id, name, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
		set.ID, set.DealID, set.Name, set.CreatedAt, set.UpdatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert assumption set")
	}
	return &set, nil
}

func (s *PostgresStore) GetAssumptionSet(ctx context.Context, setID uuid.UUID) (*model.AssumptionSet, error) {
	var set model.AssumptionSet
	err := s.pool.QueryRow(ctx,
		`SELECT id, deal_id, name, created_at, updated_at FROM assumption_sets WHERE id = $1`,
		setID,
	).Scan(&set.ID, &set.DealID, &set.Name, &set.CreatedAt, &set.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.NotFoundf("assumption set %s", setID)
		}
		return nil, eris.Wrapf(err, "postgres: get assumption set %s", setID)
	}
	return &set, nil
}

func (s *PostgresStore) ListAssumptionSets(ctx context.Context, dealID uuid.UUID) ([]model.AssumptionSet, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, deal_id, name, created_at, updated_at FROM assumption_sets WHERE deal_id = $1 ORDER BY created_at DESC`,
		dealID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list assumption sets")
	}
	defer rows.Close()

	var sets []model.AssumptionSet
	for rows.Next() {
		var set model.AssumptionSet
		if err := rows.Scan(&set.ID, &set.DealID, &set.Name, &set.CreatedAt, &set.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan assumption set")
		}
		sets = append(sets, set)
	}
	return sets, eris.Wrap(rows.Err(), "postgres: list assumption sets iterate")
}

func (s *PostgresStore) ListAssumptions(ctx context.Context, setID uuid.UUID) ([]model.Assumption, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, set_id, key, value_number, unit, range_min, range_max, source_type, source_ref, notes, updated_at FROM assumptions WHERE set_id = $1 ORDER BY key`,
		setID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list assumptions")
	}
	defer rows.Close()

	var assumptions []model.Assumption
	for rows.Next() {
		var a model.Assumption
		if err := rows.Scan(&a.ID, &a.SetID, &a.Key, &a.ValueNumber, &a.Unit, &a.RangeMin, &a.RangeMax,
			&a.SourceType, &a.SourceRef, &a.Notes, &a.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan assumption")
		}
		assumptions = append(assumptions, a)
	}
	return assumptions, eris.Wrap(rows.Err(), "postgres: list assumptions iterate")
}

func (s *PostgresStore) UpsertAssumption(ctx context.Context, a model.Assumption) (*model.Assumption, error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	a.UpdatedAt = time.Now().UTC()

	err := s.pool.QueryRow(ctx,
		`INSERT INTO assumptions (id, set_id, key, value_number, unit, range_min, range_max, source_type, source_ref, notes, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 ON CONFLICT (set_id, key) DO UPDATE SET
		   value_number = $4, unit = $5, range_min = $6, range_max = $7,
		   source_type = $8, source_ref = $9, notes = $10, updated_at = $11
		 RETURNING id`,
		a.ID, a.SetID, a.Key, a.ValueNumber, a.Unit, a.RangeMin, a.RangeMax,
		string(a.SourceType), a.SourceRef, a.Notes, a.UpdatedAt,
	).Scan(&a.ID)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: upsert assumption %s", a.Key)
	}
	return &a, nil
}

var assumptionColumns = []string{"id", "set_id", "key", "value_number", "unit", "range_min", "range_max", "source_type", "source_ref", "notes", "updated_at"}

// BulkUpsertAssumptions writes a batch of assumptions in one round trip,
// keyed on (set_id, key). Existing rows keep their ids.
func (s *PostgresStore) BulkUpsertAssumptions(ctx context.Context, assumptions []model.Assumption) (int64, error) {
	now := time.Now().UTC()
	rows := make([][]any, 0, len(assumptions))
	for _, a := range assumptions {
		if a.ID == uuid.Nil {
			a.ID = uuid.New()
		}
		rows = append(rows, []any{a.ID, a.SetID, a.Key, a.ValueNumber, a.Unit, a.RangeMin, a.RangeMax,
			string(a.SourceType), a.SourceRef, a.Notes, now})
	}

	n, err := db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "assumptions",
		Columns:      assumptionColumns,
		ConflictKeys: []string{"set_id", "key"},
		UpdateCols:   []string{"value_number", "unit", "range_min", "range_max", "source_type", "source_ref", "notes", "updated_at"},
	}, rows)
	return n, eris.Wrap(err, "postgres: bulk upsert assumptions")
}

// Field validations

func (s *PostgresStore) ListValidations(ctx context.Context, dealID uuid.UUID) ([]model.FieldValidation, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, deal_id, field_key, om_value, market_value, status, explanation, sources, confidence, search_steps, created_at
		 FROM field_validations WHERE deal_id = $1 ORDER BY field_key`,
		dealID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list validations")
	}
	defer rows.Close()

	var validations []model.FieldValidation
	for rows.Next() {
		var v model.FieldValidation
		var sourcesJSON, stepsJSON []byte
		if err := rows.Scan(&v.ID, &v.DealID, &v.FieldKey, &v.OMValue, &v.MarketValue, &v.Status,
			&v.Explanation, &sourcesJSON, &v.Confidence, &stepsJSON, &v.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan validation")
		}
		if err := json.Unmarshal(sourcesJSON, &v.Sources); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal validation sources")
		}
		if err := json.Unmarshal(stepsJSON, &v.SearchSteps); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal search steps")
		}
		validations = append(validations, v)
	}
	return validations, eris.Wrap(rows.Err(), "postgres: list validations iterate")
}

func (s *PostgresStore) UpsertValidation(ctx context.Context, v model.FieldValidation) (*model.FieldValidation, error) {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now().UTC()
	}
	if v.Sources == nil {
		v.Sources = []model.ValidationSource{}
	}
	if v.SearchSteps == nil {
		v.SearchSteps = []model.SearchStep{}
	}

	sourcesJSON, err := json.Marshal(v.Sources)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal validation sources")
	}
	stepsJSON, err := json.Marshal(v.SearchSteps)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal search steps")
	}

	err = s.pool.QueryRow(ctx,
		`INSERT INTO field_validations (id, deal_id, field_key, om_value, market_value, status, explanation, sources, confidence, search_steps, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 ON CONFLICT (deal_id, field_key) DO UPDATE SET
		   om_value = $4, market_value = $5, status = $6, explanation = $7,
		   sources = $8, confidence = $9, search_steps = $10, created_at = $11
		 RETURNING id`,
		v.ID, v.DealID, v.FieldKey, v.OMValue, v.MarketValue, string(v.Status),
		v.Explanation, sourcesJSON, v.Confidence, stepsJSON, v.CreatedAt,
	).Scan(&v.ID)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: upsert validation %s", v.FieldKey)
	}
	return &v, nil
}

// Comps

var compColumns = []string{
	"id", "deal_id", "address", "city", "state", "property_type", "source",
	"year_built", "unit_count", "square_feet",
	"sale_price", "price_per_unit", "price_per_sqft", "cap_rate",
	"rent_per_unit", "occupancy_rate", "noi", "expense_ratio", "opex_per_unit",
	"source_url", "fetched_at", "created_at",
}

// ReplaceComps swaps the deal's comp set atomically: prior rows are deleted
// and the new batch is written in the same transaction.
func (s *PostgresStore) ReplaceComps(ctx context.Context, dealID uuid.UUID, comps []model.Comp) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: replace comps: begin tx")
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM comps WHERE deal_id = $1`, dealID); err != nil {
		return eris.Wrapf(err, "postgres: replace comps: delete for deal %s", dealID)
	}

	now := time.Now().UTC()
	rows := make([][]any, 0, len(comps))
	for _, c := range comps {
		if c.ID == uuid.Nil {
			c.ID = uuid.New()
		}
		if c.FetchedAt.IsZero() {
			c.FetchedAt = now
		}
		rows = append(rows, []any{
			c.ID, dealID, c.Address, c.City, c.State, string(c.PropertyType), string(c.Source),
			c.YearBuilt, c.UnitCount, c.SquareFeet,
			c.SalePrice, c.PricePerUnit, c.PricePerSqft, c.CapRate,
			c.RentPerUnit, c.OccupancyRate, c.NOI, c.ExpenseRatio, c.OpexPerUnit,
			c.SourceURL, c.FetchedAt, now,
		})
	}
	if _, err := db.CopyFrom(ctx, tx, "comps", compColumns, rows); err != nil {
		return eris.Wrapf(err, "postgres: replace comps: insert for deal %s", dealID)
	}

	return eris.Wrap(tx.Commit(ctx), "postgres: replace comps: commit tx")
}

func (s *PostgresStore) ListComps(ctx context.Context, dealID uuid.UUID) ([]model.Comp, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, deal_id, address, city, state, property_type, source,
		        year_built, unit_count, square_feet,
		        sale_price, price_per_unit, price_per_sqft, cap_rate,
		        rent_per_unit, occupancy_rate, noi, expense_ratio, opex_per_unit,
		        source_url, fetched_at, created_at
		 FROM comps WHERE deal_id = $1 ORDER BY address`,
		dealID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list comps")
	}
	defer rows.Close()

	var comps []model.Comp
	for rows.Next() {
		var c model.Comp
		if err := rows.Scan(&c.ID, &c.DealID, &c.Address, &c.City, &c.State, &c.PropertyType, &c.Source,
			&c.YearBuilt, &c.UnitCount, &c.SquareFeet,
			&c.SalePrice, &c.PricePerUnit, &c.PricePerSqft, &c.CapRate,
			&c.RentPerUnit, &c.OccupancyRate, &c.NOI, &c.ExpenseRatio, &c.OpexPerUnit,
			&c.SourceURL, &c.FetchedAt, &c.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan comp")
		}
		comps = append(comps, c)
	}
	return comps, eris.Wrap(rows.Err(), "postgres: list comps iterate")
}

// Model results and exports

func (s *PostgresStore) CreateModelResult(ctx context.Context, r model.ModelResult) (*model.ModelResult, error) {
	r.ID = uuid.New()
	if r.ComputedAt.IsZero() {
		r.ComputedAt = time.Now().UTC()
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO model_results (id, set_id, noi_stabilized, exit_value, total_cost, profit, profit_margin_pct, computed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		r.ID, r.SetID, r.NOIStabilized, r.ExitValue, r.TotalCost, r.Profit, r.ProfitMarginPct, r.ComputedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert model result")
	}
	return &r, nil
}

// LatestModelResult returns the most recent computation for the set, or nil
// when the set has never been computed.
func (s *PostgresStore) LatestModelResult(ctx context.Context, setID uuid.UUID) (*model.ModelResult, error) {
	var r model.ModelResult
	err := s.pool.QueryRow(ctx,
		`SELECT id, set_id, noi_stabilized, exit_value, total_cost, profit, profit_margin_pct, computed_at
		 FROM model_results WHERE set_id = $1 ORDER BY computed_at DESC LIMIT 1`,
		setID,
	).Scan(&r.ID, &r.SetID, &r.NOIStabilized, &r.ExitValue, &r.TotalCost, &r.Profit, &r.ProfitMarginPct, &r.ComputedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "postgres: latest model result %s", setID)
	}
	return &r, nil
}

func (s *PostgresStore) CreateExport(ctx context.Context, e model.Export) (*model.Export, error) {
	e.ID = uuid.New()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	if e.ExportType == "" {
		e.ExportType = model.ExportXLSX
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO exports (id, deal_id, set_id, file_path, export_type, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		e.ID, e.DealID, e.SetID, e.FilePath, string(e.ExportType), e.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert export")
	}
	return &e, nil
}

func (s *PostgresStore) ListExports(ctx context.Context, dealID uuid.UUID) ([]model.Export, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, deal_id, set_id, file_path, export_type, created_at FROM exports WHERE deal_id = $1 ORDER BY created_at DESC`,
		dealID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list exports")
	}
	defer rows.Close()

	var exports []model.Export
	for rows.Next() {
		var e model.Export
		if err := rows.Scan(&e.ID, &e.DealID, &e.SetID, &e.FilePath, &e.ExportType, &e.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan export")
		}
		exports = append(exports, e)
	}
	return exports, eris.Wrap(rows.Err(), "postgres: list exports iterate")
}
