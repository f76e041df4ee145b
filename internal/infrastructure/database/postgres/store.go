package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/turtacn/minorchanges/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/minorchanges/pkg/errors"
	"github.com/turtacn/minorchanges/pkg/types/common"
	"github.com/turtacn/minorchanges/pkg/types/variant"
)

// DBTX is the subset of *pgxpool.Pool and pgx.Tx the store uses.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	CopyFrom(ctx context.Context, table pgx.Identifier, columns []string, src pgx.CopyFromSource) (int64, error)
}

// RunSummary is the per-run bookkeeping written by FinishRun.
type RunSummary struct {
	MoleculesRead     int
	MoleculesWithHits int
	VariantsGenerated int
}

// VariantStore persists runs and their variants.
type VariantStore interface {
	StartRun(ctx context.Context, runID common.ID, fingerprint string, rules []string) error
	FinishRun(ctx context.Context, runID common.ID, summary RunSummary) error
	SaveVariants(ctx context.Context, records []variant.Record) (int64, error)
	ListByRun(ctx context.Context, runID common.ID, limit int) ([]variant.Record, error)
}

type variantStore struct {
	db  DBTX
	log logging.Logger
	now func() time.Time
}

// NewVariantStore returns a VariantStore over db.
func NewVariantStore(db DBTX, log logging.Logger) VariantStore {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &variantStore{db: db, log: log.Named("variant_store"), now: time.Now}
}

var variantColumns = []string{"id", "run_id", "parent", "parent_smiles", "ordinal", "name", "smiles", "rule", "created_at"}

func (s *variantStore) StartRun(ctx context.Context, runID common.ID, fingerprint string, rules []string) error {
	if rules == nil {
		rules = []string{}
	}
	_, err := s.db.Exec(ctx,
		`INSERT INTO variant_runs (id, fingerprint, rules, started_at) VALUES ($1, $2, $3, $4)`,
		string(runID), fingerprint, rules, s.now().UTC())
	if err != nil {
		return errors.Wrap(err, errors.CodeDBQueryError, "failed to start run").WithDetail(string(runID))
	}
	return nil
}

func (s *variantStore) FinishRun(ctx context.Context, runID common.ID, summary RunSummary) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE variant_runs
		    SET finished_at = $2, molecules_read = $3, molecules_with_hits = $4, variants_generated = $5
		  WHERE id = $1`,
		string(runID), s.now().UTC(), summary.MoleculesRead, summary.MoleculesWithHits, summary.VariantsGenerated)
	if err != nil {
		return errors.Wrap(err, errors.CodeDBQueryError, "failed to finish run").WithDetail(string(runID))
	}
	if tag.RowsAffected() == 0 {
		return errors.New(errors.CodeNotFound, "run not found").WithDetail(string(runID))
	}
	return nil
}

// SaveVariants bulk-inserts records with COPY.
func (s *variantStore) SaveVariants(ctx context.Context, records []variant.Record) (int64, error) {
	if len(records) == 0 {
		return 0, nil
	}
	rows := make([][]any, len(records))
	for i, r := range records {
		created := time.Time(r.CreatedAt)
		if created.IsZero() {
			created = s.now().UTC()
		}
		rows[i] = []any{string(r.ID), string(r.RunID), r.Parent, r.ParentSMILES, r.Ordinal, r.Name, r.SMILES, r.Rule, created}
	}
	n, err := s.db.CopyFrom(ctx, pgx.Identifier{"variants"}, variantColumns, pgx.CopyFromRows(rows))
	if err != nil {
		return n, errors.Wrap(err, errors.CodeDBQueryError, "failed to save variants").
			WithDetailf("%d record(s)", len(records))
	}
	s.log.Debug("variants saved", logging.Int64("rows", n))
	return n, nil
}

// ListByRun returns the variants of runID ordered by parent and ordinal.  A
// non-positive limit returns every row.
func (s *variantStore) ListByRun(ctx context.Context, runID common.ID, limit int) ([]variant.Record, error) {
	q := `SELECT id, run_id, parent, parent_smiles, ordinal, name, smiles, rule, created_at
	        FROM variants WHERE run_id = $1 ORDER BY parent, ordinal`
	args := []any{string(runID)}
	if limit > 0 {
		q += ` LIMIT $2`
		args = append(args, limit)
	}
	rows, err := s.db.Query(ctx, q, args...)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDBQueryError, "failed to list variants").WithDetail(string(runID))
	}
	defer rows.Close()

	var out []variant.Record
	for rows.Next() {
		var (
			r       variant.Record
			id, run string
			created time.Time
		)
		if err := rows.Scan(&id, &run, &r.Parent, &r.ParentSMILES, &r.Ordinal, &r.Name, &r.SMILES, &r.Rule, &created); err != nil {
			return nil, errors.Wrap(err, errors.CodeDBQueryError, "failed to scan variant")
		}
		r.ID, r.RunID = common.ID(id), common.ID(run)
		r.CreatedAt = common.Timestamp(created)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeDBQueryError, "failed to iterate variants")
	}
	return out, nil
}

//Personal.AI order the ending
