package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"cockpit-server/internal/modules/perf/types"
)

// createdAtLayout is fixed width so created_at sorts as text.
const createdAtLayout = "2006-01-02T15:04:05.000000000Z07:00"

//go:embed sql/insert-calculation.sql
var insertCalculationSQL string

//go:embed sql/list-recent-calculations.sql
var listRecentCalculationsSQL string

//go:embed sql/list-recent-calculations-by-kind.sql
var listRecentCalculationsByKindSQL string

type CalculationRepository interface {
	InsertCalculation(ctx context.Context, c types.Calculation) (int64, error)
	// ListRecent returns up to limit calculations, newest first. An empty
	// kind matches every kind.
	ListRecent(ctx context.Context, kind types.Kind, limit int) ([]types.Calculation, error)
}

type repositoryImpl struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) CalculationRepository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) InsertCalculation(ctx context.Context, c types.Calculation) (int64, error) {
	createdAt := c.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	inputs := c.Inputs
	if len(inputs) == 0 {
		inputs = json.RawMessage(`{}`)
	}
	var result any
	if c.Result != nil {
		result = *c.Result
	}

	res, err := r.db.ExecContext(ctx, insertCalculationSQL,
		string(c.Kind),
		string(c.Derate),
		string(inputs),
		result,
		c.Message,
		createdAt.UTC().Format(createdAtLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("insert calculation: %w", err)
	}
	return res.LastInsertId()
}

func (r *repositoryImpl) ListRecent(ctx context.Context, kind types.Kind, limit int) ([]types.Calculation, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if kind == "" {
		rows, err = r.db.QueryContext(ctx, listRecentCalculationsSQL, limit)
	} else {
		rows, err = r.db.QueryContext(ctx, listRecentCalculationsByKindSQL, string(kind), limit)
	}
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("close calculations rows", "error", err)
		}
	}()
	return scanCalculations(rows)
}

func scanCalculations(rows *sql.Rows) ([]types.Calculation, error) {
	out := []types.Calculation{}
	for rows.Next() {
		var (
			c      types.Calculation
			kind   string
			derate string
			inputs string
			result sql.NullFloat64
			ts     string
		)
		if err := rows.Scan(&c.ID, &kind, &derate, &inputs, &result, &c.Message, &ts); err != nil {
			return nil, err
		}
		c.Kind = types.Kind(kind)
		c.Derate = types.Derate(derate)
		c.Inputs = json.RawMessage(inputs)
		if result.Valid {
			v := result.Float64
			c.Result = &v
		}
		t, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, fmt.Errorf("parse created_at %q: %w", ts, err)
		}
		c.CreatedAt = t
		out = append(out, c)
	}
	return out, rows.Err()
}
