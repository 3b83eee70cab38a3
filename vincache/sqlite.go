package vincache

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/auto-strada/site/db"
)

// SQLiteBackend is the primary durable backend, backed by the
// vin_valuation_cache table. The table has no uniqueness constraint; reads
// order by created_at and take the freshest row, so concurrent writers for
// the same VIN are last-write-wins.
type SQLiteBackend struct{}

func (SQLiteBackend) Name() string {
	return "sqlite"
}

func (SQLiteBackend) Get(ctx context.Context, vin string, minMileage, maxMileage int) (*Entry, error) {
	row := db.Get().QueryRowContext(ctx, `
		SELECT vin, mileage, valuation_data, created_at
		FROM vin_valuation_cache
		WHERE vin = ? AND mileage BETWEEN ? AND ?
		ORDER BY created_at DESC
		LIMIT 1`, vin, minMileage, maxMileage)

	var e Entry
	var blob string
	if err := row.Scan(&e.VIN, &e.Mileage, &blob, &e.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read valuation cache: %w", err)
	}

	if err := json.Unmarshal([]byte(blob), &e.Data); err != nil {
		return nil, fmt.Errorf("corrupt valuation_data for %s: %w", vin, err)
	}
	return &e, nil
}

func (SQLiteBackend) Put(ctx context.Context, e Entry) error {
	blob, err := json.Marshal(e.Data)
	if err != nil {
		return fmt.Errorf("failed to marshal valuation data: %w", err)
	}

	_, err = db.Get().ExecContext(ctx, `
		INSERT INTO vin_valuation_cache (vin, mileage, valuation_data, created_at)
		VALUES (?, ?, ?, ?)`, e.VIN, e.Mileage, string(blob), e.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to write valuation cache: %w", err)
	}
	return nil
}
