package reservation

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/auto-strada/site/db"
	"github.com/auto-strada/site/valuation"
)

// Reservation records a seller-context valuation so the listing flow can
// pick it up later.
type Reservation struct {
	ID            int                     `json:"id" db:"id"`
	VIN           string                  `json:"vin" db:"vin"`
	UserID        int                     `json:"user_id" db:"user_id"`
	ValuationData valuation.ValuationData `json:"valuation_data" db:"valuation_data"`
	CreatedAt     time.Time               `json:"created_at" db:"created_at"`
}

// Sink adapts this package to the resolver's ReservationSink interface.
type Sink struct{}

func (Sink) CreateReservation(ctx context.Context, vin string, userID int, data valuation.ValuationData) (string, error) {
	return CreateReservation(ctx, vin, userID, data)
}

// CreateReservation inserts a reservation and returns its id.
func CreateReservation(ctx context.Context, vin string, userID int, data valuation.ValuationData) (string, error) {
	blob, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("failed to marshal valuation data: %w", err)
	}

	res, err := db.Get().ExecContext(ctx, `
		INSERT INTO reservation (vin, user_id, valuation_data)
		VALUES (?, ?, ?)`, vin, userID, string(blob))
	if err != nil {
		return "", fmt.Errorf("failed to create reservation: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return "", fmt.Errorf("failed to read reservation id: %w", err)
	}
	return strconv.FormatInt(id, 10), nil
}

// GetReservation returns a reservation by id, or nil if it does not exist.
func GetReservation(ctx context.Context, id int) (*Reservation, error) {
	row := db.Get().QueryRowContext(ctx, `
		SELECT id, vin, user_id, valuation_data, created_at
		FROM reservation
		WHERE id = ?`, id)

	var r Reservation
	var blob string
	if err := row.Scan(&r.ID, &r.VIN, &r.UserID, &blob, &r.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read reservation: %w", err)
	}

	if err := json.Unmarshal([]byte(blob), &r.ValuationData); err != nil {
		return nil, fmt.Errorf("corrupt valuation_data for reservation %d: %w", id, err)
	}
	return &r, nil
}
