package db

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// BidChange is one persisted bid adjustment.
type BidChange struct {
	ID        int64     `json:"id"`
	ReportID  uuid.UUID `json:"report_id"`
	ChangedAt time.Time `json:"changed_at"`
	KeywordID string    `json:"keyword_id"`
	Keyword   string    `json:"keyword"`
	OldBid    int       `json:"old_bid"`
	NewBid    int       `json:"new_bid"`
	Delta     int       `json:"delta"`
	Action    string    `json:"action"`
	Reason    string    `json:"reason"`
}

// InsertBidChanges writes a batch of bid changes in one round trip.
func (d *DB) InsertBidChanges(ctx context.Context, changes []BidChange) error {
	if len(changes) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, c := range changes {
		batch.Queue(`
			INSERT INTO bid_changes (report_id, changed_at, keyword_id, keyword, old_bid, new_bid, delta, action, reason)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`, c.ReportID, c.ChangedAt, c.KeywordID, c.Keyword, c.OldBid, c.NewBid, c.Delta, c.Action, c.Reason)
	}
	results := d.Pool.SendBatch(ctx, batch)
	defer results.Close()
	for range changes {
		if _, err := results.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// RecentBidChanges returns the latest bid changes, newest first.
func (d *DB) RecentBidChanges(ctx context.Context, limit int) ([]BidChange, error) {
	rows, err := d.Pool.Query(ctx, `
		SELECT id, report_id, changed_at, keyword_id, keyword, old_bid, new_bid, delta, action, reason
		FROM bid_changes
		ORDER BY changed_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var changes []BidChange
	for rows.Next() {
		var c BidChange
		if err := rows.Scan(&c.ID, &c.ReportID, &c.ChangedAt, &c.KeywordID, &c.Keyword,
			&c.OldBid, &c.NewBid, &c.Delta, &c.Action, &c.Reason); err != nil {
			return nil, err
		}
		changes = append(changes, c)
	}
	return changes, rows.Err()
}
