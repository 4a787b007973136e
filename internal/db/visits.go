package db

import (
	"context"

	"bidpilot/internal/models"
)

// visitColumns is the standard column list for visit queries.
const visitColumns = `id, visited_at, ip, visit_type, keyword, url, referrer`

// InsertVisit records one tracked visit.
func (d *DB) InsertVisit(ctx context.Context, v *models.Visit) error {
	_, err := d.Pool.Exec(ctx, `
		INSERT INTO visits (id, visited_at, ip, visit_type, keyword, url, referrer)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, v.ID, v.Timestamp, v.IP, v.Type, v.Keyword, v.URL, v.Referrer)
	return err
}

// RecentVisits returns the latest visits, newest first.
func (d *DB) RecentVisits(ctx context.Context, limit int) ([]models.Visit, error) {
	rows, err := d.Pool.Query(ctx, `
		SELECT `+visitColumns+`
		FROM visits
		ORDER BY visited_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var visits []models.Visit
	for rows.Next() {
		var v models.Visit
		if err := rows.Scan(&v.ID, &v.Timestamp, &v.IP, &v.Type, &v.Keyword, &v.URL, &v.Referrer); err != nil {
			return nil, err
		}
		visits = append(visits, v)
	}
	return visits, rows.Err()
}

// CountVisitsByType returns visit totals grouped by classification.
func (d *DB) CountVisitsByType(ctx context.Context) (map[string]int64, error) {
	rows, err := d.Pool.Query(ctx, `
		SELECT visit_type, COUNT(*)
		FROM visits
		GROUP BY visit_type
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var t string
		var n int64
		if err := rows.Scan(&t, &n); err != nil {
			return nil, err
		}
		counts[t] = n
	}
	return counts, rows.Err()
}
