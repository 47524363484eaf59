package books

import (
	"fmt"

	"github.com/mrlokans/kotobi/internal/entities"
)

// GetStatistics aggregates the collection in one query. COALESCE keeps every
// sum at zero, never NULL, on an empty table.
func (r *Repository) GetStatistics() (entities.Statistics, error) {
	conn, err := r.db.Conn()
	if err != nil {
		return entities.Statistics{}, err
	}

	var stats entities.Statistics
	err = conn.Model(&entities.Book{}).Select(
		`COUNT(*) AS total_books,
		COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS completed_books,
		COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS currently_reading,
		COALESCE(SUM(pages_read), 0) AS total_pages_read,
		COALESCE(SUM(total_pages), 0) AS total_pages_goal`,
		entities.StatusCompleted, entities.StatusReading,
	).Scan(&stats).Error
	if err != nil {
		return entities.Statistics{}, fmt.Errorf("failed to compute statistics: %w", err)
	}
	return stats, nil
}
