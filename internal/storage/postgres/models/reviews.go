package models

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"critichub/proj/internal/domain/filters"
	"critichub/proj/internal/domain/models"
	"critichub/proj/internal/storage"
	"critichub/proj/internal/storage/postgres"
)

type ReviewModel struct {
	DB *pgxpool.Pool
}

const reviewSelect = `
	SELECT %s r.id, r.title_id, r.author_id, u.username AS author, r.text, r.score, r.created_at
	FROM reviews r
	JOIN users u ON u.id = r.author_id`

func (m *ReviewModel) ListForTitle(ctx context.Context, titleID int64, f filters.Filters) ([]models.Review, int, error) {
	query := fmt.Sprintf(reviewSelect, "count(*) OVER(),") + fmt.Sprintf(`
	WHERE r.title_id = $1
	ORDER BY r.%s %s, r.id ASC
	LIMIT $2 OFFSET $3`, f.SortColumn(), f.SortDirection())
	rows, _ := m.DB.Query(ctx, query, titleID, f.Limit(), f.Offset())
	type row struct {
		Count int
		models.Review
	}
	outputRows, err := pgx.CollectRows(rows, pgx.RowToStructByName[row])
	if err != nil {
		return nil, 0, err
	}
	if len(outputRows) == 0 {
		return []models.Review{}, 0, nil
	}
	reviews := make([]models.Review, 0, len(outputRows))
	for _, r := range outputRows {
		reviews = append(reviews, r.Review)
	}
	return reviews, outputRows[0].Count, nil
}

func (m *ReviewModel) Get(ctx context.Context, titleID, reviewID int64) (*models.Review, error) {
	rows, _ := m.DB.Query(ctx, fmt.Sprintf(reviewSelect, "")+` WHERE r.title_id = $1 AND r.id = $2`, titleID, reviewID)
	review, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[models.Review])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	return &review, nil
}

// ScoresForTitles loads every review score for the given titles in one
// query, grouped by title. Feeds the rating aggregation on title reads.
func (m *ReviewModel) ScoresForTitles(ctx context.Context, titleIDs []int64) (map[int64][]int, error) {
	rows, _ := m.DB.Query(ctx, `SELECT title_id, score FROM reviews WHERE title_id = ANY($1)`, titleIDs)
	type row struct {
		TitleID int64
		Score   int
	}
	outputRows, err := pgx.CollectRows(rows, pgx.RowToStructByName[row])
	if err != nil {
		return nil, err
	}
	scores := make(map[int64][]int, len(titleIDs))
	for _, r := range outputRows {
		scores[r.TitleID] = append(scores[r.TitleID], r.Score)
	}
	return scores, nil
}

// Exists reports whether the author already reviewed the title. The
// unique index on (title_id, author_id) remains the authoritative
// guard; this read only serves the friendly early rejection.
func (m *ReviewModel) Exists(ctx context.Context, titleID, authorID int64) (bool, error) {
	var exists bool
	err := m.DB.QueryRow(
		ctx,
		`SELECT EXISTS (SELECT 1 FROM reviews WHERE title_id = $1 AND author_id = $2)`,
		titleID, authorID,
	).Scan(&exists)
	return exists, err
}

func (m *ReviewModel) Insert(ctx context.Context, titleID, authorID int64, text string, score int) (int64, error) {
	var id int64
	err := m.DB.QueryRow(
		ctx,
		`INSERT INTO reviews (title_id, author_id, text, score) VALUES ($1, $2, $3, $4) RETURNING id`,
		titleID, authorID, text, score,
	).Scan(&id)
	if err != nil {
		var pgxErr *pgconn.PgError
		if errors.As(err, &pgxErr) && pgxErr.Code == postgres.ErrConflictCode {
			return 0, storage.ErrConflict
		}
		return 0, err
	}
	return id, nil
}

func (m *ReviewModel) Update(ctx context.Context, reviewID int64, text string, score int) error {
	status, err := m.DB.Exec(ctx, `UPDATE reviews SET text = $1, score = $2 WHERE id = $3`, text, score, reviewID)
	if err != nil {
		return err
	}
	if status.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (m *ReviewModel) Delete(ctx context.Context, titleID, reviewID int64) error {
	status, err := m.DB.Exec(ctx, `DELETE FROM reviews WHERE title_id = $1 AND id = $2`, titleID, reviewID)
	if err != nil {
		return err
	}
	if status.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}
