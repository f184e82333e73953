package models

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"critichub/proj/internal/domain/filters"
	"critichub/proj/internal/domain/models"
	"critichub/proj/internal/storage"
)

type CommentModel struct {
	DB *pgxpool.Pool
}

const commentSelect = `
	SELECT %s c.id, c.review_id, c.author_id, u.username AS author, c.text, c.created_at
	FROM comments c
	JOIN users u ON u.id = c.author_id`

func (m *CommentModel) ListForReview(ctx context.Context, reviewID int64, f filters.Filters) ([]models.Comment, int, error) {
	query := fmt.Sprintf(commentSelect, "count(*) OVER(),") + fmt.Sprintf(`
	WHERE c.review_id = $1
	ORDER BY c.%s %s, c.id ASC
	LIMIT $2 OFFSET $3`, f.SortColumn(), f.SortDirection())
	rows, _ := m.DB.Query(ctx, query, reviewID, f.Limit(), f.Offset())
	type row struct {
		Count int
		models.Comment
	}
	outputRows, err := pgx.CollectRows(rows, pgx.RowToStructByName[row])
	if err != nil {
		return nil, 0, err
	}
	if len(outputRows) == 0 {
		return []models.Comment{}, 0, nil
	}
	comments := make([]models.Comment, 0, len(outputRows))
	for _, r := range outputRows {
		comments = append(comments, r.Comment)
	}
	return comments, outputRows[0].Count, nil
}

func (m *CommentModel) Get(ctx context.Context, reviewID, commentID int64) (*models.Comment, error) {
	rows, _ := m.DB.Query(ctx, fmt.Sprintf(commentSelect, "")+` WHERE c.review_id = $1 AND c.id = $2`, reviewID, commentID)
	comment, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[models.Comment])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	return &comment, nil
}

func (m *CommentModel) Insert(ctx context.Context, reviewID, authorID int64, text string) (int64, error) {
	var id int64
	err := m.DB.QueryRow(
		ctx,
		`INSERT INTO comments (review_id, author_id, text) VALUES ($1, $2, $3) RETURNING id`,
		reviewID, authorID, text,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (m *CommentModel) Update(ctx context.Context, commentID int64, text string) error {
	status, err := m.DB.Exec(ctx, `UPDATE comments SET text = $1 WHERE id = $2`, text, commentID)
	if err != nil {
		return err
	}
	if status.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (m *CommentModel) Delete(ctx context.Context, reviewID, commentID int64) error {
	status, err := m.DB.Exec(ctx, `DELETE FROM comments WHERE review_id = $1 AND id = $2`, reviewID, commentID)
	if err != nil {
		return err
	}
	if status.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}
