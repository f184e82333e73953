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

type TitleModel struct {
	DB *pgxpool.Pool
}

// TitleFilter narrows the title list; zero values mean "no filter".
type TitleFilter struct {
	CategorySlug string
	GenreSlug    string
	Name         string
	Year         int32
}

const titleSelect = `
	SELECT %s t.id, t.name, t.year, t.description,
		t.category_id, c.name AS category_name, c.slug AS category_slug
	FROM titles t
	LEFT JOIN categories c ON c.id = t.category_id`

type titleRow struct {
	ID           int64
	Name         string
	Year         int32
	Description  string
	CategoryID   *int64
	CategoryName *string
	CategorySlug *string
}

func (r titleRow) toDomain() models.Title {
	title := models.Title{
		ID:          r.ID,
		Name:        r.Name,
		Year:        r.Year,
		Description: r.Description,
		Genres:      []models.Genre{},
	}
	if r.CategoryID != nil {
		title.Category = &models.Category{ID: *r.CategoryID, Name: *r.CategoryName, Slug: *r.CategorySlug}
	}
	return title
}

func (m *TitleModel) Get(ctx context.Context, id int64) (*models.Title, error) {
	rows, _ := m.DB.Query(ctx, fmt.Sprintf(titleSelect, "")+` WHERE t.id = $1`, id)
	row, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[titleRow])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	title := row.toDomain()
	genresByTitle, err := m.genresFor(ctx, []int64{title.ID})
	if err != nil {
		return nil, err
	}
	if genres, ok := genresByTitle[title.ID]; ok {
		title.Genres = genres
	}
	return &title, nil
}

func (m *TitleModel) List(ctx context.Context, filter TitleFilter, f filters.Filters) ([]models.Title, int, error) {
	// qualified to avoid ambiguity with the joined categories columns
	sortCol := "t." + f.SortColumn()
	query := fmt.Sprintf(titleSelect, "count(*) OVER(),") + fmt.Sprintf(`
	WHERE (c.slug = $1 OR $1 = '')
	AND ($2 = '' OR EXISTS (
		SELECT 1 FROM genre_titles gt JOIN genres g ON g.id = gt.genre_id
		WHERE gt.title_id = t.id AND g.slug = $2))
	AND (t.name ILIKE '%%' || $3 || '%%' OR $3 = '')
	AND (t.year = $4 OR $4 = 0)
	ORDER BY %s %s, t.id ASC
	LIMIT $5 OFFSET $6`, sortCol, f.SortDirection())
	rows, _ := m.DB.Query(ctx, query, filter.CategorySlug, filter.GenreSlug, filter.Name, filter.Year, f.Limit(), f.Offset())
	type row struct {
		Count int
		titleRow
	}
	outputRows, err := pgx.CollectRows(rows, pgx.RowToStructByName[row])
	if err != nil {
		return nil, 0, err
	}
	if len(outputRows) == 0 {
		return []models.Title{}, 0, nil
	}
	titles := make([]models.Title, 0, len(outputRows))
	ids := make([]int64, 0, len(outputRows))
	for _, r := range outputRows {
		titles = append(titles, r.toDomain())
		ids = append(ids, r.ID)
	}
	genresByTitle, err := m.genresFor(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	for i := range titles {
		if genres, ok := genresByTitle[titles[i].ID]; ok {
			titles[i].Genres = genres
		}
	}
	return titles, outputRows[0].Count, nil
}

func (m *TitleModel) genresFor(ctx context.Context, titleIDs []int64) (map[int64][]models.Genre, error) {
	rows, _ := m.DB.Query(
		ctx,
		`SELECT gt.title_id, g.id, g.name, g.slug FROM genre_titles gt
		JOIN genres g ON g.id = gt.genre_id
		WHERE gt.title_id = ANY($1) ORDER BY g.id`,
		titleIDs,
	)
	type row struct {
		TitleID int64
		ID      int64
		Name    string
		Slug    string
	}
	outputRows, err := pgx.CollectRows(rows, pgx.RowToStructByName[row])
	if err != nil {
		return nil, err
	}
	genres := make(map[int64][]models.Genre, len(titleIDs))
	for _, r := range outputRows {
		genres[r.TitleID] = append(genres[r.TitleID], models.Genre{ID: r.ID, Name: r.Name, Slug: r.Slug})
	}
	return genres, nil
}

// Insert creates a title and its genre join rows in one transaction and
// returns the new title id.
func (m *TitleModel) Insert(ctx context.Context, name string, year int32, description string, categoryID *int64, genreIDs []int64) (int64, error) {
	tx, err := m.DB.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)
	var id int64
	err = tx.QueryRow(
		ctx,
		`INSERT INTO titles (name, year, description, category_id) VALUES ($1, $2, $3, $4) RETURNING id`,
		name, year, description, categoryID,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	for _, genreID := range genreIDs {
		if _, err := tx.Exec(ctx, `INSERT INTO genre_titles (title_id, genre_id) VALUES ($1, $2)`, id, genreID); err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return id, nil
}

// Update rewrites the title's scalar fields and, when genreIDs is
// non-nil, replaces the genre set.
func (m *TitleModel) Update(ctx context.Context, id int64, name string, year int32, description string, categoryID *int64, genreIDs []int64) error {
	tx, err := m.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)
	status, err := tx.Exec(
		ctx,
		`UPDATE titles SET name = $1, year = $2, description = $3, category_id = $4 WHERE id = $5`,
		name, year, description, categoryID, id,
	)
	if err != nil {
		return err
	}
	if status.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	if genreIDs != nil {
		if _, err := tx.Exec(ctx, `DELETE FROM genre_titles WHERE title_id = $1`, id); err != nil {
			return err
		}
		for _, genreID := range genreIDs {
			if _, err := tx.Exec(ctx, `INSERT INTO genre_titles (title_id, genre_id) VALUES ($1, $2)`, id, genreID); err != nil {
				return err
			}
		}
	}
	return tx.Commit(ctx)
}

func (m *TitleModel) Delete(ctx context.Context, id int64) error {
	status, err := m.DB.Exec(ctx, `DELETE FROM titles WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if status.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}
