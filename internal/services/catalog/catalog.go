// Package catalog manages the browsable side of the service:
// categories, genres and titles, including each title's aggregate
// rating. Ratings are derived data, recomputed from the review scores
// on every read; nothing is maintained incrementally.
package catalog

import (
	"context"
	"errors"
	"log/slog"

	"critichub/proj/internal/domain/filters"
	"critichub/proj/internal/domain/models"
	"critichub/proj/internal/storage"
	storagemodels "critichub/proj/internal/storage/postgres/models"
)

type CategoriesStorage interface {
	List(ctx context.Context, search string, f filters.Filters) ([]models.Category, int, error)
	GetBySlug(ctx context.Context, slug string) (*models.Category, error)
	Insert(ctx context.Context, name, slug string) (*models.Category, error)
	DeleteBySlug(ctx context.Context, slug string) error
}

type GenresStorage interface {
	List(ctx context.Context, search string, f filters.Filters) ([]models.Genre, int, error)
	GetBySlugs(ctx context.Context, slugs []string) ([]models.Genre, error)
	Insert(ctx context.Context, name, slug string) (*models.Genre, error)
	DeleteBySlug(ctx context.Context, slug string) error
}

type TitlesStorage interface {
	Get(ctx context.Context, id int64) (*models.Title, error)
	List(ctx context.Context, filter storagemodels.TitleFilter, f filters.Filters) ([]models.Title, int, error)
	Insert(ctx context.Context, name string, year int32, description string, categoryID *int64, genreIDs []int64) (int64, error)
	Update(ctx context.Context, id int64, name string, year int32, description string, categoryID *int64, genreIDs []int64) error
	Delete(ctx context.Context, id int64) error
}

type ScoresStorage interface {
	ScoresForTitles(ctx context.Context, titleIDs []int64) (map[int64][]int, error)
}

type CatalogService struct {
	log        *slog.Logger
	categories CategoriesStorage
	genres     GenresStorage
	titles     TitlesStorage
	scores     ScoresStorage
}

func New(log *slog.Logger, categories CategoriesStorage, genres GenresStorage, titles TitlesStorage, scores ScoresStorage) *CatalogService {
	return &CatalogService{
		log:        log,
		categories: categories,
		genres:     genres,
		titles:     titles,
		scores:     scores,
	}
}

// MeanScore is the rating aggregate: the arithmetic mean of the review
// scores, or nil when there are none. Recomputed on every read.
func MeanScore(scores []int) *float64 {
	if len(scores) == 0 {
		return nil
	}
	sum := 0
	for _, s := range scores {
		sum += s
	}
	mean := float64(sum) / float64(len(scores))
	return &mean
}

func (s *CatalogService) attachRatings(ctx context.Context, titles []*models.Title) error {
	ids := make([]int64, 0, len(titles))
	for _, t := range titles {
		ids = append(ids, t.ID)
	}
	scores, err := s.scores.ScoresForTitles(ctx, ids)
	if err != nil {
		return err
	}
	for _, t := range titles {
		t.Rating = MeanScore(scores[t.ID])
	}
	return nil
}

func (s *CatalogService) ListCategories(ctx context.Context, search string, f filters.Filters) ([]models.Category, int, error) {
	const op = "catalog.CatalogService.ListCategories"
	categories, total, err := s.categories.List(ctx, search, f)
	if err != nil {
		s.log.With("op", op).Error(err.Error())
		return nil, 0, err
	}
	return categories, total, nil
}

func (s *CatalogService) CreateCategory(ctx context.Context, name, slug string) (*models.Category, error) {
	const op = "catalog.CatalogService.CreateCategory"
	log := s.log.With("op", op, "slug", slug)
	category, err := s.categories.Insert(ctx, name, slug)
	if err != nil {
		if errors.Is(err, storage.ErrConflict) {
			log.Info("category slug already exists")
			return nil, ErrSlugTaken
		}
		log.Error(err.Error())
		return nil, err
	}
	return category, nil
}

func (s *CatalogService) DeleteCategory(ctx context.Context, slug string) error {
	const op = "catalog.CatalogService.DeleteCategory"
	if err := s.categories.DeleteBySlug(ctx, slug); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrCategoryNotFound
		}
		s.log.With("op", op, "slug", slug).Error(err.Error())
		return err
	}
	return nil
}

func (s *CatalogService) ListGenres(ctx context.Context, search string, f filters.Filters) ([]models.Genre, int, error) {
	const op = "catalog.CatalogService.ListGenres"
	genres, total, err := s.genres.List(ctx, search, f)
	if err != nil {
		s.log.With("op", op).Error(err.Error())
		return nil, 0, err
	}
	return genres, total, nil
}

func (s *CatalogService) CreateGenre(ctx context.Context, name, slug string) (*models.Genre, error) {
	const op = "catalog.CatalogService.CreateGenre"
	log := s.log.With("op", op, "slug", slug)
	genre, err := s.genres.Insert(ctx, name, slug)
	if err != nil {
		if errors.Is(err, storage.ErrConflict) {
			log.Info("genre slug already exists")
			return nil, ErrSlugTaken
		}
		log.Error(err.Error())
		return nil, err
	}
	return genre, nil
}

func (s *CatalogService) DeleteGenre(ctx context.Context, slug string) error {
	const op = "catalog.CatalogService.DeleteGenre"
	if err := s.genres.DeleteBySlug(ctx, slug); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrGenreNotFound
		}
		s.log.With("op", op, "slug", slug).Error(err.Error())
		return err
	}
	return nil
}

func (s *CatalogService) GetTitle(ctx context.Context, id int64) (*models.Title, error) {
	const op = "catalog.CatalogService.GetTitle"
	title, err := s.titles.Get(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrTitleNotFound
		}
		s.log.With("op", op, "id", id).Error(err.Error())
		return nil, err
	}
	if err := s.attachRatings(ctx, []*models.Title{title}); err != nil {
		s.log.With("op", op, "id", id).Error(err.Error())
		return nil, err
	}
	return title, nil
}

func (s *CatalogService) ListTitles(ctx context.Context, filter storagemodels.TitleFilter, f filters.Filters) ([]models.Title, int, error) {
	const op = "catalog.CatalogService.ListTitles"
	titles, total, err := s.titles.List(ctx, filter, f)
	if err != nil {
		s.log.With("op", op).Error(err.Error())
		return nil, 0, err
	}
	refs := make([]*models.Title, len(titles))
	for i := range titles {
		refs[i] = &titles[i]
	}
	if err := s.attachRatings(ctx, refs); err != nil {
		s.log.With("op", op).Error(err.Error())
		return nil, 0, err
	}
	return titles, total, nil
}

// resolveRefs maps category and genre slugs to row ids, rejecting
// unknown slugs before anything is written.
func (s *CatalogService) resolveRefs(ctx context.Context, categorySlug string, genreSlugs []string) (*int64, []int64, error) {
	var categoryID *int64
	if categorySlug != "" {
		category, err := s.categories.GetBySlug(ctx, categorySlug)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return nil, nil, ErrCategoryNotFound
			}
			return nil, nil, err
		}
		categoryID = &category.ID
	}
	var genreIDs []int64
	if genreSlugs != nil {
		genres, err := s.genres.GetBySlugs(ctx, genreSlugs)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return nil, nil, ErrGenreNotFound
			}
			return nil, nil, err
		}
		genreIDs = make([]int64, 0, len(genres))
		for _, g := range genres {
			genreIDs = append(genreIDs, g.ID)
		}
	}
	return categoryID, genreIDs, nil
}

func (s *CatalogService) CreateTitle(ctx context.Context, name string, year int32, description, categorySlug string, genreSlugs []string) (*models.Title, error) {
	const op = "catalog.CatalogService.CreateTitle"
	log := s.log.With("op", op, "name", name, "year", year)
	categoryID, genreIDs, err := s.resolveRefs(ctx, categorySlug, genreSlugs)
	if err != nil {
		if errors.Is(err, ErrCategoryNotFound) || errors.Is(err, ErrGenreNotFound) {
			return nil, err
		}
		log.Error(err.Error())
		return nil, err
	}
	id, err := s.titles.Insert(ctx, name, year, description, categoryID, genreIDs)
	if err != nil {
		log.Error(err.Error())
		return nil, err
	}
	return s.GetTitle(ctx, id)
}

type UpdateTitleParams struct {
	Name         *string
	Year         *int32
	Description  *string
	CategorySlug *string
	GenreSlugs   []string
}

func (s *CatalogService) UpdateTitle(ctx context.Context, id int64, params UpdateTitleParams) (*models.Title, error) {
	const op = "catalog.CatalogService.UpdateTitle"
	log := s.log.With("op", op, "id", id)
	title, err := s.GetTitle(ctx, id)
	if err != nil {
		return nil, err
	}
	if params.Name != nil {
		title.Name = *params.Name
	}
	if params.Year != nil {
		title.Year = *params.Year
	}
	if params.Description != nil {
		title.Description = *params.Description
	}
	categorySlug := ""
	if params.CategorySlug != nil {
		categorySlug = *params.CategorySlug
	} else if title.Category != nil {
		categorySlug = title.Category.Slug
	}
	categoryID, genreIDs, err := s.resolveRefs(ctx, categorySlug, params.GenreSlugs)
	if err != nil {
		if errors.Is(err, ErrCategoryNotFound) || errors.Is(err, ErrGenreNotFound) {
			return nil, err
		}
		log.Error(err.Error())
		return nil, err
	}
	if err := s.titles.Update(ctx, id, title.Name, title.Year, title.Description, categoryID, genreIDs); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrTitleNotFound
		}
		log.Error(err.Error())
		return nil, err
	}
	return s.GetTitle(ctx, id)
}

func (s *CatalogService) DeleteTitle(ctx context.Context, id int64) error {
	const op = "catalog.CatalogService.DeleteTitle"
	if err := s.titles.Delete(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrTitleNotFound
		}
		s.log.With("op", op, "id", id).Error(err.Error())
		return err
	}
	return nil
}
