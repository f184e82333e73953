package catalog

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"critichub/proj/internal/domain/filters"
	"critichub/proj/internal/domain/models"
	"critichub/proj/internal/storage"
	storagemodels "critichub/proj/internal/storage/postgres/models"
)

func TestMeanScore(t *testing.T) {
	assert.Nil(t, MeanScore(nil))
	assert.Nil(t, MeanScore([]int{}))

	single := MeanScore([]int{5})
	require.NotNil(t, single)
	assert.Equal(t, 5.0, *single)

	mean := MeanScore([]int{6, 8})
	require.NotNil(t, mean)
	assert.Equal(t, 7.0, *mean)

	fractional := MeanScore([]int{1, 2, 2})
	require.NotNil(t, fractional)
	assert.InDelta(t, 1.6667, *fractional, 0.001)
}

type fakeCategoriesStorage struct {
	categories map[string]*models.Category
}

func (f *fakeCategoriesStorage) List(_ context.Context, _ string, _ filters.Filters) ([]models.Category, int, error) {
	out := make([]models.Category, 0, len(f.categories))
	for _, c := range f.categories {
		out = append(out, *c)
	}
	return out, len(out), nil
}

func (f *fakeCategoriesStorage) GetBySlug(_ context.Context, slug string) (*models.Category, error) {
	if c, ok := f.categories[slug]; ok {
		return c, nil
	}
	return nil, storage.ErrNotFound
}

func (f *fakeCategoriesStorage) Insert(_ context.Context, name, slug string) (*models.Category, error) {
	if _, ok := f.categories[slug]; ok {
		return nil, storage.ErrConflict
	}
	c := &models.Category{ID: int64(len(f.categories) + 1), Name: name, Slug: slug}
	f.categories[slug] = c
	return c, nil
}

func (f *fakeCategoriesStorage) DeleteBySlug(_ context.Context, slug string) error {
	if _, ok := f.categories[slug]; !ok {
		return storage.ErrNotFound
	}
	delete(f.categories, slug)
	return nil
}

type fakeGenresStorage struct {
	genres map[string]*models.Genre
}

func (f *fakeGenresStorage) List(_ context.Context, _ string, _ filters.Filters) ([]models.Genre, int, error) {
	out := make([]models.Genre, 0, len(f.genres))
	for _, g := range f.genres {
		out = append(out, *g)
	}
	return out, len(out), nil
}

func (f *fakeGenresStorage) GetBySlugs(_ context.Context, slugs []string) ([]models.Genre, error) {
	out := make([]models.Genre, 0, len(slugs))
	for _, slug := range slugs {
		g, ok := f.genres[slug]
		if !ok {
			return nil, storage.ErrNotFound
		}
		out = append(out, *g)
	}
	return out, nil
}

func (f *fakeGenresStorage) Insert(_ context.Context, name, slug string) (*models.Genre, error) {
	if _, ok := f.genres[slug]; ok {
		return nil, storage.ErrConflict
	}
	g := &models.Genre{ID: int64(len(f.genres) + 1), Name: name, Slug: slug}
	f.genres[slug] = g
	return g, nil
}

func (f *fakeGenresStorage) DeleteBySlug(_ context.Context, slug string) error {
	if _, ok := f.genres[slug]; !ok {
		return storage.ErrNotFound
	}
	delete(f.genres, slug)
	return nil
}

type fakeTitlesStorage struct {
	titles map[int64]*models.Title
	nextID int64
}

func (f *fakeTitlesStorage) Get(_ context.Context, id int64) (*models.Title, error) {
	if title, ok := f.titles[id]; ok {
		copied := *title
		return &copied, nil
	}
	return nil, storage.ErrNotFound
}

func (f *fakeTitlesStorage) List(_ context.Context, _ storagemodels.TitleFilter, _ filters.Filters) ([]models.Title, int, error) {
	out := make([]models.Title, 0, len(f.titles))
	for _, title := range f.titles {
		out = append(out, *title)
	}
	return out, len(out), nil
}

func (f *fakeTitlesStorage) Insert(_ context.Context, name string, year int32, description string, categoryID *int64, _ []int64) (int64, error) {
	id := f.nextID
	f.nextID++
	f.titles[id] = &models.Title{ID: id, Name: name, Year: year, Description: description}
	return id, nil
}

func (f *fakeTitlesStorage) Update(_ context.Context, id int64, name string, year int32, description string, _ *int64, _ []int64) error {
	title, ok := f.titles[id]
	if !ok {
		return storage.ErrNotFound
	}
	title.Name, title.Year, title.Description = name, year, description
	return nil
}

func (f *fakeTitlesStorage) Delete(_ context.Context, id int64) error {
	if _, ok := f.titles[id]; !ok {
		return storage.ErrNotFound
	}
	delete(f.titles, id)
	return nil
}

type fakeScoresStorage struct {
	scores map[int64][]int
}

func (f *fakeScoresStorage) ScoresForTitles(_ context.Context, titleIDs []int64) (map[int64][]int, error) {
	out := map[int64][]int{}
	for _, id := range titleIDs {
		if s, ok := f.scores[id]; ok {
			out[id] = s
		}
	}
	return out, nil
}

func newTestService(t *testing.T) (*CatalogService, *fakeTitlesStorage, *fakeScoresStorage) {
	t.Helper()
	titles := &fakeTitlesStorage{titles: map[int64]*models.Title{}, nextID: 1}
	scores := &fakeScoresStorage{scores: map[int64][]int{}}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := New(log,
		&fakeCategoriesStorage{categories: map[string]*models.Category{}},
		&fakeGenresStorage{genres: map[string]*models.Genre{}},
		titles, scores)
	return svc, titles, scores
}

func TestGetTitleAttachesRating(t *testing.T) {
	svc, titles, scores := newTestService(t)
	titles.titles[1] = &models.Title{ID: 1, Name: "Solaris", Year: 1972}
	scores.scores[1] = []int{6, 8}

	title, err := svc.GetTitle(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, title.Rating)
	assert.Equal(t, 7.0, *title.Rating)
}

func TestGetTitleWithoutReviews(t *testing.T) {
	svc, titles, _ := newTestService(t)
	titles.titles[1] = &models.Title{ID: 1, Name: "Solaris", Year: 1972}

	title, err := svc.GetTitle(context.Background(), 1)
	require.NoError(t, err)
	assert.Nil(t, title.Rating)
}

func TestGetTitleNotFound(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.GetTitle(context.Background(), 42)
	assert.ErrorIs(t, err, ErrTitleNotFound)
}

func TestListTitlesAttachesRatings(t *testing.T) {
	svc, titles, scores := newTestService(t)
	titles.titles[1] = &models.Title{ID: 1, Name: "Solaris"}
	titles.titles[2] = &models.Title{ID: 2, Name: "Stalker"}
	scores.scores[2] = []int{10}

	listed, total, err := svc.ListTitles(context.Background(), storagemodels.TitleFilter{}, filters.Filters{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	for _, title := range listed {
		switch title.ID {
		case 1:
			assert.Nil(t, title.Rating)
		case 2:
			require.NotNil(t, title.Rating)
			assert.Equal(t, 10.0, *title.Rating)
		}
	}
}

func TestCreateTitleRejectsUnknownRefs(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.CreateTitle(context.Background(), "Solaris", 1972, "", "no-such-category", nil)
	assert.ErrorIs(t, err, ErrCategoryNotFound)

	_, err = svc.CreateTitle(context.Background(), "Solaris", 1972, "", "", []string{"no-such-genre"})
	assert.ErrorIs(t, err, ErrGenreNotFound)
}

func TestCreateCategoryDuplicateSlug(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.CreateCategory(context.Background(), "Movies", "movies")
	require.NoError(t, err)
	_, err = svc.CreateCategory(context.Background(), "Movies again", "movies")
	assert.ErrorIs(t, err, ErrSlugTaken)
}
