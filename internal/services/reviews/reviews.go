// Package reviews manages reviews and their comments, including the
// one-review-per-author-per-title rule. The existence check here is a
// friendly early rejection; the storage layer's unique index on
// (title_id, author_id) is the authoritative guard, and its violation
// is surfaced as the same error.
package reviews

import (
	"context"
	"errors"
	"log/slog"

	"critichub/proj/internal/domain/filters"
	"critichub/proj/internal/domain/models"
	"critichub/proj/internal/storage"
)

type TitlesStorage interface {
	Get(ctx context.Context, id int64) (*models.Title, error)
}

type ReviewsStorage interface {
	ListForTitle(ctx context.Context, titleID int64, f filters.Filters) ([]models.Review, int, error)
	Get(ctx context.Context, titleID, reviewID int64) (*models.Review, error)
	Exists(ctx context.Context, titleID, authorID int64) (bool, error)
	Insert(ctx context.Context, titleID, authorID int64, text string, score int) (int64, error)
	Update(ctx context.Context, reviewID int64, text string, score int) error
	Delete(ctx context.Context, titleID, reviewID int64) error
}

type CommentsStorage interface {
	ListForReview(ctx context.Context, reviewID int64, f filters.Filters) ([]models.Comment, int, error)
	Get(ctx context.Context, reviewID, commentID int64) (*models.Comment, error)
	Insert(ctx context.Context, reviewID, authorID int64, text string) (int64, error)
	Update(ctx context.Context, commentID int64, text string) error
	Delete(ctx context.Context, reviewID, commentID int64) error
}

type ReviewService struct {
	log      *slog.Logger
	titles   TitlesStorage
	reviews  ReviewsStorage
	comments CommentsStorage
}

func New(log *slog.Logger, titles TitlesStorage, reviews ReviewsStorage, comments CommentsStorage) *ReviewService {
	return &ReviewService{
		log:      log,
		titles:   titles,
		reviews:  reviews,
		comments: comments,
	}
}

func (s *ReviewService) requireTitle(ctx context.Context, titleID int64) error {
	if _, err := s.titles.Get(ctx, titleID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrTitleNotFound
		}
		return err
	}
	return nil
}

func (s *ReviewService) List(ctx context.Context, titleID int64, f filters.Filters) ([]models.Review, int, error) {
	const op = "reviews.ReviewService.List"
	if err := s.requireTitle(ctx, titleID); err != nil {
		return nil, 0, err
	}
	reviews, total, err := s.reviews.ListForTitle(ctx, titleID, f)
	if err != nil {
		s.log.With("op", op, "title_id", titleID).Error(err.Error())
		return nil, 0, err
	}
	return reviews, total, nil
}

func (s *ReviewService) Get(ctx context.Context, titleID, reviewID int64) (*models.Review, error) {
	const op = "reviews.ReviewService.Get"
	review, err := s.reviews.Get(ctx, titleID, reviewID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrReviewNotFound
		}
		s.log.With("op", op, "title_id", titleID, "review_id", reviewID).Error(err.Error())
		return nil, err
	}
	return review, nil
}

func (s *ReviewService) Create(ctx context.Context, titleID int64, author *models.User, text string, score int) (*models.Review, error) {
	const op = "reviews.ReviewService.Create"
	log := s.log.With("op", op, "title_id", titleID, "author_id", author.ID)
	if err := s.requireTitle(ctx, titleID); err != nil {
		return nil, err
	}
	exists, err := s.reviews.Exists(ctx, titleID, author.ID)
	if err != nil {
		log.Error(err.Error())
		return nil, err
	}
	if exists {
		log.Info("duplicate review rejected")
		return nil, ErrReviewExists
	}
	id, err := s.reviews.Insert(ctx, titleID, author.ID, text, score)
	if err != nil {
		if errors.Is(err, storage.ErrConflict) {
			// Concurrent create slipped past the existence check; the
			// unique index caught it.
			log.Info("duplicate review rejected by constraint")
			return nil, ErrReviewExists
		}
		log.Error(err.Error())
		return nil, err
	}
	return s.Get(ctx, titleID, id)
}

type UpdateReviewParams struct {
	Text  *string
	Score *int
}

func (s *ReviewService) Update(ctx context.Context, titleID, reviewID int64, params UpdateReviewParams) (*models.Review, error) {
	const op = "reviews.ReviewService.Update"
	review, err := s.Get(ctx, titleID, reviewID)
	if err != nil {
		return nil, err
	}
	if params.Text != nil {
		review.Text = *params.Text
	}
	if params.Score != nil {
		review.Score = *params.Score
	}
	if err := s.reviews.Update(ctx, reviewID, review.Text, review.Score); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrReviewNotFound
		}
		s.log.With("op", op, "review_id", reviewID).Error(err.Error())
		return nil, err
	}
	return s.Get(ctx, titleID, reviewID)
}

func (s *ReviewService) Delete(ctx context.Context, titleID, reviewID int64) error {
	const op = "reviews.ReviewService.Delete"
	if err := s.reviews.Delete(ctx, titleID, reviewID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrReviewNotFound
		}
		s.log.With("op", op, "review_id", reviewID).Error(err.Error())
		return err
	}
	return nil
}

func (s *ReviewService) ListComments(ctx context.Context, titleID, reviewID int64, f filters.Filters) ([]models.Comment, int, error) {
	const op = "reviews.ReviewService.ListComments"
	if _, err := s.Get(ctx, titleID, reviewID); err != nil {
		return nil, 0, err
	}
	comments, total, err := s.comments.ListForReview(ctx, reviewID, f)
	if err != nil {
		s.log.With("op", op, "review_id", reviewID).Error(err.Error())
		return nil, 0, err
	}
	return comments, total, nil
}

func (s *ReviewService) GetComment(ctx context.Context, titleID, reviewID, commentID int64) (*models.Comment, error) {
	const op = "reviews.ReviewService.GetComment"
	if _, err := s.Get(ctx, titleID, reviewID); err != nil {
		return nil, err
	}
	comment, err := s.comments.Get(ctx, reviewID, commentID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrCommentNotFound
		}
		s.log.With("op", op, "comment_id", commentID).Error(err.Error())
		return nil, err
	}
	return comment, nil
}

func (s *ReviewService) CreateComment(ctx context.Context, titleID, reviewID int64, author *models.User, text string) (*models.Comment, error) {
	const op = "reviews.ReviewService.CreateComment"
	if _, err := s.Get(ctx, titleID, reviewID); err != nil {
		return nil, err
	}
	id, err := s.comments.Insert(ctx, reviewID, author.ID, text)
	if err != nil {
		s.log.With("op", op, "review_id", reviewID).Error(err.Error())
		return nil, err
	}
	return s.GetComment(ctx, titleID, reviewID, id)
}

func (s *ReviewService) UpdateComment(ctx context.Context, titleID, reviewID, commentID int64, text string) (*models.Comment, error) {
	const op = "reviews.ReviewService.UpdateComment"
	if _, err := s.GetComment(ctx, titleID, reviewID, commentID); err != nil {
		return nil, err
	}
	if err := s.comments.Update(ctx, commentID, text); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrCommentNotFound
		}
		s.log.With("op", op, "comment_id", commentID).Error(err.Error())
		return nil, err
	}
	return s.GetComment(ctx, titleID, reviewID, commentID)
}

func (s *ReviewService) DeleteComment(ctx context.Context, titleID, reviewID, commentID int64) error {
	const op = "reviews.ReviewService.DeleteComment"
	if _, err := s.Get(ctx, titleID, reviewID); err != nil {
		return err
	}
	if err := s.comments.Delete(ctx, reviewID, commentID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrCommentNotFound
		}
		s.log.With("op", op, "comment_id", commentID).Error(err.Error())
		return err
	}
	return nil
}
