// Package service contains the application's business logic.
package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"inkwell/internal/cache"
	"inkwell/internal/media"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/repository"
	"inkwell/internal/validation"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	DefaultSearchPageSize = 10
	MaxSearchPageSize     = 100
	DashboardArticleLimit = 20
)

// ArticleService coordinates article writes, search and the media collaborator.
type ArticleService struct {
	articleRepo repository.ArticleRepository
	userRepo    repository.UserRepository
	commentRepo repository.CommentRepository
	uploader    media.Uploader
}

// ImageInput carries one uploaded image through the service boundary.
type ImageInput struct {
	Filename    string
	ContentType string
	Data        []byte
}

type CreateArticleInput struct {
	ExternalID string
	Title      string
	Category   string
	Content    string
	Image      *ImageInput
}

type UpdateArticleInput struct {
	ExternalID string
	ArticleID  uint
	Title      string
	Category   string
	Content    string
	// Image is optional on update: when nil the stored featured image is kept.
	Image *ImageInput
}

type DeleteArticleInput struct {
	ExternalID string
	ArticleID  uint
}

type SearchArticlesInput struct {
	Query string
	Skip  int
	Take  int
}

// SearchResult is one page of matches plus the total count for the same query.
type SearchResult struct {
	Articles []*models.Article `json:"articles"`
	Total    int64             `json:"total"`
}

// DashboardData aggregates the numbers the authoring dashboard renders.
type DashboardData struct {
	Articles      []*models.Article `json:"articles"`
	TotalArticles int64             `json:"totalArticles"`
	TotalComments int64             `json:"totalComments"`
}

func NewArticleService(
	articleRepo repository.ArticleRepository,
	userRepo repository.UserRepository,
	commentRepo repository.CommentRepository,
	uploader media.Uploader,
) *ArticleService {
	return &ArticleService{
		articleRepo: articleRepo,
		userRepo:    userRepo,
		commentRepo: commentRepo,
		uploader:    uploader,
	}
}

func (s *ArticleService) CreateArticle(ctx context.Context, in CreateArticleInput) (*models.Article, error) {
	// Field validation runs before anything touches the database, so a bad
	// submission always comes back as field errors.
	if errs := s.validateFields(in.Title, in.Category, in.Content); errs.HasErrors() {
		return nil, errs
	}

	author, err := s.resolveAuthor(ctx, in.ExternalID)
	if err != nil {
		return nil, err
	}

	if in.Image == nil || len(in.Image.Data) == 0 {
		return nil, models.NewValidationError("Image is required")
	}
	imageURL, err := s.uploadImage(ctx, in.Image)
	if err != nil {
		return nil, err
	}

	article := &models.Article{
		Title:         in.Title,
		Category:      in.Category,
		Content:       in.Content,
		FeaturedImage: imageURL,
		AuthorID:      author.ID,
	}
	if err := s.articleRepo.Create(ctx, article); err != nil {
		return nil, err
	}

	return s.articleRepo.GetByID(ctx, article.ID)
}

func (s *ArticleService) UpdateArticle(ctx context.Context, in UpdateArticleInput) (*models.Article, error) {
	if errs := s.validateFields(in.Title, in.Category, in.Content); errs.HasErrors() {
		return nil, errs
	}

	article, err := s.articleRepo.GetByID(ctx, in.ArticleID)
	if err != nil {
		return nil, err
	}

	author, err := s.resolveAuthor(ctx, in.ExternalID)
	if err != nil {
		return nil, forbidUnregistered(err, "You can only update your own articles")
	}
	if article.AuthorID != author.ID {
		return nil, models.NewForbiddenError("You can only update your own articles")
	}

	article.Title = in.Title
	article.Category = in.Category
	article.Content = in.Content

	// The featured image is sticky: it only changes when a replacement is
	// actually submitted.
	if in.Image != nil && len(in.Image.Data) > 0 {
		imageURL, uploadErr := s.uploadImage(ctx, in.Image)
		if uploadErr != nil {
			return nil, uploadErr
		}
		article.FeaturedImage = imageURL
	}

	if err := s.articleRepo.Update(ctx, article); err != nil {
		return nil, err
	}
	return article, nil
}

// DeleteArticle removes the caller's article. Deleting an article that no
// longer exists succeeds, so retries of a delete stay safe.
func (s *ArticleService) DeleteArticle(ctx context.Context, in DeleteArticleInput) error {
	article, err := s.articleRepo.GetByID(ctx, in.ArticleID)
	if err != nil {
		if appErr, ok := err.(*models.AppError); ok && appErr.Code == "NOT_FOUND" {
			return nil
		}
		return err
	}

	author, err := s.resolveAuthor(ctx, in.ExternalID)
	if err != nil {
		return forbidUnregistered(err, "You can only delete your own articles")
	}
	if article.AuthorID != author.ID {
		return models.NewForbiddenError("You can only delete your own articles")
	}

	return s.articleRepo.Delete(ctx, in.ArticleID)
}

// SearchArticles returns a page of matches and the total count, cut from the
// same snapshot. Pagination bounds are clamped rather than rejected.
func (s *ArticleService) SearchArticles(ctx context.Context, in SearchArticlesInput) (*SearchResult, error) {
	skip := in.Skip
	if skip < 0 {
		skip = 0
	}
	take := in.Take
	if take <= 0 {
		take = DefaultSearchPageSize
	}
	if take > MaxSearchPageSize {
		take = MaxSearchPageSize
	}

	// Search pages are cached briefly; writes do not invalidate them, the
	// short TTL bounds how stale a page can get.
	var result SearchResult
	err := cache.Aside(ctx, cache.SearchKey(in.Query, skip, take), &result, cache.SearchTTL, func() error {
		articles, total, err := s.articleRepo.SearchPage(ctx, in.Query, skip, take)
		if err != nil {
			return err
		}
		if articles == nil {
			articles = []*models.Article{}
		}
		result = SearchResult{Articles: articles, Total: total}
		return nil
	})
	if err != nil {
		middleware.ArticleSearches.WithLabelValues("error").Inc()
		return nil, err
	}
	middleware.ArticleSearches.WithLabelValues("ok").Inc()

	return &result, nil
}

func (s *ArticleService) GetArticle(ctx context.Context, id uint) (*models.Article, error) {
	return s.articleRepo.GetByID(ctx, id)
}

func (s *ArticleService) ListArticles(ctx context.Context, limit, offset int) ([]*models.Article, error) {
	if limit <= 0 {
		limit = DefaultSearchPageSize
	}
	if limit > MaxSearchPageSize {
		limit = MaxSearchPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return s.articleRepo.List(ctx, limit, offset)
}

func (s *ArticleService) ListComments(ctx context.Context, articleID uint, limit, offset int) ([]*models.Comment, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > MaxSearchPageSize {
		limit = MaxSearchPageSize
	}
	if offset < 0 {
		offset = 0
	}
	// Listing comments of a missing article is a 404, not an empty page.
	if _, err := s.articleRepo.GetByID(ctx, articleID); err != nil {
		return nil, err
	}
	return s.commentRepo.ListByArticle(ctx, articleID, limit, offset)
}

// Dashboard returns recent articles with their comment counts plus the
// site-wide totals. The whole payload is cached as one unit.
func (s *ArticleService) Dashboard(ctx context.Context) (*DashboardData, error) {
	var data DashboardData
	err := cache.Aside(ctx, cache.DashboardKey(), &data, cache.DashboardTTL, func() error {
		articles, err := s.articleRepo.List(ctx, DashboardArticleLimit, 0)
		if err != nil {
			return err
		}
		totalArticles, err := s.articleRepo.CountAll(ctx)
		if err != nil {
			return err
		}
		totalComments, err := s.commentRepo.CountAll(ctx)
		if err != nil {
			return err
		}
		if articles == nil {
			articles = []*models.Article{}
		}
		data = DashboardData{
			Articles:      articles,
			TotalArticles: totalArticles,
			TotalComments: totalComments,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &data, nil
}

func (s *ArticleService) validateFields(title, category, content string) models.FieldErrors {
	return validation.ArticleInput{Title: title, Category: category, Content: content}.Validate()
}

func (s *ArticleService) resolveAuthor(ctx context.Context, externalID string) (*models.User, error) {
	if externalID == "" {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	return s.userRepo.GetByExternalID(ctx, externalID)
}

// forbidUnregistered maps a missing-user lookup to a forbidden error. A valid
// session whose user was never synced cannot own the article being mutated, so
// it gets the same answer as any other non-owner.
func forbidUnregistered(err error, message string) error {
	var appErr *models.AppError
	if errors.As(err, &appErr) && appErr.Code == "NOT_FOUND" {
		return models.NewForbiddenError(message)
	}
	return err
}

func (s *ArticleService) uploadImage(ctx context.Context, img *ImageInput) (string, error) {
	if err := media.ValidateImage(img.Data, img.ContentType); err != nil {
		return "", err
	}
	// Client filenames collide and may carry junk; prefix with a UUID so every
	// stored object gets a unique name.
	name := fmt.Sprintf("%s-%s", uuid.NewString(), filepath.Base(img.Filename))
	timer := prometheus.NewTimer(middleware.MediaUploadDuration)
	defer timer.ObserveDuration()
	return s.uploader.Upload(ctx, name, img.Data)
}
