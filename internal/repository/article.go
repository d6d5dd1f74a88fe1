// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"errors"

	"inkwell/internal/cache"
	"inkwell/internal/models"

	"gorm.io/gorm"
)

// ArticleRepository defines the interface for article data operations
type ArticleRepository interface {
	Create(ctx context.Context, article *models.Article) error
	GetByID(ctx context.Context, id uint) (*models.Article, error)
	List(ctx context.Context, limit, offset int) ([]*models.Article, error)
	SearchPage(ctx context.Context, query string, skip, take int) ([]*models.Article, int64, error)
	Update(ctx context.Context, article *models.Article) error
	Delete(ctx context.Context, id uint) error
	CountAll(ctx context.Context) (int64, error)
}

// articleRepository implements ArticleRepository
type articleRepository struct {
	db *gorm.DB
}

// NewArticleRepository creates a new article repository
func NewArticleRepository(db *gorm.DB) ArticleRepository {
	return &articleRepository{db: db}
}

func (r *articleRepository) Create(ctx context.Context, article *models.Article) error {
	if err := r.db.WithContext(ctx).Create(article).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.Invalidate(ctx, cache.DashboardKey())
	return nil
}

func (r *articleRepository) GetByID(ctx context.Context, id uint) (*models.Article, error) {
	var article models.Article
	key := cache.ArticleKey(id)

	err := cache.Aside(ctx, key, &article, cache.ArticleTTL, func() error {
		if err := r.applyCommentCount(r.db.WithContext(ctx)).
			Preload("Author").
			First(&article, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Article", id)
			}
			return models.NewInternalError(err)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return &article, nil
}

func (r *articleRepository) List(ctx context.Context, limit, offset int) ([]*models.Article, error) {
	var articles []*models.Article
	err := r.applyCommentCount(r.db.WithContext(ctx)).
		Preload("Author", authorColumns).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&articles).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return articles, nil
}

// SearchPage returns one page of matches together with the total match count.
// Both reads run inside a single transaction so the count always describes
// the same result set the page was cut from.
func (r *articleRepository) SearchPage(ctx context.Context, query string, skip, take int) ([]*models.Article, int64, error) {
	var articles []*models.Article
	var total int64
	like := "%" + query + "%"

	// LOWER + LIKE keeps matching case-insensitive on every backend,
	// unlike the Postgres-only ILIKE.
	const matchCond = "LOWER(title) LIKE LOWER(?) OR LOWER(category) LIKE LOWER(?)"

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.applyCommentCount(tx.Model(&models.Article{})).
			Where(matchCond, like, like).
			Preload("Author", authorColumns).
			Order("created_at DESC").
			Limit(take).
			Offset(skip).
			Find(&articles).Error; err != nil {
			return err
		}

		return tx.Model(&models.Article{}).
			Where(matchCond, like, like).
			Count(&total).Error
	})
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return articles, total, nil
}

func (r *articleRepository) Update(ctx context.Context, article *models.Article) error {
	if err := r.db.WithContext(ctx).Save(article).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateArticle(ctx, article.ID)
	return nil
}

func (r *articleRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Article{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateArticle(ctx, id)
	return nil
}

func (r *articleRepository) CountAll(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Article{}).Count(&total).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return total, nil
}

// applyCommentCount adds a subquery to fetch the comment count in a single query.
func (r *articleRepository) applyCommentCount(db *gorm.DB) *gorm.DB {
	return db.Select("articles.*, " +
		"(SELECT COUNT(*) FROM comments WHERE comments.article_id = articles.id AND comments.deleted_at IS NULL) as comments_count")
}

// authorColumns trims the preloaded author to its public profile fields.
func authorColumns(db *gorm.DB) *gorm.DB {
	return db.Select("id", "name", "image", "email")
}
