// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"inkwell/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by seed presets and tests.
type Factory struct {
	db   *gorm.DB
	opts Options
	// synthetic ID counter when running in DryRun mode
	nextID uint
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	// seed gofakeit for richer content
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{db: db, opts: opts, nextID: 1000}
}

// CreateUser constructs and persists a sample `models.User`. The external
// identifier mimics what the identity provider would issue. Optional override
// functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	handle := fmt.Sprintf("%s%d", gofakeit.Username(), gofakeit.Number(100, 999))
	user := &models.User{
		ExternalID: fmt.Sprintf("seed|%s", gofakeit.UUID()),
		Name:       gofakeit.Name(),
		Email:      fmt.Sprintf("%s@example.com", handle),
		Image:      fmt.Sprintf("https://i.pravatar.cc/150?u=%s", handle),
	}

	for _, override := range overrides {
		override(user)
	}

	if f.opts.DryRun {
		f.nextID++
		user.ID = f.nextID
		log.Printf("[dry-run] CreateUser: %s <%s>", user.Name, user.Email)
		return user, nil
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// BuildArticle constructs an article struct for the given author but does not
// persist it. Useful for batching.
func (f *Factory) BuildArticle(author *models.User, overrides ...func(*models.Article)) *models.Article {
	category := Categories[rand.Intn(len(Categories))]
	article := &models.Article{
		Title:         gofakeit.Sentence(5),
		Category:      category,
		Content:       gofakeit.Paragraph(2, 4, 8, "\n\n"),
		FeaturedImage: fmt.Sprintf("https://picsum.photos/seed/%s/1200/630", gofakeit.UUID()),
		AuthorID:      author.ID,
	}

	// realistic created_at spread
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	daysBack := rand.Intn(maxDays)
	hoursBack := rand.Intn(24)
	minsBack := rand.Intn(60)
	article.CreatedAt = time.Now().Add(-time.Duration(daysBack)*24*time.Hour -
		time.Duration(hoursBack)*time.Hour - time.Duration(minsBack)*time.Minute)

	for _, override := range overrides {
		override(article)
	}
	return article
}

// CreateArticle constructs and persists a sample `models.Article` for the
// given author.
func (f *Factory) CreateArticle(author *models.User, overrides ...func(*models.Article)) (*models.Article, error) {
	article := f.BuildArticle(author, overrides...)

	if f.opts.DryRun {
		f.nextID++
		article.ID = f.nextID
		log.Printf("[dry-run] CreateArticle: author=%d category=%s title=%q", article.AuthorID, article.Category, article.Title)
		return article, nil
	}

	if err := f.db.Create(article).Error; err != nil {
		return nil, err
	}
	return article, nil
}

// CreateArticlesBatch persists multiple articles in a single DB call when possible.
func (f *Factory) CreateArticlesBatch(articles []*models.Article) error {
	if f.opts.DryRun {
		for _, a := range articles {
			f.nextID++
			a.ID = f.nextID
		}
		log.Printf("[dry-run] CreateArticlesBatch: %d articles (no DB write)", len(articles))
		return nil
	}
	return f.db.Create(&articles).Error
}

// CreateComment constructs and persists a sample `models.Comment` on the
// provided article authored by the provided user.
func (f *Factory) CreateComment(author *models.User, article *models.Article, overrides ...func(*models.Comment)) (*models.Comment, error) {
	comment := &models.Comment{
		Body:      gofakeit.Sentence(8),
		AuthorID:  author.ID,
		ArticleID: article.ID,
	}

	for _, override := range overrides {
		override(comment)
	}

	if f.opts.DryRun {
		f.nextID++
		comment.ID = f.nextID
		log.Printf("[dry-run] CreateComment: article=%d author=%d", comment.ArticleID, comment.AuthorID)
		return comment, nil
	}

	if err := f.db.Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}
