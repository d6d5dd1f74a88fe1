package seed

import (
	"fmt"
	"log"
	"math/rand"

	"inkwell/internal/models"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumArticles int
	// MaxComments bounds how many comments each article receives.
	MaxComments int
	// MaxDays spreads article creation dates over the past N days.
	MaxDays     int
	ShouldClean bool
	DryRun      bool
}

// Categories is the curated set of article categories used for demo content.
var Categories = []string{
	"technology", "programming", "golang", "databases", "devops",
	"design", "productivity", "career", "opinion", "tutorials",
	"cloud", "security", "open-source", "web", "mobile",
}

// Seed populates the database with demo users, articles and comments.
func Seed(db *gorm.DB, opts Options) error {
	log.Printf("🌱 Starting database seeding with %d users and %d articles...", opts.NumUsers, opts.NumArticles)

	// Clear existing data to avoid conflicts if requested
	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			log.Println("⚠️  Warning: Could not clear all existing data, but continuing anyway...")
		}
	}

	factory := NewFactory(db, opts)

	users, err := createUsers(factory, opts.NumUsers)
	if err != nil {
		return fmt.Errorf("failed to create users: %w", err)
	}
	log.Printf("✓ %d demo users created", len(users))

	articles, err := createArticles(factory, users, opts.NumArticles)
	if err != nil {
		return fmt.Errorf("failed to create articles: %w", err)
	}
	log.Printf("✓ %d articles created", len(articles))

	comments, err := createComments(factory, users, articles, opts.MaxComments)
	if err != nil {
		return fmt.Errorf("failed to create comments: %w", err)
	}
	log.Printf("✓ %d comments created", comments)

	log.Println("🎉 Database seeding completed successfully!")
	return nil
}

func clearData(db *gorm.DB) error {
	log.Println("🗑️  Clearing existing data...")
	sql := `TRUNCATE TABLE comments, articles, users RESTART IDENTITY CASCADE;`
	return db.Exec(sql).Error
}

func createUsers(factory *Factory, count int) ([]*models.User, error) {
	users := make([]*models.User, 0, count)
	for i := 0; i < count; i++ {
		user, err := factory.CreateUser()
		if err != nil {
			log.Printf("Failed to create user %d: %v", i, err)
			continue
		}
		users = append(users, user)

		if i > 0 && i%100 == 0 {
			log.Printf("Created %d users...", i)
		}
	}
	if len(users) == 0 {
		return nil, fmt.Errorf("no users could be created")
	}
	return users, nil
}

func createArticles(factory *Factory, users []*models.User, count int) ([]*models.Article, error) {
	articles := make([]*models.Article, 0, count)
	for i := 0; i < count; i++ {
		//nolint:gosec // Weak random number generator is fine for seeding
		author := users[rand.Intn(len(users))]
		article, err := factory.CreateArticle(author)
		if err != nil {
			return nil, err
		}
		articles = append(articles, article)

		if i > 0 && i%100 == 0 {
			log.Printf("Created %d articles...", i)
		}
	}
	return articles, nil
}

func createComments(factory *Factory, users []*models.User, articles []*models.Article, maxPerArticle int) (int, error) {
	if maxPerArticle <= 0 {
		maxPerArticle = 5
	}
	total := 0
	for _, article := range articles {
		//nolint:gosec // Weak random number generator is fine for seeding
		n := rand.Intn(maxPerArticle + 1)
		for i := 0; i < n; i++ {
			author := users[rand.Intn(len(users))]
			if _, err := factory.CreateComment(author, article); err != nil {
				return total, err
			}
			total++
		}
	}
	return total, nil
}
