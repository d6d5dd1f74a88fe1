package service

import (
	"context"
	"errors"
	"testing"

	"inkwell/internal/models"
	"inkwell/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// articleRepoStub is a stub for repository.ArticleRepository.
type articleRepoStub struct {
	createFn     func(context.Context, *models.Article) error
	getByIDFn    func(context.Context, uint) (*models.Article, error)
	listFn       func(context.Context, int, int) ([]*models.Article, error)
	searchPageFn func(context.Context, string, int, int) ([]*models.Article, int64, error)
	updateFn     func(context.Context, *models.Article) error
	deleteFn     func(context.Context, uint) error
	countAllFn   func(context.Context) (int64, error)
}

func (s *articleRepoStub) Create(ctx context.Context, article *models.Article) error {
	return s.createFn(ctx, article)
}
func (s *articleRepoStub) GetByID(ctx context.Context, id uint) (*models.Article, error) {
	return s.getByIDFn(ctx, id)
}
func (s *articleRepoStub) List(ctx context.Context, limit, offset int) ([]*models.Article, error) {
	return s.listFn(ctx, limit, offset)
}
func (s *articleRepoStub) SearchPage(ctx context.Context, query string, skip, take int) ([]*models.Article, int64, error) {
	return s.searchPageFn(ctx, query, skip, take)
}
func (s *articleRepoStub) Update(ctx context.Context, article *models.Article) error {
	return s.updateFn(ctx, article)
}
func (s *articleRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *articleRepoStub) CountAll(ctx context.Context) (int64, error) {
	return s.countAllFn(ctx)
}

func noopArticleRepo() *articleRepoStub {
	return &articleRepoStub{
		createFn:  func(_ context.Context, _ *models.Article) error { return nil },
		getByIDFn: func(_ context.Context, _ uint) (*models.Article, error) { return &models.Article{}, nil },
		listFn:    func(_ context.Context, _, _ int) ([]*models.Article, error) { return nil, nil },
		searchPageFn: func(_ context.Context, _ string, _, _ int) ([]*models.Article, int64, error) {
			return nil, 0, nil
		},
		updateFn:   func(_ context.Context, _ *models.Article) error { return nil },
		deleteFn:   func(_ context.Context, _ uint) error { return nil },
		countAllFn: func(_ context.Context) (int64, error) { return 0, nil },
	}
}

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	getByIDFn         func(context.Context, uint) (*models.User, error)
	getByExternalIDFn func(context.Context, string) (*models.User, error)
	upsertFn          func(context.Context, *models.User) error
	deleteFn          func(context.Context, uint) error
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	return s.getByExternalIDFn(ctx, externalID)
}
func (s *userRepoStub) Upsert(ctx context.Context, user *models.User) error {
	return s.upsertFn(ctx, user)
}
func (s *userRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func registeredUserRepo(user *models.User) *userRepoStub {
	return &userRepoStub{
		getByIDFn: func(_ context.Context, _ uint) (*models.User, error) { return user, nil },
		getByExternalIDFn: func(_ context.Context, externalID string) (*models.User, error) {
			if user != nil && externalID == user.ExternalID {
				return user, nil
			}
			return nil, models.NewNotFoundError("User", externalID)
		},
		upsertFn: func(_ context.Context, _ *models.User) error { return nil },
		deleteFn: func(_ context.Context, _ uint) error { return nil },
	}
}

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	listByArticleFn  func(context.Context, uint, int, int) ([]*models.Comment, error)
	countByArticleFn func(context.Context, uint) (int64, error)
	countAllFn       func(context.Context) (int64, error)
}

func (s *commentRepoStub) ListByArticle(ctx context.Context, articleID uint, limit, offset int) ([]*models.Comment, error) {
	return s.listByArticleFn(ctx, articleID, limit, offset)
}
func (s *commentRepoStub) CountByArticle(ctx context.Context, articleID uint) (int64, error) {
	return s.countByArticleFn(ctx, articleID)
}
func (s *commentRepoStub) CountAll(ctx context.Context) (int64, error) {
	return s.countAllFn(ctx)
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		listByArticleFn:  func(_ context.Context, _ uint, _, _ int) ([]*models.Comment, error) { return nil, nil },
		countByArticleFn: func(_ context.Context, _ uint) (int64, error) { return 0, nil },
		countAllFn:       func(_ context.Context) (int64, error) { return 0, nil },
	}
}

// assertAppErrorCode asserts that err is an AppError with the given code.
func assertAppErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}

func testAuthor() *models.User {
	return &models.User{ID: 7, ExternalID: "idp_7", Name: "Ada Lovelace", Email: "ada@example.com"}
}

func TestCreateArticleSuccess(t *testing.T) {
	author := testAuthor()
	uploader := testutil.NewUploaderStub()

	var created *models.Article
	repo := noopArticleRepo()
	repo.createFn = func(_ context.Context, a *models.Article) error {
		a.ID = 5
		created = a
		return nil
	}
	repo.getByIDFn = func(_ context.Context, id uint) (*models.Article, error) {
		require.Equal(t, uint(5), id)
		created.Author = *author
		return created, nil
	}

	svc := NewArticleService(repo, registeredUserRepo(author), noopCommentRepo(), uploader)
	article, err := svc.CreateArticle(context.Background(), CreateArticleInput{
		ExternalID: "idp_7",
		Title:      "Go Generics",
		Category:   "golang",
		Content:    "A long read about type parameters.",
		Image: &ImageInput{
			Filename:    "cover.png",
			ContentType: "image/png",
			Data:        testutil.TinyPNG(t, 32, 32),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, uint(5), article.ID)
	assert.Equal(t, author.ID, article.AuthorID)
	assert.Equal(t, "Ada Lovelace", article.Author.Name)
	assert.Contains(t, article.FeaturedImage, "cover.png")
	assert.Equal(t, 1, uploader.UploadCount())
}

func TestCreateArticleRequiresImage(t *testing.T) {
	svc := NewArticleService(noopArticleRepo(), registeredUserRepo(testAuthor()), noopCommentRepo(), testutil.NewUploaderStub())

	_, err := svc.CreateArticle(context.Background(), CreateArticleInput{
		ExternalID: "idp_7",
		Title:      "Go Generics",
		Category:   "golang",
		Content:    "A long read about type parameters.",
	})
	assertAppErrorCode(t, err, "VALIDATION_ERROR")
}

func TestCreateArticleFieldValidation(t *testing.T) {
	uploader := testutil.NewUploaderStub()
	svc := NewArticleService(noopArticleRepo(), registeredUserRepo(testAuthor()), noopCommentRepo(), uploader)

	_, err := svc.CreateArticle(context.Background(), CreateArticleInput{
		ExternalID: "idp_7",
		Title:      "Go", // too short
		Category:   "golang",
		Content:    "short", // too short
	})
	require.Error(t, err)
	fieldErrs, ok := err.(models.FieldErrors)
	require.True(t, ok, "expected FieldErrors, got %T", err)
	assert.Contains(t, fieldErrs, "title")
	assert.Contains(t, fieldErrs, "content")
	assert.NotContains(t, fieldErrs, "category")
	assert.Zero(t, uploader.UploadCount())
}

func TestCreateArticleInvalidFieldsWinOverUnregisteredAuthor(t *testing.T) {
	userRepo := registeredUserRepo(testAuthor())
	lookedUp := false
	userRepo.getByExternalIDFn = func(_ context.Context, _ string) (*models.User, error) {
		lookedUp = true
		return nil, models.NewNotFoundError("User", "idp_unknown")
	}

	svc := NewArticleService(noopArticleRepo(), userRepo, noopCommentRepo(), testutil.NewUploaderStub())
	_, err := svc.CreateArticle(context.Background(), CreateArticleInput{
		ExternalID: "idp_unknown",
		Title:      "Go", // too short
		Category:   "golang",
		Content:    "short", // too short
	})
	require.Error(t, err)
	fieldErrs, ok := err.(models.FieldErrors)
	require.True(t, ok, "expected FieldErrors, got %T", err)
	assert.Contains(t, fieldErrs, "title")
	assert.False(t, lookedUp, "field validation should run before the author lookup")
}

func TestCreateArticleUnregisteredAuthor(t *testing.T) {
	svc := NewArticleService(noopArticleRepo(), registeredUserRepo(testAuthor()), noopCommentRepo(), testutil.NewUploaderStub())

	_, err := svc.CreateArticle(context.Background(), CreateArticleInput{
		ExternalID: "idp_unknown",
		Title:      "Go Generics",
		Category:   "golang",
		Content:    "A long read about type parameters.",
	})
	assertAppErrorCode(t, err, "NOT_FOUND")
}

func TestCreateArticleRequiresAuthentication(t *testing.T) {
	svc := NewArticleService(noopArticleRepo(), registeredUserRepo(testAuthor()), noopCommentRepo(), testutil.NewUploaderStub())

	_, err := svc.CreateArticle(context.Background(), CreateArticleInput{
		Title:    "Go Generics",
		Category: "golang",
		Content:  "A long read about type parameters.",
	})
	assertAppErrorCode(t, err, "UNAUTHORIZED")
}

func TestCreateArticleUploadFailureSkipsCreate(t *testing.T) {
	uploader := testutil.NewUploaderStub()
	uploader.Err = models.NewUpstreamError("cloudinary", errors.New("503"))

	createCalled := false
	repo := noopArticleRepo()
	repo.createFn = func(_ context.Context, _ *models.Article) error {
		createCalled = true
		return nil
	}

	svc := NewArticleService(repo, registeredUserRepo(testAuthor()), noopCommentRepo(), uploader)
	_, err := svc.CreateArticle(context.Background(), CreateArticleInput{
		ExternalID: "idp_7",
		Title:      "Go Generics",
		Category:   "golang",
		Content:    "A long read about type parameters.",
		Image: &ImageInput{
			Filename:    "cover.png",
			ContentType: "image/png",
			Data:        testutil.TinyPNG(t, 32, 32),
		},
	})
	assertAppErrorCode(t, err, "UPSTREAM_ERROR")
	assert.False(t, createCalled)
}

func TestUpdateArticleOwnershipEnforced(t *testing.T) {
	repo := noopArticleRepo()
	repo.getByIDFn = func(_ context.Context, _ uint) (*models.Article, error) {
		return &models.Article{ID: 5, AuthorID: 99}, nil
	}

	svc := NewArticleService(repo, registeredUserRepo(testAuthor()), noopCommentRepo(), testutil.NewUploaderStub())
	_, err := svc.UpdateArticle(context.Background(), UpdateArticleInput{
		ExternalID: "idp_7",
		ArticleID:  5,
		Title:      "Go Generics",
		Category:   "golang",
		Content:    "A long read about type parameters.",
	})
	assertAppErrorCode(t, err, "FORBIDDEN")
}

func TestUpdateArticleUnregisteredUserForbidden(t *testing.T) {
	repo := noopArticleRepo()
	repo.getByIDFn = func(_ context.Context, _ uint) (*models.Article, error) {
		return &models.Article{ID: 5, AuthorID: 7}, nil
	}

	// A valid session whose user was never synced can't own the article, so
	// the answer is forbidden, not a 404 for the caller's own account.
	svc := NewArticleService(repo, registeredUserRepo(testAuthor()), noopCommentRepo(), testutil.NewUploaderStub())
	_, err := svc.UpdateArticle(context.Background(), UpdateArticleInput{
		ExternalID: "idp_unknown",
		ArticleID:  5,
		Title:      "Go Generics",
		Category:   "golang",
		Content:    "A long read about type parameters.",
	})
	assertAppErrorCode(t, err, "FORBIDDEN")
}

func TestUpdateArticleKeepsImageWhenNoneSubmitted(t *testing.T) {
	repo := noopArticleRepo()
	repo.getByIDFn = func(_ context.Context, _ uint) (*models.Article, error) {
		return &models.Article{ID: 5, AuthorID: 7, FeaturedImage: "https://media.test/articles/original.webp"}, nil
	}
	var saved *models.Article
	repo.updateFn = func(_ context.Context, a *models.Article) error {
		saved = a
		return nil
	}

	uploader := testutil.NewUploaderStub()
	svc := NewArticleService(repo, registeredUserRepo(testAuthor()), noopCommentRepo(), uploader)
	article, err := svc.UpdateArticle(context.Background(), UpdateArticleInput{
		ExternalID: "idp_7",
		ArticleID:  5,
		Title:      "Go Generics, revised",
		Category:   "golang",
		Content:    "A longer read about type parameters.",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://media.test/articles/original.webp", article.FeaturedImage)
	assert.Equal(t, "Go Generics, revised", saved.Title)
	assert.Zero(t, uploader.UploadCount())
}

func TestUpdateArticleReplacesImageWhenSubmitted(t *testing.T) {
	repo := noopArticleRepo()
	repo.getByIDFn = func(_ context.Context, _ uint) (*models.Article, error) {
		return &models.Article{ID: 5, AuthorID: 7, FeaturedImage: "https://media.test/articles/original.webp"}, nil
	}

	svc := NewArticleService(repo, registeredUserRepo(testAuthor()), noopCommentRepo(), testutil.NewUploaderStub())
	article, err := svc.UpdateArticle(context.Background(), UpdateArticleInput{
		ExternalID: "idp_7",
		ArticleID:  5,
		Title:      "Go Generics, revised",
		Category:   "golang",
		Content:    "A longer read about type parameters.",
		Image: &ImageInput{
			Filename:    "replacement.png",
			ContentType: "image/png",
			Data:        testutil.TinyPNG(t, 32, 32),
		},
	})
	require.NoError(t, err)
	assert.Contains(t, article.FeaturedImage, "replacement.png")
}

func TestDeleteArticleMissingIsIdempotent(t *testing.T) {
	repo := noopArticleRepo()
	repo.getByIDFn = func(_ context.Context, id uint) (*models.Article, error) {
		return nil, models.NewNotFoundError("Article", id)
	}
	deleteCalled := false
	repo.deleteFn = func(_ context.Context, _ uint) error {
		deleteCalled = true
		return nil
	}

	svc := NewArticleService(repo, registeredUserRepo(testAuthor()), noopCommentRepo(), testutil.NewUploaderStub())
	err := svc.DeleteArticle(context.Background(), DeleteArticleInput{ExternalID: "idp_7", ArticleID: 404})
	require.NoError(t, err)
	assert.False(t, deleteCalled)
}

func TestDeleteArticleOwnershipEnforced(t *testing.T) {
	repo := noopArticleRepo()
	repo.getByIDFn = func(_ context.Context, _ uint) (*models.Article, error) {
		return &models.Article{ID: 5, AuthorID: 99}, nil
	}

	svc := NewArticleService(repo, registeredUserRepo(testAuthor()), noopCommentRepo(), testutil.NewUploaderStub())
	err := svc.DeleteArticle(context.Background(), DeleteArticleInput{ExternalID: "idp_7", ArticleID: 5})
	assertAppErrorCode(t, err, "FORBIDDEN")
}

func TestDeleteArticleUnregisteredUserForbidden(t *testing.T) {
	repo := noopArticleRepo()
	repo.getByIDFn = func(_ context.Context, _ uint) (*models.Article, error) {
		return &models.Article{ID: 5, AuthorID: 7}, nil
	}
	deleteCalled := false
	repo.deleteFn = func(_ context.Context, _ uint) error {
		deleteCalled = true
		return nil
	}

	svc := NewArticleService(repo, registeredUserRepo(testAuthor()), noopCommentRepo(), testutil.NewUploaderStub())
	err := svc.DeleteArticle(context.Background(), DeleteArticleInput{ExternalID: "idp_unknown", ArticleID: 5})
	assertAppErrorCode(t, err, "FORBIDDEN")
	assert.False(t, deleteCalled)
}

func TestSearchArticlesClampsPagination(t *testing.T) {
	var gotSkip, gotTake int
	repo := noopArticleRepo()
	repo.searchPageFn = func(_ context.Context, _ string, skip, take int) ([]*models.Article, int64, error) {
		gotSkip, gotTake = skip, take
		return nil, 0, nil
	}

	svc := NewArticleService(repo, registeredUserRepo(testAuthor()), noopCommentRepo(), testutil.NewUploaderStub())

	result, err := svc.SearchArticles(context.Background(), SearchArticlesInput{Query: "go", Skip: -5, Take: 0})
	require.NoError(t, err)
	assert.Equal(t, 0, gotSkip)
	assert.Equal(t, DefaultSearchPageSize, gotTake)
	assert.NotNil(t, result.Articles)
	assert.Empty(t, result.Articles)

	_, err = svc.SearchArticles(context.Background(), SearchArticlesInput{Query: "go", Skip: 30, Take: 5000})
	require.NoError(t, err)
	assert.Equal(t, 30, gotSkip)
	assert.Equal(t, MaxSearchPageSize, gotTake)
}

func TestSearchArticlesReturnsPageAndTotal(t *testing.T) {
	repo := noopArticleRepo()
	repo.searchPageFn = func(_ context.Context, query string, _, _ int) ([]*models.Article, int64, error) {
		assert.Equal(t, "go", query)
		return []*models.Article{{ID: 1, Title: "Go Generics"}}, 27, nil
	}

	svc := NewArticleService(repo, registeredUserRepo(testAuthor()), noopCommentRepo(), testutil.NewUploaderStub())
	result, err := svc.SearchArticles(context.Background(), SearchArticlesInput{Query: "go", Take: 10})
	require.NoError(t, err)
	assert.Len(t, result.Articles, 1)
	assert.Equal(t, int64(27), result.Total)
}

func TestListCommentsMissingArticle(t *testing.T) {
	repo := noopArticleRepo()
	repo.getByIDFn = func(_ context.Context, id uint) (*models.Article, error) {
		return nil, models.NewNotFoundError("Article", id)
	}

	svc := NewArticleService(repo, registeredUserRepo(testAuthor()), noopCommentRepo(), testutil.NewUploaderStub())
	_, err := svc.ListComments(context.Background(), 404, 20, 0)
	assertAppErrorCode(t, err, "NOT_FOUND")
}

func TestDashboardAggregates(t *testing.T) {
	repo := noopArticleRepo()
	repo.listFn = func(_ context.Context, limit, offset int) ([]*models.Article, error) {
		assert.Equal(t, DashboardArticleLimit, limit)
		assert.Zero(t, offset)
		return []*models.Article{{ID: 1, Title: "Go Generics", CommentsCount: 3}}, nil
	}
	repo.countAllFn = func(_ context.Context) (int64, error) { return 12, nil }

	comments := noopCommentRepo()
	comments.countAllFn = func(_ context.Context) (int64, error) { return 40, nil }

	svc := NewArticleService(repo, registeredUserRepo(testAuthor()), comments, testutil.NewUploaderStub())
	data, err := svc.Dashboard(context.Background())
	require.NoError(t, err)
	assert.Len(t, data.Articles, 1)
	assert.Equal(t, int64(12), data.TotalArticles)
	assert.Equal(t, int64(40), data.TotalComments)
}
