package server

import (
	"io"
	"mime/multipart"

	"inkwell/internal/models"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateArticle handles POST /api/articles. The payload is a multipart form
// with title, category, content and a required image file.
func (s *Server) CreateArticle(c *fiber.Ctx) error {
	ctx := c.Context()

	image, err := s.formImage(c, "image")
	if err != nil {
		return nil
	}

	article, err := s.articleService.CreateArticle(ctx, service.CreateArticleInput{
		ExternalID: s.externalID(c),
		Title:      c.FormValue("title"),
		Category:   c.FormValue("category"),
		Content:    c.FormValue("content"),
		Image:      image,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Article created successfully",
		"article": article,
	})
}

// UpdateArticle handles PUT /api/articles/:id. The image file is optional;
// when absent the stored featured image is kept.
func (s *Server) UpdateArticle(c *fiber.Ctx) error {
	ctx := c.Context()
	articleID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	image, err := s.formImage(c, "image")
	if err != nil {
		return nil
	}

	article, err := s.articleService.UpdateArticle(ctx, service.UpdateArticleInput{
		ExternalID: s.externalID(c),
		ArticleID:  articleID,
		Title:      c.FormValue("title"),
		Category:   c.FormValue("category"),
		Content:    c.FormValue("content"),
		Image:      image,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Article updated successfully",
		"article": article,
	})
}

// DeleteArticle handles DELETE /api/articles/:id
func (s *Server) DeleteArticle(c *fiber.Ctx) error {
	ctx := c.Context()
	articleID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.articleService.DeleteArticle(ctx, service.DeleteArticleInput{
		ExternalID: s.externalID(c),
		ArticleID:  articleID,
	}); err != nil {
		return respondServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// SearchArticles handles GET /api/articles/search?q=...&skip=...&take=...
func (s *Server) SearchArticles(c *fiber.Ctx) error {
	ctx := c.Context()

	result, err := s.articleService.SearchArticles(ctx, service.SearchArticlesInput{
		Query: c.Query("q"),
		Skip:  c.QueryInt("skip", 0),
		Take:  c.QueryInt("take", 0),
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(result)
}

// GetArticles handles GET /api/articles
func (s *Server) GetArticles(c *fiber.Ctx) error {
	ctx := c.Context()
	page := parsePagination(c, 20)

	articles, err := s.articleService.ListArticles(ctx, page.Limit, page.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	if articles == nil {
		articles = []*models.Article{}
	}

	return c.JSON(articles)
}

// GetArticle handles GET /api/articles/:id
func (s *Server) GetArticle(c *fiber.Ctx) error {
	ctx := c.Context()
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	article, err := s.articleService.GetArticle(ctx, id)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(article)
}

// GetArticleComments handles GET /api/articles/:id/comments
func (s *Server) GetArticleComments(c *fiber.Ctx) error {
	ctx := c.Context()
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	page := parsePagination(c, 20)

	comments, err := s.articleService.ListComments(ctx, id, page.Limit, page.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	if comments == nil {
		comments = []*models.Comment{}
	}

	return c.JSON(comments)
}

// Dashboard handles GET /api/dashboard
func (s *Server) Dashboard(c *fiber.Ctx) error {
	data, err := s.articleService.Dashboard(c.Context())
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(data)
}

// formImage extracts an uploaded file from the multipart form. A missing file
// yields (nil, nil) so callers can treat the image as optional; read failures
// write a 400 and return errResponseWritten.
func (s *Server) formImage(c *fiber.Ctx, field string) (*service.ImageInput, error) {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		return nil, nil
	}
	data, err := readMultipartFile(fileHeader)
	if err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Could not read uploaded file"))
		return nil, errResponseWritten
	}
	return &service.ImageInput{
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func readMultipartFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return io.ReadAll(f)
}
