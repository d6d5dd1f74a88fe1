package repository

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentRepository_ListByArticle(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewCommentRepository(db)

	rows := sqlmock.NewRows([]string{"id", "body", "article_id", "author_id"}).
		AddRow(1, "Great read", 3, 7).
		AddRow(2, "Thanks for this", 3, 8)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "comments" WHERE article_id = $1`)).
		WithArgs(3, 20).
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT "id","name","image","email" FROM "users"`)).
		WithArgs(7, 8).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
			AddRow(7, "Ada Lovelace").
			AddRow(8, "Grace Hopper"))

	comments, err := repo.ListByArticle(context.Background(), 3, 20, 0)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "Great read", comments[0].Body)
	assert.Equal(t, "Grace Hopper", comments[1].Author.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommentRepository_CountByArticle(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewCommentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "comments" WHERE article_id = $1`)).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	total, err := repo.CountByArticle(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommentRepository_CountAll(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewCommentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "comments"`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(9))

	total, err := repo.CountAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(9), total)
	assert.NoError(t, mock.ExpectationsWereMet())
}
