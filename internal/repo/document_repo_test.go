package repo_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	appErr "github.com/vinayk94/iso-assist/internal/pkg/errors"
	"github.com/vinayk94/iso-assist/internal/repo"
	"github.com/vinayk94/iso-assist/internal/testutil"
)

func TestDocumentRepoGetByID(t *testing.T) {
	conn, cleanup := testutil.OpenTestDB(t)
	defer cleanup()
	testutil.ResetTables(t, conn)

	docs := repo.NewDocumentRepo(conn)
	var id int64
	err := conn.QueryRow(
		`INSERT INTO documents (title, url, content_type, file_name, ctime) VALUES ('Handbook', 'https://example.com/h', 'pdf', 'handbook.pdf', 123) RETURNING id`,
	).Scan(&id)
	require.NoError(t, err)

	doc, err := docs.GetByID(context.Background(), id)
	require.NoError(t, err)
	require.Equal(t, "Handbook", doc.Title)
	require.Equal(t, "pdf", doc.ContentType)
	require.Equal(t, "handbook.pdf", doc.FileName)
	require.Equal(t, int64(123), doc.Ctime)

	_, err = docs.GetByID(context.Background(), id+1)
	require.ErrorIs(t, err, appErr.ErrNotFound)
}

func TestDocumentRepoGetByFileName(t *testing.T) {
	conn, cleanup := testutil.OpenTestDB(t)
	defer cleanup()
	testutil.ResetTables(t, conn)

	docs := repo.NewDocumentRepo(conn)
	_, err := conn.Exec(
		`INSERT INTO documents (title, url, content_type, file_name, ctime) VALUES ('Guide', 'https://example.com/g', 'pdf', 'guide.pdf', 0)`,
	)
	require.NoError(t, err)

	doc, err := docs.GetByFileName(context.Background(), "guide.pdf")
	require.NoError(t, err)
	require.Equal(t, "Guide", doc.Title)

	_, err = docs.GetByFileName(context.Background(), "missing.pdf")
	require.ErrorIs(t, err, appErr.ErrNotFound)
}

func TestDocumentRepoCount(t *testing.T) {
	conn, cleanup := testutil.OpenTestDB(t)
	defer cleanup()
	testutil.ResetTables(t, conn)

	docs := repo.NewDocumentRepo(conn)
	count, err := docs.Count(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(0), count)

	_, err = conn.Exec(
		`INSERT INTO documents (title, url) VALUES ('A', 'https://example.com/a'), ('B', 'https://example.com/b')`,
	)
	require.NoError(t, err)

	count, err = docs.Count(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(2), count)
}
