package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/vinayk94/iso-assist/internal/model"
	"github.com/vinayk94/iso-assist/internal/pkg/dbutil"
	appErr "github.com/vinayk94/iso-assist/internal/pkg/errors"
)

type DocumentRepo struct {
	db *sql.DB
}

func NewDocumentRepo(db *sql.DB) *DocumentRepo {
	return &DocumentRepo{db: db}
}

var documentFields = []string{"id", "title", "url", "content_type", "file_name", "ctime"}

func (r *DocumentRepo) GetByID(ctx context.Context, id int64) (*model.Document, error) {
	where := map[string]interface{}{
		"id": id,
	}
	query, args, err := builder.BuildSelect("documents", where, documentFields)
	if err != nil {
		return nil, err
	}
	query, args = dbutil.Finalize(query, args)
	row := r.db.QueryRowContext(ctx, query, args...)
	var doc model.Document
	if err := row.Scan(&doc.ID, &doc.Title, &doc.URL, &doc.ContentType, &doc.FileName, &doc.Ctime); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErr.ErrNotFound
		}
		return nil, err
	}
	return &doc, nil
}

func (r *DocumentRepo) GetByFileName(ctx context.Context, fileName string) (*model.Document, error) {
	where := map[string]interface{}{
		"file_name": fileName,
	}
	query, args, err := builder.BuildSelect("documents", where, documentFields)
	if err != nil {
		return nil, err
	}
	query, args = dbutil.Finalize(query, args)
	row := r.db.QueryRowContext(ctx, query, args...)
	var doc model.Document
	if err := row.Scan(&doc.ID, &doc.Title, &doc.URL, &doc.ContentType, &doc.FileName, &doc.Ctime); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErr.ErrNotFound
		}
		return nil, err
	}
	return &doc, nil
}

func (r *DocumentRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&count)
	return count, err
}
