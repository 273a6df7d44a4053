package db

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/nedaZarei/Cloud_ImageProcessingService/ImageTranslator/pkg/models"
)

const (
	CREATE_REQUEST_TABLE = `CREATE TABLE IF NOT EXISTS translation_requests(
		id SERIAL PRIMARY KEY,
		status VARCHAR(32) NOT NULL,
		languages TEXT[] NOT NULL,
		detected_language VARCHAR(16) NOT NULL DEFAULT '',
		dest_language VARCHAR(16) NOT NULL,
		failure VARCHAR(255) NOT NULL DEFAULT '',
		image_key VARCHAR(255) NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);`
)

type RequestDatabase interface {
	CreateRequest(ctx context.Context, languages []string, destLang string) (int, error)
	CompleteRequest(ctx context.Context, id int, status models.TaskStatus, detectedLang, failure string) error
	SetImageKey(ctx context.Context, id int, key string) error
	GetRequestByID(ctx context.Context, id int) (*models.TranslationRequest, error)
}

type RequestDatabaseImpl struct {
	db *sqlx.DB
}

func NewRequestDatabase(autoCreate bool, db *sqlx.DB) (*RequestDatabaseImpl, error) {
	if autoCreate {
		if _, err := db.Exec(CREATE_REQUEST_TABLE); err != nil {
			return nil, err
		}
	}
	return &RequestDatabaseImpl{db: db}, nil
}

func (r *RequestDatabaseImpl) CreateRequest(ctx context.Context, languages []string, destLang string) (int, error) {
	var id int
	err := r.db.QueryRowContext(ctx, "INSERT INTO translation_requests(status, languages, dest_language) VALUES($1, $2, $3) RETURNING id",
		models.TaskPending, pq.StringArray(languages), destLang).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *RequestDatabaseImpl) CompleteRequest(ctx context.Context, id int, status models.TaskStatus, detectedLang, failure string) error {
	_, err := r.db.ExecContext(ctx, "UPDATE translation_requests SET status=$1, detected_language=$2, failure=$3 WHERE id=$4",
		status, detectedLang, failure, id)
	return err
}

func (r *RequestDatabaseImpl) SetImageKey(ctx context.Context, id int, key string) error {
	_, err := r.db.ExecContext(ctx, "UPDATE translation_requests SET image_key=$1 WHERE id=$2", key, id)
	return err
}

func (r *RequestDatabaseImpl) GetRequestByID(ctx context.Context, id int) (*models.TranslationRequest, error) {
	request := &models.TranslationRequest{}
	err := r.db.GetContext(ctx, request, "SELECT id, status, languages, detected_language, dest_language, failure, image_key, created_at FROM translation_requests WHERE id=$1", id)
	if err != nil {
		return nil, err
	}
	return request, nil
}
