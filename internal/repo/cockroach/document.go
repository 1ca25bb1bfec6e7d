package cockroach

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"time"

	"docvault-backend/internal/entity"
	"docvault-backend/internal/repo"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/minio/minio-go/v7"
)

const documentsBucket = "documents"

type Document struct {
	db          *sqlx.DB
	minioClient *minio.Client
}

func NewDocument(db *sqlx.DB, minioClient *minio.Client) (repo.Document, error) {
	// Создаем бакет для документов, предварительно проверив, что его нет
	ctx := context.TODO()
	exists, err := minioClient.BucketExists(ctx, documentsBucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		err = minioClient.MakeBucket(ctx, documentsBucket, minio.MakeBucketOptions{})
		if err != nil {
			return nil, err
		}
	}
	return &Document{
		db:          db,
		minioClient: minioClient,
	}, nil
}

func (d *Document) AddDocument(document *entity.Document) (int, error) {
	// Сначала кладём файл в блоб-хранилище, затем создаём запись в БД.
	// Если вставка записи не удалась, блоб остаётся без записи — сверкой
	// таких сирот занимается reconciler.
	ctx := context.TODO()
	_, err := d.minioClient.PutObject(
		ctx,
		documentsBucket,
		document.StoragePath,
		document.RawBytes,
		document.FileSize,
		minio.PutObjectOptions{
			ContentType: document.FileType,
		},
	)
	if err != nil {
		return 0, err
	}
	var documentID int
	query := `INSERT INTO document (user_id, file_name, file_type, file_size, storage_path, is_safe)
			  VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	err = d.db.QueryRow(
		query,
		document.UserID,
		document.FileName,
		document.FileType,
		document.FileSize,
		document.StoragePath,
		document.IsSafe,
	).Scan(&documentID)
	if err != nil {
		return 0, err
	}
	return documentID, nil
}

func (d *Document) GetDocument(id int) (*entity.Document, error) {
	document := &entity.Document{}
	query := `SELECT id, user_id, file_name, file_type, file_size, storage_path,
				     share_token, share_expires_at, is_safe, created_at
			  FROM document WHERE id = $1`
	err := d.db.Get(document, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repo.ErrDocumentNotFound
		}
		return nil, err
	}
	return document, nil
}

func (d *Document) GetDocuments(userID int) ([]*entity.Document, error) {
	query, args, err := sq.
		Select("id", "user_id", "file_name", "file_type", "file_size", "storage_path",
			"share_token", "share_expires_at", "is_safe", "created_at").
		From("document").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at DESC").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}
	var documents []*entity.Document
	err = d.db.Select(&documents, query, args...)
	if err != nil {
		return nil, err
	}
	return documents, nil
}

func (d *Document) GetDocumentByShareToken(token string) (*entity.Document, error) {
	document := &entity.Document{}
	query := `SELECT id, user_id, file_name, file_type, file_size, storage_path,
				     share_token, share_expires_at, is_safe, created_at
			  FROM document WHERE share_token = $1`
	err := d.db.Get(document, query, token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repo.ErrDocumentNotFound
		}
		return nil, err
	}
	return document, nil
}

func (d *Document) GetDocumentFile(document *entity.Document) (io.ReadCloser, error) {
	ctx := context.TODO()
	object, err := d.minioClient.GetObject(ctx, documentsBucket, document.StoragePath, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	return object, nil
}

func (d *Document) SetShareToken(documentID int, token string, expiresAt time.Time) error {
	// Замена безусловная: предыдущий токен перестаёт действовать сразу
	query := `UPDATE document SET share_token = $1, share_expires_at = $2 WHERE id = $3`
	result, err := d.db.Exec(query, token, expiresAt, documentID)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return repo.ErrDocumentNotFound
	}
	return nil
}

func (d *Document) DeleteDocument(document *entity.Document) error {
	// Порядок важен: сначала блоб, потом запись. Если блоб удалить не удалось,
	// запись не трогаем, чтобы не получить запись без файла.
	ctx := context.TODO()
	err := d.minioClient.RemoveObject(ctx, documentsBucket, document.StoragePath, minio.RemoveObjectOptions{})
	if err != nil {
		return err
	}
	query := `DELETE FROM document WHERE id = $1`
	_, err = d.db.Exec(query, document.ID)
	return err
}

func (d *Document) GetAllStoragePaths() ([]string, error) {
	var paths []string
	query := `SELECT storage_path FROM document`
	err := d.db.Select(&paths, query)
	if err != nil {
		return nil, err
	}
	return paths, nil
}

func (d *Document) GetStorageObjects(ctx context.Context) ([]string, error) {
	var keys []string
	for object := range d.minioClient.ListObjects(ctx, documentsBucket, minio.ListObjectsOptions{Recursive: true}) {
		if object.Err != nil {
			return nil, object.Err
		}
		keys = append(keys, object.Key)
	}
	return keys, nil
}
