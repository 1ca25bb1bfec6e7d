package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"docvault-backend/internal/entity"
	"docvault-backend/internal/repo"
	"docvault-backend/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeScan struct {
	verdict      *entity.ScanVerdict
	err          error
	calls        int
	lastContent  string
	lastFileType string
}

func (f *fakeScan) CheckDocument(content, fileName, fileType string) (*entity.ScanVerdict, error) {
	f.calls++
	f.lastContent = content
	f.lastFileType = fileType
	if f.verdict == nil {
		return &entity.ScanVerdict{IsSafe: true, Warnings: []entity.ScanWarning{}}, f.err
	}
	return f.verdict, f.err
}

type fakeDocumentRepo struct {
	documents     map[int]*entity.Document
	nextID        int
	addCalls      int
	blobDeleteErr error
}

func newFakeDocumentRepo() *fakeDocumentRepo {
	return &fakeDocumentRepo{documents: map[int]*entity.Document{}, nextID: 1}
}

func (f *fakeDocumentRepo) AddDocument(document *entity.Document) (int, error) {
	f.addCalls++
	id := f.nextID
	f.nextID++
	stored := *document
	stored.ID = id
	stored.CreatedAt = time.Now()
	f.documents[id] = &stored
	return id, nil
}

func (f *fakeDocumentRepo) GetDocument(id int) (*entity.Document, error) {
	document, ok := f.documents[id]
	if !ok {
		return nil, repo.ErrDocumentNotFound
	}
	copied := *document
	return &copied, nil
}

func (f *fakeDocumentRepo) GetDocuments(userID int) ([]*entity.Document, error) {
	var result []*entity.Document
	for _, document := range f.documents {
		if document.UserID == userID {
			copied := *document
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (f *fakeDocumentRepo) GetDocumentByShareToken(token string) (*entity.Document, error) {
	for _, document := range f.documents {
		if document.ShareToken != nil && *document.ShareToken == token {
			copied := *document
			return &copied, nil
		}
	}
	return nil, repo.ErrDocumentNotFound
}

func (f *fakeDocumentRepo) GetDocumentFile(document *entity.Document) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader("file content")), nil
}

func (f *fakeDocumentRepo) SetShareToken(documentID int, token string, expiresAt time.Time) error {
	document, ok := f.documents[documentID]
	if !ok {
		return repo.ErrDocumentNotFound
	}
	document.ShareToken = &token
	document.ShareExpiresAt = &expiresAt
	return nil
}

func (f *fakeDocumentRepo) DeleteDocument(document *entity.Document) error {
	if f.blobDeleteErr != nil {
		return f.blobDeleteErr
	}
	delete(f.documents, document.ID)
	return nil
}

func (f *fakeDocumentRepo) GetAllStoragePaths() ([]string, error) {
	var paths []string
	for _, document := range f.documents {
		paths = append(paths, document.StoragePath)
	}
	return paths, nil
}

func (f *fakeDocumentRepo) GetStorageObjects(ctx context.Context) ([]string, error) {
	return f.GetAllStoragePaths()
}

func newTextDocument(userID int, name, content string) *entity.Document {
	return &entity.Document{
		UserID:   userID,
		FileName: name,
		FileType: "text/plain",
		FileSize: int64(len(content)),
		RawBytes: bytes.NewBufferString(content),
	}
}

func TestUploadDocument_RejectsDisallowedType(t *testing.T) {
	documentRepo := newFakeDocumentRepo()
	scan := &fakeScan{}
	documentUseCase := NewDocument(documentRepo, scan, nil)

	document := newTextDocument(1, "archive.zip", "data")
	document.FileType = "application/zip"

	_, _, err := documentUseCase.UploadDocument(document)
	assert.ErrorIs(t, err, usecase.ErrFileTypeNotAllowed)
	// До скана и хранилища дело не дошло
	assert.Zero(t, scan.calls)
	assert.Zero(t, documentRepo.addCalls)
}

func TestUploadDocument_RejectsOversizedFile(t *testing.T) {
	documentRepo := newFakeDocumentRepo()
	scan := &fakeScan{}
	documentUseCase := NewDocument(documentRepo, scan, nil)

	document := newTextDocument(1, "big.txt", "data")
	document.FileSize = 10<<20 + 1

	_, _, err := documentUseCase.UploadDocument(document)
	assert.ErrorIs(t, err, usecase.ErrFileTooLarge)
	assert.Zero(t, scan.calls)
	assert.Zero(t, documentRepo.addCalls)
}

func TestUploadDocument_BlockedOnUnsafeVerdict(t *testing.T) {
	documentRepo := newFakeDocumentRepo()
	scan := &fakeScan{
		verdict: &entity.ScanVerdict{
			IsSafe: false,
			Warnings: []entity.ScanWarning{
				{Type: entity.WarningPassword, Description: "пароль в открытом виде", Location: "строка 1"},
			},
		},
	}
	documentUseCase := NewDocument(documentRepo, scan, nil)

	_, verdict, err := documentUseCase.UploadDocument(newTextDocument(1, "notes.txt", "password=hunter2"))
	assert.ErrorIs(t, err, usecase.ErrUnsafeDocument)
	require.NotNil(t, verdict)
	require.Len(t, verdict.Warnings, 1)
	assert.Equal(t, entity.WarningPassword, verdict.Warnings[0].Type)
	// Ни блоба, ни записи
	assert.Zero(t, documentRepo.addCalls)
}

func TestUploadDocument_UnsafeWithoutWarningsProceeds(t *testing.T) {
	// Вердикт без предупреждений не блокирует загрузку
	documentRepo := newFakeDocumentRepo()
	scan := &fakeScan{verdict: &entity.ScanVerdict{IsSafe: false, Warnings: []entity.ScanWarning{}}}
	documentUseCase := NewDocument(documentRepo, scan, nil)

	_, _, err := documentUseCase.UploadDocument(newTextDocument(1, "notes.txt", "hello"))
	require.NoError(t, err)
	assert.Equal(t, 1, documentRepo.addCalls)
}

func TestUploadDocument_ScanErrorFailsOpen(t *testing.T) {
	documentRepo := newFakeDocumentRepo()
	scan := &fakeScan{err: errors.New("model gateway is down")}
	documentUseCase := NewDocument(documentRepo, scan, nil)

	documentID, verdict, err := documentUseCase.UploadDocument(newTextDocument(1, "notes.txt", "hello"))
	require.NoError(t, err)
	assert.NotZero(t, documentID)
	assert.True(t, verdict.IsSafe)
	assert.Equal(t, 1, documentRepo.addCalls)
}

func TestUploadDocument_Success(t *testing.T) {
	documentRepo := newFakeDocumentRepo()
	scan := &fakeScan{}
	documentUseCase := NewDocument(documentRepo, scan, nil)

	documentID, verdict, err := documentUseCase.UploadDocument(newTextDocument(7, "report.txt", "quarterly report"))
	require.NoError(t, err)
	require.NotZero(t, documentID)
	assert.True(t, verdict.IsSafe)

	stored, err := documentRepo.GetDocument(documentID)
	require.NoError(t, err)
	assert.Equal(t, 7, stored.UserID)
	assert.True(t, stored.IsSafe)
	// Путь неймспейсится по пользователю и содержит исходное имя файла
	assert.True(t, strings.HasPrefix(stored.StoragePath, "7/"))
	assert.True(t, strings.HasSuffix(stored.StoragePath, "_report.txt"))
}

func TestUploadDocument_TextContentSentAsIs(t *testing.T) {
	documentRepo := newFakeDocumentRepo()
	scan := &fakeScan{}
	documentUseCase := NewDocument(documentRepo, scan, nil)

	_, _, err := documentUseCase.UploadDocument(newTextDocument(1, "notes.txt", "password=hunter2"))
	require.NoError(t, err)
	assert.Equal(t, "password=hunter2", scan.lastContent)
}

func TestUploadDocument_PDFContentTruncatedBase64(t *testing.T) {
	documentRepo := newFakeDocumentRepo()
	scan := &fakeScan{}
	documentUseCase := NewDocument(documentRepo, scan, nil)

	raw := append([]byte("%PDF-1.4\n"), bytes.Repeat([]byte("a"), 64*1024)...)
	document := &entity.Document{
		UserID:   1,
		FileName: "contract.pdf",
		FileType: "application/pdf",
		FileSize: int64(len(raw)),
		RawBytes: bytes.NewBuffer(raw),
	}

	_, _, err := documentUseCase.UploadDocument(document)
	require.NoError(t, err)
	// Модель получает base64-префикс первых 5000 символов, не распарсенный текст
	assert.Len(t, scan.lastContent, 5000)
	full := base64.StdEncoding.EncodeToString(raw)
	assert.Equal(t, full[:5000], scan.lastContent)
}

func TestUploadDocument_ImageContentIsFileName(t *testing.T) {
	documentRepo := newFakeDocumentRepo()
	scan := &fakeScan{}
	documentUseCase := NewDocument(documentRepo, scan, nil)

	document := &entity.Document{
		UserID:   1,
		FileName: "vacation.jpg",
		FileType: "image/jpeg",
		FileSize: 4,
		RawBytes: bytes.NewBufferString("\xff\xd8\xff\xe0"),
	}

	_, _, err := documentUseCase.UploadDocument(document)
	require.NoError(t, err)
	assert.Equal(t, "vacation.jpg", scan.lastContent)
	assert.Equal(t, "image/jpeg", scan.lastFileType)
}

func TestGenerateShareLink_ReplacesPreviousToken(t *testing.T) {
	documentRepo := newFakeDocumentRepo()
	documentUseCase := NewDocument(documentRepo, &fakeScan{}, nil)

	documentID, _, err := documentUseCase.UploadDocument(newTextDocument(1, "notes.txt", "hello"))
	require.NoError(t, err)

	first, err := documentUseCase.GenerateShareLink(documentID, 1)
	require.NoError(t, err)
	second, err := documentUseCase.GenerateShareLink(documentID, 1)
	require.NoError(t, err)
	assert.NotEqual(t, first.Token, second.Token)

	// Старый токен умирает сразу, действует только последний
	_, err = documentUseCase.ResolveShare(first.Token)
	assert.ErrorIs(t, err, usecase.ErrShareUnavailable)
	resolved, err := documentUseCase.ResolveShare(second.Token)
	require.NoError(t, err)
	assert.Equal(t, documentID, resolved.ID)
}

func TestGenerateShareLink_Forbidden(t *testing.T) {
	documentRepo := newFakeDocumentRepo()
	documentUseCase := NewDocument(documentRepo, &fakeScan{}, nil)

	documentID, _, err := documentUseCase.UploadDocument(newTextDocument(1, "notes.txt", "hello"))
	require.NoError(t, err)

	_, err = documentUseCase.GenerateShareLink(documentID, 2)
	assert.ErrorIs(t, err, usecase.ErrForbidden)
}

func TestResolveShare_ExpiredToken(t *testing.T) {
	documentRepo := newFakeDocumentRepo()
	documentUseCase := NewDocument(documentRepo, &fakeScan{}, nil)

	documentID, _, err := documentUseCase.UploadDocument(newTextDocument(1, "notes.txt", "hello"))
	require.NoError(t, err)

	// Запись остаётся, но срок действия в прошлом
	token := "expired-token"
	require.NoError(t, documentRepo.SetShareToken(documentID, token, time.Now().Add(-time.Minute)))

	_, err = documentUseCase.ResolveShare(token)
	assert.ErrorIs(t, err, usecase.ErrShareUnavailable)
}

func TestResolveShare_UnknownToken(t *testing.T) {
	documentUseCase := NewDocument(newFakeDocumentRepo(), &fakeScan{}, nil)

	_, err := documentUseCase.ResolveShare("no-such-token")
	assert.ErrorIs(t, err, usecase.ErrShareUnavailable)
}

func TestDeleteDocument_BlobFailureKeepsRow(t *testing.T) {
	documentRepo := newFakeDocumentRepo()
	documentUseCase := NewDocument(documentRepo, &fakeScan{}, nil)

	documentID, _, err := documentUseCase.UploadDocument(newTextDocument(1, "notes.txt", "hello"))
	require.NoError(t, err)

	documentRepo.blobDeleteErr = errors.New("minio is down")
	err = documentUseCase.DeleteDocument(documentID, 1)
	assert.Error(t, err)

	// Запись не удалена
	_, err = documentRepo.GetDocument(documentID)
	assert.NoError(t, err)
}

func TestDeleteDocument_Forbidden(t *testing.T) {
	documentRepo := newFakeDocumentRepo()
	documentUseCase := NewDocument(documentRepo, &fakeScan{}, nil)

	documentID, _, err := documentUseCase.UploadDocument(newTextDocument(1, "notes.txt", "hello"))
	require.NoError(t, err)

	err = documentUseCase.DeleteDocument(documentID, 2)
	assert.ErrorIs(t, err, usecase.ErrForbidden)
	_, err = documentRepo.GetDocument(documentID)
	assert.NoError(t, err)
}

func TestDeleteDocument_Success(t *testing.T) {
	documentRepo := newFakeDocumentRepo()
	documentUseCase := NewDocument(documentRepo, &fakeScan{}, nil)

	documentID, _, err := documentUseCase.UploadDocument(newTextDocument(1, "notes.txt", "hello"))
	require.NoError(t, err)

	require.NoError(t, documentUseCase.DeleteDocument(documentID, 1))
	_, err = documentRepo.GetDocument(documentID)
	assert.ErrorIs(t, err, repo.ErrDocumentNotFound)
}
