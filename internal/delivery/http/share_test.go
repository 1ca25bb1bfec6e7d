package http

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"docvault-backend/internal/entity"
	"docvault-backend/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

type fakeDocumentUseCase struct {
	uploadID      int
	uploadVerdict *entity.ScanVerdict
	uploadErr     error
	shared        map[string]*entity.Document
	fileContent   string
}

func (f *fakeDocumentUseCase) UploadDocument(document *entity.Document) (int, *entity.ScanVerdict, error) {
	return f.uploadID, f.uploadVerdict, f.uploadErr
}

func (f *fakeDocumentUseCase) GetDocuments(userID int) ([]*entity.Document, error) {
	return nil, nil
}

func (f *fakeDocumentUseCase) GenerateShareLink(documentID, userID int) (*entity.ShareLink, error) {
	return nil, usecase.ErrForbidden
}

func (f *fakeDocumentUseCase) DeleteDocument(documentID, userID int) error {
	return usecase.ErrForbidden
}

func (f *fakeDocumentUseCase) ResolveShare(token string) (*entity.Document, error) {
	document, ok := f.shared[token]
	if !ok {
		return nil, usecase.ErrShareUnavailable
	}
	return document, nil
}

func (f *fakeDocumentUseCase) GetShareFile(document *entity.Document) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader(f.fileContent)), nil
}

func newShareServer(documentUseCase usecase.Document) *echo.Echo {
	server := echo.New()
	NewShare(documentUseCase).Configure(server.Group("/share"))
	return server
}

func sharedDocument() *entity.Document {
	expiresAt := time.Now().Add(time.Hour)
	token := "valid-token"
	return &entity.Document{
		ID:             1,
		UserID:         1,
		FileName:       "report.pdf",
		FileType:       "application/pdf",
		FileSize:       2048,
		ShareToken:     &token,
		ShareExpiresAt: &expiresAt,
	}
}

func TestShareResolve_ValidToken(t *testing.T) {
	documentUseCase := &fakeDocumentUseCase{
		shared: map[string]*entity.Document{"valid-token": sharedDocument()},
	}
	server := newShareServer(documentUseCase)

	req := httptest.NewRequest(http.MethodGet, "/share/valid-token", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "report.pdf")
}

func TestShareResolve_UnknownToken(t *testing.T) {
	server := newShareServer(&fakeDocumentUseCase{shared: map[string]*entity.Document{}})

	req := httptest.NewRequest(http.MethodGet, "/share/no-such-token", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "недоступна или истекла")
}

func TestShareDownload_Disposition(t *testing.T) {
	documentUseCase := &fakeDocumentUseCase{
		shared:      map[string]*entity.Document{"valid-token": sharedDocument()},
		fileContent: "file content",
	}
	server := newShareServer(documentUseCase)

	tests := []struct {
		name            string
		target          string
		wantDisposition string
	}{
		{"скачивание по умолчанию", "/share/valid-token/download", "attachment"},
		{"просмотр в браузере", "/share/valid-token/download?inline=true", "inline"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			rec := httptest.NewRecorder()
			server.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), tt.wantDisposition)
			assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), "report.pdf")
			assert.Equal(t, "application/pdf", rec.Header().Get(echo.HeaderContentType))
			assert.Equal(t, "file content", rec.Body.String())
		})
	}
}

func TestShareDownload_UnknownToken(t *testing.T) {
	server := newShareServer(&fakeDocumentUseCase{shared: map[string]*entity.Document{}})

	req := httptest.NewRequest(http.MethodGet, "/share/no-such-token/download", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
