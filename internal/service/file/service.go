package file

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/nabd-altamayyuz/hr-backend-go/internal/pkg/storage"
)

const (
	dirCompanies = "companies"
	dirEmployees = "employees"
	dirTasks     = "tasks"
)

type FileService interface {
	UploadCompanyAttachment(ctx context.Context, companyID string, file io.Reader, filename string) (string, error)
	UploadEmployeeAttachment(ctx context.Context, userID string, file io.Reader, filename string) (string, error)
	UploadTaskAttachment(ctx context.Context, taskID string, file io.Reader, filename string) (string, error)

	// ReplaceCleanup removes a previous attachment after a new one was stored.
	// Failures are logged, not returned.
	ReplaceCleanup(ctx context.Context, previous *string)
	DeleteFile(ctx context.Context, path string) error
	GetFileURL(path string) string
}

type fileServiceImpl struct {
	storage storage.FileStorage
}

func NewFileService(storage storage.FileStorage) FileService {
	return &fileServiceImpl{
		storage: storage,
	}
}

// upload stores file as <dir>/<ownerID>/<uuid><ext>; the client file name is never used as a path.
func (s *fileServiceImpl) upload(ctx context.Context, dir, ownerID string, file io.Reader, filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	key := path.Join(dir, ownerID, uuid.NewString()+ext)

	uploadedPath, err := s.storage.Upload(ctx, file, key)
	if err != nil {
		return "", fmt.Errorf("failed to upload %s attachment: %w", dir, err)
	}
	return uploadedPath, nil
}

func (s *fileServiceImpl) UploadCompanyAttachment(ctx context.Context, companyID string, file io.Reader, filename string) (string, error) {
	return s.upload(ctx, dirCompanies, companyID, file, filename)
}

func (s *fileServiceImpl) UploadEmployeeAttachment(ctx context.Context, userID string, file io.Reader, filename string) (string, error) {
	return s.upload(ctx, dirEmployees, userID, file, filename)
}

func (s *fileServiceImpl) UploadTaskAttachment(ctx context.Context, taskID string, file io.Reader, filename string) (string, error) {
	return s.upload(ctx, dirTasks, taskID, file, filename)
}

func (s *fileServiceImpl) ReplaceCleanup(ctx context.Context, previous *string) {
	if previous == nil || *previous == "" {
		return
	}
	if err := s.storage.Delete(ctx, *previous); err != nil {
		slog.Warn("failed to delete replaced attachment", "path", *previous, "error", err)
	}
}

func (s *fileServiceImpl) DeleteFile(ctx context.Context, path string) error {
	return s.storage.Delete(ctx, path)
}

func (s *fileServiceImpl) GetFileURL(path string) string {
	return s.storage.GetURL(path)
}
