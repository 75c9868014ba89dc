package service

import (
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/classdesk/diary-api/internal/store"
	appErrors "github.com/classdesk/diary-api/pkg/errors"
)

// UpdateFileRequest overwrites a text file under the data directory.
type UpdateFileRequest struct {
	FilePath    string `json:"file_path" validate:"required"`
	FileContent string `json:"file_content"`
}

// FileService handles whole-file pushes from the desktop client. Paths are
// confined to the data directory; the legacy server wrote anywhere under
// its working directory.
type FileService struct {
	layout    store.Layout
	validator *validator.Validate
	logger    *zap.Logger
}

// NewFileService constructs FileService.
func NewFileService(layout store.Layout, validate *validator.Validate, logger *zap.Logger) *FileService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileService{layout: layout, validator: validate, logger: logger}
}

// Update overwrites the file at the given data-dir-relative path.
func (s *FileService) Update(req UpdateFileRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid file payload")
	}

	target, err := s.layout.Resolve(req.FilePath)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to prepare directory")
	}
	if err := os.WriteFile(target, []byte(req.FileContent), 0o644); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to write file")
	}

	s.logger.Info("file updated", zap.String("path", req.FilePath))
	return nil
}
