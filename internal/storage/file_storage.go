package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/garyjia/invoice-converter/pkg/utils"
	"go.uber.org/zap"
)

const (
	uploadsDir = "uploads"
	outputDir  = "output"
)

// FileStorage defines the file operations used by a conversion run.
type FileStorage interface {
	// SaveUpload stores an uploaded document and returns its path.
	SaveUpload(conversionID, fileName string, content []byte) (string, error)

	// CreateOutput opens the rendered document file for writing.
	CreateOutput(conversionID, ext string) (io.WriteCloser, string, error)

	// RemoveUpload deletes everything stored for the conversion's upload.
	RemoveUpload(conversionID string) error
}

// LocalFileStorage keeps uploads in {baseDir}/uploads/{id}/ and rendered
// documents in {baseDir}/output/.
type LocalFileStorage struct {
	baseDir string
	uploads *FolderManager
	logger  *zap.Logger
}

// NewLocalFileStorage creates a new LocalFileStorage
func NewLocalFileStorage(baseDir string, logger *zap.Logger) *LocalFileStorage {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LocalFileStorage{
		baseDir: baseDir,
		uploads: NewFolderManager(filepath.Join(baseDir, uploadsDir), logger),
		logger:  logger,
	}
}

// SaveFile writes content to fullPath, creating parent directories.
func (s *LocalFileStorage) SaveFile(fullPath string, content []byte) error {
	if err := s.ValidatePath(fullPath); err != nil {
		return err
	}

	parentDir := filepath.Dir(fullPath)
	if err := os.MkdirAll(parentDir, 0755); err != nil {
		s.logger.Error("Failed to create parent directories",
			zap.String("path", parentDir),
			zap.Error(err))
		return fmt.Errorf("failed to create directories: %w", err)
	}

	if err := os.WriteFile(fullPath, content, 0644); err != nil {
		s.logger.Error("Failed to write file",
			zap.String("path", fullPath),
			zap.Error(err))
		return fmt.Errorf("failed to write file: %w", err)
	}

	s.logger.Debug("File saved successfully",
		zap.String("path", fullPath),
		zap.Int("size", len(content)))

	return nil
}

// SaveUpload stores an uploaded document under the conversion's folder. The
// client-supplied name is reduced to a safe base name.
func (s *LocalFileStorage) SaveUpload(conversionID, fileName string, content []byte) (string, error) {
	folder, err := s.uploads.CreateFolder(conversionID)
	if err != nil {
		return "", err
	}

	fullPath := filepath.Join(folder, utils.SanitizeFileName(fileName))
	if err := s.SaveFile(fullPath, content); err != nil {
		return "", err
	}
	return fullPath, nil
}

// OutputDir returns the directory holding rendered documents.
func (s *LocalFileStorage) OutputDir() string {
	return filepath.Join(s.baseDir, outputDir)
}

// OutputPath returns {baseDir}/output/{id}.{ext}.
func (s *LocalFileStorage) OutputPath(conversionID, ext string) string {
	name := SanitizeFolderName(conversionID) + "." + strings.TrimPrefix(ext, ".")
	return filepath.Join(s.OutputDir(), name)
}

// CreateOutput creates the output file for a conversion and returns it with its path.
func (s *LocalFileStorage) CreateOutput(conversionID, ext string) (io.WriteCloser, string, error) {
	fullPath := s.OutputPath(conversionID, ext)
	if err := s.ValidatePath(fullPath); err != nil {
		return nil, "", err
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return nil, "", fmt.Errorf("failed to create directories: %w", err)
	}

	f, err := os.Create(fullPath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create output file: %w", err)
	}
	return f, fullPath, nil
}

// RemoveUpload deletes the conversion's upload folder.
func (s *LocalFileStorage) RemoveUpload(conversionID string) error {
	return s.uploads.DeleteFolder(conversionID)
}

// ValidatePath checks that the path is safe and within baseDir
func (s *LocalFileStorage) ValidatePath(fullPath string) error {
	absPath, err := filepath.Abs(fullPath)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}

	absBase, err := filepath.Abs(s.baseDir)
	if err != nil {
		return fmt.Errorf("failed to resolve base path: %w", err)
	}

	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) && absPath != absBase {
		return fmt.Errorf("path escapes base directory: %s", fullPath)
	}

	return nil
}
