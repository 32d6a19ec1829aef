package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

var unsafeFolderChars = regexp.MustCompile(`[^a-zA-Z0-9\-_]`)

// FolderManager manages one working folder per conversion under baseDir.
type FolderManager struct {
	baseDir string
	logger  *zap.Logger
}

// NewFolderManager creates a new FolderManager
func NewFolderManager(baseDir string, logger *zap.Logger) *FolderManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FolderManager{
		baseDir: baseDir,
		logger:  logger,
	}
}

// CreateFolder creates {baseDir}/{conversionID}/ and returns its path.
func (m *FolderManager) CreateFolder(conversionID string) (string, error) {
	safeName := SanitizeFolderName(conversionID)
	if safeName == "" {
		return "", fmt.Errorf("cannot create folder: invalid conversion ID %q", conversionID)
	}

	folderPath := filepath.Join(m.baseDir, safeName)
	if err := os.MkdirAll(folderPath, 0755); err != nil {
		m.logger.Error("Failed to create conversion folder",
			zap.String("conversion_id", conversionID),
			zap.String("folder_path", folderPath),
			zap.Error(err))
		return "", fmt.Errorf("failed to create folder: %w", err)
	}

	m.logger.Debug("Created conversion folder",
		zap.String("conversion_id", conversionID),
		zap.String("folder_path", folderPath))

	return folderPath, nil
}

// FolderPath returns the folder for a conversion without creating it.
func (m *FolderManager) FolderPath(conversionID string) string {
	return filepath.Join(m.baseDir, SanitizeFolderName(conversionID))
}

// FolderExists checks if the conversion folder exists
func (m *FolderManager) FolderExists(conversionID string) bool {
	info, err := os.Stat(m.FolderPath(conversionID))
	if err != nil {
		return false
	}
	return info.IsDir()
}

// DeleteFolder removes a conversion folder and its contents. Deleting a missing
// folder is not an error.
func (m *FolderManager) DeleteFolder(conversionID string) error {
	safeName := SanitizeFolderName(conversionID)
	if safeName == "" {
		return nil
	}
	folderPath := filepath.Join(m.baseDir, safeName)

	if err := os.RemoveAll(folderPath); err != nil {
		m.logger.Error("Failed to delete conversion folder",
			zap.String("conversion_id", conversionID),
			zap.String("folder_path", folderPath),
			zap.Error(err))
		return fmt.Errorf("failed to delete folder: %w", err)
	}

	m.logger.Debug("Deleted conversion folder",
		zap.String("conversion_id", conversionID),
		zap.String("folder_path", folderPath))

	return nil
}

// SanitizeFolderName keeps only letters, digits, hyphens and underscores.
func SanitizeFolderName(name string) string {
	name = strings.ReplaceAll(name, "..", "")
	return unsafeFolderChars.ReplaceAllString(name, "")
}
