package filestorage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/yigit/studentadmin/internal/pkg/apperrors"
	"github.com/yigit/studentadmin/internal/pkg/logger"
)

// AllowedImageExtensions lists the profile picture formats accepted.
var AllowedImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// LocalStorage handles saving files to the local filesystem.
type LocalStorage struct {
	basePath string // root directory files are written to
	baseURL  string // public URL prefix the directory is served under
}

// NewLocalStorage creates a new LocalStorage instance, ensuring basePath exists.
func NewLocalStorage(basePath, baseURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, os.ModePerm); err != nil {
		logger.Error().Err(err).Str("path", basePath).Msg("Failed to create storage directory")
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	logger.Info().Str("path", basePath).Msg("Local storage directory ensured")

	return &LocalStorage{
		basePath: basePath,
		baseURL:  strings.TrimRight(baseURL, "/"),
	}, nil
}

// SaveImage stores an uploaded image under a collision-free name and returns
// the URL it is served from.
func (ls *LocalStorage) SaveImage(src io.Reader, originalName string) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if !AllowedImageExtensions[ext] {
		return "", apperrors.NewInvalidFormatError("Only jpg, jpeg, png or webp images are allowed")
	}

	uniqueFilename := uuid.New().String() + ext
	dstPath := filepath.Join(ls.basePath, uniqueFilename)

	dst, err := os.Create(dstPath)
	if err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to create destination file")
		return "", fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	if _, err = io.Copy(dst, src); err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to copy uploaded file content")
		_ = os.Remove(dstPath)
		return "", fmt.Errorf("failed to save file content: %w", err)
	}

	url := ls.baseURL + "/" + uniqueFilename
	logger.Info().Str("filename", originalName).Str("saved_as", uniqueFilename).Str("url", url).Msg("File saved successfully")
	return url, nil
}

// DeleteByURL removes the file a previously returned URL points at.
// URLs outside this storage and files already gone are ignored.
func (ls *LocalStorage) DeleteByURL(fileURL string) error {
	if fileURL == "" || !strings.HasPrefix(fileURL, ls.baseURL+"/") {
		return nil
	}

	filename := filepath.Base(strings.TrimPrefix(fileURL, ls.baseURL+"/"))
	if filename == "" || filename == "." || filename == "/" {
		return fmt.Errorf("invalid file url: %s", fileURL)
	}

	physicalPath := filepath.Join(ls.basePath, filename)
	if err := os.Remove(physicalPath); err != nil {
		if os.IsNotExist(err) {
			logger.Warn().Str("path", physicalPath).Msg("File to delete does not exist")
			return nil
		}
		logger.Error().Err(err).Str("path", physicalPath).Msg("Failed to delete file")
		return fmt.Errorf("failed to delete file: %w", err)
	}

	logger.Info().Str("path", physicalPath).Msg("File deleted successfully")
	return nil
}
