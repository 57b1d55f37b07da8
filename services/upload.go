package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"voluntariado-backend/models"
	"voluntariado-backend/utils"

	"github.com/gabriel-vasile/mimetype"
)

// allowedImageTypes maps sniffed MIME types to the extensions accepted for them
var allowedImageTypes = map[string][]string{
	"image/jpeg": {".jpg", ".jpeg"},
	"image/png":  {".png"},
	"image/webp": {".webp"},
	"image/gif":  {".gif"},
}

// readImage checks size, sniffed content type and extension, and returns the image bytes
func readImage(file *models.ImageFile, maxBytes int64) ([]byte, error) {
	if file == nil || file.Content == nil {
		return nil, models.NewValidationError("image is required", models.FieldError{Field: "image", Error: "is required"})
	}
	if file.Size > maxBytes {
		return nil, models.NewValidationError("image is too large",
			models.FieldError{Field: "image", Error: fmt.Sprintf("must be at most %d bytes", maxBytes)})
	}

	data, err := io.ReadAll(io.LimitReader(file.Content, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(data)) > maxBytes {
		return nil, models.NewValidationError("image is too large",
			models.FieldError{Field: "image", Error: fmt.Sprintf("must be at most %d bytes", maxBytes)})
	}
	if len(data) == 0 {
		return nil, models.NewValidationError("image is empty", models.FieldError{Field: "image", Error: "is empty"})
	}

	mime := mimetype.Detect(data)
	extensions, ok := allowedImageTypes[mime.String()]
	if !ok {
		return nil, models.NewValidationError("unsupported image type",
			models.FieldError{Field: "image", Error: mime.String() + " is not an accepted image type"})
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	for _, allowed := range extensions {
		if ext == allowed {
			return data, nil
		}
	}
	return nil, models.NewValidationError("file extension does not match its content",
		models.FieldError{Field: "image", Error: fmt.Sprintf("extension %q does not match %s", ext, mime.String())})
}

// storeImage validates the file and hands it to the storage collaborator
func storeImage(ctx context.Context, storage ImageStorage, file *models.ImageFile, maxBytes int64, folder string) (string, error) {
	data, err := readImage(file, maxBytes)
	if err != nil {
		return "", err
	}
	url, err := storage.Upload(ctx, folder, utils.GenerateUUID(), bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to store image: %w", err)
	}
	return url, nil
}
