package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
	"voluntariado-backend/models"
	"voluntariado-backend/utils/logger"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

const uploadTimeout = 60 * time.Second

// ImageStorage stores an image and returns its public URL
type ImageStorage interface {
	Upload(ctx context.Context, folder, publicID string, content io.Reader) (string, error)
}

// New returns Cloudinary storage when credentials are configured and local disk storage otherwise
func New(cfg *models.Config, log logger.Logger) (ImageStorage, error) {
	if cfg.CloudinaryCloudName == "" {
		dir := filepath.Join(os.TempDir(), "voluntariado-uploads")
		log.Infof("Cloudinary not configured, storing uploads under %s", dir)
		return NewLocalStorage(dir, "/uploads"), nil
	}
	return NewCloudinaryStorage(cfg, log)
}

// CloudinaryStorage uploads images to Cloudinary
type CloudinaryStorage struct {
	cld    *cloudinary.Cloudinary
	prefix string
	logger logger.Logger
}

func NewCloudinaryStorage(cfg *models.Config, log logger.Logger) (*CloudinaryStorage, error) {
	cld, err := cloudinary.NewFromParams(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary config error: %w", err)
	}
	return &CloudinaryStorage{
		cld:    cld,
		prefix: strings.ToLower(strings.ReplaceAll(cfg.AppName, " ", "-")),
		logger: log,
	}, nil
}

// Upload stores content under <app>/<folder>/<publicID>
func (s *CloudinaryStorage) Upload(ctx context.Context, folder, publicID string, content io.Reader) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	resp, err := s.cld.Upload.Upload(ctx, content, uploader.UploadParams{
		Folder:       s.prefix + "/" + folder,
		PublicID:     publicID,
		ResourceType: "image",
	})
	if err != nil {
		return "", fmt.Errorf("upload error: %w", err)
	}
	if resp.Error.Message != "" {
		return "", fmt.Errorf("upload rejected: %s", resp.Error.Message)
	}
	s.logger.Debugf("Uploaded %s/%s to %s", folder, publicID, resp.SecureURL)
	return resp.SecureURL, nil
}

// LocalStorage writes images to a directory served under urlPrefix
type LocalStorage struct {
	dir       string
	urlPrefix string
}

func NewLocalStorage(dir, urlPrefix string) *LocalStorage {
	return &LocalStorage{dir: dir, urlPrefix: strings.TrimSuffix(urlPrefix, "/")}
}

// Dir is the directory the files are written to
func (s *LocalStorage) Dir() string {
	return s.dir
}

func (s *LocalStorage) Upload(ctx context.Context, folder, publicID string, content io.Reader) (string, error) {
	if strings.ContainsAny(folder+publicID, `/\.`) {
		return "", fmt.Errorf("invalid upload name %s/%s", folder, publicID)
	}
	target := filepath.Join(s.dir, folder)
	if err := os.MkdirAll(target, 0o755); err != nil {
		return "", err
	}
	f, err := os.Create(filepath.Join(target, publicID))
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := io.Copy(f, content); err != nil {
		return "", err
	}
	return s.urlPrefix + "/" + folder + "/" + publicID, nil
}
