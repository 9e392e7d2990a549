package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"google.golang.org/api/option"

	"github.com/jhoicas/negocio-erp/internal/application/inventory"
	"github.com/jhoicas/negocio-erp/pkg/config"
)

var _ inventory.ImageStore = (*GCSImageStore)(nil)

const (
	maxWidth   = 800
	thumbWidth = 200
	thumbSufix = "_thumb"
)

// GCSImageStore guarda imágenes de producto en un bucket de Cloud Storage.
// Cada subida genera la imagen redimensionada y una miniatura JPEG.
type GCSImageStore struct {
	client  *storage.Client
	bucket  string
	baseURL string
}

// NewGCSImageStore abre el cliente. Sin archivo de credenciales usa las credenciales por defecto del entorno.
func NewGCSImageStore(ctx context.Context, cfg config.StorageConfig) (*GCSImageStore, error) {
	var opts []option.ClientOption
	if strings.TrimSpace(cfg.GCSCredentialsJSON) != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.GCSCredentialsJSON))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gcs client: %w", err)
	}
	return &GCSImageStore{
		client:  client,
		bucket:  cfg.GCSBucket,
		baseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
	}, nil
}

// Close libera el cliente.
func (s *GCSImageStore) Close() error {
	return s.client.Close()
}

// Upload escala la imagen, la sube junto a su miniatura y devuelve la URL pública.
func (s *GCSImageStore) Upload(ctx context.Context, companyID, name string, data []byte) (string, error) {
	full, thumb, err := encodeImage(data)
	if err != nil {
		return "", err
	}
	object := objectName(companyID, name)
	if err := s.write(ctx, object, full); err != nil {
		return "", err
	}
	if err := s.write(ctx, thumbName(object), thumb); err != nil {
		_ = s.client.Bucket(s.bucket).Object(object).Delete(ctx)
		return "", err
	}
	return s.publicURL(object), nil
}

// Delete borra imagen y miniatura. Objetos inexistentes no son error.
func (s *GCSImageStore) Delete(ctx context.Context, url string) error {
	object, ok := s.objectFromURL(url)
	if !ok {
		return fmt.Errorf("url fuera del bucket %s: %s", s.bucket, url)
	}
	for _, name := range []string{object, thumbName(object)} {
		err := s.client.Bucket(s.bucket).Object(name).Delete(ctx)
		if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
			return fmt.Errorf("gcs delete %s: %w", name, err)
		}
	}
	return nil
}

func (s *GCSImageStore) write(ctx context.Context, object string, data []byte) error {
	wc := s.client.Bucket(s.bucket).Object(object).NewWriter(ctx)
	wc.ContentType = "image/jpeg"
	wc.CacheControl = "public, max-age=86400"
	if _, err := wc.Write(data); err != nil {
		_ = wc.Close()
		return fmt.Errorf("gcs write %s: %w", object, err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("gcs close %s: %w", object, err)
	}
	return nil
}

func (s *GCSImageStore) publicURL(object string) string {
	return fmt.Sprintf("%s/%s/%s", s.baseURL, s.bucket, object)
}

func (s *GCSImageStore) objectFromURL(url string) (string, bool) {
	prefix := fmt.Sprintf("%s/%s/", s.baseURL, s.bucket)
	if !strings.HasPrefix(url, prefix) || len(url) == len(prefix) {
		return "", false
	}
	return strings.TrimPrefix(url, prefix), true
}

// objectName agrega un sufijo aleatorio: re-subir la imagen de un producto no pisa la URL anterior en caché.
func objectName(companyID, name string) string {
	return fmt.Sprintf("%s/%s-%s.jpg", companyID, strings.Trim(name, "/"), uuid.NewString()[:8])
}

func thumbName(object string) string {
	return strings.TrimSuffix(object, ".jpg") + thumbSufix + ".jpg"
}

// encodeImage decodifica cualquier formato soportado y devuelve JPEG escalado y miniatura.
func encodeImage(data []byte) (full, thumb []byte, err error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, nil, fmt.Errorf("decodificar imagen: %w", err)
	}
	if img.Bounds().Dx() > maxWidth {
		img = imaging.Resize(img, maxWidth, 0, imaging.Lanczos)
	}
	var fullBuf bytes.Buffer
	if err := imaging.Encode(&fullBuf, img, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return nil, nil, fmt.Errorf("codificar imagen: %w", err)
	}
	var thumbBuf bytes.Buffer
	small := imaging.Resize(img, thumbWidth, 0, imaging.Lanczos)
	if err := imaging.Encode(&thumbBuf, small, imaging.JPEG); err != nil {
		return nil, nil, fmt.Errorf("codificar miniatura: %w", err)
	}
	return fullBuf.Bytes(), thumbBuf.Bytes(), nil
}
