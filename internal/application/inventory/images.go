package inventory

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jhoicas/negocio-erp/internal/application/dto"
	"github.com/jhoicas/negocio-erp/internal/domain"
)

func uploadImage(ctx context.Context, store ImageStore, companyID, name string, img *dto.ImageUpload) (string, error) {
	if store == nil {
		return "", fmt.Errorf("%w: almacenamiento de imágenes no configurado", domain.ErrImageUpload)
	}
	if len(img.Data) == 0 {
		return "", fmt.Errorf("%w: archivo vacío", domain.ErrImageUpload)
	}
	url, err := store.Upload(ctx, companyID, name, img.Data)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrImageUpload, err)
	}
	return url, nil
}

// dropImage borra una imagen sin propagar el error; la entidad ya quedó consistente.
func dropImage(ctx context.Context, store ImageStore, log zerolog.Logger, url string) {
	if url == "" || store == nil {
		return
	}
	if err := store.Delete(ctx, url); err != nil {
		log.Warn().Err(err).Str("url", url).Msg("no se pudo borrar la imagen")
	}
}
