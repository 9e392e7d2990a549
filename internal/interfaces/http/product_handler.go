package http

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/negocio-erp/internal/application/dto"
	"github.com/jhoicas/negocio-erp/internal/application/inventory"
)

// maxImageBytes tamaño máximo aceptado para una imagen de producto.
const maxImageBytes = 5 << 20

// ProductHandler maneja las peticiones HTTP para Product y sus variaciones (protegido).
type ProductHandler struct {
	uc         *inventory.ProductUseCase
	variations *inventory.VariationUseCase
}

// NewProductHandler construye el handler.
func NewProductHandler(uc *inventory.ProductUseCase, variations *inventory.VariationUseCase) *ProductHandler {
	return &ProductHandler{uc: uc, variations: variations}
}

// Create godoc
// @Summary      Crear producto
// @Description  Acepta JSON o multipart/form-data con el campo "data" (JSON) y el archivo "image".
// @Tags         products
// @Security     Bearer
// @Accept       json
// @Accept       mpfd
// @Produce      json
// @Param        body  body  dto.CreateProductRequest  true  "Datos del producto"
// @Success      201   {object}  dto.ProductResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      502   {object}  dto.ErrorResponse
// @Router       /api/products [post]
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	var in dto.CreateProductRequest
	img, ok, err := parseWithImage(c, &in)
	if !ok {
		return err
	}
	out, err := h.uc.Create(c.UserContext(), companyID, in, img)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener producto por ID
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {object}  dto.ProductResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id} [get]
func (h *ProductHandler) GetByID(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	out, err := h.uc.GetByID(c.UserContext(), companyID, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	if out == nil {
		return notFound(c, "producto")
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar productos
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Límite"   default(20)
// @Param        offset  query  int  false  "Offset"   default(0)
// @Success      200     {object}  dto.ProductListResponse
// @Router       /api/products [get]
func (h *ProductHandler) List(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	page := dto.PageRequest{Limit: c.QueryInt("limit", 20), Offset: c.QueryInt("offset", 0)}
	page.DefaultPage()
	if page.Limit > 100 {
		page.Limit = 100
	}
	out, err := h.uc.List(c.UserContext(), companyID, page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar producto
// @Description  No modifica costo ni stock; use /api/inventory para eso.
// @Tags         products
// @Security     Bearer
// @Accept       json
// @Accept       mpfd
// @Produce      json
// @Param        id    path  string  true  "ID del producto"
// @Param        body  body  dto.UpdateProductRequest  true  "Datos a actualizar"
// @Success      200   {object}  dto.ProductResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/products/{id} [put]
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	var in dto.UpdateProductRequest
	img, ok, err := parseWithImage(c, &in)
	if !ok {
		return err
	}
	out, err := h.uc.Update(c.UserContext(), companyID, c.Params("id"), in, img)
	if err != nil {
		return respondError(c, err)
	}
	if out == nil {
		return notFound(c, "producto")
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar producto
// @Tags         products
// @Security     Bearer
// @Param        id   path  string  true  "ID del producto"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id} [delete]
func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	if err := h.uc.Delete(c.UserContext(), companyID, c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListVariations godoc
// @Summary      Listar variaciones de un producto
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {array}  dto.VariationResponse
// @Router       /api/products/{id}/variations [get]
func (h *ProductHandler) ListVariations(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	out, err := h.variations.List(c.UserContext(), companyID, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// CreateVariation godoc
// @Summary      Crear variación
// @Description  El stock y precio agregados del producto se recalculan a partir de sus variaciones.
// @Tags         products
// @Security     Bearer
// @Accept       json
// @Accept       mpfd
// @Produce      json
// @Param        id    path  string  true  "ID del producto"
// @Param        body  body  dto.CreateVariationRequest  true  "Datos de la variación"
// @Success      201   {object}  dto.VariationResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/products/{id}/variations [post]
func (h *ProductHandler) CreateVariation(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	var in dto.CreateVariationRequest
	img, ok, err := parseWithImage(c, &in)
	if !ok {
		return err
	}
	out, err := h.variations.Create(c.UserContext(), companyID, c.Params("id"), in, img)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// UpdateVariation godoc
// @Summary      Actualizar variación
// @Tags         products
// @Security     Bearer
// @Accept       json
// @Accept       mpfd
// @Produce      json
// @Param        id    path  string  true  "ID del producto"
// @Param        vid   path  string  true  "ID de la variación"
// @Param        body  body  dto.UpdateVariationRequest  true  "Campos a modificar"
// @Success      200   {object}  dto.VariationResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/products/{id}/variations/{vid} [put]
func (h *ProductHandler) UpdateVariation(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	var in dto.UpdateVariationRequest
	img, ok, err := parseWithImage(c, &in)
	if !ok {
		return err
	}
	out, err := h.variations.Update(c.UserContext(), companyID, c.Params("id"), c.Params("vid"), in, img)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// DeleteVariation godoc
// @Summary      Eliminar variación
// @Tags         products
// @Security     Bearer
// @Param        id   path  string  true  "ID del producto"
// @Param        vid  path  string  true  "ID de la variación"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id}/variations/{vid} [delete]
func (h *ProductHandler) DeleteVariation(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	if err := h.variations.Delete(c.UserContext(), companyID, c.Params("id"), c.Params("vid")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// parseWithImage lee el cuerpo como JSON o, en multipart, del campo "data" más el
// archivo opcional "image". El form decoder de fiber no sabe decodificar decimal.Decimal.
func parseWithImage(c *fiber.Ctx, out any) (*dto.ImageUpload, bool, error) {
	if !strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		ok, err := parseBody(c, out)
		return nil, ok, err
	}
	if data := c.FormValue("data"); data != "" {
		if err := json.Unmarshal([]byte(data), out); err != nil {
			return nil, false, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "campo data inválido"})
		}
	}
	if ok, err := validate(c, out); !ok {
		return nil, false, err
	}
	fh, err := c.FormFile("image")
	if err != nil {
		// sin archivo
		return nil, true, nil
	}
	if fh.Size > maxImageBytes {
		return nil, false, c.Status(fiber.StatusRequestEntityTooLarge).JSON(dto.ErrorResponse{Code: "IMAGE_TOO_LARGE", Message: "la imagen supera 5 MB"})
	}
	f, err := fh.Open()
	if err != nil {
		return nil, false, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_IMAGE", Message: "no se pudo leer la imagen"})
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, false, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_IMAGE", Message: "no se pudo leer la imagen"})
	}
	return &dto.ImageUpload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(fiber.HeaderContentType),
		Data:        data,
	}, true, nil
}
