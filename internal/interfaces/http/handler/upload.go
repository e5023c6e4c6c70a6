package handler

import (
	"errors"
	"io"
	"net/http"

	catalogapp "github.com/ecomstore/backend/internal/application/catalog"
	"github.com/ecomstore/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// imageFormField is the multipart field carrying the uploaded image
const imageFormField = "image"

// UploadHandler handles product image uploads and downloads
type UploadHandler struct {
	BaseHandler
	imageService *catalogapp.ImageService
}

// NewUploadHandler creates a new UploadHandler
func NewUploadHandler(imageService *catalogapp.ImageService) *UploadHandler {
	return &UploadHandler{
		imageService: imageService,
	}
}

// UploadImage godoc
// @Summary      Upload a product image
// @Description  Store a jpeg, png, webp or gif image and return its key and URL
// @Tags         uploads
// @Accept       multipart/form-data
// @Produce      json
// @Param        image formData file true "Image file"
// @Success      201 {object} dto.Response{data=catalogapp.UploadImageResponse}
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      413 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /uploads/images [post]
func (h *UploadHandler) UploadImage(c *gin.Context) {
	fh, err := c.FormFile(imageFormField)
	if err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodePayloadTooLarge, "Request body too large")
		case errors.Is(err, http.ErrMissingFile):
			h.BadRequest(c, "No image uploaded")
		default:
			h.BadRequest(c, "Invalid multipart form")
		}
		return
	}
	if fh.Size > h.imageService.MaxSize() {
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodePayloadTooLarge, catalogapp.ErrImageTooLarge.Message)
		return
	}

	f, err := fh.Open()
	if err != nil {
		h.HandleError(c, err)
		return
	}
	defer f.Close()

	// one extra byte lets the service reject files whose header lied about the size
	data, err := io.ReadAll(io.LimitReader(f, h.imageService.MaxSize()+1))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	result, err := h.imageService.Upload(c.Request.Context(), data)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// GetImage godoc
// @Summary      Download a product image
// @Description  Redirects to a presigned URL or streams the file from local storage
// @Tags         uploads
// @Produce      image/jpeg,image/png,image/webp,image/gif
// @Param        key path string true "Image key, e.g. products/<uuid>.jpg"
// @Success      200 {file} binary
// @Success      302
// @Failure      404 {object} ErrorResponse
// @Router       /uploads/{key} [get]
func (h *UploadHandler) GetImage(c *gin.Context) {
	loc, err := h.imageService.Locate(c.Request.Context(), c.Param("key"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if loc.RedirectURL != "" {
		c.Redirect(http.StatusFound, loc.RedirectURL)
		return
	}
	c.File(loc.FilePath)
}

// DeleteImage godoc
// @Summary      Delete a product image
// @Tags         uploads
// @Produce      json
// @Param        key path string true "Image key"
// @Success      200 {object} dto.Response{data=dto.MessageResponse}
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /uploads/{key} [delete]
func (h *UploadHandler) DeleteImage(c *gin.Context) {
	if err := h.imageService.Delete(c.Request.Context(), c.Param("key")); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Message(c, "Image deleted successfully")
}
