package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/pictures2pages-backend/internal/http/response"
	"github.com/yungbote/pictures2pages-backend/internal/platform/dbctx"
	"github.com/yungbote/pictures2pages-backend/internal/services"
)

type ImageHandler struct {
	imageService services.ImageService
}

func NewImageHandler(imageService services.ImageService) *ImageHandler {
	return &ImageHandler{imageService: imageService}
}

// POST /api/images (multipart/form-data)
// fields: "file", "description", "is_public"
func (ih *ImageHandler) Upload(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		response.RespondErrorStatus(c, http.StatusBadRequest, "missing_file", "a file field is required")
		return
	}
	isPublic := false
	if raw := c.PostForm("is_public"); raw != "" {
		isPublic, err = strconv.ParseBool(raw)
		if err != nil {
			response.RespondErrorStatus(c, http.StatusBadRequest, "invalid_request", "is_public must be a boolean")
			return
		}
	}
	f, err := fh.Open()
	if err != nil {
		response.RespondErrorStatus(c, http.StatusBadRequest, "open_file_failed", "uploaded file could not be read")
		return
	}
	defer f.Close()

	img, err := ih.imageService.Upload(c.Request.Context(), services.UploadImageInput{
		Filename:    fh.Filename,
		Size:        fh.Size,
		Body:        f,
		Description: c.PostForm("description"),
		IsPublic:    isPublic,
	})
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"image": img})
}

// GET /api/images
func (ih *ImageHandler) ListMine(c *gin.Context) {
	images, err := ih.imageService.ListMine(dbctx.Context{Ctx: c.Request.Context()})
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"images": images})
}
