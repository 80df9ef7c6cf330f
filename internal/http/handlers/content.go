package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	types "github.com/yungbote/pictures2pages-backend/internal/domain"
	"github.com/yungbote/pictures2pages-backend/internal/http/response"
	"github.com/yungbote/pictures2pages-backend/internal/platform/dbctx"
	"github.com/yungbote/pictures2pages-backend/internal/services"
)

type ContentHandler struct {
	contentService services.ContentService
}

func NewContentHandler(contentService services.ContentService) *ContentHandler {
	return &ContentHandler{contentService: contentService}
}

type createContentRequest struct {
	ImageURLs []string `json:"image_urls"`
	Theme     string   `json:"theme"`
	Kind      string   `json:"kind"`
	IsPublic  bool     `json:"is_public"`
}

// POST /api/contents
// body: { "image_urls": [u1,u2,u3], "theme": "...", "kind": "story"|"poem", "is_public": false }
func (ch *ContentHandler) Create(c *gin.Context) {
	ch.create(c, "")
}

// POST /api/create-story
func (ch *ContentHandler) CreateStory(c *gin.Context) {
	ch.create(c, string(types.ContentKindStory))
}

// POST /api/create-poem
func (ch *ContentHandler) CreatePoem(c *gin.Context) {
	ch.create(c, string(types.ContentKindPoem))
}

func (ch *ContentHandler) create(c *gin.Context, kind string) {
	var req createContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondErrorStatus(c, http.StatusBadRequest, "invalid_request", "request body must be JSON")
		return
	}
	if kind != "" {
		req.Kind = kind
	}
	rec, err := ch.contentService.Create(c.Request.Context(), services.CreateContentInput{
		ImageURLs: req.ImageURLs,
		Theme:     req.Theme,
		Kind:      req.Kind,
		IsPublic:  req.IsPublic,
	})
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"content": rec})
}

// GET /api/contents
func (ch *ContentHandler) ListMine(c *gin.Context) {
	out, err := ch.contentService.ListMine(dbctx.Context{Ctx: c.Request.Context()})
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"contents": out})
}

// GET /api/contents/:id
func (ch *ContentHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	rec, err := ch.contentService.Get(dbctx.Context{Ctx: c.Request.Context()}, id)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"content": rec})
}

// PATCH /api/contents/:id/visibility
// body: { "is_public": true }
func (ch *ContentHandler) SetVisibility(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		IsPublic *bool `json:"is_public"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.IsPublic == nil {
		response.RespondErrorStatus(c, http.StatusBadRequest, "invalid_request", "is_public is required")
		return
	}
	rec, err := ch.contentService.SetVisibility(c.Request.Context(), id, *req.IsPublic)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"content": rec})
}

// DELETE /api/contents/:id
func (ch *ContentHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := ch.contentService.Delete(c.Request.Context(), id); err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondNoContent(c)
}

// GET /api/users/:id/contents
func (ch *ContentHandler) ListPublicByUser(c *gin.Context) {
	userID, ok := idParam(c, "id")
	if !ok {
		return
	}
	out, err := ch.contentService.ListPublicByUser(dbctx.Context{Ctx: c.Request.Context()}, userID)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"contents": out})
}

func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		response.RespondErrorStatus(c, http.StatusBadRequest, "invalid_id", name+" must be a positive integer")
		return 0, false
	}
	return uint(id), true
}
