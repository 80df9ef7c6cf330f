package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type VersionInfo struct {
	Service string `json:"service"`
	Version string `json:"version"`
	Commit  string `json:"commit,omitempty"`
}

type HealthHandler struct {
	version VersionInfo
}

func NewHealthHandler(version VersionInfo) *HealthHandler {
	return &HealthHandler{version: version}
}

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

// GET /version
func (h *HealthHandler) Version(c *gin.Context) {
	c.JSON(http.StatusOK, h.version)
}
