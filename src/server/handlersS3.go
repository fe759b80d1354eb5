package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type (
	S3Handler struct {
		archive Archiver
	}

	DeleteUploadBody struct {
		Key string `json:"key" binding:"required"`
	}
)

const extQueryParam = "ext"

var imageAvailableFormats = []string{"jpg", "jpeg", "png", "tif", "tiff", "webp", "heic", "avif"}

func NewS3Handler(archive Archiver) *S3Handler {
	return &S3Handler{archive: archive}
}

// GetUploadList lists archived uploads, by default only image formats.
// ?ext=png,jpg narrows the list.
func (a *S3Handler) GetUploadList(c *gin.Context) {
	filters := imageAvailableFormats
	if ext := c.Query(extQueryParam); ext != "" {
		filters = strings.Split(ext, ",")
	}
	uploads, err := a.archive.ListArchived(c.Request.Context(), filters)
	if err != nil {
		c.IndentedJSON(http.StatusInternalServerError,
			gin.H{"message": "error", "error": fmt.Errorf("can not fetch uploads from s3: %w", err).Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "payload": uploads})
}

func (a *S3Handler) DeleteUpload(c *gin.Context) {
	var requestBody DeleteUploadBody
	if err := c.ShouldBindJSON(&requestBody); err != nil {
		c.IndentedJSON(http.StatusBadRequest, gin.H{"message": "error", "error": fmt.Errorf("cannot delete: %w", err).Error()})
		return
	}
	if err := a.archive.DeleteArchived(c.Request.Context(), requestBody.Key); err != nil {
		c.IndentedJSON(http.StatusInternalServerError,
			gin.H{"message": "error", "error": fmt.Errorf("can not delete upload from s3: %w", err).Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}
