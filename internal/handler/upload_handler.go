package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/songbird/internal/service"
)

// UploadImage 处理富文本编辑器的图片上传请求
func (a *API) UploadImage(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		respondError(c, http.StatusBadRequest, "No file provided")
		return
	}

	stored, err := a.uploads.Save(file)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUploadMissing):
			respondError(c, http.StatusBadRequest, "No file provided")
		case errors.Is(err, service.ErrUploadInvalidType), errors.Is(err, service.ErrUploadNotImage):
			respondError(c, http.StatusBadRequest, "Invalid file type")
		default:
			a.logError(c, "save upload", err)
			respondError(c, http.StatusInternalServerError, "Could not save file")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"url":    stored.URL,
		"width":  stored.Width,
		"height": stored.Height,
	})
}
