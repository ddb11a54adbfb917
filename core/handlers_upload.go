package core

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var allowedImageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
}

// Upload stores an image under the static directory and replies with the URL
// it will be served from.
func (h *handlers) Upload(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	file, err := gctx.FormFile("file")
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("form field 'file' is required")
		gctx.AbortWithStatusJSON(http.StatusBadRequest, NewError("form field 'file' is required", err))

		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedImageExtensions[ext] {
		log.Ctx(ctx).Error().Str("extension", ext).Msg("file type not allowed")
		gctx.AbortWithStatusJSON(http.StatusBadRequest, NewError("file type not allowed"))

		return
	}

	name := uuid.NewString() + ext

	err = gctx.SaveUploadedFile(file, filepath.Join(h.uploadDir, name))
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("saving upload failed")
		gctx.AbortWithStatusJSON(http.StatusInternalServerError, NewError("saving upload failed", err))

		return
	}

	gctx.JSON(http.StatusOK, gin.H{"imageUrl": "/static/" + name})
}
