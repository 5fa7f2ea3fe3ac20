package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/teacher-admin/internal/service"
	"github.com/noah-isme/teacher-admin/pkg/response"
)

type exportOpener interface {
	Open(token string) (*service.Download, error)
}

// ExportHandler streams stored exports.
type ExportHandler struct {
	exports exportOpener
}

// NewExportHandler constructs an export handler.
func NewExportHandler(exports exportOpener) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// Download godoc
// @Summary Download export
// @Description Stream a stored export under its fixed file name. Links are signed and expire.
// @Tags Exports
// @Produce octet-stream
// @Param token path string true "Signed download token"
// @Success 200 {file} binary
// @Failure 404 {object} response.Envelope
// @Failure 410 {object} response.Envelope
// @Router /exports/{token} [get]
func (h *ExportHandler) Download(c *gin.Context) {
	file, err := h.exports.Open(c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.FileName, file.ContentType, file.Data)
}
