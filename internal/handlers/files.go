package handlers

import (
	"errors"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/emploai/emploai-server/internal/apierrors"
	"github.com/emploai/emploai-server/internal/storage"
	"github.com/gin-gonic/gin"
)

// FileHandler serves signed download links issued by the storage layer.
type FileHandler struct {
	store *storage.Store
}

// NewFileHandler creates a new FileHandler.
func NewFileHandler(store *storage.Store) *FileHandler {
	return &FileHandler{store: store}
}

// Download streams a stored object after verifying the link signature and
// expiry. No session is required; the signature is the authorization.
func (h *FileHandler) Download(c *gin.Context) {
	objectPath := strings.TrimPrefix(c.Param("path"), "/")
	exp, err := strconv.ParseInt(c.Query("exp"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid link")
		return
	}
	sig := c.Query("sig")

	if err := h.store.Verify(objectPath, exp, sig); err != nil {
		switch {
		case errors.Is(err, storage.ErrLinkExpired):
			apierrors.Forbidden(c, "Link expired")
		default:
			apierrors.Forbidden(c, "Invalid signature")
		}
		return
	}

	f, err := h.store.Open(objectPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			apierrors.NotFound(c, "File not found")
			return
		}
		apierrors.InternalError(c, "Failed to open file")
		return
	}
	defer f.Close()

	c.Header("Content-Disposition", "attachment")
	c.Status(200)
	io.Copy(c.Writer, f)
}
