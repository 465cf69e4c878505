package handlers

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/lessonplan-backend/internal/platform/apierr"
)

// DefaultMaxUpload caps a single uploaded file.
const DefaultMaxUpload int64 = 20 << 20

type upload struct {
	Name     string
	MimeType string
	Data     []byte
}

func isMultipart(c *gin.Context) bool {
	mt, _, _ := mime.ParseMediaType(c.GetHeader("Content-Type"))
	return mt == "multipart/form-data"
}

// readUpload reads the "file" form field, rejecting anything over max bytes.
func readUpload(c *gin.Context, max int64) (*upload, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return nil, apierr.Wrap(apierr.ErrInvalidArgument, "missing file: %v", err)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, apierr.Wrap(apierr.ErrInvalidArgument, "open file: %v", err)
	}
	defer f.Close()

	raw, err := io.ReadAll(io.LimitReader(f, max+1))
	if err != nil {
		return nil, apierr.Wrap(apierr.ErrInvalidArgument, "read file: %v", err)
	}
	if int64(len(raw)) > max {
		return nil, apierr.New(http.StatusRequestEntityTooLarge, "file_too_large", fmt.Errorf("file exceeds %d bytes", max))
	}
	if len(raw) == 0 {
		return nil, apierr.Wrap(apierr.ErrInvalidArgument, "empty file")
	}

	mt := strings.TrimSpace(fh.Header.Get("Content-Type"))
	if mt == "" || mt == "application/octet-stream" {
		mt = http.DetectContentType(raw)
	}
	if parsed, _, err := mime.ParseMediaType(mt); err == nil {
		mt = parsed
	}
	return &upload{Name: fh.Filename, MimeType: mt, Data: raw}, nil
}
