package handlers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"foodify/internal/apperr"
)

const multipartMemory = 32 << 20

var allowedVideoTypes = map[string]string{
	".mp4":  "video/mp4",
	".mov":  "video/quicktime",
	".webm": "video/webm",
	".mkv":  "video/x-matroska",
	".m4v":  "video/x-m4v",
}

// videoFields are the accepted multipart field names for the media file.
var videoFields = []string{"video", "file"}

type foodUploadInput struct {
	Name        string
	Description string
	File        *multipart.FileHeader
	ContentType string
}

func parseFoodUpload(c *gin.Context, maxSize int64) (foodUploadInput, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize+multipartMemory)

	if err := c.Request.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return foodUploadInput{}, apperr.Validation("Video file is too large", fmt.Sprintf("max size is %dMB", maxSize>>20))
		}
		return foodUploadInput{}, apperr.Validation("Invalid multipart form", err.Error())
	}

	input := foodUploadInput{
		Name:        strings.TrimSpace(c.PostForm("name")),
		Description: strings.TrimSpace(c.PostForm("description")),
	}

	for _, field := range videoFields {
		file, err := c.FormFile(field)
		if err == nil {
			input.File = file
			break
		}
		if !errors.Is(err, http.ErrMissingFile) {
			return foodUploadInput{}, apperr.Validation("Invalid video upload", err.Error())
		}
	}
	if input.File == nil {
		return foodUploadInput{}, apperr.Validation("Video file is required", "video is required")
	}
	if input.Name == "" {
		return foodUploadInput{}, apperr.Validation("Food name is required", "name is required")
	}

	extension := strings.ToLower(filepath.Ext(input.File.Filename))
	defaultType, ok := allowedVideoTypes[extension]
	if !ok {
		return foodUploadInput{}, apperr.Validation("Unsupported video type", fmt.Sprintf("extension %q is not allowed", extension))
	}
	if input.File.Size > maxSize {
		return foodUploadInput{}, apperr.Validation("Video file is too large", fmt.Sprintf("max size is %dMB", maxSize>>20))
	}

	input.ContentType = defaultType
	if declared := input.File.Header.Get("Content-Type"); strings.HasPrefix(declared, "video/") {
		input.ContentType = declared
	}
	return input, nil
}
