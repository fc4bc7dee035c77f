package handler

import (
	"mime/multipart"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/xiebiao/library/internal/application/media"
	apperrors "github.com/xiebiao/library/pkg/errors"
	"github.com/xiebiao/library/pkg/response"
)

// pathID parses the :id path parameter. On failure it writes a 404, since a
// non-numeric id can never name a record.
func pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		response.Error(c, apperrors.ErrNotFound)
		return 0, false
	}
	return uint(id), true
}

// bindJSON decodes the request body into req and writes a 400 on failure.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "malformed request: "+err.Error())
		return false
	}
	return true
}

// pageParam reads ?page=. Missing or malformed values mean page 1; the use
// case clamps numbers outside the valid range.
func pageParam(c *gin.Context) int {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil {
		return 1
	}
	return page
}

// optionalID reads a numeric query parameter. Empty means no filter.
func optionalID(c *gin.Context, key string) (*uint, bool) {
	raw := c.Query(key)
	if raw == "" {
		return nil, true
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		response.Error(c, apperrors.FieldError(key, "must be a positive integer"))
		return nil, false
	}
	v := uint(id)
	return &v, true
}

// formUpload reads a multipart file field into a media.Upload. The caller
// closes the returned file.
func formUpload(c *gin.Context, field string) (media.Upload, multipart.File, bool) {
	header, err := c.FormFile(field)
	if err != nil {
		response.Error(c, apperrors.FieldError(field, "a file is required"))
		return media.Upload{}, nil, false
	}
	f, err := header.Open()
	if err != nil {
		response.Error(c, apperrors.Wrap(err, "open uploaded file"))
		return media.Upload{}, nil, false
	}
	return media.Upload{
		Field:       field,
		Reader:      f,
		Size:        header.Size,
		ContentType: header.Header.Get("Content-Type"),
	}, f, true
}
