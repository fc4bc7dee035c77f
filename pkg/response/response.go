package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/xiebiao/library/pkg/errors"
	"github.com/xiebiao/library/pkg/logger"
	"github.com/xiebiao/library/pkg/pagination"
)

// Response is the envelope of every API reply.
// Code is a business code (0 on success), Data is omitted on failure and
// Fields carries validation detail.
type Response struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Data    interface{}       `json:"data,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// Success writes a 200 reply.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Created writes a 201 reply.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    0,
		Message: "created",
		Data:    data,
	})
}

// Error writes an AppError, mapping its code to an HTTP status.
//
//	if err := uc.Execute(ctx, p, req); err != nil {
//	    response.Error(c, err)
//	    return
//	}
func Error(c *gin.Context, err error) {
	appErr := apperrors.GetAppError(err)

	if appErr.Err != nil {
		logger.FromContext(c.Request.Context()).Error().
			Err(appErr.Err).
			Int("code", appErr.Code).
			Str("path", c.Request.URL.Path).
			Msg(appErr.Message)
	}

	c.JSON(apperrors.HTTPStatus(appErr.Code), Response{
		Code:    appErr.Code,
		Message: appErr.Message,
		Fields:  appErr.Fields,
	})
}

// ErrorWithCode writes a custom code and message.
func ErrorWithCode(c *gin.Context, code int, message string) {
	c.JSON(apperrors.HTTPStatus(code), Response{
		Code:    code,
		Message: message,
	})
}

// =========================================
// Paged replies
// =========================================

// PageData wraps a list with its resolved page.
type PageData struct {
	List        interface{} `json:"list"`
	Total       int64       `json:"total"`
	Page        int         `json:"page"`
	PageSize    int         `json:"page_size"`
	TotalPages  int         `json:"total_pages"`
	HasNext     bool        `json:"has_next"`
	HasPrevious bool        `json:"has_previous"`
}

// NewPageData builds PageData from a resolved page.
func NewPageData(list interface{}, p pagination.Page) *PageData {
	return &PageData{
		List:        list,
		Total:       p.Total,
		Page:        p.Number,
		PageSize:    p.Size,
		TotalPages:  p.TotalPages,
		HasNext:     p.HasNext(),
		HasPrevious: p.HasPrevious(),
	}
}

// SuccessWithPage writes a paged 200 reply.
func SuccessWithPage(c *gin.Context, list interface{}, p pagination.Page) {
	Success(c, NewPageData(list, p))
}
