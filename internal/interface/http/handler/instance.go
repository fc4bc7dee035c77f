package handler

import (
	"github.com/gin-gonic/gin"

	apploan "github.com/xiebiao/library/internal/application/loan"
	"github.com/xiebiao/library/internal/domain/loan"
	"github.com/xiebiao/library/internal/interface/http/dto"
	"github.com/xiebiao/library/internal/interface/http/middleware"
	"github.com/xiebiao/library/pkg/response"
)

// InstanceHandler serves the staff loan desk and the reader's own loans.
type InstanceHandler struct {
	instancesUseCase   *apploan.InstancesUseCase
	myInstancesUseCase *apploan.MyInstancesUseCase
}

func NewInstanceHandler(instancesUseCase *apploan.InstancesUseCase, myInstancesUseCase *apploan.MyInstancesUseCase) *InstanceHandler {
	return &InstanceHandler{
		instancesUseCase:   instancesUseCase,
		myInstancesUseCase: myInstancesUseCase,
	}
}

// MyInstances lists the copies the caller has borrowed
// @Summary      My borrowed copies
// @Tags         loans
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=[]apploan.InstanceView}
// @Failure      401 {object} response.Response "not signed in"
// @Router       /api/v1/my-instances [get]
func (h *InstanceHandler) MyInstances(c *gin.Context) {
	result, err := h.myInstancesUseCase.Execute(c.Request.Context(), middleware.Principal(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// List returns one page of copies, optionally filtered
// @Summary      List copies
// @Tags         loans
// @Produce      json
// @Security     BearerAuth
// @Param        page query int false "page number"
// @Param        status query string false "available, taken, reserved or administered"
// @Param        book_id query int false "book id"
// @Success      200 {object} response.Response{data=response.PageData{list=[]apploan.InstanceView}}
// @Failure      403 {object} response.Response "staff only"
// @Router       /api/v1/instances [get]
func (h *InstanceHandler) List(c *gin.Context) {
	bookID, ok := optionalID(c, "book_id")
	if !ok {
		return
	}
	result, err := h.instancesUseCase.List(c.Request.Context(), middleware.Principal(c), pageParam(c), loan.Filter{
		Status: c.Query("status"),
		BookID: bookID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPage(c, result.Instances, result.Page)
}

// Get
// @Summary      Copy detail
// @Tags         loans
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "instance id"
// @Success      200 {object} response.Response{data=apploan.InstanceView}
// @Failure      403 {object} response.Response "staff only"
// @Failure      404 {object} response.Response "instance not found"
// @Router       /api/v1/instances/{id} [get]
func (h *InstanceHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	result, err := h.instancesUseCase.Get(c.Request.Context(), middleware.Principal(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Create registers a new copy with a fresh UUID
// @Summary      Create copy
// @Tags         loans
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.CreateInstanceRequest true "copy"
// @Success      201 {object} response.Response{data=apploan.InstanceView}
// @Failure      400 {object} response.Response "invalid status or book"
// @Failure      403 {object} response.Response "staff only"
// @Router       /api/v1/instances [post]
func (h *InstanceHandler) Create(c *gin.Context) {
	var req dto.CreateInstanceRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.instancesUseCase.Create(c.Request.Context(), middleware.Principal(c), loan.CreateInput{
		BookID: req.BookID,
		Status: req.Status,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Update overwrites book, status, reader and due date. Any combination is accepted.
// @Summary      Update copy
// @Tags         loans
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "instance id"
// @Param        request body dto.UpdateInstanceRequest true "copy"
// @Success      200 {object} response.Response{data=apploan.InstanceView}
// @Failure      400 {object} response.Response "invalid fields"
// @Failure      403 {object} response.Response "staff only"
// @Failure      404 {object} response.Response "instance not found"
// @Failure      409 {object} response.Response "stale version"
// @Router       /api/v1/instances/{id} [put]
func (h *InstanceHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req dto.UpdateInstanceRequest
	if !bindJSON(c, &req) {
		return
	}
	dueBack, err := dto.ParseOptionalDueBack(req.DueBack)
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.instancesUseCase.Update(c.Request.Context(), middleware.Principal(c), id, loan.UpdateInput{
		BookID:   req.BookID,
		Status:   req.Status,
		ReaderID: req.ReaderID,
		DueBack:  dueBack,
		Version:  req.Version,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// AssignReader lends the copy to a reader
// @Summary      Lend copy
// @Tags         loans
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "instance id"
// @Param        request body dto.AssignReaderRequest true "loan"
// @Success      200 {object} response.Response{data=apploan.InstanceView}
// @Failure      400 {object} response.Response "invalid fields"
// @Failure      403 {object} response.Response "staff only"
// @Failure      404 {object} response.Response "instance or reader not found"
// @Failure      409 {object} response.Response "stale version"
// @Router       /api/v1/instances/{id}/assign [post]
func (h *InstanceHandler) AssignReader(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req dto.AssignReaderRequest
	if !bindJSON(c, &req) {
		return
	}
	dueBack, err := dto.ParseDueBack(req.DueBack)
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.instancesUseCase.AssignReader(c.Request.Context(), middleware.Principal(c), id, loan.AssignInput{
		ReaderID: req.ReaderID,
		DueBack:  dueBack,
		Status:   req.Status,
		Version:  req.Version,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Return makes the copy available again
// @Summary      Return copy
// @Tags         loans
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "instance id"
// @Param        request body dto.ReturnInstanceRequest false "expected version"
// @Success      200 {object} response.Response{data=apploan.InstanceView}
// @Failure      403 {object} response.Response "staff only"
// @Failure      404 {object} response.Response "instance not found"
// @Failure      409 {object} response.Response "stale version"
// @Router       /api/v1/instances/{id}/return [post]
func (h *InstanceHandler) Return(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req dto.ReturnInstanceRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}

	result, err := h.instancesUseCase.Return(c.Request.Context(), middleware.Principal(c), id, req.Version)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}
