package handler

import (
	"github.com/gin-gonic/gin"

	appcatalog "github.com/xiebiao/library/internal/application/catalog"
	"github.com/xiebiao/library/internal/domain/catalog"
	"github.com/xiebiao/library/internal/interface/http/dto"
	"github.com/xiebiao/library/internal/interface/http/middleware"
	"github.com/xiebiao/library/pkg/response"
)

// ManageHandler is staff administration of genres, authors and books.
type ManageHandler struct {
	manageUseCase *appcatalog.ManageUseCase
}

func NewManageHandler(manageUseCase *appcatalog.ManageUseCase) *ManageHandler {
	return &ManageHandler{manageUseCase: manageUseCase}
}

// CreateGenre
// @Summary      Create genre
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.GenreRequest true "genre"
// @Success      201 {object} response.Response{data=appcatalog.GenreView}
// @Failure      400 {object} response.Response "invalid genre"
// @Failure      403 {object} response.Response "staff only"
// @Router       /api/v1/genres [post]
func (h *ManageHandler) CreateGenre(c *gin.Context) {
	var req dto.GenreRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.manageUseCase.CreateGenre(c.Request.Context(), middleware.Principal(c), catalog.GenreInput{Name: req.Name})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// UpdateGenre
// @Summary      Update genre
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "genre id"
// @Param        request body dto.GenreRequest true "genre"
// @Success      200 {object} response.Response{data=appcatalog.GenreView}
// @Failure      403 {object} response.Response "staff only"
// @Failure      404 {object} response.Response "genre not found"
// @Router       /api/v1/genres/{id} [put]
func (h *ManageHandler) UpdateGenre(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req dto.GenreRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.manageUseCase.UpdateGenre(c.Request.Context(), middleware.Principal(c), id, catalog.GenreInput{Name: req.Name})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// DeleteGenre
// @Summary      Delete genre
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "genre id"
// @Success      200 {object} response.Response
// @Failure      403 {object} response.Response "staff only"
// @Failure      404 {object} response.Response "genre not found"
// @Router       /api/v1/genres/{id} [delete]
func (h *ManageHandler) DeleteGenre(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.manageUseCase.DeleteGenre(c.Request.Context(), middleware.Principal(c), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

func authorInput(req dto.AuthorRequest) catalog.AuthorInput {
	return catalog.AuthorInput{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Description: req.Description,
	}
}

// CreateAuthor
// @Summary      Create author
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.AuthorRequest true "author"
// @Success      201 {object} response.Response{data=appcatalog.AuthorView}
// @Failure      400 {object} response.Response "invalid author"
// @Failure      403 {object} response.Response "staff only"
// @Router       /api/v1/authors [post]
func (h *ManageHandler) CreateAuthor(c *gin.Context) {
	var req dto.AuthorRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.manageUseCase.CreateAuthor(c.Request.Context(), middleware.Principal(c), authorInput(req))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// UpdateAuthor
// @Summary      Update author
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "author id"
// @Param        request body dto.AuthorRequest true "author"
// @Success      200 {object} response.Response{data=appcatalog.AuthorView}
// @Failure      403 {object} response.Response "staff only"
// @Failure      404 {object} response.Response "author not found"
// @Router       /api/v1/authors/{id} [put]
func (h *ManageHandler) UpdateAuthor(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req dto.AuthorRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.manageUseCase.UpdateAuthor(c.Request.Context(), middleware.Principal(c), id, authorInput(req))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// DeleteAuthor removes an author; their books keep existing without one
// @Summary      Delete author
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "author id"
// @Success      200 {object} response.Response
// @Failure      403 {object} response.Response "staff only"
// @Failure      404 {object} response.Response "author not found"
// @Router       /api/v1/authors/{id} [delete]
func (h *ManageHandler) DeleteAuthor(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.manageUseCase.DeleteAuthor(c.Request.Context(), middleware.Principal(c), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

func bookInput(req dto.BookRequest) catalog.BookInput {
	return catalog.BookInput{
		Title:    req.Title,
		Summary:  req.Summary,
		ISBN:     req.ISBN,
		AuthorID: req.AuthorID,
		GenreIDs: req.GenreIDs,
	}
}

// CreateBook
// @Summary      Create book
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.BookRequest true "book"
// @Success      201 {object} response.Response{data=appcatalog.BookItem}
// @Failure      400 {object} response.Response "invalid book"
// @Failure      403 {object} response.Response "staff only"
// @Router       /api/v1/books [post]
func (h *ManageHandler) CreateBook(c *gin.Context) {
	var req dto.BookRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.manageUseCase.CreateBook(c.Request.Context(), middleware.Principal(c), bookInput(req))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// UpdateBook
// @Summary      Update book
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "book id"
// @Param        request body dto.BookRequest true "book"
// @Success      200 {object} response.Response{data=appcatalog.BookItem}
// @Failure      403 {object} response.Response "staff only"
// @Failure      404 {object} response.Response "book not found"
// @Router       /api/v1/books/{id} [put]
func (h *ManageHandler) UpdateBook(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req dto.BookRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.manageUseCase.UpdateBook(c.Request.Context(), middleware.Principal(c), id, bookInput(req))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// DeleteBook removes a book; its copies and reviews stay, unlinked
// @Summary      Delete book
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "book id"
// @Success      200 {object} response.Response
// @Failure      403 {object} response.Response "staff only"
// @Failure      404 {object} response.Response "book not found"
// @Router       /api/v1/books/{id} [delete]
func (h *ManageHandler) DeleteBook(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.manageUseCase.DeleteBook(c.Request.Context(), middleware.Principal(c), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// UploadCover replaces the book's cover image
// @Summary      Upload book cover
// @Tags         admin
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "book id"
// @Param        cover formData file true "jpeg, png, gif or webp image"
// @Success      200 {object} response.Response{data=appcatalog.BookItem}
// @Failure      400 {object} response.Response "missing or invalid image"
// @Failure      403 {object} response.Response "staff only"
// @Failure      503 {object} response.Response "file storage unavailable"
// @Router       /api/v1/books/{id}/cover [post]
func (h *ManageHandler) UploadCover(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	up, f, ok := formUpload(c, "cover")
	if !ok {
		return
	}
	defer f.Close()

	result, err := h.manageUseCase.UploadCover(c.Request.Context(), middleware.Principal(c), id, up)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}
