package handler

import (
	"github.com/gin-gonic/gin"

	appcatalog "github.com/xiebiao/library/internal/application/catalog"
	"github.com/xiebiao/library/internal/interface/http/dto"
	"github.com/xiebiao/library/internal/interface/http/middleware"
	"github.com/xiebiao/library/pkg/response"
)

// CatalogHandler serves the public catalog: summary, listings, detail pages,
// search and reviews.
type CatalogHandler struct {
	summaryUseCase *appcatalog.SummaryUseCase
	browseUseCase  *appcatalog.BrowseUseCase
	searchUseCase  *appcatalog.SearchUseCase
	reviewUseCase  *appcatalog.SubmitReviewUseCase
}

func NewCatalogHandler(
	summaryUseCase *appcatalog.SummaryUseCase,
	browseUseCase *appcatalog.BrowseUseCase,
	searchUseCase *appcatalog.SearchUseCase,
	reviewUseCase *appcatalog.SubmitReviewUseCase,
) *CatalogHandler {
	return &CatalogHandler{
		summaryUseCase: summaryUseCase,
		browseUseCase:  browseUseCase,
		searchUseCase:  searchUseCase,
		reviewUseCase:  reviewUseCase,
	}
}

// Summary returns catalog totals and the caller's visit count
// @Summary      Catalog summary
// @Description  Counts of books, copies, available copies and authors, plus how often the caller has visited
// @Tags         catalog
// @Produce      json
// @Success      200 {object} response.Response{data=appcatalog.SummaryResponse}
// @Router       /api/v1/summary [get]
func (h *CatalogHandler) Summary(c *gin.Context) {
	p := middleware.Principal(c)
	result, err := h.summaryUseCase.Execute(c.Request.Context(), p, appcatalog.VisitorKey(p, c.ClientIP()))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ListBooks returns one page of books in insertion order
// @Summary      List books
// @Tags         catalog
// @Produce      json
// @Param        page query int false "page number, clamped to the valid range"
// @Success      200 {object} response.Response{data=response.PageData{list=[]appcatalog.BookItem}}
// @Router       /api/v1/books [get]
func (h *CatalogHandler) ListBooks(c *gin.Context) {
	result, err := h.browseUseCase.ListBooks(c.Request.Context(), middleware.Principal(c), pageParam(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPage(c, result.Books, result.Page)
}

// GetBook returns a book with its genres, copies and reviews
// @Summary      Book detail
// @Tags         catalog
// @Produce      json
// @Param        id path int true "book id"
// @Success      200 {object} response.Response{data=appcatalog.BookDetail}
// @Failure      404 {object} response.Response "book not found"
// @Router       /api/v1/books/{id} [get]
func (h *CatalogHandler) GetBook(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	result, err := h.browseUseCase.BookDetail(c.Request.Context(), middleware.Principal(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ListAuthors returns one page of authors
// @Summary      List authors
// @Tags         catalog
// @Produce      json
// @Param        page query int false "page number, clamped to the valid range"
// @Success      200 {object} response.Response{data=response.PageData{list=[]appcatalog.AuthorView}}
// @Router       /api/v1/authors [get]
func (h *CatalogHandler) ListAuthors(c *gin.Context) {
	result, err := h.browseUseCase.ListAuthors(c.Request.Context(), middleware.Principal(c), pageParam(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPage(c, result.Authors, result.Page)
}

// GetAuthor returns an author with their books
// @Summary      Author detail
// @Tags         catalog
// @Produce      json
// @Param        id path int true "author id"
// @Success      200 {object} response.Response{data=appcatalog.AuthorDetail}
// @Failure      404 {object} response.Response "author not found"
// @Router       /api/v1/authors/{id} [get]
func (h *CatalogHandler) GetAuthor(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	result, err := h.browseUseCase.AuthorDetail(c.Request.Context(), middleware.Principal(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ListGenres
// @Summary      List genres
// @Tags         catalog
// @Produce      json
// @Success      200 {object} response.Response{data=[]appcatalog.GenreView}
// @Router       /api/v1/genres [get]
func (h *CatalogHandler) ListGenres(c *gin.Context) {
	result, err := h.browseUseCase.ListGenres(c.Request.Context(), middleware.Principal(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Search matches the query against book titles, summaries and author names
// @Summary      Search the catalog
// @Description  Case-insensitive substring match on book title, book summary, author first name and author last name. Non-ASCII letters fold too. A blank query returns nothing.
// @Tags         catalog
// @Produce      json
// @Param        query query string false "search text"
// @Success      200 {object} response.Response{data=appcatalog.SearchResponse}
// @Failure      429 {object} response.Response "rate limited"
// @Router       /api/v1/search [get]
func (h *CatalogHandler) Search(c *gin.Context) {
	result, err := h.searchUseCase.Execute(c.Request.Context(), middleware.Principal(c), c.Query("query"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// SubmitReview posts a review as the caller
// @Summary      Review a book
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "book id"
// @Param        request body dto.ReviewRequest true "review"
// @Success      201 {object} response.Response{data=appcatalog.ReviewView}
// @Failure      400 {object} response.Response "invalid review"
// @Failure      401 {object} response.Response "not signed in"
// @Failure      404 {object} response.Response "book not found"
// @Router       /api/v1/books/{id}/reviews [post]
func (h *CatalogHandler) SubmitReview(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req dto.ReviewRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.reviewUseCase.Execute(c.Request.Context(), middleware.Principal(c), appcatalog.SubmitReviewRequest{
		BookID:  id,
		Content: req.Content,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}
