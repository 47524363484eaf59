package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/kotobi/internal/entities"
)

type bookStore interface {
	BookReader
	BookWriter
}

type BooksController struct {
	store bookStore
}

func NewBooksController(store bookStore) *BooksController {
	return &BooksController{store: store}
}

// CreateBookRequest is the body of POST /api/books. An empty status is
// derived from pagesRead. With storeCover set, the cover must be an http(s)
// URL; it is downloaded into the managed cover area first.
type CreateBookRequest struct {
	Title      string          `json:"title"`
	Cover      string          `json:"cover"`
	TotalPages int             `json:"totalPages"`
	PagesRead  int             `json:"pagesRead"`
	Status     entities.Status `json:"status"`
	Rating     int             `json:"rating"`
	StoreCover bool            `json:"storeCover"`
}

// ProgressRequest is the body of PATCH /api/books/:id/progress. Without a
// status, the status matching the new progress is stored.
type ProgressRequest struct {
	PagesRead *int             `json:"pagesRead"`
	Status    *entities.Status `json:"status"`
}

// DetailsRequest is the body of PUT /api/books/:id. Without a status, the
// edit re-derives it from progress, and a totalPages below the pages already
// read restarts progress at 0.
type DetailsRequest struct {
	entities.Details
	StoreCover bool `json:"storeCover"`
}

func (bc *BooksController) GetAllBooks(c *gin.Context) {
	books, err := bc.store.GetBooks()
	if err != nil {
		respondStoreError(c, err, "list books")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"books": books,
		"count": len(books),
	})
}

func (bc *BooksController) GetBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := bc.store.GetBook(id)
	if err != nil {
		respondStoreError(c, err, "get book")
		return
	}
	c.JSON(http.StatusOK, book)
}

func (bc *BooksController) CreateBook(c *gin.Context) {
	var req CreateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return
	}

	if req.Status == "" {
		req.Status = entities.StatusForProgress(req.PagesRead, req.TotalPages)
	}
	if req.StoreCover && req.Cover != "" {
		stored, err := bc.store.FetchCover(c.Request.Context(), req.Cover)
		if err != nil {
			respondStoreError(c, err, "store cover")
			return
		}
		req.Cover = stored
	}

	id, err := bc.store.AddBook(entities.Draft{
		Title:      req.Title,
		Cover:      req.Cover,
		TotalPages: req.TotalPages,
		PagesRead:  req.PagesRead,
		Status:     req.Status,
		Rating:     req.Rating,
	})
	if err != nil {
		respondStoreError(c, err, "add book")
		return
	}

	book, err := bc.store.GetBook(id)
	if err != nil {
		respondStoreError(c, err, "get created book")
		return
	}
	respondCreated(c, book)
}

func (bc *BooksController) UpdateProgress(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req ProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return
	}
	if req.PagesRead == nil {
		respondBadRequest(c, "pagesRead is required")
		return
	}

	var err error
	if req.Status != nil {
		err = bc.store.UpdateProgress(id, *req.PagesRead, *req.Status)
	} else {
		err = bc.store.RecordProgress(id, *req.PagesRead)
	}
	if err != nil {
		respondStoreError(c, err, "update progress")
		return
	}

	bc.respondBook(c, id)
}

func (bc *BooksController) UpdateDetails(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req DetailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return
	}
	if req.StoreCover && req.Cover != "" {
		stored, err := bc.store.FetchCover(c.Request.Context(), req.Cover)
		if err != nil {
			respondStoreError(c, err, "store cover")
			return
		}
		req.Cover = stored
	}

	var err error
	if req.Status == "" {
		err = bc.store.EditBook(id, req.Details)
	} else {
		err = bc.store.UpdateDetails(id, req.Details)
	}
	if err != nil {
		respondStoreError(c, err, "update details")
		return
	}

	bc.respondBook(c, id)
}

func (bc *BooksController) DeleteBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := bc.store.DeleteBook(id); err != nil {
		respondStoreError(c, err, "delete book")
		return
	}
	respondSuccess(c, "book deleted")
}

func (bc *BooksController) respondBook(c *gin.Context, id uint) {
	book, err := bc.store.GetBook(id)
	if err != nil {
		respondStoreError(c, err, "get book")
		return
	}
	c.JSON(http.StatusOK, book)
}
