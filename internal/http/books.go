package http

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/avolkau/librarium/internal/audit"
	"github.com/avolkau/librarium/internal/auth"
	"github.com/avolkau/librarium/internal/catalog"
	"github.com/avolkau/librarium/internal/covers"
	"github.com/avolkau/librarium/internal/entities"
	"github.com/avolkau/librarium/internal/tasks"
)

// maxCoverUploadBytes caps cover uploads at 10 MiB.
const maxCoverUploadBytes = 10 << 20

type CreateBookRequest struct {
	Title       string `json:"title" binding:"required"`
	Author      string `json:"author"`
	Genre       string `json:"genre"`
	CoverURL    string `json:"cover_url"`
	StandNumber string `json:"stand_number"`
	Description string `json:"description"`
}

// UpdateBookRequest uses pointers so absent fields are left untouched.
type UpdateBookRequest struct {
	Title       *string `json:"title"`
	Author      *string `json:"author"`
	Genre       *string `json:"genre"`
	CoverURL    *string `json:"cover_url"`
	StandNumber *string `json:"stand_number"`
	Description *string `json:"description"`
}

type BooksController struct {
	catalog      *catalog.Service
	auditService *audit.Service
	coverCache   *covers.Cache
	processor    *covers.Processor
	taskClient   *tasks.Client
}

func NewBooksController(catalogSvc *catalog.Service) *BooksController {
	return &BooksController{catalog: catalogSvc}
}

// SetAuditService enables archival of deleted books (optional).
func (controller *BooksController) SetAuditService(svc *audit.Service) {
	controller.auditService = svc
}

// SetCoverHandling enables cover upload and serving (optional).
func (controller *BooksController) SetCoverHandling(processor *covers.Processor, cache *covers.Cache) {
	controller.processor = processor
	controller.coverCache = cache
}

// SetTaskClient enables background enrichment enqueueing (optional).
func (controller *BooksController) SetTaskClient(client *tasks.Client) {
	controller.taskClient = client
}

// ListBooks returns the catalog, optionally filtered by a search
// query matched against title, author and genre.
func (controller *BooksController) ListBooks(c *gin.Context) {
	books, err := controller.catalog.ListBooks(c.Query("q"))
	if err != nil {
		respondInternalError(c, err, "list books")
		return
	}
	c.JSON(http.StatusOK, gin.H{"books": books, "count": len(books)})
}

func (controller *BooksController) GetBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := controller.catalog.GetBook(id)
	if err != nil {
		respondDomainError(c, err, "get book")
		return
	}
	c.JSON(http.StatusOK, book)
}

func (controller *BooksController) CreateBook(c *gin.Context) {
	var req CreateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "title is required")
		return
	}

	book := &entities.Book{
		Title:       req.Title,
		Author:      req.Author,
		Genre:       req.Genre,
		CoverURL:    req.CoverURL,
		StandNumber: req.StandNumber,
		Description: req.Description,
	}

	if err := controller.catalog.CreateBook(book); err != nil {
		respondDomainError(c, err, "create book")
		return
	}

	respondCreated(c, book)
}

func (controller *BooksController) UpdateBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	fields := map[string]any{}
	if req.Title != nil {
		fields["title"] = *req.Title
	}
	if req.Author != nil {
		fields["author"] = *req.Author
	}
	if req.Genre != nil {
		fields["genre"] = *req.Genre
	}
	if req.CoverURL != nil {
		fields["cover_url"] = *req.CoverURL
	}
	if req.StandNumber != nil {
		fields["stand_number"] = *req.StandNumber
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}

	if len(fields) == 0 {
		respondBadRequest(c, "no fields to update")
		return
	}

	if err := controller.catalog.UpdateBook(id, fields); err != nil {
		respondDomainError(c, err, "update book")
		return
	}

	book, err := controller.catalog.GetBook(id)
	if err != nil {
		respondDomainError(c, err, "update book")
		return
	}
	c.JSON(http.StatusOK, book)
}

// DeleteBook removes a book from the catalog. Allowed even while the
// book is issued; a snapshot of the record is archived first.
func (controller *BooksController) DeleteBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if controller.auditService != nil {
		if book, err := controller.catalog.GetBook(id); err == nil {
			controller.auditService.ArchiveDeleted(book)
		}
	}

	if err := controller.catalog.DeleteBook(id, auth.GetUserID(c)); err != nil {
		respondDomainError(c, err, "delete book")
		return
	}

	if controller.coverCache != nil {
		_ = controller.coverCache.InvalidateCover(id)
	}

	respondSuccess(c, "book deleted")
}

// IssueBook hands the book to the signed-in member. Only available
// books can be issued.
func (controller *BooksController) IssueBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := controller.catalog.IssueBook(id, auth.GetUserID(c))
	if err != nil {
		respondDomainError(c, err, "issue book")
		return
	}
	c.JSON(http.StatusOK, book)
}

// ReturnBook puts an issued book back on the shelf regardless of who
// holds it. Only staff can check a book in; students are told to bring
// it to the front desk instead.
func (controller *BooksController) ReturnBook(c *gin.Context) {
	user := auth.CurrentUser(c)
	if user == nil || user.Role != entities.UserRoleAdmin {
		respondError(c, http.StatusForbidden,
			"please bring the book to the front desk; a staff member will check it in",
			"staff_return_required")
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := controller.catalog.ReturnBook(id, auth.GetUserID(c))
	if err != nil {
		respondDomainError(c, err, "return book")
		return
	}
	c.JSON(http.StatusOK, book)
}

// UploadCover accepts a JPEG or PNG file, scales it down and stores it
// inline on the book record as a data URL.
func (controller *BooksController) UploadCover(c *gin.Context) {
	if controller.processor == nil {
		respondError(c, http.StatusServiceUnavailable, "cover handling is not configured", "covers_disabled")
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	file, _, err := c.Request.FormFile("cover")
	if err != nil {
		respondBadRequest(c, "cover file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxCoverUploadBytes+1))
	if err != nil {
		respondInternalError(c, err, "read cover upload")
		return
	}
	if len(data) > maxCoverUploadBytes {
		respondError(c, http.StatusRequestEntityTooLarge, "cover file is too large", "cover_too_large")
		return
	}

	dataURL, err := controller.processor.ProcessUpload(data)
	if err != nil {
		respondDomainError(c, err, "process cover upload")
		return
	}

	if err := controller.catalog.UpdateBook(id, map[string]any{"cover_url": dataURL}); err != nil {
		respondDomainError(c, err, "store cover")
		return
	}

	if controller.coverCache != nil {
		_ = controller.coverCache.InvalidateCover(id)
	}

	book, err := controller.catalog.GetBook(id)
	if err != nil {
		respondDomainError(c, err, "store cover")
		return
	}
	c.JSON(http.StatusOK, book)
}

// GetCover serves the book's cover. Remote URLs are fetched once and
// cached on disk; inline data URLs redirect the client to the record.
func (controller *BooksController) GetCover(c *gin.Context) {
	if controller.coverCache == nil {
		respondError(c, http.StatusServiceUnavailable, "cover handling is not configured", "covers_disabled")
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := controller.catalog.GetBook(id)
	if err != nil {
		respondDomainError(c, err, "get cover")
		return
	}

	if book.CoverURL == "" {
		respondNotFound(c, "cover")
		return
	}

	// Inline covers are already part of the book payload.
	if len(book.CoverURL) > 5 && book.CoverURL[:5] == "data:" {
		c.JSON(http.StatusOK, gin.H{"cover_url": book.CoverURL})
		return
	}

	path, err := controller.coverCache.GetCover(id, book.CoverURL)
	if err != nil {
		log.Printf("Failed to fetch cover for book %d: %v", id, err)
		respondError(c, http.StatusBadGateway, "failed to fetch cover", "cover_fetch_failed")
		return
	}

	c.File(path)
}

// EnqueueEnrich schedules a background enrichment run for the book.
func (controller *BooksController) EnqueueEnrich(c *gin.Context) {
	if controller.taskClient == nil {
		respondError(c, http.StatusServiceUnavailable, "background tasks are not configured", "tasks_disabled")
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	// Verify the book exists before queueing work for it.
	if _, err := controller.catalog.GetBook(id); err != nil {
		respondDomainError(c, err, "enqueue enrich")
		return
	}

	ids, err := controller.taskClient.Add(tasks.EnrichBookTask{BookID: id}).Save()
	if err != nil {
		respondInternalError(c, err, "enqueue enrich task")
		return
	}

	respondAccepted(c, "enrichment scheduled", gin.H{"task_id": ids[0]})
}
