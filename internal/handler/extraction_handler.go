package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"finextract/internal/domain"
	"finextract/internal/service"
)

// ExtractionHandler handles statement extraction endpoints.
type ExtractionHandler struct {
	extractionService service.ExtractionService
}

// NewExtractionHandler creates a new ExtractionHandler.
func NewExtractionHandler(extractionService service.ExtractionService) *ExtractionHandler {
	return &ExtractionHandler{extractionService: extractionService}
}

// runResponse is the public view of a run: its status, chunk progress and,
// once completed, the extracted result.
type runResponse struct {
	*domain.ExtractionRun
	Progress domain.Progress `json:"progress"`
}

func newRunResponse(run *domain.ExtractionRun) runResponse {
	return runResponse{ExtractionRun: run, Progress: run.Progress()}
}

// Submit handles POST /api/v1/extractions
// Accepts multipart field "file" (PDF) and optional field "backend" (local|cloud).
func (h *ExtractionHandler) Submit(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "file field is required")
		return
	}
	defer func() { _ = file.Close() }()

	run, err := h.extractionService.Submit(c.Request.Context(), &service.SubmitInput{
		FileName: header.Filename,
		Content:  file,
		Backend:  c.PostForm("backend"),
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondAccepted(c, newRunResponse(run))
}

// GetByID handles GET /api/v1/extractions/:id
func (h *ExtractionHandler) GetByID(c *gin.Context) {
	runID, ok := parseRunID(c)
	if !ok {
		return
	}

	run, err := h.extractionService.GetByID(c.Request.Context(), runID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, newRunResponse(run))
}

// List handles GET /api/v1/extractions
func (h *ExtractionHandler) List(c *gin.Context) {
	offset, limit := parsePagination(c)

	runs, total, err := h.extractionService.List(c.Request.Context(), offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	out := make([]runResponse, len(runs))
	for i := range runs {
		out[i] = newRunResponse(&runs[i])
	}
	RespondPaginated(c, out, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// SearchTransactions handles GET /api/v1/extractions/:id/transactions?q=
func (h *ExtractionHandler) SearchTransactions(c *gin.Context) {
	runID, ok := parseRunID(c)
	if !ok {
		return
	}

	txs, err := h.extractionService.SearchTransactions(c.Request.Context(), runID, c.Query("q"))
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, txs)
}

// Export handles GET /api/v1/extractions/:id/export?format=xlsx|csv
func (h *ExtractionHandler) Export(c *gin.Context) {
	runID, ok := parseRunID(c)
	if !ok {
		return
	}

	file, err := h.extractionService.Export(c.Request.Context(), runID, c.DefaultQuery("format", service.FormatXLSX))
	if err != nil {
		HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, file.FileName))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}

// Source handles GET /api/v1/extractions/:id/source
// Returns a presigned URL for the uploaded statement.
func (h *ExtractionHandler) Source(c *gin.Context) {
	runID, ok := parseRunID(c)
	if !ok {
		return
	}

	url, err := h.extractionService.SourceURL(c.Request.Context(), runID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"download_url": url})
}

// Delete handles DELETE /api/v1/extractions/:id
func (h *ExtractionHandler) Delete(c *gin.Context) {
	runID, ok := parseRunID(c)
	if !ok {
		return
	}

	if err := h.extractionService.Delete(c.Request.Context(), runID); err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"message": "extraction deleted"})
}

func parseRunID(c *gin.Context) (uuid.UUID, bool) {
	runID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid extraction ID")
		return uuid.Nil, false
	}
	return runID, true
}
