package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/finbooks/ledger-core/internal/apperrors"
	"github.com/finbooks/ledger-core/internal/core/domain"
	portssvc "github.com/finbooks/ledger-core/internal/core/ports/services"
	"github.com/finbooks/ledger-core/internal/dto"
	"github.com/finbooks/ledger-core/internal/middleware"
)

// journalHandler handles HTTP requests related to journal entries.
type journalHandler struct {
	journalService portssvc.JournalSvcFacade
}

// newJournalHandler creates a new journalHandler.
func newJournalHandler(js portssvc.JournalSvcFacade) *journalHandler {
	return &journalHandler{
		journalService: js,
	}
}

// registerJournalRoutes registers routes related to journal entries.
func registerJournalRoutes(rg *gin.RouterGroup, journalService portssvc.JournalSvcFacade) {
	h := newJournalHandler(journalService)

	entries := rg.Group("/journal-entries")
	{
		entries.POST("", h.commitEntry)
		entries.POST("/validate", h.validateEntry)
		entries.GET("", h.listEntries)
		entries.GET("/:id", h.getEntry)
		entries.PUT("/:id", h.amendEntry)
		entries.DELETE("/:id", h.removeEntry)
		entries.GET("/:id/revisions", h.listRevisions)
	}
}

func (h *journalHandler) commitEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateJournalEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for commitEntry", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": bindingErrorMessage(err)})
		return
	}

	entry, err := h.journalService.CommitEntry(c.Request.Context(), req)
	if err != nil {
		respondJournalError(c, err, "Failed to commit journal entry")
		return
	}

	c.JSON(http.StatusCreated, dto.ToJournalEntryResponse(entry))
}

func (h *journalHandler) validateEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.ValidateJournalEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for validateEntry", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": bindingErrorMessage(err)})
		return
	}

	verrs, err := h.journalService.Validate(c.Request.Context(), req.ToCreateRequest())
	if err != nil {
		respondJournalError(c, err, "Failed to validate journal entry")
		return
	}

	// A dry run reports violations in the body, not via the status code.
	c.JSON(http.StatusOK, dto.ValidateEntryResponse{
		Valid:  len(verrs) == 0,
		Errors: verrs,
	})
}

func (h *journalHandler) getEntry(c *gin.Context) {
	entryID := c.Param("id")

	entry, err := h.journalService.GetEntryByID(c.Request.Context(), entryID)
	if err != nil {
		respondJournalError(c, err, "Failed to retrieve journal entry")
		return
	}

	c.JSON(http.StatusOK, dto.ToJournalEntryResponse(entry))
}

func (h *journalHandler) listEntries(c *gin.Context) {
	entries, err := h.journalService.ListEntries(c.Request.Context())
	if err != nil {
		respondJournalError(c, err, "Failed to list journal entries")
		return
	}

	c.JSON(http.StatusOK, dto.ToListJournalEntriesResponse(entries))
}

func (h *journalHandler) amendEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entryID := c.Param("id")

	var req dto.AmendJournalEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for amendEntry", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": bindingErrorMessage(err)})
		return
	}

	entry, err := h.journalService.AmendEntry(c.Request.Context(), entryID, req)
	if err != nil {
		respondJournalError(c, err, "Failed to amend journal entry")
		return
	}

	c.JSON(http.StatusOK, dto.ToJournalEntryResponse(entry))
}

func (h *journalHandler) removeEntry(c *gin.Context) {
	entryID := c.Param("id")

	if err := h.journalService.RemoveEntry(c.Request.Context(), entryID); err != nil {
		respondJournalError(c, err, "Failed to remove journal entry")
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *journalHandler) listRevisions(c *gin.Context) {
	entryID := c.Param("id")

	revisions, err := h.journalService.ListRevisions(c.Request.Context(), entryID)
	if err != nil {
		respondJournalError(c, err, "Failed to list revisions")
		return
	}

	c.JSON(http.StatusOK, gin.H{"revisions": dto.ToListJournalEntriesResponse(revisions).Entries})
}

// respondJournalError maps ledger errors to HTTP status codes. Validation
// outcomes carry the full violation set in the body.
func respondJournalError(c *gin.Context, err error, fallback string) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var verrs domain.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		c.JSON(http.StatusBadRequest, gin.H{"error": "journal entry validation failed", "violations": verrs})
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrDuplicate), errors.Is(err, apperrors.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		logger.Error(fallback, slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}
