package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/glossary/api/internal/client"
	"github.com/glossary/api/internal/database"
	"github.com/glossary/api/internal/glossary"
	"github.com/glossary/api/internal/middleware"
	"github.com/glossary/api/internal/model"
)

// AuditReader is the read side of the audit trail.
type AuditReader interface {
	List(ctx context.Context, filter database.AuditFilter, page, limit int) (*database.AuditPage, error)
	CountByAction(ctx context.Context) (map[string]int64, error)
}

// RepoChecker probes the remote repository.
type RepoChecker interface {
	CheckAccess(ctx context.Context) (*client.RepoInfo, error)
}

type AdminHandler struct {
	svc            *glossary.Service
	audit          AuditReader
	github         RepoChecker
	maxUploadBytes int64
	logger         *zap.Logger
}

type AdminOptions struct {
	Audit          AuditReader
	GitHub         RepoChecker
	MaxUploadBytes int64
	Logger         *zap.Logger
}

func NewAdminHandler(svc *glossary.Service, opts AdminOptions) *AdminHandler {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 5 << 20
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &AdminHandler{
		svc:            svc,
		audit:          opts.Audit,
		github:         opts.GitHub,
		maxUploadBytes: opts.MaxUploadBytes,
		logger:         opts.Logger,
	}
}

type TermRequest struct {
	OriginalTerm string `json:"originalTerm"`
	Letter       string `json:"letter"`
	Term         string `json:"term"`
	Definition   string `json:"definition"`
	Acronym      string `json:"acronym"`
	SeeAlso      string `json:"seeAlso"`
}

func (r TermRequest) record() model.Record {
	return model.Record{
		Letter:     r.Letter,
		Term:       r.Term,
		Definition: r.Definition,
		Acronym:    r.Acronym,
		SeeAlso:    r.SeeAlso,
	}
}

// AddTerm creates a record; an existing term is a 409.
func (h *AdminHandler) AddTerm(c *gin.Context) {
	var req TermRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	rec, err := h.svc.Add(c.Request.Context(), middleware.SessionFrom(c), req.record())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

// EditTerm replaces the record named by originalTerm, allowing renames.
func (h *AdminHandler) EditTerm(c *gin.Context) {
	var req TermRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	rec, err := h.svc.Edit(c.Request.Context(), middleware.SessionFrom(c), req.OriginalTerm, req.record())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// DeleteTerm removes a term given in the JSON body or the term query
// parameter.
func (h *AdminHandler) DeleteTerm(c *gin.Context) {
	term := c.Query("term")
	if term == "" {
		var req TermRequest
		if err := c.ShouldBindJSON(&req); err == nil {
			term = req.Term
		}
	}
	if term == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "term is required"})
		return
	}

	rec, err := h.svc.Delete(c.Request.Context(), middleware.SessionFrom(c), term)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": rec})
}

// UploadCSV bulk-upserts the rows of the multipart "file" field.
func (h *AdminHandler) UploadCSV(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)

	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read uploaded file"})
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read uploaded file"})
		return
	}

	result, err := h.svc.Upload(c.Request.Context(), middleware.SessionFrom(c), string(data))
	if err != nil {
		if result != nil {
			c.JSON(statusFor(err), gin.H{"error": err.Error(), "errors": result.Errors, "skipped": result.Skipped})
			return
		}
		respondError(c, err)
		return
	}

	h.logger.Info("csv uploaded", zap.String("filename", fh.Filename), zap.Int64("size", fh.Size))
	c.JSON(http.StatusOK, result)
}

type StatsResponse struct {
	glossary.Stats
	Backend string           `json:"backend"`
	Audit   map[string]int64 `json:"audit,omitempty"`
}

// GetStats returns dashboard statistics.
func (h *AdminHandler) GetStats(c *gin.Context) {
	stats, err := h.svc.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	resp := StatsResponse{Stats: stats, Backend: h.svc.Backend()}
	if h.audit != nil {
		counts, err := h.audit.CountByAction(c.Request.Context())
		if err != nil {
			h.logger.Warn("audit counts unavailable", zap.Error(err))
		} else {
			resp.Audit = counts
		}
	}
	c.JSON(http.StatusOK, resp)
}

// ListAudit returns audit entries with pagination and filters.
func (h *AdminHandler) ListAudit(c *gin.Context) {
	if h.audit == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "audit log is not configured"})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(database.DefaultPageSize)))
	filter := database.AuditFilter{
		Action: c.Query("action"),
		Term:   c.Query("term"),
	}

	result, err := h.audit.List(c.Request.Context(), filter, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GitHubStatus reports whether the configured repository, branch and file
// are reachable.
func (h *AdminHandler) GitHubStatus(c *gin.Context) {
	if h.github == nil {
		c.JSON(http.StatusOK, gin.H{"configured": false, "backend": h.svc.Backend()})
		return
	}

	info, err := h.github.CheckAccess(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusOK, gin.H{
			"configured": true,
			"backend":    h.svc.Backend(),
			"ok":         false,
			"error":      err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"configured": true,
		"backend":    h.svc.Backend(),
		"ok":         true,
		"repo":       info,
	})
}
