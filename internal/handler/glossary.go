package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/glossary/api/internal/glossary"
)

type GlossaryHandler struct {
	svc *glossary.Service
}

func NewGlossaryHandler(svc *glossary.Service) *GlossaryHandler {
	return &GlossaryHandler{svc: svc}
}

// List returns all records as a flat array.
func (h *GlossaryHandler) List(c *gin.Context) {
	records, err := h.svc.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

// Groups returns the letter index with the records of each letter.
func (h *GlossaryHandler) Groups(c *gin.Context) {
	groups, err := h.svc.Groups(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"letters": glossary.Letters(groups),
		"groups":  groups,
	})
}

// ByLetter returns one letter group; "0-9" selects the digit group.
func (h *GlossaryHandler) ByLetter(c *gin.Context) {
	records, err := h.svc.ByLetter(c.Request.Context(), c.Param("letter"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

// Search answers search-as-you-type queries; mode=all lifts the minimum
// query length.
func (h *GlossaryHandler) Search(c *gin.Context) {
	minLen := glossary.InteractiveMinQuery
	if c.Query("mode") == "all" {
		minLen = 0
	}
	records, err := h.svc.Search(c.Request.Context(), c.Query("q"), minLen)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

func (h *GlossaryHandler) Term(c *gin.Context) {
	rec, err := h.svc.Lookup(c.Request.Context(), c.Param("term"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}
