package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/glossary/api/internal/csvcodec"
	"github.com/glossary/api/internal/glossary"
	"github.com/glossary/api/internal/model"
)

type ExportHandler struct {
	svc *glossary.Service
	now func() time.Time
}

func NewExportHandler(svc *glossary.Service) *ExportHandler {
	return &ExportHandler{svc: svc, now: time.Now}
}

// Download serves the whole glossary as csv (default), json or md.
func (h *ExportHandler) Download(c *gin.Context) {
	format := c.DefaultQuery("format", "csv")
	if format != "csv" && format != "json" && format != "md" && format != "markdown" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid format. Use csv, json, or md"})
		return
	}

	records, err := h.svc.Stored(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	stamp := h.now().Format("2006-01-02")
	switch format {
	case "csv":
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=glossary-%s.csv", stamp))
		c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(csvcodec.Encode(records)))
	case "json":
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=glossary-%s.json", stamp))
		c.JSON(http.StatusOK, records)
	default:
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=glossary-%s.md", stamp))
		c.Data(http.StatusOK, "text/markdown; charset=utf-8", renderMarkdown(records))
	}
}

func renderMarkdown(records []model.Record) []byte {
	var buf bytes.Buffer
	buf.WriteString("# Glossary\n\n")

	groups := glossary.GroupByLetter(records)
	for _, letter := range glossary.Letters(groups) {
		heading := letter
		if letter == model.DigitLetter {
			heading = "0-9"
		}
		buf.WriteString(fmt.Sprintf("## %s\n\n", heading))

		for _, r := range groups[letter] {
			if r.Acronym != "" {
				buf.WriteString(fmt.Sprintf("### %s (%s)\n\n", r.Term, r.Acronym))
			} else {
				buf.WriteString(fmt.Sprintf("### %s\n\n", r.Term))
			}
			buf.WriteString(r.Definition + "\n\n")
			if r.SeeAlso != "" {
				buf.WriteString(fmt.Sprintf("*See also:* %s\n\n", r.SeeAlso))
			}
		}
	}
	return buf.Bytes()
}
