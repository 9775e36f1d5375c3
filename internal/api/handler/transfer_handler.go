package handler

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jvaldes/apptrack/internal/api/dto"
	"github.com/jvaldes/apptrack/internal/tracker/csvio"
	"github.com/jvaldes/apptrack/internal/tracker/storage"
)

// maxImportBytes caps the accepted CSV upload size.
const maxImportBytes = 8 << 20

// ExportCSV handles GET /api/v1/export/csv
// Streams every application, newest first, as a CSV attachment.
func (h *TransferHandler) ExportCSV(c *gin.Context) {
	apps, err := h.store.List(c.Request.Context(), storage.Filter{})
	if err != nil {
		h.logger.Error("Failed to load applications for export", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to export applications",
		})
		return
	}

	var buf bytes.Buffer
	if err := csvio.Export(&buf, apps); err != nil {
		h.logger.Error("Failed to serialize CSV", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to export applications",
		})
		return
	}

	filename := fmt.Sprintf("applications_%s.csv", time.Now().Format("20060102_150405"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())

	h.logger.Info("CSV export served",
		slog.Int("records", len(apps)),
	)
}

// ImportCSV handles POST /api/v1/import/csv
// Accepts raw CSV text in the request body. Malformed rows are skipped; the
// response reports how many rows were imported.
func (h *TransferHandler) ImportCSV(c *gin.Context) {
	body := http.MaxBytesReader(c.Writer, c.Request.Body, maxImportBytes)

	rows, err := csvio.Parse(body)
	if err != nil {
		h.logger.Error("Failed to parse CSV upload", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid CSV: " + err.Error(),
		})
		return
	}

	count, err := h.store.BulkImport(c.Request.Context(), rows)
	if err != nil {
		h.logger.Error("Bulk import failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success":  false,
			"imported": count,
			"error":    "Import failed",
		})
		return
	}

	c.JSON(http.StatusOK, dto.ImportResponse{
		Success:  true,
		Imported: count,
	})
}
