package v1

import (
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypePDF  = "application/pdf"
)

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// buildContentDisposition ASCII 文件名 + UTF-8 原名
func buildContentDisposition(name, ext string) string {
	display := strings.TrimSpace(name)
	if display == "" {
		display = "unit-economics"
	}
	ascii := strings.Trim(unsafeFileChars.ReplaceAllString(display, "-"), "-")
	if ascii == "" {
		ascii = "unit-economics"
	}
	return fmt.Sprintf("attachment; filename=\"%s.%s\"; filename*=UTF-8''%s.%s",
		ascii, ext, url.PathEscape(display), ext)
}

// ExportXLSX 导出单产品 Excel 报表
// POST /api/export/xlsx
func (h *Handler) ExportXLSX(c *gin.Context) {
	resp, ok := h.calculateForExport(c)
	if !ok {
		return
	}

	file, err := h.exporter.ExportReport(resp.Report)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "导出失败: " + err.Error()})
		return
	}
	defer file.Close()

	c.Header("Content-Disposition", buildContentDisposition(resp.Report.ProductName, "xlsx"))
	c.Header("Content-Type", contentTypeXLSX)
	if err := file.Write(c.Writer); err != nil {
		log.Error().Err(err).Msg("write xlsx failed")
	}
}

// ExportPDF 导出单产品 PDF 报表
// POST /api/export/pdf
func (h *Handler) ExportPDF(c *gin.Context) {
	resp, ok := h.calculateForExport(c)
	if !ok {
		return
	}

	data, err := h.exporter.ReportPDF(resp.Report)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "导出失败: " + err.Error()})
		return
	}

	c.Header("Content-Disposition", buildContentDisposition(resp.Report.ProductName, "pdf"))
	c.Data(http.StatusOK, contentTypePDF, data)
}

func (h *Handler) calculateForExport(c *gin.Context) (*CalculateResponse, bool) {
	base, err := h.effectiveConfig()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "获取配置失败"})
		return nil, false
	}
	req, err := bindCalculateRequest(c, base)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	resp, err := compute(req)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return resp, true
}
