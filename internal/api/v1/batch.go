package v1

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"globlex/internal/calculator"
	"globlex/internal/exporter"
	"globlex/internal/importer"
	"globlex/internal/model"
	"globlex/internal/report"
	"globlex/internal/store"
)

// batchUpload 上传文件与解析后的参数
type batchUpload struct {
	header     *multipart.FileHeader
	filename   string
	scenarioID string
	config     model.CostConfig
	read       importer.Options
}

// readRows 直接从上传内容读取产品行
func (u *batchUpload) readRows() (*importer.Result, error) {
	f, err := u.header.Open()
	if err != nil {
		return nil, fmt.Errorf("打开上传文件失败: %w", err)
	}
	defer f.Close()
	return importer.ReadReader(f, u.read)
}

func (u *batchUpload) importOptions(path string) importer.ImportOptions {
	return importer.ImportOptions{
		FilePath:         path,
		OriginalFilename: u.filename,
		ScenarioID:       u.scenarioID,
		Config:           u.config,
		Read:             u.read,
	}
}

// BatchResponse 批量分析响应
type BatchResponse struct {
	Run        *model.BatchRun       `json:"run"`
	Sheet      string                `json:"sheet"`
	TotalRows  int                   `json:"totalRows"`
	Dropped    []importer.DroppedRow `json:"dropped"`
	Results    []model.ProductResult `json:"results"`
	Summary    calculator.Summary    `json:"summary"`
	Table      *report.BatchTable    `json:"table"`
	Currencies []model.Currency      `json:"currencies"`
}

// parseBatchUpload 解析 multipart 表单：file、config、scenarioId、unitsOverride、sheet
func (h *Handler) parseBatchUpload(c *gin.Context) (*batchUpload, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes+(1<<20))

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return nil, &apiError{status: http.StatusBadRequest, message: "未找到上传文件"}
	}
	if fileHeader.Size > h.maxUploadBytes {
		return nil, &apiError{status: http.StatusRequestEntityTooLarge, message: "上传文件过大"}
	}
	if ext := strings.ToLower(filepath.Ext(fileHeader.Filename)); ext != ".xlsx" && ext != ".xlsm" {
		return nil, &apiError{status: http.StatusBadRequest, message: "仅支持 .xlsx 文件"}
	}

	upload := &batchUpload{
		header:     fileHeader,
		filename:   filepath.Base(fileHeader.Filename),
		scenarioID: strings.TrimSpace(c.PostForm("scenarioId")),
		read:       importer.Options{Sheet: strings.TrimSpace(c.PostForm("sheet"))},
	}

	base, err := h.effectiveConfig()
	if err != nil {
		return nil, fmt.Errorf("获取配置失败: %w", err)
	}
	if upload.scenarioID != "" {
		sc, err := h.store.GetScenario(upload.scenarioID)
		if errors.Is(err, store.ErrNotFound) {
			return nil, &apiError{status: http.StatusNotFound, message: "方案不存在"}
		}
		if err != nil {
			return nil, fmt.Errorf("获取方案失败: %w", err)
		}
		base = sc.Config
	}
	cfg := cloneConfig(normalizeConfig(base))
	if raw := strings.TrimSpace(c.PostForm("config")); raw != "" {
		if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
			return nil, &apiError{status: http.StatusBadRequest, message: "config 不是有效的 JSON"}
		}
	}
	upload.config = normalizeConfig(cfg)
	if issues := calculator.ValidateConfig(upload.config); len(issues) > 0 {
		return nil, &apiError{status: http.StatusBadRequest, message: "参数校验失败", issues: issues}
	}

	overrides, err := parseUnitsOverride(c.PostForm("unitsOverride"))
	if err != nil {
		return nil, &apiError{status: http.StatusBadRequest, message: err.Error()}
	}
	upload.read.UnitsOverride = overrides
	return upload, nil
}

// parseUnitsOverride {"行号": 销量}
func parseUnitsOverride(raw string) (map[int]int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	var m map[string]int
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil, fmt.Errorf("unitsOverride 不是有效的 JSON")
	}
	out := make(map[int]int, len(m))
	for k, v := range m {
		line, err := strconv.Atoi(strings.TrimSpace(k))
		if err != nil || line <= 0 {
			return nil, fmt.Errorf("unitsOverride 行号无效: %s", k)
		}
		out[line] = v
	}
	return out, nil
}

func buildBatchResponse(cfg model.CostConfig, outcome *importer.Outcome) (*BatchResponse, error) {
	currencies := cfg.Currencies()
	table, err := report.BuildBatchTable(currencies, outcome.Results)
	if err != nil {
		return nil, err
	}
	return &BatchResponse{
		Run:        outcome.Run,
		Sheet:      outcome.Import.Sheet,
		TotalRows:  outcome.Import.TotalRows,
		Dropped:    outcome.Import.Dropped,
		Results:    outcome.Results,
		Summary:    outcome.Summary,
		Table:      table,
		Currencies: currencies,
	}, nil
}

// Batch 批量分析（同步返回结果）
// POST /api/batch
func (h *Handler) Batch(c *gin.Context) {
	upload, err := h.parseBatchUpload(c)
	if err != nil {
		respondError(c, err)
		return
	}

	imported, err := upload.readRows()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "批量分析失败: " + err.Error()})
		return
	}
	outcome, err := h.coordinator.Compute(upload.config, upload.filename, upload.scenarioID, imported, nil)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "批量分析失败: " + err.Error()})
		return
	}

	resp, err := buildBatchResponse(upload.config, outcome)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}

type exportProgressEvent struct {
	Type      string      `json:"type"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

// BatchExportStream 批量分析并导出（SSE 进度 + 完成后提供下载地址）
// POST /api/batch/export/stream?format=xlsx|pdf
func (h *Handler) BatchExportStream(c *gin.Context) {
	format := strings.ToLower(c.DefaultQuery("format", "xlsx"))
	if format != "xlsx" && format != "pdf" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "format 仅支持 xlsx 或 pdf"})
		return
	}

	upload, err := h.parseBatchUpload(c)
	if err != nil {
		respondError(c, err)
		return
	}

	// 协调器按文件路径读取，上传内容先落盘到 uploads 目录
	uploadPath, err := h.dataPath("uploads", fmt.Sprintf("%d_%s", time.Now().UnixNano(), upload.filename))
	if err == nil {
		err = c.SaveUploadedFile(upload.header, uploadPath)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "保存文件失败: " + err.Error()})
		return
	}
	defer os.Remove(uploadPath)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "不支持流式响应"})
		return
	}

	send := func(event exportProgressEvent) {
		b, err := json.Marshal(event)
		if err != nil {
			return
		}
		fmt.Fprintf(c.Writer, "data: %s\n\n", b)
		flusher.Flush()
	}

	var outcome *importer.Outcome
	for ev := range h.coordinator.Import(upload.importOptions(uploadPath)) {
		switch ev.Type {
		case "done":
			outcome, _ = ev.Data.(*importer.Outcome)
		case "row":
			// 逐行事件不转发，避免大表刷屏
			continue
		case "error":
			send(exportProgressEvent{Type: "error", Message: "批量分析失败: " + ev.Message, Data: map[string]any{}, Timestamp: ev.Timestamp})
			return
		default:
			send(exportProgressEvent{Type: ev.Type, Message: ev.Message, Data: ev.Data, Timestamp: ev.Timestamp})
		}
	}
	if outcome == nil {
		send(exportProgressEvent{Type: "error", Message: "批量分析未返回结果", Data: map[string]any{}, Timestamp: time.Now()})
		return
	}

	table, err := report.BuildBatchTable(upload.config.Currencies(), outcome.Results)
	if err != nil {
		send(exportProgressEvent{Type: "error", Message: "生成批量表失败: " + err.Error(), Data: map[string]any{}, Timestamp: time.Now()})
		return
	}
	data := exporter.BatchData{
		Table:        table,
		Summary:      outcome.Summary,
		BaseCurrency: upload.config.Rates.Base,
		DroppedRows:  len(outcome.Import.Dropped),
	}

	lastPercent := -1
	progressFn := func(p exporter.ProgressEvent) {
		if p.Percent == lastPercent {
			return
		}
		lastPercent = p.Percent
		send(exportProgressEvent{
			Type:      "progress",
			Message:   p.Stage,
			Data:      map[string]any{"percent": p.Percent},
			Timestamp: time.Now(),
		})
	}

	exportPath, err := h.dataPath("exports", fmt.Sprintf("%s_%d.%s", outcome.Run.ID, time.Now().UnixNano(), format))
	if err != nil {
		send(exportProgressEvent{Type: "error", Message: "创建导出目录失败: " + err.Error(), Data: map[string]any{}, Timestamp: time.Now()})
		return
	}
	contentType := contentTypeXLSX
	if format == "pdf" {
		contentType = contentTypePDF
		progressFn(exporter.ProgressEvent{Percent: 10, Stage: "生成 PDF"})
		b, err := h.exporter.BatchPDF(data)
		if err == nil {
			err = os.WriteFile(exportPath, b, 0644)
		}
		if err != nil {
			send(exportProgressEvent{Type: "error", Message: "导出失败: " + err.Error(), Data: map[string]any{}, Timestamp: time.Now()})
			_ = os.Remove(exportPath)
			return
		}
	} else {
		file, err := h.exporter.ExportBatch(data, progressFn)
		if err != nil {
			send(exportProgressEvent{Type: "error", Message: "导出失败: " + err.Error(), Data: map[string]any{}, Timestamp: time.Now()})
			return
		}
		err = file.SaveAs(exportPath)
		file.Close()
		if err != nil {
			send(exportProgressEvent{Type: "error", Message: "写入导出文件失败: " + err.Error(), Data: map[string]any{}, Timestamp: time.Now()})
			_ = os.Remove(exportPath)
			return
		}
	}

	name := strings.TrimSuffix(upload.filename, filepath.Ext(upload.filename)) + "-results"
	token := h.downloads.put(exportDownload{
		filePath:    exportPath,
		fileName:    name,
		contentType: contentType,
	}, 10*time.Minute)
	downloadURL := fmt.Sprintf("%s/export/download/%s", apiPrefix(c), token)

	log.Info().Str("run", outcome.Run.ID).Str("format", format).Msg("batch export ready")

	send(exportProgressEvent{
		Type:    "done",
		Message: "导出完成",
		Data: map[string]any{
			"percent":     100,
			"downloadUrl": downloadURL,
			"runId":       outcome.Run.ID,
			"summary":     outcome.Summary,
			"dropped":     outcome.Import.Dropped,
		},
		Timestamp: time.Now(),
	})
}

func apiPrefix(c *gin.Context) string {
	if strings.HasPrefix(c.Request.URL.Path, "/api/v1/") {
		return "/api/v1"
	}
	return "/api"
}

// DownloadExport 下载导出文件（一次性）
// GET /api/export/download/:token
func (h *Handler) DownloadExport(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少 token"})
		return
	}

	item, ok := h.downloads.get(token)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "下载链接已失效"})
		return
	}

	if _, err := os.Stat(item.filePath); err != nil {
		h.downloads.delete(token)
		c.JSON(http.StatusNotFound, gin.H{"error": "导出文件不存在"})
		return
	}

	ext := strings.TrimPrefix(filepath.Ext(item.filePath), ".")
	c.Header("Content-Disposition", buildContentDisposition(item.fileName, ext))
	c.Header("Content-Type", item.contentType)
	c.File(item.filePath)

	h.downloads.delete(token)
	_ = os.Remove(item.filePath)
}
