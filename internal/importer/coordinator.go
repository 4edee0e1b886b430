package importer

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"globlex/internal/calculator"
	"globlex/internal/model"
)

// RunRecorder 批量运行记录持久化
type RunRecorder interface {
	RecordBatchRun(run *model.BatchRun) error
}

// Coordinator 批量导入协调器：读取表格 → 逐行计算 → 汇总
type Coordinator struct {
	recorder RunRecorder
}

// NewCoordinator 创建协调器，recorder 可为 nil
func NewCoordinator(recorder RunRecorder) *Coordinator {
	return &Coordinator{recorder: recorder}
}

// ImportOptions 导入选项
type ImportOptions struct {
	FilePath         string
	OriginalFilename string
	ScenarioID       string
	Config           model.CostConfig
	Read             Options
}

// Outcome 批量分析结果
type Outcome struct {
	Run     *model.BatchRun       `json:"run"`
	Import  *Result               `json:"import"`
	Results []model.ProductResult `json:"results"`
	Summary calculator.Summary    `json:"summary"`
}

// ProgressEvent 进度事件
type ProgressEvent struct {
	Type      string      `json:"type"` // start/read_done/row/done/error
	Message   string      `json:"message"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

// Import 异步执行，返回进度通道；done 事件的 Data 为 *Outcome
func (c *Coordinator) Import(opts ImportOptions) <-chan ProgressEvent {
	progressChan := make(chan ProgressEvent, 100)

	go func() {
		defer close(progressChan)
		outcome, err := c.run(opts, progressChan)
		if err != nil {
			progressChan <- ProgressEvent{
				Type:      "error",
				Message:   err.Error(),
				Timestamp: time.Now(),
			}
			return
		}
		progressChan <- ProgressEvent{
			Type:      "done",
			Message:   "批量分析完成",
			Data:      outcome,
			Timestamp: time.Now(),
		}
	}()

	return progressChan
}

// Run 同步执行
func (c *Coordinator) Run(opts ImportOptions) (*Outcome, error) {
	return c.run(opts, nil)
}

func (c *Coordinator) run(opts ImportOptions, progressChan chan<- ProgressEvent) (*Outcome, error) {
	filename := opts.OriginalFilename
	if filename == "" {
		filename = filepath.Base(opts.FilePath)
	}

	send(progressChan, ProgressEvent{
		Type:      "start",
		Message:   "开始读取产品表",
		Data:      map[string]string{"filename": filename},
		Timestamp: time.Now(),
	})

	imported, err := ReadFile(opts.FilePath, opts.Read)
	if err != nil {
		return nil, err
	}

	send(progressChan, ProgressEvent{
		Type:    "read_done",
		Message: fmt.Sprintf("读取 %d 行，丢弃 %d 行", imported.TotalRows, len(imported.Dropped)),
		Data: map[string]int{
			"total":    imported.TotalRows,
			"imported": len(imported.Rows),
			"dropped":  len(imported.Dropped),
		},
		Timestamp: time.Now(),
	})

	return c.Compute(opts.Config, filename, opts.ScenarioID, imported, progressChan)
}

// Compute 对已读取的行执行批量计算并记录运行
func (c *Coordinator) Compute(cfg model.CostConfig, filename, scenarioID string, imported *Result, progressChan chan<- ProgressEvent) (*Outcome, error) {
	results := make([]model.ProductResult, 0, len(imported.Rows))
	for res, err := range calculator.Results(cfg, imported.Rows) {
		if err != nil {
			return nil, err
		}
		results = append(results, res)
		send(progressChan, ProgressEvent{
			Type:      "row",
			Message:   res.Name,
			Data:      map[string]int{"done": len(results), "total": len(imported.Rows)},
			Timestamp: time.Now(),
		})
	}

	summary := calculator.Summarize(results)
	run := &model.BatchRun{
		ID:           uuid.New().String(),
		ScenarioID:   scenarioID,
		FileName:     filename,
		Sheet:        imported.Sheet,
		TotalRows:    imported.TotalRows,
		ImportedRows: len(imported.Rows),
		DroppedRows:  len(imported.Dropped),
		BaseCurrency: cfg.Rates.Base,
		TotalRevenue: summary.TotalRevenue,
		NetProfit:    summary.NetProfitTotal,
		CreatedAt:    time.Now(),
	}

	if c.recorder != nil {
		if err := c.recorder.RecordBatchRun(run); err != nil {
			// 记录失败不影响计算结果
			log.Warn().Err(err).Str("run", run.ID).Msg("record batch run failed")
		}
	}

	log.Info().
		Str("run", run.ID).
		Str("file", filename).
		Int("imported", run.ImportedRows).
		Int("dropped", run.DroppedRows).
		Msg("batch analysis finished")

	return &Outcome{
		Run:     run,
		Import:  imported,
		Results: results,
		Summary: summary,
	}, nil
}

func send(ch chan<- ProgressEvent, event ProgressEvent) {
	if ch == nil {
		return
	}
	ch <- event
}
