package importer

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"globlex/internal/model"
)

// 批量表固定三列：产品名称、EXW 单位成本、销量（无表头）
const (
	colName = iota
	colUnitCost
	colUnits
)

var (
	// ErrNoSheet 工作簿中没有可用的 sheet
	ErrNoSheet = errors.New("workbook has no sheets")
)

// Options 读取选项
type Options struct {
	// Sheet 为空时读取第一个 sheet
	Sheet string
	// UnitsOverride 按表格行号（1 起）覆盖销量，在校验前生效
	UnitsOverride map[int]int
}

// DroppedRow 被丢弃的行
type DroppedRow struct {
	Line   int      `json:"line"`
	Name   string   `json:"name"`
	Raw    []string `json:"raw"`
	Reason string   `json:"reason"`
}

// Result 读取结果
type Result struct {
	Sheet     string             `json:"sheet"`
	TotalRows int                `json:"totalRows"`
	Rows      []model.ProductRow `json:"rows"`
	Dropped   []DroppedRow       `json:"dropped"`
}

// ReadFile 从文件路径读取
func ReadFile(path string, opts Options) (*Result, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open excel: %w", err)
	}
	defer f.Close()
	return ReadWorkbook(f, opts)
}

// ReadReader 从上传流读取
func ReadReader(r io.Reader, opts Options) (*Result, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open excel: %w", err)
	}
	defer f.Close()
	return ReadWorkbook(f, opts)
}

// ReadWorkbook 读取产品行
//
// 成本或销量无法转换为数值的行直接丢弃（视为缺失数据），不中断导入。
func ReadWorkbook(f *excelize.File, opts Options) (*Result, error) {
	sheet := strings.TrimSpace(opts.Sheet)
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, ErrNoSheet
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}

	result := &Result{
		Sheet:   sheet,
		Rows:    make([]model.ProductRow, 0, len(rows)),
		Dropped: []DroppedRow{},
	}

	for i, raw := range rows {
		line := i + 1
		if isBlank(raw) {
			continue
		}
		result.TotalRows++

		row, reason := parseRow(raw, line, opts.UnitsOverride)
		if reason != "" {
			result.Dropped = append(result.Dropped, DroppedRow{
				Line:   line,
				Name:   cellAt(raw, colName),
				Raw:    raw,
				Reason: reason,
			})
			continue
		}
		result.Rows = append(result.Rows, row)
	}

	return result, nil
}

// parseRow 解析单行，返回丢弃原因（为空表示有效）
func parseRow(raw []string, line int, overrides map[int]int) (model.ProductRow, string) {
	cost, ok := parseNumber(cellAt(raw, colUnitCost))
	if !ok {
		return model.ProductRow{}, "non-numeric unit cost"
	}
	if cost < 0 {
		return model.ProductRow{}, "negative unit cost"
	}

	var units int
	if v, ok := overrides[line]; ok {
		units = v
	} else {
		u, ok := parseNumber(cellAt(raw, colUnits))
		if !ok {
			return model.ProductRow{}, "non-numeric units"
		}
		if u != math.Trunc(u) {
			return model.ProductRow{}, "units must be a whole number"
		}
		if u > math.MaxInt32 {
			return model.ProductRow{}, "units out of range"
		}
		units = int(u)
	}
	if units <= 0 {
		return model.ProductRow{}, "units must be > 0"
	}

	return model.ProductRow{
		Line:     line,
		Name:     cellAt(raw, colName),
		UnitCost: cost,
		Units:    units,
	}, ""
}

// parseNumber 数值转换，拒绝 NaN/Inf
func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func cellAt(row []string, idx int) string {
	if idx < len(row) {
		return strings.TrimSpace(row[idx])
	}
	return ""
}

func isBlank(row []string) bool {
	for i := 0; i < len(row) && i <= colUnits; i++ {
		if strings.TrimSpace(row[i]) != "" {
			return false
		}
	}
	return true
}
