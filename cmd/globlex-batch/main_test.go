package main

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"globlex/internal/config"
	"globlex/internal/store"
)

// setFlags 设置命令行参数，测试结束后恢复
func setFlags(t *testing.T, input, output, pdf, cfgPath string, rec bool) {
	t.Helper()
	oldIn, oldOut, oldPDF, oldCfg, oldRec := *in, *out, *pdfOut, *configPath, *record
	*in, *out, *pdfOut, *configPath, *record = input, output, pdf, cfgPath, rec
	t.Cleanup(func() {
		*in, *out, *pdfOut, *configPath, *record = oldIn, oldOut, oldPDF, oldCfg, oldRec
	})
}

func writeProducts(t *testing.T, path string) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	rows := [][]interface{}{
		{"A", 0.64, 26250},
		{"B", "n/a", 10},
		{"C", 1.2, 500},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatalf("SetSheetRow: %v", err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("SaveAs: %v", err)
	}
}

func writeConfig(t *testing.T, dir, dataDir string) string {
	t.Helper()
	path := filepath.Join(dir, "config.toml")
	content := fmt.Sprintf("[data]\ndata_dir = '%s'\n\n[log]\nlevel = 'error'\nformat = 'json'\n", dataDir)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestRun_WritesOutputsAndRecordsRun(t *testing.T) {
	dir := t.TempDir()
	dataDir := filepath.Join(dir, "data")
	input := filepath.Join(dir, "products.xlsx")
	output := filepath.Join(dir, "results.xlsx")
	pdf := filepath.Join(dir, "results.pdf")
	writeProducts(t, input)
	setFlags(t, input, output, pdf, writeConfig(t, dir, dataDir), true)

	if err := run(); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	f, err := excelize.OpenFile(output)
	if err != nil {
		t.Fatalf("open results: %v", err)
	}
	a3, _ := f.GetCellValue("Batch Results", "A3")
	f.Close()
	if a3 != "C" {
		t.Errorf("A3 = %q, want C", a3)
	}
	if b, err := os.ReadFile(pdf); err != nil || len(b) < 4 || string(b[:4]) != "%PDF" {
		t.Errorf("pdf output invalid: err=%v", err)
	}

	// run 返回后数据库已关闭，可重新打开读取记录
	cfg := config.DefaultConfig()
	cfg.Data.DataDir = dataDir
	st, err := store.New(config.DBPath(cfg))
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	defer st.Close()
	runs, err := st.ListBatchRuns(0)
	if err != nil {
		t.Fatalf("ListBatchRuns: %v", err)
	}
	if len(runs) != 1 || runs[0].ImportedRows != 2 || runs[0].DroppedRows != 1 {
		t.Errorf("runs = %+v", runs)
	}
}

func TestRun_ReturnsErrorForMissingInput(t *testing.T) {
	dir := t.TempDir()
	setFlags(t, filepath.Join(dir, "missing.xlsx"), filepath.Join(dir, "out.xlsx"), "", writeConfig(t, dir, filepath.Join(dir, "data")), true)

	if err := run(); err == nil {
		t.Fatal("run should fail for a missing input file")
	}
	if _, err := os.Stat(filepath.Join(dir, "out.xlsx")); !os.IsNotExist(err) {
		t.Errorf("output should not be written, stat err = %v", err)
	}
}
