package importer

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"globlex/internal/model"
)

// newWorkbook 构造内存工作簿，rows 从 A1 开始逐行写入
func newWorkbook(t *testing.T, rows [][]interface{}) *excelize.File {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("CoordinatesToCellName: %v", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("SetSheetRow: %v", err)
		}
	}
	return f
}

func TestReadWorkbook_DropsNonNumericRow(t *testing.T) {
	f := newWorkbook(t, [][]interface{}{
		{"A", 1.0, 100},
		{"B", "x", 50},
		{"C", 2.5, 40},
	})
	defer f.Close()

	res, err := ReadWorkbook(f, Options{})
	if err != nil {
		t.Fatalf("ReadWorkbook failed: %v", err)
	}

	if res.TotalRows != 3 {
		t.Errorf("TotalRows = %d, want 3", res.TotalRows)
	}
	if len(res.Rows) != 2 {
		t.Fatalf("len(Rows) = %d, want 2", len(res.Rows))
	}
	if res.Rows[0].Name != "A" || res.Rows[1].Name != "C" {
		t.Errorf("order not preserved: %q, %q", res.Rows[0].Name, res.Rows[1].Name)
	}
	if res.Rows[0].UnitCost != 1.0 || res.Rows[0].Units != 100 {
		t.Errorf("row A = %+v", res.Rows[0])
	}
	if res.Rows[1].Line != 3 {
		t.Errorf("row C line = %d, want 3", res.Rows[1].Line)
	}
	if len(res.Dropped) != 1 {
		t.Fatalf("len(Dropped) = %d, want 1", len(res.Dropped))
	}
	if res.Dropped[0].Line != 2 || res.Dropped[0].Name != "B" {
		t.Errorf("dropped = %+v", res.Dropped[0])
	}
	if res.Dropped[0].Reason != "non-numeric unit cost" {
		t.Errorf("reason = %q", res.Dropped[0].Reason)
	}
}

func TestReadWorkbook_DropReasons(t *testing.T) {
	tests := []struct {
		name   string
		row    []interface{}
		reason string
	}{
		{"header row", []interface{}{"Product", "Unit Cost", "Units"}, "non-numeric unit cost"},
		{"negative cost", []interface{}{"N", -1.0, 10}, "negative unit cost"},
		{"missing units", []interface{}{"M", 1.0}, "non-numeric units"},
		{"fractional units", []interface{}{"F", 1.0, 2.5}, "units must be a whole number"},
		{"units out of range", []interface{}{"O", 1.0, 3e9}, "units out of range"},
		{"zero units", []interface{}{"Z", 1.0, 0}, "units must be > 0"},
		{"negative units", []interface{}{"Z", 1.0, -3}, "units must be > 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newWorkbook(t, [][]interface{}{tt.row})
			defer f.Close()

			res, err := ReadWorkbook(f, Options{})
			if err != nil {
				t.Fatalf("ReadWorkbook failed: %v", err)
			}
			if len(res.Rows) != 0 {
				t.Fatalf("expected no rows, got %+v", res.Rows)
			}
			if len(res.Dropped) != 1 || res.Dropped[0].Reason != tt.reason {
				t.Errorf("dropped = %+v, want reason %q", res.Dropped, tt.reason)
			}
		})
	}
}

func TestReadWorkbook_UnitsOverride(t *testing.T) {
	f := newWorkbook(t, [][]interface{}{
		{"A", 0.64, 100},
		{"B", 0.70, 0},
	})
	defer f.Close()

	res, err := ReadWorkbook(f, Options{UnitsOverride: map[int]int{1: 26250, 2: 500}})
	if err != nil {
		t.Fatalf("ReadWorkbook failed: %v", err)
	}
	if len(res.Rows) != 2 {
		t.Fatalf("len(Rows) = %d, want 2 (dropped %+v)", len(res.Rows), res.Dropped)
	}
	if res.Rows[0].Units != 26250 {
		t.Errorf("row A units = %d, want 26250", res.Rows[0].Units)
	}
	if res.Rows[1].Units != 500 {
		t.Errorf("row B units = %d, want 500", res.Rows[1].Units)
	}
}

func TestReadWorkbook_SkipsBlankRows(t *testing.T) {
	f := newWorkbook(t, [][]interface{}{
		{"A", 1.0, 10},
		{"", "", ""},
		{"B", 2.0, 20},
	})
	defer f.Close()

	res, err := ReadWorkbook(f, Options{})
	if err != nil {
		t.Fatalf("ReadWorkbook failed: %v", err)
	}
	if res.TotalRows != 2 || len(res.Rows) != 2 || len(res.Dropped) != 0 {
		t.Errorf("TotalRows=%d rows=%d dropped=%d", res.TotalRows, len(res.Rows), len(res.Dropped))
	}
	if res.Rows[1].Line != 3 {
		t.Errorf("row B line = %d, want 3", res.Rows[1].Line)
	}
}

func TestReadWorkbook_NamedSheet(t *testing.T) {
	f := newWorkbook(t, [][]interface{}{{"first", 1.0, 1}})
	defer f.Close()
	if _, err := f.NewSheet("Products"); err != nil {
		t.Fatalf("NewSheet: %v", err)
	}
	if err := f.SetSheetRow("Products", "A1", &[]interface{}{"second", 3.0, 7}); err != nil {
		t.Fatalf("SetSheetRow: %v", err)
	}

	res, err := ReadWorkbook(f, Options{Sheet: "Products"})
	if err != nil {
		t.Fatalf("ReadWorkbook failed: %v", err)
	}
	if res.Sheet != "Products" || len(res.Rows) != 1 || res.Rows[0].Name != "second" {
		t.Errorf("unexpected result: %+v", res)
	}

	if _, err := ReadWorkbook(f, Options{Sheet: "Missing"}); err == nil {
		t.Error("expected error for missing sheet")
	}
}

func TestReadReader(t *testing.T) {
	f := newWorkbook(t, [][]interface{}{{"A", 1.5, 4}})
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("Write: %v", err)
	}
	f.Close()

	res, err := ReadReader(&buf, Options{})
	if err != nil {
		t.Fatalf("ReadReader failed: %v", err)
	}
	if len(res.Rows) != 1 || res.Rows[0].UnitCost != 1.5 || res.Rows[0].Units != 4 {
		t.Errorf("rows = %+v", res.Rows)
	}
}

type memRecorder struct {
	runs []*model.BatchRun
}

func (m *memRecorder) RecordBatchRun(run *model.BatchRun) error {
	m.runs = append(m.runs, run)
	return nil
}

func TestCoordinator_Import(t *testing.T) {
	f := newWorkbook(t, [][]interface{}{
		{"A", 0.64, 1000},
		{"B", "bad", 10},
		{"C", 0.80, 2000},
	})
	path := filepath.Join(t.TempDir(), "products.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("SaveAs: %v", err)
	}
	f.Close()

	rec := &memRecorder{}
	coord := NewCoordinator(rec)
	cfg := model.DefaultCostConfig()

	var types []string
	var outcome *Outcome
	for ev := range coord.Import(ImportOptions{FilePath: path, OriginalFilename: "products.xlsx", Config: cfg}) {
		types = append(types, ev.Type)
		switch ev.Type {
		case "error":
			t.Fatalf("import error: %s", ev.Message)
		case "done":
			outcome = ev.Data.(*Outcome)
		}
	}

	if outcome == nil {
		t.Fatal("no done event")
	}
	if types[0] != "start" || types[1] != "read_done" || types[len(types)-1] != "done" {
		t.Errorf("event order = %v", types)
	}
	if len(outcome.Results) != 2 || outcome.Summary.ProductCount != 2 {
		t.Errorf("results = %d, summary count = %d", len(outcome.Results), outcome.Summary.ProductCount)
	}
	if outcome.Run.DroppedRows != 1 || outcome.Run.FileName != "products.xlsx" {
		t.Errorf("run = %+v", outcome.Run)
	}
	if len(rec.runs) != 1 || rec.runs[0].ID != outcome.Run.ID {
		t.Errorf("recorded runs = %+v", rec.runs)
	}
}

func TestCoordinator_RunMissingFile(t *testing.T) {
	coord := NewCoordinator(nil)
	_, err := coord.Run(ImportOptions{FilePath: filepath.Join(os.TempDir(), "does-not-exist.xlsx")})
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}
