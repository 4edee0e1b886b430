package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"globlex/internal/model"
)

// RecordBatchRun 记录一次批量分析
func (s *Store) RecordBatchRun(run *model.BatchRun) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}
	run.CreatedAt = run.CreatedAt.UTC()

	var scenarioID sql.NullString
	if run.ScenarioID != "" {
		scenarioID = sql.NullString{String: run.ScenarioID, Valid: true}
	}

	_, err := s.db.Exec(`
		INSERT INTO batch_runs (
			id, scenario_id, file_name, sheet, total_rows, imported_rows, dropped_rows,
			base_currency, total_revenue, net_profit, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, scenarioID, run.FileName, run.Sheet, run.TotalRows, run.ImportedRows, run.DroppedRows,
		string(run.BaseCurrency), run.TotalRevenue, run.NetProfit, run.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record batch run: %w", err)
	}
	return nil
}

// ListBatchRuns 最近的批量分析记录，limit <= 0 时返回全部
func (s *Store) ListBatchRuns(limit int) ([]*model.BatchRun, error) {
	query := `
		SELECT id, scenario_id, file_name, sheet, total_rows, imported_rows, dropped_rows,
			base_currency, total_revenue, net_profit, created_at
		FROM batch_runs ORDER BY created_at DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list batch runs: %w", err)
	}
	defer rows.Close()

	out := []*model.BatchRun{}
	for rows.Next() {
		var (
			run        model.BatchRun
			scenarioID sql.NullString
			base       string
		)
		if err := rows.Scan(&run.ID, &scenarioID, &run.FileName, &run.Sheet, &run.TotalRows,
			&run.ImportedRows, &run.DroppedRows, &base, &run.TotalRevenue, &run.NetProfit, &run.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan batch run: %w", err)
		}
		run.ScenarioID = scenarioID.String
		run.BaseCurrency = model.Currency(base)
		out = append(out, &run)
	}
	return out, rows.Err()
}

// CountBatchRuns 批量分析次数
func (s *Store) CountBatchRuns() (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM batch_runs").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count batch runs: %w", err)
	}
	return n, nil
}
