package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"globlex/internal/model"
)

// ErrDuplicateName 方案名称重复
var ErrDuplicateName = errors.New("scenario name already exists")

const scenarioColumns = "id, name, config_json, unit_cost, units, created_at, updated_at"

// CreateScenario 新建方案，ID 与时间戳由存储层生成
func (s *Store) CreateScenario(sc *model.Scenario) error {
	data, err := json.Marshal(sc.Config)
	if err != nil {
		return fmt.Errorf("failed to encode scenario config: %w", err)
	}

	now := time.Now().UTC()
	sc.ID = uuid.New().String()
	sc.CreatedAt = now
	sc.UpdatedAt = now

	_, err = s.db.Exec(`
		INSERT INTO scenarios (`+scenarioColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, sc.ID, sc.Name, string(data), sc.UnitCost, sc.Units, sc.CreatedAt, sc.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%q: %w", sc.Name, ErrDuplicateName)
		}
		return fmt.Errorf("failed to create scenario: %w", err)
	}
	return nil
}

// GetScenario 按 ID 查询方案
func (s *Store) GetScenario(id string) (*model.Scenario, error) {
	row := s.db.QueryRow("SELECT "+scenarioColumns+" FROM scenarios WHERE id = ?", id)
	sc, err := scanScenario(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("scenario %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get scenario: %w", err)
	}
	return sc, nil
}

// ListScenarios 按更新时间倒序列出方案
func (s *Store) ListScenarios() ([]*model.Scenario, error) {
	rows, err := s.db.Query("SELECT " + scenarioColumns + " FROM scenarios ORDER BY updated_at DESC, name")
	if err != nil {
		return nil, fmt.Errorf("failed to list scenarios: %w", err)
	}
	defer rows.Close()

	out := []*model.Scenario{}
	for rows.Next() {
		sc, err := scanScenario(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan scenario: %w", err)
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}

// UpdateScenario 更新方案名称、参数与默认输入
func (s *Store) UpdateScenario(sc *model.Scenario) error {
	data, err := json.Marshal(sc.Config)
	if err != nil {
		return fmt.Errorf("failed to encode scenario config: %w", err)
	}

	sc.UpdatedAt = time.Now().UTC()
	res, err := s.db.Exec(`
		UPDATE scenarios SET
			name = ?,
			config_json = ?,
			unit_cost = ?,
			units = ?,
			updated_at = ?
		WHERE id = ?
	`, sc.Name, string(data), sc.UnitCost, sc.Units, sc.UpdatedAt, sc.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%q: %w", sc.Name, ErrDuplicateName)
		}
		return fmt.Errorf("failed to update scenario: %w", err)
	}
	return requireAffected(res, "scenario", sc.ID)
}

// DeleteScenario 删除方案
func (s *Store) DeleteScenario(id string) error {
	res, err := s.db.Exec("DELETE FROM scenarios WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete scenario: %w", err)
	}
	return requireAffected(res, "scenario", id)
}

// CountScenarios 方案数量
func (s *Store) CountScenarios() (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM scenarios").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count scenarios: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanScenario(r rowScanner) (*model.Scenario, error) {
	var (
		sc  model.Scenario
		raw string
	)
	if err := r.Scan(&sc.ID, &sc.Name, &raw, &sc.UnitCost, &sc.Units, &sc.CreatedAt, &sc.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(raw), &sc.Config); err != nil {
		return nil, fmt.Errorf("failed to decode scenario config: %w", err)
	}
	return &sc, nil
}

func requireAffected(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
