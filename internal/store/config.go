package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"globlex/internal/model"
)

// costConfigKey 默认成本参数在 config 表中的键
const costConfigKey = "cost_config"

// GetConfig 获取配置项
func (s *Store) GetConfig(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM config WHERE key = ?", key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("config key %s: %w", key, ErrNotFound)
		}
		return "", err
	}
	return value, nil
}

// SetConfig 设置配置项
func (s *Store) SetConfig(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO config (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = ?, updated_at = CURRENT_TIMESTAMP
	`, key, value, value)
	return err
}

// GetAllConfig 获取所有配置项
func (s *Store) GetAllConfig() (map[string]string, error) {
	rows, err := s.db.Query("SELECT key, value FROM config")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	config := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		config[key] = value
	}

	return config, rows.Err()
}

// GetCostConfig 读取保存的默认成本参数，未保存时 ok 为 false
func (s *Store) GetCostConfig() (cfg model.CostConfig, ok bool, err error) {
	raw, err := s.GetConfig(costConfigKey)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return cfg, false, nil
		}
		return cfg, false, err
	}
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		return cfg, false, fmt.Errorf("failed to decode cost config: %w", err)
	}
	return cfg, true, nil
}

// SetCostConfig 保存默认成本参数
func (s *Store) SetCostConfig(cfg model.CostConfig) error {
	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode cost config: %w", err)
	}
	return s.SetConfig(costConfigKey, string(data))
}
