package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"globlex/internal/model"
)

// 环境变量前缀
const envPrefix = "GLOBLEX_"

// AppConfig 应用配置
type AppConfig struct {
	Server  ServerConfig     `toml:"server"`
	Data    DataConfig       `toml:"data"`
	Log     LogConfig        `toml:"log"`
	Pricing model.CostConfig `toml:"pricing"`
	Import  ImportConfig     `toml:"import"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port    int  `toml:"port"`
	DevMode bool `toml:"dev_mode"`
}

// DataConfig 数据配置
type DataConfig struct {
	DataDir string `toml:"data_dir"`
	DBName  string `toml:"db_name"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `toml:"level"`  // debug/info/warn/error
	Format string `toml:"format"` // console/json
}

// ImportConfig 批量上传限制
type ImportConfig struct {
	MaxUploadMB int     `toml:"max_upload_mb"`
	RateLimit   float64 `toml:"rate_limit"` // 每个客户端每秒请求数
	Burst       int     `toml:"burst"`
}

// LoadConfigInfo 配置加载元信息
type LoadConfigInfo struct {
	Path          string
	PortSpecified bool
}

// DefaultConfig 默认配置
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:    20262,
			DevMode: false,
		},
		Data: DataConfig{
			DataDir: "data",
			DBName:  "globlex.db",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Pricing: model.DefaultCostConfig(),
		Import: ImportConfig{
			MaxUploadMB: 20,
			RateLimit:   2,
			Burst:       5,
		},
	}
}

func isPortSpecifiedInToml(data []byte) bool {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return false
	}

	serverAny, ok := raw["server"]
	if !ok {
		return false
	}

	serverMap, ok := serverAny.(map[string]any)
	if !ok {
		return false
	}

	_, ok = serverMap["port"]
	return ok
}

// GetExeDir 获取可执行文件所在目录
func GetExeDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}

// DefaultPath config.toml 默认位置（可执行文件同目录）
func DefaultPath() string {
	exeDir, err := GetExeDir()
	if err != nil {
		// 无法获取可执行文件目录，使用当前目录
		exeDir = "."
	}
	return filepath.Join(exeDir, "config.toml")
}

// LoadConfigWithInfo 从默认位置加载配置并返回元信息
func LoadConfigWithInfo() (*AppConfig, LoadConfigInfo, error) {
	// .env 不存在时忽略
	_ = godotenv.Load()
	return LoadConfigFrom(DefaultPath())
}

// LoadConfigFrom 从指定路径加载配置，环境变量覆盖文件值
func LoadConfigFrom(configPath string) (*AppConfig, LoadConfigInfo, error) {
	info := LoadConfigInfo{Path: configPath}
	config := DefaultConfig()

	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		info.PortSpecified = isPortSpecifiedInToml(data)
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, info, fmt.Errorf("failed to parse %s: %w", configPath, err)
		}
	case os.IsNotExist(err):
		// 配置文件不存在，使用默认配置
	default:
		return nil, info, err
	}

	if err := applyEnv(config, &info); err != nil {
		return nil, info, err
	}
	normalize(config)
	return config, info, nil
}

// LoadConfig 从 config.toml 加载配置
// 配置文件位于可执行文件同目录下
func LoadConfig() (*AppConfig, error) {
	config, _, err := LoadConfigWithInfo()
	return config, err
}

// applyEnv GLOBLEX_* 环境变量覆盖
func applyEnv(config *AppConfig, info *LoadConfigInfo) error {
	if v := env("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %sPORT %q: %w", envPrefix, v, err)
		}
		config.Server.Port = port
		info.PortSpecified = true
	}
	if v := env("DEV_MODE"); v != "" {
		dev, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %sDEV_MODE %q: %w", envPrefix, v, err)
		}
		config.Server.DevMode = dev
	}
	if v := env("DATA_DIR"); v != "" {
		config.Data.DataDir = v
	}
	if v := env("LOG_LEVEL"); v != "" {
		config.Log.Level = v
	}
	if v := env("LOG_FORMAT"); v != "" {
		config.Log.Format = v
	}
	return nil
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(envPrefix + key))
}

// normalize 补齐文件中省略的字段
func normalize(config *AppConfig) {
	p := &config.Pricing
	if p.Rates.Base == "" {
		p.Rates.Base = model.CurrencyEUR
	}
	p.Rates.Base = model.ParseCurrency(string(p.Rates.Base))
	if len(p.Rates.Multipliers) == 0 {
		p.Rates.Multipliers = model.DefaultCurrencyRates().Multipliers
	}
	if p.Expenses.Currency == "" {
		p.Expenses.Currency = model.CurrencyAED
	}
	p.Expenses.Currency = model.ParseCurrency(string(p.Expenses.Currency))
	if len(p.DisplayCurrencies) == 0 {
		p.DisplayCurrencies = append([]model.Currency(nil), model.DefaultDisplayCurrencies...)
	}
	if config.Data.DBName == "" {
		config.Data.DBName = "globlex.db"
	}
	if config.Import.MaxUploadMB <= 0 {
		config.Import.MaxUploadMB = 20
	}
}

// SaveConfig 保存配置到 config.toml
func SaveConfig(config *AppConfig) error {
	return SaveConfigTo(DefaultPath(), config)
}

// SaveConfigTo 保存配置到指定路径
func SaveConfigTo(configPath string, config *AppConfig) error {
	data, err := toml.Marshal(config)
	if err != nil {
		return err
	}
	return os.WriteFile(configPath, data, 0644)
}

// ResolveDataDir 数据目录：绝对路径直接使用，相对路径基于可执行文件目录
func ResolveDataDir(config *AppConfig) string {
	if filepath.IsAbs(config.Data.DataDir) {
		return config.Data.DataDir
	}
	exeDir, err := GetExeDir()
	if err != nil {
		exeDir = "."
	}
	return filepath.Join(exeDir, config.Data.DataDir)
}

// EnsureDataDir 确保数据目录存在
func EnsureDataDir(config *AppConfig) (string, error) {
	dataDir := ResolveDataDir(config)

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", err
	}

	// 创建子目录
	subdirs := []string{"uploads", "exports"}
	for _, subdir := range subdirs {
		path := filepath.Join(dataDir, subdir)
		if err := os.MkdirAll(path, 0755); err != nil {
			return "", err
		}
	}

	return dataDir, nil
}

// GetDataPath 获取数据文件路径
func GetDataPath(config *AppConfig, subdir, filename string) string {
	return filepath.Join(ResolveDataDir(config), subdir, filename)
}

// DBPath SQLite 数据库文件路径
func DBPath(config *AppConfig) string {
	return filepath.Join(ResolveDataDir(config), config.Data.DBName)
}
