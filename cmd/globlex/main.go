package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"globlex/internal/config"
	"globlex/internal/logger"
	"globlex/internal/server"
	"globlex/internal/util"
)

var (
	port    = flag.Int("port", 0, "服务端口 (config.toml 优先；仅当未显式配置 port 时生效)")
	devMode = flag.Bool("dev", false, "开发模式")
	dataDir = flag.String("dataDir", "", "数据目录 (覆盖配置文件)")
	open    = flag.Bool("open", false, "启动后打开浏览器")

	initConfig = flag.Bool("initConfig", false, "将当前生效配置写入可执行文件同目录的 config.toml 后退出")
)

func main() {
	flag.Parse()

	fmt.Println("==========================================")
	fmt.Println("  Globlex - 产品单位经济与盈利分析工具")
	fmt.Println("==========================================")

	// 加载配置
	cfg, info, err := config.LoadConfigWithInfo()
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败，使用默认配置: %v\n", err)
		cfg = config.DefaultConfig()
		info = config.LoadConfigInfo{}
	}

	// 命令行参数覆盖配置
	if *port > 0 && !info.PortSpecified {
		cfg.Server.Port = *port
	}
	if *devMode {
		cfg.Server.DevMode = true
		cfg.Log.Level = "debug"
	}
	if *dataDir != "" {
		cfg.Data.DataDir = *dataDir
	}

	if *initConfig {
		if err := config.SaveConfig(cfg); err != nil {
			fmt.Fprintf(os.Stderr, "写入配置失败: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("配置已写入 %s\n", config.DefaultPath())
		return
	}

	logger.New(cfg.Log)
	if info.Path != "" {
		log.Info().Str("path", info.Path).Msg("config loaded")
	}

	srv, err := server.NewServer(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("初始化服务失败")
	}
	log.Info().Str("dataDir", config.ResolveDataDir(cfg)).Str("db", config.DBPath(cfg)).Msg("数据目录就绪")

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	url := fmt.Sprintf("http://localhost:%d/api/status", cfg.Server.Port)

	// 启动服务器
	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("服务启动中")
		if err := srv.Run(addr); err != nil {
			log.Fatal().Err(err).Msg("服务启动失败")
		}
	}()

	if *open {
		if err := util.OpenBrowser(url); err != nil {
			log.Warn().Err(err).Str("url", url).Msg("无法自动打开浏览器，请手动访问")
		}
	} else {
		fmt.Printf("请访问 %s\n", url)
	}

	fmt.Println("\n按 Ctrl+C 停止服务...")

	// 等待信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("正在关闭服务")
	if err := srv.Close(); err != nil {
		log.Error().Err(err).Msg("关闭数据库失败")
	}
}
