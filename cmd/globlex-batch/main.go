package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"globlex/internal/calculator"
	"globlex/internal/config"
	"globlex/internal/exporter"
	"globlex/internal/importer"
	"globlex/internal/logger"
	"globlex/internal/report"
	"globlex/internal/store"
	"globlex/internal/util"
)

var (
	in         = flag.String("in", "", "产品表 (.xlsx，无表头：名称/单位成本/销量)")
	out        = flag.String("out", "batch-results.xlsx", "结果 Excel 路径")
	pdfOut     = flag.String("pdf", "", "可选：结果 PDF 路径")
	sheet      = flag.String("sheet", "", "读取的 sheet，默认第一个")
	configPath = flag.String("config", "", "config.toml 路径，默认可执行文件同目录")
	record     = flag.Bool("record", false, "将运行记录写入数据目录下的数据库")
)

// errInvalidConfig 参数校验失败，明细已写入日志
var errInvalidConfig = errors.New("invalid pricing config")

func main() {
	flag.Parse()
	if *in == "" {
		fmt.Fprintln(os.Stderr, "usage: globlex-batch -in products.xlsx [-out results.xlsx] [-pdf report.pdf]")
		os.Exit(2)
	}

	if err := run(); err != nil {
		log.Error().Err(err).Msg("批量分析失败")
		os.Exit(1)
	}
}

func loadConfig() (*config.AppConfig, error) {
	if *configPath == "" {
		return config.LoadConfig()
	}
	cfg, _, err := config.LoadConfigFrom(*configPath)
	return cfg, err
}

func run() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("加载配置失败: %w", err)
	}
	logger.New(cfg.Log)

	if issues := calculator.ValidateConfig(cfg.Pricing); len(issues) > 0 {
		for _, issue := range issues {
			log.Error().Str("issue", issue).Msg("invalid pricing config")
		}
		return errInvalidConfig
	}

	var recorder importer.RunRecorder
	if *record {
		if _, err := config.EnsureDataDir(cfg); err != nil {
			return fmt.Errorf("创建数据目录失败: %w", err)
		}
		st, err := store.New(config.DBPath(cfg))
		if err != nil {
			return fmt.Errorf("打开数据库失败: %w", err)
		}
		defer func() { _ = st.Close() }()
		recorder = st
	}

	coord := importer.NewCoordinator(recorder)
	outcome, err := coord.Run(importer.ImportOptions{
		FilePath:         *in,
		OriginalFilename: filepath.Base(*in),
		Config:           cfg.Pricing,
		Read:             importer.Options{Sheet: *sheet},
	})
	if err != nil {
		return err
	}
	for _, d := range outcome.Import.Dropped {
		log.Warn().Int("line", d.Line).Str("name", d.Name).Str("reason", d.Reason).Msg("row dropped")
	}

	table, err := report.BuildBatchTable(cfg.Pricing.Currencies(), outcome.Results)
	if err != nil {
		return fmt.Errorf("生成批量表失败: %w", err)
	}
	data := exporter.BatchData{
		Table:        table,
		Summary:      outcome.Summary,
		BaseCurrency: cfg.Pricing.Rates.Base,
		DroppedRows:  len(outcome.Import.Dropped),
	}

	exp := exporter.NewExporter()
	f, err := exp.ExportBatch(data, func(p exporter.ProgressEvent) {
		log.Debug().Int("percent", p.Percent).Str("stage", p.Stage).Msg("export progress")
	})
	if err != nil {
		return fmt.Errorf("导出 Excel 失败: %w", err)
	}
	err = f.SaveAs(*out)
	_ = f.Close()
	if err != nil {
		return fmt.Errorf("写入 Excel 失败: %w", err)
	}

	if *pdfOut != "" {
		b, err := exp.BatchPDF(data)
		if err != nil {
			return fmt.Errorf("导出 PDF 失败: %w", err)
		}
		if err := os.WriteFile(*pdfOut, b, 0644); err != nil {
			return fmt.Errorf("写入 PDF 失败: %w", err)
		}
	}

	s := outcome.Summary
	cur := string(cfg.Pricing.Rates.Base)
	fmt.Printf("products: %d (dropped %d)\n", s.ProductCount, len(outcome.Import.Dropped))
	fmt.Printf("total revenue: %s\n", util.FormatMoney(s.TotalRevenue, cur))
	fmt.Printf("gross profit:  %s\n", util.FormatMoney(s.GrossProfitTotal, cur))
	fmt.Printf("net profit:    %s\n", util.FormatMoney(s.NetProfitTotal, cur))
	fmt.Printf("written: %s\n", *out)
	return nil
}
