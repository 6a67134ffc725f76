// Package main is the entry point for threadpool.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"threadpool/internal/api"
	"threadpool/internal/config"
	"threadpool/internal/events"
	"threadpool/internal/logger"
	"threadpool/internal/pool"
	"threadpool/internal/scenario"
	"threadpool/internal/workload"
)

var (
	version = "dev"
)

// options はコマンドラインフラグの値
type options struct {
	configFile string
	presetName string
	workers    int
	tasks      int
	delay      time.Duration
	logLevel   string
	serverMode bool
	serverAddr string
}

func main() {
	var opts options

	flag.StringVar(&opts.configFile, "config", "", "設定ファイルパス (YAML/JSON)")
	flag.StringVar(&opts.presetName, "preset", "", "プリセットシナリオ名 (quick, basic, stress, faulty)")
	flag.IntVar(&opts.workers, "workers", 0, "ワーカー数")
	flag.IntVar(&opts.tasks, "tasks", 0, "シナリオで投入するタスク数")
	flag.DurationVar(&opts.delay, "delay", -1, "1タスクあたりの計算時間 (例: 2s, 50ms)")
	flag.StringVar(&opts.logLevel, "log-level", "", "ログレベル (debug, info, warn, error)")
	flag.BoolVar(&opts.serverMode, "server", false, "APIサーバーモードで起動")
	flag.StringVar(&opts.serverAddr, "addr", "", "サーバーアドレス (例: :8080)")
	listPresets := flag.Bool("list-presets", false, "利用可能なプリセットを表示")
	showVersion := flag.Bool("version", false, "バージョンを表示")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `threadpool - Fixed-size worker pool with futures

Usage:
  threadpool [options]

Options:
`)
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # 乗算デモを実行
  threadpool

  # プリセットシナリオを実行
  threadpool --preset basic --workers 8

  # 設定ファイルから実行
  threadpool --config threadpool.yaml

  # APIサーバーモードで起動
  threadpool --server --addr :3000
`)
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("threadpool version %s\n", version)
		return
	}

	if *listPresets {
		printPresets()
		return
	}

	fileConfig, err := loadConfig(opts.configFile)
	if err != nil {
		logger.Error("", "設定エラー: %v", err)
		os.Exit(1)
	}

	if err := applyLogLevel(fileConfig, opts.logLevel); err != nil {
		logger.Error("", "設定エラー: %v", err)
		os.Exit(1)
	}

	switch {
	case opts.serverMode:
		err = runServer(fileConfig, opts)
	case opts.configFile != "" || opts.presetName != "":
		err = runScenario(fileConfig, opts)
	default:
		err = runDemo(fileConfig, opts)
	}
	if err != nil {
		logger.Error("", "実行エラー: %v", err)
		os.Exit(1)
	}
}

// loadConfig は設定ファイルを読み込んで検証する。パス未指定なら空の設定を返す
func loadConfig(path string) (*config.FileConfig, error) {
	if path == "" {
		return &config.FileConfig{}, nil
	}
	fileConfig, err := config.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("設定ファイル読み込みエラー: %w", err)
	}
	if err := fileConfig.Validate(); err != nil {
		return nil, fmt.Errorf("設定検証エラー: %w", err)
	}
	return fileConfig, nil
}

// applyLogLevel はフラグ、設定ファイルの順でログレベルを決める
func applyLogLevel(fileConfig *config.FileConfig, flagLevel string) error {
	level, err := fileConfig.LogLevel()
	if err != nil {
		return err
	}
	if flagLevel != "" {
		level, err = logger.ParseLevel(flagLevel)
		if err != nil {
			return err
		}
	}
	logger.Default.SetLevel(level)
	return nil
}

// buildScenarioConfig はシナリオ設定を構築する
func buildScenarioConfig(fileConfig *config.FileConfig, opts options) (scenario.Config, error) {
	if opts.presetName != "" {
		if _, ok := scenario.GetPreset(opts.presetName); !ok {
			return scenario.Config{}, fmt.Errorf("不明なプリセット: %s (利用可能: %v)", opts.presetName, scenario.ListPresets())
		}
		fileConfig.Scenario.Preset = opts.presetName
	}

	cfg, err := fileConfig.ToScenarioConfig()
	if err != nil {
		return cfg, fmt.Errorf("設定変換エラー: %w", err)
	}

	// フラグでオーバーライド
	if opts.workers > 0 {
		cfg.Workers = opts.workers
	}
	if opts.tasks > 0 {
		cfg.Tasks = opts.tasks
	}
	if opts.delay >= 0 {
		cfg.TaskDelay = opts.delay
	}

	return cfg, cfg.Validate()
}

// runScenario はシナリオを実行する
func runScenario(fileConfig *config.FileConfig, opts options) error {
	cfg, err := buildScenarioConfig(fileConfig, opts)
	if err != nil {
		return err
	}

	fmt.Println("threadpool - Scenario Runner")
	fmt.Println("====================================================")
	fmt.Printf("Scenario: %s\n", cfg.Name)
	fmt.Printf("Workers: %d, Tasks: %d, Delay: %v\n", cfg.Workers, cfg.Tasks, cfg.TaskDelay)
	fmt.Printf("Failure rate: %.2f, Panic rate: %.2f\n", cfg.FailureRate, cfg.PanicRate)
	fmt.Println("====================================================")
	fmt.Println()

	ctx, cancel := signalContext()
	defer cancel()

	engine := scenario.New(cfg)
	result, err := engine.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Println(result.Report())
	return nil
}

// runDemo は乗算デモを実行する
func runDemo(fileConfig *config.FileConfig, opts options) error {
	poolConfig := fileConfig.ToPoolConfig()
	if opts.workers > 0 {
		poolConfig.Workers = opts.workers
	}
	delay := 2 * time.Second
	if opts.delay >= 0 {
		delay = opts.delay
	}

	p := pool.NewWithConfig(poolConfig)
	if err := p.Init(); err != nil {
		return err
	}
	defer p.Shutdown()

	// 結果を待たない投入
	for i := 1; i <= 2; i++ {
		for j := 1; j <= 3; j++ {
			if _, err := pool.Exec(p, func() error {
				return workload.MultiplyPrint(delay, os.Stdout, i, j)
			}); err != nil {
				return err
			}
		}
	}

	// 出力引数で結果を受け取る
	var output int
	fut1, err := pool.Exec(p, func() error {
		workload.MultiplyInto(delay, &output, 10, 20)
		return nil
	})
	if err != nil {
		return err
	}
	if _, err := fut1.Await(); err != nil {
		return err
	}
	fmt.Printf("%d * %d = %d\n", 10, 20, output)

	// 戻り値で結果を受け取る
	fut2, err := pool.Submit(p, func() (int, error) {
		return workload.Multiply(delay, 20, 30), nil
	})
	if err != nil {
		return err
	}
	output2, err := fut2.Await()
	if err != nil {
		return err
	}
	fmt.Printf("%d * %d = %d\n", 20, 30, output2)

	return nil
}

// runServer はAPIサーバーを起動する
func runServer(fileConfig *config.FileConfig, opts options) error {
	addr := fileConfig.Server.Addr
	if opts.serverAddr != "" {
		addr = opts.serverAddr
	}
	if addr == "" {
		addr = ":8080"
	}

	delay, err := fileConfig.ServerTaskDelay()
	if err != nil {
		return err
	}
	if opts.delay >= 0 {
		delay = opts.delay
	}

	bus := events.NewBusWithBuffer(fileConfig.Server.EventBuffer)
	defer bus.Close()

	poolConfig := fileConfig.ToPoolConfig()
	if opts.workers > 0 {
		poolConfig.Workers = opts.workers
	}
	poolConfig.Bus = bus

	p := pool.NewWithConfig(poolConfig)
	if err := p.Init(); err != nil {
		return err
	}
	defer p.Shutdown()

	fmt.Println("threadpool - API Server")
	fmt.Println("========================")
	fmt.Printf("Starting server on http://%s\n", addr)
	fmt.Println("Press Ctrl+C to stop")
	fmt.Println()

	ctx, cancel := signalContext()
	defer cancel()

	server := api.NewServer(addr, p, bus)
	server.SetTaskDelay(delay)
	return server.Start(ctx)
}

// signalContext はSIGINT/SIGTERMでキャンセルされるコンテキストを返す
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-sigCh:
			fmt.Println("\n中断シグナルを受信、終了中...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}

// printPresets は利用可能なプリセットを表示する
func printPresets() {
	fmt.Println("利用可能なプリセットシナリオ:")
	fmt.Println()

	for _, name := range scenario.ListPresets() {
		preset, _ := scenario.GetPreset(name)
		fmt.Printf("  %-12s %s\n", name, preset.Description)
	}

	fmt.Println()
	fmt.Println("使用例: threadpool --preset quick")
}
