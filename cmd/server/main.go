// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Corphon/ReelBoard/internal/app"
	"github.com/Corphon/ReelBoard/internal/config"
	"github.com/Corphon/ReelBoard/internal/utils"
)

func main() {
	log.Println("🚀 启动 ReelBoard 服务器...")

	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		if errors.Is(err, config.ErrMissingAPIKey) {
			log.Fatalf("❌ 缺少 GEMINI_API_KEY，请在环境变量或 .env 文件中设置")
		}
		log.Fatalf("加载配置失败: %v", err)
	}
	log.Printf("✅ 配置加载完成，端口: %s", cfg.Port)

	// 2. 初始化日志
	if err := app.InitLogging(cfg); err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}
	defer utils.CloseLogger()
	log.Println("✅ 日志系统初始化完成")

	// 3. 组装服务
	application, err := app.New(cfg)
	if err != nil {
		log.Fatalf("❌ 初始化服务失败: %v", err)
	}
	log.Printf("✅ 所有服务初始化完成，LLM: %s (%s)", cfg.LLMProvider, cfg.GeminiModel)

	// 4. 启动服务器，等待中断信号
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("🌐 服务器启动在端口 %s", cfg.Port)
	log.Printf("🔗 访问地址: http://localhost:%s/api/health", cfg.Port)

	if err := application.Run(ctx); err != nil {
		log.Printf("❌ %v", err)
		utils.CloseLogger()
		os.Exit(1)
	}
	log.Println("✅ 服务器优雅关闭完成")
}
