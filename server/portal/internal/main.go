package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cmms-ng/internal/database"
	"cmms-ng/internal/routers"
	"cmms-ng/internal/service"
	"cmms-ng/pkg/redis"
)

// @title           CMMS-NG API
// @version         1.0
// @description     CMMS-NG 维护管理平台 API 文档

// @host      localhost:8080
// @BasePath  /fe-v1

const (
	serverPort = ":8080"

	// warmUpDelay 启动后延迟触发首次PM生成，等待依赖就绪
	warmUpDelay = 10 * time.Second
)

func main() {
	// 初始化日志
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync()

	// 初始化数据库连接
	db, err := database.InitDB("cmms.db")
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	// 清空现有数据并插入样例数据
	if err := database.ClearAndSeedDatabase(db); err != nil {
		log.Fatalf("failed to seed database: %v", err)
	}

	// 初始化 Redis 处理器
	redisHandler := redis.NewRedisHandler("default")

	// 初始化服务
	pmService := service.NewPMGeneratorService(db, redisHandler, logger)
	wsManager := service.NewWebSocketManager()

	// 订阅PM通知并推送给 WebSocket 客户端
	go service.PMNotificationRelay(redisHandler, wsManager, logger)

	// 初始化路由处理器
	pmHandler := routers.NewPMHandler(pmService, wsManager, logger)
	workOrderHandler := routers.NewWorkOrderHandler(db, logger)
	assetHandler := routers.NewAssetHandler(db, redisHandler, logger)

	// 创建 Gin 引擎
	r := gin.Default()

	// 配置 CORS 中间件
	configureCORS(r)

	// 注册路由
	api := r.Group("/fe-v1")
	pmHandler.RegisterRoutes(api)
	workOrderHandler.RegisterRoutes(api)
	assetHandler.RegisterRoutes(api)

	// 启动后延迟触发一次PM工单生成
	time.AfterFunc(warmUpDelay, func() {
		logger.Info("Triggering startup PM work order generation")
		if _, err := pmService.GeneratePreventiveWorkOrders(context.Background()); err != nil {
			logger.Error("Startup PM generation failed", zap.Error(err))
		}
	})

	// 启动服务器
	log.Printf("Starting server on %s", serverPort)
	if err := r.Run(serverPort); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to run server: %v", err)
	}
}

// configureCORS 配置跨域中间件
func configureCORS(r *gin.Engine) {
	config := cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://127.0.0.1:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	r.Use(cors.New(config))
}
