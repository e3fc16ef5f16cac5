package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"Care_Community/internal/config"
	"Care_Community/internal/logger"
	"Care_Community/internal/pkg"
	"Care_Community/internal/repository"
	"Care_Community/internal/repository/memory"
	"Care_Community/internal/repository/mysql"
	"Care_Community/internal/repository/redis"
	"Care_Community/internal/router"
	"Care_Community/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg := config.MustLoad()

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format, "care-community")
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	if !cfg.IsLocal() {
		gin.SetMode(gin.ReleaseMode)
	}

	deps := service.Deps{Log: log}
	deps.Store = mustStore(cfg, log)

	tokens, err := pkg.NewTokenIssuer(cfg.Auth.SecretKey, cfg.Auth.Algorithm, cfg.Auth.AccessTokenTTL)
	if err != nil {
		log.Fatal("token issuer", zap.Error(err))
	}
	deps.Tokens = tokens

	// 连接redis；未配置时会话退化为进程内存储，且不启用设备缓存
	if cfg.Redis.Addr != "" {
		rdb, err := redis.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatal("connect redis", zap.Error(err))
		}
		defer func() { _ = rdb.Close() }()
		deps.Sessions = redis.NewSessionRepository(rdb, cfg.Auth.AccessTokenTTL)
		deps.Cache = redis.NewDeviceCache(rdb, cfg.Redis.DeviceCacheTTL)
		deps.Locker = redis.NewDistLock(rdb)
	} else {
		log.Warn("redis not configured, sessions are kept in process")
		deps.Sessions = memory.NewSessionStore(cfg.Auth.AccessTokenTTL)
	}

	if len(cfg.Kafka.Brokers) > 0 {
		producer, err := pkg.NewKafkaProducer(pkg.KafkaConfig{
			Brokers:      cfg.Kafka.Brokers,
			Topic:        cfg.Kafka.Topic,
			WriteTimeout: cfg.Kafka.WriteTimeout,
		})
		if err != nil {
			log.Fatal("kafka producer", zap.Error(err))
		}
		defer func() { _ = producer.Close() }()
		deps.Events = producer
	}

	smtp := pkg.SMTPConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	}
	if smtp.Enabled() {
		deps.Mailer = pkg.SMTPMailer{Config: smtp}
	}

	svc := service.New(deps)
	if err := svc.Auth.EnsureAdmin(context.Background(), cfg.Auth.AdminEmail, cfg.Auth.AdminPassword); err != nil {
		log.Fatal("bootstrap admin", zap.Error(err))
	}

	// Gin
	r := router.InitRouter(svc, log, router.Options{
		CORSOrigins:    cfg.HTTP.CORSOrigins,
		RequestTimeout: cfg.HTTP.RequestTimeout,
	})
	srv := &http.Server{
		Addr:         cfg.HTTP.Address,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if svc.Relayer != nil {
		go svc.Relayer.Run(ctx)
	}

	go func() {
		log.Info("http server listening", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http server shutdown", zap.Error(err))
	}
	log.Info("http server stopped")
}

func mustStore(cfg *config.Config, log *zap.Logger) *repository.Store {
	switch cfg.Database.Driver {
	case "memory":
		log.Warn("using in-memory store, data is lost on restart")
		return memory.NewStore(memory.NewDB())
	case "mysql":
		db, err := mysql.NewDB(mysql.Options{
			DSN:             cfg.Database.DSN,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		})
		if err != nil {
			log.Fatal("connect mysql", zap.Error(err))
		}
		// 自动建表（开发阶段 OK）
		if cfg.Database.AutoMigrate {
			if err := mysql.AutoMigrate(db); err != nil {
				log.Fatal("auto migrate", zap.Error(err))
			}
		}
		return mysql.NewStore(db)
	default:
		log.Fatal("unknown database driver", zap.String("driver", cfg.Database.Driver))
		return nil
	}
}
