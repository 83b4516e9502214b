package app

import (
	"RoleChat/internal/app/server"
	"RoleChat/internal/config"
	"RoleChat/internal/delivery/http"
	"RoleChat/internal/delivery/http/controllers/middleware"
	"RoleChat/internal/service"
	"RoleChat/internal/service/auth"
	"RoleChat/internal/service/avatar"
	"RoleChat/internal/service/messages"
	"RoleChat/internal/service/permissions"
	"RoleChat/internal/service/sweeper"
	"RoleChat/internal/storage/elastic"
	"RoleChat/internal/storage/minio_storage"
	"RoleChat/pkg/logger"
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func Run(cfg *config.Config) {
	log := logger.New(cfg.Env)
	log.Info("Starting with Env: "+cfg.Env, "storage", cfg.Storage)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, closeStores, err := openStores(ctx, cfg)
	if err != nil {
		log.FatalErr("error opening storage", err)
	}
	defer closeStores()

	collection, err := buildServices(ctx, cfg, log, st)
	if err != nil {
		log.FatalErr("error building services", err)
	}

	if cfg.Sweeper.Enabled {
		sw, err := sweeper.New(log.With("component", "sweeper"), cfg.Sweeper.Cron,
			sweeper.Target{Kind: "refresh_tokens", Repo: st.tokens},
			sweeper.Target{Kind: "login_links", Repo: st.links},
		)
		if err != nil {
			log.FatalErr("error configuring sweeper", err)
		}
		sw.Start(ctx)
	}

	limiter := middleware.NewLimiterPool(cfg.RateLimit.RPS, cfg.RateLimit.Burst, cfg.RateLimit.TTL)
	limiter.StartCleanup(time.Minute)
	defer limiter.Stop()

	r := http.InitRoutes(log, collection, http.RouterConfig{
		AllowOrigins: cfg.CORS.AllowOrigins,
		LinkLimiter:  limiter,
		Checks:       st.checks,
	})

	srv := server.New(cfg.HTTPServer.Address, cfg.HTTPServer.Timeout, cfg.HTTPServer.IdleTimeout, r)
	srv.Start()
	log.Info("listening", "address", cfg.HTTPServer.Address)

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	select {
	case s := <-interrupt:
		log.Info("app signal: " + s.String())
	case err := <-srv.Notify():
		if err != nil {
			log.ErrorErr("server stopped", err)
		}
	}
	cancel()
	if err := srv.Shutdown(); err != nil {
		log.ErrorErr("shutdown failed", err)
	}
}

func buildServices(ctx context.Context, cfg *config.Config, log logger.Log, st *stores) (service.Collection, error) {
	checker := permissions.NewChecker(log.With("component", "permissions"), st.users)
	messageService := messages.NewMessageService(log.With("component", "messages"), st.messages, checker)

	if len(cfg.ES.Hosts) > 0 {
		client, err := elastic.NewElasticClient(cfg.ES.Username, cfg.ES.Password, cfg.ES.Hosts)
		if err != nil {
			return service.Collection{}, err
		}
		searchRepo := elastic.NewMessageSearchRepository(client, cfg.ES.Index)
		if err := searchRepo.CreateIndexIfNotExist(ctx); err != nil {
			return service.Collection{}, err
		}
		messageService.WithSearch(searchRepo)
		st.checks["elasticsearch"] = searchRepo
		log.Info("message search enabled", "index", cfg.ES.Index)
	}

	jwtManager := auth.NewJWTManager(cfg.JWT.SecretKey, cfg.JWT.Issuer, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)
	authService := auth.NewAuthService(
		log.With("component", "auth"),
		jwtManager,
		st.users,
		st.tokens,
		st.links,
		auth.NewLogSender(log.With("component", "mailer")),
		auth.NewProvisioner(log.With("component", "provisioner"), st.users),
		auth.LinkConfig{BaseURL: cfg.EmailLink.BaseURL, TTL: cfg.EmailLink.TTL},
	)

	collection := service.Collection{
		AuthService:    authService,
		MessageService: messageService,
	}

	if cfg.Minio.Endpoint != "" {
		ms, err := minio_storage.NewMinioStorage(cfg.Minio.Endpoint, cfg.Minio.AccessKey, cfg.Minio.SecretKey, cfg.Minio.UseSSL)
		if err != nil {
			return service.Collection{}, err
		}
		avatarStorage, err := minio_storage.NewAvatarStorage(ctx, ms, cfg.Minio.Bucket, cfg.Minio.PresignTTL)
		if err != nil {
			return service.Collection{}, err
		}
		st.checks["minio"] = avatarStorage
		collection.AvatarService = avatar.NewAvatarService(log.With("component", "avatar"), st.users, avatarStorage, cfg.Minio.MaxSize)
		log.Info("avatars enabled", "bucket", cfg.Minio.Bucket)
	}

	return collection, nil
}
