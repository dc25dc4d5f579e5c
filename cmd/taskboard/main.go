package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"taskboard/internal/api"
	"taskboard/internal/auth"
	"taskboard/internal/board"
	"taskboard/internal/config"
	"taskboard/internal/database"
	"taskboard/internal/grpc"
	"taskboard/internal/metrics"
	"taskboard/internal/web"
	"taskboard/internal/ws"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Ошибка открытия базы данных: %v", err)
	}
	defer db.Close()

	collector := metrics.NewCollector()
	hub := ws.NewHub(collector)

	boards, err := board.NewManager(db,
		board.WithNotifier(hub),
		board.WithMetrics(collector),
		board.WithCacheMaxCost(cfg.CacheMaxCost),
	)
	if err != nil {
		log.Fatalf("Ошибка создания менеджера задач: %v", err)
	}
	defer boards.Close()

	authManager := auth.NewManager(cfg.JWTSecret, cfg.TokenTTL)
	apiServer := api.NewServer(db, boards, authManager, cfg.CORSOrigins)

	pages, err := web.New(db, boards, authManager, hub, cfg.PageSize)
	if err != nil {
		log.Fatalf("Ошибка загрузки шаблонов: %v", err)
	}

	grpcServer := grpc.NewServer(grpc.NewScheduleServer(collector))
	go func() {
		grpcAddress := ":" + cfg.GRPCPort
		log.Printf("Starting gRPC server on port %s", cfg.GRPCPort)
		if err := grpc.StartServer(grpcAddress, grpcServer); err != nil {
			log.Fatalf("Failed to start gRPC server: %v", err)
		}
	}()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Mount(api.Prefix, apiServer.Router())
	r.Method(http.MethodGet, "/metrics", collector.Handler())
	r.Mount("/", pages.Routes())

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Starting HTTP server on port %s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Ошибка HTTP сервера: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Получен сигнал завершения, останавливаем серверы...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Ошибка остановки HTTP сервера: %v", err)
	}
	grpcServer.GracefulStop()

	log.Println("Серверы остановлены")
}
