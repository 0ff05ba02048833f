package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"marketplace/internal/auth"
	"marketplace/internal/cache"
	"marketplace/internal/config"
	"marketplace/internal/database"
	"marketplace/internal/handlers"
	"marketplace/internal/middleware"
	"marketplace/internal/repository"
	"marketplace/internal/routes"
	"marketplace/internal/service"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := database.Connect(ctx, cfg.MongoURI)
	if err != nil {
		return err
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := client.Disconnect(dctx); err != nil {
			slog.Error("mongo disconnect", slog.String("error", err.Error()))
		}
	}()

	db := client.Database(cfg.MongoDB)
	if err := database.EnsureIndexes(ctx, db); err != nil {
		return err
	}

	users := repository.NewUserRepository(db.Collection(database.UsersCollection))
	products := repository.NewProductRepository(db.Collection(database.ProductsCollection))
	categories := repository.NewCategoryRepository(db.Collection(database.CategoriesCollection))
	orders := repository.NewOrderRepository(db.Collection(database.OrdersCollection))

	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	cookie := auth.SessionCookie{Name: cfg.CookieName, Secure: cfg.CookieSecure}

	catalogCache := cache.New(5*time.Minute, 5*time.Minute)
	defer catalogCache.Stop()

	catalog := service.NewCatalogService(products, categories)
	h := routes.Handlers{
		Accounts:   handlers.NewAccountHandler(service.NewAccountService(users, tokens), cookie),
		Products:   handlers.NewProductHandler(catalog, catalogCache),
		Categories: handlers.NewCategoryHandler(catalog, catalogCache),
		Orders:     handlers.NewOrderHandler(service.NewOrderService(orders, products)),
		Dashboards: handlers.NewDashboardHandler(service.NewDashboardService(products, orders)),
	}

	if cfg.GinMode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(middleware.Logger(), gin.Recovery())
	routes.RegisterRoutes(router, h, routes.Auth{Tokens: tokens, Cookie: cookie, Users: users})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server running", slog.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(sctx)
}
