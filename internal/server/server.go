package server

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/greenhabit/greenpoints-backend/internal/config"
	"github.com/greenhabit/greenpoints-backend/internal/handler"
	"github.com/greenhabit/greenpoints-backend/internal/repository"
	"github.com/greenhabit/greenpoints-backend/internal/service"
	"github.com/greenhabit/greenpoints-backend/internal/store"
)

// Authenticator gates routes on a verified identity. Satisfied by
// middleware.AuthMiddleware.
type Authenticator interface {
	RequireAuth(next echo.HandlerFunc) echo.HandlerFunc
	RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc
}

type Server struct {
	e        *echo.Echo
	Snapshot service.SnapshotService
}

func New(st store.Store, authMw Authenticator, cfg *config.Config) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		AllowOriginFunc: func(origin string) (bool, error) {
			low := strings.ToLower(origin)
			if strings.HasPrefix(low, "http://localhost:") || strings.HasPrefix(low, "http://127.0.0.1:") ||
				strings.HasPrefix(low, "https://localhost:") || strings.HasPrefix(low, "https://127.0.0.1:") {
				return true, nil
			}
			u, err := url.Parse(origin)
			if err != nil {
				return false, nil
			}
			if u.Scheme != "http" && u.Scheme != "https" {
				return false, nil
			}
			if strings.HasSuffix(u.Hostname(), cfg.AllowedOriginSuffix) {
				return true, nil
			}
			return false, nil
		},
	}))

	userRepo := repository.NewUserRepository(st)
	cardRepo := repository.NewCardRepository(st)
	redeemRepo := repository.NewRedeemRepository(st)
	snapshotRepo := repository.NewSnapshotRepository(st)
	teamRepo := repository.NewTeamRepository(st)
	progressRepo := repository.NewProgressRepository(st)

	redeemSvc := service.NewRedeemService(st, cardRepo, redeemRepo)
	cardSvc := service.NewCardService(cardRepo)
	mergeSvc := service.NewMergeService(userRepo, teamRepo, snapshotRepo, progressRepo)
	restoreSvc := service.NewRestoreService(userRepo, snapshotRepo, progressRepo)
	growthSvc := service.NewGrowthService(userRepo, teamRepo, snapshotRepo)
	snapshotSvc := service.NewSnapshotService(userRepo, snapshotRepo)
	userSvc := service.NewUserService(userRepo)

	redeemHandler := handler.NewRedeemHandler(redeemSvc)
	cardHandler := handler.NewCardHandler(cardSvc)
	mergeHandler := handler.NewMergeHandler(mergeSvc)
	restoreHandler := handler.NewRestoreHandler(restoreSvc)
	leaderboardHandler := handler.NewLeaderboardHandler(growthSvc)
	snapshotHandler := handler.NewSnapshotHandler(snapshotSvc, cfg.CronSecret)
	userHandler := handler.NewUserHandler(userSvc)

	requireAuth := authMw.RequireAuth
	requireAdmin := authMw.RequireAdmin

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"ok": "true"})
	})

	api := e.Group("/api")

	api.POST("/redeem", redeemHandler.Redeem, requireAuth)
	api.GET("/redeem/catalog", redeemHandler.Catalog)

	api.GET("/leaderboard/top", leaderboardHandler.Top)
	api.GET("/leaderboard/growth", leaderboardHandler.Growth)
	api.GET("/leaderboard/teams", leaderboardHandler.Teams)

	api.GET("/me", userHandler.Me, requireAuth)

	// Cron hook authenticates with its own shared secret, not a session.
	api.GET("/cron/snapshot", snapshotHandler.Cron)
	api.POST("/cron/snapshot", snapshotHandler.Cron)

	admin := api.Group("/admin", requireAdmin)
	admin.GET("/merge-accounts", mergeHandler.Scan)
	admin.POST("/merge-accounts", mergeHandler.Merge)
	admin.GET("/restore-data", restoreHandler.Inventory)
	admin.POST("/restore-data", restoreHandler.Restore)
	admin.POST("/snapshot-stream", snapshotHandler.Stream)
	admin.POST("/cards", cardHandler.Create)
	admin.POST("/cards/bulk", cardHandler.CreateBulk)
	admin.GET("/cards", cardHandler.List)
	admin.DELETE("/cards/:id", cardHandler.Delete)
	admin.GET("/redeems", redeemHandler.History)

	return &Server{e: e, Snapshot: snapshotSvc}
}

func (s *Server) Start(addr string) error {
	return s.e.Start(addr)
}

// Echo exposes the router for tests.
func (s *Server) Echo() *echo.Echo {
	return s.e
}
