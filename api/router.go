package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"sales_desk/internal/config"
	"sales_desk/internal/importer"
	"sales_desk/internal/rowsource"
	"sales_desk/internal/sales"
	"sales_desk/internal/session"
	"sales_desk/internal/users"
)

// Dependencies carries the constructed handles the routes are wired with.
// Tests inject in-memory implementations here.
type Dependencies struct {
	Logger    *zap.Logger
	Store     sales.Storage
	Directory users.Directory
	Sessions  *session.Manager
	Engine    *importer.Engine
	Source    rowsource.Source
}

// InitRoutes builds the production wiring from config — SQLite store and
// directory, xlsx row source, bootstrap admin — then registers all routes
// on the given Gin engine.
func InitRoutes(e *gin.Engine, cfg config.Config) error {
	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	// TranslateError maps the driver's unique-constraint failure onto
	// gorm.ErrDuplicatedKey, which the store turns into ErrDuplicateID.
	db, err := gorm.Open(sqlite.Open(cfg.DBPath), &gorm.Config{TranslateError: true})
	if err != nil {
		return fmt.Errorf("open database %s: %w", cfg.DBPath, err)
	}

	store, err := sales.NewGormStorage(db)
	if err != nil {
		return err
	}
	directory, err := users.NewGormDirectory(db)
	if err != nil {
		return err
	}
	if err := users.EnsureAdmin(directory, cfg.AdminUser, cfg.AdminPassword); err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}

	var opts []importer.Option
	if cfg.SyncDedup {
		opts = append(opts, importer.WithFingerprintDedup())
	}
	engine, err := importer.NewEngine(store, directory, logger, cfg.DefaultPassword, opts...)
	if err != nil {
		return err
	}

	InitRoutesWith(e, Dependencies{
		Logger:    logger,
		Store:     store,
		Directory: directory,
		Sessions:  session.NewManager(),
		Engine:    engine,
		Source:    rowsource.NewWorkbook(cfg.WorkbookPath),
	})
	return nil
}

// InitRoutesWith registers all endpoints on the given Gin engine using
// already-constructed dependencies. Role capabilities are fixed per route
// group: any authenticated session gets the order commands (scoped inside
// the service), region managers additionally get the report views.
func InitRoutesWith(e *gin.Engine, deps Dependencies) {
	salesService := sales.NewService(deps.Store, deps.Logger)
	auth := newAuthHandler(deps.Directory, deps.Sessions, deps.Engine, deps.Source, deps.Logger)
	orders := newOrderHandler(salesService, deps.Logger)
	reports := newReportHandler(salesService, deps.Logger)

	e.POST("/login", auth.handleLogin)

	authenticated := e.Group("", auth.requireSession())
	authenticated.POST("/logout", auth.handleLogout)
	authenticated.POST("/orders", orders.handleAddOrder)
	authenticated.PATCH("/orders/:id", orders.handleUpdateOrder)
	authenticated.DELETE("/orders/:id", orders.handleDeleteOrder)
	authenticated.GET("/orders", orders.handleListOrders)

	managers := authenticated.Group("", requireRole(users.RoleRegionManager))
	managers.GET("/reports/:dimension/:value", reports.handleReport)
	managers.GET("/dashboard", reports.handleDashboard)
	managers.GET("/dashboard/top-products", reports.handleTopProducts)

	e.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})
}
