package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/floorops/floorops/internal/board"
	boarddomain "github.com/floorops/floorops/internal/board/domain"
	"github.com/floorops/floorops/internal/catalog"
	catalogdomain "github.com/floorops/floorops/internal/catalog/domain"
	"github.com/floorops/floorops/internal/config"
	"github.com/floorops/floorops/internal/kitchen"
	kitchendomain "github.com/floorops/floorops/internal/kitchen/domain"
	"github.com/floorops/floorops/internal/observability/metrics"
	"github.com/floorops/floorops/internal/order"
	orderdomain "github.com/floorops/floorops/internal/order/domain"
	"github.com/floorops/floorops/internal/orderlog"
	orderlogdomain "github.com/floorops/floorops/internal/orderlog/domain"
	"github.com/floorops/floorops/internal/reservation"
	reservationdomain "github.com/floorops/floorops/internal/reservation/domain"
	"github.com/floorops/floorops/internal/table"
	tabledomain "github.com/floorops/floorops/internal/table/domain"
)

var Module = fx.Module("http.server",
	metrics.Module,
	fx.Provide(registerGin),
	orderlog.Module,
	table.Module,
	catalog.Module,
	order.Module,
	reservation.Module,
	board.Module,
	kitchen.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(Correlation())
	r.Use(RequestLogger(log))
	r.Use(ActorContext())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(log *zap.Logger) *gin.Engine {
	return NewEngine(log)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine         *gin.Engine
	cfg            config.Config
	tableSvc       tabledomain.Service
	catalogSvc     catalogdomain.Service
	orderSvc       orderdomain.Service
	orderlogSvc    orderlogdomain.Service
	reservationSvc reservationdomain.Service
	boardSvc       boarddomain.Service
	kitchenSvc     kitchendomain.Service
}

type ServerParams struct {
	fx.In

	Gin            *gin.Engine
	Cfg            config.Config
	TableSvc       tabledomain.Service
	CatalogSvc     catalogdomain.Service
	OrderSvc       orderdomain.Service
	OrderlogSvc    orderlogdomain.Service
	ReservationSvc reservationdomain.Service
	BoardSvc       boarddomain.Service
	KitchenSvc     kitchendomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:         p.Gin,
		cfg:            p.Cfg,
		tableSvc:       p.TableSvc,
		catalogSvc:     p.CatalogSvc,
		orderSvc:       p.OrderSvc,
		orderlogSvc:    p.OrderlogSvc,
		reservationSvc: p.ReservationSvc,
		boardSvc:       p.BoardSvc,
		kitchenSvc:     p.KitchenSvc,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api/v1")

	// -------- Board --------
	api.GET("/board", s.GetBoard)

	// -------- Tables --------
	api.GET("/tables", s.ListTables)
	api.POST("/tables", s.CreateTable)
	api.PUT("/tables/:id", s.UpdateTable)
	api.POST("/tables/:id/toggle", s.ToggleTable)
	api.DELETE("/tables/:id", s.DeleteTable)
	api.POST("/tables/:id/open", s.OpenTable)
	api.GET("/tables/:id/order", s.GetOpenOrder)

	// -------- Menu --------
	api.GET("/menu", s.GetMenu)

	// -------- Orders --------
	api.GET("/orders", s.ListOrderHistory)
	api.GET("/orders/:id", s.GetOrder)
	api.POST("/orders/:id/cart", s.SubmitCart)
	api.PUT("/orders/:id/discount", s.UpdateDiscount)
	api.POST("/orders/:id/close", s.CloseOrder)
	api.GET("/orders/:id/ticket", s.GetTicket)
	api.GET("/orders/:id/logs", s.ListOrderLogs)

	// -------- Reservations --------
	api.GET("/reservations", s.ListReservations)
	api.POST("/reservations", s.CreateReservation)
	api.POST("/reservations/:id/cancel", s.CancelReservation)

	// -------- Kitchen --------
	api.GET("/kitchen/orders", s.ListKitchenOrders)
	api.PUT("/kitchen/items/:id/status", s.SetKitchenItemStatus)
}
