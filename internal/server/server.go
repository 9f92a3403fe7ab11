package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/zoonova/internal/auth"
	authdomain "github.com/smallbiznis/zoonova/internal/auth/domain"
	"github.com/smallbiznis/zoonova/internal/auth/session"
	"github.com/smallbiznis/zoonova/internal/authorization"
	"github.com/smallbiznis/zoonova/internal/book"
	bookdomain "github.com/smallbiznis/zoonova/internal/book/domain"
	"github.com/smallbiznis/zoonova/internal/config"
	"github.com/smallbiznis/zoonova/internal/contact"
	contactdomain "github.com/smallbiznis/zoonova/internal/contact/domain"
	"github.com/smallbiznis/zoonova/internal/country"
	countrydomain "github.com/smallbiznis/zoonova/internal/country/domain"
	"github.com/smallbiznis/zoonova/internal/invoice"
	"github.com/smallbiznis/zoonova/internal/observability"
	obsmiddleware "github.com/smallbiznis/zoonova/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/zoonova/internal/observability/metrics"
	obstracing "github.com/smallbiznis/zoonova/internal/observability/tracing"
	"github.com/smallbiznis/zoonova/internal/order"
	orderdomain "github.com/smallbiznis/zoonova/internal/order/domain"
	"github.com/smallbiznis/zoonova/internal/payment"
	paymentdomain "github.com/smallbiznis/zoonova/internal/payment/domain"
	"github.com/smallbiznis/zoonova/internal/ratelimit"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	authorization.Module,
	auth.Module,
	book.Module,
	country.Module,
	order.Module,
	invoice.Module,
	payment.Module,
	contact.Module,
	ratelimit.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	if httpMetrics != nil {
		r.Use(httpMetrics.GinMiddleware())
	}
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	if !obsCfg.Debug() {
		gin.SetMode(gin.ReleaseMode)
	}
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	log = log.Named("http.server")

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
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
	engine     *gin.Engine
	cfg        config.Config
	authsvc    authdomain.Service
	sessions   *session.Manager
	authzSvc   authorization.Service
	bookSvc    bookdomain.Service
	countrySvc countrydomain.Service
	orderSvc   orderdomain.Service
	invoiceSvc *invoice.Service
	paymentSvc paymentdomain.Service
	contactSvc contactdomain.Service
	limiter    *ratelimit.PublicLimiter
	obsMetrics *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin        *gin.Engine
	Cfg        config.Config
	Authsvc    authdomain.Service
	Sessions   *session.Manager
	AuthzSvc   authorization.Service
	BookSvc    bookdomain.Service
	CountrySvc countrydomain.Service
	OrderSvc   orderdomain.Service
	InvoiceSvc *invoice.Service
	PaymentSvc paymentdomain.Service
	ContactSvc contactdomain.Service
	Limiter    *ratelimit.PublicLimiter `optional:"true"`
	ObsMetrics *obsmetrics.Metrics      `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:     p.Gin,
		cfg:        p.Cfg,
		authsvc:    p.Authsvc,
		sessions:   p.Sessions,
		authzSvc:   p.AuthzSvc,
		bookSvc:    p.BookSvc,
		countrySvc: p.CountrySvc,
		orderSvc:   p.OrderSvc,
		invoiceSvc: p.InvoiceSvc,
		paymentSvc: p.PaymentSvc,
		contactSvc: p.ContactSvc,
		limiter:    p.Limiter,
		obsMetrics: p.ObsMetrics,
	}

	svc.registerAuthRoutes()
	svc.registerAPIRoutes()
	svc.registerAdminRoutes()
	svc.registerFallback()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAuthRoutes() {
	auth := s.engine.Group("/auth")

	auth.POST("/login", s.PublicRateLimit("login"), s.Login)
	auth.POST("/logout", s.Logout)
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	// -------- Catalog --------
	api.GET("/books", s.ListBooks)
	api.GET("/books/:id", s.ViewBook)
	api.GET("/countries", s.ListActiveCountries)

	// -------- Orders --------
	api.POST("/orders", s.PublicRateLimit("orders"), s.CreateOrder)
	api.GET("/orders/:id/invoice", s.DownloadInvoice)

	// -------- Payments --------
	api.POST("/payments/checkout", s.PublicRateLimit("checkout"), s.CreateCheckoutSession)
	api.POST("/payments/webhook", s.HandlePaymentWebhook)
	api.GET("/payments/verify", s.VerifyPayment)

	// -------- Contact --------
	api.POST("/contact", s.PublicRateLimit("contact"), s.CreateContactMessage)
}

func (s *Server) registerAdminRoutes() {
	admin := s.engine.Group("/admin")
	admin.Use(s.AuthRequired())

	// -------- Account --------
	admin.GET("/me", s.authorize(authorization.ObjectAccount, authorization.ActionView), s.Me)
	admin.POST("/me/password", s.authorize(authorization.ObjectAccount, authorization.ActionUpdate), s.ChangePassword)
	admin.GET("/me/sessions", s.authorize(authorization.ObjectAccount, authorization.ActionView), s.ListSessions)
	admin.DELETE("/me/sessions/:id", s.authorize(authorization.ObjectAccount, authorization.ActionUpdate), s.RevokeSession)
	admin.POST("/me/logout_all", s.authorize(authorization.ObjectAccount, authorization.ActionUpdate), s.LogoutAll)

	// -------- Admin accounts --------
	admin.GET("/admins", s.authorize(authorization.ObjectAdmin, authorization.ActionView), s.ListAdmins)
	admin.POST("/admins", s.authorize(authorization.ObjectAdmin, authorization.ActionCreate), s.CreateAdmin)
	admin.POST("/admins/:id/toggle_active", s.authorize(authorization.ObjectAdmin, authorization.ActionUpdate), s.ToggleAdminActive)

	// -------- Books --------
	admin.GET("/books", s.authorize(authorization.ObjectBook, authorization.ActionView), s.AdminListBooks)
	admin.POST("/books", s.authorize(authorization.ObjectBook, authorization.ActionCreate), s.CreateBook)
	admin.GET("/books/:id", s.authorize(authorization.ObjectBook, authorization.ActionView), s.GetBook)
	admin.PATCH("/books/:id", s.authorize(authorization.ObjectBook, authorization.ActionUpdate), s.UpdateBook)
	admin.DELETE("/books/:id", s.authorize(authorization.ObjectBook, authorization.ActionDelete), s.DeleteBook)
	admin.POST("/books/:id/stock", s.authorize(authorization.ObjectBook, authorization.ActionUpdate), s.UpdateBookStock)
	admin.POST("/books/:id/toggle_featured", s.authorize(authorization.ObjectBook, authorization.ActionUpdate), s.ToggleBookFeatured)
	admin.POST("/books/:id/toggle_active", s.authorize(authorization.ObjectBook, authorization.ActionUpdate), s.ToggleBookActive)
	admin.GET("/books/:id/order_status", s.authorize(authorization.ObjectBook, authorization.ActionView), s.BookOrderStatus)
	admin.GET("/books/:id/images", s.authorize(authorization.ObjectBook, authorization.ActionView), s.ListBookImages)
	admin.POST("/books/:id/images", s.authorize(authorization.ObjectBook, authorization.ActionUpdate), s.AddBookImage)
	admin.DELETE("/books/:id/images/:image_id", s.authorize(authorization.ObjectBook, authorization.ActionUpdate), s.DeleteBookImage)
	admin.POST("/books/:id/images/:image_id/main_cover", s.authorize(authorization.ObjectBook, authorization.ActionUpdate), s.SetBookMainCover)

	// -------- Countries --------
	admin.GET("/countries", s.authorize(authorization.ObjectCountry, authorization.ActionView), s.AdminListCountries)
	admin.POST("/countries", s.authorize(authorization.ObjectCountry, authorization.ActionCreate), s.CreateCountry)
	admin.GET("/countries/:id", s.authorize(authorization.ObjectCountry, authorization.ActionView), s.GetCountry)
	admin.PATCH("/countries/:id", s.authorize(authorization.ObjectCountry, authorization.ActionUpdate), s.UpdateCountry)

	// -------- Orders --------
	admin.GET("/orders", s.authorize(authorization.ObjectOrder, authorization.ActionView), s.ListOrders)
	admin.GET("/orders/statistics", s.authorize(authorization.ObjectOrder, authorization.ActionView), s.OrderStatistics)
	admin.GET("/orders/:id", s.authorize(authorization.ObjectOrder, authorization.ActionView), s.GetOrder)
	admin.PATCH("/orders/:id/status", s.authorize(authorization.ObjectOrder, authorization.ActionUpdate), s.UpdateOrderStatus)
	admin.GET("/orders/:id/invoice", s.authorize(authorization.ObjectOrder, authorization.ActionView), s.DownloadInvoice)

	// -------- Payments --------
	admin.GET("/payments", s.authorize(authorization.ObjectPayment, authorization.ActionView), s.ListPayments)
	admin.GET("/payments/:id", s.authorize(authorization.ObjectPayment, authorization.ActionView), s.GetPayment)

	// -------- Contact messages --------
	messages := admin.Group("/contact/messages")
	messages.GET("", s.authorize(authorization.ObjectContact, authorization.ActionView), s.ListContactMessages)
	messages.GET("/statistics", s.authorize(authorization.ObjectContact, authorization.ActionView), s.ContactStatistics)
	messages.POST("/bulk_mark_read", s.authorize(authorization.ObjectContact, authorization.ActionUpdate), s.BulkMarkContactRead)
	messages.GET("/:id", s.authorize(authorization.ObjectContact, authorization.ActionView), s.GetContactMessage)
	messages.POST("/:id/mark_read", s.authorize(authorization.ObjectContact, authorization.ActionUpdate), s.MarkContactRead)
	messages.POST("/:id/mark_unread", s.authorize(authorization.ObjectContact, authorization.ActionUpdate), s.MarkContactUnread)
	messages.POST("/:id/mark_replied", s.authorize(authorization.ObjectContact, authorization.ActionUpdate), s.MarkContactReplied)
}

func (s *Server) registerFallback() {
	s.engine.NoRoute(func(c *gin.Context) {
		AbortWithError(c, ErrNotFound)
	})
}
