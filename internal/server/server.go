package server

import (
	"context"
	"net/http"
	"time"

	"github.com/billforge/billforge/internal/audit"
	auditdomain "github.com/billforge/billforge/internal/audit/domain"
	"github.com/billforge/billforge/internal/bank"
	bankdomain "github.com/billforge/billforge/internal/bank/domain"
	"github.com/billforge/billforge/internal/branch"
	branchdomain "github.com/billforge/billforge/internal/branch/domain"
	"github.com/billforge/billforge/internal/client"
	clientdomain "github.com/billforge/billforge/internal/client/domain"
	"github.com/billforge/billforge/internal/config"
	"github.com/billforge/billforge/internal/invoice"
	invoicedomain "github.com/billforge/billforge/internal/invoice/domain"
	"github.com/billforge/billforge/internal/logo"
	logodomain "github.com/billforge/billforge/internal/logo/domain"
	"github.com/billforge/billforge/internal/observability"
	obslogger "github.com/billforge/billforge/internal/observability/logger"
	obsmetrics "github.com/billforge/billforge/internal/observability/metrics"
	"github.com/billforge/billforge/internal/product"
	productdomain "github.com/billforge/billforge/internal/product/domain"
	"github.com/billforge/billforge/internal/sequence"
	"github.com/billforge/billforge/internal/tax"
	taxdomain "github.com/billforge/billforge/internal/tax/domain"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	observability.Module,
	audit.Module,
	sequence.Module,
	branch.Module,
	client.Module,
	bank.Module,
	product.Module,
	tax.Module,
	invoice.Module,
	logo.Module,
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger, m *obsmetrics.Metrics, reg *prometheus.Registry) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(log))
	r.Use(obsmetrics.GinMiddleware(m))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	return r
}

func registerGin(log *zap.Logger, m *obsmetrics.Metrics, reg *prometheus.Registry) *gin.Engine {
	return NewEngine(log, m, reg)
}

func run(lc fx.Lifecycle, cfg config.Config, log *zap.Logger, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server starting", zap.String("addr", cfg.HTTPAddr))
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
	engine     *gin.Engine
	cfg        config.Config
	clientSvc  clientdomain.Service
	branchSvc  branchdomain.Service
	bankSvc    bankdomain.Service
	productSvc productdomain.Service
	taxSvc     taxdomain.Service
	invoiceSvc invoicedomain.Service
	logoSvc    logodomain.Service
	auditSvc   auditdomain.Service
}

type ServerParams struct {
	fx.In

	Gin        *gin.Engine
	Cfg        config.Config
	ClientSvc  clientdomain.Service
	BranchSvc  branchdomain.Service
	BankSvc    bankdomain.Service
	ProductSvc productdomain.Service
	TaxSvc     taxdomain.Service
	InvoiceSvc invoicedomain.Service
	LogoSvc    logodomain.Service
	AuditSvc   auditdomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:     p.Gin,
		cfg:        p.Cfg,
		clientSvc:  p.ClientSvc,
		branchSvc:  p.BranchSvc,
		bankSvc:    p.BankSvc,
		productSvc: p.ProductSvc,
		taxSvc:     p.TaxSvc,
		invoiceSvc: p.InvoiceSvc,
		logoSvc:    p.LogoSvc,
		auditSvc:   p.AuditSvc,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/v1")

	// -------- Clients --------
	api.GET("/clients", s.ListClients)
	api.POST("/clients", s.CreateClient)
	api.GET("/clients/:id", s.GetClientByID)
	api.PATCH("/clients/:id", s.UpdateClient)
	api.DELETE("/clients/:id", s.DeleteClient)

	// -------- Branches --------
	api.GET("/branches", s.ListBranches)
	api.POST("/branches", s.CreateBranch)
	api.GET("/branches/:id", s.GetBranchByID)
	api.PATCH("/branches/:id", s.UpdateBranch)
	api.DELETE("/branches/:id", s.DeleteBranch)
	api.GET("/branches/:id/next-invoice-number", s.NextInvoiceNumber)

	// -------- Bank accounts --------
	api.GET("/bank-accounts", s.ListBankAccounts)
	api.POST("/bank-accounts", s.CreateBankAccount)
	api.GET("/bank-accounts/:id", s.GetBankAccountByID)
	api.PATCH("/bank-accounts/:id", s.UpdateBankAccount)
	api.DELETE("/bank-accounts/:id", s.DeleteBankAccount)

	// -------- Products --------
	api.GET("/products", s.ListProducts)
	api.POST("/products", s.CreateProduct)
	api.GET("/products/:id", s.GetProductByID)
	api.PATCH("/products/:id", s.UpdateProduct)
	api.DELETE("/products/:id", s.DeleteProduct)

	// -------- Taxes --------
	api.GET("/taxes", s.ListTaxes)
	api.POST("/taxes", s.CreateTax)
	api.GET("/taxes/:id", s.GetTaxByID)
	api.PATCH("/taxes/:id", s.UpdateTax)
	api.DELETE("/taxes/:id", s.DeleteTax)

	// -------- Invoices --------
	api.GET("/invoices", s.ListInvoices)
	api.POST("/invoices", s.CreateInvoice)
	api.GET("/invoices/final", s.ListFinalInvoices)
	api.GET("/invoices/:id", s.GetInvoiceByID)
	api.PATCH("/invoices/:id", s.UpdateInvoice)
	api.DELETE("/invoices/:id", s.DeleteInvoice)
	api.POST("/invoices/:id/finalize", s.FinalizeInvoice)

	// -------- Invoice items --------
	api.POST("/invoices/:id/items", s.CreateInvoiceItem)
	api.PATCH("/invoice-items/:id", s.UpdateInvoiceItem)
	api.DELETE("/invoice-items/:id", s.DeleteInvoiceItem)

	// -------- Logo --------
	api.GET("/logo", s.GetLogo)
	api.POST("/logo", s.UploadLogo)
	api.PUT("/logo", s.UploadLogo)
	api.GET("/logo/file", s.ServeLogoFile)

	// -------- Audit logs --------
	api.GET("/audit-logs", s.ListAuditLogs)
}
