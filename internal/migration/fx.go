package migration

import (
	auditdomain "github.com/billforge/billforge/internal/audit/domain"
	bankdomain "github.com/billforge/billforge/internal/bank/domain"
	branchdomain "github.com/billforge/billforge/internal/branch/domain"
	clientdomain "github.com/billforge/billforge/internal/client/domain"
	invoicedomain "github.com/billforge/billforge/internal/invoice/domain"
	logodomain "github.com/billforge/billforge/internal/logo/domain"
	productdomain "github.com/billforge/billforge/internal/product/domain"
	"github.com/billforge/billforge/internal/sequence"
	taxdomain "github.com/billforge/billforge/internal/tax/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB) error {
		// Versioned SQL migrations run against postgres. Other dialects
		// (sqlite for local development) get the schema from the models.
		if conn.Dialector.Name() != "postgres" {
			return AutoMigrate(conn)
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return RunMigrations(sqlDB)
	}),
)

// AutoMigrate builds the schema from the model definitions.
func AutoMigrate(conn *gorm.DB) error {
	return conn.AutoMigrate(
		&branchdomain.Branch{},
		&clientdomain.Client{},
		&bankdomain.BankAccount{},
		&productdomain.Product{},
		&taxdomain.Tax{},
		&invoicedomain.Invoice{},
		&invoicedomain.InvoiceItem{},
		&logodomain.Logo{},
		&sequence.Counter{},
		&auditdomain.AuditLog{},
	)
}
