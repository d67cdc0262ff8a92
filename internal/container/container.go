package container

import (
	"context"
	"fmt"

	"biasdetect/adapters/db"
	"biasdetect/app"
	"biasdetect/internal"
	"biasdetect/internal/config"
	"biasdetect/internal/errors"
	"biasdetect/ports"

	"github.com/jmoiron/sqlx"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Infrastructure, nil when no DATABASE_URL is configured
	DB         *sqlx.DB
	ReportRepo ports.ReportRepository

	Audits *app.AuditService
}

// New creates a container without history; call InitWithDatabase to add it
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	c := &Container{
		Config: cfg,
		Logger: internal.NewLogger(internal.ParseLevel(cfg.LogLevel)),
	}
	c.initServices()
	return c, nil
}

// InitWithDatabase opens the configured history store, applies migrations and
// rebuilds the services on top of it. Without a database URL it is a no-op.
func (c *Container) InitWithDatabase(ctx context.Context) error {
	if !c.Config.Database.Enabled() {
		c.Logger.Info("No DATABASE_URL configured, audit history disabled")
		return nil
	}

	conn, err := db.Open(ctx, c.Config.Database.Driver(), c.Config.Database.DSN())
	if err != nil {
		return errors.Wrap(err, "failed to initialize database")
	}
	c.DB = conn
	c.ReportRepo = db.NewReportRepository(conn)
	c.initServices()

	c.Logger.Info("Audit history enabled (%s)", c.Config.Database.Driver())
	return nil
}

func (c *Container) initServices() {
	c.Audits = app.NewAuditService(app.AuditConfig{
		Bins:                c.Config.Analysis.Bins,
		DisparateImpactRule: c.Config.Analysis.DisparateImpactRule,
		MissingThreshold:    c.Config.Analysis.MissingThreshold,
		Logger:              c.Logger,
	}, c.ReportRepo)
}

// Shutdown releases the database connection and flushes the logger
func (c *Container) Shutdown(ctx context.Context) error {
	var err error
	if c.DB != nil {
		err = c.DB.Close()
		c.DB = nil
	}
	_ = c.Logger.Sync()
	return err
}
