package database

import (
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/seaglow/seaglow/internal/log"
	"go.uber.org/zap"
)

// Client holds the connection to the PostgreSQL store shared with the
// web UI.
type Client struct {
	connectionString string
	DB               *gorm.DB // Exported so it can be accessed from other packages
	logger           *zap.SugaredLogger
}

// NewClient creates a new database client
func NewClient(connectionString string, logger *zap.SugaredLogger) *Client {
	return &Client{
		connectionString: connectionString,
		logger:           logger,
	}
}

// Connect connects to the PostgreSQL store. The schema is managed by the
// migration tooling; no migrations run here.
func (c *Client) Connect() error {
	var err error

	c.DB, err = gorm.Open(postgres.Open(c.connectionString), &gorm.Config{Logger: newGormLogger()})
	if err != nil {
		log.Warn("warning: unable to create a database connection:", err)
		return err
	}
	log.Info("database connection successful")

	return nil
}

// CreateConnection is a helper function to create a database connection
// with standard GORM configuration
func CreateConnection(connectionString string) (*gorm.DB, error) {
	log.Info("connecting to conditions store...")
	db, err := gorm.Open(postgres.Open(connectionString), &gorm.Config{Logger: newGormLogger()})
	if err != nil {
		log.Warn("warning: unable to create a database connection:", err)
		return nil, err
	}

	return db, nil
}

func newGormLogger() logger.Interface {
	return logger.New(
		zap.NewStdLog(log.GetZapLogger()),
		logger.Config{
			SlowThreshold:             time.Second, // Slow SQL threshold
			LogLevel:                  logger.Warn, // Log level
			IgnoreRecordNotFoundError: true,        // Missing conditions rows are routine
			Colorful:                  true,
		},
	)
}
