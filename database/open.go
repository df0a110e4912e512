package database

import (
	"fmt"
	"time"

	"github.com/rpupo63/portfolio-backend/config"
	"github.com/rpupo63/portfolio-backend/errs"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/dbresolver"
)

const (
	DBTypeKey             = "DB_TYPE"
	DatabaseURLKey        = "DATABASE_URL"
	DatabaseReplicaURLKey = "DATABASE_REPLICA_URL"
)

// DSN builds the primary connection string for the configured DB_TYPE.
func DSN(c map[string]string) (string, error) {
	switch dbType := config.GetString(c, DBTypeKey, "postgres"); dbType {
	case "postgres":
		url := config.GetString(c, DatabaseURLKey, "")
		if url == "" {
			return "", errs.NewEnvironmentVariableError(DatabaseURLKey)
		}
		return url, nil
	case "supa":
		host := config.GetString(c, "SUPABASE_DB_HOST", "")
		if host == "" {
			return "", errs.NewEnvironmentVariableError("SUPABASE_DB_HOST")
		}
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=require",
			host,
			config.GetString(c, "SUPABASE_DB_USER", ""),
			config.GetString(c, "SUPABASE_DB_PASSWORD", ""),
			config.GetString(c, "SUPABASE_DB_NAME", ""),
			config.GetString(c, "SUPABASE_DB_PORT", "5432"),
		), nil
	default:
		return "", errs.NewInvalidConfigError(DBTypeKey, fmt.Sprintf("unsupported database type %q", dbType), nil)
	}
}

// Open connects to the primary and, when replicaDSN is set, routes reads to
// the replica through dbresolver.
func Open(dsn, replicaDSN string, gormLogger logger.Interface) (*gorm.DB, error) {
	db, err := gorm.Open(dialector(dsn), newGormConfig(gormLogger))
	if err != nil {
		return nil, errs.NewDatabaseError("connect to", "database", err)
	}

	if replicaDSN != "" {
		err = db.Use(dbresolver.Register(dbresolver.Config{
			Replicas: []gorm.Dialector{dialector(replicaDSN)},
			Policy:   dbresolver.RandomPolicy{},
		}))
		if err != nil {
			return nil, errs.NewDatabaseError("register replica for", "database", err)
		}
	}

	var result int
	if err := db.Raw("SELECT 1").Scan(&result).Error; err != nil {
		return nil, errs.NewDatabaseError("ping", "database", err)
	}

	return db, nil
}

// newGormConfig stamps rows with UTC times at microsecond precision, the
// resolution timestamptz keeps, so a created row reads back unchanged.
func newGormConfig(gormLogger logger.Interface) *gorm.Config {
	return &gorm.Config{
		PrepareStmt: false,
		Logger:      gormLogger,
		NowFunc: func() time.Time {
			return time.Now().UTC().Truncate(time.Microsecond)
		},
	}
}

func dialector(dsn string) gorm.Dialector {
	return postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	})
}
