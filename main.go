package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm/logger"

	"github.com/rpupo63/portfolio-backend/api"
	"github.com/rpupo63/portfolio-backend/config"
	"github.com/rpupo63/portfolio-backend/database"
	"github.com/rpupo63/portfolio-backend/models"
	"github.com/rpupo63/portfolio-backend/security"
	"github.com/rpupo63/portfolio-backend/services"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Warning: Error loading .env file: %v\n", err)
	}

	c := config.New()
	setupLogging(c)

	log.Info().Msg("Initializing app...")

	ctx := context.Background()

	if prefix := config.GetString(c, config.SSMParameterPrefixKey, ""); prefix != "" {
		ssmClient, err := config.NewSSMClient(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("Error creating SSM client")
		}
		if err := config.OverlaySSM(ctx, c, ssmClient, prefix); err != nil {
			log.Fatal().Err(err).Msg("Error reading credentials from SSM")
		}
	}

	credentials, err := config.LoadAdminCredentials(c)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid admin credentials configuration")
	}

	issuer, err := security.NewTokenIssuer(credentials.SigningSecret)
	if err != nil {
		log.Fatal().Err(err).Msg("Error creating token issuer")
	}

	dsn, err := database.DSN(c)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid database configuration")
	}

	log.Info().Str("dbType", config.GetString(c, database.DBTypeKey, "postgres")).Msg("Connecting to database...")
	db, err := database.Open(dsn, config.GetString(c, database.DatabaseReplicaURLKey, ""), newGormLogger())
	if err != nil {
		log.Fatal().Err(err).Msg("Error connecting to database")
	}

	// If generating models, run generation and exit
	if config.GetBool(c, "GENERATE_MODELS", false) {
		log.Info().Msg("Generating models and query helpers...")
		if err := models.GenerateModels(db, config.GetString(c, "GENERATE_MODELS_OUT", "./generated")); err != nil {
			log.Fatal().Err(err).Msg("Error generating models")
		}
		return
	}

	// If generating column mismatch report, run report and exit
	if config.GetBool(c, "GENERATE_COLUMN_REPORT", false) {
		log.Info().Msg("Generating column mismatch report...")
		if err := models.LogColumnMismatchReport(db); err != nil {
			log.Fatal().Err(err).Msg("Error generating column mismatch report")
		}
		return
	}

	currentDB := database.New(db)

	if config.GetBool(c, "RESET_DB", false) {
		log.Warn().Msg("RESET_DB is set, dropping and recreating tables")
		if err := currentDB.Reset(ctx); err != nil {
			log.Fatal().Err(err).Msg("Error resetting database")
		}
	} else if err := currentDB.Migrate(ctx); err != nil {
		log.Fatal().Err(err).Msg("Error migrating database")
	}

	// Room for both the listener and the signal watcher.
	errChannel := make(chan error, 2)

	authService := services.NewAuthService(credentials, issuer)
	server, err := api.NewServer(currentDB.ProjectRepo(), authService, c)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing server")
	}

	go server.Start(errChannel)

	// Listen for interrupt signals to gracefully shutdown the server
	go listenToInterrupt(errChannel)

	fatalErr := <-errChannel
	log.Info().Msgf("Closing server: %v", fatalErr)

	server.ShutdownGracefully(30 * time.Second)
}

func setupLogging(c map[string]string) {
	zerolog.TimeFieldFormat = time.RFC3339

	level, err := zerolog.ParseLevel(strings.ToLower(config.GetString(c, "LOG_LEVEL", "info")))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if config.GetString(c, "ENV", "") == "dev" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}

func newGormLogger() logger.Interface {
	return logger.New(
		gormLogWriter{},
		logger.Config{
			SlowThreshold:             10 * time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}

// gormLogWriter forwards gorm's slow query and error lines at warn level.
type gormLogWriter struct{}

func (gormLogWriter) Printf(format string, args ...interface{}) {
	log.Warn().Str("component", "gorm").Msgf(format, args...)
}

// listenToInterrupt waits for SIGINT or SIGTERM and then sends an error to the error channel.
func listenToInterrupt(errChannel chan<- error) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	errChannel <- fmt.Errorf("%s", <-c)
}
