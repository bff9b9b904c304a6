package infra

import (
	"embed"
	"fmt"
	"net/url"
	"strings"

	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// NewDatabase establishes a GORM connection backed by pgx and applies the
// embedded goose migrations. The session time zone is pinned to the shop zone
// so that `date` casts and comparisons agree with the application clock.
func NewDatabase(dsn, zona string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(withTimeZone(dsn, zona)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, fmt.Errorf("migrations: %w", err)
	}
	return db, nil
}

// RunMigrations applies every pending migration under migrations/.
// Schema is managed exclusively through these files, never AutoMigrate.
func RunMigrations(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	goose.SetBaseFS(migrationsFS)
	goose.SetLogger(gooseLogger{})
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.Up(sqlDB, "migrations")
}

// withTimeZone adds the timezone runtime parameter to either DSN form.
func withTimeZone(dsn, zona string) string {
	if zona == "" {
		return dsn
	}
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		u, err := url.Parse(dsn)
		if err != nil {
			return dsn
		}
		q := u.Query()
		if q.Get("timezone") == "" {
			q.Set("timezone", zona)
		}
		u.RawQuery = q.Encode()
		return u.String()
	}
	if strings.Contains(strings.ToLower(dsn), "timezone=") {
		return dsn
	}
	return dsn + " TimeZone=" + zona
}

type gooseLogger struct{}

func (gooseLogger) Fatalf(format string, v ...interface{}) {
	log.Fatal().Msgf("goose: "+format, v...)
}

func (gooseLogger) Printf(format string, v ...interface{}) {
	log.Info().Msgf("goose: "+strings.TrimSuffix(format, "\n"), v...)
}
