package repositories

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"eventsScraper/internal/config"
)

// ErrNotFound — запись с таким ключом отсутствует.
var ErrNotFound = errors.New("not found")

const (
	DriverPostgres = "postgres"
	DriverPgx      = "pgx"
	DriverSqlite   = "sqlite"
)

func init() {
	sqlx.BindDriver(DriverSqlite, sqlx.QUESTION)
}

// Repository — хранилище событий и реестр заведений поверх sqlx.
// Запросы пишутся с "?" и переписываются под драйвер через Rebind.
type Repository struct {
	logger *slog.Logger
	DB     *sqlx.DB
	now    func() time.Time
}

// New открывает соединение по настройкам и применяет схему.
func New(logger *slog.Logger, cfg *config.Config) (*Repository, error) {
	op := "Repository.New()"
	log := logger.With(
		slog.String("op", op),
		slog.String("driver", cfg.DBConfig.Driver),
	)

	db, err := Open(cfg.DBConfig.Driver, DSN(cfg.DBConfig))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: ping: %w", op, err)
	}

	r := NewWithDB(logger, db)
	if err := r.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("repository connected")

	return r, nil
}

// NewWithDB оборачивает уже открытое соединение.
func NewWithDB(logger *slog.Logger, db *sqlx.DB) *Repository {
	return &Repository{
		logger: logger,
		DB:     db,
		now:    time.Now,
	}
}

// Open открывает базу для postgres (lib/pq), pgx или sqlite.
// У sqlite одно соединение: база ":memory:" живёт внутри соединения.
func Open(driver, dsn string) (*sqlx.DB, error) {
	switch driver {
	case DriverPostgres, DriverPgx, DriverSqlite:
	default:
		return nil, fmt.Errorf("unknown sql driver %q", driver)
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == DriverSqlite {
		db.SetMaxOpenConns(1)
	}

	return db, nil
}

// DSN собирает строку подключения. Явно заданный dsn имеет приоритет.
func DSN(cfg config.DBConfig) string {
	if cfg.DSN != "" {
		return cfg.DSN
	}
	if cfg.Driver == DriverSqlite {
		return "eventsScraper.db"
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name)
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS whatstheplace (
		id TEXT PRIMARY KEY,
		place_id TEXT NOT NULL UNIQUE,
		formatted_address TEXT NOT NULL DEFAULT '',
		lat DOUBLE PRECISION NOT NULL DEFAULT 0,
		lng DOUBLE PRECISION NOT NULL DEFAULT 0,
		display_name TEXT NOT NULL DEFAULT '',
		manager_account TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS events (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		start_date TEXT,
		end_date TEXT,
		price DOUBLE PRECISION NOT NULL DEFAULT 0,
		age_restriction TEXT NOT NULL DEFAULT '',
		artist_names TEXT NOT NULL DEFAULT '[]',
		artists TEXT NOT NULL DEFAULT '[]',
		genres TEXT NOT NULL DEFAULT '[]',
		manager_account TEXT NOT NULL DEFAULT '',
		payment_portal TEXT NOT NULL UNIQUE,
		event_image_url TEXT NOT NULL DEFAULT '',
		venue TEXT NOT NULL DEFAULT '',
		venue_id TEXT NOT NULL DEFAULT '',
		whatstheplace TEXT NOT NULL DEFAULT '',
		source TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
}

// Migrate создаёт таблицы, если их ещё нет.
func (r *Repository) Migrate(ctx context.Context) error {
	op := "Repository.Migrate()"

	for _, stmt := range schema {
		if _, err := r.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	return nil
}

func (r *Repository) timestamp() string {
	return r.now().UTC().Format(time.RFC3339)
}

// Shutdown закрывает соединение с базой.
func (r *Repository) Shutdown(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("force exit repository: %w", ctx.Err())
	default:
		if err := r.DB.Close(); err != nil {
			return fmt.Errorf("close repository: %w", err)
		}
		return nil
	}
}
