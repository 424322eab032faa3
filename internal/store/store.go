package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"

	"github.com/roach88/facets/internal/querysql"
)

// Supported driver names.
const (
	DriverSQLite3 = "sqlite3" // mattn/go-sqlite3 (cgo)
	DriverSQLite  = "sqlite"  // modernc.org/sqlite (pure Go)
	DriverMySQL   = "mysql"   // go-sql-driver/mysql
)

// Record is one fetched row keyed by column name.
type Record map[string]any

// MySQLConfig holds discrete MySQL connection settings. It is used when
// Config.DSN is empty.
type MySQLConfig struct {
	User     string `yaml:"user" json:"user"`
	Password string `yaml:"password" json:"password"`
	Addr     string `yaml:"addr" json:"addr"`
	DBName   string `yaml:"db" json:"db"`
}

// Config selects a driver and data source.
type Config struct {
	Driver string       `yaml:"driver" json:"driver"`
	DSN    string       `yaml:"dsn" json:"dsn"`
	MySQL  *MySQLConfig `yaml:"mysql,omitempty" json:"mysql,omitempty"`
}

// Store runs compiled faceted queries against a relational database.
type Store struct {
	db      *sqlx.DB
	dialect querysql.Dialect
	logger  *slog.Logger
}

// Open connects to the database described by cfg.
//
// SQLite databases are configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode
//   - 5-second busy timeout for lock contention
//   - a single open connection, so ":memory:" databases stay shared
func Open(cfg Config) (*Store, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = DriverSQLite3
	}

	dsn, err := dataSource(driver, cfg)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	dialect := querysql.MySQL
	if driver != DriverMySQL {
		dialect = querysql.SQLite

		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)

		if err := applyPragmas(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply pragmas: %w", err)
		}
	}

	return &Store{
		db:      db,
		dialect: dialect,
		logger:  slog.Default().With("component", "store", "driver", driver),
	}, nil
}

func dataSource(driver string, cfg Config) (string, error) {
	switch driver {
	case DriverSQLite3, DriverSQLite:
		if cfg.DSN == "" {
			return ":memory:", nil
		}
		return cfg.DSN, nil

	case DriverMySQL:
		if cfg.DSN != "" {
			return cfg.DSN, nil
		}
		if cfg.MySQL == nil {
			return "", fmt.Errorf("mysql driver requires a dsn or mysql settings")
		}
		mc := mysql.NewConfig()
		mc.User = cfg.MySQL.User
		mc.Passwd = cfg.MySQL.Password
		mc.Net = "tcp"
		mc.Addr = cfg.MySQL.Addr
		mc.DBName = cfg.MySQL.DBName
		mc.ParseTime = true
		return mc.FormatDSN(), nil

	default:
		return "", fmt.Errorf("unsupported driver %q", driver)
	}
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying connection for direct queries.
func (s *Store) DB() *sqlx.DB {
	return s.db
}

// Dialect reports which SQL flavor statements for this store must use.
func (s *Store) Dialect() querysql.Dialect {
	return s.dialect
}

// Exec runs a statement that returns no rows, such as fixture setup.
func (s *Store) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return s.db.ExecContext(ctx, query, args...)
}

// Count runs a COUNT(*) statement and returns the single integer result.
// Slice arguments are expanded into IN lists.
func (s *Store) Count(ctx context.Context, query string, args ...any) (int, error) {
	query, args, err := s.expand(query, args)
	if err != nil {
		return 0, err
	}

	s.logger.Debug("count", "sql", query, "args", len(args))

	var n int
	if err := s.db.GetContext(ctx, &n, query, args...); err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return n, nil
}

// Select runs a query and returns every row as a Record. Text columns the
// driver reports as []byte are returned as strings.
// Slice arguments are expanded into IN lists.
func (s *Store) Select(ctx context.Context, query string, args ...any) ([]Record, error) {
	query, args, err := s.expand(query, args)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("select", "sql", query, "args", len(args))

	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		row := make(map[string]any)
		if err := rows.MapScan(row); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		for k, v := range row {
			if b, ok := v.([]byte); ok {
				row[k] = string(b)
			}
		}
		records = append(records, Record(row))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return records, nil
}

// expand rewrites "IN (?)" placeholders bound to slices and rebinds the
// statement for the driver.
func (s *Store) expand(query string, args []any) (string, []any, error) {
	query, args, err := sqlx.In(query, args...)
	if err != nil {
		return "", nil, fmt.Errorf("expand IN arguments: %w", err)
	}
	return s.db.Rebind(query), args, nil
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sqlx.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := s.db.QueryRow(query).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
