package migrate

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/lk2023060901/coinbot/app/economy/internal/model"
	"github.com/lk2023060901/coinbot/pkg/logger"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

const migrationsDir = "migrations"

// Config 迁移配置
type Config struct {
	// Skip 为 true 时启动不执行迁移
	Skip    bool          `mapstructure:"skip"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{Timeout: 60 * time.Second}
}

// Result 迁移结果
type Result struct {
	From    int64
	To      int64
	Applied int64
}

// Up 将数据库迁移到最新版本；已是最新或被配置跳过时返回 ErrMigrationSkipped
func Up(ctx context.Context, cfg *Config, dsn string, l logger.Logger) (*Result, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.Skip {
		return nil, errors.Wrap(model.ErrMigrationSkipped, "disabled by config")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultConfig().Timeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	defer func() { _ = db.Close() }()

	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(&gooseLogger{l: l.Named("migrate")})
	if err := goose.SetDialect("postgres"); err != nil {
		return nil, fmt.Errorf("failed to set dialect: %w", err)
	}

	from, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("failed to read db version: %w", err)
	}
	if err := goose.UpContext(ctx, db, migrationsDir); err != nil {
		return nil, fmt.Errorf("goose up: %w", err)
	}
	to, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("failed to read db version: %w", err)
	}

	res := &Result{From: from, To: to, Applied: to - from}
	if res.Applied == 0 {
		return res, errors.Wrapf(model.ErrMigrationSkipped, "already at version %d", to)
	}
	return res, nil
}

// gooseLogger 将 goose 输出转到结构化日志
type gooseLogger struct {
	l logger.Logger
}

func (g *gooseLogger) Printf(format string, v ...interface{}) {
	g.l.Info(fmt.Sprintf(format, v...))
}

func (g *gooseLogger) Fatalf(format string, v ...interface{}) {
	g.l.Error(fmt.Sprintf(format, v...))
}
