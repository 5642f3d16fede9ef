package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// MigrationsTable 文档存储专用的版本表，避免与同库其他服务的 schema_migrations 冲突
const MigrationsTable = "docstore_schema_migrations"

// ErrDirtySchema 上次迁移中途失败，需要人工修复后再启动
var ErrDirtySchema = errors.New("文档表迁移处于 dirty 状态")

func migrationSource() (source.Driver, error) {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("加载迁移文件失败: %w", err)
	}
	return src, nil
}

// LatestVersion 内嵌迁移文件中的最高版本
func LatestVersion() (uint, error) {
	src, err := migrationSource()
	if err != nil {
		return 0, err
	}
	defer src.Close()

	v, err := src.First()
	if err != nil {
		return 0, fmt.Errorf("没有可用的迁移文件: %w", err)
	}
	for {
		next, err := src.Next(v)
		if errors.Is(err, os.ErrNotExist) {
			return v, nil
		}
		if err != nil {
			return 0, err
		}
		v = next
	}
}

// RunMigrations 执行 documents 文档表迁移，返回迁移后的版本
// dirty 状态直接报错；库中版本高于内嵌版本（旧二进制连新库）时同样拒绝启动
func RunMigrations(db *sql.DB, logger *zap.Logger) (uint, error) {
	latest, err := LatestVersion()
	if err != nil {
		return 0, err
	}
	src, err := migrationSource()
	if err != nil {
		return 0, err
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{MigrationsTable: MigrationsTable})
	if err != nil {
		return 0, fmt.Errorf("创建迁移驱动失败: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return 0, fmt.Errorf("初始化迁移实例失败: %w", err)
	}

	current, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return 0, fmt.Errorf("读取迁移版本失败: %w", err)
	}
	if dirty {
		return current, fmt.Errorf("%w: version=%d", ErrDirtySchema, current)
	}
	if current > latest {
		return current, fmt.Errorf("数据库版本 %d 高于程序内置版本 %d", current, latest)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("执行迁移失败: %w", err)
	}

	logger.Info("文档表迁移完成",
		zap.String("table", MigrationsTable),
		zap.Uint("from", current),
		zap.Uint("to", latest),
	)
	return latest, nil
}
