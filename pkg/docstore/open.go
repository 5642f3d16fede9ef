package docstore

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/minamirinkan/sample-sub000/config"
	"github.com/minamirinkan/sample-sub000/pkg/database"
)

// Open 按 store.driver 创建文档存储
// postgres 驱动会先执行迁移；返回的 Store.Close 负责释放底层连接
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (Store, error) {
	switch cfg.Store.Driver {
	case config.StoreDriverMemory:
		logger.Warn("使用内存文档存储，进程退出后数据丢失")
		return NewMemoryStore(), nil

	case config.StoreDriverPostgres:
		db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("获取底层 sql.DB 失败: %w", err)
		}
		if _, err := database.RunMigrations(sqlDB, logger); err != nil {
			sqlDB.Close()
			return nil, err
		}
		return &closingStore{Store: NewPostgresStore(db), close: sqlDB.Close}, nil

	case config.StoreDriverFirestore:
		return NewFirestoreStore(ctx, &cfg.Firestore, logger)

	default:
		return nil, fmt.Errorf("未知的 store.driver %q", cfg.Store.Driver)
	}
}

// closingStore 关闭时同时释放数据库连接
type closingStore struct {
	Store
	close func() error
}

func (s *closingStore) Close() error {
	if err := s.Store.Close(); err != nil {
		return err
	}
	return s.close()
}
