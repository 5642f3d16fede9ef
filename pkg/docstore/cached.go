package docstore

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"
)

// Cache 字节级缓存接口，由 pkg/redis.Client 实现
type Cache interface {
	GetBytes(ctx context.Context, key string) ([]byte, bool, error)
	SetBytes(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

const cacheKeyPrefix = "docstore:"

// CachedStore 读穿透缓存：Get 命中缓存直接返回，写入/删除后失效对应键
// 缓存异常一律降级到底层存储，不影响主流程
type CachedStore struct {
	inner  Store
	cache  Cache
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedStore 用缓存包装底层存储
func NewCachedStore(inner Store, cache Cache, ttl time.Duration, logger *zap.Logger) *CachedStore {
	return &CachedStore{inner: inner, cache: cache, ttl: ttl, logger: logger}
}

type cachedDocument struct {
	Data      map[string]interface{} `json:"data"`
	UpdatedAt time.Time              `json:"updated_at"`
}

func cacheKey(collection, key string) string {
	return cacheKeyPrefix + collection + "/" + key
}

func (s *CachedStore) Get(ctx context.Context, collection, key string) (*Document, error) {
	ck := cacheKey(collection, key)

	raw, ok, err := s.cache.GetBytes(ctx, ck)
	if err != nil {
		s.logger.Warn("读取文档缓存失败，降级读取存储", zap.String("key", ck), zap.Error(err))
	}
	if ok {
		var cd cachedDocument
		if err := json.Unmarshal(raw, &cd); err == nil {
			return &Document{Key: key, Data: cd.Data, UpdatedAt: cd.UpdatedAt}, nil
		}
		s.logger.Warn("文档缓存内容损坏", zap.String("key", ck))
	}

	doc, err := s.inner.Get(ctx, collection, key)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(cachedDocument{Data: doc.Data, UpdatedAt: doc.UpdatedAt}); err == nil {
		if err := s.cache.SetBytes(ctx, ck, raw, s.ttl); err != nil {
			s.logger.Warn("写入文档缓存失败", zap.String("key", ck), zap.Error(err))
		}
	}
	return doc, nil
}

func (s *CachedStore) Set(ctx context.Context, collection, key string, data map[string]interface{}) error {
	if err := s.inner.Set(ctx, collection, key, data); err != nil {
		return err
	}
	s.invalidate(ctx, collection, key)
	return nil
}

func (s *CachedStore) Delete(ctx context.Context, collection, key string) error {
	if err := s.inner.Delete(ctx, collection, key); err != nil {
		return err
	}
	s.invalidate(ctx, collection, key)
	return nil
}

// Query 与 List 结果集随写入变化，不做缓存
func (s *CachedStore) Query(ctx context.Context, collection, field string, value interface{}) ([]Document, error) {
	return s.inner.Query(ctx, collection, field, value)
}

func (s *CachedStore) List(ctx context.Context, collection string) ([]Document, error) {
	return s.inner.List(ctx, collection)
}

func (s *CachedStore) Close() error {
	return s.inner.Close()
}

func (s *CachedStore) invalidate(ctx context.Context, collection, key string) {
	ck := cacheKey(collection, key)
	if err := s.cache.Delete(ctx, ck); err != nil {
		s.logger.Warn("清除文档缓存失败", zap.String("key", ck), zap.Error(err))
	}
}
