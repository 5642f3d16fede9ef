package docstore

import (
	"context"
	"encoding/json"
	"reflect"
	"sort"
	"sync"
	"time"

	pkgerrors "github.com/minamirinkan/sample-sub000/pkg/errors"
)

// MemoryStore 进程内文档存储，用于测试与本地开发
// 文档以 JSON 字节保存，读写双方拿到的都是独立副本
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]map[string]memoryDoc
	now  func() time.Time
}

type memoryDoc struct {
	raw       []byte
	updatedAt time.Time
}

// NewMemoryStore 创建空的内存存储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs: make(map[string]map[string]memoryDoc),
		now:  time.Now,
	}
}

func (m *MemoryStore) Get(_ context.Context, collection, key string) (*Document, error) {
	if err := validatePath(collection, key); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	d, ok := m.docs[collection][key]
	if !ok {
		return nil, pkgerrors.ErrNotFound
	}
	return d.toDocument(key)
}

func (m *MemoryStore) Set(_ context.Context, collection, key string, data map[string]interface{}) error {
	if err := validatePath(collection, key); err != nil {
		return err
	}
	raw, err := json.Marshal(PruneNil(data))
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	coll, ok := m.docs[collection]
	if !ok {
		coll = make(map[string]memoryDoc)
		m.docs[collection] = coll
	}
	coll[key] = memoryDoc{raw: raw, updatedAt: m.now()}
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, collection, key string) error {
	if err := validatePath(collection, key); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.docs[collection], key)
	return nil
}

func (m *MemoryStore) Query(_ context.Context, collection, field string, value interface{}) ([]Document, error) {
	if err := validateCollection(collection); err != nil {
		return nil, err
	}
	want, err := normalize(value)
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []Document
	for _, key := range m.sortedKeys(collection) {
		doc, err := m.docs[collection][key].toDocument(key)
		if err != nil {
			return nil, err
		}
		got, ok := lookupField(doc.Data, field)
		if ok && reflect.DeepEqual(got, want) {
			result = append(result, *doc)
		}
	}
	return result, nil
}

func (m *MemoryStore) List(_ context.Context, collection string) ([]Document, error) {
	if err := validateCollection(collection); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]Document, 0, len(m.docs[collection]))
	for _, key := range m.sortedKeys(collection) {
		doc, err := m.docs[collection][key].toDocument(key)
		if err != nil {
			return nil, err
		}
		result = append(result, *doc)
	}
	return result, nil
}

func (m *MemoryStore) Close() error { return nil }

// Len 返回集合内文档数量（测试辅助）
func (m *MemoryStore) Len(collection string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.docs[collection])
}

func (m *MemoryStore) sortedKeys(collection string) []string {
	keys := make([]string, 0, len(m.docs[collection]))
	for k := range m.docs[collection] {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (d memoryDoc) toDocument(key string) (*Document, error) {
	var data map[string]interface{}
	if err := json.Unmarshal(d.raw, &data); err != nil {
		return nil, err
	}
	return &Document{Key: key, Data: data, UpdatedAt: d.updatedAt}, nil
}

// normalize 让查询值与 JSON 解码后的类型一致（int → float64 等）
func normalize(v interface{}) (interface{}, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
