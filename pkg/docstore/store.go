// Package docstore 提供集合/文档寻址的文档存储抽象。
//
// 时间表、节次、费用主表等业务数据都以"集合 + 文档键 → JSON 对象"的形式保存，
// 与底层是 Firestore、PostgreSQL(JSONB) 还是内存无关。集合可以是子集合路径，
// 如 "FeeMaster/202509_047/categories"。
package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	pkgerrors "github.com/minamirinkan/sample-sub000/pkg/errors"
)

// Document 一条存储文档
type Document struct {
	Key       string
	Data      map[string]interface{}
	UpdatedAt time.Time
}

// Store 文档存储接口
// 未找到文档时统一返回 pkgerrors.ErrNotFound
type Store interface {
	Get(ctx context.Context, collection, key string) (*Document, error)
	Set(ctx context.Context, collection, key string, data map[string]interface{}) error
	Delete(ctx context.Context, collection, key string) error
	// Query 按字段等值过滤集合，field 支持 "teacher.code" 形式的嵌套路径
	Query(ctx context.Context, collection, field string, value interface{}) ([]Document, error)
	List(ctx context.Context, collection string) ([]Document, error)
	Close() error
}

// Encode 将任意结构体转为可写入存储的 map，并递归剔除 nil 字段
// 存储后端不接受未定义值，写入前必须经过这一步
func Encode(v interface{}) (map[string]interface{}, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("编码文档失败: %w", err)
	}
	var data map[string]interface{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("编码文档失败: %w", err)
	}
	return PruneNil(data), nil
}

// Decode 将存储中的 map 解码到目标结构体
func Decode(data map[string]interface{}, v interface{}) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("解码文档失败: %w", err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("解码文档失败: %w", err)
	}
	return nil
}

// PruneNil 递归删除值为 nil 的字段，切片内元素保留但会继续向下清理
func PruneNil(data map[string]interface{}) map[string]interface{} {
	for k, v := range data {
		if v == nil {
			delete(data, k)
			continue
		}
		data[k] = pruneValue(v)
	}
	return data
}

func pruneValue(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		return PruneNil(t)
	case []interface{}:
		for i := range t {
			t[i] = pruneValue(t[i])
		}
		return t
	default:
		return v
	}
}

// lookupField 按点分路径读取嵌套字段
func lookupField(data map[string]interface{}, field string) (interface{}, bool) {
	var cur interface{} = data
	for _, part := range strings.Split(field, ".") {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func validatePath(collection, key string) error {
	if collection == "" || strings.HasPrefix(collection, "/") || strings.HasSuffix(collection, "/") {
		return pkgerrors.ErrInvalidPath
	}
	// 集合路径段数必须为奇数：coll 或 coll/doc/subcoll
	if strings.Count(collection, "/")%2 != 0 {
		return pkgerrors.ErrInvalidPath
	}
	if key == "" || strings.Contains(key, "/") {
		return pkgerrors.ErrInvalidPath
	}
	return nil
}

func validateCollection(collection string) error {
	return validatePath(collection, "_")
}
