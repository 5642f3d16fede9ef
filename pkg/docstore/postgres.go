package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	pkgerrors "github.com/minamirinkan/sample-sub000/pkg/errors"
)

// documentRecord documents 表：一行一个文档，正文为 JSONB
type documentRecord struct {
	Collection string         `gorm:"type:varchar(255);primaryKey"`
	DocKey     string         `gorm:"column:doc_key;type:varchar(255);primaryKey"`
	Data       datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt  time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt  time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (documentRecord) TableName() string { return "documents" }

// PostgresStore 基于 PostgreSQL JSONB 的文档存储
type PostgresStore struct {
	db *gorm.DB
}

// NewPostgresStore 创建 PostgreSQL 文档存储（表结构由 database.RunMigrations 维护）
func NewPostgresStore(db *gorm.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Get(ctx context.Context, collection, key string) (*Document, error) {
	if err := validatePath(collection, key); err != nil {
		return nil, err
	}
	var rec documentRecord
	err := s.db.WithContext(ctx).
		Where("collection = ? AND doc_key = ?", collection, key).
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.ErrNotFound
		}
		return nil, err
	}
	return rec.toDocument()
}

// Set 整体覆盖写入（upsert），与 Firestore 的 Set 语义一致
func (s *PostgresStore) Set(ctx context.Context, collection, key string, data map[string]interface{}) error {
	if err := validatePath(collection, key); err != nil {
		return err
	}
	raw, err := json.Marshal(PruneNil(data))
	if err != nil {
		return err
	}
	rec := documentRecord{
		Collection: collection,
		DocKey:     key,
		Data:       datatypes.JSON(raw),
		UpdatedAt:  time.Now(),
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "collection"}, {Name: "doc_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
		}).
		Create(&rec).Error
}

func (s *PostgresStore) Delete(ctx context.Context, collection, key string) error {
	if err := validatePath(collection, key); err != nil {
		return err
	}
	return s.db.WithContext(ctx).
		Where("collection = ? AND doc_key = ?", collection, key).
		Delete(&documentRecord{}).Error
}

func (s *PostgresStore) Query(ctx context.Context, collection, field string, value interface{}) ([]Document, error) {
	if err := validateCollection(collection); err != nil {
		return nil, err
	}
	var recs []documentRecord
	err := s.db.WithContext(ctx).
		Where("collection = ?", collection).
		Where(datatypes.JSONQuery("data").Equals(value, strings.Split(field, ".")...)).
		Order("doc_key ASC").
		Find(&recs).Error
	if err != nil {
		return nil, err
	}
	return toDocuments(recs)
}

func (s *PostgresStore) List(ctx context.Context, collection string) ([]Document, error) {
	if err := validateCollection(collection); err != nil {
		return nil, err
	}
	var recs []documentRecord
	err := s.db.WithContext(ctx).
		Where("collection = ?", collection).
		Order("doc_key ASC").
		Find(&recs).Error
	if err != nil {
		return nil, err
	}
	return toDocuments(recs)
}

// Close 连接由 Open 返回的包装统一关闭
func (s *PostgresStore) Close() error { return nil }

func (r *documentRecord) toDocument() (*Document, error) {
	var data map[string]interface{}
	if err := json.Unmarshal(r.Data, &data); err != nil {
		return nil, err
	}
	return &Document{Key: r.DocKey, Data: data, UpdatedAt: r.UpdatedAt}, nil
}

func toDocuments(recs []documentRecord) ([]Document, error) {
	result := make([]Document, 0, len(recs))
	for i := range recs {
		doc, err := recs[i].toDocument()
		if err != nil {
			return nil, err
		}
		result = append(result, *doc)
	}
	return result, nil
}
