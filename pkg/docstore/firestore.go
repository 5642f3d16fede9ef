package docstore

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/minamirinkan/sample-sub000/config"
	pkgerrors "github.com/minamirinkan/sample-sub000/pkg/errors"
)

// FirestoreStore 基于 Cloud Firestore 的文档存储
type FirestoreStore struct {
	client *firestore.Client
}

// NewFirestoreStore 创建 Firestore 客户端
// 未配置凭据时使用运行环境的默认凭据（ADC）
func NewFirestoreStore(ctx context.Context, cfg *config.FirestoreConfig, logger *zap.Logger) (*FirestoreStore, error) {
	var opts []option.ClientOption
	switch {
	case cfg.CredentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	case cfg.CredentialsJSON != "":
		opts = append(opts, option.WithCredentialsJSON([]byte(cfg.CredentialsJSON)))
	}

	client, err := firestore.NewClient(ctx, cfg.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("Firestore 连接失败: %w", err)
	}

	logger.Info("Firestore 连接成功", zap.String("project_id", cfg.ProjectID))
	return &FirestoreStore{client: client}, nil
}

func (s *FirestoreStore) doc(collection, key string) (*firestore.DocumentRef, error) {
	if err := validatePath(collection, key); err != nil {
		return nil, err
	}
	coll := s.client.Collection(collection)
	if coll == nil {
		return nil, pkgerrors.ErrInvalidPath
	}
	return coll.Doc(key), nil
}

func (s *FirestoreStore) Get(ctx context.Context, collection, key string) (*Document, error) {
	ref, err := s.doc(collection, key)
	if err != nil {
		return nil, err
	}
	snap, err := ref.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, pkgerrors.ErrNotFound
		}
		return nil, err
	}
	return snapshotToDocument(snap), nil
}

func (s *FirestoreStore) Set(ctx context.Context, collection, key string, data map[string]interface{}) error {
	ref, err := s.doc(collection, key)
	if err != nil {
		return err
	}
	_, err = ref.Set(ctx, PruneNil(data))
	return err
}

func (s *FirestoreStore) Delete(ctx context.Context, collection, key string) error {
	ref, err := s.doc(collection, key)
	if err != nil {
		return err
	}
	_, err = ref.Delete(ctx)
	return err
}

func (s *FirestoreStore) Query(ctx context.Context, collection, field string, value interface{}) ([]Document, error) {
	if err := validateCollection(collection); err != nil {
		return nil, err
	}
	iter := s.client.Collection(collection).Where(field, "==", value).Documents(ctx)
	return drain(iter)
}

func (s *FirestoreStore) List(ctx context.Context, collection string) ([]Document, error) {
	if err := validateCollection(collection); err != nil {
		return nil, err
	}
	iter := s.client.Collection(collection).Documents(ctx)
	return drain(iter)
}

func (s *FirestoreStore) Close() error {
	return s.client.Close()
}

func drain(iter *firestore.DocumentIterator) ([]Document, error) {
	defer iter.Stop()

	var result []Document
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}
		result = append(result, *snapshotToDocument(snap))
	}
	return result, nil
}

func snapshotToDocument(snap *firestore.DocumentSnapshot) *Document {
	return &Document{
		Key:       snap.Ref.ID,
		Data:      snap.Data(),
		UpdatedAt: snap.UpdateTime,
	}
}
