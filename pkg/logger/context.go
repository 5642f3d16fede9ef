package logger

import (
	"context"

	"go.uber.org/zap"
)

type ctxKey int

const (
	requestIDCtxKey ctxKey = iota
	classroomCtxKey
)

// WithRequestID 将请求 ID 写入 context，供 service 层日志关联
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDCtxKey, id)
}

// WithClassroom 将当前操作的教室代码写入 context
func WithClassroom(ctx context.Context, classroom string) context.Context {
	return context.WithValue(ctx, classroomCtxKey, classroom)
}

// RequestIDFrom 读取请求 ID，不存在时返回空串
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDCtxKey).(string)
	return id
}

// ClassroomFrom 读取教室代码，不存在时返回空串
func ClassroomFrom(ctx context.Context) string {
	classroom, _ := ctx.Value(classroomCtxKey).(string)
	return classroom
}

// FromContext 在 base 上附加 context 中的 request_id 与 classroom 字段
func FromContext(ctx context.Context, base *zap.Logger) *zap.Logger {
	var fields []zap.Field
	if id := RequestIDFrom(ctx); id != "" {
		fields = append(fields, zap.String("request_id", id))
	}
	if classroom := ClassroomFrom(ctx); classroom != "" {
		fields = append(fields, zap.String("classroom", classroom))
	}
	if len(fields) == 0 {
		return base
	}
	return base.With(fields...)
}
