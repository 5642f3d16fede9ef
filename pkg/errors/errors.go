package errors

import "errors"

// ErrNotFound 文档不存在：所有文档存储后端统一返回此错误
var ErrNotFound = errors.New("文档不存在")

// ErrInvalidPath 集合或文档键为空、或包含非法分隔符
var ErrInvalidPath = errors.New("无效的集合或文档路径")
