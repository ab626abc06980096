package image

import "errors"

// ErrDuplicateFilename filename 唯一约束冲突
// 文件名冲突意味着调用方 bug 或 ID 生成碰撞，必须显式失败而不是静默 upsert。
var ErrDuplicateFilename = errors.New("filename already exists")

// ErrInvalidInput 创建输入不合法
var ErrInvalidInput = errors.New("invalid input")
