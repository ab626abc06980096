package storage

import "context"

// Provider 存储提供者接口 - 依赖倒置的核心抽象
// 本子系统不读写图片字节本身，只需要枚举与存在性检查，
// 用于数据库记录与实际文件之间的一致性核对。
type Provider interface {
	// ListIdentifiers 枚举存储中全部制品的标识符
	// 制品按 "<id>.<ext>" 命名，返回文件名去掉扩展名后的部分。
	ListIdentifiers(ctx context.Context) ([]string, error)

	// Exists 检查标识符对应的制品是否存在
	Exists(ctx context.Context, identifier string) (bool, error)

	// Health 检查存储健康状态
	Health(ctx context.Context) error

	// Name 返回存储名称
	Name() string
}
