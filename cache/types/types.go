// Package types 定义缓存实现共享的错误类型
package types

// ErrCacheMiss 缓存未命中错误
var ErrCacheMiss = &cacheMissError{}

type cacheMissError struct{}

func (e *cacheMissError) Error() string {
	return "cache miss"
}

// IsCacheMiss 判断是否为缓存未命中错误
func IsCacheMiss(err error) bool {
	if err == nil {
		return false
	}
	_, ok := err.(*cacheMissError)
	return ok
}
