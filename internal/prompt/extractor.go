// Package prompt 把结构化提示词树扁平化为可检索的属性集
package prompt

import (
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// sentinelPrefix 模板继承机制保留的结构性 key 前缀（如 _base）
// 这类 key 描述的是模板结构而非画面内容，不参与属性索引。
const sentinelPrefix = "_"

// Attribute 一条派生属性
type Attribute struct {
	Key   string
	Value string
}

// ParseTree 把已解析的提示词文本按 YAML 解析为对象树
// 纯文本提示词会解析为标量或直接失败，两种情况都返回错误，
// 由调用方决定跳过属性索引。
func ParseTree(text string) (map[string]interface{}, error) {
	var root interface{}
	if err := yaml.Unmarshal([]byte(text), &root); err != nil {
		return nil, fmt.Errorf("prompt is not structured data: %w", err)
	}

	tree, ok := root.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("prompt root is not a mapping")
	}
	return tree, nil
}

// Extract 深度优先地把对象树扁平化为属性列表
// 纯函数，对任何输入都不会 panic；非对象根返回空列表。
// 规则：
//   - 哨兵前缀 key 整体跳过
//   - nil 值跳过
//   - 子 map 递归，路径用 "." 连接
//   - 标量序列合并为一个逗号分隔的值，只含非标量元素的序列不产生属性
//   - 标量按字符串存储
func Extract(tree map[string]interface{}) []Attribute {
	if tree == nil {
		return []Attribute{}
	}

	attrs := make([]Attribute, 0, len(tree))
	flatten("", tree, &attrs)

	sort.Slice(attrs, func(i, j int) bool { return attrs[i].Key < attrs[j].Key })
	return attrs
}

func flatten(prefix string, tree map[string]interface{}, attrs *[]Attribute) {
	for key, value := range tree {
		if strings.HasPrefix(key, sentinelPrefix) {
			continue
		}
		if value == nil {
			continue
		}

		path := key
		if prefix != "" {
			path = prefix + "." + key
		}

		switch v := value.(type) {
		case map[string]interface{}:
			flatten(path, v, attrs)
		case []interface{}:
			if joined, ok := joinScalars(v); ok {
				*attrs = append(*attrs, Attribute{Key: path, Value: joined})
			}
		default:
			if s, ok := formatScalar(value); ok {
				*attrs = append(*attrs, Attribute{Key: path, Value: s})
			}
		}
	}
}

// joinScalars 把序列中的标量元素合并为 ", " 分隔的字符串
// 序列里没有任何标量时返回 ok=false。
func joinScalars(seq []interface{}) (string, bool) {
	parts := make([]string, 0, len(seq))
	for _, elem := range seq {
		if s, ok := formatScalar(elem); ok {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		return "", false
	}
	return strings.Join(parts, ", "), true
}

// formatScalar 把标量值转为字符串，非标量返回 ok=false
func formatScalar(value interface{}) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case bool, int, int64, uint64, float32, float64:
		return fmt.Sprintf("%v", v), true
	default:
		return "", false
	}
}
