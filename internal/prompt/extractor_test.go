package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// --- 测试 ParseTree ---

func TestParseTree_Mapping(t *testing.T) {
	tree, err := ParseTree("subject:\n  animal: fox\nstyle: watercolor\n")
	assert.NoError(t, err)
	assert.NotNil(t, tree)
	assert.Contains(t, tree, "subject")
	assert.Contains(t, tree, "style")
}

func TestParseTree_PlainText(t *testing.T) {
	// 纯文本提示词解析为标量而非映射
	tree, err := ParseTree("a red fox in the snow")
	assert.Error(t, err)
	assert.Nil(t, tree)
}

func TestParseTree_Malformed(t *testing.T) {
	tree, err := ParseTree("subject: [unclosed\n  broken: {")
	assert.Error(t, err)
	assert.Nil(t, tree)
}

// --- 测试 Extract ---

func attrMap(attrs []Attribute) map[string]string {
	out := make(map[string]string, len(attrs))
	for _, a := range attrs {
		out[a.Key] = a.Value
	}
	return out
}

func TestExtract_NestedMapping(t *testing.T) {
	attrs := Extract(map[string]interface{}{
		"a": map[string]interface{}{
			"b": "x",
			"c": []interface{}{1, 2},
		},
	})

	assert.Equal(t, map[string]string{
		"a.b": "x",
		"a.c": "1, 2",
	}, attrMap(attrs))
}

func TestExtract_SentinelKeysSkipped(t *testing.T) {
	attrs := Extract(map[string]interface{}{
		"_base": "portrait_template",
		"style": "noir",
		"subject": map[string]interface{}{
			"_variant": 3,
			"animal":   "fox",
		},
	})

	assert.Equal(t, map[string]string{
		"style":          "noir",
		"subject.animal": "fox",
	}, attrMap(attrs))
}

func TestExtract_NilValuesSkipped(t *testing.T) {
	attrs := Extract(map[string]interface{}{
		"style":   nil,
		"subject": "fox",
	})

	assert.Equal(t, map[string]string{"subject": "fox"}, attrMap(attrs))
}

func TestExtract_ScalarFormatting(t *testing.T) {
	attrs := Extract(map[string]interface{}{
		"steps":   30,
		"cfg":     7.5,
		"hires":   true,
		"sampler": "euler",
		"weights": []interface{}{0.6, "low", false},
	})

	assert.Equal(t, map[string]string{
		"steps":   "30",
		"cfg":     "7.5",
		"hires":   "true",
		"sampler": "euler",
		"weights": "0.6, low, false",
	}, attrMap(attrs))
}

func TestExtract_SequenceWithoutScalars(t *testing.T) {
	// 只含非标量元素的序列不产生属性
	attrs := Extract(map[string]interface{}{
		"layers": []interface{}{
			map[string]interface{}{"name": "bg"},
		},
		"style": "flat",
	})

	assert.Equal(t, map[string]string{"style": "flat"}, attrMap(attrs))
}

func TestExtract_SortedByKey(t *testing.T) {
	attrs := Extract(map[string]interface{}{
		"zed":   "1",
		"alpha": "2",
		"mid":   map[string]interface{}{"key": "3"},
	})

	assert.Equal(t, "alpha", attrs[0].Key)
	assert.Equal(t, "mid.key", attrs[1].Key)
	assert.Equal(t, "zed", attrs[2].Key)
}

func TestExtract_Empty(t *testing.T) {
	assert.Empty(t, Extract(nil))
	assert.Empty(t, Extract(map[string]interface{}{}))
}

// --- 端到端：解析加扁平化 ---

func TestParseAndExtract(t *testing.T) {
	text := `
subject:
  animal: fox
  colors: [red, white]
style: watercolor
_base: animals_v2
seed: 42
`
	tree, err := ParseTree(text)
	assert.NoError(t, err)

	attrs := Extract(tree)
	assert.Equal(t, map[string]string{
		"subject.animal": "fox",
		"subject.colors": "red, white",
		"style":          "watercolor",
		"seed":           "42",
	}, attrMap(attrs))
}
