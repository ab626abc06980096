package images

import (
	"context"
	"strings"

	"github.com/anoixa/image-vault/database"
	"github.com/anoixa/image-vault/database/models"
)

// BuildMatchQuery 把原始查询串转换为底层全文索引的查询表达式
// 去掉引号字符，按空白切分，每个词补前缀通配，全部词隐式 AND。
// 没有有效词时返回空串。
func BuildMatchQuery(raw, dialect string) string {
	raw = strings.NewReplacer(`"`, "", `'`, "").Replace(raw)
	terms := strings.Fields(raw)
	if len(terms) == 0 {
		return ""
	}

	if dialect == database.DialectPostgres {
		parts := make([]string, 0, len(terms))
		for _, term := range terms {
			term = sanitizeTsQueryTerm(strings.TrimSuffix(term, "*"))
			if term == "" {
				continue
			}
			parts = append(parts, term+":*")
		}
		return strings.Join(parts, " & ")
	}

	// FTS5：词加引号防止连字符等被解析为操作符，"term"* 为前缀匹配
	parts := make([]string, 0, len(terms))
	for _, term := range terms {
		term = strings.TrimSuffix(term, "*")
		if term == "" {
			continue
		}
		parts = append(parts, `"`+term+`"*`)
	}
	return strings.Join(parts, " ")
}

// sanitizeTsQueryTerm 去掉 to_tsquery 的操作符字符
func sanitizeTsQueryTerm(term string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '&', '|', '!', '(', ')', ':', '*', '\\':
			return -1
		}
		return r
	}, term)
}

// SearchImages 在 prompt 全文索引上做前缀匹配搜索
// 分页语义与 ListImages 一致；空查询返回空结果。
func (r *Repository) SearchImages(ctx context.Context, rawQuery string, includeDeleted bool, p Pagination) ([]*models.Image, int64, error) {
	match := BuildMatchQuery(rawQuery, r.dialect)
	if match == "" {
		return []*models.Image{}, 0, nil
	}

	limit, order := p.normalize()

	var where string
	if r.dialect == database.DialectPostgres {
		where = `images.prompt_tsv @@ to_tsquery('simple', ?)`
	} else {
		where = `images.rowid IN (SELECT rowid FROM images_fts WHERE images_fts MATCH ?)`
	}
	if !includeDeleted {
		where += ` AND images.deleted_at IS NULL`
	}

	var total int64
	err := r.db.WithContext(ctx).
		Raw(`SELECT count(*) FROM images WHERE `+where, match).
		Scan(&total).Error
	if err != nil {
		return nil, 0, err
	}

	var imageList []*models.Image
	err = r.db.WithContext(ctx).
		Raw(`SELECT images.* FROM images WHERE `+where+
			` ORDER BY images.created_at `+order+`, images.id `+order+
			` LIMIT ? OFFSET ?`, match, limit, p.Offset).
		Scan(&imageList).Error
	if err != nil {
		return nil, 0, err
	}
	return imageList, total, nil
}
