package service

import (
	"math"

	"github.com/textpages-admin/internal/config"
)

// PageQuery 归一化后的分页参数
type PageQuery struct {
	Page  int
	Limit int
}

// NormalizePageQuery page 至少为 1；limit 缺省取默认值，超过上限时截断
func NormalizePageQuery(cfg config.PaginationConfig, page, limit int) PageQuery {
	defaultSize := cfg.DefaultPageSize
	if defaultSize <= 0 {
		defaultSize = 20
	}
	maxSize := cfg.MaxPageSize
	if maxSize <= 0 {
		maxSize = 100
	}
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultSize
	}
	if limit > maxSize {
		limit = maxSize
	}
	// 偏移量不超过 int32，超出的页码按最后可表示的页处理
	if maxPage := math.MaxInt32/limit + 1; page > maxPage {
		page = maxPage
	}
	return PageQuery{Page: page, Limit: limit}
}
