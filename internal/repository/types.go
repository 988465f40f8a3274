package repository

// UserListFilter 查询用户列表的过滤条件
type UserListFilter struct {
	Page     int
	PageSize int
	Search   string // 邮箱模糊匹配
	Status   string
}

// PageListFilter 查询页面列表的过滤条件
type PageListFilter struct {
	Page     int
	PageSize int
	Search   string // 标题或正文模糊匹配
	UserID   uint
}

// UserFields 用户可更新字段，nil 表示请求中未提供
type UserFields struct {
	Email  *string
	Status *string
}

// Empty 是否没有任何可更新字段
func (f UserFields) Empty() bool {
	return f.Email == nil && f.Status == nil
}

// PageFields 页面可更新字段，nil 表示请求中未提供
type PageFields struct {
	Title   *string
	Content *string
}

// Empty 是否没有任何可更新字段
func (f PageFields) Empty() bool {
	return f.Title == nil && f.Content == nil
}
