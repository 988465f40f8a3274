package models

import (
	"time"
)

// AdminUser 后台管理员表
type AdminUser struct {
	ID           uint       `gorm:"primarykey" json:"id"`                               // 主键
	Username     string     `gorm:"size:100;uniqueIndex;not null" json:"username"`      // 管理员账号
	PasswordHash string     `gorm:"size:255;not null" json:"-"`                         // 密码哈希（不返回给前端）
	Email        string     `gorm:"size:255" json:"email"`                              // 联系邮箱
	Role         string     `gorm:"size:32;not null;default:'admin';index" json:"role"` // 角色 admin / viewer
	LastLogin    *time.Time `json:"lastLogin"`                                          // 最后登录时间
	CreatedAt    time.Time  `json:"createdAt"`                                          // 创建时间
	UpdatedAt    time.Time  `json:"updatedAt"`                                          // 更新时间
}

// TableName 指定表名
func (AdminUser) TableName() string {
	return "admin_users"
}
