package models

import (
	"time"
)

// User 终端用户表
type User struct {
	ID                     uint       `gorm:"primarykey" json:"id"`                                   // 主键
	Email                  string     `gorm:"size:255;uniqueIndex;not null" json:"email"`             // 邮箱（唯一）
	PasswordHash           string     `gorm:"size:255;not null" json:"-"`                             // 密码哈希（不返回给前端）
	EmailVerificationToken *string    `gorm:"size:100;index" json:"-"`                                // 邮箱验证令牌
	EmailVerifiedAt        *time.Time `json:"emailVerifiedAt,omitempty"`                              // 邮箱验证时间
	PasswordResetToken     *string    `gorm:"size:100;index" json:"-"`                                // 重置密码令牌
	PasswordResetExpiresAt *time.Time `json:"-"`                                                      // 重置令牌过期时间
	Status                 string     `gorm:"size:16;not null;default:'pending';index" json:"status"` // pending / verified / blocked
	CreatedAt              time.Time  `gorm:"index" json:"createdAt"`                                 // 创建时间
	UpdatedAt              time.Time  `json:"updatedAt"`                                              // 更新时间
	LastActive             time.Time  `json:"lastActive"`                                             // 最后活跃时间
	PagesCount             int64      `gorm:"->;-:migration" json:"pagesCount"`                       // 页面数量（查询投影）
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}
