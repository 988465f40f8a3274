package models

import "time"

// SystemSetting 系统设置表（键值对存储）
type SystemSetting struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	Key         string    `gorm:"column:setting_key;size:100;uniqueIndex;not null" json:"key"` // 配置键
	Value       string    `gorm:"column:setting_value;type:text;not null" json:"value"`        // 配置值
	Description string    `gorm:"type:text" json:"description"`                                // 说明
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TableName 指定表名
func (SystemSetting) TableName() string {
	return "system_settings"
}
