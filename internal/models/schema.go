package models

import (
	"fmt"

	"gorm.io/gorm"
)

// Table 受管数据表
type Table struct {
	Name  string
	Model interface{}
}

// ManagedTables 按依赖顺序排列（user_pages 依赖 users）
func ManagedTables() []Table {
	return []Table{
		{Name: User{}.TableName(), Model: &User{}},
		{Name: Page{}.TableName(), Model: &Page{}},
		{Name: AdminUser{}.TableName(), Model: &AdminUser{}},
		{Name: SystemSetting{}.TableName(), Model: &SystemSetting{}},
	}
}

// EnsureTables 创建缺失的表，返回本次实际创建的表名；已存在的表不做改动
func EnsureTables(db *gorm.DB) ([]string, error) {
	created := make([]string, 0, 4)
	migrator := db.Migrator()
	for _, table := range ManagedTables() {
		if migrator.HasTable(table.Model) {
			continue
		}
		if err := migrator.CreateTable(table.Model); err != nil {
			return created, fmt.Errorf("create table %s: %w", table.Name, err)
		}
		created = append(created, table.Name)
	}
	return created, nil
}

// AutoMigrate 补齐全部表结构（种子工具与测试使用）
func AutoMigrate(db *gorm.DB) error {
	for _, table := range ManagedTables() {
		if err := db.AutoMigrate(table.Model); err != nil {
			return fmt.Errorf("migrate %s: %w", table.Name, err)
		}
	}
	return nil
}
