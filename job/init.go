package main

import (
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// initDB 初始化数据库连接
func initDB(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		dsn = "root:root@tcp(127.0.0.1:3306)/cmms?charset=utf8mb4&parseTime=True&loc=Local"
	}
	return gorm.Open(mysql.Open(dsn), &gorm.Config{})
}
