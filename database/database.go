package database

import (
	"fmt"
	"log"

	"budget/config"
	"budget/models"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Init 初始化数据库连接
func Init(cfg *config.Config) error {
	// 构建 MySQL DSN 连接字符串
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=%s&parseTime=True&loc=Local",
		cfg.Database.Username,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.DBName,
		cfg.Database.Charset,
	)

	var err error
	DB, err = gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
		// 唯一索引冲突统一翻译为 gorm.ErrDuplicatedKey，
		// 划转流水的“每月一笔”约束依赖这个错误识别冲突
		TranslateError: true,
	})
	if err != nil {
		return fmt.Errorf("连接数据库失败: %w", err)
	}

	// 获取底层 *sql.DB 连接池配置
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}

	// 设置连接池参数
	sqlDB.SetMaxIdleConns(10)  // 最大空闲连接数
	sqlDB.SetMaxOpenConns(100) // 最大打开连接数

	// 自动迁移数据库表
	if err := DB.AutoMigrate(
		&models.User{},
		&models.Transaction{},
		&models.TransactionCategory{},
		&models.TotalBudget{},
		&models.CategoryBudget{},
		&models.AnnualGoal{},
		&models.SavingsGoal{},
		&models.Contribution{},
		&models.PasswordReset{},
	); err != nil {
		return err
	}

	// 初始化默认交易类别（仅当表为空时），类别列表来自配置而非代码常量
	if err := SeedCategories(DB, cfg.Budget.DefaultCategories); err != nil {
		return err
	}

	log.Println("数据库初始化成功")
	return nil
}

// SeedCategories 按配置写入默认交易类别，表非空时跳过
func SeedCategories(db *gorm.DB, defaults []config.DefaultCategory) error {
	var count int64
	if err := db.Model(&models.TransactionCategory{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 || len(defaults) == 0 {
		return nil
	}

	var cats []models.TransactionCategory
	for _, item := range defaults {
		color := item.Color
		if color == "" {
			color = "#64748b" // 默认灰色
		}
		cats = append(cats, models.TransactionCategory{
			Name:  item.Name,
			Sort:  item.Sort,
			Color: color,
		})
	}
	return db.Create(&cats).Error
}

// GetDB 获取数据库连接
func GetDB() *gorm.DB {
	return DB
}
