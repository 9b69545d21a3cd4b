package db

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB 是一个全局的数据库连接实例
var DB *gorm.DB

// Models lists every table managed by AutoMigrate.
func Models() []interface{} {
	return []interface{}{
		&Article{},
		&Comment{},
		&Like{},
		&PageView{},
		&ArticleView{},
		&Subscriber{},
		&AboutPage{},
		&SystemSetting{},
	}
}

// Open 打开 sqlite 连接并开启错误翻译，唯一约束冲突会以 gorm.ErrDuplicatedKey 返回。
func Open(dsn string, silent bool) (*gorm.DB, error) {
	cfg := &gorm.Config{TranslateError: true}
	if silent {
		cfg.Logger = logger.Default.LogMode(logger.Silent)
	}
	return gorm.Open(sqlite.Open(dsn), cfg)
}

// Migrate creates or updates the schema for all models.
func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(Models()...)
}

// Init 初始化数据库连接并执行自动迁移。
// databasePath 为空时将回退到默认值 blog.db。
func Init(databasePath string) error {
	path := strings.TrimSpace(databasePath)
	if path == "" {
		path = "blog.db"
	}

	if err := ensureParentDir(path); err != nil {
		return err
	}

	gdb, err := Open(path, true)
	if err != nil {
		return err
	}

	if err := Migrate(gdb); err != nil {
		return err
	}

	// 旧数据可能缺少摘要
	if err := gdb.Model(&Article{}).
		Where("short_summary = '' OR short_summary IS NULL").
		Update("short_summary", DefaultShortSummary).Error; err != nil {
		return err
	}

	DB = gdb
	return nil
}

// IsDuplicateKey reports whether err is a unique constraint violation.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func ensureParentDir(path string) error {
	if strings.HasPrefix(path, "file:") {
		return nil
	}

	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}

	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return errors.New("database path parent is not a directory")
		}
		return nil
	}

	if os.IsNotExist(err) {
		return os.MkdirAll(dir, 0o755)
	}

	return err
}
