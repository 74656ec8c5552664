package db

import (
	"fmt"
	"net"
	"sync"
	"time"

	"Articulate/config"
	"Articulate/logger"
	"Articulate/model"

	"github.com/go-sql-driver/mysql"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var (
	gormDB   *gorm.DB
	gormOnce sync.Once
	gormErr  error
)

// DB returns the connection opened by ConnectGormDB, or nil before it succeeded.
func DB() *gorm.DB {
	return gormDB
}

// Models lists every table the service owns, in migration order.
func Models() []interface{} {
	return []interface{}{
		&model.Struggle{},
		&model.PracticeSet{},
		&model.PracticeCard{},
		&model.PracticeCardTag{},
		&model.Recording{},
		&model.RecordingAnnotation{},
	}
}

// MySQLDSN builds the go-sql-driver DSN; timestamps are read and written in UTC.
func MySQLDSN(cfg *config.Config) string {
	dsn := mysql.NewConfig()
	dsn.User = cfg.DBUser
	dsn.Passwd = cfg.DBPassword
	dsn.Net = "tcp"
	dsn.Addr = net.JoinHostPort(cfg.DBHost, cfg.DBPort)
	dsn.DBName = cfg.DBName
	dsn.ParseTime = true
	dsn.Loc = time.UTC
	dsn.Params = map[string]string{"charset": "utf8mb4"}
	return dsn.FormatDSN()
}

// PostgresDSN builds a libpq style DSN.
func PostgresDSN(cfg *config.Config) string {
	return "host=" + cfg.DBHost +
		" user=" + cfg.DBUser +
		" password=" + cfg.DBPassword +
		" dbname=" + cfg.DBName +
		" port=" + cfg.DBPort +
		" sslmode=" + cfg.DBSSLMode +
		" TimeZone=UTC"
}

func dialector(cfg *config.Config) (gorm.Dialector, error) {
	switch cfg.DBDriver {
	case "mysql":
		return gormmysql.Open(MySQLDSN(cfg)), nil
	case "postgres":
		return postgres.Open(PostgresDSN(cfg)), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
}

// ConnectGormDB 建立 GORM 数据库连接；只有第一次调用真正连接，之后返回同一结果
func ConnectGormDB(cfg *config.Config) error {
	gormOnce.Do(func() {
		gormDB, gormErr = openGormDB(cfg)
	})
	return gormErr
}

func openGormDB(cfg *config.Config) (*gorm.DB, error) {
	d, err := dialector(cfg)
	if err != nil {
		return nil, err
	}

	gdb, err := gorm.Open(d, &gorm.Config{
		Logger: logger.NewGormLogger(cfg.DBLogLevel),
		// 唯一约束冲突统一翻译为 gorm.ErrDuplicatedKey
		TranslateError: true,
		// 级联删除由仓库层在事务中完成
		DisableForeignKeyConstraintWhenMigrating: true,
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database with GORM: %w", err)
	}

	// 获取底层的 sql.DB 并配置连接池
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	logger.Info("Successfully connected to the database with GORM",
		logger.String("driver", cfg.DBDriver),
		logger.String("host", cfg.DBHost))
	return gdb, nil
}

// CloseGormDB 关闭 GORM 数据库连接
func CloseGormDB() error {
	if gormDB == nil {
		return nil
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}

// Ping checks the underlying connection.
func Ping() error {
	if gormDB == nil {
		return fmt.Errorf("GORM database not initialized")
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// AutoMigrateModels 自动迁移所有业务表
func AutoMigrateModels() error {
	if gormDB == nil {
		return fmt.Errorf("GORM database not initialized")
	}

	if err := gormDB.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to auto migrate models: %w", err)
	}

	logger.Info("Models migrated successfully with GORM")
	return nil
}
