package database

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	mysqldrv "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"

	"go-user-admin/internal/core/config"
)

var ErrUnsupportedDriver = errors.New("database: unsupported driver")

type Opts struct {
	Driver             string
	DSN                string
	Username           string
	Password           string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	LogLevel           string
	Log                *zap.Logger
}

func OptsFromConfig(c config.DB, l *zap.Logger) Opts {
	return Opts{
		Driver:             c.Driver,
		DSN:                c.DSN,
		Username:           c.Username,
		Password:           c.Password,
		MaxOpenConns:       c.MaxOpenConns,
		MaxIdleConns:       c.MaxIdleConns,
		ConnMaxLifetimeMin: c.ConnMaxLifetimeMin,
		LogLevel:           c.LogLevel,
		Log:                l,
	}
}

// Dialector 按驱动名选择方言
func Dialector(o Opts) (gorm.Dialector, error) {
	switch o.Driver {
	case "postgres":
		return postgres.Open(o.DSN), nil
	case "mysql":
		dsn, err := normalizeMySQLDSN(o.DSN, o.Username, o.Password)
		if err != nil {
			return nil, err
		}
		if o.Log != nil {
			o.Log.Info("mysql dsn", zap.String("dsn", maskDSN(dsn)))
		}
		return mysql.Open(dsn), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, o.Driver)
	}
}

func NewGorm(o Opts) (*gorm.DB, error) {
	dial, err := Dialector(o)
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open(dial, &gorm.Config{
		Logger: logger.Default.LogMode(gormLevel(o.LogLevel)),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(o.MaxOpenConns)
	sqlDB.SetMaxIdleConns(o.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(o.ConnMaxLifetimeMin) * time.Minute)
	return db.Session(&gorm.Session{
		PrepareStmt:            true, // 预编译缓存
		SkipDefaultTransaction: true, // 写操作自己开 Tx
	}), nil
}

func gormLevel(s string) logger.LogLevel {
	switch s {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	}
	return logger.Warn
}

// maskDSN 日志用，隐藏密码；解析失败原样返回
func maskDSN(dsn string) string {
	c, err := mysqldrv.ParseDSN(dsn)
	if err != nil || c.Passwd == "" {
		return dsn
	}
	c.Passwd = "****"
	return c.FormatDSN()
}

// jdbc 专有参数，转成驱动参数后丢弃
var jdbcOnly = map[string]bool{
	"user": true, "password": true, "characterEncoding": true, "useUnicode": true,
	"zeroDateTimeBehavior": true, "useSSL": true, "serverTimezone": true,
}

// normalizeMySQLDSN 接受 go-sql-driver 原生 DSN 或 jdbc:mysql:// / mysql:// URL；
// user/pass 非空时覆盖 DSN 中的账号
func normalizeMySQLDSN(input, user, pass string) (string, error) {
	in := strings.TrimPrefix(strings.TrimSpace(input), "jdbc:")
	var (
		c   *mysqldrv.Config
		err error
	)
	if strings.HasPrefix(in, "mysql://") {
		c, err = mysqlConfigFromURL(in)
	} else {
		c, err = mysqldrv.ParseDSN(in)
	}
	if err != nil {
		return "", fmt.Errorf("mysql dsn: %w", err)
	}
	if user != "" {
		c.User = user
	}
	if pass != "" {
		c.Passwd = pass
	}
	c.ParseTime = true
	if c.Params == nil {
		c.Params = map[string]string{}
	}
	if c.Params["charset"] == "" {
		c.Params["charset"] = "utf8mb4"
	}
	return c.FormatDSN(), nil
}

func mysqlConfigFromURL(raw string) (*mysqldrv.Config, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	c := mysqldrv.NewConfig()
	c.Net = "tcp"
	c.Addr = u.Host
	c.DBName = strings.TrimPrefix(u.Path, "/")
	if u.User != nil {
		c.User = u.User.Username()
		c.Passwd, _ = u.User.Password()
	}

	q := u.Query()
	if v := q.Get("user"); v != "" {
		c.User = v
	}
	if v := q.Get("password"); v != "" {
		c.Passwd = v
	}
	switch v := strings.ToLower(q.Get("useSSL")); v {
	case "":
	case "true", "1":
		c.TLSConfig = "true"
	case "skip-verify", "preferred":
		c.TLSConfig = v
	default:
		c.TLSConfig = "false"
	}
	if tz := q.Get("serverTimezone"); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return nil, fmt.Errorf("serverTimezone: %w", err)
		}
		c.Loc = loc
	}

	c.Params = map[string]string{}
	if enc := q.Get("characterEncoding"); enc != "" {
		c.Params["charset"] = enc
	}
	for k := range q {
		if !jdbcOnly[k] {
			c.Params[k] = q.Get(k)
		}
	}
	return c, nil
}
