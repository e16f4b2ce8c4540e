package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"go-user-admin/internal/core/config"
)

// KeyRequestID 请求 ID 的 header 名，也是 gin.Context 里的键
const KeyRequestID = "X-Request-ID"

// accessFields 访问日志附带请求 ID
func accessFields(c *gin.Context) []zapcore.Field {
	if rid := c.GetString(KeyRequestID); rid != "" {
		return []zapcore.Field{zap.String("request_id", rid)}
	}
	return nil
}

// NewRouter 基础引擎：zap 访问日志 + panic 恢复 + CORS
func NewRouter(l *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(ginzap.GinzapWithConfig(l, &ginzap.Config{
		TimeFormat: time.RFC3339,
		UTC:        true,
		SkipPaths:  []string{"/health", "/metrics"},
		Context:    accessFields,
	}))
	r.Use(ginzap.RecoveryWithZap(l, true))
	corsCfg := cors.DefaultConfig()
	corsCfg.AllowAllOrigins = true
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization", KeyRequestID)
	corsCfg.ExposeHeaders = append(corsCfg.ExposeHeaders, KeyRequestID)
	r.Use(cors.New(corsCfg))
	return r
}

func BuildServer(addr string, handler http.Handler, rt, wt, it time.Duration) *http.Server {
	return &http.Server{
		Addr:           addr,
		Handler:        handler,
		ReadTimeout:    rt,
		WriteTimeout:   wt,
		IdleTimeout:    it,
		MaxHeaderBytes: 1 << 20, // 1MB
	}
}

// FromConfig 用 app.admin 段构建 http.Server
func FromConfig(c config.AdminHTTP, handler http.Handler) *http.Server {
	return BuildServer(
		Addr(c.Host, c.Port), handler,
		time.Duration(c.ReadTimeoutSec)*time.Second,
		time.Duration(c.WriteTimeoutSec)*time.Second,
		time.Duration(c.IdleTimeoutSec)*time.Second,
	)
}

func Addr(host string, port int) string { return fmt.Sprintf("%s:%d", host, port) }

// HumanURL 把 0.0.0.0 换成可点击的本地地址
func HumanURL(host string, port int) string {
	if host == "" || host == "0.0.0.0" {
		host = "127.0.0.1"
	}
	return "http://" + Addr(host, port)
}
