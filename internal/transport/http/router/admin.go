package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"go-user-admin/internal/core/auth"
	"go-user-admin/internal/core/server"
	mdw "go-user-admin/internal/transport/http/middleware"
)

const AdminPrefix = "/admin/v1"

type Options struct {
	Registry *prometheus.Registry // 为空时新建
	RPS      float64
	Burst    int
	MaxConc  int64
	Timeout  time.Duration
	// 登录接口单独限流，按 IP
	LoginPerMin int
}

func (o *Options) defaults() {
	if o.Registry == nil {
		o.Registry = prometheus.NewRegistry()
	}
	if o.RPS <= 0 {
		o.RPS = 50
	}
	if o.Burst <= 0 {
		o.Burst = 100
	}
	if o.MaxConc <= 0 {
		o.MaxConc = 300
	}
	if o.Timeout <= 0 {
		o.Timeout = 10 * time.Second
	}
	if o.LoginPerMin <= 0 {
		o.LoginPerMin = 30
	}
}

func NewAdminEngine(l *zap.Logger, jwter *auth.JWTer, reg *Registry, opt Options) *gin.Engine {
	opt.defaults()
	r := server.NewRouter(l)

	r.Use(
		mdw.RequestID(),
		mdw.RateLimitPerIP(rate.Limit(opt.RPS), opt.Burst),
		mdw.ConcurrencyLimit(opt.MaxConc),
		mdw.MaxBodyBytes(1<<20),
		mdw.Timeout(opt.Timeout),
		mdw.NewHTTPMetrics(opt.Registry, "user_admin").Handler(),
	)

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opt.Registry, promhttp.HandlerOpts{})))

	// 管理端 v1：登录公开，其余要求 developer/admin 角色
	public := r.Group(AdminPrefix)
	public.Use(mdw.RateLimitBy(rate.Every(time.Minute/time.Duration(opt.LoginPerMin)), opt.LoginPerMin, mdw.ClientIP))
	reg.MountPublic(public)

	admin := r.Group(AdminPrefix)
	admin.Use(mdw.AuthJWT(jwter, "developer", "admin"))
	reg.MountAdmin(admin)

	return r
}
