package router

import (
	"sort"
	"sync"

	"github.com/gin-gonic/gin"
)

// AdminModule 挂在已鉴权的 /admin/v1 分组
type AdminModule interface{ MountAdmin(*gin.RouterGroup) }

// PublicModule 挂在无需登录的 /admin/v1 分组
type PublicModule interface{ MountPublic(*gin.RouterGroup) }

// 实现该接口可控制挂载顺序（数值越小越先挂），默认 100
type prioritizer interface{ Priority() int }

type Registry struct {
	mu     sync.RWMutex
	public []PublicModule
	admin  []AdminModule
}

func NewRegistry(mods ...any) *Registry {
	r := &Registry{}
	for _, m := range mods {
		r.Register(m)
	}
	return r
}

// Register 按实现的接口分发；两个都实现则两边都挂
func (r *Registry) Register(mod any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := mod.(PublicModule); ok {
		r.public = append(r.public, m)
	}
	if m, ok := mod.(AdminModule); ok {
		r.admin = append(r.admin, m)
	}
}

func (r *Registry) MountPublic(g *gin.RouterGroup) {
	r.mu.RLock()
	mods := append([]PublicModule(nil), r.public...)
	r.mu.RUnlock()
	sort.SliceStable(mods, func(i, j int) bool { return priorityOf(mods[i]) < priorityOf(mods[j]) })
	for _, m := range mods {
		m.MountPublic(g)
	}
}

func (r *Registry) MountAdmin(g *gin.RouterGroup) {
	r.mu.RLock()
	mods := append([]AdminModule(nil), r.admin...)
	r.mu.RUnlock()
	sort.SliceStable(mods, func(i, j int) bool { return priorityOf(mods[i]) < priorityOf(mods[j]) })
	for _, m := range mods {
		m.MountAdmin(g)
	}
}

func priorityOf(v any) int {
	if p, ok := v.(prioritizer); ok {
		return p.Priority()
	}
	return 100
}
