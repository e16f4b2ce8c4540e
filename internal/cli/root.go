package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"go-user-admin/internal/bridge"
	"go-user-admin/internal/core/cache"
	"go-user-admin/internal/core/config"
	"go-user-admin/internal/core/database"
	"go-user-admin/internal/core/logger"
	"go-user-admin/internal/repo"
	"go-user-admin/internal/service"
)

// app 命令行运行期状态，在 PersistentPreRunE 中解析
type app struct {
	flagConfig string
	flagURL    string
	flagToken  string
	flagLocal  bool
	flagOutput string

	cfg     *config.Config
	log     *zap.Logger
	closers []func()
	dial    func(ctx context.Context) (bridge.Bridge, error) // 测试可替换
	bridge  bridge.Bridge
}

func newApp() *app {
	a := &app{}
	a.dial = a.connect
	return a
}

// execute 运行命令树；cobra 在 RunE 出错时不跑 PostRun，所以在这里关闭
func (a *app) execute(ctx context.Context, root *cobra.Command) error {
	defer a.close()
	return root.ExecuteContext(ctx)
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "console",
		Short: "Administer user accounts from the terminal",
		Long: `console manages the user accounts of the admin service.

Run the interactive list with:
  console tui
or script it:
  console users list -o json
  console users delete alice`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.flagConfig, "config", "", "config file (default $CONFIG_PATH or ./configs/config.local.yaml)")
	pf.StringVar(&a.flagURL, "url", "", "admin API base URL (overrides console.baseUrl)")
	pf.StringVar(&a.flagToken, "token", "", "bearer token (overrides console.token)")
	pf.BoolVar(&a.flagLocal, "local", false, "talk to the database directly instead of the admin API")

	root.AddCommand(a.usersCmd())
	root.AddCommand(a.tuiCmd())
	root.AddCommand(a.loginCmd())
	return root
}

// Execute 供 main 调用，返回进程退出码
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	a := newApp()
	if err := a.execute(ctx, a.rootCmd()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}

func (a *app) init() error {
	if a.cfg != nil {
		return nil
	}
	cfg, err := config.Read(a.flagConfig)
	if err != nil {
		return err
	}
	a.cfg = cfg
	// stdout 归命令输出和 TUI，日志只写文件
	l, cleanup := logger.FromConfig(cfg.Log, true)
	a.log = l
	a.closers = append(a.closers, cleanup)
	return nil
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func (a *app) timeout() time.Duration {
	if a.cfg == nil || a.cfg.Console.TimeoutSec <= 0 {
		return 10 * time.Second
	}
	return time.Duration(a.cfg.Console.TimeoutSec) * time.Second
}

func (a *app) baseURL() string {
	if a.flagURL != "" {
		return a.flagURL
	}
	return a.cfg.Console.BaseURL
}

// open 取得桥接；只建一次
func (a *app) open(ctx context.Context) (bridge.Bridge, error) {
	if a.bridge != nil {
		return a.bridge, nil
	}
	b, err := a.dial(ctx)
	if err != nil {
		return nil, err
	}
	a.bridge = b
	return b, nil
}

func (a *app) connect(ctx context.Context) (bridge.Bridge, error) {
	if a.flagLocal {
		return a.connectLocal(ctx)
	}
	base := a.baseURL()
	tok := a.flagToken
	if tok == "" {
		tok = a.cfg.Console.Token
	}
	c := bridge.NewHTTPClient(base, tok, a.timeout())
	if tok == "" && a.cfg.Console.UserID != "" {
		if _, err := c.Login(ctx, a.cfg.Console.UserID, a.cfg.Console.Password); err != nil {
			return nil, fmt.Errorf("login %s: %w", base, err)
		}
	}
	a.log.Info("console connected", zap.String("base_url", base), zap.Bool("token", c.Token() != ""))
	return c, nil
}

func (a *app) connectLocal(ctx context.Context) (bridge.Bridge, error) {
	db, err := database.NewGorm(database.OptsFromConfig(a.cfg.DB, a.log))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		a.closers = append(a.closers, func() { _ = sqlDB.Close() })
	}

	opts := []service.Option{
		service.WithLogger(a.log),
		service.WithProtectedIDs(a.cfg.Policy.ProtectedIDs...),
	}
	if rc := cache.FromConfig(a.cfg.Redis, a.cfg.App.Name); rc != nil {
		if err := rc.Ping(ctx); err != nil {
			a.log.Warn("redis unavailable, running without cache", zap.Error(err))
		} else {
			a.closers = append(a.closers, func() { _ = rc.Close() })
			opts = append(opts, service.WithCache(rc, time.Duration(a.cfg.Redis.TTLSec)*time.Second))
		}
	}
	return bridge.NewLocal(service.NewUserService(repo.NewUserRepo(db), opts...)), nil
}

// roles 角色目录；取不到时表单只做非空校验
func (a *app) roles(ctx context.Context, b bridge.Bridge) []string {
	rc, ok := b.(bridge.RoleCatalog)
	if !ok {
		return nil
	}
	roles, err := rc.Roles(ctx)
	if err != nil {
		a.log.Warn("load roles failed", zap.Error(err))
		return nil
	}
	return bridge.RoleNames(roles)
}
