package router

import (
	"sort"
	"strings"

	"github.com/textpages-admin/internal/authz"
	"github.com/textpages-admin/internal/config"
	"github.com/textpages-admin/internal/constants"
	adminhandlers "github.com/textpages-admin/internal/http/handlers/admin"
	"github.com/textpages-admin/internal/http/handlers/shared"
	"github.com/textpages-admin/internal/http/response"
	"github.com/textpages-admin/internal/logger"
	"github.com/textpages-admin/internal/metrics"
	"github.com/textpages-admin/internal/provider"

	"github.com/gin-gonic/gin"
)

// actionRoute 动作表条目
type actionRoute struct {
	handler gin.HandlerFunc
	perm    string // read / write
	public  bool
	// setup 为真时仅在首次初始化完成前允许匿名访问
	setup bool
	// limit 只用于登录等需要限流的动作
	limit gin.HandlerFunc
}

// actionTable 分组内的动作表
type actionTable map[string]actionRoute

// routeBuilder 根据配置为动作与 REST 路由组装鉴权链
type routeBuilder struct {
	cfg       *config.Config
	container *provider.Container
}

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	r := gin.New()

	h := adminhandlers.New(c)
	b := &routeBuilder{cfg: cfg, container: c}
	loginLimit := RateLimitMiddleware(c.Redis, RateLimitRule{
		Prefix:        "rate:admin_login",
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		BlockSeconds:  cfg.Security.LoginRateLimit.BlockSeconds,
	}, KeyByIPAndParam("username"))

	// 中间件
	r.Use(RecoveryMiddleware())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(logger.Z()))
	r.Use(CORSMiddleware(cfg.CORS))
	r.Use(shared.ExposeErrorDetail(cfg.App.IsDevelopment()))
	if cfg.Metrics.Enabled {
		r.Use(MetricsMiddleware())
	}

	requireAuth := cfg.Security.RequireAuth
	anonymousProvisioning := cfg.Security.AnonymousProvisioning

	groups := map[string]actionTable{
		constants.GroupAuth: {
			constants.ActionLogin:       {handler: h.Login, public: true, limit: loginLimit},
			constants.ActionLogout:      {handler: h.Logout, public: true},
			constants.ActionCaptcha:     {handler: h.Captcha, public: true},
			constants.ActionVerifyToken: {handler: h.VerifyToken, perm: constants.PermRead},
		},
		constants.GroupUsers: {
			constants.ActionGetUsers:   {handler: h.GetUsers, perm: constants.PermRead, public: !requireAuth},
			constants.ActionGetUser:    {handler: h.GetUser, perm: constants.PermRead, public: !requireAuth},
			constants.ActionCreateUser: {handler: h.CreateUser, perm: constants.PermWrite, public: !requireAuth},
			constants.ActionUpdateUser: {handler: h.UpdateUser, perm: constants.PermWrite, public: !requireAuth},
			constants.ActionDeleteUser: {handler: h.DeleteUser, perm: constants.PermWrite, public: !requireAuth},
		},
		constants.GroupPages: {
			constants.ActionGetPages:   {handler: h.GetPages, perm: constants.PermRead, public: !requireAuth},
			constants.ActionGetPage:    {handler: h.GetPage, perm: constants.PermRead, public: !requireAuth},
			constants.ActionCreatePage: {handler: h.CreatePage, perm: constants.PermWrite, public: !requireAuth},
			constants.ActionUpdatePage: {handler: h.UpdatePage, perm: constants.PermWrite, public: !requireAuth},
			constants.ActionDeletePage: {handler: h.DeletePage, perm: constants.PermWrite, public: !requireAuth},
		},
		constants.GroupDashboard: {
			constants.ActionGetDashboardData: {handler: h.GetDashboardData, perm: constants.PermRead, public: !requireAuth},
		},
		constants.GroupSettings: {
			constants.ActionTestDBConnection:    {handler: h.TestDBConnection, perm: constants.PermWrite, public: !requireAuth, setup: anonymousProvisioning},
			constants.ActionCreateTables:        {handler: h.CreateTables, perm: constants.PermWrite, public: !requireAuth, setup: anonymousProvisioning},
			constants.ActionSaveDBConfig:        {handler: h.SaveDBConfig, perm: constants.PermWrite, public: !requireAuth, setup: anonymousProvisioning},
			constants.ActionGetSystemSettings:   {handler: h.GetSystemSettings, perm: constants.PermRead, public: !requireAuth},
			constants.ActionUpdateSystemSetting: {handler: h.UpdateSystemSetting, perm: constants.PermWrite, public: !requireAuth},
			constants.ActionReloadConfig:        {handler: h.ReloadConfig, perm: constants.PermWrite},
		},
	}

	// 动作接口：/api/<分组> 与兼容旧前端的 /api/<分组>.php
	api := r.Group("/api")
	for group, table := range groups {
		dispatcher := b.dispatch(group, table)
		api.Any("/"+group, dispatcher)
		api.Any("/"+group+".php", dispatcher)
	}

	// REST 路由，与动作接口共用处理函数与鉴权规则
	admin := r.Group("/api/v1/admin")
	{
		admin.POST("/login", b.chain(constants.GroupAuth, groups[constants.GroupAuth][constants.ActionLogin])...)
		admin.POST("/logout", b.chain(constants.GroupAuth, groups[constants.GroupAuth][constants.ActionLogout])...)
		admin.GET("/captcha", b.chain(constants.GroupAuth, groups[constants.GroupAuth][constants.ActionCaptcha])...)
		admin.GET("/me", b.chain(constants.GroupAuth, groups[constants.GroupAuth][constants.ActionVerifyToken])...)
		permissions := func(ctx *gin.Context) {
			granted := []authz.Policy{}
			if identity := shared.AdminIdentity(ctx); identity != nil {
				policies, err := c.AuthzService.RolePolicies(identity.Role)
				if err != nil {
					shared.RespondError(ctx, err)
					return
				}
				granted = policies
			}
			response.Success(ctx, gin.H{
				"catalog": buildPermissionCatalog(groups),
				"granted": granted,
			})
		}
		admin.GET("/permissions", b.chain(constants.GroupAuth, actionRoute{handler: permissions, perm: constants.PermRead})...)

		users := groups[constants.GroupUsers]
		admin.GET("/users", b.chain(constants.GroupUsers, users[constants.ActionGetUsers])...)
		admin.POST("/users", b.chain(constants.GroupUsers, users[constants.ActionCreateUser])...)
		admin.GET("/users/:id", b.chain(constants.GroupUsers, users[constants.ActionGetUser])...)
		admin.PUT("/users/:id", b.chain(constants.GroupUsers, users[constants.ActionUpdateUser])...)
		admin.DELETE("/users/:id", b.chain(constants.GroupUsers, users[constants.ActionDeleteUser])...)

		pages := groups[constants.GroupPages]
		admin.GET("/pages", b.chain(constants.GroupPages, pages[constants.ActionGetPages])...)
		admin.POST("/pages", b.chain(constants.GroupPages, pages[constants.ActionCreatePage])...)
		admin.GET("/pages/:id", b.chain(constants.GroupPages, pages[constants.ActionGetPage])...)
		admin.PUT("/pages/:id", b.chain(constants.GroupPages, pages[constants.ActionUpdatePage])...)
		admin.DELETE("/pages/:id", b.chain(constants.GroupPages, pages[constants.ActionDeletePage])...)

		admin.GET("/dashboard", b.chain(constants.GroupDashboard, groups[constants.GroupDashboard][constants.ActionGetDashboardData])...)

		settings := groups[constants.GroupSettings]
		admin.POST("/settings/db/test", b.chain(constants.GroupSettings, settings[constants.ActionTestDBConnection])...)
		admin.POST("/settings/db/tables", b.chain(constants.GroupSettings, settings[constants.ActionCreateTables])...)
		admin.PUT("/settings/db", b.chain(constants.GroupSettings, settings[constants.ActionSaveDBConfig])...)
		admin.GET("/settings/system", b.chain(constants.GroupSettings, settings[constants.ActionGetSystemSettings])...)
		admin.PUT("/settings/system/:key", b.chain(constants.GroupSettings, settings[constants.ActionUpdateSystemSetting])...)
		admin.POST("/settings/reload", b.chain(constants.GroupSettings, settings[constants.ActionReloadConfig])...)
	}

	if cfg.Metrics.Enabled {
		path := strings.TrimSpace(cfg.Metrics.Path)
		if path == "" {
			path = "/metrics"
		}
		r.GET(path, gin.WrapH(metrics.Handler()))
	}

	// 健康检查
	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(200, gin.H{"status": "ok", "database": c.HasDatabase()})
	})

	r.NoRoute(func(ctx *gin.Context) {
		response.NotFound(ctx, "Not found")
	})

	return r
}

// chain 组装单个动作的处理链：限流、鉴权、RBAC、处理函数
func (b *routeBuilder) chain(resource string, route actionRoute) []gin.HandlerFunc {
	handlers := make([]gin.HandlerFunc, 0, 4)
	if route.limit != nil {
		handlers = append(handlers, route.limit)
	}
	switch {
	case route.public:
	case route.setup:
		handlers = append(handlers, SetupGuardMiddleware(
			b.container.SetupPending,
			b.container.AuthService,
			b.container.AuthzService,
			resource,
			route.perm,
		))
	default:
		handlers = append(handlers,
			JWTAuthMiddleware(b.container.AuthService),
			AdminRBACMiddleware(b.container.AuthzService, resource, route.perm),
		)
	}
	return append(handlers, route.handler)
}

// dispatch 按 action 参数在分组动作表中查找处理链
// 分发器总是引擎链上的最后一个处理函数，子链中间件里的 c.Next 不会再执行其他处理函数。
func (b *routeBuilder) dispatch(group string, table actionTable) gin.HandlerFunc {
	chains := make(map[string][]gin.HandlerFunc, len(table))
	for action, route := range table {
		chains[action] = b.chain(group, route)
	}
	return func(c *gin.Context) {
		params, err := shared.ParseParams(c)
		if err != nil {
			shared.RespondError(c, err)
			return
		}
		action := params.Action()
		handlers, ok := chains[action]
		if !ok {
			shared.RespondError(c, shared.ErrInvalidAction)
			return
		}
		c.Set(groupContextKey, group)
		c.Set(actionContextKey, action)
		for _, handler := range handlers {
			handler(c)
			if c.IsAborted() {
				return
			}
		}
	}
}

type permissionCatalogItem struct {
	Group      string `json:"group"`
	Action     string `json:"action"`
	Permission string `json:"permission"`
	Public     bool   `json:"public"`
}

func buildPermissionCatalog(groups map[string]actionTable) []permissionCatalogItem {
	items := make([]permissionCatalogItem, 0, 32)
	for group, table := range groups {
		for action, route := range table {
			permission := ""
			if !route.public {
				permission = group + ":" + route.perm
			}
			items = append(items, permissionCatalogItem{
				Group:      group,
				Action:     action,
				Permission: permission,
				Public:     route.public,
			})
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Group == items[j].Group {
			return items[i].Action < items[j].Action
		}
		return items[i].Group < items[j].Group
	})
	return items
}
