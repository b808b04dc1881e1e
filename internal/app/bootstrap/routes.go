// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	authgooglefeature "github.com/dalemusser/studyhub/internal/app/features/authgoogle"
	groupsfeature "github.com/dalemusser/studyhub/internal/app/features/groups"
	healthfeature "github.com/dalemusser/studyhub/internal/app/features/health"
	logoutfeature "github.com/dalemusser/studyhub/internal/app/features/logout"
	notificationsfeature "github.com/dalemusser/studyhub/internal/app/features/notifications"
	postsfeature "github.com/dalemusser/studyhub/internal/app/features/posts"
	tasksfeature "github.com/dalemusser/studyhub/internal/app/features/tasks"
	groupssvc "github.com/dalemusser/studyhub/internal/app/groups"
	"github.com/dalemusser/studyhub/internal/app/live"
	"github.com/dalemusser/studyhub/internal/app/notify"
	postssvc "github.com/dalemusser/studyhub/internal/app/posts"
	"github.com/dalemusser/studyhub/internal/app/profiles"
	"github.com/dalemusser/studyhub/internal/app/store/oauthstate"
	"github.com/dalemusser/studyhub/internal/app/system/auth"
	taskssvc "github.com/dalemusser/studyhub/internal/app/tasks"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. StudyHub applies session middleware
// globally, then mounts the health check, the Google sign-in flow, and the
// JSON API for tasks, notifications, groups, and group posts.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Services share one document store; the live manager watches it for
	// the streaming endpoints.
	liveMgr := live.NewManager(deps.Store, logger)
	profileSvc := profiles.NewService(deps.Store, logger)
	taskSvc := taskssvc.NewService(deps.Store, logger)
	notifySvc := notify.NewService(deps.Store, logger)
	postSvc := postssvc.NewService(deps.Store, logger)
	groupSvc := groupssvc.NewService(deps.Store, logger)

	r := chi.NewRouter()

	// Global auth middleware: loads SessionUser into context if logged in.
	// This makes the current user available to all handlers via auth.CurrentUser(r).
	r.Use(sessionMgr.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Authentication
	googleHandler := authgooglefeature.NewHandler(
		sessionMgr, profileSvc, oauthstate.New(deps.MongoDatabase),
		appCfg.GoogleClientID, appCfg.GoogleClientSecret, appCfg.BaseURL,
		logger)
	r.Mount("/auth/google", authgooglefeature.Routes(googleHandler))

	logoutHandler := logoutfeature.NewHandler(sessionMgr, logger)
	r.Mount("/logout", logoutfeature.Routes(logoutHandler, sessionMgr))

	// JSON API
	tasksHandler := tasksfeature.NewHandler(taskSvc, logger)
	r.Mount("/api/tasks", tasksfeature.Routes(tasksHandler, sessionMgr))

	notificationsHandler := notificationsfeature.NewHandler(notifySvc, liveMgr, logger)
	r.Mount("/api/notifications", notificationsfeature.Routes(notificationsHandler, sessionMgr))

	// Group posts mount inside the groups router at /{groupID}/posts.
	postsHandler := postsfeature.NewHandler(postSvc, logger)
	groupsHandler := groupsfeature.NewHandler(groupSvc, logger)
	r.Mount("/api/groups", groupsfeature.Routes(groupsHandler, sessionMgr, postsfeature.Routes(postsHandler, sessionMgr)))

	return r, nil
}
