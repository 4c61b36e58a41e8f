package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sales_desk/internal/importer"
	"sales_desk/internal/rowsource"
	"sales_desk/internal/session"
	"sales_desk/internal/users"
)

const sessionKey = "session"

// authHandler implements login/logout and the session middleware. A
// successful login also triggers the once-per-session bootstrap sync; a
// failing sync is logged and the login still succeeds with whatever the
// sales table already holds.
type authHandler struct {
	directory users.Directory
	sessions  *session.Manager
	engine    *importer.Engine
	source    rowsource.Source
	logger    *zap.Logger
}

func newAuthHandler(directory users.Directory, sessions *session.Manager, engine *importer.Engine, source rowsource.Source, logger *zap.Logger) *authHandler {
	return &authHandler{
		directory: directory,
		sessions:  sessions,
		engine:    engine,
		source:    source,
		logger:    logger,
	}
}

func (h *authHandler) handleLogin(ctx *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}

	role, err := h.directory.FindByCredential(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, users.ErrInvalidCredentials) {
			ctx.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		h.logger.Error("credential check failed", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	sess := h.sessions.Create(req.Username, role)
	if sess.BeginSync() {
		if res, err := h.engine.Sync(h.source); err != nil {
			h.logger.Warn("bootstrap sync failed", zap.String("user", sess.Username), zap.Error(err))
		} else {
			h.logger.Info("bootstrap sync done",
				zap.String("user", sess.Username),
				zap.Int("rows_imported", res.RowsImported),
			)
		}
	}

	ctx.JSON(http.StatusOK, gin.H{
		"token":    sess.Token,
		"username": sess.Username,
		"role":     sess.Role,
	})
}

func (h *authHandler) handleLogout(ctx *gin.Context) {
	sess := sessionFrom(ctx)
	h.sessions.Destroy(sess.Token)
	ctx.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// requireSession resolves the bearer token to a live session and stores it
// in the request context.
func (h *authHandler) requireSession() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token := strings.TrimPrefix(ctx.GetHeader("Authorization"), "Bearer ")
		sess, ok := h.sessions.Get(token)
		if !ok {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or expired session"})
			return
		}
		ctx.Set(sessionKey, sess)
		ctx.Next()
	}
}

// requireRole gates a route group on the session's role tag.
func requireRole(role users.Role) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if sessionFrom(ctx).Role != role {
			ctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
			return
		}
		ctx.Next()
	}
}

func sessionFrom(ctx *gin.Context) *session.Session {
	return ctx.MustGet(sessionKey).(*session.Session)
}
