package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dkeye/Parley/internal/adapters/signal"
	"github.com/dkeye/Parley/internal/app/orch"
	"github.com/dkeye/Parley/internal/config"
	"github.com/dkeye/Parley/internal/core"
	"github.com/dkeye/Parley/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// bearerToken reads the credential from the Authorization header, the token query
// parameter or the token cookie, in that order.
func bearerToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if t := c.Query("token"); t != "" {
		return t
	}
	t, _ := c.Cookie("token")
	return t
}

// AuthMiddleware resolves the caller before any upgrade happens.
func AuthMiddleware(verifier core.Verifier, store core.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, err := verifier.Verify(c.Request.Context(), bearerToken(c))
		if err != nil {
			log.Debug().Err(err).Str("module", "adapters.http").Msg("auth rejected")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication error"})
			return
		}
		user, err := store.FindUser(c.Request.Context(), uid)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
				return
			}
			log.Error().Err(err).Str("module", "adapters.http").Str("user", string(uid)).Msg("load user")
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "Try again later"})
			return
		}
		c.Set(signal.UserKey, user)
		c.Next()
	}
}

// PresenceDirectory locates users connected to other nodes.
type PresenceDirectory interface {
	Lookup(ctx context.Context, uid domain.UserID) (node string, ok bool, err error)
}

// presenceHandler answers from the local registry first and then from dir, if any.
func presenceHandler(o *orch.Orchestrator, dir PresenceDirectory) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := domain.UserID(c.Param("id"))
		if _, ok := o.Registry.Lookup(uid); ok {
			c.JSON(http.StatusOK, gin.H{"userId": uid, "online": true, "local": true})
			return
		}
		if dir == nil {
			c.JSON(http.StatusOK, gin.H{"userId": uid, "online": false, "local": false})
			return
		}
		node, ok, err := dir.Lookup(c.Request.Context(), uid)
		if err != nil {
			log.Warn().Err(err).Str("module", "adapters.http").Str("user", string(uid)).Msg("presence lookup")
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Try again later"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"userId": uid, "online": ok, "local": false, "node": node})
	}
}

// SetupRouter builds the HTTP surface. dir may be nil on a single node.
func SetupRouter(ctx context.Context, cfg *config.Config, o *orch.Orchestrator, verifier core.Verifier, store core.Store, dir PresenceDirectory) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "online": o.Registry.Len()})
	})

	ctrl := signal.NewSignalWSController(o, signal.Options{
		ReadLimit:    cfg.ReadLimit,
		PingPeriod:   cfg.PingPeriod,
		SendBuffer:   cfg.SendBuffer,
		RateLimit:    cfg.RateLimit.Commands,
		RateInterval: cfg.RateLimit.Interval,
	})

	api := r.Group("/api", AuthMiddleware(verifier, store))
	api.GET("/online", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"userIds": o.Registry.Snapshot()})
	})
	api.GET("/presence/:id", presenceHandler(o, dir))
	api.GET("/rooms", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"rooms": o.Rooms.List()})
	})
	api.GET("/ws", func(c *gin.Context) {
		ctrl.HandleSignal(ctx, c)
	})

	log.Info().Str("module", "adapters.http").Msg("router setup")
	return r
}
