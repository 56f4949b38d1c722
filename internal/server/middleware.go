package server

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/floorops/floorops/internal/actorcontext"
	"github.com/floorops/floorops/pkg/correlation"
)

const (
	HeaderRequestID     = "X-Request-Id"
	HeaderCorrelationID = "X-Correlation-Id"
	HeaderStaffID       = "X-Staff-Id"
	HeaderStaffUsername = "X-Staff-Username"
)

// RequestID stamps each request with a uuid, honoring one supplied by
// the caller's proxy.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(HeaderRequestID))
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

// Correlation propagates or mints the cross-service correlation id.
func Correlation() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if cid := strings.TrimSpace(c.GetHeader(HeaderCorrelationID)); cid != "" {
			ctx = correlation.WithID(ctx, cid)
		}
		ctx, cid := correlation.Ensure(ctx)
		c.Request = c.Request.WithContext(ctx)
		c.Header(HeaderCorrelationID, cid)
		c.Next()
	}
}

func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	log = log.Named("http")
	return func(c *gin.Context) {
		started := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("route", route),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(started)),
			zap.String("correlation_id", correlation.FromContext(c.Request.Context())),
		)
	}
}

// ActorContext reads the opaque terminal identity from headers.
// Identity is validated upstream; the engine only records it.
func ActorContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := actorcontext.Actor{
			Username: strings.TrimSpace(c.GetHeader(HeaderStaffUsername)),
			ClientIP: c.ClientIP(),
		}
		if raw := strings.TrimSpace(c.GetHeader(HeaderStaffID)); raw != "" {
			if id, err := snowflake.ParseString(raw); err == nil {
				actor.StaffID = id
			}
		}
		c.Request = c.Request.WithContext(actorcontext.WithActor(c.Request.Context(), actor))
		c.Next()
	}
}
