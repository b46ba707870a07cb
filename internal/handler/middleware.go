package handler

import (
	"context"
	"net/http"
	"sync"
	"time"

	"go-gin-invitation/internal/model"
	"go-gin-invitation/internal/service"
	apperrors "go-gin-invitation/pkg/app_errors"
	"go-gin-invitation/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	ctxSessionKey = "session"
	ctxEventKey   = "event"
)

// RequestLogger logs one line per request through zap.
func RequestLogger() gin.HandlerFunc {
	log := logger.WithComponent("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			log.Error("request", fields...)
			return
		}
		log.Info("request", fields...)
	}
}

// Timeout bounds the request context so every store call is cancelled with it.
func Timeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if d <= 0 {
			c.Next()
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RateLimiter allows limit requests per client IP per window. Public
// invitation routes use it to slow down slug guessing.
func RateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	type client struct {
		count     int
		resetTime time.Time
	}
	var (
		mu      sync.Mutex
		clients = make(map[string]*client)
		sweep   = time.Now().Add(window)
	)

	return func(c *gin.Context) {
		now := time.Now()
		ip := c.ClientIP()

		mu.Lock()
		if now.After(sweep) {
			for k, v := range clients {
				if now.After(v.resetTime) {
					delete(clients, k)
				}
			}
			sweep = now.Add(window)
		}
		cl, ok := clients[ip]
		if !ok || now.After(cl.resetTime) {
			cl = &client{resetTime: now.Add(window)}
			clients[ip] = cl
		}
		cl.count++
		exceeded := cl.count > limit
		retryAfter := cl.resetTime.Sub(now).Seconds()
		mu.Unlock()

		if exceeded {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "Rate limit exceeded",
				"retry_after": retryAfter,
			})
			return
		}
		c.Next()
	}
}

// Guard holds the authentication and ownership middlewares.
type Guard struct {
	auth   service.AuthService
	events service.EventService
}

func NewGuard(auth service.AuthService, events service.EventService) *Guard {
	return &Guard{auth: auth, events: events}
}

// RequireAuth resolves the bearer token into a session.
func (g *Guard) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			handleError(c, apperrors.ErrUnauthorized, "RequireAuth")
			c.Abort()
			return
		}
		session, err := g.auth.GetSession(c.Request.Context(), token)
		if err != nil {
			handleError(c, err, "RequireAuth")
			c.Abort()
			return
		}
		if session == nil {
			handleError(c, apperrors.ErrUnauthorized, "RequireAuth")
			c.Abort()
			return
		}
		c.Set(ctxSessionKey, session)
		c.Next()
	}
}

// RequireEventOwner loads :id and rejects events the caller does not own
// with 404, the same answer as for a missing event.
func (g *Guard) RequireEventOwner() gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, ok := ParamUUID(c, "id")
		if !ok {
			c.Abort()
			return
		}
		session := sessionFrom(c)
		if session == nil {
			handleError(c, apperrors.ErrUnauthorized, "RequireEventOwner")
			c.Abort()
			return
		}
		event, err := g.events.GetOwned(c.Request.Context(), session.UserID, eventID)
		if err != nil {
			handleError(c, err, "RequireEventOwner")
			c.Abort()
			return
		}
		c.Set(ctxEventKey, event)
		c.Next()
	}
}

func sessionFrom(c *gin.Context) *model.Session {
	v, ok := c.Get(ctxSessionKey)
	if !ok {
		return nil
	}
	session, _ := v.(*model.Session)
	return session
}

func eventFrom(c *gin.Context) *model.Event {
	v, ok := c.Get(ctxEventKey)
	if !ok {
		return nil
	}
	event, _ := v.(*model.Event)
	return event
}
