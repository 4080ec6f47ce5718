// admin.go - visitor tracking with hashed addresses, and the admin dashboard
package main

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/meliem/meliem.github.io/internal/config"
	"github.com/meliem/meliem.github.io/internal/store"
	"go.uber.org/zap"
)

const adminCookie = "admin_token"

// untrackedPrefixes are never recorded as visits.
var untrackedPrefixes = []string{"/static/", "/admin/", "/favicon", "/privacy"}

// adminSession holds the per-process admin token and the salt used to hash
// visitor addresses. Both change on every restart.
type adminSession struct {
	token    string
	salt     string
	username string
	password string
}

func newAdminSession(creds config.AdminConfig, logger *zap.Logger) (*adminSession, error) {
	token, err := randomHex(32)
	if err != nil {
		return nil, err
	}
	salt, err := randomHex(32)
	if err != nil {
		return nil, err
	}

	logger.Info("Admin dashboard enabled", zap.String("login", "/admin/login"))
	if gin.Mode() == gin.DebugMode {
		logger.Debug("Admin token", zap.String("token", token))
		if creds.Password == config.DefaultConfig().Admin.Password {
			logger.Warn("Admin password is the default, set ADMIN_PASSWORD")
		}
	}

	return &adminSession{token: token, salt: salt, username: creds.Username, password: creds.Password}, nil
}

func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// hashIP is stable for an address within one process lifetime only.
func (s *adminSession) hashIP(ip string) string {
	sum := sha256.Sum256([]byte(ip + s.salt))
	return hex.EncodeToString(sum[:])[:16]
}

func (s *adminSession) checkCredentials(username, password string) bool {
	u := subtle.ConstantTimeCompare([]byte(username), []byte(s.username))
	p := subtle.ConstantTimeCompare([]byte(password), []byte(s.password))
	return u&p == 1
}

func (s *adminSession) requireToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(adminCookie)
		if err != nil || subtle.ConstantTimeCompare([]byte(token), []byte(s.token)) != 1 {
			c.Redirect(http.StatusFound, "/admin/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

// trackVisits records page views in the background. Requests carrying
// DNT: 1 are not recorded.
func (a *app) trackVisits() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !a.shouldTrack(c) {
			c.Next()
			return
		}

		visit := store.Visit{
			HashedIP:  a.admin.hashIP(c.ClientIP()),
			UserAgent: c.GetHeader("User-Agent"),
			Path:      c.Request.URL.Path,
			Timestamp: time.Now(),
		}
		a.visits.Add(1)
		go func() {
			defer a.visits.Done()
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := a.store.RecordVisit(ctx, visit); err != nil {
				a.logger.Warn("Failed to record visit", zap.Error(err))
			}
		}()
		c.Next()
	}
}

func (a *app) shouldTrack(c *gin.Context) bool {
	if c.GetHeader("DNT") == "1" {
		return false
	}
	path := c.Request.URL.Path
	for _, prefix := range untrackedPrefixes {
		if strings.HasPrefix(path, prefix) {
			return false
		}
	}
	return true
}

// cleanupOldVisitorData deletes visits past the retention window.
func (a *app) cleanupOldVisitorData(ctx context.Context) int64 {
	cutoff := time.Now().AddDate(0, -a.cfg.Privacy.RetentionMonths, 0)
	n, err := a.store.PurgeVisitorsBefore(ctx, cutoff)
	if err != nil {
		a.logger.Error("Visitor retention cleanup failed", zap.Error(err))
		return 0
	}
	if n > 0 {
		a.logger.Info("Removed expired visitor records",
			zap.Int64("rows", n),
			zap.Int("retention_months", a.cfg.Privacy.RetentionMonths))
	}
	return n
}

// defaultPrefetch lists the pages warmed by the dashboard's prefetch button.
func (a *app) defaultPrefetch() []string {
	paths := []string{"/", "/about", "/experience", "/projects", "/skills", "/contact"}
	for _, p := range a.site.Get().Projects {
		paths = append(paths, "/projects/"+p.ID)
	}
	return paths
}

func (a *app) setupAdminRoutes(r *gin.Engine) {
	r.GET("/privacy", a.handlePrivacy)
	r.GET("/admin/login", a.handleLoginForm)
	r.POST("/admin/login", a.handleLogin)
	r.GET("/admin/logout", a.handleLogout)

	g := r.Group("/admin", a.admin.requireToken())
	g.GET("/dashboard", a.handleDashboard)
	g.GET("/api/stats", a.handleStatsJSON)
	g.GET("/visitors", a.handleVisitors)
	g.GET("/messages", a.handleMessages)
	g.GET("/export/stats", a.handleExportStats)
	g.POST("/privacy/delete-visitor-data", a.handlePurgeVisitors)
	g.POST("/cache/refresh", a.handleCacheRefresh)
	g.POST("/cache/prefetch", a.handleCachePrefetch)
}

func (a *app) handlePrivacy(c *gin.Context) {
	c.HTML(http.StatusOK, "privacy.html", gin.H{
		"title":     "Privacy Policy",
		"site":      a.site.Get(),
		"page":      "privacy",
		"retention": a.cfg.Privacy.RetentionMonths,
	})
}

func (a *app) handleLoginForm(c *gin.Context) {
	c.HTML(http.StatusOK, "admin-login.html", gin.H{"title": "Admin Login"})
}

func (a *app) handleLogin(c *gin.Context) {
	from := zap.String("from", a.admin.hashIP(c.ClientIP()))
	if !a.admin.checkCredentials(c.PostForm("username"), c.PostForm("password")) {
		a.logger.Warn("Admin login rejected", from)
		c.HTML(http.StatusUnauthorized, "admin-login.html", gin.H{
			"title": "Admin Login",
			"error": "Invalid credentials",
		})
		return
	}
	c.SetCookie(adminCookie, a.admin.token, int((24 * time.Hour).Seconds()), "/admin", "", gin.Mode() == gin.ReleaseMode, true)
	a.logger.Info("Admin logged in", from)
	c.Redirect(http.StatusFound, "/admin/dashboard")
}

func (a *app) handleLogout(c *gin.Context) {
	c.SetCookie(adminCookie, "", -1, "/admin", "", false, true)
	a.logger.Info("Admin logged out", zap.String("from", a.admin.hashIP(c.ClientIP())))
	c.Redirect(http.StatusFound, "/admin/login")
}

// adminError renders the admin error page and logs err.
func (a *app) adminError(c *gin.Context, msg string, err error) {
	a.logger.Error(msg, zap.Error(err))
	c.HTML(http.StatusInternalServerError, "admin-error.html", gin.H{"error": msg})
}

func (a *app) handleDashboard(c *gin.Context) {
	stats, err := a.store.Stats(c.Request.Context(), time.Now())
	if err != nil {
		a.adminError(c, "Failed to load statistics", err)
		return
	}
	c.HTML(http.StatusOK, "admin-dashboard.html", gin.H{
		"title":        "Dashboard",
		"stats":        stats,
		"cacheEnabled": a.cfg.Cache.Enabled,
		"caches":       a.cache.Store().Stats(),
		"flash":        c.Query("flash"),
	})
}

func (a *app) handleStatsJSON(c *gin.Context) {
	stats, err := a.store.Stats(c.Request.Context(), time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (a *app) handleExportStats(c *gin.Context) {
	c.Header("Content-Disposition", "attachment; filename=admin-stats.json")
	a.logger.Info("Admin stats exported", zap.String("by", a.admin.hashIP(c.ClientIP())))
	a.handleStatsJSON(c)
}

func (a *app) handleVisitors(c *gin.Context) {
	visits, err := a.store.RecentVisits(c.Request.Context(), 200)
	if err != nil {
		a.adminError(c, "Failed to load visitors", err)
		return
	}
	c.HTML(http.StatusOK, "admin-visitors.html", gin.H{"title": "Visitors", "visitors": visits})
}

func (a *app) handleMessages(c *gin.Context) {
	msgs, err := a.store.Messages(c.Request.Context(), 200)
	if err != nil {
		a.adminError(c, "Failed to load messages", err)
		return
	}
	c.HTML(http.StatusOK, "admin-messages.html", gin.H{"title": "Messages", "messages": msgs})
}

// handlePurgeVisitors runs the retention cleanup now.
func (a *app) handlePurgeVisitors(c *gin.Context) {
	n := a.cleanupOldVisitorData(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"message": "Privacy cleanup complete", "deleted": n})
}

func (a *app) handleCacheRefresh(c *gin.Context) {
	if err := a.cache.Refresh(c.Request.Context()); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Core assets refreshed"})
}

// handleCachePrefetch warms the runtime cache with the posted url values, or
// every site page when none are given.
func (a *app) handleCachePrefetch(c *gin.Context) {
	paths := c.PostFormArray("url")
	if len(paths) == 0 {
		paths = a.defaultPrefetch()
	}
	added := a.cache.Prefetch(c.Request.Context(), paths)
	c.JSON(http.StatusOK, gin.H{"message": "Prefetch complete", "added": added})
}
