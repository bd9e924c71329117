package middleware

import (
	"net/http"
	"net/netip"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// AdminAccessConfig guards the operator endpoints (outbox inspection and replay)
type AdminAccessConfig struct {
	// Enabled false hides the endpoints behind a 404
	Enabled bool
	// AllowedIPs holds addresses or CIDR ranges; empty allows every client
	AllowedIPs []string
	Logger     *zap.Logger
}

// AdminAccess restricts a route group to the configured client networks.
// Unparseable entries are logged and skipped.
func AdminAccess(cfg AdminAccessConfig) gin.HandlerFunc {
	prefixes := parseAllowList(cfg.AllowedIPs, cfg.Logger)

	return func(c *gin.Context) {
		if !cfg.Enabled {
			abortWithError(c, http.StatusNotFound, "NOT_FOUND", "Resource not found")
			return
		}
		if len(cfg.AllowedIPs) > 0 && !ipAllowed(c.ClientIP(), prefixes) {
			if cfg.Logger != nil {
				cfg.Logger.Warn("Admin endpoint refused", zap.String("client_ip", c.ClientIP()), zap.String("path", c.Request.URL.Path))
			}
			abortWithError(c, http.StatusForbidden, dto.ErrCodeForbidden, "Access to admin endpoints is restricted")
			return
		}
		c.Next()
	}
}

func parseAllowList(entries []string, log *zap.Logger) []netip.Prefix {
	prefixes := make([]netip.Prefix, 0, len(entries))
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if strings.Contains(entry, "/") {
			if p, err := netip.ParsePrefix(entry); err == nil {
				prefixes = append(prefixes, p.Masked())
				continue
			}
		} else if addr, err := netip.ParseAddr(entry); err == nil {
			prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
			continue
		}
		if log != nil {
			log.Warn("Ignoring invalid admin allow-list entry", zap.String("entry", entry))
		}
	}
	return prefixes
}

func ipAllowed(clientIP string, prefixes []netip.Prefix) bool {
	addr, err := netip.ParseAddr(clientIP)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, p := range prefixes {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}
