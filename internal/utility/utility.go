package utility

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/labstack/echo/v4"
)

var (
	IPRateLimiter = sync.Map{}
)

// Chat endpoints allow a short burst per IP. The window is deliberately
// small: this throttles runaway scripts, not real conversations.
const (
	rateLimitWindow      = 1 * time.Minute
	rateLimitMaxRequests = 20
)

// GetRealIP is a helper function to get the user's real IP address.
// It checks proxy headers (like from ngrok) first.
func GetRealIP(c echo.Context) string {
	// X-Forwarded-For can be a list: "client, proxy1, proxy2"
	xForwardedFor := c.Request().Header.Get("X-Forwarded-For")
	if xForwardedFor != "" {
		ips := strings.Split(xForwardedFor, ",")
		firstIP := strings.TrimSpace(ips[0])
		return firstIP
	}

	// X-Real-IP is often set by proxies like Nginx or ngrok
	xRealIP := c.Request().Header.Get("X-Real-IP")
	if xRealIP != "" {
		return xRealIP
	}

	return c.RealIP()
}

func CheckIPRateLimit(ip string) error {
	now := time.Now()

	val, _ := IPRateLimiter.LoadOrStore(ip, []time.Time{})
	attempts := val.([]time.Time)

	// Remove old attempts
	var recent []time.Time
	for _, t := range attempts {
		if now.Sub(t) < rateLimitWindow {
			recent = append(recent, t)
		}
	}

	if len(recent) >= rateLimitMaxRequests {
		return fmt.Errorf("too many messages, please slow down")
	}

	recent = append(recent, now)
	IPRateLimiter.Store(ip, recent)
	return nil
}

// ValidateUserHandle checks the caller-supplied identity header. Handles
// are opaque browser-generated tokens, not account names, so the rules
// are loose: printable, short, no whitespace.
func ValidateUserHandle(handle string) error {
	if handle == "" {
		return fmt.Errorf("user handle is required")
	}
	if len(handle) > 64 {
		return fmt.Errorf("user handle too long (max 64 characters)")
	}
	for _, r := range handle {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '-' || r == '_' || r == '.':
		default:
			return fmt.Errorf("user handle may only contain letters, digits, '-', '_' and '.'")
		}
	}
	return nil
}

// GetUserHandleFromContext safely retrieves the handle the identity
// middleware stored on the Echo context.
func GetUserHandleFromContext(c echo.Context) (string, error) {
	handle, ok := c.Get("user_handle").(string)
	if !ok || handle == "" {
		return "", fmt.Errorf("user handle not found in context")
	}
	return handle, nil
}

// ParseIntParam reads an integer query parameter with a fallback default.
func ParseIntParam(c echo.Context, name string, def int) int {
	raw := c.QueryParam(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

func PgtypeUUIDToString(pgtypeUUID pgtype.UUID) (string, error) {
	if !pgtypeUUID.Valid {
		return "", fmt.Errorf("invalid UUID")
	}

	UUID, err := uuid.FromBytes(pgtypeUUID.Bytes[:])
	if err != nil {
		return "", fmt.Errorf("failed to parse UUID: %w", err)
	}

	return UUID.String(), nil
}

func Min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
