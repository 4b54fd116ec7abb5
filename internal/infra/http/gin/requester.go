package ginserver

import (
	"net/http"
	"strings"
	"time"

	gin "github.com/gin-gonic/gin"

	domainproperty "stayengine/internal/domain/property"
)

const dateLayout = "2006-01-02"

// requesterFrom reads the caller identity forwarded by the gateway. Mutating
// endpoints refuse anonymous callers; reads that need identity do the same.
func requesterFrom(c *gin.Context) (domainproperty.Requester, bool) {
	id := strings.TrimSpace(c.GetHeader("X-User-ID"))
	if id == "" {
		c.JSON(http.StatusForbidden, gin.H{"error": "caller identity is required"})
		return domainproperty.Requester{}, false
	}
	role := domainproperty.RoleUser
	if strings.EqualFold(strings.TrimSpace(c.GetHeader("X-User-Role")), string(domainproperty.RoleAdmin)) {
		role = domainproperty.RoleAdmin
	}
	return domainproperty.Requester{ID: id, Role: role}, true
}

// parseDate accepts calendar dates and full RFC 3339 timestamps.
func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(dateLayout, raw); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}

// parseDatePtr fills dst from an optional request field, rejecting the
// request on a malformed value.
func parseDatePtr(c *gin.Context, raw *string, field string, dst **time.Time) bool {
	if raw == nil {
		return true
	}
	t, err := parseDate(*raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + field + ": expected YYYY-MM-DD"})
		return false
	}
	*dst = &t
	return true
}

func parseOptionalDate(c *gin.Context, param string) (time.Time, bool) {
	raw := strings.TrimSpace(c.Query(param))
	if raw == "" {
		return time.Time{}, true
	}
	t, err := parseDate(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + param + ": expected YYYY-MM-DD"})
		return time.Time{}, false
	}
	return t, true
}

func parseRequiredDate(c *gin.Context, param string) (time.Time, bool) {
	raw := strings.TrimSpace(c.Query(param))
	if raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": param + " is required"})
		return time.Time{}, false
	}
	t, err := parseDate(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + param + ": expected YYYY-MM-DD"})
		return time.Time{}, false
	}
	return t, true
}
