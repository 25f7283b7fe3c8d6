package validation

import (
	"fmt"
	"strings"

	"github.com/mock-api-gateway/internal/model"
)

// Required returns an error naming every empty field, in the order given.
// fields alternates name, value.
func Required(fields ...string) error {
	var missing []string
	for i := 0; i+1 < len(fields); i += 2 {
		if strings.TrimSpace(fields[i+1]) == "" {
			missing = append(missing, fields[i])
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required field(s): %s", strings.Join(missing, ", "))
	}
	return nil
}

// NormalizeMethod upper-cases an HTTP method. Unknown verbs are kept.
func NormalizeMethod(method string) string {
	return strings.ToUpper(strings.TrimSpace(method))
}

// StatusName validates that status names one of the configured statuses.
func StatusName(status string, defs []model.StatusDefinition) error {
	if strings.TrimSpace(status) == "" {
		return fmt.Errorf("status is required")
	}
	for _, d := range defs {
		if d.Name == status {
			return nil
		}
	}
	names := make([]string, 0, len(defs))
	for _, d := range defs {
		names = append(names, d.Name)
	}
	return fmt.Errorf("status %q is not one of the configured statuses (%s)", status, strings.Join(names, ", "))
}

// RateLimitPerMin validates a per-key quota.
func RateLimitPerMin(limit int) error {
	if limit < 1 || limit > MaxRateLimitPerMin {
		return fmt.Errorf("rateLimitPerMin must be between 1 and %d", MaxRateLimitPerMin)
	}
	return nil
}

// MaxRateLimitPerMin bounds issued key quotas.
const MaxRateLimitPerMin = 100000
