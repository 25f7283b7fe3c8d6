package validation

import (
	"strings"
	"testing"

	"github.com/mock-api-gateway/internal/model"
)

func TestRequired(t *testing.T) {
	t.Run("accepts present fields", func(t *testing.T) {
		if err := Required("name", "a", "method", "GET"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	t.Run("names every missing field", func(t *testing.T) {
		err := Required("name", "", "method", "GET", "path", "  ")
		if err == nil || !strings.Contains(err.Error(), "name, path") {
			t.Fatalf("expected missing name, path error, got %v", err)
		}
	})
}

func TestNormalizeMethod(t *testing.T) {
	if got := NormalizeMethod(" get "); got != "GET" {
		t.Fatalf("unexpected method %q", got)
	}
	if got := NormalizeMethod("purge"); got != "PURGE" {
		t.Fatalf("unexpected method %q", got)
	}
}

func TestStatusName(t *testing.T) {
	defs := []model.StatusDefinition{{Key: "normal", Name: "normal"}, {Key: "error", Name: "abnormal"}}

	t.Run("accepts configured name", func(t *testing.T) {
		if err := StatusName("abnormal", defs); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	t.Run("rejects key instead of name", func(t *testing.T) {
		err := StatusName("error", defs)
		if err == nil || !strings.Contains(err.Error(), "not one of") {
			t.Fatalf("expected unknown status error, got %v", err)
		}
	})

	t.Run("rejects empty", func(t *testing.T) {
		err := StatusName("", defs)
		if err == nil || !strings.Contains(err.Error(), "required") {
			t.Fatalf("expected required error, got %v", err)
		}
	})
}

func TestRateLimitPerMin(t *testing.T) {
	if err := RateLimitPerMin(1); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := RateLimitPerMin(0); err == nil {
		t.Fatal("expected error for zero quota")
	}
	if err := RateLimitPerMin(MaxRateLimitPerMin + 1); err == nil {
		t.Fatal("expected error for quota above max")
	}
}
