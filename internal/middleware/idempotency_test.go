package middleware

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/atlas-bank/atlas_bank/internal/logging"
)

func setupIdempotentApp(t *testing.T) *fiber.App {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { cache.Close() })

	app := fiber.New()
	app.Use(Idempotency(cache, time.Minute, logging.Discard()))

	// Stands in for a money-moving endpoint: each uncached invocation would
	// mutate a balance, so replays must never reach it twice.
	calls := 0
	app.Post("/deposit", func(c *fiber.Ctx) error {
		calls++
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"new_balance": 100 * calls})
	})
	app.Post("/withdraw", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"new_balance": 0})
	})

	return app
}

func postWithKey(t *testing.T, app *fiber.App, path, key string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodPost, path, strings.NewReader(`{"amount":100}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	if key != "" {
		req.Header.Set(idempotencyKeyHeader, key)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	resp.Body.Close()
	return resp.StatusCode, string(body)
}

func TestIdempotencyRequiresHeader(t *testing.T) {
	app := setupIdempotentApp(t)

	status, _ := postWithKey(t, app, "/deposit", "")
	if status != fiber.StatusBadRequest {
		t.Fatalf("expected %d got %d", fiber.StatusBadRequest, status)
	}
}

func TestIdempotencyReplaysStoredResponse(t *testing.T) {
	app := setupIdempotentApp(t)

	status, first := postWithKey(t, app, "/deposit", "dep-1")
	if status != fiber.StatusOK {
		t.Fatalf("first deposit: expected %d got %d", fiber.StatusOK, status)
	}

	status, second := postWithKey(t, app, "/deposit", "dep-1")
	if status != fiber.StatusOK {
		t.Fatalf("replayed deposit: expected %d got %d", fiber.StatusOK, status)
	}
	if first != second {
		t.Fatalf("replay returned a different response: %s vs %s", first, second)
	}
	if !strings.Contains(second, `"new_balance":100`) {
		t.Fatalf("replay reached the handler again: %s", second)
	}
}

func TestIdempotencyKeyIsScopedPerEndpoint(t *testing.T) {
	app := setupIdempotentApp(t)

	if status, _ := postWithKey(t, app, "/deposit", "shared-key"); status != fiber.StatusOK {
		t.Fatalf("deposit: unexpected status %d", status)
	}

	// The same key against another endpoint must not replay the deposit.
	status, body := postWithKey(t, app, "/withdraw", "shared-key")
	if status != fiber.StatusOK {
		t.Fatalf("withdraw: unexpected status %d", status)
	}
	if !strings.Contains(body, `"new_balance":0`) {
		t.Fatalf("withdraw replayed a foreign response: %s", body)
	}
}
