package metrics

import (
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackRecordsResult(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewPrometheusCollector(reg)

	func() (err error) {
		defer Track(c, "deposit", time.Now(), &err)
		return errors.New("boom")
	}()
	func() (err error) {
		defer Track(c, "deposit", time.Now(), &err)
		return nil
	}()

	assert.Equal(t, float64(1), testutil.ToFloat64(c.operationResults.WithLabelValues("deposit", ResultFailure)))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.operationResults.WithLabelValues("deposit", ResultSuccess)))
}

func TestRecordTransaction(t *testing.T) {
	c := NewPrometheusCollector(prometheus.NewRegistry())
	c.RecordTransaction("DEPOSIT", "PENDING", decimal.RequireFromString("12.5"))
	c.RecordTransaction("DEPOSIT", "PENDING", decimal.NewFromInt(2))

	assert.Equal(t, float64(2), testutil.ToFloat64(c.transactions.WithLabelValues("DEPOSIT", "PENDING")))
	assert.Equal(t, 14.5, testutil.ToFloat64(c.transactionVolume.WithLabelValues("DEPOSIT", "PENDING")))
}

func TestHTTPMetricsMiddleware(t *testing.T) {
	c := NewPrometheusCollector(prometheus.NewRegistry())
	app := fiber.New()
	app.Use(HTTPMetrics(c))
	app.Get("/plans/:id", func(ctx *fiber.Ctx) error {
		return ctx.SendStatus(fiber.StatusNoContent)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/plans/7", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	assert.Equal(t, float64(1), testutil.ToFloat64(c.httpRequests.WithLabelValues("/plans/:id", "GET", "204")))
}

func TestOrNoop(t *testing.T) {
	assert.IsType(t, NoopCollector{}, OrNoop(nil))
}
