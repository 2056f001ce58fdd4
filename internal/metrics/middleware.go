package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
)

// HTTPMetrics records request count and latency per matched route.
func HTTPMetrics(c *PrometheusCollector) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		start := time.Now()
		err := ctx.Next()

		status := ctx.Response().StatusCode()
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		}
		route := ctx.Route().Path
		if route == "" {
			route = ctx.Path()
		}
		c.ObserveHTTP(route, ctx.Method(), strconv.Itoa(status), time.Since(start))
		return err
	}
}
