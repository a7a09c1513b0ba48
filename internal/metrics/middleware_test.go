package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareLabelsByRoutePattern(t *testing.T) {
	app := fiber.New()
	app.Use(Middleware())
	app.Get("/items/:id", func(c *fiber.Ctx) error {
		return c.SendString(c.Params("id"))
	})
	app.Delete("/items/:id", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusConflict, "locked")
	})

	ok := HTTPRequestTotals.WithLabelValues("GET", "/items/:id", "200")
	conflict := HTTPRequestTotals.WithLabelValues("DELETE", "/items/:id", "409")
	okBefore := testutil.ToFloat64(ok)
	conflictBefore := testutil.ToFloat64(conflict)

	for _, id := range []string{"1", "2"} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/items/"+id, nil), -1)
		require.NoError(t, err)
		resp.Body.Close()
	}
	resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/items/3", nil), -1)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	assert.Equal(t, okBefore+2, testutil.ToFloat64(ok))
	assert.Equal(t, conflictBefore+1, testutil.ToFloat64(conflict))
	assert.Zero(t, testutil.ToFloat64(HTTPRequestTotals.WithLabelValues("GET", "/items/1", "200")))
}
