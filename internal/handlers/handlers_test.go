package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/relieflink/disaster-response-api/internal/config"
	"github.com/relieflink/disaster-response-api/internal/services"
	"github.com/relieflink/disaster-response-api/pkg/social"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractLocation(t *testing.T) {
	cases := []struct {
		text string
		want string
	}{
		{"Severe flooding in Lower Manhattan tonight", "Lower Manhattan"},
		{"Fire reported at Central Station", "Central Station"},
		{"People trapped near Oak Ridge, Tennessee", "Oak Ridge, Tennessee"},
		{"no capitalized place here", "no capitalized place here"},
		{"Brooklyn Heights", "Brooklyn Heights"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, extractLocation(tc.text), "text: %q", tc.text)
	}
}

func TestParseKeywords(t *testing.T) {
	assert.Equal(t, []string{"flood", "rescue"}, parseKeywords("flood,rescue"))
	assert.Equal(t, []string{"flood", "rescue"}, parseKeywords(" flood , rescue "))
	assert.Equal(t, []string{"flood"}, parseKeywords("flood,,"))
	assert.Nil(t, parseKeywords(""))
}

func TestUrgentCount(t *testing.T) {
	posts := []social.Post{
		{Priority: services.PriorityUrgent},
		{Priority: services.PriorityMedium},
		{Priority: services.PriorityUrgent},
		{Priority: services.PriorityHigh},
	}
	assert.Equal(t, 2, urgentCount(posts))
	assert.Zero(t, urgentCount(nil))
}

func TestDisasterRequestValidate(t *testing.T) {
	valid := disasterRequest{
		Title:        "Flooding in Manhattan",
		LocationName: "Manhattan, NYC",
		Description:  "Heavy flooding across lower Manhattan with road closures.",
	}
	assert.Empty(t, valid.validate())

	short := valid
	short.Title = "ab"
	assert.Contains(t, short.validate(), "title")

	noLocation := valid
	noLocation.LocationName = "x"
	assert.Contains(t, noLocation.validate(), "location_name")

	thin := valid
	thin.Description = "too short"
	assert.Contains(t, thin.validate(), "description")
}

func TestValidVerificationStatus(t *testing.T) {
	assert.True(t, validVerificationStatus("pending"))
	assert.True(t, validVerificationStatus("verified"))
	assert.True(t, validVerificationStatus("rejected"))
	assert.False(t, validVerificationStatus("maybe"))
	assert.False(t, validVerificationStatus(""))
}

func TestValidResourceTypes(t *testing.T) {
	for _, rt := range []string{"shelter", "hospital", "food", "water", "medical", "rescue"} {
		assert.True(t, validResourceTypes[rt], rt)
	}
	assert.False(t, validResourceTypes["casino"])
}

func newErrorApp(env string) *fiber.App {
	cfg := &config.Config{ServerEnv: env}
	return fiber.New(fiber.Config{ErrorHandler: NewErrorHandler(cfg)})
}

func decodeEnvelope(t *testing.T, resp *http.Response) Envelope {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var env Envelope
	require.NoError(t, json.Unmarshal(body, &env))
	return env
}

func TestErrorHandler_FiberError(t *testing.T) {
	app := newErrorApp("production")
	app.Get("/", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusTeapot, "short and stout")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTeapot, resp.StatusCode)

	env := decodeEnvelope(t, resp)
	assert.False(t, env.Success)
	assert.Equal(t, "short and stout", env.Error)
}

func TestErrorHandler_HidesDetailInProduction(t *testing.T) {
	app := newErrorApp("production")
	app.Get("/", func(c *fiber.Ctx) error {
		return assert.AnError
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	env := decodeEnvelope(t, resp)
	assert.Equal(t, "Internal Server Error", env.Error)
}

func TestErrorHandler_ShowsDetailInDevelopment(t *testing.T) {
	app := newErrorApp("development")
	app.Get("/", func(c *fiber.Ctx) error {
		return assert.AnError
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)

	env := decodeEnvelope(t, resp)
	assert.Equal(t, assert.AnError.Error(), env.Error)
}

func TestRespondHelpers(t *testing.T) {
	app := fiber.New()
	app.Get("/data", func(c *fiber.Ctx) error {
		return respondData(c, fiber.Map{"id": "1"})
	})
	app.Get("/created", func(c *fiber.Ctx) error {
		return respondCreated(c, fiber.Map{"id": "2"})
	})
	app.Get("/message", func(c *fiber.Ctx) error {
		return respondMessage(c, "done")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/data", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, decodeEnvelope(t, resp).Success)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/created", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/message", nil))
	require.NoError(t, err)
	assert.Equal(t, "done", decodeEnvelope(t, resp).Message)
}
