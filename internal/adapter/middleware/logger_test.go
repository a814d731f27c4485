package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	log "github.com/sirupsen/logrus"
)

func TestRequestLogger_WritesFields(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	log.SetFormatter(&log.JSONFormatter{})
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	e := echo.New()
	e.Use(echomw.RequestID())
	e.Use(RequestLogger())
	e.GET("/teapot", func(c echo.Context) error { return c.NoContent(http.StatusTeapot) })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/teapot?x=1", nil))

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, buf.String())
	}
	if line["uri"] != "/teapot?x=1" || line["status"] != float64(http.StatusTeapot) || line["level"] != "warning" {
		t.Fatalf("unexpected log line: %v", line)
	}
	if id, _ := line["request_id"].(string); id == "" {
		t.Fatal("request_id missing")
	}
}
