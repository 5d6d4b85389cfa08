package view

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"blogicum/internal/models"
	"blogicum/web"

	"github.com/gin-gonic/gin"
)

func TestFuncMapHelpers(t *testing.T) {
	shanghai := time.FixedZone("CST", 8*3600)
	funcs := FuncMap(Options{SiteName: "Blogicum", Location: shanghai})

	formatDate := funcs["formatDate"].(func(time.Time) string)
	if got := formatDate(time.Date(2024, 5, 1, 16, 30, 0, 0, time.UTC)); got != "2024-05-02 00:30" {
		t.Fatalf("formatDate should use configured location, got %s", got)
	}
	if got := formatDate(time.Time{}); got != "" {
		t.Fatalf("zero time should render empty, got %s", got)
	}

	pageURL := funcs["pageURL"].(func(string, int) string)
	if got := pageURL("/category/tech/", 3); got != "/category/tech/?page=3" {
		t.Fatalf("unexpected page url %s", got)
	}

	dict := funcs["dict"].(func(...interface{}) (map[string]interface{}, error))
	if _, err := dict("odd"); err == nil {
		t.Fatalf("odd dict arguments should fail")
	}
	if _, err := dict(1, 2); err == nil {
		t.Fatalf("non-string dict key should fail")
	}

	canMutate := funcs["canMutate"].(func(*models.User, uint) bool)
	if canMutate(nil, 1) {
		t.Fatalf("anonymous user cannot mutate")
	}
	if !canMutate(&models.User{ID: 1}, 1) || canMutate(&models.User{ID: 2}, 1) {
		t.Fatalf("only the owner can mutate")
	}
}

func TestNewParsesEmbeddedTemplates(t *testing.T) {
	gin.SetMode(gin.TestMode)
	renderer, err := New(web.Templates(), Options{SiteName: "Blogicum"})
	if err != nil {
		t.Fatalf("parse templates failed: %v", err)
	}

	r := gin.New()
	r.HTMLRender = renderer
	r.GET("/", func(c *gin.Context) {
		c.HTML(http.StatusNotFound, "error.html", gin.H{
			"CurrentUser": (*models.User)(nil),
			"CurrentPath": "/",
			"Code":        http.StatusNotFound,
			"Error":       "页面不存在",
		})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("want 404 got %d", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{"<title>404 · Blogicum</title>", "页面不存在", `href="/auth/login/"`} {
		if !strings.Contains(body, want) {
			t.Fatalf("body should contain %q: %s", want, body)
		}
	}
}

func TestNewRequiresLayout(t *testing.T) {
	fsys := fstest.MapFS{
		"views/index.html": &fstest.MapFile{Data: []byte(`{{ define "content" }}hi{{ end }}`)},
	}
	if _, err := New(fsys, Options{}); err == nil {
		t.Fatalf("missing layout should fail")
	}
}
