package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/studio-desk/models"
	"github.com/studio-desk/services"
	"github.com/studio-desk/utils"
)

type fakeVerifier struct {
	sessions map[string]models.Session
	users    map[string]models.User
	signOuts []string
}

func (f *fakeVerifier) GetSession(_ context.Context, token string) (models.Session, error) {
	s, ok := f.sessions[token]
	if !ok {
		return models.Session{}, services.ErrUnauthorized
	}
	return s, nil
}

func (f *fakeVerifier) GetUser(_ context.Context, id string) (models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return models.User{}, services.ErrUnauthorized
	}
	return u, nil
}

func (f *fakeVerifier) SignOut(_ context.Context, s models.Session) error {
	f.signOuts = append(f.signOuts, s.ID)
	return nil
}

type fixedCaps map[string]services.Capabilities

func (f fixedCaps) FromProfile(user models.User) services.Capabilities {
	return f[user.ID]
}

func init() {
	gin.SetMode(gin.TestMode)
}

func newGuardedRouter(v *fakeVerifier, caps CapabilityResolver, extra ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	chain := append([]gin.HandlerFunc{AuthMiddleware(v, caps, zap.NewNop())}, extra...)
	chain = append(chain, func(c *gin.Context) {
		got, _ := Capabilities(c)
		c.JSON(http.StatusOK, gin.H{"status": "success", "data": got})
	})
	r.GET("/private", chain...)
	return r
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json %q: %v", w.Body.String(), err)
	}
	return body
}

func TestAuthMiddleware(t *testing.T) {
	verifier := &fakeVerifier{
		sessions: map[string]models.Session{
			"good":   {ID: "s1", UserID: "u1"},
			"orphan": {ID: "s2", UserID: "deleted"},
		},
		users: map[string]models.User{"u1": {ID: "u1", Email: "a@studio.test"}},
	}
	caps := fixedCaps{"u1": {UserID: "u1", UserType: models.UserTypeStaff}}
	router := newGuardedRouter(verifier, caps)

	t.Run("missing token", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/private", nil))
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("status %d", w.Code)
		}
		if body := decode(t, w); body["redirect"] != "/login" {
			t.Fatalf("expected login redirect, got %v", body)
		}
	})

	t.Run("bearer header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/private", nil)
		req.Header.Set("Authorization", "Bearer good")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("status %d: %s", w.Code, w.Body.String())
		}
		data := decode(t, w)["data"].(map[string]interface{})
		if data["userId"] != "u1" || data["userType"] != "staff" {
			t.Fatalf("capabilities not set: %v", data)
		}
	})

	t.Run("cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/private", nil)
		req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: "good"})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("status %d", w.Code)
		}
	})

	t.Run("deleted account is signed out", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/private", nil)
		req.Header.Set("Authorization", "Bearer orphan")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("status %d", w.Code)
		}
		if len(verifier.signOuts) != 1 || verifier.signOuts[0] != "s2" {
			t.Fatalf("expected forced sign-out of s2, got %v", verifier.signOuts)
		}
		if cookie := w.Result().Cookies(); len(cookie) == 0 || cookie[0].MaxAge >= 0 {
			t.Fatalf("expected cleared cookie, got %v", cookie)
		}
	})
}

func TestCapabilitiesComeFromVerifiedUser(t *testing.T) {
	verifier := &fakeVerifier{
		sessions: map[string]models.Session{
			"client":  {ID: "s1", UserID: "c1"},
			"untyped": {ID: "s2", UserID: "u2"},
		},
		users: map[string]models.User{
			"c1": {ID: "c1", UserType: models.UserTypeClient},
			"u2": {ID: "u2", IsAdmin: true},
		},
	}
	router := newGuardedRouter(verifier, services.NewAuthorizer(zap.NewNop()))

	cases := map[string]struct {
		userType string
		isAdmin  bool
	}{
		"client":  {"client", false},
		"untyped": {"staff", false},
	}
	for token, want := range cases {
		req := httptest.NewRequest(http.MethodGet, "/private", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("%s: status %d", token, w.Code)
		}
		data := decode(t, w)["data"].(map[string]interface{})
		if data["userType"] != want.userType || data["isAdmin"] != want.isAdmin {
			t.Fatalf("%s: got %v", token, data)
		}
	}
}

func TestRoleGates(t *testing.T) {
	verifier := &fakeVerifier{
		sessions: map[string]models.Session{
			"admin":  {ID: "s1", UserID: "admin"},
			"client": {ID: "s2", UserID: "client"},
		},
		users: map[string]models.User{"admin": {ID: "admin"}, "client": {ID: "client"}},
	}
	caps := fixedCaps{
		"admin":  {UserID: "admin", UserType: models.UserTypeStaff, IsAdmin: true},
		"client": {UserID: "client", UserType: models.UserTypeClient},
	}

	cases := []struct {
		name  string
		gate  gin.HandlerFunc
		token string
		want  int
	}{
		{"admin passes admin gate", AdminMiddleware(), "admin", http.StatusOK},
		{"client blocked by admin gate", AdminMiddleware(), "client", http.StatusForbidden},
		{"admin passes staff gate", RequireStaff(), "admin", http.StatusOK},
		{"client blocked by staff gate", RequireStaff(), "client", http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := newGuardedRouter(verifier, caps, tc.gate)
			req := httptest.NewRequest(http.MethodGet, "/private", nil)
			req.Header.Set("Authorization", "Bearer "+tc.token)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			if w.Code != tc.want {
				t.Fatalf("status %d, want %d", w.Code, tc.want)
			}
		})
	}
}

func TestAdminMiddlewareWithoutAuth(t *testing.T) {
	r := gin.New()
	r.GET("/admin", AdminMiddleware(), func(c *gin.Context) { c.Status(http.StatusOK) })
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status %d", w.Code)
	}
}

func TestIdempotencyRejectsReplays(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	guard := utils.NewDeduper(rdb, time.Minute, zap.NewNop())
	r := gin.New()
	r.Use(Idempotency(guard))
	r.POST("/projects", func(c *gin.Context) { c.Status(http.StatusCreated) })
	r.GET("/projects", func(c *gin.Context) { c.Status(http.StatusOK) })

	send := func(method, key string) int {
		req := httptest.NewRequest(method, "/projects", nil)
		if key != "" {
			req.Header.Set(IdempotencyHeader, key)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	if code := send(http.MethodPost, "k1"); code != http.StatusCreated {
		t.Fatalf("first submit: %d", code)
	}
	if code := send(http.MethodPost, "k1"); code != http.StatusConflict {
		t.Fatalf("replay: %d", code)
	}
	if code := send(http.MethodPost, "k2"); code != http.StatusCreated {
		t.Fatalf("new key: %d", code)
	}
	if code := send(http.MethodPost, ""); code != http.StatusCreated {
		t.Fatalf("no key: %d", code)
	}
	if code := send(http.MethodGet, "k1"); code != http.StatusOK {
		t.Fatalf("reads are never deduplicated: %d", code)
	}
}

func TestSafeHeadersFilterCredentials(t *testing.T) {
	h := http.Header{}
	h.Set("Authorization", "Bearer secret")
	h.Set("Cookie", "access_token=secret")
	h.Set("Accept", "application/json")

	safe := getSafeHeaders(h)
	if safe["Authorization"] != "[FILTERED]" || safe["Cookie"] != "[FILTERED]" {
		t.Fatalf("credentials leaked: %v", safe)
	}
	if _, ok := safe["Accept"].([]string); !ok {
		t.Fatalf("non-sensitive header dropped: %v", safe)
	}
}

func TestErrorReporterTagsCaller(t *testing.T) {
	var captured []*sentry.Event
	client, err := sentry.NewClient(sentry.ClientOptions{
		BeforeSend: func(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
			captured = append(captured, event)
			return nil
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	global := sentry.CurrentHub()
	previous := global.Client()
	global.BindClient(client)
	t.Cleanup(func() { global.BindClient(previous) })

	r := gin.New()
	r.Use(SentryMiddleware(), ErrorReporter())
	r.GET("/boom", func(c *gin.Context) {
		if c.Query("as") != "" {
			c.Set(KeyCapabilities, services.Capabilities{UserID: c.Query("as"), UserType: models.UserTypeClient})
		}
		_ = c.Error(errors.New("boom"))
		c.Status(http.StatusInternalServerError)
	})

	for _, path := range []string{"/boom?as=u1", "/boom"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Authorization", "Bearer secret")
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	if len(captured) != 2 {
		t.Fatalf("captured %d events", len(captured))
	}
	first := captured[0]
	if first.User.ID != "u1" || first.Tags["user_type"] != "client" || first.Tags["is_admin"] != "false" {
		t.Fatalf("caller not tagged: user %+v tags %v", first.User, first.Tags)
	}
	if first.Tags["http.route"] != "/boom" {
		t.Fatalf("route tag %v", first.Tags)
	}
	if second := captured[1]; second.User.ID != "" || second.Tags["user_type"] != "" {
		t.Fatalf("caller leaked into the next request: user %+v tags %v", second.User, second.Tags)
	}
}
