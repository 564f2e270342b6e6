package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"favorites/internal/database"
	"favorites/internal/services"
)

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("connection refused") }

func setupTestRouter() (*gin.Engine, *database.MemoryStore) {
	gin.SetMode(gin.TestMode)
	store := database.NewMemoryStore()
	r := NewRouter(Dependencies{
		Identity:  services.NewIdentity(store, store),
		Favorites: services.NewFavorites(store, store),
		Store:     store,
	})
	return r, store
}

func doJSON(r http.Handler, method, target string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewBuffer(raw)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func signup(t *testing.T, r http.Handler, username, email string) map[string]interface{} {
	t.Helper()
	w := doJSON(r, http.MethodPost, "/users/signup", map[string]string{
		"username": username,
		"email":    email,
		"password": "secret",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode(t, w)
	require.Equal(t, true, resp["result"])
	return resp["user"].(map[string]interface{})
}

func TestHealthAndNotFound(t *testing.T) {
	r, _ := setupTestRouter()

	w := doJSON(r, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.Equal(t, true, resp["ok"])
	assert.Equal(t, "ok", resp["store"])
	assert.NotEmpty(t, resp["timestamp"])

	w = doJSON(r, http.MethodGet, "/does/not/exist", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, false, decode(t, w)["result"])

	gin.SetMode(gin.TestMode)
	down := gin.New()
	down.GET("/health", Health(failingPinger{}))
	w = doJSON(down, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "unavailable", decode(t, w)["store"])
}

func TestSignupAndSignin(t *testing.T) {
	r, _ := setupTestRouter()

	user := signup(t, r, "alice", " Alice@Example.com ")
	assert.Equal(t, "alice@example.com", user["email"])
	assert.NotEmpty(t, user["_id"])
	assert.NotEmpty(t, user["token"])
	assert.NotContains(t, user, "passwordHash")

	t.Run("duplicate email is a soft failure", func(t *testing.T) {
		w := doJSON(r, http.MethodPost, "/users/signup", map[string]string{
			"username": "different",
			"email":    "alice@example.com",
			"password": "secret",
		}, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		resp := decode(t, w)
		assert.Equal(t, false, resp["result"])
		assert.Equal(t, services.ErrEmailTaken.Error(), resp["error"])
	})

	t.Run("duplicate username is a conflict", func(t *testing.T) {
		w := doJSON(r, http.MethodPost, "/users/signup", map[string]string{
			"username": "alice",
			"email":    "other@example.com",
			"password": "secret",
		}, nil)
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, false, decode(t, w)["result"])
	})

	t.Run("missing fields are a soft failure", func(t *testing.T) {
		w := doJSON(r, http.MethodPost, "/users/signup", map[string]string{"username": "bob"}, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		resp := decode(t, w)
		assert.Equal(t, false, resp["result"])
		assert.Contains(t, resp["details"], "email is required")
	})

	t.Run("invalid email is a soft failure", func(t *testing.T) {
		w := doJSON(r, http.MethodPost, "/users/signup", map[string]string{
			"username": "bob",
			"email":    "bob@",
			"password": "secret",
		}, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, false, decode(t, w)["result"])
	})

	t.Run("signin", func(t *testing.T) {
		w := doJSON(r, http.MethodPost, "/users/signin", map[string]string{
			"email":    "ALICE@example.com",
			"password": "secret",
		}, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		resp := decode(t, w)
		assert.Equal(t, true, resp["result"])
		assert.Equal(t, user["token"], resp["user"].(map[string]interface{})["token"])
	})

	t.Run("signin failures do not leak which part was wrong", func(t *testing.T) {
		wrongPassword := decode(t, doJSON(r, http.MethodPost, "/users/signin", map[string]string{
			"email":    "alice@example.com",
			"password": "nope",
		}, nil))
		unknownEmail := decode(t, doJSON(r, http.MethodPost, "/users/signin", map[string]string{
			"email":    "ghost@example.com",
			"password": "secret",
		}, nil))
		assert.Equal(t, false, wrongPassword["result"])
		assert.Equal(t, wrongPassword, unknownEmail)
	})
}

func TestMeLifecycle(t *testing.T) {
	r, _ := setupTestRouter()

	user := signup(t, r, "alice", "alice@example.com")
	token := user["token"].(string)
	signup(t, r, "bob", "bob@example.com")

	t.Run("get me by query, body and header", func(t *testing.T) {
		w := doJSON(r, http.MethodGet, "/users/me?token="+token, nil, nil)
		assert.Equal(t, http.StatusOK, w.Code)

		w = doJSON(r, http.MethodGet, "/users/me", map[string]string{"token": token}, nil)
		assert.Equal(t, http.StatusOK, w.Code)

		w = doJSON(r, http.MethodGet, "/users/me", nil, map[string]string{"Authorization": "Bearer " + token})
		assert.Equal(t, http.StatusOK, w.Code)
		resp := decode(t, w)
		assert.Equal(t, "alice", resp["user"].(map[string]interface{})["username"])
	})

	t.Run("get me without token", func(t *testing.T) {
		w := doJSON(r, http.MethodGet, "/users/me", nil, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("update ignores query token", func(t *testing.T) {
		w := doJSON(r, http.MethodPut, "/users/me?token="+token, map[string]string{"username": "x"}, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("update profile", func(t *testing.T) {
		w := doJSON(r, http.MethodPut, "/users/me", map[string]string{"username": "alicia"},
			map[string]string{"Authorization": "Bearer " + token})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		updated := decode(t, w)["user"].(map[string]interface{})
		assert.Equal(t, "alicia", updated["username"])
		assert.Equal(t, "alice@example.com", updated["email"])
		assert.NotContains(t, updated, "passwordHash")
	})

	t.Run("update with bad email", func(t *testing.T) {
		w := doJSON(r, http.MethodPut, "/users/me", map[string]string{"token": token, "email": "nope"}, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("update colliding email", func(t *testing.T) {
		w := doJSON(r, http.MethodPut, "/users/me", map[string]string{"token": token, "email": "bob@example.com"}, nil)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("delete without token is soft", func(t *testing.T) {
		w := doJSON(r, http.MethodDelete, "/users/", nil, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, false, decode(t, w)["result"])
	})

	t.Run("delete account", func(t *testing.T) {
		w := doJSON(r, http.MethodDelete, "/users/", map[string]string{"token": token}, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, true, decode(t, w)["result"])

		w = doJSON(r, http.MethodDelete, "/users", nil, map[string]string{"Authorization": "Bearer " + token})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, false, decode(t, w)["result"])

		w = doJSON(r, http.MethodGet, "/users/me?token="+token, nil, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestFavoritesRoutes(t *testing.T) {
	r, _ := setupTestRouter()
	user := signup(t, r, "alice", "alice@example.com")
	userID := user["_id"].(string)
	base := "/favorites/" + userID

	t.Run("upsert replaces metadata", func(t *testing.T) {
		w := doJSON(r, http.MethodPut, base+"/place123", map[string]interface{}{"name": "Cafe", "longitude": 2.35}, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		w = doJSON(r, http.MethodPut, base+"/place123", map[string]interface{}{"name": "Cafe Updated", "latitude": 1.0}, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		item := decode(t, w)["item"].(map[string]interface{})
		assert.Equal(t, "Cafe Updated", item["name"])
		assert.Equal(t, 1.0, item["latitude"])
		assert.NotContains(t, item, "longitude")
		assert.Equal(t, "place123", item["placeId"])

		w = doJSON(r, http.MethodGet, base, nil, nil)
		require.Equal(t, http.StatusOK, w.Code)
		resp := decode(t, w)
		assert.Equal(t, true, resp["ok"])
		assert.Len(t, resp["items"], 1)
	})

	t.Run("upsert without body", func(t *testing.T) {
		w := doJSON(r, http.MethodPut, base+"/bare", nil, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	})

	t.Run("upsert with malformed body", func(t *testing.T) {
		w := doJSON(r, http.MethodPut, base+"/bad", map[string]interface{}{"latitude": "north"}, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("list newest first", func(t *testing.T) {
		resp := decode(t, doJSON(r, http.MethodGet, base, nil, nil))
		items := resp["items"].([]interface{})
		require.Len(t, items, 2)
		assert.Equal(t, "bare", items[0].(map[string]interface{})["placeId"])
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		for i := 0; i < 2; i++ {
			w := doJSON(r, http.MethodDelete, base+"/place123", nil, nil)
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, true, decode(t, w)["ok"])
		}
	})

	t.Run("invalid user id", func(t *testing.T) {
		w := doJSON(r, http.MethodGet, "/favorites/not-an-id", nil, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, false, decode(t, w)["ok"])
	})

	t.Run("unknown user", func(t *testing.T) {
		w := doJSON(r, http.MethodPut, "/favorites/0123456789abcdef01234567/place123", map[string]string{"name": "x"}, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestFavoritesGeoRoutes(t *testing.T) {
	r, _ := setupTestRouter()
	user := signup(t, r, "alice", "alice@example.com")
	base := "/favorites/" + user["_id"].(string)

	w := doJSON(r, http.MethodPut, base+"/louvre", map[string]interface{}{"name": "Louvre", "latitude": 48.8606, "longitude": 2.3376}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(r, http.MethodPut, base+"/nowhere", map[string]interface{}{"name": "Nowhere"}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	t.Run("geojson", func(t *testing.T) {
		w := doJSON(r, http.MethodGet, base+"/geojson", nil, nil)
		require.Equal(t, http.StatusOK, w.Code)
		resp := decode(t, w)
		assert.Equal(t, "FeatureCollection", resp["type"])
		assert.Len(t, resp["features"], 1)
	})

	t.Run("nearby", func(t *testing.T) {
		w := doJSON(r, http.MethodGet, base+"/nearby?lat=48.861&lng=2.3376&radius=500", nil, nil)
		require.Equal(t, http.StatusOK, w.Code)
		items := decode(t, w)["items"].([]interface{})
		require.Len(t, items, 1)
		assert.Equal(t, "louvre", items[0].(map[string]interface{})["placeId"])
	})

	t.Run("nearby requires coordinates", func(t *testing.T) {
		w := doJSON(r, http.MethodGet, base+"/nearby?lat=abc", nil, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
