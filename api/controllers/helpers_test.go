package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/afrifood/afrifood-backend/internal/dashboard"
	"github.com/afrifood/afrifood-backend/internal/menu"
	"github.com/afrifood/afrifood-backend/internal/newsletter"
	"github.com/afrifood/afrifood-backend/internal/notifications"
	"github.com/afrifood/afrifood-backend/internal/orders"
	"github.com/afrifood/afrifood-backend/internal/records"
	"github.com/afrifood/afrifood-backend/pkg/db/dbtest"
	"github.com/afrifood/afrifood-backend/pkg/docstore"
)

type fixture struct {
	stores     *records.Stores
	orders     orders.Service
	bell       notifications.Service
	newsletter newsletter.Service
	dashboard  *dashboard.Service
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	stores, err := records.New(dbtest.Open(t), docstore.Options{})
	require.NoError(t, err)
	emitter, err := notifications.NewEmitter(stores.Notifications, nil)
	require.NoError(t, err)
	bell, err := notifications.NewService(stores.Notifications)
	require.NoError(t, err)
	orderService, err := orders.NewService(stores.Orders, stores.Reservations, menu.Default(), emitter)
	require.NoError(t, err)
	newsletterService, err := newsletter.NewService(newsletter.Config{Store: stores.Newsletter, Notifier: emitter})
	require.NoError(t, err)
	dash, err := dashboard.NewService(stores.Orders, stores.Reservations, bell)
	require.NoError(t, err)
	return fixture{
		stores:     stores,
		orders:     orderService,
		bell:       bell,
		newsletter: newsletterService,
		dashboard:  dash,
	}
}

func jsonRequest(method, target, body string) *http.Request {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func withParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func serve(h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// decodeData unwraps the success envelope into dest.
func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dest any) {
	t.Helper()
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.NoError(t, json.Unmarshal(env.Data, dest))
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var env struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env.Error.Code
}
