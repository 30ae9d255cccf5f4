package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/afrifood/afrifood-backend/api/responses"
	"github.com/afrifood/afrifood-backend/internal/dashboard"
	pkgerrors "github.com/afrifood/afrifood-backend/pkg/errors"
	"github.com/afrifood/afrifood-backend/pkg/logger"
)

const defaultHeartbeat = 25 * time.Second

func AdminDashboard(svc *dashboard.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := svc.View(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// AdminDashboardStream pushes the dashboard View as server-sent events. Each
// connection owns one dashboard session, closed when the client goes away.
// A slow client only ever receives the latest View; intermediate ones are
// dropped.
func AdminDashboardStream(svc *dashboard.Service, logg *logger.Logger, heartbeat time.Duration) http.HandlerFunc {
	if heartbeat <= 0 {
		heartbeat = defaultHeartbeat
	}
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "streaming unsupported"))
			return
		}
		ctx := r.Context()

		latest := make(chan dashboard.View, 1)
		push := func(v dashboard.View) {
			// The session never calls push concurrently, so drain-then-send
			// cannot block.
			select {
			case <-latest:
			default:
			}
			latest <- v
		}

		sess, err := svc.Open(ctx, push)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		defer sess.Close()

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")
		w.WriteHeader(http.StatusOK)
		flusher.Flush()

		ticker := time.NewTicker(heartbeat)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
					return
				}
				flusher.Flush()
			case view := <-latest:
				payload, err := json.Marshal(view)
				if err != nil {
					if logg != nil {
						logg.Error(ctx, "encode dashboard view", err)
					}
					continue
				}
				if _, err := fmt.Fprintf(w, "event: view\ndata: %s\n\n", payload); err != nil {
					return
				}
				flusher.Flush()
			}
		}
	}
}
