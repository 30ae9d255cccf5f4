package notifications

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/afrifood/afrifood-backend/internal/records"
	"github.com/afrifood/afrifood-backend/pkg/db/dbtest"
	"github.com/afrifood/afrifood-backend/pkg/docstore"
	"github.com/afrifood/afrifood-backend/pkg/enums"
)

func newStores(t *testing.T) *records.Stores {
	t.Helper()
	stores, _ := newStoresWithConn(t)
	return stores
}

func newStoresWithConn(t *testing.T) (*records.Stores, *gorm.DB) {
	t.Helper()
	conn := dbtest.Open(t)
	stores, err := records.New(conn, docstore.Options{Bus: docstore.NewLocalBus()})
	require.NoError(t, err)
	return stores, conn
}

func closeDB(t *testing.T, conn *gorm.DB) {
	t.Helper()
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())
}

type notified struct {
	typ     enums.NotificationType
	message string
	data    map[string]any
}

type recordingNotifier struct {
	mu    sync.Mutex
	calls []notified
	ch    chan notified
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{ch: make(chan notified, 16)}
}

func (r *recordingNotifier) Notify(_ context.Context, typ enums.NotificationType, message string, data map[string]any) {
	n := notified{typ: typ, message: message, data: data}
	r.mu.Lock()
	r.calls = append(r.calls, n)
	r.mu.Unlock()
	r.ch <- n
}

func (r *recordingNotifier) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}
