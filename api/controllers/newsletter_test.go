package controllers

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/afrifood/afrifood-backend/pkg/enums"
)

func TestPublicNewsletterSubscribeWithoutPosition(t *testing.T) {
	f := newFixture(t)
	body := `{"email":"Awa@Example.com","positionError":"User denied Geolocation"}`
	rec := serve(PublicNewsletterSubscribe(f.newsletter, nil), jsonRequest(http.MethodPost, "/", body))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		ID uuid.UUID `json:"id"`
	}
	decodeData(t, rec, &created)
	stored, err := f.stores.Newsletter.Get(context.Background(), created.ID)
	require.NoError(t, err)
	require.Equal(t, enums.SubscriberStatusActive, stored.Status)
	require.Equal(t, "User denied Geolocation", stored.Location().Error)

	bell, err := f.bell.ListRecent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, bell, 1)
	require.Equal(t, enums.NotificationTypeNewsletter, bell[0].Type)
}

func TestPublicWelcomeEmailWithoutMailer(t *testing.T) {
	f := newFixture(t)
	rec := serve(PublicWelcomeEmail(f.newsletter, nil), jsonRequest(http.MethodPost, "/", `{"email":"awa@example.com"}`))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Equal(t, "DEPENDENCY_ERROR", errorCode(t, rec))
}

func TestAdminSubscriberLifecycle(t *testing.T) {
	f := newFixture(t)

	rec := serve(AdminAddSubscriber(f.newsletter, nil), jsonRequest(http.MethodPost, "/", `{"email":"koffi@example.com"}`))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created struct {
		ID uuid.UUID `json:"id"`
	}
	decodeData(t, rec, &created)

	edit := withParam(jsonRequest(http.MethodPatch, "/", `{"email":"koffi.d@example.com"}`), "subscriberId", created.ID.String())
	rec = serve(AdminEditSubscriber(f.newsletter, nil), edit)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = serve(AdminListSubscribers(f.newsletter, nil), jsonRequest(http.MethodGet, "/", ""))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "koffi.d@example.com")

	del := withParam(jsonRequest(http.MethodDelete, "/", ""), "subscriberId", created.ID.String())
	rec = serve(AdminDeleteSubscriber(f.newsletter, nil), del)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = serve(AdminDeleteSubscriber(f.newsletter, nil), del)
	require.Equal(t, http.StatusNotFound, rec.Code)

	// Manual adds never ring the bell.
	bell, err := f.bell.ListRecent(context.Background(), 10)
	require.NoError(t, err)
	require.Empty(t, bell)
}
