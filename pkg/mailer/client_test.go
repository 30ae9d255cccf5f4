package mailer

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	pkgerrors "github.com/afrifood/afrifood-backend/pkg/errors"
)

func TestSendWelcomePostsToSendgrid(t *testing.T) {
	var (
		got                  sendRequest
		method, path, bearer string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method, path, bearer = r.Method, r.URL.Path, r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	client, err := NewClient("key-123", Address{Email: "newsletter@afrifood.bj", Name: "AfriFood"}, WithBaseURL(server.URL+"/"))
	require.NoError(t, err)

	require.NoError(t, client.SendWelcome(context.Background(), "client@example.bj"))
	require.Equal(t, http.MethodPost, method)
	require.Equal(t, sendPath, path)
	require.Equal(t, "Bearer key-123", bearer)
	require.Equal(t, WelcomeSubject, got.Subject)
	require.Equal(t, "newsletter@afrifood.bj", got.From.Email)
	require.Equal(t, "client@example.bj", got.Personalizations[0].To[0].Email)
	require.Equal(t, "text/html", got.Content[0].Type)
	require.Contains(t, got.Content[0].Value, "L'équipe AfriFood")
}

func TestSendSurfacesProviderFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"errors":[{"message":"bad key"}]}`))
	}))
	defer server.Close()

	client, err := NewClient("key", Address{Email: "a@afrifood.bj"}, WithBaseURL(server.URL))
	require.NoError(t, err)

	err = client.SendWelcome(context.Background(), "client@example.bj")
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
}

func TestSendRejectsBadRecipient(t *testing.T) {
	client, err := NewClient("key", Address{Email: "a@afrifood.bj"})
	require.NoError(t, err)
	err = client.SendWelcome(context.Background(), "not-an-email")
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestNewClientValidation(t *testing.T) {
	_, err := NewClient(" ", Address{Email: "a@afrifood.bj"})
	require.Error(t, err)
	_, err = NewClient("key", Address{Email: "nope"})
	require.Error(t, err)

	var nilClient *Client
	require.True(t, pkgerrors.IsCode(nilClient.SendWelcome(context.Background(), "a@b.co"), pkgerrors.CodeDependency))
}

func TestWelcomeHTML(t *testing.T) {
	html := WelcomeHTML()
	require.Contains(t, html, "Bienvenue chez AfriFood !")
	require.Contains(t, html, "Merci de vous être inscrit")
}
