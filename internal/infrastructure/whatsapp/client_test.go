package whatsapp

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendTemplatePayload(t *testing.T) {
	var gotPath, gotAuth string
	var gotPayload templatePayload

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &gotPayload))

		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(server.URL, "token-123", "phone-id-9")
	err := client.SendTemplate(context.Background(), "5215512345678", "alerta_crisis", "es_MX",
		[]string{"La Taquería", "Cliente insatisfecho", "Calificación 1/5"})
	require.NoError(t, err)

	assert.Equal(t, "/phone-id-9/messages", gotPath)
	assert.Equal(t, "Bearer token-123", gotAuth)

	assert.Equal(t, "whatsapp", gotPayload.MessagingProduct)
	assert.Equal(t, "5215512345678", gotPayload.To)
	assert.Equal(t, "template", gotPayload.Type)
	assert.Equal(t, "alerta_crisis", gotPayload.Template.Name)
	assert.Equal(t, "es_MX", gotPayload.Template.Language.Code)

	require.Len(t, gotPayload.Template.Components, 1)
	component := gotPayload.Template.Components[0]
	assert.Equal(t, "body", component.Type)
	require.Len(t, component.Parameters, 3)
	assert.Equal(t, "text", component.Parameters[0].Type)
	assert.Equal(t, "La Taquería", component.Parameters[0].Text)
	assert.Equal(t, "Calificación 1/5", component.Parameters[2].Text)
}

func TestSendTemplateProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Invalid OAuth access token"}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "token-viejo", "phone-id-9")
	err := client.SendTemplate(context.Background(), "5215512345678", "alerta_crisis", "es_MX", nil)

	var providerErr *ProviderError
	require.ErrorAs(t, err, &providerErr)
	assert.Equal(t, http.StatusUnauthorized, providerErr.StatusCode)
	assert.Contains(t, providerErr.Body, "Invalid OAuth access token")
}

func TestSendTemplateMissingCredentials(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))
	defer server.Close()

	client := NewClient(server.URL, "", "")
	err := client.SendTemplate(context.Background(), "5215512345678", "alerta_crisis", "es_MX", nil)

	// Sin credenciales no se toca la red
	assert.True(t, errors.Is(err, ErrMissingCredentials))
	assert.Zero(t, requests)
}

func TestSendTemplateContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient(server.URL, "token", "phone-id")
	err := client.SendTemplate(ctx, "5215512345678", "alerta_crisis", "es_MX", nil)
	assert.Error(t, err)
}
