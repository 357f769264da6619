package notify_test

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/opencourt-uk/publication-service/pkg/publication_api/helpers/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newProviderServer stands in for the notification provider. Sandboxed
// runs may forbid binding a port; the test is skipped rather than failed.
func newProviderServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()

	l, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Skipf("skip: cannot listen: %v", err)
	}

	srv := &httptest.Server{
		Listener: l,
		Config:   &http.Server{Handler: handler},
	}
	srv.Start()
	t.Cleanup(srv.Close)
	return srv
}

func TestSendEmail_Success(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody notify.EmailRequest

	srv := newProviderServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"notify-123"}`))
	})

	client := notify.NewClient(srv.URL, "service-1", "secret-key")
	id, err := client.SendEmail(context.Background(), notify.EmailRequest{
		EmailAddress: "user@example.com",
		TemplateID:   "tmpl-1",
		Reference:    "artefact-1",
	})

	require.NoError(t, err)
	assert.Equal(t, "notify-123", id)
	assert.Equal(t, "/v2/notifications/email", gotPath)
	assert.True(t, strings.HasPrefix(gotAuth, "Bearer "))
	assert.Equal(t, "user@example.com", gotBody.EmailAddress)
	assert.Equal(t, "tmpl-1", gotBody.TemplateID)
}

func TestSendEmail_ErrorStatus(t *testing.T) {
	srv := newProviderServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"errors":[{"message":"rate limited"}]}`))
	})

	client := notify.NewClient(srv.URL, "service-1", "secret-key")
	_, err := client.SendEmail(context.Background(), notify.EmailRequest{EmailAddress: "user@example.com"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
	assert.Contains(t, err.Error(), "rate limited")
}
