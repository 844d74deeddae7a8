package submitter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIClientSubmitFailover(t *testing.T) {
	var received failoverRequest
	var gotAuth string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/failover", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"request_id": received.RequestID,
			"reference":  "tx-0xabc",
		})
	}))
	defer server.Close()

	client := NewAPIClient(server.URL, "secret-token", 5)
	conf, err := client.SubmitFailover(context.Background(), 3, 101)
	require.NoError(t, err)

	assert.Equal(t, "Bearer secret-token", gotAuth)
	assert.Equal(t, 3, received.FailingStrategyID)
	assert.Equal(t, 101, received.BackupStrategyID)
	assert.NotEmpty(t, received.RequestID)
	assert.Equal(t, "tx-0xabc", conf.Reference)
	assert.Equal(t, received.RequestID, conf.RequestID)
}

func TestAPIClientRejectedSubmission(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "insufficient gas", http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewAPIClient(server.URL, "", 5)
	conf, err := client.SubmitFailover(context.Background(), 3, 101)
	require.Error(t, err)
	assert.Nil(t, conf)
	assert.Contains(t, err.Error(), "status 502")
}

func TestAPIClientUnreachableService(t *testing.T) {
	client := NewAPIClient("http://127.0.0.1:1", "", 1)
	_, err := client.SubmitFailover(context.Background(), 3, 101)
	require.Error(t, err)
}
