package kyc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractNid(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/extract", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req struct {
			ImageURL string `json:"image_url"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "https://cdn.example/nid.jpg", req.ImageURL)

		json.NewEncoder(w).Encode(map[string]string{"nid_number": "0123456789"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key")

	nid, err := client.ExtractNid(context.Background(), "https://cdn.example/nid.jpg")
	require.NoError(t, err)
	require.Equal(t, "0123456789", nid)
}

func TestExtractNidServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key")

	_, err := client.ExtractNid(context.Background(), "https://cdn.example/nid.jpg")
	require.Error(t, err)
}
