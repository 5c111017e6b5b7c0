package client

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClient_LoginKeepsToken(t *testing.T) {
	req := require.New(t)
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/login":
			var in map[string]string
			_ = json.NewDecoder(r.Body).Decode(&in)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"message": "Login successful",
				"user":    map[string]any{"id": "u1", "username": in["username"], "isOnline": true},
				"token":   "tok",
			})
		case "/api/users":
			gotAuth = r.Header.Get("Authorization")
			_, _ = w.Write([]byte(`[]`))
		}
	}))
	defer srv.Close()

	c := New(srv.URL + "/")
	out, err := c.Login(context.Background(), "alice", "secret1")
	req.NoError(err)
	req.Equal("alice", out.User.Username)
	req.True(out.User.IsOnline)
	req.Equal("tok", c.Token())

	users, err := c.Users(context.Background())
	req.NoError(err)
	req.Empty(users)
	req.Equal("Bearer tok", gotAuth)
}

func TestClient_APIError(t *testing.T) {
	req := require.New(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error":"username already exists"}`))
	}))
	defer srv.Close()

	var traced int
	c := New(srv.URL, WithTrace(func(_, _ string, status int, _ []byte) { traced = status }))
	_, err := c.Register(context.Background(), "alice", "secret1", "")

	var apiErr *APIError
	req.True(stderrors.As(err, &apiErr))
	req.Equal(http.StatusConflict, apiErr.Status)
	req.Equal("username already exists", apiErr.Message)
	req.Equal(http.StatusConflict, traced)
	req.Empty(c.Token())
}
