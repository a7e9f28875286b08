// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// =============================================================================
// AUTH TESTS
// =============================================================================

func TestLogin_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/auth/login", r.URL.Path)

		var req LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "ada@example.com", req.Email)

		json.NewEncoder(w).Encode(User{
			ID:    "u1",
			Name:  "Ada",
			Email: req.Email,
			Token: "tok-123",
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	user, err := client.Login(context.Background(), "ada@example.com", "hunter2")
	require.NoError(t, err)
	require.Equal(t, "Ada", user.Name)
	require.Equal(t, "tok-123", user.Token)
}

func TestLogin_BadCredentials(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"message": "invalid email or password"})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.Login(context.Background(), "ada@example.com", "wrong")
	require.ErrorIs(t, err, ErrAuthFailed)
	require.Contains(t, err.Error(), "invalid email or password")
}

func TestRegister_EmailTaken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{"message": "email already in use"})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.Register(context.Background(), "Ada", "ada@example.com", "hunter2")
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestCurrentUser_SendsBearerToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(User{ID: "u1", Name: "Ada", Token: "tok-123"})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	client.SetToken("tok-123")
	user, err := client.CurrentUser(context.Background())
	require.NoError(t, err)
	require.Equal(t, "u1", user.ID)
}

func TestCurrentUser_ExpiredToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	client.SetToken("stale")
	_, err := client.CurrentUser(context.Background())
	require.ErrorIs(t, err, ErrAuthFailed)
}

// =============================================================================
// CLIENT CONFIGURATION TESTS
// =============================================================================

func TestSetTimeout(t *testing.T) {
	client := NewClient("")
	require.Equal(t, DefaultTimeout, client.httpClient.Timeout)

	client.SetTimeout(5 * time.Second)
	require.Equal(t, 5*time.Second, client.httpClient.Timeout)

	// Non-positive values keep the current timeout.
	client.SetTimeout(0)
	require.Equal(t, 5*time.Second, client.httpClient.Timeout)
}

func TestToken_ConcurrentAccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(User{ID: "u1"})
	}))
	defer server.Close()

	client := NewClient(server.URL)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			client.SetToken(fmt.Sprintf("tok-%d", i))
			_, _ = client.CurrentUser(context.Background())
			_ = client.Token()
		}(i)
	}
	wg.Wait()
}

// =============================================================================
// CATALOGUE TESTS
// =============================================================================

func TestModels(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/limits", r.URL.Path)
		json.NewEncoder(w).Encode([]Model{
			{ID: "gpt", Title: "GPT", Limit: 50, Usage: "chat"},
			{ID: "doc", Title: "Doctor", Limit: 20, Usage: "doctor"},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	models, err := client.Models(context.Background())
	require.NoError(t, err)
	require.Len(t, models, 2)
	require.Equal(t, "Doctor", models[1].Title)
}

// =============================================================================
// COMPLETION TESTS
// =============================================================================

func TestComplete_Stream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat", r.URL.Path)

		var req CompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "gpt", req.ModelID)
		require.Len(t, req.Messages, 1)

		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		w.Write([]byte("data: {\"choices\":[{\"delta\":{\"content\":\"Hi\"}}]}\n"))
		flusher.Flush()
		w.Write([]byte("data: {\"choices\":[{\"delta\":{\"content\":\" there\"}}]}\n"))
		flusher.Flush()
		w.Write([]byte("data: [DONE]\n"))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	var updates []string
	text, err := client.Complete(context.Background(), "gpt",
		[]Message{{Role: "user", Content: "hello"}},
		func(s string) { updates = append(updates, s) })
	require.NoError(t, err)
	require.Equal(t, "Hi there", text)
	require.NotEmpty(t, updates)
	require.Equal(t, "Hi there", updates[len(updates)-1])
}

func TestComplete_EmptyCompletion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("data: [DONE]\n"))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	called := false
	text, err := client.Complete(context.Background(), "gpt", nil,
		func(string) { called = true })
	require.NoError(t, err)
	require.Equal(t, "", text)
	require.False(t, called, "onText must not fire when no deltas arrive")
}

func TestComplete_MalformedLineMidStream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("data: {\"choices\":[{\"delta\":{\"content\":\"a\"}}]}\n"))
		w.Write([]byte("data: {broken\n"))
		w.Write([]byte("data: {\"choices\":[{\"delta\":{\"content\":\"b\"}}]}\n"))
		w.Write([]byte("data: [DONE]\n"))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	text, err := client.Complete(context.Background(), "gpt", nil, nil)
	require.NoError(t, err)
	require.Equal(t, "ab", text)
}

func TestComplete_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]string{"message": "daily limit reached"})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.Complete(context.Background(), "gpt", nil, nil)
	require.ErrorIs(t, err, ErrRateLimited)
}

func TestComplete_AuthFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.Complete(context.Background(), "gpt", nil, nil)
	require.ErrorIs(t, err, ErrAuthFailed)
}

func TestComplete_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"message": "upstream exploded"})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.Complete(context.Background(), "gpt", nil, nil)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusInternalServerError, apiErr.Status)
	require.Equal(t, "upstream exploded", apiErr.Message)
}

func TestComplete_CancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("data: {\"choices\":[{\"delta\":{\"content\":\"never\"}}]}\n"))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient(server.URL)
	_, err := client.Complete(ctx, "gpt", nil, nil)
	require.Error(t, err)
}
