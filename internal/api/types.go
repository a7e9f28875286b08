// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

// =============================================================================
// WIRE TYPES
// =============================================================================

// Message is a single chat turn in the wire format the completion
// endpoint expects.
type Message struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// User is the account record returned by the auth endpoints. The token is
// a bearer credential sent on every authenticated request.
type User struct {
	ID        string `json:"_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Token     string `json:"token"`
	Type      string `json:"type"`
	Role      string `json:"role"`
	CreatedAt string `json:"createdAt,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

// Model describes one selectable model from the catalogue endpoint,
// including its per-day message limit and category tag.
type Model struct {
	ID           string `json:"id"`
	BaseModel    string `json:"baseModel"`
	Limit        int    `json:"limit"`
	Title        string `json:"title"`
	Avatar       string `json:"avatar"`
	About        string `json:"about"`
	Usage        string `json:"usage"`
	BotType      string `json:"botType,omitempty"`
	SystemPrompt string `json:"systemPrompt,omitempty"`
}

// =============================================================================
// REQUEST BODIES
// =============================================================================

// RegisterRequest is the body for POST /auth/register.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the body for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateUserRequest is the body for PUT /auth/update. Zero-value fields
// are omitted so the server only touches what the user changed.
type UpdateUserRequest struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password,omitempty"`
}

// CompletionRequest is the body for POST /chat. The full message history
// is sent on every request; the server holds no conversation state.
type CompletionRequest struct {
	ModelID  string    `json:"modelId"`
	Messages []Message `json:"messages"`
}

// apiErrorResponse is the error envelope some endpoints return.
type apiErrorResponse struct {
	Message string `json:"message"`
}
