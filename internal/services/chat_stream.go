package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/gatherly/gatherly/internal/config"
)

// StreamProvider talks to a Stream-style hosted chat API. Server-side
// calls authenticate with an HS256 JWT carrying {"server": true}; user
// tokens carry {"user_id": id} and are consumed by the client-side SDK.
type StreamProvider struct {
	apiKey      string
	apiSecret   string
	baseURL     string
	serverToken string
	httpClient  *http.Client
}

func NewStreamProvider(cfg *config.ChatConfig) (*StreamProvider, error) {
	serverToken, err := signChatToken(cfg.APISecret, jwt.MapClaims{"server": true})
	if err != nil {
		return nil, fmt.Errorf("signing server token: %w", err)
	}

	return &StreamProvider{
		apiKey:      cfg.APIKey,
		apiSecret:   cfg.APISecret,
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		serverToken: serverToken,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
	}, nil
}

func (p *StreamProvider) UpsertUsers(ctx context.Context, users []ChatUser) error {
	byID := make(map[string]ChatUser, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	return p.post(ctx, "/users", map[string]any{"users": byID})
}

// EnsureChannel creates the channel if it does not exist. The provider's
// query endpoint is create-if-absent, so repeated calls for the same id
// converge on the same channel.
func (p *StreamProvider) EnsureChannel(ctx context.Context, channelID string, opts ChannelOptions) error {
	data := map[string]any{
		"members": opts.Members,
	}
	if opts.Name != "" {
		data["name"] = opts.Name
	}
	if opts.Image != "" {
		data["image"] = opts.Image
	}
	if opts.CreatedByID != "" {
		data["created_by_id"] = opts.CreatedByID
	}
	if opts.Private {
		data["private"] = true
	}

	path := fmt.Sprintf("/channels/%s/%s/query", chatChannelType, url.PathEscape(channelID))
	err := p.post(ctx, path, map[string]any{"data": data})
	if isAlreadyExists(err) {
		return nil
	}
	return err
}

func (p *StreamProvider) AddMembers(ctx context.Context, channelID string, userIDs []string) error {
	path := fmt.Sprintf("/channels/%s/%s", chatChannelType, url.PathEscape(channelID))
	err := p.post(ctx, path, map[string]any{"add_members": userIDs})
	if isAlreadyExists(err) {
		return nil
	}
	return err
}

func (p *StreamProvider) RemoveMembers(ctx context.Context, channelID string, userIDs []string) error {
	path := fmt.Sprintf("/channels/%s/%s", chatChannelType, url.PathEscape(channelID))
	err := p.post(ctx, path, map[string]any{"remove_members": userIDs})
	if isNotAMember(err) {
		return nil
	}
	return err
}

func (p *StreamProvider) CreateUserToken(userID string) (string, error) {
	return signChatToken(p.apiSecret, jwt.MapClaims{"user_id": userID})
}

func (p *StreamProvider) post(ctx context.Context, path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}

	endpoint := fmt.Sprintf("%s%s?api_key=%s", p.baseURL, path, url.QueryEscape(p.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", p.serverToken)
	req.Header.Set("Stream-Auth-Type", "jwt")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("calling chat provider: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 400 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	apiErr := &ChatAPIError{StatusCode: resp.StatusCode}
	if err := json.NewDecoder(resp.Body).Decode(apiErr); err != nil {
		apiErr.Message = resp.Status
	}
	return apiErr
}

// ChatAPIError is a structured error response from the chat provider.
type ChatAPIError struct {
	StatusCode int    `json:"StatusCode"`
	Code       int    `json:"code"`
	Message    string `json:"message"`
}

func (e *ChatAPIError) Error() string {
	return fmt.Sprintf("chat provider error %d (code %d): %s", e.StatusCode, e.Code, e.Message)
}

// isAlreadyExists treats duplicate-creation responses as success per the
// idempotence contract of the provisioning bridge.
func isAlreadyExists(err error) bool {
	apiErr, ok := err.(*ChatAPIError)
	if !ok {
		return false
	}
	msg := strings.ToLower(apiErr.Message)
	return strings.Contains(msg, "already exist") || strings.Contains(msg, "already a member")
}

func isNotAMember(err error) bool {
	apiErr, ok := err.(*ChatAPIError)
	if !ok {
		return false
	}
	return strings.Contains(strings.ToLower(apiErr.Message), "not a member")
}

func signChatToken(secret string, claims jwt.MapClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("signing chat token: %w", err)
	}
	return signed, nil
}
