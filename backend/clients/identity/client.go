// Package identity talks to the external identity provider's management API.
// The provider issues the bearer tokens and owns the role attribute; the
// backend never trusts a role claimed by the client.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const RoleEducator = "educator"

// Client is the capability surface the backend needs from the provider.
type Client interface {
	// GetUserRole fetches the role attribute stored on the identity.
	GetUserRole(ctx context.Context, userID string) (string, error)
	// PromoteToEducator grants the educator role to the identity.
	PromoteToEducator(ctx context.Context, userID string) error
}

// APIClient is the HTTP implementation of Client.
type APIClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewAPIClient(baseURL, apiKey string) *APIClient {
	return &APIClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

type userResponse struct {
	ID             string `json:"id"`
	PublicMetadata struct {
		Role string `json:"role"`
	} `json:"public_metadata"`
}

func (c *APIClient) GetUserRole(ctx context.Context, userID string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/users/"+userID, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("identity provider request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("identity provider returned status %d", resp.StatusCode)
	}

	var user userResponse
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return "", fmt.Errorf("identity provider response invalid: %w", err)
	}

	return user.PublicMetadata.Role, nil
}

func (c *APIClient) PromoteToEducator(ctx context.Context, userID string) error {
	payload, err := json.Marshal(map[string]interface{}{
		"public_metadata": map[string]string{"role": RoleEducator},
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPatch,
		c.baseURL+"/users/"+userID+"/metadata", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("identity provider request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("identity provider returned status %d", resp.StatusCode)
	}

	return nil
}
