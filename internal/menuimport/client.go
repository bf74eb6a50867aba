package menuimport

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/angelmondragon/kioskeats-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/kioskeats-backend/pkg/errors"
)

const glfAPIVersion = "2"

// maxMenuBodyBytes bounds how much of an upstream response we will
// buffer. Real menus are well under 1MB.
const maxMenuBodyBytes = 8 << 20

// Client fetches menu documents from the GloriaFood POS endpoint. The
// restaurant API key doubles as the bearer credential.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(cfg config.GloriaFoodConfig) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// FetchMenu performs a single GET against the menu endpoint. Failures
// are not retried here; the operator presses the button again.
func (c *Client) FetchMenu(ctx context.Context, apiKey string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "building menu request")
	}
	req.Header.Set("Authorization", strings.TrimSpace(apiKey))
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Glf-Api-Version", glfAPIVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fetching menu")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "menu provider rejected the API key")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("menu provider returned status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxMenuBodyBytes))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reading menu response")
	}
	return body, nil
}
