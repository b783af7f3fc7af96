package pypi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jeryldev/pyworks/internal/domain"
	"github.com/jeryldev/pyworks/internal/imports"
)

// DefaultBase is the public PyPI instance.
const DefaultBase = "https://pypi.org"

// HTTP talks to a PyPI-compatible JSON API.
type HTTP struct {
	Base string
	HTTP *http.Client
}

func NewHTTP(base string) *HTTP {
	if base == "" {
		base = DefaultBase
	}
	return &HTTP{
		Base: strings.TrimRight(base, "/"),
		HTTP: &http.Client{Timeout: 10 * time.Second},
	}
}

// LatestVersion reports the newest release of a distribution. Names are
// normalized locally so the index never has to redirect.
func (c *HTTP) LatestVersion(ctx context.Context, distribution string) (string, error) {
	norm := imports.Normalize(distribution)
	u := c.Base + "/pypi/" + url.PathEscape(norm) + "/json"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return "", fmt.Errorf("%w: %s", domain.ErrDistributionNotFound, norm)
	}
	if resp.StatusCode/100 != 2 {
		return "", fmt.Errorf("index get %s: %s", u, resp.Status)
	}

	var out struct {
		Info struct {
			Version string `json:"version"`
		} `json:"info"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if out.Info.Version == "" {
		return "", fmt.Errorf("index get %s: no version in response", u)
	}
	return out.Info.Version, nil
}

// Disabled is the index used when lookups are turned off.
type Disabled struct{}

func (Disabled) LatestVersion(context.Context, string) (string, error) {
	return "", domain.ErrIndexDisabled
}

var (
	_ domain.PackageIndex = (*HTTP)(nil)
	_ domain.PackageIndex = Disabled{}
)
