// Package countries looks up dialing metadata for the fixed allow-list
// of countries the sign-in form offers.
package countries

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/orbitchat-ai/demo-platform/pkg/logger"
)

// DefaultBaseURL is the public country-data service.
const DefaultBaseURL = "https://restcountries.com/v3.1"

// TargetCodes is the allow-list, in display order.
var TargetCodes = []string{"IN", "CN", "GB", "CA", "AU", "DE", "FR"}

// Country is the dialing metadata the sign-in form needs.
type Country struct {
	Name     string `json:"name"`
	Code     string `json:"code"`
	DialCode string `json:"dial_code"`
	FlagSVG  string `json:"flag_svg,omitempty"`
	FlagPNG  string `json:"flag_png,omitempty"`
}

// IsAllowed reports whether a country code is on the allow-list.
func IsAllowed(code string) bool {
	for _, c := range TargetCodes {
		if c == code {
			return true
		}
	}
	return false
}

// restCountry is the wire shape of the upstream service.
type restCountry struct {
	Name struct {
		Common string `json:"common"`
	} `json:"name"`
	CCA2 string `json:"cca2"`
	IDD  struct {
		Root     string   `json:"root"`
		Suffixes []string `json:"suffixes"`
	} `json:"idd"`
	Flags struct {
		SVG string `json:"svg"`
		PNG string `json:"png"`
	} `json:"flags"`
}

// Client fetches the country list once and caches the result. Any
// fetch failure substitutes the static fallback with no retry and no
// caller-visible error.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *logger.Logger

	mu     sync.Mutex
	cached []Country
}

// NewClient creates a country lookup client.
func NewClient(baseURL string, timeout time.Duration, log *logger.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		logger:  log,
	}
}

// List returns the allow-listed countries, from cache after the first
// successful fetch.
func (c *Client) List(ctx context.Context) []Country {
	c.mu.Lock()
	if c.cached != nil {
		out := c.cached
		c.mu.Unlock()
		return out
	}
	c.mu.Unlock()

	fetched, err := c.fetch(ctx)
	if err != nil {
		c.logger.Warn("country lookup failed, using fallback", zap.Error(err))
		return Fallback()
	}

	c.mu.Lock()
	c.cached = fetched
	c.mu.Unlock()
	return fetched
}

func (c *Client) fetch(ctx context.Context) ([]Country, error) {
	url := fmt.Sprintf("%s/alpha?codes=%s&fields=name,cca2,idd,flags",
		c.baseURL, strings.Join(TargetCodes, ","))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var raw []restCountry
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode country response: %w", err)
	}

	byCode := make(map[string]restCountry, len(raw))
	for _, rc := range raw {
		byCode[rc.CCA2] = rc
	}

	// Allow-list order, skipping anything the service did not return.
	out := make([]Country, 0, len(TargetCodes))
	for _, code := range TargetCodes {
		rc, ok := byCode[code]
		if !ok {
			continue
		}
		dial := rc.IDD.Root
		if len(rc.IDD.Suffixes) > 0 {
			dial += rc.IDD.Suffixes[0]
		}
		out = append(out, Country{
			Name:     rc.Name.Common,
			Code:     rc.CCA2,
			DialCode: dial,
			FlagSVG:  rc.Flags.SVG,
			FlagPNG:  rc.Flags.PNG,
		})
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("country response matched none of the allow-list")
	}
	return out, nil
}

// Fallback is the hardcoded country list used when the upstream
// service is unreachable. Flag assets are intentionally empty.
func Fallback() []Country {
	return []Country{
		{Name: "India", Code: "IN", DialCode: "+91"},
		{Name: "China", Code: "CN", DialCode: "+86"},
		{Name: "United Kingdom", Code: "GB", DialCode: "+44"},
		{Name: "Canada", Code: "CA", DialCode: "+1"},
		{Name: "Australia", Code: "AU", DialCode: "+61"},
		{Name: "Germany", Code: "DE", DialCode: "+49"},
		{Name: "France", Code: "FR", DialCode: "+33"},
	}
}
