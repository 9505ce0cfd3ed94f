package visuals

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const pollinationsBaseURL = "https://image.pollinations.ai"

// PollinationsFetcher generates images via Pollinations.ai (free, no key needed)
type PollinationsFetcher struct {
	BaseURL    string
	width      int
	height     int
	httpClient *http.Client
}

// NewPollinationsFetcher creates a new fetcher for the given frame size
func NewPollinationsFetcher(width, height int) *PollinationsFetcher {
	return &PollinationsFetcher{
		BaseURL:    pollinationsBaseURL,
		width:      width,
		height:     height,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

func (p *PollinationsFetcher) Name() string { return "pollinations" }

// Generate requests one image. A single attempt; callers decide what a
// failure means.
func (p *PollinationsFetcher) Generate(ctx context.Context, prompt string) ([]byte, error) {
	// Format: {base}/prompt/{encoded_prompt}?params
	imageURL := fmt.Sprintf(
		"%s/prompt/%s?width=%d&height=%d&nologo=true&model=flux&seed=%d",
		strings.TrimRight(p.BaseURL, "/"),
		url.PathEscape(prompt),
		p.width, p.height,
		seedFor(prompt),
	)

	log.Printf("[visuals] Pollinations request: %q", truncate(prompt, 60))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; ReelPipeline/1.0)")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d from Pollinations", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	// an error HTML page comes back tiny
	if len(data) < 100 {
		return nil, fmt.Errorf("response too small (%d bytes), likely an error", len(data))
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "image/") {
		return nil, fmt.Errorf("unexpected content type %q", ct)
	}
	return data, nil
}

// seedFor keeps the same prompt on the same seed so reruns look alike
func seedFor(prompt string) int {
	h := 7
	for _, r := range prompt {
		h = (h*31 + int(r)) % 1000003
	}
	return h
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
