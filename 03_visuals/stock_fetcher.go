package visuals

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"math/rand"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"reel-pipeline/config"
	"reel-pipeline/types"
)

const pexelsBaseURL = "https://api.pexels.com"

var searchKeywords = map[types.Category][]string{
	types.CategoryLifeLessons: {"motivation", "focus", "sunrise", "mountain", "silhouette", "city street", "determination", "hope"},
	types.CategoryFinance:     {"India finance", "BSE building", "stock market India", "rupee", "business team", "growth chart", "office skyline"},
	types.CategorySpiritual:   {"temple", "Varanasi ghat", "meditation", "Ganga aarti", "diya lights", "yoga", "sunset peace", "Himalayas"},
}

// Keywords returns the stock search terms for a category
func Keywords(category types.Category) []string {
	if k, ok := searchKeywords[category]; ok {
		return k
	}
	return searchKeywords[types.CategoryLifeLessons]
}

// ClipCount sizes the stock request to the narration. Unknown duration
// (0) falls back to the configured fixed count.
func ClipCount(cfg config.StockConfig, durationSec float64) int {
	if durationSec <= 0 || cfg.SecondsPerClip <= 0 {
		return cfg.ClipCount
	}
	n := int(math.Ceil(durationSec / cfg.SecondsPerClip))
	if cfg.MaxClips > 0 && n > cfg.MaxClips {
		n = cfg.MaxClips
	}
	if n < 1 {
		n = 1
	}
	return n
}

type pexelsResponse struct {
	Videos []struct {
		ID         int `json:"id"`
		VideoFiles []struct {
			Link    string `json:"link"`
			Quality string `json:"quality"`
			Width   int    `json:"width"`
			Height  int    `json:"height"`
		} `json:"video_files"`
	} `json:"videos"`
}

// StockFetcher downloads portrait clips from Pexels
type StockFetcher struct {
	BaseURL    string
	cfg        *config.Config
	httpClient *http.Client
	rng        *rand.Rand
}

// NewStockFetcher creates a fetcher. rng may be nil.
func NewStockFetcher(cfg *config.Config, rng *rand.Rand) *StockFetcher {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &StockFetcher{
		BaseURL:    pexelsBaseURL,
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		rng:        rng,
	}
}

// Run samples distinct keywords and downloads one clip for each. Every
// failure is a Skip; fewer clips than asked is not an error.
func (s *StockFetcher) Run(ctx context.Context, category types.Category, clipCount int) (*types.AcquireResult, error) {
	log.Printf("[visuals] 🎥 Downloading vertical clips from Pexels for category: %s...", category)

	if s.cfg.PexelsAPIKey == "" {
		return nil, errors.New("pexels api key missing; set pexels_api_key or PEXELS_API_KEY")
	}
	dir := s.cfg.Paths.BackgroundVideos
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	res := &types.AcquireResult{}
	for _, keyword := range s.sample(Keywords(category), clipCount) {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		path, err := s.fetch(ctx, keyword, dir)
		if err != nil {
			log.Printf("[visuals] Skipping %q: %v", keyword, err)
			res.Skip(keyword, err)
			continue
		}
		log.Printf("[visuals] ✅ Downloaded clip: %s", path)
		res.Paths = append(res.Paths, path)
	}

	log.Printf("[visuals] 🎬 Total portrait clips downloaded: %d", len(res.Paths))
	return res, nil
}

// sample picks min(n, len(keywords)) keywords without replacement
func (s *StockFetcher) sample(keywords []string, n int) []string {
	if n > len(keywords) {
		n = len(keywords)
	}
	if n <= 0 {
		return nil
	}
	out := make([]string, 0, n)
	for _, i := range s.rng.Perm(len(keywords))[:n] {
		out = append(out, keywords[i])
	}
	return out
}

func (s *StockFetcher) fetch(ctx context.Context, keyword, dir string) (string, error) {
	q := url.Values{}
	q.Set("query", keyword)
	q.Set("orientation", s.cfg.Stock.Orientation)
	q.Set("per_page", strconv.Itoa(s.cfg.Stock.PerPage))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(s.BaseURL, "/")+"/videos/search?"+q.Encode(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", s.cfg.PexelsAPIKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP %d from Pexels", resp.StatusCode)
	}

	var parsed pexelsResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode search response: %w", err)
	}
	if len(parsed.Videos) == 0 {
		return "", errors.New("no videos found")
	}
	files := parsed.Videos[0].VideoFiles
	if len(files) == 0 || files[0].Link == "" {
		return "", errors.New("video has no downloadable files")
	}

	name := fmt.Sprintf("%s_%d.mp4", strings.ReplaceAll(keyword, " ", "_"), 1000+s.rng.Intn(9000))
	path := filepath.Join(dir, name)
	if err := s.download(ctx, files[0].Link, path); err != nil {
		return "", fmt.Errorf("download: %w", err)
	}
	return path, nil
}

func (s *StockFetcher) download(ctx context.Context, link, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return err
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}
