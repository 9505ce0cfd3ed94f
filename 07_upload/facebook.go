package upload

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"reel-pipeline/config"
	"reel-pipeline/types"
)

// Facebook uploads videos to a Page through the Graph API
type Facebook struct {
	cfg        config.FacebookConfig
	httpClient *http.Client
}

// NewFacebook creates the Page video publisher
func NewFacebook(cfg config.FacebookConfig) *Facebook {
	return &Facebook{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 10 * time.Minute},
	}
}

func (f *Facebook) Name() string { return "facebook" }

type graphVideoResp struct {
	ID string `json:"id"`
}

// Publish posts the file as multipart form data. Any 2xx is success.
func (f *Facebook) Publish(ctx context.Context, videoPath string, script *types.Script) (types.PublishResult, error) {
	res := types.PublishResult{Target: f.Name()}
	if f.cfg.PageID == "" || f.cfg.PageAccessToken == "" {
		return res, errors.New("FACEBOOK_PAGE_ID or FACEBOOK_PAGE_ACCESS_TOKEN not set")
	}

	file, err := os.Open(videoPath)
	if err != nil {
		return res, err
	}
	defer file.Close()

	// the multipart body is streamed so the render never sits in memory
	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)
	go func() {
		pw.CloseWithError(writeVideoForm(writer, file, filepath.Base(videoPath), f.cfg.PageAccessToken, script.FullCaption()))
	}()
	defer pr.Close()

	url := fmt.Sprintf("%s/%s/%s/videos", strings.TrimRight(f.cfg.BaseURL, "/"), f.cfg.GraphVersion, f.cfg.PageID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, pr)
	if err != nil {
		return res, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return res, err
	}
	defer resp.Body.Close()

	res.Status = resp.StatusCode
	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return res, fmt.Errorf("graph api returned %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var data graphVideoResp
	if err := json.Unmarshal(raw, &data); err == nil && data.ID != "" {
		res.ID = data.ID
		res.URL = "https://www.facebook.com/" + data.ID
	}
	return res, nil
}

// writeVideoForm writes the text fields first, then the file as "source"
func writeVideoForm(w *multipart.Writer, file io.Reader, name, token, description string) error {
	if err := w.WriteField("access_token", token); err != nil {
		return err
	}
	if err := w.WriteField("description", description); err != nil {
		return err
	}
	part, err := w.CreateFormFile("source", name)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, file); err != nil {
		return err
	}
	return w.Close()
}
