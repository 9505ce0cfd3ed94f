package upload

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"reel-pipeline/config"
	"reel-pipeline/types"
)

// YouTube uploads reels as Shorts via Data API v3
type YouTube struct {
	cfg  config.YouTubeConfig
	opts []option.ClientOption
}

// NewYouTube creates the Shorts publisher. Extra options are passed to the
// API client, e.g. a custom endpoint.
func NewYouTube(cfg config.YouTubeConfig, opts ...option.ClientOption) *YouTube {
	return &YouTube{cfg: cfg, opts: opts}
}

func (y *YouTube) Name() string { return "youtube" }

func (y *YouTube) Publish(ctx context.Context, videoPath string, script *types.Script) (types.PublishResult, error) {
	res := types.PublishResult{Target: y.Name()}

	log.Println("[upload] Authenticating with YouTube API...")
	client, err := oauthClient(ctx)
	if err != nil {
		return res, fmt.Errorf("youtube auth: %w", err)
	}

	svc, err := youtube.NewService(ctx, append([]option.ClientOption{option.WithHTTPClient(client)}, y.opts...)...)
	if err != nil {
		return res, fmt.Errorf("youtube service: %w", err)
	}

	meta := BuildMetadata(script, y.cfg.TitleMaxChars)
	log.Printf("[upload] Uploading: %q", meta.Title)

	video := &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:                meta.Title,
			Description:          meta.Description,
			Tags:                 meta.Tags,
			CategoryId:           y.cfg.CategoryID,
			DefaultLanguage:      y.cfg.DefaultLanguage,
			DefaultAudioLanguage: y.cfg.DefaultLanguage,
		},
		Status: &youtube.VideoStatus{
			PrivacyStatus:           y.cfg.Visibility,
			SelfDeclaredMadeForKids: y.cfg.MadeForKids,
			ForceSendFields:         []string{"SelfDeclaredMadeForKids"},
		},
	}

	f, err := os.Open(videoPath)
	if err != nil {
		return res, fmt.Errorf("open video file: %w", err)
	}
	defer f.Close()

	if fi, err := f.Stat(); err == nil {
		log.Printf("[upload] File size: %.1f MB", float64(fi.Size())/1024/1024)
	}

	uploaded, err := svc.Videos.Insert([]string{"snippet", "status"}, video).Media(f).Context(ctx).Do()
	if err != nil {
		return res, fmt.Errorf("youtube upload: %w", err)
	}

	res.ID = uploaded.Id
	res.URL = "https://www.youtube.com/shorts/" + uploaded.Id
	res.Status = uploaded.HTTPStatusCode
	log.Printf("[upload] Video URL: %s", res.URL)
	return res, nil
}

// oauthClient builds a refreshing HTTP client from env credentials
func oauthClient(ctx context.Context) (*http.Client, error) {
	clientID := os.Getenv("YOUTUBE_CLIENT_ID")
	clientSecret := os.Getenv("YOUTUBE_CLIENT_SECRET")
	refreshToken := os.Getenv("YOUTUBE_REFRESH_TOKEN")

	if clientID == "" || clientSecret == "" || refreshToken == "" {
		return nil, errors.New("YOUTUBE_CLIENT_ID, YOUTUBE_CLIENT_SECRET, or YOUTUBE_REFRESH_TOKEN not set")
	}

	conf := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{youtube.YoutubeUploadScope},
	}
	token := &oauth2.Token{
		RefreshToken: refreshToken,
		Expiry:       time.Now().Add(-time.Hour), // force refresh
	}
	return conf.Client(ctx, token), nil
}
