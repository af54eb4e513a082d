// Package youtube resolves video metadata for submitted links through
// the YouTube Data API. Lookup is best-effort: without an API key the
// queue still works, entries just keep whatever the client submitted.
package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
)

var ErrInvalidLink = errors.New("url must be a valid YouTube link")

var linkPattern = regexp.MustCompile(`^(https?://)?(www\.)?(youtube\.com/watch\?v=|youtu\.be/)[\w-]{11}`)

// ExtractID validates a YouTube watch link and pulls out the 11-char
// video id.
func ExtractID(rawURL string) (string, error) {
	if !linkPattern.MatchString(rawURL) {
		return "", ErrInvalidLink
	}
	var id string
	switch {
	case strings.Contains(rawURL, "watch?v="):
		id = strings.SplitN(rawURL, "watch?v=", 2)[1]
		id = strings.SplitN(id, "&", 2)[0]
	case strings.Contains(rawURL, "youtu.be/"):
		id = strings.SplitN(rawURL, "youtu.be/", 2)[1]
		id = strings.SplitN(id, "?", 2)[0]
	}
	if id == "" {
		return "", ErrInvalidLink
	}
	return id, nil
}

type VideoMeta struct {
	Title    string
	SmallImg string
	BigImg   string
}

type Client struct {
	apiKey string
	http   *http.Client
}

func NewClient(apiKey string) *Client {
	return &Client{
		apiKey: apiKey,
		http:   &http.Client{Timeout: 10 * time.Second},
	}
}

// VideoMeta fetches title and thumbnails for a video id. Returns nil
// meta (no error) when no API key is configured.
func (c *Client) VideoMeta(ctx context.Context, videoID string) (*VideoMeta, error) {
	if c.apiKey == "" {
		return nil, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://www.googleapis.com/youtube/v3/videos", nil)
	if err != nil {
		return nil, err
	}
	q := req.URL.Query()
	q.Add("key", c.apiKey)
	q.Add("part", "snippet")
	q.Add("id", videoID)
	req.URL.RawQuery = q.Encode()

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Items []struct {
			Snippet struct {
				Title      string `json:"title"`
				Thumbnails map[string]struct {
					URL string `json:"url"`
				} `json:"thumbnails"`
			} `json:"snippet"`
		} `json:"items"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, err
	}
	if len(payload.Items) == 0 {
		return nil, fmt.Errorf("no video returned for id %s", videoID)
	}

	snippet := payload.Items[0].Snippet
	meta := &VideoMeta{Title: snippet.Title}
	// Biggest available wins for the player, default for the queue row.
	for _, key := range []string{"maxres", "standard", "high", "medium"} {
		if t, ok := snippet.Thumbnails[key]; ok {
			meta.BigImg = t.URL
			break
		}
	}
	if t, ok := snippet.Thumbnails["default"]; ok {
		meta.SmallImg = t.URL
	}
	return meta, nil
}
