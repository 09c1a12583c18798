package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"imgur-archiver/internal/album"
	"imgur-archiver/internal/model"
)

const (
	defaultBaseURL  = "https://api.imgur.com"
	defaultClientID = "546c25a59c58ad7"
)

// Client looks up album and gallery posts on the Imgur API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	clientID   string
}

// New creates an API client. Empty baseURL or clientID fall back to the
// public Imgur defaults.
func New(httpClient *http.Client, baseURL, clientID string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if clientID == "" {
		clientID = defaultClientID
	}
	return &Client{httpClient: httpClient, baseURL: baseURL, clientID: clientID}
}

type postResponse struct {
	Media []mediaResponse `json:"media"`
}

type mediaResponse struct {
	URL  string `json:"url"`
	Ext  string `json:"ext"`
	Size *int64 `json:"size"`
}

// FetchCatalog resolves a reference to the ordered media list of its
// post. References without a kind hint try the album endpoint first and
// fall back to the gallery endpoint when the album lookup reports not
// found. File positions are assigned by encounter order; the API's own
// numbering, if any, is ignored.
func (c *Client) FetchCatalog(ctx context.Context, ref model.Reference) (model.Catalog, error) {
	var kinds []model.Kind
	switch ref.Kind {
	case model.KindAlbum:
		kinds = []model.Kind{model.KindAlbum}
	case model.KindGallery:
		kinds = []model.Kind{model.KindGallery}
	default:
		kinds = []model.Kind{model.KindAlbum, model.KindGallery}
	}

	var lastErr error
	for _, kind := range kinds {
		files, err := c.fetchMedia(ctx, ref.ID, kind)
		if err == nil {
			return model.Catalog{
				Ref:   model.Reference{ID: ref.ID, Kind: kind},
				Files: files,
			}, nil
		}
		lastErr = err
		if !errors.Is(err, model.ErrAlbumNotFound) {
			break
		}
	}
	return model.Catalog{}, lastErr
}

func (c *Client) fetchMedia(ctx context.Context, id string, kind model.Kind) ([]model.RemoteFile, error) {
	var out postResponse
	if err := c.getJSON(ctx, c.lookupURL(id, kind), &out); err != nil {
		return nil, err
	}

	files := make([]model.RemoteFile, 0, len(out.Media))
	for i, m := range out.Media {
		if m.URL == "" {
			return nil, fmt.Errorf("%w: media item %d has no url", model.ErrMalformedResponse, i)
		}
		if m.Size == nil || *m.Size < 0 {
			return nil, fmt.Errorf("%w: media item %d has no size", model.ErrMalformedResponse, i)
		}
		ext := album.ExtFromURL(m.URL)
		if ext == "" {
			ext = m.Ext
		}
		files = append(files, model.RemoteFile{
			Position: i,
			URL:      m.URL,
			Ext:      ext,
			Size:     *m.Size,
		})
	}
	return files, nil
}

func (c *Client) lookupURL(id string, kind model.Kind) string {
	segment := "albums"
	if kind == model.KindGallery {
		segment = "posts"
	}
	return fmt.Sprintf(
		"%s/post/v1/%s/%s?client_id=%s&include=media",
		c.baseURL, segment, url.PathEscape(id), url.QueryEscape(c.clientID),
	)
}

func (c *Client) getJSON(ctx context.Context, u string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: request %s: %v", model.ErrTransient, u, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", model.ErrAlbumNotFound, u)
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: request %s: unexpected status %d", model.ErrTransient, u, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		// Other client errors (400, 401, 403, ...) will not heal on
		// retry.
		return fmt.Errorf("request %s: unexpected status %d", u, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: decode %s: %v", model.ErrMalformedResponse, u, err)
	}
	return nil
}
