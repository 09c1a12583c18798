package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"imgur-archiver/internal/model"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func newTestClient(handler roundTripFunc) *Client {
	return New(&http.Client{Transport: handler}, "", "")
}

func response(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}
}

func TestFetchCatalogSuccess(t *testing.T) {
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		if req.URL.Path != "/post/v1/albums/aA1b" {
			t.Fatalf("unexpected path: %s", req.URL.Path)
		}
		if req.URL.Query().Get("client_id") == "" {
			t.Fatalf("missing client_id query parameter")
		}
		if req.URL.Query().Get("include") != "media" {
			t.Fatalf("missing include=media query parameter")
		}
		return response(200, `{"media":[
			{"url":"https://i.imgur.com/x1.JPG","ext":"jpg","size":10},
			{"url":"https://i.imgur.com/x2.png","ext":"png","size":20}
		]}`), nil
	})

	catalog, err := client.FetchCatalog(context.Background(), model.Reference{ID: "aA1b", Kind: model.KindAlbum})
	if err != nil {
		t.Fatalf("FetchCatalog failed: %v", err)
	}
	if len(catalog.Files) != 2 {
		t.Fatalf("expected 2 files, got %d", len(catalog.Files))
	}
	if catalog.Ref.Kind != model.KindAlbum {
		t.Fatalf("unexpected kind: %s", catalog.Ref.Kind)
	}
	first := catalog.Files[0]
	if first.Position != 0 || first.Size != 10 || first.Ext != "jpg" {
		t.Fatalf("unexpected first file: %+v", first)
	}
	if catalog.Files[1].Position != 1 {
		t.Fatalf("positions must follow encounter order, got %d", catalog.Files[1].Position)
	}
}

func TestFetchCatalogPositionsFollowEncounterOrder(t *testing.T) {
	// The API's own numbering is ignored even if present in the payload.
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		return response(200, `{"media":[
			{"url":"https://i.imgur.com/b.jpg","size":2,"index":7},
			{"url":"https://i.imgur.com/a.jpg","size":1,"index":3}
		]}`), nil
	})

	catalog, err := client.FetchCatalog(context.Background(), model.Reference{ID: "x", Kind: model.KindAlbum})
	if err != nil {
		t.Fatalf("FetchCatalog failed: %v", err)
	}
	for i, f := range catalog.Files {
		if f.Position != i {
			t.Fatalf("file %d has position %d", i, f.Position)
		}
	}
}

func TestFetchCatalogGalleryHintUsesPostsEndpoint(t *testing.T) {
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		if req.URL.Path != "/post/v1/posts/g1" {
			t.Fatalf("unexpected path: %s", req.URL.Path)
		}
		return response(200, `{"media":[]}`), nil
	})

	catalog, err := client.FetchCatalog(context.Background(), model.Reference{ID: "g1", Kind: model.KindGallery})
	if err != nil {
		t.Fatalf("FetchCatalog failed: %v", err)
	}
	if catalog.Ref.Kind != model.KindGallery {
		t.Fatalf("unexpected kind: %s", catalog.Ref.Kind)
	}
}

func TestFetchCatalogUnknownKindFallsBack(t *testing.T) {
	var paths []string
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		paths = append(paths, req.URL.Path)
		if strings.HasPrefix(req.URL.Path, "/post/v1/albums/") {
			return response(404, ""), nil
		}
		return response(200, `{"media":[{"url":"https://i.imgur.com/a.jpg","size":1}]}`), nil
	})

	catalog, err := client.FetchCatalog(context.Background(), model.Reference{ID: "zz9", Kind: model.KindUnknown})
	if err != nil {
		t.Fatalf("FetchCatalog failed: %v", err)
	}
	if len(paths) != 2 || paths[0] != "/post/v1/albums/zz9" || paths[1] != "/post/v1/posts/zz9" {
		t.Fatalf("unexpected lookup sequence: %v", paths)
	}
	if catalog.Ref.Kind != model.KindGallery {
		t.Fatalf("resolved kind should be gallery, got %s", catalog.Ref.Kind)
	}
}

func TestFetchCatalogNotFound(t *testing.T) {
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		return response(404, ""), nil
	})

	_, err := client.FetchCatalog(context.Background(), model.Reference{ID: "gone", Kind: model.KindUnknown})
	if !errors.Is(err, model.ErrAlbumNotFound) {
		t.Fatalf("expected ErrAlbumNotFound, got %v", err)
	}
}

func TestFetchCatalogServerErrorIsTransient(t *testing.T) {
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		return response(502, ""), nil
	})

	_, err := client.FetchCatalog(context.Background(), model.Reference{ID: "x", Kind: model.KindAlbum})
	if !errors.Is(err, model.ErrTransient) {
		t.Fatalf("expected ErrTransient, got %v", err)
	}
}

func TestFetchCatalogClientErrorIsNotRetryable(t *testing.T) {
	for _, status := range []int{400, 401, 403, 429} {
		client := newTestClient(func(req *http.Request) (*http.Response, error) {
			return response(status, ""), nil
		})

		_, err := client.FetchCatalog(context.Background(), model.Reference{ID: "x", Kind: model.KindAlbum})
		if err == nil {
			t.Fatalf("status %d: expected error", status)
		}
		if errors.Is(err, model.ErrTransient) {
			t.Fatalf("status %d must not be transient, got %v", status, err)
		}
		if errors.Is(err, model.ErrAlbumNotFound) {
			t.Fatalf("status %d must not map to not-found, got %v", status, err)
		}
	}
}

func TestFetchCatalogNetworkErrorIsTransient(t *testing.T) {
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		return nil, errors.New("connection refused")
	})

	_, err := client.FetchCatalog(context.Background(), model.Reference{ID: "x", Kind: model.KindAlbum})
	if !errors.Is(err, model.ErrTransient) {
		t.Fatalf("expected ErrTransient, got %v", err)
	}
}

func TestFetchCatalogMalformedResponses(t *testing.T) {
	bodies := []string{
		`{invalid json`,
		`{"media":[{"ext":"jpg","size":10}]}`,
		`{"media":[{"url":"https://i.imgur.com/a.jpg"}]}`,
		`{"media":[{"url":"https://i.imgur.com/a.jpg","size":-1}]}`,
	}

	for _, body := range bodies {
		client := newTestClient(func(req *http.Request) (*http.Response, error) {
			return response(200, body), nil
		})

		_, err := client.FetchCatalog(context.Background(), model.Reference{ID: "x", Kind: model.KindAlbum})
		if !errors.Is(err, model.ErrMalformedResponse) {
			t.Fatalf("body %q: expected ErrMalformedResponse, got %v", body, err)
		}
	}
}

func TestFetchCatalogExtFallsBackToField(t *testing.T) {
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		return response(200, `{"media":[{"url":"https://i.imgur.com/noext","ext":"gif","size":5}]}`), nil
	})

	catalog, err := client.FetchCatalog(context.Background(), model.Reference{ID: "x", Kind: model.KindAlbum})
	if err != nil {
		t.Fatalf("FetchCatalog failed: %v", err)
	}
	if catalog.Files[0].Ext != "gif" {
		t.Fatalf("expected ext fallback to API field, got %q", catalog.Files[0].Ext)
	}
}
