// Package gateway maps each backend operation to exactly one HTTP call.
// Gateways hold no state and pass transport errors through unchanged.
package gateway

import (
	"context"
	"io"
	"net/url"
	"strconv"

	"github.com/spec-kit/medpractice-client/internal/domain"
)

// Transport is the subset of httpclient.Client the gateways rely on.
type Transport interface {
	Get(ctx context.Context, path string, query url.Values, out any) error
	Post(ctx context.Context, path string, body, out any) error
	Put(ctx context.Context, path string, body, out any) error
	Delete(ctx context.Context, path string) error
	Upload(ctx context.Context, path, field, filename string, content io.Reader, out any) error
	Download(ctx context.Context, path string, query url.Values) ([]byte, error)
}

func pageQuery(p domain.PageRequest) url.Values {
	p = p.Normalize()
	return url.Values{
		"page": {strconv.Itoa(p.Page)},
		"size": {strconv.Itoa(p.Size)},
	}
}

func idPath(prefix string, id int64, suffix ...string) string {
	path := prefix + "/" + strconv.FormatInt(id, 10)
	for _, s := range suffix {
		path += "/" + s
	}
	return path
}
