package webcache

import (
	"bytes"
	"io"
	"net/http"
)

// Transport adapts the fetch policy to [http.RoundTripper]. GET requests go
// through the cache; every other method passes straight to the underlying
// transport. Responses carry an X-Domo-Cache header ("hit" or "miss").
type Transport struct {
	fetcher *Fetcher
	base    http.RoundTripper
}

// Transport returns a RoundTripper applying this fetcher's policy.
func (f *Fetcher) Transport() *Transport {
	base := f.http.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	return &Transport{fetcher: f, base: base}
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodGet {
		return t.base.RoundTrip(req)
	}

	result, err := t.fetcher.Fetch(req.Context(), req.URL.String())
	if err != nil {
		return nil, err
	}

	header := http.Header{}
	if result.ContentType != "" {
		header.Set("Content-Type", result.ContentType)
	}
	if result.FromCache {
		header.Set("X-Domo-Cache", "hit")
	} else {
		header.Set("X-Domo-Cache", "miss")
	}

	return &http.Response{
		StatusCode:    result.Status,
		Status:        http.StatusText(result.Status),
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(result.Body)),
		ContentLength: int64(len(result.Body)),
		Request:       req,
	}, nil
}
