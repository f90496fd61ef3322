package extract

import (
	"context"
	"errors"
	"strings"

	"github.com/poiesic/groundwork/fetch"
)

type stubDownloader struct {
	body        string
	contentType string
	err         error
	calls       int
}

func (s *stubDownloader) Download(ctx context.Context, url string) (*fetch.Response, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	ct := s.contentType
	if ct == "" {
		ct = "text/html; charset=utf-8"
	}
	return &fetch.Response{URL: url, StatusCode: 200, ContentType: ct, Body: []byte(s.body)}, nil
}

var errTransport = errors.New("connection refused")

func long(prefix string) string {
	return prefix + " " + strings.Repeat("statutory language ", 4)
}
