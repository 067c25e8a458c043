// Package server serves the built repository over HTTP.
//
// Every path the repository answers for is encoded once at construction:
// identity, gzip and brotli bodies plus an ETag each. The request path never
// touches the repository again apart from the per-request tracker.
package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/google/uuid"
	"github.com/klauspost/compress/gzip"
	"github.com/specialistvlad/basicbundles/internal/assets"
	"github.com/specialistvlad/basicbundles/internal/ctxlog"
	"github.com/specialistvlad/basicbundles/internal/tracker"
	"github.com/zeebo/blake3"
)

const (
	encodingBrotli = "br"
	encodingGzip   = "gzip"

	defaultMaxAge          = 365 * 24 * time.Hour
	defaultMinCompressSize = 256
)

// RequestIDHeader carries the id the request was logged under.
const RequestIDHeader = "X-Request-Id"

type variant struct {
	encoding string
	body     []byte
	etag     string
}

type asset struct {
	path        string
	version     string
	contentType string
	// variants is ordered by preference; the identity variant is last.
	variants []variant
}

// Server holds the encoded assets of one repository.
type Server struct {
	repo            *assets.Repository
	toAppRelative   func(string) string
	assets          map[string]*asset
	logger          *slog.Logger
	maxAge          time.Duration
	minCompressSize int
}

// Option customises a Server.
type Option func(*Server)

// WithMaxAge sets the max-age sent with versioned responses.
func WithMaxAge(d time.Duration) Option {
	return func(s *Server) { s.maxAge = d }
}

// WithMinCompressSize sets the body size below which no compressed variants
// are produced.
func WithMinCompressSize(n int) Option {
	return func(s *Server) { s.minCompressSize = n }
}

// New encodes every path of repo. toAppRelative maps request paths onto
// logical repository paths.
func New(ctx context.Context, repo *assets.Repository, toAppRelative func(string) string, opts ...Option) (*Server, error) {
	logger := ctxlog.FromContext(ctx)
	s := &Server{
		repo:            repo,
		toAppRelative:   toAppRelative,
		assets:          make(map[string]*asset),
		logger:          logger,
		maxAge:          defaultMaxAge,
		minCompressSize: defaultMinCompressSize,
	}
	for _, opt := range opts {
		opt(s)
	}

	for _, path := range repo.Paths() {
		entry, _ := repo.Lookup(path)
		a, err := s.encode(path, entry)
		if err != nil {
			return nil, fmt.Errorf("error encoding %s: %w", path, err)
		}
		s.assets[path] = a
	}
	logger.Debug("Server: Assets encoded.", "count", len(s.assets))
	return s, nil
}

func (s *Server) encode(path string, entry assets.Entry) (*asset, error) {
	content := s.repo.FetchEntry(entry)
	body := []byte(content.Body)
	etag := etagOf(body)

	a := &asset{
		path:        path,
		version:     s.repo.Hash(entry.Requestable),
		contentType: content.ContentType + "; charset=utf-8",
	}
	if len(body) >= s.minCompressSize {
		br, err := compressBrotli(body)
		if err != nil {
			return nil, err
		}
		if len(br) < len(body) {
			a.variants = append(a.variants, variant{encoding: encodingBrotli, body: br, etag: suffixETag(etag, encodingBrotli)})
		}
		gz, err := compressGzip(body)
		if err != nil {
			return nil, err
		}
		if len(gz) < len(body) {
			a.variants = append(a.variants, variant{encoding: encodingGzip, body: gz, etag: suffixETag(etag, encodingGzip)})
		}
	}
	a.variants = append(a.variants, variant{body: body, etag: etag})
	return a, nil
}

// Middleware installs a fresh tracker and a request scoped logger into every
// request, answers GET and HEAD requests for known asset paths and hands
// everything else to next.
func (s *Server) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		ctx := ctxlog.WithLogger(r.Context(), s.logger.With("request_id", id))
		ctx = tracker.NewContext(ctx, tracker.New(s.repo))
		r = r.WithContext(ctx)
		w.Header().Set(RequestIDHeader, id)

		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			next.ServeHTTP(w, r)
			return
		}
		a, ok := s.assets[s.toAppRelative(r.URL.Path)]
		if !ok {
			next.ServeHTTP(w, r)
			return
		}
		s.serve(w, r, a)
	})
}

// Handler serves assets only; anything else is a 404.
func (s *Server) Handler() http.Handler {
	return s.Middleware(http.NotFoundHandler())
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request, a *asset) {
	logger := ctxlog.FromContext(r.Context())
	v := a.negotiate(r.Header.Get("Accept-Encoding"))

	h := w.Header()
	h.Set("Content-Type", a.contentType)
	h.Set("Vary", "Accept-Encoding")
	h.Set("ETag", v.etag)
	if r.URL.Query().Get("version") == a.version {
		h.Set("Cache-Control", fmt.Sprintf("public, max-age=%d, immutable", int(s.maxAge.Seconds())))
	} else {
		h.Set("Cache-Control", "no-cache")
	}

	if etagMatches(r.Header.Get("If-None-Match"), v.etag) {
		logger.Debug("Asset not modified.", "path", a.path)
		w.WriteHeader(http.StatusNotModified)
		return
	}

	if v.encoding != "" {
		h.Set("Content-Encoding", v.encoding)
	}
	h.Set("Content-Length", strconv.Itoa(len(v.body)))
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	if _, err := w.Write(v.body); err != nil {
		logger.Warn("Writing asset failed.", "path", a.path, "error", err)
		return
	}
	logger.Debug("Asset served.", "path", a.path, "encoding", v.encoding, "bytes", len(v.body))
}

// negotiate picks the first variant the client accepts. The identity
// variant is always acceptable.
func (a *asset) negotiate(acceptEncoding string) variant {
	accepted := parseAcceptEncoding(acceptEncoding)
	for _, v := range a.variants {
		if v.encoding == "" || accepted[v.encoding] {
			return v
		}
	}
	return a.variants[len(a.variants)-1]
}

// parseAcceptEncoding returns the codings with a non-zero quality.
func parseAcceptEncoding(header string) map[string]bool {
	accepted := make(map[string]bool)
	for _, part := range strings.Split(header, ",") {
		coding, params, _ := strings.Cut(strings.TrimSpace(part), ";")
		coding = strings.ToLower(strings.TrimSpace(coding))
		if coding == "" {
			continue
		}
		accepted[coding] = !zeroQuality(params)
	}
	if accepted["*"] {
		for _, c := range []string{encodingBrotli, encodingGzip} {
			if _, explicit := accepted[c]; !explicit {
				accepted[c] = true
			}
		}
	}
	return accepted
}

func zeroQuality(params string) bool {
	for _, p := range strings.Split(params, ";") {
		k, val, ok := strings.Cut(strings.TrimSpace(p), "=")
		if !ok || !strings.EqualFold(strings.TrimSpace(k), "q") {
			continue
		}
		q, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		return err == nil && q == 0
	}
	return false
}

func etagMatches(ifNoneMatch, etag string) bool {
	if ifNoneMatch == "" {
		return false
	}
	for _, candidate := range strings.Split(ifNoneMatch, ",") {
		candidate = strings.TrimPrefix(strings.TrimSpace(candidate), "W/")
		if candidate == "*" || candidate == etag {
			return true
		}
	}
	return false
}

func etagOf(body []byte) string {
	sum := blake3.Sum256(body)
	return `"` + base64.RawURLEncoding.EncodeToString(sum[:16]) + `"`
}

func suffixETag(etag, encoding string) string {
	return strings.TrimSuffix(etag, `"`) + "-" + encoding + `"`
}

func compressGzip(body []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
	if err != nil {
		return nil, err
	}
	if _, err := zw.Write(body); err != nil {
		return nil, fmt.Errorf("gzip: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("gzip: %w", err)
	}
	return buf.Bytes(), nil
}

func compressBrotli(body []byte) ([]byte, error) {
	var buf bytes.Buffer
	bw := brotli.NewWriterLevel(&buf, brotli.BestCompression)
	if _, err := bw.Write(body); err != nil {
		return nil, fmt.Errorf("brotli: %w", err)
	}
	if err := bw.Close(); err != nil {
		return nil, fmt.Errorf("brotli: %w", err)
	}
	return buf.Bytes(), nil
}
