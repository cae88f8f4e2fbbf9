package styles

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// fetchTimeout bounds a single remote sheet fetch.
const fetchTimeout = 30 * time.Second

// Resolver resolves CSS references to cached Sheet handles.
type Resolver struct {
	mu    sync.Mutex
	cache map[string]*Sheet

	client *http.Client
	s3     *s3.Client
	logger *slog.Logger

	watch *watchList
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithHTTPClient sets the HTTP client used for http(s) references.
func WithHTTPClient(c *http.Client) Option {
	return func(r *Resolver) { r.client = c }
}

// WithS3 enables s3://bucket/key references using the given client.
func WithS3(client *s3.Client) Option {
	return func(r *Resolver) { r.s3 = client }
}

// WithLogger sets the resolver's logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) { r.logger = l }
}

// NewResolver creates a sheet resolver.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		cache:  make(map[string]*Sheet),
		client: http.DefaultClient,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns a reusable sheet handle for a CSS reference. The same
// reference always yields the same handle. Unknown reference types
// produce an inline sheet of their stringified value.
func (r *Resolver) Resolve(ref any) *Sheet {
	switch v := ref.(type) {
	case *Sheet:
		return v
	case string:
		return r.resolveString(v)
	default:
		return r.resolveString(fmt.Sprintf("%v", ref))
	}
}

// Close stops the file watcher, if one was started.
func (r *Resolver) Close() error {
	r.mu.Lock()
	w := r.watch
	r.watch = nil
	r.mu.Unlock()
	if w != nil {
		return w.close()
	}
	return nil
}

func (r *Resolver) resolveString(ref string) *Sheet {
	// Raw CSS is used as-is and not cached by content.
	if strings.ContainsAny(ref, "{}\n") {
		return NewSheet(ref)
	}

	r.mu.Lock()
	if s, ok := r.cache[ref]; ok {
		r.mu.Unlock()
		return s
	}
	s := newPending(ref)
	r.cache[ref] = s
	r.mu.Unlock()

	switch {
	case strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://"):
		go r.fetchHTTP(ref, s)
	case strings.HasPrefix(ref, "s3://"):
		go r.fetchS3(ref, s)
	default:
		go r.loadFile(ref, s)
		r.watchFile(ref, s)
	}
	return s
}

func (r *Resolver) fetchHTTP(url string, s *Sheet) {
	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		s.populate("", err)
		return
	}
	resp, err := r.client.Do(req)
	if err != nil {
		r.logger.Warn("stylesheet fetch failed", "url", url, "error", err)
		s.populate("", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("stylesheet fetch: unexpected status %d", resp.StatusCode)
		r.logger.Warn("stylesheet fetch failed", "url", url, "error", err)
		s.populate("", err)
		return
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		s.populate("", err)
		return
	}
	s.populate(string(body), nil)
}

func (r *Resolver) fetchS3(ref string, s *Sheet) {
	if r.s3 == nil {
		s.populate("", fmt.Errorf("stylesheet %q: no S3 client configured", ref))
		return
	}
	bucket, key, ok := strings.Cut(strings.TrimPrefix(ref, "s3://"), "/")
	if !ok || bucket == "" || key == "" {
		s.populate("", fmt.Errorf("stylesheet %q: want s3://bucket/key", ref))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()

	out, err := r.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		r.logger.Warn("stylesheet fetch failed", "ref", ref, "error", err)
		s.populate("", err)
		return
	}
	defer out.Body.Close()

	body, err := io.ReadAll(out.Body)
	if err != nil {
		s.populate("", err)
		return
	}
	s.populate(string(body), nil)
}

func (r *Resolver) loadFile(path string, s *Sheet) {
	body, err := os.ReadFile(path)
	if err != nil {
		r.logger.Warn("stylesheet read failed", "path", path, "error", err)
		s.populate("", err)
		return
	}
	s.populate(string(body), nil)
}
