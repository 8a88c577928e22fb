package assets

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
)

// Resolver turns an image path returned by the backend into a URL the
// browser can load.
type Resolver interface {
	Resolve(ctx context.Context, path string) string
}

// NewResolver builds the resolver for base. An s3://bucket/prefix base gets
// presigned URLs; http(s) bases are joined with the path.
func NewResolver(ctx context.Context, base, region string, ttl time.Duration, logger zerolog.Logger) (Resolver, error) {
	if !strings.HasPrefix(base, "s3://") {
		return NewHTTPResolver(base)
	}

	logger = logger.With().Str("component", "s3-assets").Logger()

	// Load AWS configuration
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		logger.Error().Err(err).Msg("failed to load AWS configuration")
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	return NewS3Resolver(s3.NewFromConfig(cfg), base, ttl, logger)
}

// isAbsolute reports whether path already is a full URL.
func isAbsolute(path string) bool {
	return strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") || strings.HasPrefix(path, "//")
}

type httpResolver struct {
	base *url.URL
}

// NewHTTPResolver creates a resolver that prefixes paths with base.
func NewHTTPResolver(base string) (Resolver, error) {
	u, err := url.Parse(strings.TrimSuffix(base, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid image base url %q: %w", base, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("image base url %q must be absolute", base)
	}
	return &httpResolver{base: u}, nil
}

func (r *httpResolver) Resolve(_ context.Context, path string) string {
	if path == "" || isAbsolute(path) {
		return path
	}
	return r.base.JoinPath(path).String()
}

type s3Resolver struct {
	presigner *s3.PresignClient
	bucket    string
	prefix    string
	region    string
	ttl       time.Duration
	logger    zerolog.Logger
}

// NewS3Resolver creates a resolver that presigns GetObject requests for
// keys under the bucket and prefix of base.
func NewS3Resolver(client *s3.Client, base string, ttl time.Duration, logger zerolog.Logger) (Resolver, error) {
	u, err := url.Parse(base)
	if err != nil || u.Scheme != "s3" || u.Host == "" {
		return nil, fmt.Errorf("invalid S3 image base %q: expected s3://bucket/prefix", base)
	}
	if ttl <= 0 {
		ttl = time.Hour
	}

	prefix := strings.Trim(u.Path, "/")
	if prefix != "" {
		prefix += "/"
	}

	logger.Info().
		Str("bucket", u.Host).
		Str("prefix", prefix).
		Dur("ttl", ttl).
		Msg("S3 image resolver initialised")

	return &s3Resolver{
		presigner: s3.NewPresignClient(client),
		bucket:    u.Host,
		prefix:    prefix,
		region:    client.Options().Region,
		ttl:       ttl,
		logger:    logger,
	}, nil
}

// Resolve presigns the object key. When presigning fails it falls back to
// the public virtual-hosted URL.
func (r *s3Resolver) Resolve(ctx context.Context, path string) string {
	if path == "" || isAbsolute(path) {
		return path
	}

	key := r.prefix + strings.TrimPrefix(path, "/")

	req, err := r.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(r.ttl))
	if err == nil {
		return req.URL
	}

	r.logger.Warn().
		Err(err).
		Str("bucket", r.bucket).
		Str("key", key).
		Msg("failed to presign image URL, falling back to public URL")

	return (&url.URL{
		Scheme: "https",
		Host:   fmt.Sprintf("%s.s3.%s.amazonaws.com", r.bucket, r.region),
		Path:   "/" + key,
	}).String()
}
