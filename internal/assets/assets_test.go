package assets

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPResolver(t *testing.T) {
	r, err := NewHTTPResolver("https://cdn.example.com/storage/")
	require.NoError(t, err)

	tests := []struct {
		name string
		path string
		want string
	}{
		{name: "Relative path", path: "products/a.jpg", want: "https://cdn.example.com/storage/products/a.jpg"},
		{name: "Leading slash", path: "/products/a.jpg", want: "https://cdn.example.com/storage/products/a.jpg"},
		{name: "Already absolute", path: "https://img.example.com/x.png", want: "https://img.example.com/x.png"},
		{name: "Empty", path: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Resolve(context.Background(), tt.path))
		})
	}
}

func TestNewHTTPResolver_RejectsRelativeBase(t *testing.T) {
	_, err := NewHTTPResolver("/storage")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be absolute")
}

func newTestS3Client() *s3.Client {
	return s3.New(s3.Options{
		Region:      "eu-west-1",
		Credentials: credentials.NewStaticCredentialsProvider("AKIDEXAMPLE", "SECRETEXAMPLE", ""),
	})
}

func TestS3Resolver_Presigns(t *testing.T) {
	r, err := NewS3Resolver(newTestS3Client(), "s3://shop-images/products/", 10*time.Minute, zerolog.Nop())
	require.NoError(t, err)

	raw := r.Resolve(context.Background(), "/a.jpg")
	u, err := url.Parse(raw)
	require.NoError(t, err)

	assert.Equal(t, "https", u.Scheme)
	assert.Contains(t, u.Host, "shop-images")
	assert.Contains(t, u.Path, "products/a.jpg")
	assert.Equal(t, "600", u.Query().Get("X-Amz-Expires"))
	assert.NotEmpty(t, u.Query().Get("X-Amz-Signature"))
}

func TestS3Resolver_PassesThroughAbsolute(t *testing.T) {
	r, err := NewS3Resolver(newTestS3Client(), "s3://shop-images", 0, zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, "https://x.example.com/a.jpg", r.Resolve(context.Background(), "https://x.example.com/a.jpg"))
	assert.Equal(t, "", r.Resolve(context.Background(), ""))
}

func TestNewS3Resolver_InvalidBase(t *testing.T) {
	_, err := NewS3Resolver(newTestS3Client(), "s3:///no-bucket", time.Minute, zerolog.Nop())
	require.Error(t, err)
}

func TestNewResolver_HTTPBase(t *testing.T) {
	r, err := NewResolver(context.Background(), "https://cdn.example.com", "", time.Minute, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/a.jpg", r.Resolve(context.Background(), "a.jpg"))
}
