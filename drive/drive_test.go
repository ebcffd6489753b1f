package drive

import (
	"testing"

	"github.com/atomicleads/videoworker/internal/config"

	"github.com/stretchr/testify/require"
)

func TestSlug(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Acme Trade School | Atomic Enrollment | August 2026", "acme-trade-school-atomic-enrollment-august-2026"},
		{"Wealth&Wisdom, LLC", "wealth-wisdom-llc"},
		{"---hello---", "hello"},
		{"ÜberCoach 3000", "übercoach-3000"},
	}
	for _, c := range cases {
		require.Equal(t, c.want, slug(c.in), c.in)
	}
}

func TestNewClient(t *testing.T) {
	c, err := New(config.S3Config{
		Endpoint: "http://localhost:9000",
		Region:   "us-east-1",
		Bucket:   "videos",
		Key:      "minio",
		Secret:   "minio123",
		MaxSize:  "500MB",
	})
	require.NoError(t, err)
	require.EqualValues(t, 500*1024*1024, c.maxSize)
}

func TestNewClientBadMaxSize(t *testing.T) {
	_, err := New(config.S3Config{MaxSize: "a lot"})
	require.Error(t, err)
}
