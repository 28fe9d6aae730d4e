package objectstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeEndpoint(t *testing.T) {
	tt := []struct {
		Name    string
		In      string
		Want    string
		Secure  bool
		WantErr bool
	}{
		{Name: "host port", In: "minio:9000", Want: "minio:9000"},
		{Name: "http url", In: "http://minio:9000", Want: "minio:9000"},
		{Name: "https url", In: "https://s3.example.com", Want: "s3.example.com", Secure: true},
		{Name: "trailing slash", In: "http://minio:9000/", Want: "minio:9000"},
		{Name: "surrounding whitespace", In: "  minio:9000  ", Want: "minio:9000"},
		{Name: "empty", In: "", WantErr: true},
		{Name: "whitespace only", In: "   ", WantErr: true},
		{Name: "url with path", In: "http://minio:9000/bucket", WantErr: true},
		{Name: "scheme without host", In: "http://", WantErr: true},
	}

	for _, tc := range tt {
		t.Run(tc.Name, func(t *testing.T) {
			endpoint, secure, err := normalizeEndpoint(tc.In)
			if tc.WantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.Want, endpoint)
			assert.Equal(t, tc.Secure, secure)
		})
	}
}

func TestNewRejectsIncompleteConfig(t *testing.T) {
	tt := []struct {
		Name string
		Cfg  Config
	}{
		{Name: "missing credentials", Cfg: Config{Endpoint: "minio:9000", Bucket: "b"}},
		{Name: "missing bucket", Cfg: Config{Endpoint: "minio:9000", AccessKey: "a", SecretKey: "s"}},
		{Name: "missing endpoint", Cfg: Config{AccessKey: "a", SecretKey: "s", Bucket: "b"}},
	}

	for _, tc := range tt {
		t.Run(tc.Name, func(t *testing.T) {
			_, err := New(context.Background(), tc.Cfg)
			assert.Error(t, err)
		})
	}
}
