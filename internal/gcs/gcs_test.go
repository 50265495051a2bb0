package gcs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseURI(t *testing.T) {
	tests := []struct {
		uri        string
		wantBucket string
		wantObject string
		wantErr    bool
	}{
		{"gs://extratos/2025/05/nubank.csv", "extratos", "2025/05/nubank.csv", false},
		{"gs://b/a.pdf", "b", "a.pdf", false},
		{"gs://bucket-only", "", "", true},
		{"gs://bucket/", "", "", true},
		{"gs:///object", "", "", true},
		{"s3://bucket/key", "", "", true},
		{"/tmp/extrato.pdf", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			bucket, object, err := ParseURI(tt.uri)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidURI)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.wantBucket, bucket)
			assert.Equal(t, tt.wantObject, object)
		})
	}
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "file.pdf", FileName("gs://bucket/folder/file.pdf"))
	assert.Equal(t, "file.pdf", FileName("gs://bucket/file.pdf"))
	assert.Equal(t, "bucket", FileName("gs://bucket"))
}

func TestIsURI(t *testing.T) {
	assert.True(t, IsURI("gs://b/o"))
	assert.False(t, IsURI("extrato.pdf"))
}
