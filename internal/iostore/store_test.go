package iostore

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gnames/dsrecon/pkg/config"
	"github.com/gnames/dsrecon/pkg/errcode"
	"github.com/gnames/gn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	mu      sync.Mutex
	objects map[string]string
	types   map[string]string
	fail    bool
}

func (f *fakeS3) PutObject(
	_ context.Context,
	in *s3.PutObjectInput,
	_ ...func(*s3.Options),
) (*s3.PutObjectOutput, error) {
	if f.fail {
		return nil, errors.New("access denied")
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[*in.Bucket+"/"+*in.Key] = string(data)
	f.types[*in.Key] = *in.ContentType
	return &s3.PutObjectOutput{}, nil
}

func newFake() *fakeS3 {
	return &fakeS3{objects: map[string]string{}, types: map[string]string{}}
}

func outputDir(t *testing.T) string {
	dir := t.TempDir()
	files := map[string]string{
		"timeline.tsv":         "year\ttotal\n",
		"summary_stats.json":   "{}",
		"datasets_dedup.jsonl": "{}\n",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0755))
	return dir
}

func TestPublish(t *testing.T) {
	fake := newFake()
	p := &publisher{client: fake, bucket: "bkt", prefix: "runs/2026"}
	require.NoError(t, p.Publish(context.Background(), outputDir(t)))

	assert.Len(t, fake.objects, 3)
	assert.Equal(t, "year\ttotal\n", fake.objects["bkt/runs/2026/timeline.tsv"])
	assert.Equal(t, "application/json", fake.types["runs/2026/summary_stats.json"])
	assert.Equal(t, "application/x-ndjson", fake.types["runs/2026/datasets_dedup.jsonl"])
}

func TestKey(t *testing.T) {
	p := &publisher{}
	assert.Equal(t, "a.tsv", p.Key("a.tsv"))
	p.prefix = "x"
	assert.Equal(t, "x/a.tsv", p.Key("a.tsv"))
}

func TestPublishErrors(t *testing.T) {
	fake := newFake()
	fake.fail = true
	p := &publisher{client: fake, bucket: "bkt"}
	err := p.Publish(context.Background(), outputDir(t))
	require.Error(t, err)
	gnErr, ok := err.(*gn.Error)
	require.True(t, ok)
	assert.Equal(t, errcode.S3UploadError, gnErr.Code)

	err = p.Publish(context.Background(), filepath.Join(t.TempDir(), "none"))
	require.Error(t, err)
}

func TestNewNeedsBucket(t *testing.T) {
	_, err := New(context.Background(), config.S3Config{})
	require.Error(t, err)
	gnErr, ok := err.(*gn.Error)
	require.True(t, ok)
	assert.Equal(t, errcode.S3ConfigError, gnErr.Code)
}

func TestNewWithEndpoint(t *testing.T) {
	cfg := config.S3Config{
		Endpoint:  "http://localhost:9000",
		Region:    "us-east-1",
		Bucket:    "bkt",
		AccessKey: "key",
		SecretKey: "secret",
	}
	p, err := New(context.Background(), cfg)
	require.NoError(t, err)
	assert.NotNil(t, p)
}
