// SPDX-FileCopyrightText: © 2025 Prescient Earth
//
// SPDX-License-Identifier: Apache-2.0

package transfer

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prescient-earth/prescient-sdk-go/sdk/client"
	"github.com/prescient-earth/prescient-sdk-go/sdk/config"
)

type memS3 struct {
	objects map[string][]byte
	puts    []string
	heads   []string
}

func newMemS3(keys ...string) *memS3 {
	m := &memS3{objects: map[string][]byte{}}
	for _, k := range keys {
		m.objects[k] = []byte("content of " + k)
	}
	return m
}

func (m *memS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	body, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	key := aws.ToString(params.Key)
	m.objects[key] = body
	m.puts = append(m.puts, key)
	return &s3.PutObjectOutput{ETag: aws.String(`"etag"`)}, nil
}

func (m *memS3) HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	key := aws.ToString(params.Key)
	m.heads = append(m.heads, key)
	if _, ok := m.objects[key]; !ok {
		return nil, &s3types.NotFound{}
	}
	return &s3.HeadObjectOutput{}, nil
}

func (m *memS3) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	body, ok := m.objects[aws.ToString(params.Key)]
	if !ok {
		return nil, &s3types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentLength: aws.Int64(int64(len(body))),
	}, nil
}

func (m *memS3) ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	prefix := aws.ToString(params.Prefix)
	var keys []string
	for k := range m.objects {
		if prefix == "" || len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	out := &s3.ListObjectsV2Output{}
	for _, k := range keys {
		out.Contents = append(out.Contents, s3types.Object{
			Key:          aws.String(k),
			Size:         aws.Int64(int64(len(m.objects[k]))),
			LastModified: aws.Time(time.Now().UTC()),
		})
	}
	return out, nil
}

func (m *memS3) CreateMultipartUpload(ctx context.Context, params *s3.CreateMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.CreateMultipartUploadOutput, error) {
	return &s3.CreateMultipartUploadOutput{UploadId: aws.String("mp")}, nil
}

func (m *memS3) UploadPart(ctx context.Context, params *s3.UploadPartInput, optFns ...func(*s3.Options)) (*s3.UploadPartOutput, error) {
	return &s3.UploadPartOutput{ETag: aws.String(`"part"`)}, nil
}

func (m *memS3) CompleteMultipartUpload(ctx context.Context, params *s3.CompleteMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.CompleteMultipartUploadOutput, error) {
	return &s3.CompleteMultipartUploadOutput{}, nil
}

func (m *memS3) AbortMultipartUpload(ctx context.Context, params *s3.AbortMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.AbortMultipartUploadOutput, error) {
	return &s3.AbortMultipartUploadOutput{}, nil
}

func noEnv(string) (string, bool) { return "", false }

func newService(t *testing.T, mem *memS3, bucket string) *TransferService {
	t.Helper()
	c, err := client.New(
		client.WithSettings(config.Settings{
			EndpointURL:  "https://api.example.com",
			AWSRegion:    "us-west-2",
			UploadBucket: bucket,
		}),
		client.WithLookup(noEnv),
	)
	require.NoError(t, err)

	svc, err := NewTransferService(c)
	require.NoError(t, err)
	builder := func(ctx context.Context) (*config.S3Client, error) {
		return config.NewS3ClientFromAPI(mem), nil
	}
	svc.uploadS3 = builder
	svc.dataS3 = builder
	return svc
}

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), "data_dir")
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func TestUploadDirectoryKeepsRootFolderInKeys(t *testing.T) {
	mem := newMemS3()
	svc := newService(t, mem, "uploads")

	root := writeTree(t, map[string]string{
		"a.txt":     "alpha",
		"sub/b.txt": "beta",
	})

	summary, err := svc.Upload(context.Background(), UploadRequest{Input: root})
	require.NoError(t, err)
	require.Len(t, summary.Uploaded, 2)
	assert.Empty(t, summary.Skipped)
	assert.Equal(t, "uploads", summary.Bucket)
	assert.Len(t, summary.UploadID, 32)

	sort.Strings(mem.puts)
	assert.Equal(t, []string{"data_dir/a.txt", "data_dir/sub/b.txt"}, mem.puts)
	assert.Equal(t, []byte("alpha"), mem.objects["data_dir/a.txt"])
}

func TestUploadSingleFileUsesBaseName(t *testing.T) {
	mem := newMemS3()
	svc := newService(t, mem, "uploads")

	path := filepath.Join(t.TempDir(), "single.txt")
	require.NoError(t, os.WriteFile(path, []byte("one"), 0o644))

	summary, err := svc.Upload(context.Background(), UploadRequest{Input: path})
	require.NoError(t, err)
	require.Len(t, summary.Uploaded, 1)
	assert.Equal(t, "single.txt", summary.Uploaded[0].Path)
	assert.Equal(t, int64(3), summary.Uploaded[0].Size)
	assert.NotEmpty(t, summary.Uploaded[0].ContentType)
}

func TestUploadExcludesGlobs(t *testing.T) {
	mem := newMemS3()
	svc := newService(t, mem, "uploads")

	root := writeTree(t, map[string]string{
		"keep.txt":      "k",
		"skip.log":      "s",
		"sub/also.log":  "s",
		"sub/other.txt": "o",
	})

	summary, err := svc.Upload(context.Background(), UploadRequest{
		Input:   root,
		Exclude: []string{"*.log"},
	})
	require.NoError(t, err)
	assert.Len(t, summary.Uploaded, 2)

	sort.Strings(mem.puts)
	assert.Equal(t, []string{"data_dir/keep.txt", "data_dir/sub/other.txt"}, mem.puts)
}

func TestUploadSkipExisting(t *testing.T) {
	mem := newMemS3("data_dir/a.txt")
	svc := newService(t, mem, "uploads")

	root := writeTree(t, map[string]string{
		"a.txt": "alpha",
		"b.txt": "beta",
	})

	summary, err := svc.Upload(context.Background(), UploadRequest{
		Input:        root,
		SkipExisting: true,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"data_dir/a.txt"}, summary.Skipped)
	require.Len(t, summary.Uploaded, 1)
	assert.Equal(t, []string{"data_dir/b.txt"}, mem.puts)
}

func TestUploadOverwritesByDefault(t *testing.T) {
	mem := newMemS3("data_dir/a.txt")
	svc := newService(t, mem, "uploads")

	root := writeTree(t, map[string]string{"a.txt": "new content"})

	summary, err := svc.Upload(context.Background(), UploadRequest{Input: root})
	require.NoError(t, err)
	assert.Empty(t, summary.Skipped)
	assert.Empty(t, mem.heads, "no head checks unless skipping is requested")
	assert.Equal(t, []byte("new content"), mem.objects["data_dir/a.txt"])
}

func TestUploadBucketOverride(t *testing.T) {
	mem := newMemS3()
	svc := newService(t, mem, "uploads")

	path := filepath.Join(t.TempDir(), "f.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	summary, err := svc.Upload(context.Background(), UploadRequest{Input: path, Bucket: "other"})
	require.NoError(t, err)
	assert.Equal(t, "other", summary.Bucket)
}

func TestUploadMissingBucketIsConfigError(t *testing.T) {
	mem := newMemS3()
	svc := newService(t, mem, "")

	path := filepath.Join(t.TempDir(), "f.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	_, err := svc.Upload(context.Background(), UploadRequest{Input: path})
	var ce *config.ConfigError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "PRESCIENT_UPLOAD_BUCKET", ce.Field)
}

func TestUploadMissingInput(t *testing.T) {
	svc := newService(t, newMemS3(), "uploads")

	_, err := svc.Upload(context.Background(), UploadRequest{})
	require.Error(t, err)

	_, err = svc.Upload(context.Background(), UploadRequest{Input: "/does/not/exist"})
	require.Error(t, err)
}

func TestUploadDoesNotBrokerCredentialsOnLocalFailure(t *testing.T) {
	svc := newService(t, newMemS3(), "uploads")
	brokered := false
	svc.uploadS3 = func(ctx context.Context) (*config.S3Client, error) {
		brokered = true
		return nil, assert.AnError
	}

	_, err := svc.Upload(context.Background(), UploadRequest{Input: "/does/not/exist"})
	require.Error(t, err)
	assert.False(t, brokered, "local validation must run before any credential exchange")
}

func TestDownloadSingleObject(t *testing.T) {
	mem := newMemS3("data/a.txt")
	svc := newService(t, mem, "uploads")

	dest := filepath.Join(t.TempDir(), "a.txt")
	err := svc.Download(context.Background(), DownloadRequest{
		Path:        "s3://my-bucket/data/a.txt",
		Destination: dest,
	})
	require.NoError(t, err)

	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "content of data/a.txt", string(got))
}

func TestDownloadSingleIntoDirectory(t *testing.T) {
	mem := newMemS3("data/a.txt")
	svc := newService(t, mem, "uploads")

	dir := t.TempDir()
	err := svc.Download(context.Background(), DownloadRequest{
		Path:        "s3://my-bucket/data/a.txt",
		Destination: dir,
	})
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "a.txt"))
	assert.NoError(t, err)
}

func TestDownloadPrefixRecreatesStructure(t *testing.T) {
	mem := newMemS3("data/a.txt", "data/sub/b.txt")
	svc := newService(t, mem, "uploads")

	dir := t.TempDir()
	err := svc.Download(context.Background(), DownloadRequest{
		Path:        "s3://my-bucket/data/",
		Destination: dir,
	})
	require.NoError(t, err)

	for _, rel := range []string{"a.txt", "sub/b.txt"} {
		_, err := os.Stat(filepath.Join(dir, filepath.FromSlash(rel)))
		assert.NoError(t, err, rel)
	}
}

func TestDownloadRejectsNonS3Scheme(t *testing.T) {
	svc := newService(t, newMemS3(), "uploads")

	err := svc.Download(context.Background(), DownloadRequest{
		Path:        "https://example.com/data/a.txt",
		Destination: t.TempDir(),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "only s3 scheme")
}

func TestDownloadMissingArgs(t *testing.T) {
	svc := newService(t, newMemS3(), "uploads")

	err := svc.Download(context.Background(), DownloadRequest{Destination: "x"})
	require.Error(t, err)
	err = svc.Download(context.Background(), DownloadRequest{Path: "s3://b/k"})
	require.Error(t, err)
}
