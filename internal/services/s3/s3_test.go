package s3service_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	s3service "github.com/r3troseer/SME-loan-transact/internal/services/s3"
	"github.com/r3troseer/SME-loan-transact/internal/utils"
)

func TestMain(m *testing.M) {
	utils.SetLogger(zap.NewNop())
	os.Exit(m.Run())
}

// fakeS3 is an in-memory object store.
type fakeS3 struct {
	objects      map[string][]byte
	contentTypes map[string]string
	copyErr      error
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string][]byte{}, contentTypes: map[string]string{}}
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	key := aws.ToString(in.Key)
	f.objects[key] = data
	f.contentTypes[key] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) CopyObject(_ context.Context, in *s3.CopyObjectInput, _ ...func(*s3.Options)) (*s3.CopyObjectOutput, error) {
	if f.copyErr != nil {
		return nil, f.copyErr
	}
	source := aws.ToString(in.CopySource)
	bucket := aws.ToString(in.Bucket)
	data, ok := f.objects[source[len(bucket)+1:]]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	f.objects[aws.ToString(in.Key)] = data
	return &s3.CopyObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	delete(f.objects, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "processed/batch-1.csv", s3service.ArchiveKey("uploads/batch-1.csv"))
	assert.Equal(t, "processed/nested/a.csv", s3service.ArchiveKey("uploads/nested/a.csv"))
	assert.Equal(t, "reports/run-42.json", s3service.ReportKey("run-42"))
}

func TestDownloadFile(t *testing.T) {
	fake := newFakeS3()
	fake.objects["uploads/a.csv"] = []byte("SME_ID")
	svc := s3service.NewWithClient(fake, "bucket")
	assert.Equal(t, "bucket", svc.Bucket())

	data, err := svc.DownloadFile(context.Background(), "uploads/a.csv")
	require.NoError(t, err)
	assert.Equal(t, "SME_ID", string(data))

	_, err = svc.DownloadFile(context.Background(), "uploads/missing.csv")
	assert.Error(t, err)
}

func TestUploadJSON(t *testing.T) {
	fake := newFakeS3()
	svc := s3service.NewWithClient(fake, "bucket")

	err := svc.UploadJSON(context.Background(), "reports/r.json", map[string]int{"swaps": 3})
	require.NoError(t, err)

	assert.Equal(t, "application/json", fake.contentTypes["reports/r.json"])
	var decoded map[string]int
	require.NoError(t, json.Unmarshal(fake.objects["reports/r.json"], &decoded))
	assert.Equal(t, 3, decoded["swaps"])

	err = svc.UploadJSON(context.Background(), "reports/bad.json", func() {})
	assert.Error(t, err, "unencodable values are rejected")
}

func TestArchive(t *testing.T) {
	fake := newFakeS3()
	fake.objects["uploads/a.csv"] = []byte("data")
	svc := s3service.NewWithClient(fake, "bucket")

	dest, err := svc.Archive(context.Background(), "uploads/a.csv")
	require.NoError(t, err)
	assert.Equal(t, "processed/a.csv", dest)
	assert.Equal(t, []byte("data"), fake.objects["processed/a.csv"])
	assert.NotContains(t, fake.objects, "uploads/a.csv")
}

func TestArchive_CopyFailureKeepsSource(t *testing.T) {
	fake := newFakeS3()
	fake.objects["uploads/a.csv"] = []byte("data")
	fake.copyErr = errors.New("AccessDenied")
	svc := s3service.NewWithClient(fake, "bucket")

	_, err := svc.Archive(context.Background(), "uploads/a.csv")
	assert.Error(t, err)
	assert.Contains(t, fake.objects, "uploads/a.csv")
}
