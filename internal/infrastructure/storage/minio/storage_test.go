package minio

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/minio/minio-go/v7"

	"github.com/kirillkom/legal-assistant/internal/core/domain"
)

type fakeObjectAPI struct {
	exists    bool
	made      []string
	putKey    string
	putBody   string
	statErr   error
	putErr    error
	getCalled bool
}

func (f *fakeObjectAPI) BucketExists(context.Context, string) (bool, error) {
	return f.exists, nil
}

func (f *fakeObjectAPI) MakeBucket(_ context.Context, bucket string, _ minio.MakeBucketOptions) error {
	f.made = append(f.made, bucket)
	return nil
}

func (f *fakeObjectAPI) PutObject(_ context.Context, _ string, key string, r io.Reader, _ int64, _ minio.PutObjectOptions) (minio.UploadInfo, error) {
	if f.putErr != nil {
		return minio.UploadInfo{}, f.putErr
	}
	raw, _ := io.ReadAll(r)
	f.putKey, f.putBody = key, string(raw)
	return minio.UploadInfo{Key: key, Size: int64(len(raw))}, nil
}

func (f *fakeObjectAPI) GetObject(context.Context, string, string, minio.GetObjectOptions) (*minio.Object, error) {
	f.getCalled = true
	return nil, errors.New("unexpected get")
}

func (f *fakeObjectAPI) StatObject(context.Context, string, string, minio.StatObjectOptions) (minio.ObjectInfo, error) {
	return minio.ObjectInfo{}, f.statErr
}

func TestEnsureBucketCreatesMissingBucket(t *testing.T) {
	api := &fakeObjectAPI{}
	s := &Storage{client: api, bucket: "contracts"}

	if err := s.EnsureBucket(context.Background()); err != nil {
		t.Fatalf("EnsureBucket() error = %v", err)
	}
	if len(api.made) != 1 || api.made[0] != "contracts" {
		t.Fatalf("expected bucket creation, got %v", api.made)
	}

	api.exists, api.made = true, nil
	if err := s.EnsureBucket(context.Background()); err != nil || len(api.made) != 0 {
		t.Fatalf("existing bucket must be kept: %v %v", err, api.made)
	}
}

func TestSaveStreamsObject(t *testing.T) {
	api := &fakeObjectAPI{}
	s := &Storage{client: api, bucket: "contracts"}

	if err := s.Save(context.Background(), "doc-1_nda.pdf", strings.NewReader("%PDF")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if api.putKey != "doc-1_nda.pdf" || api.putBody != "%PDF" {
		t.Fatalf("unexpected put: %q %q", api.putKey, api.putBody)
	}
}

func TestSaveMarksServerErrorsTemporary(t *testing.T) {
	api := &fakeObjectAPI{putErr: minio.ErrorResponse{Code: "InternalError", StatusCode: http.StatusInternalServerError}}
	s := &Storage{client: api, bucket: "contracts"}

	if err := s.Save(context.Background(), "k", strings.NewReader("x")); !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected temporary error, got %v", err)
	}
}

func TestOpenMissingObject(t *testing.T) {
	api := &fakeObjectAPI{statErr: minio.ErrorResponse{Code: "NoSuchKey", StatusCode: http.StatusNotFound}}
	s := &Storage{client: api, bucket: "contracts"}

	_, err := s.Open(context.Background(), "missing")
	if !domain.IsKind(err, domain.ErrDocumentNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if api.getCalled {
		t.Fatalf("GetObject must not run for missing objects")
	}
}

func TestNewRequiresBucket(t *testing.T) {
	if _, err := New(Config{Endpoint: "localhost:9000"}, nil); err == nil {
		t.Fatalf("expected error without bucket")
	}
}
