package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"testing"

	"newsdesk/apperr"
	"newsdesk/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/redis/go-redis/v9"
)

// exerciseBlobs runs the behaviour every backend must share.
func exerciseBlobs(t *testing.T, b Blobs) {
	t.Helper()
	ctx := context.Background()

	for _, k := range []string{"pending/a.json", "pending/b.json", "brands.json"} {
		if err := b.Put(ctx, k, []byte(`{"k":"`+k+`"}`)); err != nil {
			t.Fatalf("Put(%s) error: %v", k, err)
		}
	}

	keys, err := b.List(ctx, "pending/")
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	sort.Strings(keys)
	if len(keys) != 2 || keys[0] != "pending/a.json" || keys[1] != "pending/b.json" {
		t.Fatalf("List(pending/) = %v", keys)
	}

	got, err := b.Get(ctx, "pending/a.json")
	if err != nil || string(got) != `{"k":"pending/a.json"}` {
		t.Fatalf("Get = %q, %v", got, err)
	}

	if err := b.Put(ctx, "pending/a.json", []byte("v2")); err != nil {
		t.Fatalf("overwrite error: %v", err)
	}
	if got, _ := b.Get(ctx, "pending/a.json"); string(got) != "v2" {
		t.Fatalf("overwrite not visible: %q", got)
	}

	if err := b.Delete(ctx, "pending/a.json"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if err := b.Delete(ctx, "pending/a.json"); err != nil {
		t.Fatalf("second Delete should be a no-op, got %v", err)
	}
	if _, err := b.Get(ctx, "pending/a.json"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("Get after delete: want ErrNotFound, got %v", err)
	}
	if got, _ := b.Get(ctx, "pending/b.json"); len(got) == 0 {
		t.Fatalf("sibling record affected by delete")
	}
}

func TestDir(t *testing.T) {
	d, err := NewDir(filepath.Join(t.TempDir(), "blobs"))
	if err != nil {
		t.Fatalf("NewDir error: %v", err)
	}
	exerciseBlobs(t, d)

	if err := d.Put(context.Background(), "../escape.json", []byte("x")); err == nil {
		t.Fatalf("expected error for key escaping the root")
	}
}

func TestBolt(t *testing.T) {
	b, err := OpenBolt(filepath.Join(t.TempDir(), "test.db"), "blobs")
	if err != nil {
		t.Fatalf("OpenBolt error: %v", err)
	}
	defer b.Close()
	exerciseBlobs(t, b)
}

func TestRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	r := NewRedis(client, "nd:")
	exerciseBlobs(t, r)
	if !mr.Exists("nd:pending/b.json") {
		t.Fatalf("expected namespaced key in redis")
	}
}

func TestS3(t *testing.T) {
	fake := newFakeS3(2)
	exerciseBlobs(t, NewS3WithClient(fake, "bucket", "env/"))
	if _, ok := fake.objects["env/pending/b.json"]; !ok {
		t.Fatalf("expected prefixed object key, have %v", fake.objects)
	}
}

func TestS3ListPaginates(t *testing.T) {
	fake := newFakeS3(2)
	s := NewS3WithClient(fake, "bucket", "")
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		if err := s.Put(ctx, "pending/"+strconv.Itoa(i)+".json", []byte("{}")); err != nil {
			t.Fatalf("Put error: %v", err)
		}
	}
	keys, err := s.List(ctx, "pending/")
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(keys) != 5 || fake.listCalls < 3 {
		t.Fatalf("keys=%d listCalls=%d", len(keys), fake.listCalls)
	}
}

func TestUnavailable(t *testing.T) {
	var b Blobs = Unavailable{}
	ctx := context.Background()
	if _, err := b.List(ctx, "pending/"); apperr.KindOf(err) != apperr.KindStoreUnavailable {
		t.Fatalf("List: %v", err)
	}
	if err := b.Put(ctx, "k", nil); !errors.Is(err, apperr.ErrNotConfigured) {
		t.Fatalf("Put: %v", err)
	}
	if !IsUnavailable(b) {
		t.Fatalf("IsUnavailable = false")
	}
}

func TestOpenFallsBackToUnavailable(t *testing.T) {
	b, closer := Open(context.Background(), config.StorageConfig{}, nil)
	defer closer.Close()
	if !IsUnavailable(b) {
		t.Fatalf("expected Unavailable without backend, got %s", b.Name())
	}

	b, closer = Open(context.Background(), config.StorageConfig{Backend: "dir", Dir: t.TempDir()}, nil)
	defer closer.Close()
	if b.Name() != "dir" {
		t.Fatalf("expected dir backend, got %s", b.Name())
	}
}

type fakeS3 struct {
	mu        sync.Mutex
	objects   map[string][]byte
	pageSize  int
	listCalls int
}

func newFakeS3(pageSize int) *fakeS3 {
	return &fakeS3{objects: make(map[string][]byte), pageSize: pageSize}
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[aws.ToString(in.Key)] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &s3types.NoSuchKey{Message: aws.String("missing")}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeS3) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++

	var keys []string
	for k := range f.objects {
		if len(k) >= len(aws.ToString(in.Prefix)) && k[:len(aws.ToString(in.Prefix))] == aws.ToString(in.Prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	start := 0
	if in.ContinuationToken != nil {
		start, _ = strconv.Atoi(*in.ContinuationToken)
	}
	end := start + f.pageSize
	if end > len(keys) {
		end = len(keys)
	}
	out := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(end < len(keys))}
	for _, k := range keys[start:end] {
		out.Contents = append(out.Contents, s3types.Object{Key: aws.String(k)})
	}
	if end < len(keys) {
		out.NextContinuationToken = aws.String(strconv.Itoa(end))
	}
	return out, nil
}
