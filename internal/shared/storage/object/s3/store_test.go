package s3

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

func TestApplyPrefix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		prefix string
		key    string
		want   string
	}{
		{name: "no prefix", prefix: "", key: "user/file.pdf", want: "user/file.pdf"},
		{name: "simple prefix", prefix: "root", key: "user/file.pdf", want: "root/user/file.pdf"},
		{name: "prefix trailing slash", prefix: "root/", key: "user/file.pdf", want: "root/user/file.pdf"},
		{name: "prefix and key slashes", prefix: "/root/", key: "/user/file.pdf", want: "root/user/file.pdf"},
		{name: "nested prefix", prefix: "root/sub", key: "user/file.pdf", want: "root/sub/user/file.pdf"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := applyPrefix(tt.prefix, tt.key); got != tt.want {
				t.Fatalf("applyPrefix(%q, %q) = %q, want %q", tt.prefix, tt.key, got, tt.want)
			}
		})
	}
}

type fakeS3 struct {
	puts    []*s3.PutObjectInput
	deletes []string
	objects map[string][]byte
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, _ := io.ReadAll(in.Body)
	if f.objects == nil {
		f.objects = map[string][]byte{}
	}
	f.objects[aws.ToString(in.Key)] = data
	f.puts = append(f.puts, in)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.deletes = append(f.deletes, aws.ToString(in.Key))
	delete(f.objects, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestStorePutAppliesPrefixAndEncryption(t *testing.T) {
	fake := &fakeS3{}
	store := NewWithClient(fake, "bucket", "/resumes/", "kms-key")

	obj, err := store.Put(context.Background(), "user-1", "resume.txt", []byte("hello"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if len(fake.puts) != 1 {
		t.Fatalf("expected one put, got %d", len(fake.puts))
	}
	in := fake.puts[0]
	if got := aws.ToString(in.Key); got != "resumes/"+obj.Key {
		t.Fatalf("unexpected object key %s", got)
	}
	if in.ServerSideEncryption != s3types.ServerSideEncryptionAwsKms || aws.ToString(in.SSEKMSKeyId) != "kms-key" {
		t.Fatalf("expected kms encryption, got %v", in.ServerSideEncryption)
	}
	if obj.MimeType != "text/plain" || obj.Size != 5 {
		t.Fatalf("unexpected object %+v", obj)
	}

	rc, err := store.Open(context.Background(), obj.Key)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	data, _ := io.ReadAll(rc)
	if string(data) != "hello" {
		t.Fatalf("unexpected body %q", data)
	}

	if err := store.Delete(context.Background(), obj.Key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(fake.deletes) != 1 || fake.deletes[0] != "resumes/"+obj.Key {
		t.Fatalf("unexpected deletes %v", fake.deletes)
	}
}

func TestStoreDefaultsToAES256(t *testing.T) {
	fake := &fakeS3{}
	store := NewWithClient(fake, "bucket", "", "")
	if _, err := store.Put(context.Background(), "user-1", "resume.pdf", []byte("%PDF-1.4")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if fake.puts[0].ServerSideEncryption != s3types.ServerSideEncryptionAes256 {
		t.Fatalf("expected AES256, got %v", fake.puts[0].ServerSideEncryption)
	}
}
