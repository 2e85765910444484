package storage_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"testing"

	"github.com/aussiebroadwan/docchat/internal/docchat/storage"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/require"
)

func fileHeader(t *testing.T, name, contentType string, data []byte) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+name+`"`)
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["file"][0]
}

func TestSanitizeFilename(t *testing.T) {
	tests := map[string]string{
		"report.pdf":           "report.pdf",
		"../../etc/passwd":     "passwd",
		`C:\Users\ann\cv.docx`: "cv.docx",
		"":                     "unnamed",
		"..":                   "unnamed",
		"a\x00b.txt":           "ab.txt",
	}
	for in, want := range tests {
		require.Equal(t, want, storage.SanitizeFilename(in), "input %q", in)
	}
}

func TestDetectMIMEType(t *testing.T) {
	declared := fileHeader(t, "a.pdf", "application/pdf", []byte("%PDF-1.4"))
	mt, err := storage.DetectMIMEType(declared)
	require.NoError(t, err)
	require.Equal(t, "application/pdf", mt)

	sniffed := fileHeader(t, "notes", "", []byte("plain words"))
	mt, err = storage.DetectMIMEType(sniffed)
	require.NoError(t, err)
	require.Equal(t, "text/plain; charset=utf-8", mt)

	_, err = storage.DetectMIMEType(nil)
	require.ErrorIs(t, err, storage.ErrNilFileHeader)
}

func TestLocal_SaveDeleteURL(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := storage.NewLocal(dir, "/uploads")
	require.NoError(t, err)

	fh := fileHeader(t, "hello.txt", "text/plain", []byte("hello world"))
	f, err := s.Save(ctx, fh, "user-1/doc-1-hello.txt")
	require.NoError(t, err)
	require.Equal(t, "hello.txt", f.Filename)
	require.Equal(t, int64(11), f.Size)
	require.Equal(t, "text/plain", f.MIMEType)
	require.Equal(t, "user-1/doc-1-hello.txt", f.Path)

	data, err := os.ReadFile(filepath.Join(dir, "user-1", "doc-1-hello.txt"))
	require.NoError(t, err)
	require.Equal(t, "hello world", string(data))

	require.Equal(t, "/uploads/user-1/doc-1-hello.txt", s.URL(f.Path))

	require.NoError(t, s.Delete(ctx, f.Path))
	_, err = os.Stat(filepath.Join(dir, "user-1", "doc-1-hello.txt"))
	require.True(t, os.IsNotExist(err))

	require.ErrorIs(t, s.Delete(ctx, f.Path), storage.ErrFileNotFound)
}

func TestLocal_RejectsTraversal(t *testing.T) {
	s, err := storage.NewLocal(t.TempDir(), "/uploads/")
	require.NoError(t, err)

	fh := fileHeader(t, "x.txt", "text/plain", []byte("x"))
	_, err = s.Save(context.Background(), fh, "../escape.txt")
	require.ErrorIs(t, err, storage.ErrInvalidPath)

	require.ErrorIs(t, s.Delete(context.Background(), "a/../../b"), storage.ErrInvalidPath)
}

func TestNewLocal_EmptyDir(t *testing.T) {
	_, err := storage.NewLocal("", "/uploads/")
	require.ErrorIs(t, err, storage.ErrInvalidConfig)
}

type fakeS3 struct {
	objects map[string][]byte
	types   map[string]string
	putErr  error
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[*in.Key] = data
	f.types[*in.Key] = *in.ContentType
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	delete(f.objects, *in.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3_SaveDeleteURL(t *testing.T) {
	ctx := context.Background()
	fake := &fakeS3{objects: map[string][]byte{}, types: map[string]string{}}
	s := storage.NewS3WithClient(fake, storage.S3Config{Bucket: "docs", Region: "ap-southeast-2"})

	fh := fileHeader(t, "a.pdf", "application/pdf", []byte("%PDF-1.4 body"))
	f, err := s.Save(ctx, fh, "/user-1/doc-1-a.pdf")
	require.NoError(t, err)
	require.Equal(t, "user-1/doc-1-a.pdf", f.Path)
	require.Equal(t, []byte("%PDF-1.4 body"), fake.objects["user-1/doc-1-a.pdf"])
	require.Equal(t, "application/pdf", fake.types["user-1/doc-1-a.pdf"])

	require.Equal(t, "https://docs.s3.ap-southeast-2.amazonaws.com/user-1/doc-1-a.pdf", s.URL(f.Path))

	require.NoError(t, s.Delete(ctx, f.Path))
	require.Empty(t, fake.objects)
}

func TestS3_URLWithEndpoint(t *testing.T) {
	s := storage.NewS3WithClient(&fakeS3{}, storage.S3Config{
		Bucket:   "docs",
		Region:   "us-east-1",
		Endpoint: "http://minio:9000/",
	})
	require.Equal(t, "http://minio:9000/docs/k.txt", s.URL("k.txt"))

	public := storage.NewS3WithClient(&fakeS3{}, storage.S3Config{
		Bucket:    "docs",
		Region:    "us-east-1",
		PublicURL: "https://cdn.example.com/files",
	})
	require.Equal(t, "https://cdn.example.com/files/k.txt", public.URL("k.txt"))
}

func TestS3_SaveError(t *testing.T) {
	fake := &fakeS3{
		objects: map[string][]byte{},
		types:   map[string]string{},
		putErr:  &smithy.GenericAPIError{Code: "AccessDenied", Message: "denied"},
	}
	s := storage.NewS3WithClient(fake, storage.S3Config{Bucket: "docs", Region: "us-east-1"})

	fh := fileHeader(t, "a.txt", "text/plain", []byte("a"))
	_, err := s.Save(context.Background(), fh, "k/a.txt")
	require.Error(t, err)
	require.Contains(t, err.Error(), "AccessDenied")

	var apiErr smithy.APIError
	require.True(t, errors.As(err, &apiErr))
}
