package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/textproto"
	"sync"
	"testing"

	"github.com/aussiebroadwan/docchat/internal/docchat/docsvc"
	"github.com/aussiebroadwan/docchat/internal/docchat/store/drivers/sqlite"
	"github.com/aussiebroadwan/docchat/pkg/cryptox"
	"github.com/aussiebroadwan/docchat/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

var fastArgon = cryptox.Argon2Params{Memory: 64, Iterations: 1, Parallelism: 1, KeyLength: 32, SaltLength: 16}

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.ApplyMigrations(context.Background()))
	return s
}

func newAuthService(t *testing.T, opts ...jwtx.Option) *AuthService {
	t.Helper()
	signer, err := jwtx.NewHS256(testSecret, opts...)
	require.NoError(t, err)
	return &AuthService{
		Store:  newTestStore(t),
		Hasher: cryptox.NewHasherWithParams("test-pepper", fastArgon),
		Tokens: signer,
	}
}

func fileHeader(t *testing.T, name, contentType string, data []byte) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+name+`"`)
	h.Set("Content-Type", contentType)
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

// fakeIndex records what the services forward to the document service.
type fakeIndex struct {
	mu        sync.Mutex
	ingested  []docsvc.IngestRequest
	bodies    []string
	questions []string
	ingestErr error
	queryErr  error
	pingErr   error
	answer    docsvc.Answer
}

func (f *fakeIndex) Ingest(_ context.Context, in docsvc.IngestRequest) error {
	b, _ := io.ReadAll(in.Body)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ingested = append(f.ingested, in)
	f.bodies = append(f.bodies, string(b))
	return f.ingestErr
}

func (f *fakeIndex) Query(_ context.Context, userID, question string) (docsvc.Answer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.questions = append(f.questions, userID+":"+question)
	return f.answer, f.queryErr
}

func (f *fakeIndex) Ping(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pingErr
}

func (f *fakeIndex) setPing(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pingErr = err
}

var errBoom = errors.New("boom")
