package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aussiebroadwan/docchat/internal/docchat/storage"
	"github.com/aussiebroadwan/docchat/pkg/cryptox"
	"github.com/aussiebroadwan/docchat/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func newDocumentService(t *testing.T, index DocumentIndex) (*DocumentService, string) {
	t.Helper()
	dir := t.TempDir()
	local, err := storage.NewLocal(dir, "/uploads")
	require.NoError(t, err)
	return &DocumentService{Store: newTestStore(t), Storage: local, Index: index}, local.Dir()
}

func registerOwner(t *testing.T, svc *DocumentService, email string) string {
	t.Helper()
	signer, err := jwtx.NewHS256(testSecret)
	require.NoError(t, err)
	auth := &AuthService{Store: svc.Store, Hasher: cryptox.NewHasherWithParams("", fastArgon), Tokens: signer}
	res, err := auth.Register(context.Background(), "Owner", email, "secret1")
	require.NoError(t, err)
	return res.User.ID
}

func TestUpload(t *testing.T) {
	ctx := context.Background()
	index := &fakeIndex{}
	svc, dir := newDocumentService(t, index)
	owner := registerOwner(t, svc, "owner@x.com")

	doc, err := svc.Upload(ctx, owner, fileHeader(t, "notes.txt", "text/plain", []byte("hello world")))
	require.NoError(t, err)

	require.Equal(t, owner, doc.OwnerID)
	require.Equal(t, "notes.txt", doc.Name)
	require.Equal(t, "text/plain", doc.Type)
	require.EqualValues(t, 11, doc.Size)
	require.Equal(t, "0.01 KB", doc.SizeLabel())
	require.Equal(t, owner+"/"+doc.ID+"-notes.txt", doc.StoragePath)
	require.Equal(t, "/uploads/"+doc.StoragePath, doc.FileURL)

	b, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(doc.StoragePath)))
	require.NoError(t, err)
	require.Equal(t, "hello world", string(b))

	require.Len(t, index.ingested, 1)
	require.Equal(t, owner, index.ingested[0].UserID)
	require.Equal(t, doc.ID, index.ingested[0].DocumentID)
	require.Equal(t, "hello world", index.bodies[0])

	docs, err := svc.List(ctx, owner)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	require.Equal(t, doc.ID, docs[0].ID)
}

func TestUpload_DocumentServiceFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	svc, dir := newDocumentService(t, &fakeIndex{ingestErr: errBoom})
	owner := registerOwner(t, svc, "owner@x.com")

	_, err := svc.Upload(ctx, owner, fileHeader(t, "notes.txt", "text/plain", []byte("hello")))
	require.ErrorIs(t, err, ErrDocumentService)

	docs, err := svc.List(ctx, owner)
	require.NoError(t, err)
	require.Empty(t, docs)

	entries, err := os.ReadDir(filepath.Join(dir, owner))
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestUpload_WithoutDocumentService(t *testing.T) {
	ctx := context.Background()
	svc, _ := newDocumentService(t, nil)
	owner := registerOwner(t, svc, "owner@x.com")

	doc, err := svc.Upload(ctx, owner, fileHeader(t, "a.pdf", "application/pdf", []byte("%PDF-1.4")))
	require.NoError(t, err)
	require.Equal(t, "application/pdf", doc.Type)
}

func TestUpload_Rejections(t *testing.T) {
	svc, _ := newDocumentService(t, &fakeIndex{})

	_, err := svc.Upload(context.Background(), "someone", nil)
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Upload(context.Background(), "", fileHeader(t, "a.txt", "text/plain", []byte("a")))
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestList_ScopedToOwner(t *testing.T) {
	ctx := context.Background()
	svc, _ := newDocumentService(t, &fakeIndex{})
	ann := registerOwner(t, svc, "ann@x.com")
	bob := registerOwner(t, svc, "bob@x.com")

	_, err := svc.Upload(ctx, ann, fileHeader(t, "ann.txt", "text/plain", []byte("a")))
	require.NoError(t, err)

	docs, err := svc.List(ctx, bob)
	require.NoError(t, err)
	require.NotNil(t, docs)
	require.Empty(t, docs)

	_, err = svc.List(ctx, "")
	require.ErrorIs(t, err, ErrUnauthorized)
}
