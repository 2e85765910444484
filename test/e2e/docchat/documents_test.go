package docchat_test

import (
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/docchat/pkg/chatsdk"
	"github.com/stretchr/testify/require"
)

func TestUploadForwardsToDocumentService(t *testing.T) {
	docs := startDocumentService(t)
	client := setupContainer(t, containerOptions{documentService: docs})
	ctx := t.Context()

	ann := register(t, client, "Ann", "ann@x.com")

	res, err := client.UploadDocument(ctx, ann.Token, "notes.txt", strings.NewReader("meeting notes"))
	require.NoError(t, err)
	require.Equal(t, "Document uploaded successfully", res.Message)
	require.Equal(t, "notes.txt", res.Document.Name)
	require.Equal(t, "0.01 KB", res.Document.Size)

	ingested, _ := docs.snapshot()
	require.Len(t, ingested, 1)
	require.Equal(t, ann.User.ID, ingested[0]["userId"])
	require.Equal(t, ann.User.ID, ingested[0]["header"])
	require.Equal(t, res.Document.ID, ingested[0]["documentId"])
	require.Equal(t, "notes.txt", ingested[0]["filename"])

	// the stored file is served back
	resp, err := http.Get(client.BaseURL + res.Document.FileURL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, "meeting notes", string(body))
}

func TestDocumentsAreScopedToOwner(t *testing.T) {
	docs := startDocumentService(t)
	client := setupContainer(t, containerOptions{documentService: docs})
	ctx := t.Context()

	ann := register(t, client, "Ann", "ann@x.com")
	bob := register(t, client, "Bob", "bob@x.com")

	_, err := client.UploadDocument(ctx, ann.Token, "ann.txt", strings.NewReader("a"))
	require.NoError(t, err)

	annDocs, err := client.ListDocuments(ctx, ann.Token)
	require.NoError(t, err)
	require.Len(t, annDocs, 1)

	bobDocs, err := client.ListDocuments(ctx, bob.Token)
	require.NoError(t, err)
	require.Empty(t, bobDocs)
}

func TestChatQuery(t *testing.T) {
	docs := startDocumentService(t)
	client := setupContainer(t, containerOptions{documentService: docs})
	ann := register(t, client, "Ann", "ann@x.com")

	res, err := client.Query(t.Context(), ann.Token, "what changed?")
	require.NoError(t, err)
	require.Equal(t, "You asked: what changed?", res.Answer)
	require.Equal(t, "documents", res.Source)

	_, asked := docs.snapshot()
	require.Len(t, asked, 1)
	require.Equal(t, ann.User.ID, asked[0]["userId"])
}

func TestReadinessReportsDocumentService(t *testing.T) {
	docs := startDocumentService(t)
	client := setupContainer(t, containerOptions{documentService: docs})

	require.Eventually(t, func() bool {
		ready, err := client.GetReadiness(t.Context())
		return err == nil && ready.Checks != nil && ready.Checks.DocumentService == "ok"
	}, 15*time.Second, 250*time.Millisecond)
}

func TestSessionAgainstContainer(t *testing.T) {
	docs := startDocumentService(t)
	client := setupContainer(t, containerOptions{documentService: docs})
	ctx := t.Context()

	tokens := &chatsdk.MemoryTokenStore{}
	session := chatsdk.NewSession(client, tokens)
	require.NoError(t, session.Start(ctx))
	require.Equal(t, chatsdk.StatusAnonymous, session.State().Status)

	ok, err := session.Register(ctx, "Ann", "ann@x.com", "secret1")
	require.NoError(t, err)
	require.True(t, ok)

	stored, err := tokens.Load()
	require.NoError(t, err)
	require.NotEmpty(t, stored)

	// a fresh session resumes from the stored token
	resumed := chatsdk.NewSession(client, tokens)
	require.NoError(t, resumed.Start(ctx))
	require.True(t, resumed.State().Authenticated())

	var rendered string
	err = chatsdk.Gate{}.Guard(ctx, resumed, func(u chatsdk.User) error {
		rendered = u.Email
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, "ann@x.com", rendered)

	require.NoError(t, resumed.Logout())
	err = chatsdk.Gate{}.Guard(ctx, resumed, func(chatsdk.User) error { return nil })
	require.ErrorIs(t, err, chatsdk.ErrLoginRequired)
}
