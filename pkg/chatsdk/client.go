package chatsdk

import (
	"context"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path/filepath"
	"strings"
	"time"
)

// DefaultTimeout bounds every request. Failed requests are not retried.
const DefaultTimeout = 10 * time.Second

// Client talks to the DocChat API. It is stateless; a Session adds token
// storage and state on top of it.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL:    strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: DefaultTimeout},
	}
}

// Register creates an account. The server answers 201.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	resp, err := c.doJSON(ctx, http.MethodPost, "/api/auth/register", "", req)
	if err != nil {
		return nil, err
	}
	var out AuthResponse
	if err := decodeJSON(resp, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	resp, err := c.doJSON(ctx, http.MethodPost, "/api/auth/login", "", req)
	if err != nil {
		return nil, err
	}
	var out AuthResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// Me resolves token to the user it was issued for.
func (c *Client) Me(ctx context.Context, token string) (*User, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/api/auth/me", token, nil, nil)
	if err != nil {
		return nil, err
	}
	var out MeResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out.User, nil
}

// UploadDocument streams r as the multipart "file" field.
func (c *Client) UploadDocument(ctx context.Context, token, filename string, r io.Reader) (*UploadResponse, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		pw.CloseWithError(writeFilePart(mw, filename, r))
	}()

	resp, err := c.doRequest(ctx, http.MethodPost, "/api/documents/upload", token, pr, map[string]string{
		"Content-Type": mw.FormDataContentType(),
	})
	if err != nil {
		_ = pr.CloseWithError(err)
		return nil, err
	}
	var out UploadResponse
	if err := decodeJSON(resp, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

func writeFilePart(mw *multipart.Writer, filename string, r io.Reader) error {
	ct := mime.TypeByExtension(filepath.Ext(filename))
	if ct == "" {
		ct = "application/octet-stream"
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filepath.Base(filename)))
	h.Set("Content-Type", ct)

	part, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, r); err != nil {
		return err
	}
	return mw.Close()
}

// ListDocuments returns the caller's documents, newest first.
func (c *Client) ListDocuments(ctx context.Context, token string) ([]Document, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/api/documents", token, nil, nil)
	if err != nil {
		return nil, err
	}
	var out []Document
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out, nil
}

// Query asks a question about the caller's documents.
func (c *Client) Query(ctx context.Context, token, question string) (*QueryResponse, error) {
	resp, err := c.doJSON(ctx, http.MethodPost, "/api/chat/query", token, QueryRequest{Question: question})
	if err != nil {
		return nil, err
	}
	var out QueryResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// Health calls GET /api/health.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	return c.health(ctx, "/api/health")
}

func (c *Client) GetLiveness(ctx context.Context) (*HealthResponse, error) {
	return c.health(ctx, "/livez")
}

// GetReadiness returns an *APIError with status 503 when a dependency is
// down.
func (c *Client) GetReadiness(ctx context.Context) (*HealthResponse, error) {
	return c.health(ctx, "/readyz")
}

func (c *Client) health(ctx context.Context, path string) (*HealthResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, path, "", nil, nil)
	if err != nil {
		return nil, err
	}
	var out HealthResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}
