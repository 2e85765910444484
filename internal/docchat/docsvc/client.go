// Package docsvc is the HTTP client for the external document service that
// parses uploads and answers questions about them. Every call carries the
// id of the user it is made for.
package docsvc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"
)

const (
	pathIngest = "/documents"
	pathQuery  = "/query"
	pathHealth = "/health"

	// maxErrorBody bounds how much of an error response is kept.
	maxErrorBody = 4 << 10
)

// ErrUnreachable wraps transport-level failures (DNS, refused, timeout).
var ErrUnreachable = errors.New("docsvc: unreachable")

// StatusError is a non-2xx answer from the service.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("docsvc: HTTP %d: %s", e.StatusCode, e.Body)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client for baseURL. timeout bounds each request.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// IngestRequest is one uploaded file handed to the service for indexing.
type IngestRequest struct {
	UserID      string
	DocumentID  string
	Filename    string
	ContentType string
	Body        io.Reader
}

// Ingest streams the file as multipart/form-data with userId and documentId
// fields ahead of the file part.
func (c *Client) Ingest(ctx context.Context, in IngestRequest) error {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		pw.CloseWithError(writeIngestForm(mw, in))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+pathIngest, pr)
	if err != nil {
		_ = pr.CloseWithError(err)
		return fmt.Errorf("docsvc: build request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("X-User-ID", in.UserID)

	resp, err := c.do(req)
	if err != nil {
		_ = pr.CloseWithError(err)
		return err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
	return nil
}

func writeIngestForm(mw *multipart.Writer, in IngestRequest) error {
	if err := mw.WriteField("userId", in.UserID); err != nil {
		return err
	}
	if err := mw.WriteField("documentId", in.DocumentID); err != nil {
		return err
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, in.Filename))
	ct := in.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	h.Set("Content-Type", ct)

	part, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, in.Body); err != nil {
		return err
	}
	return mw.Close()
}

type queryRequest struct {
	UserID   string `json:"userId"`
	Question string `json:"question"`
}

// Answer is the service's reply to a question. Source says where the answer
// came from, "documents" or "web".
type Answer struct {
	Answer string `json:"answer"`
	Source string `json:"source,omitempty"`
}

// Query asks a question scoped to userID's documents.
func (c *Client) Query(ctx context.Context, userID, question string) (Answer, error) {
	body, err := json.Marshal(queryRequest{UserID: userID, Question: question})
	if err != nil {
		return Answer{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+pathQuery, bytes.NewReader(body))
	if err != nil {
		return Answer{}, fmt.Errorf("docsvc: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", userID)

	resp, err := c.do(req)
	if err != nil {
		return Answer{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	var out Answer
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Answer{}, fmt.Errorf("docsvc: decode answer: %w", err)
	}
	return out, nil
}

// Ping checks the service's health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+pathHealth, nil)
	if err != nil {
		return err
	}
	resp, err := c.do(req)
	if err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.Body.Close()
}

// do sends req and turns non-2xx answers into *StatusError. On success the
// caller owns resp.Body.
func (c *Client) do(req *http.Request) (*http.Response, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		_ = resp.Body.Close()
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}
	return resp, nil
}
