package chatsdk

import "time"

// User is the redacted user view returned by the server. It never carries a
// password or hash.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	ProfileImage string    `json:"profileImage,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by register (201) and login (200).
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// MeResponse is returned by GET /api/auth/me.
type MeResponse struct {
	User User `json:"user"`
}

// Document is an uploaded file's metadata. Size is a label such as
// "12.50 KB"; SizeBytes is the exact size.
type Document struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Size      string    `json:"size"`
	SizeBytes int64     `json:"sizeBytes"`
	FileURL   string    `json:"fileUrl"`
	CreatedAt time.Time `json:"createdAt"`
}

type UploadResponse struct {
	Message  string   `json:"message"`
	Document Document `json:"document"`
}

type QueryRequest struct {
	Question string `json:"question"`
}

// QueryResponse is the chat answer. Source is "documents" or "web".
type QueryResponse struct {
	Answer string `json:"answer"`
	Source string `json:"source"`
}

// HealthResponse is returned by /api/health, /livez and /readyz.
type HealthResponse struct {
	Status  string        `json:"status"`
	Message string        `json:"message,omitempty"`
	Uptime  string        `json:"uptime,omitempty"`
	Version string        `json:"version,omitempty"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

type HealthChecks struct {
	Database        string `json:"database"`
	DocumentService string `json:"documentService"`
}
