package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"time"

	"bookstore/internal/book"
	"bookstore/internal/platform/crypto"
	"bookstore/internal/user"

	"github.com/golang-jwt/jwt/v5"
)

// TestUser is a mock user for testing
var TestUser = user.User{
	ID:        "test-user-id-123",
	Username:  "testuser",
	Email:     "test@example.com",
	Password:  "hashedpassword",
	Role:      user.RoleUser,
	CreatedAt: time.Now(),
	UpdatedAt: time.Now(),
}

// TestAdminUser is a mock admin user for testing
var TestAdminUser = user.User{
	ID:        "test-admin-id-456",
	Username:  "adminuser",
	Email:     "admin@example.com",
	Password:  "hashedpassword",
	Role:      user.RoleAdmin,
	CreatedAt: time.Now(),
	UpdatedAt: time.Now(),
}

// Books returns a small catalog, inserted out of name order.
func Books() []book.Book {
	year := func(y int) *int { return &y }
	return []book.Book{
		{ID: 1, Name: "The Hobbit", AuthorName: "J.R.R. Tolkien", Publisher: "Allen & Unwin", Genre: book.GenreFantasy, Edition: 1, PublicationYear: year(1937)},
		{ID: 2, Name: "Dune", AuthorName: "Frank Herbert", Publisher: "Chilton", Genre: book.GenreScienceFiction, Edition: 1, PublicationYear: year(1965)},
		{ID: 3, Name: "A Wizard of Earthsea", AuthorName: "Ursula K. Le Guin", Publisher: "Parnassus", Genre: book.GenreFantasy, Edition: 1, PublicationYear: year(1968)},
		{ID: 4, Name: "Neuromancer", AuthorName: "William Gibson", Publisher: "Ace", Genre: book.GenreScienceFiction, Edition: 2, PublicationYear: year(1984)},
		{ID: 5, Name: "Dracula", AuthorName: "Bram Stoker", Genre: book.GenreHorror, Edition: 3, PublicationYear: year(1897)},
		{ID: 6, Name: "Emma", AuthorName: "Jane Austen", Publisher: "John Murray", Genre: book.GenreRomance, Edition: 1, PublicationYear: year(1815)},
		{ID: 7, Name: "The Silmarillion", AuthorName: "J.R.R. Tolkien", Publisher: "Allen & Unwin", Genre: book.GenreFantasy, Edition: 1, PublicationYear: year(1977)},
	}
}

// GenerateTestToken generates a JWT token for testing
func GenerateTestToken(secret, userID, role string) string {
	token, _, _ := crypto.GenerateToken(secret, userID, role, time.Hour)
	return token
}

// GenerateExpiredToken generates an expired JWT token for testing
func GenerateExpiredToken(secret, userID, role string) string {
	c := crypto.Claims{
		Sub:  userID,
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "bookstore",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	token, _ := t.SignedString([]byte(secret))
	return token
}

// NewRequest creates a new HTTP request for testing
func NewRequest(method, path string, body any) *http.Request {
	var bodyBytes []byte
	if body != nil {
		bodyBytes, _ = json.Marshal(body)
	}
	var r *http.Request
	if bodyBytes != nil {
		r = httptest.NewRequest(method, path, bytes.NewReader(bodyBytes))
		r.Header.Set("Content-Type", "application/json")
	} else {
		r = httptest.NewRequest(method, path, nil)
	}
	return r
}

// NewRequestWithAuth creates a new HTTP request with JWT auth for testing
func NewRequestWithAuth(method, path string, body any, token string) *http.Request {
	r := NewRequest(method, path, body)
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	return r
}

// RecordResponse records the HTTP response for testing
type RecordResponse struct {
	Code   int
	Header http.Header
	Body   map[string]any
}

// RecordHTTPResponse records the HTTP response
func RecordHTTPResponse(w *httptest.ResponseRecorder) RecordResponse {
	result := w.Result()
	defer result.Body.Close()

	bodyBytes, _ := io.ReadAll(result.Body)

	var bodyMap map[string]any
	if len(bodyBytes) > 0 {
		_ = json.NewDecoder(bytes.NewReader(bodyBytes)).Decode(&bodyMap)
	}

	return RecordResponse{
		Code:   result.StatusCode,
		Header: result.Header,
		Body:   bodyMap,
	}
}
