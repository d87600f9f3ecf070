package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"bookstore/internal/user"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

func TestHTTPHandler_Login(t *testing.T) {
	u := storedUser(t, "Secret#123")

	tests := []struct {
		name       string
		body       string
		setup      func(m *mockUsers)
		wantStatus int
	}{
		{
			name: "success",
			body: `{"email":" reader@example.com ","password":"Secret#123"}`,
			setup: func(m *mockUsers) {
				m.On("GetByEmail", mock.Anything, "reader@example.com").Return(u, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "bad credentials",
			body: `{"email":"reader@example.com","password":"wrong"}`,
			setup: func(m *mockUsers) {
				m.On("GetByEmail", mock.Anything, "reader@example.com").Return(u, nil)
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "unknown user",
			body: `{"email":"ghost@example.com","password":"wrong"}`,
			setup: func(m *mockUsers) {
				m.On("GetByEmail", mock.Anything, "ghost@example.com").Return(user.User{}, user.ErrNotFound)
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "invalid email",
			body:       `{"email":"not-an-email","password":"x"}`,
			setup:      func(m *mockUsers) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "malformed body",
			body:       `{`,
			setup:      func(m *mockUsers) {},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(mockUsers)
			tt.setup(users)
			h := NewHTTPHandler(NewService(testSecret, time.Hour, users), zap.NewNop())

			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodPost, "/v1/users/login", strings.NewReader(tt.body))
			h.Login(w, r)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Contains(t, w.Body.String(), `"access_token"`)
			}
			users.AssertExpectations(t)
		})
	}
}
