package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/k9mail/accountauth/internal/models"
)

// fakeAccountService implements AccountService for testing.
type fakeAccountService struct {
	createReturn bool
	removeReturn bool
	setReturn    bool
	byUUID       *models.Account
	byName       *models.Account
	password     *string

	createdUUID string
}

func (f *fakeAccountService) CreateAccount(uuid, displayName string, password *string) bool {
	f.createdUUID = uuid
	if f.createReturn {
		f.byName = &models.Account{Name: displayName, Type: "com.fsck.k9.authenticator.AccountType"}
	}
	return f.createReturn
}

func (f *fakeAccountService) RemoveAccount(account models.Account) bool { return f.removeReturn }

func (f *fakeAccountService) FindAccountByUUID(uuid string) *models.Account { return f.byUUID }

func (f *fakeAccountService) FindAccountByName(name string) *models.Account { return f.byName }

func (f *fakeAccountService) SetPassword(account models.Account, password *string) bool {
	f.password = password
	return f.setReturn
}

func (f *fakeAccountService) GetPassword(account models.Account) *string { return f.password }

func TestAccountHandler_Create(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		service      *fakeAccountService
		expectedCode int
	}{
		{
			name:         "invalid JSON",
			body:         `not a json`,
			service:      &fakeAccountService{},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "empty name",
			body:         `{"name":""}`,
			service:      &fakeAccountService{},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "malformed uuid",
			body:         `{"uuid":"not-a-uuid","name":"alice@example.com"}`,
			service:      &fakeAccountService{},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "duplicate name",
			body:         `{"name":"alice@example.com","password":"hunter2"}`,
			service:      &fakeAccountService{createReturn: false},
			expectedCode: http.StatusConflict,
		},
		{
			name:         "created",
			body:         `{"uuid":"8a9a51c1-6bd6-4b59-a683-5218625cb551","name":"alice@example.com","password":"hunter2"}`,
			service:      &fakeAccountService{createReturn: true},
			expectedCode: http.StatusCreated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest("POST", "/api/accounts", bytes.NewBufferString(tt.body))
			h := &AccountHandler{AccountService: tt.service}
			h.Create(rec, req)
			res := rec.Result()
			defer res.Body.Close()

			if res.StatusCode != tt.expectedCode {
				t.Fatalf("expected status %d, got %d", tt.expectedCode, res.StatusCode)
			}
		})
	}
}

func TestAccountHandler_CreateGeneratesUUID(t *testing.T) {
	service := &fakeAccountService{createReturn: true}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/accounts",
		strings.NewReader(`{"name":"alice@example.com","password":"hunter2"}`))

	h := &AccountHandler{AccountService: service}
	h.Create(rec, req)
	res := rec.Result()
	defer res.Body.Close()

	if res.StatusCode != http.StatusCreated {
		t.Fatalf("expected status %d, got %d", http.StatusCreated, res.StatusCode)
	}
	if service.createdUUID == "" {
		t.Error("expected a generated UUID")
	}

	var body accountResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.UUID != service.createdUUID {
		t.Errorf("response uuid = %q; want %q", body.UUID, service.createdUUID)
	}
}

func TestAccountHandler_Routes(t *testing.T) {
	password := "hunter2"
	account := &models.Account{Name: "alice@example.com", Type: "com.fsck.k9.authenticator.AccountType"}
	service := &fakeAccountService{
		byUUID:       account,
		byName:       account,
		password:     &password,
		removeReturn: true,
		setReturn:    true,
	}
	router := NewRouter(&AccountHandler{AccountService: service}, zap.NewNop())
	server := httptest.NewServer(router)
	defer server.Close()

	tests := []struct {
		name         string
		method       string
		path         string
		body         string
		expectedCode int
	}{
		{"get by uuid", "GET", "/api/accounts/uuid/A-UUID-1", "", http.StatusOK},
		{"get by name", "GET", "/api/accounts/name/alice@example.com", "", http.StatusOK},
		{"get password", "GET", "/api/accounts/name/alice@example.com/password", "", http.StatusOK},
		{"set password", "PUT", "/api/accounts/name/alice@example.com/password", `{"password":"newpw"}`, http.StatusNoContent},
		{"delete", "DELETE", "/api/accounts/name/alice@example.com", "", http.StatusNoContent},
		{"wrong content type", "POST", "/api/accounts", `name=alice`, http.StatusUnsupportedMediaType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req *http.Request
			var err error
			if tt.body != "" {
				req, err = http.NewRequest(tt.method, server.URL+tt.path, strings.NewReader(tt.body))
				if tt.name == "wrong content type" {
					req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
				} else {
					req.Header.Set("Content-Type", "application/json")
				}
			} else {
				req, err = http.NewRequest(tt.method, server.URL+tt.path, nil)
			}
			if err != nil {
				t.Fatalf("failed to build request: %v", err)
			}

			res, err := http.DefaultClient.Do(req)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			defer res.Body.Close()

			if res.StatusCode != tt.expectedCode {
				t.Fatalf("expected status %d, got %d", tt.expectedCode, res.StatusCode)
			}
		})
	}
}

func TestAccountHandler_NotFound(t *testing.T) {
	service := &fakeAccountService{}
	router := NewRouter(&AccountHandler{AccountService: service}, zap.NewNop())
	server := httptest.NewServer(router)
	defer server.Close()

	for _, path := range []string{
		"/api/accounts/uuid/missing",
		"/api/accounts/name/missing",
		"/api/accounts/name/missing/password",
	} {
		res, err := http.Get(server.URL + path)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		res.Body.Close()
		if res.StatusCode != http.StatusNotFound {
			t.Errorf("GET %s = %d; want %d", path, res.StatusCode, http.StatusNotFound)
		}
	}
}
