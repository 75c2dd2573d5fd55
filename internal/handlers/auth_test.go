package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mohit-pareek09/smart-erp/internal/auth"
)

func TestRegisterLoginRoundtrip(t *testing.T) {
	db := setupTestDB(t)
	h := NewAuthHandler(db)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(`{"email":"owner@shop.test","password":"secret123"}`))
	w := httptest.NewRecorder()
	h.register(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("register failed: %d %s", w.Code, w.Body.String())
	}
	var created struct {
		Token string `json:"token"`
		User  struct {
			ID    uint   `json:"id"`
			Email string `json:"email"`
		} `json:"user"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.User.ID == 0 || created.Token == "" {
		t.Fatalf("incomplete response: %+v", created)
	}
	if uid, ok := auth.ParseToken(created.Token); !ok || uid != created.User.ID {
		t.Fatalf("token does not verify for user %d", created.User.ID)
	}

	// Duplicate email rejected.
	req = httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(`{"email":"owner@shop.test","password":"secret123"}`))
	w = httptest.NewRecorder()
	h.register(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for duplicate email got %d", w.Code)
	}

	// Login with correct and wrong passwords.
	req = httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"email":"owner@shop.test","password":"secret123"}`))
	w = httptest.NewRecorder()
	h.login(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", w.Code, w.Body.String())
	}

	req = httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"email":"owner@shop.test","password":"wrong"}`))
	w = httptest.NewRecorder()
	h.login(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", w.Code)
	}
}

func TestRegisterValidation(t *testing.T) {
	db := setupTestDB(t)
	h := NewAuthHandler(db)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(`{"email":"owner@shop.test","password":"short"}`))
	w := httptest.NewRecorder()
	h.register(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for short password got %d", w.Code)
	}
}
