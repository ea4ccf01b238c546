// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

const testToken = "correct-horse-battery-staple"

func testHash(t *testing.T) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testToken), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	return string(hash)
}

// okHandler is a simple handler that records whether it was invoked.
func okHandler() (http.Handler, *bool) {
	var called bool
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})
	return h, &called
}

func TestRequireToken(t *testing.T) {
	hash := testHash(t)

	tests := []struct {
		name       string
		hash       string
		header     string
		wantStatus int
	}{
		{"valid token", hash, "Bearer " + testToken, http.StatusOK},
		{"lowercase scheme", hash, "bearer " + testToken, http.StatusOK},
		{"wrong token", hash, "Bearer nope-nope-nope-nope", http.StatusUnauthorized},
		{"missing header", hash, "", http.StatusUnauthorized},
		{"basic scheme", hash, "Basic " + testToken, http.StatusUnauthorized},
		{"empty bearer", hash, "Bearer ", http.StatusUnauthorized},
		{"no hash configured", "", "Bearer " + testToken, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, called := okHandler()
			handler := RequireToken(tt.hash)(next)

			req := httptest.NewRequest(http.MethodGet, "/admin/templates", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != tt.wantStatus {
				t.Errorf("status: got %d, want %d", rr.Code, tt.wantStatus)
			}
			if *called != (tt.wantStatus == http.StatusOK) {
				t.Errorf("next called = %v", *called)
			}
			if tt.wantStatus == http.StatusUnauthorized && rr.Header().Get("WWW-Authenticate") == "" {
				t.Error("401 should carry a WWW-Authenticate challenge")
			}
		})
	}
}

func TestHashToken(t *testing.T) {
	hash, err := HashToken(testToken)
	if err != nil {
		t.Fatalf("HashToken: %v", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(testToken)); err != nil {
		t.Errorf("hash does not verify: %v", err)
	}

	if _, err := HashToken("short"); err == nil {
		t.Error("short tokens should be rejected")
	}
}
