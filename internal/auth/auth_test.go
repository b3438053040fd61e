package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestUserIDContext(t *testing.T) {
	if _, ok := UserID(context.Background()); ok {
		t.Error("Expected no user in empty context")
	}
	if _, ok := UserID(WithUserID(context.Background(), "")); ok {
		t.Error("Expected empty user ID to count as absent")
	}
	if id, ok := UserID(WithUserID(context.Background(), "u1")); !ok || id != "u1" {
		t.Errorf("UserID = %q, %v", id, ok)
	}
}

func TestVerify(t *testing.T) {
	v := NewVerifier("secret", "authenticated")

	valid, err := v.Issue("u1", time.Hour)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	sign := func(claims jwt.Claims, method jwt.SigningMethod, key any) string {
		s, err := jwt.NewWithClaims(method, claims).SignedString(key)
		if err != nil {
			t.Fatalf("SignedString failed: %v", err)
		}
		return s
	}
	exp := jwt.NewNumericDate(time.Now().Add(time.Hour))

	tests := []struct {
		name    string
		token   string
		wantSub string
	}{
		{"Valid", valid, "u1"},
		{"WrongSecret", sign(jwt.RegisteredClaims{Subject: "u1", ExpiresAt: exp, Audience: jwt.ClaimStrings{"authenticated"}}, jwt.SigningMethodHS256, []byte("other")), ""},
		{"Expired", sign(jwt.RegisteredClaims{Subject: "u1", ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)), Audience: jwt.ClaimStrings{"authenticated"}}, jwt.SigningMethodHS256, []byte("secret")), ""},
		{"NoExpiry", sign(jwt.RegisteredClaims{Subject: "u1", Audience: jwt.ClaimStrings{"authenticated"}}, jwt.SigningMethodHS256, []byte("secret")), ""},
		{"WrongAudience", sign(jwt.RegisteredClaims{Subject: "u1", ExpiresAt: exp, Audience: jwt.ClaimStrings{"anon"}}, jwt.SigningMethodHS256, []byte("secret")), ""},
		{"NoSubject", sign(jwt.RegisteredClaims{ExpiresAt: exp, Audience: jwt.ClaimStrings{"authenticated"}}, jwt.SigningMethodHS256, []byte("secret")), ""},
		{"WrongAlgorithm", sign(jwt.RegisteredClaims{Subject: "u1", ExpiresAt: exp, Audience: jwt.ClaimStrings{"authenticated"}}, jwt.SigningMethodHS512, []byte("secret")), ""},
		{"Garbage", "not.a.token", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub, err := v.Verify(tt.token)
			if tt.wantSub == "" {
				if err == nil {
					t.Errorf("Expected error, got subject %q", sub)
				}
				return
			}
			if err != nil || sub != tt.wantSub {
				t.Errorf("Verify = %q, %v; want %q", sub, err, tt.wantSub)
			}
		})
	}

	t.Run("NoAudienceConfigured", func(t *testing.T) {
		open := NewVerifier("secret", "")
		tok := sign(jwt.RegisteredClaims{Subject: "u2", ExpiresAt: exp}, jwt.SigningMethodHS256, []byte("secret"))
		if sub, err := open.Verify(tok); err != nil || sub != "u2" {
			t.Errorf("Verify = %q, %v", sub, err)
		}
	})
}

func TestMiddleware(t *testing.T) {
	v := NewVerifier("secret", "authenticated")
	token, _ := v.Issue("u1", time.Hour)

	var seen string
	handler := v.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = UserID(r.Context())
	}))

	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"ValidToken", "Bearer " + token, "u1"},
		{"MissingHeader", "", ""},
		{"WrongScheme", "Basic " + token, ""},
		{"InvalidToken", "Bearer nope", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = "unset"
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			handler.ServeHTTP(httptest.NewRecorder(), req)
			if seen != tt.want {
				t.Errorf("Expected user %q in context, got %q", tt.want, seen)
			}
		})
	}
}
