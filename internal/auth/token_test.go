package auth

import (
	"errors"
	"testing"
	"time"
)

func TestIssueAndDecodeRoundTrip(t *testing.T) {
	codec := NewTokenCodec("test-secret")

	token, err := codec.Issue("user-123", "", time.Hour)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	claims, err := codec.Decode(token, "")
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if claims.Subject != "user-123" {
		t.Errorf("subject = %q, want %q", claims.Subject, "user-123")
	}
}

func TestIssueRejectsEmptySubject(t *testing.T) {
	codec := NewTokenCodec("test-secret")
	if _, err := codec.Issue("", "", time.Hour); err == nil {
		t.Fatal("expected error for empty subject")
	}
}

func TestDecodeExpiredToken(t *testing.T) {
	codec := NewTokenCodec("test-secret")

	token, err := codec.Issue("user-123", "", -time.Minute)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	_, err = codec.Decode(token, "")
	if !errors.Is(err, ErrExpiredToken) {
		t.Errorf("error = %v, want ErrExpiredToken", err)
	}
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expired token should wrap ErrInvalidCredentials, got %v", err)
	}
}

func TestDecodeWrongSecret(t *testing.T) {
	token, err := NewTokenCodec("secret-a").Issue("user-123", "", time.Hour)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	_, err = NewTokenCodec("secret-b").Decode(token, "")
	if !errors.Is(err, ErrSignatureMismatch) {
		t.Errorf("error = %v, want ErrSignatureMismatch", err)
	}
}

func TestDecodeMalformedToken(t *testing.T) {
	codec := NewTokenCodec("test-secret")

	for _, token := range []string{"", "   ", "not.a.token", "garbage"} {
		if _, err := codec.Decode(token, ""); !errors.Is(err, ErrMalformedToken) {
			t.Errorf("Decode(%q) error = %v, want ErrMalformedToken", token, err)
		}
	}
}

func TestDecodeAudienceScoping(t *testing.T) {
	codec := NewTokenCodec("test-secret")

	token, err := codec.Issue("user-123", AudiencePasswordReset, time.Hour)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if _, err := codec.Decode(token, AudiencePasswordReset); err != nil {
		t.Errorf("matching audience rejected: %v", err)
	}
	if _, err := codec.Decode(token, AudienceAccountVerification); !errors.Is(err, ErrAudienceMismatch) {
		t.Errorf("error = %v, want ErrAudienceMismatch", err)
	}
}

func TestDecodeSessionTokenWithoutAudience(t *testing.T) {
	codec := NewTokenCodec("test-secret")

	token, err := codec.Issue("user-123", AudienceAccountVerification, time.Hour)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if _, err := codec.Decode(token, ""); err != nil {
		t.Errorf("Decode with no audience requirement failed: %v", err)
	}
}

func TestTokenFromHeader(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"Bearer abc123", "abc123"},
		{"bearer abc123", "abc123"},
		{"BEARER abc123", "abc123"},
		{"Basic abc123", ""},
		{"Bearer", ""},
		{"", ""},
		{"Bearer a b", ""},
	}
	for _, tt := range tests {
		if got := TokenFromHeader(tt.header); got != tt.want {
			t.Errorf("TokenFromHeader(%q) = %q, want %q", tt.header, got, tt.want)
		}
	}
}
