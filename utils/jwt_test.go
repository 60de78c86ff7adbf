package utils

import (
	"strings"
	"testing"
)

func TestGenerateAndValidateJWT(t *testing.T) {
	token, err := GenerateJWT("user-123", "editor", "test-secret", "1h")
	if err != nil {
		t.Fatalf("GenerateJWT failed: %v", err)
	}

	claims, err := ValidateJWT(token, "test-secret")
	if err != nil {
		t.Fatalf("ValidateJWT failed: %v", err)
	}
	if claims.UserID != "user-123" || claims.Role != "editor" {
		t.Errorf("claims = %s/%s, want user-123/editor", claims.UserID, claims.Role)
	}
	if claims.Issuer != "seo-content-ops" {
		t.Errorf("issuer = %q", claims.Issuer)
	}
}

func TestValidateJWTWrongSecret(t *testing.T) {
	token, err := GenerateJWT("user-123", "viewer", "secret-a", "1h")
	if err != nil {
		t.Fatalf("GenerateJWT failed: %v", err)
	}
	if _, err := ValidateJWT(token, "secret-b"); err == nil {
		t.Error("expected validation to fail with the wrong secret")
	}
}

func TestValidateJWTExpired(t *testing.T) {
	token, err := GenerateJWT("user-123", "viewer", "test-secret", "-1h")
	if err != nil {
		t.Fatalf("GenerateJWT failed: %v", err)
	}
	if _, err := ValidateJWT(token, "test-secret"); err == nil {
		t.Error("expected expired token to be rejected")
	}
}

func TestGenerateJWTBadDurationFallsBack(t *testing.T) {
	token, err := GenerateJWT("user-123", "viewer", "test-secret", "not-a-duration")
	if err != nil {
		t.Fatalf("GenerateJWT failed: %v", err)
	}
	if _, err := ValidateJWT(token, "test-secret"); err != nil {
		t.Errorf("token with fallback duration should validate: %v", err)
	}
}

func TestExtractTokenFromHeader(t *testing.T) {
	got, err := ExtractTokenFromHeader("Bearer abc.def.ghi")
	if err != nil || got != "abc.def.ghi" {
		t.Errorf("got %q, %v", got, err)
	}

	if _, err := ExtractTokenFromHeader(""); err == nil {
		t.Error("empty header should fail")
	}
	if _, err := ExtractTokenFromHeader("Basic abc"); err == nil {
		t.Error("non-bearer scheme should fail")
	}
	if _, err := ExtractTokenFromHeader("Bearerabc"); err == nil {
		t.Error("missing space should fail")
	}

	// Case-insensitive scheme
	got, err = ExtractTokenFromHeader("bearer xyz")
	if err != nil || got != "xyz" {
		t.Errorf("got %q, %v", got, err)
	}
}

func TestCompressDecompressRoundTrip(t *testing.T) {
	payload := []byte(strings.Repeat(`{"articleId":"a1","score":0.91}`, 100))

	compressed, err := CompressData(payload)
	if err != nil {
		t.Fatalf("CompressData failed: %v", err)
	}
	if len(compressed) >= len(payload) {
		t.Errorf("repetitive payload should shrink: %d -> %d bytes", len(payload), len(compressed))
	}

	restored, err := DecompressData(compressed)
	if err != nil {
		t.Fatalf("DecompressData failed: %v", err)
	}
	if string(restored) != string(payload) {
		t.Error("round trip corrupted the payload")
	}
}
