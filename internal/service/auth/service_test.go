package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ========== 令牌签发与解析测试 ==========

func TestParseTokenRoundTrip(t *testing.T) {
	token, err := signToken(jwt.MapClaims{
		"user_id": "user-1",
		"exp":     time.Now().Add(time.Minute).Unix(),
		"iat":     time.Now().Unix(),
		"type":    tokenKindAccess,
	})
	if err != nil {
		t.Fatalf("signToken() error = %v", err)
	}

	userID, err := parseToken(token, tokenKindAccess)
	if err != nil {
		t.Fatalf("parseToken() error = %v", err)
	}
	if userID != "user-1" {
		t.Errorf("userID = %q, want %q", userID, "user-1")
	}
}

func TestParseTokenRejectsWrongKind(t *testing.T) {
	// 刷新令牌不能当访问令牌用，反之亦然
	token, err := signToken(jwt.MapClaims{
		"user_id": "user-1",
		"exp":     time.Now().Add(time.Minute).Unix(),
		"type":    tokenKindRefresh,
	})
	if err != nil {
		t.Fatalf("signToken() error = %v", err)
	}

	if _, err := parseToken(token, tokenKindAccess); err == nil {
		t.Error("refresh token accepted as access token")
	}
}

func TestParseTokenRejectsExpired(t *testing.T) {
	token, err := signToken(jwt.MapClaims{
		"user_id": "user-1",
		"exp":     time.Now().Add(-time.Minute).Unix(),
		"type":    tokenKindAccess,
	})
	if err != nil {
		t.Fatalf("signToken() error = %v", err)
	}

	if _, err := parseToken(token, tokenKindAccess); err == nil {
		t.Error("expired token accepted")
	}
}

func TestParseTokenRejectsForeignSignature(t *testing.T) {
	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "user-1",
		"exp":     time.Now().Add(time.Minute).Unix(),
		"type":    tokenKindAccess,
	})
	token, err := foreign.SignedString([]byte("someone-elses-secret"))
	if err != nil {
		t.Fatalf("SignedString() error = %v", err)
	}

	if _, err := parseToken(token, tokenKindAccess); err == nil {
		t.Error("token signed with foreign secret accepted")
	}
}

func TestParseTokenRejectsMissingUserID(t *testing.T) {
	token, err := signToken(jwt.MapClaims{
		"exp":  time.Now().Add(time.Minute).Unix(),
		"type": tokenKindAccess,
	})
	if err != nil {
		t.Fatalf("signToken() error = %v", err)
	}

	_, err = parseToken(token, tokenKindAccess)
	if err == nil {
		t.Fatal("token without user_id accepted")
	}
	if !strings.Contains(err.Error(), "user ID") {
		t.Errorf("error = %q, want user ID complaint", err.Error())
	}
}
