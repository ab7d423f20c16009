// Package auth 认证服务
package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/BailinYe/resume-modifier/internal/model"
	"github.com/BailinYe/resume-modifier/internal/repository"
)

const (
	accessTokenTTL  = 24 * time.Hour
	refreshTokenTTL = 7 * 24 * time.Hour

	tokenKindAccess  = "access"
	tokenKindRefresh = "refresh"
)

var (
	jwtSecretOnce sync.Once
	jwtSecret     []byte
)

// signingSecret 返回 JWT 签名密钥；未配置时生成随机密钥，重启后旧令牌全部失效
func signingSecret() []byte {
	jwtSecretOnce.Do(func() {
		if env := strings.TrimSpace(os.Getenv("JWT_SECRET")); env != "" {
			jwtSecret = []byte(env)
			return
		}

		raw := make([]byte, 32)
		if _, err := rand.Read(raw); err != nil {
			panic(fmt.Sprintf("failed to generate JWT secret: %v", err))
		}
		jwtSecret = []byte(base64.StdEncoding.EncodeToString(raw))
	})

	return jwtSecret
}

// Service 认证服务
type Service struct {
	repo *repository.Repositories
}

// NewService 创建认证服务
func NewService(repo *repository.Repositories) *Service {
	return &Service{repo: repo}
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	Success      bool        `json:"success"`
	Message      string      `json:"message,omitempty"`
	User         *model.User `json:"user,omitempty"`
	Token        string      `json:"token,omitempty"`
	RefreshToken string      `json:"refresh_token,omitempty"`
}

// RegisterResponse 注册响应
type RegisterResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	User    *model.User `json:"user,omitempty"`
}

// ChangePasswordRequest 修改密码请求
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6"`
}

// Register 注册用户
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*RegisterResponse, error) {
	// 邮箱和用户名都不允许重复
	if existing, _ := s.repo.Auth.GetUserByEmail(req.Email); existing != nil {
		return nil, errors.New("user with this email already exists")
	}
	if existing, _ := s.repo.Auth.GetUserByUsername(req.Username); existing != nil {
		return nil, errors.New("user with this username already exists")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:           uuid.New().String(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hashed),
		IsActive:     true,
	}
	if err := s.repo.Auth.CreateUser(user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &RegisterResponse{
		Success: true,
		Message: "Registration successful",
		User:    user,
	}, nil
}

// Login 用户登录
// 查无此人和密码错误返回同一条消息，不暴露邮箱是否注册过
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	user, err := s.repo.Auth.GetUserByEmail(req.Email)
	if err != nil {
		return &LoginResponse{Success: false, Message: "Invalid email or password"}, nil
	}
	if !user.IsActive {
		return &LoginResponse{Success: false, Message: "Account is disabled"}, nil
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return &LoginResponse{Success: false, Message: "Invalid email or password"}, nil
	}

	accessToken, refreshToken, err := s.issueTokenPair(user)
	if err != nil {
		return &LoginResponse{Success: false, Message: "Login failed"}, err
	}

	return &LoginResponse{
		Success:      true,
		Message:      "Login successful",
		User:         user,
		Token:        accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// ValidateToken 验证访问令牌并返回其所属用户
func (s *Service) ValidateToken(ctx context.Context, tokenString string) (*model.User, error) {
	userID, err := parseToken(tokenString, tokenKindAccess)
	if err != nil {
		return nil, err
	}
	if _, err := s.activeTokenRecord(tokenString); err != nil {
		return nil, err
	}
	return s.repo.Auth.GetUserByID(userID)
}

// RefreshToken 用刷新令牌换发新令牌对，旧刷新令牌立即撤销
func (s *Service) RefreshToken(ctx context.Context, refreshTokenString string) (string, string, error) {
	userID, err := parseToken(refreshTokenString, tokenKindRefresh)
	if err != nil {
		return "", "", err
	}

	record, err := s.activeTokenRecord(refreshTokenString)
	if err != nil {
		return "", "", err
	}

	user, err := s.repo.Auth.GetUserByID(userID)
	if err != nil {
		return "", "", err
	}

	// 先撤销再换发，刷新令牌一次性使用
	if err := s.repo.Auth.RevokeToken(record.ID); err != nil {
		return "", "", fmt.Errorf("failed to revoke old refresh token: %w", err)
	}

	return s.issueTokenPair(user)
}

// RevokeToken 撤销令牌
func (s *Service) RevokeToken(ctx context.Context, tokenString string) error {
	record, err := s.activeTokenRecord(tokenString)
	if err != nil {
		return err
	}
	return s.repo.Auth.RevokeToken(record.ID)
}

// ChangePassword 修改密码
func (s *Service) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	user, err := s.repo.Auth.GetUserByID(userID)
	if err != nil {
		return err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)) != nil {
		return errors.New("invalid old password")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user.PasswordHash = string(hashed)
	return s.repo.Auth.UpdateUser(user)
}

// activeTokenRecord 在数据库中查找未撤销且未过期的令牌记录
func (s *Service) activeTokenRecord(tokenString string) (*model.AuthToken, error) {
	record, err := s.repo.Auth.GetTokenByValue(tokenString)
	if err != nil || record == nil || record.IsRevoked {
		return nil, errors.New("token is revoked")
	}
	return record, nil
}

// issueTokenPair 签发访问令牌和刷新令牌并落库
func (s *Service) issueTokenPair(user *model.User) (string, string, error) {
	now := time.Now()

	accessToken, err := signToken(jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"exp":     now.Add(accessTokenTTL).Unix(),
		"iat":     now.Unix(),
		"type":    tokenKindAccess,
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to sign access token: %w", err)
	}

	refreshToken, err := signToken(jwt.MapClaims{
		"user_id": user.ID,
		"exp":     now.Add(refreshTokenTTL).Unix(),
		"iat":     now.Unix(),
		"type":    tokenKindRefresh,
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to sign refresh token: %w", err)
	}

	// 落库后才能被撤销查询命中，写入失败时不返回令牌
	if err := s.storeToken(user.ID, accessToken, "access_token", now.Add(accessTokenTTL)); err != nil {
		return "", "", err
	}
	if err := s.storeToken(user.ID, refreshToken, "refresh_token", now.Add(refreshTokenTTL)); err != nil {
		return "", "", err
	}

	return accessToken, refreshToken, nil
}

func (s *Service) storeToken(userID, token, tokenType string, expiresAt time.Time) error {
	record := &model.AuthToken{
		ID:        uuid.New().String(),
		UserID:    userID,
		Token:     token,
		TokenType: tokenType,
		ExpiresAt: expiresAt,
	}
	if err := s.repo.Auth.CreateToken(record); err != nil {
		return fmt.Errorf("failed to store %s: %w", tokenType, err)
	}
	return nil
}

// signToken HS256 签名
func signToken(claims jwt.MapClaims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(signingSecret())
}

// parseToken 校验签名、有效期和令牌类型，返回令牌所属的用户 ID
func parseToken(tokenString, wantKind string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return signingSecret(), nil
	})
	if err != nil || !token.Valid {
		return "", errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid token claims")
	}
	if kind, _ := claims["type"].(string); kind != wantKind {
		return "", fmt.Errorf("not an %s token", wantKind)
	}
	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", errors.New("invalid user ID in token")
	}
	return userID, nil
}
