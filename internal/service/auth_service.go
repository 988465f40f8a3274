package service

import (
	"context"
	"strings"
	"time"

	"github.com/textpages-admin/internal/constants"
	"github.com/textpages-admin/internal/credential"
	"github.com/textpages-admin/internal/logger"
	"github.com/textpages-admin/internal/models"
	"github.com/textpages-admin/internal/repository"
)

// AuthService 管理员认证服务
type AuthService struct {
	adminRepo repository.AdminRepository
	codec     *credential.Codec
	hasher    *credential.PasswordHasher
	ttl       time.Duration
}

// NewAuthService 创建认证服务实例
func NewAuthService(adminRepo repository.AdminRepository, codec *credential.Codec, hasher *credential.PasswordHasher, ttl time.Duration) *AuthService {
	return &AuthService{
		adminRepo: adminRepo,
		codec:     codec,
		hasher:    hasher,
		ttl:       ttl,
	}
}

// AdminIdentity 令牌携带的管理员身份
type AdminIdentity struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role"`
}

// LoginResult 登录结果
type LoginResult struct {
	Token     string        `json:"token"`
	User      AdminIdentity `json:"user"`
	ExpiresAt time.Time     `json:"expiresAt"`
}

// Login 校验账号密码并签发令牌
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	admin, err := s.adminRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if admin == nil || !s.hasher.Verify(password, admin.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	identity := identityOf(admin)
	token, expiresAt, err := s.codec.Issue(credential.Claims{
		AdminID:  identity.ID,
		Username: identity.Username,
		Role:     identity.Role,
	}, s.ttl)
	if err != nil {
		return nil, err
	}

	if err := s.adminRepo.TouchLastLogin(ctx, admin.ID, time.Now().UTC()); err != nil {
		// 不影响本次登录
		logger.Warnw("admin_touch_last_login_failed", "admin_id", admin.ID, "error", err)
	}

	return &LoginResult{Token: token, User: identity, ExpiresAt: expiresAt.UTC()}, nil
}

// ParseToken 仅做令牌校验，不访问数据库
func (s *AuthService) ParseToken(token string) (*AdminIdentity, error) {
	claims, err := s.codec.Verify(token)
	if err != nil {
		return nil, err
	}
	role := claims.Role
	if role == "" {
		role = constants.AdminRoleAdmin
	}
	return &AdminIdentity{ID: claims.AdminID, Username: claims.Username, Role: role}, nil
}

// CurrentAdmin 读取令牌对应管理员的最新资料
func (s *AuthService) CurrentAdmin(ctx context.Context, identity *AdminIdentity) (*AdminIdentity, error) {
	if identity == nil || identity.ID == 0 {
		return nil, ErrAdminNotFound
	}
	admin, err := s.adminRepo.GetByID(ctx, identity.ID)
	if err != nil {
		return nil, err
	}
	if admin == nil {
		return nil, ErrAdminNotFound
	}
	current := identityOf(admin)
	return &current, nil
}

func identityOf(admin *models.AdminUser) AdminIdentity {
	role := strings.TrimSpace(admin.Role)
	if role == "" {
		role = constants.AdminRoleAdmin
	}
	return AdminIdentity{
		ID:       admin.ID,
		Username: admin.Username,
		Email:    admin.Email,
		Role:     role,
	}
}
