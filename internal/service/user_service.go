package service

import (
	"context"
	"errors"
	"strings"

	"github.com/textpages-admin/internal/config"
	"github.com/textpages-admin/internal/constants"
	"github.com/textpages-admin/internal/credential"
	"github.com/textpages-admin/internal/models"
	"github.com/textpages-admin/internal/repository"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// UserService 终端用户管理
type UserService struct {
	repo       repository.UserRepository
	hasher     *credential.PasswordHasher
	pagination config.PaginationConfig
	validate   *validator.Validate
}

// NewUserService 创建用户服务
func NewUserService(repo repository.UserRepository, hasher *credential.PasswordHasher, pagination config.PaginationConfig) *UserService {
	return &UserService{
		repo:       repo,
		hasher:     hasher,
		pagination: pagination,
		validate:   validator.New(),
	}
}

// ListUsersInput 用户列表查询参数
type ListUsersInput struct {
	Page   int
	Limit  int
	Search string
	Status string
}

// UserList 用户列表结果
type UserList struct {
	Items []models.User
	Total int64
	Page  int
	Limit int
}

// CreateUserInput 创建用户参数
type CreateUserInput struct {
	Email  string
	Status string
}

// UpdateUserInput 更新用户参数，空字符串视为未提供
type UpdateUserInput struct {
	ID     uint
	Email  string
	Status string
}

// List 分页查询用户
func (s *UserService) List(ctx context.Context, input ListUsersInput) (*UserList, error) {
	query := NormalizePageQuery(s.pagination, input.Page, input.Limit)
	users, total, err := s.repo.List(ctx, repository.UserListFilter{
		Page:     query.Page,
		PageSize: query.Limit,
		Search:   strings.TrimSpace(input.Search),
		Status:   strings.TrimSpace(input.Status),
	})
	if err != nil {
		return nil, err
	}
	return &UserList{Items: users, Total: total, Page: query.Page, Limit: query.Limit}, nil
}

// Get 获取用户详情（含页面数量）
func (s *UserService) Get(ctx context.Context, id uint) (*models.User, error) {
	if id == 0 {
		return nil, ErrUserIDRequired
	}
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// Create 创建用户，状态缺省为 pending，密码为随机临时口令
func (s *UserService) Create(ctx context.Context, input CreateUserInput) (*models.User, error) {
	email := strings.TrimSpace(input.Email)
	if email == "" {
		return nil, ErrEmailRequired
	}
	if err := s.checkEmail(email); err != nil {
		return nil, err
	}
	status := strings.TrimSpace(input.Status)
	if status == "" {
		status = constants.UserStatusPending
	}
	if !isValidUserStatus(status) {
		return nil, ErrInvalidStatus
	}

	taken, err := s.repo.EmailTaken(ctx, email, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrEmailExists
	}

	hash, err := s.hasher.Hash(credential.TemporaryPassword())
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		Status:       status,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailExists
		}
		return nil, err
	}
	return s.Get(ctx, user.ID)
}

// Update 部分更新：仅应用非空的邮箱与状态
func (s *UserService) Update(ctx context.Context, input UpdateUserInput) (*models.User, error) {
	if input.ID == 0 {
		return nil, ErrUserIDRequired
	}

	fields := repository.UserFields{}
	if email := strings.TrimSpace(input.Email); email != "" {
		if err := s.checkEmail(email); err != nil {
			return nil, err
		}
		taken, err := s.repo.EmailTaken(ctx, email, input.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrEmailExists
		}
		fields.Email = &email
	}
	if status := strings.TrimSpace(input.Status); status != "" {
		if !isValidUserStatus(status) {
			return nil, ErrInvalidStatus
		}
		fields.Status = &status
	}
	if fields.Empty() {
		return nil, ErrNoFieldsToUpdate
	}

	found, err := s.repo.Update(ctx, input.ID, fields)
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailExists
		}
		return nil, err
	}
	if !found {
		return nil, ErrUserNotFound
	}
	return s.Get(ctx, input.ID)
}

// Delete 硬删除用户，其页面随之删除
func (s *UserService) Delete(ctx context.Context, id uint) error {
	if id == 0 {
		return ErrUserIDRequired
	}
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrUserNotFound
	}
	return nil
}

func (s *UserService) checkEmail(email string) error {
	if err := s.validate.Var(email, "required,email,max=255"); err != nil {
		return ErrInvalidEmail
	}
	return nil
}

func isValidUserStatus(status string) bool {
	for _, allowed := range constants.UserStatuses {
		if status == allowed {
			return true
		}
	}
	return false
}
