package services

import (
	"fmt"
	"strings"

	"blogicum/internal/logger"
	"blogicum/internal/models"
	"blogicum/internal/policy"
	"blogicum/internal/repository"
	"blogicum/internal/utils"
)

// RegisterInput 注册表单
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// ProfileInput 个人资料表单
type ProfileInput struct {
	Username  string
	FirstName string
	LastName  string
	Email     string
}

// UserService 用户注册、登录与资料
type UserService struct {
	users repository.UserRepository
}

// NewUserService 创建用户服务
func NewUserService(users repository.UserRepository) *UserService {
	return &UserService{users: users}
}

// Register 创建用户，用户名已被占用时返回 ErrUsernameTaken
func (s *UserService) Register(input RegisterInput) (*models.User, error) {
	username := strings.TrimSpace(input.Username)
	if err := s.ensureUsernameFree(username, nil); err != nil {
		return nil, err
	}

	hash, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password failed: %w", err)
	}
	user := &models.User{
		Username: username,
		Email:    strings.TrimSpace(input.Email),
		Password: hash,
	}
	if err := s.users.Create(user); err != nil {
		logger.Errorw("user_register_failed", "username", username, "error", err)
		return nil, fmt.Errorf("create user failed: %w", err)
	}
	logger.Infow("user_registered", "user_id", user.ID, "username", username)
	return user, nil
}

// Authenticate 校验用户名与密码
func (s *UserService) Authenticate(username, password string) (*models.User, error) {
	user, err := s.users.GetByUsername(strings.TrimSpace(username))
	if err != nil {
		return nil, fmt.Errorf("get user failed: %w", err)
	}
	if user == nil || !utils.CheckPasswordHash(password, user.Password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// GetByID 根据 ID 获取用户
func (s *UserService) GetByID(id uint) (*models.User, error) {
	user, err := s.users.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("get user failed: %w", err)
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}

// GetByUsername 根据用户名获取用户
func (s *UserService) GetByUsername(username string) (*models.User, error) {
	user, err := s.users.GetByUsername(username)
	if err != nil {
		return nil, fmt.Errorf("get user failed: %w", err)
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}

// EditableProfile 只有本人可以编辑资料，其余情况一律 ErrNotFound
func (s *UserService) EditableProfile(viewer policy.Viewer, username string) (*models.User, error) {
	user, err := s.GetByUsername(username)
	if err != nil {
		return nil, err
	}
	if !viewer.Is(user.ID) {
		return nil, ErrNotFound
	}
	return user, nil
}

// UpdateProfile 更新本人资料
func (s *UserService) UpdateProfile(viewer policy.Viewer, username string, input ProfileInput) (*models.User, error) {
	user, err := s.EditableProfile(viewer, username)
	if err != nil {
		return nil, err
	}

	newUsername := strings.TrimSpace(input.Username)
	if newUsername != user.Username {
		if err := s.ensureUsernameFree(newUsername, &user.ID); err != nil {
			return nil, err
		}
	}

	user.Username = newUsername
	user.FirstName = strings.TrimSpace(input.FirstName)
	user.LastName = strings.TrimSpace(input.LastName)
	user.Email = strings.TrimSpace(input.Email)
	if err := s.users.Update(user); err != nil {
		logger.Errorw("user_update_failed", "user_id", user.ID, "error", err)
		return nil, fmt.Errorf("update user failed: %w", err)
	}
	return user, nil
}

// ChangePassword 校验旧密码后更新为新密码，会话保持登录
func (s *UserService) ChangePassword(viewer policy.Viewer, oldPassword, newPassword string) error {
	if !viewer.IsAuthenticated() {
		return ErrForbidden
	}
	user, err := s.GetByID(viewer.UserID)
	if err != nil {
		return err
	}
	if !utils.CheckPasswordHash(oldPassword, user.Password) {
		return ErrInvalidCredentials
	}

	hash, err := utils.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password failed: %w", err)
	}
	user.Password = hash
	if err := s.users.Update(user); err != nil {
		logger.Errorw("user_password_change_failed", "user_id", user.ID, "error", err)
		return fmt.Errorf("update password failed: %w", err)
	}
	logger.Infow("user_password_changed", "user_id", user.ID)
	return nil
}

func (s *UserService) ensureUsernameFree(username string, excludeID *uint) error {
	count, err := s.users.CountByUsername(username, excludeID)
	if err != nil {
		return fmt.Errorf("count username failed: %w", err)
	}
	if count > 0 {
		return ErrUsernameTaken
	}
	return nil
}
