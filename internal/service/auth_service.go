package service

import (
	"context"
	"errors"
	"strings"

	"Care_Community/internal/model"
	"Care_Community/internal/pkg"
	"Care_Community/internal/repository"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type TokenIssuer interface {
	Issue(userID uint64, role, email string) (string, error)
	Parse(token string) (*pkg.Claims, error)
}

type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type AuthService struct {
	users    repository.UserRepository
	tokens   TokenIssuer
	sessions SessionStore
	log      *zap.Logger
}

func NewAuthService(users repository.UserRepository, tokens TokenIssuer, sessions SessionStore, log *zap.Logger) *AuthService {
	return &AuthService{users: users, tokens: tokens, sessions: sessions, log: log}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     string
	StaffID  string
}

// Register 自助注册不能直接成为 manager 或 administrator
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*model.User, *Token, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || in.Password == "" {
		return nil, nil, pkg.Validation("email and password are required")
	}
	role, ok := model.ParseRole(in.Role)
	if !ok || role == model.RoleManager || role == model.RoleAdministrator {
		return nil, nil, pkg.ErrInvalidRole
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, err
	}
	user := &model.User{
		Name:     strings.TrimSpace(in.Name),
		Email:    email,
		Role:     role,
		StaffID:  in.StaffID,
		Password: string(hash),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, nil, err
	}
	s.log.Info("user registered", zap.Uint64("user_id", user.ID), zap.String("role", string(user.Role)))

	token, err := s.startSession(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return user, token, nil
}

// Login 未知邮箱与错误密码返回同一个错误
func (s *AuthService) Login(ctx context.Context, email, password string) (*Token, error) {
	user, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, pkg.ErrUserNotFound) {
		return nil, pkg.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, pkg.ErrInvalidCredentials
	}
	return s.startSession(ctx, user)
}

// startSession 新 token 覆盖旧 token，旧会话随即失效
func (s *AuthService) startSession(ctx context.Context, user *model.User) (*Token, error) {
	access, err := s.tokens.Issue(user.ID, string(user.Role), user.Email)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Save(ctx, user.ID, access); err != nil {
		return nil, err
	}
	return &Token{AccessToken: access, TokenType: pkg.TokenTypeBearer}, nil
}

func (s *AuthService) Logout(ctx context.Context, userID uint64) error {
	return s.sessions.Delete(ctx, userID)
}

// Authenticate 校验 token 与活动会话，并重新加载用户（角色/社区可能已变化）
func (s *AuthService) Authenticate(ctx context.Context, token string) (*model.User, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, err
	}
	active, err := s.sessions.Get(ctx, claims.UserID)
	if err != nil {
		return nil, pkg.ErrUnauthorized
	}
	if active != token {
		return nil, pkg.ErrSessionReplaced
	}
	// 校验通过后更新过期时间
	if err := s.sessions.Extend(ctx, claims.UserID); err != nil {
		s.log.Warn("extend session failed", zap.Uint64("user_id", claims.UserID), zap.Error(err))
	}
	user, err := s.users.FindByID(ctx, claims.UserID)
	if errors.Is(err, pkg.ErrUserNotFound) {
		return nil, pkg.ErrUnauthorized
	}
	return user, err
}

// EnsureAdmin 启动时创建管理员账号；已存在则不做修改
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil
	}
	existing, err := s.users.FindByEmail(ctx, email)
	if err == nil {
		if existing.Role != model.RoleAdministrator {
			s.log.Warn("bootstrap admin email belongs to a non-admin user", zap.Uint64("user_id", existing.ID))
		}
		return nil
	}
	if !errors.Is(err, pkg.ErrUserNotFound) {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	admin := &model.User{Name: "administrator", Email: email, Role: model.RoleAdministrator, Password: string(hash)}
	if err := s.users.Create(ctx, admin); err != nil {
		return err
	}
	s.log.Info("bootstrap administrator created", zap.Uint64("user_id", admin.ID))
	return nil
}
