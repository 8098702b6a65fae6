package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rein-lin153/CableWeb/internal/entity"
	"github.com/rein-lin153/CableWeb/internal/middleware"
	"github.com/rein-lin153/CableWeb/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthService 注册/登录/注销
type AuthService struct {
	userRepo  *repository.UserRepository
	rdb       *redis.Client
	jwtSecret string
	tokenTTL  time.Duration
}

func NewAuthService(userRepo *repository.UserRepository, rdb *redis.Client, jwtSecret string, tokenTTL time.Duration) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		rdb:       rdb,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
	}
}

// RegisterInput 注册参数
type RegisterInput struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=6"`
	Username    string `json:"username"`
	CompanyName string `json:"company_name"`
}

// Register 注册新用户，邮箱小写归一后唯一
func (s *AuthService) Register(in RegisterInput) (*entity.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if _, err := s.userRepo.GetByEmail(email); err == nil {
		return nil, fmt.Errorf("邮箱已注册: %w", ErrConflict)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("生成密码哈希失败: %w", err)
	}

	user := &entity.User{
		Email:          email,
		HashedPassword: string(hash),
		Username:       in.Username,
		CompanyName:    in.CompanyName,
		Role:           entity.RoleUser,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, fmt.Errorf("创建用户失败: %w", err)
	}
	return user, nil
}

// Login 校验密码并签发 JWT。邮箱不存在和密码错误返回同一个错误，
// 不给枚举邮箱的机会。
func (s *AuthService) Login(email, password string) (string, *entity.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, fmt.Errorf("邮箱或密码错误: %w", ErrPermissionDenied)
		}
		return "", nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)) != nil {
		return "", nil, fmt.Errorf("邮箱或密码错误: %w", ErrPermissionDenied)
	}
	if !user.IsActive {
		return "", nil, fmt.Errorf("账号已停用: %w", ErrPermissionDenied)
	}

	now := time.Now()
	claims := middleware.JWTClaims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", nil, fmt.Errorf("签发令牌失败: %w", err)
	}
	return token, user, nil
}

// Logout 把令牌加入黑名单，TTL 取令牌剩余有效期
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if s.rdb == nil || token == "" {
		return nil
	}

	ttl := s.tokenTTL
	parsed, _, err := jwt.NewParser().ParseUnverified(token, &middleware.JWTClaims{})
	if err == nil {
		if claims, ok := parsed.Claims.(*middleware.JWTClaims); ok && claims.ExpiresAt != nil {
			if remain := time.Until(claims.ExpiresAt.Time); remain > 0 {
				ttl = remain
			}
		}
	}

	if err := s.rdb.Set(ctx, middleware.BlocklistKeyPrefix+token, "1", ttl).Err(); err != nil {
		return fmt.Errorf("注销令牌失败: %w", err)
	}
	return nil
}

// Me 当前用户信息
func (s *AuthService) Me(userID string) (*entity.User, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}
