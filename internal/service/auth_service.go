package service

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/sublimes-drive/drive-core/internal/model"
)

var (
	ErrUserExists         = errors.New("username or email already taken")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// AuthService 注册/登录与令牌签发
type AuthService interface {
	Register(ctx context.Context, username, email, password string) (*model.User, error)
	Login(ctx context.Context, email, password string) (string, *model.User, error)
}

type authService struct {
	db         *gorm.DB
	jwtSecret  []byte
	expireHour int
}

func NewAuthService(db *gorm.DB, jwtSecret string, expireHour int) AuthService {
	return &authService{db: db, jwtSecret: []byte(jwtSecret), expireHour: expireHour}
}

func (s *authService) Register(ctx context.Context, username, email, password string) (*model.User, error) {
	var cnt int64
	if err := s.db.WithContext(ctx).Model(&model.User{}).
		Where("username = ? OR email = ?", username, email).
		Count(&cnt).Error; err != nil {
		return nil, err
	}
	if cnt > 0 {
		return nil, ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := &model.User{
		ID:       uuid.New().String(),
		Username: username,
		Email:    email,
		Password: string(hash),
	}
	if err := s.db.WithContext(ctx).Create(u).Error; err != nil {
		return nil, err
	}
	return u, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	var u model.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) != nil {
		return "", nil, ErrInvalidCredentials
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   u.ID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(s.expireHour) * time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", nil, err
	}
	return token, &u, nil
}
