package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"scp/internal/apierror"
	"scp/internal/config"
	"scp/internal/dto"
	"scp/internal/identity"
	"scp/internal/model"
	"scp/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error)
	RegisterConsumer(ctx context.Context, req dto.RegisterConsumerRequest) (*dto.RegisterConsumerResponse, error)
	Me(ctx context.Context, actor *identity.Actor) (*dto.MeResponse, error)
}

type authService struct {
	repo repository.UserRepository
	cfg  *config.Config
}

func NewAuthService(repo repository.UserRepository, cfg *config.Config) AuthService {
	return &authService{repo: repo, cfg: cfg}
}

// Login accepts either email or username as identifier. Failures are
// deliberately indistinguishable.
func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	var user *model.User
	var err error
	if strings.Contains(req.Identifier, "@") {
		user, err = s.repo.FindByEmail(ctx, req.Identifier)
	} else {
		user, err = s.repo.FindByUsername(ctx, req.Identifier)
	}
	if err != nil {
		return nil, errors.New("invalid credentials")
	}
	if !user.Active {
		return nil, errors.New("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, errors.New("invalid credentials")
	}
	return s.tokenPair(user)
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error) {
	token, err := jwt.Parse(refreshToken, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("refresh token invalid or expired")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("malformed token")
	}
	userIDStr, ok := claims["user_id"].(string)
	if !ok {
		return nil, errors.New("malformed token")
	}
	uid, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, errors.New("malformed token")
	}

	user, err := s.repo.FindByID(ctx, uid)
	if err != nil || !user.Active {
		return nil, errors.New("user not found or inactive")
	}
	return s.tokenPair(user)
}

// RegisterConsumer creates the account and the consumer profile together.
// Supplier staff accounts are provisioned by the platform, not through
// self-registration.
func (s *authService) RegisterConsumer(ctx context.Context, req dto.RegisterConsumerRequest) (*dto.RegisterConsumerResponse, error) {
	if _, err := s.repo.FindByEmail(ctx, req.Email); err == nil {
		return nil, apierror.Conflict("email already registered", "")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), 12)
	if err != nil {
		return nil, err
	}
	user := &model.User{
		Email:        req.Email,
		Username:     req.Username,
		PasswordHash: string(hash),
		UserType:     "consumer",
		Active:       true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	profile := &model.ConsumerProfile{
		UserID:       user.ID,
		BusinessName: req.BusinessName,
		BusinessType: req.BusinessType,
		Address:      req.Address,
		City:         req.City,
	}
	if err := s.repo.CreateConsumer(ctx, profile); err != nil {
		return nil, err
	}

	accessToken, err := s.generateToken(user, time.Duration(s.cfg.JWTExpirationHours)*time.Hour)
	if err != nil {
		return nil, err
	}

	return &dto.RegisterConsumerResponse{
		User:        userToResponse(user),
		AccessToken: accessToken,
		Consumer: dto.ConsumerResponse{
			ID:           profile.ID.String(),
			BusinessName: profile.BusinessName,
			BusinessType: profile.BusinessType,
			Address:      profile.Address,
			City:         profile.City,
		},
	}, nil
}

func (s *authService) Me(ctx context.Context, actor *identity.Actor) (*dto.MeResponse, error) {
	user, err := s.repo.FindByID(ctx, actor.UserID)
	if err != nil {
		return nil, apierror.NotFound("user not found")
	}

	resp := &dto.MeResponse{
		UserResponse: userToResponse(user),
		ActorKind:    actor.Kind.String(),
	}
	if actor.Consumer != nil {
		id := actor.Consumer.ID.String()
		resp.ConsumerID = &id
		resp.BusinessName = &actor.Consumer.BusinessName
	}
	if actor.Staff != nil {
		sid := actor.Staff.SupplierID.String()
		role := string(actor.Staff.Role)
		resp.SupplierID = &sid
		resp.StaffRole = &role
	}
	return resp, nil
}

func (s *authService) tokenPair(user *model.User) (*dto.LoginResponse, error) {
	accessToken, err := s.generateToken(user, time.Duration(s.cfg.JWTExpirationHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.generateToken(user, time.Duration(s.cfg.JWTRefreshHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
		ExpiresIn:    s.cfg.JWTExpirationHours * 3600,
		User:         userToResponse(user),
	}, nil
}

func (s *authService) generateToken(user *model.User, duration time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"user_id":  user.ID.String(),
		"username": user.Username,
		"exp":      time.Now().Add(duration).Unix(),
		"iat":      time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func userToResponse(u *model.User) dto.UserResponse {
	return dto.UserResponse{
		ID:         u.ID.String(),
		Email:      u.Email,
		Username:   u.Username,
		UserType:   u.UserType,
		Phone:      u.Phone,
		IsVerified: u.IsVerified,
	}
}
