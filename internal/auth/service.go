// Package auth implements the demo one-time-passcode sign-in flow.
package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/orbitchat-ai/demo-platform/internal/countries"
	"github.com/orbitchat-ai/demo-platform/internal/middleware"
	"github.com/orbitchat-ai/demo-platform/internal/model"
	"github.com/orbitchat-ai/demo-platform/internal/store"
	"github.com/orbitchat-ai/demo-platform/pkg/logger"
	"github.com/orbitchat-ai/demo-platform/pkg/metrics"
)

// DemoOTP is the fixed code "sent" on every login attempt. There is no
// real delivery channel; the code is returned to the caller for
// display.
const DemoOTP = "000000"

var (
	// ErrInvalidCountry is returned for codes off the allow-list.
	ErrInvalidCountry = errors.New("please select a country")

	// ErrOTPMismatch is returned when the submitted code does not
	// match the issued one. No state is mutated.
	ErrOTPMismatch = errors.New("invalid OTP")
)

// Service runs the two-step login flow against the auth store.
type Service struct {
	store     *store.Auth
	jwtSecret string
	jwtExpiry time.Duration
	logger    *logger.Logger
}

// NewService creates an auth service.
func NewService(authStore *store.Auth, jwtSecret string, jwtExpiry time.Duration, log *logger.Logger) *Service {
	return &Service{
		store:     authStore,
		jwtSecret: jwtSecret,
		jwtExpiry: jwtExpiry,
		logger:    log,
	}
}

// BeginLogin validates the submitted details and issues the demo code.
// Nothing is persisted until verification succeeds.
func (s *Service) BeginLogin(req *model.LoginRequest) (*model.LoginResponse, error) {
	if err := validateDetails(req.Name, req.CountryCode, req.Phone); err != nil {
		return nil, err
	}

	return &model.LoginResponse{
		OTPSent: true,
		DemoOTP: DemoOTP,
	}, nil
}

// Verify compares the submitted code against the issued one. A match
// writes the fully populated profile and returns a session token; a
// mismatch leaves the store untouched.
func (s *Service) Verify(ctx context.Context, req *model.VerifyRequest) (*model.VerifyResponse, error) {
	if err := validateDetails(req.Name, req.CountryCode, req.Phone); err != nil {
		return nil, err
	}
	if err := middleware.ValidateOTPFormat(req.OTP); err != nil {
		return nil, err
	}

	if req.OTP != DemoOTP {
		metrics.LoginsTotal.WithLabelValues("mismatch").Inc()
		return nil, ErrOTPMismatch
	}

	profile := model.Profile{
		Name:        strings.TrimSpace(req.Name),
		Phone:       req.Phone,
		CountryCode: req.CountryCode,
		OTP:         req.OTP,
	}
	s.store.SetProfile(ctx, profile)

	token, err := s.issueToken(profile)
	if err != nil {
		return nil, err
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()

	stored := s.store.Profile()
	return &model.VerifyResponse{
		Token:   token,
		Profile: stored,
	}, nil
}

// Logout destroys the profile wholesale.
func (s *Service) Logout(ctx context.Context) {
	s.store.Logout(ctx)
}

// UpdateProfile rewrites name and phone from the settings screen.
func (s *Service) UpdateProfile(ctx context.Context, req *model.UpdateProfileRequest) (*model.Profile, error) {
	if err := middleware.ValidateName(req.Name); err != nil {
		return nil, err
	}
	if err := middleware.ValidatePhone(req.Phone); err != nil {
		return nil, err
	}

	if err := s.store.UpdateProfile(ctx, strings.TrimSpace(req.Name), req.Phone); err != nil {
		return nil, err
	}
	return s.store.Profile(), nil
}

func (s *Service) issueToken(p model.Profile) (string, error) {
	now := time.Now()
	claims := middleware.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.Phone,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtExpiry)),
		},
		Name: p.Name,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

func validateDetails(name, countryCode, phone string) error {
	if err := middleware.ValidateName(name); err != nil {
		return err
	}
	if !countries.IsAllowed(countryCode) {
		return ErrInvalidCountry
	}
	return middleware.ValidatePhone(phone)
}
