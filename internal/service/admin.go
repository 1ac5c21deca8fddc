package service

import (
	"context"
	"crypto/subtle"
	"fmt"
	"time"

	"imagegate/config"
	"imagegate/internal/core"
	"imagegate/internal/dto"
	cErr "imagegate/internal/pkg/error"
	"imagegate/internal/telemetry"

	"github.com/golang-jwt/jwt/v4"
)

const (
	recentActivityWindow = 7 * 24 * time.Hour
	adminTokenTTL        = 12 * time.Hour
)

type AdminService struct {
	trace       *telemetry.Trace
	adminSecret string
	imageStore  ImageStore
	userStore   UserStore
	now         func() time.Time
}

func NewAdminService(trace *telemetry.Trace, conf *config.Configuration, imageStore ImageStore, userStore UserStore) *AdminService {
	return &AdminService{
		trace:       trace,
		adminSecret: conf.App.AdminSecret,
		imageStore:  imageStore,
		userStore:   userStore,
		now:         time.Now,
	}
}

// Authenticate 接受共用密鑰本身，或 Login 簽發且未過期的 token
func (s *AdminService) Authenticate(token string) bool {
	if s.adminSecret == "" || token == "" {
		return false
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(s.adminSecret)) == 1 {
		return true
	}
	return s.verifyToken(token) == nil
}

func (s *AdminService) Login(ctx context.Context, req *dto.AdminLoginDto) (*dto.AdminLoginResponseDto, error) {
	_, _, end := s.trace.WithSpan(ctx)
	defer end(nil)

	if s.adminSecret == "" || subtle.ConstantTimeCompare([]byte(req.Password), []byte(s.adminSecret)) != 1 {
		return nil, cErr.Unauthorized("invalid admin password")
	}
	token, expiresAt, err := s.issueToken()
	if err != nil {
		return nil, cErr.InternalServer("issue admin token error")
	}
	return &dto.AdminLoginResponseDto{
		Token:     token,
		ExpiresAt: expiresAt,
		Message:   "Admin authenticated successfully",
	}, nil
}

func (s *AdminService) issueToken() (string, time.Time, error) {
	now := s.now().UTC()
	expiresAt := now.Add(adminTokenTTL)
	claims := core.AdminClaims{
		Role: core.AdminRole,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   core.AdminRole,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.adminSecret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// 過期以注入的時鐘判斷，不走 jwt 套件的全域 TimeFunc
func (s *AdminService) verifyToken(raw string) error {
	claims := &core.AdminClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(s.adminSecret), nil
	}, jwt.WithoutClaimsValidation())
	if err != nil {
		return err
	}
	if claims.Role != core.AdminRole {
		return fmt.Errorf("unexpected role %q", claims.Role)
	}
	if !claims.VerifyExpiresAt(s.now(), true) {
		return fmt.Errorf("admin token expired")
	}
	return nil
}

// Stats 全部與最近 7 天的使用者、圖片數
func (s *AdminService) Stats(ctx context.Context) (*dto.AdminStatsResponseDto, error) {
	ctx, _, end := s.trace.WithSpan(ctx)
	defer end(nil)

	weekAgo := s.now().UTC().Add(-recentActivityWindow)
	var (
		resp dto.AdminStatsResponseDto
		err  error
	)
	if resp.TotalUsers, err = s.userStore.Count(ctx, time.Time{}); err != nil {
		return nil, cErr.DatabaseError("database Count user error")
	}
	if resp.TotalImages, err = s.imageStore.Count(ctx, time.Time{}); err != nil {
		return nil, cErr.DatabaseError("database Count image error")
	}
	if resp.RecentUsers, err = s.userStore.Count(ctx, weekAgo); err != nil {
		return nil, cErr.DatabaseError("database Count user error")
	}
	if resp.RecentImages, err = s.imageStore.Count(ctx, weekAgo); err != nil {
		return nil, cErr.DatabaseError("database Count image error")
	}
	return &resp, nil
}
