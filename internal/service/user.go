package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"imagegate/internal/database/mongodb/model"
	"imagegate/internal/dto"
	cErr "imagegate/internal/pkg/error"
	"imagegate/internal/telemetry"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
)

type UserService struct {
	trace     *telemetry.Trace
	userStore UserStore
	now       func() time.Time
}

func NewUserService(trace *telemetry.Trace, userStore UserStore) *UserService {
	return &UserService{trace: trace, userStore: userStore, now: time.Now}
}

// Identify 有帶 guid 且存在時沿用，否則建立新的匿名使用者
func (s *UserService) Identify(ctx context.Context, req *dto.IdentifyUserDto) (*dto.UserResponseDto, error) {
	ctx, _, end := s.trace.WithSpan(ctx)
	defer end(nil)

	if guid := strings.TrimSpace(req.GUID); guid != "" {
		user, err := s.userStore.GetByGUID(ctx, guid)
		if err == nil {
			return &dto.UserResponseDto{GUID: user.GUID}, nil
		}
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return nil, cErr.DatabaseError("database GetByGUID user error")
		}
	}

	created, err := s.userStore.Create(ctx, &model.User{
		GUID:      uuid.NewString(),
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		return nil, cErr.DatabaseError("database Create user error")
	}
	return &dto.UserResponseDto{GUID: created.GUID}, nil
}

// Verify guid 不存在時回傳 NotFound
func (s *UserService) Verify(ctx context.Context, req *dto.VerifyUserDto) (*dto.UserResponseDto, error) {
	ctx, _, end := s.trace.WithSpan(ctx)
	defer end(nil)

	user, err := s.userStore.GetByGUID(ctx, req.GUID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, cErr.NotFound("user not found")
		}
		return nil, cErr.DatabaseError("database GetByGUID user error")
	}
	return &dto.UserResponseDto{GUID: user.GUID}, nil
}
