package api

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/orbita-learn/orbita-api/internal/domain"
	"github.com/orbita-learn/orbita-api/internal/service"
	"github.com/orbita-learn/orbita-api/internal/service/auth"
)

// MockUserService mocks the service.UserService interface.
type MockUserService struct {
	mock.Mock
}

var _ service.UserService = (*MockUserService)(nil)

func (m *MockUserService) Register(ctx context.Context, email, name, password string) (*domain.User, error) {
	args := m.Called(ctx, email, name, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserService) Authenticate(ctx context.Context, email, password string) (*service.LoginResult, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.LoginResult), args.Error(1)
}

func (m *MockUserService) GetProfile(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserService) SetActiveBadge(ctx context.Context, userID uuid.UUID, badge string) error {
	args := m.Called(ctx, userID, badge)
	return args.Error(0)
}

func (m *MockUserService) GrantItem(ctx context.Context, userID uuid.UUID, itemID string, count int) (*domain.User, error) {
	args := m.Called(ctx, userID, itemID, count)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// MockProgressionService mocks the service.ProgressionService interface.
type MockProgressionService struct {
	mock.Mock
}

var _ service.ProgressionService = (*MockProgressionService)(nil)

func (m *MockProgressionService) ListCourses(ctx context.Context, userID uuid.UUID) ([]service.CourseSummary, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]service.CourseSummary), args.Error(1)
}

func (m *MockProgressionService) GetCourseTree(ctx context.Context, userID, courseID uuid.UUID) (*service.CourseTree, error) {
	args := m.Called(ctx, userID, courseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CourseTree), args.Error(1)
}

func (m *MockProgressionService) GetMission(ctx context.Context, missionID uuid.UUID) (*service.MissionDetail, error) {
	args := m.Called(ctx, missionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.MissionDetail), args.Error(1)
}

func (m *MockProgressionService) SubmitMission(ctx context.Context, userID, missionID uuid.UUID, score int) (*service.SubmitResult, error) {
	args := m.Called(ctx, userID, missionID, score)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SubmitResult), args.Error(1)
}

func (m *MockProgressionService) Reconcile(ctx context.Context, userID, courseID uuid.UUID) error {
	args := m.Called(ctx, userID, courseID)
	return args.Error(0)
}

func (m *MockProgressionService) GetStats(ctx context.Context, userID uuid.UUID) (*service.StatsSummary, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.StatsSummary), args.Error(1)
}

// MockJWTService mocks the auth.JWTService interface.
type MockJWTService struct {
	mock.Mock
}

var _ auth.JWTService = (*MockJWTService)(nil)

func (m *MockJWTService) GenerateToken(ctx context.Context, userID uuid.UUID) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

func (m *MockJWTService) ValidateToken(ctx context.Context, tokenString string) (*auth.Claims, error) {
	args := m.Called(ctx, tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Claims), args.Error(1)
}

func (m *MockJWTService) GenerateRefreshToken(ctx context.Context, userID uuid.UUID) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

func (m *MockJWTService) ValidateRefreshToken(ctx context.Context, tokenString string) (*auth.Claims, error) {
	args := m.Called(ctx, tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Claims), args.Error(1)
}
