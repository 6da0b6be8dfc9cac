package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/iyasalowaneh-jo/employee-evaluation-system/internal/dto"
	"github.com/iyasalowaneh-jo/employee-evaluation-system/internal/model"
	"github.com/iyasalowaneh-jo/employee-evaluation-system/internal/repository"
)

// ── 评价周期模块业务错误 ──

var (
	ErrCycleNotFound    = errors.New("评价周期不存在")
	ErrCycleDateInvalid = errors.New("评价周期结束日期必须晚于开始日期")
	ErrCycleCompleted   = errors.New("评价周期已结束，不可变更")
)

// CycleService 评价周期业务接口
type CycleService interface {
	Create(ctx context.Context, req *dto.CreateCycleRequest, callerID string) (*dto.CycleResponse, error)
	GetByID(ctx context.Context, id string) (*dto.CycleResponse, error)
	GetCurrent(ctx context.Context) (*dto.CycleResponse, error)
	List(ctx context.Context) ([]dto.CycleResponse, error)
	// Activate 激活周期（唯一的"当前周期"），是指派生成的触发入口
	Activate(ctx context.Context, id string, callerID string) error
	Complete(ctx context.Context, id string, callerID string) error
}

type cycleService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewCycleService 创建 CycleService 实例
func NewCycleService(repo *repository.Repository, logger *zap.Logger) CycleService {
	return &cycleService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *cycleService) Create(ctx context.Context, req *dto.CreateCycleRequest, callerID string) (*dto.CycleResponse, error) {
	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return nil, ErrCycleDateInvalid
	}
	endDate, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		return nil, ErrCycleDateInvalid
	}
	if !endDate.After(startDate) {
		return nil, ErrCycleDateInvalid
	}

	cycle := &model.EvaluationCycle{
		Name:      req.Name,
		StartDate: startDate,
		EndDate:   endDate,
		Status:    model.CycleStatusDraft,
		IsActive:  false,
	}
	cycle.CreatedBy = &callerID
	cycle.UpdatedBy = &callerID

	if err := s.repo.Cycle.Create(ctx, cycle); err != nil {
		s.logger.Error("创建评价周期失败", zap.Error(err))
		return nil, err
	}

	return toCycleResponse(cycle), nil
}

// ────────────────────── 查询 ──────────────────────

func (s *cycleService) GetByID(ctx context.Context, id string) (*dto.CycleResponse, error) {
	cycle, err := s.repo.Cycle.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCycleNotFound
		}
		s.logger.Error("查询评价周期失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toCycleResponse(cycle), nil
}

func (s *cycleService) GetCurrent(ctx context.Context) (*dto.CycleResponse, error) {
	cycle, err := s.repo.Cycle.GetCurrent(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCycleNotFound
		}
		s.logger.Error("查询当前评价周期失败", zap.Error(err))
		return nil, err
	}
	return toCycleResponse(cycle), nil
}

func (s *cycleService) List(ctx context.Context) ([]dto.CycleResponse, error) {
	cycles, err := s.repo.Cycle.List(ctx)
	if err != nil {
		s.logger.Error("列出评价周期失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.CycleResponse, 0, len(cycles))
	for i := range cycles {
		result = append(result, *toCycleResponse(&cycles[i]))
	}
	return result, nil
}

// ────────────────────── Activate ──────────────────────

func (s *cycleService) Activate(ctx context.Context, id string, callerID string) error {
	cycle, err := s.repo.Cycle.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCycleNotFound
		}
		s.logger.Error("查询评价周期失败", zap.String("id", id), zap.Error(err))
		return err
	}
	if cycle.Status == model.CycleStatusCompleted {
		return ErrCycleCompleted
	}

	// 使用事务保证 ClearActive + Update 的原子性
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.Error("开启事务失败", zap.Error(err))
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			if tx != nil {
				tx.Rollback()
			}
			panic(r)
		}
	}()

	txRepo := s.repo.WithTx(tx)

	if err := txRepo.Cycle.ClearActive(ctx); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		s.logger.Error("清除当前周期失败", zap.Error(err))
		return err
	}

	cycle.IsActive = true
	cycle.Status = model.CycleStatusActive
	cycle.UpdatedBy = &callerID

	if err := txRepo.Cycle.Update(ctx, cycle); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		s.logger.Error("激活评价周期失败", zap.String("id", id), zap.Error(err))
		return err
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("提交事务失败", zap.Error(err))
			return err
		}
	}

	return nil
}

// ────────────────────── Complete ──────────────────────

func (s *cycleService) Complete(ctx context.Context, id string, callerID string) error {
	cycle, err := s.repo.Cycle.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCycleNotFound
		}
		s.logger.Error("查询评价周期失败", zap.String("id", id), zap.Error(err))
		return err
	}
	if cycle.Status == model.CycleStatusCompleted {
		return ErrCycleCompleted
	}

	cycle.Status = model.CycleStatusCompleted
	cycle.IsActive = false
	cycle.UpdatedBy = &callerID

	if err := s.repo.Cycle.Update(ctx, cycle); err != nil {
		s.logger.Error("结束评价周期失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ── 内部辅助方法 ──

func toCycleResponse(cycle *model.EvaluationCycle) *dto.CycleResponse {
	resp := &dto.CycleResponse{
		ID:        cycle.CycleID,
		Name:      cycle.Name,
		StartDate: cycle.StartDate.Format("2006-01-02"),
		EndDate:   cycle.EndDate.Format("2006-01-02"),
		Status:    cycle.Status,
		IsActive:  cycle.IsActive,
		CreatedAt: cycle.CreatedAt.Format(time.RFC3339),
	}
	if cycle.AssignedAt != nil {
		assignedAt := cycle.AssignedAt.Format(time.RFC3339)
		resp.AssignedAt = &assignedAt
	}
	return resp
}
