package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/iyasalowaneh-jo/employee-evaluation-system/internal/model"
)

// CycleRepository 评价周期数据访问接口
type CycleRepository interface {
	Create(ctx context.Context, cycle *model.EvaluationCycle) error
	GetByID(ctx context.Context, id string) (*model.EvaluationCycle, error)
	GetCurrent(ctx context.Context) (*model.EvaluationCycle, error)
	List(ctx context.Context) ([]model.EvaluationCycle, error)
	Update(ctx context.Context, cycle *model.EvaluationCycle) error
	ClearActive(ctx context.Context) error
	// MarkAssigned 抢占"已生成指派"标记
	// 仅当 assigned_at 仍为空时写入；返回 false 表示标记已被占用，
	// 即该周期已生成过指派（或另一并发批次先到）。必须在指派批次的
	// 提交事务内调用，标记与批次数据同生共死。
	MarkAssigned(ctx context.Context, cycleID string, at time.Time) (bool, error)
}

type cycleRepo struct {
	db *gorm.DB
}

// NewCycleRepo 创建 CycleRepository 实例
func NewCycleRepo(db *gorm.DB) CycleRepository {
	return &cycleRepo{db: db}
}

func (r *cycleRepo) Create(ctx context.Context, cycle *model.EvaluationCycle) error {
	return r.db.WithContext(ctx).Create(cycle).Error
}

func (r *cycleRepo) GetByID(ctx context.Context, id string) (*model.EvaluationCycle, error) {
	var c model.EvaluationCycle
	err := r.db.WithContext(ctx).Where("cycle_id = ?", id).First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *cycleRepo) GetCurrent(ctx context.Context) (*model.EvaluationCycle, error) {
	var c model.EvaluationCycle
	err := r.db.WithContext(ctx).Where("is_active = ?", true).First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *cycleRepo) List(ctx context.Context) ([]model.EvaluationCycle, error) {
	var cycles []model.EvaluationCycle
	err := r.db.WithContext(ctx).Order("start_date DESC").Find(&cycles).Error
	return cycles, err
}

func (r *cycleRepo) Update(ctx context.Context, cycle *model.EvaluationCycle) error {
	return r.db.WithContext(ctx).Save(cycle).Error
}

func (r *cycleRepo) ClearActive(ctx context.Context) error {
	return r.db.WithContext(ctx).
		Model(&model.EvaluationCycle{}).
		Where("is_active = ?", true).
		Update("is_active", false).Error
}

func (r *cycleRepo) MarkAssigned(ctx context.Context, cycleID string, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.EvaluationCycle{}).
		Where("cycle_id = ? AND assigned_at IS NULL", cycleID).
		Update("assigned_at", at)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
