package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/iyasalowaneh-jo/employee-evaluation-system/internal/dto"
	"github.com/iyasalowaneh-jo/employee-evaluation-system/internal/model"
	"github.com/iyasalowaneh-jo/employee-evaluation-system/internal/repository"
)

var ErrDepartmentNameTaken = errors.New("部门名称已存在")

// DepartmentService 部门业务接口
type DepartmentService interface {
	Create(ctx context.Context, req *dto.CreateDepartmentRequest, callerID string) (*dto.DepartmentResponse, error)
	List(ctx context.Context) ([]dto.DepartmentResponse, error)
}

type departmentService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewDepartmentService 创建 DepartmentService 实例
func NewDepartmentService(repo *repository.Repository, logger *zap.Logger) DepartmentService {
	return &departmentService{repo: repo, logger: logger}
}

func (s *departmentService) Create(ctx context.Context, req *dto.CreateDepartmentRequest, callerID string) (*dto.DepartmentResponse, error) {
	if _, err := s.repo.Department.GetByName(ctx, req.Name); err == nil {
		return nil, ErrDepartmentNameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询部门失败", zap.Error(err))
		return nil, err
	}

	department := &model.Department{
		Name:        req.Name,
		Description: req.Description,
		IsActive:    true,
	}
	department.CreatedBy = &callerID
	department.UpdatedBy = &callerID

	if err := s.repo.Department.Create(ctx, department); err != nil {
		s.logger.Error("创建部门失败", zap.Error(err))
		return nil, err
	}

	return toDepartmentResponse(department), nil
}

func (s *departmentService) List(ctx context.Context) ([]dto.DepartmentResponse, error) {
	departments, err := s.repo.Department.List(ctx)
	if err != nil {
		s.logger.Error("列出部门失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.DepartmentResponse, 0, len(departments))
	for i := range departments {
		result = append(result, *toDepartmentResponse(&departments[i]))
	}
	return result, nil
}

func toDepartmentResponse(department *model.Department) *dto.DepartmentResponse {
	return &dto.DepartmentResponse{
		ID:          department.DepartmentID,
		Name:        department.Name,
		Description: department.Description,
		IsActive:    department.IsActive,
	}
}
