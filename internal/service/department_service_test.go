package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/iyasalowaneh-jo/employee-evaluation-system/internal/dto"
	"github.com/iyasalowaneh-jo/employee-evaluation-system/internal/repository"
)

func setupTestDepartmentService() DepartmentService {
	repo := &repository.Repository{
		User:       newMockUserRepo(),
		Employee:   newMockEmployeeRepo(),
		Department: newMockDepartmentRepo(),
		Cycle:      newMockCycleRepo(),
		Assignment: newMockAssignmentRepo(),
	}
	return NewDepartmentService(repo, zap.NewNop())
}

func TestDepartmentService_Create_Success(t *testing.T) {
	svc := setupTestDepartmentService()

	result, err := svc.Create(context.Background(), &dto.CreateDepartmentRequest{
		Name:        "工程部",
		Description: "产品研发",
	}, "admin-001")
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if result.Name != "工程部" {
		t.Errorf("期望Name=工程部，实际=%s", result.Name)
	}
	if !result.IsActive {
		t.Error("新部门应默认启用")
	}
}

func TestDepartmentService_Create_DuplicateName(t *testing.T) {
	svc := setupTestDepartmentService()

	req := &dto.CreateDepartmentRequest{Name: "工程部"}
	if _, err := svc.Create(context.Background(), req, "admin-001"); err != nil {
		t.Fatalf("首次 Create 应成功: %v", err)
	}

	_, err := svc.Create(context.Background(), req, "admin-001")
	if !errors.Is(err, ErrDepartmentNameTaken) {
		t.Errorf("期望 ErrDepartmentNameTaken，实际: %v", err)
	}
}

func TestDepartmentService_List(t *testing.T) {
	svc := setupTestDepartmentService()
	ctx := context.Background()

	for _, name := range []string{"工程部", "市场部"} {
		if _, err := svc.Create(ctx, &dto.CreateDepartmentRequest{Name: name}, "admin-001"); err != nil {
			t.Fatalf("Create 应成功: %v", err)
		}
	}

	result, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if len(result) != 2 {
		t.Errorf("期望 2 个部门，实际 %d", len(result))
	}
}
