//go:build integration

package repository_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/iyasalowaneh-jo/employee-evaluation-system/internal/model"
	"github.com/iyasalowaneh-jo/employee-evaluation-system/internal/repository"
)

// ═══════════════════════════════════════════════════════════
// Test Setup
// ═══════════════════════════════════════════════════════════

var testDB *gorm.DB

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		dsn = "host=localhost port=5433 user=eval password=eval_password dbname=eval_test sslmode=disable TimeZone=UTC"
	}

	var err error
	testDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "无法连接测试数据库: %v\n", err)
		os.Exit(1)
	}

	// 自动迁移测试表结构
	err = testDB.AutoMigrate(
		&model.Department{},
		&model.Employee{},
		&model.User{},
		&model.EvaluationCycle{},
		&model.Assignment{},
		&model.PairingSignature{},
		&model.DiversityFacet{},
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "AutoMigrate 失败: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()
	os.Exit(code)
}

// setupTestData 创建基础测试数据并返回清理函数
func setupTestData(t *testing.T) (dept *model.Department, employees []*model.Employee, cycle *model.EvaluationCycle, cleanup func()) {
	t.Helper()
	ctx := context.Background()
	stamp := time.Now().UnixNano()

	dept = &model.Department{
		Name:     fmt.Sprintf("测试部门-%d", stamp),
		IsActive: true,
	}
	if err := testDB.WithContext(ctx).Create(dept).Error; err != nil {
		t.Fatalf("创建部门失败: %v", err)
	}

	for i := 0; i < 3; i++ {
		e := &model.Employee{
			FullName:     fmt.Sprintf("测试员工%d", i+1),
			Email:        fmt.Sprintf("it%d-%d@corp.example", i+1, stamp),
			DepartmentID: dept.DepartmentID,
			Role:         "工程师",
			Status:       model.EmployeeStatusActive,
		}
		if err := testDB.WithContext(ctx).Create(e).Error; err != nil {
			t.Fatalf("创建员工失败: %v", err)
		}
		employees = append(employees, e)
	}

	cycle = &model.EvaluationCycle{
		Name:      fmt.Sprintf("测试周期-%d", stamp),
		StartDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC),
		Status:    model.CycleStatusActive,
	}
	if err := testDB.WithContext(ctx).Create(cycle).Error; err != nil {
		t.Fatalf("创建周期失败: %v", err)
	}

	cleanup = func() {
		testDB.Unscoped().Where("cycle_id = ?", cycle.CycleID).Delete(&model.DiversityFacet{})
		testDB.Unscoped().Where("cycle_id = ?", cycle.CycleID).Delete(&model.PairingSignature{})
		testDB.Unscoped().Where("cycle_id = ?", cycle.CycleID).Delete(&model.Assignment{})
		testDB.Unscoped().Where("cycle_id = ?", cycle.CycleID).Delete(&model.EvaluationCycle{})
		for _, e := range employees {
			testDB.Unscoped().Where("employee_id = ?", e.EmployeeID).Delete(&model.Employee{})
		}
		testDB.Unscoped().Where("department_id = ?", dept.DepartmentID).Delete(&model.Department{})
	}
	return
}

func fakeHash(seed string) string {
	// 64 位十六进制占位哈希，长度与真实令牌一致
	h := make([]byte, 0, 64)
	for len(h) < 64 {
		h = append(h, seed...)
	}
	return string(h[:64])
}

// ═══════════════════════════════════════════════════════════
// 批次事务原子性
// ═══════════════════════════════════════════════════════════

func TestAssignmentBatch_CommitAtomic(t *testing.T) {
	_, employees, cycle, cleanup := setupTestData(t)
	defer cleanup()

	ctx := context.Background()
	repo := repository.NewRepository(testDB)

	tx, err := repo.BeginTx(ctx)
	if err != nil {
		t.Fatalf("BeginTx 失败: %v", err)
	}
	txRepo := repo.WithTx(tx)

	marked, err := txRepo.Cycle.MarkAssigned(ctx, cycle.CycleID, time.Now())
	if err != nil || !marked {
		tx.Rollback()
		t.Fatalf("MarkAssigned 失败: marked=%v err=%v", marked, err)
	}

	assignments := []model.Assignment{
		{CycleID: cycle.CycleID, SubjectID: employees[0].EmployeeID, EvaluatorHash: fakeHash("a1"), Status: model.AssignmentStatusPending},
		{CycleID: cycle.CycleID, SubjectID: employees[1].EmployeeID, EvaluatorHash: fakeHash("b2"), Status: model.AssignmentStatusPending},
	}
	if err := txRepo.Assignment.CreateBatch(ctx, assignments); err != nil {
		tx.Rollback()
		t.Fatalf("CreateBatch 失败: %v", err)
	}
	if err := tx.Commit().Error; err != nil {
		t.Fatalf("Commit 失败: %v", err)
	}

	count, err := repo.Assignment.CountByCycle(ctx, cycle.CycleID)
	if err != nil {
		t.Fatalf("CountByCycle 失败: %v", err)
	}
	if count != 2 {
		t.Errorf("期望 2 条指派，实际 %d", count)
	}
}

func TestAssignmentBatch_RollbackLeavesNothing(t *testing.T) {
	_, employees, cycle, cleanup := setupTestData(t)
	defer cleanup()

	ctx := context.Background()
	repo := repository.NewRepository(testDB)

	tx, err := repo.BeginTx(ctx)
	if err != nil {
		t.Fatalf("BeginTx 失败: %v", err)
	}
	txRepo := repo.WithTx(tx)

	if _, err := txRepo.Cycle.MarkAssigned(ctx, cycle.CycleID, time.Now()); err != nil {
		tx.Rollback()
		t.Fatalf("MarkAssigned 失败: %v", err)
	}
	assignments := []model.Assignment{
		{CycleID: cycle.CycleID, SubjectID: employees[0].EmployeeID, EvaluatorHash: fakeHash("c3"), Status: model.AssignmentStatusPending},
	}
	if err := txRepo.Assignment.CreateBatch(ctx, assignments); err != nil {
		tx.Rollback()
		t.Fatalf("CreateBatch 失败: %v", err)
	}

	tx.Rollback()

	// 回滚后指派与标记都不存在
	count, err := repo.Assignment.CountByCycle(ctx, cycle.CycleID)
	if err != nil {
		t.Fatalf("CountByCycle 失败: %v", err)
	}
	if count != 0 {
		t.Errorf("回滚后不应有指派残留，实际 %d", count)
	}

	fresh, err := repo.Cycle.GetByID(ctx, cycle.CycleID)
	if err != nil {
		t.Fatalf("GetByID 失败: %v", err)
	}
	if fresh.AssignedAt != nil {
		t.Error("回滚后 assigned_at 标记不应保留")
	}
}

// ═══════════════════════════════════════════════════════════
// 唯一约束与标记抢占
// ═══════════════════════════════════════════════════════════

func TestAssignment_UniqueConstraint(t *testing.T) {
	_, employees, cycle, cleanup := setupTestData(t)
	defer cleanup()

	ctx := context.Background()
	repo := repository.NewRepository(testDB)

	row := []model.Assignment{
		{CycleID: cycle.CycleID, SubjectID: employees[0].EmployeeID, EvaluatorHash: fakeHash("d4"), Status: model.AssignmentStatusPending},
	}
	if err := repo.Assignment.CreateBatch(ctx, row); err != nil {
		t.Fatalf("首次写入失败: %v", err)
	}

	dup := []model.Assignment{
		{CycleID: cycle.CycleID, SubjectID: employees[0].EmployeeID, EvaluatorHash: fakeHash("d4"), Status: model.AssignmentStatusPending},
	}
	if err := repo.Assignment.CreateBatch(ctx, dup); err == nil {
		t.Error("同 (周期, 被评价人, 评价人令牌) 重复写入应违反唯一约束")
	}
}

func TestCycle_MarkAssignedOnlyOnce(t *testing.T) {
	_, _, cycle, cleanup := setupTestData(t)
	defer cleanup()

	ctx := context.Background()
	repo := repository.NewRepository(testDB)

	first, err := repo.Cycle.MarkAssigned(ctx, cycle.CycleID, time.Now())
	if err != nil {
		t.Fatalf("首次 MarkAssigned 失败: %v", err)
	}
	if !first {
		t.Fatal("首次 MarkAssigned 应成功抢占")
	}

	second, err := repo.Cycle.MarkAssigned(ctx, cycle.CycleID, time.Now())
	if err != nil {
		t.Fatalf("二次 MarkAssigned 失败: %v", err)
	}
	if second {
		t.Error("标记已占用时 MarkAssigned 应返回 false")
	}
}

// ═══════════════════════════════════════════════════════════
// 配对签名幂等写入
// ═══════════════════════════════════════════════════════════

func TestPairingSignature_ConflictIgnored(t *testing.T) {
	_, _, cycle, cleanup := setupTestData(t)
	defer cleanup()

	ctx := context.Background()
	repo := repository.NewRepository(testDB)

	sig := []model.PairingSignature{{Signature: fakeHash("e5"), CycleID: cycle.CycleID}}
	if err := repo.Assignment.CreateSignatures(ctx, sig); err != nil {
		t.Fatalf("首次写入签名失败: %v", err)
	}
	// 同一签名再次出现（关闭避重的场景）按已存在处理
	if err := repo.Assignment.CreateSignatures(ctx, sig); err != nil {
		t.Errorf("重复签名应被忽略而非报错: %v", err)
	}

	signatures, err := repo.Assignment.ListSignatures(ctx)
	if err != nil {
		t.Fatalf("ListSignatures 失败: %v", err)
	}
	seen := 0
	for _, s := range signatures {
		if s == fakeHash("e5") {
			seen++
		}
	}
	if seen != 1 {
		t.Errorf("同一签名应只存一行，实际 %d", seen)
	}
}
