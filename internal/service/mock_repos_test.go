package service

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/iyasalowaneh-jo/employee-evaluation-system/internal/model"
	"github.com/iyasalowaneh-jo/employee-evaluation-system/internal/repository"
)

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.UserID == "" {
		user.UserID = "user-" + user.Email
	}
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// ── Mock EmployeeRepository ──

// 切片存储保持插入顺序，ListActive 的名册顺序因此稳定，
// 种子可复现性的测试依赖这一点。
type mockEmployeeRepo struct {
	employees []*model.Employee
}

func newMockEmployeeRepo() *mockEmployeeRepo {
	return &mockEmployeeRepo{}
}

func (m *mockEmployeeRepo) Create(_ context.Context, employee *model.Employee) error {
	if employee.EmployeeID == "" {
		employee.EmployeeID = fmt.Sprintf("emp-%03d", len(m.employees)+1)
	}
	m.employees = append(m.employees, employee)
	return nil
}

func (m *mockEmployeeRepo) GetByID(_ context.Context, id string) (*model.Employee, error) {
	for _, e := range m.employees {
		if e.EmployeeID == id {
			return e, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEmployeeRepo) GetByEmail(_ context.Context, email string) (*model.Employee, error) {
	for _, e := range m.employees {
		if e.Email == email {
			return e, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEmployeeRepo) List(_ context.Context, status string) ([]model.Employee, error) {
	var result []model.Employee
	for _, e := range m.employees {
		if status != "" && e.Status != status {
			continue
		}
		result = append(result, *e)
	}
	return result, nil
}

func (m *mockEmployeeRepo) ListActive(_ context.Context) ([]model.Employee, error) {
	var result []model.Employee
	for _, e := range m.employees {
		if e.Status == model.EmployeeStatusActive {
			result = append(result, *e)
		}
	}
	return result, nil
}

func (m *mockEmployeeRepo) Update(_ context.Context, employee *model.Employee) error {
	for i, e := range m.employees {
		if e.EmployeeID == employee.EmployeeID {
			m.employees[i] = employee
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *mockEmployeeRepo) Delete(_ context.Context, id string, _ string) error {
	for i, e := range m.employees {
		if e.EmployeeID == id {
			m.employees = append(m.employees[:i], m.employees[i+1:]...)
			return nil
		}
	}
	return nil
}

// ── Mock DepartmentRepository ──

type mockDepartmentRepo struct {
	departments map[string]*model.Department
}

func newMockDepartmentRepo() *mockDepartmentRepo {
	return &mockDepartmentRepo{departments: make(map[string]*model.Department)}
}

func (m *mockDepartmentRepo) Create(_ context.Context, department *model.Department) error {
	if department.DepartmentID == "" {
		department.DepartmentID = "dept-" + department.Name
	}
	m.departments[department.DepartmentID] = department
	return nil
}

func (m *mockDepartmentRepo) GetByID(_ context.Context, id string) (*model.Department, error) {
	if d, ok := m.departments[id]; ok {
		return d, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDepartmentRepo) GetByName(_ context.Context, name string) (*model.Department, error) {
	for _, d := range m.departments {
		if d.Name == name {
			return d, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDepartmentRepo) List(_ context.Context) ([]model.Department, error) {
	var result []model.Department
	for _, d := range m.departments {
		result = append(result, *d)
	}
	return result, nil
}

// ── Mock CycleRepository ──

type mockCycleRepo struct {
	cycles map[string]*model.EvaluationCycle
}

func newMockCycleRepo() *mockCycleRepo {
	return &mockCycleRepo{cycles: make(map[string]*model.EvaluationCycle)}
}

func (m *mockCycleRepo) Create(_ context.Context, cycle *model.EvaluationCycle) error {
	if cycle.CycleID == "" {
		cycle.CycleID = "cycle-" + cycle.Name
	}
	m.cycles[cycle.CycleID] = cycle
	return nil
}

func (m *mockCycleRepo) GetByID(_ context.Context, id string) (*model.EvaluationCycle, error) {
	if c, ok := m.cycles[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCycleRepo) GetCurrent(_ context.Context) (*model.EvaluationCycle, error) {
	for _, c := range m.cycles {
		if c.IsActive {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCycleRepo) List(_ context.Context) ([]model.EvaluationCycle, error) {
	var result []model.EvaluationCycle
	for _, c := range m.cycles {
		result = append(result, *c)
	}
	return result, nil
}

func (m *mockCycleRepo) Update(_ context.Context, cycle *model.EvaluationCycle) error {
	m.cycles[cycle.CycleID] = cycle
	return nil
}

func (m *mockCycleRepo) ClearActive(_ context.Context) error {
	for _, c := range m.cycles {
		c.IsActive = false
	}
	return nil
}

func (m *mockCycleRepo) MarkAssigned(_ context.Context, cycleID string, at time.Time) (bool, error) {
	c, ok := m.cycles[cycleID]
	if !ok {
		return false, nil
	}
	if c.AssignedAt != nil {
		return false, nil
	}
	c.AssignedAt = &at
	return true, nil
}

// ── Mock AssignmentRepository ──

type mockAssignmentRepo struct {
	assignments []model.Assignment
	signatures  map[string]struct{}
	facets      []model.DiversityFacet

	failCreateBatch bool // 模拟批量写入失败
}

func newMockAssignmentRepo() *mockAssignmentRepo {
	return &mockAssignmentRepo{signatures: make(map[string]struct{})}
}

func (m *mockAssignmentRepo) CreateBatch(_ context.Context, assignments []model.Assignment) error {
	if m.failCreateBatch {
		return fmt.Errorf("模拟写入失败")
	}
	m.assignments = append(m.assignments, assignments...)
	return nil
}

func (m *mockAssignmentRepo) CreateSignatures(_ context.Context, signatures []model.PairingSignature) error {
	for _, s := range signatures {
		m.signatures[s.Signature] = struct{}{}
	}
	return nil
}

func (m *mockAssignmentRepo) CreateFacets(_ context.Context, facets []model.DiversityFacet) error {
	m.facets = append(m.facets, facets...)
	return nil
}

func (m *mockAssignmentRepo) ListByCycle(_ context.Context, cycleID string) ([]model.Assignment, error) {
	var result []model.Assignment
	for _, a := range m.assignments {
		if a.CycleID == cycleID {
			result = append(result, a)
		}
	}
	return result, nil
}

func (m *mockAssignmentRepo) ListByEvaluatorHash(_ context.Context, cycleID, evaluatorHash string) ([]model.Assignment, error) {
	var result []model.Assignment
	for _, a := range m.assignments {
		if a.CycleID == cycleID && a.EvaluatorHash == evaluatorHash {
			result = append(result, a)
		}
	}
	return result, nil
}

func (m *mockAssignmentRepo) CountByCycle(_ context.Context, cycleID string) (int64, error) {
	var count int64
	for _, a := range m.assignments {
		if a.CycleID == cycleID {
			count++
		}
	}
	return count, nil
}

func (m *mockAssignmentRepo) CompleteByToken(_ context.Context, cycleID, subjectID, evaluatorHash string) (bool, error) {
	for i := range m.assignments {
		a := &m.assignments[i]
		if a.CycleID == cycleID && a.SubjectID == subjectID && a.EvaluatorHash == evaluatorHash {
			a.Status = model.AssignmentStatusCompleted
			return true, nil
		}
	}
	return false, nil
}

func (m *mockAssignmentRepo) ListSignatures(_ context.Context) ([]string, error) {
	var result []string
	for s := range m.signatures {
		result = append(result, s)
	}
	return result, nil
}

func (m *mockAssignmentRepo) FacetBuckets(_ context.Context, cycleID, facet string) ([]repository.FacetBucket, error) {
	counts := make(map[string]int64)
	for _, f := range m.facets {
		if f.CycleID != cycleID {
			continue
		}
		switch facet {
		case "department":
			counts[f.DepartmentHash]++
		case "role":
			counts[f.RoleHash]++
		case "is_manager":
			counts[f.ManagerFlagHash]++
		default:
			return nil, fmt.Errorf("未知的多样性维度: %q", facet)
		}
	}
	var buckets []repository.FacetBucket
	for hash, count := range counts {
		buckets = append(buckets, repository.FacetBucket{Hash: hash, Count: count})
	}
	return buckets, nil
}
