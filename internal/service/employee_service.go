package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/iyasalowaneh-jo/employee-evaluation-system/internal/dto"
	"github.com/iyasalowaneh-jo/employee-evaluation-system/internal/model"
	"github.com/iyasalowaneh-jo/employee-evaluation-system/internal/repository"
)

// ── 员工模块业务错误 ──

var (
	ErrEmployeeNotFound   = errors.New("员工不存在")
	ErrEmployeeEmailTaken = errors.New("邮箱已被占用")
	ErrDepartmentNotFound = errors.New("部门不存在")
	ErrImportNoData       = errors.New("导入文件没有数据行")
	ErrImportBadHeader    = errors.New("导入文件缺少必需的表头列")
)

// EmployeeService 员工名册业务接口
// 对指派核心而言名册是只读输入；本模块是供人事协作方使用的管理面。
type EmployeeService interface {
	Create(ctx context.Context, req *dto.CreateEmployeeRequest, callerID string) (*dto.EmployeeResponse, error)
	GetByID(ctx context.Context, id string) (*dto.EmployeeResponse, error)
	List(ctx context.Context, status string) ([]dto.EmployeeResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateEmployeeRequest, callerID string) (*dto.EmployeeResponse, error)
	ParseImportFile(reader io.Reader) ([]ImportEmployeeRow, error)
	ImportEmployees(ctx context.Context, rows []ImportEmployeeRow, callerID string) (*dto.ImportEmployeeResponse, error)
}

// ImportEmployeeRow Excel 导入解析后的单行数据
type ImportEmployeeRow struct {
	Row            int
	FullName       string
	Email          string
	DepartmentName string
	Role           string
	ManagerEmail   string
}

type employeeService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewEmployeeService 创建 EmployeeService 实例
func NewEmployeeService(repo *repository.Repository, logger *zap.Logger) EmployeeService {
	return &employeeService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *employeeService) Create(ctx context.Context, req *dto.CreateEmployeeRequest, callerID string) (*dto.EmployeeResponse, error) {
	if _, err := s.repo.Department.GetByID(ctx, req.DepartmentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDepartmentNotFound
		}
		s.logger.Error("查询部门失败", zap.Error(err))
		return nil, err
	}

	if _, err := s.repo.Employee.GetByEmail(ctx, req.Email); err == nil {
		return nil, ErrEmployeeEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询员工失败", zap.Error(err))
		return nil, err
	}

	employee := &model.Employee{
		FullName:     req.FullName,
		Email:        strings.ToLower(req.Email),
		DepartmentID: req.DepartmentID,
		Role:         req.Role,
		ManagerID:    req.ManagerID,
		Status:       model.EmployeeStatusActive,
	}
	employee.CreatedBy = &callerID
	employee.UpdatedBy = &callerID

	if err := s.repo.Employee.Create(ctx, employee); err != nil {
		s.logger.Error("创建员工失败", zap.Error(err))
		return nil, err
	}

	return s.toEmployeeResponse(ctx, employee), nil
}

// ────────────────────── 查询 ──────────────────────

func (s *employeeService) GetByID(ctx context.Context, id string) (*dto.EmployeeResponse, error) {
	employee, err := s.repo.Employee.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmployeeNotFound
		}
		s.logger.Error("查询员工失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return s.toEmployeeResponse(ctx, employee), nil
}

func (s *employeeService) List(ctx context.Context, status string) ([]dto.EmployeeResponse, error) {
	employees, err := s.repo.Employee.List(ctx, status)
	if err != nil {
		s.logger.Error("列出员工失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.EmployeeResponse, 0, len(employees))
	for i := range employees {
		result = append(result, *s.toEmployeeResponse(ctx, &employees[i]))
	}
	return result, nil
}

// ────────────────────── Update ──────────────────────

func (s *employeeService) Update(ctx context.Context, id string, req *dto.UpdateEmployeeRequest, callerID string) (*dto.EmployeeResponse, error) {
	employee, err := s.repo.Employee.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmployeeNotFound
		}
		s.logger.Error("查询员工失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if req.DepartmentID != nil {
		if _, err := s.repo.Department.GetByID(ctx, *req.DepartmentID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrDepartmentNotFound
			}
			return nil, err
		}
		employee.DepartmentID = *req.DepartmentID
	}
	if req.Role != nil {
		employee.Role = *req.Role
	}
	if req.ManagerID != nil {
		employee.ManagerID = req.ManagerID
	}
	if req.Status != nil {
		employee.Status = *req.Status
	}

	employee.UpdatedBy = &callerID
	employee.Department = nil // 避免 Save 级联写关联

	if err := s.repo.Employee.Update(ctx, employee); err != nil {
		s.logger.Error("更新员工失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return s.toEmployeeResponse(ctx, employee), nil
}

// ────────────────────── Excel 导入 ──────────────────────

// importHeaderAliases 支持的表头别名（大小写不敏感）
var importHeaderAliases = map[string]string{
	"full_name":  "full_name",
	"name":       "full_name",
	"姓名":         "full_name",
	"email":      "email",
	"邮箱":         "email",
	"department": "department",
	"部门":         "department",
	"role":       "role",
	"岗位":         "role",
	"manager":    "manager",
	"上级邮箱":       "manager",
}

func parseImportHeader(header []string) map[string]int {
	idx := map[string]int{
		"full_name": -1, "email": -1, "department": -1, "role": -1, "manager": -1,
	}
	for i, cell := range header {
		key := strings.ToLower(strings.TrimSpace(cell))
		if canonical, ok := importHeaderAliases[key]; ok && idx[canonical] < 0 {
			idx[canonical] = i
		}
	}
	return idx
}

func (s *employeeService) ParseImportFile(reader io.Reader) ([]ImportEmployeeRow, error) {
	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, fmt.Errorf("无法解析Excel文件: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	excelRows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("读取工作表失败: %w", err)
	}

	if len(excelRows) < 2 {
		return nil, ErrImportNoData
	}

	colIndex := parseImportHeader(excelRows[0])
	if colIndex["full_name"] < 0 || colIndex["email"] < 0 || colIndex["department"] < 0 || colIndex["role"] < 0 {
		return nil, ErrImportBadHeader
	}

	var rows []ImportEmployeeRow
	for i := 1; i < len(excelRows); i++ {
		row := excelRows[i]
		item := ImportEmployeeRow{Row: i + 1}

		cell := func(key string) string {
			if idx := colIndex[key]; idx >= 0 && idx < len(row) {
				return strings.TrimSpace(row[idx])
			}
			return ""
		}
		item.FullName = cell("full_name")
		item.Email = strings.ToLower(cell("email"))
		item.DepartmentName = cell("department")
		item.Role = cell("role")
		item.ManagerEmail = strings.ToLower(cell("manager"))

		// 跳过完全空白的行
		if item.FullName == "" && item.Email == "" {
			continue
		}
		rows = append(rows, item)
	}
	if len(rows) == 0 {
		return nil, ErrImportNoData
	}
	return rows, nil
}

func (s *employeeService) ImportEmployees(ctx context.Context, rows []ImportEmployeeRow, callerID string) (*dto.ImportEmployeeResponse, error) {
	resp := &dto.ImportEmployeeResponse{}

	for _, row := range rows {
		if row.FullName == "" || row.Email == "" || row.DepartmentName == "" {
			resp.Failed = append(resp.Failed, dto.ImportFailure{
				Row: row.Row, Reason: "姓名、邮箱、部门均不能为空",
			})
			continue
		}

		department, err := s.repo.Department.GetByName(ctx, row.DepartmentName)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				resp.Failed = append(resp.Failed, dto.ImportFailure{
					Row: row.Row, Reason: fmt.Sprintf("部门 %q 不存在", row.DepartmentName),
				})
				continue
			}
			return nil, err
		}

		if _, err := s.repo.Employee.GetByEmail(ctx, row.Email); err == nil {
			resp.Skipped++
			continue
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}

		employee := &model.Employee{
			FullName:     row.FullName,
			Email:        row.Email,
			DepartmentID: department.DepartmentID,
			Role:         row.Role,
			Status:       model.EmployeeStatusActive,
		}
		if row.ManagerEmail != "" {
			if manager, mErr := s.repo.Employee.GetByEmail(ctx, row.ManagerEmail); mErr == nil {
				employee.ManagerID = &manager.EmployeeID
			}
			// 上级尚未入库时先留空，后续可再补
		}
		employee.CreatedBy = &callerID
		employee.UpdatedBy = &callerID

		if err := s.repo.Employee.Create(ctx, employee); err != nil {
			s.logger.Error("导入创建员工失败", zap.Int("row", row.Row), zap.Error(err))
			resp.Failed = append(resp.Failed, dto.ImportFailure{Row: row.Row, Reason: "写入失败"})
			continue
		}
		resp.Created++
	}

	s.logger.Info("员工名册导入完成",
		zap.Int("created", resp.Created),
		zap.Int("skipped", resp.Skipped),
		zap.Int("failed", len(resp.Failed)),
	)
	return resp, nil
}

// ── 内部辅助方法 ──

func (s *employeeService) toEmployeeResponse(ctx context.Context, employee *model.Employee) *dto.EmployeeResponse {
	resp := &dto.EmployeeResponse{
		ID:           employee.EmployeeID,
		FullName:     employee.FullName,
		Email:        employee.Email,
		DepartmentID: employee.DepartmentID,
		Role:         employee.Role,
		ManagerID:    employee.ManagerID,
		Status:       employee.Status,
		CreatedAt:    employee.CreatedAt.Format(time.RFC3339),
	}
	if employee.Department != nil {
		resp.DepartmentName = employee.Department.Name
	} else if employee.DepartmentID != "" {
		if department, err := s.repo.Department.GetByID(ctx, employee.DepartmentID); err == nil {
			resp.DepartmentName = department.Name
		}
	}
	return resp
}
