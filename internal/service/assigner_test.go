package service

import (
	"errors"
	"fmt"
	"math/rand"
	"reflect"
	"testing"

	"github.com/iyasalowaneh-jo/employee-evaluation-system/internal/model"
)

// ── 测试辅助 ──

// makeRoster 构造 n 人名册，轮流分到 departments 指定的部门
func makeRoster(n int, departments []string) []model.Employee {
	roster := make([]model.Employee, 0, n)
	for i := 0; i < n; i++ {
		roster = append(roster, model.Employee{
			EmployeeID:   fmt.Sprintf("emp-%03d", i+1),
			FullName:     fmt.Sprintf("员工%d", i+1),
			DepartmentID: departments[i%len(departments)],
			Role:         "工程师",
			Status:       model.EmployeeStatusActive,
		})
	}
	return roster
}

func pairsBySubject(plan *assignmentPlan) map[string][]string {
	result := make(map[string][]string)
	for _, p := range plan.Pairs {
		result[p.SubjectID] = append(result[p.SubjectID], p.EvaluatorID)
	}
	return result
}

// ── 基本约束 ──

func TestRunAssignment_EveryoneGetsMinEvaluators(t *testing.T) {
	roster := makeRoster(10, []string{"dept-a", "dept-b"})
	opts := assignerOptions{MinEvaluators: 3, RequireCrossDepartment: true}
	rng := rand.New(rand.NewSource(42))

	plan, err := runAssignment(roster, opts, nil, rng)
	if err != nil {
		t.Fatalf("runAssignment 应成功: %v", err)
	}
	if len(plan.UnderAssigned) != 0 {
		t.Errorf("10 人名册不应出现欠指派: %+v", plan.UnderAssigned)
	}

	bySubject := pairsBySubject(plan)
	if len(bySubject) != 10 {
		t.Fatalf("期望 10 位被评价人，实际 %d", len(bySubject))
	}
	for subject, evaluators := range bySubject {
		if len(evaluators) != 3 {
			t.Errorf("员工 %s 期望 3 位评价人，实际 %d", subject, len(evaluators))
		}
	}
}

func TestRunAssignment_NoSelfEvaluation(t *testing.T) {
	roster := makeRoster(10, []string{"dept-a", "dept-b"})
	opts := assignerOptions{MinEvaluators: 3, RequireCrossDepartment: true}
	rng := rand.New(rand.NewSource(7))

	plan, err := runAssignment(roster, opts, nil, rng)
	if err != nil {
		t.Fatalf("runAssignment 应成功: %v", err)
	}
	for _, p := range plan.Pairs {
		if p.SubjectID == p.EvaluatorID {
			t.Errorf("员工 %s 被指派评价自己", p.SubjectID)
		}
	}
}

func TestRunAssignment_NoDuplicateEvaluatorPerSubject(t *testing.T) {
	roster := makeRoster(12, []string{"dept-a", "dept-b", "dept-c"})
	opts := assignerOptions{MinEvaluators: 4, RequireCrossDepartment: true}
	rng := rand.New(rand.NewSource(99))

	plan, err := runAssignment(roster, opts, nil, rng)
	if err != nil {
		t.Fatalf("runAssignment 应成功: %v", err)
	}
	for subject, evaluators := range pairsBySubject(plan) {
		seen := make(map[string]bool)
		for _, e := range evaluators {
			if seen[e] {
				t.Errorf("员工 %s 的评价人 %s 重复出现", subject, e)
			}
			seen[e] = true
		}
	}
}

// ── 跨部门保底 ──

func TestRunAssignment_CrossDepartmentGuaranteed(t *testing.T) {
	roster := makeRoster(10, []string{"dept-a", "dept-b"})
	deptByID := make(map[string]string, len(roster))
	for _, e := range roster {
		deptByID[e.EmployeeID] = e.DepartmentID
	}

	opts := assignerOptions{MinEvaluators: 3, RequireCrossDepartment: true}
	for seed := int64(0); seed < 20; seed++ {
		rng := rand.New(rand.NewSource(seed))
		plan, err := runAssignment(roster, opts, nil, rng)
		if err != nil {
			t.Fatalf("seed=%d runAssignment 应成功: %v", seed, err)
		}
		for subject, evaluators := range pairsBySubject(plan) {
			hasCross := false
			for _, e := range evaluators {
				if deptByID[e] != deptByID[subject] {
					hasCross = true
					break
				}
			}
			if !hasCross {
				t.Errorf("seed=%d 员工 %s 没有任何跨部门评价人", seed, subject)
			}
		}
	}
}

func TestRunAssignment_CrossDepartmentCountsTowardMin(t *testing.T) {
	// 跨部门名额占用 MinEvaluators 中的一个，而非额外追加
	roster := makeRoster(10, []string{"dept-a", "dept-b"})
	opts := assignerOptions{MinEvaluators: 3, RequireCrossDepartment: true}
	rng := rand.New(rand.NewSource(1))

	plan, err := runAssignment(roster, opts, nil, rng)
	if err != nil {
		t.Fatalf("runAssignment 应成功: %v", err)
	}
	for subject, evaluators := range pairsBySubject(plan) {
		if len(evaluators) != 3 {
			t.Errorf("员工 %s 期望恰好 3 位评价人，实际 %d", subject, len(evaluators))
		}
	}
}

func TestRunAssignment_SingleDepartmentDegradesGracefully(t *testing.T) {
	// 全员同部门：跨部门子集为空，保底名额静默跳过，不报错
	roster := makeRoster(6, []string{"dept-only"})
	opts := assignerOptions{MinEvaluators: 3, RequireCrossDepartment: true}
	rng := rand.New(rand.NewSource(3))

	plan, err := runAssignment(roster, opts, nil, rng)
	if err != nil {
		t.Fatalf("单部门名册应降级而非失败: %v", err)
	}
	for subject, evaluators := range pairsBySubject(plan) {
		if len(evaluators) != 3 {
			t.Errorf("员工 %s 期望 3 位评价人，实际 %d", subject, len(evaluators))
		}
	}
}

// ── 小名册降级与失败 ──

func TestRunAssignment_TinyRosterUnderAssigned(t *testing.T) {
	// 2 人名册、要求 3 位评价人：互评一次，记欠指派告警
	roster := makeRoster(2, []string{"dept-a", "dept-b"})
	opts := assignerOptions{MinEvaluators: 3, RequireCrossDepartment: true}
	rng := rand.New(rand.NewSource(5))

	plan, err := runAssignment(roster, opts, nil, rng)
	if err != nil {
		t.Fatalf("候选池不足应降级而非失败: %v", err)
	}
	if len(plan.Pairs) != 2 {
		t.Errorf("期望 2 条指派（互评），实际 %d", len(plan.Pairs))
	}
	if len(plan.UnderAssigned) != 2 {
		t.Fatalf("期望 2 条欠指派记录，实际 %d", len(plan.UnderAssigned))
	}
	for _, ua := range plan.UnderAssigned {
		if ua.Assigned != 1 || ua.Required != 3 {
			t.Errorf("欠指派记录期望 assigned=1 required=3，实际 %+v", ua)
		}
	}
}

func TestRunAssignment_EmptyPoolFails(t *testing.T) {
	// 单人名册：排除本人后候选池为空，整次运行失败
	roster := makeRoster(1, []string{"dept-a"})
	opts := assignerOptions{MinEvaluators: 1}
	rng := rand.New(rand.NewSource(0))

	_, err := runAssignment(roster, opts, nil, rng)
	if !errors.Is(err, ErrRosterTooSmall) {
		t.Errorf("期望 ErrRosterTooSmall，实际: %v", err)
	}
}

func TestRunAssignment_BlockedPoolFails(t *testing.T) {
	// 避重屏蔽掉全部候选人时同样整次失败
	roster := makeRoster(3, []string{"dept-a"})
	opts := assignerOptions{MinEvaluators: 1, AvoidRepeats: true}
	blocked := func(_, _ string) bool { return true }
	rng := rand.New(rand.NewSource(0))

	_, err := runAssignment(roster, opts, blocked, rng)
	if !errors.Is(err, ErrRosterTooSmall) {
		t.Errorf("期望 ErrRosterTooSmall，实际: %v", err)
	}
}

// ── 避重 ──

func TestRunAssignment_AvoidRepeatsExcludesBlockedPairs(t *testing.T) {
	roster := makeRoster(5, []string{"dept-a", "dept-b"})
	// 屏蔽 emp-002 再次评价 emp-001
	blocked := func(evaluatorID, subjectID string) bool {
		return evaluatorID == "emp-002" && subjectID == "emp-001"
	}
	opts := assignerOptions{MinEvaluators: 3, RequireCrossDepartment: true, AvoidRepeats: true}

	for seed := int64(0); seed < 50; seed++ {
		rng := rand.New(rand.NewSource(seed))
		plan, err := runAssignment(roster, opts, blocked, rng)
		if err != nil {
			t.Fatalf("seed=%d runAssignment 应成功: %v", seed, err)
		}
		for _, p := range plan.Pairs {
			if p.SubjectID == "emp-001" && p.EvaluatorID == "emp-002" {
				t.Fatalf("seed=%d 被屏蔽的配对仍被指派", seed)
			}
		}
	}
}

// ── 可复现性 ──

func TestRunAssignment_SameSeedSameResult(t *testing.T) {
	roster := makeRoster(10, []string{"dept-a", "dept-b"})
	opts := assignerOptions{MinEvaluators: 3, RequireCrossDepartment: true}

	first, err := runAssignment(roster, opts, nil, rand.New(rand.NewSource(12345)))
	if err != nil {
		t.Fatalf("runAssignment 应成功: %v", err)
	}
	second, err := runAssignment(roster, opts, nil, rand.New(rand.NewSource(12345)))
	if err != nil {
		t.Fatalf("runAssignment 应成功: %v", err)
	}

	if !reflect.DeepEqual(first.Pairs, second.Pairs) {
		t.Error("同一种子与名册应产出完全相同的指派序列")
	}
}

func TestRunAssignment_DifferentSeedDifferentResult(t *testing.T) {
	roster := makeRoster(20, []string{"dept-a", "dept-b", "dept-c"})
	opts := assignerOptions{MinEvaluators: 3, RequireCrossDepartment: true}

	first, err := runAssignment(roster, opts, nil, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("runAssignment 应成功: %v", err)
	}
	second, err := runAssignment(roster, opts, nil, rand.New(rand.NewSource(2)))
	if err != nil {
		t.Fatalf("runAssignment 应成功: %v", err)
	}

	// 20 人、每人 3 位评价人，两个种子产出完全相同序列的概率可忽略
	if reflect.DeepEqual(first.Pairs, second.Pairs) {
		t.Error("不同种子不应产出相同的指派序列")
	}
}
