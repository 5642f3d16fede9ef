package timetable

import (
	"errors"

	"github.com/minamirinkan/sample-sub000/internal/model"
)

// 单元格容量
const (
	MixedCapacity    = 2
	PracticeCapacity = 6
)

// ── 编排规则错误 ──

var (
	ErrSoloClassConflict = errors.New("1名クラス只能单独放入空单元格")
	ErrMixedCapacity     = errors.New("2名クラス与演習クラス混排时每格最多 2 人")
	ErrPracticeCapacity  = errors.New("仅演習クラス的单元格最多 6 人")
	ErrStudentBusy       = errors.New("该学生同一节次已在其他行上课")
	ErrDuplicateStudent  = errors.New("同一单元格内学生重复")
)

// ── 结构性错误 ──

var (
	ErrRowNotFound         = errors.New("行不存在")
	ErrCellOutOfRange      = errors.New("节次超出范围")
	ErrEntryNotFound       = errors.New("单元格中没有该学生")
	ErrInvalidEntry        = errors.New("学生条目缺少学生 ID")
	ErrDropNotAllowed      = errors.New("该状态行不接受拖放")
	ErrLaneNotFound        = errors.New("目标状态行不存在")
	ErrInvalidStatus       = errors.New("无效的状态")
	ErrNotRedirected       = errors.New("该学生没有可恢复的原位置")
	ErrOriginRowMissing    = errors.New("原位置的行已不存在")
	ErrDuplicateRow        = errors.New("行已存在")
	ErrInvalidRow          = errors.New("行定义无效")
	ErrRowNotEmpty         = errors.New("行内仍有学生，不能删除")
	ErrPendingLaneRequired = errors.New("未定行不能删除")
	ErrLaneDailyOnly       = errors.New("振替/欠席行只能用于按日时间表")
)

// IsRuleViolation 是否为业务规则冲突（前端需阻断提示，而非系统错误）
func IsRuleViolation(err error) bool {
	for _, target := range []error{
		ErrSoloClassConflict, ErrMixedCapacity, ErrPracticeCapacity, ErrStudentBusy, ErrDuplicateStudent,
		ErrDropNotAllowed, ErrLaneNotFound, ErrNotRedirected, ErrOriginRowMissing,
		ErrDuplicateRow, ErrRowNotEmpty, ErrPendingLaneRequired, ErrLaneDailyOnly,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// CheckComposition 校验 incoming 加入 existing 后的单元格组成
//
//	1名クラス：单元格加入前必须为空
//	全部为演習クラス：上限 6
//	其余组合（含未知形态）：上限 2
func CheckComposition(existing []model.StudentEntry, incoming model.StudentEntry) error {
	if indexOf(existing, incoming.StudentID) >= 0 {
		return ErrDuplicateStudent
	}

	hasSolo := incoming.ClassType == ClassTypeSolo
	allPractice := incoming.ClassType == ClassTypePractice
	for i := range existing {
		switch existing[i].ClassType {
		case ClassTypeSolo:
			hasSolo = true
			allPractice = false
		case ClassTypePractice:
		default:
			allPractice = false
		}
	}

	total := len(existing) + 1
	if hasSolo {
		if len(existing) > 0 {
			return ErrSoloClassConflict
		}
		return nil
	}
	if allPractice {
		if total > PracticeCapacity {
			return ErrPracticeCapacity
		}
		return nil
	}
	if total > MixedCapacity {
		return ErrMixedCapacity
	}
	return nil
}

// checkCell 校验一个完整单元格（保存前的整体校验）
func checkCell(cell []model.StudentEntry) error {
	for i := range cell {
		if err := CheckComposition(cell[:i], cell[i]); err != nil {
			return err
		}
	}
	return nil
}

// checkStudentFree 学生在该节次不能出现在任何行
func (g *Grid) checkStudentFree(period int, studentID string) error {
	for ri := range g.Rows {
		periods := g.Rows[ri].Periods
		if period < len(periods) && indexOf(periods[period], studentID) >= 0 {
			return ErrStudentBusy
		}
	}
	return nil
}

// admit 在已取出学生的副本上校验目标单元格并追加
func (g *Grid) admit(ri, period int, entry model.StudentEntry) error {
	return g.place(ri, period, -1, entry, false)
}

// place 校验后把学生放到单元格第 at 位（at<0 或越界时追加）
// 状态行只在 laneRule 为 true 时检查组成规则
func (g *Grid) place(ri, period, at int, entry model.StudentEntry, laneRule bool) error {
	if err := g.checkStudentFree(period, entry.StudentID); err != nil {
		return err
	}
	row := &g.Rows[ri]
	if !row.IsLane() || laneRule {
		if err := CheckComposition(row.Periods[period], entry); err != nil {
			return err
		}
	}
	cell := row.Periods[period]
	if at < 0 || at > len(cell) {
		at = len(cell)
	}
	next := make([]model.StudentEntry, 0, len(cell)+1)
	next = append(next, cell[:at]...)
	next = append(next, entry)
	next = append(next, cell[at:]...)
	row.Periods[period] = next
	return nil
}

// Validate 整体校验（保存前）
// width>0 时各行列数不得超过 width
func (g *Grid) Validate(width int) error {
	seenRows := make(map[string]bool, len(g.Rows))
	hasPending := false
	for ri := range g.Rows {
		row := &g.Rows[ri]
		if row.IsLane() {
			if !isLaneStatus(row.Status) {
				return ErrInvalidStatus
			}
			if row.Status == StatusPending {
				hasPending = true
			}
		} else if row.Teacher.Code == "" {
			return ErrInvalidRow
		}
		key := row.Key()
		if seenRows[key] {
			return ErrDuplicateRow
		}
		seenRows[key] = true

		if width > 0 && len(row.Periods) > width {
			return ErrCellOutOfRange
		}
		for _, cell := range row.Periods {
			for i := range cell {
				if cell[i].StudentID == "" {
					return ErrInvalidEntry
				}
			}
			if !row.IsLane() {
				if err := checkCell(cell); err != nil {
					return err
				}
			}
		}
	}
	if !hasPending {
		return ErrPendingLaneRequired
	}

	for p := 0; p < g.Width(); p++ {
		seen := make(map[string]bool)
		for ri := range g.Rows {
			if p >= len(g.Rows[ri].Periods) {
				continue
			}
			for _, e := range g.Rows[ri].Periods[p] {
				if seen[e.StudentID] {
					return ErrStudentBusy
				}
				seen[e.StudentID] = true
			}
		}
	}
	return nil
}

func isLaneStatus(status string) bool {
	switch status {
	case StatusPending, StatusMakeup, StatusAbsent:
		return true
	}
	return false
}
