package timetable

import (
	"github.com/minamirinkan/sample-sub000/internal/model"
)

// ════════════════════════════════════════════════════════════
// 格子变更操作
// 每个操作都在副本上完成：成功返回新格子，失败返回错误且入参不变
// ════════════════════════════════════════════════════════════

// Move 拖放：把学生从 from 单元格移到 to 单元格
// 先从源单元格取出，再校验目标（跨行占用 → 组成规则），通过后追加
func Move(g *Grid, studentID string, from, to CellRef) (*Grid, error) {
	fromRow, err := g.resolve(from)
	if err != nil {
		return nil, err
	}
	toRow, err := g.resolve(to)
	if err != nil {
		return nil, err
	}
	if indexOf(g.Rows[fromRow].Periods[from.Period], studentID) < 0 {
		return nil, ErrEntryNotFound
	}
	if fromRow == toRow && from.Period == to.Period {
		return g.Clone(), nil
	}
	// 状态行中只有未定行接受拖放
	if dst := &g.Rows[toRow]; dst.IsLane() && dst.Status != StatusPending {
		return nil, ErrDropNotAllowed
	}

	next := g.Clone()
	entry, err := next.take(fromRow, from.Period, studentID)
	if err != nil {
		return nil, err
	}
	clearOrigin(&entry)
	// 拖放进入未定行同样受组成规则约束
	if err := next.place(toRow, to.Period, -1, entry, true); err != nil {
		return nil, err
	}
	return next, nil
}

// Redirect 把学生转入状态行（未定/振替/欠席），并记录原位置
// 转入「削除」等同 Remove
func Redirect(g *Grid, studentID string, from CellRef, status string) (*Grid, error) {
	if status == StatusDelete {
		return Remove(g, studentID, from)
	}
	if !isLaneStatus(status) {
		return nil, ErrInvalidStatus
	}
	fromRow, err := g.resolve(from)
	if err != nil {
		return nil, err
	}
	if indexOf(g.Rows[fromRow].Periods[from.Period], studentID) < 0 {
		return nil, ErrEntryNotFound
	}
	laneRow := g.LaneIndex(status)
	if laneRow < 0 {
		return nil, ErrLaneNotFound
	}
	if from.Period >= len(g.Rows[laneRow].Periods) {
		return nil, ErrCellOutOfRange
	}
	if laneRow == fromRow {
		return g.Clone(), nil
	}

	next := g.Clone()
	slot := indexOf(next.Rows[fromRow].Periods[from.Period], studentID)
	entry, err := next.take(fromRow, from.Period, studentID)
	if err != nil {
		return nil, err
	}
	// 多次转移时保留最初的位置
	if !entry.HasOrigin() {
		rowKey := next.Rows[fromRow].Key()
		period := from.Period
		entry.OriginRow = &rowKey
		entry.OriginPeriod = &period
		entry.OriginSlot = &slot
	}
	if err := next.admit(laneRow, from.Period, entry); err != nil {
		return nil, err
	}
	return next, nil
}

// Restore 元に戻す：把状态行中的学生放回原位置并清除回溯引用
func Restore(g *Grid, studentID string, at CellRef) (*Grid, error) {
	atRow, err := g.resolve(at)
	if err != nil {
		return nil, err
	}
	cell := g.Rows[atRow].Periods[at.Period]
	idx := indexOf(cell, studentID)
	if idx < 0 {
		return nil, ErrEntryNotFound
	}
	if !cell[idx].HasOrigin() {
		return nil, ErrNotRedirected
	}
	origin := CellRef{Row: *cell[idx].OriginRow, Period: *cell[idx].OriginPeriod}
	originRow, err := g.resolve(origin)
	if err != nil {
		return nil, ErrOriginRowMissing
	}

	next := g.Clone()
	entry, err := next.take(atRow, at.Period, studentID)
	if err != nil {
		return nil, err
	}
	slot := -1
	if cell[idx].OriginSlot != nil {
		slot = *cell[idx].OriginSlot
	}
	clearOrigin(&entry)
	if err := next.place(originRow, origin.Period, slot, entry, false); err != nil {
		return nil, err
	}
	return next, nil
}

// Remove 从单元格删除学生
func Remove(g *Grid, studentID string, at CellRef) (*Grid, error) {
	atRow, err := g.resolve(at)
	if err != nil {
		return nil, err
	}
	next := g.Clone()
	if _, err := next.take(atRow, at.Period, studentID); err != nil {
		return nil, err
	}
	return next, nil
}

// Insert 新增学生（登记时使用），规则与拖放目标一致
func Insert(g *Grid, at CellRef, entry model.StudentEntry) (*Grid, error) {
	if entry.StudentID == "" {
		return nil, ErrInvalidEntry
	}
	atRow, err := g.resolve(at)
	if err != nil {
		return nil, err
	}
	next := g.Clone()
	entry = cloneEntry(entry)
	clearOrigin(&entry)
	if err := next.admit(atRow, at.Period, entry); err != nil {
		return nil, err
	}
	return next, nil
}

// ── 行操作 ──

// AddRow 新增讲师行或状态行
// position 越界（含负数）时追加到末尾；振替/欠席行只允许出现在按日时间表
func AddRow(g *Grid, teacher *model.Teacher, status string, position int, daily bool) (*Grid, error) {
	if teacher != nil {
		if teacher.Code == "" {
			return nil, ErrInvalidRow
		}
		if g.FindRow(teacher.Code) >= 0 {
			return nil, ErrDuplicateRow
		}
	} else {
		if !isLaneStatus(status) {
			return nil, ErrInvalidStatus
		}
		if status != StatusPending && !daily {
			return nil, ErrLaneDailyOnly
		}
		if g.LaneIndex(status) >= 0 {
			return nil, ErrDuplicateRow
		}
	}

	var t *model.Teacher
	if teacher != nil {
		copied := *teacher
		t = &copied
	}
	row := newRow(t, status, g.Width())

	next := g.Clone()
	if position < 0 || position >= len(next.Rows) {
		next.Rows = append(next.Rows, row)
		return next, nil
	}
	next.Rows = append(next.Rows, Row{})
	copy(next.Rows[position+1:], next.Rows[position:])
	next.Rows[position] = row
	return next, nil
}

// RemoveRow 删除空行；未定行不可删除
func RemoveRow(g *Grid, key string) (*Grid, error) {
	ri := g.FindRow(key)
	if ri < 0 {
		return nil, ErrRowNotFound
	}
	row := &g.Rows[ri]
	if row.IsLane() && row.Status == StatusPending {
		return nil, ErrPendingLaneRequired
	}
	for _, cell := range row.Periods {
		if len(cell) > 0 {
			return nil, ErrRowNotEmpty
		}
	}
	next := g.Clone()
	next.Rows = append(next.Rows[:ri], next.Rows[ri+1:]...)
	return next, nil
}
