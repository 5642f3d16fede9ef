// Package timetable 是时间表格子的纯内存模型与编排规则。
//
// 格子由有序的行（讲师行或状态行）× 节次列组成，每个单元格可放零到多名学生。
// 所有变更操作都在副本上先校验后提交，失败时原格子保持不变。
package timetable

import (
	"github.com/minamirinkan/sample-sub000/internal/model"
)

// 状态行
const (
	StatusPending = "未定"
	StatusMakeup  = "振替"
	StatusAbsent  = "欠席"
	// StatusDelete 伪状态：转入即删除
	StatusDelete = "削除"
)

// 授業形態
const (
	ClassTypeSolo     = "1名クラス"
	ClassTypePair     = "2名クラス"
	ClassTypePractice = "演習クラス"
)

// Row 一行：Teacher 为空时是状态行（未定/振替/欠席）
type Row struct {
	Teacher *model.Teacher         `json:"teacher"`
	Status  string                 `json:"status"`
	Periods [][]model.StudentEntry `json:"periods"`
}

// IsLane 是否为状态行
func (r *Row) IsLane() bool {
	return r.Teacher == nil
}

// Key 行键：讲师行为讲师代码，状态行为状态名
func (r *Row) Key() string {
	if r.Teacher != nil {
		return r.Teacher.Code
	}
	return r.Status
}

// Grid 一天（或一个星期模板）的时间表
type Grid struct {
	Rows []Row `json:"rows"`
}

// CellRef 单元格定位：行键 + 节次（0 起）
type CellRef struct {
	Row    string `json:"row"`
	Period int    `json:"period"`
}

// NewEmptyGrid 只有一条未定行的空格子
func NewEmptyGrid(width int) *Grid {
	return &Grid{Rows: []Row{newRow(nil, StatusPending, width)}}
}

func newRow(teacher *model.Teacher, status string, width int) Row {
	periods := make([][]model.StudentEntry, width)
	for i := range periods {
		periods[i] = []model.StudentEntry{}
	}
	return Row{Teacher: teacher, Status: status, Periods: periods}
}

// Width 格子的列数（取各行最大值）
func (g *Grid) Width() int {
	w := 0
	for i := range g.Rows {
		if n := len(g.Rows[i].Periods); n > w {
			w = n
		}
	}
	return w
}

// FindRow 按行键查找，未找到返回 -1
func (g *Grid) FindRow(key string) int {
	for i := range g.Rows {
		if g.Rows[i].Key() == key {
			return i
		}
	}
	return -1
}

// LaneIndex 按状态查找状态行，未找到返回 -1
func (g *Grid) LaneIndex(status string) int {
	for i := range g.Rows {
		if g.Rows[i].IsLane() && g.Rows[i].Status == status {
			return i
		}
	}
	return -1
}

// Cell 返回单元格内容的只读视图
func (g *Grid) Cell(ref CellRef) ([]model.StudentEntry, error) {
	ri, err := g.resolve(ref)
	if err != nil {
		return nil, err
	}
	return g.Rows[ri].Periods[ref.Period], nil
}

// Locate 列出学生所在的全部单元格
func (g *Grid) Locate(studentID string) []CellRef {
	var refs []CellRef
	for ri := range g.Rows {
		for p, cell := range g.Rows[ri].Periods {
			if indexOf(cell, studentID) >= 0 {
				refs = append(refs, CellRef{Row: g.Rows[ri].Key(), Period: p})
			}
		}
	}
	return refs
}

// Clone 深拷贝
func (g *Grid) Clone() *Grid {
	out := &Grid{Rows: make([]Row, len(g.Rows))}
	for i, r := range g.Rows {
		nr := Row{Status: r.Status, Periods: make([][]model.StudentEntry, len(r.Periods))}
		if r.Teacher != nil {
			t := *r.Teacher
			nr.Teacher = &t
		}
		for p, cell := range r.Periods {
			nc := make([]model.StudentEntry, len(cell))
			for j := range cell {
				nc[j] = cloneEntry(cell[j])
			}
			nr.Periods[p] = nc
		}
		out.Rows[i] = nr
	}
	return out
}

func cloneEntry(e model.StudentEntry) model.StudentEntry {
	if e.OriginRow != nil {
		v := *e.OriginRow
		e.OriginRow = &v
	}
	if e.OriginPeriod != nil {
		v := *e.OriginPeriod
		e.OriginPeriod = &v
	}
	if e.OriginSlot != nil {
		v := *e.OriginSlot
		e.OriginSlot = &v
	}
	return e
}

func clearOrigin(e *model.StudentEntry) {
	e.OriginRow = nil
	e.OriginPeriod = nil
	e.OriginSlot = nil
}

// resolve 将 CellRef 转换为行下标并做越界检查
func (g *Grid) resolve(ref CellRef) (int, error) {
	ri := g.FindRow(ref.Row)
	if ri < 0 {
		return -1, ErrRowNotFound
	}
	if ref.Period < 0 || ref.Period >= len(g.Rows[ri].Periods) {
		return -1, ErrCellOutOfRange
	}
	return ri, nil
}

func indexOf(cell []model.StudentEntry, studentID string) int {
	for i := range cell {
		if cell[i].StudentID == studentID {
			return i
		}
	}
	return -1
}

// take 从单元格中取出学生（原地修改，调用方须先 Clone）
func (g *Grid) take(ri, period int, studentID string) (model.StudentEntry, error) {
	cell := g.Rows[ri].Periods[period]
	idx := indexOf(cell, studentID)
	if idx < 0 {
		return model.StudentEntry{}, ErrEntryNotFound
	}
	entry := cell[idx]
	rest := make([]model.StudentEntry, 0, len(cell)-1)
	rest = append(rest, cell[:idx]...)
	rest = append(rest, cell[idx+1:]...)
	g.Rows[ri].Periods[period] = rest
	return entry, nil
}
