package model

// Period 节次：对应 periodLabelsBySchool/{教室代码} 与 common/periodLabels
// Index 从 1 开始，与存储中的 period{N} 键一致
type Period struct {
	Index int    `json:"index" toml:"index"`
	Label string `json:"label" toml:"label"` // 如 "1限"
	Time  string `json:"time"  toml:"time"`  // 如 "13:00-14:20"
}

// PeriodLabels 节次文档
type PeriodLabels struct {
	PeriodLabels []Period `json:"periodLabels" toml:"periods"`
}
