package model

import "time"

// FeeCategoryTuition 授業料分类，费用代码前缀检索只在该分类下进行
const FeeCategoryTuition = "授業料"

// FeeMasterEntry 费用主表条目
// Formula 为空时金额即 UnitPrice；否则以 unit_price / times / minutes 为变量求值
type FeeMasterEntry struct {
	Code      string `json:"code"      toml:"code"` // 如 "W_J_W2_T80"
	Name      string `json:"name"      toml:"name"`
	UnitPrice int64  `json:"unitPrice" toml:"unit_price"`
	Formula   string `json:"formula,omitempty" toml:"formula"`
}

// FeeMasterCategory 分类文档：FeeMaster/{yyyyMM}_{教室代码}/categories/{分类}
type FeeMasterCategory struct {
	Category  string           `json:"category" toml:"category"`
	Entries   []FeeMasterEntry `json:"entries"  toml:"entries"`
	UpdatedAt time.Time        `json:"updatedAt" toml:"-"`
}
