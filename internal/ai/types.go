package ai

// 中文说明：
// 能力函数的输入/输出载体。每个能力都有固定输出形态，
// 模型输出再离谱也会被归一化到这些结构里（见 normalize.go），
// 形态问题永远不会作为 error 抛出。

// PendingGoal 教练能力的输入条目。
type PendingGoal struct {
	Timeframe string `json:"timeframe"`
	Text      string `json:"text"`
}

// EvidenceResult 证据核验结果。Feedback 截断到 300 字符。
type EvidenceResult struct {
	Verified bool   `json:"verified"`
	Feedback string `json:"feedback"`
}

// Decomposition 年度目标拆解：最多 3 日常 / 2 每周 / 1 每月。
type Decomposition struct {
	Daily   []string `json:"daily"`
	Weekly  []string `json:"weekly"`
	Monthly []string `json:"monthly"`
}

// YearlyPlan 愿景规划：四个周期各最多 3 条。
type YearlyPlan struct {
	Daily   []string `json:"daily"`
	Weekly  []string `json:"weekly"`
	Monthly []string `json:"monthly"`
	Yearly  []string `json:"yearly"`
}

// CallRecord 单次模型调用的观测记录（写入调用日志）。
type CallRecord struct {
	TraceID    string
	Capability string
	Model      string
	DurationMS int64
	OK         bool
	Err        string
	RawSnippet string
}

// CallObserver 接收每次模型调用的观测记录；实现方必须自吞错误。
type CallObserver interface {
	ObserveCall(record CallRecord)
}
