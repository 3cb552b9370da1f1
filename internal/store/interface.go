package store

import (
	"context"
	"errors"
	"time"
)

// 中文说明：
// 领域存储接口与记录类型。记录是纯数据结构，与 gorm 模型解耦，
// 上层（服务、HTTP）只依赖这里的接口。

var ErrNotFound = errors.New("store: record not found")

const (
	TimeframeDaily   = "daily"
	TimeframeWeekly  = "weekly"
	TimeframeMonthly = "monthly"
	TimeframeYearly  = "yearly"
)

const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// ValidTimeframe 校验时间维度取值。
func ValidTimeframe(tf string) bool {
	switch tf {
	case TimeframeDaily, TimeframeWeekly, TimeframeMonthly, TimeframeYearly:
		return true
	}
	return false
}

// GoalRecord 单个目标。
type GoalRecord struct {
	ID            int64      `json:"id"`
	UserID        string     `json:"user_id"`
	Text          string     `json:"text"`
	Timeframe     string     `json:"timeframe"`
	Status        string     `json:"status"`
	Category      string     `json:"category,omitempty"`
	Lesson        string     `json:"lesson,omitempty"`
	Tips          []string   `json:"tips,omitempty"`
	ScheduledDate *time.Time `json:"scheduled_date,omitempty"`
	ReminderTime  *time.Time `json:"reminder_time,omitempty"`
	EvidencePath  string     `json:"evidence_path,omitempty"`
	Verified      *bool      `json:"verified,omitempty"`
	AIFeedback    string     `json:"ai_feedback,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// GoalQuery 列表筛选条件；零值表示不过滤。
type GoalQuery struct {
	UserID    string
	Status    string
	Timeframe string
	Limit     int
	Offset    int
}

// StatsRecord 按用户缓存的统计值。
type StatsRecord struct {
	UserID          string    `json:"user_id"`
	Points          int       `json:"points"`
	Streak          int       `json:"streak"`
	TotalCompleted  int       `json:"total_goals_completed"`
	GrowthRate      int       `json:"growth_rate"`
	DisciplineScore int       `json:"discipline_score"`
	VerifiedCount   int       `json:"verified_count"`
	LastCalculated  time.Time `json:"last_calculated"`
}

// GoalStore 目标的持久化操作。
type GoalStore interface {
	CreateGoal(ctx context.Context, rec *GoalRecord) error
	GetGoal(ctx context.Context, userID string, id int64) (GoalRecord, error)
	ListGoals(ctx context.Context, q GoalQuery) ([]GoalRecord, error)
	UpdateGoal(ctx context.Context, rec *GoalRecord) error
	DeleteGoal(ctx context.Context, userID string, id int64) error
}

// StatsStore 统计缓存的读写。
type StatsStore interface {
	GetStats(ctx context.Context, userID string) (StatsRecord, error)
	SaveStats(ctx context.Context, rec StatsRecord) error
}
