package model

import (
	"gorm.io/datatypes"
)

// GoalModel 目标表。tips 以 JSON 文本存储，时间统一用 Unix 秒。
type GoalModel struct {
	ID            int64          `gorm:"column:id;primaryKey"`
	UserID        string         `gorm:"column:user_id;index:idx_goals_user_status,priority:1;index:idx_goals_user_timeframe,priority:1"`
	Text          string         `gorm:"column:text;size:500"`
	Timeframe     string         `gorm:"column:timeframe;size:20;index:idx_goals_user_timeframe,priority:2"`
	Status        string         `gorm:"column:status;size:20;index:idx_goals_user_status,priority:2"`
	Category      string         `gorm:"column:category;size:100"`
	Lesson        string         `gorm:"column:lesson;type:TEXT"`
	TipsJSON      datatypes.JSON `gorm:"column:tips_json;type:TEXT"`
	ScheduledUnix *int64         `gorm:"column:scheduled_date"`
	ReminderUnix  *int64         `gorm:"column:reminder_time"`
	EvidencePath  string         `gorm:"column:evidence_path"`
	Verified      *bool          `gorm:"column:verified"`
	AIFeedback    string         `gorm:"column:ai_feedback;type:TEXT"`
	CreatedAtUnix int64          `gorm:"column:created_at"`
	CompletedUnix *int64         `gorm:"column:completed_at"`
	UpdatedAtUnix int64          `gorm:"column:updated_at"`
}

func (GoalModel) TableName() string { return "goals" }

// UserStatsModel 按用户缓存的统计表（一行一用户）。
type UserStatsModel struct {
	UserID          string `gorm:"column:user_id;primaryKey"`
	Points          int    `gorm:"column:points"`
	Streak          int    `gorm:"column:streak"`
	TotalCompleted  int    `gorm:"column:total_goals_completed"`
	GrowthRate      int    `gorm:"column:growth_rate"`
	DisciplineScore int    `gorm:"column:discipline_score"`
	VerifiedCount   int    `gorm:"column:verified_count"`
	LastCalcUnix    int64  `gorm:"column:last_calculated"`
}

func (UserStatsModel) TableName() string { return "user_stats" }
