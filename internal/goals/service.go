package goals

import (
	"context"
	"fmt"
	"strings"
	"time"

	"goaly/internal/logger"
	"goaly/internal/pkg/text"
	"goaly/internal/store"
)

// 中文说明：
// 目标领域服务：校验输入、维护状态机（pending → completed/failed）、
// 并在状态变化后重算用户统计缓存。统计规则：
//   - 积分：daily 10 / weekly 30 / monthly 100 / yearly 500
//   - 连续天数：以完成时间为准，今天或昨天起连续有完成记录的天数
//   - 纪律分：100 − 5×失败数，下限 0
//   - 成长率：近 30 天完成数对比再往前 30 天的百分比变化

const (
	maxGoalTextLen = 500
	maxTipsPerGoal = 5
)

var pointsByTimeframe = map[string]int{
	store.TimeframeDaily:   10,
	store.TimeframeWeekly:  30,
	store.TimeframeMonthly: 100,
	store.TimeframeYearly:  500,
}

type Service struct {
	goals store.GoalStore
	stats store.StatsStore
	now   func() time.Time
}

func NewService(goals store.GoalStore, stats store.StatsStore) *Service {
	return &Service{goals: goals, stats: stats, now: time.Now}
}

// CreateInput 新建目标的入参。
type CreateInput struct {
	Text          string     `json:"text"`
	Timeframe     string     `json:"timeframe"`
	Category      string     `json:"category"`
	Tips          []string   `json:"tips"`
	ScheduledDate *time.Time `json:"scheduled_date"`
	ReminderTime  *time.Time `json:"reminder_time"`
}

func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (store.GoalRecord, error) {
	goalText := strings.TrimSpace(in.Text)
	if goalText == "" {
		return store.GoalRecord{}, fmt.Errorf("goal text 不能为空")
	}
	goalText = text.Truncate(goalText, maxGoalTextLen)
	tf := strings.ToLower(strings.TrimSpace(in.Timeframe))
	if tf == "" {
		tf = store.TimeframeDaily
	}
	if !store.ValidTimeframe(tf) {
		return store.GoalRecord{}, fmt.Errorf("非法 timeframe: %s", in.Timeframe)
	}
	rec := store.GoalRecord{
		UserID:        userID,
		Text:          goalText,
		Timeframe:     tf,
		Status:        store.StatusPending,
		Category:      strings.TrimSpace(in.Category),
		Tips:          text.CleanList(in.Tips, maxTipsPerGoal),
		ScheduledDate: in.ScheduledDate,
		ReminderTime:  in.ReminderTime,
		CreatedAt:     s.now(),
	}
	if err := s.goals.CreateGoal(ctx, &rec); err != nil {
		return store.GoalRecord{}, err
	}
	return rec, nil
}

func (s *Service) Get(ctx context.Context, userID string, id int64) (store.GoalRecord, error) {
	return s.goals.GetGoal(ctx, userID, id)
}

func (s *Service) List(ctx context.Context, userID string, status, timeframe string, limit, offset int) ([]store.GoalRecord, error) {
	return s.goals.ListGoals(ctx, store.GoalQuery{
		UserID:    userID,
		Status:    status,
		Timeframe: timeframe,
		Limit:     limit,
		Offset:    offset,
	})
}

// UpdateInput 可更新字段；nil 表示不修改。
type UpdateInput struct {
	Text          *string    `json:"text"`
	Category      *string    `json:"category"`
	ScheduledDate *time.Time `json:"scheduled_date"`
	ReminderTime  *time.Time `json:"reminder_time"`
}

func (s *Service) Update(ctx context.Context, userID string, id int64, in UpdateInput) (store.GoalRecord, error) {
	rec, err := s.goals.GetGoal(ctx, userID, id)
	if err != nil {
		return store.GoalRecord{}, err
	}
	if in.Text != nil {
		goalText := strings.TrimSpace(*in.Text)
		if goalText == "" {
			return store.GoalRecord{}, fmt.Errorf("goal text 不能为空")
		}
		rec.Text = text.Truncate(goalText, maxGoalTextLen)
	}
	if in.Category != nil {
		rec.Category = strings.TrimSpace(*in.Category)
	}
	if in.ScheduledDate != nil {
		rec.ScheduledDate = in.ScheduledDate
	}
	if in.ReminderTime != nil {
		rec.ReminderTime = in.ReminderTime
	}
	if err := s.goals.UpdateGoal(ctx, &rec); err != nil {
		return store.GoalRecord{}, err
	}
	return rec, nil
}

func (s *Service) Delete(ctx context.Context, userID string, id int64) error {
	return s.goals.DeleteGoal(ctx, userID, id)
}

// Complete 把目标置为完成并重算统计；已完成的目标翻转回 pending。
func (s *Service) Complete(ctx context.Context, userID string, id int64) (store.GoalRecord, error) {
	rec, err := s.goals.GetGoal(ctx, userID, id)
	if err != nil {
		return store.GoalRecord{}, err
	}
	if rec.Status == store.StatusCompleted {
		rec.Status = store.StatusPending
		rec.CompletedAt = nil
	} else {
		now := s.now()
		rec.Status = store.StatusCompleted
		rec.CompletedAt = &now
	}
	if err := s.goals.UpdateGoal(ctx, &rec); err != nil {
		return store.GoalRecord{}, err
	}
	s.recomputeStatsBestEffort(ctx, userID)
	return rec, nil
}

// Fail 把目标置为失败并记录教训。
func (s *Service) Fail(ctx context.Context, userID string, id int64, lesson string) (store.GoalRecord, error) {
	rec, err := s.goals.GetGoal(ctx, userID, id)
	if err != nil {
		return store.GoalRecord{}, err
	}
	rec.Status = store.StatusFailed
	rec.Lesson = strings.TrimSpace(lesson)
	rec.CompletedAt = nil
	if err := s.goals.UpdateGoal(ctx, &rec); err != nil {
		return store.GoalRecord{}, err
	}
	s.recomputeStatsBestEffort(ctx, userID)
	return rec, nil
}

// AttachEvidence 记录证据文件与 AI 核验结论，核验通过时自动完成目标。
func (s *Service) AttachEvidence(ctx context.Context, userID string, id int64, evidencePath string, verified bool, feedback string) (store.GoalRecord, error) {
	rec, err := s.goals.GetGoal(ctx, userID, id)
	if err != nil {
		return store.GoalRecord{}, err
	}
	rec.EvidencePath = evidencePath
	rec.Verified = &verified
	rec.AIFeedback = feedback
	if verified && rec.Status != store.StatusCompleted {
		now := s.now()
		rec.Status = store.StatusCompleted
		rec.CompletedAt = &now
	}
	if err := s.goals.UpdateGoal(ctx, &rec); err != nil {
		return store.GoalRecord{}, err
	}
	s.recomputeStatsBestEffort(ctx, userID)
	return rec, nil
}

// SetTips 把 AI 生成的提示写回目标。
func (s *Service) SetTips(ctx context.Context, userID string, id int64, tips []string) (store.GoalRecord, error) {
	rec, err := s.goals.GetGoal(ctx, userID, id)
	if err != nil {
		return store.GoalRecord{}, err
	}
	rec.Tips = text.CleanList(tips, maxTipsPerGoal)
	if err := s.goals.UpdateGoal(ctx, &rec); err != nil {
		return store.GoalRecord{}, err
	}
	return rec, nil
}

// Pending 返回未完成目标，供教练/看板使用。
func (s *Service) Pending(ctx context.Context, userID string) ([]store.GoalRecord, error) {
	return s.goals.ListGoals(ctx, store.GoalQuery{UserID: userID, Status: store.StatusPending})
}

// Stats 返回统计缓存；缓存从未计算过时现场重算一次。
func (s *Service) Stats(ctx context.Context, userID string) (store.StatsRecord, error) {
	rec, err := s.stats.GetStats(ctx, userID)
	if err != nil {
		return store.StatsRecord{}, err
	}
	if rec.LastCalculated.IsZero() || rec.LastCalculated.Unix() <= 0 {
		return s.RecomputeStats(ctx, userID)
	}
	return rec, nil
}

// RecomputeStats 全量重算一个用户的统计并写回缓存。
func (s *Service) RecomputeStats(ctx context.Context, userID string) (store.StatsRecord, error) {
	all, err := s.goals.ListGoals(ctx, store.GoalQuery{UserID: userID})
	if err != nil {
		return store.StatsRecord{}, err
	}
	rec := computeStats(userID, all, s.now())
	if err := s.stats.SaveStats(ctx, rec); err != nil {
		return store.StatsRecord{}, err
	}
	return rec, nil
}

func (s *Service) recomputeStatsBestEffort(ctx context.Context, userID string) {
	if _, err := s.RecomputeStats(ctx, userID); err != nil {
		logger.Warnf("重算用户统计失败 user=%s: %v", userID, err)
	}
}

func computeStats(userID string, all []store.GoalRecord, now time.Time) store.StatsRecord {
	rec := store.StatsRecord{UserID: userID, DisciplineScore: 100, LastCalculated: now}

	failed := 0
	completedDays := map[string]bool{}
	var recent, previous int // 近 30 天 / 再往前 30 天完成数
	cut1 := now.AddDate(0, 0, -30)
	cut2 := now.AddDate(0, 0, -60)

	for _, g := range all {
		switch g.Status {
		case store.StatusCompleted:
			rec.TotalCompleted++
			rec.Points += pointsByTimeframe[g.Timeframe]
			if g.Verified != nil && *g.Verified {
				rec.VerifiedCount++
			}
			if g.CompletedAt != nil {
				completedDays[g.CompletedAt.Format("2006-01-02")] = true
				if g.CompletedAt.After(cut1) {
					recent++
				} else if g.CompletedAt.After(cut2) {
					previous++
				}
			}
		case store.StatusFailed:
			failed++
		}
	}

	rec.DisciplineScore = 100 - 5*failed
	if rec.DisciplineScore < 0 {
		rec.DisciplineScore = 0
	}
	rec.Streak = streakDays(completedDays, now)
	rec.GrowthRate = growthRate(recent, previous)
	return rec
}

// streakDays 从今天（或昨天，容忍当天还没打卡）起往回数连续有完成记录的天数。
func streakDays(days map[string]bool, now time.Time) int {
	cursor := now
	if !days[cursor.Format("2006-01-02")] {
		cursor = cursor.AddDate(0, 0, -1)
	}
	streak := 0
	for days[cursor.Format("2006-01-02")] {
		streak++
		cursor = cursor.AddDate(0, 0, -1)
	}
	return streak
}

func growthRate(recent, previous int) int {
	if previous == 0 {
		if recent > 0 {
			return 100
		}
		return 0
	}
	return (recent - previous) * 100 / previous
}
