package gormstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"goaly/internal/store"
	storemodel "goaly/internal/store/model"
)

type goalModel = storemodel.GoalModel
type userStatsModel = storemodel.UserStatsModel

// GormStore 基于 Gorm + SQLite 的目标/统计存储。
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(path string) (*GormStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("gorm store: 数据库路径不能为空")
	}
	if err := ensureDir(path); err != nil {
		return nil, err
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&cache=shared", path)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&goalModel{}, &userStatsModel{}); err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// SQLite + WAL：给并发 HTTP 读留一点余量，同时控制锁竞争。
	sqlDB.SetMaxOpenConns(2)
	sqlDB.SetMaxIdleConns(2)
	return &GormStore{db: db}, nil
}

func (s *GormStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SQLDB 暴露底层 *sql.DB，供 AI 调用日志存储复用同一连接。
func (s *GormStore) SQLDB() (*sql.DB, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("gorm store 未初始化")
	}
	return s.db.DB()
}

var (
	_ store.GoalStore  = (*GormStore)(nil)
	_ store.StatsStore = (*GormStore)(nil)
)

// --------------------- Goal ---------------------

func (s *GormStore) CreateGoal(ctx context.Context, rec *store.GoalRecord) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("gorm store 未初始化")
	}
	now := time.Now()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now
	m := goalRecordToModel(*rec)
	if err := s.db.WithContext(ctx).Create(&m).Error; err != nil {
		return err
	}
	rec.ID = m.ID
	return nil
}

func (s *GormStore) GetGoal(ctx context.Context, userID string, id int64) (store.GoalRecord, error) {
	if s == nil || s.db == nil {
		return store.GoalRecord{}, fmt.Errorf("gorm store 未初始化")
	}
	var m goalModel
	err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return store.GoalRecord{}, store.ErrNotFound
	}
	if err != nil {
		return store.GoalRecord{}, err
	}
	return goalModelToRecord(m), nil
}

func (s *GormStore) ListGoals(ctx context.Context, q store.GoalQuery) ([]store.GoalRecord, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("gorm store 未初始化")
	}
	tx := s.db.WithContext(ctx).Model(&goalModel{}).Order("created_at DESC, id DESC")
	if q.UserID != "" {
		tx = tx.Where("user_id = ?", q.UserID)
	}
	if q.Status != "" {
		tx = tx.Where("status = ?", q.Status)
	}
	if q.Timeframe != "" {
		tx = tx.Where("timeframe = ?", q.Timeframe)
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}
	if q.Offset > 0 {
		tx = tx.Offset(q.Offset)
	}
	var models []goalModel
	if err := tx.Find(&models).Error; err != nil {
		return nil, err
	}
	records := make([]store.GoalRecord, 0, len(models))
	for _, m := range models {
		records = append(records, goalModelToRecord(m))
	}
	return records, nil
}

func (s *GormStore) UpdateGoal(ctx context.Context, rec *store.GoalRecord) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("gorm store 未初始化")
	}
	if rec.ID <= 0 {
		return fmt.Errorf("goal id 必填")
	}
	rec.UpdatedAt = time.Now()
	m := goalRecordToModel(*rec)
	res := s.db.WithContext(ctx).
		Model(&goalModel{}).
		Where("id = ? AND user_id = ?", rec.ID, rec.UserID).
		Select("*").Omit("id", "user_id", "created_at").
		Updates(&m)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *GormStore) DeleteGoal(ctx context.Context, userID string, id int64) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("gorm store 未初始化")
	}
	res := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&goalModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

// --------------------- UserStats ---------------------

func (s *GormStore) GetStats(ctx context.Context, userID string) (store.StatsRecord, error) {
	if s == nil || s.db == nil {
		return store.StatsRecord{}, fmt.Errorf("gorm store 未初始化")
	}
	var m userStatsModel
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// 首次访问返回零值统计而不是报错，纪律分默认满分。
		return store.StatsRecord{UserID: userID, DisciplineScore: 100}, nil
	}
	if err != nil {
		return store.StatsRecord{}, err
	}
	return store.StatsRecord{
		UserID:          m.UserID,
		Points:          m.Points,
		Streak:          m.Streak,
		TotalCompleted:  m.TotalCompleted,
		GrowthRate:      m.GrowthRate,
		DisciplineScore: m.DisciplineScore,
		VerifiedCount:   m.VerifiedCount,
		LastCalculated:  time.Unix(m.LastCalcUnix, 0),
	}, nil
}

func (s *GormStore) SaveStats(ctx context.Context, rec store.StatsRecord) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("gorm store 未初始化")
	}
	if rec.UserID == "" {
		return fmt.Errorf("user_id 必填")
	}
	m := userStatsModel{
		UserID:          rec.UserID,
		Points:          rec.Points,
		Streak:          rec.Streak,
		TotalCompleted:  rec.TotalCompleted,
		GrowthRate:      rec.GrowthRate,
		DisciplineScore: rec.DisciplineScore,
		VerifiedCount:   rec.VerifiedCount,
		LastCalcUnix:    rec.LastCalculated.Unix(),
	}
	return s.db.WithContext(ctx).Save(&m).Error
}

// --------------------- 转换 ---------------------

func goalRecordToModel(rec store.GoalRecord) goalModel {
	m := goalModel{
		ID:            rec.ID,
		UserID:        rec.UserID,
		Text:          rec.Text,
		Timeframe:     rec.Timeframe,
		Status:        rec.Status,
		Category:      rec.Category,
		Lesson:        rec.Lesson,
		EvidencePath:  rec.EvidencePath,
		Verified:      rec.Verified,
		AIFeedback:    rec.AIFeedback,
		CreatedAtUnix: rec.CreatedAt.Unix(),
		UpdatedAtUnix: rec.UpdatedAt.Unix(),
	}
	if len(rec.Tips) > 0 {
		if b, err := json.Marshal(rec.Tips); err == nil {
			m.TipsJSON = datatypes.JSON(b)
		}
	}
	if rec.ScheduledDate != nil {
		v := rec.ScheduledDate.Unix()
		m.ScheduledUnix = &v
	}
	if rec.ReminderTime != nil {
		v := rec.ReminderTime.Unix()
		m.ReminderUnix = &v
	}
	if rec.CompletedAt != nil {
		v := rec.CompletedAt.Unix()
		m.CompletedUnix = &v
	}
	return m
}

func goalModelToRecord(m goalModel) store.GoalRecord {
	rec := store.GoalRecord{
		ID:           m.ID,
		UserID:       m.UserID,
		Text:         m.Text,
		Timeframe:    m.Timeframe,
		Status:       m.Status,
		Category:     m.Category,
		Lesson:       m.Lesson,
		EvidencePath: m.EvidencePath,
		Verified:     m.Verified,
		AIFeedback:   m.AIFeedback,
		CreatedAt:    time.Unix(m.CreatedAtUnix, 0),
		UpdatedAt:    time.Unix(m.UpdatedAtUnix, 0),
	}
	if len(m.TipsJSON) > 0 {
		_ = json.Unmarshal(m.TipsJSON, &rec.Tips)
	}
	if m.ScheduledUnix != nil {
		v := time.Unix(*m.ScheduledUnix, 0)
		rec.ScheduledDate = &v
	}
	if m.ReminderUnix != nil {
		v := time.Unix(*m.ReminderUnix, 0)
		rec.ReminderTime = &v
	}
	if m.CompletedUnix != nil {
		v := time.Unix(*m.CompletedUnix, 0)
		rec.CompletedAt = &v
	}
	return rec
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
