package ailog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"goaly/internal/ai"
	"goaly/internal/logger"
)

// 中文说明：
// Store 持久化 AI 能力调用日志（输入模型、耗时、结果片段），
// 方便排查模型行为与统计失败率。写入走同步锁，单库低并发足够。

type Store struct {
	mu     sync.Mutex
	db     *sql.DB
	path   string
	ownsDB bool
}

// Record 一条调用日志。
type Record struct {
	ID         int64  `json:"id"`
	TS         int64  `json:"ts"`
	TraceID    string `json:"trace_id"`
	Capability string `json:"capability"`
	Model      string `json:"model"`
	DurationMS int64  `json:"duration_ms"`
	OK         bool   `json:"ok"`
	Error      string `json:"error,omitempty"`
	RawSnippet string `json:"raw_snippet,omitempty"`
}

// Query 列表筛选；零值不过滤。
type Query struct {
	Capability string
	OnlyErrors bool
	Limit      int
	Offset     int
}

func NewStore(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("ai call log path 不能为空")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&cache=shared", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(2)
	if err := ensureSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db, path: path, ownsDB: true}, nil
}

// UseExternalDB 复用外部（例如 GORM）已打开的 SQLite 连接，避免多连接锁冲突。
func (s *Store) UseExternalDB(db *sql.DB) error {
	if s == nil {
		return fmt.Errorf("ai call log store 未初始化")
	}
	if db == nil {
		return fmt.Errorf("external db 不能为空")
	}
	if err := ensureSchema(db); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ownsDB && s.db != nil && s.db != db {
		_ = s.db.Close()
	}
	s.db = db
	s.ownsDB = false
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	if !s.ownsDB {
		s.db = nil
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func ensureSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS ai_call_logs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			ts INTEGER NOT NULL,
			trace_id TEXT,
			capability TEXT,
			model TEXT,
			duration_ms INTEGER,
			ok INTEGER,
			error TEXT,
			raw_snippet TEXT,
			created_at INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_ai_call_logs_capability_ts_id ON ai_call_logs(capability, ts DESC, id DESC);`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Insert 写入一条日志。
func (s *Store) Insert(ctx context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return fmt.Errorf("ai call log store 已关闭")
	}
	if rec.TS == 0 {
		rec.TS = time.Now().Unix()
	}
	ok := 0
	if rec.OK {
		ok = 1
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ai_call_logs
			(ts, trace_id, capability, model, duration_ms, ok, error, raw_snippet, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.TS, rec.TraceID, rec.Capability, rec.Model, rec.DurationMS, ok, rec.Error, rec.RawSnippet, time.Now().Unix())
	return err
}

// List 按时间倒序返回日志。
func (s *Store) List(ctx context.Context, q Query) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil, fmt.Errorf("ai call log store 已关闭")
	}
	limit := q.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	query := `SELECT id, ts, trace_id, capability, model, duration_ms, ok, error, raw_snippet FROM ai_call_logs`
	var conds []string
	var args []any
	if q.Capability != "" {
		conds = append(conds, "capability = ?")
		args = append(args, q.Capability)
	}
	if q.OnlyErrors {
		conds = append(conds, "ok = 0")
	}
	for i, c := range conds {
		if i == 0 {
			query += " WHERE " + c
		} else {
			query += " AND " + c
		}
	}
	query += " ORDER BY ts DESC, id DESC LIMIT ? OFFSET ?"
	args = append(args, limit, q.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		var ok int
		if err := rows.Scan(&rec.ID, &rec.TS, &rec.TraceID, &rec.Capability, &rec.Model,
			&rec.DurationMS, &ok, &rec.Error, &rec.RawSnippet); err != nil {
			return nil, err
		}
		rec.OK = ok == 1
		out = append(out, rec)
	}
	return out, rows.Err()
}

var _ ai.CallObserver = (*Store)(nil)

// ObserveCall 实现 ai.CallObserver：写库失败只告警，不影响能力调用。
func (s *Store) ObserveCall(record ai.CallRecord) {
	if s == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	err := s.Insert(ctx, Record{
		TS:         time.Now().Unix(),
		TraceID:    record.TraceID,
		Capability: record.Capability,
		Model:      record.Model,
		DurationMS: record.DurationMS,
		OK:         record.OK,
		Error:      record.Err,
		RawSnippet: record.RawSnippet,
	})
	if err != nil {
		logger.Warnf("AI 调用日志写入失败: %v", err)
	}
}
