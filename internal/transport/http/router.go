package webhttp

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"goaly/internal/ai"
	"goaly/internal/analysis/visual"
	"goaly/internal/goals"
	"goaly/internal/logger"
	"goaly/internal/store"
	"goaly/internal/store/ailog"
)

const (
	sourceAI       = "ai"
	sourceFallback = "fallback"

	defaultUserID = "default"
	maxImageBytes = 8 << 20
)

type router struct {
	goals       *goals.Service
	ai          *ai.Service
	calls       *ailog.Store
	dashboard   *visual.Renderer
	evidenceDir string
}

func newRouter(cfg ServerConfig) *router {
	return &router{
		goals:       cfg.Goals,
		ai:          cfg.AI,
		calls:       cfg.Calls,
		dashboard:   cfg.Dashboard,
		evidenceDir: cfg.EvidenceDir,
	}
}

func (r *router) register(group *gin.RouterGroup) {
	group.POST("/goals", r.handleCreateGoal)
	group.GET("/goals", r.handleListGoals)
	group.GET("/goals/:id", r.handleGetGoal)
	group.POST("/goals/:id/toggle", r.handleToggleGoal)
	group.DELETE("/goals/:id", r.handleDeleteGoal)
	group.POST("/goals/:id/fail", r.handleFailGoal)
	group.POST("/goals/:id/reminder", r.handleUpdateReminder)
	group.POST("/goals/:id/alarm/later", r.handleSnoozeAlarm)
	group.POST("/goals/:id/evidence", r.handleUploadEvidence)
	group.POST("/goals/:id/tips", r.handleGoalTips)
	group.POST("/goals/refine", r.handleRefineGoal)
	group.POST("/goals/decompose", r.handleDecomposeGoal)
	group.POST("/planner/generate", r.handleGeneratePlan)
	group.GET("/report/yearly", r.handleYearlyReport)
	group.POST("/coach/chat", r.handleCoachChat)
	group.GET("/ai/calls", r.handleAICalls)
	group.GET("/stats", r.handleStats)
}

// userID 从请求头取用户标识；鉴权由外层网关负责，这里不做校验。
func userID(c *gin.Context) string {
	id := strings.TrimSpace(c.GetHeader("X-User-ID"))
	if id == "" {
		return defaultUserID
	}
	return id
}

func goalID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "非法 goal id"})
		return 0, false
	}
	return id, true
}

func writeStoreErr(c *gin.Context, err error) {
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "goal 不存在"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

// --------------------- 目标 CRUD ---------------------

func (r *router) handleCreateGoal(c *gin.Context) {
	var in goals.CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rec, err := r.goals.Create(c.Request.Context(), userID(c), in)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"goal": rec})
}

func (r *router) handleListGoals(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	recs, err := r.goals.List(c.Request.Context(), userID(c),
		strings.TrimSpace(c.Query("status")),
		strings.ToLower(strings.TrimSpace(c.Query("timeframe"))),
		limit, offset)
	if err != nil {
		writeStoreErr(c, err)
		return
	}
	if recs == nil {
		recs = []store.GoalRecord{}
	}
	c.JSON(http.StatusOK, gin.H{"goals": recs})
}

func (r *router) handleGetGoal(c *gin.Context) {
	id, ok := goalID(c)
	if !ok {
		return
	}
	rec, err := r.goals.Get(c.Request.Context(), userID(c), id)
	if err != nil {
		writeStoreErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"goal": rec})
}

func (r *router) handleToggleGoal(c *gin.Context) {
	id, ok := goalID(c)
	if !ok {
		return
	}
	rec, err := r.goals.Complete(c.Request.Context(), userID(c), id)
	if err != nil {
		writeStoreErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"goal": rec})
}

func (r *router) handleDeleteGoal(c *gin.Context) {
	id, ok := goalID(c)
	if !ok {
		return
	}
	if err := r.goals.Delete(c.Request.Context(), userID(c), id); err != nil {
		writeStoreErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

func (r *router) handleFailGoal(c *gin.Context) {
	id, ok := goalID(c)
	if !ok {
		return
	}
	var in struct {
		Lesson string `json:"lesson"`
	}
	_ = c.ShouldBindJSON(&in)
	rec, err := r.goals.Fail(c.Request.Context(), userID(c), id, in.Lesson)
	if err != nil {
		writeStoreErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"goal": rec})
}

func (r *router) handleUpdateReminder(c *gin.Context) {
	id, ok := goalID(c)
	if !ok {
		return
	}
	var in struct {
		ReminderTime *time.Time `json:"reminder_time"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rec, err := r.goals.Update(c.Request.Context(), userID(c), id, goals.UpdateInput{ReminderTime: in.ReminderTime})
	if err != nil {
		writeStoreErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"goal": rec})
}

// handleSnoozeAlarm 推迟提醒，默认 10 分钟。
func (r *router) handleSnoozeAlarm(c *gin.Context) {
	id, ok := goalID(c)
	if !ok {
		return
	}
	var in struct {
		Minutes int `json:"minutes"`
	}
	_ = c.ShouldBindJSON(&in)
	if in.Minutes <= 0 {
		in.Minutes = 10
	}
	later := time.Now().Add(time.Duration(in.Minutes) * time.Minute)
	rec, err := r.goals.Update(c.Request.Context(), userID(c), id, goals.UpdateInput{ReminderTime: &later})
	if err != nil {
		writeStoreErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"goal": rec, "snoozed_until": later})
}

// --------------------- AI 能力 ---------------------

func (r *router) handleUploadEvidence(c *gin.Context) {
	id, ok := goalID(c)
	if !ok {
		return
	}
	uid := userID(c)
	ctx := c.Request.Context()

	rec, err := r.goals.Get(ctx, uid, id)
	if err != nil {
		writeStoreErr(c, err)
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少 image 文件"})
		return
	}
	if fileHeader.Size > maxImageBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "图片超过大小限制"})
		return
	}
	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	raw, err := io.ReadAll(f)
	f.Close()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	path, err := r.saveEvidence(id, fileHeader.Filename, raw)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	source := sourceAI
	result, err := r.ai.VerifyEvidence(ctx, rec.Text, ai.DataURL(raw, fileHeader.Header.Get("Content-Type")))
	if err != nil {
		logger.Warnf("证据核验走兜底: %v", err)
		source = sourceFallback
		result = goals.HeuristicEvidence()
	}

	updated, err := r.goals.AttachEvidence(ctx, uid, id, path, result.Verified, result.Feedback)
	if err != nil {
		writeStoreErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"goal":     updated,
		"verified": result.Verified,
		"feedback": result.Feedback,
		"source":   source,
	})
}

func (r *router) saveEvidence(goalID int64, filename string, raw []byte) (string, error) {
	dir := r.evidenceDir
	if dir == "" {
		dir = "data/evidence"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	ext := filepath.Ext(filename)
	if ext == "" {
		ext = ".jpg"
	}
	path := filepath.Join(dir, fmt.Sprintf("%d_%d%s", goalID, time.Now().UnixNano(), ext))
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func (r *router) handleGoalTips(c *gin.Context) {
	id, ok := goalID(c)
	if !ok {
		return
	}
	uid := userID(c)
	ctx := c.Request.Context()

	rec, err := r.goals.Get(ctx, uid, id)
	if err != nil {
		writeStoreErr(c, err)
		return
	}

	source := sourceAI
	tips, err := r.ai.Tips(ctx, rec.Text, rec.Timeframe)
	if err != nil {
		logger.Warnf("生成提示走兜底: %v", err)
		source = sourceFallback
		tips = goals.HeuristicTips()
	}
	if _, err := r.goals.SetTips(ctx, uid, id, tips); err != nil {
		writeStoreErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tips": tips, "source": source})
}

func (r *router) handleRefineGoal(c *gin.Context) {
	var in struct {
		Text      string `json:"text"`
		Timeframe string `json:"timeframe"`
	}
	if err := c.ShouldBindJSON(&in); err != nil || strings.TrimSpace(in.Text) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text 必填"})
		return
	}
	if in.Timeframe == "" {
		in.Timeframe = store.TimeframeDaily
	}

	source := sourceAI
	subgoals, err := r.ai.Refine(c.Request.Context(), in.Text, in.Timeframe)
	if err != nil {
		logger.Warnf("目标细化走兜底: %v", err)
		source = sourceFallback
		subgoals = goals.HeuristicRefine(in.Text, in.Timeframe)
	}
	c.JSON(http.StatusOK, gin.H{"subgoals": subgoals, "source": source})
}

func (r *router) handleDecomposeGoal(c *gin.Context) {
	var in struct {
		Text string `json:"text"`
	}
	if err := c.ShouldBindJSON(&in); err != nil || strings.TrimSpace(in.Text) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text 必填"})
		return
	}

	source := sourceAI
	dec, err := r.ai.Decompose(c.Request.Context(), in.Text)
	if err != nil {
		logger.Warnf("目标拆解走兜底: %v", err)
		source = sourceFallback
		dec = goals.HeuristicDecompose(in.Text)
	}
	c.JSON(http.StatusOK, gin.H{
		"daily":   dec.Daily,
		"weekly":  dec.Weekly,
		"monthly": dec.Monthly,
		"source":  source,
	})
}

func (r *router) handleGeneratePlan(c *gin.Context) {
	var in struct {
		Visions string `json:"visions"`
	}
	if err := c.ShouldBindJSON(&in); err != nil || strings.TrimSpace(in.Visions) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "visions 必填"})
		return
	}

	source := sourceAI
	plan, err := r.ai.Plan(c.Request.Context(), in.Visions)
	if err != nil {
		logger.Warnf("年度规划走兜底: %v", err)
		source = sourceFallback
		plan = goals.HeuristicPlan(in.Visions)
	}
	c.JSON(http.StatusOK, gin.H{
		"daily":   plan.Daily,
		"weekly":  plan.Weekly,
		"monthly": plan.Monthly,
		"yearly":  plan.Yearly,
		"source":  source,
	})
}

func (r *router) handleYearlyReport(c *gin.Context) {
	uid := userID(c)
	ctx := c.Request.Context()

	completed, err := r.goals.List(ctx, uid, store.StatusCompleted, "", 0, 0)
	if err != nil {
		writeStoreErr(c, err)
		return
	}
	failed, err := r.goals.List(ctx, uid, store.StatusFailed, "", 0, 0)
	if err != nil {
		writeStoreErr(c, err)
		return
	}
	var wins, lessons []string
	for _, g := range completed {
		wins = append(wins, g.Text)
	}
	for _, g := range failed {
		if strings.TrimSpace(g.Lesson) != "" {
			lessons = append(lessons, g.Lesson)
		}
	}

	source := sourceAI
	report, err := r.ai.Report(ctx, wins, lessons)
	if err != nil {
		logger.Warnf("年度报告走兜底: %v", err)
		source = sourceFallback
		report = goals.HeuristicReport(wins, lessons)
	}
	c.JSON(http.StatusOK, gin.H{"report": report, "source": source})
}

func (r *router) handleCoachChat(c *gin.Context) {
	uid := userID(c)
	ctx := c.Request.Context()

	pendingRecs, err := r.goals.Pending(ctx, uid)
	if err != nil {
		writeStoreErr(c, err)
		return
	}
	pending := make([]ai.PendingGoal, 0, len(pendingRecs))
	for _, g := range pendingRecs {
		pending = append(pending, ai.PendingGoal{Timeframe: g.Timeframe, Text: g.Text})
	}

	source := sourceAI
	msg, err := r.ai.Coach(ctx, pending)
	if err != nil {
		logger.Warnf("教练建议走兜底: %v", err)
		source = sourceFallback
		msg = goals.HeuristicCoach(pendingRecs)
	}
	c.JSON(http.StatusOK, gin.H{"message": msg, "source": source})
}

// --------------------- 观测/统计 ---------------------

func (r *router) handleAICalls(c *gin.Context) {
	if r.calls == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "AI 调用日志未启用"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	recs, err := r.calls.List(c.Request.Context(), ailog.Query{
		Capability: strings.TrimSpace(c.Query("capability")),
		OnlyErrors: c.Query("only_errors") == "true",
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if recs == nil {
		recs = []ailog.Record{}
	}
	c.JSON(http.StatusOK, gin.H{"calls": recs})
}

func (r *router) handleStats(c *gin.Context) {
	rec, err := r.goals.Stats(c.Request.Context(), userID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": rec})
}

// --------------------- 看板 ---------------------

func (r *router) handleDashboard(c *gin.Context) {
	uid := userID(c)
	ctx := c.Request.Context()
	all, err := r.goals.List(ctx, uid, "", "", 0, 0)
	if err != nil {
		writeStoreErr(c, err)
		return
	}
	stats, err := r.goals.Stats(ctx, uid)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := r.dashboard.RenderHTML(c.Writer, all, stats); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func (r *router) handleDashboardSnapshot(c *gin.Context) {
	uid := userID(c)
	ctx := c.Request.Context()
	all, err := r.goals.List(ctx, uid, "", "", 0, 0)
	if err != nil {
		writeStoreErr(c, err)
		return
	}
	stats, err := r.goals.Stats(ctx, uid)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	png, err := r.dashboard.Snapshot(ctx, all, stats)
	if err != nil {
		logger.Warnf("看板截图失败: %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "截图不可用（缺少可用浏览器）"})
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}
