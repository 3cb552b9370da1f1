package visual

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"

	"goaly/internal/store"
)

// 中文说明：
// 统计看板：按时间维度的目标状态柱状图 + 近 12 周完成趋势折线图。
// HTML 由 go-echarts 生成；PNG 快照通过 headless chrome 截图，
// 环境里没有可用浏览器时快照接口返回错误（HTTP 层转为 503）。

const (
	colorBackground  = "#060c1b"
	colorTextPrimary = "#eceff4"
	colorCompleted   = "#34d399"
	colorPending     = "#fbbf24"
	colorFailed      = "#f87171"
	colorTrend       = "#3b82f6"

	chartWidthPx  = 1200
	chartHeightPx = 420
	trendWeeks    = 12
)

type Renderer struct {
	now func() time.Time
}

func NewRenderer() *Renderer {
	return &Renderer{now: time.Now}
}

// RenderHTML 输出完整看板页面。
func (r *Renderer) RenderHTML(w io.Writer, allGoals []store.GoalRecord, stats store.StatsRecord) error {
	page := r.buildPage(allGoals, stats)
	return page.Render(w)
}

// Snapshot 把看板页面栅格化为 PNG。
func (r *Renderer) Snapshot(ctx context.Context, allGoals []store.GoalRecord, stats store.StatsRecord) ([]byte, error) {
	if err := EnsureHeadlessAvailable(ctx); err != nil {
		return nil, fmt.Errorf("headless browser 不可用: %w", err)
	}
	var buf bytes.Buffer
	if err := r.RenderHTML(&buf, allGoals, stats); err != nil {
		return nil, err
	}
	return renderHTMLToPNG(ctx, buf.Bytes(), chartWidthPx, 2*chartHeightPx+120)
}

func (r *Renderer) buildPage(allGoals []store.GoalRecord, stats store.StatsRecord) *components.Page {
	page := components.NewPage()
	page.SetLayout(components.PageFlexLayout)
	page.AddCharts(
		r.buildStatusBar(allGoals, stats),
		r.buildTrendLine(allGoals),
	)
	return page
}

func (r *Renderer) buildStatusBar(allGoals []store.GoalRecord, stats store.StatsRecord) *charts.Bar {
	timeframes := []string{store.TimeframeDaily, store.TimeframeWeekly, store.TimeframeMonthly, store.TimeframeYearly}
	counts := map[string]map[string]int{}
	for _, tf := range timeframes {
		counts[tf] = map[string]int{}
	}
	for _, g := range allGoals {
		if _, ok := counts[g.Timeframe]; !ok {
			continue
		}
		counts[g.Timeframe][g.Status]++
	}

	series := func(status string) []opts.BarData {
		out := make([]opts.BarData, 0, len(timeframes))
		for _, tf := range timeframes {
			out = append(out, opts.BarData{Value: counts[tf][status]})
		}
		return out
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Theme:           types.ThemeWesteros,
			Width:           fmt.Sprintf("%dpx", chartWidthPx),
			Height:          fmt.Sprintf("%dpx", chartHeightPx),
			BackgroundColor: colorBackground,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:      "Goals by timeframe",
			Subtitle:   fmt.Sprintf("points=%d streak=%d discipline=%d", stats.Points, stats.Streak, stats.DisciplineScore),
			TitleStyle: &opts.TextStyle{Color: colorTextPrimary},
		}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), TextStyle: &opts.TextStyle{Color: colorTextPrimary}}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
	)
	bar.SetXAxis(timeframes).
		AddSeries("completed", series(store.StatusCompleted), charts.WithItemStyleOpts(opts.ItemStyle{Color: colorCompleted})).
		AddSeries("pending", series(store.StatusPending), charts.WithItemStyleOpts(opts.ItemStyle{Color: colorPending})).
		AddSeries("failed", series(store.StatusFailed), charts.WithItemStyleOpts(opts.ItemStyle{Color: colorFailed}))
	return bar
}

func (r *Renderer) buildTrendLine(allGoals []store.GoalRecord) *charts.Line {
	now := r.now()
	labels := make([]string, trendWeeks)
	buckets := make([]int, trendWeeks)
	for i := 0; i < trendWeeks; i++ {
		weekStart := now.AddDate(0, 0, -7*(trendWeeks-1-i))
		labels[i] = weekStart.Format("01-02")
	}
	for _, g := range allGoals {
		if g.Status != store.StatusCompleted || g.CompletedAt == nil {
			continue
		}
		age := int(now.Sub(*g.CompletedAt).Hours() / 24 / 7)
		if age < 0 || age >= trendWeeks {
			continue
		}
		buckets[trendWeeks-1-age]++
	}
	data := make([]opts.LineData, trendWeeks)
	for i, v := range buckets {
		data[i] = opts.LineData{Value: v}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Theme:           types.ThemeWesteros,
			Width:           fmt.Sprintf("%dpx", chartWidthPx),
			Height:          fmt.Sprintf("%dpx", chartHeightPx),
			BackgroundColor: colorBackground,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:      fmt.Sprintf("Completions, last %d weeks", trendWeeks),
			TitleStyle: &opts.TextStyle{Color: colorTextPrimary},
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
	)
	line.SetXAxis(labels).
		AddSeries("completed", data,
			charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}),
			charts.WithLineStyleOpts(opts.LineStyle{Color: colorTrend, Width: 2}))
	return line
}

var (
	headlessOnce sync.Once
	headlessErr  error
)

// EnsureHeadlessAvailable 探测 headless chrome，一次性缓存结果。
func EnsureHeadlessAvailable(ctx context.Context) error {
	headlessOnce.Do(func() {
		targetCtx := ctx
		if targetCtx == nil {
			targetCtx = context.Background()
		}
		parent, cancel := chromedp.NewContext(targetCtx)
		defer cancel()
		headlessErr = chromedp.Run(parent)
	})
	return headlessErr
}

func renderHTMLToPNG(ctx context.Context, html []byte, width, height int) ([]byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	parent, cancel := chromedp.NewContext(ctx)
	defer cancel()

	timeoutCtx, cancelTimeout := context.WithTimeout(parent, 20*time.Second)
	defer cancelTimeout()

	dataURI := "data:text/html;base64," + base64.StdEncoding.EncodeToString(html)
	var screenshot []byte
	tasks := chromedp.Tasks{
		chromedp.EmulateViewport(int64(width), int64(height)),
		chromedp.Navigate(dataURI),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(1500 * time.Millisecond),
		chromedp.FullScreenshot(&screenshot, 100),
	}
	if err := chromedp.Run(timeoutCtx, tasks); err != nil {
		return nil, err
	}
	return screenshot, nil
}
