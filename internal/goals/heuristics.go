package goals

import (
	"fmt"
	"strings"

	"goaly/internal/ai"
	"goaly/internal/store"
)

// 中文说明：
// AI 不可用（缺 Key、上游故障）时的确定性兜底。
// 每个 AI 能力都有一个非 AI 等价实现，web 层在能力报错时显式切换。

// HeuristicCoach 不调用模型的教练建议。
func HeuristicCoach(pending []store.GoalRecord) string {
	if len(pending) == 0 {
		return "Clear board. Add one small goal for tomorrow before you log off."
	}
	g := pending[0]
	return fmt.Sprintf("Start with \"%s\": block 25 focused minutes today and report back.", g.Text)
}

// HeuristicDecompose 按固定句式拆解年度目标。
func HeuristicDecompose(yearlyGoal string) ai.Decomposition {
	goal := strings.TrimSpace(yearlyGoal)
	return ai.Decomposition{
		Daily: []string{
			fmt.Sprintf("Spend 20 minutes on: %s", goal),
			"Log what you did in one sentence",
			"Prepare tomorrow's first step before bed",
		},
		Weekly: []string{
			fmt.Sprintf("Review weekly progress on: %s", goal),
			"Plan the next week's three work blocks",
		},
		Monthly: []string{
			fmt.Sprintf("Measure one concrete milestone for: %s", goal),
		},
	}
}

// HeuristicRefine 固定模板的子目标。
func HeuristicRefine(goalText, timeframe string) []string {
	goal := strings.TrimSpace(goalText)
	return []string{
		fmt.Sprintf("Define what done means for: %s", goal),
		fmt.Sprintf("Schedule recurring %s time for it", strings.TrimSpace(timeframe)),
		"Track each session in one line",
	}
}

// HeuristicTips 与能力层的兜底提示保持一致。
func HeuristicTips() []string {
	return append([]string(nil), ai.FallbackTips...)
}

// HeuristicPlan 每个维度一套通用目标。
func HeuristicPlan(visions string) ai.YearlyPlan {
	v := strings.TrimSpace(visions)
	return ai.YearlyPlan{
		Daily:   []string{"Do one 25-minute focus block", "Write a one-line progress note", "Prepare tomorrow's first task"},
		Weekly:  []string{"Review the week against your vision", "Plan three work blocks", "Remove one recurring distraction"},
		Monthly: []string{"Ship one visible milestone", "Reflect on what slowed you down", "Adjust next month's plan"},
		Yearly:  []string{fmt.Sprintf("Make real progress on: %s", v), "Build one keystone habit", "Document the year's lessons"},
	}
}

// HeuristicReport 以模板拼接年度总结。
func HeuristicReport(completed, lessons []string) string {
	var b strings.Builder
	b.WriteString("Yearly summary.\n")
	if len(completed) > 0 {
		b.WriteString(fmt.Sprintf("You completed %d goals this year. Highlights: %s.\n",
			len(completed), strings.Join(headN(completed, 3), ", ")))
	} else {
		b.WriteString("No completed goals recorded yet. The next entry starts today.\n")
	}
	if len(lessons) > 0 {
		b.WriteString(fmt.Sprintf("Lessons worth keeping: %s.\n", strings.Join(headN(lessons, 3), ", ")))
	}
	b.WriteString("Next year: pick fewer goals, schedule them, and review weekly.")
	return b.String()
}

// HeuristicEvidence 无法核验时先记录证据，留待人工确认。
func HeuristicEvidence() ai.EvidenceResult {
	return ai.EvidenceResult{
		Verified: false,
		Feedback: "Evidence saved. Automatic verification is unavailable; mark the goal done manually once confirmed.",
	}
}

func headN(items []string, n int) []string {
	var out []string
	for _, it := range items {
		if strings.TrimSpace(it) == "" {
			continue
		}
		out = append(out, it)
		if len(out) >= n {
			break
		}
	}
	return out
}
