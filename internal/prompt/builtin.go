package prompt

// 内置模板：与线上默认提示词保持一致，目录模板可覆盖。
// 带 %s 占位的模板由能力函数用 fmt.Sprintf 填充。

const (
	EvidenceSystem  = "evidence_system"
	EvidenceUser    = "evidence_user"
	CoachUser       = "coach_user"
	DecomposeSystem = "decompose_system"
	DecomposeUser   = "decompose_user"
	RefineSystem    = "refine_system"
	RefineUser      = "refine_user"
	TipsSystem      = "tips_system"
	TipsUser        = "tips_user"
	PlanSystem      = "plan_system"
	PlanUser        = "plan_user"
	ReportUser      = "report_user"
)

var builtin = map[string]string{
	EvidenceSystem: "You are an achievement verification agent for a goal-tracking app.\n" +
		"Be reasonably strict but encouraging.\n" +
		"Return ONLY valid JSON.",
	EvidenceUser: "The user claims they completed the goal: \"%s\".\n" +
		"Analyze the provided image. Does it plausibly show evidence?\n\n" +
		"Respond in JSON with:\n" +
		"  - \"verified\": boolean\n" +
		"  - \"feedback\": short 10-15 word explanation\n",
	CoachUser: "You are Goaly AI coach.\n" +
		"Given the user's pending goals, provide 2 specific high-impact tips.\n" +
		"Keep it concise, actionable, and not generic.\n\n" +
		"Pending goals:\n%s",
	DecomposeSystem: "Return ONLY valid JSON. Be concrete and measurable where possible.",
	DecomposeUser: "Decompose this yearly goal: \"%s\"\n" +
		"into exactly:\n" +
		"- 3 daily sub-goals\n" +
		"- 2 weekly sub-goals\n" +
		"- 1 monthly sub-goal\n\n" +
		"Return JSON: {\"daily\":[...], \"weekly\":[...], \"monthly\":[...]}",
	RefineSystem: "Return ONLY valid JSON. Make sub-goals specific and actionable.",
	RefineUser: "Refine this %s goal: \"%s\"\n" +
		"into exactly 3 sub-goals.\n" +
		"Return JSON: {\"subgoals\":[...]}",
	TipsSystem: "Return ONLY valid JSON. Tips must be specific, not generic.",
	TipsUser: "Give 3 specific tips for this %s goal: \"%s\".\n" +
		"Each tip: max 15 words.\n" +
		"Return JSON: {\"tips\":[...]}",
	PlanSystem: "Return ONLY valid JSON.\n" +
		"Goals must be concrete, non-overlapping, and aligned to the vision.\n" +
		"Prefer outcomes + habits.",
	PlanUser: "Plan goals for these visions: \"%s\"\n" +
		"Return exactly 3 per timeframe.\n" +
		"Return JSON: {\"daily\":[...],\"weekly\":[...],\"monthly\":[...],\"yearly\":[...]}",
	ReportUser: "Write a warm but direct yearly progress summary.\n" +
		"Include: 3 highlights, 3 lessons, and 3 next-year focus points.\n" +
		"Keep it under 250 words.\n\n" +
		"Wins: %s\n" +
		"Lessons from failures: %s\n",
}
