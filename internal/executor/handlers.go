package executor

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/soyeahso/agentdeck/internal/domain"
)

func (e *Executor) registerBuiltins() {
	builtins := map[string]Handler{
		domain.TaskTypeStatus: e.status,
		"extract_keywords":    extractKeywords,
		"summarize":           summarize,
		"suggest_headlines":   suggestHeadlines,
		"analyze_seo":         analyzeSEO,
		"suggest_meta":        suggestMeta,
		"generate_alt_text":   generateAltText,
		"draft_post":          draftPost,
		"draft_email":         draftEmail,
		"summarize_metrics":   e.summarizeMetrics,
		"validate_page":       validatePage,
		"route_task":          e.routeTask,
	}
	if e.llm != nil {
		builtins[domain.TaskTypeChat] = e.complete
		builtins[domain.TaskTypeCustom] = e.complete
	} else {
		builtins[domain.TaskTypeChat] = offline
		builtins[domain.TaskTypeCustom] = offline
	}
	for t, h := range builtins {
		e.Register(t, h)
	}
}

// --- input helpers ---

func requireString(input map[string]any, key string) (string, error) {
	v, ok := input[key]
	if !ok {
		return "", fmt.Errorf("input.%s is required", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("input.%s must be a string", key)
	}
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("input.%s must not be empty", key)
	}
	return s, nil
}

func optionalString(input map[string]any, key, def string) string {
	if s, ok := input[key].(string); ok && strings.TrimSpace(s) != "" {
		return s
	}
	return def
}

func stringList(input map[string]any, key string) ([]string, error) {
	v, ok := input[key]
	if !ok || v == nil {
		return nil, nil
	}
	items, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("input.%s must be an array of strings", key)
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		s, ok := it.(string)
		if !ok {
			return nil, fmt.Errorf("input.%s must be an array of strings", key)
		}
		out = append(out, s)
	}
	return out, nil
}

var stopWords = map[string]bool{
	"about": true, "after": true, "also": true, "been": true, "from": true, "have": true,
	"into": true, "more": true, "only": true, "over": true, "such": true, "than": true,
	"that": true, "their": true, "them": true, "then": true, "there": true, "these": true,
	"they": true, "this": true, "were": true, "what": true, "when": true, "which": true,
	"while": true, "will": true, "with": true, "your": true,
}

func words(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-'
	})
}

func firstSentence(text string) string {
	text = strings.TrimSpace(text)
	if i := strings.IndexAny(text, ".!?"); i >= 0 {
		return text[:i+1]
	}
	return text
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n-1])) + "…"
}

// --- handlers ---

func (e *Executor) status(ctx context.Context, req Request) (Output, error) {
	return Output{Data: map[string]any{
		"agent":        req.Agent.ID,
		"status":       req.Agent.Status,
		"capabilities": len(req.Agent.Capabilities),
		"llm":          e.llm != nil,
		"time":         e.now().UTC().Format(time.RFC3339),
	}}, nil
}

func extractKeywords(_ context.Context, req Request) (Output, error) {
	text, err := requireString(req.Task.Input, "text")
	if err != nil {
		return Output{}, err
	}
	all := words(text)
	freq := map[string]int{}
	var order []string
	for _, w := range all {
		if len(w) < 4 || stopWords[w] {
			continue
		}
		if freq[w] == 0 {
			order = append(order, w)
		}
		freq[w]++
	}
	sort.SliceStable(order, func(i, j int) bool { return freq[order[i]] > freq[order[j]] })
	if len(order) > 10 {
		order = order[:10]
	}
	if order == nil {
		order = []string{}
	}
	return Output{Data: map[string]any{"keywords": order, "wordCount": len(all)}}, nil
}

func summarize(_ context.Context, req Request) (Output, error) {
	text, err := requireString(req.Task.Input, "text")
	if err != nil {
		return Output{}, err
	}
	return Output{Data: map[string]any{
		"summary":   truncate(firstSentence(text), 200),
		"wordCount": len(words(text)),
	}}, nil
}

func suggestHeadlines(_ context.Context, req Request) (Output, error) {
	topic := optionalString(req.Task.Input, "topic", "")
	if topic == "" {
		text, err := requireString(req.Task.Input, "text")
		if err != nil {
			return Output{}, fmt.Errorf("input.topic or input.text is required")
		}
		topic = truncate(firstSentence(text), 60)
	}
	topic = strings.TrimSuffix(strings.TrimSpace(topic), ".")
	return Output{Data: map[string]any{"headlines": []string{
		"What to Know About " + titleCase(topic),
		titleCase(topic) + ": A Practical Guide",
		"5 Questions About " + titleCase(topic) + ", Answered",
	}}}, nil
}

func titleCase(s string) string {
	fields := strings.Fields(s)
	for i, f := range fields {
		r := []rune(f)
		r[0] = unicode.ToUpper(r[0])
		fields[i] = string(r)
	}
	return strings.Join(fields, " ")
}

func analyzeSEO(_ context.Context, req Request) (Output, error) {
	raw, err := requireString(req.Task.Input, "url")
	if err != nil {
		return Output{}, err
	}
	u, err := url.Parse(raw)
	if err != nil {
		return Output{}, fmt.Errorf("input.url is not a valid URL: %v", err)
	}
	keywords, err := stringList(req.Task.Input, "keywords")
	if err != nil {
		return Output{}, err
	}

	p := u.Path
	checks := []map[string]any{
		{"name": "lowercase path", "pass": p == strings.ToLower(p)},
		{"name": "hyphenated words", "pass": !strings.Contains(p, "_") && !strings.Contains(p, " ")},
		{"name": "path under 75 characters", "pass": len(p) <= 75},
		{"name": "no query string", "pass": u.RawQuery == ""},
	}
	slug := strings.ToLower(path.Base(p))
	for _, kw := range keywords {
		kwSlug := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(kw)), " ", "-")
		checks = append(checks, map[string]any{
			"name": fmt.Sprintf("keyword %q in slug", kw),
			"pass": strings.Contains(slug, kwSlug),
		})
	}

	passed := 0
	for _, c := range checks {
		if c["pass"].(bool) {
			passed++
		}
	}
	return Output{Data: map[string]any{
		"url":    raw,
		"score":  passed * 100 / len(checks),
		"checks": checks,
	}}, nil
}

func suggestMeta(_ context.Context, req Request) (Output, error) {
	src := optionalString(req.Task.Input, "text", optionalString(req.Task.Input, "topic", ""))
	if src == "" {
		return Output{}, fmt.Errorf("input.text or input.topic is required")
	}
	return Output{Data: map[string]any{
		"title":       truncate(titleCase(strings.TrimSuffix(firstSentence(src), ".")), 60),
		"description": truncate(strings.TrimSpace(src), 155),
	}}, nil
}

func generateAltText(_ context.Context, req Request) (Output, error) {
	raw, err := requireString(req.Task.Input, "imageUrl")
	if err != nil {
		return Output{}, err
	}
	name := strings.TrimSuffix(path.Base(raw), path.Ext(raw))
	subject := strings.Join(strings.FieldsFunc(name, func(r rune) bool { return r == '-' || r == '_' }), " ")
	alt := subject
	if c := optionalString(req.Task.Input, "context", ""); c != "" {
		alt = subject + ", " + c
	}
	if alt == "" {
		return Output{}, fmt.Errorf("input.imageUrl has no usable file name")
	}
	r := []rune(alt)
	r[0] = unicode.ToUpper(r[0])
	return Output{Data: map[string]any{"altText": truncate(string(r), 125)}}, nil
}

var postLimits = map[string]int{"twitter": 280, "x": 280, "instagram": 2200, "linkedin": 3000, "facebook": 2000}

func draftPost(_ context.Context, req Request) (Output, error) {
	topic, err := requireString(req.Task.Input, "topic")
	if err != nil {
		return Output{}, err
	}
	platform := strings.ToLower(optionalString(req.Task.Input, "platform", "instagram"))
	limit, ok := postLimits[platform]
	if !ok {
		return Output{}, fmt.Errorf("unsupported platform %q", platform)
	}
	tag := "#" + strings.ReplaceAll(titleCase(topic), " ", "")
	text := fmt.Sprintf("Small habits add up. This week we're talking about %s and why it matters. %s #Hydration", topic, tag)
	return Output{Data: map[string]any{"platform": platform, "text": truncate(text, limit)}}, nil
}

func draftEmail(_ context.Context, req Request) (Output, error) {
	subject, err := requireString(req.Task.Input, "subject")
	if err != nil {
		return Output{}, err
	}
	audience := optionalString(req.Task.Input, "audience", "subscribers")
	return Output{Data: map[string]any{
		"subject": subject,
		"preview": truncate("A quick note for our "+audience+".", 90),
		"body": fmt.Sprintf("Hi there,\n\n%s.\n\nWe put together a short guide for %s with the essentials.\n\nRead the guide",
			strings.TrimSuffix(subject, "."), audience),
	}}, nil
}

func (e *Executor) summarizeMetrics(ctx context.Context, req Request) (Output, error) {
	hours := 24
	if v, ok := req.Task.Input["hours"]; ok {
		f, ok := v.(float64)
		if !ok || f <= 0 {
			return Output{}, fmt.Errorf("input.hours must be a positive number")
		}
		hours = int(f)
	}
	m, err := e.execs.Dashboard(ctx, time.Duration(hours)*time.Hour)
	if err != nil {
		return Output{}, fmt.Errorf("loading metrics: %w", err)
	}
	return Output{Data: map[string]any{
		"windowHours": hours,
		"summary": fmt.Sprintf("%s executions, %s success, %s average latency, %s spent",
			domain.FormatCount(m.TotalExecutions), domain.FormatRate(m.SuccessRate),
			domain.FormatLatency(m.AvgLatencyMs), domain.FormatCost(m.TotalCostUSD)),
		"recentErrors": len(m.RecentErrors),
	}}, nil
}

func validatePage(_ context.Context, req Request) (Output, error) {
	p, err := requireString(req.Task.Input, "path")
	if err != nil {
		return Output{}, err
	}
	var issues []string
	if !strings.HasPrefix(p, "/") {
		issues = append(issues, "path must be absolute")
	}
	if strings.HasSuffix(p, "/") && p != "/" {
		issues = append(issues, "path must not end with a slash")
	}
	if p != strings.ToLower(p) {
		issues = append(issues, "path must be lowercase")
	}
	if strings.ContainsAny(p, " _?#") {
		issues = append(issues, "path contains characters that are not URL-safe")
	}
	if issues == nil {
		issues = []string{}
	}
	return Output{Data: map[string]any{"path": p, "valid": len(issues) == 0, "issues": issues}}, nil
}

func (e *Executor) routeTask(ctx context.Context, req Request) (Output, error) {
	taskType, err := requireString(req.Task.Input, "taskType")
	if err != nil {
		return Output{}, err
	}
	agents, err := e.agents.List(ctx)
	if err != nil {
		return Output{}, fmt.Errorf("listing agents: %w", err)
	}
	for _, a := range agents {
		if a.ID == req.Agent.ID || a.Status == domain.AgentStatusDisabled {
			continue
		}
		for _, c := range a.Capabilities {
			if c == taskType {
				return Output{Data: map[string]any{"taskType": taskType, "agent": a.ID}}, nil
			}
		}
	}
	return Output{}, fmt.Errorf("no agent can run %q", taskType)
}

func offline(_ context.Context, req Request) (Output, error) {
	return Output{Data: map[string]any{
		"agent":    req.Agent.ID,
		"received": req.Task.Input,
		"note":     "no LLM provider configured; input echoed",
	}}, nil
}
