package prompts

import (
	"fmt"
	"strings"
)

// tasksFile holds every template used by the content tasks.
const tasksFile = "tasks.json"

// Task is a content task the assistant can run.
type Task string

// Template tasks build one prompt around the spider-graph report.
const (
	TaskToneStyle   Task = "tone-style"
	TaskWikiPaper   Task = "wiki-paper"
	TaskTweets      Task = "tweets"
	TaskBlogOutline Task = "blog-outline"
	TaskListicle    Task = "listicle"
	TaskInstagram   Task = "instagram"
)

// Chunked tasks run once per chunk of the combined text.
const (
	TaskSummarize   Task = "summarize"
	TaskBlogContent Task = "blog-content"
	TaskQuotes      Task = "quotes"
)

// Mode says how a task is executed against the LLM.
type Mode int

// Execution modes.
const (
	// ModeTemplate sends a single prompt.
	ModeTemplate Mode = iota
	// ModeMapReduce summarizes each chunk, then summarizes the summaries.
	ModeMapReduce
	// ModePerChunk runs the chunk prompt on every chunk and joins the outputs.
	ModePerChunk
)

var taskLabels = map[Task]string{
	TaskToneStyle:   "Tone and Style Analysis",
	TaskWikiPaper:   "Write a Factual Wikipedia-like Paper",
	TaskTweets:      "Write Tweets from Content",
	TaskBlogOutline: "Write a Blog Post Outline",
	TaskListicle:    "Turn Content into a Listicle",
	TaskInstagram:   "Write an Instagram Post",
	TaskSummarize:   "Summarize Content",
	TaskBlogContent: "Generate Blog Content",
	TaskQuotes:      "Extract Quotes",
}

// AllTasks returns every task in display order.
func AllTasks() []Task {
	return []Task{
		TaskToneStyle,
		TaskWikiPaper,
		TaskTweets,
		TaskBlogOutline,
		TaskListicle,
		TaskInstagram,
		TaskSummarize,
		TaskBlogContent,
		TaskQuotes,
	}
}

// ParseTask accepts a task slug or its display label, ignoring case.
func ParseTask(s string) (Task, error) {
	s = strings.TrimSpace(s)
	for _, t := range AllTasks() {
		if strings.EqualFold(s, string(t)) || strings.EqualFold(s, t.Label()) {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown task %q", s)
}

// Label returns the human-readable task name.
func (t Task) Label() string {
	if label, ok := taskLabels[t]; ok {
		return label
	}
	return string(t)
}

// Mode returns how the task is executed.
func (t Task) Mode() Mode {
	switch t {
	case TaskSummarize:
		return ModeMapReduce
	case TaskBlogContent, TaskQuotes:
		return ModePerChunk
	default:
		return ModeTemplate
	}
}

// Valid reports whether t is a known task.
func (t Task) Valid() bool {
	_, ok := taskLabels[t]
	return ok
}

// EmphasisAreas returns the selectable areas of emphasis.
func EmphasisAreas() []string {
	return []string{
		"Writing Style",
		"Audience Engagement",
		"Data Visualization",
		"SEO Optimization",
		"Content Strategy",
	}
}

// Request carries everything a task prompt can refer to.
type Request struct {
	Task      Task
	Analysis  string // formatted spider-graph report
	URLs      []string
	Text      string
	Audience  string
	Topic     string
	Timeframe string
	Emphasis  []string
}

func (r Request) data() map[string]string {
	return map[string]string{
		"Task":      strings.ToLower(r.Task.Label()),
		"Analysis":  r.Analysis,
		"URLs":      strings.Join(r.URLs, ", "),
		"Text":      r.Text,
		"Audience":  r.Audience,
		"Topic":     r.Topic,
		"Timeframe": r.Timeframe,
		"Emphasis":  strings.Join(r.Emphasis, ", "),
	}
}

// BuildPrompt returns the prompt for a template task: the shared base block
// followed by the task's own instructions.
func BuildPrompt(r Request) (string, error) {
	if r.Task.Mode() != ModeTemplate {
		return "", fmt.Errorf("task %q is chunked and has no single prompt", r.Task)
	}

	base, err := Get(tasksFile, "base")
	if err != nil {
		return "", err
	}
	specific, err := Get(tasksFile, string(r.Task))
	if err != nil {
		return "", err
	}

	data := r.data()
	return Format(base, data) + Format(specific, data), nil
}

// ChunkPrompt returns the per-chunk prompt of a chunked task.
func ChunkPrompt(task Task, chunk, audience, topic string) (string, error) {
	key := string(task)
	switch task.Mode() {
	case ModeMapReduce:
		key = "summarize-map"
	case ModePerChunk:
	default:
		return "", fmt.Errorf("task %q is not chunked", task)
	}

	template, err := Get(tasksFile, key)
	if err != nil {
		return "", err
	}
	return Format(template, map[string]string{
		"Text":     chunk,
		"Audience": audience,
		"Topic":    topic,
	}), nil
}

// CombinePrompt returns the reduce prompt that merges partial summaries.
func CombinePrompt(summaries []string) (string, error) {
	template, err := Get(tasksFile, "summarize-combine")
	if err != nil {
		return "", err
	}
	return Format(template, map[string]string{"Text": strings.Join(summaries, "\n")}), nil
}
