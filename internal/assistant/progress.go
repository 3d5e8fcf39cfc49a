package assistant

// Step names a stage of a task run.
type Step string

// Steps in the order a run emits them.
const (
	StepFetch    Step = "fetch"
	StepAnalyze  Step = "analyze"
	StepPrompt   Step = "prompt"
	StepGenerate Step = "generate"
	StepSave     Step = "save"
	StepDone     Step = "done"
)

// Event represents a progress update during a run.
type Event struct {
	Step    Step   `json:"step"`
	Message string `json:"message"`
	Content any    `json:"content,omitempty"`
}

// Observer is called when run progress occurs. It is called from the
// goroutine that invoked Run.
type Observer func(Event)

func (o Observer) emit(step Step, message string, content any) {
	if o != nil {
		o(Event{Step: step, Message: message, Content: content})
	}
}
