package chat

import "github.com/cfdlab/foamtutor/internal/dialogue"

// snapshot is the learner state read after each orchestrator call, so the
// view never touches the orchestrator while a command runs.
type snapshot struct {
	Level      string
	Progress   float64
	Topic      string
	Ready      bool
	Confidence map[string]float64
}

// openedMsg carries the opening question.
type openedMsg struct {
	Text string
	Snap snapshot
}

// replyMsg carries the result of one learner turn.
type replyMsg struct {
	Result dialogue.TurnResult
	Snap   snapshot
}

// noticeMsg is the output of a slash command.
type noticeMsg struct {
	Text string
	Snap snapshot
	Err  error
}
