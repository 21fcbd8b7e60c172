// Package student implements the simulated exam-taking agents. Each
// agent answers multiple-choice questions through a staged workflow and
// degrades to fixed sentinel values whenever the generation backend
// misbehaves, so a full exam run always completes.
package student

// Sentinel values substituted when a stage cannot parse the model reply.
// They are part of the result contract: downstream analysis keys on the
// exact strings.
const (
	AnswerInvalidJSON   = "Error: Invalid JSON response"
	AnswerStageFailed   = "Error in answer_node"
	RetrievalFailed     = "Failed to retrieve knowledge."
	NoMatchingDocuments = "No matching documents found."
	CritiqueFailed      = "Failed to comment."

	answerUnknown        = "Unknown"
	justificationMissing = "No justification provided"
)

// AgentState carries everything one question run accumulates across
// workflow stages. A fresh state is built per question; stages only
// ever add to it.
type AgentState struct {
	// Inputs
	Question string
	Studied  []string
	Model    string

	// Plan stage
	KnowledgeQueries []string

	// Retrieve stage
	KeyPhrases []string
	Content    string

	// Answer stage
	FinalAnswer   []string
	Confidence    float64
	Justification string

	// Critique stage
	Comment string
}

// NewState builds the initial state for one question run.
func NewState(question string, studied []string) *AgentState {
	return &AgentState{
		Question: question,
		Studied:  studied,
	}
}

// Answered reports whether the answer stage produced the single-option
// form the exam contract requires.
func (s *AgentState) Answered() bool {
	return len(s.FinalAnswer) == 1
}

// AnswerText returns the single answer option, or the empty string when
// the answer is missing or malformed.
func (s *AgentState) AnswerText() string {
	if !s.Answered() {
		return ""
	}
	return s.FinalAnswer[0]
}

func clampConfidence(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
