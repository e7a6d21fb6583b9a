package models

// Request is one user turn handed to the engine.
type Request struct {
	AgentID      string       `json:"agent_id"`
	SessionID    string       `json:"session_id"    validate:"required"`
	AgentContext AgentContext `json:"agent_context"`
	UserText     string       `json:"user_text"     validate:"required"`
}

// Key returns the session key of the request.
func (r Request) Key() SessionKey {
	return SessionKey{AgentID: r.AgentID, SessionID: r.SessionID}
}

// ResponseKind is the variant of an engine response.
type ResponseKind string

const (
	ResponseKindAsk            ResponseKind = "ask"
	ResponseKindConfirm        ResponseKind = "confirm"
	ResponseKindCancelled      ResponseKind = "cancelled"
	ResponseKindExecuted       ResponseKind = "executed"
	ResponseKindConversational ResponseKind = "conversational"
)

// Response is the engine output for one turn. Only the fields of its Kind are set.
type Response struct {
	Kind           ResponseKind `json:"kind"`
	Question       string       `json:"question,omitempty"`
	PlanSummary    string       `json:"plan_summary,omitempty"`
	State          DialogState  `json:"state,omitempty"`
	Message        string       `json:"message,omitempty"`
	Reply          string       `json:"reply,omitempty"`
	Success        bool         `json:"success"`
	PerNodeResults []NodeResult `json:"per_node_results,omitempty"`
}

// AskResponse requests a missing parameter.
func AskResponse(question string) Response {
	return Response{Kind: ResponseKindAsk, Question: question, State: DialogStateCollecting}
}

// ConfirmResponse presents a complete plan for approval.
func ConfirmResponse(summary string) Response {
	return Response{Kind: ResponseKindConfirm, PlanSummary: summary, State: DialogStateAwaitingConfirmation}
}

// CancelledResponse acknowledges a discarded automation.
func CancelledResponse(message string) Response {
	return Response{Kind: ResponseKindCancelled, Message: message}
}

// ExecutedResponse reports the outcome of an execution.
func ExecutedResponse(success bool, results []NodeResult, message string) Response {
	return Response{
		Kind:           ResponseKindExecuted,
		Success:        success,
		PerNodeResults: results,
		Message:        message,
		State:          DialogStateDone,
	}
}

// ConversationalResponse is a plain chat reply.
func ConversationalResponse(reply string) Response {
	return Response{Kind: ResponseKindConversational, Reply: reply}
}

// Text returns the natural-language message shown to the user.
func (r Response) Text() string {
	switch r.Kind {
	case ResponseKindAsk:
		return r.Question
	case ResponseKindConfirm:
		return r.PlanSummary
	case ResponseKindCancelled, ResponseKindExecuted:
		return r.Message
	default:
		return r.Reply
	}
}

// ExecutionResult is the summary returned by a workflow executor.
type ExecutionResult struct {
	WorkflowID     string       `json:"workflow_id"`
	Success        bool         `json:"success"`
	PerNodeResults []NodeResult `json:"per_node_results"`
	Error          string       `json:"error,omitempty"`
}
