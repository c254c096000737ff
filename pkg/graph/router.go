package graph

import (
	"github.com/ospreyai/osprey/pkg/state"
)

// Route names a node label the runtime dispatches to.
type Route string

const (
	RouteTaskExtraction Route = "task_extraction"
	RouteClassification Route = "classification"
	RouteOrchestration Route = "orchestration"
	RouteCapabilityStep Route = "capability_step"
	RouteApprovalPause Route = "approval_pause"
	RouteClarify Route = "clarify"
	RouteRespond Route = "respond"
	RouteError Route = "error"
)

// errorNodeKey is the state.ErrorState.Metadata key nodes set so the
// router knows which node to re-enter on a retriable error.
const errorNodeKey = "node"

// Decision is the router's output: the next route, the capability name
// when Route is RouteCapabilityStep (or the capability being resumed
// into after approval), and an Update the runtime must merge before
// dispatching — the router is the only component allowed to mutate
// current_step_index, retry counters, or the reclassification counter
// outside the nodes themselves.
type Decision struct {
	Route Route
	CapabilityName string
	Update state.Update
}

// Decide implements the decision table, first match wins.
func Decide(s state.State, limits LimitsView) Decision {
	if s.Error != nil {
 if d, ok := routeError(s, limits); ok {
 return d
 }
	}

	if !s.Approval.Empty() {
 if s.Approval.ResumePayload != nil {
 return Decision{Route: RouteCapabilityStep, CapabilityName: s.Approval.CapabilityName}
 }
 if s.Approval.InterruptPayload != nil {
 return Decision{Route: RouteApprovalPause}
 }
	}

	if s.Task.TaskObjective == "" {
 return Decision{Route: RouteTaskExtraction}
	}
	if len(s.Classification.ActiveCapabilityNames) == 0 {
 return Decision{Route: RouteClassification}
	}
	if len(s.Planning.ExecutionPlan) == 0 {
 return Decision{Route: RouteOrchestration}
	}
	if s.Planning.CurrentStepIndex < len(s.Planning.ExecutionPlan) {
 step := s.Planning.ExecutionPlan[s.Planning.CurrentStepIndex]
 return Decision{Route: RouteCapabilityStep, CapabilityName: step.CapabilityName}
	}
	if clarificationSignalled(s) {
 return Decision{Route: RouteClarify}
	}
	return Decision{Route: RouteRespond}
}

// LimitsView is the subset of config.LimitsConfig the router needs,
// narrowed to avoid pkg/graph importing pkg/config for a handful of
// ints (kept as its own type so callers can pass config.LimitsConfig
// directly — see adaptLimits in runtime.go).
type LimitsView struct {
	MaxExecutionRetries int
	MaxReclassifications int
	MaxGenerationRetries int
}

func routeError(s state.State, limits LimitsView) (Decision, bool) {
	e := s.Error

	budgetExhausted := false
	switch e.Severity {
	case state.SeverityRetriable:
 budget := limits.MaxGenerationRetries
 if e.FailingCapability != "" {
 budget = limits.MaxExecutionRetries
 }
 budgetExhausted = e.RetryCount >= budget
	case state.SeverityReclassification:
 budgetExhausted = s.Planning.ReclassificationAttempts >= limits.MaxReclassifications
	}

	if e.Severity == state.SeverityFatal || budgetExhausted {
 return Decision{Route: RouteError}, true
	}

	switch e.Severity {
	case state.SeverityReclassification:
 planning := s.Planning
 planning.ExecutionPlan = nil
 planning.CurrentStepIndex = 0
 planning.ReclassificationAttempts++

 classification := s.Classification
 classification.Rationales = append(classification.Rationales, state.Rationale{
 CapabilityName: e.FailingCapability,
 IsRelevant: false,
 Rationale: e.Message,
 })

 u := state.Update{Planning: &planning, Classification: &classification}
 u.ClearError()
 return Decision{Route: RouteClassification, Update: u}, true

	case state.SeverityRetriable:
 node, _ := e.Metadata[errorNodeKey].(string)
 route := Route(node)
 if route == "" {
 route = RouteTaskExtraction
 }

 // Carry the error forward with an incremented RetryCount instead
 // of clearing it: the node re-entering reads s.Error to know this
 // is a retry, and on a subsequent failure reports RetryCount
 // unchanged so the router (and only the router) advances it.
 retried := *e
 retried.RetryCount = e.RetryCount + 1
 u := state.Update{}
 u.SetError(&retried)

 if route == RouteCapabilityStep {
 step := s.Planning.ExecutionPlan[s.Planning.CurrentStepIndex]
 return Decision{Route: RouteCapabilityStep, CapabilityName: step.CapabilityName, Update: u}, true
 }
 return Decision{Route: route, Update: u}, true
	}

	return Decision{}, false
}

// clarificationSignalled reports whether a capability stored the
// well-known clarification context this turn (Clarify).
func clarificationSignalled(s state.State) bool {
	byKey, ok := s.ContextData[state.ClarificationContextType]
	return ok && len(byKey) > 0
}
