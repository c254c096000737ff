package graph

import (
	"context"
	"errors"
	"fmt"

	"github.com/ospreyai/osprey/pkg/checkpoint"
	"github.com/ospreyai/osprey/pkg/state"
)

// Node is implemented by every LLM-backed preprocessing/planning node and
// every terminal node the runtime dispatches to via Decide's Route.
// RouteCapabilityStep and RouteApprovalPause are handled directly by the
// runtime instead, since they need extra context (a capability name, or
// nothing at all).
type Node interface {
	Run(ctx context.Context, s state.State) (state.Update, error)
}

// Runtime wires the router, the capability node runner, and the
// preprocessing/planning/terminal nodes into the graph loop, checkpointing
// at every node boundary so any node boundary is a valid suspension point.
type Runtime struct {
	Limits LimitsView
	Checkpointer checkpoint.Checkpointer
	NodeRunner *NodeRunner
	TaskExtraction Node
	Classification Node
	Orchestration Node
	Respond Node
	Clarify Node
	Error Node
}

// RunConfig names which conversation a Run call advances.
type RunConfig struct {
	ThreadID string
	CheckpointNS string
}

// maxStepsPerTurn guards against an infinite loop inside one external call
// to Run. Ordinary conversations exit well under this via RouteRespond,
// RouteClarify, RouteError, or RouteApprovalPause.
const maxStepsPerTurn = 64

// Run advances the conversation named by cfg from its last checkpoint (or
// a fresh state.New if none exists) through the graph until it reaches
// a terminal node or suspends for approval, checkpointing after every
// node.
func (rt *Runtime) Run(ctx context.Context, cfg RunConfig, input state.Update) (state.State, Route, error) {
	s, _, err := rt.Checkpointer.Load(ctx, cfg.ThreadID, cfg.CheckpointNS)
	if err != nil {
 return state.State{}, "", fmt.Errorf("graph: loading checkpoint: %w", err)
	}
	s = state.Merge(s, input)

	for i := 0; i < maxStepsPerTurn; i++ {
 decision := Decide(s, rt.Limits)
 s = state.Merge(s, decision.Update)

 if decision.Route == RouteApprovalPause {
 if err := rt.Checkpointer.Save(ctx, cfg.ThreadID, cfg.CheckpointNS, s); err != nil {
 return s, decision.Route, fmt.Errorf("graph: checkpointing before approval pause: %w", err)
 }
 return s, decision.Route, nil
 }

 var update state.Update
 var nodeErr error
 switch decision.Route {
 case RouteCapabilityStep:
 update = rt.NodeRunner.Run(ctx, s, decision.CapabilityName)
 case RouteTaskExtraction:
 update, nodeErr = rt.TaskExtraction.Run(ctx, s)
 case RouteClassification:
 update, nodeErr = rt.Classification.Run(ctx, s)
 case RouteOrchestration:
 update, nodeErr = rt.Orchestration.Run(ctx, s)
 case RouteRespond:
 update, nodeErr = rt.Respond.Run(ctx, s)
 case RouteClarify:
 update, nodeErr = rt.Clarify.Run(ctx, s)
 case RouteError:
 update, nodeErr = rt.Error.Run(ctx, s)
 default:
 return s, decision.Route, fmt.Errorf("graph: router produced unknown route %q", decision.Route)
 }

 if nodeErr != nil {
 update = nodeErrorUpdate(s, decision.Route, nodeErr)
 }
 s = state.Merge(s, update)

 if err := rt.Checkpointer.Save(ctx, cfg.ThreadID, cfg.CheckpointNS, s); err != nil {
 return s, decision.Route, fmt.Errorf("graph: checkpointing after %s: %w", decision.Route, err)
 }

 if decision.Route == RouteRespond || decision.Route == RouteClarify || decision.Route == RouteError {
 return s, decision.Route, nil
 }
	}

	return s, "", fmt.Errorf("graph: exceeded %d node transitions in one turn without reaching a terminal node", maxStepsPerTurn)
}

// Resume writes a resume payload into the approval slot and continues the
// run from the suspended node.
func (rt *Runtime) Resume(ctx context.Context, cfg RunConfig, payload state.ResumePayload) (state.State, Route, error) {
	s, ok, err := rt.Checkpointer.Load(ctx, cfg.ThreadID, cfg.CheckpointNS)
	if err != nil {
 return state.State{}, "", fmt.Errorf("graph: loading checkpoint: %w", err)
	}
	if !ok {
 return state.State{}, "", fmt.Errorf("graph: no checkpoint found for thread %q", cfg.ThreadID)
	}
	if s.Approval.InterruptPayload == nil {
 return state.State{}, "", fmt.Errorf("graph: thread %q has no pending approval to resume", cfg.ThreadID)
	}

	approval := s.Approval
	approval.ResumePayload = &payload
	s.Approval = approval
	if err := rt.Checkpointer.Save(ctx, cfg.ThreadID, cfg.CheckpointNS, s); err != nil {
 return state.State{}, "", fmt.Errorf("graph: checkpointing resume payload: %w", err)
	}

	return rt.Run(ctx, cfg, state.Update{})
}

// nodeErrorUpdate wraps a Go error returned by a preprocessing/planning
// node into a state.Update the router can act on, mirroring how
// NodeRunner classifies capability execution errors (noderunner.go). A
// ReclassificationRequiredError (raised by orchestration validation rule
// 1) routes straight back to classification; everything else — including
// DuplicateContextKeyError and InvalidContextKeyError, which call for
// re-planning rather than reclassification — is retriable and tagged
// with the node that failed so the router re-enters it under budget.
func nodeErrorUpdate(s state.State, route Route, err error) state.Update {
	var reclass *ReclassificationRequiredError
	if errors.As(err, &reclass) {
 u := state.Update{}
 u.SetError(&state.ErrorState{
 Kind: state.ErrorKindReclassificationReq,
 Severity: state.SeverityReclassification,
 Message: reclass.Error,
 })
 return u
	}

	var classFailed *ClassificationFailedError
	if errors.As(err, &classFailed) {
 u := state.Update{}
 u.SetError(&state.ErrorState{
 Kind: state.ErrorKindConfiguration,
 Severity: state.SeverityFatal,
 Message: classFailed.Error,
 })
 return u
	}

	priorRetries := 0
	if s.Error != nil && s.Error.FailingCapability == "" {
 if node, _ := s.Error.Metadata[errorNodeKey].(string); Route(node) == route {
 priorRetries = s.Error.RetryCount
 }
	}

	u := state.Update{}
	u.SetError(&state.ErrorState{
 Kind: state.ErrorKindRetriable,
 Severity: state.SeverityRetriable,
 Message: err.Error,
 RetryCount: priorRetries,
 Metadata: map[string]any{errorNodeKey: string(route)},
	})
	return u
}
