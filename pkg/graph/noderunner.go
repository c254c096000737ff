package graph

import (
	"context"
	"errors"
	"fmt"

	"github.com/ospreyai/osprey/pkg/capability"
	"github.com/ospreyai/osprey/pkg/contextstore"
	"github.com/ospreyai/osprey/pkg/registry"
	"github.com/ospreyai/osprey/pkg/state"
)

// NodeRunner is the generic wrapper around every capability's Execute
//. It is the only place capability instances are invoked,
// so capabilities stay simple and uniform: pre-extract inputs, consume a
// pending approval resume, invoke, validate provides, classify errors.
type NodeRunner struct {
	Registry *registry.Registry
}

// NewNodeRunner builds a NodeRunner over reg.
func NewNodeRunner(reg *registry.Registry) *NodeRunner {
	return &NodeRunner{Registry: reg}
}

// Run executes one capability step and returns the state.Update the
// graph runtime should merge. It never returns a Go error itself —
// failures are represented as an Update that sets state.Error, so the
// router can uniformly decide what happens next.
func (r *NodeRunner) Run(ctx context.Context, s state.State, capabilityName string) state.Update {
	cap, err := registry.LookupTyped[capability.Capability](r.Registry, registry.KindCapability, capabilityName)
	if err != nil {
 return fatalUpdate(capabilityName, fmt.Errorf("resolve capability: %w", err), state.ErrorKindConfiguration)
	}

	step, ok := currentStep(s, capabilityName)
	if !ok {
 return fatalUpdate(capabilityName, fmt.Errorf("no planned step for capability %q at current_step_index", capabilityName), state.ErrorKindConfiguration)
	}

	var resume *state.ResumePayload
	consumingApproval := s.Approval.CapabilityName == capabilityName && s.Approval.ResumePayload != nil
	if consumingApproval {
 resume = s.Approval.ResumePayload
	}

	var inputs capability.ExtractedInputs
	if requires := cap.Requires(); len(requires) > 0 {
 inputs, err = contextstore.ExtractForStep(s.ContextData, step, requires)
 if err != nil {
 return retriableUpdate(capabilityName, RouteCapabilityStep, err, priorRetryCount(s, capabilityName))
 }
	}

	run := &capability.RunContext{Step: step, State: s, Inputs: inputs, Resume: resume}
	update, execErr := cap.Execute(ctx, run)

	if execErr != nil {
 return classifyExecutionError(cap, capabilityName, execErr, priorRetryCount(s, capabilityName))
	}

	if consumingApproval && update.Approval == nil {
 cleared := state.Approval{}
 update.Approval = &cleared
	}

	// Approval request: suspend without validating provides or advancing
	// the step index (post-execute).
	if update.Approval != nil && update.Approval.InterruptPayload != nil {
 return update
	}

	if missing := missingProvision(cap, step, update.NewContextData); missing != "" {
 return fatalUpdate(capabilityName, fmt.Errorf("capability %q did not store a %q context under key %q", capabilityName, missing, step.ContextKey), state.ErrorKindCapabilityExecution)
	}

	planning := s.Planning
	planning.CurrentStepIndex++
	update.Planning = &planning
	return update
}

func currentStep(s state.State, capabilityName string) (state.PlannedStep, bool) {
	idx := s.Planning.CurrentStepIndex
	if idx < 0 || idx >= len(s.Planning.ExecutionPlan) {
 return state.PlannedStep{}, false
	}
	step := s.Planning.ExecutionPlan[idx]
	if step.CapabilityName != capabilityName {
 return state.PlannedStep{}, false
	}
	return step, true
}

// missingProvision returns the first declared Provides context type the
// capability failed to store under step.ContextKey, or "" if all were
// satisfied.
func missingProvision(cap capability.Capability, step state.PlannedStep, produced state.ContextData) string {
	for _, p := range cap.Provides() {
 byKey, ok := produced[p.ContextType]
 if !ok {
 return p.ContextType
 }
 if _, ok := byKey[step.ContextKey]; !ok {
 return p.ContextType
 }
	}
	return ""
}

func classifyExecutionError(cap capability.Capability, capabilityName string, err error, priorRetries int) state.Update {
	var reclass *ReclassificationRequiredError
	if errors.As(err, &reclass) {
 return reclassificationUpdate(capabilityName, reclass.Error)
	}

	severity := state.SeverityFatal
	if classifier, ok := cap.(capability.ErrorClassifier); ok {
 severity = classifier.Classify(err)
	}

	switch severity {
	case state.SeverityRetriable:
 return retriableUpdate(capabilityName, RouteCapabilityStep, err, priorRetries)
	case state.SeverityReclassification:
 return reclassificationUpdate(capabilityName, err.Error)
	default:
 return fatalUpdate(capabilityName, &CapabilityExecutionError{CapabilityName: capabilityName, Err: err}, state.ErrorKindCapabilityExecution)
	}
}

// priorRetryCount carries forward the retry count the router last set for
// this capability, so a second consecutive failure doesn't silently reset
// the budget the router is tracking (only the router increments it; a
// freshly-built ErrorState must not clobber that count back to zero).
func priorRetryCount(s state.State, capabilityName string) int {
	if s.Error != nil && s.Error.FailingCapability == capabilityName {
 return s.Error.RetryCount
	}
	return 0
}

func fatalUpdate(capabilityName string, err error, kind state.ErrorKind) state.Update {
	u := state.Update{}
	u.SetError(&state.ErrorState{
 Kind: kind,
 Severity: state.SeverityFatal,
 Message: err.Error,
 FailingCapability: capabilityName,
	})
	return u
}

func retriableUpdate(capabilityName string, node Route, err error, priorRetries int) state.Update {
	u := state.Update{}
	u.SetError(&state.ErrorState{
 Kind: state.ErrorKindRetriable,
 Severity: state.SeverityRetriable,
 Message: err.Error,
 FailingCapability: capabilityName,
 RetryCount: priorRetries,
 Metadata: map[string]any{errorNodeKey: string(node)},
	})
	return u
}

func reclassificationUpdate(capabilityName, reason string) state.Update {
	u := state.Update{}
	u.SetError(&state.ErrorState{
 Kind: state.ErrorKindReclassificationReq,
 Severity: state.SeverityReclassification,
 Message: reason,
 FailingCapability: capabilityName,
	})
	return u
}
