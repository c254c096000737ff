package state

// Update is a partial state mutation returned by a node. Every field is
// optional (nil/zero means "unchanged"); Merge applies the per-field
// reducer calls for: replace for scalars, append for artifact
// registries, merge-and-preserve for session, set-union for
// classification results.
type Update struct {
	InputOutput *InputOutput
	Task *Task
	Classification *Classification
	Planning *Planning
	NewContextData ContextData // entries to append (write-once, see Merge)
	AgentControl *AgentControl
	Approval *Approval
	Error errorUpdate
	UI *UI // treated as append-only per registry, see Merge
	Session *Session
	Interface *Interface
}

// errorUpdate distinguishes "leave Error untouched", "clear Error", and
// "set Error" — a plain *ErrorState can't express "explicitly clear".
type errorUpdate struct {
	set bool
	clear bool
	value *ErrorState
}

// SetError marks an Update as setting the error sub-record.
func (u *Update) SetError(e *ErrorState) { u.Error = errorUpdate{set: true, value: e} }

// ClearError marks an Update as clearing the error sub-record.
func (u *Update) ClearError() { u.Error = errorUpdate{clear: true} }

// Merge applies an Update onto State, returning the new State. The
// original State is never mutated — callers (the graph runtime) always
// rebind to the returned value, so a concurrently-held reference to the
// pre-merge State stays valid (useful for approval-payload building and
// checkpoint diffing).
func Merge(s State, u Update) State {
	next := s

	if u.InputOutput != nil {
 next.InputOutput = *u.InputOutput
	}
	if u.Task != nil {
 next.Task = *u.Task
	}
	if u.Classification != nil {
 next.Classification = unionClassification(s.Classification, *u.Classification)
	}
	if u.Planning != nil {
 next.Planning = *u.Planning
	}
	if len(u.NewContextData) > 0 {
 next.ContextData = appendContextData(s.ContextData, u.NewContextData)
	}
	if u.AgentControl != nil {
 next.AgentControl = *u.AgentControl
	}
	if u.Approval != nil {
 next.Approval = *u.Approval
	}
	if u.Error.set {
 next.Error = u.Error.value
	} else if u.Error.clear {
 next.Error = nil
	}
	if u.UI != nil {
 next.UI = appendUI(s.UI, *u.UI)
	}
	if u.Session != nil {
 next.Session = mergeSession(s.Session, *u.Session)
	}
	if u.Interface != nil {
 next.Interface = *u.Interface
	}

	return next
}

// unionClassification implements the "set-union for classification
// results" reducer: active capability names are unioned (order
// preserved, first-seen wins), rationales are appended.
func unionClassification(prev, incoming Classification) Classification {
	seen := make(map[string]bool, len(prev.ActiveCapabilityNames))
	names := make([]string, 0, len(prev.ActiveCapabilityNames)+len(incoming.ActiveCapabilityNames))
	for _, n := range prev.ActiveCapabilityNames {
 if !seen[n] {
 seen[n] = true
 names = append(names, n)
 }
	}
	for _, n := range incoming.ActiveCapabilityNames {
 if !seen[n] {
 seen[n] = true
 names = append(names, n)
 }
	}
	rationales := make([]Rationale, 0, len(prev.Rationales)+len(incoming.Rationales))
	rationales = append(rationales, prev.Rationales...)
	rationales = append(rationales, incoming.Rationales...)
	return Classification{ActiveCapabilityNames: names, Rationales: rationales}
}

// appendContextData enforces write-once semantics (invariant 5): a
// (type, key) slot already present is never overwritten by a later
// merge. Capability Node Runner (pkg/graph) is responsible for rejecting
// duplicate writes with ErrDuplicateContextKey before they reach Merge;
// this defends in depth by silently refusing to double-write rather than
// corrupting state.
func appendContextData(existing, incoming ContextData) ContextData {
	next := existing.Clone()
	for typ, byKey := range incoming {
 inner, ok := next[typ]
 if !ok {
 inner = map[string]*ContextEntry{}
 next[typ] = inner
 }
 for key, entry := range byKey {
 if _, exists := inner[key]; exists {
 continue
 }
 inner[key] = entry
 }
	}
	return next
}

func appendUI(prev, incoming UI) UI {
	return UI{
 Images: append(append([]Artifact{}, prev.Images...), incoming.Images...),
 Notebooks: append(append([]Artifact{}, prev.Notebooks...), incoming.Notebooks...),
 Commands: append(append([]Artifact{}, prev.Commands...), incoming.Commands...),
 HTML: append(append([]Artifact{}, prev.HTML...), incoming.HTML...),
 Files: append(append([]Artifact{}, prev.Files...), incoming.Files...),
	}
}

// mergeSession implements "merge-and-preserve for session": scalar fields
// in incoming replace prev's only when explicitly set (CapabilityMode
// non-nil, DirectChatMode is always authoritative since it's a plain
// bool toggle), and preferences are merged key-by-key.
func mergeSession(prev, incoming Session) Session {
	next := prev
	next.DirectChatMode = incoming.DirectChatMode
	if incoming.CapabilityMode != nil {
 next.CapabilityMode = incoming.CapabilityMode
	}
	if len(incoming.Preferences) > 0 {
 merged := make(map[string]string, len(prev.Preferences)+len(incoming.Preferences))
 for k, v := range prev.Preferences {
 merged[k] = v
 }
 for k, v := range incoming.Preferences {
 merged[k] = v
 }
 next.Preferences = merged
	}
	return next
}
