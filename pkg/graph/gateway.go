package graph

import (
	"context"
	"strings"

	"github.com/ospreyai/osprey/pkg/registry"
	"github.com/ospreyai/osprey/pkg/state"
)

// Command is one parsed slash-command of the form "/name[:argument]".
type Command struct {
	Name string
	Argument string
}

// ParseCommand recognizes the `/name[:argument]` grammar. A query that
// doesn't start with "/" is ordinary conversational input, not a command.
func ParseCommand(query string) (Command, bool) {
	trimmed := strings.TrimSpace(query)
	if !strings.HasPrefix(trimmed, "/") {
 return Command{}, false
	}
	body := strings.TrimPrefix(trimmed, "/")
	if body == "" {
 return Command{}, false
	}
	name, argument, _ := strings.Cut(body, ":")
	return Command{Name: strings.ToLower(strings.TrimSpace(name)), Argument: strings.TrimSpace(argument)}, true
}

// LocalCommandHandler fully answers a command without entering the graph
// ("locally handled": no graph invocation at all).
type LocalCommandHandler func(ctx context.Context, s state.State, cmd Command) (state.Update, error)

// GatewayCommandHandler mutates session/mode state and returns without
// entering the graph.
type GatewayCommandHandler func(s state.State, cmd Command) state.Update

// Gateway is C4 of the architecture table: it owns the slash-command
// grammar and the locally-handled/gateway-handled/forwarded split, and is
// the one place a turn's raw query is classified before the graph ever
// sees it.
type Gateway struct {
	Registry *registry.Registry
	LocalCommands map[string]LocalCommandHandler
	GatewayCommands map[string]GatewayCommandHandler
}

// NewGateway builds a Gateway with the two built-in gateway-handled
// commands this core ships (session mode toggles), plus whatever
// application-specific local commands the caller supplies.
func NewGateway(reg *registry.Registry, local map[string]LocalCommandHandler) *Gateway {
	if local == nil {
 local = map[string]LocalCommandHandler{}
	}
	return &Gateway{
 Registry: reg,
 LocalCommands: local,
 GatewayCommands: map[string]GatewayCommandHandler{
 "chat": handleDirectChatMode,
 "reset": handleResetMode,
 "exit": handleResetMode,
 "stick": handleStickToCapability,
 "unstick": handleResetMode,
 "use": handleStickToCapability,
 },
	}
}

// DispatchResult is what the gateway decided for one turn: either a
// terminal Update the caller should return directly (EnterGraph false),
// or an Update to merge before handing the turn to Runtime.Run.
type DispatchResult struct {
	Update state.Update
	EnterGraph bool
}

// Dispatch classifies query against the slash-command grammar and either
// resolves it outright (local/gateway-handled), forwards it to a
// registered capability by name, or passes it through to the graph as
// ordinary conversational input.
func (g *Gateway) Dispatch(ctx context.Context, s state.State, query string) (DispatchResult, error) {
	cmd, isCommand := ParseCommand(query)
	if !isCommand {
 return DispatchResult{
 Update: state.Update{InputOutput: &state.InputOutput{Query: query, ChatHistory: s.InputOutput.ChatHistory}},
 EnterGraph: true,
 }, nil
	}

	if handler, ok := g.LocalCommands[cmd.Name]; ok {
 update, err := handler(ctx, s, cmd)
 if err != nil {
 return DispatchResult{}, err
 }
 return DispatchResult{Update: update, EnterGraph: false}, nil
	}

	if handler, ok := g.GatewayCommands[cmd.Name]; ok {
 return DispatchResult{Update: handler(s, cmd), EnterGraph: false}, nil
	}

	if g.Registry != nil {
 if _, ok := g.Registry.Describe(registry.KindCapability, cmd.Name); ok {
 return DispatchResult{
 Update: state.Update{InputOutput: &state.InputOutput{Query: query, ChatHistory: s.InputOutput.ChatHistory}},
 EnterGraph: true,
 }, nil
 }
	}

	return DispatchResult{
 Update: state.Update{InputOutput: &state.InputOutput{
 Response: "Unrecognized command \"/" + cmd.Name + "\". It isn't a built-in command or a registered capability.",
 }},
 EnterGraph: false,
	}, nil
}

// handleDirectChatMode implements "/chat": subsequent turns on this
// thread skip classification/orchestration entirely and go straight to a
// conversational response, until "/reset" or "/exit" clears it.
func handleDirectChatMode(s state.State, _ Command) state.Update {
	return state.Update{
 Session: &state.Session{DirectChatMode: true},
 InputOutput: &state.InputOutput{Response: "Direct chat mode on. Use /reset to go back to normal routing."},
	}
}

// handleResetMode implements "/reset" and "/exit": clears direct-chat
// mode and any capability stickiness.
func handleResetMode(s state.State, _ Command) state.Update {
	return state.Update{
 Session: &state.Session{DirectChatMode: false, CapabilityMode: &state.SessionMode{}},
 InputOutput: &state.InputOutput{Response: "Back to normal routing."},
	}
}

// handleStickToCapability implements "/stick:<capability>" and
// "/use:<capability>": every subsequent turn on this thread is routed
// straight at the named capability (still via classification/
// orchestration, but with that capability pinned active) until reset.
func handleStickToCapability(s state.State, cmd Command) state.Update {
	if cmd.Argument == "" {
 return state.Update{InputOutput: &state.InputOutput{Response: "Usage: /stick:<capability-name>"}}
	}
	return state.Update{
 Session: &state.Session{CapabilityMode: &state.SessionMode{Capability: cmd.Argument, Active: true}},
 InputOutput: &state.InputOutput{
 Response: "Sticking to capability \"" + cmd.Argument + "\" for this thread. Use /unstick to release it.",
 },
	}
}
