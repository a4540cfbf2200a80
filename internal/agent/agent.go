// Package agent drives the tool-calling loop: it alternates between asking
// the model for a reply and executing the operations the model requested,
// until the model answers in plain text.
package agent

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/cardenasjm/dispo/internal/llm"
)

// DefaultMaxRounds bounds the Thinking/Acting cycle when no explicit cap is
// configured.
const DefaultMaxRounds = 10

// fallbackAnswer is returned when the loop ends without ever capturing a
// textual reply from the model.
const fallbackAnswer = "No pude procesar tu consulta. Por favor, intenta reformularla."

// Chatter produces one assistant message for the accumulated conversation
// and the declared operation catalog.
type Chatter interface {
	Chat(ctx context.Context, model string, messages []llm.Message, tools []llm.Tool) (llm.Message, error)
}

// Dispatcher exposes the operation catalog and executes one operation
// request, returning model-readable result text.
type Dispatcher interface {
	Specs() []llm.Tool
	Dispatch(ctx context.Context, name string, rawArgs string) (string, error)
}

// Agent answers natural-language availability questions. All collaborators
// are injected; an Agent holds no per-question state, so the same instance
// serves successive questions (never concurrent ones).
type Agent struct {
	chatter   Chatter
	model     string
	ops       Dispatcher
	maxRounds int
}

// Option adjusts Agent construction.
type Option func(*Agent)

// WithMaxRounds overrides the round cap on the Thinking/Acting cycle.
func WithMaxRounds(n int) Option {
	return func(a *Agent) {
		if n > 0 {
			a.maxRounds = n
		}
	}
}

// New builds an Agent around the given model gateway and operation catalog.
func New(chatter Chatter, model string, ops Dispatcher, opts ...Option) *Agent {
	a := &Agent{
		chatter:   chatter,
		model:     model,
		ops:       ops,
		maxRounds: DefaultMaxRounds,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Ask answers one question. The conversation starts in the Thinking state
// seeded with the user message; every model reply carrying operation
// requests switches to Acting, where each request is executed sequentially
// and its result appended in request order. The loop terminates when the
// model replies with text only, or when the round cap is reached.
//
// Ask never returns an error: every failure is rendered as a human-readable
// answer string. When trace is non-nil, per-round progress is written to it.
func (a *Agent) Ask(ctx context.Context, question string, trace io.Writer) string {
	conv := NewConversation(question)
	tools := a.ops.Specs()

	lastText := ""
	for round := 1; round <= a.maxRounds; round++ {
		tracef(trace, "Paso %d: consultando al modelo %s (%d mensajes)", round, a.model, conv.Len())

		reply, err := a.chatter.Chat(ctx, a.model, conv.Messages(), tools)
		if err != nil {
			return describeFailure(err)
		}
		conv.Append(reply)

		// Capture any text the model produced, even alongside operation
		// requests, so a truncated conversation still yields an answer.
		if reply.Content != "" {
			lastText = reply.Content
		}

		if len(reply.ToolCalls) == 0 {
			if lastText != "" {
				tracef(trace, "Respuesta final capturada (%d caracteres)", len(lastText))
				return lastText
			}
			break
		}

		tracef(trace, "El modelo solicitó %d operación(es)", len(reply.ToolCalls))
		for _, call := range reply.ToolCalls {
			tracef(trace, "  → %s(%s)", call.Function.Name, call.Function.Arguments)

			result, err := a.ops.Dispatch(ctx, call.Function.Name, call.Function.Arguments)
			if err != nil {
				// Protocol-level dispatch failures stay inside the
				// conversation so the model can correct itself.
				result = fmt.Sprintf("Error al ejecutar la operación '%s': %v", call.Function.Name, err)
			}

			conv.Append(llm.Message{
				Role:       llm.RoleTool,
				ToolCallID: call.ID,
				Name:       call.Function.Name,
				Content:    result,
			})
		}
	}

	// Round cap reached (or the final reply carried no text at all): prefer
	// whatever partial text the model produced over an empty answer.
	if lastText != "" {
		return lastText
	}
	return fallbackAnswer
}

// describeFailure converts a model-gateway failure into the answer text.
// A failure mentioning both "tool" and "role" is the known malformed
// tool-calling protocol error and gets the specialized message.
func describeFailure(err error) string {
	msg := err.Error()
	lower := strings.ToLower(msg)
	if strings.Contains(lower, "tool") && strings.Contains(lower, "role") {
		return fmt.Sprintf("❌ Error: Problema con el manejo de herramientas. Detalles técnicos: %s", msg)
	}
	return fmt.Sprintf("❌ Error al procesar la consulta: %s", msg)
}

func tracef(w io.Writer, format string, args ...any) {
	if w == nil {
		return
	}
	fmt.Fprintf(w, format+"\n", args...)
}
