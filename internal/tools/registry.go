// Package tools implements the four read-only operations the model may
// invoke, their argument schemas, and the dispatch registry that binds
// model-issued operation requests to typed handlers.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/cardenasjm/dispo/internal/llm"
	"github.com/cardenasjm/dispo/internal/store"
)

// Args holds the decoded, coerced arguments for one operation call.
type Args struct {
	Servicio string
	FechaINI string
	FechaFIN string
}

// Param declares one argument of an operation: its wire name, schema
// description, and how it lands in Args.
type Param struct {
	Name        string
	Description string
	Required    bool
	assign      func(a *Args, v string)
}

// Operation is one entry of the closed operation catalog.
type Operation struct {
	Name        string
	Description string
	Params      []Param
	run         func(ctx context.Context, args Args) string
}

// UnknownOperationError is returned when the model requests an operation
// name that is not in the catalog.
type UnknownOperationError struct {
	Name string
}

func (e *UnknownOperationError) Error() string {
	return fmt.Sprintf("unknown operation %q", e.Name)
}

// Registry is the closed catalog of declared operations. The catalog is
// fixed at construction; dispatch validates names and arguments before any
// query runs.
type Registry struct {
	store  *store.Store
	ops    []*Operation
	byName map[string]*Operation
	now    func() time.Time
}

// NewRegistry builds the catalog of the four declared operations over the
// given store.
func NewRegistry(st *store.Store) *Registry {
	r := &Registry{
		store:  st,
		byName: make(map[string]*Operation),
		now:    time.Now,
	}

	servicio := func(desc string, required bool) Param {
		return Param{
			Name: "servicio", Description: desc, Required: required,
			assign: func(a *Args, v string) { a.Servicio = v },
		}
	}
	fechaINI := Param{
		Name: "fechaINI", Description: "Fecha inicial en formato YYYY-MM-DD (opcional)",
		assign: func(a *Args, v string) { a.FechaINI = v },
	}
	fechaFIN := Param{
		Name: "fechaFIN", Description: "Fecha final en formato YYYY-MM-DD (opcional)",
		assign: func(a *Args, v string) { a.FechaFIN = v },
	}

	r.register(&Operation{
		Name:        "consultar_servicios",
		Description: "Consulta servicios disponibles en la base de datos. Retorna identificación, SLA y clasificación de cada servicio.",
		Params: []Param{
			servicio("Nombre del servicio (opcional). Si no se proporciona, retorna todos.", false),
		},
		run: r.runConsultarServicios,
	})
	r.register(&Operation{
		Name:        "consultar_promesa_servicio",
		Description: "Consulta la promesa de servicio (disponibilidad esperada) para un servicio específico, con minutos prometidos por día.",
		Params: []Param{
			servicio("Nombre del servicio", true),
			fechaINI,
			fechaFIN,
		},
		run: r.runConsultarPromesa,
	})
	r.register(&Operation{
		Name:        "consultar_afectaciones",
		Description: "Consulta las afectaciones (downtime) de un servicio en un rango de fechas, con tiempos de caída.",
		Params: []Param{
			servicio("Nombre del servicio", true),
			{
				Name: "fecha_inicio", Description: "Fecha inicial en formato YYYY-MM-DD (opcional)",
				assign: func(a *Args, v string) { a.FechaINI = v },
			},
			{
				Name: "fecha_fin", Description: "Fecha final en formato YYYY-MM-DD (opcional)",
				assign: func(a *Args, v string) { a.FechaFIN = v },
			},
		},
		run: r.runConsultarAfectaciones,
	})
	r.register(&Operation{
		Name:        "calcular_disponibilidad",
		Description: "Calcula la disponibilidad real de un servicio comparando promesa vs afectaciones, con porcentaje y estado del SLA.",
		Params: []Param{
			servicio("Nombre del servicio", true),
			fechaINI,
			fechaFIN,
		},
		run: r.runCalcularDisponibilidad,
	})

	return r
}

func (r *Registry) register(op *Operation) {
	r.ops = append(r.ops, op)
	r.byName[op.Name] = op
}

// Operations returns the catalog in registration order.
func (r *Registry) Operations() []*Operation {
	return r.ops
}

// Specs renders the catalog as the tool declarations sent to the model.
func (r *Registry) Specs() []llm.Tool {
	specs := make([]llm.Tool, len(r.ops))
	for i, op := range r.ops {
		props := make(map[string]llm.SchemaProperty, len(op.Params))
		var required []string
		for _, p := range op.Params {
			props[p.Name] = llm.SchemaProperty{Type: "string", Description: p.Description}
			if p.Required {
				required = append(required, p.Name)
			}
		}
		specs[i] = llm.Tool{
			Type: "function",
			Function: llm.FunctionDef{
				Name:        op.Name,
				Description: op.Description,
				Parameters: llm.Schema{
					Type:       "object",
					Properties: props,
					Required:   required,
				},
			},
		}
	}
	return specs
}

// Dispatch validates the operation name and arguments and executes the
// operation. The returned string is always model-readable text; the error is
// non-nil only for protocol-level problems (unknown name, malformed or
// missing arguments), never for query failures — those are encoded in the
// result text itself.
func (r *Registry) Dispatch(ctx context.Context, name string, rawArgs string) (string, error) {
	op, ok := r.byName[name]
	if !ok {
		return "", &UnknownOperationError{Name: name}
	}

	args, err := decodeArgs(op.Params, rawArgs)
	if err != nil {
		return "", fmt.Errorf("invalid arguments for %s: %w", name, err)
	}

	return op.run(ctx, args), nil
}

// decodeArgs parses the model-supplied JSON argument object and coerces each
// declared parameter to text. Arguments not in the schema are ignored.
func decodeArgs(params []Param, rawArgs string) (Args, error) {
	var raw map[string]any
	if rawArgs != "" {
		if err := json.Unmarshal([]byte(rawArgs), &raw); err != nil {
			return Args{}, fmt.Errorf("parsing argument object: %w", err)
		}
	}

	var args Args
	for _, p := range params {
		v := coerceString(raw[p.Name])
		if p.Required && v == "" {
			return Args{}, fmt.Errorf("missing required argument %q", p.Name)
		}
		p.assign(&args, v)
	}
	return args, nil
}

// coerceString converts a decoded JSON value to its text form. The model
// occasionally sends numbers or booleans where strings are declared.
func coerceString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
