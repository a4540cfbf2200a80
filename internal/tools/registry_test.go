package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/cardenasjm/dispo/internal/store"
)

const testSchema = `
CREATE TABLE TblDServicios (
	Instanceid INTEGER PRIMARY KEY,
	IddServicio INTEGER NOT NULL,
	is_spacial_service INTEGER NOT NULL DEFAULT 0,
	is_key_channel INTEGER NOT NULL DEFAULT 0,
	name TEXT NOT NULL,
	sla REAL NOT NULL
);
CREATE TABLE TblDPromesaServicio (
	Servicio TEXT NOT NULL,
	fecha TEXT NOT NULL,
	dia TEXT NOT NULL,
	es_festivo INTEGER NOT NULL DEFAULT 0,
	minutos_promesa REAL NOT NULL
);
CREATE TABLE TblHAfectaciones (
	servicio TEXT NOT NULL,
	fecha_hora_ini_afectacion TEXT NOT NULL,
	fecha_hora_fin_afectacion TEXT NOT NULL,
	minutos REAL NOT NULL,
	motivo TEXT
);
`

// testNow pins the default date window to [2026-01-01, 2026-08-26].
var testNow = time.Date(2026, time.August, 26, 12, 0, 0, 0, time.UTC)

func newTestRegistry(t *testing.T) (*Registry, *store.Store) {
	t.Helper()
	st, err := store.Open(store.Options{Database: ":memory:", Driver: store.DriverSQLite})
	if err != nil {
		t.Fatalf("opening test store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	if _, err := st.DB().Exec(testSchema); err != nil {
		t.Fatalf("creating test schema: %v", err)
	}

	r := NewRegistry(st)
	r.now = func() time.Time { return testNow }
	return r, st
}

func mustExec(t *testing.T, st *store.Store, query string, args ...any) {
	t.Helper()
	if _, err := st.DB().Exec(query, args...); err != nil {
		t.Fatalf("exec %q: %v", query, err)
	}
}

func dispatch(t *testing.T, r *Registry, name, rawArgs string) string {
	t.Helper()
	out, err := r.Dispatch(context.Background(), name, rawArgs)
	if err != nil {
		t.Fatalf("Dispatch(%s, %s): %v", name, rawArgs, err)
	}
	return out
}

func TestDispatchUnknownOperation(t *testing.T) {
	r, _ := newTestRegistry(t)

	_, err := r.Dispatch(context.Background(), "borrar_servicios", "{}")
	var unknown *UnknownOperationError
	if !errors.As(err, &unknown) {
		t.Fatalf("err = %v, want *UnknownOperationError", err)
	}
	if unknown.Name != "borrar_servicios" {
		t.Errorf("unknown.Name = %q, want borrar_servicios", unknown.Name)
	}
}

func TestDispatchMissingRequiredArgument(t *testing.T) {
	r, _ := newTestRegistry(t)

	_, err := r.Dispatch(context.Background(), "consultar_promesa_servicio", "{}")
	if err == nil || !strings.Contains(err.Error(), "servicio") {
		t.Fatalf("err = %v, want missing required argument error", err)
	}
}

func TestDispatchMalformedArguments(t *testing.T) {
	r, _ := newTestRegistry(t)

	_, err := r.Dispatch(context.Background(), "consultar_servicios", "{not json")
	if err == nil {
		t.Fatal("err = nil, want parse error")
	}
}

func TestDispatchCoercesScalarArguments(t *testing.T) {
	r, _ := newTestRegistry(t)

	// A numeric service name must be coerced to text, not rejected.
	out := dispatch(t, r, "consultar_servicios", `{"servicio": 42}`)
	if !strings.Contains(out, "No se encontraron servicios con nombre similar a: 42.") {
		t.Errorf("out = %q, want coerced numeric filter", out)
	}
}

func TestDispatchIgnoresUndeclaredArguments(t *testing.T) {
	r, _ := newTestRegistry(t)

	out := dispatch(t, r, "consultar_servicios", `{"formato": "tabla"}`)
	if !strings.Contains(out, "No se encontraron servicios.") {
		t.Errorf("out = %q, want unfiltered empty-catalog message", out)
	}
}

func TestQueryFailureReturnsErrorText(t *testing.T) {
	r, st := newTestRegistry(t)
	mustExec(t, st, "DROP TABLE TblDServicios")

	out, err := r.Dispatch(context.Background(), "consultar_servicios", "{}")
	if err != nil {
		t.Fatalf("Dispatch returned error %v, want failure encoded in text", err)
	}
	if !strings.HasPrefix(out, "Error al consultar servicios:") {
		t.Errorf("out = %q, want 'Error al consultar servicios:' prefix", out)
	}
}

func TestOperationsCatalog(t *testing.T) {
	r, _ := newTestRegistry(t)

	ops := r.Operations()
	wantParams := map[string][]string{
		"consultar_servicios":        {"servicio"},
		"consultar_promesa_servicio": {"servicio", "fechaINI", "fechaFIN"},
		"consultar_afectaciones":     {"servicio", "fecha_inicio", "fecha_fin"},
		"calcular_disponibilidad":    {"servicio", "fechaINI", "fechaFIN"},
	}
	if len(ops) != len(wantParams) {
		t.Fatalf("len(ops) = %d, want %d", len(ops), len(wantParams))
	}

	// The catalog feeds both the model tool declarations and the MCP
	// surface, so every entry must be fully described.
	for _, op := range ops {
		want, ok := wantParams[op.Name]
		if !ok {
			t.Errorf("unexpected operation %q", op.Name)
			continue
		}
		if op.Description == "" {
			t.Errorf("%s has no description", op.Name)
		}
		if len(op.Params) != len(want) {
			t.Errorf("%s has %d params, want %d", op.Name, len(op.Params), len(want))
			continue
		}
		for i, p := range op.Params {
			if p.Name != want[i] {
				t.Errorf("%s param %d = %q, want %q", op.Name, i, p.Name, want[i])
			}
			if p.Description == "" {
				t.Errorf("%s param %q has no description", op.Name, p.Name)
			}
		}
		if !op.Params[0].Required && op.Name != "consultar_servicios" {
			t.Errorf("%s does not require servicio", op.Name)
		}
	}
}

func TestSpecs(t *testing.T) {
	r, _ := newTestRegistry(t)

	specs := r.Specs()
	wantNames := []string{
		"consultar_servicios",
		"consultar_promesa_servicio",
		"consultar_afectaciones",
		"calcular_disponibilidad",
	}
	if len(specs) != len(wantNames) {
		t.Fatalf("len(specs) = %d, want %d", len(specs), len(wantNames))
	}

	for i, want := range wantNames {
		spec := specs[i]
		if spec.Type != "function" {
			t.Errorf("specs[%d].Type = %q, want function", i, spec.Type)
		}
		if spec.Function.Name != want {
			t.Errorf("specs[%d].Function.Name = %q, want %q", i, spec.Function.Name, want)
		}
		if spec.Function.Parameters.Type != "object" {
			t.Errorf("specs[%d] parameters type = %q, want object", i, spec.Function.Parameters.Type)
		}
	}

	// consultar_servicios takes an optional filter only.
	if len(specs[0].Function.Parameters.Required) != 0 {
		t.Errorf("consultar_servicios required = %v, want none", specs[0].Function.Parameters.Required)
	}

	// The other three require the service name.
	for _, i := range []int{1, 2, 3} {
		req := specs[i].Function.Parameters.Required
		if len(req) != 1 || req[0] != "servicio" {
			t.Errorf("%s required = %v, want [servicio]", specs[i].Function.Name, req)
		}
	}

	// Outage queries use their own date parameter names.
	props := specs[2].Function.Parameters.Properties
	for _, name := range []string{"fecha_inicio", "fecha_fin"} {
		if _, ok := props[name]; !ok {
			t.Errorf("consultar_afectaciones missing parameter %q", name)
		}
	}
}

func TestConsultarServicios(t *testing.T) {
	r, st := newTestRegistry(t)
	mustExec(t, st, `INSERT INTO TblDServicios VALUES (1, 101, 1, 0, 'ASP', 99.95)`)
	mustExec(t, st, `INSERT INTO TblDServicios VALUES (2, 102, 0, 1, 'Cajeros automáticos', 99.5)`)

	out := dispatch(t, r, "consultar_servicios", "{}")
	for _, want := range []string{
		"Se encontraron 2 servicio(s):",
		"📋 Servicio: ASP",
		"InstanceID: 1",
		"ID Servicio: 101",
		"SLA: 99.95%",
		"Servicio Especial: Sí",
		"Canal Clave: No",
		"📋 Servicio: Cajeros automáticos",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("out missing %q:\n%s", want, out)
		}
	}
}

func TestConsultarServiciosNoMatch(t *testing.T) {
	r, _ := newTestRegistry(t)

	out := dispatch(t, r, "consultar_servicios", `{"servicio": "inexistente"}`)
	if out != "No se encontraron servicios con nombre similar a: inexistente." {
		t.Errorf("out = %q", out)
	}
}

func TestConsultarPromesa(t *testing.T) {
	r, st := newTestRegistry(t)
	for day := 1; day <= 7; day++ {
		mustExec(t, st,
			`INSERT INTO TblDPromesaServicio VALUES ('ASP', ?, 'Jueves', 0, 1440)`,
			fmt.Sprintf("2026-04-%02d", day))
	}

	out := dispatch(t, r, "consultar_promesa_servicio",
		`{"servicio": "asp", "fechaINI": "2026-04-01", "fechaFIN": "2026-04-30"}`)

	for _, want := range []string{
		"📊 Promesa de servicio para 'asp' (2026-04-01 a 2026-04-30):",
		"Total de días registrados: 7",
		"Total minutos prometidos: 10,080",
		"Promedio diario: 1440 minutos",
		"Últimos registros:",
		"1. Fecha: 2026-04-07",
		"5. Fecha: 2026-04-03",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("out missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "6. Fecha:") {
		t.Errorf("out lists more than %d detail rows:\n%s", promiseDetailRows, out)
	}
}

func TestConsultarPromesaNotFound(t *testing.T) {
	r, _ := newTestRegistry(t)

	out := dispatch(t, r, "consultar_promesa_servicio", `{"servicio": "asp"}`)
	if out != "No se encontró promesa de servicio para 'asp' entre 2026-01-01 y 2026-08-26." {
		t.Errorf("out = %q", out)
	}
}

func TestConsultarAfectaciones(t *testing.T) {
	r, st := newTestRegistry(t)
	for i := 1; i <= 12; i++ {
		var motivo any
		if i%2 == 0 {
			motivo = "Falla de red"
		}
		mustExec(t, st,
			`INSERT INTO TblHAfectaciones VALUES ('ASP', ?, ?, 10, ?)`,
			fmt.Sprintf("2026-05-%02d 08:00:00", i),
			fmt.Sprintf("2026-05-%02d 08:10:00", i),
			motivo)
	}

	out := dispatch(t, r, "consultar_afectaciones",
		`{"servicio": "asp", "fecha_inicio": "2026-05-01", "fecha_fin": "2026-05-31"}`)

	for _, want := range []string{
		"⚠️ Afectaciones para 'asp' (2026-05-01 a 2026-05-31):",
		"Total de afectaciones: 12",
		"Total minutos afectados: 120",
		"Promedio por afectación: 10.0 minutos",
		"1. Inicio: 2026-05-12 08:00:00",
		"Motivo: Falla de red",
		"10. Inicio: 2026-05-03 08:00:00",
		"... y 2 afectaciones más.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("out missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "11. Inicio:") {
		t.Errorf("out lists more than %d detail rows:\n%s", outageDetailRows, out)
	}
}

func TestConsultarAfectacionesNone(t *testing.T) {
	r, _ := newTestRegistry(t)

	out := dispatch(t, r, "consultar_afectaciones",
		`{"servicio": "asp", "fecha_inicio": "2026-05-01", "fecha_fin": "2026-05-31"}`)
	if out != "✅ No se encontraron afectaciones para 'asp' entre 2026-05-01 y 2026-05-31." {
		t.Errorf("out = %q", out)
	}
}

func TestCalcularDisponibilidad(t *testing.T) {
	r, st := newTestRegistry(t)
	// A full year of promise with one outage day's worth of minutes: 99.9%.
	mustExec(t, st, `INSERT INTO TblDPromesaServicio VALUES ('ASP', '2026-01-01', 'Jueves', 1, 525600)`)
	mustExec(t, st, `INSERT INTO TblHAfectaciones VALUES ('ASP', '2026-03-01 00:00:00', '2026-03-01 08:45:36', 525.6, NULL)`)

	out := dispatch(t, r, "calcular_disponibilidad", `{"servicio": "asp"}`)
	for _, want := range []string{
		"📈 Análisis de Disponibilidad para 'asp'",
		"Período: 2026-01-01 a 2026-08-26",
		"📊 Minutos prometidos: 525,600 (365.0 días)",
		"⚠️  Minutos afectados: 526 (8.8 horas)",
		"✅ Minutos disponibles: 525,074",
		"🎯 DISPONIBILIDAD: 99.9000%",
		"EXCELENTE",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("out missing %q:\n%s", want, out)
		}
	}
}

func TestCalcularDisponibilidadSinPromesa(t *testing.T) {
	r, st := newTestRegistry(t)
	// Outages without any promise rows must not produce a percentage.
	mustExec(t, st, `INSERT INTO TblHAfectaciones VALUES ('ASP', '2026-03-01 00:00:00', '2026-03-01 01:00:00', 60, NULL)`)

	out := dispatch(t, r, "calcular_disponibilidad", `{"servicio": "asp"}`)
	if out != "❌ No hay promesa de servicio registrada para 'asp' en el período 2026-01-01 a 2026-08-26." {
		t.Errorf("out = %q", out)
	}
}

func TestCalcularDisponibilidadNegative(t *testing.T) {
	r, st := newTestRegistry(t)
	mustExec(t, st, `INSERT INTO TblDPromesaServicio VALUES ('ASP', '2026-01-01', 'Jueves', 1, 100)`)
	mustExec(t, st, `INSERT INTO TblHAfectaciones VALUES ('ASP', '2026-01-01 00:00:00', '2026-01-01 02:30:00', 150, NULL)`)

	out := dispatch(t, r, "calcular_disponibilidad", `{"servicio": "asp"}`)
	if !strings.Contains(out, "🎯 DISPONIBILIDAD: -50.0000%") {
		t.Errorf("out missing negative percentage:\n%s", out)
	}
	if !strings.Contains(out, "CRÍTICO") {
		t.Errorf("out missing critical tier:\n%s", out)
	}
}
