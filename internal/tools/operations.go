package tools

import (
	"context"
	"fmt"
	"strings"
)

// Detail caps: how many rows each summary lists before cutting off.
const (
	promiseDetailRows = 5
	outageDetailRows  = 10
)

// Availability tiers: inclusive lower bounds, evaluated top-down.
const (
	tierExcellent = 99.9
	tierGood      = 99.0
	tierRegular   = 95.0
)

func (r *Registry) runConsultarServicios(ctx context.Context, args Args) string {
	services, err := r.store.ListServices(ctx, args.Servicio)
	if err != nil {
		return fmt.Sprintf("Error al consultar servicios: %v", err)
	}

	if len(services) == 0 {
		if args.Servicio != "" {
			return fmt.Sprintf("No se encontraron servicios con nombre similar a: %s.", args.Servicio)
		}
		return "No se encontraron servicios."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Se encontraron %d servicio(s):\n\n", len(services))
	for _, svc := range services {
		fmt.Fprintf(&b, "📋 Servicio: %s\n", svc.Name)
		fmt.Fprintf(&b, "   InstanceID: %d\n", svc.InstanceID)
		fmt.Fprintf(&b, "   ID Servicio: %d\n", svc.ServiceID)
		fmt.Fprintf(&b, "   SLA: %g%%\n", svc.SLA)
		fmt.Fprintf(&b, "   Servicio Especial: %s\n", siNo(svc.SpecialService))
		fmt.Fprintf(&b, "   Canal Clave: %s\n\n", siNo(svc.KeyChannel))
	}
	return b.String()
}

func (r *Registry) runConsultarPromesa(ctx context.Context, args Args) string {
	rng := resolveRange(args.FechaINI, args.FechaFIN, r.now())

	days, err := r.store.Promises(ctx, args.Servicio, rng.Start, rng.End)
	if err != nil {
		return fmt.Sprintf("Error al consultar promesa de servicio: %v", err)
	}

	if len(days) == 0 {
		return fmt.Sprintf("No se encontró promesa de servicio para '%s' entre %s y %s.", args.Servicio, rng.Start, rng.End)
	}

	var total float64
	for _, d := range days {
		total += d.Minutes
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📊 Promesa de servicio para '%s' (%s a %s):\n\n", args.Servicio, rng.Start, rng.End)
	fmt.Fprintf(&b, "Total de días registrados: %d\n", len(days))
	fmt.Fprintf(&b, "Total minutos prometidos: %s\n", formatMinutes(total))
	fmt.Fprintf(&b, "Promedio diario: %.0f minutos\n\n", total/float64(len(days)))

	b.WriteString("Últimos registros:\n")
	for i, d := range days {
		if i == promiseDetailRows {
			break
		}
		fmt.Fprintf(&b, "%d. Fecha: %s\n", i+1, d.Date)
		fmt.Fprintf(&b, "   Día: %s\n", d.DayName)
		fmt.Fprintf(&b, "   Festivo: %s\n", siNo(d.Holiday))
		fmt.Fprintf(&b, "   Minutos: %s\n\n", formatMinutes(d.Minutes))
	}
	return b.String()
}

func (r *Registry) runConsultarAfectaciones(ctx context.Context, args Args) string {
	rng := resolveRange(args.FechaINI, args.FechaFIN, r.now())

	outages, err := r.store.Outages(ctx, args.Servicio, rng.Start, rng.End)
	if err != nil {
		return fmt.Sprintf("Error al consultar afectaciones: %v", err)
	}

	if len(outages) == 0 {
		return fmt.Sprintf("✅ No se encontraron afectaciones para '%s' entre %s y %s.", args.Servicio, rng.Start, rng.End)
	}

	var total float64
	for _, o := range outages {
		total += o.Minutes
	}

	var b strings.Builder
	fmt.Fprintf(&b, "⚠️ Afectaciones para '%s' (%s a %s):\n\n", args.Servicio, rng.Start, rng.End)
	fmt.Fprintf(&b, "Total de afectaciones: %d\n", len(outages))
	fmt.Fprintf(&b, "Total minutos afectados: %s\n", formatMinutes(total))
	fmt.Fprintf(&b, "Promedio por afectación: %.1f minutos\n\n", total/float64(len(outages)))

	b.WriteString("Últimas afectaciones:\n")
	for i, o := range outages {
		if i == outageDetailRows {
			break
		}
		fmt.Fprintf(&b, "%d. Inicio: %s\n", i+1, o.Start)
		fmt.Fprintf(&b, "   Fin: %s\n", o.End)
		fmt.Fprintf(&b, "   Minutos: %s\n", formatMinutes(o.Minutes))
		if o.Cause.Valid && o.Cause.String != "" {
			fmt.Fprintf(&b, "   Motivo: %s\n", o.Cause.String)
		}
		b.WriteString("\n")
	}

	if extra := len(outages) - outageDetailRows; extra > 0 {
		fmt.Fprintf(&b, "... y %d afectaciones más.\n", extra)
	}
	return b.String()
}

func (r *Registry) runCalcularDisponibilidad(ctx context.Context, args Args) string {
	rng := resolveRange(args.FechaINI, args.FechaFIN, r.now())

	promised, err := r.store.PromiseTotal(ctx, args.Servicio, rng.Start, rng.End)
	if err != nil {
		return fmt.Sprintf("Error al calcular disponibilidad: %v", err)
	}
	if !promised.Valid {
		return fmt.Sprintf("❌ No hay promesa de servicio registrada para '%s' en el período %s a %s.", args.Servicio, rng.Start, rng.End)
	}
	promisedMinutes := promised.Float64

	outageMinutes, err := r.store.OutageTotal(ctx, args.Servicio, rng.Start, rng.End)
	if err != nil {
		return fmt.Sprintf("Error al calcular disponibilidad: %v", err)
	}

	availableMinutes := promisedMinutes - outageMinutes

	// The NULL-sum check above already covers a zero denominator; the guard
	// stays to keep the arithmetic total.
	var percentage float64
	if promisedMinutes > 0 {
		percentage = (availableMinutes / promisedMinutes) * 100
	}

	promisedDays := promisedMinutes / 1440
	outageHours := outageMinutes / 60

	var b strings.Builder
	fmt.Fprintf(&b, "📈 Análisis de Disponibilidad para '%s'\n", args.Servicio)
	fmt.Fprintf(&b, "Período: %s a %s\n", rng.Start, rng.End)
	fmt.Fprintf(&b, "%s\n\n", strings.Repeat("=", 60))

	fmt.Fprintf(&b, "📊 Minutos prometidos: %s (%.1f días)\n", formatMinutes(promisedMinutes), promisedDays)
	fmt.Fprintf(&b, "⚠️  Minutos afectados: %s (%.1f horas)\n", formatMinutes(outageMinutes), outageHours)
	fmt.Fprintf(&b, "✅ Minutos disponibles: %s\n\n", formatMinutes(availableMinutes))

	fmt.Fprintf(&b, "🎯 DISPONIBILIDAD: %.4f%%\n\n", percentage)

	b.WriteString(classifyAvailability(percentage))
	return b.String()
}

// classifyAvailability maps a percentage to its SLA tier. Bounds are
// inclusive and checked in descending order; the first match wins.
func classifyAvailability(percentage float64) string {
	switch {
	case percentage >= tierExcellent:
		return "Estado: ✅ EXCELENTE - Cumple SLA\nEl servicio está operando dentro de los parámetros óptimos."
	case percentage >= tierGood:
		return "Estado: ✔️  BUENO - Dentro de límites aceptables\nEl servicio cumple con los estándares mínimos."
	case percentage >= tierRegular:
		return "Estado: ⚠️  REGULAR - Requiere atención\nSe recomienda revisar las causas de las afectaciones."
	default:
		return "Estado: ❌ CRÍTICO - SLA comprometido\nSe requiere acción inmediata para mejorar la disponibilidad."
	}
}
