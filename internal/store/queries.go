package store

import (
	"context"
	"database/sql"
	"fmt"
)

// Row limits mirror the warehouse query contract: broad listings are capped
// at 20 rows, filtered listings at 10, range queries at 100.
const (
	ListLimit     = 20
	FilteredLimit = 10
	RangeLimit    = 100
)

// Service is one row of TblDServicios.
type Service struct {
	InstanceID     int64
	ServiceID      int64
	SpecialService bool
	KeyChannel     bool
	Name           string
	SLA            float64
}

// PromiseDay is one daily availability promise row of TblDPromesaServicio.
type PromiseDay struct {
	Date    string
	DayName string
	Holiday bool
	Minutes float64
}

// Outage is one recorded unavailability interval of TblHAfectaciones.
type Outage struct {
	Start   string
	End     string
	Minutes float64
	Cause   sql.NullString
}

// ListServices returns services matched by the case-insensitive substring
// filter, or the first ListLimit services when the filter is empty.
func (s *Store) ListServices(ctx context.Context, nameFilter string) ([]Service, error) {
	d := s.dialect

	var rows *sql.Rows
	var err error
	if nameFilter == "" {
		q := fmt.Sprintf(
			`SELECT %sInstanceid, IddServicio, is_spacial_service, is_key_channel, name, sla
			 FROM TblDServicios%s`,
			d.top(ListLimit), d.limit(ListLimit))
		rows, err = s.db.QueryContext(ctx, q)
	} else {
		q := fmt.Sprintf(
			`SELECT %sInstanceid, IddServicio, is_spacial_service, is_key_channel, name, sla
			 FROM TblDServicios
			 WHERE LOWER(name) LIKE %s%s`,
			d.top(FilteredLimit), d.ph(1), d.limit(FilteredLimit))
		rows, err = s.db.QueryContext(ctx, q, likePattern(nameFilter))
	}
	if err != nil {
		return nil, fmt.Errorf("consultando servicios: %w", err)
	}
	defer rows.Close()

	var services []Service
	for rows.Next() {
		var svc Service
		if err := rows.Scan(&svc.InstanceID, &svc.ServiceID, &svc.SpecialService, &svc.KeyChannel, &svc.Name, &svc.SLA); err != nil {
			return nil, fmt.Errorf("leyendo servicio: %w", err)
		}
		services = append(services, svc)
	}
	return services, rows.Err()
}

// Promises returns up to RangeLimit daily promise rows for the service
// within [from, to], most recent first.
func (s *Store) Promises(ctx context.Context, service, from, to string) ([]PromiseDay, error) {
	d := s.dialect
	q := fmt.Sprintf(
		`SELECT %s%s, dia, es_festivo, minutos_promesa
		 FROM TblDPromesaServicio
		 WHERE LOWER(Servicio) LIKE %s AND fecha BETWEEN %s AND %s
		 ORDER BY fecha DESC%s`,
		d.top(RangeLimit), d.dateText("fecha"), d.ph(1), d.ph(2), d.ph(3), d.limit(RangeLimit))

	rows, err := s.db.QueryContext(ctx, q, likePattern(service), from, to)
	if err != nil {
		return nil, fmt.Errorf("consultando promesa de servicio: %w", err)
	}
	defer rows.Close()

	var days []PromiseDay
	for rows.Next() {
		var p PromiseDay
		if err := rows.Scan(&p.Date, &p.DayName, &p.Holiday, &p.Minutes); err != nil {
			return nil, fmt.Errorf("leyendo promesa: %w", err)
		}
		days = append(days, p)
	}
	return days, rows.Err()
}

// PromiseTotal sums the promised minutes for the service within [from, to].
// The sum is NULL (Valid == false) when no promise rows exist in range.
func (s *Store) PromiseTotal(ctx context.Context, service, from, to string) (sql.NullFloat64, error) {
	d := s.dialect
	q := fmt.Sprintf(
		`SELECT SUM(minutos_promesa)
		 FROM TblDPromesaServicio
		 WHERE LOWER(Servicio) LIKE %s AND fecha BETWEEN %s AND %s`,
		d.ph(1), d.ph(2), d.ph(3))

	var total sql.NullFloat64
	err := s.db.QueryRowContext(ctx, q, likePattern(service), from, to).Scan(&total)
	if err != nil {
		return sql.NullFloat64{}, fmt.Errorf("consultando total de promesa: %w", err)
	}
	return total, nil
}

// Outages returns up to RangeLimit outage rows whose start timestamp falls
// within [from, to], most recent first.
func (s *Store) Outages(ctx context.Context, service, from, to string) ([]Outage, error) {
	d := s.dialect
	q := fmt.Sprintf(
		`SELECT %s%s, %s, minutos, motivo
		 FROM TblHAfectaciones
		 WHERE LOWER(servicio) LIKE %s AND fecha_hora_ini_afectacion BETWEEN %s AND %s
		 ORDER BY fecha_hora_ini_afectacion DESC%s`,
		d.top(RangeLimit),
		d.timestampText("fecha_hora_ini_afectacion"), d.timestampText("fecha_hora_fin_afectacion"),
		d.ph(1), d.ph(2), d.ph(3), d.limit(RangeLimit))

	rows, err := s.db.QueryContext(ctx, q, likePattern(service), from, to)
	if err != nil {
		return nil, fmt.Errorf("consultando afectaciones: %w", err)
	}
	defer rows.Close()

	var outages []Outage
	for rows.Next() {
		var o Outage
		if err := rows.Scan(&o.Start, &o.End, &o.Minutes, &o.Cause); err != nil {
			return nil, fmt.Errorf("leyendo afectación: %w", err)
		}
		outages = append(outages, o)
	}
	return outages, rows.Err()
}

// OutageTotal sums the outage minutes for the service within [from, to].
// A period with no outages is a successful zero sum, not an error.
func (s *Store) OutageTotal(ctx context.Context, service, from, to string) (float64, error) {
	d := s.dialect
	q := fmt.Sprintf(
		`SELECT COALESCE(SUM(minutos), 0)
		 FROM TblHAfectaciones
		 WHERE LOWER(servicio) LIKE %s AND fecha_hora_ini_afectacion BETWEEN %s AND %s`,
		d.ph(1), d.ph(2), d.ph(3))

	var total float64
	err := s.db.QueryRowContext(ctx, q, likePattern(service), from, to).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("consultando total de afectaciones: %w", err)
	}
	return total, nil
}
