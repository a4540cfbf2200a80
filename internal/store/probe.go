package store

import (
	"context"
	"database/sql"
	"fmt"
)

// ProbeReport is the result of the connectivity smoke test: one sanity
// query per warehouse table plus the server version string.
type ProbeReport struct {
	Version      string
	Services     int
	Sample       []Service
	PromiseRows  int
	PromiseFrom  string
	PromiseTo    string
	OutageRows   int
	OutageFrom   string
	OutageTo     string
}

// Probe runs the smoke-test queries in order and stops at the first
// failure, so the returned error points at the exact table or permission
// that is broken.
func (s *Store) Probe(ctx context.Context) (ProbeReport, error) {
	var r ProbeReport
	d := s.dialect

	if err := s.db.QueryRowContext(ctx, d.versionQuery()).Scan(&r.Version); err != nil {
		return r, fmt.Errorf("consultando versión del servidor: %w", err)
	}

	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM TblDServicios").Scan(&r.Services); err != nil {
		return r, fmt.Errorf("contando servicios: %w", err)
	}

	sampleQuery := fmt.Sprintf(
		`SELECT %sInstanceid, IddServicio, is_spacial_service, is_key_channel, name, sla
		 FROM TblDServicios%s`,
		d.top(5), d.limit(5))
	rows, err := s.db.QueryContext(ctx, sampleQuery)
	if err != nil {
		return r, fmt.Errorf("consultando servicios de muestra: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var svc Service
		if err := rows.Scan(&svc.InstanceID, &svc.ServiceID, &svc.SpecialService, &svc.KeyChannel, &svc.Name, &svc.SLA); err != nil {
			return r, fmt.Errorf("leyendo servicio de muestra: %w", err)
		}
		r.Sample = append(r.Sample, svc)
	}
	if err := rows.Err(); err != nil {
		return r, err
	}

	promiseQuery := fmt.Sprintf(
		`SELECT COUNT(*), MIN(%s), MAX(%s) FROM TblDPromesaServicio`,
		d.dateText("fecha"), d.dateText("fecha"))
	var pFrom, pTo sql.NullString
	if err := s.db.QueryRowContext(ctx, promiseQuery).Scan(&r.PromiseRows, &pFrom, &pTo); err != nil {
		return r, fmt.Errorf("verificando TblDPromesaServicio: %w", err)
	}
	r.PromiseFrom, r.PromiseTo = pFrom.String, pTo.String

	outageQuery := fmt.Sprintf(
		`SELECT COUNT(*), MIN(%s), MAX(%s) FROM TblHAfectaciones`,
		d.timestampText("fecha_hora_ini_afectacion"), d.timestampText("fecha_hora_ini_afectacion"))
	var oFrom, oTo sql.NullString
	if err := s.db.QueryRowContext(ctx, outageQuery).Scan(&r.OutageRows, &oFrom, &oTo); err != nil {
		return r, fmt.Errorf("verificando TblHAfectaciones: %w", err)
	}
	r.OutageFrom, r.OutageTo = oFrom.String, oTo.String

	return r, nil
}
