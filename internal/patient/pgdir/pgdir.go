// Package pgdir provides a PostgreSQL implementation of patient.Directory.
package pgdir

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/linnemanlabs/triagedesk/internal/patient"
)

var tracer = otel.Tracer("github.com/linnemanlabs/triagedesk/internal/patient/pgdir")

//go:embed schema.sql
var schema string

// Directory persists patient master data in PostgreSQL.
type Directory struct {
	pool *pgxpool.Pool
}

// New applies the schema on the given pool and returns a ready Directory.
func New(ctx context.Context, pool *pgxpool.Pool) (*Directory, error) {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Directory{pool: pool}, nil
}

const patientColumns = `national_id, name, surname, street, number, locality, city, province, country,
	insurer, member_number, email`

// FindByNationalID retrieves a patient by national ID.
func (d *Directory) FindByNationalID(ctx context.Context, nationalID string) (*patient.Patient, bool, error) {
	ctx, span := tracer.Start(ctx, "pgdir.FindByNationalID", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "SELECT"),
	))
	defer span.End()

	query := `SELECT ` + patientColumns + ` FROM patients WHERE national_id = $1`

	var (
		p            patient.Patient
		insurer      *string
		memberNumber *string
	)
	err := d.pool.QueryRow(ctx, query, nationalID).Scan(
		&p.NationalID, &p.Name, &p.Surname,
		&p.Address.Street, &p.Address.Number, &p.Address.Locality,
		&p.Address.City, &p.Address.Province, &p.Address.Country,
		&insurer, &memberNumber, &p.Email,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, false, fmt.Errorf("select patient: %w", err)
	}

	if insurer != nil {
		p.Affiliation = &patient.Affiliation{Insurer: *insurer}
		if memberNumber != nil {
			p.Affiliation.MemberNumber = *memberNumber
		}
	}

	return &p, true, nil
}

// Save inserts or updates a patient record (upsert on national_id).
func (d *Directory) Save(ctx context.Context, p *patient.Patient) error {
	ctx, span := tracer.Start(ctx, "pgdir.Save", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "UPSERT"),
	))
	defer span.End()

	var insurer, memberNumber *string
	if p.Affiliation != nil {
		insurer = &p.Affiliation.Insurer
		memberNumber = &p.Affiliation.MemberNumber
	}

	query := `INSERT INTO patients (
		national_id, name, surname, street, number, locality, city, province, country,
		insurer, member_number, email, updated_at
	) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,now())
	ON CONFLICT (national_id) DO UPDATE SET
		name          = EXCLUDED.name,
		surname       = EXCLUDED.surname,
		street        = EXCLUDED.street,
		number        = EXCLUDED.number,
		locality      = EXCLUDED.locality,
		city          = EXCLUDED.city,
		province      = EXCLUDED.province,
		country       = EXCLUDED.country,
		insurer       = EXCLUDED.insurer,
		member_number = EXCLUDED.member_number,
		email         = EXCLUDED.email,
		updated_at    = now()`

	_, err := d.pool.Exec(ctx, query,
		p.NationalID, p.Name, p.Surname,
		p.Address.Street, p.Address.Number, p.Address.Locality,
		p.Address.City, p.Address.Province, p.Address.Country,
		insurer, memberNumber, p.Email,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("upsert patient: %w", err)
	}
	return nil
}
