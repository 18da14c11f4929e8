package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// =========== Schedule Registry ===========

type registryPG struct{ pool *pgxpool.Pool }

func NewRegistryPG(pool *pgxpool.Pool) ScheduleRegistry { return &registryPG{pool: pool} }

// ReserveNextToken rides on row-level atomicity: the upsert checks capacity
// and increments issued_count in one statement, so concurrent reservations
// for the same key serialize on the counter row. No matching row back means
// the capacity guard failed. The caller's capacity always wins over the
// stored one, so a changed daily_capacity applies to the next reservation.
func (r *registryPG) ReserveNextToken(ctx context.Context, doctorID uuid.UUID, date time.Time, capacity int) (int, bool, error) {
	var token int
	err := r.pool.QueryRow(ctx, `
		INSERT INTO schedule_counter (doctor_id, appointment_date, capacity, issued_count)
		VALUES ($1, $2, $3, 1)
		ON CONFLICT (doctor_id, appointment_date) DO UPDATE
		SET issued_count = schedule_counter.issued_count + 1,
		    capacity = EXCLUDED.capacity
		WHERE EXCLUDED.capacity <= 0 OR schedule_counter.issued_count < EXCLUDED.capacity
		RETURNING issued_count`,
		doctorID, Day(date), capacity).Scan(&token)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("reserve token: %w", err)
	}
	return token, true, nil
}

func (r *registryPG) IssuedCount(ctx context.Context, doctorID uuid.UUID, date time.Time) (int, error) {
	var issued int
	err := r.pool.QueryRow(ctx,
		`SELECT issued_count FROM schedule_counter WHERE doctor_id = $1 AND appointment_date = $2`,
		doctorID, Day(date)).Scan(&issued)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("issued count: %w", err)
	}
	return issued, nil
}

// =========== Appointment Store ===========

type storePG struct{ pool *pgxpool.Pool }

func NewStorePG(pool *pgxpool.Pool) AppointmentStore { return &storePG{pool: pool} }

const apptCols = `id, hospital_id, doctor_id, patient_name, patient_age, patient_gender,
	patient_address, problem, appointment_date, token_number, status, created_at, updated_at`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.HospitalID, &a.DoctorID, &a.PatientName, &a.PatientAge,
		&a.PatientGender, &a.PatientAddress, &a.Problem, &a.AppointmentDate,
		&a.TokenNumber, &a.Status, &a.CreatedAt, &a.UpdatedAt)
	return &a, err
}

func (s *storePG) Create(ctx context.Context, a *Appointment) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO appointment (id, hospital_id, doctor_id, patient_name, patient_age,
			patient_gender, patient_address, problem, appointment_date, token_number, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		RETURNING created_at, updated_at`,
		a.ID, a.HospitalID, a.DoctorID, a.PatientName, a.PatientAge,
		a.PatientGender, a.PatientAddress, a.Problem, a.AppointmentDate, a.TokenNumber, a.Status).
		Scan(&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: duplicate token %d for doctor %s on %s",
				ErrPersistence, a.TokenNumber, a.DoctorID, a.AppointmentDate.Format(DateLayout))
		}
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}

func (s *storePG) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	a, err := scanAppointment(s.pool.QueryRow(ctx, `SELECT `+apptCols+` FROM appointment WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return a, nil
}

func (s *storePG) UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status) (*Appointment, error) {
	a, err := scanAppointment(s.pool.QueryRow(ctx, `
		UPDATE appointment SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING `+apptCols, id, from, to))
	if errors.Is(err, pgx.ErrNoRows) {
		// Lost the race or wrong state; look at the record to tell which.
		current, getErr := s.GetByID(ctx, id)
		if getErr != nil {
			return nil, getErr
		}
		return nil, fmt.Errorf("%w: status is %s, expected %s", ErrInvalidTransition, current.Status, from)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return a, nil
}

func (s *storePG) List(ctx context.Context, f ListFilter, limit, offset int) ([]*Appointment, int, error) {
	query := `SELECT ` + apptCols + ` FROM appointment WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM appointment WHERE 1=1`
	var args []interface{}
	idx := 1

	add := func(clause string, arg interface{}) {
		query += fmt.Sprintf(clause, idx)
		countQuery += fmt.Sprintf(clause, idx)
		args = append(args, arg)
		idx++
	}

	if f.HospitalID != nil {
		add(` AND hospital_id = $%d`, *f.HospitalID)
	}
	if f.DoctorID != nil {
		add(` AND doctor_id = $%d`, *f.DoctorID)
	}
	if f.Date != nil {
		add(` AND appointment_date = $%d`, Day(*f.Date))
	}
	if f.PatientName != "" {
		add(` AND LOWER(patient_name) = LOWER($%d)`, f.PatientName)
	}
	if f.Status != nil {
		add(` AND status = $%d`, *f.Status)
	}

	var total int
	if err := s.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if f.DoctorID != nil && f.Date != nil {
		query += ` ORDER BY token_number`
	} else {
		query += ` ORDER BY created_at, token_number`
	}
	query += fmt.Sprintf(` LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	defer rows.Close()
	var items []*Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		items = append(items, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return items, total, nil
}
