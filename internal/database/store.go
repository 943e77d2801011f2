package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"farmtrack/backend/internal/reports"
)

// Store is the SQL data access gateway. All queries are parameterized and
// read-only; rows are mapped to typed records here and nowhere else.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

type User struct {
	ID           int64
	Username     string
	FullName     string
	Role         string
	PasswordHash string
	Status       string
}

func (s *Store) UserByUsername(ctx context.Context, username string) (User, error) {
	var u User
	err := s.pool.QueryRow(ctx, `
		SELECT id, username, full_name, role, password_hash, status
		FROM users
		WHERE username = $1
	`, strings.ToLower(strings.TrimSpace(username))).Scan(&u.ID, &u.Username, &u.FullName, &u.Role, &u.PasswordHash, &u.Status)
	if err != nil {
		return User{}, err
	}
	return u, nil
}

// rangeFilter builds the shared inclusive date filter used by every
// date-bearing query. The column name is always a compile-time constant.
func rangeFilter(column string, rng reports.Range) (string, []any) {
	if rng.IsZero() {
		return "", nil
	}
	return fmt.Sprintf(" WHERE %s BETWEEN $1 AND $2", column),
		[]any{rng.Start.Format("2006-01-02"), rng.End.Format("2006-01-02")}
}

func (s *Store) LiveSpeciesCounts(ctx context.Context) ([]reports.LabelCount, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT a.species, COUNT(*)
		FROM animals a
		LEFT JOIN deceased_records d ON d.animal_id = a.id
		WHERE d.id IS NULL
		GROUP BY a.species
		ORDER BY COUNT(*) DESC, a.species
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]reports.LabelCount, 0)
	for rows.Next() {
		var lc reports.LabelCount
		if err := rows.Scan(&lc.Label, &lc.Count); err != nil {
			return nil, err
		}
		out = append(out, lc)
	}
	return out, rows.Err()
}

func (s *Store) DeceasedCount(ctx context.Context) (int64, error) {
	var n int64
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM deceased_records`).Scan(&n)
	return n, err
}

func (s *Store) HealthIssueCountSince(ctx context.Context, since time.Time) (int64, error) {
	var n int64
	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM health_records
		WHERE condition <> 'healthy' AND record_date >= $1
	`, since.Format("2006-01-02")).Scan(&n)
	return n, err
}

func (s *Store) HealthRecords(ctx context.Context, rng reports.Range) ([]reports.HealthRecord, error) {
	where, args := rangeFilter("h.record_date", rng)
	rows, err := s.pool.Query(ctx, `
		SELECT a.animal_code, a.species, a.breed, h.condition, h.treatment, h.record_date, h.vet_name
		FROM health_records h
		JOIN animals a ON a.id = h.animal_id`+where+`
		ORDER BY h.record_date DESC, h.id DESC
	`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]reports.HealthRecord, 0)
	for rows.Next() {
		var rec reports.HealthRecord
		if err := rows.Scan(&rec.AnimalCode, &rec.Species, &rec.Breed, &rec.Condition, &rec.Treatment, &rec.Date, &rec.VetName); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *Store) BreedingRecords(ctx context.Context, rng reports.Range) ([]reports.BreedingRecord, error) {
	where, args := rangeFilter("b.breeding_date", rng)
	rows, err := s.pool.Query(ctx, `
		SELECT fa.animal_code, fa.species, ma.animal_code, ma.species, b.breeding_date, b.outcome, b.notes
		FROM breeding_records b
		LEFT JOIN animals fa ON fa.id = b.animal_id
		LEFT JOIN animals ma ON ma.id = b.partner_id`+where+`
		ORDER BY b.breeding_date DESC, b.id DESC
	`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]reports.BreedingRecord, 0)
	for rows.Next() {
		var rec reports.BreedingRecord
		if err := rows.Scan(&rec.FemaleCode, &rec.FemaleSpecies, &rec.MaleCode, &rec.MaleSpecies, &rec.Date, &rec.Outcome, &rec.Notes); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *Store) DeceasedRecords(ctx context.Context, rng reports.Range) ([]reports.DeceasedRecord, error) {
	where, args := rangeFilter("d.date_of_death", rng)
	rows, err := s.pool.Query(ctx, `
		SELECT a.animal_code, a.species, a.breed, d.date_of_death, d.cause, d.notes
		FROM deceased_records d
		LEFT JOIN animals a ON a.id = d.animal_id`+where+`
		ORDER BY d.date_of_death DESC, d.id DESC
	`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]reports.DeceasedRecord, 0)
	for rows.Next() {
		var rec reports.DeceasedRecord
		if err := rows.Scan(&rec.AnimalCode, &rec.Species, &rec.Breed, &rec.DateOfDeath, &rec.Cause, &rec.Notes); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *Store) VaccinationRecords(ctx context.Context, rng reports.Range) ([]reports.VaccinationRecord, error) {
	where, args := rangeFilter("v.vaccination_date", rng)
	rows, err := s.pool.Query(ctx, `
		SELECT a.animal_code, a.species, a.breed, v.vaccine_type, v.vaccination_date, v.next_due, v.administered_by
		FROM vaccination_records v
		JOIN animals a ON a.id = v.animal_id`+where+`
		ORDER BY v.vaccination_date DESC, v.id DESC
	`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]reports.VaccinationRecord, 0)
	for rows.Next() {
		var rec reports.VaccinationRecord
		if err := rows.Scan(&rec.AnimalCode, &rec.Species, &rec.Breed, &rec.VaccineType, &rec.Date, &rec.NextDue, &rec.AdministeredBy); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *Store) VaccinationsDueBetween(ctx context.Context, from, to time.Time) (int64, error) {
	var n int64
	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM vaccination_records
		WHERE next_due IS NOT NULL AND next_due >= $1 AND next_due <= $2
	`, from.Format("2006-01-02"), to.Format("2006-01-02")).Scan(&n)
	return n, err
}
