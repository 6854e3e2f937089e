package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/thrivenig/travelbook/internal/domain"
)

const requestColumns = `id, identity_id, origin, destination, departure_date, return_date, passenger_count, travel_class, price_cents, approved, claimed_by, created_at, updated_at`

type RequestRepository interface {
	// Upsert stores the request unless an identical tuple already exists for
	// the same identity. Reports whether a new row was created and fills the
	// request from the stored row either way.
	Upsert(ctx context.Context, request *domain.FlightRequest) (bool, error)
	// FindApprovedMatch returns the first approved entry of ANY identity whose
	// tuple matches, travel class compared case-insensitively.
	FindApprovedMatch(ctx context.Context, it domain.Itinerary) (*domain.FlightRequest, error)
	// Claim marks the entry as being consumed by a booking attempt. Only one
	// caller wins; a false return means another attempt holds the claim.
	Claim(ctx context.Context, requestID int64, claimant string) (bool, error)
	ReleaseClaim(ctx context.Context, requestID int64) error
	Approve(ctx context.Context, ids []int64) ([]domain.FlightRequest, error)
	ListByIdentity(ctx context.Context, identityID int64, approved bool) ([]domain.FlightRequest, error)
	ListPending(ctx context.Context) ([]domain.FlightRequest, error)
	ReportRows(ctx context.Context) ([]domain.LedgerRow, error)
}

type PGRequestRepository struct {
	db *pgxpool.Pool
}

func NewRequestRepository(db *pgxpool.Pool) RequestRepository {
	return &PGRequestRepository{db: db}
}

func (r *PGRequestRepository) Upsert(ctx context.Context, request *domain.FlightRequest) (bool, error) {
	// IS NOT DISTINCT FROM keeps one-way itineraries (NULL return date) on the
	// same dedup key.
	row := r.db.QueryRow(ctx, `SELECT `+requestColumns+` FROM flight_requests
		WHERE identity_id=$1 AND origin=$2 AND destination=$3 AND departure_date=$4
		AND return_date IS NOT DISTINCT FROM $5 AND passenger_count=$6 AND travel_class=$7 AND price_cents=$8`,
		request.IdentityID, request.Origin, request.Destination, request.DepartureDate,
		request.ReturnDate, request.PassengerCount, request.TravelClass, request.PriceCents)

	existing, err := scanRequest(row)
	if err == nil {
		*request = *existing
		return false, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return false, err
	}

	row = r.db.QueryRow(ctx, `INSERT INTO flight_requests
		(identity_id, origin, destination, departure_date, return_date, passenger_count, travel_class, price_cents, approved)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, FALSE)
		RETURNING `+requestColumns,
		request.IdentityID, request.Origin, request.Destination, request.DepartureDate,
		request.ReturnDate, request.PassengerCount, request.TravelClass, request.PriceCents)

	created, err := scanRequest(row)
	if err != nil {
		return false, err
	}
	*request = *created
	return true, nil
}

func (r *PGRequestRepository) FindApprovedMatch(ctx context.Context, it domain.Itinerary) (*domain.FlightRequest, error) {
	row := r.db.QueryRow(ctx, `SELECT `+requestColumns+` FROM flight_requests
		WHERE origin=$1 AND destination=$2 AND departure_date=$3
		AND return_date IS NOT DISTINCT FROM $4 AND passenger_count=$5
		AND LOWER(travel_class)=LOWER($6) AND price_cents=$7 AND approved=TRUE
		ORDER BY id LIMIT 1`,
		it.Origin, it.Destination, it.DepartureDate, it.ReturnDate, it.PassengerCount, it.TravelClass, it.PriceCents)

	match, err := scanRequest(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return match, nil
}

func (r *PGRequestRepository) Claim(ctx context.Context, requestID int64, claimant string) (bool, error) {
	res, err := r.db.Exec(ctx, `UPDATE flight_requests SET claimed_by=$2, updated_at=now() WHERE id=$1 AND claimed_by IS NULL`, requestID, claimant)
	if err != nil {
		return false, err
	}
	return res.RowsAffected() == 1, nil
}

func (r *PGRequestRepository) ReleaseClaim(ctx context.Context, requestID int64) error {
	_, err := r.db.Exec(ctx, `UPDATE flight_requests SET claimed_by=NULL, updated_at=now() WHERE id=$1`, requestID)
	return err
}

func (r *PGRequestRepository) Approve(ctx context.Context, ids []int64) ([]domain.FlightRequest, error) {
	rows, err := r.db.Query(ctx, `UPDATE flight_requests SET approved=TRUE, updated_at=now()
		WHERE id = ANY($1)
		RETURNING `+requestColumns, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRequests(rows)
}

func (r *PGRequestRepository) ListByIdentity(ctx context.Context, identityID int64, approved bool) ([]domain.FlightRequest, error) {
	rows, err := r.db.Query(ctx, `SELECT `+requestColumns+` FROM flight_requests
		WHERE identity_id=$1 AND approved=$2
		ORDER BY departure_date DESC`, identityID, approved)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRequests(rows)
}

func (r *PGRequestRepository) ListPending(ctx context.Context) ([]domain.FlightRequest, error) {
	rows, err := r.db.Query(ctx, `SELECT `+requestColumns+` FROM flight_requests WHERE approved=FALSE ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRequests(rows)
}

func (r *PGRequestRepository) ReportRows(ctx context.Context) ([]domain.LedgerRow, error) {
	rows, err := r.db.Query(ctx, `SELECT f.id, f.identity_id, f.origin, f.destination, f.departure_date, f.return_date, f.passenger_count, f.travel_class, f.price_cents, f.approved, f.claimed_by, f.created_at, f.updated_at,
		COALESCE(r.first_name,''), COALESCE(r.last_name,'')
		FROM flight_requests f
		LEFT JOIN roles r ON r.identity_id = f.identity_id
		ORDER BY f.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ledger := make([]domain.LedgerRow, 0)
	for rows.Next() {
		var row domain.LedgerRow
		if err := rows.Scan(&row.ID, &row.IdentityID, &row.Origin, &row.Destination, &row.DepartureDate, &row.ReturnDate,
			&row.PassengerCount, &row.TravelClass, &row.PriceCents, &row.Approved, &row.ClaimedBy, &row.CreatedAt, &row.UpdatedAt,
			&row.FirstName, &row.LastName); err != nil {
			return nil, err
		}
		ledger = append(ledger, row)
	}
	return ledger, rows.Err()
}

func scanRequest(row rowScanner) (*domain.FlightRequest, error) {
	var f domain.FlightRequest
	if err := row.Scan(&f.ID, &f.IdentityID, &f.Origin, &f.Destination, &f.DepartureDate, &f.ReturnDate,
		&f.PassengerCount, &f.TravelClass, &f.PriceCents, &f.Approved, &f.ClaimedBy, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return nil, err
	}
	return &f, nil
}

func scanRequests(rows pgx.Rows) ([]domain.FlightRequest, error) {
	requests := make([]domain.FlightRequest, 0)
	for rows.Next() {
		var f domain.FlightRequest
		if err := rows.Scan(&f.ID, &f.IdentityID, &f.Origin, &f.Destination, &f.DepartureDate, &f.ReturnDate,
			&f.PassengerCount, &f.TravelClass, &f.PriceCents, &f.Approved, &f.ClaimedBy, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, err
		}
		requests = append(requests, f)
	}
	return requests, rows.Err()
}

var _ RequestRepository = (*PGRequestRepository)(nil)
