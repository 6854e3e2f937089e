package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/thrivenig/travelbook/internal/domain"
)

var ErrDuplicateIdentity = errors.New("username or email already in use")

type UserRepository interface {
	CreateIdentity(ctx context.Context, identity *domain.Identity) error
	CreateRole(ctx context.Context, role *domain.Role) error
	GetIdentity(ctx context.Context, id int64) (*domain.Identity, error)
	GetByUsername(ctx context.Context, username string) (*domain.Identity, error)
	RoleByIdentity(ctx context.Context, identityID int64) (*domain.Role, error)
	SetRoleApproval(ctx context.Context, roleID int64, approved bool) (*domain.Role, error)
	PendingAdmins(ctx context.Context, kind domain.RoleKind) ([]domain.RoleProfile, error)
	ListByKind(ctx context.Context, kind domain.RoleKind) ([]domain.RoleProfile, error)
	UpdateProfile(ctx context.Context, identityID int64, firstName, lastName, phone string) error
}

type PGUserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) UserRepository {
	return &PGUserRepository{db: db}
}

func (r *PGUserRepository) CreateIdentity(ctx context.Context, identity *domain.Identity) error {
	err := r.db.QueryRow(ctx, `INSERT INTO identities (username, email, phone, active, password_hash)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`,
		identity.Username, identity.Email, identity.Phone, identity.Active, identity.PasswordHash).
		Scan(&identity.ID, &identity.CreatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicateIdentity
	}
	return err
}

func (r *PGUserRepository) CreateRole(ctx context.Context, role *domain.Role) error {
	err := r.db.QueryRow(ctx, `INSERT INTO roles (identity_id, kind, first_name, last_name, phone, approval_status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		role.IdentityID, role.Kind, role.FirstName, role.LastName, role.Phone, role.ApprovalStatus).
		Scan(&role.ID)
	if isUniqueViolation(err) {
		return ErrDuplicateIdentity
	}
	return err
}

func (r *PGUserRepository) GetIdentity(ctx context.Context, id int64) (*domain.Identity, error) {
	row := r.db.QueryRow(ctx, `SELECT id, username, email, COALESCE(phone,''), active, password_hash, created_at FROM identities WHERE id=$1`, id)
	return scanIdentity(row)
}

func (r *PGUserRepository) GetByUsername(ctx context.Context, username string) (*domain.Identity, error) {
	row := r.db.QueryRow(ctx, `SELECT id, username, email, COALESCE(phone,''), active, password_hash, created_at FROM identities WHERE username=$1`, username)
	return scanIdentity(row)
}

func (r *PGUserRepository) RoleByIdentity(ctx context.Context, identityID int64) (*domain.Role, error) {
	row := r.db.QueryRow(ctx, `SELECT id, identity_id, kind, first_name, last_name, COALESCE(phone,''), approval_status FROM roles WHERE identity_id=$1`, identityID)
	var role domain.Role
	if err := row.Scan(&role.ID, &role.IdentityID, &role.Kind, &role.FirstName, &role.LastName, &role.Phone, &role.ApprovalStatus); err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *PGUserRepository) SetRoleApproval(ctx context.Context, roleID int64, approved bool) (*domain.Role, error) {
	row := r.db.QueryRow(ctx, `UPDATE roles SET approval_status=$1 WHERE id=$2
		RETURNING id, identity_id, kind, first_name, last_name, COALESCE(phone,''), approval_status`, approved, roleID)
	var role domain.Role
	if err := row.Scan(&role.ID, &role.IdentityID, &role.Kind, &role.FirstName, &role.LastName, &role.Phone, &role.ApprovalStatus); err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *PGUserRepository) PendingAdmins(ctx context.Context, kind domain.RoleKind) ([]domain.RoleProfile, error) {
	rows, err := r.db.Query(ctx, `SELECT r.id, r.identity_id, r.kind, r.first_name, r.last_name, COALESCE(r.phone,''), r.approval_status, i.username, i.email
		FROM roles r JOIN identities i ON i.id = r.identity_id
		WHERE r.kind=$1 AND r.approval_status=FALSE
		ORDER BY r.id`, kind)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRoleProfiles(rows)
}

func (r *PGUserRepository) ListByKind(ctx context.Context, kind domain.RoleKind) ([]domain.RoleProfile, error) {
	rows, err := r.db.Query(ctx, `SELECT r.id, r.identity_id, r.kind, r.first_name, r.last_name, COALESCE(r.phone,''), r.approval_status, i.username, i.email
		FROM roles r JOIN identities i ON i.id = r.identity_id
		WHERE r.kind=$1
		ORDER BY r.id`, kind)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRoleProfiles(rows)
}

func (r *PGUserRepository) UpdateProfile(ctx context.Context, identityID int64, firstName, lastName, phone string) error {
	_, err := r.db.Exec(ctx, `UPDATE roles SET first_name=$2, last_name=$3, phone=$4 WHERE identity_id=$1`, identityID, firstName, lastName, phone)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanIdentity(row rowScanner) (*domain.Identity, error) {
	var identity domain.Identity
	if err := row.Scan(&identity.ID, &identity.Username, &identity.Email, &identity.Phone, &identity.Active, &identity.PasswordHash, &identity.CreatedAt); err != nil {
		return nil, err
	}
	return &identity, nil
}

func scanRoleProfiles(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}) ([]domain.RoleProfile, error) {
	profiles := make([]domain.RoleProfile, 0)
	for rows.Next() {
		var p domain.RoleProfile
		if err := rows.Scan(&p.ID, &p.IdentityID, &p.Kind, &p.FirstName, &p.LastName, &p.Phone, &p.ApprovalStatus, &p.Username, &p.Email); err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ UserRepository = (*PGUserRepository)(nil)
