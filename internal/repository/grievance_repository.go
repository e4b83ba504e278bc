package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/grievance-service/internal/domain"
)

// GrievanceRepository encapsulates grievance persistence.
// Reads attach the owner's profile; writes persist the owner reference only.
type GrievanceRepository interface {
	Create(ctx context.Context, grievance *domain.Grievance) error
	Update(ctx context.Context, grievance *domain.Grievance) error
	GetByID(ctx context.Context, id int64) (*domain.Grievance, error)
	ListAll(ctx context.Context) ([]domain.Grievance, error)
	ListByOwner(ctx context.Context, userID int64) ([]domain.Grievance, error)
}

type grievanceRepository struct {
	db DB
}

// NewGrievanceRepository instantiates repository.
func NewGrievanceRepository(db DB) GrievanceRepository {
	return &grievanceRepository{db: db}
}

const grievanceSelect = `
        SELECT g.id, g.user_id, g.category, g.description, g.status, g.read_by_authority, g.date_raised,
               g.rejection_reason, g.resolution_note, g.user_images, g.admin_images, g.created_at, g.updated_at,
               u.email, u.role, u.full_name, u.mobile_number
        FROM grievances g
        LEFT JOIN users u ON u.id = g.user_id`

func (r *grievanceRepository) Create(ctx context.Context, grievance *domain.Grievance) error {
	const query = `
        INSERT INTO grievances (user_id, category, description, status, read_by_authority, date_raised,
                                rejection_reason, resolution_note, user_images, admin_images)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING id, created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		grievance.OwnerID,
		grievance.Category,
		grievance.Description,
		grievance.Status,
		grievance.ReadByAuthority,
		grievance.DateRaised,
		grievance.RejectionReason,
		grievance.ResolutionNote,
		nonNil(grievance.UserImages),
		nonNil(grievance.AdminImages),
	).Scan(&grievance.ID, &grievance.CreatedAt, &grievance.UpdatedAt)
}

func (r *grievanceRepository) Update(ctx context.Context, grievance *domain.Grievance) error {
	const query = `
        UPDATE grievances SET category=$1, description=$2, status=$3, read_by_authority=$4,
            rejection_reason=$5, resolution_note=$6, user_images=$7, admin_images=$8, updated_at=NOW()
        WHERE id=$9
        RETURNING updated_at`
	err := r.db.QueryRow(ctx, query,
		grievance.Category,
		grievance.Description,
		grievance.Status,
		grievance.ReadByAuthority,
		grievance.RejectionReason,
		grievance.ResolutionNote,
		nonNil(grievance.UserImages),
		nonNil(grievance.AdminImages),
		grievance.ID,
	).Scan(&grievance.UpdatedAt)
	return err
}

func (r *grievanceRepository) GetByID(ctx context.Context, id int64) (*domain.Grievance, error) {
	return scanGrievance(r.db.QueryRow(ctx, grievanceSelect+` WHERE g.id=$1`, id))
}

func (r *grievanceRepository) ListAll(ctx context.Context) ([]domain.Grievance, error) {
	rows, err := r.db.Query(ctx, grievanceSelect+` ORDER BY g.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanGrievances(rows)
}

func (r *grievanceRepository) ListByOwner(ctx context.Context, userID int64) ([]domain.Grievance, error) {
	rows, err := r.db.Query(ctx, grievanceSelect+` WHERE g.user_id=$1 ORDER BY g.id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanGrievances(rows)
}

func scanGrievance(row pgx.Row) (*domain.Grievance, error) {
	var g domain.Grievance
	var email, role, fullName, mobile *string
	if err := row.Scan(
		&g.ID,
		&g.OwnerID,
		&g.Category,
		&g.Description,
		&g.Status,
		&g.ReadByAuthority,
		&g.DateRaised,
		&g.RejectionReason,
		&g.ResolutionNote,
		&g.UserImages,
		&g.AdminImages,
		&g.CreatedAt,
		&g.UpdatedAt,
		&email,
		&role,
		&fullName,
		&mobile,
	); err != nil {
		return nil, err
	}
	if g.OwnerID != nil && email != nil {
		g.Owner = &domain.User{
			ID:           *g.OwnerID,
			Email:        *email,
			Role:         domain.Role(deref(role)),
			FullName:     deref(fullName),
			MobileNumber: deref(mobile),
		}
	}
	return &g, nil
}

func scanGrievances(rows pgx.Rows) ([]domain.Grievance, error) {
	result := []domain.Grievance{}
	for rows.Next() {
		g, err := scanGrievance(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *g)
	}
	return result, rows.Err()
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
