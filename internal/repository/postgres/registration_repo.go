package postgres

import (
	"context"
	"database/sql"
	"errors"

	"eventhub/internal/domain"
)

type registrationRepository struct {
	DB *sql.DB
}

func NewRegistrationRepository(db *sql.DB) domain.RegistrationRepository {
	return &registrationRepository{
		DB: db,
	}
}

// CreateWithinCapacity inserts the registration first so the partial unique index on active
// (user_id, event_id) pairs decides duplicates, then claims a seat with a conditional increment.
// The row lock taken by the UPDATE serializes concurrent claims on the same event.
func (r *registrationRepository) CreateWithinCapacity(ctx context.Context, reg *domain.Registration) error {
	return withTx(ctx, r.DB, func(tx *sql.Tx) error {
		insert := `
			INSERT INTO registrations (id, event_id, user_id, ticket_token, qr_code_data_url, status, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`
		_, err := tx.ExecContext(ctx, insert, reg.ID, reg.EventID, reg.UserID, reg.TicketToken,
			reg.QRCodeDataURL, string(reg.Status), reg.CreatedAt, reg.UpdatedAt)
		if err != nil {
			switch {
			case isUniqueViolation(err):
				return domain.ErrConflict
			case isForeignKeyViolation(err), isInvalidID(err):
				return domain.ErrNotFound
			}
			return err
		}

		claim := `
			UPDATE events SET registered_count = registered_count + 1
			WHERE id = $1 AND registered_count < capacity
		`
		result, err := tx.ExecContext(ctx, claim, reg.EventID)
		if err != nil {
			return err
		}
		if rows, _ := result.RowsAffected(); rows == 0 {
			return domain.ErrCapacityExceeded
		}
		return nil
	})
}

func (r *registrationRepository) Cancel(ctx context.Context, eventID, userID string) (*domain.Registration, error) {
	reg := &domain.Registration{}
	err := withTx(ctx, r.DB, func(tx *sql.Tx) error {
		update := `
			UPDATE registrations SET status = 'cancelled', updated_at = NOW()
			WHERE event_id = $1 AND user_id = $2 AND status = 'registered'
			RETURNING id, event_id, user_id, ticket_token, qr_code_data_url, status, created_at, updated_at
		`
		var status string
		err := tx.QueryRowContext(ctx, update, eventID, userID).Scan(
			&reg.ID, &reg.EventID, &reg.UserID, &reg.TicketToken, &reg.QRCodeDataURL, &status, &reg.CreatedAt, &reg.UpdatedAt,
		)
		if err != nil {
			return notFoundOr(err)
		}
		reg.Status = domain.RegistrationStatus(status)

		release := `
			UPDATE events SET registered_count = GREATEST(registered_count - 1, 0)
			WHERE id = $1
		`
		_, err = tx.ExecContext(ctx, release, eventID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return reg, nil
}

func (r *registrationRepository) GetActive(ctx context.Context, eventID, userID string) (*domain.Registration, error) {
	query := `
		SELECT id, event_id, user_id, ticket_token, qr_code_data_url, status, created_at, updated_at
		FROM registrations
		WHERE event_id = $1 AND user_id = $2 AND status = 'registered'
	`
	reg := &domain.Registration{}
	var status string
	err := r.DB.QueryRowContext(ctx, query, eventID, userID).
		Scan(&reg.ID, &reg.EventID, &reg.UserID, &reg.TicketToken, &reg.QRCodeDataURL, &status, &reg.CreatedAt, &reg.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || isInvalidID(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	reg.Status = domain.RegistrationStatus(status)
	return reg, nil
}

func (r *registrationRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.RegistrationWithEvent, error) {
	query := `
		SELECT r.id, r.event_id, r.user_id, r.ticket_token, r.qr_code_data_url, r.status, r.created_at, r.updated_at,
			` + eventColumns + `
		FROM registrations r
		JOIN events e ON e.id = r.event_id
		JOIN users u ON u.id = e.organizer_id
		WHERE r.user_id = $1
		ORDER BY r.created_at DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		if isInvalidID(err) {
			return []*domain.RegistrationWithEvent{}, nil
		}
		return nil, err
	}
	defer rows.Close()

	items := make([]*domain.RegistrationWithEvent, 0)
	for rows.Next() {
		reg := &domain.Registration{}
		var status string
		var es eventScan
		dest := append([]any{&reg.ID, &reg.EventID, &reg.UserID, &reg.TicketToken, &reg.QRCodeDataURL, &status, &reg.CreatedAt, &reg.UpdatedAt}, es.dest()...)
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		reg.Status = domain.RegistrationStatus(status)
		items = append(items, &domain.RegistrationWithEvent{Registration: reg, Event: es.event()})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *registrationRepository) ListParticipants(ctx context.Context, eventID string) ([]*domain.Participant, error) {
	query := `
		SELECT r.id, u.id, u.name, u.email, u.avatar_url, r.status, r.created_at
		FROM registrations r
		JOIN users u ON u.id = r.user_id
		WHERE r.event_id = $1 AND r.status <> 'cancelled'
		ORDER BY r.created_at ASC
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		if isInvalidID(err) {
			return []*domain.Participant{}, nil
		}
		return nil, err
	}
	defer rows.Close()

	participants := make([]*domain.Participant, 0)
	for rows.Next() {
		p := &domain.Participant{}
		var status string
		if err := rows.Scan(&p.RegistrationID, &p.UserID, &p.Name, &p.Email, &p.AvatarURL, &status, &p.RegisteredAt); err != nil {
			return nil, err
		}
		p.Status = domain.RegistrationStatus(status)
		participants = append(participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return participants, nil
}

// GetParticipantByTicket resolves a scanned ticket to its attendee. Cancelled registrations
// keep their token but no longer admit anyone.
func (r *registrationRepository) GetParticipantByTicket(ctx context.Context, eventID, token string) (*domain.Participant, error) {
	query := `
		SELECT r.id, u.id, u.name, u.email, u.avatar_url, r.status, r.created_at
		FROM registrations r
		JOIN users u ON u.id = r.user_id
		WHERE r.event_id = $1 AND r.ticket_token = $2 AND r.status = 'registered'
	`
	p := &domain.Participant{}
	var status string
	err := r.DB.QueryRowContext(ctx, query, eventID, token).
		Scan(&p.RegistrationID, &p.UserID, &p.Name, &p.Email, &p.AvatarURL, &status, &p.RegisteredAt)
	if err != nil {
		return nil, notFoundOr(err)
	}
	p.Status = domain.RegistrationStatus(status)
	return p, nil
}
