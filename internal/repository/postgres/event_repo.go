package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"eventhub/internal/domain"
)

const eventColumns = `e.id, e.title, e.description, e.category, e.date, e.location, e.location_lat, e.location_lng,
		e.capacity, e.price, e.poster_url, e.tags, e.organizer_id, e.status, e.average_rating,
		e.wishlist_count, e.registered_count, e.created_at, e.updated_at, u.name, u.avatar_url`

type rowScanner interface {
	Scan(dest ...any) error
}

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

// eventScan holds the scan targets for eventColumns so callers can prepend their own columns.
type eventScan struct {
	e                          domain.Event
	category, status           string
	lat, lng                   sql.NullFloat64
	organizerName, organizerAV string
}

func (s *eventScan) dest() []any {
	e := &s.e
	return []any{
		&e.ID, &e.Title, &e.Description, &s.category, &e.Date, &e.Location, &s.lat, &s.lng,
		&e.Capacity, &e.Price, &e.PosterURL, pq.Array(&e.Tags), &e.OrganizerID, &s.status, &e.AverageRating,
		&e.WishlistCount, &e.RegisteredCount, &e.CreatedAt, &e.UpdatedAt, &s.organizerName, &s.organizerAV,
	}
}

func (s *eventScan) event() *domain.Event {
	e := s.e
	e.Category = domain.Category(s.category)
	e.Status = domain.EventStatus(s.status)
	if s.lat.Valid {
		lat := s.lat.Float64
		e.LocationLat = &lat
	}
	if s.lng.Valid {
		lng := s.lng.Float64
		e.LocationLng = &lng
	}
	if e.Tags == nil {
		e.Tags = []string{}
	}
	e.Organizer = &domain.PublicProfile{ID: e.OrganizerID, Name: s.organizerName, AvatarURL: s.organizerAV}
	return &e
}

func scanEvent(sc rowScanner) (*domain.Event, error) {
	var es eventScan
	if err := sc.Scan(es.dest()...); err != nil {
		return nil, err
	}
	return es.event(), nil
}

func notFoundOr(err error) error {
	if errors.Is(err, sql.ErrNoRows) || isInvalidID(err) {
		return domain.ErrNotFound
	}
	return err
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (title, description, category, date, location, location_lat, location_lng,
			capacity, price, poster_url, tags, organizer_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query,
		e.Title, e.Description, string(e.Category), e.Date, e.Location, e.LocationLat, e.LocationLng,
		e.Capacity, e.Price, e.PosterURL, pq.Array(e.Tags), e.OrganizerID, string(e.Status), e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return err
	}
	return nil
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + `
		FROM events e
		JOIN users u ON u.id = e.organizer_id
		WHERE e.id = $1
	`
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFoundOr(err)
	}
	return e, nil
}

func (r *eventRepository) UpdateOwned(ctx context.Context, eventID, organizerID string, patch domain.EventPatch) (*domain.Event, error) {
	setClauses := []string{"updated_at = NOW()"}
	args := []interface{}{}
	n := 1
	add := func(column string, value interface{}) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, n))
		args = append(args, value)
		n++
	}
	if patch.Title != nil {
		add("title", *patch.Title)
	}
	if patch.Description != nil {
		add("description", *patch.Description)
	}
	if patch.Category != nil {
		add("category", string(*patch.Category))
	}
	if patch.Date != nil {
		add("date", *patch.Date)
	}
	if patch.Location != nil {
		add("location", *patch.Location)
	}
	if patch.LocationLat != nil {
		add("location_lat", *patch.LocationLat)
	}
	if patch.LocationLng != nil {
		add("location_lng", *patch.LocationLng)
	}
	if patch.Capacity != nil {
		add("capacity", *patch.Capacity)
	}
	if patch.Price != nil {
		add("price", *patch.Price)
	}
	if patch.PosterURL != nil {
		add("poster_url", *patch.PosterURL)
	}
	if patch.Tags != nil {
		add("tags", pq.Array(*patch.Tags))
	}
	args = append(args, eventID, organizerID)
	query := fmt.Sprintf(`
		WITH e AS (
			UPDATE events SET %s
			WHERE id = $%d AND organizer_id = $%d
			RETURNING *
		)
		SELECT %s
		FROM e
		JOIN users u ON u.id = e.organizer_id
	`, strings.Join(setClauses, ", "), n, n+1, eventColumns)
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		if pqCode(err) == codeCheckViolation {
			// capacity lowered below the seats already taken
			return nil, domain.NewValidationError("capacity cannot be lower than the number of active registrations")
		}
		return nil, notFoundOr(err)
	}
	return e, nil
}

func (r *eventRepository) DeleteOwned(ctx context.Context, eventID, organizerID string) error {
	query := `DELETE FROM events WHERE id = $1 AND organizer_id = $2`
	result, err := r.DB.ExecContext(ctx, query, eventID, organizerID)
	if err != nil {
		return notFoundOr(err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func buildEventWhere(f domain.EventFilter) (string, []interface{}) {
	var conds []string
	var args []interface{}
	add := func(format string, value interface{}) {
		args = append(args, value)
		conds = append(conds, fmt.Sprintf(format, len(args)))
	}
	if f.Status != "" {
		add("e.status = $%d", string(f.Status))
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		add("e.title ILIKE $%d", "%"+escapeLike(q)+"%")
	}
	if f.Category != "" {
		add("e.category = $%d", string(f.Category))
	}
	if f.OrganizerID != "" {
		add("e.organizer_id = $%d", f.OrganizerID)
	}
	if f.MinPrice != nil {
		add("e.price >= $%d", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		add("e.price <= $%d", *f.MaxPrice)
	}
	if f.StartDate != nil {
		add("e.date >= $%d", *f.StartDate)
	}
	if f.EndDate != nil {
		add("e.date <= $%d", *f.EndDate)
	}
	if len(conds) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

// escapeLike makes user input match literally inside an ILIKE pattern.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (r *eventRepository) List(ctx context.Context, f domain.EventFilter) ([]*domain.Event, int, error) {
	where, args := buildEventWhere(f)

	var total int
	countQuery := `SELECT COUNT(*) FROM events e ` + where
	if err := r.DB.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		if isInvalidID(err) {
			return []*domain.Event{}, 0, nil
		}
		return nil, 0, err
	}

	query := `SELECT ` + eventColumns + `
		FROM events e
		JOIN users u ON u.id = e.organizer_id
		` + where + `
		ORDER BY e.date ASC, e.id ASC`
	if limit := f.Pagination.Limit(); limit > 0 {
		args = append(args, limit, f.Pagination.Offset())
		query += fmt.Sprintf(` LIMIT $%d OFFSET $%d`, len(args)-1, len(args))
	}
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, 0, err
		}
		events = append(events, e)
	}
	return events, total, rows.Err()
}

func (r *eventRepository) SetStatus(ctx context.Context, eventID string, status domain.EventStatus) (*domain.Event, error) {
	query := `
		WITH e AS (
			UPDATE events SET status = $1, updated_at = NOW()
			WHERE id = $2
			RETURNING *
		)
		SELECT ` + eventColumns + `
		FROM e
		JOIN users u ON u.id = e.organizer_id
	`
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, string(status), eventID))
	if err != nil {
		return nil, notFoundOr(err)
	}
	return e, nil
}

func (r *eventRepository) CountActiveRegistrations(ctx context.Context, eventID string) (int, error) {
	query := `SELECT COUNT(*) FROM registrations WHERE event_id = $1 AND status <> 'cancelled'`
	var count int
	if err := r.DB.QueryRowContext(ctx, query, eventID).Scan(&count); err != nil {
		return 0, notFoundOr(err)
	}
	return count, nil
}
