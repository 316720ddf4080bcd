package auth

import (
	"context"
	"strings"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/nyaruka/phonenumbers"
	"github.com/uptrace/bun"
)

// DefaultPhoneRegion is applied when a contact phone number carries no
// country prefix.
var DefaultPhoneRegion = "US"

// ContactFilter narrows and pages contact listings
type ContactFilter struct {
	// Search matches against first name, last name, and email
	Search string
	Limit  int
	Offset int
}

// Contacts is the owner scoped contact store. Every operation takes the
// owner's user id so one user can never reach another user's rows.
type Contacts interface {
	List(ctx context.Context, userID uuid.UUID, filter ContactFilter) ([]*Contact, int, error)
	GetByID(ctx context.Context, userID, contactID uuid.UUID) (*Contact, error)
	Create(ctx context.Context, record *Contact) (*Contact, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *Contact) (*Contact, error)
	Update(ctx context.Context, userID uuid.UUID, record *Contact) (*Contact, error)
	Delete(ctx context.Context, userID, contactID uuid.UUID) error
	UpcomingBirthdays(ctx context.Context, userID uuid.UUID, days int) ([]*Contact, error)
}

type contacts struct {
	db *bun.DB
}

var _ Contacts = (*contacts)(nil)

func NewContactsRepository(db *bun.DB) Contacts {
	return &contacts{db: db}
}

func (r *contacts) List(ctx context.Context, userID uuid.UUID, filter ContactFilter) ([]*Contact, int, error) {
	records := []*Contact{}

	q := r.db.NewSelect().
		Model(&records).
		Where("?TableAlias.user_id = ?", userID)

	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + search + "%"
		q = q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.
				WhereOr("?TableAlias.first_name LIKE ?", pattern).
				WhereOr("?TableAlias.last_name LIKE ?", pattern).
				WhereOr("?TableAlias.email LIKE ?", pattern)
		})
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 25
	}

	total, err := q.
		Order("last_name ASC", "first_name ASC").
		Limit(limit).
		Offset(filter.Offset).
		ScanAndCount(ctx)
	if err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

func (r *contacts) GetByID(ctx context.Context, userID, contactID uuid.UUID) (*Contact, error) {
	record := &Contact{}

	err := r.db.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", contactID).
		Where("?TableAlias.user_id = ?", userID).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"contact_id": contactID.String(),
				})
		}
		return nil, err
	}

	return record, nil
}

func (r *contacts) Create(ctx context.Context, record *Contact) (*Contact, error) {
	return r.CreateTx(ctx, r.db, record)
}

func (r *contacts) CreateTx(ctx context.Context, tx bun.IDB, record *Contact) (*Contact, error) {
	if err := prepareContactDefaults(record); err != nil {
		return nil, err
	}

	if _, err := tx.NewInsert().Model(record).Exec(ctx); err != nil {
		if IsDuplicateRecordError(err) {
			return nil, errors.New("contact already exists for this user", errors.CategoryConflict).
				WithCode(errors.CodeConflict).
				WithMetadata(map[string]any{
					"email": record.Email,
					"phone": record.Phone,
				})
		}
		return nil, err
	}

	return record, nil
}

func (r *contacts) Update(ctx context.Context, userID uuid.UUID, record *Contact) (*Contact, error) {
	if record.Phone != "" {
		normalized, err := NormalizePhone(record.Phone)
		if err != nil {
			return nil, err
		}
		record.Phone = normalized
	}

	now := time.Now()
	record.UpdatedAt = &now

	res, err := r.db.NewUpdate().
		Model(record).
		OmitZero().
		Where("?TableAlias.id = ?", record.ID).
		Where("?TableAlias.user_id = ?", userID).
		Exec(ctx)
	if err != nil {
		return nil, err
	}

	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return nil, repository.NewRecordNotFound().
			WithMetadata(map[string]any{
				"contact_id": record.ID.String(),
			})
	}

	return r.GetByID(ctx, userID, record.ID)
}

func (r *contacts) Delete(ctx context.Context, userID, contactID uuid.UUID) error {
	res, err := r.db.NewDelete().
		Model((*Contact)(nil)).
		Where("?TableAlias.id = ?", contactID).
		Where("?TableAlias.user_id = ?", userID).
		Exec(ctx)
	if err != nil {
		return err
	}

	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return repository.NewRecordNotFound().
			WithMetadata(map[string]any{
				"contact_id": contactID.String(),
			})
	}

	return nil
}

// UpcomingBirthdays returns contacts whose birthday lands within the next
// `days` days. The year wrap is resolved in Go because the date arithmetic
// differs between the dialects we run on.
func (r *contacts) UpcomingBirthdays(ctx context.Context, userID uuid.UUID, days int) ([]*Contact, error) {
	if days <= 0 {
		days = 7
	}

	records := []*Contact{}
	err := r.db.NewSelect().
		Model(&records).
		Where("?TableAlias.user_id = ?", userID).
		Where("?TableAlias.birth_date IS NOT NULL").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	today := time.Now().Truncate(24 * time.Hour)
	horizon := today.AddDate(0, 0, days)

	upcoming := make([]*Contact, 0, len(records))
	for _, c := range records {
		if c.BirthDate == nil {
			continue
		}
		next := nextBirthday(*c.BirthDate, today)
		if !next.Before(today) && !next.After(horizon) {
			upcoming = append(upcoming, c)
		}
	}

	return upcoming, nil
}

// nextBirthday projects a birth date onto its next occurrence on or after
// today. Feb 29 birthdays fall on Mar 1 in non leap years.
func nextBirthday(birth, today time.Time) time.Time {
	next := time.Date(today.Year(), birth.Month(), birth.Day(), 0, 0, 0, 0, today.Location())
	if next.Before(today) {
		next = time.Date(today.Year()+1, birth.Month(), birth.Day(), 0, 0, 0, 0, today.Location())
	}
	return next
}

// NormalizePhone canonicalizes a phone number to E.164 so the per owner
// unique index treats formatting variants as the same number.
func NormalizePhone(raw string) (string, error) {
	num, err := phonenumbers.Parse(raw, DefaultPhoneRegion)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryValidation, "invalid phone number").
			WithMetadata(map[string]any{"phone": raw})
	}

	if !phonenumbers.IsValidNumber(num) {
		return "", errors.New("invalid phone number", errors.CategoryValidation).
			WithMetadata(map[string]any{"phone": raw})
	}

	return phonenumbers.Format(num, phonenumbers.E164), nil
}

func prepareContactDefaults(record *Contact) error {
	if record == nil {
		return errors.New("contact must not be nil", errors.CategoryBadInput)
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}

	if record.Phone != "" {
		normalized, err := NormalizePhone(record.Phone)
		if err != nil {
			return err
		}
		record.Phone = normalized
	}

	return nil
}
