// Package customer provides organization-scoped customer access.
package customer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kaula1/bizmate/internal/apperr"
	"github.com/kaula1/bizmate/internal/model"
	"github.com/kaula1/bizmate/internal/session"
	"gorm.io/gorm"
)

// Store reads and writes customers for the active organization.
type Store struct {
	db *gorm.DB
}

// NewStore creates a customer store on the given database handle.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// CustomerInput carries the writable customer fields. Blank optional fields
// are stored as NULL.
type CustomerInput struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
	Notes   string `json:"notes"`
}

func optional(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}

// List returns the organization's customers ordered by name. When search is
// non-empty, matches are case-insensitive substrings over name, email and
// phone.
func (s *Store) List(ctx context.Context, sess *session.Context, search string, activeOnly bool) ([]model.Customer, error) {
	orgID, err := sess.CurrentOrgID()
	if err != nil {
		return nil, err
	}

	query := s.db.WithContext(ctx).Where("org_id = ?", orgID)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	if search = strings.TrimSpace(search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where(
			"LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(phone) LIKE ?",
			pattern, pattern, pattern,
		)
	}

	var customers []model.Customer
	if err := query.Order("name").Find(&customers).Error; err != nil {
		return nil, fmt.Errorf("%w: list customers: %v", apperr.ErrDataAccess, err)
	}
	return customers, nil
}

// Get returns one customer within the organization scope.
func (s *Store) Get(ctx context.Context, sess *session.Context, id uint) (*model.Customer, error) {
	orgID, err := sess.CurrentOrgID()
	if err != nil {
		return nil, err
	}

	var customer model.Customer
	err = s.db.WithContext(ctx).First(&customer, "id = ? AND org_id = ?", id, orgID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: customer %d", apperr.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get customer: %v", apperr.ErrDataAccess, err)
	}
	return &customer, nil
}

// Create inserts a customer in the active organization.
func (s *Store) Create(ctx context.Context, sess *session.Context, in CustomerInput) (*model.Customer, error) {
	orgID, err := sess.CurrentOrgID()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("%w: customer name is required", apperr.ErrValidation)
	}

	customer := model.Customer{
		OrgID:    orgID,
		Name:     in.Name,
		Phone:    optional(in.Phone),
		Email:    optional(in.Email),
		Address:  optional(in.Address),
		Notes:    optional(in.Notes),
		IsActive: true,
	}

	if err := s.db.WithContext(ctx).Create(&customer).Error; err != nil {
		return nil, fmt.Errorf("%w: create customer: %v", apperr.ErrDataAccess, err)
	}
	return &customer, nil
}

// Update overwrites the writable fields of a customer within the
// organization scope.
func (s *Store) Update(ctx context.Context, sess *session.Context, id uint, in CustomerInput) (*model.Customer, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("%w: customer name is required", apperr.ErrValidation)
	}

	customer, err := s.Get(ctx, sess, id)
	if err != nil {
		return nil, err
	}

	customer.Name = in.Name
	customer.Phone = optional(in.Phone)
	customer.Email = optional(in.Email)
	customer.Address = optional(in.Address)
	customer.Notes = optional(in.Notes)

	if err := s.db.WithContext(ctx).Save(customer).Error; err != nil {
		return nil, fmt.Errorf("%w: update customer: %v", apperr.ErrDataAccess, err)
	}
	return customer, nil
}

// Delete soft-deletes a customer by marking it inactive.
func (s *Store) Delete(ctx context.Context, sess *session.Context, id uint) error {
	orgID, err := sess.CurrentOrgID()
	if err != nil {
		return err
	}

	result := s.db.WithContext(ctx).
		Model(&model.Customer{}).
		Where("id = ? AND org_id = ?", id, orgID).
		Update("is_active", false)
	if result.Error != nil {
		return fmt.Errorf("%w: delete customer: %v", apperr.ErrDataAccess, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: customer %d", apperr.ErrNotFound, id)
	}
	return nil
}
