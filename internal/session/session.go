// Package session owns the active-organization state for one authenticated
// user. A Context is built per request, loaded once, and handed to every
// tenant-scoped accessor; it is the only writer of the durable organization
// selection.
package session

import (
	"context"
	"fmt"
	"sort"

	"github.com/kaula1/bizmate/internal/apperr"
	"github.com/kaula1/bizmate/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Context resolves and exposes exactly one current membership for a user.
// Not safe for concurrent use: each request owns its own Context.
type Context struct {
	db          *gorm.DB
	userID      uint
	memberships []model.Membership
	current     *model.Membership
}

// NewContext creates an unloaded Context for the given user.
func NewContext(db *gorm.DB, userID uint) *Context {
	return &Context{db: db, userID: userID}
}

// UserID returns the user this Context belongs to.
func (s *Context) UserID() uint {
	return s.userID
}

// Load fetches the user's active memberships joined with their organizations
// and resolves the current organization. On fetch failure the prior state is
// retained. Membership order is deterministic: organization name, then
// membership id.
func (s *Context) Load(ctx context.Context) ([]model.Membership, error) {
	var memberships []model.Membership
	err := s.db.WithContext(ctx).
		Preload("Organization").
		Where("user_id = ? AND active = ?", s.userID, true).
		Find(&memberships).Error
	if err != nil {
		return nil, fmt.Errorf("%w: load memberships: %v", apperr.ErrDataAccess, err)
	}

	sort.Slice(memberships, func(i, j int) bool {
		if memberships[i].Organization.Name != memberships[j].Organization.Name {
			return memberships[i].Organization.Name < memberships[j].Organization.Name
		}
		return memberships[i].ID < memberships[j].ID
	})

	current := s.resolveCurrent(ctx, memberships)
	if current != nil {
		if err := s.persistSelection(ctx, current.OrgID); err != nil {
			return nil, err
		}
	}

	// Commit only once both the fetch and the selection write succeeded.
	s.memberships = memberships
	s.current = current

	return memberships, nil
}

// resolveCurrent picks the active membership: the one already current if it
// survived the reload, else the durably remembered one, else the first of
// the loaded set.
func (s *Context) resolveCurrent(ctx context.Context, memberships []model.Membership) *model.Membership {
	if len(memberships) == 0 {
		return nil
	}

	find := func(orgID uint) *model.Membership {
		for i := range memberships {
			if memberships[i].OrgID == orgID {
				return &memberships[i]
			}
		}
		return nil
	}

	if s.current != nil {
		if m := find(s.current.OrgID); m != nil {
			return m
		}
	}

	var selection model.OrgSelection
	err := s.db.WithContext(ctx).First(&selection, "user_id = ?", s.userID).Error
	if err == nil {
		if m := find(selection.OrgID); m != nil {
			return m
		}
	}

	return &memberships[0]
}

// Switch makes orgID the current organization. The target must be present in
// the loaded membership set; no membership re-fetch happens here.
func (s *Context) Switch(ctx context.Context, orgID uint) error {
	m := s.findMembership(orgID)
	if m == nil {
		return fmt.Errorf("%w: organization %d is not in the active membership set", apperr.ErrUnknownOrganization, orgID)
	}

	if err := s.persistSelection(ctx, orgID); err != nil {
		return err
	}
	s.current = m
	return nil
}

// Refresh re-loads the membership set for the same user. Used after
// organization creation or profile edits.
func (s *Context) Refresh(ctx context.Context) error {
	_, err := s.Load(ctx)
	return err
}

// CurrentOrgID returns the active organization id. Every tenant-scoped
// accessor calls this first and refuses to run without a selection.
func (s *Context) CurrentOrgID() (uint, error) {
	if s.current == nil {
		return 0, apperr.ErrNoOrganizationSelected
	}
	return s.current.OrgID, nil
}

// Current returns the active membership, or nil if none is selected.
func (s *Context) Current() *model.Membership {
	return s.current
}

// Memberships returns the loaded membership set.
func (s *Context) Memberships() []model.Membership {
	return s.memberships
}

// ClearSelection removes the durable organization selection. Called on
// sign-out; the next sign-in falls back to the first membership.
func (s *Context) ClearSelection(ctx context.Context) error {
	err := s.db.WithContext(ctx).Delete(&model.OrgSelection{}, "user_id = ?", s.userID).Error
	if err != nil {
		return fmt.Errorf("%w: clear selection: %v", apperr.ErrDataAccess, err)
	}
	s.current = nil
	s.memberships = nil
	return nil
}

func (s *Context) findMembership(orgID uint) *model.Membership {
	for i := range s.memberships {
		if s.memberships[i].OrgID == orgID {
			return &s.memberships[i]
		}
	}
	return nil
}

func (s *Context) persistSelection(ctx context.Context, orgID uint) error {
	selection := model.OrgSelection{UserID: s.userID, OrgID: orgID}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"org_id", "updated_at"}),
		}).
		Create(&selection).Error
	if err != nil {
		return fmt.Errorf("%w: persist selection: %v", apperr.ErrDataAccess, err)
	}
	return nil
}
