package handler

import (
	"net/http"
	"time"

	"github.com/kaula1/bizmate/internal/model"
	"github.com/kaula1/bizmate/pkg/database"
	"github.com/kaula1/bizmate/pkg/jwtutil"
	"github.com/kaula1/bizmate/pkg/logger"
	"github.com/kaula1/bizmate/prometheus"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm/clause"
)

// CreateOrganization handles organization onboarding: the organization, the
// caller's owner membership and the organization selection are created in
// one transaction.
func CreateOrganization(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordOrgOperation("create")

	claims, ok := c.Get("user").(*jwtutil.UserClaims)
	if !ok {
		log.Error("Failed to get user claims from context")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}
	userID := claims.UserID

	var req struct {
		Name        string `json:"name"`
		Country     string `json:"country"`
		Currency    string `json:"currency"`
		Phone       string `json:"phone"`
		Email       string `json:"email"`
		Address     string `json:"address"`
		DisplayName string `json:"display_name"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse organization creation request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.Name == "" {
		log.Warn("Invalid organization data", zap.String("name", req.Name))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	if req.DisplayName == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "display_name is required"})
	}
	if req.Country == "" {
		req.Country = cfg.Org.DefaultCountry
	}
	if req.Currency == "" {
		req.Currency = cfg.Org.DefaultCurrency
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	org := model.Organization{
		Name:     req.Name,
		Country:  req.Country,
		Currency: req.Currency,
		Phone:    req.Phone,
		Email:    req.Email,
		Address:  req.Address,
		Active:   true,
	}
	membership := model.Membership{
		UserID:      userID,
		Role:        model.RoleOwner,
		DisplayName: req.DisplayName,
		Active:      true,
	}

	tx := database.GetDB().Begin()
	if tx.Error != nil {
		log.Error("Failed to begin transaction", zap.Error(tx.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	if result := tx.Create(&org); result.Error != nil {
		tx.Rollback()
		log.Error("Failed to create organization", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "organization creation failed"})
	}

	membership.OrgID = org.ID
	if result := tx.Create(&membership); result.Error != nil {
		tx.Rollback()
		log.Error("Failed to create owner membership", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "membership creation failed"})
	}

	// Remember the new organization as the user's selection
	selection := model.OrgSelection{UserID: userID, OrgID: org.ID}
	if result := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"org_id", "updated_at"}),
	}).Create(&selection); result.Error != nil {
		tx.Rollback()
		log.Error("Failed to persist organization selection", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "selection update failed"})
	}

	if err := tx.Commit().Error; err != nil {
		log.Error("Failed to commit transaction", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "transaction commit failed"})
	}

	// Refresh the session so the new membership set is visible, then issue
	// a token scoped to the new organization.
	var token string
	if sess, ok := sessionFrom(c); ok {
		if err := sess.Refresh(c.Request().Context()); err != nil {
			log.Error("Failed to refresh memberships", zap.Error(err))
		} else if err := sess.Switch(c.Request().Context(), org.ID); err != nil {
			log.Error("Failed to select new organization", zap.Error(err))
		} else if t, err := tokenForSession(claims.Email, userID, sess); err == nil {
			token = t
		}
	}

	log.Info("Organization created",
		zap.String("name", org.Name),
		zap.Uint("id", org.ID),
		zap.Uint("owner_id", userID))

	response := echo.Map{
		"message":      "Organization created successfully",
		"organization": org,
		"membership":   membership,
	}
	if token != "" {
		response["token"] = token
	}
	return c.JSON(http.StatusCreated, response)
}

// ListMemberships returns the caller's active memberships with their
// organizations, flagging the current one.
func ListMemberships(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordOrgOperation("list")

	sess, ok := sessionFrom(c)
	if !ok {
		log.Error("Missing session context")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	currentOrgID := uint(0)
	if current := sess.Current(); current != nil {
		currentOrgID = current.OrgID
	}

	type MembershipResponse struct {
		ID          uint      `json:"id"`
		OrgID       uint      `json:"org_id"`
		Name        string    `json:"name"`
		Role        string    `json:"role"`
		DisplayName string    `json:"display_name,omitempty"`
		IsCurrent   bool      `json:"is_current"`
		CreatedAt   time.Time `json:"created_at"`
	}

	memberships := sess.Memberships()
	response := make([]MembershipResponse, 0, len(memberships))
	for _, m := range memberships {
		response = append(response, MembershipResponse{
			ID:          m.ID,
			OrgID:       m.OrgID,
			Name:        m.Organization.Name,
			Role:        m.Role,
			DisplayName: m.DisplayName,
			IsCurrent:   m.OrgID == currentOrgID,
			CreatedAt:   m.CreatedAt,
		})
	}

	return c.JSON(http.StatusOK, response)
}

// CurrentOrganization returns the active membership and organization.
func CurrentOrganization(c echo.Context) error {
	log := logger.FromEcho(c)

	sess, ok := sessionFrom(c)
	if !ok {
		log.Error("Missing session context")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	current := sess.Current()
	if current == nil {
		return c.JSON(http.StatusPreconditionFailed, echo.Map{"error": "no organization selected"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"membership":   current,
		"organization": current.Organization,
	})
}

// SwitchOrganization makes another of the caller's organizations current,
// persists the selection and issues a token scoped to it. Switching to an
// organization outside the membership set is rejected.
func SwitchOrganization(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordOrgOperation("switch")

	claims, ok := c.Get("user").(*jwtutil.UserClaims)
	if !ok {
		log.Error("Failed to get user claims from context")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	sess, ok := sessionFrom(c)
	if !ok {
		log.Error("Missing session context")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	var req struct {
		OrgID uint `json:"org_id"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse organization switch request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.OrgID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "org_id is required"})
	}

	if err := sess.Switch(c.Request().Context(), req.OrgID); err != nil {
		log.Warn("Organization switch rejected",
			zap.Uint("user_id", sess.UserID()),
			zap.Uint("org_id", req.OrgID),
			zap.Error(err))
		return serviceError(c, log, err, "switch organization")
	}

	token, err := tokenForSession(claims.Email, claims.UserID, sess)
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token error"})
	}

	current := sess.Current()
	log.Info("User switched organization",
		zap.Uint("user_id", claims.UserID),
		zap.Uint("org_id", current.OrgID))

	return c.JSON(http.StatusOK, echo.Map{
		"token": token,
		"organization": map[string]interface{}{
			"id":   current.OrgID,
			"name": current.Organization.Name,
			"role": current.Role,
		},
	})
}
