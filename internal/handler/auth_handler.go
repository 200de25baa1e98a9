package handler

import (
	"net/http"
	"time"

	"github.com/kaula1/bizmate/internal/model"
	"github.com/kaula1/bizmate/internal/session"
	"github.com/kaula1/bizmate/pkg/database"
	"github.com/kaula1/bizmate/pkg/jwtutil"
	"github.com/kaula1/bizmate/pkg/logger"
	"github.com/kaula1/bizmate/prometheus"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Register creates a new user account
func Register(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RegisterCounter.Inc()

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse registration request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.Email == "" || len(req.Password) < 8 {
		log.Error("Invalid registration data",
			zap.String("email", req.Email),
			zap.Bool("password_provided", req.Password != ""))
		prometheus.RecordAuthError("incomplete_registration")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email and a password of at least 8 characters are required"})
	}

	// Check if user already exists
	defer prometheus.TrackDBOperation("query")(time.Now())
	var existingUser model.User
	result := database.GetDB().Where("email = ?", req.Email).First(&existingUser)
	if result.Error == nil {
		log.Warn("User already exists", zap.String("email", req.Email))
		prometheus.RecordAuthError("email_already_exists")
		return c.JSON(http.StatusConflict, echo.Map{"error": "email already registered"})
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("Failed to hash password", zap.Error(err))
		prometheus.RecordAuthError("password_hash_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}

	user := model.User{
		Email:    req.Email,
		Password: string(hashedPassword),
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := database.GetDB().Create(&user); result.Error != nil {
		log.Error("Failed to create user", zap.Error(result.Error))
		prometheus.RecordAuthError("user_creation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}

	log.Info("User registered", zap.String("email", user.Email))
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "User registered successfully",
		"user": map[string]interface{}{
			"id":    user.ID,
			"email": user.Email,
		},
	})
}

// Login authenticates a user and issues a token carrying the resolved
// organization context: an explicitly requested organization, else the
// remembered selection, else the first active membership.
func Login(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.LoginCounter.Inc()

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		OrgID    *uint  `json:"org_id,omitempty"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse login request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var user model.User
	result := database.GetDB().Where("email = ?", req.Email).First(&user)
	if result.Error != nil {
		log.Warn("User not found", zap.String("email", req.Email))
		prometheus.RecordAuthError("user_not_found")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		log.Warn("Invalid password", zap.String("email", req.Email))
		prometheus.RecordAuthError("invalid_password")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	// Resolve the organization context for this session
	sess := session.NewContext(database.GetDB(), user.ID)
	if _, err := sess.Load(c.Request().Context()); err != nil {
		log.Error("Failed to load memberships", zap.Error(err))
		prometheus.RecordAuthError("membership_load_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load memberships"})
	}

	if req.OrgID != nil {
		if err := sess.Switch(c.Request().Context(), *req.OrgID); err != nil {
			log.Warn("Login requested inaccessible organization",
				zap.Uint("user_id", user.ID),
				zap.Uint("org_id", *req.OrgID))
			prometheus.RecordAuthError("org_access_denied")
			return c.JSON(http.StatusForbidden, echo.Map{"error": "access denied to the requested organization"})
		}
	}

	token, err := tokenForSession(user.Email, user.ID, sess)
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		prometheus.RecordAuthError("token_generation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token error"})
	}

	prometheus.IncreaseActiveTokens()

	response := echo.Map{
		"token": token,
		"user": map[string]interface{}{
			"id":    user.ID,
			"email": user.Email,
		},
	}
	if current := sess.Current(); current != nil {
		response["organization"] = map[string]interface{}{
			"id":   current.OrgID,
			"name": current.Organization.Name,
			"role": current.Role,
		}
		log.Info("User logged in with organization context",
			zap.String("email", user.Email),
			zap.Uint("org_id", current.OrgID),
			zap.String("role", current.Role))
	} else {
		log.Info("User logged in without organization", zap.String("email", user.Email))
	}

	return c.JSON(http.StatusOK, response)
}

// Logout clears the remembered organization selection for the user. The next
// sign-in falls back to the first active membership.
func Logout(c echo.Context) error {
	log := logger.FromEcho(c)

	claims, ok := c.Get("user").(*jwtutil.UserClaims)
	if !ok {
		log.Error("Failed to get user claims from context")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	sess := session.NewContext(database.GetDB(), claims.UserID)
	if err := sess.ClearSelection(c.Request().Context()); err != nil {
		return serviceError(c, log, err, "sign out")
	}

	prometheus.DecreaseActiveTokens()
	log.Info("User signed out", zap.Uint("user_id", claims.UserID))
	return c.JSON(http.StatusOK, echo.Map{"message": "signed out"})
}

// tokenForSession issues a token for the session's current organization, or
// a bare user token when none is selected.
func tokenForSession(email string, userID uint, sess *session.Context) (string, error) {
	current := sess.Current()
	if current == nil {
		return jwt.GenerateToken(email, userID)
	}
	orgID := current.OrgID
	return jwt.GenerateTokenWithOrg(email, userID, &orgID, current.Organization.Name, current.Role)
}
