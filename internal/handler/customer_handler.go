package handler

import (
	"net/http"
	"strconv"

	"github.com/kaula1/bizmate/internal/customer"
	"github.com/kaula1/bizmate/pkg/database"
	"github.com/kaula1/bizmate/pkg/logger"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ListCustomers handles retrieving the organization's customers, optionally
// filtered by a search term over name, email and phone
func ListCustomers(c echo.Context) error {
	log := logger.FromEcho(c)

	sess, ok := sessionFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	search := c.QueryParam("search")
	activeOnly := true
	if v := c.QueryParam("include_inactive"); v != "" {
		if include, err := strconv.ParseBool(v); err == nil && include {
			activeOnly = false
		}
	}

	customers, err := customer.NewStore(database.GetDB()).
		List(c.Request().Context(), sess, search, activeOnly)
	if err != nil {
		return serviceError(c, log, err, "list customers")
	}

	log.Info("Customers retrieved", zap.Int("count", len(customers)))
	return c.JSON(http.StatusOK, customers)
}

// GetCustomer handles retrieving a single customer by ID
func GetCustomer(c echo.Context) error {
	log := logger.FromEcho(c)

	sess, ok := sessionFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		log.Error("Invalid customer ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid customer ID"})
	}

	record, err := customer.NewStore(database.GetDB()).Get(c.Request().Context(), sess, uint(id))
	if err != nil {
		return serviceError(c, log, err, "get customer")
	}

	return c.JSON(http.StatusOK, record)
}

// CreateCustomer handles creating a new customer
func CreateCustomer(c echo.Context) error {
	log := logger.FromEcho(c)

	sess, ok := sessionFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	var req customer.CustomerInput
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}

	record, err := customer.NewStore(database.GetDB()).Create(c.Request().Context(), sess, req)
	if err != nil {
		return serviceError(c, log, err, "create customer")
	}

	log.Info("Customer created",
		zap.Uint("customer_id", record.ID),
		zap.String("name", record.Name))
	return c.JSON(http.StatusCreated, record)
}

// UpdateCustomer handles updating an existing customer
func UpdateCustomer(c echo.Context) error {
	log := logger.FromEcho(c)

	sess, ok := sessionFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		log.Error("Invalid customer ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid customer ID"})
	}

	var req customer.CustomerInput
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}

	record, err := customer.NewStore(database.GetDB()).
		Update(c.Request().Context(), sess, uint(id), req)
	if err != nil {
		return serviceError(c, log, err, "update customer")
	}

	log.Info("Customer updated", zap.Uint("customer_id", record.ID))
	return c.JSON(http.StatusOK, record)
}

// DeleteCustomer handles soft-deleting a customer
func DeleteCustomer(c echo.Context) error {
	log := logger.FromEcho(c)

	sess, ok := sessionFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		log.Error("Invalid customer ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid customer ID"})
	}

	if err := customer.NewStore(database.GetDB()).Delete(c.Request().Context(), sess, uint(id)); err != nil {
		return serviceError(c, log, err, "delete customer")
	}

	log.Info("Customer deleted", zap.Uint64("customer_id", id))
	return c.JSON(http.StatusOK, echo.Map{"message": "Customer deleted successfully"})
}
