package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/kaula1/bizmate/internal/apperr"
	"github.com/kaula1/bizmate/internal/inventory"
	"github.com/kaula1/bizmate/pkg/database"
	"github.com/kaula1/bizmate/pkg/logger"
	"github.com/kaula1/bizmate/prometheus"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// AdjustStock handles applying a stock adjustment to a product
func AdjustStock(c echo.Context) error {
	log := logger.FromEcho(c)

	sess, ok := sessionFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		log.Error("Invalid product ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product ID"})
	}

	var req struct {
		Adjustment int    `json:"adjustment"`
		Reason     string `json:"reason"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse stock adjustment request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	level, err := inventory.NewService(database.GetDB()).
		AdjustStock(c.Request().Context(), sess, uint(id), req.Adjustment, req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrInsufficientStock):
			prometheus.RecordStockOperation("adjust", "rejected")
		case errors.Is(err, apperr.ErrValidation):
			prometheus.RecordStockOperation("adjust", "rejected")
		default:
			prometheus.RecordStockOperation("adjust", "error")
		}
		return serviceError(c, log, err, "adjust stock")
	}

	prometheus.RecordStockOperation("adjust", "ok")
	log.Info("Stock adjusted",
		zap.Uint64("product_id", id),
		zap.Int("adjustment", req.Adjustment),
		zap.String("reason", req.Reason),
		zap.Int("current_stock", level.CurrentStock))
	return c.JSON(http.StatusOK, level)
}

// SetInventoryLevel handles the administrative overwrite of inventory fields
func SetInventoryLevel(c echo.Context) error {
	log := logger.FromEcho(c)

	sess, ok := sessionFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		log.Error("Invalid product ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product ID"})
	}

	var req inventory.LevelUpdate
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse inventory update request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	level, err := inventory.NewService(database.GetDB()).
		SetLevel(c.Request().Context(), sess, uint(id), req)
	if err != nil {
		prometheus.RecordStockOperation("set", "error")
		return serviceError(c, log, err, "set inventory level")
	}

	prometheus.RecordStockOperation("set", "ok")
	log.Info("Inventory level updated",
		zap.Uint64("product_id", id),
		zap.Int("current_stock", level.CurrentStock))
	return c.JSON(http.StatusOK, level)
}

// ListLowStock handles the dashboard feed of products at or below their
// minimum stock level
func ListLowStock(c echo.Context) error {
	log := logger.FromEcho(c)

	sess, ok := sessionFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	levels, err := inventory.NewService(database.GetDB()).LowStock(c.Request().Context(), sess)
	if err != nil {
		return serviceError(c, log, err, "list low stock")
	}

	return c.JSON(http.StatusOK, levels)
}
