package handler

import (
	"net/http"
	"strconv"

	"github.com/kaula1/bizmate/internal/catalog"
	"github.com/kaula1/bizmate/pkg/database"
	"github.com/kaula1/bizmate/pkg/logger"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ListProducts handles retrieving the organization's active products with
// their inventory levels
func ListProducts(c echo.Context) error {
	log := logger.FromEcho(c)

	sess, ok := sessionFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	products, err := catalog.NewStore(database.GetDB()).List(c.Request().Context(), sess)
	if err != nil {
		return serviceError(c, log, err, "list products")
	}

	log.Info("Products retrieved", zap.Int("count", len(products)))
	return c.JSON(http.StatusOK, products)
}

// GetProduct handles retrieving a single product by ID
func GetProduct(c echo.Context) error {
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

	product, err := catalog.NewStore(database.GetDB()).Get(c.Request().Context(), sess, uint(id))
	if err != nil {
		return serviceError(c, log, err, "get product")
	}

	return c.JSON(http.StatusOK, product)
}

// CreateProduct handles creating a new product with its initial inventory level
func CreateProduct(c echo.Context) error {
	log := logger.FromEcho(c)

	sess, ok := sessionFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	var req catalog.ProductInput
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}

	product, err := catalog.NewStore(database.GetDB()).Create(c.Request().Context(), sess, req)
	if err != nil {
		return serviceError(c, log, err, "create product")
	}

	log.Info("Product created",
		zap.Uint("product_id", product.ID),
		zap.String("name", product.Name),
		zap.String("sku", product.SKU))
	return c.JSON(http.StatusCreated, product)
}

// UpdateProduct handles updating an existing product
func UpdateProduct(c echo.Context) error {
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

	var req catalog.ProductInput
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}

	product, err := catalog.NewStore(database.GetDB()).Update(c.Request().Context(), sess, uint(id), req)
	if err != nil {
		return serviceError(c, log, err, "update product")
	}

	log.Info("Product updated",
		zap.Uint("product_id", product.ID),
		zap.String("name", product.Name))
	return c.JSON(http.StatusOK, product)
}

// DeleteProduct handles soft-deleting a product
func DeleteProduct(c echo.Context) error {
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

	if err := catalog.NewStore(database.GetDB()).Delete(c.Request().Context(), sess, uint(id)); err != nil {
		return serviceError(c, log, err, "delete product")
	}

	log.Info("Product deleted", zap.Uint64("product_id", id))
	return c.JSON(http.StatusOK, echo.Map{"message": "Product deleted successfully"})
}
