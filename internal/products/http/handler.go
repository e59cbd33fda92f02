package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"supermarket-inventory/internal/httpserver"
	"supermarket-inventory/internal/products"
	"supermarket-inventory/internal/validation"

	"github.com/gin-gonic/gin"
)

type ProductService interface {
	AddProduct(ctx context.Context, in products.CreateInput) (products.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
	ListProducts(ctx context.Context) ([]products.Product, error)
}

type Handler struct {
	service ProductService
}

func NewHandler(svc ProductService) *Handler {
	validation.UseJSONFieldNames()
	return &Handler{service: svc}
}

// Quantities and prices are bound as json.Number so both form posts and JSON
// bodies reach products.ParseInput as text.
type createProductRequest struct {
	Name     string      `json:"nombre" form:"nombre" binding:"required" example:"Leche"`
	Quantity json.Number `json:"cantidad" form:"cantidad" binding:"required" swaggertype:"string" example:"10"`
	Price    json.Number `json:"precio" form:"precio" binding:"required" swaggertype:"string" example:"2.50"`
}

type productResponse struct {
	products.Product
	Warning string `json:"warning,omitempty" example:"catalog saved but export files were not refreshed"`
}

type warningResponse struct {
	Warning string `json:"warning" example:"catalog saved but export files were not refreshed"`
}

type listProductsResponse struct {
	Items []products.Product `json:"items"`
}

// CreateProduct godoc
// @Summary      Add a product to the catalog
// @Tags         products
// @Accept       json,x-www-form-urlencoded
// @Produce      json
// @Param        body  body      createProductRequest  true  "Product data"
// @Success      201   {object}  productResponse
// @Failure      400   {object}  httpserver.ValidationErrorResponse
// @Failure      401   {object}  httpserver.ErrorResponse
// @Failure      500   {object}  httpserver.ErrorResponse
// @Router       /products [post]
func (h *Handler) CreateProduct(c *gin.Context) {
	var req createProductRequest
	if err := c.ShouldBind(&req); err != nil {
		httpserver.RespondBindError(c, err)
		return
	}

	in, err := products.ParseInput(req.Name, req.Quantity.String(), req.Price.String())
	if err != nil {
		httpserver.RespondError(c, err, "failed to create product")
		return
	}

	product, err := h.service.AddProduct(c.Request.Context(), in)
	var exportFailure *products.ExportFailure
	switch {
	case errors.As(err, &exportFailure):
		c.JSON(http.StatusCreated, productResponse{Product: product, Warning: exportFailure.Error()})
	case err != nil:
		httpserver.RespondError(c, err, "failed to create product")
	default:
		c.JSON(http.StatusCreated, productResponse{Product: product})
	}
}

// DeleteProduct godoc
// @Summary      Delete a product by ID
// @Tags         products
// @Produce      json
// @Param        id   path      int  true  "Product ID"
// @Success      204
// @Success      200  {object}  warningResponse  "Deleted, but the export files were not refreshed"
// @Failure      400  {object}  httpserver.ErrorResponse
// @Failure      401  {object}  httpserver.ErrorResponse
// @Failure      404  {object}  httpserver.ErrorResponse
// @Failure      500  {object}  httpserver.ErrorResponse
// @Router       /products/{id} [delete]
func (h *Handler) DeleteProduct(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, httpserver.ErrorResponse{Error: "invalid product id"})
		return
	}

	err = h.service.DeleteProduct(c.Request.Context(), id)
	var exportFailure *products.ExportFailure
	switch {
	case errors.As(err, &exportFailure):
		c.JSON(http.StatusOK, warningResponse{Warning: exportFailure.Error()})
	case errors.Is(err, products.ErrNotFound):
		c.JSON(http.StatusNotFound, httpserver.ErrorResponse{Error: products.ErrNotFound.Error()})
	case err != nil:
		httpserver.RespondError(c, err, "failed to delete product")
	default:
		c.Status(http.StatusNoContent)
	}
}

// ListProducts godoc
// @Summary      List every product in the catalog
// @Tags         products
// @Produce      json
// @Success      200    {object}  listProductsResponse
// @Failure      401    {object}  httpserver.ErrorResponse
// @Failure      500    {object}  httpserver.ErrorResponse
// @Router       /products [get]
func (h *Handler) ListProducts(c *gin.Context) {
	items, err := h.service.ListProducts(c.Request.Context())
	if err != nil {
		httpserver.RespondError(c, err, "failed to get products")
		return
	}

	c.JSON(http.StatusOK, listProductsResponse{Items: items})
}
