package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"supermarket-inventory/internal/accounts"
	"supermarket-inventory/internal/httpserver"
	"supermarket-inventory/internal/validation"

	"github.com/gin-gonic/gin"
)

type AccountService interface {
	AccountFinder
	Register(ctx context.Context, in accounts.RegisterInput) (accounts.Account, error)
	Authenticate(ctx context.Context, email, password string) (accounts.Account, error)
	List(ctx context.Context) ([]accounts.Account, error)
	Delete(ctx context.Context, actorID, id int64) error
}

type Handler struct {
	service AccountService
}

func NewHandler(svc AccountService) *Handler {
	validation.UseJSONFieldNames()
	return &Handler{service: svc}
}

type registerRequest struct {
	Name     string `json:"nombre" form:"nombre" binding:"required,max=100" example:"Ana"`
	Email    string `json:"email" form:"email" binding:"required,email,max=100" example:"ana@example.com"`
	Password string `json:"password" form:"password" binding:"required" example:"s3cret"`
}

type loginRequest struct {
	Email    string `json:"email" form:"email" binding:"required" example:"ana@example.com"`
	Password string `json:"password" form:"password" binding:"required" example:"s3cret"`
}

type listAccountsResponse struct {
	Items []accounts.Account `json:"items"`
}

// Register godoc
// @Summary      Create an account
// @Tags         accounts
// @Accept       json,x-www-form-urlencoded
// @Produce      json
// @Param        body  body      registerRequest  true  "Account data"
// @Success      201   {object}  accounts.Account
// @Failure      400   {object}  httpserver.ValidationErrorResponse
// @Failure      409   {object}  httpserver.ErrorResponse
// @Failure      500   {object}  httpserver.ErrorResponse
// @Router       /register [post]
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBind(&req); err != nil {
		httpserver.RespondBindError(c, err)
		return
	}

	account, err := h.service.Register(c.Request.Context(), accounts.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if errors.Is(err, accounts.ErrDuplicateEmail) {
		c.JSON(http.StatusConflict, httpserver.ErrorResponse{Error: err.Error()})
		return
	}
	if err != nil {
		httpserver.RespondError(c, err, "failed to register account")
		return
	}

	c.JSON(http.StatusCreated, account)
}

// Login godoc
// @Summary      Start a session
// @Tags         accounts
// @Accept       json,x-www-form-urlencoded
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      200   {object}  accounts.Account
// @Failure      400   {object}  httpserver.ValidationErrorResponse
// @Failure      401   {object}  httpserver.ErrorResponse
// @Failure      500   {object}  httpserver.ErrorResponse
// @Router       /login [post]
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		httpserver.RespondBindError(c, err)
		return
	}

	account, err := h.service.Authenticate(c.Request.Context(), req.Email, req.Password)
	if errors.Is(err, accounts.ErrInvalidCredentials) {
		c.JSON(http.StatusUnauthorized, httpserver.ErrorResponse{Error: err.Error()})
		return
	}
	if err != nil {
		httpserver.RespondError(c, err, "failed to log in")
		return
	}

	if err := startSession(c, account.ID); err != nil {
		httpserver.RespondError(c, err, "failed to start session")
		return
	}
	c.JSON(http.StatusOK, account)
}

// Logout godoc
// @Summary      End the current session
// @Tags         accounts
// @Success      204
// @Failure      401  {object}  httpserver.ErrorResponse
// @Router       /logout [post]
func (h *Handler) Logout(c *gin.Context) {
	if err := endSession(c); err != nil {
		httpserver.RespondError(c, err, "failed to end session")
		return
	}
	c.Status(http.StatusNoContent)
}

// Me godoc
// @Summary      Show the logged-in account
// @Tags         accounts
// @Produce      json
// @Success      200  {object}  accounts.Account
// @Failure      401  {object}  httpserver.ErrorResponse
// @Router       /me [get]
func (h *Handler) Me(c *gin.Context) {
	account, ok := CurrentAccount(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, httpserver.ErrorResponse{Error: "login required"})
		return
	}
	c.JSON(http.StatusOK, account)
}

// ListAccounts godoc
// @Summary      List registered accounts
// @Tags         accounts
// @Produce      json
// @Success      200  {object}  listAccountsResponse
// @Failure      401  {object}  httpserver.ErrorResponse
// @Failure      500  {object}  httpserver.ErrorResponse
// @Router       /accounts [get]
func (h *Handler) ListAccounts(c *gin.Context) {
	items, err := h.service.List(c.Request.Context())
	if err != nil {
		httpserver.RespondError(c, err, "failed to get accounts")
		return
	}
	c.JSON(http.StatusOK, listAccountsResponse{Items: items})
}

// DeleteAccount godoc
// @Summary      Delete another account
// @Tags         accounts
// @Produce      json
// @Param        id   path  int  true  "Account ID"
// @Success      204
// @Failure      400  {object}  httpserver.ErrorResponse
// @Failure      401  {object}  httpserver.ErrorResponse
// @Failure      403  {object}  httpserver.ErrorResponse
// @Failure      404  {object}  httpserver.ErrorResponse
// @Failure      500  {object}  httpserver.ErrorResponse
// @Router       /accounts/{id} [delete]
func (h *Handler) DeleteAccount(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, httpserver.ErrorResponse{Error: "invalid account id"})
		return
	}
	actor, ok := CurrentAccount(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, httpserver.ErrorResponse{Error: "login required"})
		return
	}

	err = h.service.Delete(c.Request.Context(), actor.ID, id)
	switch {
	case errors.Is(err, accounts.ErrSelfDeletion):
		c.JSON(http.StatusForbidden, httpserver.ErrorResponse{Error: err.Error()})
	case errors.Is(err, accounts.ErrNotFound):
		c.JSON(http.StatusNotFound, httpserver.ErrorResponse{Error: accounts.ErrNotFound.Error()})
	case err != nil:
		httpserver.RespondError(c, err, "failed to delete account")
	default:
		c.Status(http.StatusNoContent)
	}
}
