package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/arsouza/fintrack/internal/middleware"
	"github.com/arsouza/fintrack/internal/model"
	"github.com/arsouza/fintrack/internal/queue"
	"github.com/arsouza/fintrack/internal/repository"
	queue_publisher "github.com/arsouza/fintrack/internal/service"
)

// dateLayout is the wire format for transaction dates.
const dateLayout = "2006-01-02"

// TransactionHandler serves the per-user transaction CRUD. Every
// endpoint resolves the authenticated subject to a user row first, so a
// token whose account was deleted is rejected rather than half-served.
type TransactionHandler struct {
	Users *repository.UserRepo
	Txns  *repository.TransactionRepo
}

func NewTransactionHandler(u *repository.UserRepo, t *repository.TransactionRepo) *TransactionHandler {
	return &TransactionHandler{Users: u, Txns: t}
}

// ----- DTOs -----

type txnReq struct {
	Description string `json:"description"`
	AmountCents int64  `json:"amount_cents"`
	Type        string `json:"type"`        // INCOME | EXPENSE
	OccurredOn  string `json:"occurred_on"` // YYYY-MM-DD
}

type txnResp struct {
	ID          uint64 `json:"id"`
	Description string `json:"description"`
	AmountCents int64  `json:"amount_cents"`
	Type        string `json:"type"`
	OccurredOn  string `json:"occurred_on"`
	CreatedAt   string `json:"created_at"`
}

func toTxnResp(t model.Transaction) txnResp {
	return txnResp{
		ID:          t.ID,
		Description: t.Description,
		AmountCents: t.AmountCents,
		Type:        t.Type,
		OccurredOn:  t.OccurredOn.Format(dateLayout),
		CreatedAt:   t.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// currentUser resolves the token subject stored by BearerAuth into the
// user row that owns the request.
func (h *TransactionHandler) currentUser(c echo.Context, ctx context.Context) (model.User, error) {
	username, err := middleware.Subject(c)
	if err != nil {
		return model.User{}, err
	}
	return h.Users.GetByUsername(ctx, username)
}

// GetAll handles GET /api/transactions.
func (h *TransactionHandler) GetAll(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.currentUser(c, ctx)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	txns, err := h.Txns.ListByUser(ctx, u.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	out := make([]txnResp, 0, len(txns))
	for _, t := range txns {
		out = append(out, toTxnResp(t))
	}
	return c.JSON(http.StatusOK, out)
}

// GetByDateRange handles GET /api/transactions/range?start=YYYY-MM-DD&end=YYYY-MM-DD.
func (h *TransactionHandler) GetByDateRange(c echo.Context) error {
	start, err := time.Parse(dateLayout, c.QueryParam("start"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "start must be YYYY-MM-DD"})
	}
	end, err := time.Parse(dateLayout, c.QueryParam("end"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "end must be YYYY-MM-DD"})
	}
	if end.Before(start) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "end before start"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.currentUser(c, ctx)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	txns, err := h.Txns.ListByUserAndDateRange(ctx, u.ID, start, end)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	out := make([]txnResp, 0, len(txns))
	for _, t := range txns {
		out = append(out, toTxnResp(t))
	}
	return c.JSON(http.StatusOK, out)
}

// Create handles POST /api/transactions. The owner is always the
// authenticated caller regardless of the request body.
func (h *TransactionHandler) Create(c echo.Context) error {
	var req txnReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Description = strings.TrimSpace(req.Description)
	if req.Description == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "description required"})
	}
	if req.AmountCents <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "amount_cents must be positive"})
	}
	kind := strings.ToUpper(strings.TrimSpace(req.Type))
	if kind != model.TxnIncome && kind != model.TxnExpense {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "type must be INCOME or EXPENSE"})
	}
	occurred, err := time.Parse(dateLayout, req.OccurredOn)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "occurred_on must be YYYY-MM-DD"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.currentUser(c, ctx)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	txn := model.Transaction{
		UserID:      u.ID,
		Description: req.Description,
		AmountCents: req.AmountCents,
		Type:        kind,
		OccurredOn:  occurred,
	}
	id, err := h.Txns.Create(ctx, txn)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}
	txn.ID = id
	txn.CreatedAt = time.Now().UTC()

	_ = queue_publisher.PublishTransactionRecorded(ctx, queue.TransactionRecordedEvent{
		TransactionID: id,
		UserID:        u.ID,
		Username:      u.Username,
		Description:   txn.Description,
		AmountCents:   txn.AmountCents,
		Type:          txn.Type,
		OccurredOn:    txn.OccurredOn.Format(dateLayout),
		RecordedAt:    time.Now().UTC().Format(time.RFC3339),
	})

	return c.JSON(http.StatusCreated, toTxnResp(txn))
}

// Delete handles DELETE /api/transactions/:id. Rows owned by another
// user are indistinguishable from missing ones.
func (h *TransactionHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.currentUser(c, ctx)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	if err := h.Txns.DeleteByID(ctx, id, u.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "transaction not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
