package handler

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/arsouza/fintrack/internal/auth"
	"github.com/arsouza/fintrack/internal/config"
	"github.com/arsouza/fintrack/internal/middleware"
	"github.com/arsouza/fintrack/internal/repository"
	"github.com/arsouza/fintrack/internal/utils"
)

const selectUserByUsernameQ = "SELECT id,username,password_hash,role,created_at FROM users WHERE username=? LIMIT 1"

func newAuthHandlerWithMock(t *testing.T) (*AuthHandler, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	tokens, err := auth.NewTokenService(bytes.Repeat([]byte("k"), auth.MinKeyBytes), 0)
	if err != nil {
		t.Fatalf("NewTokenService error: %v", err)
	}
	cfg := config.Config{BcryptCost: bcrypt.MinCost}
	return NewAuthHandler(cfg, repository.NewUserRepo(db), tokens), mock, db
}

func postJSON(t *testing.T, h echo.HandlerFunc, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	if err := h(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	return rec
}

func userRow(t *testing.T, id uint64, username, password, role string) *sqlmock.Rows {
	t.Helper()
	hash, err := utils.HashPassword(password, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	return sqlmock.NewRows([]string{"id", "username", "password_hash", "role", "created_at"}).
		AddRow(id, username, hash, role, time.Now().UTC())
}

func TestRegister_Success(t *testing.T) {
	h, mock, db := newAuthHandlerWithMock(t)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users (username, password_hash, role) VALUES (?,?,?)")).
		WithArgs("alice", sqlmock.AnyArg(), "USER").
		WillReturnResult(sqlmock.NewResult(1, 1))

	rec := postJSON(t, h.Register, "/auth/user/create", `{"username":"alice","password":"p1"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"username":"alice"`) {
		t.Fatalf("response missing username: %s", rec.Body.String())
	}
}

func TestRegister_DuplicateUsername(t *testing.T) {
	h, mock, db := newAuthHandlerWithMock(t)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users (username, password_hash, role) VALUES (?,?,?)")).
		WithArgs("alice", sqlmock.AnyArg(), "USER").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'alice'"})

	rec := postJSON(t, h.Register, "/auth/user/create", `{"username":"alice","password":"p2"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRegister_MissingFields(t *testing.T) {
	h, _, db := newAuthHandlerWithMock(t)
	defer db.Close()

	rec := postJSON(t, h.Register, "/auth/user/create", `{"username":"","password":""}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestRegister_BadRole(t *testing.T) {
	h, _, db := newAuthHandlerWithMock(t)
	defer db.Close()

	rec := postJSON(t, h.Register, "/auth/user/create", `{"username":"alice","password":"p1","role":"ROOT"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestLogin_Success(t *testing.T) {
	h, mock, db := newAuthHandlerWithMock(t)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(selectUserByUsernameQ)).
		WithArgs("alice").
		WillReturnRows(userRow(t, 1, "alice", "p1", "USER"))

	rec := postJSON(t, h.Login, "/auth/login", `{"username":"alice","password":"p1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Message string `json:"message"`
		Token   string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Token == "" {
		t.Fatalf("no token in response: %s", rec.Body.String())
	}
	// the token must carry the username as its subject
	sub, err := h.Tokens.ExtractSubject(resp.Token)
	if err != nil || sub != "alice" {
		t.Fatalf("bad token subject: %q err=%v", sub, err)
	}
	if !h.Tokens.Validate(resp.Token, "alice") {
		t.Fatalf("issued token does not validate")
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	h, mock, db := newAuthHandlerWithMock(t)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(selectUserByUsernameQ)).
		WithArgs("alice").
		WillReturnRows(userRow(t, 1, "alice", "p1", "USER"))

	rec := postJSON(t, h.Login, "/auth/login", `{"username":"alice","password":"nope"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "token") {
		t.Fatalf("failed login leaked a token: %s", rec.Body.String())
	}
}

func TestLogin_UnknownUser(t *testing.T) {
	h, mock, db := newAuthHandlerWithMock(t)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(selectUserByUsernameQ)).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	rec := postJSON(t, h.Login, "/auth/login", `{"username":"ghost","password":"p1"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestDeleteUser_NotFound(t *testing.T) {
	h, mock, db := newAuthHandlerWithMock(t)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM users WHERE id=?")).
		WithArgs(uint64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	e := echo.New()
	req := httptest.NewRequest(http.MethodDelete, "/auth/user/99", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("99")

	if err := h.DeleteUser(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestMe(t *testing.T) {
	h, mock, db := newAuthHandlerWithMock(t)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(selectUserByUsernameQ)).
		WithArgs("alice").
		WillReturnRows(userRow(t, 1, "alice", "p1", "ADMIN"))

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(middleware.SubjectKey, "alice")

	if err := h.Me(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"role":"ADMIN"`) {
		t.Fatalf("role missing from response: %s", rec.Body.String())
	}
}
