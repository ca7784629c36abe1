package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"

	_ "github.com/Opnex/Ai-Developer-Library/docs"
	"github.com/Opnex/Ai-Developer-Library/library/internal/errs"
	"github.com/Opnex/Ai-Developer-Library/library/internal/model"
	"github.com/Opnex/Ai-Developer-Library/library/pkg/auth"
	"github.com/Opnex/Ai-Developer-Library/pkg/validate"
)

type Handler struct {
	librarySvc LibraryService
	seeder     SeedFetcher
	log        *zap.Logger
}

func New(librarySvc LibraryService, seeder SeedFetcher, log *zap.Logger) *Handler {
	h := &Handler{
		librarySvc: librarySvc,
		seeder:     seeder,
		log:        log,
	}
	return h
}

func (h *Handler) NewRouter() *echo.Echo {
	e := echo.New()
	const (
		baseRPS = 10
		apiRPS  = 100
	)
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 4 << 10, // 4 KB
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{http.MethodGet, http.MethodOptions, http.MethodHead, http.MethodPut, http.MethodPatch, http.MethodPost, http.MethodDelete},
		AllowCredentials: true,
	}))

	base := e.Group("", newRateLimiterMW(baseRPS))
	base.GET("/manage/health", h.Health)
	base.GET("/swagger/*", echoSwagger.WrapHandler)

	e.Validator = validate.NewCustomValidator()
	api := e.Group("/api/v1",
		middleware.RequestLoggerWithConfig(requestLoggerConfig()),
		middleware.RequestID(),
		newRateLimiterMW(apiRPS),
	)

	api.POST("/register", h.Register)
	api.POST("/login", h.Login)
	api.GET("/books/search", h.PublicSearch)

	session := api.Group("", h.sessionMW)
	session.POST("/logout", h.Logout)
	session.GET("/books", h.GetBooks)
	session.POST("/books", h.AddBook)
	session.DELETE("/books/:id", h.DeleteBook)
	session.POST("/books/:id/borrow", h.BorrowBook)
	session.POST("/books/:id/return", h.ReturnBook)
	session.GET("/history", h.GetHistory)
	session.GET("/histories", h.GetAllHistories)
	session.GET("/stats", h.GetStats)

	return e
}

func (h *Handler) Health(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

// Register godoc
// @Summary Register a new account
// @Accept json
// @Param request body model.RegisterRequest true "credentials"
// @Success 201 {string} string
// @Router /register [post]
func (h *Handler) Register(c echo.Context) error {
	var req model.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	req.Username = strings.TrimSpace(req.Username)
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.librarySvc.Register(c.Request().Context(), req); err != nil {
		return httpError(err)
	}
	return c.String(http.StatusCreated, "ok")
}

// Login godoc
// @Summary Log in and open the session
// @Accept json
// @Produce json
// @Param request body model.LoginRequest true "credentials"
// @Success 200 {object} model.Session
// @Router /login [post]
func (h *Handler) Login(c echo.Context) error {
	var req model.LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	req.Username = strings.TrimSpace(req.Username)
	if err := c.Validate(&req); err != nil {
		return err
	}

	session, err := h.librarySvc.Login(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, session)
}

func (h *Handler) Logout(c echo.Context) error {
	if err := h.librarySvc.Logout(c.Request().Context()); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusOK)
}

// GetBooks godoc
// @Summary List the catalog, available books first
// @Produce json
// @Param q query string false "search term"
// @Success 200 {array} model.Book
// @Router /books [get]
func (h *Handler) GetBooks(c echo.Context) error {
	if term := c.QueryParam("q"); term != "" {
		return c.JSON(http.StatusOK, h.librarySvc.SearchBooks(term))
	}
	return c.JSON(http.StatusOK, h.librarySvc.ListBooks())
}

// PublicSearch reloads the seed catalog first, like the public landing page
// always did. A failed reload degrades to the stored catalog.
func (h *Handler) PublicSearch(c echo.Context) error {
	ctx := c.Request().Context()

	if data, err := h.seeder.Fetch(ctx); err != nil {
		h.log.Warn("public search: seed refresh skipped", zap.Error(err))
	} else if err := h.librarySvc.ApplySeed(ctx, data); err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, h.librarySvc.SearchBooks(c.QueryParam("q")))
}

// AddBook godoc
// @Summary Add a book to the catalog (librarian)
// @Accept json
// @Produce json
// @Param request body model.AddBookRequest true "book"
// @Success 201 {object} model.Book
// @Router /books [post]
func (h *Handler) AddBook(c echo.Context) error {
	ctx := c.Request().Context()
	if !auth.IsLibrarian(ctx) {
		return echo.NewHTTPError(http.StatusForbidden, errs.ErrLibrarianOnly.Error())
	}

	var req model.AddBookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Author = strings.TrimSpace(req.Author)
	req.Genre = strings.TrimSpace(req.Genre)
	req.BookImage = strings.TrimSpace(req.BookImage)
	if err := c.Validate(&req); err != nil {
		return err
	}

	book, err := h.librarySvc.AddBook(ctx, req, auth.Username(ctx))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, book)
}

// DeleteBook godoc
// @Summary Delete an available book (librarian)
// @Param id path int true "book id"
// @Success 204
// @Router /books/{id} [delete]
func (h *Handler) DeleteBook(c echo.Context) error {
	ctx := c.Request().Context()
	bookID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "id is invalid")
	}

	if err := h.librarySvc.DeleteBook(ctx, bookID, auth.Username(ctx), auth.Role(ctx)); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// BorrowBook godoc
// @Summary Borrow a book for the session user
// @Produce json
// @Param id path int true "book id"
// @Success 200 {object} model.Book
// @Router /books/{id}/borrow [post]
func (h *Handler) BorrowBook(c echo.Context) error {
	ctx := c.Request().Context()
	if auth.Role(ctx) != model.RoleUser {
		return echo.NewHTTPError(http.StatusForbidden, "only patrons borrow books")
	}
	bookID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "id is invalid")
	}

	book, err := h.librarySvc.BorrowBook(ctx, bookID, auth.Username(ctx))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, book)
}

// ReturnBook godoc
// @Summary Return a borrowed book
// @Produce json
// @Param id path int true "book id"
// @Success 200 {object} model.Book
// @Router /books/{id}/return [post]
func (h *Handler) ReturnBook(c echo.Context) error {
	ctx := c.Request().Context()
	if auth.Role(ctx) != model.RoleUser {
		return echo.NewHTTPError(http.StatusForbidden, "only patrons return books")
	}
	bookID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "id is invalid")
	}

	book, err := h.librarySvc.ReturnBook(ctx, bookID, auth.Username(ctx))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, book)
}

// GetHistory returns the session user's own borrowing history, most recent
// borrow first.
func (h *Handler) GetHistory(c echo.Context) error {
	username := auth.Username(c.Request().Context())
	return c.JSON(http.StatusOK, h.librarySvc.UserHistory(username))
}

// GetAllHistories returns every user's history in aggregation order, the
// librarian view.
func (h *Handler) GetAllHistories(c echo.Context) error {
	ctx := c.Request().Context()
	if !auth.IsLibrarian(ctx) {
		return echo.NewHTTPError(http.StatusForbidden, errs.ErrLibrarianOnly.Error())
	}

	histories, err := h.librarySvc.AllHistories(ctx)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, histories)
}

// GetStats godoc
// @Summary Library statistics (librarian)
// @Produce json
// @Success 200 {object} model.Stats
// @Router /stats [get]
func (h *Handler) GetStats(c echo.Context) error {
	if !auth.IsLibrarian(c.Request().Context()) {
		return echo.NewHTTPError(http.StatusForbidden, errs.ErrLibrarianOnly.Error())
	}
	return c.JSON(http.StatusOK, h.librarySvc.Statistics())
}

func httpError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, errs.ErrBookNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, errs.ErrNotAvailable),
		errors.Is(err, errs.ErrNotBorrowed),
		errors.Is(err, errs.ErrNotBorrower),
		errors.Is(err, errs.ErrBookBorrowed),
		errors.Is(err, errs.ErrUserExists):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, errs.ErrLibrarianOnly),
		errors.Is(err, errs.ErrRoleMismatch):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, errs.ErrCredentials),
		errors.Is(err, errs.ErrNoSession):
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
