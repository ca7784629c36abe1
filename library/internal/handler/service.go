package handler

import (
	"context"

	"github.com/Opnex/Ai-Developer-Library/library/internal/model"
)

//go:generate mockgen -source=service.go -destination=mocks/mock.go -package=service_mocks

type LibraryService interface {
	ApplySeed(ctx context.Context, data model.SeedData) error
	AddBook(ctx context.Context, req model.AddBookRequest, username string) (model.Book, error)
	BorrowBook(ctx context.Context, bookID int, username string) (model.Book, error)
	ReturnBook(ctx context.Context, bookID int, username string) (model.Book, error)
	DeleteBook(ctx context.Context, bookID int, username string, role model.Role) error
	ListBooks() []model.Book
	SearchBooks(term string) []model.Book
	Statistics() model.Stats
	AllHistories(ctx context.Context) (model.AllHistories, error)
	UserHistory(username string) []model.UserHistoryEntry
	Register(ctx context.Context, req model.RegisterRequest) error
	Login(ctx context.Context, req model.LoginRequest) (model.Session, error)
	Logout(ctx context.Context) error
	Session(ctx context.Context, token string) (model.Session, error)
}

type SeedFetcher interface {
	Fetch(ctx context.Context) (model.SeedData, error)
}
