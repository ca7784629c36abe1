// Package service holds the lending state engine: the in-memory books and
// users collections, hydrated from the repository at startup and flushed
// back after every mutation.
package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Opnex/Ai-Developer-Library/library/internal/errs"
	"github.com/Opnex/Ai-Developer-Library/library/internal/history"
	"github.com/Opnex/Ai-Developer-Library/library/internal/model"
	"github.com/Opnex/Ai-Developer-Library/library/internal/repository"
	"github.com/Opnex/Ai-Developer-Library/library/internal/storage"
)

const defaultBookImage = "/images/default-book.jpg"

type Service struct {
	// mu serializes every read-modify-write against the store. The store
	// itself has no transactions; correctness rests on the single-writer
	// model, so the seed merge and all lending operations exclude each other.
	mu     sync.Mutex
	log    *zap.Logger
	repo   repository.Repository
	events Publisher
	now    func() time.Time

	books []model.Book
	users []model.User
}

// NewService hydrates the engine from the repository. A missing aggregated
// history is rebuilt and persisted once.
func NewService(ctx context.Context, repo repository.Repository, events Publisher, log *zap.Logger) (*Service, error) {
	s := &Service{
		log:    log,
		repo:   repo,
		events: events,
		now:    time.Now,
	}

	var err error
	if s.books, err = repo.LoadBooks(ctx); err != nil {
		return nil, errors.Wrap(err, "hydrate books")
	}
	if s.users, err = repo.LoadUsers(ctx); err != nil {
		return nil, errors.Wrap(err, "hydrate users")
	}
	if _, err = repo.LoadHistories(ctx); err != nil {
		if !errors.Is(err, storage.ErrNoKey) {
			return nil, errors.Wrap(err, "hydrate histories")
		}
		if err = repo.SaveHistories(ctx, history.Aggregate(s.books)); err != nil {
			return nil, errors.Wrap(err, "init histories")
		}
	}
	return s, nil
}

// ApplySeed reconciles a fetched seed dataset into the store. Seed books
// replace the whole catalog, including any lending state accumulated since
// the previous load (long-standing upstream policy, kept as is; see
// DESIGN.md). Seed users are only added, never overwrite existing ones, and
// the username match here is exact.
func (s *Service) ApplySeed(ctx context.Context, data model.SeedData) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	books := data.Books
	if books == nil {
		books = []model.Book{}
	}
	if err := s.repo.SaveBooks(ctx, books); err != nil {
		return errors.Wrap(err, "seed books")
	}
	s.books = books

	users := s.users
	for _, seedUser := range data.Users {
		exists := false
		for i := range users {
			if users[i].Username == seedUser.Username {
				exists = true
				break
			}
		}
		if !exists {
			users = append(users, seedUser)
		}
	}
	if err := s.repo.SaveUsers(ctx, users); err != nil {
		return errors.Wrap(err, "seed users")
	}
	s.users = users

	if _, err := s.repo.LoadHistories(ctx); err != nil {
		if !errors.Is(err, storage.ErrNoKey) {
			return errors.Wrap(err, "seed histories")
		}
		if err := s.repo.SaveHistories(ctx, history.Aggregate(s.books)); err != nil {
			return errors.Wrap(err, "seed histories")
		}
	}
	return nil
}

// AddBook appends a new available book. IDs are assigned as max existing
// id + 1, starting over from 1 when the catalog is empty.
func (s *Service) AddBook(ctx context.Context, req model.AddBookRequest, username string) (model.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	maxID := 0
	for i := range s.books {
		if s.books[i].ID > maxID {
			maxID = s.books[i].ID
		}
	}
	book := model.Book{
		ID:            maxID + 1,
		Title:         req.Title,
		Author:        req.Author,
		Genre:         req.Genre,
		BookImage:     req.BookImage,
		BorrowHistory: []model.HistoryEntry{},
	}
	if book.BookImage == "" {
		book.BookImage = defaultBookImage
	}

	books := append(s.copyBooks(), book)
	if err := s.repo.SaveBooks(ctx, books); err != nil {
		return model.Book{}, err
	}
	s.books = books

	s.publish(model.LendingEvent{
		Timestamp: s.now(),
		Username:  username,
		BookID:    book.ID,
		BookTitle: book.Title,
		EventType: model.EventAdd,
	})
	s.log.Info("book added", zap.Int("id", book.ID), zap.String("title", book.Title))
	return book, nil
}

// BorrowBook opens a loan for username. The due date is two weeks out and a
// new open history entry is appended; no state changes on any failure.
func (s *Service) BorrowBook(ctx context.Context, bookID int, username string) (model.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	books := s.copyBooks()
	idx := findBook(books, bookID)
	if idx < 0 {
		return model.Book{}, errs.ErrBookNotFound
	}
	book := &books[idx]
	if !book.IsAvailable() {
		return model.Book{}, errs.ErrNotAvailable
	}

	now := s.now()
	book.Loan = &model.Loan{
		BorrowedBy: username,
		BorrowDate: now,
		DueDate:    now.Add(model.LoanPeriod),
	}
	book.BorrowHistory = append(book.BorrowHistory, model.HistoryEntry{
		User:       username,
		BorrowDate: now,
	})

	if err := s.commit(ctx, books); err != nil {
		return model.Book{}, err
	}

	s.publish(model.LendingEvent{
		Timestamp: now,
		Username:  username,
		BookID:    book.ID,
		BookTitle: book.Title,
		EventType: model.EventBorrow,
	})
	s.log.Info("book borrowed", zap.Int("id", book.ID), zap.String("user", username))
	return books[idx], nil
}

// ReturnBook closes username's loan: the open history entry gets its return
// date and the loan fields are cleared.
func (s *Service) ReturnBook(ctx context.Context, bookID int, username string) (model.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	books := s.copyBooks()
	idx := findBook(books, bookID)
	if idx < 0 {
		return model.Book{}, errs.ErrBookNotFound
	}
	book := &books[idx]
	if book.IsAvailable() {
		return model.Book{}, errs.ErrNotBorrowed
	}
	if book.Loan.BorrowedBy != username {
		return model.Book{}, errs.ErrNotBorrower
	}

	now := s.now()
	if entry := book.OpenHistoryEntry(username); entry != nil {
		returnDate := now
		entry.ReturnDate = &returnDate
	}
	book.Loan = nil

	if err := s.commit(ctx, books); err != nil {
		return model.Book{}, err
	}

	s.publish(model.LendingEvent{
		Timestamp: now,
		Username:  username,
		BookID:    book.ID,
		BookTitle: book.Title,
		EventType: model.EventReturn,
	})
	s.log.Info("book returned", zap.Int("id", book.ID), zap.String("user", username))
	return books[idx], nil
}

// DeleteBook removes an available book from the catalog. Borrowed books
// cannot be deleted.
func (s *Service) DeleteBook(ctx context.Context, bookID int, username string, role model.Role) error {
	if role != model.RoleLibrarian {
		return errs.ErrLibrarianOnly
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := findBook(s.books, bookID)
	if idx < 0 {
		return errs.ErrBookNotFound
	}
	if !s.books[idx].IsAvailable() {
		return errs.ErrBookBorrowed
	}
	title := s.books[idx].Title

	books := make([]model.Book, 0, len(s.books)-1)
	for i := range s.books {
		if s.books[i].ID != bookID {
			books = append(books, s.books[i])
		}
	}

	if err := s.commit(ctx, books); err != nil {
		return err
	}

	s.publish(model.LendingEvent{
		Timestamp: s.now(),
		Username:  username,
		BookID:    bookID,
		BookTitle: title,
		EventType: model.EventDelete,
	})
	s.log.Info("book deleted", zap.Int("id", bookID), zap.String("title", title))
	return nil
}

// ListBooks returns the catalog sorted for display: available books first,
// then case-sensitive lexicographic title order.
func (s *Service) ListBooks() []model.Book {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortForListing(s.copyBooks())
}

// SearchBooks filters by case-insensitive substring match over title,
// author and genre. An empty term matches everything.
func (s *Service) SearchBooks(term string) []model.Book {
	s.mu.Lock()
	defer s.mu.Unlock()

	term = strings.ToLower(strings.TrimSpace(term))
	matched := make([]model.Book, 0)
	for i := range s.books {
		if term == "" || matchesSearch(&s.books[i], term) {
			matched = append(matched, cloneBook(s.books[i]))
		}
	}
	return sortForListing(matched)
}

// Statistics computes the librarian dashboard snapshot. The most-borrowed
// tie-break is first-encountered in catalog order, which makes the result
// deterministic for a given stored order.
func (s *Service) Statistics() model.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := model.Stats{TotalBooks: len(s.books)}
	for i := range s.books {
		if s.books[i].IsAvailable() {
			stats.AvailableBooks++
		}
	}
	stats.BorrowedBooks = stats.TotalBooks - stats.AvailableBooks

	maxBorrows := 0
	for i := range s.books {
		if n := len(s.books[i].BorrowHistory); n > maxBorrows {
			maxBorrows = n
			stats.MostBorrowed = &model.MostBorrowed{
				Title:       s.books[i].Title,
				BorrowCount: n,
			}
		}
	}
	return stats
}

// AllHistories returns the persisted aggregate in aggregation order, the
// librarian's view.
func (s *Service) AllHistories(ctx context.Context) (model.AllHistories, error) {
	histories, err := s.repo.LoadHistories(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrNoKey) {
			return model.AllHistories{}, nil
		}
		return nil, err
	}
	return histories, nil
}

// UserHistory returns username's own history, most recent borrow first.
func (s *Service) UserHistory(username string) []model.UserHistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return history.ForUser(s.books, username)
}

// Register adds a user. Uniqueness is case-insensitive even though login
// matches exactly, so "Bob" cannot shadow an existing "bob".
func (s *Service) Register(ctx context.Context, req model.RegisterRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.users {
		if strings.EqualFold(s.users[i].Username, req.Username) {
			return errs.ErrUserExists
		}
	}

	users := append(append([]model.User{}, s.users...), model.User{
		Username: req.Username,
		Password: req.Password,
		Role:     req.Role,
	})
	if err := s.repo.SaveUsers(ctx, users); err != nil {
		return err
	}
	s.users = users
	s.log.Info("user registered", zap.String("username", req.Username), zap.String("role", string(req.Role)))
	return nil
}

// Login matches username and password exactly (passwords are stored in
// plain text, a deliberate property of this system) and then verifies the
// requested role, which gets its own error so the UI can explain the
// mismatch.
func (s *Service) Login(ctx context.Context, req model.LoginRequest) (model.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var user *model.User
	for i := range s.users {
		if s.users[i].Username == req.Username && s.users[i].Password == req.Password {
			user = &s.users[i]
			break
		}
	}
	if user == nil {
		return model.Session{}, errs.ErrCredentials
	}
	if user.Role != req.Role {
		return model.Session{}, errs.ErrRoleMismatch
	}

	session := model.Session{
		Token:    uuid.NewString(),
		Username: user.Username,
		Role:     user.Role,
	}
	if err := s.repo.SaveSession(ctx, session); err != nil {
		return model.Session{}, err
	}
	return session, nil
}

func (s *Service) Logout(ctx context.Context) error {
	return s.repo.ClearSession(ctx)
}

// Session resolves a presented token against the single stored session.
func (s *Service) Session(ctx context.Context, token string) (model.Session, error) {
	session, err := s.repo.LoadSession(ctx)
	if err != nil {
		return model.Session{}, err
	}
	if token == "" || session.Token != token {
		return model.Session{}, errs.ErrNoSession
	}
	return session, nil
}

// commit persists the catalog and the rebuilt aggregate, then swaps the
// in-memory state. The in-memory collections never hold a half-applied
// mutation: on save failure the working copy is discarded.
func (s *Service) commit(ctx context.Context, books []model.Book) error {
	if err := s.repo.SaveBooks(ctx, books); err != nil {
		return err
	}
	if err := s.repo.SaveHistories(ctx, history.Aggregate(books)); err != nil {
		return err
	}
	s.books = books
	return nil
}

func (s *Service) copyBooks() []model.Book {
	books := make([]model.Book, len(s.books))
	for i := range s.books {
		books[i] = cloneBook(s.books[i])
	}
	return books
}

func cloneBook(b model.Book) model.Book {
	out := b
	if b.Loan != nil {
		loan := *b.Loan
		out.Loan = &loan
	}
	if b.BorrowHistory != nil {
		out.BorrowHistory = make([]model.HistoryEntry, len(b.BorrowHistory))
		copy(out.BorrowHistory, b.BorrowHistory)
	}
	return out
}

func findBook(books []model.Book, id int) int {
	for i := range books {
		if books[i].ID == id {
			return i
		}
	}
	return -1
}

func matchesSearch(b *model.Book, term string) bool {
	return strings.Contains(strings.ToLower(b.Title), term) ||
		strings.Contains(strings.ToLower(b.Author), term) ||
		strings.Contains(strings.ToLower(b.Genre), term)
}

func sortForListing(books []model.Book) []model.Book {
	sort.SliceStable(books, func(i, j int) bool {
		if books[i].IsAvailable() != books[j].IsAvailable() {
			return books[i].IsAvailable()
		}
		return books[i].Title < books[j].Title
	})
	return books
}
