package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Opnex/Ai-Developer-Library/library/internal/errs"
	"github.com/Opnex/Ai-Developer-Library/library/internal/model"
	"github.com/Opnex/Ai-Developer-Library/library/internal/repository"
	"github.com/Opnex/Ai-Developer-Library/library/internal/storage"
)

var testTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, books []model.Book, users []model.User) (*Service, repository.Repository) {
	t.Helper()
	ctx := context.Background()
	log := zap.NewNop()

	repo, err := repository.NewRepository(storage.NewMemoryStore(), log)
	require.NoError(t, err)
	if books != nil {
		require.NoError(t, repo.SaveBooks(ctx, books))
	}
	if users != nil {
		require.NoError(t, repo.SaveUsers(ctx, users))
	}

	svc, err := NewService(ctx, repo, nil, log)
	require.NoError(t, err)
	svc.now = func() time.Time { return testTime }
	return svc, repo
}

func catalog() []model.Book {
	return []model.Book{
		{ID: 1, Title: "A", Author: "Author A", Genre: "Fantasy", BorrowHistory: []model.HistoryEntry{}},
		{ID: 2, Title: "B", Author: "Author B", Genre: "Horror", BorrowHistory: []model.HistoryEntry{}},
	}
}

// requireLoanInvariant checks that loan fields and the open history entry
// agree: a borrowed book has exactly one open entry, for its borrower; an
// available book has none.
func requireLoanInvariant(t *testing.T, book model.Book) {
	t.Helper()
	open := 0
	for _, e := range book.BorrowHistory {
		if e.Open() {
			open++
			require.NotNil(t, book.Loan)
			require.Equal(t, book.Loan.BorrowedBy, e.User)
		}
	}
	if book.Loan == nil {
		require.Zero(t, open)
	} else {
		require.Equal(t, 1, open)
	}
}

func TestBorrowReturn_RoundTrip(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(t, catalog(), nil)

	borrowed, err := svc.BorrowBook(ctx, 1, "alice")
	require.NoError(t, err)
	require.False(t, borrowed.IsAvailable())
	require.Equal(t, "alice", borrowed.Loan.BorrowedBy)
	require.Equal(t, testTime, borrowed.Loan.BorrowDate)
	require.Equal(t, testTime.Add(model.LoanPeriod), borrowed.Loan.DueDate)
	require.Len(t, borrowed.BorrowHistory, 1)
	require.True(t, borrowed.BorrowHistory[0].Open())
	requireLoanInvariant(t, borrowed)

	// mutation is persisted, not only in memory
	stored, err := repo.LoadBooks(ctx)
	require.NoError(t, err)
	require.False(t, stored[0].IsAvailable())

	svc.now = func() time.Time { return testTime.Add(time.Hour) }
	returned, err := svc.ReturnBook(ctx, 1, "alice")
	require.NoError(t, err)
	require.True(t, returned.IsAvailable())
	require.Nil(t, returned.Loan)
	require.Len(t, returned.BorrowHistory, 1)
	require.False(t, returned.BorrowHistory[0].Open())
	require.True(t, !returned.BorrowHistory[0].ReturnDate.Before(returned.BorrowHistory[0].BorrowDate))
	requireLoanInvariant(t, returned)
}

func TestBorrowBook_Failures(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, catalog(), nil)

	_, err := svc.BorrowBook(ctx, 42, "alice")
	require.ErrorIs(t, err, errs.ErrBookNotFound)

	_, err = svc.BorrowBook(ctx, 1, "alice")
	require.NoError(t, err)

	_, err = svc.BorrowBook(ctx, 1, "bob")
	require.ErrorIs(t, err, errs.ErrNotAvailable)

	// failed borrow leaves the loan untouched
	books := svc.ListBooks()
	for _, b := range books {
		if b.ID == 1 {
			require.Equal(t, "alice", b.Loan.BorrowedBy)
			require.Len(t, b.BorrowHistory, 1)
		}
	}
}

func TestReturnBook_Failures(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, catalog(), nil)

	_, err := svc.ReturnBook(ctx, 42, "alice")
	require.ErrorIs(t, err, errs.ErrBookNotFound)

	_, err = svc.ReturnBook(ctx, 1, "alice")
	require.ErrorIs(t, err, errs.ErrNotBorrowed)

	_, err = svc.BorrowBook(ctx, 1, "alice")
	require.NoError(t, err)
	_, err = svc.ReturnBook(ctx, 1, "bob")
	require.ErrorIs(t, err, errs.ErrNotBorrower)
}

func TestAddBook_AssignsIncreasingIDs(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, nil, nil)

	first, err := svc.AddBook(ctx, model.AddBookRequest{Title: "One", Author: "X", Genre: "Y"}, "admin")
	require.NoError(t, err)
	require.Equal(t, 1, first.ID)
	require.True(t, first.IsAvailable())
	require.Empty(t, first.BorrowHistory)
	require.Equal(t, defaultBookImage, first.BookImage)

	second, err := svc.AddBook(ctx, model.AddBookRequest{Title: "Two", Author: "X", Genre: "Y"}, "admin")
	require.NoError(t, err)
	require.Equal(t, 2, second.ID)

	require.NoError(t, svc.DeleteBook(ctx, 1, "admin", model.RoleLibrarian))
	third, err := svc.AddBook(ctx, model.AddBookRequest{Title: "Three", Author: "X", Genre: "Y"}, "admin")
	require.NoError(t, err)
	require.Equal(t, 3, third.ID, "max existing id is still 2")

	// emptying the catalog resets the sequence
	require.NoError(t, svc.DeleteBook(ctx, 2, "admin", model.RoleLibrarian))
	require.NoError(t, svc.DeleteBook(ctx, 3, "admin", model.RoleLibrarian))
	fresh, err := svc.AddBook(ctx, model.AddBookRequest{Title: "Fresh", Author: "X", Genre: "Y"}, "admin")
	require.NoError(t, err)
	require.Equal(t, 1, fresh.ID)
}

func TestDeleteBook(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, catalog(), nil)

	require.ErrorIs(t, svc.DeleteBook(ctx, 1, "bob", model.RoleUser), errs.ErrLibrarianOnly)
	require.ErrorIs(t, svc.DeleteBook(ctx, 42, "admin", model.RoleLibrarian), errs.ErrBookNotFound)

	_, err := svc.BorrowBook(ctx, 1, "alice")
	require.NoError(t, err)
	require.ErrorIs(t, svc.DeleteBook(ctx, 1, "admin", model.RoleLibrarian), errs.ErrBookBorrowed)
	require.Len(t, svc.ListBooks(), 2, "rejected delete leaves the catalog unchanged")

	require.NoError(t, svc.DeleteBook(ctx, 2, "admin", model.RoleLibrarian))
	books := svc.ListBooks()
	require.Len(t, books, 1)
	require.Equal(t, 1, books[0].ID)
}

func TestApplySeed(t *testing.T) {
	ctx := context.Background()
	existingUsers := []model.User{
		{Username: "alice", Password: "secret", Role: model.RoleUser},
	}
	svc, repo := newTestService(t, catalog(), existingUsers)

	_, err := svc.BorrowBook(ctx, 1, "alice")
	require.NoError(t, err)

	seedData := model.SeedData{
		Books: []model.Book{
			{ID: 1, Title: "A", Author: "Author A", Genre: "Fantasy"},
			{ID: 3, Title: "C", Author: "Author C", Genre: "Sci-Fi"},
		},
		Users: []model.User{
			{Username: "alice", Password: "from-seed", Role: model.RoleLibrarian},
			{Username: "carol", Password: "pw", Role: model.RoleUser},
		},
	}
	require.NoError(t, svc.ApplySeed(ctx, seedData))

	// the seed is authoritative for the catalog: alice's open loan is gone
	books, err := repo.LoadBooks(ctx)
	require.NoError(t, err)
	require.Len(t, books, 2)
	require.True(t, books[0].IsAvailable())

	users, err := repo.LoadUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	require.Equal(t, "secret", users[0].Password, "seed never overwrites an existing user")
	require.Equal(t, model.RoleUser, users[0].Role)
	require.Equal(t, "carol", users[1].Username)
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(t, nil, []model.User{
		{Username: "bob", Password: "pw", Role: model.RoleUser},
	})

	err := svc.Register(ctx, model.RegisterRequest{Username: "Bob", Password: "other", Role: model.RoleUser})
	require.ErrorIs(t, err, errs.ErrUserExists, "uniqueness check is case-insensitive")

	require.NoError(t, svc.Register(ctx, model.RegisterRequest{Username: "carol", Password: "pw2", Role: model.RoleLibrarian}))
	users, err := repo.LoadUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	require.Equal(t, "pw", users[0].Password)
}

func TestLoginLogout(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, nil, []model.User{
		{Username: "alice", Password: "secret", Role: model.RoleUser},
	})

	_, err := svc.Login(ctx, model.LoginRequest{Username: "alice", Password: "wrong", Role: model.RoleUser})
	require.ErrorIs(t, err, errs.ErrCredentials)

	_, err = svc.Login(ctx, model.LoginRequest{Username: "alice", Password: "secret", Role: model.RoleLibrarian})
	require.ErrorIs(t, err, errs.ErrRoleMismatch)

	session, err := svc.Login(ctx, model.LoginRequest{Username: "alice", Password: "secret", Role: model.RoleUser})
	require.NoError(t, err)
	require.NotEmpty(t, session.Token)
	require.Equal(t, "alice", session.Username)

	got, err := svc.Session(ctx, session.Token)
	require.NoError(t, err)
	require.Equal(t, session, got)

	_, err = svc.Session(ctx, "bogus")
	require.ErrorIs(t, err, errs.ErrNoSession)

	require.NoError(t, svc.Logout(ctx))
	_, err = svc.Session(ctx, session.Token)
	require.ErrorIs(t, err, errs.ErrNoSession)
}

func TestListBooks_Order(t *testing.T) {
	ctx := context.Background()
	books := []model.Book{
		{ID: 1, Title: "b"},
		{ID: 2, Title: "B"},
		{ID: 3, Title: "a"},
	}
	svc, _ := newTestService(t, books, nil)

	_, err := svc.BorrowBook(ctx, 3, "alice")
	require.NoError(t, err)

	listed := svc.ListBooks()
	// available first, then case-sensitive lexicographic title
	require.Equal(t, []int{2, 1, 3}, []int{listed[0].ID, listed[1].ID, listed[2].ID})
}

func TestSearchBooks(t *testing.T) {
	books := []model.Book{
		{ID: 1, Title: "The Hobbit", Author: "Tolkien", Genre: "Fantasy"},
		{ID: 2, Title: "Dune", Author: "Herbert", Genre: "Sci-Fi"},
		{ID: 3, Title: "Hyperion", Author: "Simmons", Genre: "Sci-Fi"},
	}
	svc, _ := newTestService(t, books, nil)

	require.Len(t, svc.SearchBooks(""), 3, "empty term matches everything")
	require.Len(t, svc.SearchBooks("  "), 3)

	byTitle := svc.SearchBooks("hobbit")
	require.Len(t, byTitle, 1)
	require.Equal(t, 1, byTitle[0].ID)

	byAuthor := svc.SearchBooks("TOLK")
	require.Len(t, byAuthor, 1)

	byGenre := svc.SearchBooks("sci-fi")
	require.Len(t, byGenre, 2)

	require.Empty(t, svc.SearchBooks("nothing matches this"))
}

func TestStatistics(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, catalog(), nil)

	stats := svc.Statistics()
	require.Equal(t, model.Stats{TotalBooks: 2, AvailableBooks: 2}, stats)
	require.Nil(t, stats.MostBorrowed, "no borrow history yet")

	_, err := svc.BorrowBook(ctx, 2, "alice")
	require.NoError(t, err)

	stats = svc.Statistics()
	require.Equal(t, 2, stats.TotalBooks)
	require.Equal(t, 1, stats.AvailableBooks)
	require.Equal(t, 1, stats.BorrowedBooks)
	require.Equal(t, &model.MostBorrowed{Title: "B", BorrowCount: 1}, stats.MostBorrowed)

	// tie between A and B resolves to the first book in catalog order
	_, err = svc.ReturnBook(ctx, 2, "alice")
	require.NoError(t, err)
	_, err = svc.BorrowBook(ctx, 1, "alice")
	require.NoError(t, err)
	stats = svc.Statistics()
	require.Equal(t, "A", stats.MostBorrowed.Title)
}

func TestUserHistoryAndAggregate(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, catalog(), nil)

	_, err := svc.BorrowBook(ctx, 1, "alice")
	require.NoError(t, err)
	svc.now = func() time.Time { return testTime.Add(time.Hour) }
	_, err = svc.ReturnBook(ctx, 1, "alice")
	require.NoError(t, err)
	svc.now = func() time.Time { return testTime.Add(2 * time.Hour) }
	_, err = svc.BorrowBook(ctx, 2, "alice")
	require.NoError(t, err)

	own := svc.UserHistory("alice")
	require.Len(t, own, 2)
	require.Equal(t, "B", own[0].BookTitle, "most recent borrow first")
	require.Nil(t, own[0].ReturnDate)
	require.Equal(t, "A", own[1].BookTitle)
	require.NotNil(t, own[1].ReturnDate)

	all, err := svc.AllHistories(ctx)
	require.NoError(t, err)
	require.Len(t, all["alice"], 2)
	require.Equal(t, "A", all["alice"][0].BookTitle, "aggregation keeps catalog order")
}
