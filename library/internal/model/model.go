package model

import (
	"encoding/json"
	"time"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleLibrarian Role = "librarian"
)

// LoanPeriod is the time a borrower may hold a book before it is due.
const LoanPeriod = 14 * 24 * time.Hour

// Loan describes an open loan. A book is available exactly when it has no loan.
type Loan struct {
	BorrowedBy string    `json:"borrowedBy"`
	BorrowDate time.Time `json:"borrowDate"`
	DueDate    time.Time `json:"dueDate"`
}

// HistoryEntry is one record in a book's borrow history. ReturnDate is nil
// while the loan is open; at most one entry per book may be open at a time.
type HistoryEntry struct {
	User       string     `json:"user"`
	BorrowDate time.Time  `json:"borrowDate"`
	ReturnDate *time.Time `json:"returnDate,omitempty"`
}

func (e HistoryEntry) Open() bool {
	return e.ReturnDate == nil
}

type Book struct {
	ID            int
	Title         string
	Author        string
	Genre         string
	BookImage     string
	Loan          *Loan
	BorrowHistory []HistoryEntry
}

func (b *Book) IsAvailable() bool {
	return b.Loan == nil
}

// OpenHistoryEntry returns the open entry for user, or nil.
func (b *Book) OpenHistoryEntry(user string) *HistoryEntry {
	for i := range b.BorrowHistory {
		if b.BorrowHistory[i].User == user && b.BorrowHistory[i].Open() {
			return &b.BorrowHistory[i]
		}
	}
	return nil
}

// bookDoc is the persisted/seed shape of a Book. The loan is flattened into
// isAvailable/borrowedBy/borrowDate/dueDate so stored documents and seed files
// keep the historical schema.
type bookDoc struct {
	ID            int            `json:"id"`
	Title         string         `json:"title"`
	Author        string         `json:"author"`
	Genre         string         `json:"genre"`
	BookImage     string         `json:"bookImage,omitempty"`
	IsAvailable   bool           `json:"isAvailable"`
	BorrowedBy    string         `json:"borrowedBy,omitempty"`
	BorrowDate    *time.Time     `json:"borrowDate,omitempty"`
	DueDate       *time.Time     `json:"dueDate,omitempty"`
	BorrowHistory []HistoryEntry `json:"borrowHistory"`
}

func (b Book) MarshalJSON() ([]byte, error) {
	doc := bookDoc{
		ID:            b.ID,
		Title:         b.Title,
		Author:        b.Author,
		Genre:         b.Genre,
		BookImage:     b.BookImage,
		IsAvailable:   b.Loan == nil,
		BorrowHistory: b.BorrowHistory,
	}
	if doc.BorrowHistory == nil {
		doc.BorrowHistory = []HistoryEntry{}
	}
	if b.Loan != nil {
		doc.BorrowedBy = b.Loan.BorrowedBy
		borrowDate, dueDate := b.Loan.BorrowDate, b.Loan.DueDate
		doc.BorrowDate = &borrowDate
		doc.DueDate = &dueDate
	}
	return json.Marshal(doc)
}

func (b *Book) UnmarshalJSON(data []byte) error {
	var doc bookDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	*b = Book{
		ID:            doc.ID,
		Title:         doc.Title,
		Author:        doc.Author,
		Genre:         doc.Genre,
		BookImage:     doc.BookImage,
		BorrowHistory: doc.BorrowHistory,
	}
	if !doc.IsAvailable && doc.BorrowedBy != "" && doc.BorrowDate != nil && doc.DueDate != nil {
		b.Loan = &Loan{
			BorrowedBy: doc.BorrowedBy,
			BorrowDate: *doc.BorrowDate,
			DueDate:    *doc.DueDate,
		}
	}
	return nil
}

type User struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     Role   `json:"role"`
}

// Session is the single active session, persisted under the currentUser key.
type Session struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// UserHistoryEntry is one row of the aggregated per-user borrowing history.
// ReturnDate marshals as an explicit null while the loan is open.
type UserHistoryEntry struct {
	BookTitle  string     `json:"bookTitle"`
	BorrowDate time.Time  `json:"borrowDate"`
	ReturnDate *time.Time `json:"returnDate"`
}

// AllHistories maps username to that user's borrowing history, in aggregation
// order (books in catalog order, entries in insertion order).
type AllHistories map[string][]UserHistoryEntry

type MostBorrowed struct {
	Title       string `json:"title"`
	BorrowCount int    `json:"borrowCount"`
}

type Stats struct {
	TotalBooks     int           `json:"totalBooks"`
	AvailableBooks int           `json:"availableBooks"`
	BorrowedBooks  int           `json:"borrowedBooks"`
	MostBorrowed   *MostBorrowed `json:"mostBorrowedBook"`
}

// SeedData is the document served by the seed endpoint.
type SeedData struct {
	Books []Book `json:"books"`
	Users []User `json:"users"`
}

type EventType string

const (
	EventAdd    EventType = "ADD"
	EventBorrow EventType = "BORROW"
	EventReturn EventType = "RETURN"
	EventDelete EventType = "DELETE"
)

// LendingEvent is published to the lending-events topic after each mutation.
type LendingEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Username  string    `json:"username"`
	BookID    int       `json:"bookId"`
	BookTitle string    `json:"bookTitle"`
	EventType EventType `json:"eventType"`
}

type AddBookRequest struct {
	Title     string `json:"title" validate:"required"`
	Author    string `json:"author" validate:"required"`
	Genre     string `json:"genre" validate:"required"`
	BookImage string `json:"bookImage"`
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3"`
	Password string `json:"password" validate:"required,min=3"`
	Role     Role   `json:"role" validate:"required,oneof=user librarian"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
	Role     Role   `json:"role" validate:"required,oneof=user librarian"`
}
