// Package history derives the per-user borrowing history from the books'
// embedded history logs. The aggregate is a projection: it is rebuilt in
// full after every mutating lending operation, never maintained
// incrementally, so it cannot drift from the catalog.
package history

import (
	"sort"

	"github.com/Opnex/Ai-Developer-Library/library/internal/model"
)

// Aggregate groups every history entry of every book by username.
// Order is books in catalog order, then entries in insertion order; no
// chronological sorting happens here. Display-time sorting is the caller's
// concern and only the user's own view gets it.
func Aggregate(books []model.Book) model.AllHistories {
	histories := make(model.AllHistories)
	for i := range books {
		book := &books[i]
		for _, entry := range book.BorrowHistory {
			histories[entry.User] = append(histories[entry.User], model.UserHistoryEntry{
				BookTitle:  book.Title,
				BorrowDate: entry.BorrowDate,
				ReturnDate: entry.ReturnDate,
			})
		}
	}
	return histories
}

// ForUser collects username's entries across all books, most recent
// borrow first.
func ForUser(books []model.Book, username string) []model.UserHistoryEntry {
	entries := make([]model.UserHistoryEntry, 0)
	for i := range books {
		book := &books[i]
		for _, entry := range book.BorrowHistory {
			if entry.User != username {
				continue
			}
			entries = append(entries, model.UserHistoryEntry{
				BookTitle:  book.Title,
				BorrowDate: entry.BorrowDate,
				ReturnDate: entry.ReturnDate,
			})
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].BorrowDate.After(entries[j].BorrowDate)
	})
	return entries
}
