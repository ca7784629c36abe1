package history_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Opnex/Ai-Developer-Library/library/internal/history"
	"github.com/Opnex/Ai-Developer-Library/library/internal/model"
)

func entry(user string, borrowed time.Time, returned *time.Time) model.HistoryEntry {
	return model.HistoryEntry{User: user, BorrowDate: borrowed, ReturnDate: returned}
}

func TestAggregate(t *testing.T) {
	t0 := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	t1 := t0.Add(time.Hour)
	ret := t0.Add(30 * time.Minute)

	books := []model.Book{
		{ID: 1, Title: "Zebra", BorrowHistory: []model.HistoryEntry{
			entry("alice", t1, nil),
		}},
		{ID: 2, Title: "Aardvark", BorrowHistory: []model.HistoryEntry{
			entry("alice", t0, &ret),
			entry("bob", t1, nil),
		}},
	}

	all := history.Aggregate(books)
	require.Len(t, all, 2)
	require.Len(t, all["alice"], 2)
	require.Len(t, all["bob"], 1)

	// catalog order, not chronological: Zebra's later borrow comes first
	// because Zebra comes first in the catalog
	require.Equal(t, "Zebra", all["alice"][0].BookTitle)
	require.Nil(t, all["alice"][0].ReturnDate)
	require.Equal(t, "Aardvark", all["alice"][1].BookTitle)
	require.Equal(t, &ret, all["alice"][1].ReturnDate)
}

func TestAggregate_Empty(t *testing.T) {
	all := history.Aggregate(nil)
	require.NotNil(t, all)
	require.Empty(t, all)
}

func TestForUser(t *testing.T) {
	t0 := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	t1 := t0.Add(time.Hour)
	t2 := t0.Add(2 * time.Hour)

	books := []model.Book{
		{ID: 1, Title: "First", BorrowHistory: []model.HistoryEntry{
			entry("alice", t0, nil),
			entry("alice", t2, nil),
		}},
		{ID: 2, Title: "Second", BorrowHistory: []model.HistoryEntry{
			entry("alice", t1, nil),
			entry("bob", t2, nil),
		}},
	}

	own := history.ForUser(books, "alice")
	require.Len(t, own, 3)
	require.Equal(t, t2, own[0].BorrowDate)
	require.Equal(t, t1, own[1].BorrowDate)
	require.Equal(t, t0, own[2].BorrowDate)

	require.Empty(t, history.ForUser(books, "carol"))
}
