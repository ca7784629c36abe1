package model_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Opnex/Ai-Developer-Library/library/internal/model"
)

func TestBookJSON_Available(t *testing.T) {
	book := model.Book{ID: 1, Title: "Dune", Author: "Herbert", Genre: "Sci-Fi"}

	data, err := json.Marshal(book)
	require.NoError(t, err)
	require.JSONEq(t, `{
		"id": 1,
		"title": "Dune",
		"author": "Herbert",
		"genre": "Sci-Fi",
		"isAvailable": true,
		"borrowHistory": []
	}`, string(data))

	var back model.Book
	require.NoError(t, json.Unmarshal(data, &back))
	require.True(t, back.IsAvailable())
	require.Nil(t, back.Loan)
	require.NotNil(t, back.BorrowHistory)
}

func TestBookJSON_Borrowed(t *testing.T) {
	borrowed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	due := borrowed.Add(model.LoanPeriod)
	book := model.Book{
		ID:     2,
		Title:  "Dune",
		Author: "Herbert",
		Genre:  "Sci-Fi",
		Loan:   &model.Loan{BorrowedBy: "alice", BorrowDate: borrowed, DueDate: due},
		BorrowHistory: []model.HistoryEntry{
			{User: "alice", BorrowDate: borrowed},
		},
	}

	data, err := json.Marshal(book)
	require.NoError(t, err)

	// the loan is flattened into the stored document's legacy fields
	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	require.Equal(t, false, doc["isAvailable"])
	require.Equal(t, "alice", doc["borrowedBy"])
	require.Contains(t, doc, "borrowDate")
	require.Contains(t, doc, "dueDate")

	var back model.Book
	require.NoError(t, json.Unmarshal(data, &back))
	require.NotNil(t, back.Loan)
	require.Equal(t, "alice", back.Loan.BorrowedBy)
	require.True(t, back.Loan.BorrowDate.Equal(borrowed))
	require.True(t, back.Loan.DueDate.Equal(due))
	require.Len(t, back.BorrowHistory, 1)
	require.True(t, back.BorrowHistory[0].Open())
}

func TestBookJSON_LegacySeedDocument(t *testing.T) {
	// seed files carry the flat schema with no loan fields on available books
	raw := `{"id": 7, "title": "The Hobbit", "author": "Tolkien", "genre": "Fantasy", "isAvailable": true}`

	var book model.Book
	require.NoError(t, json.Unmarshal([]byte(raw), &book))
	require.Equal(t, 7, book.ID)
	require.True(t, book.IsAvailable())
	require.Nil(t, book.BorrowHistory)
}

func TestUserHistoryEntry_OpenLoanMarshalsNullReturn(t *testing.T) {
	entry := model.UserHistoryEntry{
		BookTitle:  "Dune",
		BorrowDate: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	data, err := json.Marshal(entry)
	require.NoError(t, err)
	require.Contains(t, string(data), `"returnDate":null`)
}
