package handlers

import (
	"net/http"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hoanghai1803/booker/internal/models"
)

func TestShelfEndpoints(t *testing.T) {
	svc := newTestService(t, nil)
	book := seedBook(t, AddBook(svc), "Shelved", 100)
	bookID := strconv.FormatInt(book.ID, 10)

	var shelf models.Bookshelf
	w := serve(t, CreateShelf(svc), newRequest(t, http.MethodPost, "/api/me/shelves", map[string]string{"name": "Sci-Fi"}), &shelf)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	shelfID := strconv.FormatInt(shelf.ID, 10)

	w = serve(t, CreateShelf(svc), newRequest(t, http.MethodPost, "/api/me/shelves", map[string]string{"name": "Sci-Fi"}), nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = serve(t, AddToShelf(svc), newRequest(t, http.MethodPut, "/", nil, "id", shelfID, "bookId", bookID), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	var shelves []models.Bookshelf
	w = serve(t, ListShelves(svc), newRequest(t, http.MethodGet, "/api/me/shelves", nil), &shelves)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, shelves, 1)
	assert.Equal(t, 1, shelves[0].BookCount)

	var books []models.Book
	w = serve(t, ShelfBooks(svc), newRequest(t, http.MethodGet, "/", nil, "id", shelfID), &books)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, books, 1)

	w = serve(t, RemoveFromShelf(svc), newRequest(t, http.MethodDelete, "/", nil, "id", shelfID, "bookId", bookID), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = serve(t, DeleteShelf(svc), newRequest(t, http.MethodDelete, "/", nil, "id", shelfID), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = serve(t, DeleteShelf(svc), newRequest(t, http.MethodDelete, "/", nil, "id", shelfID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
