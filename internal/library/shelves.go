package library

import (
	"context"
	"strings"

	"github.com/hoanghai1803/booker/internal/models"
)

// ShelfInput describes a new bookshelf.
type ShelfInput struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=1000"`
	IsPublic    bool   `json:"is_public"`
}

// CreateShelf adds a bookshelf for the caller. Names are unique per user.
func (s *Service) CreateShelf(ctx context.Context, who Identity, in ShelfInput) (*models.Bookshelf, error) {
	if err := checkIdentity(who); err != nil {
		return nil, err
	}
	in.Name = strings.TrimSpace(in.Name)
	if err := s.validate.check(in); err != nil {
		return nil, err
	}

	shelf := &models.Bookshelf{
		UserID:      who.UserID,
		Name:        in.Name,
		Description: in.Description,
		IsPublic:    in.IsPublic,
	}
	id, err := s.store.CreateShelf(ctx, shelf)
	if err != nil {
		return nil, translate(err, "create bookshelf", "")
	}

	shelves, err := s.ListShelves(ctx, who)
	if err != nil {
		return nil, err
	}
	for i := range shelves {
		if shelves[i].ID == id {
			return &shelves[i], nil
		}
	}
	shelf.ID = id
	return shelf, nil
}

// ListShelves returns the caller's bookshelves with their book counts.
func (s *Service) ListShelves(ctx context.Context, who Identity) ([]models.Bookshelf, error) {
	if err := checkIdentity(who); err != nil {
		return nil, err
	}
	shelves, err := s.store.ListShelves(ctx, who.UserID)
	if err != nil {
		return nil, translate(err, "list bookshelves", "")
	}
	return shelves, nil
}

// DeleteShelf removes one of the caller's bookshelves. The books stay in the
// catalog and in the caller's library.
func (s *Service) DeleteShelf(ctx context.Context, who Identity, shelfID int64) error {
	if err := checkIdentity(who); err != nil {
		return err
	}
	if err := s.store.DeleteShelf(ctx, shelfID, who.UserID); err != nil {
		return translate(err, "delete bookshelf", "bookshelf not found")
	}
	return nil
}

// AddToShelf puts a book on one of the caller's shelves.
func (s *Service) AddToShelf(ctx context.Context, who Identity, shelfID, bookID int64) error {
	if err := checkIdentity(who); err != nil {
		return err
	}
	if err := s.store.AddBookToShelf(ctx, shelfID, who.UserID, bookID); err != nil {
		return translate(err, "add book to shelf", "bookshelf or book not found")
	}
	return nil
}

// RemoveFromShelf takes a book off one of the caller's shelves.
func (s *Service) RemoveFromShelf(ctx context.Context, who Identity, shelfID, bookID int64) error {
	if err := checkIdentity(who); err != nil {
		return err
	}
	if err := s.store.RemoveBookFromShelf(ctx, shelfID, who.UserID, bookID); err != nil {
		return translate(err, "remove book from shelf", "book is not on this shelf")
	}
	return nil
}

// ShelfBooks lists the books on one of the caller's shelves.
func (s *Service) ShelfBooks(ctx context.Context, who Identity, shelfID int64) ([]models.Book, error) {
	if err := checkIdentity(who); err != nil {
		return nil, err
	}
	books, err := s.store.ShelfBooks(ctx, shelfID, who.UserID)
	if err != nil {
		return nil, translate(err, "list shelf books", "bookshelf not found")
	}
	return books, nil
}
