// Package contact reads and writes the singleton contact document.
package contact

import (
	"context"
	"errors"
	"fmt"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/docstore"
)

const Collection = "contact"

var ErrNotFound = errors.New("no contact document found")

// NotFoundMessage is shown to the admin when there is nothing to update.
const NotFoundMessage = "No contact document found."

type Info struct {
	Instagram string `json:"instagram" doc:"instagram"`
	Facebook  string `json:"facebook" doc:"facebook"`
	WhatsApp  string `json:"whatsapp" doc:"whatsapp"`
	Mail      string `json:"mail" doc:"mail"`
	Phone     string `json:"phone" doc:"phone"`
}

func (i Info) fields() docstore.Fields {
	return docstore.Fields{
		"instagram": i.Instagram,
		"facebook":  i.Facebook,
		"whatsapp":  i.WhatsApp,
		"mail":      i.Mail,
		"phone":     i.Phone,
	}
}

// Service treats the first document of the collection as the contact record.
type Service struct {
	store docstore.Store
}

func NewService(store docstore.Store) *Service {
	return &Service{store: store}
}

// Get returns the zero Info when no document exists.
func (s *Service) Get(ctx context.Context) (Info, error) {
	doc, found, err := s.first(ctx)
	if err != nil || !found {
		return Info{}, err
	}
	var info Info
	if err := doc.DataTo(&info); err != nil {
		return Info{}, fmt.Errorf("decode contact: %w", err)
	}
	return info, nil
}

// Update overwrites the existing record. It never creates one.
func (s *Service) Update(ctx context.Context, info Info) error {
	doc, found, err := s.first(ctx)
	if err != nil {
		return err
	}
	if !found {
		return ErrNotFound
	}
	if err := s.store.Update(ctx, Collection, doc.ID, info.fields()); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("update contact: %w", err)
	}
	return nil
}

// Ensure creates the record when none exists.
func (s *Service) Ensure(ctx context.Context, info Info) (created bool, err error) {
	_, found, err := s.first(ctx)
	if err != nil || found {
		return false, err
	}
	if _, err := s.store.Create(ctx, Collection, info.fields()); err != nil {
		return false, fmt.Errorf("create contact: %w", err)
	}
	return true, nil
}

func (s *Service) first(ctx context.Context) (docstore.Document, bool, error) {
	docs, err := s.store.List(ctx, Collection)
	if err != nil {
		return docstore.Document{}, false, fmt.Errorf("load contact: %w", err)
	}
	if len(docs) == 0 {
		return docstore.Document{}, false, nil
	}
	return docs[0], true, nil
}
