package service

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/songbird/internal/db"
	"gorm.io/gorm"
)

var (
	ErrEmailRequired = errors.New("email address is required")
	ErrEmailInvalid  = errors.New("email address is invalid")
)

// SubscriberService manages the append-only email list.
type SubscriberService struct {
	db       *gorm.DB
	validate *validator.Validate
}

// NewSubscriberService creates a SubscriberService instance.
func NewSubscriberService(gdb *gorm.DB) *SubscriberService {
	return &SubscriberService{db: gdb, validate: validator.New()}
}

// Subscribe stores a lowercased email. existing is true when the address was
// already on the list, including when a concurrent insert won the race.
func (s *SubscriberService) Subscribe(email, name string) (subscriber *db.Subscriber, existing bool, err error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, false, ErrEmailRequired
	}
	if err := s.validate.Var(email, "email"); err != nil {
		return nil, false, ErrEmailInvalid
	}

	var found []db.Subscriber
	if err := s.db.Where("email = ?", email).Limit(1).Find(&found).Error; err != nil {
		return nil, false, err
	}
	if len(found) > 0 {
		return &found[0], true, nil
	}

	record := db.Subscriber{Email: email, Name: optionalString(name)}
	if err := s.db.Create(&record).Error; err != nil {
		if db.IsDuplicateKey(err) {
			return nil, true, nil
		}
		return nil, false, err
	}
	return &record, false, nil
}

// List returns subscribers, newest first.
func (s *SubscriberService) List() ([]db.Subscriber, error) {
	var subscribers []db.Subscriber
	if err := s.db.Order("created_at desc").Order("id desc").Find(&subscribers).Error; err != nil {
		return nil, err
	}
	return subscribers, nil
}

// Emails returns every subscribed address.
func (s *SubscriberService) Emails() ([]string, error) {
	var emails []string
	if err := s.db.Model(&db.Subscriber{}).Order("id asc").Pluck("email", &emails).Error; err != nil {
		return nil, err
	}
	return emails, nil
}
