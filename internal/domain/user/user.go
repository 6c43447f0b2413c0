package user

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrIDRequired      = errors.New("user: id is required")
	ErrNameRequired    = errors.New("user: name is required")
	ErrNotFound        = errors.New("user: not found")
	ErrWalletRequired  = errors.New("user: wallet id is required")
	ErrNegativeIncome  = errors.New("user: income credit must not be negative")
	ErrVersionConflict = errors.New("user: concurrent update detected")
)

type ID string

type User struct {
	ID        ID
	Name      string
	Avatar    string
	Contact   string
	TokenHash string
	WalletID  string
	Income    int64
	Bookings  []string
	Listings  []string
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
	// Authorized is true when the viewer is this user. Computed per request.
	Authorized bool
}

type Repository interface {
	ByID(ctx context.Context, id ID) (*User, error)
	Save(ctx context.Context, user *User) error
}

type CreateParams struct {
	ID        ID
	Name      string
	Avatar    string
	Contact   string
	TokenHash string
	WalletID  string
	CreatedAt time.Time
}

func NewUser(params CreateParams) (*User, error) {
	id := strings.TrimSpace(string(params.ID))
	if id == "" {
		return nil, ErrIDRequired
	}
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	now := params.CreatedAt
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()
	return &User{
		ID:        ID(id),
		Name:      name,
		Avatar:    strings.TrimSpace(params.Avatar),
		Contact:   strings.TrimSpace(params.Contact),
		TokenHash: params.TokenHash,
		WalletID:  strings.TrimSpace(params.WalletID),
		Bookings:  []string{},
		Listings:  []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (u *User) HasWallet() bool {
	return strings.TrimSpace(u.WalletID) != ""
}

func (u *User) ConnectWallet(walletID string, now time.Time) error {
	walletID = strings.TrimSpace(walletID)
	if walletID == "" {
		return ErrWalletRequired
	}
	u.WalletID = walletID
	u.touch(now)
	return nil
}

func (u *User) DisconnectWallet(now time.Time) {
	u.WalletID = ""
	u.touch(now)
}

func (u *User) CreditIncome(amount int64, now time.Time) error {
	if amount < 0 {
		return ErrNegativeIncome
	}
	u.Income += amount
	u.touch(now)
	return nil
}

func (u *User) AddBooking(bookingID string, now time.Time) {
	u.Bookings = append(u.Bookings, bookingID)
	u.touch(now)
}

func (u *User) AddListing(listingID string, now time.Time) {
	u.Listings = append(u.Listings, listingID)
	u.touch(now)
}

func (u *User) touch(now time.Time) {
	if now.IsZero() {
		now = time.Now()
	}
	u.UpdatedAt = now.UTC()
}
