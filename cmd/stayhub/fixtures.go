package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"stayhub/internal/app/uow"
	domainlistings "stayhub/internal/domain/listings"
	domainuser "stayhub/internal/domain/user"
)

type fixtures struct {
	Users    []userFixture    `json:"users"`
	Listings []listingFixture `json:"listings"`
}

type userFixture struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Avatar   string `json:"avatar"`
	Contact  string `json:"contact"`
	Token    string `json:"token"`
	WalletID string `json:"wallet_id"`
}

type listingFixture struct {
	ID          string `json:"id"`
	Host        string `json:"host"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Image       string `json:"image"`
	Type        string `json:"type"`
	Address     string `json:"address"`
	Price       int64  `json:"price"`
	NumOfGuests int    `json:"num_of_guests"`
}

// loadFixtures seeds users and listings. Records that already exist are skipped.
func (a *application) loadFixtures(ctx context.Context, path string, logger *slog.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Info("fixtures file not found, skipping", "path", path)
			return nil
		}
		return fmt.Errorf("read fixtures: %w", err)
	}
	if len(data) == 0 {
		logger.Warn("fixtures file empty", "path", path)
		return nil
	}
	var fx fixtures
	if err := json.Unmarshal(data, &fx); err != nil {
		return fmt.Errorf("decode fixtures: %w", err)
	}

	now := time.Now().UTC()
	for _, uf := range fx.Users {
		if err := a.seedUser(ctx, uf, now, logger); err != nil {
			logger.Error("user fixture skipped", "user_id", uf.ID, "error", err)
		}
	}
	for _, lf := range fx.Listings {
		if err := a.seedListing(ctx, lf, now); err != nil {
			logger.Error("listing fixture skipped", "listing_id", lf.ID, "error", err)
			continue
		}
		logger.Info("listing fixture imported", "listing_id", lf.ID)
	}
	return nil
}

func (a *application) seedUser(ctx context.Context, uf userFixture, now time.Time, logger *slog.Logger) error {
	token := uf.Token
	if token == "" {
		generated, err := a.tokens.NewToken()
		if err != nil {
			return err
		}
		token = generated
		logger.Info("generated viewer token for fixture user", "user_id", uf.ID, "token", token)
	}
	hash, err := a.hasher.Hash(token)
	if err != nil {
		return err
	}
	user, err := domainuser.NewUser(domainuser.CreateParams{
		ID:        domainuser.ID(uf.ID),
		Name:      uf.Name,
		Avatar:    uf.Avatar,
		Contact:   uf.Contact,
		TokenHash: hash,
		WalletID:  uf.WalletID,
		CreatedAt: now,
	})
	if err != nil {
		return err
	}
	return a.inUnit(ctx, func(ctx context.Context, unit uow.UnitOfWork) error {
		if _, err := unit.Users().ByID(ctx, user.ID); err == nil {
			return nil
		} else if !errors.Is(err, domainuser.ErrNotFound) {
			return err
		}
		return unit.Users().Save(ctx, user)
	})
}

func (a *application) seedListing(ctx context.Context, lf listingFixture, now time.Time) error {
	loc, err := a.geocoder.Geocode(ctx, lf.Address)
	if err != nil {
		return err
	}
	listing, err := domainlistings.NewListing(domainlistings.CreateListingParams{
		ID:          domainlistings.ListingID(lf.ID),
		Host:        domainlistings.HostID(lf.Host),
		Title:       lf.Title,
		Description: lf.Description,
		Image:       lf.Image,
		Type:        domainlistings.Type(lf.Type),
		Address:     lf.Address,
		Location:    loc,
		Price:       lf.Price,
		NumOfGuests: lf.NumOfGuests,
		Now:         now,
	})
	if err != nil {
		return err
	}
	listing.DrainEvents()
	return a.inUnit(ctx, func(ctx context.Context, unit uow.UnitOfWork) error {
		if _, err := unit.Listings().ByID(ctx, listing.ID); err == nil {
			return nil
		} else if !errors.Is(err, domainlistings.ErrNotFound) {
			return err
		}
		host, err := unit.Users().ByID(ctx, domainuser.ID(lf.Host))
		if err != nil {
			return err
		}
		if err := unit.Listings().Save(ctx, listing); err != nil {
			return err
		}
		host.AddListing(lf.ID, now)
		return unit.Users().Save(ctx, host)
	})
}

func (a *application) inUnit(ctx context.Context, fn func(context.Context, uow.UnitOfWork) error) error {
	unit, execCtx, err := uow.Begin(ctx, a.factory, uow.TxOptions{})
	if err != nil {
		return err
	}
	if err := fn(execCtx, unit); err != nil {
		_ = unit.Rollback(execCtx)
		return err
	}
	return unit.Commit(execCtx)
}

func defaultFixturesPath() string {
	candidates := []string{
		filepath.Join("data", "fixtures.json"),
		filepath.Join("..", "..", "data", "fixtures.json"),
	}
	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return candidates[0]
}
