package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"shelfsync/internal/client/models"
	"shelfsync/internal/common"
)

const inputDateLayout = "2006-01-02"

// List prints the live inventory, soonest expiry first.
func (a *App) List(ctx context.Context) error {
	list, err := a.store.ListEntries(ctx)
	if err != nil {
		log.Printf("Error: %s", err.Error())
		return err
	}
	if len(list) == 0 {
		fmt.Println("No entries.")
		return nil
	}

	for _, e := range list {
		name := "?"
		if e.Article != nil {
			name = e.Article.Name
		}
		marker := " "
		if !e.InSync {
			marker = "*"
		}
		fmt.Printf("%s%s  %3d x %-30s expires %s\n",
			marker, e.LocalID[:8], e.Amount, name, e.ExpirationDate.Format(inputDateLayout))
	}
	return nil
}

// Add prompts for a new product entry and stores it locally. The record is
// queued for the next sync run; no network is touched here.
func (a *App) Add(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Product name", os.Stdout)
	if err != nil {
		return err
	}
	barcode, err := getSimpleText(a.reader, "Barcode (optional)", os.Stdout)
	if err != nil {
		return err
	}
	amountStr, err := getSimpleText(a.reader, "Amount", os.Stdout)
	if err != nil {
		return err
	}
	amount, err := strconv.Atoi(amountStr)
	if err != nil || amount <= 0 {
		log.Printf("Amount must be a positive number")
		return errors.New("invalid amount")
	}
	dateStr, err := getSimpleText(a.reader, "Expiration date (YYYY-MM-DD)", os.Stdout)
	if err != nil {
		return err
	}
	expiration, err := time.ParseInLocation(inputDateLayout, dateStr, time.UTC)
	if err != nil {
		log.Printf("Bad date %q, expected YYYY-MM-DD", dateStr)
		return err
	}

	loc, err := a.store.EnsureDefaultLocation(ctx, "Default")
	if err != nil {
		log.Printf("Error: %s", err.Error())
		return err
	}

	e := &models.ProductEntry{
		LocationID:     loc.LocalID,
		Amount:         amount,
		ExpirationDate: expiration,
		Article:        &models.Article{Name: name, Barcode: barcode},
	}
	if err := a.store.AddEntry(ctx, e); err != nil {
		log.Printf("Error: %s", err.Error())
		return err
	}

	fmt.Printf("Added %s (%s)\n", name, e.LocalID[:8])
	return nil
}

// Delete tombstones an entry by id prefix. The record disappears from the
// list immediately and the deletion is pushed on the next sync run.
func (a *App) Delete(ctx context.Context) error {
	prefix, err := getSimpleText(a.reader, "Enter entry id to delete", os.Stdout)
	if err != nil {
		return err
	}

	e, err := a.findByPrefix(ctx, prefix)
	if err != nil {
		log.Printf("Error: %s", err.Error())
		return err
	}
	if err := a.store.SoftDeleteEntry(ctx, e.LocalID); err != nil {
		log.Printf("Error: %s", err.Error())
		return err
	}

	fmt.Println("Deleted.")
	return nil
}

// Sync runs one full reconciliation against the server.
func (a *App) Sync(ctx context.Context) error {
	err := a.sync.Sync(ctx, a.session.Account())
	switch {
	case err == nil:
		fmt.Println("Sync complete.")
		return nil
	case errors.Is(err, common.ErrNotLoggedIn):
		log.Printf("Log in to synchronize")
	case errors.Is(err, common.ErrSyncInProgress):
		log.Printf("A sync run is already active")
	default:
		log.Printf("Sync failed: %s", err.Error())
	}
	return err
}

func (a *App) findByPrefix(ctx context.Context, prefix string) (*models.ProductEntry, error) {
	if prefix == "" {
		return nil, errors.New("empty id")
	}
	list, err := a.store.ListEntries(ctx)
	if err != nil {
		return nil, err
	}

	var found *models.ProductEntry
	for i := range list {
		if strings.HasPrefix(list[i].LocalID, prefix) {
			if found != nil {
				return nil, fmt.Errorf("id prefix %q is ambiguous", prefix)
			}
			found = &list[i]
		}
	}
	if found == nil {
		return nil, common.ErrorNotFound
	}
	return found, nil
}
