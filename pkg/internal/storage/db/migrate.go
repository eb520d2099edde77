package db

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/foliva/docengine/pkg/configs"
	"github.com/foliva/docengine/pkg/internal/model"
)

// AutoMigrate creates/updates the document-engine tables. Collections are
// never deleted by the core (§3), so this only ever adds columns/indexes,
// never drops them.
func AutoMigrate(c *Client) error {
	if err := c.DB.AutoMigrate(&model.Collection{}, &model.Document{}, &model.Event{}, &model.Grant{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	return nil
}

// SystemMailCollection is the reserved OAO collection the mail worker
// drains (§6).
const SystemMailCollection = "folivafy-mail"

// EnsureSystemCollections creates the reserved folivafy-mail collection on
// first boot if it does not already exist. The deletion config argument is
// not used: collection names in FOLIVAFY_ENABLE_DELETION are not checked
// against existing collections here.
func EnsureSystemCollections(ctx context.Context, c *Client, _ configs.DeletionConfig) error {
	var existing model.Collection

	err := c.DB.WithContext(ctx).Where("name = ?", SystemMailCollection).First(&existing).Error
	if err == nil {
		return nil
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("ensure system collections: lookup %s: %w", SystemMailCollection, err)
	}

	mail := model.Collection{
		Name:   SystemMailCollection,
		Title:  "Folivafy outbound mail queue",
		OAO:    true,
		Locked: false,
	}

	if err := c.DB.WithContext(ctx).Create(&mail).Error; err != nil {
		return fmt.Errorf("ensure system collections: create %s: %w", SystemMailCollection, err)
	}

	return nil
}
