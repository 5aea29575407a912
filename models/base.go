package models

import (
	"context"
	"errors"

	"github.com/mkitchen/resto_backend/config"
	"github.com/mkitchen/resto_backend/utils"
)

type Resource interface {
	GetBusinessId() string
}

// first find in redis, then in db, using ctx's business_id in WHERE, cache result
// (may return RecordNotFound error)
func GetResource[T Resource](ctx context.Context, id int, associations ...string) (*T, error) {

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	// find in redis
	result, err := utils.RetrieveRedis[T](id)
	if err != nil {
		return nil, err
	}
	// if not found in redis
	if result == nil {
		// fetch from db
		result, err = utils.FetchModel[T](ctx, businessId, id, associations...)
		if err != nil {
			return nil, err
		}

		// store in redis
		if err := utils.StoreRedis[T](result, id); err != nil {
			return nil, err
		}
	} else {
		// if found in redis
		// check if business ids match
		if (*result).GetBusinessId() != businessId {
			return nil, errors.New("cannot access resource owned by other business")
		}
	}

	return result, nil
}

// MigrateTable creates/updates the schema for every model in dependency order.
func MigrateTable() error {
	db := config.GetDB()
	return db.AutoMigrate(
		&Business{},
		&User{},
		&Ingredient{},
		&Supplier{},
		&SupplierIngredient{},
		&Recipe{},
		&RecipeIngredient{},
		&Event{},
		&EventMenu{},
		&SupplierOrder{},
		&SupplierOrderItem{},
		&SupplierOrderEvent{},
		&History{},
	)
}
