package models

import (
	"context"
	"errors"
	"time"

	"github.com/mkitchen/resto_backend/config"
	"github.com/mkitchen/resto_backend/utils"
	"gorm.io/gorm"
)

type Event struct {
	ID         int         `gorm:"primary_key" json:"id"`
	BusinessId string      `gorm:"index;not null" json:"business_id"`
	Name       string      `gorm:"size:255;not null" json:"name" binding:"required"`
	EventDate  time.Time   `gorm:"index;not null" json:"event_date" binding:"required"`
	GuestCount int         `gorm:"not null;default:0" json:"guest_count"`
	Status     EventStatus `gorm:"size:20;not null;default:planned" json:"status"`
	Location   string      `gorm:"size:255" json:"location"`
	Notes      string      `gorm:"type:text" json:"notes"`
	Menu       []EventMenu `json:"event_menus"`
	CreatedAt  time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

func (e Event) GetBusinessId() string { return e.BusinessId }

// EventMenu assigns a recipe to an event for a number of portions.
type EventMenu struct {
	ID       int `gorm:"primary_key" json:"id"`
	EventId  int `gorm:"index;not null;uniqueIndex:idx_event_recipe" json:"event_id"`
	RecipeId int `gorm:"index;not null;uniqueIndex:idx_event_recipe" json:"recipe_id" binding:"required"`
	Portions int `gorm:"not null" json:"portions" binding:"required"`
}

type NewEvent struct {
	Name       string         `json:"name" binding:"required"`
	EventDate  time.Time      `json:"event_date" binding:"required"`
	GuestCount int            `json:"guest_count"`
	Status     string         `json:"status"`
	Location   string         `json:"location"`
	Notes      string         `json:"notes"`
	Menu       []NewEventMenu `json:"menu" validate:"dive"`
}

type NewEventMenu struct {
	RecipeId int `json:"recipe_id" binding:"required"`
	Portions int `json:"portions" binding:"required"`
}

func (input NewEvent) validate(ctx context.Context, businessId string) (EventStatus, error) {
	status := EventStatusPlanned
	if input.Status != "" {
		parsed, err := ParseEventStatus(input.Status)
		if err != nil {
			return "", utils.NewValidationError("invalid event status %q", input.Status)
		}
		status = parsed
	}
	if input.GuestCount < 0 {
		return "", utils.NewValidationError("guest count cannot be negative")
	}
	for _, line := range input.Menu {
		if line.Portions <= 0 {
			return "", utils.NewValidationError("portions must be positive")
		}
		if err := utils.ValidateResourceId[Recipe](ctx, businessId, line.RecipeId); err != nil {
			return "", errors.New("recipe not found")
		}
	}
	return status, nil
}

func CreateEvent(ctx context.Context, input *NewEvent) (*Event, error) {
	db := config.GetDB()

	businessId, err := requireBusinessId(ctx)
	if err != nil {
		return nil, err
	}
	status, err := input.validate(ctx, businessId)
	if err != nil {
		return nil, err
	}

	event := Event{
		BusinessId: businessId,
		Name:       input.Name,
		EventDate:  input.EventDate,
		GuestCount: input.GuestCount,
		Status:     status,
		Location:   input.Location,
		Notes:      input.Notes,
	}
	for _, line := range input.Menu {
		event.Menu = append(event.Menu, EventMenu{
			RecipeId: line.RecipeId,
			Portions: line.Portions,
		})
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&event).Error
	})
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func GetEvent(ctx context.Context, id int) (*Event, error) {
	return GetResource[Event](ctx, id, "Menu")
}

// EventFilter selects the events whose demand is aggregated. Selection modes
// are mutually exclusive: an explicit id list takes precedence over
// status/date filtering.
type EventFilter struct {
	EventIds []int         `json:"event_ids"`
	Statuses []EventStatus `json:"statuses"`
	DateFrom *time.Time    `json:"date_from"`
	DateTo   *time.Time    `json:"date_to"`
}

// ListEvents is the demand source reader contract.
func ListEvents(ctx context.Context, filter EventFilter) ([]Event, error) {
	businessId, err := requireBusinessId(ctx)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	query := db.WithContext(ctx).Where("business_id = ?", businessId)

	if len(filter.EventIds) > 0 {
		query = query.Where("id IN ?", utils.UniqueSlice(filter.EventIds))
	} else {
		if len(filter.Statuses) > 0 {
			query = query.Where("status IN ?", filter.Statuses)
		}
		if filter.DateFrom != nil {
			query = query.Where("event_date >= ?", *filter.DateFrom)
		}
		if filter.DateTo != nil {
			query = query.Where("event_date <= ?", *filter.DateTo)
		}
	}

	var events []Event
	err = query.Order("event_date ASC").Find(&events).Error
	return events, err
}

// GetEventMenu is the demand source reader contract: (recipe, portions)
// assignments of one event. An event with no menu returns an empty slice.
func GetEventMenu(ctx context.Context, eventId int) ([]EventMenu, error) {
	businessId, err := requireBusinessId(ctx)
	if err != nil {
		return nil, err
	}
	if err := utils.ValidateResourceId[Event](ctx, businessId, eventId); err != nil {
		return nil, err
	}

	db := config.GetDB()
	var menu []EventMenu
	err = db.WithContext(ctx).
		Where("event_id = ?", eventId).
		Find(&menu).Error
	return menu, err
}

// ListEventMenusByEventIds batch-loads the menus of many events.
func ListEventMenusByEventIds(ctx context.Context, eventIds []int) (map[int][]EventMenu, error) {
	if len(eventIds) == 0 {
		return map[int][]EventMenu{}, nil
	}

	db := config.GetDB()
	var menus []EventMenu
	err := db.WithContext(ctx).
		Where("event_id IN ?", utils.UniqueSlice(eventIds)).
		Find(&menus).Error
	if err != nil {
		return nil, err
	}

	result := make(map[int][]EventMenu)
	for _, menu := range menus {
		result[menu.EventId] = append(result[menu.EventId], menu)
	}
	return result, nil
}
