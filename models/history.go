package models

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/mkitchen/resto_backend/config"
	"github.com/mkitchen/resto_backend/utils"
	"gorm.io/gorm"
)

type History struct {
	ID            int       `gorm:"primary_key" json:"id"`
	BusinessId    string    `gorm:"index;not null" json:"business_id"`
	ActionType    string    `gorm:"size:20;not null" json:"action_type" binding:"required"`
	Before        string    `gorm:"type:text" json:"before"`
	After         string    `gorm:"type:text" json:"after"`
	Description   string    `gorm:"type:text;not null" json:"description"`
	ReferenceID   int       `gorm:"index" json:"reference_id"`
	ReferenceType string    `gorm:"size:255" json:"reference_type"`
	UserId        int       `gorm:"index;not null" json:"user_id"`
	UserName      string    `gorm:"size:100" json:"user_name"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (h History) GetBusinessId() string { return h.BusinessId }

func createHistory(tx *gorm.DB,
	actionType string,
	referenceId int,
	referenceType string,
	before interface{},
	after interface{},
	description string) (err error) {

	var history History

	b, _ := json.Marshal(before)
	a, _ := json.Marshal(after)

	ctx := tx.Statement.Context
	// get businessId, userId, userName from context
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return errors.New("business id is required")
	}
	userId, _ := utils.GetUserIdFromContext(ctx)
	userName, _ := utils.GetUserNameFromContext(ctx)

	history = History{
		BusinessId:    businessId,
		ActionType:    actionType,
		Before:        string(b),
		After:         string(a),
		Description:   description,
		ReferenceID:   referenceId,
		ReferenceType: referenceType,
		UserId:        userId,
		UserName:      userName,
	}

	return tx.Create(&history).Error
}

// RecordAudit writes an audit record outside any caller transaction.
// Fire-and-forget: failures are logged, never propagated, so audit problems
// cannot abort the operation being audited.
func RecordAudit(ctx context.Context, actionType string, referenceType string, referenceId int, description string) {
	db := config.GetDB()
	logger := config.GetLogger()

	err := createHistory(db.WithContext(ctx), actionType, referenceId, referenceType, nil, nil, description)
	if err != nil {
		config.LogError(logger, "history.go", "RecordAudit", actionType, referenceId, err)
	}
}

// ListHistories returns the audit trail for one entity, newest first.
func ListHistories(ctx context.Context, referenceType string, referenceId int) ([]History, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	db := config.GetDB()
	var histories []History
	err := db.WithContext(ctx).
		Where("business_id = ? AND reference_type = ? AND reference_id = ?", businessId, referenceType, referenceId).
		Order("created_at DESC").
		Find(&histories).Error
	return histories, err
}
