package audit

import (
	"encoding/json"
	"fmt"
	"time"

	"cardops-backend/internal/models"

	"gorm.io/gorm"
)

type LogOptions struct {
	UserID      uint
	UserName    string
	EntityType  string
	EntityID    uint
	Action      models.AuditAction
	Description string
	Before      any
	After       any
}

func WriteLog(db *gorm.DB, opts LogOptions) error {
	// jsonb columns want the JSON string "null", not an empty string
	beforeStr := "null"
	afterStr := "null"

	if opts.Before != nil {
		if b, err := json.Marshal(opts.Before); err == nil {
			beforeStr = string(b)
		}
	}
	if opts.After != nil {
		if b, err := json.Marshal(opts.After); err == nil {
			afterStr = string(b)
		}
	}

	log := models.AuditLog{
		UserID:      opts.UserID,
		UserName:    opts.UserName,
		EntityType:  opts.EntityType,
		EntityID:    opts.EntityID,
		Action:      opts.Action,
		Description: opts.Description,
		BeforeData:  beforeStr,
		AfterData:   afterStr,
		Undone:      false,
		IsUndone:    false,
	}

	if err := db.Create(&log).Error; err != nil {
		return fmt.Errorf("could not write audit log: %w", err)
	}

	return nil
}

// UndoLog reverts the action a log row describes and marks the row undone.
// Only entity types with a restore path below can be undone; in particular
// ledger transactions and stock counters stay out, their history is the
// source of truth.
func UndoLog(db *gorm.DB, logID uint, userID uint, userName string) error {
	var log models.AuditLog
	if err := db.First(&log, "id = ?", logID).Error; err != nil {
		return fmt.Errorf("log not found: %w", err)
	}

	if log.IsUndone {
		return fmt.Errorf("this action has already been undone")
	}

	switch log.Action {
	case models.AuditActionCreate:
		if err := deleteEntity(db, log.EntityType, log.EntityID); err != nil {
			return fmt.Errorf("could not delete entity: %w", err)
		}

	case models.AuditActionUpdate:
		if err := restoreEntity(db, log.EntityType, log.EntityID, log.BeforeData); err != nil {
			return fmt.Errorf("could not restore entity: %w", err)
		}

	case models.AuditActionDelete:
		if err := recreateEntity(db, log.EntityType, log.AfterData); err != nil {
			return fmt.Errorf("could not recreate entity: %w", err)
		}

	default:
		return fmt.Errorf("this action type cannot be undone")
	}

	now := time.Now()
	log.IsUndone = true
	log.UndoneBy = &userID
	log.UndoneAt = &now

	if err := db.Save(&log).Error; err != nil {
		return fmt.Errorf("could not update log: %w", err)
	}

	undoLog := models.AuditLog{
		UserID:      userID,
		UserName:    userName,
		EntityType:  log.EntityType,
		EntityID:    log.EntityID,
		Action:      models.AuditActionUndo,
		Description: fmt.Sprintf("Undone: %s", log.Description),
		BeforeData:  log.AfterData,
		AfterData:   log.BeforeData,
		Undone:      true,
		IsUndone:    false,
	}

	if err := db.Create(&undoLog).Error; err != nil {
		return fmt.Errorf("could not write undo log: %w", err)
	}

	return nil
}

func deleteEntity(db *gorm.DB, entityType string, entityID uint) error {
	switch entityType {
	case "job_code":
		return db.Delete(&models.JobCode{}, "id = ?", entityID).Error
	case "qc_entry":
		return db.Delete(&models.QcEntry{}, "id = ?", entityID).Error
	case "store_item":
		return db.Delete(&models.StoreItem{}, "id = ?", entityID).Error
	case "device":
		return db.Delete(&models.Device{}, "device_id = ?", entityID).Error
	default:
		return fmt.Errorf("unknown entity type: %s", entityType)
	}
}

func recreateEntity(db *gorm.DB, entityType string, dataJSON string) error {
	switch entityType {
	case "job_code":
		var jc models.JobCode
		if err := json.Unmarshal([]byte(dataJSON), &jc); err != nil {
			return err
		}
		jc.ID = 0
		return db.Create(&jc).Error

	case "qc_entry":
		var entry models.QcEntry
		if err := json.Unmarshal([]byte(dataJSON), &entry); err != nil {
			return err
		}
		entry.ID = 0
		return db.Create(&entry).Error

	case "store_item":
		var item models.StoreItem
		if err := json.Unmarshal([]byte(dataJSON), &item); err != nil {
			return err
		}
		item.ID = 0
		return db.Create(&item).Error

	case "device":
		var dev models.Device
		if err := json.Unmarshal([]byte(dataJSON), &dev); err != nil {
			return err
		}
		dev.ID = 0
		return db.Create(&dev).Error

	default:
		return fmt.Errorf("unknown entity type: %s", entityType)
	}
}

func restoreEntity(db *gorm.DB, entityType string, entityID uint, dataJSON string) error {
	switch entityType {
	case "job_code":
		var jc models.JobCode
		if err := json.Unmarshal([]byte(dataJSON), &jc); err != nil {
			return err
		}
		return db.Model(&models.JobCode{}).Where("id = ?", entityID).Updates(map[string]interface{}{
			"job_id":    jc.JobID,
			"bank_id":   jc.BankID,
			"quantity":  jc.Quantity,
			"processed": jc.Processed,
			"priority":  jc.Priority,
		}).Error

	case "qc_entry":
		var entry models.QcEntry
		if err := json.Unmarshal([]byte(dataJSON), &entry); err != nil {
			return err
		}
		return db.Model(&models.QcEntry{}).Where("id = ?", entityID).Updates(map[string]interface{}{
			"bank_id":      entry.BankID,
			"shift":        entry.Shift,
			"entry_date":   entry.EntryDate,
			"quantity":     entry.Quantity,
			"overtime":     entry.Overtime,
			"overtime_qty": entry.OvertimeQty,
		}).Error

	case "store_item":
		var item models.StoreItem
		if err := json.Unmarshal([]byte(dataJSON), &item); err != nil {
			return err
		}
		return db.Model(&models.StoreItem{}).Where("id = ?", entityID).Updates(map[string]interface{}{
			"item_name":          item.ItemName,
			"quantity_received":  item.QuantityReceived,
			"quantity_requested": item.QuantityRequested,
			"category_id":        item.CategoryID,
			"vendor_id":          item.VendorID,
			"unit_price":         item.UnitPrice,
			"storekeeper":        item.Storekeeper,
			"remarks":            item.Remarks,
			"is_confirmed":       item.IsConfirmed,
			"seen_by":            item.SeenBy,
		}).Error

	case "device":
		var dev models.Device
		if err := json.Unmarshal([]byte(dataJSON), &dev); err != nil {
			return err
		}
		return db.Model(&models.Device{}).Where("device_id = ?", entityID).Updates(map[string]interface{}{
			"device_name": dev.DeviceName,
			"location":    dev.Location,
			"is_active":   dev.IsActive,
		}).Error

	default:
		return fmt.Errorf("unknown entity type: %s", entityType)
	}
}
