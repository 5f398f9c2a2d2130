package store

import (
	"cardops-backend/internal/models"

	"gorm.io/gorm"
)

// signedQuantity converts a transaction to its balance delta.
// Injection and Return add stock, Release and Damaged remove it.
func signedQuantity(txType models.TransactionType, packageQty, packagePerUnit int) int {
	qty := packageQty * packagePerUnit
	switch txType {
	case models.TransactionInjection, models.TransactionReturn:
		return qty
	case models.TransactionRelease, models.TransactionDamaged:
		return -qty
	default:
		return 0
	}
}

// lastBalance reads the snapshot balance of the most recent transaction
// for a product, 0 when the product has no history yet. Ordering is by
// transaction date with id as the tiebreaker for same-day rows.
func lastBalance(db *gorm.DB, productID uint) (int, error) {
	var last models.Transaction
	err := db.Where("product_id = ?", productID).
		Order("transaction_date DESC").
		Order("id DESC").
		First(&last).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return 0, nil
		}
		return 0, err
	}
	return last.Balance, nil
}
