package domain

import "time"

// Inventory log actions
const (
	ActionStockAdd             = "STOCK_ADD"
	ActionStockRemove          = "STOCK_REMOVE"
	ActionStockAdjust          = "STOCK_ADJUST"
	ActionPrescriptionFulfill  = "PRESCRIPTION_FULFILL"
	ActionPrescriptionCancel   = "PRESCRIPTION_CANCELLED"
	ActionDiscarded            = "DISCARDED"
	ActionReceivedFromSupplier = "RECEIVED"
)

// ValidAction reports whether the action is a known ledger action
func ValidAction(action string) bool {
	switch action {
	case ActionStockAdd, ActionStockRemove, ActionStockAdjust,
		ActionPrescriptionFulfill, ActionPrescriptionCancel,
		ActionDiscarded, ActionReceivedFromSupplier:
		return true
	}
	return false
}

// InventoryLog is the append-only audit record of one quantity change.
// Rows are created exactly once per applied adjustment and never updated
// or deleted.
type InventoryLog struct {
	ID               uint      `json:"id" gorm:"primaryKey"`
	MedicineID       uint      `json:"medicine_id" gorm:"not null;index:idx_log_medicine_time"`
	Action           string    `json:"action" gorm:"not null"`
	QuantityChange   int       `json:"quantity_change" gorm:"not null"`
	PreviousQuantity int       `json:"previous_quantity" gorm:"not null"`
	NewQuantity      int       `json:"new_quantity" gorm:"not null"`
	PerformedByID    uint      `json:"performed_by_id" gorm:"not null;index:idx_log_actor_time"`
	Reason           string    `json:"reason"`
	PrescriptionID   *uint     `json:"prescription_id,omitempty" gorm:"index"`
	CreatedAt        time.Time `json:"created_at" gorm:"index:idx_log_medicine_time;index:idx_log_actor_time"`
}

// TableName specifies the table name
func (InventoryLog) TableName() string {
	return "inventory_logs"
}
