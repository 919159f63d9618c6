package kafka

import "time"

// StockAdjustedEvent is emitted after every committed stock adjustment
type StockAdjustedEvent struct {
	EventID          string    `json:"event_id"`
	EventType        string    `json:"event_type"`
	MedicineID       uint      `json:"medicine_id"`
	MedicineName     string    `json:"medicine_name"`
	Action           string    `json:"action"`
	QuantityChange   int       `json:"quantity_change"`
	PreviousQuantity int       `json:"previous_quantity"`
	NewQuantity      int       `json:"new_quantity"`
	PerformedBy      uint      `json:"performed_by"`
	PrescriptionID   *uint     `json:"prescription_id,omitempty"`
	Timestamp        time.Time `json:"timestamp"`
}

// AlertCreatedEvent is emitted after a new alert record is created
type AlertCreatedEvent struct {
	EventID        string    `json:"event_id"`
	EventType      string    `json:"event_type"`
	AlertID        uint      `json:"alert_id"`
	AlertType      string    `json:"alert_type"`
	Severity       string    `json:"severity"`
	Title          string    `json:"title"`
	MedicineID     *uint     `json:"medicine_id,omitempty"`
	PrescriptionID *uint     `json:"prescription_id,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

// Event types
const (
	EventTypeStockAdjusted = "stock.adjusted"
	EventTypeAlertCreated  = "alert.created"
)

// Kafka topics
const (
	TopicStockAdjusted = "stock-adjusted"
	TopicAlertCreated  = "alert-created"
)
