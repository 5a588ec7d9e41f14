package order

import (
	"github.com/vedawell/vedawell/internal/types"
)

// Order is collaborator data owned by the fulfillment subsystem. This core
// reads the latest order for delivery defaults and creates reorders through
// the collaborator interface; it never drives the fulfillment state machine.
type Order struct {
	ID              string `db:"id" json:"id"`
	PatientID       string `db:"patient_id" json:"patient_id"`
	PrescriptionID  string `db:"prescription_id" json:"prescription_id"`
	ConsultationID  string `db:"consultation_id" json:"consultation_id,omitempty"`
	DeliveryAddress string `db:"delivery_address" json:"delivery_address"`
	DeliveryCity    string `db:"delivery_city" json:"delivery_city"`
	DeliveryPincode string `db:"delivery_pincode" json:"delivery_pincode"`
	// Cost fields in minor currency units.
	MedicationCost int64 `db:"medication_cost" json:"medication_cost"`
	DeliveryCost   int64 `db:"delivery_cost" json:"delivery_cost"`
	TotalAmount    int64 `db:"total_amount" json:"total_amount"`
	IsReorder      bool  `db:"is_reorder" json:"is_reorder"`
	ParentOrderID  string `db:"parent_order_id" json:"parent_order_id,omitempty"`
	// NeedsCoordinatorReview gates auto-shipping when the prescription
	// changed since the last shipment.
	NeedsCoordinatorReview bool `db:"needs_coordinator_review" json:"needs_coordinator_review"`
	types.BaseModel
}

func (o *Order) TableName() string {
	return "orders"
}
