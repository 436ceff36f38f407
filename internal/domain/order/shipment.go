package order

// Shipment stage names, in progression order.
const (
	StagePicked         = "PICKED"
	StageInTransit      = "IN_TRANSIT"
	StageOutForDelivery = "OUT_FOR_DELIVERY"
	StageDelivered      = "DELIVERED"
)

// Stages is the fixed progression every shipment goes through.
var Stages = []string{StagePicked, StageInTransit, StageOutForDelivery, StageDelivered}

// Shipment tracks the simulated delivery of an order. CurrentStageIndex
// only ever increases, one step at a time, until it reaches the last
// stage.
type Shipment struct {
	Carrier           string   `json:"carrier"`
	TrackingID        string   `json:"tracking_id"`
	Stages            []string `json:"stages"`
	CurrentStageIndex int      `json:"current_stage_index"`
}

// NewShipment creates a shipment at stage zero with a tracking id derived
// from the order id.
func NewShipment(carrier, orderID string) *Shipment {
	return &Shipment{
		Carrier:    carrier,
		TrackingID: TrackingID(orderID),
		Stages:     append([]string(nil), Stages...),
	}
}

// Stage returns the name of the current stage.
func (s *Shipment) Stage() string {
	return s.Stages[s.CurrentStageIndex]
}

// Delivered reports whether the shipment has reached its final stage.
func (s *Shipment) Delivered() bool {
	return s.CurrentStageIndex >= len(s.Stages)-1
}
