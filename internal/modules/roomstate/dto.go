package roomstate

type HousekeepingEventRequest struct {
	Event      string `json:"event" binding:"required"`
	TaskID     string `json:"task_id"`
	Issue      string `json:"issue"`
	OutOfOrder bool   `json:"out_of_order"`
}

type UpdatePriceRequest struct {
	PricePerNight *float64 `json:"price_per_night" binding:"required"`
}
