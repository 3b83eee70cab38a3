package valuation

// ValuationData is the canonical valuation record. Price fields are whole
// currency units; a zero price means the field is absent, never "free".
type ValuationData struct {
	Make  string `json:"make,omitempty"`
	Model string `json:"model,omitempty"`
	Year  int    `json:"year,omitempty"`

	BasePrice    int `json:"basePrice,omitempty"`
	AveragePrice int `json:"averagePrice,omitempty"`
	ReservePrice int `json:"reservePrice,omitempty"`
	Valuation    int `json:"valuation,omitempty"`

	// IsExisting means the vehicle is already listed on the platform.
	IsExisting bool `json:"isExisting,omitempty"`
	// NoData means the provider had nothing for this vehicle. The caller
	// should offer manual valuation; this is not a failure.
	NoData bool `json:"noData,omitempty"`
	// Error carries a human-readable failure reason when resolution failed.
	Error string `json:"error,omitempty"`

	// ReservationID is the provider-side reservation record created during a
	// seller-context valuation, passed through for the caller to persist.
	ReservationID string `json:"reservationId,omitempty"`
}

// HasIdentity reports whether any vehicle identity field was found.
func (d ValuationData) HasIdentity() bool {
	return d.Make != "" || d.Model != "" || d.Year != 0
}

// HasPrice reports whether any price field was found.
func (d ValuationData) HasPrice() bool {
	return d.BasePrice != 0 || d.AveragePrice != 0 || d.ReservePrice != 0 || d.Valuation != 0
}

// Result is the only shape handed back to callers. Failures are data, never
// Go errors: Success=false with Data.Error set is the failure channel.
type Result struct {
	Success bool          `json:"success"`
	Data    ValuationData `json:"data"`
}

func failure(reason string) Result {
	return Result{Success: false, Data: ValuationData{Error: reason}}
}
