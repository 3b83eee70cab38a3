package handlers

import (
	"github.com/auto-strada/site/local"
	"github.com/auto-strada/site/valuation"
	"github.com/gofiber/fiber/v2"
)

// ValuationRequest is the body of a valuation request, accepted as JSON or
// form data.
type ValuationRequest struct {
	VIN     string `json:"vin" form:"vin"`
	Mileage int    `json:"mileage" form:"mileage"`
	Gearbox string `json:"gearbox" form:"gearbox"`
}

// HandleValuation serves the anonymous "get my car valued" flow on the home
// page.
func HandleValuation(c *fiber.Ctx) error {
	return handleValuation(c, 0)
}

// HandleSellerValuation serves the listing flow. The seller's identity comes
// from the session middleware upstream; the provider additionally creates a
// reservation for the vehicle.
func HandleSellerValuation(c *fiber.Ctx) error {
	userID := local.GetUserID(c)
	if userID == 0 {
		return c.Status(fiber.StatusUnauthorized).JSON(valuation.Result{
			Success: false,
			Data:    valuation.ValuationData{Error: "authentication required"},
		})
	}
	return handleValuation(c, userID)
}

func handleValuation(c *fiber.Ctx, userID int) error {
	var req ValuationRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	transmission, err := valuation.ParseTransmission(req.Gearbox)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	q, err := valuation.NewQuery(req.VIN, req.Mileage, transmission, userID)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	// Resolve never returns an error; failures come back in the result body
	// so the UI can offer the right affordance (retry, manual valuation,
	// already-listed).
	return c.JSON(resolver.Resolve(c.Context(), q))
}
