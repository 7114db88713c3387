package controllers

import (
	"context"
	"errors"
	"math"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/recoverly/recoverly/internal/pkg/recovery"
	"github.com/recoverly/recoverly/internal/pkg/statistics"
)

// DashboardController serves the operator-facing endpoints: aggregate
// metrics, the failed-payment list, manual retrigger and failure simulation.
type DashboardController struct {
	svc *recovery.Service
}

// NewDashboardController creates the controller with an injected recovery service.
func NewDashboardController(svc *recovery.Service) *DashboardController {
	return &DashboardController{svc: svc}
}

// simulateRequest is the wire shape of a simulation submission. Amount is in
// major currency units and converted to minor units here.
type simulateRequest struct {
	Name    string  `json:"name" form:"name"`
	Email   string  `json:"email" form:"email"`
	Amount  float64 `json:"amount" form:"amount"`
	Reason  string  `json:"reason" form:"reason"`
	Company string  `json:"company" form:"company"`
	Country string  `json:"country" form:"country"`
	Plan    string  `json:"plan" form:"plan"`
	Tone    string  `json:"tone" form:"tone"`
}

// HandleDashboard returns the aggregate recovery metrics and the joined
// failed-payment records.
func (dc *DashboardController) HandleDashboard(c *fiber.Ctx) error {
	stats, err := statistics.GetDashboardStats(dc.svc.Repo())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "stats_unavailable"})
	}

	records, err := dc.svc.DashboardRecords(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "records_unavailable"})
	}

	return c.JSON(fiber.Map{
		"metrics": stats,
		"records": records,
	})
}

// HandleSimulate runs a simulated payment failure and returns the structured
// result with the generated email preview.
func (dc *DashboardController) HandleSimulate(c *fiber.Ctx) error {
	var req simulateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "invalid request body"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	result := dc.svc.SimulateFailedPayment(ctx, recovery.SimulationInput{
		Name:    req.Name,
		Email:   req.Email,
		Amount:  majorToMinorUnits(req.Amount),
		Reason:  req.Reason,
		Company: req.Company,
		Country: req.Country,
		Plan:    req.Plan,
		Tone:    req.Tone,
	})

	statistics.InvalidateDashboardStats()
	return c.JSON(result)
}

// HandleRetrigger re-sends outreach for an existing failed payment.
func (dc *DashboardController) HandleRetrigger(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "invalid failed payment id"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	if err := dc.svc.RetriggerRecovery(ctx, uint(id)); err != nil {
		if errors.Is(err, recovery.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": err.Error()})
	}
	return c.JSON(fiber.Map{"success": true})
}

// majorToMinorUnits converts a major-unit amount (e.g. 29.00) to minor units.
func majorToMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
