package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"stayengine/internal/app/commands"
	"stayengine/internal/app/dto"
	slotsapp "stayengine/internal/app/handlers/slots"
	"stayengine/internal/app/queries"
)

type SlotHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

type slotRequest struct {
	StartDate     string  `json:"start_date"`
	EndDate       string  `json:"end_date"`
	IsAvailable   *bool   `json:"is_available"`
	PricePerNight *string `json:"price_per_night"`
	Notes         string  `json:"notes"`
}

type bulkSlotsRequest struct {
	Slots []slotRequest `json:"slots"`
}

type slotPatchRequest struct {
	StartDate     *string `json:"start_date"`
	EndDate       *string `json:"end_date"`
	IsAvailable   *bool   `json:"is_available"`
	PricePerNight *string `json:"price_per_night"`
	ClearPrice    bool    `json:"clear_price"`
	Notes         *string `json:"notes"`
}

func (r slotRequest) toPayload(c *gin.Context) (slotsapp.SlotPayload, bool) {
	start, err := parseDate(r.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start_date: expected YYYY-MM-DD"})
		return slotsapp.SlotPayload{}, false
	}
	end, err := parseDate(r.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end_date: expected YYYY-MM-DD"})
		return slotsapp.SlotPayload{}, false
	}
	payload := slotsapp.SlotPayload{
		StartDate:   start,
		EndDate:     end,
		IsAvailable: r.IsAvailable,
		Notes:       r.Notes,
	}
	if r.PricePerNight != nil {
		price, err := decimal.NewFromString(*r.PricePerNight)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid price_per_night: expected a decimal string"})
			return slotsapp.SlotPayload{}, false
		}
		payload.PricePerNight = &price
	}
	return payload, true
}

func (h SlotHandler) Create(c *gin.Context) {
	requester, ok := requesterFrom(c)
	if !ok {
		return
	}
	var req slotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	payload, ok := req.toPayload(c)
	if !ok {
		return
	}
	cmd := slotsapp.CreateSlotCommand{
		PropertyID: c.Param("id"),
		Requester:  requester,
		Payload:    payload,
		IdemKey:    c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[slotsapp.CreateSlotCommand, *dto.Slot](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h SlotHandler) CreateBulk(c *gin.Context) {
	requester, ok := requesterFrom(c)
	if !ok {
		return
	}
	var req bulkSlotsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	payloads := make([]slotsapp.SlotPayload, 0, len(req.Slots))
	for _, raw := range req.Slots {
		payload, ok := raw.toPayload(c)
		if !ok {
			return
		}
		payloads = append(payloads, payload)
	}
	cmd := slotsapp.CreateBulkSlotsCommand{
		PropertyID: c.Param("id"),
		Requester:  requester,
		Slots:      payloads,
	}
	result, err := commands.Dispatch[slotsapp.CreateBulkSlotsCommand, []dto.Slot](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"slots": result})
}

func (h SlotHandler) Update(c *gin.Context) {
	requester, ok := requesterFrom(c)
	if !ok {
		return
	}
	var req slotPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	patch := slotsapp.SlotPatchPayload{
		IsAvailable: req.IsAvailable,
		ClearPrice:  req.ClearPrice,
		Notes:       req.Notes,
	}
	if req.StartDate != nil {
		start, err := parseDate(*req.StartDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start_date: expected YYYY-MM-DD"})
			return
		}
		patch.StartDate = &start
	}
	if req.EndDate != nil {
		end, err := parseDate(*req.EndDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end_date: expected YYYY-MM-DD"})
			return
		}
		patch.EndDate = &end
	}
	if req.PricePerNight != nil {
		price, err := decimal.NewFromString(*req.PricePerNight)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid price_per_night: expected a decimal string"})
			return
		}
		patch.PricePerNight = &price
	}
	cmd := slotsapp.UpdateSlotCommand{
		PropertyID: c.Param("id"),
		SlotID:     c.Param("slotId"),
		Requester:  requester,
		Patch:      patch,
	}
	result, err := commands.Dispatch[slotsapp.UpdateSlotCommand, *dto.Slot](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h SlotHandler) Delete(c *gin.Context) {
	requester, ok := requesterFrom(c)
	if !ok {
		return
	}
	cmd := slotsapp.DeleteSlotCommand{
		PropertyID: c.Param("id"),
		SlotID:     c.Param("slotId"),
		Requester:  requester,
	}
	if _, err := commands.Dispatch[slotsapp.DeleteSlotCommand, struct{}](c.Request.Context(), h.Commands, cmd); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h SlotHandler) List(c *gin.Context) {
	start, ok := parseOptionalDate(c, "start_date")
	if !ok {
		return
	}
	end, ok := parseOptionalDate(c, "end_date")
	if !ok {
		return
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end_date must not precede start_date"})
		return
	}
	q := slotsapp.ListSlotsQuery{
		PropertyID: c.Param("id"),
		StartDate:  start,
		EndDate:    end,
	}
	result, err := queries.Ask[slotsapp.ListSlotsQuery, []dto.Slot](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, err)
		return
	}
	if result == nil {
		result = []dto.Slot{}
	}
	c.JSON(http.StatusOK, gin.H{"slots": result})
}
