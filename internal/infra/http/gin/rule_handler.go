package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	"stayengine/internal/app/commands"
	"stayengine/internal/app/dto"
	rulesapp "stayengine/internal/app/handlers/rules"
	"stayengine/internal/app/queries"
)

type RuleHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

type ruleRequest struct {
	Name            string  `json:"name"`
	PriceMultiplier string  `json:"price_multiplier"`
	IsActive        *bool   `json:"is_active"`
	Priority        *int    `json:"priority"`
	DayOfWeek       *int    `json:"day_of_week"`
	StartDate       *string `json:"start_date"`
	EndDate         *string `json:"end_date"`
}

type rulePatchRequest struct {
	Name            *string `json:"name"`
	PriceMultiplier *string `json:"price_multiplier"`
	IsActive        *bool   `json:"is_active"`
	Priority        *int    `json:"priority"`
	DayOfWeek       *int    `json:"day_of_week"`
	StartDate       *string `json:"start_date"`
	EndDate         *string `json:"end_date"`
}

func (h RuleHandler) Create(c *gin.Context) {
	requester, ok := requesterFrom(c)
	if !ok {
		return
	}
	var req ruleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	payload := rulesapp.RulePayload{
		Name:            req.Name,
		PriceMultiplier: req.PriceMultiplier,
		IsActive:        req.IsActive,
		Priority:        req.Priority,
		DayOfWeek:       req.DayOfWeek,
	}
	if !parseDatePtr(c, req.StartDate, "start_date", &payload.StartDate) {
		return
	}
	if !parseDatePtr(c, req.EndDate, "end_date", &payload.EndDate) {
		return
	}
	cmd := rulesapp.CreateRuleCommand{
		PropertyID: c.Param("id"),
		Requester:  requester,
		Payload:    payload,
		IdemKey:    c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[rulesapp.CreateRuleCommand, *dto.PricingRule](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h RuleHandler) Update(c *gin.Context) {
	requester, ok := requesterFrom(c)
	if !ok {
		return
	}
	var req rulePatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	patch := rulesapp.RulePatchPayload{
		Name:            req.Name,
		PriceMultiplier: req.PriceMultiplier,
		IsActive:        req.IsActive,
		Priority:        req.Priority,
		DayOfWeek:       req.DayOfWeek,
	}
	if !parseDatePtr(c, req.StartDate, "start_date", &patch.StartDate) {
		return
	}
	if !parseDatePtr(c, req.EndDate, "end_date", &patch.EndDate) {
		return
	}
	cmd := rulesapp.UpdateRuleCommand{
		PropertyID: c.Param("id"),
		RuleID:     c.Param("ruleId"),
		Requester:  requester,
		Patch:      patch,
	}
	result, err := commands.Dispatch[rulesapp.UpdateRuleCommand, *dto.PricingRule](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h RuleHandler) Delete(c *gin.Context) {
	requester, ok := requesterFrom(c)
	if !ok {
		return
	}
	cmd := rulesapp.DeleteRuleCommand{
		PropertyID: c.Param("id"),
		RuleID:     c.Param("ruleId"),
		Requester:  requester,
	}
	if _, err := commands.Dispatch[rulesapp.DeleteRuleCommand, struct{}](c.Request.Context(), h.Commands, cmd); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h RuleHandler) Toggle(c *gin.Context) {
	requester, ok := requesterFrom(c)
	if !ok {
		return
	}
	cmd := rulesapp.ToggleRuleCommand{
		PropertyID: c.Param("id"),
		RuleID:     c.Param("ruleId"),
		Requester:  requester,
	}
	result, err := commands.Dispatch[rulesapp.ToggleRuleCommand, *dto.PricingRule](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h RuleHandler) List(c *gin.Context) {
	requester, ok := requesterFrom(c)
	if !ok {
		return
	}
	q := rulesapp.ListRulesQuery{
		PropertyID: c.Param("id"),
		Requester:  requester,
	}
	result, err := queries.Ask[rulesapp.ListRulesQuery, []dto.PricingRule](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, err)
		return
	}
	if result == nil {
		result = []dto.PricingRule{}
	}
	c.JSON(http.StatusOK, gin.H{"rules": result})
}

func (h RuleHandler) Get(c *gin.Context) {
	requester, ok := requesterFrom(c)
	if !ok {
		return
	}
	q := rulesapp.GetRuleQuery{
		PropertyID: c.Param("id"),
		RuleID:     c.Param("ruleId"),
		Requester:  requester,
	}
	result, err := queries.Ask[rulesapp.GetRuleQuery, *dto.PricingRule](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
