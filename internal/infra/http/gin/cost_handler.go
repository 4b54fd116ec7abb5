package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	"stayengine/internal/app/dto"
	costsapp "stayengine/internal/app/handlers/costs"
	"stayengine/internal/app/queries"
	"stayengine/internal/infra/obs"
)

type CostHandler struct {
	Queries queries.Bus
	Metrics *obs.Metrics
}

// Calculate serves the public stay cost quote. No identity headers required.
func (h CostHandler) Calculate(c *gin.Context) {
	checkIn, ok := parseRequiredDate(c, "check_in")
	if !ok {
		return
	}
	checkOut, ok := parseRequiredDate(c, "check_out")
	if !ok {
		return
	}
	q := costsapp.CalculateCostQuery{
		PropertyID: c.Param("id"),
		CheckIn:    checkIn,
		CheckOut:   checkOut,
	}
	result, err := queries.Ask[costsapp.CalculateCostQuery, *dto.StayCost](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, err)
		return
	}
	if h.Metrics != nil {
		h.Metrics.CountQuote()
	}
	c.JSON(http.StatusOK, result)
}
