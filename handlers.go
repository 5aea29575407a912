package main

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mkitchen/resto_backend/models"
	"github.com/mkitchen/resto_backend/ordering"
	"github.com/mkitchen/resto_backend/utils"
)

// eventFilterFromQuery reads the mutually exclusive selection modes:
// ?event_ids=1,2,3 wins over ?statuses=planned,confirmed&date_from=...&date_to=...
func eventFilterFromQuery(c *gin.Context) (models.EventFilter, error) {
	var filter models.EventFilter

	if raw := c.Query("event_ids"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			id, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil {
				return filter, utils.NewValidationError("invalid event id %q", part)
			}
			filter.EventIds = append(filter.EventIds, id)
		}
		return filter, nil
	}

	if raw := c.Query("statuses"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			status, err := models.ParseEventStatus(strings.TrimSpace(part))
			if err != nil {
				return filter, utils.NewValidationError("invalid event status %q", part)
			}
			filter.Statuses = append(filter.Statuses, status)
		}
	} else {
		// default demand window: events still ahead of execution
		filter.Statuses = []models.EventStatus{models.EventStatusPlanned, models.EventStatusConfirmed}
	}
	if raw := c.Query("date_from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, utils.NewValidationError("invalid date_from %q", raw)
		}
		filter.DateFrom = &t
	}
	if raw := c.Query("date_to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, utils.NewValidationError("invalid date_to %q", raw)
		}
		filter.DateTo = &t
	}
	return filter, nil
}

func shoppingListHandler(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "ComputeShoppingList")
	defer span.End()

	filter, err := eventFilterFromQuery(c)
	if err != nil {
		respondError(c, err)
		return
	}

	list, err := ordering.ComputeShoppingList(ctx, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func generateOrdersHandler(c *gin.Context) {
	var input ordering.GenerateOrdersInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := ordering.GenerateOrders(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}

	status := http.StatusCreated
	if len(result.Failed) > 0 {
		// partial success is a first-class result, not an error
		status = http.StatusMultiStatus
	}
	c.JSON(status, result)
}

func listOrdersHandler(c *gin.Context) {
	var filter models.SupplierOrderFilter
	if raw := c.Query("statuses"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			status, err := models.ParseSupplierOrderStatus(strings.TrimSpace(part))
			if err != nil {
				respondError(c, utils.NewValidationError("invalid order status %q", part))
				return
			}
			filter.Statuses = append(filter.Statuses, status)
		}
	}

	orders, err := models.ListSupplierOrders(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func getOrderHandler(c *gin.Context) {
	orderId, err := pathId(c)
	if err != nil {
		respondError(c, err)
		return
	}

	order, err := models.GetSupplierOrder(c.Request.Context(), orderId)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func updateOrderStatusHandler(c *gin.Context) {
	orderId, err := pathId(c)
	if err != nil {
		respondError(c, err)
		return
	}

	var body struct {
		Status string  `json:"status" binding:"required"`
		Notes  *string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondBindError(c, err)
		return
	}

	order, err := ordering.UpdateOrderStatus(c.Request.Context(), orderId, body.Status, body.Notes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func updateOrderItemsHandler(c *gin.Context) {
	orderId, err := pathId(c)
	if err != nil {
		respondError(c, err)
		return
	}

	var body struct {
		Items []ordering.OrderItemEdit `json:"items" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondBindError(c, err)
		return
	}

	newTotal, err := ordering.UpdateOrderItems(c.Request.Context(), orderId, body.Items)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"new_total": newTotal})
}

func deleteOrderHandler(c *gin.Context) {
	orderId, err := pathId(c)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := ordering.DeleteOrder(c.Request.Context(), orderId); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": orderId})
}

func consolidationSavingsHandler(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "ComputeConsolidationSavings")
	defer span.End()

	report, err := ordering.ComputeConsolidationSavings(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"savings": report})
}

func orderHistoryHandler(c *gin.Context) {
	orderId, err := pathId(c)
	if err != nil {
		respondError(c, err)
		return
	}

	histories, err := models.ListHistories(c.Request.Context(), "supplier_orders", orderId)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": histories})
}

func pathId(c *gin.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return 0, utils.NewValidationError("invalid id %q", c.Param("id"))
	}
	return id, nil
}
