package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/studyhall/studyhall/models"
	"github.com/studyhall/studyhall/utils"
)

// OrderController manages the study-kit catalog and purchases.
type OrderController struct {
	db *gorm.DB
}

// NewOrderController creates an OrderController.
func NewOrderController(db *gorm.DB) *OrderController {
	return &OrderController{db: db}
}

// ListKits returns active kits for students; admins see inactive ones too.
func (o *OrderController) ListKits(ctx *gin.Context) {
	query := o.db.Model(&models.StudyKit{}).Order("created_at DESC")
	if !isAdmin(ctx) {
		query = query.Where("active = ?", true)
	}

	var kits []models.StudyKit
	if err := query.Find(&kits).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50070, "failed to list kits")
		return
	}

	utils.Success(ctx, gin.H{"items": kits})
}

// CreateKit adds a kit to the catalog.
func (o *OrderController) CreateKit(ctx *gin.Context) {
	var req struct {
		Name        string `json:"name" binding:"required,min=1,max=255"`
		Description string `json:"description"`
		PriceCents  int64  `json:"price_cents" binding:"required,gt=0"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40070, "invalid request payload")
		return
	}

	kit := models.StudyKit{
		Name:        utils.Sanitize(strings.TrimSpace(req.Name)),
		Description: utils.Sanitize(req.Description),
		PriceCents:  req.PriceCents,
		Active:      true,
	}
	if err := o.db.Create(&kit).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50071, "failed to create kit")
		return
	}

	utils.Success(ctx, gin.H{"kit": kit})
}

// UpdateKit edits kit fields, including the active flag.
func (o *OrderController) UpdateKit(ctx *gin.Context) {
	kitID, ok := parseUintParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40071, "invalid kit id")
		return
	}

	var kit models.StudyKit
	if err := o.db.First(&kit, kitID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40407, "kit not found")
		return
	}

	var req struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
		PriceCents  *int64  `json:"price_cents"`
		Active      *bool   `json:"active"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40070, "invalid request payload")
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = utils.Sanitize(strings.TrimSpace(*req.Name))
	}
	if req.Description != nil {
		updates["description"] = utils.Sanitize(*req.Description)
	}
	if req.PriceCents != nil && *req.PriceCents > 0 {
		updates["price_cents"] = *req.PriceCents
	}
	if req.Active != nil {
		updates["active"] = *req.Active
	}
	if len(updates) == 0 {
		utils.Error(ctx, http.StatusBadRequest, 40011, "nothing to update")
		return
	}

	if err := o.db.Model(&kit).Updates(updates).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50072, "failed to update kit")
		return
	}

	utils.Success(ctx, gin.H{"kit": kit})
}

// CreateOrder places an order for an active kit and, when Stripe is
// configured, creates a checkout session the buyer is sent to.
func (o *OrderController) CreateOrder(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req struct {
		KitID    uint `json:"kit_id" binding:"required"`
		Quantity int  `json:"quantity"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40070, "invalid request payload")
		return
	}
	quantity := req.Quantity
	if quantity < 1 {
		quantity = 1
	}
	if quantity > 20 {
		utils.Error(ctx, http.StatusBadRequest, 40072, "quantity too large")
		return
	}

	var kit models.StudyKit
	if err := o.db.Where("active = ?", true).First(&kit, req.KitID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40407, "kit not found")
		return
	}

	order := models.KitOrder{
		OrderNo:     uuid.NewString(),
		UserID:      userID,
		KitID:       kit.ID,
		Quantity:    quantity,
		AmountCents: kit.PriceCents * int64(quantity),
		Status:      models.OrderPending,
	}

	if utils.StripeEnabled() {
		checkoutURL, err := utils.CreateKitCheckout(order.OrderNo, kit.Name, kit.PriceCents, int64(quantity))
		if err != nil {
			utils.Sugar.Errorf("stripe checkout for order %s: %v", order.OrderNo, err)
			utils.Error(ctx, http.StatusBadGateway, 50273, "failed to start checkout")
			return
		}
		order.CheckoutURL = checkoutURL
	}

	if err := o.db.Create(&order).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50073, "failed to create order")
		return
	}

	utils.Success(ctx, gin.H{"order": order})
}

// MyOrders lists the caller's orders, newest first.
func (o *OrderController) MyOrders(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var orders []models.KitOrder
	if err := o.db.Preload("Kit").Where("user_id = ?", userID).
		Order("created_at DESC").Find(&orders).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50074, "failed to list orders")
		return
	}

	utils.Success(ctx, gin.H{"items": orders})
}

// ListOrders lets admins review all orders with optional status filter.
func (o *OrderController) ListOrders(ctx *gin.Context) {
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))
	status := strings.TrimSpace(ctx.Query("status"))

	query := o.db.Model(&models.KitOrder{}).Preload("Kit").Order("created_at DESC")
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50075, "failed to count orders")
		return
	}

	var orders []models.KitOrder
	if err := query.Offset((page - 1) * pageSize).Limit(pageSize).Find(&orders).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50074, "failed to list orders")
		return
	}

	utils.Success(ctx, gin.H{
		"items": orders,
		"pagination": gin.H{
			"page":      page,
			"page_size": pageSize,
			"total":     total,
		},
	})
}

// ConfirmPaid marks a pending order paid and books the income. Admin only;
// used after checking the Stripe dashboard or receiving payment out of band.
func (o *OrderController) ConfirmPaid(ctx *gin.Context) {
	orderNo := strings.TrimSpace(ctx.Param("order_no"))
	if orderNo == "" {
		utils.Error(ctx, http.StatusBadRequest, 40073, "invalid order number")
		return
	}

	var order models.KitOrder
	if err := o.db.Preload("Kit").Where("order_no = ?", orderNo).First(&order).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40408, "order not found")
		return
	}
	if order.Status != models.OrderPending {
		utils.Error(ctx, http.StatusConflict, 40905, "order is not pending")
		return
	}

	err := o.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&order).Update("status", models.OrderPaid).Error; err != nil {
			return err
		}
		entry := models.FinanceEntry{
			Kind:        models.FinanceIncome,
			Source:      "kit order " + order.OrderNo,
			AmountCents: order.AmountCents,
			OccurredAt:  time.Now(),
			Note:        order.Kit.Name,
		}
		return tx.Create(&entry).Error
	})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50076, "failed to confirm order")
		return
	}

	utils.Success(ctx, gin.H{"order": order})
}

// CancelOrder cancels a pending order. Buyers may cancel their own; admins any.
func (o *OrderController) CancelOrder(ctx *gin.Context) {
	orderNo := strings.TrimSpace(ctx.Param("order_no"))
	if orderNo == "" {
		utils.Error(ctx, http.StatusBadRequest, 40073, "invalid order number")
		return
	}

	var order models.KitOrder
	if err := o.db.Where("order_no = ?", orderNo).First(&order).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40408, "order not found")
		return
	}

	userID, _ := getUserID(ctx)
	if order.UserID != userID && !isAdmin(ctx) {
		utils.Error(ctx, http.StatusForbidden, 40304, "not your order")
		return
	}
	if order.Status != models.OrderPending {
		utils.Error(ctx, http.StatusConflict, 40905, "order is not pending")
		return
	}

	if err := o.db.Model(&order).Update("status", models.OrderCancelled).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50077, "failed to cancel order")
		return
	}

	utils.Success(ctx, gin.H{"order": order})
}
