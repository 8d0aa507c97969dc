package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	subdto "github.com/orris-inc/tenancy/internal/application/subscription/dto"
	"github.com/orris-inc/tenancy/internal/application/subscription/usecases"
	"github.com/orris-inc/tenancy/internal/infrastructure/permission"
	"github.com/orris-inc/tenancy/internal/shared/constants"
	"github.com/orris-inc/tenancy/internal/shared/errors"
	"github.com/orris-inc/tenancy/internal/shared/logger"
	"github.com/orris-inc/tenancy/internal/shared/utils"
)

// SubscriptionHandler serves the tenant subscription endpoints. The tenant
// is always taken from the :id path segment, which the auth middleware has
// already checked against the caller.
type SubscriptionHandler struct {
	service     subscriptionService
	permissions permissionChecker
	logger      logger.Interface
}

func NewSubscriptionHandler(service subscriptionService, permissions permissionChecker, logger logger.Interface) *SubscriptionHandler {
	return &SubscriptionHandler{
		service:     service,
		permissions: permissions,
		logger:      logger,
	}
}

type SubscribeRequest struct {
	PlanID            uint `json:"plan_id" binding:"required,gt=0"`
	Override          bool `json:"override"`
	CustomEntitlement *int `json:"custom_entitlement" binding:"omitempty,gte=1"`
}

type ChangePlanRequest struct {
	PlanID uint `json:"plan_id" binding:"required,gt=0"`
}

type ExtendRequest struct {
	Days int `json:"days" binding:"required,gte=1,lte=3650"`
}

// GetCurrent returns the live subscription, or null data when the tenant has none.
func (h *SubscriptionHandler) GetCurrent(c *gin.Context) {
	tenantID, err := utils.ParseIDParam(c, "id", "tenant")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	sub, err := h.service.GetCurrentSubscription(c.Request.Context(), tenantID)
	if err != nil {
		h.logger.Errorw("failed to get current subscription", "error", err, "tenant_id", tenantID)
		utils.ErrorResponseWithError(c, err)
		return
	}

	if sub == nil {
		utils.SuccessResponse(c, http.StatusOK, "tenant has no active subscription", nil)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", subdto.ToSubscriptionDTO(sub, h.service.Now()))
}

func (h *SubscriptionHandler) Subscribe(c *gin.Context) {
	tenantID, err := utils.ParseIDParam(c, "id", "tenant")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	actor, err := actorFromContext(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for subscribe", "error", err)
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	if req.Override || req.CustomEntitlement != nil {
		role := c.GetString(constants.ContextKeyRole)
		allowed, err := h.permissions.Enforce(role, permission.ResourceSubscription, permission.ActionOverride)
		if err != nil {
			h.logger.Errorw("permission check failed", "error", err, "role", role)
			utils.ErrorResponse(c, http.StatusInternalServerError, "permission check failed")
			return
		}
		if !allowed {
			utils.ErrorResponseWithError(c, errors.NewForbiddenError("only admins may override plan rules"))
			return
		}
	}

	result, err := h.service.Subscribe(c.Request.Context(), usecases.SubscribeCommand{
		TenantID:          tenantID,
		PlanID:            req.PlanID,
		Actor:             actor,
		Override:          req.Override,
		CustomEntitlement: req.CustomEntitlement,
	})
	if err != nil {
		h.logger.Warnw("subscribe rejected", "error", err, "tenant_id", tenantID, "plan_id", req.PlanID, "actor", actor.String())
		utils.ErrorResponseWithError(c, err)
		return
	}

	status := http.StatusOK
	if result.RequiresPayment {
		status = http.StatusAccepted
	}
	utils.SuccessResponse(c, status, result.Message, subdto.ToSubscribeResultDTO(result, h.service.Now()))
}

func (h *SubscriptionHandler) ChangePlan(c *gin.Context) {
	tenantID, err := utils.ParseIDParam(c, "id", "tenant")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	actor, err := actorFromContext(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req ChangePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for change plan", "error", err)
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.service.ChangePlan(c.Request.Context(), usecases.ChangePlanCommand{
		TenantID:  tenantID,
		NewPlanID: req.PlanID,
		Actor:     actor,
	})
	if err != nil {
		h.logger.Warnw("plan change rejected", "error", err, "tenant_id", tenantID, "plan_id", req.PlanID)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "plan changed", subdto.ToChangePlanResultDTO(result, h.service.Now()))
}

// ValidatePlanChange is a dry run of ChangePlan for ?plan_id=.
func (h *SubscriptionHandler) ValidatePlanChange(c *gin.Context) {
	tenantID, err := utils.ParseIDParam(c, "id", "tenant")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	planID, err := utils.ParseIDQuery(c, "plan_id", "plan")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.service.ValidatePlanChange(c.Request.Context(), tenantID, planID)
	if err != nil {
		h.logger.Errorw("failed to validate plan change", "error", err, "tenant_id", tenantID, "plan_id", planID)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", subdto.ToPlanChangeValidationDTO(result))
}

func (h *SubscriptionHandler) Cancel(c *gin.Context) {
	tenantID, err := utils.ParseIDParam(c, "id", "tenant")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	actor, err := actorFromContext(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.service.Cancel(c.Request.Context(), usecases.CancelSubscriptionCommand{
		TenantID: tenantID,
		Actor:    actor,
	})
	if err != nil {
		h.logger.Errorw("failed to cancel subscription", "error", err, "tenant_id", tenantID)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "subscription cancelled", subdto.ToCancelResultDTO(result))
}

func (h *SubscriptionHandler) Extend(c *gin.Context) {
	tenantID, err := utils.ParseIDParam(c, "id", "tenant")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	actor, err := actorFromContext(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req ExtendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for extend", "error", err)
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.service.Extend(c.Request.Context(), usecases.ExtendSubscriptionCommand{
		TenantID: tenantID,
		Days:     req.Days,
		Actor:    actor,
	})
	if err != nil {
		h.logger.Warnw("extend rejected", "error", err, "tenant_id", tenantID, "days", req.Days)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "subscription extended", subdto.ToExtendResultDTO(result, h.service.Now()))
}
