package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	subdto "github.com/orris-inc/tenancy/internal/application/subscription/dto"
	"github.com/orris-inc/tenancy/internal/shared/logger"
	"github.com/orris-inc/tenancy/internal/shared/utils"
)

type EntitlementHandler struct {
	service entitlementService
	logger  logger.Interface
}

func NewEntitlementHandler(service entitlementService, logger logger.Interface) *EntitlementHandler {
	return &EntitlementHandler{service: service, logger: logger}
}

func (h *EntitlementHandler) GetAllowance(c *gin.Context) {
	tenantID, err := utils.ParseIDParam(c, "id", "tenant")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	allowance, err := h.service.ComputeAllowed(c.Request.Context(), tenantID)
	if err != nil {
		h.logger.Errorw("failed to compute allowance", "error", err, "tenant_id", tenantID)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", subdto.ToAllowanceDTO(allowance))
}
