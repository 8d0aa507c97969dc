package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	subdto "github.com/orris-inc/tenancy/internal/application/subscription/dto"
	"github.com/orris-inc/tenancy/internal/application/subscription/usecases"
	"github.com/orris-inc/tenancy/internal/infrastructure/persistence/seeds"
	"github.com/orris-inc/tenancy/internal/shared/authorization"
	"github.com/orris-inc/tenancy/internal/shared/constants"
	"github.com/orris-inc/tenancy/internal/shared/errors"
	"github.com/orris-inc/tenancy/internal/shared/logger"
	"github.com/orris-inc/tenancy/internal/shared/utils"
)

const maxCatalogBytes = 1 << 20

type PlanHandler struct {
	service planService
	logger  logger.Interface
}

func NewPlanHandler(service planService, logger logger.Interface) *PlanHandler {
	return &PlanHandler{service: service, logger: logger}
}

// ListPlans lists active plans. Staff may pass include_inactive=true.
func (h *PlanHandler) ListPlans(c *gin.Context) {
	p := utils.ParsePagination(c)
	role := authorization.UserRole(c.GetString(constants.ContextKeyRole))

	result, err := h.service.ListPlans(c.Request.Context(), usecases.ListPlansQuery{
		IncludeInactive: role.IsStaff() && c.Query("include_inactive") == "true",
		Page:            p.Page,
		PageSize:        p.PageSize,
	})
	if err != nil {
		h.logger.Errorw("failed to list plans", "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	list := subdto.ToPlanListDTO(result)
	utils.ListSuccessResponse(c, list.Plans, list.Total, p)
}

// SyncPlans upserts the catalog posted as a YAML document.
func (h *PlanHandler) SyncPlans(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxCatalogBytes)

	defs, err := seeds.LoadPlans(c.Request.Body)
	if err != nil {
		h.logger.Warnw("invalid plan catalog", "error", err)
		if !errors.IsAppError(err) {
			err = errors.NewValidationError("invalid plan catalog", err.Error())
		}
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.service.SyncPlans(c.Request.Context(), defs)
	if err != nil {
		h.logger.Errorw("failed to sync plans", "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "plan catalog synced", gin.H{
		"created": result.Created,
		"updated": result.Updated,
	})
}
