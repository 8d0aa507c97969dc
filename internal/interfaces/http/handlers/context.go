package handlers

import (
	"github.com/gin-gonic/gin"

	vo "github.com/orris-inc/tenancy/internal/domain/subscription/valueobjects"
	"github.com/orris-inc/tenancy/internal/shared/constants"
	"github.com/orris-inc/tenancy/internal/shared/errors"
)

// actorFromContext rebuilds the actor the auth middleware stored.
func actorFromContext(c *gin.Context) (vo.Actor, error) {
	if _, ok := c.Get(constants.ContextKeyRole); !ok {
		return vo.Actor{}, errors.NewUnauthorizedError("user not authenticated")
	}
	actor, err := vo.ParseActor(c.GetString(constants.ContextKeyActorKind), c.GetUint(constants.ContextKeyActorID))
	if err != nil {
		return vo.Actor{}, errors.NewUnauthorizedError("invalid caller identity")
	}
	return actor, nil
}
