// Package handle provides the HTTP handlers the router binds to gin routes:
// bind/validate the request, resolve the caller, call the collection
// facade, translate its result (or apperrors.Kind) to the wire response.
package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appctx "github.com/foliva/docengine/pkg/context"
	"github.com/foliva/docengine/pkg/internal/apperrors"
	"github.com/foliva/docengine/pkg/internal/authz"
	"github.com/foliva/docengine/pkg/internal/service"
	"github.com/foliva/docengine/pkg/internal/types"
	"github.com/foliva/docengine/pkg/internal/userinfo"
)

// Handlers bundles the collection facade and the actor-enrichment client
// the handlers dispatch to.
type Handlers struct {
	svc  *service.CollectionService
	info *userinfo.Client
}

func New(svc *service.CollectionService, info *userinfo.Client) *Handlers {
	return &Handlers{svc: svc, info: info}
}

func principal(c *gin.Context) authz.Principal {
	return appctx.GetPrincipal(c.Request.Context())
}

// writeError maps an apperrors-tagged error to the status code and body
// shape §6/§7 specify. Unauthorized always returns the plain-text body
// "Unauthorized"; the not-found, state-machine and uniqueness kinds return
// the structured {"message": ...} envelope with a fixed message per kind;
// a malformed request carries the error's own text in that envelope, and
// any other error is a 500 with a generic message.
func writeError(c *gin.Context, err error) {
	switch apperrors.KindOf(err) {
	case apperrors.KindUnauthorized:
		c.String(http.StatusUnauthorized, "Unauthorized")
	case apperrors.KindNotFound:
		c.JSON(http.StatusNotFound, types.ErrorBody{Message: "Not found"})
	case apperrors.KindDuplicateCollection:
		c.JSON(http.StatusConflict, types.ErrorBody{Message: "Duplicate collection name"})
	case apperrors.KindDuplicateDocument:
		c.JSON(http.StatusConflict, types.ErrorBody{Message: "Duplicate document"})
	case apperrors.KindAlreadyDeleted:
		c.JSON(http.StatusConflict, types.ErrorBody{Message: "Document already deleted"})
	case apperrors.KindNotInDeletedStage:
		c.JSON(http.StatusConflict, types.ErrorBody{Message: "Document is not in deleted stage"})
	case apperrors.KindMalformed:
		c.JSON(http.StatusBadRequest, types.ErrorBody{Message: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, types.ErrorBody{Message: "internal error"})
	}
}
