package handler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/allservices/marketplace-api/internal/model"
	apperrors "github.com/allservices/marketplace-api/pkg/errors"
)

const principalKey = "principal"

// Principal is the authenticated caller, set by the auth middleware.
type Principal struct {
	ID    uuid.UUID
	Email string
	Role  model.StoredRole
}

func SetPrincipal(c *gin.Context, p Principal) {
	c.Set(principalKey, p)
}

func CurrentPrincipal(c *gin.Context) (Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return Principal{}, false
	}
	p, ok := v.(Principal)
	return p, ok
}

// UserID returns the caller id. Routes using it sit behind Authenticate.
func UserID(c *gin.Context) uuid.UUID {
	p, _ := CurrentPrincipal(c)
	return p.ID
}

// ParamID parses a uuid path parameter.
func ParamID(c *gin.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, apperrors.BadRequest("invalid "+name, err)
	}
	return id, nil
}

// BindJSON binds and validates the body, flattening validator errors into
// one message.
func BindJSON(c *gin.Context, req interface{}) error {
	if err := c.ShouldBindJSON(req); err != nil {
		return apperrors.BadRequest(bindMessage(err), err)
	}
	return nil
}

func bindMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "invalid request body"
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s: failed on %s", fe.Field(), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}
