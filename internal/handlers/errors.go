package handlers

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"booking-service/internal/dto"
	"booking-service/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func init() {
	// Report json/form names in field errors instead of Go field names.
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
				if name != "" && name != "-" {
					return name
				}
			}
			return f.Name
		})
	}
}

func bindFailed(c *gin.Context, log *zap.Logger, what string, err error) {
	log.Warn("invalid "+what, zap.Error(err))
	var fields []dto.FieldError
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			fields = append(fields, dto.FieldError{
				Field:   fe.Field(),
				Message: fieldMessage(fe),
				Tag:     fe.Tag(),
			})
		}
	}
	c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid "+what, fields))
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "uuid":
		return "must be a UUID"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	}
	return "is invalid"
}

// writeError maps service error kinds onto HTTP statuses.
func writeError(c *gin.Context, log *zap.Logger, op string, err error) {
	msg := err.Error()
	switch service.KindOf(err) {
	case service.KindValidation:
		c.JSON(http.StatusBadRequest, dto.NewValidationError(msg, nil))
	case service.KindNotFound:
		c.JSON(http.StatusNotFound, dto.NewNotFoundError(msg))
	case service.KindConflict:
		c.JSON(http.StatusConflict, dto.NewConflictError(msg))
	case service.KindTerminalState:
		c.JSON(http.StatusConflict, dto.NewTerminalStateError(msg))
	case service.KindConstraintViolation:
		log.Warn(op+": constraint violation", zap.Error(err))
		c.JSON(http.StatusConflict, dto.NewConstraintViolationError(msg))
	case service.KindForbidden:
		c.JSON(http.StatusForbidden, dto.NewForbiddenError(msg))
	case service.KindUnauthorized:
		c.JSON(http.StatusUnauthorized, dto.NewUnauthorizedError(msg))
	default:
		log.Error(op+" failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.NewInternalError(""))
	}
}

func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid id", []dto.FieldError{
			{Field: "id", Message: "must be a UUID", Tag: "uuid"},
		}))
		return uuid.Nil, false
	}
	return id, true
}

// optUUID parses values already checked by the "uuid" binding tag.
func optUUID(s *string) *uuid.UUID {
	if s == nil {
		return nil
	}
	id, err := uuid.Parse(*s)
	if err != nil {
		return nil
	}
	return &id
}

func queryUUID(s string) *uuid.UUID {
	if s == "" {
		return nil
	}
	return optUUID(&s)
}

func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
