package service

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/teambition/rrule-go"

	"github.com/noah-isme/rugby-club-api/internal/calendar"
	"github.com/noah-isme/rugby-club-api/internal/models"
)

// NewValidator returns a validator with the club specific tags registered.
func NewValidator() *validator.Validate {
	v := validator.New()
	registerClubValidations(v)
	return v
}

func registerClubValidations(v *validator.Validate) {
	_ = v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		raw := fl.Field().String()
		_, _, ok := calendar.ParseClock(raw)
		return ok && len(raw) == 5
	})
	_ = v.RegisterValidation("match_status", func(fl validator.FieldLevel) bool {
		switch models.MatchStatus(strings.ToUpper(fl.Field().String())) {
		case models.MatchStatusScheduled, models.MatchStatusLive, models.MatchStatusFinished, models.MatchStatusPostponed, models.MatchStatusCancelled:
			return true
		default:
			return false
		}
	})
	_ = v.RegisterValidation("stream_status", func(fl validator.FieldLevel) bool {
		switch models.StreamStatus(strings.ToUpper(fl.Field().String())) {
		case models.StreamStatusUpcoming, models.StreamStatusLive, models.StreamStatusEnded:
			return true
		default:
			return false
		}
	})
	_ = v.RegisterValidation("member_role", func(fl validator.FieldLevel) bool {
		switch models.MemberRole(strings.ToUpper(fl.Field().String())) {
		case models.MemberRolePlayer, models.MemberRoleCoach, models.MemberRoleStaff:
			return true
		default:
			return false
		}
	})
	_ = v.RegisterValidation("rrule", func(fl validator.FieldLevel) bool {
		_, err := rrule.StrToROption(strings.TrimPrefix(fl.Field().String(), "RRULE:"))
		return err == nil
	})
}

// ensureValidator falls back to NewValidator when validate is nil. A non-nil
// validator is shared as-is and is expected to come from NewValidator.
func ensureValidator(validate *validator.Validate) *validator.Validate {
	if validate == nil {
		return NewValidator()
	}
	return validate
}
