// Package validators holds the field rule sets of every clinic entity.
//
// Each Validate function checks a candidate record for one operation and returns
// nil or an *apperrors.ValidationError listing every violated field by its json name.
package validators

import (
	"errors"
	"time"

	"RxClinic/apperrors"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/shopspring/decimal"
)

// Op is the write operation a record is validated for.
type Op int

const (
	OpCreate Op = iota
	OpUpdate
)

const (
	DateLayout   = "2006-01-02"
	maxString    = 255
	maxAllergy   = 50
	minPassword  = 8
	maxPassword  = 72
	maxMoneyUnit = 100000000
)

var (
	errInvalidTime     = validation.NewError("validation_invalid_time", "must be a valid time (HH:MM or HH:MM:SS)")
	errInvalidDate     = validation.NewError("validation_invalid_date", "must be a valid date (YYYY-MM-DD)")
	errNegativeAmount  = validation.NewError("validation_negative_amount", "must not be negative")
	errAmountPrecision = validation.NewError("validation_amount_precision", "must have at most 2 decimal places")
	errAmountTooLarge  = validation.NewError("validation_amount_too_large", "must be less than 100000000")
)

func in(values []string) validation.Rule {
	allowed := make([]interface{}, len(values))
	for i, v := range values {
		allowed[i] = v
	}
	return validation.In(allowed...)
}

func text() validation.Rule {
	return validation.RuneLength(0, maxString)
}

func date() validation.Rule {
	return validation.Date(DateLayout).ErrorObject(errInvalidDate)
}

var clockTime = validation.By(func(value interface{}) error {
	value, isNil := validation.Indirect(value)
	s, ok := value.(string)
	if isNil || !ok || s == "" {
		return nil
	}
	for _, layout := range []string{"15:04", "15:04:05"} {
		if _, err := time.Parse(layout, s); err == nil {
			return nil
		}
	}
	return errInvalidTime
})

var money = validation.By(func(value interface{}) error {
	var d decimal.Decimal
	switch v := value.(type) {
	case decimal.Decimal:
		d = v
	case decimal.NullDecimal:
		if !v.Valid {
			return nil
		}
		d = v.Decimal
	case *decimal.Decimal:
		if v == nil {
			return nil
		}
		d = *v
	default:
		return nil
	}
	switch {
	case d.IsNegative():
		return errNegativeAmount
	case !d.Equal(d.Round(2)):
		return errAmountPrecision
	case d.GreaterThanOrEqual(decimal.NewFromInt(maxMoneyUnit)):
		return errAmountTooLarge
	}
	return nil
})

// required is enforced on create. An update may leave a pointer field absent
// but may not blank a value.
func required(op Op) validation.Rule {
	return validation.When(op == OpCreate, validation.Required).Else(validation.NilOrNotEmpty)
}

func uuidRef(op Op) []validation.Rule {
	return []validation.Rule{required(op), is.UUIDv4}
}

// toValidationError converts ozzo errors into the application taxonomy.
// Internal errors (misconfigured rules) are returned unchanged.
func toValidationError(err error, extra map[string]string) error {
	fields := map[string]string{}
	for k, v := range extra {
		fields[k] = v
	}
	if err != nil {
		var errs validation.Errors
		if !errors.As(err, &errs) {
			return err
		}
		collect(fields, "", errs)
	}
	if len(fields) == 0 {
		return nil
	}
	return apperrors.NewValidationError(fields)
}

func collect(fields map[string]string, prefix string, errs validation.Errors) {
	for name, e := range errs {
		var nested validation.Errors
		if errors.As(e, &nested) {
			collect(fields, prefix+name+".", nested)
			continue
		}
		fields[prefix+name] = e.Error()
	}
}
