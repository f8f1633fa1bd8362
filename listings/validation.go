package listings

import (
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/marketd/marketd"
	"github.com/marketd/marketd/kit/platform/errors"
)

// Field bounds for caller-supplied listing fields. Length bounds are
// inclusive on both ends.
const (
	NameMinLength        = 3
	NameMaxLength        = 100
	DescriptionMaxLength = 1000
)

var errEmptyUpdate = &errors.Error{
	Code: errors.EInvalid,
	Msg:  "update contains no fields",
}

// ValidateListingCreate checks every field rule independently and reports
// all violations together, so a caller can surface every inline error at
// once instead of fixing them one round trip at a time.
func ValidateListingCreate(create marketd.ListingCreate) error {
	fields := map[string]string{}
	validateName(create.Name, fields)
	validatePrice(create.Price, fields)
	validateDescription(create.Description, fields)
	return fieldErrors(fields)
}

// ValidateListingUpdate applies the same field rules as create to whichever
// fields the update sets. An update that sets nothing is itself invalid.
func ValidateListingUpdate(upd marketd.ListingUpdate) error {
	if !upd.HasChanges() {
		return errEmptyUpdate
	}

	fields := map[string]string{}
	if upd.Name != nil {
		validateName(*upd.Name, fields)
	}
	if upd.Price != nil {
		validatePrice(*upd.Price, fields)
	}
	if upd.Description != nil {
		validateDescription(*upd.Description, fields)
	}
	return fieldErrors(fields)
}

func validateName(name string, fields map[string]string) {
	if n := utf8.RuneCountInString(name); n < NameMinLength {
		fields["name"] = fmt.Sprintf("must be no fewer than %d characters", NameMinLength)
	} else if n > NameMaxLength {
		fields["name"] = fmt.Sprintf("must be no greater than %d characters", NameMaxLength)
	}
}

func validatePrice(price float64, fields map[string]string) {
	if math.IsNaN(price) || math.IsInf(price, 0) {
		fields["price"] = "must be a finite number"
	} else if price <= 0 {
		fields["price"] = "must be greater than 0"
	}
}

func validateDescription(description string, fields map[string]string) {
	if utf8.RuneCountInString(description) > DescriptionMaxLength {
		fields["description"] = fmt.Sprintf("must be no greater than %d characters", DescriptionMaxLength)
	}
}

func fieldErrors(fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	return &errors.Error{
		Code:   errors.EInvalid,
		Msg:    "listing validation failed",
		Fields: fields,
	}
}
