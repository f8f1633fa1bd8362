package platform

import (
	"database/sql/driver"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/marketd/marketd/kit/platform/errors"
)

// IDLength is the exact length a string of an ID must have when encoded.
const IDLength = 16

var (
	// ErrInvalidID signifies invalid IDs.
	ErrInvalidID = &errors.Error{
		Code: errors.EInvalid,
		Msg:  "invalid ID",
	}

	// ErrInvalidIDLength is returned when an ID string does not have the
	// exact encoded length.
	ErrInvalidIDLength = &errors.Error{
		Code: errors.EInvalid,
		Msg:  "id must have a length of 16 bytes",
	}
)

// ID is a unique identifier. Its zero value is not a valid ID.
type ID uint64

// IDGenerator represents a generator for IDs.
type IDGenerator interface {
	// ID creates unique byte slice ID.
	ID() ID
}

// InvalidID returns a zero ID.
func InvalidID() ID {
	return 0
}

// IDFromString creates an ID from a given string.
func IDFromString(str string) (*ID, error) {
	var id ID
	if err := id.DecodeFromString(str); err != nil {
		return nil, err
	}
	return &id, nil
}

// Valid checks whether the receiving ID is a valid one or not.
func (i ID) Valid() bool {
	return i != 0
}

// Decode parses b as a hex-encoded byte-slice-string.
func (i *ID) Decode(b []byte) error {
	if len(b) != IDLength {
		return ErrInvalidIDLength
	}

	res, err := strconv.ParseUint(string(b), 16, 64)
	if err != nil {
		return ErrInvalidID
	}

	if *i = ID(res); !i.Valid() {
		return ErrInvalidID
	}
	return nil
}

// DecodeFromString parses s as a hex-encoded string.
func (i *ID) DecodeFromString(s string) error {
	return i.Decode([]byte(s))
}

// Encode converts ID to its hex-encoded byte-slice representation.
func (i ID) Encode() ([]byte, error) {
	if !i.Valid() {
		return nil, ErrInvalidID
	}

	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(i))

	dst := make([]byte, hex.EncodedLen(len(b)))
	hex.Encode(dst, b)
	return dst, nil
}

// String returns the ID as a hex encoded string.
// Returns an empty string in the case the ID is invalid.
func (i ID) String() string {
	enc, err := i.Encode()
	if err != nil {
		return ""
	}
	return string(enc)
}

// MarshalText encodes i as text.
// Providing this method is a fallback for json.Marshal,
// with the added benefit that IDs are a valid JSON object key.
func (i ID) MarshalText() ([]byte, error) {
	if !i.Valid() {
		return []byte(""), nil
	}
	return i.Encode()
}

// UnmarshalText decodes i from a text representation.
func (i *ID) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*i = InvalidID()
		return nil
	}
	return i.Decode(b)
}

// Value implements driver.Valuer so IDs are stored as their hex encoding.
func (i ID) Value() (driver.Value, error) {
	return i.String(), nil
}

// Scan implements sql.Scanner for reading IDs back out of TEXT columns.
func (i *ID) Scan(value interface{}) error {
	switch v := value.(type) {
	case string:
		return i.DecodeFromString(v)
	case []byte:
		return i.Decode(v)
	default:
		return &errors.Error{
			Code: errors.EInternal,
			Msg:  fmt.Sprintf("cannot scan %T into an ID", value),
		}
	}
}
