package fragment

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ID is the stable identity of a mesh fragment: two 64-bit halves of a 128-bit key.
// The zero ID is invalid.
type ID struct {
	Hi uint64
	Lo uint64
}

// InvalidID is the zero ID.
var InvalidID = ID{}

// IsValid reports whether id is not the zero ID.
func (id ID) IsValid() bool {
	return id != InvalidID
}

// String returns "<hi>-<lo>" in decimal, the form accepted by ParseID.
func (id ID) String() string {
	return fmt.Sprintf("%d-%d", id.Hi, id.Lo)
}

// ParseID parses "<hi>-<lo>" or a mesh object name of the form "<prefix> <hi>-<lo>".
func ParseID(s string) (ID, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return InvalidID, errors.Errorf("empty fragment id %q", s)
	}
	token := fields[len(fields)-1]
	halves := strings.Split(token, "-")
	if len(halves) != 2 {
		return InvalidID, errors.Errorf("fragment id %q is not of the form <hi>-<lo>", s)
	}
	hi, err := strconv.ParseUint(halves[0], 10, 64)
	if err != nil {
		return InvalidID, errors.Wrapf(err, "bad high half in fragment id %q", s)
	}
	lo, err := strconv.ParseUint(halves[1], 10, 64)
	if err != nil {
		return InvalidID, errors.Wrapf(err, "bad low half in fragment id %q", s)
	}
	return ID{Hi: hi, Lo: lo}, nil
}

// IDFromUUID splits a UUID into an ID, big-endian.
func IDFromUUID(u uuid.UUID) ID {
	return ID{Hi: binary.BigEndian.Uint64(u[:8]), Lo: binary.BigEndian.Uint64(u[8:])}
}

// UUID reassembles the ID into a UUID.
func (id ID) UUID() uuid.UUID {
	var u uuid.UUID
	binary.BigEndian.PutUint64(u[:8], id.Hi)
	binary.BigEndian.PutUint64(u[8:], id.Lo)
	return u
}
