package models

import (
	"strings"

	"github.com/dmitrijs2005/quickflip/internal/common"
	"github.com/google/uuid"
)

// ItemID identifies an item either by a client-generated placeholder id
// (pending enrichment) or by a backend-issued id (confirmed). The zero value
// is not a valid id.
type ItemID struct {
	value   string
	pending bool
}

// NewPendingID returns a fresh placeholder id. Pending ids carry
// common.PendingIDPrefix plus a random UUID, so they cannot collide with each
// other or with backend ids.
func NewPendingID() ItemID {
	return ItemID{value: common.PendingIDPrefix + uuid.NewString(), pending: true}
}

// ConfirmedID wraps a backend-issued id.
func ConfirmedID(serverID string) ItemID {
	return ItemID{value: serverID}
}

func (id ItemID) String() string { return id.value }

// IsPending reports whether the id belongs to a placeholder awaiting
// enrichment.
func (id ItemID) IsPending() bool { return id.pending }

func (id ItemID) IsZero() bool { return id.value == "" }

// Short returns a prefix of the id suitable for terminal listings.
func (id ItemID) Short() string {
	v := strings.TrimPrefix(id.value, common.PendingIDPrefix)
	if len(v) > 8 {
		v = v[:8]
	}
	if id.pending {
		return common.PendingIDPrefix + v
	}
	return v
}
