package models

import (
	"time"

	"github.com/google/uuid"
)

// Experience is a user-authored post. The author fields are a snapshot taken
// at post time: a later profile edit must not change past posts, so they are
// copied rather than joined against the live user record.
type Experience struct {
	ID                 uuid.UUID `json:"id"`
	Experience         string    `json:"experience"`
	TaggedEmail        *string   `json:"taggedEmail"`
	MessageToRecipient *string   `json:"messageToRecipient"`
	UserID             uuid.UUID `json:"userId"`
	UserName           string    `json:"userName"`
	UserEmail          string    `json:"userEmail"`
	UserPhoto          string    `json:"userPhoto"`
	CreatedAt          time.Time `json:"createdAt"`
}
