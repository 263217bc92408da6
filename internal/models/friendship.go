package models

import (
	"time"

	"github.com/google/uuid"
)

type FriendRequestStatus string

const (
	FriendRequestStatusPending  FriendRequestStatus = "pending"
	FriendRequestStatusAccepted FriendRequestStatus = "accepted"
	FriendRequestStatusDeclined FriendRequestStatus = "declined"
)

type FriendRequest struct {
	ID          uuid.UUID           `json:"id"`
	SenderID    uuid.UUID           `json:"sender_id"`
	RecipientID uuid.UUID           `json:"recipient_id"`
	Status      FriendRequestStatus `json:"status"`
	CreatedAt   time.Time           `json:"created_at"`
}

// FriendRequestWithProfile carries the other party's profile so list
// endpoints don't need a second lookup.
type FriendRequestWithProfile struct {
	FriendRequest
	Sender    *UserProfile `json:"sender,omitempty"`
	Recipient *UserProfile `json:"recipient,omitempty"`
}

// Friendship is a confirmed relationship, stored once per pair with
// User1ID < User2ID.
type Friendship struct {
	User1ID   uuid.UUID `json:"user1_id"`
	User2ID   uuid.UUID `json:"user2_id"`
	CreatedAt time.Time `json:"created_at"`
}

// NormalizePair orders two user IDs so a pair always maps to the same
// storage row regardless of direction. Must be applied before any
// friendship lookup or insert.
func NormalizePair(a, b uuid.UUID) (uuid.UUID, uuid.UUID) {
	if a.String() < b.String() {
		return a, b
	}
	return b, a
}
