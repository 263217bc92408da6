package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/gatherly/gatherly/internal/models"
)

var (
	ErrCannotFriendSelf    = errors.New("cannot send friend request to yourself")
	ErrAlreadyFriends      = errors.New("already friends with this user")
	ErrRequestExists       = errors.New("a pending friend request already exists between these users")
	ErrRequestNotFound     = errors.New("friend request not found")
	ErrNotRequestRecipient = errors.New("only the recipient can act on this request")
	ErrNotRequestSender    = errors.New("only the sender can cancel this request")
	ErrRequestNotPending   = errors.New("friend request is not pending")
	ErrFriendshipNotFound  = errors.New("friendship not found")
)

const requestColumns = "id, sender_id, recipient_id, status, created_at"

// FriendService owns the friend request state machine and the friendship
// ledger. Requests move pending -> accepted/declined, or are deleted by a
// sender cancel. Accepting a request creates the pair-normalized ledger row.
type FriendService struct {
	db DB
}

func NewFriendService(db DB) *FriendService {
	return &FriendService{db: db}
}

func (s *FriendService) SendRequest(ctx context.Context, senderID, recipientID uuid.UUID) (*models.FriendRequest, error) {
	if senderID == recipientID {
		return nil, ErrCannotFriendSelf
	}

	var recipientExists bool
	err := s.db.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)",
		recipientID,
	).Scan(&recipientExists)
	if err != nil {
		return nil, fmt.Errorf("checking recipient: %w", err)
	}
	if !recipientExists {
		return nil, ErrUserNotFound
	}

	user1, user2 := models.NormalizePair(senderID, recipientID)
	var alreadyFriends bool
	err = s.db.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM friendships WHERE user1_id = $1 AND user2_id = $2)",
		user1, user2,
	).Scan(&alreadyFriends)
	if err != nil {
		return nil, fmt.Errorf("checking friendship: %w", err)
	}
	if alreadyFriends {
		return nil, ErrAlreadyFriends
	}

	var pendingExists bool
	err = s.db.QueryRow(ctx,
		`SELECT EXISTS(
			SELECT 1 FROM friend_requests
			WHERE status = 'pending'
			  AND ((sender_id = $1 AND recipient_id = $2)
			    OR (sender_id = $2 AND recipient_id = $1))
		)`,
		senderID, recipientID,
	).Scan(&pendingExists)
	if err != nil {
		return nil, fmt.Errorf("checking pending requests: %w", err)
	}
	if pendingExists {
		return nil, ErrRequestExists
	}

	request := &models.FriendRequest{}
	err = s.db.QueryRow(ctx,
		`INSERT INTO friend_requests (sender_id, recipient_id)
		 VALUES ($1, $2)
		 RETURNING `+requestColumns,
		senderID, recipientID,
	).Scan(scanRequestDest(request)...)
	if isUniqueViolation(err) {
		// Lost the race against a concurrent duplicate; the partial
		// unique index is authoritative.
		return nil, ErrRequestExists
	}
	if err != nil {
		return nil, fmt.Errorf("creating friend request: %w", err)
	}

	return request, nil
}

// AcceptRequest transitions the request to accepted and records the
// friendship in the same transaction.
func (s *FriendService) AcceptRequest(ctx context.Context, actorID, requestID uuid.UUID) (*models.FriendRequest, error) {
	request, err := s.getByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	if request.RecipientID != actorID {
		return nil, ErrNotRequestRecipient
	}
	if request.Status != models.FriendRequestStatusPending {
		return nil, ErrRequestNotPending
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning accept transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback(ctx)
		}
	}()

	tag, err := tx.Exec(ctx,
		"UPDATE friend_requests SET status = 'accepted' WHERE id = $1 AND status = 'pending'",
		requestID,
	)
	if err != nil {
		return nil, fmt.Errorf("accepting friend request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// A concurrent accept or decline got there first.
		return nil, ErrRequestNotPending
	}

	user1, user2 := models.NormalizePair(request.SenderID, request.RecipientID)
	_, err = tx.Exec(ctx,
		"INSERT INTO friendships (user1_id, user2_id) VALUES ($1, $2)",
		user1, user2,
	)
	if isUniqueViolation(err) {
		return nil, ErrAlreadyFriends
	}
	if err != nil {
		return nil, fmt.Errorf("creating friendship: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing accept transaction: %w", err)
	}
	committed = true

	request.Status = models.FriendRequestStatusAccepted
	return request, nil
}

func (s *FriendService) DeclineRequest(ctx context.Context, actorID, requestID uuid.UUID) error {
	request, err := s.getByID(ctx, requestID)
	if err != nil {
		return err
	}

	if request.RecipientID != actorID {
		return ErrNotRequestRecipient
	}
	if request.Status != models.FriendRequestStatusPending {
		return ErrRequestNotPending
	}

	_, err = s.db.Exec(ctx,
		"UPDATE friend_requests SET status = 'declined' WHERE id = $1",
		requestID,
	)
	if err != nil {
		return fmt.Errorf("declining friend request: %w", err)
	}

	return nil
}

// CancelRequest deletes a pending request entirely; only the sender may
// cancel, and only while the request is still pending.
func (s *FriendService) CancelRequest(ctx context.Context, actorID, requestID uuid.UUID) error {
	request, err := s.getByID(ctx, requestID)
	if err != nil {
		return err
	}

	if request.SenderID != actorID {
		return ErrNotRequestSender
	}
	if request.Status != models.FriendRequestStatusPending {
		return ErrRequestNotPending
	}

	_, err = s.db.Exec(ctx,
		"DELETE FROM friend_requests WHERE id = $1",
		requestID,
	)
	if err != nil {
		return fmt.Errorf("canceling friend request: %w", err)
	}

	return nil
}

// Unfriend removes the ledger row and purges every request between the
// pair, in both directions, so a later SendRequest starts clean.
func (s *FriendService) Unfriend(ctx context.Context, actorID, otherID uuid.UUID) error {
	user1, user2 := models.NormalizePair(actorID, otherID)

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning unfriend transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback(ctx)
		}
	}()

	tag, err := tx.Exec(ctx,
		"DELETE FROM friendships WHERE user1_id = $1 AND user2_id = $2",
		user1, user2,
	)
	if err != nil {
		return fmt.Errorf("deleting friendship: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrFriendshipNotFound
	}

	_, err = tx.Exec(ctx,
		`DELETE FROM friend_requests
		 WHERE (sender_id = $1 AND recipient_id = $2)
		    OR (sender_id = $2 AND recipient_id = $1)`,
		actorID, otherID,
	)
	if err != nil {
		return fmt.Errorf("purging friend requests: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing unfriend transaction: %w", err)
	}
	committed = true

	return nil
}

func (s *FriendService) ListFriends(ctx context.Context, userID uuid.UUID) ([]models.UserProfile, error) {
	rows, err := s.db.Query(ctx,
		`SELECT u.id, u.full_name, u.profile_pic, u.bio
		 FROM friendships f
		 JOIN users u ON u.id = CASE WHEN f.user1_id = $1 THEN f.user2_id ELSE f.user1_id END
		 WHERE f.user1_id = $1 OR f.user2_id = $1
		 ORDER BY u.full_name`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing friends: %w", err)
	}
	defer rows.Close()

	return collectProfiles(rows)
}

// ListRecommended returns onboarded users the actor is not already
// friends with. No ranking; callers get a plain set difference.
func (s *FriendService) ListRecommended(ctx context.Context, userID uuid.UUID) ([]models.UserProfile, error) {
	rows, err := s.db.Query(ctx,
		`SELECT u.id, u.full_name, u.profile_pic, u.bio
		 FROM users u
		 WHERE u.id != $1
		   AND u.is_onboarded
		   AND NOT EXISTS (
			SELECT 1 FROM friendships f
			WHERE (f.user1_id = $1 AND f.user2_id = u.id)
			   OR (f.user1_id = u.id AND f.user2_id = $1)
		   )
		 ORDER BY u.full_name`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing recommended users: %w", err)
	}
	defer rows.Close()

	return collectProfiles(rows)
}

// ListIncomingRequests returns pending requests addressed to the actor,
// with the sender's profile resolved.
func (s *FriendService) ListIncomingRequests(ctx context.Context, userID uuid.UUID) ([]models.FriendRequestWithProfile, error) {
	rows, err := s.db.Query(ctx,
		`SELECT r.id, r.sender_id, r.recipient_id, r.status, r.created_at,
		        u.id, u.full_name, u.profile_pic, u.bio
		 FROM friend_requests r
		 JOIN users u ON u.id = r.sender_id
		 WHERE r.recipient_id = $1 AND r.status = 'pending'
		 ORDER BY r.created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing incoming requests: %w", err)
	}
	defer rows.Close()

	return collectRequests(rows, requestSideSender)
}

// ListAcceptedRequests returns requests the actor sent that the other
// party accepted, with the recipient's profile resolved.
func (s *FriendService) ListAcceptedRequests(ctx context.Context, userID uuid.UUID) ([]models.FriendRequestWithProfile, error) {
	rows, err := s.db.Query(ctx,
		`SELECT r.id, r.sender_id, r.recipient_id, r.status, r.created_at,
		        u.id, u.full_name, u.profile_pic, u.bio
		 FROM friend_requests r
		 JOIN users u ON u.id = r.recipient_id
		 WHERE r.sender_id = $1 AND r.status = 'accepted'
		 ORDER BY r.created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing accepted requests: %w", err)
	}
	defer rows.Close()

	return collectRequests(rows, requestSideRecipient)
}

// ListOutgoingRequests returns the actor's own pending requests, with the
// recipient's profile resolved.
func (s *FriendService) ListOutgoingRequests(ctx context.Context, userID uuid.UUID) ([]models.FriendRequestWithProfile, error) {
	rows, err := s.db.Query(ctx,
		`SELECT r.id, r.sender_id, r.recipient_id, r.status, r.created_at,
		        u.id, u.full_name, u.profile_pic, u.bio
		 FROM friend_requests r
		 JOIN users u ON u.id = r.recipient_id
		 WHERE r.sender_id = $1 AND r.status = 'pending'
		 ORDER BY r.created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing outgoing requests: %w", err)
	}
	defer rows.Close()

	return collectRequests(rows, requestSideRecipient)
}

func (s *FriendService) getByID(ctx context.Context, requestID uuid.UUID) (*models.FriendRequest, error) {
	request := &models.FriendRequest{}
	err := s.db.QueryRow(ctx,
		"SELECT "+requestColumns+" FROM friend_requests WHERE id = $1",
		requestID,
	).Scan(scanRequestDest(request)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrRequestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting friend request: %w", err)
	}
	return request, nil
}

func scanRequestDest(r *models.FriendRequest) []any {
	return []any{&r.ID, &r.SenderID, &r.RecipientID, &r.Status, &r.CreatedAt}
}

type requestSide int

const (
	requestSideSender requestSide = iota
	requestSideRecipient
)

func collectRequests(rows Rows, side requestSide) ([]models.FriendRequestWithProfile, error) {
	var requests []models.FriendRequestWithProfile
	for rows.Next() {
		var r models.FriendRequestWithProfile
		var profile models.UserProfile
		err := rows.Scan(
			&r.ID, &r.SenderID, &r.RecipientID, &r.Status, &r.CreatedAt,
			&profile.ID, &profile.FullName, &profile.ProfilePic, &profile.Bio,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning friend request: %w", err)
		}
		if side == requestSideSender {
			r.Sender = &profile
		} else {
			r.Recipient = &profile
		}
		requests = append(requests, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading friend requests: %w", err)
	}
	if requests == nil {
		requests = []models.FriendRequestWithProfile{}
	}
	return requests, nil
}

func collectProfiles(rows Rows) ([]models.UserProfile, error) {
	var profiles []models.UserProfile
	for rows.Next() {
		var p models.UserProfile
		if err := rows.Scan(&p.ID, &p.FullName, &p.ProfilePic, &p.Bio); err != nil {
			return nil, fmt.Errorf("scanning user profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading user profiles: %w", err)
	}
	if profiles == nil {
		profiles = []models.UserProfile{}
	}
	return profiles, nil
}
