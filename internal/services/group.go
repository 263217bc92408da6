package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/gatherly/gatherly/internal/models"
)

var (
	ErrGroupNameRequired = errors.New("group name is required")
	ErrGroupNotFound     = errors.New("group not found")
	ErrAlreadyMember     = errors.New("already a member of this group")
)

const (
	groupColumns = "id, name, code, image, created_by, created_at"

	// joinCodeAlphabet avoids ambiguous characters (0/O, 1/I/L).
	joinCodeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"
	joinCodeLength   = 6
	joinCodeAttempts = 5
)

// GroupService owns group records and membership. Chat provisioning runs
// after the local write commits; a provider failure leaves the local state
// in place and surfaces to the caller as an upstream error.
type GroupService struct {
	db   DB
	chat ChatServiceInterface
}

func NewGroupService(db DB, chat ChatServiceInterface) *GroupService {
	return &GroupService{db: db, chat: chat}
}

func (s *GroupService) Create(ctx context.Context, creator *models.User, name, image string) (*models.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrGroupNameRequired
	}

	group, err := s.insertGroup(ctx, creator.ID, name, image)
	if err != nil {
		return nil, err
	}

	// The group is committed; a provisioning failure does not roll it
	// back.
	if err := s.chat.EnsureGroupChannel(ctx, group, creator); err != nil {
		return group, fmt.Errorf("provisioning group channel: %w", err)
	}

	return group, nil
}

// insertGroup persists the group and its creator membership, retrying
// with a fresh join code on the unlikely code collision.
func (s *GroupService) insertGroup(ctx context.Context, creatorID uuid.UUID, name, image string) (*models.Group, error) {
	for attempt := 0; attempt < joinCodeAttempts; attempt++ {
		code, err := generateJoinCode()
		if err != nil {
			return nil, err
		}

		tx, err := s.db.Begin(ctx)
		if err != nil {
			return nil, fmt.Errorf("beginning group transaction: %w", err)
		}

		group := &models.Group{}
		err = tx.QueryRow(ctx,
			`INSERT INTO groups (name, code, image, created_by)
			 VALUES ($1, $2, $3, $4)
			 RETURNING `+groupColumns,
			name, code, image, creatorID,
		).Scan(scanGroupDest(group)...)
		if isUniqueViolation(err) {
			_ = tx.Rollback(ctx)
			continue
		}
		if err != nil {
			_ = tx.Rollback(ctx)
			return nil, fmt.Errorf("creating group: %w", err)
		}

		_, err = tx.Exec(ctx,
			"INSERT INTO group_members (group_id, user_id) VALUES ($1, $2)",
			group.ID, creatorID,
		)
		if err != nil {
			_ = tx.Rollback(ctx)
			return nil, fmt.Errorf("adding creator to group: %w", err)
		}

		if err := tx.Commit(ctx); err != nil {
			return nil, fmt.Errorf("committing group transaction: %w", err)
		}

		group.Members = []uuid.UUID{creatorID}
		return group, nil
	}

	return nil, fmt.Errorf("generating unique join code: exhausted %d attempts", joinCodeAttempts)
}

func (s *GroupService) Join(ctx context.Context, actor *models.User, code string) (*models.Group, error) {
	group := &models.Group{}
	err := s.db.QueryRow(ctx,
		"SELECT "+groupColumns+" FROM groups WHERE code = $1",
		strings.TrimSpace(code),
	).Scan(scanGroupDest(group)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrGroupNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("looking up group by code: %w", err)
	}

	var isMember bool
	err = s.db.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM group_members WHERE group_id = $1 AND user_id = $2)",
		group.ID, actor.ID,
	).Scan(&isMember)
	if err != nil {
		return nil, fmt.Errorf("checking membership: %w", err)
	}
	if isMember {
		return nil, ErrAlreadyMember
	}

	_, err = s.db.Exec(ctx,
		"INSERT INTO group_members (group_id, user_id) VALUES ($1, $2)",
		group.ID, actor.ID,
	)
	if isUniqueViolation(err) {
		return nil, ErrAlreadyMember
	}
	if err != nil {
		return nil, fmt.Errorf("joining group: %w", err)
	}

	group.Members, err = s.loadMemberIDs(ctx, group.ID)
	if err != nil {
		return nil, err
	}

	if err := s.chat.AddGroupMember(ctx, group.ID, actor); err != nil {
		return group, fmt.Errorf("syncing group channel membership: %w", err)
	}

	return group, nil
}

// Leave removes the actor's membership. Removal is a no-op when the actor
// is not a member, and a group is allowed to reach zero members; it is not
// deleted, and a departing creator neither deletes nor transfers the group.
func (s *GroupService) Leave(ctx context.Context, actorID, groupID uuid.UUID) error {
	var exists bool
	err := s.db.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM groups WHERE id = $1)",
		groupID,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("checking group: %w", err)
	}
	if !exists {
		return ErrGroupNotFound
	}

	_, err = s.db.Exec(ctx,
		"DELETE FROM group_members WHERE group_id = $1 AND user_id = $2",
		groupID, actorID,
	)
	if err != nil {
		return fmt.Errorf("leaving group: %w", err)
	}

	if err := s.chat.RemoveGroupMember(ctx, groupID, actorID); err != nil {
		return fmt.Errorf("syncing group channel membership: %w", err)
	}

	return nil
}

// GetDetails resolves the creator and every member to display fields.
func (s *GroupService) GetDetails(ctx context.Context, groupID uuid.UUID) (*models.GroupDetails, error) {
	details := &models.GroupDetails{}
	err := s.db.QueryRow(ctx,
		`SELECT g.id, g.name, g.code, g.image, g.created_at,
		        u.id, u.full_name, u.profile_pic, u.bio
		 FROM groups g
		 JOIN users u ON u.id = g.created_by
		 WHERE g.id = $1`,
		groupID,
	).Scan(
		&details.ID, &details.Name, &details.Code, &details.Image, &details.CreatedAt,
		&details.CreatedBy.ID, &details.CreatedBy.FullName, &details.CreatedBy.ProfilePic, &details.CreatedBy.Bio,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrGroupNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting group: %w", err)
	}

	rows, err := s.db.Query(ctx,
		`SELECT u.id, u.full_name, u.profile_pic, u.bio
		 FROM group_members gm
		 JOIN users u ON u.id = gm.user_id
		 WHERE gm.group_id = $1
		 ORDER BY gm.joined_at`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing group members: %w", err)
	}
	defer rows.Close()

	details.Members, err = collectProfiles(rows)
	if err != nil {
		return nil, err
	}

	return details, nil
}

func (s *GroupService) ListMine(ctx context.Context, userID uuid.UUID) ([]models.Group, error) {
	rows, err := s.db.Query(ctx,
		`SELECT g.id, g.name, g.code, g.image, g.created_by, g.created_at,
		        ARRAY(SELECT m.user_id FROM group_members m WHERE m.group_id = g.id ORDER BY m.joined_at)
		 FROM groups g
		 JOIN group_members gm ON gm.group_id = g.id
		 WHERE gm.user_id = $1
		 ORDER BY g.created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing groups: %w", err)
	}
	defer rows.Close()

	var groups []models.Group
	for rows.Next() {
		var g models.Group
		err := rows.Scan(&g.ID, &g.Name, &g.Code, &g.Image, &g.CreatedBy, &g.CreatedAt, &g.Members)
		if err != nil {
			return nil, fmt.Errorf("scanning group: %w", err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading groups: %w", err)
	}
	if groups == nil {
		groups = []models.Group{}
	}

	return groups, nil
}

func (s *GroupService) loadMemberIDs(ctx context.Context, groupID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := s.db.Query(ctx,
		"SELECT user_id FROM group_members WHERE group_id = $1 ORDER BY joined_at",
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing member ids: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning member id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading member ids: %w", err)
	}

	return ids, nil
}

func scanGroupDest(g *models.Group) []any {
	return []any{&g.ID, &g.Name, &g.Code, &g.Image, &g.CreatedBy, &g.CreatedAt}
}

func generateJoinCode() (string, error) {
	buf := make([]byte, joinCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating join code: %w", err)
	}
	for i, b := range buf {
		buf[i] = joinCodeAlphabet[int(b)%len(joinCodeAlphabet)]
	}
	return string(buf), nil
}
