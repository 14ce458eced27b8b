package match

import (
	"context"
	"strconv"

	"github.com/amora-app/amora/internal/app"
	"github.com/amora-app/amora/internal/cache"
	"github.com/amora-app/amora/internal/db"
	svcErr "github.com/amora-app/amora/internal/errors"
	"github.com/amora-app/amora/internal/repository"
)

const (
	discoverLimit   = 50
	likedByPageSize = 20
)

// Service implements the dating surface: discovery, like/pass decisions,
// accept/reject, friendships and profile visits. A like plus a like back
// makes a friendship; a pass removes someone from discovery and from the
// liked-by listing for good.
type Service struct {
	appCtx      *app.AppContext
	users       *repository.UserRepository
	decisions   *repository.DecisionRepository
	friendships *repository.FriendshipRepository
	visits      *repository.VisitRepository
}

// NewMatchService creates the service with dependencies from AppContext.
func NewMatchService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:      appCtx,
		users:       repository.NewUserRepository(appCtx.DB),
		decisions:   repository.NewDecisionRepository(appCtx.DB),
		friendships: repository.NewFriendshipRepository(appCtx.DB),
		visits:      repository.NewVisitRepository(appCtx.DB),
	}
}

// Discover returns opposite-gender candidates the user has not yet
// decided on. Anyone already liked or passed never reappears.
func (s *Service) Discover(ctx context.Context, userID uint64) ([]db.User, error) {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, svcErr.Map(err)
	}

	var oppositeGender string
	switch user.Gender {
	case "male":
		oppositeGender = "female"
	case "female":
		oppositeGender = "male"
	default:
		return nil, svcErr.InvalidArgument("user gender must be male or female for discovery")
	}

	decided, err := s.decisions.DecidedIDs(ctx, userID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	exclude := append(decided, userID)

	candidates, err := s.users.Discover(ctx, oppositeGender, exclude, discoverLimit)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return candidates, nil
}

// Like records actor -> recipient. A repeated like is a Conflict with no
// state change. If the recipient already liked the actor, a friendship
// is created and the mutual flag is returned.
func (s *Service) Like(ctx context.Context, actorID, recipientID uint64) (bool, error) {
	if actorID == recipientID {
		return false, svcErr.InvalidArgument("cannot decide on yourself")
	}

	ok, err := s.users.Exists(ctx, recipientID)
	if err != nil {
		return false, svcErr.Map(err)
	}
	if !ok {
		return false, svcErr.NotFound("target user not found")
	}

	if existing, err := s.decisions.GetDecision(ctx, actorID, recipientID); err == nil && existing.Liked {
		return false, svcErr.Conflict("user already liked")
	}

	if err := s.decisions.CreateOrUpdateDecision(ctx, actorID, recipientID, true); err != nil {
		return false, svcErr.Map(err)
	}

	// update cache: one more person likes the recipient
	key := s.appCtx.RedisCache.KeyForLikedByCount(recipientID)
	_, _ = s.appCtx.RedisCache.Incr(ctx, key)
	_ = s.appCtx.RedisCache.Client.Expire(ctx, key, cache.LikedByCountTTL).Err()

	mutual, _ := s.decisions.HasLiked(ctx, recipientID, actorID)
	if mutual {
		if err := s.friendships.Create(ctx, actorID, recipientID); err != nil {
			s.appCtx.Logger.Error("friendship create failed", "actor", actorID, "recipient", recipientID, "err", err)
		}
	}

	s.appCtx.Logger.Debug("like recorded", "actor", actorID, "recipient", recipientID, "mutual", mutual)

	return mutual, nil
}

// Pass records actor -> recipient as a pass. Repeated passes conflict.
func (s *Service) Pass(ctx context.Context, actorID, recipientID uint64) error {
	if actorID == recipientID {
		return svcErr.InvalidArgument("cannot decide on yourself")
	}

	if existing, err := s.decisions.GetDecision(ctx, actorID, recipientID); err == nil && !existing.Liked {
		return svcErr.Conflict("user already passed")
	}

	if err := s.decisions.CreateOrUpdateDecision(ctx, actorID, recipientID, false); err != nil {
		return svcErr.Map(err)
	}

	key := s.appCtx.RedisCache.KeyForLikedByCount(recipientID)
	_, _ = s.appCtx.RedisCache.Decr(ctx, key)
	_ = s.appCtx.RedisCache.Client.Expire(ctx, key, cache.LikedByCountTTL).Err()

	return nil
}

// Accept turns a pending like from requester into a friendship.
func (s *Service) Accept(ctx context.Context, userID, requesterID uint64) error {
	liked, err := s.decisions.HasLiked(ctx, requesterID, userID)
	if err != nil {
		return svcErr.Map(err)
	}
	if !liked {
		return svcErr.InvalidArgument("no like request from this user")
	}

	if err := s.friendships.Create(ctx, userID, requesterID); err != nil {
		return svcErr.Map(err)
	}
	// reciprocate so the requester stops seeing the user as a pending like
	if err := s.decisions.CreateOrUpdateDecision(ctx, userID, requesterID, true); err != nil {
		return svcErr.Map(err)
	}
	return nil
}

// Reject dismisses a pending like. Stored as a pass, which drops the
// requester from both liked-by and discovery.
func (s *Service) Reject(ctx context.Context, userID, requesterID uint64) error {
	liked, err := s.decisions.HasLiked(ctx, requesterID, userID)
	if err != nil {
		return svcErr.Map(err)
	}
	if !liked {
		return svcErr.InvalidArgument("no like request from this user")
	}
	if err := s.decisions.CreateOrUpdateDecision(ctx, userID, requesterID, false); err != nil {
		return svcErr.Map(err)
	}
	return nil
}

// Unfriend removes an existing friendship.
func (s *Service) Unfriend(ctx context.Context, userID, friendID uint64) error {
	if err := s.friendships.Delete(ctx, userID, friendID); err != nil {
		apiErr := svcErr.Map(err)
		if apiErr.Code == "not_found" {
			return svcErr.NotFound("not friends with this user")
		}
		return apiErr
	}
	return nil
}

// Liker is one entry in the liked-by listing.
type Liker struct {
	UserID        string `json:"user_id"`
	UnixTimestamp uint64 `json:"unix_timestamp"`
}

// LikedBy returns who liked the given user, newest first,
// cursor-paginated. Users the recipient passed are excluded.
func (s *Service) LikedBy(ctx context.Context, userID uint64, token *string) ([]Liker, *string, error) {
	decisions, nextToken, err := s.decisions.GetLikers(ctx, userID, token, likedByPageSize)
	if err != nil {
		return nil, nil, svcErr.Map(err)
	}

	likers := make([]Liker, 0, len(decisions))
	for _, d := range decisions {
		likers = append(likers, Liker{
			UserID:        strconv.FormatUint(d.ActorID, 10),
			UnixTimestamp: uint64(d.UpdatedAt.UnixMilli()),
		})
	}
	return likers, nextToken, nil
}

// LikedByCount returns how many users liked the given user.
// Cache-first strategy:
//  1. Attempts the Redis counter.
//  2. On miss, falls back to the DB count.
//  3. On DB fetch, refills Redis with a 1h TTL.
func (s *Service) LikedByCount(ctx context.Context, userID uint64) (int64, error) {
	if count, hit, err := s.appCtx.RedisCache.GetLikedByCount(ctx, userID); err == nil && hit {
		return count, nil
	}

	count, err := s.decisions.CountLikers(ctx, userID)
	if err != nil {
		return 0, svcErr.Map(err)
	}

	_ = s.appCtx.RedisCache.SetLikedByCount(ctx, userID, count)
	return count, nil
}

// Friends lists the user's friends as display summaries.
func (s *Service) Friends(ctx context.Context, userID uint64) ([]repository.UserSummary, error) {
	ids, err := s.friendships.FriendIDs(ctx, userID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return s.summaryList(ctx, ids)
}

// Profile returns a user's profile and records the visit when the
// viewer is someone else. Visit recording never fails the read.
func (s *Service) Profile(ctx context.Context, viewerID, ownerID uint64) (*db.User, error) {
	user, err := s.users.Get(ctx, ownerID)
	if err != nil {
		return nil, svcErr.Map(err)
	}

	if viewerID != ownerID {
		if err := s.visits.Record(ctx, ownerID, viewerID); err != nil {
			s.appCtx.Logger.Warn("visit recording failed", "owner", ownerID, "visitor", viewerID, "err", err)
		}
	}
	return user, nil
}

// Visitors lists who viewed the user's profile.
func (s *Service) Visitors(ctx context.Context, userID uint64) ([]repository.UserSummary, error) {
	ids, err := s.visits.VisitorIDs(ctx, userID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return s.summaryList(ctx, ids)
}

func (s *Service) summaryList(ctx context.Context, ids []uint64) ([]repository.UserSummary, error) {
	summaries, err := s.users.SummariesByIDs(ctx, ids)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	out := make([]repository.UserSummary, 0, len(ids))
	for _, id := range ids {
		if summary, ok := summaries[id]; ok {
			out = append(out, summary)
		}
	}
	return out, nil
}
