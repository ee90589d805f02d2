package services

import (
	"errors"
	"fmt"

	"updoot/internal/models"
	"updoot/internal/repositories"

	"go.uber.org/zap"
)

// Direction is a vote direction at the API boundary. Converting to a signed
// value happens only inside the engine, so an out-of-range vote value is
// unrepresentable upstream of it.
type Direction uint8

const (
	DirectionUp Direction = iota + 1
	DirectionDown
)

// ParseDirection maps the wire form ("up"/"down") to a Direction.
func ParseDirection(s string) (Direction, bool) {
	switch s {
	case "up":
		return DirectionUp, true
	case "down":
		return DirectionDown, true
	}
	return 0, false
}

func (d Direction) String() string {
	if d == DirectionDown {
		return "down"
	}
	return "up"
}

// delta is the signed contribution of one vote in this direction.
func (d Direction) delta() int {
	if d == DirectionDown {
		return -1
	}
	return 1
}

// VoteService is the vote transition engine: it owns every write to updoot
// rows and to Post.Points, keeping points equal to the sum of the post's vote
// values.
type VoteService struct {
	updoots repositories.UpdootRepository
	logger  *zap.SugaredLogger
}

func NewVoteService(updoots repositories.UpdootRepository, logger *zap.SugaredLogger) *VoteService {
	return &VoteService{updoots: updoots, logger: logger}
}

// ApplyVote records userID's vote on postID and adjusts the post's points in
// the same store transaction.
//
// Transitions: no existing vote inserts a row and moves points by ±1; an
// existing opposite vote flips the row and moves points by ±2 (the old
// contribution reversed and the new one applied in one step); an existing
// same-direction vote is rejected with ErrRedundantVote and changes nothing.
func (s *VoteService) ApplyVote(userID, postID uint, direction Direction) error {
	if userID == 0 {
		return ErrUnauthorized
	}
	if direction != DirectionUp && direction != DirectionDown {
		return fmt.Errorf("invalid vote direction %d", direction)
	}
	value := direction.delta()

	err := s.updoots.WithinTx(func(tx repositories.UpdootRepository) error {
		if _, err := tx.GetPost(postID); err != nil {
			return err
		}

		// Read the committed vote inside the transaction, never through the
		// per-request cache: the transition must see fresh state.
		existing, err := tx.Get(userID, postID)
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			if err := tx.Create(&models.Updoot{UserID: userID, PostID: postID, Value: value}); err != nil {
				return err
			}
			return tx.AddPostPoints(postID, value)

		case err != nil:
			return err

		case existing.Value == value:
			return ErrRedundantVote

		default:
			if err := tx.UpdateValue(userID, postID, value, existing.Value); err != nil {
				return err
			}
			return tx.AddPostPoints(postID, 2*value)
		}
	})

	switch {
	case err == nil:
		s.logger.Infow("vote applied", "user_id", userID, "post_id", postID, "direction", direction.String())
		return nil
	case errors.Is(err, repositories.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, ErrRedundantVote):
		return ErrRedundantVote
	case errors.Is(err, repositories.ErrDuplicateKey), errors.Is(err, repositories.ErrStale):
		// A concurrent vote on the same key won the race. The transaction
		// rolled back, so neither the vote row nor the points moved here.
		s.logger.Infow("vote lost race", "user_id", userID, "post_id", postID)
		return ErrConcurrentVote
	default:
		s.logger.Errorw("vote failed", "user_id", userID, "post_id", postID, "error", err)
		return err
	}
}
