package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/wricardo/royal-game-of-ur/game/engine"
)

// gameServiceImpl implements the GameService interface.
type gameServiceImpl struct {
	sessions SessionManager
	ledger   ChallengeLedger
	presence PresenceDirectory
	grace    time.Duration

	// matchmaking serializes challenge creation against accept/reject, so
	// a pair never ends up holding both a pending challenge and a session.
	matchmaking sync.Mutex
}

// NewGameService creates a new game service instance. grace is how long a
// finished game stays visible before it is evicted and both players are
// told to drop it.
func NewGameService(sessions SessionManager, ledger ChallengeLedger, presence PresenceDirectory, grace time.Duration) GameService {
	return &gameServiceImpl{
		sessions: sessions,
		ledger:   ledger,
		presence: presence,
		grace:    grace,
	}
}

// Connect binds the player's live handle, announces them to the lobby and
// catches the newcomer up on the roster and their own games.
func (s *gameServiceImpl) Connect(ctx context.Context, id engine.PlayerID, name string, h Handle) {
	s.presence.Bind(id, name, h)
	log.Info().Int64("player", int64(id)).Str("name", name).Msg("player joined")

	s.presence.Broadcast(EventPlayersJoin, PlayerInfo{ID: id, Name: name})
	h.Emit(EventPlayers, s.presence.Online())

	for _, sess := range s.sessions.List() {
		if sess.Players[0].ID != id && sess.Players[1].ID != id {
			continue
		}
		sess.Lock()
		view := NewGameView(sess)
		sess.Unlock()
		h.Emit(EventGamesAdd, view)
	}
}

// Disconnect unbinds the player's handle. Their sessions stay put,
// waiting for a reconnect; outbound events meanwhile fall into NullHandle.
func (s *gameServiceImpl) Disconnect(ctx context.Context, id engine.PlayerID) {
	name, _ := s.presence.Name(id)
	s.presence.Unbind(id)
	log.Info().Int64("player", int64(id)).Msg("player left")

	s.presence.Broadcast(EventPlayersLeft, PlayerInfo{ID: id, Name: name})
}

// Challenge records a challenge from one player to another, or resolves
// the conflict per the matchmaking rules.
func (s *gameServiceImpl) Challenge(ctx context.Context, from, to engine.PlayerID) error {
	if from == to {
		log.Debug().Int64("player", int64(from)).Msg("player tried to challenge themselves")
		return nil
	}

	fromName, ok := s.presence.Name(from)
	if !ok {
		// The sender is bound by construction; a miss here is a bug.
		return fmt.Errorf("challenge sender %d: %w", from, ErrIdentityNotFound)
	}
	toName, ok := s.presence.Name(to)
	if !ok {
		log.Debug().Int64("target", int64(to)).Msg("challenge target is not online")
		return fmt.Errorf("challenge target %d: %w", to, ErrIdentityNotFound)
	}

	requester := s.presence.Resolve(from)
	pair := PairID(from, to)

	s.matchmaking.Lock()
	defer s.matchmaking.Unlock()

	outcome, ch := s.ledger.Propose(
		PlayerInfo{ID: from, Name: fromName},
		PlayerInfo{ID: to, Name: toName},
		s.sessions.Has(pair),
	)

	switch outcome {
	case OutcomeCreated:
		log.Info().Str("challenge", ch.ID).Str("from", fromName).Str("to", toName).Msg("challenge created")
		s.presence.Resolve(to).Emit(EventChallengeNew, ch)
	case OutcomeAutoAccept:
		log.Info().Str("challenge", ch.ID).Msg("mutual challenge, auto-accepting")
		return s.startGame(ctx, ch)
	case OutcomeAlreadyChallenged:
		requester.Emit(EventChallengeExists, ReasonPayload{
			Reason: fmt.Sprintf("a challenge between you and %s is already pending", toName),
		})
	case OutcomeSessionExists:
		requester.Emit(EventGameExists, ReasonPayload{
			Reason: fmt.Sprintf("you already have a game in progress with %s", toName),
		})
	}

	return nil
}

// AcceptChallenge converts a pending challenge into a live game.
func (s *gameServiceImpl) AcceptChallenge(ctx context.Context, player engine.PlayerID, challengeID string) error {
	s.matchmaking.Lock()
	defer s.matchmaking.Unlock()

	ch, err := s.ledger.Get(challengeID)
	if err != nil {
		return fmt.Errorf("accept %s: %w", challengeID, err)
	}
	if ch.To.ID != player {
		// Only the challenged player may accept.
		return fmt.Errorf("accept %s by player %d: %w", challengeID, player, ErrChallengeNotFound)
	}

	if err := s.ledger.Remove(challengeID); err != nil {
		return fmt.Errorf("accept %s: %w", challengeID, err)
	}

	log.Info().Str("challenge", challengeID).Str("by", ch.To.Name).Msg("challenge accepted")
	return s.startGame(ctx, ch)
}

// RejectChallenge removes a pending challenge and tells the challenger.
func (s *gameServiceImpl) RejectChallenge(ctx context.Context, player engine.PlayerID, challengeID string) error {
	s.matchmaking.Lock()
	defer s.matchmaking.Unlock()

	ch, err := s.ledger.Get(challengeID)
	if err != nil {
		return fmt.Errorf("reject %s: %w", challengeID, err)
	}
	if ch.To.ID != player {
		return fmt.Errorf("reject %s by player %d: %w", challengeID, player, ErrChallengeNotFound)
	}

	if err := s.ledger.Remove(challengeID); err != nil {
		return fmt.Errorf("reject %s: %w", challengeID, err)
	}

	log.Info().Str("challenge", challengeID).Str("by", ch.To.Name).Msg("challenge rejected")
	s.presence.Resolve(ch.From.ID).Emit(EventChallengeRejected, ch.To)
	return nil
}

// startGame creates the session for an accepted challenge and announces
// it to both players.
func (s *gameServiceImpl) startGame(ctx context.Context, ch *Challenge) error {
	sess, err := s.sessions.Create(ch.From, ch.To)
	if err != nil {
		if sess == nil {
			return fmt.Errorf("start game for %s: %w", ch.ID, err)
		}
		// The pair already has a game; fall through to re-announce it.
		log.Debug().Str("game", sess.ID).Msg("game already exists for pair, reusing")
	}

	sess.Lock()
	view := NewGameView(sess)
	sess.Unlock()

	log.Info().Str("game", sess.ID).Str("player1", ch.From.Name).Str("player2", ch.To.Name).Msg("game started")
	s.emitToParticipants(sess, EventGamesAdd, view)
	return nil
}

// SelectGame sends the full authoritative snapshot of a game to the
// requester.
func (s *gameServiceImpl) SelectGame(ctx context.Context, player engine.PlayerID, gameID string) error {
	sess, err := s.sessions.Get(gameID)
	if err != nil {
		return fmt.Errorf("select %s: %w", gameID, err)
	}

	sess.Lock()
	sess.LastAccessedAt = time.Now()
	view := NewGameView(sess)
	sess.Unlock()

	s.presence.Resolve(player).Emit(EventGameSet, view)
	return nil
}

// Roll performs the requesting player's dice roll and pushes the
// resulting state to both participants.
func (s *gameServiceImpl) Roll(ctx context.Context, player engine.PlayerID, gameID string) error {
	sess, err := s.sessions.Get(gameID)
	if err != nil {
		return fmt.Errorf("roll on %s: %w", gameID, err)
	}

	sess.Lock()
	ordinal, ok := sess.Game.SideFor(player)
	if !ok {
		sess.Unlock()
		return fmt.Errorf("roll on %s by player %d: %w", gameID, player, ErrNotParticipant)
	}
	rollErr := sess.Game.Roll(ordinal)
	sess.LastAccessedAt = time.Now()
	view := NewGameView(sess)
	sess.Unlock()

	if rollErr != nil {
		// Out-of-turn and double rolls are dropped, never answered.
		return fmt.Errorf("roll on %s: %w", gameID, rollErr)
	}

	s.emitToParticipants(sess, EventGameActivity, view)
	return nil
}

// Move applies the requesting player's move. A rejected move resyncs only
// the offender with the authoritative state; a valid one is broadcast to
// both sides, and a winning one schedules the session's eviction.
func (s *gameServiceImpl) Move(ctx context.Context, player engine.PlayerID, gameID string, origin int, lane string) error {
	sess, err := s.sessions.Get(gameID)
	if err != nil {
		return fmt.Errorf("move on %s: %w", gameID, err)
	}

	sess.Lock()
	ordinal, ok := sess.Game.SideFor(player)
	if !ok {
		sess.Unlock()
		return fmt.Errorf("move on %s by player %d: %w", gameID, player, ErrNotParticipant)
	}
	moveErr := sess.Game.Move(ordinal, origin, lane)
	finished := sess.Game.Phase() == engine.PhaseFinished
	sess.LastAccessedAt = time.Now()
	view := NewGameView(sess)
	sess.Unlock()

	if moveErr != nil {
		// A tampered or stale client sent this; force it back in sync.
		log.Debug().Str("game", gameID).Int64("player", int64(player)).Err(moveErr).Msg("rejected move, resyncing client")
		s.presence.Resolve(player).Emit(EventGameActivity, view)
		return fmt.Errorf("move on %s: %w", gameID, moveErr)
	}

	s.emitToParticipants(sess, EventGameActivity, view)

	if finished {
		log.Info().Str("game", gameID).Msg("game finished")
		s.sessions.ScheduleEviction(gameID, s.grace, func(evicted *Session) {
			s.emitToParticipants(evicted, EventGameRemove, GameIDPayload{GameID: evicted.ID})
		})
	}

	return nil
}

// OnlinePlayers returns the lobby roster.
func (s *gameServiceImpl) OnlinePlayers(ctx context.Context) []PlayerInfo {
	return s.presence.Online()
}

// Games returns snapshots of all active games.
func (s *gameServiceImpl) Games(ctx context.Context) []*GameView {
	sessions := s.sessions.List()
	views := make([]*GameView, 0, len(sessions))
	for _, sess := range sessions {
		sess.Lock()
		views = append(views, NewGameView(sess))
		sess.Unlock()
	}
	return views
}

// Game returns the snapshot of one game.
func (s *gameServiceImpl) Game(ctx context.Context, gameID string) (*GameView, error) {
	sess, err := s.sessions.Get(gameID)
	if err != nil {
		return nil, err
	}
	sess.Lock()
	defer sess.Unlock()
	return NewGameView(sess), nil
}

// Challenges returns all pending challenges.
func (s *gameServiceImpl) Challenges(ctx context.Context) []*Challenge {
	return s.ledger.List()
}

// emitToParticipants pushes an event to both players of a session,
// resolving each through presence at emit time.
func (s *gameServiceImpl) emitToParticipants(sess *Session, event string, payload any) {
	for _, player := range sess.Players {
		s.presence.Resolve(player.ID).Emit(event, payload)
	}
}
