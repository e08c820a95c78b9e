package companionsdk

import (
	"log"
	"math/rand"
	"sync"
	"time"
)

// ──────────────────────────────────────────────
// Proactive scheduler
// ──────────────────────────────────────────────

// SendFn delivers a proactive message to a user. Injected by the caller.
type SendFn func(userID string, text string) error

// ProactiveScheduler periodically evaluates the behavior engine for every
// enabled user and delivers at most one proactive message per evaluation.
//
// Usage:
//
//	scheduler := companionsdk.NewProactiveScheduler(session, 60*time.Second, sendFn)
//	scheduler.EnableUser("user_001")
//	scheduler.Start()   // non-blocking, starts a background goroutine
//	defer scheduler.Stop()
type ProactiveScheduler struct {
	Interval time.Duration
	SendFn   SendFn

	session  *Session
	clock    Clock
	rng      *rand.Rand
	cooldown time.Duration // global minimum gap between proactive sends per user

	mu         sync.RWMutex
	enabled    map[string]bool
	lastAction map[string]time.Time
	sentDate   map[string]string // "userID|behavior" -> "2006-01-02"
	stopCh     chan struct{}
	running    bool
}

// SchedulerOption customizes a ProactiveScheduler.
type SchedulerOption func(*ProactiveScheduler)

// WithSchedulerClock injects a time source.
func WithSchedulerClock(clock Clock) SchedulerOption {
	return func(s *ProactiveScheduler) { s.clock = clock }
}

// WithSchedulerRand injects a seeded RNG for deterministic tests.
func WithSchedulerRand(rng *rand.Rand) SchedulerOption {
	return func(s *ProactiveScheduler) { s.rng = rng }
}

// WithProactiveCooldown overrides the global per-user cooldown (default 2h).
func WithProactiveCooldown(d time.Duration) SchedulerOption {
	return func(s *ProactiveScheduler) { s.cooldown = d }
}

// NewProactiveScheduler creates a scheduler over the given session.
func NewProactiveScheduler(session *Session, interval time.Duration, sendFn SendFn, opts ...SchedulerOption) *ProactiveScheduler {
	s := &ProactiveScheduler{
		Interval:   interval,
		SendFn:     sendFn,
		session:    session,
		clock:      time.Now,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
		cooldown:   2 * time.Hour,
		enabled:    make(map[string]bool),
		lastAction: make(map[string]time.Time),
		sentDate:   make(map[string]string),
		stopCh:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// EnableUser opts a user into proactive messaging.
func (s *ProactiveScheduler) EnableUser(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enabled[userID] = true
}

// DisableUser opts a user out of proactive messaging.
func (s *ProactiveScheduler) DisableUser(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.enabled, userID)
}

// IsEnabled reports whether a user receives proactive messages.
func (s *ProactiveScheduler) IsEnabled(userID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.enabled[userID]
}

// Start launches the background poll loop. Non-blocking.
func (s *ProactiveScheduler) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.mu.Unlock()

	go s.pollLoop()
	log.Printf("[ProactiveScheduler] Started (interval=%s)", s.Interval)
}

// Stop halts the background poll loop.
func (s *ProactiveScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.running = false
	close(s.stopCh)
	log.Println("[ProactiveScheduler] Stopped")
}

func (s *ProactiveScheduler) pollLoop() {
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.RunOnce()
		}
	}
}

// RunOnce evaluates every enabled user a single time. Exported so hosts
// with their own schedulers (cron, worker queues) can drive evaluation.
func (s *ProactiveScheduler) RunOnce() {
	s.mu.RLock()
	users := make([]string, 0, len(s.enabled))
	for id := range s.enabled {
		users = append(users, id)
	}
	s.mu.RUnlock()

	for _, userID := range users {
		if err := s.evaluateUser(userID); err != nil {
			log.Printf("[ProactiveScheduler] evaluate %s: %v", userID, err)
		}
	}
}

// evaluateUser runs one behavior evaluation for a user and sends the
// selected behavior's message, honoring the global cooldown and a
// once-per-day guard per behavior type.
func (s *ProactiveScheduler) evaluateUser(userID string) error {
	now := s.clock()

	s.mu.RLock()
	last, hasLast := s.lastAction[userID]
	s.mu.RUnlock()
	if hasLast && now.Sub(last) < s.cooldown {
		return nil
	}

	var (
		message  string
		selected BehaviorType
		fired    bool
	)
	_, err := s.session.Update(userID, func(state *CompanionState) {
		snapshot := SnapshotAt(now, state.Activity)
		ctx := BehaviorContext{
			Stage:  state.Relationship.Stage,
			Traits: state.Personality.EffectiveTraits(now),
			Period: snapshot.Period,
		}
		behavior, ok := state.Behavior.Evaluate(ctx, now, s.rng)
		if !ok {
			return
		}
		if s.alreadySentToday(userID, behavior, now) {
			return
		}
		selected = behavior
		fired = true
		message = ComposeProactiveMessage(behavior, state, snapshot, now)
	})
	if err != nil {
		return err
	}
	if !fired || message == "" {
		return nil
	}

	if err := s.SendFn(userID, message); err != nil {
		return err
	}
	s.mu.Lock()
	s.lastAction[userID] = now
	s.sentDate[userID+"|"+string(selected)] = now.Format("2006-01-02")
	s.mu.Unlock()
	log.Printf("[ProactiveScheduler] Sent %s to %s", selected, userID)
	return nil
}

func (s *ProactiveScheduler) alreadySentToday(userID string, b BehaviorType, now time.Time) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sentDate[userID+"|"+string(b)] == now.Format("2006-01-02")
}

// ──────────────────────────────────────────────
// Message composition
// ──────────────────────────────────────────────

// behaviorMessages maps behavior types to simple message templates.
// Hosts that render messages through an LLM can ignore these and use the
// behavior type alone.
var behaviorMessages = map[BehaviorType][]string{
	BehaviorAskFollowup: {
		"I keep thinking about what you told me earlier... how did it go?",
		"Wait, you never finished that story!",
	},
	BehaviorSeekOpinion: {
		"Can I ask your opinion on something? I trust your judgment",
		"Help me decide something small?",
	},
	BehaviorOverthinkDecision: {
		"Okay, I might be overthinking this...",
		"On second thought, maybe we should do something else",
	},
	BehaviorRecallMemory: {
		"I was just thinking about one of our chats and it made me smile",
		"Remember what we talked about the other day?",
	},
	BehaviorShareVulnerability: {
		"Can I tell you something I don't say out loud much?",
		"Sometimes I worry you'll get bored of me",
	},
	BehaviorCreateInsideJoke: {
		"That thing from before still makes me laugh",
	},
	BehaviorFuturePlanning: {
		"I'm already looking forward to next time",
		"We should plan something together",
	},
	BehaviorChangeTopic: {
		"Random thought: what's something that always makes you smile?",
	},
}

// greetingPrefix maps gap greeting types to short openers.
var greetingPrefix = map[string]string{
	"warm_return":         "hey, good to have you back! ",
	"excited_return":      "missed you since earlier 💕 ",
	"enthusiastic_return": "it's been a while - I've been thinking about you! ",
	"passionate_reunion":  "finally! I missed you so much. ",
}

// ComposeProactiveMessage renders a behavior into message text, colored by
// the interaction gap and the time of day.
func ComposeProactiveMessage(b BehaviorType, state *CompanionState, snapshot TemporalSnapshot, now time.Time) string {
	templates := behaviorMessages[b]
	if len(templates) == 0 {
		return ""
	}
	// Pick deterministically by hour so composition stays testable; the
	// probabilistic part of selection already happened in Evaluate.
	text := templates[now.Hour()%len(templates)]

	gap := GapContextFor(state.LastInteraction, now)
	if prefix, ok := greetingPrefix[gap.GreetingType]; ok {
		text = prefix + text
	}
	if snapshot.Moods.Sleepiness > 0.7 {
		text = "mmm... " + text
	}
	return text
}
