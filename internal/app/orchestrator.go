package app

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"quiz-client/internal/domain"
	"quiz-client/internal/event"
	"quiz-client/internal/highscore"
	"quiz-client/internal/storage"
	"quiz-client/internal/ui"
	"quiz-client/internal/widget"
)

// QuizAPI abstracts the external quiz service.
type QuizAPI interface {
	FetchQuestion(ctx context.Context, url string) (domain.Question, error)
	SubmitAnswer(ctx context.Context, url, answer string) (domain.AnswerReply, error)
}

// Phase decides which region is visible and which widget receives input.
type Phase int

const (
	PhaseNickname Phase = iota
	PhaseQuestion
	PhaseFinished
)

func (p Phase) String() string {
	switch p {
	case PhaseQuestion:
		return "question"
	case PhaseFinished:
		return "finished"
	default:
		return "nickname"
	}
}

// Options configures an Orchestrator.
type Options struct {
	EntryURL     string
	DefaultLimit int
}

// Orchestrator owns the session and wires the widgets together through its
// own event bus. All methods must run on the Loop goroutine.
type Orchestrator struct {
	ctx    context.Context
	loop   *Loop
	bus    *event.Bus
	api    QuizAPI
	store  storage.Store
	screen *ui.Screen
	logger zerolog.Logger
	opts   Options

	timer   *widget.Countdown
	form    *widget.NicknameForm
	display *widget.QuestionDisplay
	board   *widget.ScoreBoard

	phase    Phase
	session  *domain.Session
	finished bool
	pending  bool
	// message is the latest text from the quiz service, shown with the next
	// question or on the board.
	message string
}

func NewOrchestrator(ctx context.Context, loop *Loop, api QuizAPI, store storage.Store, scores *highscore.Repository, screen *ui.Screen, logger zerolog.Logger, opts Options) *Orchestrator {
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = domain.DefaultLimitSeconds
	}
	bus := event.NewBus()
	o := &Orchestrator{
		ctx:    ctx,
		loop:   loop,
		bus:    bus,
		api:    api,
		store:  store,
		screen: screen,
		logger: logger.With().Str("component", "orchestrator").Logger(),
		opts:   opts,
	}
	o.timer = widget.NewCountdown(bus, screen.Region(ui.RegionTimer), logger)
	o.form = widget.NewNicknameForm(bus, screen.Region(ui.RegionNickname))
	o.display = widget.NewQuestionDisplay(bus, screen.Region(ui.RegionQuestion))
	o.board = widget.NewScoreBoard(ctx, bus, screen.Region(ui.RegionHighScores), scores, logger)

	event.On(bus, func(e event.NicknameChosen) { o.begin(e.Nickname) })
	event.On(bus, func(e event.AnswerSelected) { o.answer(e.Answer) })
	event.On(bus, func(event.TimeExhausted) { o.finish("time exhausted") })
	event.On(bus, func(event.RestartRequested) { o.restart() })
	return o
}

// Start shows the nickname form, pre-filled with a persisted nickname.
func (o *Orchestrator) Start() {
	if nickname, err := o.store.Get(o.ctx, storage.KeyNickname); err == nil {
		o.form.Prefill(nickname)
	} else if !errors.Is(err, storage.ErrNotFound) {
		o.logger.Warn().Err(err).Msg("failed to read saved nickname")
	}
	o.showPhase(PhaseNickname)
}

// Input routes one terminal line to the widget of the current phase. It
// returns true when the player asked to quit.
func (o *Orchestrator) Input(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == ":q" {
		return true
	}
	switch o.phase {
	case PhaseNickname:
		o.form.Input(line)
	case PhaseQuestion:
		o.display.Input(line)
	case PhaseFinished:
		if strings.EqualFold(trimmed, "q") || strings.EqualFold(trimmed, "quit") {
			return true
		}
		o.board.Input(line)
	}
	return false
}

// Tick advances the countdown by one second.
func (o *Orchestrator) Tick() {
	o.timer.Tick()
}

func (o *Orchestrator) Phase() Phase { return o.phase }

// Session returns a copy of the current session, or nil between sessions.
func (o *Orchestrator) Session() *domain.Session {
	if o.session == nil {
		return nil
	}
	s := *o.session
	return &s
}

func (o *Orchestrator) Timer() *widget.Countdown { return o.timer }
func (o *Orchestrator) Form() *widget.NicknameForm { return o.form }
func (o *Orchestrator) Display() *widget.QuestionDisplay { return o.display }
func (o *Orchestrator) Board() *widget.ScoreBoard { return o.board }

func (o *Orchestrator) begin(nickname string) {
	if o.phase != PhaseNickname {
		return
	}
	o.session = &domain.Session{ID: uuid.NewString(), Nickname: nickname}
	o.finished = false
	o.pending = false
	o.message = ""
	o.logger.Info().Str("session", o.session.ID).Str("nickname", nickname).Msg("session started")

	if err := o.store.Set(o.ctx, storage.KeyNickname, nickname); err != nil {
		o.logger.Warn().Err(err).Msg("failed to save nickname")
	}
	o.timer.Reset()
	o.display.Clear()
	o.showPhase(PhaseQuestion)
	o.fetch(o.opts.EntryURL)
}

// fetch loads a question off the loop. Results for a session that has since
// ended or been replaced are discarded.
func (o *Orchestrator) fetch(url string) {
	id := o.session.ID
	o.pending = true
	o.loop.Go(func() func() {
		q, err := o.api.FetchQuestion(o.ctx, url)
		return func() { o.questionLoaded(id, url, q, err) }
	})
}

func (o *Orchestrator) questionLoaded(id, url string, q domain.Question, err error) {
	if !o.active(id) {
		o.logger.Debug().Str("session", id).Str("url", url).Msg("stale question dropped")
		return
	}
	o.pending = false
	if err != nil {
		o.logger.Error().Err(err).Str("url", url).Msg("failed to fetch question")
		// The answered question must not be submitted again.
		o.session.Current = nil
		o.display.Clear()
		o.display.Notice("Could not load the next question. Type :q to quit.")
		return
	}
	if q.Message == "" {
		q.Message = o.message
	}
	o.message = ""
	o.session.Current = &q
	duration := q.Duration(o.opts.DefaultLimit)
	o.logger.Debug().Str("url", url).Bool("choice", q.IsChoice()).Int("duration", duration).Msg("question set")
	o.bus.Emit(event.QuestionSet{Question: q, Duration: duration})
}

func (o *Orchestrator) answer(answer string) {
	if err := o.canAnswer(); err != nil {
		o.logger.Debug().Err(err).Msg("answer ignored")
		return
	}
	q := o.session.Current
	o.bus.Emit(event.StopTimer{})
	o.session.AccumulatedSeconds = o.timer.Elapsed()

	if strings.TrimSpace(q.NextURL) == "" {
		o.logger.Warn().Err(domain.ErrNoNextURL).Msg("question cannot be answered")
		o.finish("no next url")
		return
	}

	id := o.session.ID
	url := q.NextURL
	o.pending = true
	o.loop.Go(func() func() {
		reply, err := o.api.SubmitAnswer(o.ctx, url, answer)
		return func() { o.answered(id, reply, err) }
	})
}

func (o *Orchestrator) canAnswer() error {
	switch {
	case o.session == nil || o.session.Current == nil:
		return domain.ErrNoSession
	case o.finished:
		return domain.ErrSessionCompleted
	case o.pending:
		return domain.ErrRequestPending
	}
	return nil
}

func (o *Orchestrator) answered(id string, reply domain.AnswerReply, err error) {
	if !o.active(id) {
		o.logger.Debug().Str("session", id).Msg("late answer reply dropped")
		return
	}
	o.pending = false
	o.message = strings.TrimSpace(reply.Message)
	if err != nil {
		o.logger.Error().Err(err).Msg("failed to submit answer")
		o.finish("submit failed")
		return
	}
	if reply.Done() {
		o.finish("quiz completed")
		return
	}
	o.fetch(reply.NextURL)
}

// finish ends the session at most once, whichever of timeout or server
// completion comes first.
func (o *Orchestrator) finish(reason string) {
	if o.session == nil || o.finished {
		return
	}
	o.finished = true
	o.bus.Emit(event.StopTimer{})

	score := o.timer.Elapsed()
	o.session.AccumulatedSeconds = score
	o.session.Completed = true
	o.logger.Info().Str("session", o.session.ID).Str("reason", reason).Int("score", score).Msg("session finished")

	o.screen.Batch(func() {
		o.board.Activate()
		o.bus.Emit(event.ScoreRecorded{Nickname: o.session.Nickname, Score: score, Message: o.message})
		o.showPhase(PhaseFinished)
	})
}

func (o *Orchestrator) restart() {
	o.bus.Emit(event.StopTimer{})
	o.timer.Reset()
	o.display.Clear()
	o.board.Reset()

	if o.session != nil {
		o.logger.Info().Str("session", o.session.ID).Msg("session reset")
	}
	o.session = nil
	o.finished = false
	o.pending = false
	o.message = ""

	if err := o.store.Delete(o.ctx, storage.KeyNickname); err != nil {
		o.logger.Warn().Err(err).Msg("failed to clear saved nickname")
	}
	o.form.Clear()
	o.showPhase(PhaseNickname)
}

func (o *Orchestrator) active(id string) bool {
	return o.session != nil && o.session.ID == id && !o.finished
}

func (o *Orchestrator) showPhase(p Phase) {
	o.phase = p
	o.screen.Batch(func() {
		set := func(name string, visible bool) {
			if visible {
				o.screen.Region(name).Show()
			} else {
				o.screen.Region(name).Hide()
			}
		}
		set(ui.RegionNickname, p == PhaseNickname)
		set(ui.RegionQuestion, p == PhaseQuestion)
		set(ui.RegionTimer, p == PhaseQuestion)
		set(ui.RegionHighScores, p == PhaseFinished)
	})
}
