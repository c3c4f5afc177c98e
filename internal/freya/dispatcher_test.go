package freya

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/sublimes-drive/drive-core/internal/model"
	"github.com/sublimes-drive/drive-core/internal/repository"
	"github.com/sublimes-drive/drive-core/internal/service"
)

const agentID = "agent-freya"

type fakeGenerator struct {
	calls int
	text  string
	err   error
}

func (g *fakeGenerator) Generate(ctx context.Context, req GenerateRequest) (*Reply, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	return &Reply{Text: g.text, TokensIn: 120, TokensOut: 80, Model: "test-model"}, nil
}

type fakeGuard struct {
	allow       bool
	used        int64
	recorded    int
	tokensAdded int64
}

func (g *fakeGuard) AllowRequest(ctx context.Context) (bool, error) { return g.allow, nil }
func (g *fakeGuard) TokensUsed(ctx context.Context) (int64, error)  { return g.used, nil }
func (g *fakeGuard) RecordRequest(ctx context.Context) error        { g.recorded++; return nil }
func (g *fakeGuard) AddTokens(ctx context.Context, n int64) error   { g.tokensAdded += n; return nil }

type fakeSearch struct {
	results []SearchResult
	err     error
}

func (s *fakeSearch) Search(ctx context.Context, query string, max int) ([]SearchResult, error) {
	return s.results, s.err
}

type runRecorder struct {
	runs []*model.FreyaRun
}

func (r *runRecorder) Enqueue(run *model.FreyaRun) { r.runs = append(r.runs, run) }

func (r *runRecorder) last() *model.FreyaRun {
	if len(r.runs) == 0 {
		return nil
	}
	return r.runs[len(r.runs)-1]
}

type dispatcherFixture struct {
	db       *gorm.DB
	d        *Dispatcher
	gen      *fakeGenerator
	guard    *fakeGuard
	runs     *runRecorder
	inter    service.InteractionService
	states   repository.FreyaRepository
	comments repository.CommentRepository
}

func newFixture(t *testing.T, mutate func(*Config)) *dispatcherFixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.User{}, &model.Post{},
		&model.ItemLike{}, &model.ItemSave{}, &model.ItemShare{}, &model.ItemComment{},
		&model.DispatchEvent{}, &model.FreyaPostState{}, &model.FreyaRun{},
	))

	cfg := Config{
		Enabled:        true,
		AgentID:        agentID,
		AgentName:      "Freya",
		BrandWhitelist: []string{"BYD", "Geely", "Haval"},
		DailyTokenCap:  1000,
		SearchResults:  0,
	}
	if mutate != nil {
		mutate(&cfg)
	}

	gen := &fakeGenerator{text: "Check the trim levels."}
	guard := &fakeGuard{allow: true}
	runs := &runRecorder{}
	inter := service.NewInteractionService(db, agentID)
	states := repository.NewFreyaRepository(db)
	comments := repository.NewCommentRepository(db)

	d := NewDispatcher(cfg,
		repository.NewPostRepository(db), comments, states,
		inter, gen, &fakeSearch{}, guard, runs)

	return &dispatcherFixture{db: db, d: d, gen: gen, guard: guard, runs: runs, inter: inter, states: states, comments: comments}
}

func (f *dispatcherFixture) seedPost(t *testing.T, id, title, body string) {
	t.Helper()
	p := model.Post{ID: id, AuthorID: "author", Title: title, Body: body}
	require.NoError(t, f.db.Create(&p).Error)
}

func (f *dispatcherFixture) agentComments(t *testing.T, postID string) []model.ItemComment {
	t.Helper()
	var cs []model.ItemComment
	require.NoError(t, f.db.
		Where("item_type = ? AND item_id = ? AND user_id = ?", model.ItemTypePost, postID, agentID).
		Find(&cs).Error)
	return cs
}

func TestNewPostAutoComment(t *testing.T) {
	f := newFixture(t, nil)
	f.seedPost(t, "p1", "BYD Seal", "Which trim should I get?")

	require.NoError(t, f.d.Dispatch(context.Background(), &model.DispatchEvent{
		EventType: model.DispatchNewPost, PostID: "p1",
	}))

	cs := f.agentComments(t, "p1")
	require.Len(t, cs, 1)
	require.True(t, cs[0].IsBot)
	require.Contains(t, cs[0].Content, "Check the trim levels.")
	require.Contains(t, cs[0].Content, "Answered by Freya")

	st, err := f.states.GetPostState(context.Background(), agentID, "p1")
	require.NoError(t, err)
	require.NotNil(t, st)
	require.NotNil(t, st.AutoCommentID)
	require.Equal(t, cs[0].ID, *st.AutoCommentID)

	run := f.runs.last()
	require.Equal(t, model.RunStatusSuccess, run.Status)
	require.Equal(t, 120, run.TokensIn)
	require.Equal(t, 80, run.TokensOut)
	require.Equal(t, LangEnglish, run.Language)
	require.Equal(t, 1, f.guard.recorded)
	require.EqualValues(t, 200, f.guard.tokensAdded)
}

func TestNewPostSingleResponseGuarantee(t *testing.T) {
	f := newFixture(t, nil)
	f.seedPost(t, "p1", "BYD Seal", "Which trim should I get?")
	ev := &model.DispatchEvent{EventType: model.DispatchNewPost, PostID: "p1"}

	require.NoError(t, f.d.Dispatch(context.Background(), ev))
	require.NoError(t, f.d.Dispatch(context.Background(), ev))

	require.Len(t, f.agentComments(t, "p1"), 1)
	require.Equal(t, 1, f.gen.calls)
	run := f.runs.last()
	require.Equal(t, model.RunStatusSkipped, run.Status)
	require.Equal(t, ReasonAlreadyComment, run.Reason)
}

func TestSingleResponseSurvivesMissingStateRow(t *testing.T) {
	f := newFixture(t, nil)
	f.seedPost(t, "p1", "BYD Seal", "Which trim should I get?")
	ctx := context.Background()

	// agent comment exists but the state row was never written
	_, _, err := f.inter.AddComment(ctx, model.ItemTypePost, "p1", agentID, "earlier answer", nil)
	require.NoError(t, err)

	require.NoError(t, f.d.Dispatch(ctx, &model.DispatchEvent{
		EventType: model.DispatchNewPost, PostID: "p1",
	}))

	require.Len(t, f.agentComments(t, "p1"), 1)
	require.Zero(t, f.gen.calls)
	require.Equal(t, ReasonAlreadyComment, f.runs.last().Reason)
}

func TestBrandWhitelistGating(t *testing.T) {
	f := newFixture(t, nil)
	f.seedPost(t, "p1", "My car", "I love my Honda Civic")

	require.NoError(t, f.d.Dispatch(context.Background(), &model.DispatchEvent{
		EventType: model.DispatchNewPost, PostID: "p1",
	}))

	require.Empty(t, f.agentComments(t, "p1"))
	require.Zero(t, f.gen.calls)
	run := f.runs.last()
	require.Equal(t, model.RunStatusSkipped, run.Status)
	require.Equal(t, ReasonBrandMismatch, run.Reason)
}

func TestNotAQuestionSkipped(t *testing.T) {
	f := newFixture(t, nil)
	f.seedPost(t, "p1", "BYD Seal", "Just picked it up. Love the color.")

	require.NoError(t, f.d.Dispatch(context.Background(), &model.DispatchEvent{
		EventType: model.DispatchNewPost, PostID: "p1",
	}))

	require.Zero(t, f.gen.calls)
	require.Equal(t, ReasonNotAQuestion, f.runs.last().Reason)
}

func TestBudgetGating(t *testing.T) {
	f := newFixture(t, nil)
	f.guard.used = 1000 // at cap
	f.seedPost(t, "p1", "BYD Seal", "Which trim should I get?")

	require.NoError(t, f.d.Dispatch(context.Background(), &model.DispatchEvent{
		EventType: model.DispatchNewPost, PostID: "p1",
	}))

	require.Zero(t, f.gen.calls)
	require.Empty(t, f.agentComments(t, "p1"))
	run := f.runs.last()
	require.Equal(t, model.RunStatusSkipped, run.Status)
	require.Equal(t, ReasonBudgetCap, run.Reason)
}

func TestRateLimitGating(t *testing.T) {
	f := newFixture(t, nil)
	f.guard.allow = false
	f.seedPost(t, "p1", "BYD Seal", "Which trim should I get?")

	require.NoError(t, f.d.Dispatch(context.Background(), &model.DispatchEvent{
		EventType: model.DispatchNewPost, PostID: "p1",
	}))

	require.Zero(t, f.gen.calls)
	require.Equal(t, ReasonRateLimited, f.runs.last().Reason)
}

func TestDisabledAgentSkips(t *testing.T) {
	f := newFixture(t, func(c *Config) { c.Enabled = false })
	f.seedPost(t, "p1", "BYD Seal", "Which trim should I get?")

	require.NoError(t, f.d.Dispatch(context.Background(), &model.DispatchEvent{
		EventType: model.DispatchNewPost, PostID: "p1",
	}))
	require.Equal(t, ReasonAgentDisabled, f.runs.last().Reason)
}

func TestMissingPostSkips(t *testing.T) {
	f := newFixture(t, nil)
	require.NoError(t, f.d.Dispatch(context.Background(), &model.DispatchEvent{
		EventType: model.DispatchNewPost, PostID: "nope",
	}))
	require.Equal(t, ReasonPostNotFound, f.runs.last().Reason)
}

func TestProviderErrorLoggedNotRaised(t *testing.T) {
	f := newFixture(t, nil)
	f.gen.err = errors.New("upstream 500")
	f.seedPost(t, "p1", "BYD Seal", "Which trim should I get?")

	require.NoError(t, f.d.Dispatch(context.Background(), &model.DispatchEvent{
		EventType: model.DispatchNewPost, PostID: "p1",
	}))

	require.Empty(t, f.agentComments(t, "p1"))
	run := f.runs.last()
	require.Equal(t, model.RunStatusError, run.Status)
	require.Equal(t, ReasonProviderError, run.Reason)
	require.Zero(t, f.guard.recorded)
}

func TestSearchResultsFeedFooter(t *testing.T) {
	f := newFixture(t, func(c *Config) { c.SearchResults = 2 })
	f.d.search = &fakeSearch{results: []SearchResult{
		{Title: "BYD Seal review", URL: "https://example.com/r", Snippet: "solid EV"},
	}}
	f.seedPost(t, "p1", "BYD Seal", "Which trim should I get?")

	require.NoError(t, f.d.Dispatch(context.Background(), &model.DispatchEvent{
		EventType: model.DispatchNewPost, PostID: "p1",
	}))

	cs := f.agentComments(t, "p1")
	require.Len(t, cs, 1)
	require.Contains(t, cs[0].Content, "Sources:")
	require.Contains(t, cs[0].Content, "https://example.com/r")
}

func TestSearchFailureDegrades(t *testing.T) {
	f := newFixture(t, func(c *Config) { c.SearchResults = 2 })
	f.d.search = &fakeSearch{err: errors.New("search down")}
	f.seedPost(t, "p1", "BYD Seal", "Which trim should I get?")

	require.NoError(t, f.d.Dispatch(context.Background(), &model.DispatchEvent{
		EventType: model.DispatchNewPost, PostID: "p1",
	}))

	cs := f.agentComments(t, "p1")
	require.Len(t, cs, 1)
	require.NotContains(t, cs[0].Content, "Sources:")
}

func TestSummaryReplyInAgentThread(t *testing.T) {
	f := newFixture(t, nil)
	f.seedPost(t, "p1", "BYD Seal", "Which trim should I get?")
	ctx := context.Background()

	// agent answers the post first
	require.NoError(t, f.d.Dispatch(ctx, &model.DispatchEvent{EventType: model.DispatchNewPost, PostID: "p1"}))
	auto := f.agentComments(t, "p1")
	require.Len(t, auto, 1)

	// a user replies under the agent's comment
	reply, _, err := f.inter.AddComment(ctx, model.ItemTypePost, "p1", "u1", "What about range though?", &auto[0].ID)
	require.NoError(t, err)

	require.NoError(t, f.d.Dispatch(ctx, &model.DispatchEvent{
		EventType: model.DispatchNewComment, PostID: "p1", CommentID: &reply.ID,
	}))

	cs := f.agentComments(t, "p1")
	require.Len(t, cs, 2)

	st, err := f.states.GetPostState(ctx, agentID, "p1")
	require.NoError(t, err)
	require.NotNil(t, st.SummaryReplyCommentID)

	// a second thread reply is not answered again
	reply2, _, err := f.inter.AddComment(ctx, model.ItemTypePost, "p1", "u2", "And charging time?", &auto[0].ID)
	require.NoError(t, err)
	require.NoError(t, f.d.Dispatch(ctx, &model.DispatchEvent{
		EventType: model.DispatchNewComment, PostID: "p1", CommentID: &reply2.ID,
	}))
	require.Len(t, f.agentComments(t, "p1"), 2)
	require.Equal(t, ReasonAlreadyReplied, f.runs.last().Reason)
}

func TestCommentOutsideAgentThreadIgnored(t *testing.T) {
	f := newFixture(t, nil)
	f.seedPost(t, "p1", "BYD Seal", "Which trim should I get?")
	ctx := context.Background()

	require.NoError(t, f.d.Dispatch(ctx, &model.DispatchEvent{EventType: model.DispatchNewPost, PostID: "p1"}))
	require.Len(t, f.agentComments(t, "p1"), 1)

	// top-level user comment, not under the agent's thread
	c, _, err := f.inter.AddComment(ctx, model.ItemTypePost, "p1", "u1", "What about range?", nil)
	require.NoError(t, err)

	require.NoError(t, f.d.Dispatch(ctx, &model.DispatchEvent{
		EventType: model.DispatchNewComment, PostID: "p1", CommentID: &c.ID,
	}))

	require.Len(t, f.agentComments(t, "p1"), 1)
	require.Equal(t, ReasonNotInThread, f.runs.last().Reason)
}

func TestAgentOwnCommentIgnored(t *testing.T) {
	f := newFixture(t, nil)
	f.seedPost(t, "p1", "BYD Seal", "Which trim should I get?")
	ctx := context.Background()

	c, _, err := f.inter.AddComment(ctx, model.ItemTypePost, "p1", agentID, "my own answer", nil)
	require.NoError(t, err)

	before := len(f.runs.runs)
	require.NoError(t, f.d.Dispatch(ctx, &model.DispatchEvent{
		EventType: model.DispatchNewComment, PostID: "p1", CommentID: &c.ID,
	}))
	require.Len(t, f.runs.runs, before) // no run logged, silently ignored
}
