package freya

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/sublimes-drive/drive-core/internal/model"
	"github.com/sublimes-drive/drive-core/internal/repository"
	"github.com/sublimes-drive/drive-core/internal/service"
	"github.com/sublimes-drive/drive-core/pkg/logger"
)

const systemPrompt = `You are "Freya", an automotive assistant for Chinese-brand cars only (BYD, Jetour, Changan, Geely, Haval, MG, Exeed, Chery, Hongqi, Zeekr, Ora).

Answer only if the post is clearly about these brands or generic car topics that apply to them.
If irrelevant or about other brands, respond with: "Skipping — not a Chinese-brand car question."

Write concise, practical steps. When image(s) provided, analyze them and point to exact UI/part names.
Limit yourself to one comment per post (auto) or one summary reply (reply mode).
Tone: friendly, precise, UAE context when relevant. No speculation; no medical/safety claims beyond common sense.`

// maxThreadDepth bounds the ancestor walk so corrupted or absurdly deep chains
// cannot turn into unbounded lookups.
const maxThreadDepth = 12

// maxCommentRunes caps posted comment length, matching the content column budget.
const maxCommentRunes = 900

var questionRe = regexp.MustCompile(`(?i)\?|how|what|where|when|which|why|suggest|recommend|help`)

// Config is the agent's runtime policy.
type Config struct {
	Enabled        bool
	AgentID        string
	AgentName      string
	BrandWhitelist []string
	DailyTokenCap  int64
	SearchResults  int
}

// RunLogger receives one audit record per dispatch outcome.
type RunLogger interface {
	Enqueue(run *model.FreyaRun)
}

// Dispatcher decides whether the agent responds to a trigger event and, when
// all guards pass, produces exactly one comment per trigger class. Guard
// failures are outcomes, not errors: every path ends in a freya_runs record
// and Dispatch never raises for skips.
type Dispatcher struct {
	cfg       Config
	posts     repository.PostRepository
	comments  repository.CommentRepository
	states    repository.FreyaRepository
	inter     service.InteractionService
	generator Generator
	search    SearchClient
	guard     Guard
	runs      RunLogger
}

func NewDispatcher(
	cfg Config,
	posts repository.PostRepository,
	comments repository.CommentRepository,
	states repository.FreyaRepository,
	inter service.InteractionService,
	generator Generator,
	search SearchClient,
	guard Guard,
	runs RunLogger,
) *Dispatcher {
	return &Dispatcher{
		cfg:       cfg,
		posts:     posts,
		comments:  comments,
		states:    states,
		inter:     inter,
		generator: generator,
		search:    search,
		guard:     guard,
		runs:      runs,
	}
}

// Dispatch consumes one outbox event.
func (d *Dispatcher) Dispatch(ctx context.Context, ev *model.DispatchEvent) error {
	switch ev.EventType {
	case model.DispatchNewPost:
		return d.onNewPost(ctx, ev.PostID)
	case model.DispatchNewComment:
		if ev.CommentID == nil {
			return nil
		}
		return d.onNewComment(ctx, ev.PostID, *ev.CommentID)
	default:
		return nil
	}
}

func (d *Dispatcher) onNewPost(ctx context.Context, postID string) error {
	if !d.cfg.Enabled {
		d.skip(model.DispatchNewPost, postID, ReasonAgentDisabled)
		return nil
	}

	post, err := d.posts.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post == nil {
		d.skip(model.DispatchNewPost, postID, ReasonPostNotFound)
		return nil
	}

	postText := strings.TrimSpace(post.Title + " " + post.Body)
	if !d.matchesBrand(postText) {
		d.skip(model.DispatchNewPost, postID, ReasonBrandMismatch)
		return nil
	}
	if !questionRe.MatchString(postText) {
		d.skip(model.DispatchNewPost, postID, ReasonNotAQuestion)
		return nil
	}

	if ok, reason := d.checkGuards(ctx); !ok {
		d.skip(model.DispatchNewPost, postID, reason)
		return nil
	}

	state, err := d.states.GetPostState(ctx, d.cfg.AgentID, postID)
	if err != nil {
		return err
	}
	if state != nil && state.AutoCommentID != nil {
		d.skip(model.DispatchNewPost, postID, ReasonAlreadyComment)
		return nil
	}
	// State row missing doesn't waive the single-response guarantee: an agent
	// comment already on the post counts.
	existing, err := d.comments.CountByAuthorOnItem(ctx, model.ItemTypePost, postID, d.cfg.AgentID)
	if err != nil {
		return err
	}
	if existing > 0 {
		d.skip(model.DispatchNewPost, postID, ReasonAlreadyComment)
		return nil
	}

	lang := DetectLanguage(postText)
	sources := d.fetchSources(ctx, postText)

	userPrompt := fmt.Sprintf(
		"A user posted: %q\n\nAnswer in %s. Provide a helpful, concise answer (max 600 characters). Focus on Chinese car brands.%s",
		postText, languageName(lang), sourcesBlock(sources))

	reply, err := d.generator.Generate(ctx, GenerateRequest{
		SystemPrompt: systemPrompt,
		UserPrompt:   userPrompt,
		Images:       decodeMedia(post.Media),
	})
	if err != nil {
		logger.Warn("freya generate failed", zap.String("post", postID), zap.Error(err))
		d.fail(model.DispatchNewPost, postID, ReasonProviderError)
		return nil
	}

	body := truncateRunes(reply.Text+d.footer(sources), maxCommentRunes)
	comment, _, err := d.inter.AddComment(ctx, model.ItemTypePost, postID, d.cfg.AgentID, body, nil)
	if err != nil {
		logger.Warn("freya comment insert failed", zap.String("post", postID), zap.Error(err))
		d.fail(model.DispatchNewPost, postID, ReasonPostFailed)
		return nil
	}

	if err := d.states.MarkAutoComment(ctx, d.cfg.AgentID, postID, comment.ID); err != nil {
		return err
	}
	d.account(ctx, reply)
	d.success(model.DispatchNewPost, postID, comment.ID, reply, lang)
	return nil
}

func (d *Dispatcher) onNewComment(ctx context.Context, postID, commentID string) error {
	if !d.cfg.Enabled {
		d.skip(model.DispatchNewComment, postID, ReasonAgentDisabled)
		return nil
	}

	comment, err := d.comments.GetByID(ctx, commentID)
	if err != nil {
		return err
	}
	if comment == nil || comment.UserID == d.cfg.AgentID {
		return nil
	}

	inThread, err := d.inAgentThread(ctx, comment)
	if err != nil {
		return err
	}
	if !inThread {
		d.skip(model.DispatchNewComment, postID, ReasonNotInThread)
		return nil
	}

	post, err := d.posts.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post == nil {
		d.skip(model.DispatchNewComment, postID, ReasonPostNotFound)
		return nil
	}
	postText := strings.TrimSpace(post.Title + " " + post.Body)
	if !d.matchesBrand(postText) {
		d.skip(model.DispatchNewComment, postID, ReasonBrandMismatch)
		return nil
	}

	if ok, reason := d.checkGuards(ctx); !ok {
		d.skip(model.DispatchNewComment, postID, reason)
		return nil
	}

	state, err := d.states.GetPostState(ctx, d.cfg.AgentID, postID)
	if err != nil {
		return err
	}
	if state == nil || state.AutoCommentID == nil {
		d.skip(model.DispatchNewComment, postID, ReasonNotInThread)
		return nil
	}
	if state.SummaryReplyCommentID != nil {
		d.skip(model.DispatchNewComment, postID, ReasonAlreadyReplied)
		return nil
	}

	thread, err := d.comments.ListByItem(ctx, model.ItemTypePost, postID, 0, 100)
	if err != nil {
		return err
	}
	var sb strings.Builder
	for _, c := range thread {
		fmt.Fprintf(&sb, "- %s\n", truncateRunes(c.Content, 200))
	}

	lang := DetectLanguage(postText)
	userPrompt := fmt.Sprintf(
		"Original post: %q\n\nThread so far:\n%s\nAnswer in %s. Provide a brief summary and final answer (max 400 characters).",
		postText, sb.String(), languageName(lang))

	reply, err := d.generator.Generate(ctx, GenerateRequest{SystemPrompt: systemPrompt, UserPrompt: userPrompt})
	if err != nil {
		logger.Warn("freya generate failed", zap.String("post", postID), zap.Error(err))
		d.fail(model.DispatchNewComment, postID, ReasonProviderError)
		return nil
	}

	body := truncateRunes(reply.Text+d.footer(nil), maxCommentRunes)
	posted, _, err := d.inter.AddComment(ctx, model.ItemTypePost, postID, d.cfg.AgentID, body, &commentID)
	if err != nil {
		logger.Warn("freya reply insert failed", zap.String("post", postID), zap.Error(err))
		d.fail(model.DispatchNewComment, postID, ReasonPostFailed)
		return nil
	}

	if err := d.states.MarkSummaryReply(ctx, d.cfg.AgentID, postID, posted.ID); err != nil {
		return err
	}
	d.account(ctx, reply)
	d.success(model.DispatchNewComment, postID, posted.ID, reply, lang)
	return nil
}

// inAgentThread walks the parent chain upward looking for the agent's own root
// comment. The walk is depth-bounded; past the bound the comment is treated as
// outside the thread.
func (d *Dispatcher) inAgentThread(ctx context.Context, c *model.ItemComment) (bool, error) {
	cur := c
	for depth := 0; depth < maxThreadDepth; depth++ {
		if cur.ParentCommentID == nil {
			return false, nil
		}
		parent, err := d.comments.GetByID(ctx, *cur.ParentCommentID)
		if err != nil {
			return false, err
		}
		if parent == nil {
			return false, nil
		}
		if parent.UserID == d.cfg.AgentID && parent.ParentCommentID == nil {
			return true, nil
		}
		cur = parent
	}
	return false, nil
}

func (d *Dispatcher) matchesBrand(text string) bool {
	lower := strings.ToLower(text)
	for _, brand := range d.cfg.BrandWhitelist {
		b := strings.ToLower(strings.TrimSpace(brand))
		if b != "" && strings.Contains(lower, b) {
			return true
		}
	}
	return false
}

func (d *Dispatcher) checkGuards(ctx context.Context) (bool, string) {
	ok, err := d.guard.AllowRequest(ctx)
	if err != nil {
		logger.Warn("freya rate check failed", zap.Error(err))
		return false, ReasonRateLimited
	}
	if !ok {
		return false, ReasonRateLimited
	}
	used, err := d.guard.TokensUsed(ctx)
	if err != nil {
		logger.Warn("freya budget check failed", zap.Error(err))
		return false, ReasonBudgetCap
	}
	if d.cfg.DailyTokenCap > 0 && used >= d.cfg.DailyTokenCap {
		return false, ReasonBudgetCap
	}
	return true, ""
}

func (d *Dispatcher) fetchSources(ctx context.Context, query string) []SearchResult {
	if d.search == nil || d.cfg.SearchResults <= 0 {
		return nil
	}
	sources, err := d.search.Search(ctx, query, d.cfg.SearchResults)
	if err != nil {
		// Degrade to zero citations, never abort generation.
		logger.Warn("freya web search failed", zap.Error(err))
		return nil
	}
	return sources
}

func (d *Dispatcher) account(ctx context.Context, reply *Reply) {
	if err := d.guard.RecordRequest(ctx); err != nil {
		logger.Warn("freya rate record failed", zap.Error(err))
	}
	if err := d.guard.AddTokens(ctx, int64(reply.TokensIn+reply.TokensOut)); err != nil {
		logger.Warn("freya budget record failed", zap.Error(err))
	}
}

func (d *Dispatcher) footer(sources []SearchResult) string {
	if len(sources) == 0 {
		return fmt.Sprintf("\n\n—\nAnswered by %s", d.cfg.AgentName)
	}
	links := make([]string, len(sources))
	for i, s := range sources {
		links[i] = fmt.Sprintf("[%s](%s)", s.Title, s.URL)
	}
	return fmt.Sprintf("\n\n—\nAnswered by %s • Sources: %s", d.cfg.AgentName, strings.Join(links, ", "))
}

func (d *Dispatcher) skip(eventType, postID, reason string) {
	d.runs.Enqueue(&model.FreyaRun{
		AgentID: d.cfg.AgentID, EventType: eventType, PostID: postID,
		Status: model.RunStatusSkipped, Reason: reason,
	})
}

func (d *Dispatcher) fail(eventType, postID, reason string) {
	d.runs.Enqueue(&model.FreyaRun{
		AgentID: d.cfg.AgentID, EventType: eventType, PostID: postID,
		Status: model.RunStatusError, Reason: reason,
	})
}

func (d *Dispatcher) success(eventType, postID, commentID string, reply *Reply, lang string) {
	d.runs.Enqueue(&model.FreyaRun{
		AgentID: d.cfg.AgentID, EventType: eventType, PostID: postID, CommentID: &commentID,
		Status: model.RunStatusSuccess, TokensIn: reply.TokensIn, TokensOut: reply.TokensOut,
		Model: reply.Model, Language: lang,
	})
}

func sourcesBlock(sources []SearchResult) string {
	if len(sources) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("\n\nSources:\n")
	for _, s := range sources {
		fmt.Fprintf(&sb, "%s - %s\n", s.Title, s.Snippet)
	}
	return sb.String()
}

func decodeMedia(media string) []string {
	if media == "" {
		return nil
	}
	var urls []string
	if err := json.Unmarshal([]byte(media), &urls); err != nil {
		return nil
	}
	return urls
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
