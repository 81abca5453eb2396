// Package command routes parsed match invocations to service operations.
package command

import (
	"context"
	stderrors "errors"

	"github.com/louisbranch/matchpoint/internal/errors"
	"github.com/louisbranch/matchpoint/internal/match/grammar"
	"github.com/louisbranch/matchpoint/internal/match/service"
)

// Kind tags the variant carried by a Response.
type Kind int

const (
	// KindHelp carries usage text for invalid or unknown input.
	KindHelp Kind = iota
	// KindError carries a command failure the renderer should show.
	KindError
	// KindCreate carries a create confirmation.
	KindCreate
	// KindCompetitor carries an addcompetitor confirmation.
	KindCompetitor
	// KindVote carries a vote outcome.
	KindVote
	// KindAnnounce carries an announcement payload.
	KindAnnounce
	// KindTally carries tallied results.
	KindTally
)

// Response is the single result type of a dispatched command. Exactly one
// field matching Kind is set.
type Response struct {
	Kind Kind

	Help string
	Err  *errors.Error

	Create     *service.CreateResult
	Competitor *service.AddCompetitorResult
	Vote       *service.VoteResult
	Announce   *service.AnnounceResult
	Tally      *service.TallyResult
}

type handler func(ctx context.Context, caller service.Caller, invocation grammar.Invocation) Response

// Router parses raw command strings and dispatches them. Failures surface as
// help or error responses, never as a returned error.
type Router struct {
	grammar  *grammar.Grammar
	service  *service.Service
	handlers map[string]handler
}

// NewRouter builds the dispatch table over the given service.
func NewRouter(svc *service.Service) *Router {
	router := &Router{
		grammar: grammar.New(),
		service: svc,
	}
	router.handlers = map[string]handler{
		"create":        router.create,
		"addcompetitor": router.addCompetitor,
		"vote":          router.vote,
		"announce":      router.announce,
		"tally":         router.tally,
	}
	return router
}

// Dispatch parses raw and runs the matching operation for the caller.
func (r *Router) Dispatch(ctx context.Context, caller service.Caller, raw string) Response {
	invocation, err := r.grammar.Parse(raw)
	if err != nil {
		var usage *grammar.UsageError
		if stderrors.As(err, &usage) {
			return Response{Kind: KindHelp, Help: usage.Help}
		}
		return errorResponse(errors.Wrap(errors.CodeUsage, "parse command", err))
	}

	handle, ok := r.handlers[invocation.Command]
	if !ok {
		return Response{Kind: KindHelp, Help: r.grammar.Help()}
	}
	return handle(ctx, caller, invocation)
}

func (r *Router) create(ctx context.Context, caller service.Caller, invocation grammar.Invocation) Response {
	result, err := r.service.Create(ctx, caller, invocation.Operands["title"], invocation.Operands["period"])
	if err != nil {
		return errorResponse(err)
	}
	return Response{Kind: KindCreate, Create: &result}
}

func (r *Router) addCompetitor(ctx context.Context, caller service.Caller, invocation grammar.Invocation) Response {
	result, err := r.service.AddCompetitor(ctx, caller,
		invocation.Operands["match"], invocation.Operands["user"], invocation.Operands["data"])
	if err != nil {
		return errorResponse(err)
	}
	return Response{Kind: KindCompetitor, Competitor: &result}
}

func (r *Router) vote(ctx context.Context, caller service.Caller, invocation grammar.Invocation) Response {
	result, err := r.service.Vote(ctx, caller, invocation.Operands["match"], invocation.Operands["entry"])
	if err != nil {
		return errorResponse(err)
	}
	return Response{Kind: KindVote, Vote: &result}
}

func (r *Router) announce(ctx context.Context, caller service.Caller, invocation grammar.Invocation) Response {
	result, err := r.service.Announce(ctx, caller,
		invocation.Operands["room"], invocation.Operands["match"], service.AnnounceOptions{
			Attributed: invocation.Flags["no-anonymous"],
			CC:         invocation.Repeated["cc"],
			Timezone:   invocation.Values["timezone"],
		})
	if err != nil {
		return errorResponse(err)
	}
	return Response{Kind: KindAnnounce, Announce: &result}
}

func (r *Router) tally(ctx context.Context, caller service.Caller, invocation grammar.Invocation) Response {
	result, err := r.service.Tally(ctx, caller, invocation.Operands["match"], invocation.Flags["no-anonymous"])
	if err != nil {
		return errorResponse(err)
	}
	return Response{Kind: KindTally, Tally: &result}
}

func errorResponse(err error) Response {
	var domainErr *errors.Error
	if !stderrors.As(err, &domainErr) {
		domainErr = errors.Wrap(errors.CodeUnknown, "command failed", err)
	}
	return Response{Kind: KindError, Err: domainErr}
}
