// Package binder turns a call site into a resolved call node.
//
// A call site is a bound callee expression plus its raw arguments. BindCall
// classifies the callee, drives overload resolution, falls back to dynamic
// dispatch where the language requires it, fills omitted optional arguments
// and, when resolution fails, still returns a typed error-recovery node. It
// never returns an error for problems in user code: those go to the
// diagnostics sink.
package binder

import (
	"io"
	"log/slog"
	"math"

	"martianoff/callbind/binderr"
	"martianoff/callbind/internal/bound"
	"martianoff/callbind/internal/conversions"
	"martianoff/callbind/internal/overload"
	"martianoff/callbind/internal/symbols"
)

// OverloadResolver picks the best member of a candidate set.
type OverloadResolver interface {
	Resolve(req *overload.Request) *overload.Verdict
}

// ConversionClassifier classifies implicit conversions.
type ConversionClassifier interface {
	Classify(e bound.Expr, dst symbols.Type) symbols.Conversion
	ClassifyType(src, dst symbols.Type) symbols.Conversion
}

// Config configures a Binder. Zero fields get defaults in New.
type Config struct {
	Resolver    OverloadResolver
	Conversions ConversionClassifier
	Logger      *slog.Logger
	// PathMap rewrites source path prefixes in caller file path defaults.
	PathMap map[string]string
	// DisallowExpandedNonArrayParams rejects the expanded form of params collections.
	DisallowExpandedNonArrayParams bool
	// WarnLegacyDefaults reports when an unconvertible decimal or date/time
	// default is replaced by the zero value.
	WarnLegacyDefaults bool
}

// Binder binds call sites. It only reads shared state and may be used from
// many goroutines at once.
type Binder struct {
	cfg      Config
	resolver OverloadResolver
	conv     ConversionClassifier
	log      *slog.Logger
}

// New creates a Binder, using the reference resolver and classifier when none are given.
func New(cfg Config) *Binder {
	if cfg.Conversions == nil {
		cfg.Conversions = conversions.New()
	}
	if cfg.Resolver == nil {
		cfg.Resolver = overload.NewResolver(cfg.Conversions)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.Level(math.MaxInt)}))
	}
	return &Binder{
		cfg:      cfg,
		resolver: cfg.Resolver,
		conv:     cfg.Conversions,
		log:      cfg.Logger,
	}
}

// callContext is the state of one binding attempt.
type callContext struct {
	*Binder
	scope  *Scope
	syntax *CallSyntax
	sink   binderr.Sink
	arena  *arena
}

// BindCall binds one call site and returns exactly one typed node.
// Diagnostics are appended to sink.
func (b *Binder) BindCall(scope *Scope, call *CallSyntax, sink binderr.Sink) bound.Expr {
	a := newArena()
	defer a.release()

	c := &callContext{Binder: b, scope: scope, syntax: call, sink: sink, arena: a}
	args := c.analyzeArguments(call.Args)
	result, check := c.bindTarget(call.Callee, args)
	if check {
		c.checkRestrictedBoxing(result)
	}
	return result
}

func (c *callContext) report(code binderr.Code, loc binderr.Loc, args ...interface{}) {
	if loc.IsZero() {
		loc = c.syntax.At
	}
	c.sink.Add(binderr.New(code, loc, args...))
}

func (c *callContext) node() bound.Node {
	return bound.Node{At: c.syntax.At, Src: c.syntax.Src}
}
