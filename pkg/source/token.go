package source

import "context"

// Token is a one-shot cancellation signal shared between a delivery loop and
// whoever wants to stop it. It starts armed; Cancel moves it to requested and
// it never resets.
type Token struct {
	ctx    context.Context
	cancel context.CancelFunc
}

// NewToken returns an armed Token.
func NewToken() *Token {
	return TokenFromContext(context.Background())
}

// TokenFromContext returns a Token that is also requested when parent is done.
func TokenFromContext(parent context.Context) *Token {
	ctx, cancel := context.WithCancel(parent)
	return &Token{ctx: ctx, cancel: cancel}
}

// Cancel requests cancellation. Safe to call more than once and from any
// goroutine.
func (t *Token) Cancel() {
	t.cancel()
}

// Requested reports whether cancellation has been requested.
func (t *Token) Requested() bool {
	return t.ctx.Err() != nil
}

// Done is closed once cancellation has been requested.
func (t *Token) Done() <-chan struct{} {
	return t.ctx.Done()
}

// Context returns a context that is cancelled with the token.
func (t *Token) Context() context.Context {
	return t.ctx
}
