package orchestrator

import contractx "github.com/waritnan/marque/agent/contract"

// Progress is the optional streaming side channel consumed by a UI. Every
// callback may be nil, and the whole struct may be nil: the turn behaves
// identically either way.
type Progress struct {
	OnProgress     func(stage contractx.Stage)
	OnToken        func(text string)
	OnThinkingStep func(step string)
	OnComplete     func(final string)
	OnError        func(err error)
}

// wantsStream reports whether the turn should use the streamed transport
// path. Only per-token consumers need it; everything else converges to the
// same buffered shape.
func (p *Progress) wantsStream() bool {
	return p != nil && p.OnToken != nil
}

func (p *Progress) stage(s contractx.Stage) {
	if p != nil && p.OnProgress != nil {
		p.OnProgress(s)
	}
}

func (p *Progress) thinkingStep(step string) {
	if p != nil && p.OnThinkingStep != nil {
		p.OnThinkingStep(step)
	}
}

func (p *Progress) complete(final string) {
	if p != nil && p.OnComplete != nil {
		p.OnComplete(final)
	}
}

func (p *Progress) error(err error) {
	if p != nil && p.OnError != nil {
		p.OnError(err)
	}
}
