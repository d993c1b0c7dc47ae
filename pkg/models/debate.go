package models

import "fmt"

// DebateSpeaker identifies a participant in the bull/bear debate.
type DebateSpeaker string

const (
	SpeakerBull DebateSpeaker = "bull"
	SpeakerBear DebateSpeaker = "bear"
)

// InvestmentDebateState tracks the bounded bull/bear debate.
// Count equals the number of round markers in History and is strictly
// monotonic: it increments by one per AppendTurn, never otherwise.
type InvestmentDebateState struct {
	History         string `json:"history,omitempty"`
	BullHistory     string `json:"bull_history,omitempty"`
	BearHistory     string `json:"bear_history,omitempty"`
	CurrentResponse string `json:"current_response,omitempty"`
	Count           int    `json:"count"`
}

// AppendTurn records one debate turn and increments the round counter.
func (d *InvestmentDebateState) AppendTurn(speaker DebateSpeaker, text string) {
	marker := fmt.Sprintf("【%s round %d】", speaker, d.Count+1)
	entry := marker + "\n" + text

	appendBlock(&d.History, entry)
	switch speaker {
	case SpeakerBull:
		appendBlock(&d.BullHistory, entry)
	case SpeakerBear:
		appendBlock(&d.BearHistory, entry)
	}
	d.CurrentResponse = text
	d.Count++
}

// RiskSpeaker identifies a participant in the three-way risk debate.
type RiskSpeaker string

const (
	SpeakerAggressive RiskSpeaker = "aggressive"
	SpeakerSafe       RiskSpeaker = "safe"
	SpeakerNeutral    RiskSpeaker = "neutral"
)

// RiskDebateState tracks the bounded aggressive/safe/neutral debate.
// Same counting rules as InvestmentDebateState.
type RiskDebateState struct {
	History            string `json:"history,omitempty"`
	AggressiveHistory  string `json:"aggressive_history,omitempty"`
	SafeHistory        string `json:"safe_history,omitempty"`
	NeutralHistory     string `json:"neutral_history,omitempty"`
	CurrentAggressive  string `json:"current_aggressive_response,omitempty"`
	CurrentSafe        string `json:"current_safe_response,omitempty"`
	CurrentNeutral     string `json:"current_neutral_response,omitempty"`
	Count              int    `json:"count"`
}

// AppendTurn records one risk debate turn and increments the counter.
func (d *RiskDebateState) AppendTurn(speaker RiskSpeaker, text string) {
	marker := fmt.Sprintf("【%s round %d】", speaker, d.Count+1)
	entry := marker + "\n" + text

	appendBlock(&d.History, entry)
	switch speaker {
	case SpeakerAggressive:
		appendBlock(&d.AggressiveHistory, entry)
		d.CurrentAggressive = text
	case SpeakerSafe:
		appendBlock(&d.SafeHistory, entry)
		d.CurrentSafe = text
	case SpeakerNeutral:
		appendBlock(&d.NeutralHistory, entry)
		d.CurrentNeutral = text
	}
	d.Count++
}

// CurrentOf returns the last response of the given speaker, empty if the
// speaker has not taken a turn yet.
func (d *RiskDebateState) CurrentOf(speaker RiskSpeaker) string {
	switch speaker {
	case SpeakerAggressive:
		return d.CurrentAggressive
	case SpeakerSafe:
		return d.CurrentSafe
	case SpeakerNeutral:
		return d.CurrentNeutral
	}
	return ""
}

func appendBlock(dst *string, block string) {
	if *dst == "" {
		*dst = block
		return
	}
	*dst += "\n\n" + block
}
