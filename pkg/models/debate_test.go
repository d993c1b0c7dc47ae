package models

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInvestmentDebate_AppendTurn(t *testing.T) {
	var debate InvestmentDebateState

	debate.AppendTurn(SpeakerBull, "bullish opening")
	assert.Equal(t, 1, debate.Count)
	assert.Contains(t, debate.History, "【bull round 1】")
	assert.Contains(t, debate.BullHistory, "bullish opening")
	assert.Empty(t, debate.BearHistory)
	assert.Equal(t, "bullish opening", debate.CurrentResponse)

	debate.AppendTurn(SpeakerBear, "bearish rebuttal")
	assert.Equal(t, 2, debate.Count)
	assert.Contains(t, debate.History, "【bear round 2】")
	assert.Contains(t, debate.BearHistory, "bearish rebuttal")
	assert.Equal(t, "bearish rebuttal", debate.CurrentResponse)
}

func TestInvestmentDebate_CountMatchesMarkers(t *testing.T) {
	var debate InvestmentDebateState
	for i := 0; i < 5; i++ {
		speaker := SpeakerBull
		if i%2 == 1 {
			speaker = SpeakerBear
		}
		debate.AppendTurn(speaker, fmt.Sprintf("turn %d", i+1))
	}
	assert.Equal(t, 5, debate.Count)
	assert.Equal(t, 5, strings.Count(debate.History, "【"))
}

func TestRiskDebate_AppendTurn(t *testing.T) {
	var debate RiskDebateState

	debate.AppendTurn(SpeakerAggressive, "size up")
	debate.AppendTurn(SpeakerSafe, "size down")
	debate.AppendTurn(SpeakerNeutral, "split the difference")

	assert.Equal(t, 3, debate.Count)
	assert.Contains(t, debate.History, "【aggressive round 1】")
	assert.Contains(t, debate.History, "【safe round 2】")
	assert.Contains(t, debate.History, "【neutral round 3】")
	assert.Equal(t, "size up", debate.CurrentOf(SpeakerAggressive))
	assert.Equal(t, "size down", debate.CurrentOf(SpeakerSafe))
	assert.Equal(t, "split the difference", debate.CurrentOf(SpeakerNeutral))
}

func TestRiskDebate_CurrentOf_Unspoken(t *testing.T) {
	var debate RiskDebateState
	debate.AppendTurn(SpeakerAggressive, "size up")
	assert.Empty(t, debate.CurrentOf(SpeakerSafe))
	assert.Empty(t, debate.CurrentOf(SpeakerNeutral))
}
