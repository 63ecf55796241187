package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewValidatorRegistersClubTags(t *testing.T) {
	v := NewValidator()

	assert.NoError(t, v.Var("18:30", "hhmm"))
	assert.Error(t, v.Var("6pm", "hhmm"))
	assert.NoError(t, v.Var("finished", "match_status"))
	assert.Error(t, v.Var("abandoned", "match_status"))
	assert.NoError(t, v.Var("RRULE:FREQ=WEEKLY;BYDAY=TU,TH", "rrule"))
	assert.Error(t, v.Var("FREQ=SOMETIMES", "rrule"))
}

func TestEnsureValidatorSharesGivenInstance(t *testing.T) {
	shared := NewValidator()
	assert.Same(t, shared, ensureValidator(shared))

	fallback := ensureValidator(nil)
	require.NotNil(t, fallback)
	assert.NotSame(t, shared, fallback)
	assert.NoError(t, fallback.Var("COACH", "member_role"))
}
