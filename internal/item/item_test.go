package item

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateType(t *testing.T) {
	for _, typ := range TypeOrder {
		if err := ValidateType(typ); err != nil {
			t.Errorf("ValidateType(%s) = %v, want nil", typ, err)
		}
	}
	if err := ValidateType("Epic"); err == nil {
		t.Error("ValidateType(Epic) = nil, want error")
	}
}

func TestChildType(t *testing.T) {
	cases := []struct {
		typ  ItemType
		want ItemType
	}{
		{TypeProject, TypePRD},
		{TypePRD, TypeTask},
		{TypeTask, TypeSubtask},
		{TypeSubtask, ""},
		{ItemType("Epic"), ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.typ.ChildType(), "ChildType(%s)", tc.typ)
	}
}

func TestParentType(t *testing.T) {
	cases := []struct {
		typ  ItemType
		want ItemType
	}{
		{TypeProject, ""},
		{TypePRD, TypeProject},
		{TypeTask, TypePRD},
		{TypeSubtask, TypeTask},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.typ.ParentType(), "ParentType(%s)", tc.typ)
	}
}

func TestParseStatus_AcceptsVocabulary(t *testing.T) {
	for _, s := range StatusOrder {
		got, err := ParseStatus(string(s))
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
}

func TestParseStatus_RejectsUnknownToken(t *testing.T) {
	for _, raw := range []string{"done", "Doing", "Cancelled", ""} {
		_, err := ParseStatus(raw)
		require.Error(t, err, "ParseStatus(%q)", raw)
		assert.Equal(t, KindValidation, KindOf(err))
	}
}

func TestStatusRank_IsTotalOrder(t *testing.T) {
	prev := -1
	for _, s := range StatusOrder {
		r, ok := s.Rank()
		require.True(t, ok)
		assert.Greater(t, r, prev)
		prev = r
	}
}

func TestErrorCarriesKindNodesAndHint(t *testing.T) {
	err := Validation("child type must be exactly one level junior", "create a Task under the PRD instead", "n1", "n2")

	assert.Equal(t, KindValidation, KindOf(err))
	assert.Contains(t, err.Error(), "n1")
	assert.Contains(t, err.Error(), "n2")
	assert.NotEmpty(t, err.Hint)
}

func TestErrorUnwrap(t *testing.T) {
	cause := fmt.Errorf("store timeout")
	err := Transient("update failed", cause, "n1")

	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, KindTransient, KindOf(err))
}

func TestKindRetryable(t *testing.T) {
	assert.False(t, KindValidation.Retryable())
	assert.False(t, KindNotFound.Retryable())
	assert.False(t, KindCycle.Retryable())
	assert.True(t, KindConflict.Retryable())
	assert.True(t, KindTransient.Retryable())
}

func TestKindOf_NonEngineError(t *testing.T) {
	assert.Equal(t, Kind(""), KindOf(fmt.Errorf("plain")))
}
