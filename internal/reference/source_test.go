package reference

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loan-approval/internal/models"
)

type stubLister struct {
	mu     sync.Mutex
	values map[string][]string
	err    error
	calls  int
}

func (s *stubLister) ListDistinct(_ context.Context, column string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.values[column], nil
}

func TestSnapshot(t *testing.T) {
	lister := &stubLister{values: map[string][]string{
		models.ColPersonGender: {"male", "female"},
		models.ColLoanIntent:   {"VENTURE", "EDUCATION"},
	}}

	choices, err := Snapshot(context.Background(), lister, []string{models.ColPersonGender, models.ColLoanIntent})
	require.NoError(t, err)

	assert.Equal(t, []string{"female", "male"}, choices.ChoicesFor(models.ColPersonGender))
	assert.Equal(t, []string{"EDUCATION", "VENTURE"}, choices.ChoicesFor(models.ColLoanIntent))
	assert.Empty(t, choices.ChoicesFor(models.ColPersonEducation))
	assert.Equal(t, []string{"No", "Yes"}, choices.ChoicesFor(models.ColPreviousDefaults))
}

func TestSnapshot_Error(t *testing.T) {
	lister := &stubLister{err: errors.New("db down")}
	_, err := Snapshot(context.Background(), lister, models.CategoricalColumns)
	assert.ErrorContains(t, err, "db down")
}

func TestChoices_Immutable(t *testing.T) {
	src := map[string][]string{models.ColPersonGender: {"male", "female"}}
	choices := NewChoices(src)

	src[models.ColPersonGender][0] = "changed"
	got := choices.ChoicesFor(models.ColPersonGender)
	got[0] = "mutated"

	assert.Equal(t, []string{"female", "male"}, choices.ChoicesFor(models.ColPersonGender))
}

func TestNilChoices(t *testing.T) {
	var choices *Choices
	assert.Nil(t, choices.ChoicesFor(models.ColPersonGender))
	assert.Equal(t, []string{"No", "Yes"}, choices.ChoicesFor(models.ColPreviousDefaults))

	all := choices.All()
	assert.Len(t, all, 5)
	assert.Empty(t, all[models.ColLoanIntent])
}
