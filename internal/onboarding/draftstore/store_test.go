package draftstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kycportal/internal/onboarding/models"
)

func contactPatch(fields string) models.Patch {
	return models.Patch{Section: models.SectionContact, Fields: json.RawMessage(fields)}
}

func TestStore_Update(t *testing.T) {
	s := New()

	t.Run("merges present keys only", func(t *testing.T) {
		_, err := s.Update(contactPatch(`{"fullName":"Ana Cruz","email":"ana@example.com"}`))
		require.NoError(t, err)
		d, err := s.Update(contactPatch(`{"email":"ana.cruz@example.com"}`))
		require.NoError(t, err)
		assert.Equal(t, "Ana Cruz", d.Contact.FullName)
		assert.Equal(t, "ana.cruz@example.com", d.Contact.Email)
	})

	t.Run("rejected patch leaves draft unchanged", func(t *testing.T) {
		before := s.Read()
		_, err := s.Update(contactPatch(`{"nickname":"ana"}`))
		require.Error(t, err)
		assert.Equal(t, before, s.Read())
	})
}

func TestStore_ReadReturnsCopy(t *testing.T) {
	s := New()
	_, err := s.Replace("branch", func(d models.Draft) (models.Draft, error) {
		return models.SwitchBranch(d, models.BranchIndividualBorrower, nil), nil
	})
	require.NoError(t, err)

	d := s.Read()
	d.Person.FirstName = "mutated"
	d.Attachments[models.SlotSelfie] = models.Attachment{Slot: models.SlotSelfie}

	fresh := s.Read()
	assert.Empty(t, fresh.Person.FirstName)
	assert.NotContains(t, fresh.Attachments, models.SlotSelfie)
}

func TestStore_ReplaceFailure(t *testing.T) {
	s := New()
	_, err := s.Update(contactPatch(`{"fullName":"Ana"}`))
	require.NoError(t, err)

	boom := errors.New("boom")
	d, err := s.Replace("broken", func(d models.Draft) (models.Draft, error) {
		d.Contact.FullName = "changed"
		return d, boom
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, "Ana", d.Contact.FullName)
	assert.Equal(t, "Ana", s.Read().Contact.FullName)
}

func TestStore_ResetAndWatch(t *testing.T) {
	s := New()
	var changes []Change
	s.Watch(func(c Change, _ models.Draft) { changes = append(changes, c) })

	_, err := s.Update(contactPatch(`{"fullName":"Ana"}`))
	require.NoError(t, err)
	_, err = s.Update(contactPatch(`{"bogus":1}`))
	require.Error(t, err)
	s.Reset()

	assert.Equal(t, []Change{
		{Kind: ChangeUpdate, Section: models.SectionContact},
		{Kind: ChangeReset},
	}, changes)
	assert.Equal(t, models.NewDraft(), s.Read())
}

func TestStore_ConcurrentUpdates(t *testing.T) {
	s := New()
	_, err := s.Replace("branch", func(d models.Draft) (models.Draft, error) {
		return models.SwitchBranch(d, models.BranchIndividualBorrower, nil), nil
	})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			section := models.SectionContact
			fields := fmt.Sprintf(`{"fullName":"user-%d"}`, i)
			if i%2 == 0 {
				section = models.SectionPersonal
				fields = fmt.Sprintf(`{"firstName":"first-%d"}`, i)
			}
			_, err := s.Update(models.Patch{Section: section, Fields: json.RawMessage(fields)})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	d := s.Read()
	assert.NotEmpty(t, d.Contact.FullName)
	assert.NotEmpty(t, d.Person.FirstName)
}
