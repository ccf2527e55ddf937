package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	dErrors "kycportal/pkg/domain-errors"
)

type DraftSuite struct {
	suite.Suite
	draft Draft
}

func TestDraftSuite(t *testing.T) {
	suite.Run(t, new(DraftSuite))
}

func (s *DraftSuite) SetupTest() {
	s.draft = SwitchBranch(NewDraft(), BranchIndividualBorrower, nil)
}

func patch(section Section, fields string) Patch {
	return Patch{Section: section, Fields: json.RawMessage(fields)}
}

func (s *DraftSuite) TestApply() {
	s.Run("merges only present keys", func() {
		d, err := Apply(s.draft, patch(SectionPersonal, `{"firstName":"Ana","lastName":"Cruz"}`))
		s.Require().NoError(err)
		d, err = Apply(d, patch(SectionPersonal, `{"occupation":"Farmer"}`))
		s.Require().NoError(err)

		s.Equal("Ana", d.Person.FirstName)
		s.Equal("Cruz", d.Person.LastName)
		s.Equal("Farmer", d.Person.Occupation)
	})

	s.Run("does not touch other sections", func() {
		d, err := Apply(s.draft, patch(SectionContact, `{"email":"ana@example.com"}`))
		s.Require().NoError(err)
		d, err = Apply(d, patch(SectionBank, `{"accountNumber":"12345"}`))
		s.Require().NoError(err)

		s.Equal("ana@example.com", d.Contact.Email)
		s.Equal("12345", d.Bank.AccountNumber)
	})

	s.Run("is pure", func() {
		_, err := Apply(s.draft, patch(SectionPersonal, `{"firstName":"Ana"}`))
		s.Require().NoError(err)
		s.Empty(s.draft.Person.FirstName)
	})

	s.Run("rejects unknown section", func() {
		_, err := Apply(s.draft, patch("wallet", `{}`))
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("rejects section of another branch", func() {
		_, err := Apply(s.draft, patch(SectionEntity, `{"businessName":"Acme"}`))
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("rejects unknown field and leaves draft unchanged", func() {
		d, err := Apply(s.draft, patch(SectionPersonal, `{"firstName":"Ana","shoeSize":"9"}`))
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
		s.Empty(d.Person.FirstName)
	})

	s.Run("rejects non object fields", func() {
		_, err := Apply(s.draft, patch(SectionPersonal, `["firstName"]`))
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("consent requires booleans", func() {
		_, err := Apply(s.draft, patch(SectionConsent, `{"termsAccepted":"true"}`))
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))

		d, err := Apply(s.draft, patch(SectionConsent, `{"termsAccepted":true}`))
		s.Require().NoError(err)
		s.True(d.Consent.TermsAccepted)
	})
}

func (s *DraftSuite) TestSwitchBranch() {
	d, err := Apply(s.draft, patch(SectionContact, `{"fullName":"Ana Cruz","email":"ana@example.com"}`))
	s.Require().NoError(err)
	d, err = Apply(d, patch(SectionPersonal, `{"firstName":"Ana"}`))
	s.Require().NoError(err)
	d = SelectFile(d, SlotNationalID, NewBlobFile("id.png", "image/png", []byte("png")))
	d = SelectFile(d, SlotSelfie, NewBlobFile("me.png", "image/png", []byte("png")))

	s.Run("same branch is a no-op", func() {
		same := SwitchBranch(d, BranchIndividualBorrower, func(Slot) bool { return false })
		s.Equal("Ana", same.Person.FirstName)
		s.Len(same.Attachments, 2)
	})

	s.Run("resets branch fields and keeps shared ones", func() {
		next := SwitchBranch(d, BranchNonIndividualInvestor, func(slot Slot) bool { return slot == SlotNationalID })
		s.Equal(BranchNonIndividualInvestor, next.Branch)
		s.Nil(next.Person)
		s.NotNil(next.Entity)
		s.Equal("Ana Cruz", next.Contact.FullName)
		s.Equal("ana@example.com", next.Contact.Email)
		s.Contains(next.Attachments, SlotNationalID)
		s.NotContains(next.Attachments, SlotSelfie)
	})

	s.Run("direct lender gets lender and criteria sections", func() {
		next := SwitchBranch(d, BranchDirectLender, nil)
		s.NotNil(next.Lender)
		s.NotNil(next.Criteria)
		s.Nil(next.Person)
		s.Empty(next.Attachments)
	})
}

func (s *DraftSuite) TestAttachments() {
	first := NewBlobFile("id.png", "image/png", []byte("one"))
	d := SelectFile(s.draft, SlotNationalID, first)

	d, err := SetEncoded(d, SlotNationalID, first.ID(), "data:image/png;base64,b25l", "fp1")
	s.Require().NoError(err)
	s.True(d.Attachments[SlotNationalID].IsEncoded())

	s.Run("replacing the file clears the encoded form", func() {
		second := NewBlobFile("id2.png", "image/png", []byte("two"))
		replaced := SelectFile(d, SlotNationalID, second)
		s.False(replaced.Attachments[SlotNationalID].IsEncoded())
		s.Equal(second.ID(), replaced.Attachments[SlotNationalID].File.ID())

		s.Run("late encoding of the old file is rejected", func() {
			_, err := SetEncoded(replaced, SlotNationalID, first.ID(), "stale", "fp1")
			s.True(dErrors.HasCode(err, dErrors.CodeConflict))
		})
	})

	s.Run("remove empties the slot", func() {
		s.NotContains(RemoveFile(d, SlotNationalID).Attachments, SlotNationalID)
		s.Contains(d.Attachments, SlotNationalID)
	})
}

func TestLookup(t *testing.T) {
	p := &PersonalDetails{Occupation: "Farmer"}

	v, ok := Lookup(p, "occupation")
	require.True(t, ok)
	assert.Equal(t, "Farmer", v)

	_, ok = Lookup(p, "Occupation")
	assert.False(t, ok)

	_, ok = Lookup((*PersonalDetails)(nil), "occupation")
	assert.False(t, ok)

	assert.True(t, HasField(SectionBank, "accountNumber"))
	assert.False(t, HasField(SectionBank, "iban"))
	assert.Equal(t, "slice", FieldKind(SectionCriteria, "preferredIndustries").String())

	d := SwitchBranch(NewDraft(), BranchNonIndividualBorrower, nil)
	_, ok = d.Value(SectionPersonal, "firstName")
	assert.False(t, ok)
	_, ok = d.Value(SectionEntity, "businessName")
	assert.True(t, ok)
}

func TestClone_IsDeep(t *testing.T) {
	d := SwitchBranch(NewDraft(), BranchDirectLender, nil)
	d.Criteria.PreferredIndustries = []string{"agri"}

	c := d.Clone()
	c.Criteria.PreferredIndustries[0] = "retail"
	c.Lender.FirstName = "Changed"
	c.Attachments[SlotSelfie] = Attachment{Slot: SlotSelfie}

	assert.Equal(t, "agri", d.Criteria.PreferredIndustries[0])
	assert.Empty(t, d.Lender.FirstName)
	assert.NotContains(t, d.Attachments, SlotSelfie)
}

func TestBranchPredicates(t *testing.T) {
	tests := []struct {
		branch                            Branch
		individual, nonIndividual, lender bool
		borrower, investor                bool
		accountType                       string
	}{
		{BranchIndividualBorrower, true, false, false, true, false, "borrower"},
		{BranchNonIndividualBorrower, false, true, false, true, false, "borrower"},
		{BranchIndividualInvestor, true, false, false, false, true, "investor"},
		{BranchNonIndividualInvestor, false, true, false, false, true, "investor"},
		{BranchDirectLender, false, false, true, false, true, "lender"},
	}
	for _, tt := range tests {
		t.Run(tt.branch.String(), func(t *testing.T) {
			assert.Equal(t, tt.individual, tt.branch.IsIndividual())
			assert.Equal(t, tt.nonIndividual, tt.branch.IsNonIndividual())
			assert.Equal(t, tt.lender, tt.branch.IsDirectLender())
			assert.Equal(t, tt.borrower, tt.branch.IsBorrower())
			assert.Equal(t, tt.investor, tt.branch.IsInvestor())
			assert.Equal(t, tt.accountType, tt.branch.AccountType())
		})
	}

	_, err := ParseBranch("corporate")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	b, err := ParseBranch(" Direct_Lender ")
	require.NoError(t, err)
	assert.Equal(t, BranchDirectLender, b)

	_, err = ParseFlow("")
	assert.Error(t, err)
}

func TestSubmissionResult_Record(t *testing.T) {
	r := &SubmissionResult{}
	r.Record(StepEncodeAttachments, StepSucceeded, nil)
	r.Record(StepCreateAccount, StepFailed, assert.AnError)
	r.Record(StepCompleteKYC, StepSkipped, nil)

	assert.False(t, r.Succeeded())
	assert.Equal(t, StepCreateAccount, r.FailedStep)
	o, ok := r.Outcome(StepCreateAccount)
	require.True(t, ok)
	assert.Equal(t, assert.AnError.Error(), o.Error)
}
