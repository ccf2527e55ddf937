package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"kycportal/internal/onboarding/models"
)

type ValidatorSuite struct {
	suite.Suite
	draft models.Draft
}

func TestValidatorSuite(t *testing.T) {
	suite.Run(t, new(ValidatorSuite))
}

func (s *ValidatorSuite) SetupTest() {
	s.draft = models.SwitchBranch(models.NewDraft(), models.BranchIndividualBorrower, nil)
}

func (s *ValidatorSuite) patch(section models.Section, fields string) {
	d, err := models.Apply(s.draft, models.Patch{Section: section, Fields: json.RawMessage(fields)})
	s.Require().NoError(err)
	s.draft = d
}

func bankStage() models.Stage {
	return models.Stage{
		Name: "bank_account",
		Fields: []models.FieldRule{
			{Section: models.SectionBank, Name: "bankName", Label: "Bank", Required: true},
			{Section: models.SectionBank, Name: "accountNumber", Label: "Account number", Required: true, MinLength: 5, Numeric: true},
			{Section: models.SectionBank, Name: "branch", Label: "Bank branch"},
		},
	}
}

func (s *ValidatorSuite) TestRequiredStrings() {
	s.Run("whitespace counts as empty", func() {
		s.patch(models.SectionBank, `{"bankName":"   ","accountNumber":"12345"}`)
		errs := Validate(bankStage(), s.draft)
		s.Require().Len(errs, 1)
		s.True(errs.Has("bank.bankName", CodeRequired))
	})

	s.Run("optional empty field passes", func() {
		s.patch(models.SectionBank, `{"bankName":"BDO","accountNumber":"12345","branch":""}`)
		s.Nil(Validate(bankStage(), s.draft))
	})
}

func (s *ValidatorSuite) TestMinLength() {
	s.Run("short account number is a field error", func() {
		s.patch(models.SectionBank, `{"bankName":"BDO","accountNumber":"1234"}`)
		errs := Validate(bankStage(), s.draft)
		s.True(errs.Has("bank.accountNumber", CodeMinLength))
	})

	s.Run("length is measured after trimming", func() {
		s.patch(models.SectionBank, `{"bankName":"BDO","accountNumber":"  1234  "}`)
		errs := Validate(bankStage(), s.draft)
		s.True(errs.Has("bank.accountNumber", CodeMinLength))
	})

	s.Run("numeric rule", func() {
		s.patch(models.SectionBank, `{"bankName":"BDO","accountNumber":"12ab345"}`)
		errs := Validate(bankStage(), s.draft)
		s.True(errs.Has("bank.accountNumber", CodeNotNumeric))
	})
}

func (s *ValidatorSuite) TestConsent() {
	stage := models.Stage{
		Name: "declarations",
		Fields: []models.FieldRule{
			{Section: models.SectionConsent, Name: "termsAccepted", MustAccept: true},
			{Section: models.SectionConsent, Name: "privacyAccepted", MustAccept: true},
		},
	}

	s.Run("unchecked boxes fail", func() {
		errs := Validate(stage, s.draft)
		s.Len(errs, 2)
		s.True(errs.Has("consent.termsAccepted", CodeMustAccept))
	})

	s.Run("explicit true passes", func() {
		s.patch(models.SectionConsent, `{"termsAccepted":true,"privacyAccepted":true}`)
		s.Nil(Validate(stage, s.draft))
	})
}

func (s *ValidatorSuite) TestEmail() {
	stage := models.Stage{Fields: []models.FieldRule{
		{Section: models.SectionContact, Name: "email", Required: true, Email: true},
	}}
	s.patch(models.SectionContact, `{"email":"Jane <jane@example.com>"}`)
	s.True(Validate(stage, s.draft).Has("contact.email", CodeInvalidEmail))

	s.patch(models.SectionContact, `{"email":"jane@example.com"}`)
	s.Nil(Validate(stage, s.draft))
}

func (s *ValidatorSuite) TestFiles() {
	stage := models.Stage{Files: []models.FileRule{
		{Slot: models.SlotNationalID, Required: true},
		{Slot: models.SlotSelfie},
	}}

	errs := Validate(stage, s.draft)
	s.Require().Len(errs, 1)
	s.True(errs.Has("attachments.national_id", CodeFileRequired))

	s.draft = models.SelectFile(s.draft, models.SlotNationalID, models.NewBlobFile("id.png", "image/png", []byte{1}))
	s.Nil(Validate(stage, s.draft))
}

func (s *ValidatorSuite) TestInactiveSection() {
	stage := models.Stage{Fields: []models.FieldRule{
		{Section: models.SectionEntity, Name: "businessName", Required: true},
	}}
	errs := Validate(stage, s.draft)
	s.True(errs.Has("entity.businessName", CodeRequired))
}

func TestPreferredIndustriesRequiresOneEntry(t *testing.T) {
	d := models.SwitchBranch(models.NewDraft(), models.BranchDirectLender, nil)
	stage := models.Stage{Fields: []models.FieldRule{
		{Section: models.SectionCriteria, Name: "preferredIndustries", Required: true},
	}}

	d, err := models.Apply(d, models.Patch{Section: models.SectionCriteria, Fields: json.RawMessage(`{"preferredIndustries":["  ",""]}`)})
	require.NoError(t, err)
	assert.True(t, Validate(stage, d).Has("criteria.preferredIndustries", CodeRequired))

	d, err = models.Apply(d, models.Patch{Section: models.SectionCriteria, Fields: json.RawMessage(`{"preferredIndustries":["Agriculture"]}`)})
	require.NoError(t, err)
	assert.Nil(t, Validate(stage, d))
}

func TestAsFieldErrors(t *testing.T) {
	errs := FieldErrors{{Section: models.SectionBank, Field: "accountNumber", Code: CodeMinLength}}
	wrapped := fmt.Errorf("advance: %w", errs)

	got, ok := AsFieldErrors(wrapped)
	require.True(t, ok)
	assert.Equal(t, errs, got)
	assert.Contains(t, wrapped.Error(), "bank.accountNumber: min_length")

	_, ok = AsFieldErrors(errors.New("boom"))
	assert.False(t, ok)
}
