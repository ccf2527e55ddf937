package reconcile

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"kycportal/internal/onboarding/encoding"
	"kycportal/internal/onboarding/models"
	"kycportal/pkg/testutil"
)

var (
	entityOnlyKeys = []string{
		"businessName", "businessRegistrationNumber", "businessRegistrationDate", "businessType",
		"authorizedSignatory", "signatoryPosition", "website", "registrationCertificateFile", "authorizationFile",
	}
	individualOnlyKeys = []string{
		"firstName", "middleName", "lastName", "dateOfBirth", "gender", "civilStatus", "placeOfBirth",
		"nationality", "idType", "nationalIdNumber", "idExpiryDate", "employmentStatus", "employerName",
		"nationalIdFile", "selfieFile", "proofOfIncomeFile",
	}
	lenderOnlyKeys = []string{
		"maxFacility", "minFacility", "interestRate", "tenorMonths", "preferredIndustries", "lendingCriteriaFile",
	}
)

func encodedDraft(t *testing.T, branch models.Branch) models.Draft {
	t.Helper()
	d, err := testutil.FilledDraft(branch)
	require.NoError(t, err)
	enc := encoding.New()
	for slot := range d.Attachments {
		d, err = enc.EncodeSlot(context.Background(), d, slot)
		require.NoError(t, err)
	}
	return d
}

func asMap(t *testing.T, p *models.CanonicalPayload) map[string]any {
	t.Helper()
	raw, err := json.Marshal(p)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func patch(t *testing.T, d models.Draft, section models.Section, fields string) models.Draft {
	t.Helper()
	next, err := models.Apply(d, models.Patch{Section: section, Fields: json.RawMessage(fields)})
	require.NoError(t, err)
	return next
}

type ReconcileSuite struct {
	suite.Suite
}

func TestReconcileSuite(t *testing.T) {
	suite.Run(t, new(ReconcileSuite))
}

func (s *ReconcileSuite) TestSanitization() {
	for _, branch := range models.AllBranches {
		s.Run(string(branch), func() {
			d := encodedDraft(s.T(), branch)
			d = patch(s.T(), d, models.SectionBank, `{"branch":"   "}`)

			p, err := Reconcile(d)
			s.Require().NoError(err)
			m := asMap(s.T(), p)
			for key, v := range m {
				s.NotEqual("", v, "key %s must be null rather than empty", key)
			}
			s.Nil(m["bankBranch"])
			s.Contains(m, "bankBranch", "absent keys are serialized as null")
		})
	}
}

func (s *ReconcileSuite) TestBranchExclusivity() {
	for _, branch := range models.AllBranches {
		s.Run(string(branch), func() {
			p, err := Reconcile(encodedDraft(s.T(), branch))
			s.Require().NoError(err)
			m := asMap(s.T(), p)

			if !branch.IsNonIndividual() {
				for _, key := range entityOnlyKeys {
					s.Nil(m[key], "entity key %s", key)
				}
			}
			if branch.IsNonIndividual() {
				for _, key := range individualOnlyKeys {
					s.Nil(m[key], "individual key %s", key)
				}
			}
			if !branch.IsDirectLender() {
				for _, key := range lenderOnlyKeys {
					s.Nil(m[key], "lender key %s", key)
				}
			}
		})
	}
}

// An individual borrower submits the encoded form of the exact file attached
// to the national ID slot and no entity registration.
func (s *ReconcileSuite) TestIndividualBorrowerUsesEncodedAttachment() {
	d, err := testutil.FilledDraft(models.BranchIndividualBorrower)
	s.Require().NoError(err)
	file := d.Attachments[models.SlotNationalID].File
	s.Require().NotNil(file)
	want, err := encoding.New().Encode(context.Background(), models.SlotNationalID, file)
	s.Require().NoError(err)

	d, err = models.SetEncoded(d, models.SlotNationalID, want.FileID, want.Encoded, want.Fingerprint)
	s.Require().NoError(err)
	for slot, att := range d.Attachments {
		if !att.IsEncoded() {
			d, err = encoding.New().EncodeSlot(context.Background(), d, slot)
			s.Require().NoError(err)
		}
	}

	p, err := Reconcile(d)
	s.Require().NoError(err)
	s.Require().NotNil(p.NationalIDFile)
	s.Equal(want.Encoded, *p.NationalIDFile)
	s.Require().NotNil(p.IsIndividualAccount)
	s.True(*p.IsIndividualAccount)

	m := asMap(s.T(), p)
	s.Contains(m, "businessRegistrationNumber")
	s.Nil(m["businessRegistrationNumber"])
}

// A non-individual investor payload carries the entity keys and
// no individual identity keys.
func (s *ReconcileSuite) TestNonIndividualInvestor() {
	p, err := Reconcile(encodedDraft(s.T(), models.BranchNonIndividualInvestor))
	s.Require().NoError(err)

	s.Equal("investor", *p.AccountType)
	s.False(*p.IsIndividualAccount)
	s.True(*p.IsInvestor)
	s.False(*p.IsBorrower)
	s.Equal("Santos Holdings Inc", *p.BusinessName)
	s.Equal("Santos Holdings Inc", *p.LegalName)
	s.Equal("CS202011111", *p.BusinessRegistrationNumber)
	s.Equal("2020-01-15", *p.BusinessRegistrationDate)
	s.NotNil(p.RegistrationCertificateFile)
	s.NotNil(p.AuthorizationFile)
	s.Nil(p.FirstName)
	s.Nil(p.NationalIDFile)
	s.False(*p.IsPoliticallyExposed)
}

func (s *ReconcileSuite) TestDirectLender() {
	p, err := Reconcile(encodedDraft(s.T(), models.BranchDirectLender))
	s.Require().NoError(err)

	s.Equal("lender", *p.AccountType)
	s.False(*p.IsIndividualAccount)
	s.True(*p.IsDirectLender)
	s.True(*p.IsInvestor)
	s.Equal("Maria Santos", *p.LegalName)
	s.Equal("Agriculture, Retail", *p.PreferredIndustries)
	s.Equal("5000000", *p.MaxFacility)
	s.False(*p.IsPoliticallyExposed)
	s.NotNil(p.LendingCriteriaFile)

	s.Run("company name wins over full name", func() {
		d := patch(s.T(), encodedDraft(s.T(), models.BranchDirectLender), models.SectionLender, `{"companyName":"Santos Lending Co"}`)
		p, err := Reconcile(d)
		s.Require().NoError(err)
		s.Equal("Santos Lending Co", *p.LegalName)
	})
}

func (s *ReconcileSuite) TestAliasPrecedence() {
	s.Run("borrower prefers idNumber and investor prefers nationalIdNumber", func() {
		for _, tc := range []struct {
			branch models.Branch
			want   string
		}{
			{models.BranchIndividualBorrower, "ID-BORROWER"},
			{models.BranchIndividualInvestor, "ID-INVESTOR"},
		} {
			d := encodedDraft(s.T(), tc.branch)
			d = patch(s.T(), d, models.SectionPersonal, `{"idNumber":"ID-BORROWER","nationalIdNumber":"ID-INVESTOR"}`)
			p, err := Reconcile(d)
			s.Require().NoError(err)
			s.Equal(tc.want, *p.NationalIDNumber, tc.branch)
		}
	})

	s.Run("empty preferred alias falls through", func() {
		d := encodedDraft(s.T(), models.BranchIndividualBorrower)
		d = patch(s.T(), d, models.SectionPersonal, `{"addressLine":"  ","street":"7 Luna St"}`)
		p, err := Reconcile(d)
		s.Require().NoError(err)
		s.Equal("7 Luna St", *p.AddressLine)
	})

	s.Run("repeated reconciliation is identical", func() {
		d := encodedDraft(s.T(), models.BranchIndividualInvestor)
		first, err := Reconcile(d)
		s.Require().NoError(err)
		for i := 0; i < 20; i++ {
			next, err := Reconcile(d)
			s.Require().NoError(err)
			s.Equal(first, next)
		}
	})
}

func TestPEPEquality(t *testing.T) {
	tests := []struct {
		value string
		want  *bool
	}{
		{"yes", flag(true)},
		{"TRUE", flag(true)},
		{" no ", flag(false)},
		{"false", flag(false)},
		{"", nil},
		{"maybe", nil},
		{"1", nil},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			d := encodedDraft(t, models.BranchIndividualBorrower)
			d = patch(t, d, models.SectionPersonal, `{"politicallyExposed":`+jsonString(tt.value)+`}`)
			p, err := Reconcile(d)
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.IsPoliticallyExposed)
		})
	}
}

func jsonString(v string) string {
	b, _ := json.Marshal(v)
	return string(b)
}

func TestConsentAccepted(t *testing.T) {
	d := encodedDraft(t, models.BranchIndividualBorrower)
	d = patch(t, d, models.SectionConsent, `{"informationCertified":false}`)
	p, err := Reconcile(d)
	require.NoError(t, err)
	assert.False(t, *p.ConsentAccepted)
}

func TestReconcile_RequiresEncodedAttachments(t *testing.T) {
	d, err := testutil.FilledDraft(models.BranchNonIndividualBorrower)
	require.NoError(t, err)

	_, err = Reconcile(d)
	require.ErrorIs(t, err, ErrAttachmentNotEncoded)
	var nee *NotEncodedError
	require.ErrorAs(t, err, &nee)
	assert.Equal(t, models.SlotBoardAuthorization, nee.Slot)
}

func TestReconcile_UnknownBranch(t *testing.T) {
	_, err := Reconcile(models.NewDraft())
	require.Error(t, err)
}
