package catalog

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"kycportal/internal/onboarding/models"
	dErrors "kycportal/pkg/domain-errors"
)

type CatalogSuite struct {
	suite.Suite
	catalog  *Catalog
	selector *Selector
}

func TestCatalogSuite(t *testing.T) {
	suite.Run(t, new(CatalogSuite))
}

func (s *CatalogSuite) SetupTest() {
	c, err := Default()
	s.Require().NoError(err)
	s.catalog = c
	s.selector = NewSelector(c)
}

func (s *CatalogSuite) TestOffer() {
	s.Equal([]models.Branch{models.BranchIndividualBorrower, models.BranchNonIndividualBorrower},
		s.selector.Offer(models.FlowBorrower))
	s.Equal([]models.Branch{models.BranchIndividualInvestor, models.BranchNonIndividualInvestor, models.BranchDirectLender},
		s.selector.Offer(models.FlowInvestor))
}

func (s *CatalogSuite) TestEveryBranchHasPipeline() {
	for _, b := range models.AllBranches {
		stages, ok := s.catalog.Pipeline(b)
		s.Require().True(ok, b)
		s.NotEmpty(stages)
		s.Equal("declarations", stages[len(stages)-1].Name, "consent is the last stage of %s", b)
	}
}

func (s *CatalogSuite) TestRequiredDocuments() {
	s.Run("non-individual branches require registration certificate and authorization", func() {
		for _, b := range []models.Branch{models.BranchNonIndividualBorrower, models.BranchNonIndividualInvestor} {
			s.True(requiresSlot(s.catalog, b, models.SlotRegistrationCertificate), b)
			s.True(requiresSlot(s.catalog, b, models.SlotBoardAuthorization), b)
			s.False(requiresSlot(s.catalog, b, models.SlotNationalID), b)
		}
	})

	s.Run("individual branches require a national id", func() {
		s.True(requiresSlot(s.catalog, models.BranchIndividualBorrower, models.SlotNationalID))
		s.True(requiresSlot(s.catalog, models.BranchIndividualInvestor, models.SlotNationalID))
	})

	s.Run("direct lender requires lending criteria document", func() {
		s.True(requiresSlot(s.catalog, models.BranchDirectLender, models.SlotLendingCriteria))
	})

	s.Run("bank account number has a minimum length", func() {
		stages, _ := s.catalog.Pipeline(models.BranchIndividualBorrower)
		var found bool
		for _, st := range stages {
			for _, f := range st.Fields {
				if f.Section == models.SectionBank && f.Name == "accountNumber" {
					found = true
					s.Equal(5, f.MinLength)
				}
			}
		}
		s.True(found)
	})
}

func requiresSlot(c *Catalog, b models.Branch, slot models.Slot) bool {
	stages, _ := c.Pipeline(b)
	for _, st := range stages {
		for _, f := range st.Files {
			if f.Slot == slot && f.Required {
				return true
			}
		}
	}
	return false
}

func (s *CatalogSuite) TestSelect() {
	draft := models.NewDraft()

	s.Run("rejects branch not offered by flow", func() {
		_, _, err := s.selector.Select(draft, models.FlowBorrower, models.BranchDirectLender)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("switch clears stale entity fields but keeps contact", func() {
		d, _, err := s.selector.Select(draft, models.FlowInvestor, models.BranchNonIndividualInvestor)
		s.Require().NoError(err)
		d, err = models.Apply(d, models.Patch{Section: models.SectionEntity, Fields: json.RawMessage(`{"entityName":"Acme Co."}`)})
		s.Require().NoError(err)
		d, err = models.Apply(d, models.Patch{Section: models.SectionContact, Fields: json.RawMessage(`{"email":"ops@acme.test"}`)})
		s.Require().NoError(err)
		d = models.SelectFile(d, models.SlotBoardAuthorization, models.NewBlobFile("board.pdf", "application/pdf", []byte("%PDF")))
		d = models.SelectFile(d, models.SlotNationalID, models.NewBlobFile("id.png", "image/png", []byte("png")))

		next, stages, err := s.selector.Select(d, models.FlowInvestor, models.BranchIndividualInvestor)
		s.Require().NoError(err)
		s.NotEmpty(stages)
		s.Nil(next.Entity)
		s.NotNil(next.Person)
		s.Equal("ops@acme.test", next.Contact.Email)
		s.NotContains(next.Attachments, models.SlotBoardAuthorization)
		s.Contains(next.Attachments, models.SlotNationalID)
	})
}

func TestLoad_RejectsInvalidDocuments(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{
			name: "unknown field",
			doc: `
branches:
  individual_borrower:
    - name: s1
      fields:
        - {section: personal, name: shoeSize}
`,
			want: "unknown field",
		},
		{
			name: "section outside branch",
			doc: `
branches:
  individual_borrower:
    - name: s1
      fields:
        - {section: entity, name: businessName}
`,
			want: "outside branch",
		},
		{
			name: "unknown slot",
			doc: `
branches:
  individual_borrower:
    - name: s1
      files:
        - {slot: passport_scan}
`,
			want: "unknown slot",
		},
		{
			name: "checkbox without mustAccept",
			doc: `
branches:
  individual_borrower:
    - name: s1
      fields:
        - {section: consent, name: termsAccepted}
`,
			want: "checkbox",
		},
		{
			name: "unknown top-level key",
			doc:  "pipelines: {}\n",
			want: "decode",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load([]byte(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
