// Package reconcile maps a completed draft onto the canonical KYC payload.
// Reconcile is pure: it performs no I/O and builds a fresh payload on every
// call.
package reconcile

import (
	"errors"
	"fmt"
	"strings"

	"kycportal/internal/onboarding/models"
	pstrings "kycportal/pkg/platform/strings"
)

// ErrAttachmentNotEncoded is returned when a selected attachment has no
// encoded form yet.
var ErrAttachmentNotEncoded = errors.New("attachment not encoded")

// NotEncodedError names the slot that is missing its encoded form.
type NotEncodedError struct {
	Slot models.Slot
}

func (e *NotEncodedError) Error() string {
	return fmt.Sprintf("%s: %v", e.Slot, ErrAttachmentNotEncoded)
}

func (e *NotEncodedError) Is(target error) bool {
	return target == ErrAttachmentNotEncoded
}

// Reconcile builds the canonical payload for d. Keys that do not apply to the
// draft's branch are null, empty strings are null, and derived booleans are
// computed with explicit comparisons.
func Reconcile(d models.Draft) (*models.CanonicalPayload, error) {
	if !d.Branch.IsValid() {
		return nil, fmt.Errorf("reconcile: unknown branch %q", d.Branch)
	}
	for _, slot := range sortedSlots(d) {
		att := d.Attachments[slot]
		if att.File != nil && !att.IsEncoded() {
			return nil, &NotEncodedError{Slot: slot}
		}
	}

	p := &models.CanonicalPayload{}
	shared(p, d)

	switch d.Branch {
	case models.BranchIndividualBorrower:
		individual(p, d, individualBorrowerAliases)
	case models.BranchIndividualInvestor:
		individual(p, d, individualInvestorAliases)
	case models.BranchNonIndividualBorrower:
		entity(p, d, nonIndividualBorrowerAliases)
	case models.BranchNonIndividualInvestor:
		entity(p, d, nonIndividualInvestorAliases)
	case models.BranchDirectLender:
		lender(p, d)
	default:
		return nil, fmt.Errorf("reconcile: no mapping for branch %q", d.Branch)
	}
	return p, nil
}

func shared(p *models.CanonicalPayload, d models.Draft) {
	b := d.Branch
	p.AccountType = text(b.AccountType())
	p.IsIndividualAccount = flag(b.IsIndividual())
	p.IsDirectLender = flag(b.IsDirectLender())
	p.IsBorrower = flag(b.IsBorrower())
	p.IsInvestor = flag(b.IsInvestor())

	p.Email = text(d.Contact.Email)
	p.MobileNumber = text(d.Contact.MobileNumber)

	p.BankName = text(d.Bank.BankName)
	p.BankAccountName = text(d.Bank.AccountName)
	p.BankAccountNumber = text(d.Bank.AccountNumber)
	p.BankBranch = text(d.Bank.Branch)

	p.ProofOfAddressFile = encoded(d, models.SlotProofOfAddress)
	p.ConsentAccepted = flag(d.Consent.AllAccepted())
}

func individual(p *models.CanonicalPayload, d models.Draft, a personAliases) {
	person := d.Person
	if person == nil {
		person = &models.PersonalDetails{}
	}
	p.FirstName = text(person.FirstName)
	p.MiddleName = text(person.MiddleName)
	p.LastName = text(person.LastName)
	p.LegalName = firstOf(d.Contact.FullName, joinName(person.FirstName, person.MiddleName, person.LastName, person.Suffix))
	p.DateOfBirth = text(person.DateOfBirth)
	p.Gender = text(person.Gender)
	p.Nationality = text(person.Nationality)
	p.CivilStatus = text(person.CivilStatus)
	p.PlaceOfBirth = text(person.PlaceOfBirth)

	p.IDType = text(person.IDType)
	p.NationalIDNumber = resolve(person, a.NationalIDNumber)
	p.IDExpiryDate = text(person.IDExpiryDate)
	p.TaxIDNumber = resolve(person, a.TaxIDNumber)

	p.AddressLine = resolve(person, a.AddressLine)
	p.City = text(person.City)
	p.Province = text(person.Province)
	p.PostalCode = resolve(person, a.PostalCode)
	p.Country = text(person.Country)

	p.EmploymentStatus = text(person.EmploymentStatus)
	p.EmployerName = text(person.EmployerName)
	p.NatureOfBusiness = resolve(person, a.NatureOfBusiness)
	p.SourceOfFunds = resolve(person, a.SourceOfFunds)
	p.AnnualIncome = resolve(person, a.AnnualIncome)

	p.IsPoliticallyExposed = pep(resolve(person, a.PEP))
	p.PEPDetails = text(person.PEPDetails)

	p.NationalIDFile = encoded(d, models.SlotNationalID)
	p.SelfieFile = encoded(d, models.SlotSelfie)
	p.ProofOfIncomeFile = encoded(d, models.SlotProofOfIncome)
}

func entity(p *models.CanonicalPayload, d models.Draft, a entityAliases) {
	e := d.Entity
	if e == nil {
		e = &models.EntityDetails{}
	}
	p.BusinessName = resolve(e, a.BusinessName)
	p.LegalName = p.BusinessName
	p.BusinessRegistrationNumber = resolve(e, a.RegistrationNumber)
	p.BusinessRegistrationDate = resolve(e, a.RegistrationDate)
	p.BusinessType = text(e.BusinessType)
	p.AuthorizedSignatory = text(e.AuthorizedSignatory)
	p.SignatoryPosition = text(e.SignatoryPosition)
	p.Website = text(e.Website)
	p.TaxIDNumber = text(e.TIN)

	p.AddressLine = text(e.BusinessAddress)
	p.City = text(e.City)
	p.Province = text(e.Province)
	p.PostalCode = text(e.PostalCode)
	p.Country = text(e.Country)

	p.NatureOfBusiness = resolve(e, a.NatureOfBusiness)
	p.SourceOfFunds = text(e.SourceOfFunds)
	p.AnnualIncome = text(e.AnnualRevenue)
	p.IsPoliticallyExposed = pep(text(e.SignatoryPoliticallyExposed))

	p.RegistrationCertificateFile = encoded(d, models.SlotRegistrationCertificate)
	p.AuthorizationFile = encoded(d, models.SlotBoardAuthorization)
}

func lender(p *models.CanonicalPayload, d models.Draft) {
	l := d.Lender
	if l == nil {
		l = &models.LenderDetails{}
	}
	p.FirstName = text(l.FirstName)
	p.MiddleName = text(l.MiddleName)
	p.LastName = text(l.LastName)
	p.LegalName = firstOf(l.CompanyName, d.Contact.FullName, joinName(l.FirstName, l.MiddleName, l.LastName))
	p.DateOfBirth = text(l.DateOfBirth)
	p.Gender = text(l.Gender)
	p.Nationality = text(l.Nationality)

	p.IDType = text(l.IDType)
	p.NationalIDNumber = text(l.IDNumber)
	p.TaxIDNumber = text(l.TIN)

	p.AddressLine = text(l.AddressLine)
	p.City = text(l.City)
	p.Province = text(l.Province)
	p.PostalCode = text(l.PostalCode)
	p.Country = text(l.Country)

	p.NatureOfBusiness = text(l.Occupation)
	p.SourceOfFunds = text(l.SourceOfFunds)
	p.IsPoliticallyExposed = pep(text(l.IsPEP))
	p.PEPDetails = text(l.PEPDetails)

	if c := d.Criteria; c != nil {
		p.MaxFacility = text(c.MaxFacility)
		p.MinFacility = text(c.MinFacility)
		p.InterestRate = text(c.InterestRate)
		p.TenorMonths = text(c.TenorMonths)
		p.PreferredIndustries = text(strings.Join(pstrings.DedupeAndTrim(c.PreferredIndustries), ", "))
	}

	p.NationalIDFile = encoded(d, models.SlotNationalID)
	p.LendingCriteriaFile = encoded(d, models.SlotLendingCriteria)
}
