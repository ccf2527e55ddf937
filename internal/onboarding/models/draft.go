package models

import "maps"

// Section names a part of the draft a patch or a stage field addresses.
type Section string

const (
	SectionContact  Section = "contact"
	SectionPersonal Section = "personal"
	SectionEntity   Section = "entity"
	SectionLender   Section = "lender"
	SectionCriteria Section = "criteria"
	SectionBank     Section = "bank"
	SectionConsent  Section = "consent"
)

// Contact holds branch-agnostic fields. They survive branch switches.
type Contact struct {
	FullName     string `json:"fullName"`
	Email        string `json:"email"`
	MobileNumber string `json:"mobileNumber"`
}

// PersonalDetails is the individual-branch variant. Borrower and investor
// stages collect overlapping values under different names, so several fields
// are aliases of one canonical key.
type PersonalDetails struct {
	FirstName    string `json:"firstName"`
	MiddleName   string `json:"middleName"`
	LastName     string `json:"lastName"`
	Suffix       string `json:"suffix"`
	DateOfBirth  string `json:"dateOfBirth"`
	PlaceOfBirth string `json:"placeOfBirth"`
	Gender       string `json:"gender"`
	CivilStatus  string `json:"civilStatus"`
	Nationality  string `json:"nationality"`

	IDType           string `json:"idType"`
	IDNumber         string `json:"idNumber"`
	NationalIDNumber string `json:"nationalIdNumber"`
	IDExpiryDate     string `json:"idExpiryDate"`
	TIN              string `json:"tin"`
	TaxIDNumber      string `json:"taxIdNumber"`

	AddressLine string `json:"addressLine"`
	Street      string `json:"street"`
	City        string `json:"city"`
	Province    string `json:"province"`
	PostalCode  string `json:"postalCode"`
	ZipCode     string `json:"zipCode"`
	Country     string `json:"country"`

	EmploymentStatus  string `json:"employmentStatus"`
	EmployerName      string `json:"employerName"`
	Occupation        string `json:"occupation"`
	NatureOfBusiness  string `json:"natureOfBusiness"`
	SourceOfFunds     string `json:"sourceOfFunds"`
	SourceOfIncome    string `json:"sourceOfIncome"`
	AnnualIncome      string `json:"annualIncome"`
	GrossAnnualIncome string `json:"grossAnnualIncome"`

	PoliticallyExposed string `json:"politicallyExposed"`
	IsPEP              string `json:"isPep"`
	PEPDetails         string `json:"pepDetails"`
}

// EntityDetails is the non-individual variant.
type EntityDetails struct {
	BusinessName               string `json:"businessName"`
	EntityName                 string `json:"entityName"`
	TradeName                  string `json:"tradeName"`
	BusinessType               string `json:"businessType"`
	BusinessRegistrationNumber string `json:"businessRegistrationNumber"`
	RegistrationNumber         string `json:"registrationNumber"`
	RegistrationDate           string `json:"registrationDate"`
	DateOfIncorporation        string `json:"dateOfIncorporation"`
	Industry                   string `json:"industry"`
	NatureOfBusiness           string `json:"natureOfBusiness"`
	Website                    string `json:"website"`
	TIN                        string `json:"tin"`

	BusinessAddress string `json:"businessAddress"`
	City            string `json:"city"`
	Province        string `json:"province"`
	PostalCode      string `json:"postalCode"`
	Country         string `json:"country"`

	AuthorizedSignatory         string `json:"authorizedSignatory"`
	SignatoryPosition           string `json:"signatoryPosition"`
	SignatoryPoliticallyExposed string `json:"signatoryPoliticallyExposed"`

	SourceOfFunds string `json:"sourceOfFunds"`
	AnnualRevenue string `json:"annualRevenue"`
}

// LenderDetails is the direct-lender variant.
type LenderDetails struct {
	FirstName   string `json:"firstName"`
	MiddleName  string `json:"middleName"`
	LastName    string `json:"lastName"`
	CompanyName string `json:"companyName"`
	DateOfBirth string `json:"dateOfBirth"`
	Gender      string `json:"gender"`
	Nationality string `json:"nationality"`

	IDType   string `json:"idType"`
	IDNumber string `json:"idNumber"`
	TIN      string `json:"tin"`

	AddressLine string `json:"addressLine"`
	City        string `json:"city"`
	Province    string `json:"province"`
	PostalCode  string `json:"postalCode"`
	Country     string `json:"country"`

	Occupation    string `json:"occupation"`
	SourceOfFunds string `json:"sourceOfFunds"`
	IsPEP         string `json:"isPep"`
	PEPDetails    string `json:"pepDetails"`
}

// LendingCriteria is collected by the direct lender only.
type LendingCriteria struct {
	MaxFacility         string   `json:"maxFacility"`
	MinFacility         string   `json:"minFacility"`
	InterestRate        string   `json:"interestRate"`
	TenorMonths         string   `json:"tenorMonths"`
	PreferredIndustries []string `json:"preferredIndustries"`
}

type BankDetails struct {
	BankName      string `json:"bankName"`
	AccountName   string `json:"accountName"`
	AccountNumber string `json:"accountNumber"`
	Branch        string `json:"branch"`
}

// Consent holds the confirmation checkboxes. Each must be explicitly true.
type Consent struct {
	TermsAccepted        bool `json:"termsAccepted"`
	PrivacyAccepted      bool `json:"privacyAccepted"`
	InformationCertified bool `json:"informationCertified"`
}

// AllAccepted reports whether every checkbox is explicitly true.
func (c Consent) AllAccepted() bool {
	return c.TermsAccepted && c.PrivacyAccepted && c.InformationCertified
}

// Draft is the in-progress onboarding record of one session. Exactly one of
// Person, Entity or Lender is non-nil once a branch is active; Criteria is
// non-nil only for the direct lender.
type Draft struct {
	Branch      Branch              `json:"branch,omitempty"`
	Contact     Contact             `json:"contact"`
	Person      *PersonalDetails    `json:"personal,omitempty"`
	Entity      *EntityDetails      `json:"entity,omitempty"`
	Lender      *LenderDetails      `json:"lender,omitempty"`
	Criteria    *LendingCriteria    `json:"criteria,omitempty"`
	Bank        BankDetails         `json:"bank"`
	Consent     Consent             `json:"consent"`
	Attachments map[Slot]Attachment `json:"-"`
}

// NewDraft returns an empty draft with no branch selected.
func NewDraft() Draft {
	return Draft{Attachments: map[Slot]Attachment{}}
}

// Clone returns a deep copy. Attachment file handles are shared; they are
// read-only by contract.
func (d Draft) Clone() Draft {
	out := d
	if d.Person != nil {
		p := *d.Person
		out.Person = &p
	}
	if d.Entity != nil {
		e := *d.Entity
		out.Entity = &e
	}
	if d.Lender != nil {
		l := *d.Lender
		out.Lender = &l
	}
	if d.Criteria != nil {
		c := *d.Criteria
		c.PreferredIndustries = append([]string(nil), d.Criteria.PreferredIndustries...)
		out.Criteria = &c
	}
	out.Attachments = maps.Clone(d.Attachments)
	if out.Attachments == nil {
		out.Attachments = map[Slot]Attachment{}
	}
	return out
}

// SectionsFor lists the sections a branch may write.
func SectionsFor(b Branch) []Section {
	shared := []Section{SectionContact, SectionBank, SectionConsent}
	switch {
	case b.IsIndividual():
		return append(shared, SectionPersonal)
	case b.IsNonIndividual():
		return append(shared, SectionEntity)
	case b.IsDirectLender():
		return append(shared, SectionLender, SectionCriteria)
	}
	return shared
}

// section returns a pointer to the addressed section struct, or nil when the
// section is unknown or not active for the draft's branch.
func (d *Draft) section(s Section) any {
	switch s {
	case SectionContact:
		return &d.Contact
	case SectionBank:
		return &d.Bank
	case SectionConsent:
		return &d.Consent
	case SectionPersonal:
		if d.Person != nil {
			return d.Person
		}
	case SectionEntity:
		if d.Entity != nil {
			return d.Entity
		}
	case SectionLender:
		if d.Lender != nil {
			return d.Lender
		}
	case SectionCriteria:
		if d.Criteria != nil {
			return d.Criteria
		}
	}
	return nil
}

// Value looks up a stage-local field of a section. ok is false when the
// section is inactive or the name is unknown.
func (d Draft) Value(s Section, name string) (any, bool) {
	target := d.section(s)
	if target == nil {
		return nil, false
	}
	return Lookup(target, name)
}
