package models

// CanonicalPayload is the flat KYC record sent to the account service. Every
// field is a pointer without omitempty: absent values serialize as null and
// never as an empty string.
type CanonicalPayload struct {
	AccountType         *string `json:"accountType"`
	IsIndividualAccount *bool   `json:"isIndividualAccount"`
	IsDirectLender      *bool   `json:"isDirectLender"`
	IsBorrower          *bool   `json:"isBorrower"`
	IsInvestor          *bool   `json:"isInvestor"`

	FirstName    *string `json:"firstName"`
	MiddleName   *string `json:"middleName"`
	LastName     *string `json:"lastName"`
	LegalName    *string `json:"legalName"`
	Email        *string `json:"email"`
	MobileNumber *string `json:"mobileNumber"`
	DateOfBirth  *string `json:"dateOfBirth"`
	Gender       *string `json:"gender"`
	Nationality  *string `json:"nationality"`
	CivilStatus  *string `json:"civilStatus"`
	PlaceOfBirth *string `json:"placeOfBirth"`

	IDType           *string `json:"idType"`
	NationalIDNumber *string `json:"nationalIdNumber"`
	IDExpiryDate     *string `json:"idExpiryDate"`
	TaxIDNumber      *string `json:"taxIdNumber"`

	AddressLine *string `json:"addressLine"`
	City        *string `json:"city"`
	Province    *string `json:"province"`
	PostalCode  *string `json:"postalCode"`
	Country     *string `json:"country"`

	EmploymentStatus *string `json:"employmentStatus"`
	EmployerName     *string `json:"employerName"`
	NatureOfBusiness *string `json:"natureOfBusiness"`
	SourceOfFunds    *string `json:"sourceOfFunds"`
	AnnualIncome     *string `json:"annualIncome"`

	IsPoliticallyExposed *bool   `json:"isPoliticallyExposed"`
	PEPDetails           *string `json:"pepDetails"`

	BusinessName               *string `json:"businessName"`
	BusinessRegistrationNumber *string `json:"businessRegistrationNumber"`
	BusinessRegistrationDate   *string `json:"businessRegistrationDate"`
	BusinessType               *string `json:"businessType"`
	AuthorizedSignatory        *string `json:"authorizedSignatory"`
	SignatoryPosition          *string `json:"signatoryPosition"`
	Website                    *string `json:"website"`

	BankName          *string `json:"bankName"`
	BankAccountName   *string `json:"bankAccountName"`
	BankAccountNumber *string `json:"bankAccountNumber"`
	BankBranch        *string `json:"bankBranch"`

	MaxFacility         *string `json:"maxFacility"`
	MinFacility         *string `json:"minFacility"`
	InterestRate        *string `json:"interestRate"`
	TenorMonths         *string `json:"tenorMonths"`
	PreferredIndustries *string `json:"preferredIndustries"`

	NationalIDFile              *string `json:"nationalIdFile"`
	SelfieFile                  *string `json:"selfieFile"`
	ProofOfAddressFile          *string `json:"proofOfAddressFile"`
	ProofOfIncomeFile           *string `json:"proofOfIncomeFile"`
	RegistrationCertificateFile *string `json:"registrationCertificateFile"`
	AuthorizationFile           *string `json:"authorizationFile"`
	LendingCriteriaFile         *string `json:"lendingCriteriaFile"`

	ConsentAccepted *bool `json:"consentAccepted"`
}

// MinimalProfile is the branch-appropriate subset sent when creating the account.
type MinimalProfile struct {
	DisplayName  string `json:"displayName"`
	Email        string `json:"email"`
	MobileNumber string `json:"mobileNumber,omitempty"`
}
