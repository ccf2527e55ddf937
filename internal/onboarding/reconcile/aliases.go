package reconcile

// Alias tables list, per canonical key, the stage-local field names that may
// carry its value, in precedence order. The first non-empty value wins.

type personAliases struct {
	NationalIDNumber []string
	AddressLine      []string
	PostalCode       []string
	NatureOfBusiness []string
	SourceOfFunds    []string
	AnnualIncome     []string
	TaxIDNumber      []string
	PEP              []string
}

type entityAliases struct {
	BusinessName       []string
	RegistrationNumber []string
	RegistrationDate   []string
	NatureOfBusiness   []string
}

var individualBorrowerAliases = personAliases{
	NationalIDNumber: []string{"idNumber", "nationalIdNumber"},
	AddressLine:      []string{"addressLine", "street"},
	PostalCode:       []string{"postalCode", "zipCode"},
	NatureOfBusiness: []string{"occupation", "natureOfBusiness"},
	SourceOfFunds:    []string{"sourceOfFunds", "sourceOfIncome"},
	AnnualIncome:     []string{"annualIncome", "grossAnnualIncome"},
	TaxIDNumber:      []string{"tin", "taxIdNumber"},
	PEP:              []string{"politicallyExposed", "isPep"},
}

var individualInvestorAliases = personAliases{
	NationalIDNumber: []string{"nationalIdNumber", "idNumber"},
	AddressLine:      []string{"street", "addressLine"},
	PostalCode:       []string{"zipCode", "postalCode"},
	NatureOfBusiness: []string{"natureOfBusiness", "occupation"},
	SourceOfFunds:    []string{"sourceOfIncome", "sourceOfFunds"},
	AnnualIncome:     []string{"grossAnnualIncome", "annualIncome"},
	TaxIDNumber:      []string{"taxIdNumber", "tin"},
	PEP:              []string{"isPep", "politicallyExposed"},
}

var nonIndividualBorrowerAliases = entityAliases{
	BusinessName:       []string{"businessName", "entityName", "tradeName"},
	RegistrationNumber: []string{"businessRegistrationNumber", "registrationNumber"},
	RegistrationDate:   []string{"registrationDate", "dateOfIncorporation"},
	NatureOfBusiness:   []string{"industry", "natureOfBusiness"},
}

var nonIndividualInvestorAliases = entityAliases{
	BusinessName:       []string{"entityName", "businessName", "tradeName"},
	RegistrationNumber: []string{"registrationNumber", "businessRegistrationNumber"},
	RegistrationDate:   []string{"dateOfIncorporation", "registrationDate"},
	NatureOfBusiness:   []string{"natureOfBusiness", "industry"},
}
