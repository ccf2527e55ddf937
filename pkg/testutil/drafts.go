package testutil

import (
	"encoding/json"

	"kycportal/internal/onboarding/models"
)

// FilledPatches returns patches that satisfy every stage of branch in the
// default catalogue.
func FilledPatches(branch models.Branch) []models.Patch {
	p := func(section models.Section, fields string) models.Patch {
		return models.Patch{Section: section, Fields: json.RawMessage(fields)}
	}
	shared := []models.Patch{
		p(models.SectionContact, `{"fullName":"Maria Santos","email":"maria@example.com","mobileNumber":"09171234567"}`),
		p(models.SectionBank, `{"bankName":"BPI","accountName":"Maria Santos","accountNumber":"001234567890","branch":"Makati"}`),
		p(models.SectionConsent, `{"termsAccepted":true,"privacyAccepted":true,"informationCertified":true}`),
	}
	switch branch {
	case models.BranchIndividualBorrower:
		return append(shared, p(models.SectionPersonal, `{
			"firstName":"Maria","middleName":"Reyes","lastName":"Santos","dateOfBirth":"1990-04-12",
			"gender":"female","civilStatus":"single","nationality":"Filipino","placeOfBirth":"Cebu",
			"addressLine":"12 Mabini St","city":"Makati","province":"Metro Manila","postalCode":"1200","country":"PH",
			"idType":"passport","idNumber":"P1234567","employmentStatus":"employed","employerName":"Acme",
			"occupation":"Engineer","sourceOfFunds":"Salary","annualIncome":"900000","politicallyExposed":"no"}`))
	case models.BranchIndividualInvestor:
		return append(shared, p(models.SectionPersonal, `{
			"firstName":"Maria","lastName":"Santos","dateOfBirth":"1990-04-12",
			"gender":"female","civilStatus":"married","nationality":"Filipino",
			"street":"12 Mabini St","city":"Makati","province":"Metro Manila","zipCode":"1200","country":"PH",
			"idType":"umid","nationalIdNumber":"0028-1234567-8","taxIdNumber":"123-456-789",
			"employmentStatus":"self_employed","natureOfBusiness":"Retail","sourceOfIncome":"Business",
			"grossAnnualIncome":"1,500,000","isPep":"yes","pepDetails":"Municipal councilor"}`))
	case models.BranchNonIndividualBorrower:
		return append(shared, p(models.SectionEntity, `{
			"businessName":"Santos Trading Corp","businessType":"corporation","businessRegistrationNumber":"CS201912345",
			"registrationDate":"2019-06-01","industry":"Wholesale","tin":"009-876-543-000",
			"businessAddress":"88 Ayala Ave","city":"Makati","province":"Metro Manila","postalCode":"1226","country":"PH",
			"authorizedSignatory":"Maria Santos","signatoryPosition":"President","signatoryPoliticallyExposed":"no"}`))
	case models.BranchNonIndividualInvestor:
		return append(shared, p(models.SectionEntity, `{
			"entityName":"Santos Holdings Inc","businessType":"corporation","registrationNumber":"CS202011111",
			"dateOfIncorporation":"2020-01-15","natureOfBusiness":"Investments","tin":"009-111-222-000",
			"businessAddress":"88 Ayala Ave","city":"Makati","province":"Metro Manila","postalCode":"1226","country":"PH",
			"authorizedSignatory":"Maria Santos","signatoryPosition":"Treasurer","signatoryPoliticallyExposed":"no",
			"sourceOfFunds":"Retained earnings","annualRevenue":"25000000"}`))
	case models.BranchDirectLender:
		return append(shared,
			p(models.SectionLender, `{
				"firstName":"Maria","lastName":"Santos","companyName":"","dateOfBirth":"1985-02-20","nationality":"Filipino",
				"addressLine":"5 Rizal Ave","city":"Pasig","province":"Metro Manila","postalCode":"1600","country":"PH",
				"idType":"passport","idNumber":"P7654321","tin":"222-333-444","occupation":"Lender",
				"sourceOfFunds":"Savings","isPep":"false"}`),
			p(models.SectionCriteria, `{"maxFacility":"5000000","minFacility":"100000","interestRate":"1.5",
				"tenorMonths":"12","preferredIndustries":[" Agriculture ","Retail","Agriculture",""]}`),
		)
	}
	return shared
}

// RequiredFiles returns a handle for every required slot of branch.
func RequiredFiles(branch models.Branch) map[models.Slot]models.File {
	png := func(name string) models.File {
		return models.NewBlobFile(name, "image/png", []byte("\x89PNG\r\n\x1a\n"+name))
	}
	pdf := func(name string) models.File {
		return models.NewBlobFile(name, "application/pdf", []byte("%PDF-1.7 "+name))
	}
	switch {
	case branch == models.BranchIndividualInvestor:
		return map[models.Slot]models.File{models.SlotNationalID: png("id.png"), models.SlotSelfie: png("selfie.png")}
	case branch.IsIndividual():
		return map[models.Slot]models.File{models.SlotNationalID: png("id.png")}
	case branch.IsNonIndividual():
		return map[models.Slot]models.File{
			models.SlotRegistrationCertificate: pdf("sec.pdf"),
			models.SlotBoardAuthorization:      pdf("board.pdf"),
		}
	case branch.IsDirectLender():
		return map[models.Slot]models.File{
			models.SlotNationalID:      png("id.png"),
			models.SlotLendingCriteria: pdf("criteria.pdf"),
		}
	}
	return nil
}

// FilledDraft builds a complete draft for branch with unencoded attachments.
func FilledDraft(branch models.Branch) (models.Draft, error) {
	d := models.SwitchBranch(models.NewDraft(), branch, nil)
	for _, patch := range FilledPatches(branch) {
		next, err := models.Apply(d, patch)
		if err != nil {
			return models.Draft{}, err
		}
		d = next
	}
	for slot, f := range RequiredFiles(branch) {
		d = models.SelectFile(d, slot, f)
	}
	return d, nil
}
