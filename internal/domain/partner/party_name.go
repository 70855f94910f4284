package partner

import "strings"

// PartyName is how a customer is addressed. Individuals are named by person,
// businesses by their legal name.
type PartyName interface {
	DisplayName() string
	isPartyName()
}

// IndividualName names a natural person
type IndividualName struct {
	FirstName string
	LastName  string
}

func (n IndividualName) DisplayName() string {
	return strings.TrimSpace(n.FirstName + " " + n.LastName)
}

func (IndividualName) isPartyName() {}

// BusinessName names a company. Contact is used when the legal name is blank.
type BusinessName struct {
	LegalName string
	Contact   IndividualName
}

func (n BusinessName) DisplayName() string {
	if strings.TrimSpace(n.LegalName) != "" {
		return n.LegalName
	}
	return n.Contact.DisplayName()
}

func (BusinessName) isPartyName() {}
