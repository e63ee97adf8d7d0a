// Package catalog lists the inquiry methods the upstream is known to serve.
// It is descriptive only: the relay forwards any method name, listed or not.
package catalog

import "sort"

const Version = "1.0.0"

const (
	CategoryAuthentication      = "authentication"
	CategoryBanking             = "banking"
	CategoryServiceInquiries    = "service_inquiries"
	CategoryUtilityVerification = "utility_verification"
	CategoryBusinessServices    = "business_services"
)

type entry struct {
	name        string
	description string
	category    string
}

var entries = []entry{
	{"shahkar", "Shahkar verification service", CategoryAuthentication},
	{"national_identity_inquiry", "National identity verification", CategoryAuthentication},
	{"mobile_verification", "Mobile number verification", CategoryAuthentication},
	{"card_verification", "Bank card verification", CategoryAuthentication},
	{"iban_verification", "IBAN verification", CategoryAuthentication},

	{"bank_account_inquiry", "Bank account inquiry", CategoryBanking},
	{"card_to_iban", "Convert card number to IBAN", CategoryBanking},
	{"iban_to_card", "Convert IBAN to card number", CategoryBanking},
	{"bank_balance_inquiry", "Bank balance inquiry", CategoryBanking},
	{"transaction_inquiry", "Transaction inquiry", CategoryBanking},
	{"bank_statement", "Bank statement inquiry", CategoryBanking},

	{"postal_code_inquiry", "Postal code verification", CategoryServiceInquiries},
	{"address_inquiry", "Address verification", CategoryServiceInquiries},
	{"plate_inquiry", "Vehicle plate inquiry", CategoryServiceInquiries},
	{"insurance_inquiry", "Insurance inquiry", CategoryServiceInquiries},
	{"pension_inquiry", "Pension inquiry", CategoryServiceInquiries},
	{"tax_inquiry", "Tax inquiry", CategoryServiceInquiries},
	{"social_security_inquiry", "Social security inquiry", CategoryServiceInquiries},

	{"utility_bill_inquiry", "Utility bill inquiry", CategoryUtilityVerification},
	{"phone_bill_inquiry", "Phone bill inquiry", CategoryUtilityVerification},
	{"internet_bill_inquiry", "Internet bill inquiry", CategoryUtilityVerification},
	{"gas_bill_inquiry", "Gas bill inquiry", CategoryUtilityVerification},
	{"electricity_bill_inquiry", "Electricity bill inquiry", CategoryUtilityVerification},

	{"company_inquiry", "Company information inquiry", CategoryBusinessServices},
	{"commercial_registration", "Commercial registration inquiry", CategoryBusinessServices},
	{"tax_id_inquiry", "Tax ID verification", CategoryBusinessServices},
	{"business_license_inquiry", "Business license inquiry", CategoryBusinessServices},
}

// Methods returns method name -> description. The map is a fresh copy.
func Methods() map[string]string {
	out := make(map[string]string, len(entries))
	for _, e := range entries {
		out[e.name] = e.description
	}
	return out
}

// MethodsByCategory returns category -> (method name -> description).
func MethodsByCategory() map[string]map[string]string {
	out := make(map[string]map[string]string, len(Categories()))
	for _, e := range entries {
		group, ok := out[e.category]
		if !ok {
			group = make(map[string]string)
			out[e.category] = group
		}
		group[e.name] = e.description
	}
	return out
}

func Describe(method string) (string, bool) {
	for _, e := range entries {
		if e.name == method {
			return e.description, true
		}
	}
	return "", false
}

func Categories() []string {
	return []string{
		CategoryAuthentication,
		CategoryBanking,
		CategoryServiceInquiries,
		CategoryUtilityVerification,
		CategoryBusinessServices,
	}
}

// Names returns the known method names sorted alphabetically.
func Names() []string {
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.name)
	}
	sort.Strings(names)
	return names
}
