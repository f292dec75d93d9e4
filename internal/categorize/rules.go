package categorize

import (
	"github.com/dvloznov/finance-insight/internal/domain"
)

// rule is one ordered category rule. Rules are tested in declaration order
// and the first match wins, so more specific rules must come first.
type rule struct {
	category       string
	classification domain.Classification
	creditOnly     bool // rule only applies to positive amounts
	keywords       []string
}

// Rule order matters: "Debt Payments" must run before "Fees & Charges"
// (both match "payment"-adjacent text), and "Subscriptions" before
// "Entertainment" (both match streaming services).
var rules = []rule{
	{
		category:       "Income",
		classification: domain.ClassificationIncome,
		creditOnly:     true,
		keywords: []string{
			"salary", "payroll", "wage", "direct deposit", "payment received",
			"bonus", "commission", "reimbursement", "dividend", "interest earned",
			"refund", "deposit",
		},
	},
	{
		category:       "Debt Payments",
		classification: domain.ClassificationFixed,
		keywords: []string{
			"credit card payment", "loan payment", "student loan", "payment to",
			"chase payment", "capital one payment", "discover payment", "amex payment",
		},
	},
	{
		category:       "Housing",
		classification: domain.ClassificationFixed,
		keywords: []string{
			"rent", "mortgage", "property tax", "hoa", "homeowners association",
			"property management", "lease", "condo fee",
		},
	},
	{
		category:       "Utilities",
		classification: domain.ClassificationFixed,
		keywords: []string{
			"electric", "electricity", "water", "sewer", "trash", "internet",
			"wifi", "phone", "mobile", "cable", "utility", "verizon", "att",
			"tmobile", "comcast", "xfinity",
		},
	},
	{
		category:       "Insurance",
		classification: domain.ClassificationFixed,
		keywords: []string{
			"insurance", "geico", "state farm", "allstate", "progressive",
			"policy", "premium",
		},
	},
	{
		category:       "Subscriptions",
		classification: domain.ClassificationFixed,
		keywords: []string{
			"netflix", "hulu", "disney", "amazon prime", "youtube premium",
			"spotify", "apple tv", "hbo", "paramount", "peacock", "subscription",
			"membership", "monthly fee", "annual fee", "gym", "fitness",
		},
	},
	{
		category:       "Savings & Investments",
		classification: domain.ClassificationVariable,
		keywords: []string{
			"transfer to savings", "investment", "brokerage", "fidelity",
			"vanguard", "charles schwab", "etrade", "robinhood", "401k", "ira",
			"retirement", "savings account",
		},
	},
	{
		category:       "Food & Dining",
		classification: domain.ClassificationDiscretionary,
		keywords: []string{
			"restaurant", "cafe", "coffee", "starbucks", "dunkin", "mcdonald",
			"burger", "pizza", "chipotle", "grocery", "supermarket", "whole foods",
			"trader joe", "safeway", "kroger", "costco", "uber eats", "doordash",
			"grubhub", "dining",
		},
	},
	{
		category:       "Transportation",
		classification: domain.ClassificationVariable,
		keywords: []string{
			"gas", "fuel", "shell", "chevron", "exxon", "uber", "lyft", "taxi",
			"parking", "toll", "metro", "transit", "bus", "train", "car payment",
			"dmv", "vehicle", "mechanic",
		},
	},
	{
		category:       "Healthcare",
		classification: domain.ClassificationVariable,
		keywords: []string{
			"pharmacy", "cvs", "walgreens", "medical", "doctor", "hospital",
			"dental", "dentist", "clinic", "prescription", "medicine",
		},
	},
	{
		category:       "Entertainment",
		classification: domain.ClassificationDiscretionary,
		keywords: []string{
			"movie", "theater", "cinema", "concert", "game", "steam",
			"playstation", "xbox", "ticket", "amusement", "recreation",
		},
	},
	{
		category:       "Shopping",
		classification: domain.ClassificationDiscretionary,
		keywords: []string{
			"amazon", "ebay", "walmart", "target", "best buy", "home depot",
			"lowes", "ikea", "clothing", "apparel", "shoes", "electronics",
			"retail", "mall", "nordstrom",
		},
	},
	{
		category:       "Travel",
		classification: domain.ClassificationDiscretionary,
		keywords: []string{
			"airline", "flight", "hotel", "airbnb", "booking", "travel",
			"vacation", "resort", "marriott", "hilton", "delta", "united",
			"southwest",
		},
	},
	{
		category:       "Personal Care",
		classification: domain.ClassificationDiscretionary,
		keywords: []string{
			"salon", "haircut", "spa", "beauty", "cosmetics", "barber",
		},
	},
	{
		category:       "Education",
		classification: domain.ClassificationVariable,
		keywords: []string{
			"tuition", "school", "university", "college", "course", "textbook",
			"udemy", "coursera",
		},
	},
	{
		category:       "Fees & Charges",
		classification: domain.ClassificationVariable,
		keywords: []string{
			"fee", "charge", "atm", "overdraft", "service charge", "penalty",
		},
	},
	{
		category:       "Taxes",
		classification: domain.ClassificationVariable,
		keywords: []string{
			"irs", "tax", "federal tax", "state tax",
		},
	},
	{
		category:       "Cash & ATM",
		classification: domain.ClassificationVariable,
		keywords: []string{
			"atm withdrawal", "cash", "withdrawal",
		},
	},
}

// DefaultCategory is assigned when no rule matches.
const DefaultCategory = "Other"
