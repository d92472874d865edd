package journal

import "time"

// Type classifies a monetary event.
type Type string

const (
	TypePayment  Type = "payment"
	TypeCharge   Type = "charge"
	TypeReceive  Type = "receive"
	TypeDonation Type = "donation"
	TypeExpired  Type = "expired"
)

// Badge labels attached to journal entries for display.
const (
	BadgeCampaign = "特典"
	BadgeExpired  = "期限切れ"
)

// EcoContribution is the portion of a transaction earmarked as an
// environmental donation.
type EcoContribution struct {
	Enabled bool
	Amount  int64
}

// Transaction is one immutable journal entry. Amount is signed: negative
// means money left the wallet.
type Transaction struct {
	ID              string
	Type            Type
	Description     string
	Date            time.Time
	Amount          int64
	EcoContribution *EcoContribution
	Badges          []string
}

// HasBadge reports whether the entry carries the given badge.
func (t Transaction) HasBadge(badge string) bool {
	for _, b := range t.Badges {
		if b == badge {
			return true
		}
	}
	return false
}

// StyleCategory buckets entries for icon and badge selection in list views.
type StyleCategory string

const (
	StyleOutflow  StyleCategory = "outflow"
	StyleInflow   StyleCategory = "inflow"
	StyleDonation StyleCategory = "donation"
	StyleExpired  StyleCategory = "expired"
	StyleCampaign StyleCategory = "campaign"
)

// Classify maps a transaction's type and badges to its display category.
// Badges win over type so a campaign-funded payment keeps its 特典 styling.
func Classify(t Transaction) StyleCategory {
	if t.HasBadge(BadgeExpired) || t.Type == TypeExpired {
		return StyleExpired
	}
	if t.HasBadge(BadgeCampaign) {
		return StyleCampaign
	}
	switch t.Type {
	case TypeDonation:
		return StyleDonation
	case TypeCharge, TypeReceive:
		return StyleInflow
	default:
		return StyleOutflow
	}
}
