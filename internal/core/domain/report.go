package domain

import "time"

// ReportFilter holds the optional, conjunctive filters of the donor report.
// Zero values disable the corresponding filter; From and To are inclusive.
type ReportFilter struct {
	From            time.Time
	To              time.Time
	Type            DonationType
	MaterialSubtype string
}

// AnonymousDonorID is the donor id reported for donations without a donor.
const AnonymousDonorID = "0"

// DonorSummary is one group of the donor report, keyed by (DonorID, Email).
type DonorSummary struct {
	DonorID        string    `json:"donor_id"`
	Email          string    `json:"email"`
	TotalAmount    float64   `json:"total_amount"`
	DonationCount  int64     `json:"donation_count"`
	LastDonationAt time.Time `json:"last_donation_at"`
}
