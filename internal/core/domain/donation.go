package domain

import (
	"strings"
	"time"
)

// DonationType distinguishes money from in-kind donations.
type DonationType string

const (
	DonationMonetary DonationType = "MONETARIA"
	DonationMaterial DonationType = "MATERIAL"
)

func (t DonationType) Valid() bool {
	return t == DonationMonetary || t == DonationMaterial
}

// DonationState has no enforced transitions; any valid state may follow any other.
type DonationState string

const (
	DonationPending   DonationState = "PENDIENTE"
	DonationCompleted DonationState = "COMPLETADA"
	DonationCancelled DonationState = "CANCELADA"
)

func (s DonationState) Valid() bool {
	switch s {
	case DonationPending, DonationCompleted, DonationCancelled:
		return true
	}
	return false
}

// Donation is a single entry of the donation ledger. DonorID is empty for
// anonymous donations.
type Donation struct {
	ID              string        `json:"id"`
	DonorID         string        `json:"donor_id,omitempty"`
	Type            DonationType  `json:"type"`
	Amount          float64       `json:"amount"`
	Description     string        `json:"description,omitempty"`
	Bank            string        `json:"bank,omitempty"`
	Email           string        `json:"email,omitempty"`
	TaxID           string        `json:"tax_id,omitempty"`
	MaterialSubtype string        `json:"material_subtype,omitempty"`
	State           DonationState `json:"state"`
	CreatedAt       time.Time     `json:"created_at"`
}

// InferDonationType resolves the donation type when the caller did not send
// one: a positive amount means money, a material subtype means goods.
func InferDonationType(explicit DonationType, amount float64, materialSubtype string) (DonationType, error) {
	if explicit != "" {
		if !explicit.Valid() {
			return "", Invalid("unknown donation type %q", explicit)
		}
		return explicit, nil
	}
	switch {
	case amount > 0:
		return DonationMonetary, nil
	case strings.TrimSpace(materialSubtype) != "":
		return DonationMaterial, nil
	default:
		return "", ErrInvalidDonationPayload
	}
}

// DonationFilter narrows ledger listings. Empty fields are ignored.
type DonationFilter struct {
	State DonationState
	Email string
}
