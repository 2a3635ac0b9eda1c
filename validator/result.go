package validator

import "github.com/mailvet/mailvet/types"

// Result is the outcome for a single address. HasMX and DomainExists stay Unknown exactly when the
// corresponding check wasn't requested, a failed lookup records False, never Unknown.
type Result struct {
	Email        string         `json:"email"`
	ValidFormat  bool           `json:"valid_format"`
	HasMX        types.Tristate `json:"has_mx"`
	DomainExists types.Tristate `json:"domain_exists"`
	Status       types.Status   `json:"status"`
}

// Classify reduces the three signals to a single verdict. A single negative signal among the requested checks
// demotes Valid to Doubtful, skipped checks never demote, and once the format passed the verdict can't be
// Invalid anymore.
func Classify(r Result, req Request) types.Status {
	if !r.ValidFormat {
		return types.StatusInvalid
	}

	if (req.CheckMX && r.HasMX == types.False) || (req.CheckDomain && r.DomainExists == types.False) {
		return types.StatusDoubtful
	}

	return types.StatusValid
}
