package api

import (
	"github.com/abhishekuniyalibyte/clover-calculator/core/catalog"
	"github.com/abhishekuniyalibyte/clover-calculator/core/engine"
	"github.com/abhishekuniyalibyte/clover-calculator/core/profile"
	"github.com/abhishekuniyalibyte/clover-calculator/core/snapshot"
)

// ComputeRequest is the body of POST /api/v1/analyses/compute.
// AsOf is a date (2006-01-02); it selects the effective catalog records.
type ComputeRequest struct {
	TenantID string `json:"tenant_id"`
	AsOf     string `json:"as_of"`

	Profile   *profile.NormalizedCostProfile `json:"profile"`
	ModelKind catalog.ModelKind              `json:"model_kind"`

	DeviceSelections []engine.DeviceSelection `json:"device_selections,omitempty"`
	OneTimeFees      []engine.OneTimeFee      `json:"one_time_fees,omitempty"`

	// SurchargeProgramID activates the surcharge overlay when set.
	SurchargeProgramID string `json:"surcharge_program_id,omitempty"`

	TemplateVersion string `json:"template_version,omitempty"`

	// Supersedes makes this computation a correction of a prior snapshot.
	Supersedes snapshot.ID `json:"supersedes,omitempty"`

	// DryRun computes without persisting a snapshot.
	DryRun bool `json:"dry_run,omitempty"`
}

// ComputeResponse returns the persisted (or dry-run) snapshot.
type ComputeResponse struct {
	RequestID string                    `json:"request_id"`
	Persisted bool                      `json:"persisted"`
	Snapshot  *snapshot.PricingSnapshot `json:"snapshot"`
}

// ResolveRequest is the body of POST /api/v1/catalog/resolve.
type ResolveRequest struct {
	TenantID string `json:"tenant_id"`
	AsOf     string `json:"as_of"`
}

// ResolveResponse summarizes a resolved catalog version.
type ResolveResponse struct {
	VersionID   catalog.VersionID `json:"version_id"`
	ContentHash string            `json:"content_hash"`
	FeeItems    int               `json:"fee_items"`
	Devices     int               `json:"device_items"`
	Models      int               `json:"pricing_models"`
	Surcharges  int               `json:"surcharge_programs"`
}

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	RequestID string         `json:"request_id,omitempty"`
	Type      string         `json:"type"`
	Message   string         `json:"message"`
	Context   map[string]any `json:"context,omitempty"`
}
