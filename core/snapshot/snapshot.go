// Package snapshot packages a comparison result plus full provenance into
// an immutable, content-hashed record suitable for legal and financial
// disclosure. A snapshot is a pure function of its inputs: identical
// profile, catalog version, model config, device selection and template
// version produce byte-identical snapshots. Timestamps are metadata only
// and never enter the hash.
package snapshot

import (
	"time"

	"github.com/abhishekuniyalibyte/clover-calculator/core/determinism"
	"github.com/abhishekuniyalibyte/clover-calculator/core/engine"
	"github.com/abhishekuniyalibyte/clover-calculator/internal/errors"
)

// ID uniquely identifies a snapshot. Content-derived: the same inputs
// always yield the same ID.
type ID string

// snapshotIDs namespaces snapshot IDs so a snapshot and a catalog version
// built over the same bytes can never collide.
var snapshotIDs = determinism.NewIDGenerator("pricing-snapshot")

// PricingSnapshot is IMMUTABLE after Build. Corrections never edit a
// snapshot; they create a new one whose Supersedes field references the
// prior record.
type PricingSnapshot struct {
	ID          ID     `json:"id"`
	ContentHash string `json:"content_hash"`

	TenantID        string `json:"tenant_id"`
	ProfileID       string `json:"profile_id"`
	ProfileVersion  string `json:"profile_version"`
	CatalogVersion  string `json:"catalog_version"`
	TemplateVersion string `json:"template_version"`

	DeviceSelections []engine.DeviceSelection `json:"device_selections,omitempty"`
	Comparison       *engine.ComparisonResult `json:"comparison"`

	// Supersedes is a lookup-only back-reference, not ownership.
	Supersedes ID `json:"supersedes,omitempty"`

	// CreatedAt is metadata, excluded from the content hash.
	CreatedAt time.Time `json:"created_at"`

	sealed bool
}

// Sealed reports whether the snapshot has been finalized.
func (s *PricingSnapshot) Sealed() bool {
	return s.sealed
}

// Verify recomputes the content hash and fails on any drift. The store
// calls this on both write and read.
func (s *PricingSnapshot) Verify() error {
	hash, err := hashPayload(s)
	if err != nil {
		return err
	}
	if hash.Hex() != s.ContentHash {
		return errors.New(errors.TypeInternal, "snapshot content hash mismatch: record altered or corrupted").
			WithContext("snapshot_id", string(s.ID))
	}
	return nil
}

// ChartRows returns the per-timeframe tuples for the reporting
// collaborator. Renderers must not recompute figures, only read these.
func (s *PricingSnapshot) ChartRows() []engine.TimeframeRow {
	if s.Comparison == nil {
		return nil
	}
	return s.Comparison.Timeframes
}

// Builder assembles a snapshot. Build seals the result; there is no way
// to unseal.
type Builder struct {
	comparison      *engine.ComparisonResult
	selections      []engine.DeviceSelection
	templateVersion string
	supersedes      ID
	now             func() time.Time
}

// NewBuilder starts a snapshot from a comparison result.
func NewBuilder(result *engine.ComparisonResult) *Builder {
	return &Builder{
		comparison: result,
		now:        time.Now,
	}
}

// WithDeviceSelections records the device choices the comparison priced.
func (b *Builder) WithDeviceSelections(selections []engine.DeviceSelection) *Builder {
	b.selections = selections
	return b
}

// WithTemplateVersion stamps the proposal template version.
func (b *Builder) WithTemplateVersion(v string) *Builder {
	b.templateVersion = v
	return b
}

// WithSupersedes marks this snapshot as a correction of a prior one.
func (b *Builder) WithSupersedes(prior ID) *Builder {
	b.supersedes = prior
	return b
}

// WithClock overrides the metadata timestamp source. Tests only; the
// clock never influences the hash or ID.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

// Build creates the immutable snapshot.
func (b *Builder) Build() (*PricingSnapshot, error) {
	if b.comparison == nil {
		return nil, errors.Input("snapshot requires a comparison result")
	}

	snap := &PricingSnapshot{
		TenantID:         b.comparison.TenantID,
		ProfileID:        b.comparison.ProfileID,
		ProfileVersion:   b.comparison.ProfileVersion,
		CatalogVersion:   string(b.comparison.CatalogVersion),
		TemplateVersion:  b.templateVersion,
		DeviceSelections: b.selections,
		Comparison:       b.comparison,
		Supersedes:       b.supersedes,
	}

	hash, err := hashPayload(snap)
	if err != nil {
		return nil, err
	}
	snap.ContentHash = hash.Hex()
	snap.ID = ID("snap_" + string(snapshotIDs.Generate(hash.Hex())))
	snap.CreatedAt = b.now().UTC()
	snap.sealed = true
	return snap, nil
}

// hashPayload hashes everything that defines the snapshot's numeric
// content. ID, ContentHash and CreatedAt are excluded: the first two are
// derived, the last is metadata.
func hashPayload(s *PricingSnapshot) (determinism.ContentHash, error) {
	hash, err := determinism.HashJSON(struct {
		TenantID         string                   `json:"tenant_id"`
		ProfileID        string                   `json:"profile_id"`
		ProfileVersion   string                   `json:"profile_version"`
		CatalogVersion   string                   `json:"catalog_version"`
		TemplateVersion  string                   `json:"template_version"`
		DeviceSelections []engine.DeviceSelection `json:"device_selections"`
		Comparison       *engine.ComparisonResult `json:"comparison"`
		Supersedes       ID                       `json:"supersedes"`
	}{
		s.TenantID, s.ProfileID, s.ProfileVersion, s.CatalogVersion,
		s.TemplateVersion, s.DeviceSelections, s.Comparison, s.Supersedes,
	})
	if err != nil {
		return determinism.ContentHash{}, errors.Internal("hash snapshot payload", err)
	}
	return hash, nil
}
