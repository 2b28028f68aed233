package catalog

import (
	"sort"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/abhishekuniyalibyte/clover-calculator/core/determinism"
	"github.com/abhishekuniyalibyte/clover-calculator/internal/errors"
	"github.com/abhishekuniyalibyte/clover-calculator/internal/logging"
)

// VersionID is the content-addressed identifier of a resolved catalog.
// Two resolutions over identical effective data yield the same ID.
type VersionID string

// versionIDs namespaces catalog version IDs apart from other
// content-derived identifiers.
var versionIDs = determinism.NewIDGenerator("catalog-version")

// Store is the admin catalog boundary: raw, possibly-overlapping record
// sets per tenant. The resolver is read-only over it.
type Store interface {
	FeeItems(tenantID string) ([]FeeItem, error)
	DeviceItems(tenantID string) ([]DeviceCatalogItem, error)
	PricingModels(tenantID string) ([]PricingModelConfig, error)
	SurchargePrograms(tenantID string) ([]SurchargeProgramConfig, error)
}

// CatalogVersion is the immutable, effective record set for one tenant at
// one as-of date. Snapshots reference it by ID; edits to the underlying
// tables never reach an already-resolved version.
type CatalogVersion struct {
	ID       VersionID `json:"id"`
	TenantID string    `json:"tenant_id"`
	AsOf     time.Time `json:"as_of"`
	Hash     string    `json:"content_hash"`

	FeeItems   []FeeItem                `json:"fee_items"`
	Devices    []DeviceCatalogItem      `json:"device_items"`
	Models     []PricingModelConfig     `json:"pricing_models"`
	Surcharges []SurchargeProgramConfig `json:"surcharge_programs"`
}

// Model returns the effective config for a model kind.
func (v *CatalogVersion) Model(kind ModelKind) (PricingModelConfig, bool) {
	for _, m := range v.Models {
		if m.Kind == kind {
			return m, true
		}
	}
	return PricingModelConfig{}, false
}

// Device returns a device entry by ID.
func (v *CatalogVersion) Device(id string) (DeviceCatalogItem, bool) {
	for _, d := range v.Devices {
		if d.ID == id {
			return d, true
		}
	}
	return DeviceCatalogItem{}, false
}

// Surcharge returns the surcharge program by ID.
func (v *CatalogVersion) Surcharge(id string) (SurchargeProgramConfig, bool) {
	for _, s := range v.Surcharges {
		if s.ID == id {
			return s, true
		}
	}
	return SurchargeProgramConfig{}, false
}

// FeeGroups returns fee items grouped by their Group field, groups and
// items both in sorted order.
func (v *CatalogVersion) FeeGroups() []FeeGroup {
	byName := make(map[string][]FeeItem)
	for _, item := range v.FeeItems {
		byName[item.Group] = append(byName[item.Group], item)
	}
	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)

	groups := make([]FeeGroup, 0, len(names))
	for _, name := range names {
		groups = append(groups, FeeGroup{Name: name, Items: byName[name]})
	}
	return groups
}

// FeeItemsOfClass returns effective fee items of a class (e.g. interchange).
func (v *CatalogVersion) FeeItemsOfClass(class FeeClass) []FeeItem {
	var out []FeeItem
	for _, item := range v.FeeItems {
		if item.Class == class {
			out = append(out, item)
		}
	}
	return out
}

// Resolver resolves effective catalog versions and caches them by their
// content-addressed ID. Cached versions are immutable and safe to share
// across concurrent calculations.
type Resolver struct {
	store Store
	cache *lru.Cache[VersionID, *CatalogVersion]
	log   *zap.Logger
}

// NewResolver creates a resolver over a catalog store.
func NewResolver(store Store, cacheSize int) (*Resolver, error) {
	if cacheSize <= 0 {
		cacheSize = 64
	}
	cache, err := lru.New[VersionID, *CatalogVersion](cacheSize)
	if err != nil {
		return nil, errors.Internal("create catalog cache", err)
	}
	return &Resolver{
		store: store,
		cache: cache,
		log:   logging.Named("catalog"),
	}, nil
}

// Resolve selects, for each record type, the records whose effective
// window contains asOf. Overlapping versions of the same record are a
// configuration error and fail with CATALOG_CONFLICT; the resolver never
// silently picks one.
func (r *Resolver) Resolve(tenantID string, asOf time.Time) (*CatalogVersion, error) {
	fees, err := r.store.FeeItems(tenantID)
	if err != nil {
		return nil, errors.Storage("load fee items", err)
	}
	devices, err := r.store.DeviceItems(tenantID)
	if err != nil {
		return nil, errors.Storage("load device items", err)
	}
	models, err := r.store.PricingModels(tenantID)
	if err != nil {
		return nil, errors.Storage("load pricing models", err)
	}
	surcharges, err := r.store.SurchargePrograms(tenantID)
	if err != nil {
		return nil, errors.Storage("load surcharge programs", err)
	}

	version := &CatalogVersion{
		TenantID: tenantID,
		AsOf:     asOf.UTC(),
	}

	version.FeeItems, err = effectiveFees(fees, tenantID, asOf)
	if err != nil {
		return nil, err
	}
	version.Devices, err = effectiveDevices(devices, tenantID, asOf)
	if err != nil {
		return nil, err
	}
	version.Models, err = effectiveModels(models, tenantID, asOf)
	if err != nil {
		return nil, err
	}
	version.Surcharges, err = effectiveSurcharges(surcharges, tenantID, asOf)
	if err != nil {
		return nil, err
	}

	if err := sealVersion(version); err != nil {
		return nil, err
	}

	r.cache.Add(version.ID, version)
	r.log.Debug("resolved catalog version",
		zap.String("tenant", tenantID),
		zap.String("version", string(version.ID)),
		zap.Int("fee_items", len(version.FeeItems)))
	return version, nil
}

// Lookup returns a previously resolved version from the cache.
func (r *Resolver) Lookup(id VersionID) (*CatalogVersion, bool) {
	return r.cache.Get(id)
}

// sealVersion sorts the record sets and derives the content-addressed ID.
// The as-of date is excluded from the hash: identical effective data must
// produce an identical identifier regardless of when it was resolved.
func sealVersion(v *CatalogVersion) error {
	sort.Slice(v.FeeItems, func(i, j int) bool { return v.FeeItems[i].ID < v.FeeItems[j].ID })
	sort.Slice(v.Devices, func(i, j int) bool { return v.Devices[i].ID < v.Devices[j].ID })
	sort.Slice(v.Models, func(i, j int) bool { return v.Models[i].ID < v.Models[j].ID })
	sort.Slice(v.Surcharges, func(i, j int) bool { return v.Surcharges[i].ID < v.Surcharges[j].ID })

	hash, err := determinism.HashJSON(struct {
		Tenant     string                   `json:"tenant"`
		FeeItems   []FeeItem                `json:"fee_items"`
		Devices    []DeviceCatalogItem      `json:"device_items"`
		Models     []PricingModelConfig     `json:"pricing_models"`
		Surcharges []SurchargeProgramConfig `json:"surcharge_programs"`
	}{v.TenantID, v.FeeItems, v.Devices, v.Models, v.Surcharges})
	if err != nil {
		return errors.Internal("hash catalog version", err)
	}

	v.Hash = hash.Hex()
	v.ID = VersionID("cat_" + string(versionIDs.Generate(hash.Hex())))
	return nil
}

// effectiveFees filters fee items to the as-of date, rejecting records
// whose versions overlap at that instant.
func effectiveFees(items []FeeItem, tenantID string, asOf time.Time) ([]FeeItem, error) {
	seen := make(map[string]bool)
	var out []FeeItem
	for _, item := range items {
		if !item.Window.Contains(asOf) {
			continue
		}
		if seen[item.ID] {
			return nil, errors.CatalogConflict("fee item", tenantID).
				WithContext("record_id", item.ID)
		}
		seen[item.ID] = true
		// Records can arrive over the admin boundary without having passed
		// the file loader, so the resolver validates again before sealing.
		if err := ValidateFeeItem(item); err != nil {
			return nil, err
		}
		if item.Rounding.IsZero() {
			item.Rounding = defaultFeeRounding()
		}
		out = append(out, item)
	}
	return out, nil
}

func effectiveDevices(items []DeviceCatalogItem, tenantID string, asOf time.Time) ([]DeviceCatalogItem, error) {
	seen := make(map[string]bool)
	var out []DeviceCatalogItem
	for _, item := range items {
		if !item.Window.Contains(asOf) {
			continue
		}
		if seen[item.ID] {
			return nil, errors.CatalogConflict("device item", tenantID).
				WithContext("record_id", item.ID)
		}
		seen[item.ID] = true
		if err := ValidateDeviceItem(item); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

func effectiveModels(items []PricingModelConfig, tenantID string, asOf time.Time) ([]PricingModelConfig, error) {
	seenID := make(map[string]bool)
	seenKind := make(map[ModelKind]bool)
	var out []PricingModelConfig
	for _, item := range items {
		if !item.Window.Contains(asOf) {
			continue
		}
		if seenID[item.ID] || seenKind[item.Kind] {
			return nil, errors.CatalogConflict("pricing model", tenantID).
				WithContext("record_id", item.ID).
				WithContext("model_kind", string(item.Kind))
		}
		seenID[item.ID] = true
		seenKind[item.Kind] = true
		if err := ValidateModelConfig(item); err != nil {
			return nil, err
		}
		if item.Rounding.IsZero() {
			item.Rounding = defaultFeeRounding()
		}
		out = append(out, item)
	}
	return out, nil
}

func effectiveSurcharges(items []SurchargeProgramConfig, tenantID string, asOf time.Time) ([]SurchargeProgramConfig, error) {
	seen := make(map[string]bool)
	var out []SurchargeProgramConfig
	for _, item := range items {
		if !item.Window.Contains(asOf) {
			continue
		}
		if seen[item.ID] {
			return nil, errors.CatalogConflict("surcharge program", tenantID).
				WithContext("record_id", item.ID)
		}
		seen[item.ID] = true
		if err := ValidateSurcharge(item); err != nil {
			return nil, err
		}
		if item.Rounding.IsZero() {
			item.Rounding = defaultFeeRounding()
		}
		out = append(out, item)
	}
	return out, nil
}
