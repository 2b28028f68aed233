package catalog

import (
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/hcl/v2/hclsimple"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/abhishekuniyalibyte/clover-calculator/core/money"
	"github.com/abhishekuniyalibyte/clover-calculator/internal/errors"
)

// FileStore reads admin catalog records from per-tenant files. Both YAML
// and HCL are accepted; the file is the admin collaborator's export, this
// store never writes.
type FileStore struct {
	dir string
}

// NewFileStore creates a store over a catalog directory.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (s *FileStore) load(tenantID string) (*recordSet, error) {
	for _, ext := range []string{".yaml", ".yml"} {
		path := filepath.Join(s.dir, tenantID+ext)
		if _, err := os.Stat(path); err == nil {
			return loadYAML(path)
		}
	}
	path := filepath.Join(s.dir, tenantID+".hcl")
	if _, err := os.Stat(path); err == nil {
		return loadHCL(path)
	}
	return nil, errors.NotFound("catalog file for tenant", tenantID)
}

// FeeItems implements Store
func (s *FileStore) FeeItems(tenantID string) ([]FeeItem, error) {
	rs, err := s.load(tenantID)
	if err != nil {
		return nil, err
	}
	return rs.fees, nil
}

// DeviceItems implements Store
func (s *FileStore) DeviceItems(tenantID string) ([]DeviceCatalogItem, error) {
	rs, err := s.load(tenantID)
	if err != nil {
		return nil, err
	}
	return rs.devices, nil
}

// PricingModels implements Store
func (s *FileStore) PricingModels(tenantID string) ([]PricingModelConfig, error) {
	rs, err := s.load(tenantID)
	if err != nil {
		return nil, err
	}
	return rs.models, nil
}

// SurchargePrograms implements Store
func (s *FileStore) SurchargePrograms(tenantID string) ([]SurchargeProgramConfig, error) {
	rs, err := s.load(tenantID)
	if err != nil {
		return nil, err
	}
	return rs.surcharges, nil
}

type recordSet struct {
	fees       []FeeItem
	devices    []DeviceCatalogItem
	models     []PricingModelConfig
	surcharges []SurchargeProgramConfig
}

// Wire formats carry decimals and dates as strings so both YAML and HCL
// parse them losslessly; conversion validates every record.

type feeItemWire struct {
	ID        string        `yaml:"id" hcl:"id,label"`
	Name      string        `yaml:"name" hcl:"name"`
	Group     string        `yaml:"group,omitempty" hcl:"group,optional"`
	Kind      string        `yaml:"kind" hcl:"kind"`
	Class     string        `yaml:"class,omitempty" hcl:"class,optional"`
	RateBps   int64         `yaml:"rate_bps,omitempty" hcl:"rate_bps,optional"`
	Amount    string        `yaml:"amount,omitempty" hcl:"amount,optional"`
	AppliesTo appliesToWire `yaml:"applies_to,omitempty" hcl:"applies_to,optional"`
	From      string        `yaml:"effective_from" hcl:"effective_from"`
	To        string        `yaml:"effective_to,omitempty" hcl:"effective_to,optional"`
	Rounding  roundingWire  `yaml:"rounding,omitempty" hcl:"rounding,optional"`
}

type appliesToWire struct {
	Brand     string `yaml:"brand,omitempty" cty:"brand"`
	CardType  string `yaml:"card_type,omitempty" cty:"card_type"`
	Presence  string `yaml:"presence,omitempty" cty:"presence"`
	EntryMode string `yaml:"entry_mode,omitempty" cty:"entry_mode"`
}

type roundingWire struct {
	Places int32  `yaml:"places" cty:"places"`
	Mode   string `yaml:"mode" cty:"mode"`
}

type deviceWire struct {
	ID       string `yaml:"id" hcl:"id,label"`
	Name     string `yaml:"name" hcl:"name"`
	CostType string `yaml:"cost_type" hcl:"cost_type"`
	UnitCost string `yaml:"unit_cost" hcl:"unit_cost"`
	From     string `yaml:"effective_from" hcl:"effective_from"`
	To       string `yaml:"effective_to,omitempty" hcl:"effective_to,optional"`
}

type tierWire struct {
	UpToVolume string `yaml:"up_to_volume" cty:"up_to_volume"`
	MarkupBps  int64  `yaml:"markup_bps" cty:"markup_bps"`
}

type modelWire struct {
	ID              string     `yaml:"id" hcl:"id,label"`
	Kind            string     `yaml:"kind" hcl:"kind"`
	MarkupBps       int64      `yaml:"markup_bps,omitempty" hcl:"markup_bps,optional"`
	CardBrandBps    int64      `yaml:"card_brand_bps,omitempty" hcl:"card_brand_bps,optional"`
	Tiers           []tierWire `yaml:"tiers,omitempty" hcl:"tiers,optional"`
	DiscountRateBps int64      `yaml:"discount_rate_bps,omitempty" hcl:"discount_rate_bps,optional"`
	VisaRateBps     int64      `yaml:"visa_rate_bps,omitempty" hcl:"visa_rate_bps,optional"`
	MastercardBps   int64      `yaml:"mastercard_rate_bps,omitempty" hcl:"mastercard_rate_bps,optional"`
	AmexRateBps     int64      `yaml:"amex_rate_bps,omitempty" hcl:"amex_rate_bps,optional"`
	BillbackBps     int64      `yaml:"billback_bps,omitempty" hcl:"billback_bps,optional"`
	NonQualifiedBps int64      `yaml:"non_qualified_bps,omitempty" hcl:"non_qualified_bps,optional"`
	FlatRateBps     int64      `yaml:"flat_rate_bps,omitempty" hcl:"flat_rate_bps,optional"`
	PerItemFee      string     `yaml:"per_item_fee,omitempty" hcl:"per_item_fee,optional"`
	MonthlyFee      string     `yaml:"monthly_fee,omitempty" hcl:"monthly_fee,optional"`
	From            string     `yaml:"effective_from" hcl:"effective_from"`
	To              string     `yaml:"effective_to,omitempty" hcl:"effective_to,optional"`
}

type surchargeWire struct {
	ID            string   `yaml:"id" hcl:"id,label"`
	SurchargeBps  int64    `yaml:"surcharge_bps" hcl:"surcharge_bps"`
	MonthlyCap    string   `yaml:"monthly_cap,omitempty" hcl:"monthly_cap,optional"`
	MCCs          []string `yaml:"mccs,omitempty" hcl:"mccs,optional"`
	States        []string `yaml:"states,omitempty" hcl:"states,optional"`
	Brands        []string `yaml:"brands,omitempty" hcl:"brands,optional"`
	ReportingMode string   `yaml:"reporting_mode,omitempty" hcl:"reporting_mode,optional"`
	From          string   `yaml:"effective_from" hcl:"effective_from"`
	To            string   `yaml:"effective_to,omitempty" hcl:"effective_to,optional"`
}

type catalogFile struct {
	Tenant     string          `yaml:"tenant" hcl:"tenant"`
	FeeItems   []feeItemWire   `yaml:"fee_items,omitempty" hcl:"fee_item,block"`
	Devices    []deviceWire    `yaml:"device_items,omitempty" hcl:"device_item,block"`
	Models     []modelWire     `yaml:"pricing_models,omitempty" hcl:"pricing_model,block"`
	Surcharges []surchargeWire `yaml:"surcharge_programs,omitempty" hcl:"surcharge_program,block"`
}

func loadYAML(path string) (*recordSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Storage("read catalog file", err)
	}
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.Wrap(errors.TypeConfig, "parse catalog yaml "+path, err)
	}
	return file.toRecords()
}

func loadHCL(path string) (*recordSet, error) {
	var file catalogFile
	if err := hclsimple.DecodeFile(path, nil, &file); err != nil {
		return nil, errors.Wrap(errors.TypeConfig, "parse catalog hcl "+path, err)
	}
	return file.toRecords()
}

func (f *catalogFile) toRecords() (*recordSet, error) {
	rs := &recordSet{}

	for _, w := range f.FeeItems {
		item, err := w.toFeeItem()
		if err != nil {
			return nil, err
		}
		if err := ValidateFeeItem(item); err != nil {
			return nil, err
		}
		rs.fees = append(rs.fees, item)
	}
	for _, w := range f.Devices {
		dev, err := w.toDevice()
		if err != nil {
			return nil, err
		}
		if err := ValidateDeviceItem(dev); err != nil {
			return nil, err
		}
		rs.devices = append(rs.devices, dev)
	}
	for _, w := range f.Models {
		model, err := w.toModel()
		if err != nil {
			return nil, err
		}
		if err := ValidateModelConfig(model); err != nil {
			return nil, err
		}
		rs.models = append(rs.models, model)
	}
	for _, w := range f.Surcharges {
		sp, err := w.toSurcharge()
		if err != nil {
			return nil, err
		}
		if err := ValidateSurcharge(sp); err != nil {
			return nil, err
		}
		rs.surcharges = append(rs.surcharges, sp)
	}

	// Two versions of the same record must not be effective at once, on
	// any date, not just the one being resolved.
	if err := validateWindowOverlaps(rs.fees,
		func(i FeeItem) string { return i.ID },
		func(i FeeItem) EffectiveWindow { return i.Window },
		"fee item", f.Tenant); err != nil {
		return nil, err
	}
	if err := validateWindowOverlaps(rs.devices,
		func(i DeviceCatalogItem) string { return i.ID },
		func(i DeviceCatalogItem) EffectiveWindow { return i.Window },
		"device item", f.Tenant); err != nil {
		return nil, err
	}
	if err := validateWindowOverlaps(rs.models,
		func(i PricingModelConfig) string { return i.ID },
		func(i PricingModelConfig) EffectiveWindow { return i.Window },
		"pricing model", f.Tenant); err != nil {
		return nil, err
	}
	if err := validateWindowOverlaps(rs.surcharges,
		func(i SurchargeProgramConfig) string { return i.ID },
		func(i SurchargeProgramConfig) EffectiveWindow { return i.Window },
		"surcharge program", f.Tenant); err != nil {
		return nil, err
	}
	return rs, nil
}

func (w feeItemWire) toFeeItem() (FeeItem, error) {
	window, err := parseWindow(w.From, w.To, "fee item "+w.ID)
	if err != nil {
		return FeeItem{}, err
	}
	amount, err := parseAmount(w.Amount, "fee item "+w.ID)
	if err != nil {
		return FeeItem{}, err
	}
	return FeeItem{
		ID:      w.ID,
		Name:    w.Name,
		Group:   w.Group,
		Kind:    FeeKind(w.Kind),
		Class:   FeeClass(w.Class),
		RateBps: money.BasisPoints(w.RateBps),
		Amount:  amount,
		AppliesTo: AppliesTo{
			Brand:     CardBrand(w.AppliesTo.Brand),
			CardType:  CardType(w.AppliesTo.CardType),
			Presence:  Presence(w.AppliesTo.Presence),
			EntryMode: w.AppliesTo.EntryMode,
		},
		Window: window,
		Rounding: money.RoundingRule{
			Places: w.Rounding.Places,
			Mode:   money.RoundingMode(w.Rounding.Mode),
		},
	}, nil
}

func (w deviceWire) toDevice() (DeviceCatalogItem, error) {
	window, err := parseWindow(w.From, w.To, "device item "+w.ID)
	if err != nil {
		return DeviceCatalogItem{}, err
	}
	cost, err := parseAmount(w.UnitCost, "device item "+w.ID)
	if err != nil {
		return DeviceCatalogItem{}, err
	}
	return DeviceCatalogItem{
		ID:       w.ID,
		Name:     w.Name,
		CostType: DeviceCostType(w.CostType),
		UnitCost: cost,
		Window:   window,
	}, nil
}

func (w modelWire) toModel() (PricingModelConfig, error) {
	window, err := parseWindow(w.From, w.To, "pricing model "+w.ID)
	if err != nil {
		return PricingModelConfig{}, err
	}
	perItem, err := parseAmount(w.PerItemFee, "pricing model "+w.ID)
	if err != nil {
		return PricingModelConfig{}, err
	}
	monthly, err := parseAmount(w.MonthlyFee, "pricing model "+w.ID)
	if err != nil {
		return PricingModelConfig{}, err
	}
	var tiers []MarkupTier
	for _, t := range w.Tiers {
		upTo, err := parseAmount(t.UpToVolume, "pricing model "+w.ID+" tier")
		if err != nil {
			return PricingModelConfig{}, err
		}
		tiers = append(tiers, MarkupTier{
			UpToVolume: upTo,
			MarkupBps:  money.BasisPoints(t.MarkupBps),
		})
	}
	return PricingModelConfig{
		ID:              w.ID,
		Kind:            ModelKind(w.Kind),
		Window:          window,
		MarkupBps:       money.BasisPoints(w.MarkupBps),
		CardBrandBps:    money.BasisPoints(w.CardBrandBps),
		Tiers:           tiers,
		DiscountRateBps: money.BasisPoints(w.DiscountRateBps),
		VisaRateBps:     money.BasisPoints(w.VisaRateBps),
		MastercardBps:   money.BasisPoints(w.MastercardBps),
		AmexRateBps:     money.BasisPoints(w.AmexRateBps),
		BillbackBps:     money.BasisPoints(w.BillbackBps),
		NonQualifiedBps: money.BasisPoints(w.NonQualifiedBps),
		FlatRateBps:     money.BasisPoints(w.FlatRateBps),
		PerItemFee:      perItem,
		MonthlyFee:      monthly,
	}, nil
}

func (w surchargeWire) toSurcharge() (SurchargeProgramConfig, error) {
	window, err := parseWindow(w.From, w.To, "surcharge program "+w.ID)
	if err != nil {
		return SurchargeProgramConfig{}, err
	}
	cap, err := parseAmount(w.MonthlyCap, "surcharge program "+w.ID)
	if err != nil {
		return SurchargeProgramConfig{}, err
	}
	brands := make([]CardBrand, 0, len(w.Brands))
	for _, b := range w.Brands {
		brands = append(brands, CardBrand(b))
	}
	mode := ReportingMode(w.ReportingMode)
	if mode == "" {
		mode = ReportGross
	}
	return SurchargeProgramConfig{
		ID:           w.ID,
		SurchargeBps: money.BasisPoints(w.SurchargeBps),
		MonthlyCap:   cap,
		Eligibility: SurchargeEligibility{
			MCCs:   w.MCCs,
			States: w.States,
			Brands: brands,
		},
		ReportingMode: mode,
		Window:        window,
	}, nil
}

const dateLayout = "2006-01-02"

func parseWindow(from, to, label string) (EffectiveWindow, error) {
	var w EffectiveWindow
	f, err := time.Parse(dateLayout, from)
	if err != nil {
		return w, errors.Newf(errors.TypeConfig, "%s: bad effective_from %q", label, from)
	}
	w.From = f.UTC()
	if to != "" {
		t, err := time.Parse(dateLayout, to)
		if err != nil {
			return w, errors.Newf(errors.TypeConfig, "%s: bad effective_to %q", label, to)
		}
		w.To = t.UTC()
	}
	return w, nil
}

func parseAmount(s, label string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, errors.Newf(errors.TypeConfig, "%s: bad decimal %q", label, s)
	}
	return d, nil
}
