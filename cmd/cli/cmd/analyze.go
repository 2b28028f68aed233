package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/abhishekuniyalibyte/clover-calculator/core/catalog"
	"github.com/abhishekuniyalibyte/clover-calculator/core/engine"
	"github.com/abhishekuniyalibyte/clover-calculator/core/pricing"
	"github.com/abhishekuniyalibyte/clover-calculator/core/profile"
	"github.com/abhishekuniyalibyte/clover-calculator/core/snapshot"
	"github.com/abhishekuniyalibyte/clover-calculator/core/surcharge"
	"github.com/abhishekuniyalibyte/clover-calculator/internal/config"
	"github.com/abhishekuniyalibyte/clover-calculator/internal/errors"
)

var analyzeOpts struct {
	profilePath     string
	tenantID        string
	modelKind       string
	asOf            string
	catalogDir      string
	devices         []string
	surchargeID     string
	templateVersion string
	supersedes      string
	save            bool
	jsonOutput      bool
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Compute a cost comparison for a merchant profile",
	Long: `Analyze loads a normalized merchant cost profile, resolves the fee
catalog effective on the given date, prices the selected model, and prints
the savings comparison. With --save the resulting snapshot is persisted.`,
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeOpts.profilePath, "profile", "p", "", "merchant profile JSON file (required)")
	analyzeCmd.Flags().StringVarP(&analyzeOpts.tenantID, "tenant", "t", "", "tenant identifier (defaults to the profile's tenant)")
	analyzeCmd.Flags().StringVarP(&analyzeOpts.modelKind, "model", "m", "cost_plus", "pricing model kind (cost_plus, iplus, discount_rate, flat)")
	analyzeCmd.Flags().StringVar(&analyzeOpts.asOf, "as-of", "", "catalog effective date YYYY-MM-DD (default today)")
	analyzeCmd.Flags().StringVar(&analyzeOpts.catalogDir, "catalog-dir", "", "catalog directory (overrides config)")
	analyzeCmd.Flags().StringArrayVarP(&analyzeOpts.devices, "device", "d", nil, "device selection as id:quantity (repeatable)")
	analyzeCmd.Flags().StringVar(&analyzeOpts.surchargeID, "surcharge", "", "surcharge program ID to overlay")
	analyzeCmd.Flags().StringVar(&analyzeOpts.templateVersion, "template-version", "", "proposal template version to stamp on the snapshot")
	analyzeCmd.Flags().StringVar(&analyzeOpts.supersedes, "supersedes", "", "snapshot ID this analysis corrects")
	analyzeCmd.Flags().BoolVar(&analyzeOpts.save, "save", false, "persist the snapshot to the store")
	analyzeCmd.Flags().BoolVar(&analyzeOpts.jsonOutput, "json", false, "print the full snapshot as JSON")
	_ = analyzeCmd.MarkFlagRequired("profile")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg := config.Get()

	p, err := loadProfile(analyzeOpts.profilePath)
	if err != nil {
		return err
	}
	tenantID := analyzeOpts.tenantID
	if tenantID == "" {
		tenantID = p.TenantID
	}
	if tenantID == "" {
		return errors.Input("tenant ID is required (--tenant or profile.tenant_id)")
	}
	p.TenantID = tenantID

	asOf := time.Now().UTC()
	if analyzeOpts.asOf != "" {
		asOf, err = time.Parse("2006-01-02", analyzeOpts.asOf)
		if err != nil {
			return errors.Newf(errors.TypeInput, "bad --as-of date %q", analyzeOpts.asOf)
		}
	}

	catalogDir := analyzeOpts.catalogDir
	if catalogDir == "" {
		catalogDir = cfg.Catalog.Directory
	}
	resolver, err := catalog.NewResolver(catalog.NewFileStore(catalogDir), cfg.Catalog.CacheSize)
	if err != nil {
		return err
	}
	cat, err := resolver.Resolve(tenantID, asOf)
	if err != nil {
		return err
	}

	modelCfg, ok := cat.Model(catalog.ModelKind(analyzeOpts.modelKind))
	if !ok {
		return errors.NotFound("pricing model config", analyzeOpts.modelKind)
	}

	proposed, err := pricing.Evaluate(p, modelCfg, cat)
	if err != nil {
		return err
	}

	var surResult *surcharge.Result
	if analyzeOpts.surchargeID != "" {
		surCfg, ok := cat.Surcharge(analyzeOpts.surchargeID)
		if !ok {
			return errors.NotFound("surcharge program", analyzeOpts.surchargeID)
		}
		surResult, err = surcharge.Evaluate(p, surCfg, proposed)
		if err != nil {
			return err
		}
	}

	selections, err := parseDeviceSelections(analyzeOpts.devices)
	if err != nil {
		return err
	}

	eng := engine.New()
	eng.Convention = engine.DayCountConvention(cfg.Engine.DayCountConvention)
	eng.AmortizationMonths = cfg.Engine.AmortizationMonths

	result, err := eng.Compute(p, cat, proposed, selections, nil, surResult)
	if err != nil {
		return err
	}

	snap, err := snapshot.NewBuilder(result).
		WithDeviceSelections(selections).
		WithTemplateVersion(analyzeOpts.templateVersion).
		WithSupersedes(snapshot.ID(analyzeOpts.supersedes)).
		Build()
	if err != nil {
		return err
	}

	if analyzeOpts.save {
		store, err := snapshot.Open(cfg.Storage.DatabasePath)
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.Save(context.Background(), snap); err != nil {
			return err
		}
		pterm.Success.Printfln("Snapshot %s saved", snap.ID)
	}

	if analyzeOpts.jsonOutput {
		out, err := json.MarshalIndent(snap, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	renderComparison(snap)
	return nil
}

func loadProfile(path string) (*profile.NormalizedCostProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.TypeInput, "read profile file", err)
	}
	var p profile.NormalizedCostProfile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, errors.Wrap(errors.TypeInput, "parse profile file", err)
	}
	return &p, nil
}

// parseDeviceSelections parses repeatable id:quantity flags. A bare ID
// means quantity 1.
func parseDeviceSelections(specs []string) ([]engine.DeviceSelection, error) {
	var out []engine.DeviceSelection
	for _, spec := range specs {
		id, qtyStr, found := strings.Cut(spec, ":")
		if id == "" {
			return nil, errors.Newf(errors.TypeInput, "bad device selection %q, want id:quantity", spec)
		}
		qty := int64(1)
		if found {
			n, err := strconv.ParseInt(qtyStr, 10, 64)
			if err != nil || n <= 0 {
				return nil, errors.Newf(errors.TypeInput, "bad device quantity in %q", spec)
			}
			qty = n
		}
		out = append(out, engine.DeviceSelection{DeviceID: id, Quantity: qty})
	}
	return out, nil
}

func renderComparison(snap *snapshot.PricingSnapshot) {
	c := snap.Comparison

	pterm.DefaultSection.Println("Cost Comparison")
	pterm.Info.Printfln("Snapshot:        %s", snap.ID)
	pterm.Info.Printfln("Catalog version: %s", snap.CatalogVersion)
	pterm.Info.Printfln("Pricing model:   %s", c.Proposed.ModelKind)

	summary := pterm.TableData{
		{"", "Monthly"},
		{"Current cost", "$" + c.CurrentTotal.StringFixed(2)},
		{"Proposed cost", "$" + c.ProposedTotal.StringFixed(2)},
		{"Net savings", "$" + c.NetSavings.StringFixed(2)},
	}
	if c.PercentDefined {
		summary = append(summary, []string{"Savings %", c.PercentSavings.StringFixed(2) + "%"})
	} else {
		summary = append(summary, []string{"Savings %", "n/a (no current cost baseline)"})
	}
	if c.BreakEvenMonths != nil {
		summary = append(summary, []string{"Break-even", c.BreakEvenMonths.StringFixed(2) + " months"})
	}
	_ = pterm.DefaultTable.WithHasHeader().WithData(summary).Render()

	pterm.DefaultSection.Println("Projections")
	rows := pterm.TableData{{"Timeframe", "Current", "Proposed", "Savings"}}
	for _, tf := range c.Timeframes {
		rows = append(rows, []string{
			tf.Label,
			"$" + tf.CurrentCost.StringFixed(2),
			"$" + tf.ProposedCost.StringFixed(2),
			"$" + tf.Savings.StringFixed(2),
		})
	}
	_ = pterm.DefaultTable.WithHasHeader().WithData(rows).Render()

	if c.Surcharge != nil {
		pterm.DefaultSection.Println("Surcharge Program")
		if c.Surcharge.Eligible {
			pterm.Info.Printfln("Eligible, estimated revenue $%s/month (%s reporting)",
				c.Surcharge.Revenue.StringFixed(2), c.Surcharge.ReportingMode)
			if c.Surcharge.CapApplied {
				pterm.Warning.Println("Monthly revenue cap applied")
			}
		} else {
			pterm.Warning.Printfln("Not eligible: %s", c.Surcharge.Reason)
		}
	}

	if !c.HasSufficientData {
		pterm.Warning.Printfln("Estimate quality limited, missing: %s",
			strings.Join(c.MissingFields, ", "))
	}
	if c.Proposed.AssumedBlendedPassThrough {
		pterm.Warning.Println("Pass-through costs assumed from blended rate; request an interchange statement for precision")
	}
}
