package catalog

import "sync"

// MemoryStore is an in-memory Store used by tests and by callers that
// receive catalog records over the admin boundary instead of from files.
type MemoryStore struct {
	mu         sync.RWMutex
	fees       map[string][]FeeItem
	devices    map[string][]DeviceCatalogItem
	models     map[string][]PricingModelConfig
	surcharges map[string][]SurchargeProgramConfig
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		fees:       make(map[string][]FeeItem),
		devices:    make(map[string][]DeviceCatalogItem),
		models:     make(map[string][]PricingModelConfig),
		surcharges: make(map[string][]SurchargeProgramConfig),
	}
}

// AddFeeItems appends fee item records for a tenant.
func (s *MemoryStore) AddFeeItems(tenantID string, items ...FeeItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fees[tenantID] = append(s.fees[tenantID], items...)
}

// AddDeviceItems appends device records for a tenant.
func (s *MemoryStore) AddDeviceItems(tenantID string, items ...DeviceCatalogItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.devices[tenantID] = append(s.devices[tenantID], items...)
}

// AddPricingModels appends pricing model records for a tenant.
func (s *MemoryStore) AddPricingModels(tenantID string, items ...PricingModelConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.models[tenantID] = append(s.models[tenantID], items...)
}

// AddSurchargePrograms appends surcharge program records for a tenant.
func (s *MemoryStore) AddSurchargePrograms(tenantID string, items ...SurchargeProgramConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.surcharges[tenantID] = append(s.surcharges[tenantID], items...)
}

// FeeItems implements Store
func (s *MemoryStore) FeeItems(tenantID string) ([]FeeItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]FeeItem(nil), s.fees[tenantID]...), nil
}

// DeviceItems implements Store
func (s *MemoryStore) DeviceItems(tenantID string) ([]DeviceCatalogItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]DeviceCatalogItem(nil), s.devices[tenantID]...), nil
}

// PricingModels implements Store
func (s *MemoryStore) PricingModels(tenantID string) ([]PricingModelConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]PricingModelConfig(nil), s.models[tenantID]...), nil
}

// SurchargePrograms implements Store
func (s *MemoryStore) SurchargePrograms(tenantID string) ([]SurchargeProgramConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]SurchargeProgramConfig(nil), s.surcharges[tenantID]...), nil
}
