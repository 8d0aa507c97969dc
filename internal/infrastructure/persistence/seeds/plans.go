package seeds

import (
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/orris-inc/tenancy/internal/application/subscription/usecases"
	vo "github.com/orris-inc/tenancy/internal/domain/subscription/valueobjects"
	"github.com/orris-inc/tenancy/internal/shared/logger"
	"github.com/orris-inc/tenancy/internal/shared/utils"
)

//go:embed plans.yaml
var defaultPlans []byte

type planCatalog struct {
	Plans []planEntry `yaml:"plans" validate:"required,min=1,dive"`
}

type planEntry struct {
	Slug            string `yaml:"slug" validate:"required,max=64"`
	Name            string `yaml:"name" validate:"required,max=100"`
	Description     string `yaml:"description" validate:"max=500"`
	Price           uint64 `yaml:"price"`
	Currency        string `yaml:"currency" validate:"required,iso4217"`
	MaxEntitlement  int    `yaml:"max_entitlement" validate:"gte=0"`
	DurationDays    int    `yaml:"duration_days" validate:"required,gt=0"`
	IsTrial         bool   `yaml:"is_trial"`
	Inactive        bool   `yaml:"inactive"`
	PaymentProvider string `yaml:"payment_provider" validate:"omitempty,oneof=stripe manual"`
	SortOrder       int    `yaml:"sort_order"`
}

// LoadPlans decodes a YAML plan catalog.
func LoadPlans(r io.Reader) ([]usecases.PlanDefinition, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var catalog planCatalog
	if err := dec.Decode(&catalog); err != nil {
		return nil, fmt.Errorf("failed to decode plan catalog: %w", err)
	}
	if err := utils.ValidateStruct(catalog); err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(catalog.Plans))
	defs := make([]usecases.PlanDefinition, 0, len(catalog.Plans))
	for _, p := range catalog.Plans {
		if seen[p.Slug] {
			return nil, fmt.Errorf("duplicate plan slug in catalog: %s", p.Slug)
		}
		seen[p.Slug] = true

		def := usecases.PlanDefinition{
			Slug:           p.Slug,
			Name:           p.Name,
			Description:    p.Description,
			Price:          p.Price,
			Currency:       strings.ToUpper(p.Currency),
			MaxEntitlement: p.MaxEntitlement,
			DurationDays:   p.DurationDays,
			IsTrial:        p.IsTrial,
			Active:         !p.Inactive,
			SortOrder:      p.SortOrder,
		}
		if p.PaymentProvider != "" {
			provider := vo.PaymentProvider(p.PaymentProvider)
			def.PaymentProvider = &provider
		}
		defs = append(defs, def)
	}
	return defs, nil
}

// DefaultPlans returns the built-in catalog.
func DefaultPlans() ([]usecases.PlanDefinition, error) {
	return LoadPlans(strings.NewReader(string(defaultPlans)))
}

// LoadPlanCatalog reads the catalog at path, falling back to the built-in
// one when path is empty or the file does not exist.
func LoadPlanCatalog(path string, log logger.Interface) ([]usecases.PlanDefinition, error) {
	if path == "" {
		log.Infow("no plan catalog configured, using defaults")
		return DefaultPlans()
	}

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		log.Warnw("plan catalog not found, using defaults", "path", path)
		return DefaultPlans()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open plan catalog: %w", err)
	}
	defer f.Close()

	defs, err := LoadPlans(f)
	if err != nil {
		return nil, err
	}
	log.Infow("loaded plan catalog", "path", path, "plans", len(defs))
	return defs, nil
}
