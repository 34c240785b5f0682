package plan

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/billingkit/pkg/l10n"
	"github.com/dmitrymomot/billingkit/pkg/period"
)

// yamlCatalog mirrors the on-disk catalog document.
type yamlCatalog struct {
	Plans []yamlPlan `yaml:"plans"`
}

type yamlPlan struct {
	ID               string            `yaml:"id"`
	Slug             string            `yaml:"slug"`
	Name             map[string]string `yaml:"name"`
	Description      map[string]string `yaml:"description"`
	Active           *bool             `yaml:"active"`
	Price            Money             `yaml:"price"`
	SignupFee        Money             `yaml:"signup_fee"`
	Trial            yamlWindow        `yaml:"trial"`
	Invoice          yamlWindow        `yaml:"invoice"`
	Grace            yamlWindow        `yaml:"grace"`
	CashAutoApprove  bool              `yaml:"cash_auto_approve"`
	AllowedGateways  []string          `yaml:"allowed_gateways"`
	ProviderPriceIDs map[string]string `yaml:"provider_price_ids"`
	SortOrder        int               `yaml:"sort_order"`
	Features         []yamlFeature     `yaml:"features"`
}

type yamlFeature struct {
	ID          string            `yaml:"id"`
	Slug        string            `yaml:"slug"`
	Name        map[string]string `yaml:"name"`
	Description map[string]string `yaml:"description"`
	Value       string            `yaml:"value"`
	Reset       yamlWindow        `yaml:"reset"`
	SortOrder   int               `yaml:"sort_order"`
}

type yamlWindow struct {
	Period   int             `yaml:"period"`
	Interval period.Interval `yaml:"interval"`
}

type yamlSource struct {
	fsys fs.FS
	path string
}

// NewYAMLSource returns a Source reading the catalog document at path inside
// fsys on every Load, so a catalog Reload picks up edits without a restart.
// Plan and feature IDs may be declared in the document; missing IDs are
// generated per load, which is fine for catalogs resolved by slug but means
// ID-keyed references will not survive a reload.
func NewYAMLSource(fsys fs.FS, path string) Source {
	if fsys == nil {
		panic("plan: fs.FS is required")
	}
	return &yamlSource{fsys: fsys, path: path}
}

func (s *yamlSource) Load(ctx context.Context) (map[string]Plan, error) {
	f, err := s.fsys.Open(s.path)
	if err != nil {
		return nil, errors.Join(ErrFailedToLoadPlans, err)
	}
	defer f.Close()

	raw, err := io.ReadAll(f)
	if err != nil {
		return nil, errors.Join(ErrFailedToLoadPlans, err)
	}

	var doc yamlCatalog
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, errors.Join(ErrFailedToLoadPlans, err)
	}

	now := time.Now().UTC()
	out := make(map[string]Plan, len(doc.Plans))
	for _, yp := range doc.Plans {
		p, err := yp.toPlan(now)
		if err != nil {
			return nil, err
		}
		if _, dup := out[p.Slug]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicatePlan, p.Slug)
		}
		out[p.Slug] = p
	}
	return out, nil
}

func (yp yamlPlan) toPlan(now time.Time) (Plan, error) {
	id, err := parseOptionalID(yp.ID)
	if err != nil {
		return Plan{}, fmt.Errorf("%w: plan %s: %w", ErrInvalidPlan, yp.Slug, err)
	}

	active := true
	if yp.Active != nil {
		active = *yp.Active
	}

	p := Plan{
		ID:               id,
		Slug:             yp.Slug,
		Name:             l10n.Text(yp.Name),
		Description:      l10n.Text(yp.Description),
		Active:           active,
		Price:            yp.Price,
		SignupFee:        yp.SignupFee,
		TrialPeriod:      yp.Trial.Period,
		TrialInterval:    yp.Trial.Interval,
		InvoicePeriod:    yp.Invoice.Period,
		InvoiceInterval:  yp.Invoice.Interval,
		GracePeriod:      yp.Grace.Period,
		GraceInterval:    yp.Grace.Interval,
		CashAutoApprove:  yp.CashAutoApprove,
		AllowedGateways:  yp.AllowedGateways,
		ProviderPriceIDs: yp.ProviderPriceIDs,
		SortOrder:        yp.SortOrder,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	p.Features = make([]Feature, 0, len(yp.Features))
	for _, yf := range yp.Features {
		fid, err := parseOptionalID(yf.ID)
		if err != nil {
			return Plan{}, fmt.Errorf("%w: feature %s: %w", ErrInvalidFeature, yf.Slug, err)
		}
		p.Features = append(p.Features, Feature{
			ID:                 fid,
			PlanID:             p.ID,
			Slug:               yf.Slug,
			Name:               l10n.Text(yf.Name),
			Description:        l10n.Text(yf.Description),
			Value:              yf.Value,
			ResettablePeriod:   yf.Reset.Period,
			ResettableInterval: yf.Reset.Interval,
			SortOrder:          yf.SortOrder,
		})
	}
	return p, nil
}

func parseOptionalID(raw string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.New(), nil
	}
	return uuid.Parse(raw)
}
