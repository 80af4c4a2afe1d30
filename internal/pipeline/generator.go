package pipeline

import (
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/schollz/progressbar/v3"

	"insightlens/internal/dataset"
)

// Catalog constants for the synthetic storefront.
var (
	generatorCategories = []string{
		"Electronics", "Clothing", "Books", "Home & Garden",
		"Sports", "Beauty", "Toys",
	}
	generatorRegions = []string{"North", "South", "East", "West", "Central"}
)

// GeneratorConfig controls synthetic data generation. The defaults produce
// two years of transactions so calendar features have real variance.
type GeneratorConfig struct {
	Transactions int
	Customers    int
	Seed         int64
	Start        time.Time
	Days         int
	ShowProgress bool
}

// DefaultGeneratorConfig returns the standard synthetic dataset shape.
func DefaultGeneratorConfig(seed int64) GeneratorConfig {
	return GeneratorConfig{
		Transactions: 5000,
		Customers:    500,
		Seed:         seed,
		Start:        time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		Days:         730,
	}
}

// GenerateDataset produces a synthetic e-commerce transaction dataset.
// Customers keep a stable age and region across their transactions. Prices
// carry a seasonal multiplier: holiday season (Nov/Dec) runs 1.5x and
// summer (Jun-Aug) 1.2x. Generation is fully determined by the seed.
func GenerateDataset(cfg GeneratorConfig) *dataset.Dataset {
	faker := gofakeit.New(uint64(cfg.Seed))

	type customer struct {
		id     string
		age    int
		region string
	}
	customers := make([]customer, cfg.Customers)
	for i := range customers {
		customers[i] = customer{
			id:     fmt.Sprintf("CUST_%04d", i+1),
			age:    faker.Number(18, 80),
			region: generatorRegions[faker.Number(0, len(generatorRegions)-1)],
		}
	}

	var bar *progressbar.ProgressBar
	if cfg.ShowProgress {
		bar = progressbar.Default(int64(cfg.Transactions), "generating transactions")
	}

	d := dataset.New([]string{
		"transaction_id", "date", "customer_id", "category",
		"price", "quantity", "total_amount", "region", "customer_age",
	})

	for i := 0; i < cfg.Transactions; i++ {
		c := customers[faker.Number(0, len(customers)-1)]
		ts := cfg.Start.AddDate(0, 0, faker.Number(0, cfg.Days-1))

		price := faker.Float64Range(10, 500) * seasonalMultiplier(ts.Month())
		quantity := faker.Number(1, 5)

		_ = d.AppendRow([]dataset.Value{
			dataset.String(fmt.Sprintf("TXN_%06d", i+1)),
			dataset.Time(ts),
			dataset.String(c.id),
			dataset.String(generatorCategories[faker.Number(0, len(generatorCategories)-1)]),
			dataset.Float(price),
			dataset.Int(int64(quantity)),
			dataset.Float(price * float64(quantity)),
			dataset.String(c.region),
			dataset.Int(int64(c.age)),
		})

		if bar != nil {
			_ = bar.Add(1)
		}
	}
	return d
}

// GeneratorRoles binds the generated column names to their semantic roles.
func GeneratorRoles() dataset.ColumnRoles {
	return dataset.ColumnRoles{
		Customer:  "customer_id",
		Timestamp: "date",
		Amount:    "total_amount",
		Category:  "category",
		Region:    "region",
		Age:       "customer_age",
	}
}

func seasonalMultiplier(month time.Month) float64 {
	switch {
	case month == time.November || month == time.December:
		return 1.5
	case month >= time.June && month <= time.August:
		return 1.2
	default:
		return 1.0
	}
}
