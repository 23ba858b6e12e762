// cmd/seeder/main.go
//
// Seeds a fresh local store with sample organizations, items and
// transactions, written as already-synced records so the daemon starts with
// an empty pending queue.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/pklemenc/shelfsync/internal/adapters/localdb"
	"github.com/pklemenc/shelfsync/internal/core/domain"
	"github.com/pklemenc/shelfsync/internal/pkg/logger"
)

func main() {
	var (
		dbPath   = flag.String("db", "shelfsync.db", "path to the local store")
		itemsPer = flag.Int("items", 25, "items to create per organization")
		seed     = flag.Int64("seed", time.Now().UnixNano(), "random seed")
	)
	flag.Parse()

	slogger := logger.Setup("info", "text")

	if err := run(*dbPath, *itemsPer, *seed, slogger); err != nil {
		slogger.Error("seeding failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(dbPath string, itemsPer int, seed int64, slogger *slog.Logger) error {
	ctx := context.Background()
	rng := rand.New(rand.NewSource(seed))

	store, err := localdb.Open(dbPath, 0, slogger)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer store.Close()

	orgs := sampleOrganizations()
	for i := range orgs {
		if err := store.Organizations().PutSynced(ctx, &orgs[i]); err != nil {
			return fmt.Errorf("seeding organization %s: %w", orgs[i].Name, err)
		}
	}
	slogger.Info("organizations seeded", slog.Int("count", len(orgs)))

	var itemCount, txCount int
	for i := range orgs {
		org := domain.OrgID(orgs[i].ID)
		for j := 0; j < itemsPer; j++ {
			item := randomItem(rng, org)
			if err := store.Items().PutSynced(ctx, item); err != nil {
				return fmt.Errorf("seeding item %s: %w", item.Name, err)
			}
			itemCount++

			for _, t := range randomHistory(rng, item) {
				if err := store.Transactions().PutSynced(ctx, t); err != nil {
					return fmt.Errorf("seeding transaction for %s: %w", item.Name, err)
				}
				txCount++
			}
		}
	}

	slogger.Info("seeding complete",
		slog.String("db", dbPath),
		slog.Int("organizations", len(orgs)),
		slog.Int("items", itemCount),
		slog.Int("transactions", txCount))
	return nil
}

func sampleOrganizations() []domain.Organization {
	now := time.Now().UTC()
	orgs := []domain.Organization{
		{
			Name:        "Hope Shelter",
			Description: "Emergency housing and daily essentials",
			Type:        domain.OrgTypeShelter,
			Icon:        "home",
			Color:       "#2563eb",
			IsDefault:   true,
		},
		{
			Name:        "Riverside Food Bank",
			Description: "Food collection and distribution",
			Type:        domain.OrgTypeFoodBank,
			Icon:        "shopping-basket",
			Color:       "#16a34a",
		},
		{
			Name:        "Community Closet",
			Description: "Clothing and household goods",
			Type:        domain.OrgTypeCommunity,
			Icon:        "shirt",
			Color:       "#9333ea",
		},
	}
	for i := range orgs {
		orgs[i].ID = uuid.New().String()
		orgs[i].CreatedAt = now
		orgs[i].UpdatedAt = now
	}
	return orgs
}

var sampleItems = []struct {
	name     string
	category domain.ItemCategory
	unit     string
}{
	{"Canned beans", domain.CategoryFood, "cans"},
	{"Rice 1kg", domain.CategoryFood, "bags"},
	{"Pasta 500g", domain.CategoryFood, "packs"},
	{"Winter jacket", domain.CategoryClothing, "pcs"},
	{"Wool socks", domain.CategoryClothing, "pairs"},
	{"Toothpaste", domain.CategoryHygiene, "tubes"},
	{"Shampoo 250ml", domain.CategoryHygiene, "bottles"},
	{"Laundry detergent", domain.CategoryHousehold, "boxes"},
	{"Dish soap", domain.CategoryHousehold, "bottles"},
	{"Blanket", domain.CategoryBedding, "pcs"},
	{"Pillow", domain.CategoryBedding, "pcs"},
	{"Notebook", domain.CategorySchool, "pcs"},
	{"Crayons", domain.CategorySchool, "boxes"},
	{"Board game", domain.CategoryToys, "pcs"},
	{"Picture book", domain.CategoryBooks, "pcs"},
	{"First aid kit", domain.CategoryMedical, "kits"},
}

func randomItem(rng *rand.Rand, org domain.OrgID) *domain.Item {
	tpl := sampleItems[rng.Intn(len(sampleItems))]
	now := time.Now().UTC().Add(-time.Duration(rng.Intn(90*24)) * time.Hour)

	return &domain.Item{
		ID:        uuid.New().String(),
		Barcode:   fmt.Sprintf("20%010d", rng.Int63n(1e10)),
		Name:      tpl.name,
		Category:  tpl.category,
		Quantity:  rng.Intn(120),
		Unit:      tpl.unit,
		Condition: domain.ConditionGood,
		MinStock:  5 + rng.Intn(15),
		Location:  fmt.Sprintf("Shelf %c%d", 'A'+rng.Intn(5), 1+rng.Intn(9)),
		OrgID:     org,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func randomHistory(rng *rand.Rand, item *domain.Item) []*domain.Transaction {
	n := rng.Intn(4)
	txs := make([]*domain.Transaction, 0, n)
	for i := 0; i < n; i++ {
		direction := domain.DirectionIn
		reason := domain.ReasonDonation
		if rng.Intn(2) == 1 {
			direction = domain.DirectionOut
			reason = domain.ReasonDistribution
		}
		txs = append(txs, &domain.Transaction{
			ID:         uuid.New().String(),
			ItemID:     item.ID,
			Direction:  direction,
			Quantity:   1 + rng.Intn(10),
			Reason:     reason,
			OccurredAt: item.CreatedAt.Add(time.Duration(rng.Intn(72)) * time.Hour),
			OrgID:      item.OrgID,
		})
	}
	return txs
}
