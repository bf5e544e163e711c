package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fairwage/fairwage/internal/adapters/overpass"
	"github.com/fairwage/fairwage/internal/adapters/postgres"
	"github.com/fairwage/fairwage/internal/core/domain"
	"github.com/fairwage/fairwage/internal/pkg/config"
)

// ---------------------------------------------------------------------------
// Manifest types
// ---------------------------------------------------------------------------

type Manifest struct {
	Source string      `json:"source"`
	Areas  []AreaEntry `json:"areas"`
}

// AreaEntry describes one import area: a center point, a radius, and the POI
// categories to pull. Imported locations are parked under a catch-all
// organization until someone claims them.
type AreaEntry struct {
	Slug       string   `json:"slug"`
	Name       string   `json:"name"`
	City       string   `json:"city"`
	State      string   `json:"state"`
	Lat        float64  `json:"lat"`
	Lon        float64  `json:"lon"`
	RadiusKm   float64  `json:"radius_km"`
	Categories []string `json:"categories"`
}

// ---------------------------------------------------------------------------
// Main
// ---------------------------------------------------------------------------

func main() {
	cfg, err := config.Load("fairwage-importer")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	// Load manifest
	manifestPath := "areas.json"
	if len(os.Args) > 1 {
		manifestPath = os.Args[1]
	}

	data, err := os.ReadFile(manifestPath)
	if err != nil {
		log.Fatalf("read manifest: %v", err)
	}

	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		log.Fatalf("parse manifest: %v", err)
	}

	log.Printf("FairWage POI importer: %d areas from %s", len(manifest.Areas), manifest.Source)

	// Filter areas (optional CLI arg: slug list)
	slugFilter := map[string]bool{}
	if len(os.Args) > 2 {
		for _, s := range strings.Split(os.Args[2], ",") {
			slugFilter[strings.TrimSpace(s)] = true
		}
	}

	// The importer always talks to Overpass, regardless of the API's
	// include_osm toggle. A longer timeout suits bulk pulls.
	gateway := overpass.New(cfg.Overpass.Endpoint, true, 60*time.Second)

	orgRepo := postgres.NewOrganizationRepo(db)
	locationRepo := postgres.NewLocationRepo(db)

	var wg sync.WaitGroup
	sem := make(chan struct{}, 2) // be polite to the public Overpass instance

	for _, area := range manifest.Areas {
		if len(slugFilter) > 0 && !slugFilter[area.Slug] {
			continue
		}

		wg.Add(1)
		go func(a AreaEntry) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			if err := importArea(ctx, orgRepo, locationRepo, gateway, a); err != nil {
				log.Printf("ERROR [%s]: %v", a.Slug, err)
			}
		}(area)
	}

	wg.Wait()
	log.Println("import complete")
}

// ---------------------------------------------------------------------------
// Per-area import
// ---------------------------------------------------------------------------

func importArea(ctx context.Context, orgs *postgres.OrganizationRepo, locations *postgres.LocationRepo, gateway *overpass.Client, area AreaEntry) error {
	log.Printf("[%s] importing %d categories around %.4f,%.4f", area.Slug, len(area.Categories), area.Lat, area.Lon)

	orgID, err := upsertCatchAllOrg(ctx, orgs, area)
	if err != nil {
		return err
	}

	total := 0
	for _, category := range area.Categories {
		pois, err := gateway.Search(ctx, category, area.Lat, area.Lon, area.RadiusKm)
		if err != nil {
			log.Printf("[%s]   %s: %v (skipping category)", area.Slug, category, err)
			continue
		}

		batch := make([]domain.Location, 0, len(pois))
		for _, poi := range pois {
			loc := domain.Location{
				OrganizationID: orgID,
				Name:           poi.Name,
				City:           area.City,
				State:          area.State,
				Active:         true,
			}
			if street := poi.FormattedAddress(); street != "" {
				loc.AddressLine = street
			}
			if err := loc.SetCoordinates(poi.Latitude, poi.Longitude); err != nil {
				continue
			}
			id := poi.ID
			loc.OSMID = &id
			batch = append(batch, loc)
		}

		if len(batch) == 0 {
			continue
		}
		if err := locations.UpsertBatch(ctx, batch); err != nil {
			log.Printf("[%s]   %s: upsert: %v", area.Slug, category, err)
			continue
		}

		total += len(batch)
		log.Printf("[%s]   %s: %d", area.Slug, category, len(batch))
	}

	log.Printf("[%s] done, %d locations", area.Slug, total)
	return nil
}

// upsertCatchAllOrg creates or refreshes the unclaimed-businesses bucket that
// holds an area's imported POIs.
func upsertCatchAllOrg(ctx context.Context, orgs *postgres.OrganizationRepo, area AreaEntry) (string, error) {
	org := &domain.Organization{
		Slug: "unclaimed-" + area.Slug,
		Name: "Unclaimed Businesses (" + area.Name + ")",
	}
	if err := orgs.Upsert(ctx, org); err != nil {
		return "", err
	}
	return org.ID, nil
}
