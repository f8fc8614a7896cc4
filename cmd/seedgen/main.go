// Command seedgen writes a synthetic attractions CSV for local seeding,
// or publishes the rows straight to the ingest subject with -nats.
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/RoamlyAI/roamly-mvp/engine/domain"
	"github.com/RoamlyAI/roamly-mvp/engine/ingest"
	"github.com/RoamlyAI/roamly-mvp/pkg/natsutil"
)

type city struct {
	name     string
	country  string
	currency string
}

var cities = []city{
	{"Paris", "France", "EUR"},
	{"London", "UK", "GBP"},
	{"New York", "USA", "USD"},
	{"Tokyo", "Japan", "JPY"},
	{"Barcelona", "Spain", "EUR"},
	{"Rome", "Italy", "EUR"},
	{"Berlin", "Germany", "EUR"},
	{"Amsterdam", "Netherlands", "EUR"},
	{"Vienna", "Austria", "EUR"},
	{"Prague", "Czech Republic", "CZK"},
	{"Budapest", "Hungary", "HUF"},
	{"Lisbon", "Portugal", "EUR"},
	{"Athens", "Greece", "EUR"},
	{"Istanbul", "Turkey", "TRY"},
	{"Dubai", "UAE", "AED"},
	{"Singapore", "Singapore", "SGD"},
	{"Seoul", "South Korea", "KRW"},
	{"Bangkok", "Thailand", "THB"},
	{"Sydney", "Australia", "AUD"},
	{"Mumbai", "India", "INR"},
	{"Cairo", "Egypt", "EGP"},
	{"Cape Town", "South Africa", "ZAR"},
	{"Rio de Janeiro", "Brazil", "BRL"},
	{"Mexico City", "Mexico", "MXN"},
	{"Toronto", "Canada", "CAD"},
	{"San Francisco", "USA", "USD"},
	{"Chicago", "USA", "USD"},
	{"Edinburgh", "UK", "GBP"},
}

type kind struct {
	name       string
	suffixes   []string
	minPrice   float64
	maxPrice   float64
	hours      []string
	activities []string
}

var kinds = []kind{
	{
		name:     "landmark",
		suffixes: []string{"Tower", "Gate", "Arch", "Monument", "Clock Tower", "City Hall"},
		minPrice: 0, maxPrice: 35,
		hours: []string{"Daily: 9:00-18:00", "Daily: 8:00-20:00", "Daily: 24 hours"},
		activities: []string{
			"Climb to the top for panoramic city views and enjoy breathtaking scenery.",
			"Explore the historic architecture and learn about the landmark's significance.",
			"Take guided tours to discover hidden stories and architectural details.",
			"Visit during sunset for spectacular lighting and photo opportunities.",
		},
	},
	{
		name:     "museum",
		suffixes: []string{"Museum", "History Museum", "Science Museum", "Maritime Museum", "Archaeological Museum"},
		minPrice: 0, maxPrice: 25,
		hours: []string{"Tue-Sun: 9:00-18:00; Mon: Closed", "Daily: 10:00-17:00"},
		activities: []string{
			"Explore world-class collections featuring art, history, and culture.",
			"Join guided tours led by expert curators to gain deeper insights into the exhibits.",
			"Attend special exhibitions, workshops, and educational programs for all ages.",
			"Use audio guides available in multiple languages for a self-paced experience.",
		},
	},
	{
		name:     "park",
		suffixes: []string{"Park", "Central Park", "Riverside Park", "Memorial Park"},
		minPrice: 0, maxPrice: 15,
		hours: []string{"Daily: 6:00-22:00", "Daily: 24 hours", "Daily: 8:00-20:00"},
		activities: []string{
			"Stroll through beautifully landscaped gardens and enjoy peaceful nature walks.",
			"Have a picnic on the lawns, rent bicycles, or enjoy outdoor recreational activities.",
			"Attend outdoor concerts, festivals, and cultural events held in the park.",
		},
	},
	{
		name:     "theme_park",
		suffixes: []string{"Theme Park", "Adventure Park", "Water Park"},
		minPrice: 50, maxPrice: 150,
		hours: []string{"Daily: 9:00-20:00 (varies by season)", "Daily: 10:00-22:00 (varies by season)"},
		activities: []string{
			"Experience thrilling rides and attractions based on popular themes and stories.",
			"Watch live shows, parades, and character meet-and-greets throughout the day.",
			"Enjoy themed dining experiences and shopping for exclusive merchandise.",
		},
	},
	{
		name:     "gallery",
		suffixes: []string{"Art Gallery", "Modern Art Gallery"},
		minPrice: 0, maxPrice: 20,
		hours: []string{"Tue-Sun: 10:00-18:00; Mon: Closed", "Daily: 10:00-17:00"},
		activities: []string{
			"View rotating exhibitions of contemporary and classical art from renowned artists.",
			"Attend gallery talks, artist workshops, and special opening events.",
			"Explore permanent collections showcasing local and international artworks.",
		},
	},
	{
		name:     "cathedral",
		suffixes: []string{"Cathedral", "Basilica"},
		minPrice: 0, maxPrice: 12,
		hours: []string{"Daily: 6:00-18:00", "Daily: 8:00-17:00", "Daily: 7:00-19:00"},
		activities: []string{
			"Admire stunning Gothic architecture, stained glass windows, and intricate details.",
			"Attend religious services, concerts, and special ceremonies.",
			"Climb the towers for panoramic views of the city and surrounding areas.",
		},
	},
	{
		name:     "palace",
		suffixes: []string{"Palace", "Royal Palace"},
		minPrice: 10, maxPrice: 30,
		hours: []string{"Daily: 9:00-17:00", "Daily: 10:00-18:00 (last entry 17:00)"},
		activities: []string{
			"Tour opulent royal chambers, grand halls, and beautifully decorated rooms.",
			"Explore the palace gardens, courtyards, and surrounding grounds.",
			"View collections of royal artifacts, paintings, and historical treasures.",
		},
	},
	{
		name:     "castle",
		suffixes: []string{"Castle", "Fortress", "Citadel"},
		minPrice: 8, maxPrice: 25,
		hours: []string{"Daily: 9:00-17:00", "Daily: 10:00-18:00"},
		activities: []string{
			"Explore medieval fortifications, towers, and historic battlements.",
			"Visit the castle museum to see armor, weapons, and historical artifacts.",
			"Climb the towers for panoramic views and enjoy scenic walks along the ramparts.",
		},
	},
	{
		name:     "market",
		suffixes: []string{"Market", "Central Market", "Night Market"},
		minPrice: 0, maxPrice: 0,
		hours: []string{"Daily: 8:00-20:00", "Mon-Sat: 9:00-18:00; Sun: 10:00-17:00"},
		activities: []string{
			"Shop for fresh produce, local crafts, souvenirs, and unique gifts.",
			"Sample local street food, traditional dishes, and regional specialties.",
			"Experience the vibrant atmosphere and interact with local vendors.",
		},
	},
	{
		name:     "zoo",
		suffixes: []string{"Zoo", "Wildlife Park"},
		minPrice: 10, maxPrice: 30,
		hours: []string{"Daily: 9:00-17:00", "Daily: 9:00-18:00"},
		activities: []string{
			"Observe diverse animal species in naturalistic habitats and enclosures.",
			"Attend animal feeding sessions, keeper talks, and educational presentations.",
			"Explore themed areas representing different ecosystems and continents.",
		},
	},
	{
		name:     "aquarium",
		suffixes: []string{"Aquarium", "Marine Aquarium"},
		minPrice: 15, maxPrice: 40,
		hours: []string{"Daily: 10:00-18:00 (last entry 17:00)", "Daily: 9:00-18:00"},
		activities: []string{
			"Explore underwater worlds featuring marine life from around the globe.",
			"Watch feeding demonstrations, dive shows, and educational presentations.",
			"Walk through tunnel exhibits for immersive underwater experiences.",
		},
	},
	{
		name:     "opera_house",
		suffixes: []string{"Opera House", "Grand Theater"},
		minPrice: 30, maxPrice: 150,
		hours: []string{"Box office daily: 10:00-18:00", "Daily: 10:00-17:00"},
		activities: []string{
			"Attend opera performances, ballets, and classical music concerts.",
			"Take architectural tours to explore the stunning design and history.",
			"Dine at the venue restaurant and enjoy pre-show experiences.",
		},
	},
	{
		name:     "botanical_garden",
		suffixes: []string{"Botanical Garden", "Botanical Gardens"},
		minPrice: 0, maxPrice: 15,
		hours: []string{"Daily: 8:00-18:00", "Daily: 9:00-17:00"},
		activities: []string{
			"Explore diverse plant collections from around the world in themed gardens.",
			"Attend seasonal flower displays, garden tours, and horticultural workshops.",
			"Learn about plant conservation, biodiversity, and botanical research.",
		},
	},
	{
		name:     "ruins",
		suffixes: []string{"Archaeological Site", "Ancient Ruins"},
		minPrice: 5, maxPrice: 20,
		hours: []string{"Daily: 8:00-17:00", "Daily: 9:00-18:00"},
		activities: []string{
			"Explore ancient archaeological sites and learn about historical civilizations.",
			"Take guided tours to understand the site's historical significance.",
			"Visit the on-site museum to see artifacts and learn about the site's history.",
		},
	},
}

// Approximate USD conversion factors for price generation.
var fxRates = map[string]float64{
	"EUR": 0.92, "GBP": 0.79, "JPY": 150.0, "AUD": 1.52, "CAD": 1.35,
	"SGD": 1.34, "KRW": 1300.0, "THB": 35.0, "INR": 83.0, "BRL": 5.0,
	"MXN": 17.0, "TRY": 32.0, "AED": 3.67, "EGP": 31.0, "ZAR": 18.5,
	"CZK": 23.0, "HUF": 360.0,
}

var (
	streetNames = []string{"Main", "Central", "Royal", "Grand", "Historic", "Riverside", "Market", "Church", "Palace"}
	streetTypes = []string{"Street", "Avenue", "Boulevard", "Road", "Lane", "Square"}
	prefixes    = []string{"Historic", "Grand", "Royal", "National", "Central", "Old"}
)

type generator struct {
	rng       *rand.Rand
	usedNames map[string]bool
}

func (g *generator) row() (domain.AttractionRow, bool) {
	c := cities[g.rng.Intn(len(cities))]
	k := kinds[g.rng.Intn(len(kinds))]

	short := c.name
	if i := strings.IndexByte(short, ' '); i > 0 {
		short = short[:i]
	}
	suffix := k.suffixes[g.rng.Intn(len(k.suffixes))]
	var name string
	switch {
	case g.rng.Float64() < 0.3:
		name = prefixes[g.rng.Intn(len(prefixes))] + " " + suffix
	case g.rng.Float64() < 0.5:
		name = short + " " + suffix
	default:
		name = suffix + " of " + short
	}
	if g.usedNames[name] {
		return domain.AttractionRow{}, false
	}
	g.usedNames[name] = true

	price := g.price(k, c.currency)
	return domain.AttractionRow{
		ID:          uuid.NewSHA1(uuid.NameSpaceOID, []byte(strings.ToLower(name)+"|"+strings.ToLower(c.name))).String(),
		Name:        name,
		City:        c.name,
		Type:        k.name,
		Location:    c.name + ", " + c.country,
		Address:     g.address(c),
		Price:       &price,
		Currency:    c.currency,
		OpenHours:   k.hours[g.rng.Intn(len(k.hours))],
		Description: g.activities(k),
	}, true
}

func (g *generator) price(k kind, currency string) float64 {
	if k.minPrice == 0 && g.rng.Float64() < 0.3 {
		return 0
	}
	p := k.minPrice + g.rng.Float64()*(k.maxPrice-k.minPrice)
	if fx, ok := fxRates[currency]; ok {
		p *= fx
	}
	return float64(int(p*100)) / 100
}

func (g *generator) address(c city) string {
	return fmt.Sprintf("%d %s %s, %s, %05d, %s",
		1+g.rng.Intn(9999),
		streetNames[g.rng.Intn(len(streetNames))],
		streetTypes[g.rng.Intn(len(streetTypes))],
		c.name,
		10000+g.rng.Intn(90000),
		c.country)
}

func (g *generator) activities(k kind) string {
	i := g.rng.Intn(len(k.activities))
	j := g.rng.Intn(len(k.activities))
	if j == i {
		j = (j + 1) % len(k.activities)
	}
	return k.activities[i] + " " + k.activities[j]
}

func main() {
	count := flag.Int("n", 1000, "number of attractions to generate")
	out := flag.String("o", "attractions.csv", "output CSV path (- for stdout)")
	seed := flag.Int64("seed", 0, "random seed (0 uses current time)")
	natsURL := flag.String("nats", "", "publish rows to the ingest subject instead of writing CSV")
	flag.Parse()

	s := *seed
	if s == 0 {
		s = time.Now().UnixNano()
	}
	g := &generator{rng: rand.New(rand.NewSource(s)), usedNames: make(map[string]bool)}

	rows := make([]domain.AttractionRow, 0, *count)
	for attempts := 0; len(rows) < *count && attempts < *count*10; attempts++ {
		if row, ok := g.row(); ok {
			rows = append(rows, row)
		}
	}

	if *natsURL != "" {
		if err := publish(*natsURL, rows); err != nil {
			log.Fatalf("publish: %v", err)
		}
		log.Printf("published %d rows to %s", len(rows), ingest.IngestSubject)
		return
	}

	if err := writeCSV(*out, rows); err != nil {
		log.Fatalf("write csv: %v", err)
	}
	log.Printf("generated %d attractions in %s", len(rows), *out)
}

func writeCSV(path string, rows []domain.AttractionRow) error {
	f := os.Stdout
	if path != "-" {
		var err error
		f, err = os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
	}

	w := csv.NewWriter(f)
	header := []string{"id", "city_name", "attraction_name", "attraction_type", "location", "address", "price", "currency", "open_hours", "things_to_do"}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, r := range rows {
		price := ""
		if r.Price != nil {
			price = fmt.Sprintf("%.2f", *r.Price)
		}
		rec := []string{r.ID, r.City, r.Name, r.Type, r.Location, r.Address, price, r.Currency, r.OpenHours, r.Description}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func publish(url string, rows []domain.AttractionRow) error {
	nc, err := nats.Connect(url, nats.Name("roamly-seedgen"))
	if err != nil {
		return err
	}
	defer nc.Close()

	ctx := context.Background()
	for _, r := range rows {
		if err := natsutil.Publish(ctx, nc, ingest.IngestSubject, r); err != nil {
			return err
		}
	}
	return nc.Flush()
}
