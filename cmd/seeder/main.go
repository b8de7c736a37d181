package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/mauv0809/courtside/internal/club"
	"github.com/mauv0809/courtside/internal/config"
	"github.com/mauv0809/courtside/internal/database"
	"github.com/mauv0809/courtside/internal/session"
	"github.com/mauv0809/courtside/internal/training"
)

var firstNames = []string{"Anna", "Bo", "Carl", "Dina", "Emil", "Freja", "Gustav", "Hanne", "Ida", "Jonas", "Karla", "Lars", "Mette", "Niels", "Olivia", "Peter"}
var lastNames = []string{"Holm", "Berg", "Lund", "Dahl", "Krogh", "Mikkelsen", "Vester", "Juul"}

func main() {
	players := flag.Int("players", 16, "number of players to create")
	courts := flag.Int("courts", 3, "number of courts in the seeded training")
	flag.Parse()

	log.Info("Starting database seeder...")
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %s", err)
	}

	db, teardown, err := database.InitDB(cfg.DBName, cfg.Turso.PrimaryURL, cfg.Turso.AuthToken)
	if err != nil {
		log.Fatalf("Failed to initialize database: %s", err)
	}
	defer teardown()

	ctx := context.Background()
	clubStore := club.New(db)
	trainings := training.NewStore(db)

	seeded := make([]session.Player, 0, *players)
	ids := make([]string, 0, *players)
	for i := 0; i < *players; i++ {
		p := session.Player{
			ID:        uuid.NewString(),
			FirstName: firstNames[i%len(firstNames)],
			LastName:  lastNames[rand.Intn(len(lastNames))],
			Rating:    rand.Intn(1000),
		}
		seeded = append(seeded, p)
		ids = append(ids, p.ID)
	}
	if err := clubStore.UpsertPlayers(ctx, seeded); err != nil {
		log.Fatalf("Failed to insert players: %s", err)
	}
	log.Info("Inserted players", "count", len(seeded))

	startsAt := time.Now().Truncate(time.Hour).Add(time.Hour)
	tr, err := trainings.Create(ctx, fmt.Sprintf("Seeded training %s", startsAt.Format("2006-01-02 15:04")), startsAt, *courts, ids)
	if err != nil {
		log.Fatalf("Failed to create training: %s", err)
	}
	log.Info("Created training", "training_id", tr.ID, "courts", tr.CourtCount, "players", len(tr.PlayerIDs))
}
