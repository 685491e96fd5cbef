// seed inserts development sample data for local testing.
// Idempotent: skips inserts if the dev user (vijay) already exists.
package main

import (
	"context"
	"errors"
	"log"
	"os"
	"time"

	channelrepository "dm-relay/backend/internal/channel/repository"
	"dm-relay/backend/internal/config"
	"dm-relay/backend/internal/db"
	userrepository "dm-relay/backend/internal/user/repository"
)

const (
	devSenderName   = "vijay"
	devReceiverName = "suriya"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	ctx := context.Background()
	users := userrepository.NewPostgresRepository(conn)
	channels := channelrepository.NewPostgresRepository(conn)

	existing, err := users.GetByName(ctx, devSenderName)
	if err != nil {
		log.Fatalf("seed check: %v", err)
	}
	if existing != nil {
		log.Printf("Seed already applied (%s exists). Skipping.", devSenderName)
		os.Exit(0)
	}

	now := time.Now().UTC()
	sender, err := users.Create(ctx, devSenderName, now)
	if err != nil {
		log.Fatalf("create %s: %v", devSenderName, err)
	}
	receiver, err := users.Create(ctx, devReceiverName, now)
	if err != nil {
		log.Fatalf("create %s: %v", devReceiverName, err)
	}

	channel, msg, err := channels.CreateDirect(ctx, channelrepository.CreateDirectArgs{
		SenderID:    sender.ID,
		ReceiverID:  receiver.ID,
		ChannelName: devSenderName + "_" + devReceiverName,
		SystemMsg:   "channel created b/w you and " + devReceiverName,
		At:          now,
	})
	if errors.Is(err, channelrepository.ErrPairExists) {
		log.Println("Direct channel already exists. Skipping.")
		os.Exit(0)
	}
	if err != nil {
		log.Fatalf("create channel: %v", err)
	}

	log.Printf("Seeded users %s (%d) and %s (%d), channel %d, first message %q",
		devSenderName, sender.ID, devReceiverName, receiver.ID, channel.ChannelID, msg.Msg)
}
