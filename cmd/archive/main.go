// archive exports a channel's messages to a fixed-size-record binary file and
// reads such files back.
//
//	go run ./cmd/archive -channel 10 -out channel10.bin   # export
//	go run ./cmd/archive -dump channel10.bin              # print every record
//	go run ./cmd/archive -last channel10.bin              # print the final record
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"dm-relay/backend/internal/archive"
	"dm-relay/backend/internal/config"
	"dm-relay/backend/internal/db"
	messagerepository "dm-relay/backend/internal/message/repository"
	userrepository "dm-relay/backend/internal/user/repository"
)

// exportLimit caps how many messages one export pulls from storage.
const exportLimit = 10000

func main() {
	channelID := flag.Int64("channel", 0, "Channel ID to export")
	out := flag.String("out", "", "Output archive file for export")
	dump := flag.String("dump", "", "Archive file to print in full")
	last := flag.String("last", "", "Archive file to print the final record of")
	flag.Parse()

	switch {
	case *dump != "":
		if err := dumpArchive(*dump); err != nil {
			log.Fatalf("archive: %v", err)
		}
	case *last != "":
		if err := printLast(*last); err != nil {
			log.Fatalf("archive: %v", err)
		}
	case *channelID > 0 && *out != "":
		if err := export(*channelID, *out); err != nil {
			log.Fatalf("archive: %v", err)
		}
	default:
		flag.Usage()
		os.Exit(2)
	}
}

func export(channelID int64, path string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is not set")
	}
	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("db: %w", err)
	}
	defer conn.Close()

	ctx := context.Background()
	messages := messagerepository.NewPostgresRepository(conn)
	users := userrepository.NewPostgresRepository(conn)

	recent, err := messages.ListRecentByChannel(ctx, channelID, exportLimit)
	if err != nil {
		return fmt.Errorf("list messages: %w", err)
	}
	if len(recent) == 0 {
		return fmt.Errorf("channel %d has no messages", channelID)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	names := make(map[int64]string)
	// recent is newest first; archives are chronological.
	for i := len(recent) - 1; i >= 0; i-- {
		m := recent[i]
		name, ok := names[m.SenderID]
		if !ok {
			u, err := users.GetByID(ctx, m.SenderID)
			if err != nil {
				return fmt.Errorf("look up sender %d: %w", m.SenderID, err)
			}
			if u != nil {
				name = u.UserName
			}
			names[m.SenderID] = name
		}
		rec := archive.Record{
			MessageID:  m.MessageID,
			SenderID:   m.SenderID,
			ChannelID:  m.ChannelID,
			CreatedAt:  m.CreatedAt,
			SenderName: name,
			Msg:        m.Msg,
		}
		if err := archive.Write(f, rec); err != nil {
			return err
		}
	}
	log.Printf("archived %d messages of channel %d to %s", len(recent), channelID, path)
	return nil
}

func dumpArchive(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	records, err := archive.ReadAll(f)
	if err != nil {
		return err
	}
	for _, rec := range records {
		printRecord(rec)
	}
	return nil
}

func printLast(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	rec, err := archive.ReadLast(f)
	if err != nil {
		return err
	}
	printRecord(rec)
	return nil
}

func printRecord(rec archive.Record) {
	fmt.Printf("%d\t%s\t%s\t%s\n", rec.MessageID, rec.CreatedAt.Format("2006-01-02 15:04:05"), rec.SenderName, rec.Msg)
}
