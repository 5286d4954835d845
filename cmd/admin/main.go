package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"welcomewindow/backend/internal/approval"
	"welcomewindow/backend/internal/chathub"
	"welcomewindow/backend/internal/config"
	"welcomewindow/backend/internal/models"
	"welcomewindow/backend/internal/storage"

	"github.com/redis/go-redis/v9"
)

const usage = `Usage: admin <command> [args]

Commands:
  status <available|busy|away> [message]
  pending
  approve <visitor_id>
  reject <visitor_id>
  stats
  clear-chat
  watch`

func main() {
	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	db, err := storage.OpenDatabase(&cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	rdb, err := storage.NewRedisClient(ctx, &cfg.Redis)
	if err != nil {
		log.Printf("WARN: redis unavailable, events will not be mirrored: %v", err)
	}
	store := storage.NewStorageService(db, rdb)

	command := os.Args[1]
	switch command {
	case "status":
		if len(os.Args) < 3 {
			fmt.Println("Usage: admin status <available|busy|away> [message]")
			os.Exit(1)
		}
		state := models.AvailabilityState(os.Args[2])
		if !state.Valid() {
			fmt.Println("Status must be one of available, busy, away.")
			os.Exit(1)
		}
		status := models.AvailabilityStatus{Status: state, Message: strings.Join(os.Args[3:], " ")}
		if err := store.AppendStatus(ctx, &status); err != nil {
			log.Fatalf("Error updating status: %v", err)
		}
		publish(ctx, rdb, cfg.Redis.Channel, models.EventStatusChanged, status)
		fmt.Printf("Status is now %s.\n", status.Status)
	case "pending":
		pending, err := store.ListPendingVisitors(ctx)
		if err != nil {
			log.Fatalf("Error listing pending visitors: %v", err)
		}
		if len(pending) == 0 {
			fmt.Println("Nobody is waiting.")
		}
		for _, v := range pending {
			fmt.Printf("#%d\t%s <%s>\trequested %s\n", v.ID, v.Name, v.Email, v.RequestedAt.Format(time.RFC822))
		}
	case "approve", "reject":
		if len(os.Args) != 3 {
			fmt.Printf("Usage: admin %s <visitor_id>\n", command)
			os.Exit(1)
		}
		id, err := strconv.ParseUint(os.Args[2], 10, 64)
		if err != nil {
			fmt.Println("Invalid visitor ID. Please provide an integer.")
			os.Exit(1)
		}
		gate := approval.NewService(store, chathub.NewNotifier(mirrorFor(rdb, cfg)), nil)
		decide := gate.Approve
		if command == "reject" {
			decide = gate.Reject
		}
		changed, err := decide(ctx, uint(id))
		if err != nil {
			log.Fatalf("Error deciding visitor %d: %v", id, err)
		}
		if !changed {
			fmt.Printf("Visitor %d was already decided.\n", id)
			return
		}
		fmt.Printf("Visitor %d: %sd.\n", id, command)
	case "stats":
		stats, err := store.VisitStats(ctx, time.Now())
		if err != nil {
			log.Fatalf("Error reading stats: %v", err)
		}
		unread, err := store.UnreadGuestbookCount(ctx)
		if err != nil {
			log.Fatalf("Error reading guestbook: %v", err)
		}
		fmt.Printf("Total visits:     %d\n", stats.TotalVisits)
		fmt.Printf("Visits today:     %d\n", stats.TodayVisits)
		fmt.Printf("Average duration: %.1f min\n", stats.AvgDurationMinutes)
		fmt.Printf("Unread guestbook: %d\n", unread)
	case "clear-chat":
		n, err := store.ClearChatMessages(ctx)
		if err != nil {
			log.Fatalf("Error clearing chat: %v", err)
		}
		publish(ctx, rdb, cfg.Redis.Channel, models.EventChatCleared, map[string]int64{"removed": n})
		fmt.Printf("Removed %d messages.\n", n)
	case "watch":
		if rdb == nil {
			fmt.Println("watch needs redis.addr to be configured.")
			os.Exit(1)
		}
		fmt.Printf("Watching %s, Ctrl+C to stop.\n", cfg.Redis.Channel)
		err := storage.Subscribe(ctx, rdb, cfg.Redis.Channel, func(ev models.Event) {
			fmt.Printf("%s #%d %v\n", ev.Type, ev.Seq, ev.Data)
		})
		if err != nil && ctx.Err() == nil {
			log.Fatalf("Error watching events: %v", err)
		}
	default:
		fmt.Println("Unknown command")
		fmt.Println(usage)
		os.Exit(1)
	}
}

// mirrorFor publishes each event right away, since the process exits before
// a queued mirror would drain. It returns nil without Redis.
func mirrorFor(rdb *redis.Client, cfg *config.Config) chathub.EventMirror {
	if rdb == nil {
		return nil
	}
	return cliMirror{rdb: rdb, channel: cfg.Redis.Channel}
}

type cliMirror struct {
	rdb     *redis.Client
	channel string
}

func (m cliMirror) Mirror(ev models.Event) {
	publish(context.Background(), m.rdb, m.channel, ev.Type, ev.Data)
}

func publish(ctx context.Context, rdb *redis.Client, channel string, typ models.EventType, data any) {
	if rdb == nil {
		return
	}
	payload, err := json.Marshal(models.Event{Type: typ, Data: data})
	if err != nil {
		log.Printf("WARN: failed to encode %s: %v", typ, err)
		return
	}
	if err := rdb.Publish(ctx, channel, payload).Err(); err != nil {
		log.Printf("WARN: failed to publish %s: %v", typ, err)
	}
}
