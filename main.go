package main

import (
	"log"
	"os"
	"time"

	"logibot/accred"
	"logibot/bot"
	"logibot/calendar"
	"logibot/config"
	"logibot/model"
	"logibot/truffe"

	"github.com/glebarez/sqlite"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

func main() {
	cfg := config.Load()

	db, err := gorm.Open(sqlite.Open(cfg.DBPath), &gorm.Config{})
	if err != nil {
		log.Fatal(err)
	}

	// Auto migrate
	db.AutoMigrate(&model.User{}, &model.UnitMembership{}, &model.RelayRecord{}, &model.CalendarEvent{})

	// One-shot jobs, runnable by an external scheduler. They need no
	// messaging transport, so the bot is not constructed for them.
	if len(os.Args) > 1 {
		runJob(os.Args[1], cfg, db)
		return
	}

	if cfg.BotToken == "" {
		log.Fatal("BOT_TOKEN is not set")
	}

	b, err := bot.NewBot(cfg, db)
	if err != nil {
		log.Fatal(err)
	}

	// Scheduler
	c := cron.New()
	c.AddFunc("0 * * * *", b.ExpireAccreds)   // hourly expiry sweep
	c.AddFunc("0 6 * * *", b.RefreshCalendar) // daily calendar rebuild
	c.Start()

	log.Println("Bot started...")
	b.Start()
}

func runJob(name string, cfg *config.Config, db *gorm.DB) {
	switch name {
	case "refresh_calendar":
		loc, err := time.LoadLocation(cfg.DisplayTimezone)
		if err != nil {
			log.Fatal(err)
		}
		client := truffe.NewClient(cfg.TruffeBaseURL, cfg.TruffeToken)
		cache := truffe.NewCache(client, cfg.TruffeBaseURL, loc)
		gateway := calendar.NewHTTPGateway(cfg.CalendarBaseURL, cfg.CalendarID, cfg.CalendarToken)
		manager := calendar.NewManager(db, gateway, cfg.DisplayTimezone)

		reservations, err := cache.InStates(truffe.DefaultStates)
		if err == nil {
			err = manager.Refresh(reservations)
		}
		if err != nil {
			log.Fatal(err)
		}
		log.Println("Calendar refreshed.")
	case "expire_accreds":
		if err := accred.NewEngine(db).SweepExpired(time.Now()); err != nil {
			log.Fatal(err)
		}
		log.Println("Expired accreditations swept.")
	default:
		log.Fatalf("unknown job %q (want refresh_calendar or expire_accreds)", name)
	}
}
